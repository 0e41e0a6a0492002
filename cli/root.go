package cli

import (
	"os"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// NewRootCommand assembles the physiofriend command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "physiofriend",
		Short:         "Appointment booking backend for MyPhysioFriend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			util.InitLogger(cfg.LogLevel, cfg.AppEnv)
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(createTestDoctorCmd())
	root.AddCommand(workerCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		util.Logger().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

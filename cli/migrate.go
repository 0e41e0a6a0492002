package cli

import (
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openDatabase(true); err != nil {
				return err
			}
			util.Logger().Info().Msg("migration finished")
			return nil
		},
	}
}

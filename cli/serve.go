package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/endpoint"
	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/obs"
	"github.com/ariebrainware/physiofriend-api/payment"
	"github.com/ariebrainware/physiofriend-api/server"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run AutoMigrate before serving")
	return cmd
}

func openDatabase(migrate bool) (*gorm.DB, error) {
	db, err := config.ConnectDatabase()
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if migrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, nil
}

func runServer(ctx context.Context, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.LoadConfig()
	logger := util.Logger()
	util.SetJWTSecret(cfg.JWTSecret)

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.AppName,
		Version:     version,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	db, err := openDatabase(migrate)
	if err != nil {
		return err
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, sessions are stateless and rate limiting is off")
	}
	if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer util.CloseGeoIP()

	store, closeStore, err := notification.ConnectMongoStore(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("mongo unavailable, notification log stays in the SQL store")
	}
	defer closeStore()
	if store == nil {
		store = notification.NewGormStore(db)
	}

	dispatcher := notification.NewDispatcherFromConfig(cfg, db, store)
	publisher := events.NewPublisherFromConfig(cfg)
	defer func() { _ = publisher.Close() }()

	endpoint.Configure(endpoint.Deps{
		Notifier:      dispatcher,
		Publisher:     publisher,
		Gateway:       payment.GatewayFromConfig(cfg),
		DoctorCache:   util.NewDoctorListCache(5 * time.Minute),
		Notifications: store,
	})
	logger.Info().Strs("channels", dispatcher.Channels()).Msg("notification channels")

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           server.NewRouter(cfg, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

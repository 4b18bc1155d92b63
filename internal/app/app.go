// Package app initializes and runs the shopping-list service.
// It configures logging, storage, authentication, metrics and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/shoplist/internal/auth"
	"github.com/patric-chuzhbe/shoplist/internal/config"
	"github.com/patric-chuzhbe/shoplist/internal/db/jsondb"
	"github.com/patric-chuzhbe/shoplist/internal/db/memorystorage"
	"github.com/patric-chuzhbe/shoplist/internal/db/postgresdb"
	"github.com/patric-chuzhbe/shoplist/internal/db/sqlitedb"
	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/ipchecker"
	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/metrics"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/router"
	"github.com/patric-chuzhbe/shoplist/internal/service"
)

// App holds the configuration, the HTTP handler and the storage backend
// of a running service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New loads the configuration, opens the storage selected by it and wires
// the service, authentication, metrics and router together.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if app.cfg.AuthSecretKey == config.DefaultAuthSecretKey {
		logger.Log.Warnln("AUTH_SECRET_KEY is not set, the development key is used to sign sessions")
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}
	if ipChecker.IsTrustedSubnetEmpty() {
		logger.Log.Infoln("TRUSTED_SUBNET is empty, internal stats are disabled")
	}

	appMetrics := metrics.New()
	appMetrics.RegisterStore(app.db, app.cfg.DBConnectionTimeout)

	app.httpHandler = router.New(
		service.New(app.db),
		auth.New(
			app.db,
			app.cfg.AuthCookieName,
			[]byte(app.cfg.AuthSecretKey),
			app.cfg.AuthTokenTTL,
		),
		ipChecker,
		appMetrics,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "storage", storageName(a.cfg.StorageType()))

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Join(fmt.Errorf("server shutdown error: %w", err), a.db.Close())
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return errors.Join(fmt.Errorf("server error: %w", err), a.db.Close())
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func storageName(storageType int) string {
	switch storageType {
	case models.StorageTypePostgresql:
		return "postgresql"
	case models.StorageTypeSQLite:
		return "sqlite"
	case models.StorageTypeFile:
		return "json file"
	case models.StorageTypeMemory:
		return "memory"
	}

	return "unknown"
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType() {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeSQLite:
		return sqlitedb.New(
			context.Background(),
			cfg.SQLitePath,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}

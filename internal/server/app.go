// Package server wires configuration, storage, the account service and the
// HTTP endpoint into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/common"
	"github.com/dmitrijs2005/aimauth/internal/dbx"
	"github.com/dmitrijs2005/aimauth/internal/filex"
	"github.com/dmitrijs2005/aimauth/internal/logging"
	"github.com/dmitrijs2005/aimauth/internal/server/auth"
	"github.com/dmitrijs2005/aimauth/internal/server/config"
	"github.com/dmitrijs2005/aimauth/internal/server/httpserver"
	"github.com/dmitrijs2005/aimauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aimauth/internal/server/services"
	"github.com/dmitrijs2005/aimauth/internal/telemetry"
)

const (
	serviceName        = "aimauth"
	ephemeralSecretLen = 32
	telemetryFlushTime = 5 * time.Second
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	closeDB           func()
	accounts          *services.AccountService
	telemetryShutdown telemetry.ShutdownFunc
}

// NewApp opens the database, applies migrations and builds the account
// service. Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, w)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, closeDB, err := openDatabase(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DBDriver)
	if err != nil {
		closeDB()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	secret := []byte(c.SecretKey)
	if len(secret) == 0 {
		logger.Warn(ctx, "No secret key configured, using a random one; tokens will not survive a restart")
		secret = common.GenerateRandByteArray(ephemeralSecretLen)
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, c.OTLPEndpoint, c.OTLPInsecure)
	if err != nil {
		logger.Warn(ctx, "Tracing disabled", "error", err.Error())
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	accounts := services.NewAccountService(db, rm, hasher,
		auth.NewTokenIssuer(secret, auth.TokenTTL),
		services.WithDefaultRole(c.DefaultRole),
	)
	logger.Debug(ctx, "Account service ready", "bcrypt_cost", hasher.Cost(), "default_role", c.DefaultRole)

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		closeDB:           closeDB,
		accounts:          accounts,
		telemetryShutdown: shutdown,
	}, nil
}

func openDatabase(ctx context.Context, c *config.Config) (*sql.DB, func(), error) {
	switch c.DBDriver {
	case repomanager.DriverPostgres:
		return dbx.OpenPostgres(ctx, c.DatabaseDSN, c.Pool())
	case repomanager.DriverSQLite:
		if _, err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
			return nil, nil, err
		}
		return dbx.OpenSQLite(ctx, c.DatabaseDSN)
	default:
		return nil, nil, fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := httpserver.NewServer(app.config.HTTPAddr, app.logger, app.accounts, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database and flushes traces.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DBDriver)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")

	return runErr
}

// Close flushes traces and closes the database.
func (app *App) Close() {
	flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTime)
	defer cancel()

	if err := app.telemetryShutdown(flushCtx); err != nil {
		app.logger.Warn(flushCtx, "Telemetry shutdown failed", "error", err.Error())
	}
	app.closeDB()
}

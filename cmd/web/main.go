package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/chaitanyashetty47/strengthos/internal/catalog"
	"github.com/chaitanyashetty47/strengthos/internal/envstruct"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/flightrecorder"
	"github.com/chaitanyashetty47/strengthos/internal/logging"
	"github.com/chaitanyashetty47/strengthos/internal/plans"
	"github.com/chaitanyashetty47/strengthos/internal/progress"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
)

type application struct {
	logger          *slog.Logger
	sessionManager  *scs.SessionManager
	db              *sqlite.Database
	planService     *plans.Service
	progressService *progress.Service
	catalogService  *catalog.Service
	flightRecorder  *flightrecorder.Service
	drafts          *draftRegistry
	exportsDir      string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"STRENGTHOS_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"STRENGTHOS_SQLITE_URL" envDefault:"./strengthos.sqlite3"`
	// OpenAIAPIKey enables exercise description generation when set.
	OpenAIAPIKey string `env:"STRENGTHOS_OPENAI_API_KEY" envDefault:""`
	// TracesDirectory enables flight recorder captures of timed-out requests when set.
	TracesDirectory string `env:"STRENGTHOS_TRACES_DIR" envDefault:""`
	// ExportsDirectory is where per-user data exports are written.
	ExportsDirectory string `env:"STRENGTHOS_EXPORTS_DIR" envDefault:"./exports"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var recorder *flightrecorder.Service
	if cfg.TracesDirectory != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:          logger,
			TracesDirectory: cfg.TracesDirectory,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	if err = os.MkdirAll(cfg.ExportsDirectory, 0o750); err != nil {
		return errors.Wrap(err, "create exports directory", slog.String("dir", cfg.ExportsDirectory))
	}

	app := application{
		logger:          logger,
		sessionManager:  initializeSessionManager(db),
		db:              db,
		planService:     plans.NewService(db, logger),
		progressService: progress.NewService(db, logger),
		catalogService:  catalog.NewService(db, logger, cfg.OpenAIAPIKey),
		flightRecorder:  recorder,
		drafts:          newDraftRegistry(),
		exportsDir:      cfg.ExportsDirectory,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                               //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

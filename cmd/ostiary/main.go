package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/ostiary-dev/ostiary/internal/app"
	"github.com/ostiary-dev/ostiary/internal/auth"
	"github.com/ostiary-dev/ostiary/internal/db"
	"github.com/ostiary-dev/ostiary/internal/observability"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/rest"
	"github.com/ostiary-dev/ostiary/internal/session"
	"github.com/ostiary-dev/ostiary/internal/settings"
	"github.com/ostiary-dev/ostiary/internal/view"
	"github.com/ostiary-dev/ostiary/web"
)

func main() {
	showDB := flag.Bool("show-db", false, "print the database contents as JSON and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if *showDB {
		os.Exit(runShowDB(cfg))
	}

	logger := app.NewLogger(cfg)

	registry := rbac.NewRegistry()
	database, err := db.LoadOrCreate(cfg.DBFile, registry, db.Options{
		AdminPassword: cfg.AdminPassword,
		KDFIterations: cfg.KDFIterations,
		KDFAlgorithm:  cfg.KDFAlgorithm,
	})
	if err != nil {
		logger.Error("load database", slog.Any("error", err))
		os.Exit(1)
	}

	sessions := session.NewStore(logger)
	metrics := observability.NewMetrics(func() float64 {
		return float64(sessions.Len())
	})
	sessions.OnSweep = metrics.SessionsSwept
	go sessions.Run(ctx)
	go database.RunAutosave(ctx, cfg.DBFile, cfg.DBSaveInterval, logger)

	instanceID := cfg.InstanceID()
	model := settings.NewModel()
	model.AddVariable(settings.Variable{
		Name:        "logLevel",
		Value:       cfg.LogLevel,
		Description: "Minimum level a log record needs to be emitted",
		Kind:        settings.KindEnum,
		Allowed:     []string{"DEBUG", "INFO", "WARNING", "ERROR"},
	})
	model.AddVariable(settings.Variable{
		Name:        "logFormat",
		Value:       cfg.LogFormat,
		Description: "Log output format",
		Kind:        settings.KindEnum,
		Allowed:     []string{"pretty", "json"},
	})
	model.AddVariable(settings.Variable{
		Name:        "appId",
		Value:       instanceID,
		Description: "Identifier of this application instance",
		Kind:        settings.KindReadOnly,
	})
	applySettings := func() {
		if level, err := model.Get("logLevel"); err == nil {
			app.LogLevel.Set(app.ParseLogLevel(level))
		}
	}

	views := view.NewEngine(web.Templates, cfg.TemplatePath)
	cors, err := rest.NewCORSPolicy(cfg.CORSAllowOrigins, cfg.CORSAllowMethods)
	if err != nil {
		logger.Error("compile CORS origins", slog.Any("error", err))
		os.Exit(1)
	}

	checker := rbac.NewChecker(database.Users, database.Roles, registry)
	dispatcher := rest.NewDispatcher(rest.DispatcherParams{
		Logger:     logger,
		Sessions:   sessions,
		Checker:    checker,
		Registry:   registry,
		Views:      views,
		CORS:       cors,
		Issues:     database.Issues,
		LoginURL:   cfg.LoginURL,
		CookieName: cfg.SessionCookieName,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Dispatcher:    dispatcher,
		Database:      database,
		Registry:      registry,
		Sessions:      sessions,
		Hasher:        auth.NewHasher(cfg.MaxPasswordChecks),
		Settings:      model,
		ApplySettings: applySettings,
		Validate:      validator.New(),
		Metrics:       metrics,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	server := &http.Server{Addr: cfg.AppAddr, Handler: router}
	group.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("instance", instanceID))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var tlsServer *http.Server
	if cfg.TLSAddr != "" {
		tlsServer = &http.Server{Addr: cfg.TLSAddr, Handler: router}
		group.Go(func() error {
			logger.Info("starting https server", slog.String("addr", cfg.TLSAddr))
			err := tlsServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
		if tlsServer != nil {
			if err := tlsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown", slog.Any("error", err))
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
	}

	if cfg.DBFile != "" {
		if err := database.Save(cfg.DBFile); err != nil {
			logger.Error("final database save failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

func runShowDB(cfg *app.Config) int {
	if cfg.DBFile == "" {
		fmt.Fprintln(os.Stderr, "no database file configured")
		return 1
	}
	database, err := db.Load(cfg.DBFile, rbac.NewRegistry(), db.Options{
		AdminPassword: cfg.AdminPassword,
		KDFIterations: cfg.KDFIterations,
		KDFAlgorithm:  cfg.KDFAlgorithm,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	summary, err := database.Summary()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(summary)
	return 0
}

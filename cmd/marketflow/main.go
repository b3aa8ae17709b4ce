package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"marketflow/internal/config"
	"marketflow/internal/http/handlers"
	applog "marketflow/internal/log"
	"marketflow/internal/repos"
	"marketflow/web"
)

func main() {
	cfg := config.Load()
	cfg.BindFlags(pflag.CommandLine)
	pflag.Parse()

	logger, err := applog.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	applog.Set(logger)

	if err := run(cfg); err != nil {
		logger.Fatal("startup", zap.Error(err))
	}
}

func run(cfg config.Config) error {
	l := applog.L()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	store, closeStore, err := repos.OpenStorage(cfg.Storage, db, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = closeStore() }()

	deps, err := handlers.NewDeps(db, store, cfg)
	if err != nil {
		return err
	}
	app := handlers.NewApp(web.Engine(), deps, handlers.AppOptions{AccessLog: true})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		l.Info("shutdown")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	l.Info("listen",
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("storage", cfg.Storage),
		zap.Duration("catalog_delay", cfg.CatalogDelay),
	)
	return app.Listen(":" + cfg.Port)
}

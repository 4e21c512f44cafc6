package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/dmitrymomot/tenantdb/pkg/config"
	"github.com/dmitrymomot/tenantdb/pkg/httpapi"
	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

type appConfig struct {
	LogLevel  string `env:"TENANTDB_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TENANTDB_LOG_FORMAT" envDefault:"json"`

	DB   tenantdb.Config
	HTTP httpserver.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tenantdbd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithService("tenantdbd"),
		logger.WithContextExtractors(httpapi.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	svc, err := tenantdb.NewService(cfg.DB, tenantdb.WithLogger(log))
	if err != nil {
		return err
	}
	if err := svc.Initialize(ctx); err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownFunc(svc.Shutdown),
	)
	if err := srv.Run(ctx, httpapi.NewRouter(svc, httpapi.WithLogger(log))); err != nil {
		// Listen failures skip the shutdown funcs.
		_ = svc.Shutdown(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

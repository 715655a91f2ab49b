package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	exportprom "github.com/goliatone/go-impact-export/adapters/metrics/prom"
	exportpdf "github.com/goliatone/go-impact-export/adapters/pdf"
	"github.com/goliatone/go-impact-export/compose"
	"github.com/goliatone/go-impact-export/config"
	"github.com/goliatone/go-impact-export/export"
	exportbun "github.com/goliatone/go-impact-export/sources/bunsql"
	exportmemory "github.com/goliatone/go-impact-export/sources/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the wired export stack.
type App struct {
	Config      config.Config
	Logger      *logrus.Logger
	Resolver    export.DatasetResolver
	Coordinator *export.Coordinator
	Registry    *prometheus.Registry

	db       *bun.DB
	chromium *exportpdf.ChromiumEngine
}

// NewApp builds the resolver, generators and coordinator from cfg.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: newLogger(cfg.Log),
	}

	resolver, err := app.buildResolver(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Resolver = resolver

	var metrics export.MetricsHook
	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		hook, err := exportprom.NewHook(exportprom.Config{
			Namespace: cfg.Metrics.Namespace,
			Registry:  app.Registry,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics = hook
	}

	app.Coordinator = export.NewCoordinator(export.CoordinatorConfig{
		Resolver:   resolver,
		Generators: app.buildGenerators(),
		Logger:     app.Logger,
		Metrics:    metrics,
		Format:     export.FormatOptions{Timezone: cfg.Export.Timezone},
	})
	return app, nil
}

func (a *App) buildResolver(ctx context.Context) (export.DatasetResolver, error) {
	cfg := a.Config.Database
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = bun.NewDB(sqldb, sqlitedialect.New())
		if cfg.Migrate {
			if err := exportbun.CreateSchema(ctx, a.db); err != nil {
				return nil, fmt.Errorf("create schema: %w", err)
			}
		}
		registry, err := exportbun.NewRegistry(exportbun.DefaultTables()...)
		if err != nil {
			return nil, err
		}
		resolver := exportbun.NewResolver(a.db, registry)
		resolver.MaxRows = cfg.MaxRows
		a.Logger.Infof("datasets from sql database")
		return resolver, nil
	}

	resolver := exportmemory.NewResolver()
	if path := strings.TrimSpace(cfg.Fixtures); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open fixtures: %w", err)
		}
		defer f.Close()
		if err := resolver.LoadFixtures(f, fixtureDateFields()); err != nil {
			return nil, err
		}
		a.Logger.Infof("datasets from fixtures %s", path)
	} else {
		a.Logger.Warnf("no database or fixtures configured; exports only accept inline data")
	}
	return resolver, nil
}

func fixtureDateFields() map[export.EntityType]string {
	fields := make(map[export.EntityType]string)
	for _, spec := range exportbun.DefaultTables() {
		fields[spec.Entity] = spec.DateColumn
	}
	return fields
}

func (a *App) buildGenerators() export.GeneratorSet {
	set := export.DefaultGenerators()
	set.CSV = export.CSVRenderer{Delimiter: a.Config.Delimiter()}
	if !a.Config.PDF.Enabled {
		a.Logger.Warnf("pdf disabled; document exports fall back to json")
		return set
	}
	set.PDF = exportpdf.Renderer{
		Engine:       a.buildEngine(),
		Composer:     compose.NewComposer(a.Config.ComposeStyle(), a.Config.Geometry()),
		MaxHTMLBytes: a.Config.PDF.MaxHTMLBytes,
		AllPages:     a.Config.PDF.AllPages,
	}
	return set
}

func (a *App) buildEngine() exportpdf.Engine {
	pdfCfg := a.Config.PDF
	printBackground := pdfCfg.PrintBackground
	a.chromium = &exportpdf.ChromiumEngine{
		BrowserPath: pdfCfg.ChromiumPath,
		Headless:    pdfCfg.Headless,
		Timeout:     a.Config.PDFTimeout(),
		Args:        pdfCfg.Args,
		PDF: exportpdf.PDFOptions{
			Scale:               pdfCfg.Scale,
			PrintBackground:     &printBackground,
			BaseURL:             pdfCfg.BaseURL,
			BlockExternalAssets: pdfCfg.BlockExternalAssets,
		},
	}
	wkhtml := exportpdf.WKHTMLTOPDFEngine{
		Command: pdfCfg.WKHTMLTOPDFPath,
		Timeout: a.Config.PDFTimeout(),
	}

	switch pdfCfg.Engine {
	case config.EngineChromium:
		return a.chromium
	case config.EngineWKHTMLTOPDF:
		return wkhtml
	default:
		return exportpdf.ChainEngine{a.chromium, wkhtml}
	}
}

// Close releases the browser and the database.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.chromium != nil {
		if err := a.chromium.Close(); err != nil {
			a.Logger.Warnf("close chromium: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Warnf("close database: %v", err)
		}
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/goliatone/go-impact-export/adapters/exportapi"
	exportrouter "github.com/goliatone/go-impact-export/adapters/router"
	"github.com/goliatone/go-impact-export/command"
	"github.com/goliatone/go-impact-export/export"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var host, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the export HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			subs, err := command.RegisterHandlers(nil, app.Coordinator, app.Resolver, nil)
			if err != nil {
				return err
			}
			defer func() {
				for _, sub := range subs {
					sub.Unsubscribe()
				}
			}()

			srv := router.NewFiberAdapter(fiberAppInitializer(app))
			app.SetupRoutes(srv.Router())
			return serve(ctx, app, srv)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config)")
	return cmd
}

func serve(ctx context.Context, app *App, srv router.Server[*fiber.App]) error {
	addr := app.Config.Addr()
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Infof("export api listening on http://%s%s", addr, app.Config.Server.BasePath)
		errCh <- srv.Serve(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	app.Logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SetupRoutes registers the export API and health routes.
func (a *App) SetupRoutes(r router.Router[*fiber.App]) {
	exportHandler := exportrouter.NewHandler(exportrouter.Config{
		Coordinator:  a.Coordinator,
		BasePath:     a.Config.Server.BasePath,
		Logger:       a.Logger,
		MaxBodyBytes: a.Config.Server.MaxBodyBytes,
	})
	exportHandler.RegisterRoutes(r)

	r.Get("/healthz", func(c router.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"formats": export.FormatNames(),
		})
	})
}

func fiberAppInitializer(app *App) func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			AppName:               "Impact Export API",
			BodyLimit:             int(app.Config.Server.MaxBodyBytes) + 1024,
			DisableStartupMessage: true,
		})

		fiberApp.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins:  "*",
			AllowMethods:  "GET,POST,OPTIONS",
			AllowHeaders:  "Content-Type,Authorization",
			ExposeHeaders: strings.Join([]string{
				"Content-Disposition",
				exportapi.HeaderExportID,
				exportapi.HeaderRows,
				exportapi.HeaderSkipped,
				export.FallbackHeader,
			}, ","),
		}))

		if app.Registry != nil {
			fiberApp.Get(app.Config.Metrics.Path, adaptor.HTTPHandler(
				promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
			))
		}
		return fiberApp
	}
}

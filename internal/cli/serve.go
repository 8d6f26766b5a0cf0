package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	handlers "docserver/internal/http/handler"
	"docserver/internal/http/middleware"
	"docserver/internal/otel"
	"docserver/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(env *environment) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return env.serve(ctx, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the metadata schema before serving")
	return cmd
}

// newApp builds the fiber app with middleware and routes. Split from serve so
// tests can drive it through app.Test.
func (e *environment) newApp(md *metadata, docSvc service.DocumentService, reg *prometheus.Registry) (*fiber.App, error) {
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(e.log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, md.ping, docSvc, reg)
	return app, nil
}

func (e *environment) serve(ctx context.Context, migrate bool) error {
	shutdownTracing, err := otel.Init(ctx, e.log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			e.log.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	md, err := e.openMetadata(ctx)
	if err != nil {
		return err
	}
	defer md.close()

	if migrate {
		if err := md.migrate(ctx); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return err
	}
	docSvc, err := e.documentService(ctx, md, service.WithMetrics(metrics))
	if err != nil {
		return err
	}

	app, err := e.newApp(md, docSvc, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + e.cfg.Port
		e.log.WithField("addr", addr).Info("http server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

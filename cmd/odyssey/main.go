package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-invoice/internal/app"
	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
	"github.com/odyssey-erp/odyssey-invoice/internal/invoice/export"
	invoicehttp "github.com/odyssey-erp/odyssey-invoice/internal/invoice/http"
	"github.com/odyssey-erp/odyssey-invoice/internal/observability"
	"github.com/odyssey-erp/odyssey-invoice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	renderer, err := export.NewRenderer(export.Options{
		CurrencySymbol: cfg.InvoiceCurrencySymbol,
		Locale:         cfg.InvoiceLocale,
	})
	if err != nil {
		logger.Error("parse invoice template", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := reportClient.Ping(pingCtx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err), slog.String("url", cfg.GotenbergURL))
	}
	cancelPing()
	reportHandler := report.NewHandler(reportClient, logger)

	validator := invoice.NewValidator()
	notifier := invoicehttp.LogNotifier(logger)
	registry := invoicehttp.NewRegistry(cfg.InvoiceMaxSessions, func() *invoice.Session {
		return invoice.NewSession(invoice.SessionOptions{
			Catalog:   invoice.DefaultCatalog,
			Validator: validator,
			Notifier:  notifier,
			Recorder:  metrics,
			Logger:    logger,
		})
	}, metrics)

	invoiceHandler := invoicehttp.NewHandler(invoicehttp.HandlerOptions{
		Logger:    logger,
		Registry:  registry,
		Catalog:   invoice.DefaultCatalog,
		Renderer:  renderer,
		PDF:       export.NewPDFExporter(renderer, reportClient),
		Documents: metrics,

		DocumentRateLimit: cfg.InvoiceDocumentLimit,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		InvoiceHandler: invoiceHandler,
		ReportHandler:  reportHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}

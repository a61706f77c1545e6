package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lushlawncarepros/petersen-budget/internal/amqp"
	"github.com/lushlawncarepros/petersen-budget/internal/backend"
	"github.com/lushlawncarepros/petersen-budget/internal/cli"
	gsheet "github.com/lushlawncarepros/petersen-budget/internal/tabular/google"
	"github.com/lushlawncarepros/petersen-budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("budget-worker requires AMQP_URL to consume change events")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("budget-worker requires GOOGLE_SPREADSHEET_ID for the mirror spreadsheet")
		os.Exit(1)
	}
	if cfg.DataBackend == "sheets" {
		logger.Error("budget-worker mirrors the primary store to Google Sheets; run it against the sqlite or memory backend")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(ctx, cli.BackendConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize primary store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirror(result.Store, sheetsClient)

	// Catch up on anything that changed while the worker was down.
	logger.Info("Performing startup mirror of both tables")
	if err := mirror.MirrorAll(ctx); err != nil {
		logger.Error("Startup mirror failed", "error", err)
		// Keep running; the next change event retries the copy.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTableChanges(gctx, func(msg *amqp.TableChangedMessage) error {
			return mirror.HandleChange(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

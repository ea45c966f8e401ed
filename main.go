// main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"meridian/adminledger/appcontext"
	"meridian/adminledger/config"
	"meridian/adminledger/csvimport"
	"meridian/adminledger/ingest"
	"meridian/adminledger/ledger"
	"meridian/adminledger/paymentsapi"
	"meridian/adminledger/storage"
	"meridian/adminledger/synthetic"
)

func main() {
	// Create the logger instance at the very beginning.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if len(os.Args) < 2 {
		logger.Error("Usage: adminledger <command> [options]")
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if err := run(logger, command, args); err != nil {
		logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, command string, args []string) error {
	cfg := config.LoadConfig(appcontext.WithLogger(context.Background(), logger), logger)

	ctx, cancel := context.WithTimeout(
		appcontext.WithLogger(context.Background(), logger),
		cfg.Timeout,
	)
	defer cancel()

	switch command {
	case "generate-sample-data":
		return synthetic.RunGenerateSampleData(ctx, logger, args, cfg)
	case "import":
		return runImport(ctx, cfg)
	case "sync-payments":
		return runSyncPayments(ctx, logger, args, cfg)
	case "post-payment":
		return runPostPayment(ctx, args, cfg)
	case "summary":
		return runSummary(ctx, logger, cfg)
	case "monthly":
		return runMonthly(ctx, args, cfg)
	case "categories":
		return runCategories(ctx, args, cfg)
	case "soft-delete":
		return runSoftDelete(ctx, logger, args, cfg)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// withStore connects to MongoDB and hands a ready Store to fn, disconnecting
// afterwards.
func withStore(ctx context.Context, cfg *config.Config, fn func(store *ledger.Store) error) error {
	logger := appcontext.LoggerFromContext(ctx)

	client, err := storage.ConnectToMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connection to MongoDB failed: %w", err)
	}
	defer func() {
		if deferErr := client.Disconnect(ctx); deferErr != nil {
			logger.ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
		}
	}()

	provider := storage.NewMongoProvider(client, cfg.Database)
	return fn(ledger.NewStore(provider))
}

func runImport(ctx context.Context, cfg *config.Config) error {
	return withStore(ctx, cfg, func(store *ledger.Store) error {
		sink := ingest.NewSink(ingest.SinkDependencies{
			Config: cfg,
			Store:  store,
			Parser: csvimport.NewParser(),
		})
		return sink.Ingest(ctx)
	})
}

func runSyncPayments(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	syncFlagSet := flag.NewFlagSet("sync-payments", flag.ExitOnError)
	lookback := syncFlagSet.Duration("lookback", 24*time.Hour, "How far back to pull completed payments")
	if err := syncFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	client, err := paymentsapi.NewClient(nil, cfg.PaymentsAPIBase, cfg.PaymentsAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create payments client: %w", err)
	}

	return withStore(ctx, cfg, func(store *ledger.Store) error {
		engine := ledger.NewEngine(store)

		since := time.Now().Add(-*lookback)
		_, feed, err := client.CompletedPayments(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to pull completed payments: %w", err)
		}

		var posted int
		for _, payment := range feed.Payments {
			created, postErr := engine.PostPayment(ctx, ledger.PaymentCompleted{
				PaymentID: payment.PaymentID,
				AmountUSD: payment.AmountUSD,
				Category:  payment.Category,
			})
			if postErr != nil {
				return fmt.Errorf("failed to post payment %s: %w", payment.PaymentID, postErr)
			}
			if created {
				posted++
			}
		}

		logger.InfoContext(ctx, "Payment sync complete",
			"pulled", len(feed.Payments), "posted", posted, "skipped", len(feed.Payments)-posted)
		return nil
	})
}

func runPostPayment(ctx context.Context, args []string, cfg *config.Config) error {
	postFlagSet := flag.NewFlagSet("post-payment", flag.ExitOnError)
	paymentID := postFlagSet.String("id", "", "Payment id")
	amount := postFlagSet.Float64("amount", 0, "Amount in USD")
	category := postFlagSet.String("category", "", "Ledger category")
	if err := postFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	return withStore(ctx, cfg, func(store *ledger.Store) error {
		engine := ledger.NewEngine(store)
		_, err := engine.PostPayment(ctx, ledger.PaymentCompleted{
			PaymentID: *paymentID,
			AmountUSD: *amount,
			Category:  *category,
		})
		return err
	})
}

func runSummary(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	return withStore(ctx, cfg, func(store *ledger.Store) error {
		summary, err := ledger.NewEngine(store).FinancialSummary(ctx, nil)
		if err != nil {
			return err
		}
		summary.Log(logger)
		return nil
	})
}

func runMonthly(ctx context.Context, args []string, cfg *config.Config) error {
	monthlyFlagSet := flag.NewFlagSet("monthly", flag.ExitOnError)
	year := monthlyFlagSet.Int("year", time.Now().UTC().Year(), "Calendar year to break down")
	if err := monthlyFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	return withStore(ctx, cfg, func(store *ledger.Store) error {
		months, err := ledger.NewEngine(store).MonthlyBreakdown(ctx, *year, nil)
		if err != nil {
			return err
		}
		return printJSON(months)
	})
}

func runCategories(ctx context.Context, args []string, cfg *config.Config) error {
	categoriesFlagSet := flag.NewFlagSet("categories", flag.ExitOnError)
	typ := categoriesFlagSet.String("type", "", "Restrict to one transaction type")
	if err := categoriesFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	return withStore(ctx, cfg, func(store *ledger.Store) error {
		categories, err := ledger.NewEngine(store).CategoryBreakdown(ctx, ledger.TypeFromString(*typ), nil)
		if err != nil {
			return err
		}
		return printJSON(categories)
	})
}

func runSoftDelete(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	deleteFlagSet := flag.NewFlagSet("soft-delete", flag.ExitOnError)
	id := deleteFlagSet.String("id", "", "Transaction id")
	actor := deleteFlagSet.String("actor", "", "Id of the deleting administrator")
	if err := deleteFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	return withStore(ctx, cfg, func(store *ledger.Store) error {
		if err := store.SoftDelete(ctx, *id, *actor); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Transaction soft-deleted", "id", *id, "actor", *actor)
		return nil
	})
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

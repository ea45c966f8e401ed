package synthetic

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"meridian/adminledger/config"
)

// RunGenerateSampleData generates a sample statement for testing the import path.
func RunGenerateSampleData(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	genFlagSet := flag.NewFlagSet("generate-sample-data", flag.ExitOnError)
	rows := genFlagSet.Int("rows", cfg.SampleDataRows, "Number of rows to generate")
	dir := genFlagSet.String("dir", cfg.SampleDataDir, "Directory to write the sample statement to")
	if err := genFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	logger.InfoContext(ctx, "Generating sample statement", "rows", *rows, "dir", *dir)
	if err := GenerateSampleStatement(*rows, *dir); err != nil {
		return fmt.Errorf("failed to generate sample statement: %w", err)
	}
	logger.InfoContext(ctx, "Sample statement generated successfully")
	return nil
}

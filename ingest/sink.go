// Package ingest imports CSV statements of manual ledger entries.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meridian/adminledger/appcontext"
	"meridian/adminledger/config"
	"meridian/adminledger/csvimport"
	"meridian/adminledger/ledger/model"
)

// TransactionCreator is the slice of the ledger store the importer needs.
type TransactionCreator interface {
	CreateMany(ctx context.Context, txs []model.Transaction) (int, error)
}

// SinkDependencies holds all the dependencies for the Sink.
type SinkDependencies struct {
	Config *config.Config
	Store  TransactionCreator
	Parser csvimport.Parser
}

// Sink orchestrates the statement import process. It holds the dependencies
// and directory configuration for ImportCSVFiles.
type Sink struct {
	deps               SinkDependencies
	ImportDir          string
	ProcessedDir       string
	MoveProcessedFiles bool
}

// NewSink creates a new Sink instance.
func NewSink(deps SinkDependencies) *Sink {
	return &Sink{
		deps:               deps,
		ImportDir:          deps.Config.ImportDir,
		ProcessedDir:       deps.Config.ProcessedDir,
		MoveProcessedFiles: deps.Config.MoveProcessedFiles,
	}
}

// Ingest runs the statement import over the configured directories.
func (s *Sink) Ingest(ctx context.Context) error {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Starting statement import")

	if _, err := os.Stat(s.ImportDir); err != nil {
		logger.ErrorContext(
			ctx,
			"The import directory does not exist. Please create it and place your CSV statements inside.",
			"dir", s.ImportDir,
			"error", err,
		)
		return fmt.Errorf("stat check for directory %s: %w", s.ImportDir, err)
	}

	stats, err := ImportCSVFiles(ctx, s.deps.Store, s.deps.Parser, s.ImportDir, s.ProcessedDir, s.MoveProcessedFiles)
	if err != nil {
		logger.ErrorContext(ctx, "Error importing CSV statements", "error", err)
		return fmt.Errorf("import of CSV statements failed: %w", err)
	}

	logger.InfoContext(ctx, "Statement import completed successfully.")
	stats.Log(logger)

	return nil
}

// ImportCSVFiles parses every CSV statement in importDir and bulk-inserts
// the resulting manual ledger entries.
func ImportCSVFiles(
	ctx context.Context,
	store TransactionCreator,
	parser csvimport.Parser,
	importDir string,
	processedDir string,
	moveProcessedFiles bool,
) (*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Reading statements from import directory", "dir", importDir)

	files, err := os.ReadDir(importDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	stats := NewStats()
	stats.TotalFiles = len(files)

	for _, file := range files {
		if !validateFile(file) {
			reason := "Not a valid CSV file"
			stats.AddFailure(file.Name(), reason)
			logger.WarnContext(ctx, "file was not processed", "fileName", file.Name(), "reason", reason)
			continue
		}
		imported, err := processFile(ctx, store, parser, file, importDir, processedDir, moveProcessedFiles)
		if err != nil {
			stats.AddFailure(file.Name(), err.Error())
			logger.ErrorContext(ctx, "failed to process file", "file", file.Name(), "error", err)
		} else {
			stats.AddProcessed(imported)
		}
	}

	return stats, nil
}

// Return true only if the entry pointed to by FILE is valid.
func validateFile(file os.DirEntry) bool {
	if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".csv") {
		return false
	}
	return true
}

// Process one statement file: parse, map to manual ledger entries, insert.
func processFile(
	ctx context.Context,
	store TransactionCreator,
	parser csvimport.Parser,
	file os.DirEntry,
	importDir string,
	processedDir string,
	moveProcessedFiles bool,
) (int, error) {
	cleanFileName := filepath.Clean(file.Name())
	if strings.HasPrefix(cleanFileName, "../") {
		return 0, csvimport.ValidFileNotFoundError(file.Name())
	}

	filePath := filepath.Join(importDir, cleanFileName)
	rows, err := parser.Parse(ctx, filePath)
	if err != nil {
		return 0, err
	}

	transactions := mapRowsToTransactions(ctx, rows)
	if len(transactions) == 0 {
		return 0, nil
	}

	imported, err := store.CreateMany(ctx, transactions)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create transactions: %w", err)
	}

	if moveProcessedFiles {
		if err := moveFile(filePath, processedDir); err != nil {
			return imported, fmt.Errorf("failed to move file: %w", err)
		}
	}

	return imported, nil
}

// mapRowsToTransactions converts parsed statement rows into manual ledger
// entries, skipping rows whose type is not a known movement kind.
func mapRowsToTransactions(ctx context.Context, rows []csvimport.Row) []model.Transaction {
	logger := appcontext.LoggerFromContext(ctx)
	var transactions []model.Transaction

	for _, row := range rows {
		txType := model.Type(strings.ToLower(row.Type))
		if !txType.Valid() {
			logger.WarnContext(ctx, "Skipping row with unrecognized transaction type", "type", row.Type)
			continue
		}

		transactions = append(transactions, model.Transaction{
			Type:            txType,
			Category:        row.Category,
			AmountInUSD:     row.Amount,
			TransactionDate: row.Date,
			Source:          model.SourceManual,
			Note:            row.Note,
		})
	}

	return transactions
}

func moveFile(filePath, processedDir string) error {
	var err error
	if _, err = os.Stat(processedDir); os.IsNotExist(err) {
		if err = os.MkdirAll(processedDir, 0o750); err != nil {
			return fmt.Errorf("failed to create processed directory '%s': %w", processedDir, err)
		}
	}

	fileName := filepath.Base(filePath)
	newPath := filepath.Join(processedDir, fileName)
	if err = os.Rename(filePath, newPath); err != nil {
		return fmt.Errorf("failed to move file '%s' to '%s': %w", filePath, newPath, err)
	}

	return nil
}

package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meridian/adminledger/config"
	"meridian/adminledger/csvimport"
	"meridian/adminledger/ingest"
	"meridian/adminledger/ledger/model"
)

type mockParser struct {
	ParseFunc func(ctx context.Context, filePath string) ([]csvimport.Row, error)
}

func (m *mockParser) Parse(ctx context.Context, filePath string) ([]csvimport.Row, error) {
	return m.ParseFunc(ctx, filePath)
}

type mockCreator struct {
	created [][]model.Transaction
	err     error
}

func (m *mockCreator) CreateMany(_ context.Context, txs []model.Transaction) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.created = append(m.created, txs)
	return len(txs), nil
}

func writeStatement(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("Date,Type,Category,Amount,Note\n"), 0o644); err != nil {
		t.Fatalf("failed to write statement file: %v", err)
	}
}

func fixedRows(n int) []csvimport.Row {
	rows := make([]csvimport.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, csvimport.Row{
			Date:     time.Date(2025, time.January, i+1, 0, 0, 0, 0, time.UTC),
			Type:     "expense",
			Category: "rent",
			Amount:   -100,
		})
	}
	return rows
}

func TestImportCSVFiles_CountsProcessedFiles(t *testing.T) {
	importDir := t.TempDir()
	writeStatement(t, importDir, "jan.csv")
	writeStatement(t, importDir, "feb.csv")
	writeStatement(t, importDir, "notes.txt")

	creator := &mockCreator{}
	parser := &mockParser{
		ParseFunc: func(context.Context, string) ([]csvimport.Row, error) {
			return fixedRows(3), nil
		},
	}

	stats, err := ingest.ImportCSVFiles(context.Background(), creator, parser, importDir, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Errorf("expected 3 total files, got %d", stats.TotalFiles)
	}
	if stats.ProcessedFiles != 2 {
		t.Errorf("expected 2 processed files, got %d", stats.ProcessedFiles)
	}
	if stats.FailedFiles != 1 {
		t.Errorf("expected the txt file to be skipped, got %d failures", stats.FailedFiles)
	}
	if stats.ImportedEntries != 6 {
		t.Errorf("expected 6 imported entries, got %d", stats.ImportedEntries)
	}
	if len(creator.created) != 2 {
		t.Errorf("expected 2 bulk inserts, got %d", len(creator.created))
	}
}

func TestImportCSVFiles_SkipsUnknownRowTypes(t *testing.T) {
	importDir := t.TempDir()
	writeStatement(t, importDir, "jan.csv")

	creator := &mockCreator{}
	parser := &mockParser{
		ParseFunc: func(context.Context, string) ([]csvimport.Row, error) {
			return []csvimport.Row{
				{Date: time.Now(), Type: "income", Amount: 10},
				{Date: time.Now(), Type: "refund", Amount: 5},
			}, nil
		},
	}

	stats, err := ingest.ImportCSVFiles(context.Background(), creator, parser, importDir, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ImportedEntries != 1 {
		t.Errorf("expected only the income row to import, got %d", stats.ImportedEntries)
	}
	if len(creator.created) != 1 || len(creator.created[0]) != 1 {
		t.Fatalf("unexpected inserts: %+v", creator.created)
	}
	entry := creator.created[0][0]
	if entry.Type != model.TypeIncome || entry.Source != model.SourceManual {
		t.Errorf("unexpected mapped entry: %+v", entry)
	}
}

func TestImportCSVFiles_RecordsParseFailures(t *testing.T) {
	importDir := t.TempDir()
	writeStatement(t, importDir, "broken.csv")

	creator := &mockCreator{}
	parser := &mockParser{
		ParseFunc: func(context.Context, string) ([]csvimport.Row, error) {
			return nil, errors.New("unreadable statement")
		},
	}

	stats, err := ingest.ImportCSVFiles(context.Background(), creator, parser, importDir, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FailedFiles != 1 {
		t.Errorf("expected 1 failed file, got %d", stats.FailedFiles)
	}
	if reason, ok := stats.Failures["broken.csv"]; !ok || reason != "unreadable statement" {
		t.Errorf("unexpected failure record: %+v", stats.Failures)
	}
}

func TestImportCSVFiles_MovesProcessedFiles(t *testing.T) {
	importDir := t.TempDir()
	processedDir := filepath.Join(t.TempDir(), "processed")
	writeStatement(t, importDir, "jan.csv")

	creator := &mockCreator{}
	parser := &mockParser{
		ParseFunc: func(context.Context, string) ([]csvimport.Row, error) {
			return fixedRows(1), nil
		},
	}

	if _, err := ingest.ImportCSVFiles(context.Background(), creator, parser, importDir, processedDir, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(processedDir, "jan.csv")); err != nil {
		t.Errorf("expected statement moved to processed dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(importDir, "jan.csv")); !os.IsNotExist(err) {
		t.Errorf("expected statement removed from import dir, stat err: %v", err)
	}
}

func TestIngest_MissingImportDir(t *testing.T) {
	cfg := &config.Config{ImportDir: filepath.Join(t.TempDir(), "does-not-exist")}
	sink := ingest.NewSink(ingest.SinkDependencies{
		Config: cfg,
		Store:  &mockCreator{},
		Parser: &mockParser{ParseFunc: func(context.Context, string) ([]csvimport.Row, error) { return nil, nil }},
	})

	if err := sink.Ingest(context.Background()); err == nil {
		t.Error("expected an error for a missing import directory")
	}
}

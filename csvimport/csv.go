// Package csvimport parses CSV statements of manually recorded ledger
// entries for bulk import.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"meridian/adminledger/appcontext"
)

// DateLayout is the expected format of the date column.
const DateLayout = "2006-01-02"

// Row is a single parsed statement line.
type Row struct {
	Date     time.Time
	Type     string
	Category string
	Amount   float64
	Note     string
}

var errTargetFileNotFound = errors.New("the target csv file was not found")
var errProcessCsv = errors.New("error while parsing CSV file")

// ValidFileNotFoundError reports a statement path outside the import directory.
func ValidFileNotFoundError(path string) error {
	return fmt.Errorf("%w, %s", errTargetFileNotFound, path)
}

// ProcessCsvError wraps a parse failure with the offending file name.
func ProcessCsvError(filename string) error {
	return fmt.Errorf("%s, %w", filename, errProcessCsv)
}

// Parser defines the interface for parsing ledger statement files.
type Parser interface {
	Parse(ctx context.Context, filePath string) ([]Row, error)
}

// FileParser parses statements from the local filesystem.
type FileParser struct{}

// NewParser creates a FileParser.
func NewParser() *FileParser {
	return &FileParser{}
}

// Parse reads a CSV statement and returns its valid rows. Rows with missing
// or malformed date, type, or amount columns are skipped and logged rather
// than failing the whole file.
func (p *FileParser) Parse(ctx context.Context, filePath string) ([]Row, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Parsing ledger statement", "filePath", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.Comma = ','

	// Read header and create column index map
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil // Handle empty file gracefully
		}
		return nil, fmt.Errorf("failed to read CSV header from file %s: %w", filePath, err)
	}
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"date", "type", "amount"} {
		if _, ok := colIndex[required]; !ok {
			logger.WarnContext(ctx, "Rejecting statement with missing required column",
				"column", required, "file", filePath)
			return nil, ProcessCsvError(filePath)
		}
	}

	var rows []Row
	for {
		record, readErr := reader.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read record from CSV in file %s: %w", filePath, readErr)
		}

		if len(record) < len(header) {
			logger.WarnContext(ctx, "Skipping invalid record", "reason", "not enough columns", "file", filePath)
			continue
		}

		dateStr := safeGet(record, colIndex["date"])
		if dateStr == "" {
			logger.WarnContext(ctx, "Skipping record with empty date", "file", filePath)
			continue
		}
		date, parseErr := time.Parse(DateLayout, dateStr)
		if parseErr != nil {
			logger.WarnContext(ctx, "Skipping record with invalid date format",
				"date", dateStr, "error", parseErr)
			continue
		}

		typeStr := safeGet(record, colIndex["type"])
		if typeStr == "" {
			logger.WarnContext(ctx, "Skipping record with empty type", "file", filePath)
			continue
		}

		amountStr := safeGet(record, colIndex["amount"])
		amount, convErr := strconv.ParseFloat(amountStr, 64)
		if convErr != nil {
			logger.WarnContext(ctx, "Skipping record with invalid amount format",
				"value", amountStr, "error", convErr)
			continue
		}

		rows = append(rows, Row{
			Date:     date,
			Type:     typeStr,
			Category: safeGet(record, colIndex["category"]),
			Amount:   amount,
			Note:     safeGet(record, colIndex["note"]),
		})
	}

	return rows, nil
}

// safeGet retrieves slice[index] safely.
func safeGet(slice []string, index int) string {
	if index < len(slice) {
		return slice[index]
	}

	return ""
}

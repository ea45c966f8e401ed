package synthetic

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"meridian/adminledger/csvimport"
)

var sampleCategories = []string{"tuition", "subscriptions", "rent", "utilities", "marketing", "payroll"}
var sampleTypes = []string{"income", "expense", "adjustment"}

// GenerateSampleStatement creates a CSV statement with plausible ledger rows
// for exercising the import path.
func GenerateSampleStatement(rows int, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	filePath := filepath.Join(dir, "sample-statement.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"Date", "Type", "Category", "Amount", "Note"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write data rows
	for i := 0; i < rows; i++ {
		txType := sampleTypes[rand.Intn(len(sampleTypes))]
		amount := rand.Float64() * 1000
		if txType == "expense" {
			// Expense amounts are conventionally stored negative.
			amount = -amount
		}
		date := time.Now().AddDate(0, 0, -rand.Intn(365))
		row := []string{
			date.Format(csvimport.DateLayout),
			txType,
			sampleCategories[rand.Intn(len(sampleCategories))],
			fmt.Sprintf("%.2f", amount),
			fmt.Sprintf("Sample entry %d", i),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

package ledger

import (
	"fmt"
	"log/slog"
)

// Summary holds the single-pass financial aggregate. A filter matching no
// transactions yields the zero value, not an error.
type Summary struct {
	TotalIncomeUSD     float64 `json:"totalIncomeUSD"`
	TotalExpenseUSD    float64 `json:"totalExpenseUSD"`
	TotalAdjustmentUSD float64 `json:"totalAdjustmentUSD"`
	BalanceUSD         float64 `json:"balanceUSD"`
	IncomeCount        int64   `json:"incomeCount"`
	ExpenseCount       int64   `json:"expenseCount"`
	AdjustmentCount    int64   `json:"adjustmentCount"`
	TransactionCount   int64   `json:"transactionCount"`
}

// Log prints the summary to the provided logger.
func (s Summary) Log(logger *slog.Logger) {
	logger.Info("--- Financial Summary ---")
	logger.Info(fmt.Sprintf("Income:      %12.2f USD (%d entries)", s.TotalIncomeUSD, s.IncomeCount))
	logger.Info(fmt.Sprintf("Expense:     %12.2f USD (%d entries)", s.TotalExpenseUSD, s.ExpenseCount))
	logger.Info(fmt.Sprintf("Adjustment:  %12.2f USD (%d entries)", s.TotalAdjustmentUSD, s.AdjustmentCount))
	logger.Info(fmt.Sprintf("Balance:     %12.2f USD", s.BalanceUSD))
	logger.Info(fmt.Sprintf("Transactions: %d", s.TransactionCount))
	logger.Info("-------------------------")
}

// MonthTotals is the income/expense/net aggregate for one calendar month.
type MonthTotals struct {
	Month      int     `json:"month"`
	IncomeUSD  float64 `json:"incomeUSD"`
	ExpenseUSD float64 `json:"expenseUSD"`
	NetUSD     float64 `json:"netUSD"`
}

// CategoryTotals is the magnitude total and count for one category.
type CategoryTotals struct {
	Category string  `json:"category"`
	TotalUSD float64 `json:"totalUSD"`
	Count    int64   `json:"count"`
}

package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"meridian/adminledger/appcontext"
	"meridian/adminledger/collection"
	"meridian/adminledger/ledger/model"
	"meridian/adminledger/records"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// Engine computes financial aggregates over the non-deleted ledger view and
// posts idempotent entries from payment-completion events. Grouping and
// rounding happen in process as explicit reductions rather than store-side
// pipelines, so the contract holds against any backing driver.
type Engine struct {
	store *Store
}

// NewEngine creates an Engine over the given store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// PaymentCompleted is the event consumed by PostPayment. AmountUSD is the
// precomputed USD amount supplied by the payment pipeline.
type PaymentCompleted struct {
	PaymentID string
	AmountUSD float64
	Category  string
}

// FinancialSummary is a single-pass aggregate over matching transactions.
// Expense totals are magnitudes regardless of the stored sign, and every
// monetary field is rounded to two decimals.
func (e *Engine) FinancialSummary(ctx context.Context, filter bson.M) (Summary, error) {
	txs, err := e.store.All(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load transactions for summary: %w", err)
	}

	var income, expense, adjustment decimal.Decimal
	var summary Summary
	for _, t := range txs {
		amount := decimal.NewFromFloat(t.AmountInUSD)
		switch t.Type {
		case model.TypeIncome:
			income = income.Add(amount)
			summary.IncomeCount++
		case model.TypeExpense:
			expense = expense.Add(amount.Abs())
			summary.ExpenseCount++
		case model.TypeAdjustment:
			adjustment = adjustment.Add(amount)
			summary.AdjustmentCount++
		}
		summary.TransactionCount++
	}

	summary.TotalIncomeUSD = roundUSD(income)
	summary.TotalExpenseUSD = roundUSD(expense)
	summary.TotalAdjustmentUSD = roundUSD(adjustment)

	// The balance derives from the reported totals, not the raw sums, so the
	// fields of one summary never contradict each other.
	summary.BalanceUSD = roundUSD(decimal.NewFromFloat(summary.TotalIncomeUSD).
		Add(decimal.NewFromFloat(summary.TotalAdjustmentUSD)).
		Sub(decimal.NewFromFloat(summary.TotalExpenseUSD)))
	return summary, nil
}

// MonthlyBreakdown groups income and expense totals by calendar month of the
// given year. Months without matching transactions are absent; the result is
// ordered ascending by month. Adjustment entries are not part of this view.
func (e *Engine) MonthlyBreakdown(ctx context.Context, year int, filter bson.M) ([]MonthTotals, error) {
	if year < 1 || year > 9999 {
		return nil, collection.InvalidArgumentError(fmt.Sprintf("year %d is out of range", year))
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	scoped := records.Merge(
		filter,
		records.Between("transactionDate", start, start.AddDate(1, 0, 0)),
		bson.M{"type": bson.M{"$in": []model.Type{model.TypeIncome, model.TypeExpense}}},
	)

	txs, err := e.store.All(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for monthly breakdown: %w", err)
	}

	income := make(map[int]decimal.Decimal)
	expense := make(map[int]decimal.Decimal)
	for _, t := range txs {
		month := int(t.TransactionDate.UTC().Month())
		amount := decimal.NewFromFloat(t.AmountInUSD)
		switch t.Type {
		case model.TypeIncome:
			income[month] = income[month].Add(amount)
		case model.TypeExpense:
			expense[month] = expense[month].Add(amount.Abs())
		}
	}

	months := make([]MonthTotals, 0, len(income)+len(expense))
	for month := 1; month <= 12; month++ {
		in, hasIncome := income[month]
		out, hasExpense := expense[month]
		if !hasIncome && !hasExpense {
			continue
		}
		months = append(months, MonthTotals{
			Month:      month,
			IncomeUSD:  roundUSD(in),
			ExpenseUSD: roundUSD(out),
			NetUSD:     roundUSD(in.Sub(out)),
		})
	}
	return months, nil
}

// CategoryBreakdown groups magnitude totals and counts by category, optionally
// restricted to one transaction type. The result is ordered descending by
// total; equal totals fall back to ascending category name so the order is
// stable.
func (e *Engine) CategoryBreakdown(ctx context.Context, typ model.Type, filter bson.M) ([]CategoryTotals, error) {
	scoped := filter
	if typ != "" {
		if !typ.Valid() {
			return nil, collection.InvalidArgumentError(fmt.Sprintf("unrecognized transaction type %q", typ))
		}
		scoped = records.Merge(filter, bson.M{"type": typ})
	}

	txs, err := e.store.All(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for category breakdown: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, t := range txs {
		totals[t.Category] = totals[t.Category].Add(decimal.NewFromFloat(t.AmountInUSD).Abs())
		counts[t.Category]++
	}

	categories := make([]CategoryTotals, 0, len(totals))
	for category, total := range totals {
		categories = append(categories, CategoryTotals{
			Category: category,
			TotalUSD: roundUSD(total),
			Count:    counts[category],
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].TotalUSD != categories[j].TotalUSD {
			return categories[i].TotalUSD > categories[j].TotalUSD
		}
		return categories[i].Category < categories[j].Category
	})
	return categories, nil
}

// PostPayment creates the ledger entry for a completed payment exactly once.
// A duplicate delivery of the same completion event is a logged no-op, not an
// error. The check-then-create pair is not atomic against concurrent
// duplicate deliveries; the authoritative fix is a uniqueness index on
// (reference.id, source) at the storage layer, which is not enforced yet.
func (e *Engine) PostPayment(ctx context.Context, event PaymentCompleted) (bool, error) {
	logger := appcontext.LoggerFromContext(ctx)

	if event.PaymentID == "" {
		return false, collection.InvalidArgumentError("payment id is empty")
	}

	exists, err := e.store.HasAutoEntry(ctx, event.PaymentID)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing auto entry: %w", err)
	}
	if exists {
		logger.InfoContext(ctx, "Ledger entry already posted for payment, skipping",
			"paymentID", event.PaymentID)
		return false, nil
	}

	entry := model.Transaction{
		Type:            model.TypeIncome,
		Category:        event.Category,
		AmountInUSD:     event.AmountUSD,
		TransactionDate: e.store.now(),
		Reference:       &model.Reference{ID: event.PaymentID, Type: model.ReferenceTypePayment},
		Source:          model.SourcePaymentAuto,
	}
	if _, err := e.store.Create(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to post ledger entry for payment %s: %w", event.PaymentID, err)
	}

	logger.InfoContext(ctx, "Posted ledger entry for completed payment",
		"paymentID", event.PaymentID, "amountUSD", event.AmountUSD, "category", event.Category)
	return true, nil
}

// TypeFromString converts a caller-supplied string into a transaction type.
// The empty string means "no type restriction"; validation happens where the
// type is consumed.
func TypeFromString(s string) model.Type {
	return model.Type(strings.ToLower(strings.TrimSpace(s)))
}

// roundUSD rounds to two decimals, half up.
func roundUSD(d decimal.Decimal) float64 {
	rounded, _ := d.Round(2).Float64()
	return rounded
}

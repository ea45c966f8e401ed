// Package model holds the persisted shapes of the ledger collection.
package model

import "time"

// Type classifies a monetary movement.
type Type string

const (
	TypeIncome     Type = "income"
	TypeExpense    Type = "expense"
	TypeAdjustment Type = "adjustment"
)

// Valid reports whether the type is one of the known movement kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeAdjustment:
		return true
	}
	return false
}

// Source records how a transaction entered the ledger.
type Source string

const (
	// SourceManual marks entries created by an administrative action.
	SourceManual Source = "manual"
	// SourcePaymentAuto marks entries posted automatically from a completed
	// external payment. At most one non-deleted entry with this source may
	// exist per distinct reference id.
	SourcePaymentAuto Source = "payment_auto"
)

// ReferenceTypePayment links an auto-generated entry to its payment.
const ReferenceTypePayment = "payment"

// Reference links a transaction to an external record.
type Reference struct {
	ID   string `bson:"id" json:"id"`
	Type string `bson:"type" json:"type"`
}

// Transaction is a single ledger entry. Expense amounts are conventionally
// stored negative but treated as magnitudes in aggregates. A transaction is
// mutated only by soft delete, which is terminal; it is never physically
// removed.
type Transaction struct {
	ID              string     `bson:"_id" json:"id"`
	Type            Type       `bson:"type" json:"type"`
	Category        string     `bson:"category" json:"category"`
	AmountInUSD     float64    `bson:"amountInUSD" json:"amountInUSD"`
	TransactionDate time.Time  `bson:"transactionDate" json:"transactionDate"`
	Reference       *Reference `bson:"reference,omitempty" json:"reference,omitempty"`
	Source          Source     `bson:"source" json:"source"`
	IsDeleted       bool       `bson:"isDeleted" json:"isDeleted"`
	DeletedAt       *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy       string     `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	Note            string     `bson:"note,omitempty" json:"note,omitempty"`
}

// Package ledger aggregates monetary transactions into summaries and posts
// idempotent auto-generated entries from completed payments.
package ledger

import (
	"context"
	"fmt"
	"time"

	"meridian/adminledger/collection"
	"meridian/adminledger/ledger/model"
	"meridian/adminledger/records"
	"meridian/adminledger/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// TransactionsCollection is the name of the ledger collection.
const TransactionsCollection = "transactions"

// notDeleted is the permanent view predicate applied to every read path.
// There is no undelete, so no caller ever needs to see past it.
func notDeleted() bson.M {
	return bson.M{"isDeleted": bson.M{"$ne": true}}
}

// Store is the transaction access layer. Soft-deleted entries are invisible
// through every method except SoftDelete itself.
type Store struct {
	access *records.Access[model.Transaction]
	now    func() time.Time
	newID  func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used for created/deleted timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the id generator used for new entries.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates a Store over the transactions collection of the provider.
func NewStore(provider storage.CollectionProvider, opts ...StoreOption) *Store {
	col := collection.New[model.Transaction](provider.Collection(TransactionsCollection))
	s := &Store{
		access: records.New(col, notDeleted()),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of non-deleted transactions matching the filter.
func (s *Store) List(
	ctx context.Context,
	filter bson.M,
	page collection.PageRequest,
	opts ...collection.QueryOption,
) (collection.PageResult[model.Transaction], error) {
	return s.access.List(ctx, filter, page, opts...)
}

// All returns every non-deleted transaction matching the filter.
func (s *Store) All(ctx context.Context, filter bson.M, opts ...collection.QueryOption) ([]model.Transaction, error) {
	return s.access.All(ctx, filter, opts...)
}

// GetByID returns the non-deleted transaction with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (model.Transaction, error) {
	return s.access.GetByID(ctx, id)
}

// Create inserts a transaction, minting an id and creation timestamp when
// the caller left them zero. Entries without a source default to manual.
func (s *Store) Create(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	s.fill(&t)
	return s.access.Create(ctx, t)
}

// CreateMany bulk-inserts transactions, filling ids and timestamps the same
// way Create does, and returns the inserted count.
func (s *Store) CreateMany(ctx context.Context, txs []model.Transaction) (int, error) {
	for i := range txs {
		s.fill(&txs[i])
	}
	return s.access.CreateMany(ctx, txs)
}

// Update patches a non-deleted transaction and returns the updated record.
// Amount and category edits are opaque pass-throughs.
func (s *Store) Update(ctx context.Context, id string, patch bson.M) (model.Transaction, error) {
	return s.access.Update(ctx, id, patch)
}

// Count returns the number of non-deleted transactions matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.access.Count(ctx, filter)
}

// SoftDelete marks the transaction deleted and stamps the deleting actor.
// The transition is terminal; a second call reports ErrNotFound because the
// entry is no longer visible.
func (s *Store) SoftDelete(ctx context.Context, id string, actorID string) error {
	patch := bson.M{
		"isDeleted": true,
		"deletedAt": s.now(),
		"deletedBy": actorID,
	}
	if _, err := s.access.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to soft delete transaction %s: %w", id, err)
	}
	return nil
}

// HasAutoEntry reports whether a non-deleted auto-generated entry already
// references the given payment. This is the idempotency guard consumed by
// the aggregation engine.
func (s *Store) HasAutoEntry(ctx context.Context, paymentID string) (bool, error) {
	return s.access.Exists(ctx, bson.M{
		"source":       model.SourcePaymentAuto,
		"reference.id": paymentID,
	})
}

func (s *Store) fill(t *model.Transaction) {
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.Source == "" {
		t.Source = model.SourceManual
	}
}

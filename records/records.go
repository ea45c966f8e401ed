// Package records layers entity-specific filters on top of the generic
// collection contract without altering its pagination semantics.
package records

import (
	"context"
	"time"

	"meridian/adminledger/collection"

	"go.mongodb.org/mongo-driver/bson"
)

// Access wraps a Collection with a permanent base filter merged into every
// read and write path. Callers cannot observe records outside the base
// filter through this type.
type Access[T any] struct {
	col  *collection.Collection[T]
	base bson.M
	now  func() time.Time
}

// Option configures an Access.
type Option[T any] func(*Access[T])

// WithClock overrides the clock used for completion stamping.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(a *Access[T]) {
		a.now = now
	}
}

// New creates an Access scoped to the given base filter. A nil base filter
// leaves the collection unrestricted.
func New[T any](col *collection.Collection[T], base bson.M, opts ...Option[T]) *Access[T] {
	a := &Access[T]{
		col:  col,
		base: base,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// scope merges the base filter into the caller's filter. The base filter is
// merged last so a caller filter keyed on the same field cannot widen the
// scoped view.
func (a *Access[T]) scope(filter bson.M) bson.M {
	if a.base == nil {
		if filter == nil {
			return bson.M{}
		}
		return filter
	}
	return Merge(filter, a.base)
}

// List returns one page of records inside the scoped view.
func (a *Access[T]) List(
	ctx context.Context,
	filter bson.M,
	page collection.PageRequest,
	opts ...collection.QueryOption,
) (collection.PageResult[T], error) {
	return a.col.List(ctx, a.scope(filter), page, opts...)
}

// All returns every record inside the scoped view matching the filter.
func (a *Access[T]) All(ctx context.Context, filter bson.M, opts ...collection.QueryOption) ([]T, error) {
	return a.col.All(ctx, a.scope(filter), opts...)
}

// GetByID returns the record with the given id when it is inside the scoped
// view, collection.ErrNotFound otherwise.
func (a *Access[T]) GetByID(ctx context.Context, id string, opts ...collection.QueryOption) (T, error) {
	return a.col.GetOne(ctx, a.scope(bson.M{"_id": id}), opts...)
}

// GetOne returns the first record inside the scoped view matching the filter.
func (a *Access[T]) GetOne(ctx context.Context, filter bson.M, opts ...collection.QueryOption) (T, error) {
	return a.col.GetOne(ctx, a.scope(filter), opts...)
}

// Create inserts the record and returns it.
func (a *Access[T]) Create(ctx context.Context, doc T) (T, error) {
	return a.col.Create(ctx, doc)
}

// CreateMany bulk-inserts the records and returns the inserted count.
func (a *Access[T]) CreateMany(ctx context.Context, docs []T) (int, error) {
	return a.col.CreateMany(ctx, docs)
}

// Update patches the record with the given id when it is inside the scoped
// view and returns the updated record.
func (a *Access[T]) Update(ctx context.Context, id string, patch bson.M) (T, error) {
	return a.col.UpdateMatching(ctx, a.scope(bson.M{"_id": id}), patch)
}

// Delete physically removes the record with the given id when it is inside
// the scoped view.
func (a *Access[T]) Delete(ctx context.Context, id string) error {
	return a.col.DeleteMatching(ctx, a.scope(bson.M{"_id": id}))
}

// Exists reports whether any record inside the scoped view matches the filter.
func (a *Access[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	return a.col.Exists(ctx, a.scope(filter))
}

// Count returns the number of records inside the scoped view matching the filter.
func (a *Access[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return a.col.Count(ctx, a.scope(filter))
}

// BulkUpdate patches every record inside the scoped view matching the filter.
func (a *Access[T]) BulkUpdate(ctx context.Context, filter bson.M, patch bson.M) (int64, error) {
	return a.col.BulkUpdate(ctx, a.scope(filter), patch)
}

// TransitionStatus moves the record to the given status. Entering
// StatusCompleted also stamps completedAt with the access clock; task-like
// collections rely on that stamp.
func (a *Access[T]) TransitionStatus(ctx context.Context, id string, status string) (T, error) {
	patch := bson.M{"status": status}
	if status == StatusCompleted {
		patch["completedAt"] = a.now()
	}
	return a.Update(ctx, id, patch)
}

// MarkCompleted moves the record to StatusCompleted.
func (a *Access[T]) MarkCompleted(ctx context.Context, id string) (T, error) {
	return a.TransitionStatus(ctx, id, StatusCompleted)
}

// Package collection provides a generic, safely paginated data-access
// contract shared by every record collection in the admin platform.
package collection

import (
	"context"
	"errors"
	"fmt"

	"meridian/adminledger/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// PopulateFunc expands a reference field in place over a page of records.
type PopulateFunc[T any] func(ctx context.Context, items []T) error

// Collection is a type-parameterized access layer over a single record
// collection. It is composed, not extended: entity-specific layers wrap it
// with their own filters rather than inheriting from it.
type Collection[T any] struct {
	store      storage.DataStore
	populators map[string]PopulateFunc[T]
}

// New creates a Collection backed by the given data store.
func New[T any](store storage.DataStore) *Collection[T] {
	return &Collection[T]{
		store:      store,
		populators: make(map[string]PopulateFunc[T]),
	}
}

// RegisterPopulate installs the resolver used by WithPopulate for a field.
func (c *Collection[T]) RegisterPopulate(field string, fn PopulateFunc[T]) {
	c.populators[field] = fn
}

// List returns one page of records matching the filter, together with
// pagination metadata. The page query and the total count run concurrently;
// under concurrent writes the page and the total may disagree by the net
// writes during the request window.
func (c *Collection[T]) List(
	ctx context.Context,
	filter bson.M,
	page PageRequest,
	opts ...QueryOption,
) (PageResult[T], error) {
	var zero PageResult[T]

	page, err := page.normalize()
	if err != nil {
		return zero, err
	}
	cfg := resolveOptions(opts)
	if filter == nil {
		filter = bson.M{}
	}

	findOpts := options.Find().
		SetSkip(int64(page.Page-1) * int64(page.PageSize)).
		SetLimit(int64(page.PageSize))
	if cfg.sort != nil {
		findOpts.SetSort(cfg.sort)
	}
	if cfg.projection != nil {
		findOpts.SetProjection(cfg.projection)
	}

	var items []T
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cursor, findErr := c.store.Find(gctx, filter, findOpts)
		if findErr != nil {
			return findErr
		}
		return cursor.All(gctx, &items)
	})
	g.Go(func() error {
		count, countErr := c.store.CountDocuments(gctx, filter)
		total = count
		return countErr
	})
	if err := g.Wait(); err != nil {
		return zero, fmt.Errorf("failed to list records: %w", err)
	}

	if err := c.runPopulators(ctx, cfg.populate, items); err != nil {
		return zero, err
	}

	return PageResult[T]{Items: items, PageMeta: newPageMeta(page, total)}, nil
}

// All returns every record matching the filter, without pagination. The
// aggregation engine uses it to group-and-reduce in process.
func (c *Collection[T]) All(
	ctx context.Context,
	filter bson.M,
	opts ...QueryOption,
) ([]T, error) {
	cfg := resolveOptions(opts)
	if filter == nil {
		filter = bson.M{}
	}

	findOpts := options.Find()
	if cfg.sort != nil {
		findOpts.SetSort(cfg.sort)
	}
	if cfg.projection != nil {
		findOpts.SetProjection(cfg.projection)
	}

	cursor, err := c.store.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	var items []T
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	if err := c.runPopulators(ctx, cfg.populate, items); err != nil {
		return nil, err
	}

	return items, nil
}

// GetByID returns the record with the given id or ErrNotFound.
func (c *Collection[T]) GetByID(ctx context.Context, id string, opts ...QueryOption) (T, error) {
	item, err := c.GetOne(ctx, bson.M{"_id": id}, opts...)
	if errors.Is(err, ErrNotFound) {
		return item, NotFoundError(id)
	}
	return item, err
}

// GetOne returns the first record matching the filter or ErrNotFound.
func (c *Collection[T]) GetOne(ctx context.Context, filter bson.M, opts ...QueryOption) (T, error) {
	var item T

	cfg := resolveOptions(opts)
	findOpts := options.FindOne()
	if cfg.sort != nil {
		findOpts.SetSort(cfg.sort)
	}
	if cfg.projection != nil {
		findOpts.SetProjection(cfg.projection)
	}

	err := c.store.FindOne(ctx, filter, findOpts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return item, ErrNotFound
		}
		return item, fmt.Errorf("failed to get record: %w", err)
	}

	if len(cfg.populate) > 0 {
		expanded := []T{item}
		if err := c.runPopulators(ctx, cfg.populate, expanded); err != nil {
			return item, err
		}
		item = expanded[0]
	}

	return item, nil
}

// Create inserts the record and returns it.
func (c *Collection[T]) Create(ctx context.Context, doc T) (T, error) {
	if _, err := c.store.InsertOne(ctx, doc); err != nil {
		return doc, fmt.Errorf("failed to create record: %w", err)
	}
	return doc, nil
}

// CreateMany bulk-inserts the records and returns the inserted count.
func (c *Collection[T]) CreateMany(ctx context.Context, docs []T) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	documents := make([]interface{}, len(docs))
	for i, doc := range docs {
		documents[i] = doc
	}

	result, err := c.store.InsertMany(ctx, documents)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create records: %w", err)
	}
	return len(result.InsertedIDs), nil
}

// Update applies the patch to the record with the given id and returns the
// updated record, or ErrNotFound when no record matches.
func (c *Collection[T]) Update(ctx context.Context, id string, patch bson.M) (T, error) {
	item, err := c.UpdateMatching(ctx, bson.M{"_id": id}, patch)
	if errors.Is(err, ErrNotFound) {
		return item, NotFoundError(id)
	}
	return item, err
}

// UpdateMatching applies the patch to the first record matching the filter
// and returns the updated record. Entity layers use it to keep their scoped
// view intact on write paths.
func (c *Collection[T]) UpdateMatching(ctx context.Context, filter bson.M, patch bson.M) (T, error) {
	var item T

	updateOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.store.FindOneAndUpdate(ctx, filter, bson.M{"$set": patch}, updateOpts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return item, ErrNotFound
		}
		return item, fmt.Errorf("failed to update record: %w", err)
	}

	return item, nil
}

// Delete physically removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.DeleteMatching(ctx, bson.M{"_id": id})
}

// DeleteMatching physically removes the first record matching the filter.
func (c *Collection[T]) DeleteMatching(ctx context.Context, filter bson.M) error {
	result, err := c.store.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether any record matches the filter.
func (c *Collection[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := c.store.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of records matching the filter.
func (c *Collection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	count, err := c.store.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// BulkUpdate applies the patch to every record matching the filter and
// returns the number of modified records.
func (c *Collection[T]) BulkUpdate(ctx context.Context, filter bson.M, patch bson.M) (int64, error) {
	result, err := c.store.UpdateMany(ctx, filter, bson.M{"$set": patch})
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update records: %w", err)
	}
	return result.ModifiedCount, nil
}

func (c *Collection[T]) runPopulators(ctx context.Context, fields []string, items []T) error {
	for _, field := range fields {
		fn, ok := c.populators[field]
		if !ok {
			return InvalidArgumentError(fmt.Sprintf("no populate resolver registered for field %q", field))
		}
		if err := fn(ctx, items); err != nil {
			return fmt.Errorf("failed to populate field %q: %w", field, err)
		}
	}
	return nil
}

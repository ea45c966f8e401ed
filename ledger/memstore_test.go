package ledger_test

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"meridian/adminledger/ledger/model"
	"meridian/adminledger/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memStore is an in-memory DataStore over the transactions collection. It
// understands the handful of filter operators the ledger layers emit, which
// keeps the scenario tests honest about the filters actually sent to the
// driver.
type memStore struct {
	mu   sync.Mutex
	docs []model.Transaction
}

type memProvider struct {
	store *memStore
}

func (p *memProvider) Collection(string) storage.DataStore {
	return p.store
}

type memCursor struct {
	docs []model.Transaction
}

func (c *memCursor) All(_ context.Context, results interface{}) error {
	*(results.(*[]model.Transaction)) = c.docs
	return nil
}

type memSingleResult struct {
	doc *model.Transaction
	err error
}

func (r *memSingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(v.(*model.Transaction)) = *r.doc
	return nil
}

func (r *memSingleResult) Err() error { return r.err }

func (s *memStore) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (storage.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(filter)

	var skip, limit int64 = 0, -1
	for _, opt := range opts {
		if opt.Skip != nil {
			skip = *opt.Skip
		}
		if opt.Limit != nil {
			limit = *opt.Limit
		}
	}
	if skip > int64(len(matched)) {
		skip = int64(len(matched))
	}
	matched = matched[skip:]
	if limit >= 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}

	return &memCursor{docs: matched}, nil
}

func (s *memStore) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) storage.SingleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(filter)
	if len(matched) == 0 {
		return &memSingleResult{err: mongo.ErrNoDocuments}
	}
	doc := matched[0]
	return &memSingleResult{doc: &doc}
}

func (s *memStore) FindOneAndUpdate(_ context.Context, filter, update interface{}, _ ...*options.FindOneAndUpdateOptions) storage.SingleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		if matches(s.docs[i], filter.(bson.M)) {
			applySet(&s.docs[i], update.(bson.M)["$set"].(bson.M))
			doc := s.docs[i]
			return &memSingleResult{doc: &doc}
		}
	}
	return &memSingleResult{err: mongo.ErrNoDocuments}
}

func (s *memStore) CountDocuments(_ context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.match(filter)))
	for _, opt := range opts {
		if opt.Limit != nil && count > *opt.Limit {
			count = *opt.Limit
		}
	}
	return count, nil
}

func (s *memStore) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document.(model.Transaction)
	s.docs = append(s.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc.ID}, nil
}

func (s *memStore) InsertMany(_ context.Context, documents []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]interface{}, 0, len(documents))
	for _, document := range documents {
		doc := document.(model.Transaction)
		s.docs = append(s.docs, doc)
		ids = append(ids, doc.ID)
	}
	return &mongo.InsertManyResult{InsertedIDs: ids}, nil
}

func (s *memStore) UpdateMany(_ context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for i := range s.docs {
		if matches(s.docs[i], filter.(bson.M)) {
			applySet(&s.docs[i], update.(bson.M)["$set"].(bson.M))
			modified++
		}
	}
	return &mongo.UpdateResult{MatchedCount: modified, ModifiedCount: modified}, nil
}

func (s *memStore) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		if matches(s.docs[i], filter.(bson.M)) {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

// raw returns the stored document regardless of its deletion flag.
func (s *memStore) raw(id string) (model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return model.Transaction{}, false
}

func (s *memStore) match(filter interface{}) []model.Transaction {
	f, _ := filter.(bson.M)
	var matched []model.Transaction
	for _, doc := range s.docs {
		if matches(doc, f) {
			matched = append(matched, doc)
		}
	}
	return matched
}

func matches(t model.Transaction, filter bson.M) bool {
	for field, cond := range filter {
		value := fieldValue(t, field)
		switch c := cond.(type) {
		case bson.M:
			for op, arg := range c {
				if !applyOperator(value, op, arg) {
					return false
				}
			}
		default:
			if !equalValues(value, cond) {
				return false
			}
		}
	}
	return true
}

func applyOperator(value interface{}, op string, arg interface{}) bool {
	switch op {
	case "$ne":
		return !equalValues(value, arg)
	case "$in":
		return containsValue(arg, value)
	case "$gte":
		v, okV := value.(time.Time)
		a, okA := arg.(time.Time)
		return okV && okA && !v.Before(a)
	case "$lt":
		v, okV := value.(time.Time)
		a, okA := arg.(time.Time)
		return okV && okA && v.Before(a)
	}
	return false
}

func fieldValue(t model.Transaction, field string) interface{} {
	switch field {
	case "_id":
		return t.ID
	case "type":
		return string(t.Type)
	case "category":
		return t.Category
	case "amountInUSD":
		return t.AmountInUSD
	case "transactionDate":
		return t.TransactionDate
	case "source":
		return string(t.Source)
	case "isDeleted":
		return t.IsDeleted
	case "reference.id":
		if t.Reference == nil {
			return nil
		}
		return t.Reference.ID
	}
	return nil
}

func equalValues(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func containsValue(list, v interface{}) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(rv.Index(i).Interface(), v) {
			return true
		}
	}
	return false
}

func applySet(t *model.Transaction, patch bson.M) {
	for field, value := range patch {
		switch field {
		case "isDeleted":
			t.IsDeleted = value.(bool)
		case "deletedAt":
			at := value.(time.Time)
			t.DeletedAt = &at
		case "deletedBy":
			t.DeletedBy = value.(string)
		case "category":
			t.Category = value.(string)
		case "amountInUSD":
			t.AmountInUSD = value.(float64)
		case "note":
			t.Note = value.(string)
		}
	}
}

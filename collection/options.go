package collection

import "go.mongodb.org/mongo-driver/bson"

// queryConfig collects the optional read modifiers of a query.
type queryConfig struct {
	sort       bson.D
	projection bson.M
	populate   []string
}

// QueryOption modifies a single read operation.
type QueryOption func(*queryConfig)

// WithSort orders the result set by the given sort document.
func WithSort(sort bson.D) QueryOption {
	return func(c *queryConfig) {
		c.sort = sort
	}
}

// WithSelect restricts the returned fields to the given projection.
func WithSelect(projection bson.M) QueryOption {
	return func(c *queryConfig) {
		c.projection = projection
	}
}

// WithPopulate expands a reference field on the returned records. The field
// must have a resolver registered on the collection.
func WithPopulate(field string) QueryOption {
	return func(c *queryConfig) {
		c.populate = append(c.populate, field)
	}
}

func resolveOptions(opts []QueryOption) queryConfig {
	var cfg queryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

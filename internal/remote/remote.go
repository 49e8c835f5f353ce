// Package remote defines the network-backed document store contract.
package remote

import (
	"context"
	"encoding/json"
	"time"
)

// Document is one stored record with its creation metadata.
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Decode unmarshals the document payload into out.
func (d Document) Decode(out any) error {
	return json.Unmarshal(d.Data, out)
}

// Operator is a query comparison operator.
type Operator string

// Query operators.
const (
	OpEqual          Operator = "=="
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
)

// Condition is one field comparison in a query.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Query describes a filtered, ordered, paginated listing.
type Query struct {
	Where      []Condition `json:"where,omitempty"`
	OrderBy    string      `json:"orderBy,omitempty"`
	Descending bool        `json:"descending,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}

// WhereEqual appends an equality condition and returns the query for
// chaining.
func (q Query) WhereEqual(field string, value any) Query {
	q.Where = append(q.Where, Condition{Field: field, Op: OpEqual, Value: value})
	return q
}

// Client is the document store operations the sync layer consumes.
// Individual call timeouts are the implementation's responsibility.
type Client interface {
	Create(ctx context.Context, collection, id string, data any) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, data any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, query Query) ([]Document, error)
}

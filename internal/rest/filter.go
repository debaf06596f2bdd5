package rest

import "encoding/json"

// Filter is one node of a structured query filter: either a leaf condition
// (op, field, value) or an and/or group over child items.
type Filter struct {
	Op    string   `json:"op"`
	Field string   `json:"field,omitempty"`
	Value any      `json:"value,omitempty"`
	Items []Filter `json:"items,omitempty"`
}

// Leaf condition constructors.

// Eq matches records whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{Op: "eq", Field: field, Value: value}
}

// NotEq matches records whose field differs from value.
func NotEq(field string, value any) Filter {
	return Filter{Op: "noteq", Field: field, Value: value}
}

// Gte matches records whose field is greater than or equal to value.
func Gte(field string, value any) Filter {
	return Filter{Op: "gte", Field: field, Value: value}
}

// In matches records whose field equals any of the given values.
func In(field string, values []int64) Filter {
	return Filter{Op: "in", Field: field, Value: values}
}

// Group constructors.

// And matches records satisfying every child filter.
func And(items ...Filter) Filter {
	return Filter{Op: "and", Items: items}
}

// Or matches records satisfying at least one child filter.
func Or(items ...Filter) Filter {
	return Filter{Op: "or", Items: items}
}

// Query is the request body for the entity query endpoint.
type Query struct {
	Filter []Filter `json:"filter"`
}

// Body serializes the query to JSON. An empty filter list is sent as a
// match-all existence condition because the server rejects empty filters.
func (q Query) Body() ([]byte, error) {
	if len(q.Filter) == 0 {
		q.Filter = []Filter{Gte("id", 0)}
	}
	return json.Marshal(q)
}

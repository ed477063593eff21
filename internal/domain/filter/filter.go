// Package filter models structured pre-filters applied to similarity search.
package filter

import "fmt"

// MaxConditions caps the number of conditions per group.
const MaxConditions = 16

// Expression is a structured filter with must/must_not boolean semantics over
// tag-match conditions.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditions)
	}
	if len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// WithMust returns a copy of the expression with an extra must condition.
func (e Expression) WithMust(c Condition) Expression {
	must := make([]Condition, 0, len(e.must)+1)
	must = append(must, e.must...)
	must = append(must, c)
	return Expression{must: must, mustNot: e.mustNot}
}

// Condition is a single exact tag-match clause against an indexed field alias.
type Condition struct {
	field string
	match string
}

// NewMatch creates an exact tag match condition.
func NewMatch(field, match string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for field %q", field)
	}
	return Condition{field: field, match: match}, nil
}

// Field returns the indexed field alias.
func (c Condition) Field() string { return c.field }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Package store describes the record store the booking core reads from and writes to.
package store

import (
	"fmt"
)

// Operator is a closed set of comparisons a store query can apply.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
)

var operatorNames = map[Operator]string{
	OpEq:  "eq",
	OpNeq: "neq",
	OpGt:  "gt",
	OpGte: "gte",
	OpLt:  "lt",
	OpLte: "lte",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

// ParseOperator maps a method name to an operator. Empty defaults to OpEq.
func ParseOperator(name string) (Operator, error) {
	if name == "" {
		return OpEq, nil
	}
	for op, opName := range operatorNames {
		if opName == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unsupported filter method: %s", name)
}

// Condition compares one field with a value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Order sorts by one field.
type Order struct {
	Field     string
	Ascending bool
}

// Range is an inclusive row window, zero-indexed.
type Range struct {
	From int
	To   int
}

// Limit is the number of rows covered by the range.
func (r Range) Limit() int {
	return r.To - r.From + 1
}

// Query is a backend-neutral read request.
// Where conditions are ANDed; when AnyOf is set, at least one group must match in full.
type Query struct {
	Table      string
	Where      []Condition
	AnyOf      [][]Condition
	OrderBy    []Order
	Range      *Range
	CountExact bool
}

func (q Query) String() string {
	return fmt.Sprintf("%s where=%v anyOf=%v order=%v range=%v count=%t", q.Table, q.Where, q.AnyOf, q.OrderBy, q.Range, q.CountExact)
}

package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/lostfound/internal/schema"
)

// Condition is one caller-supplied comparison.
type Condition struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
}

// Logic combines conditions.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

// ParseLogic accepts AND or OR in any case. An empty string means AND.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AND":
		return And, nil
	case "OR":
		return Or, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLogicMode, s)
}

// operators maps accepted spellings onto the emitted SQL operator.
var operators = map[string]string{
	"=":    "=",
	"!=":   "<>",
	"<>":   "<>",
	">":    ">",
	"<":    "<",
	"LIKE": "LIKE",
}

func parseOperator(op string) (string, error) {
	sqlOp, ok := operators[strings.ToUpper(strings.TrimSpace(op))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}
	return sqlOp, nil
}

// Param is a named placeholder value.
type Param struct {
	Name  string
	Value any
}

// Filter is a validated WHERE expression. Expr holds one '?' per entry in
// Params, in the same order.
type Filter struct {
	Expr   string
	Params []Param
}

// Empty reports whether the filter selects every row.
func (f Filter) Empty() bool { return f.Expr == "" }

// Args returns the parameter values in placeholder order.
func (f Filter) Args() []any {
	args := make([]any, len(f.Params))
	for i, p := range f.Params {
		args[i] = p.Value
	}
	return args
}

// ToSql implements squirrel.Sqlizer.
func (f Filter) ToSql() (string, []any, error) {
	return f.Expr, f.Args(), nil
}

// BuildFilter validates conditions against t and combines them with logic.
// Identifiers come from the registry only; values are always bound.
func BuildFilter(t *schema.Table, conds []Condition, logic string) (Filter, error) {
	mode, err := ParseLogic(logic)
	if err != nil {
		return Filter{}, err
	}
	if len(conds) == 0 {
		return Filter{}, nil
	}

	parts := make([]sq.Sqlizer, 0, len(conds))
	params := make([]Param, 0, len(conds))
	for i, c := range conds {
		col, ok := t.Column(c.Attribute)
		if !ok {
			return Filter{}, fmt.Errorf("%w: %s has no attribute %q", ErrInvalidAttribute, t.Name, c.Attribute)
		}
		op, err := parseOperator(c.Operator)
		if err != nil {
			return Filter{}, err
		}
		v, err := coerce(col, op, c.Value)
		if err != nil {
			return Filter{}, err
		}
		parts = append(parts, sq.Expr(col.Name+" "+op+" ?", v))
		params = append(params, Param{Name: "value" + strconv.Itoa(i), Value: v})
	}

	var combined sq.Sqlizer = sq.And(parts)
	if mode == Or {
		combined = sq.Or(parts)
	}
	expr, _, err := combined.ToSql()
	if err != nil {
		return Filter{}, fmt.Errorf("building filter: %w", err)
	}
	return Filter{Expr: expr, Params: params}, nil
}

// coerce converts a caller value into the column's domain. LIKE patterns are
// always text.
func coerce(col schema.Column, op string, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: %s requires a value", ErrInvalidValue, col.Name)
	}
	if op == "LIKE" {
		s, ok := textValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s LIKE requires a text pattern", ErrInvalidValue, col.Name)
		}
		return s, nil
	}

	if col.Kind == schema.KindInteger {
		n, ok := integerValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an integer, got %v", ErrInvalidValue, col.Name, v)
		}
		return n, nil
	}

	s, ok := textValue(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects text, got %v", ErrInvalidValue, col.Name, v)
	}
	return s, nil
}

func integerValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// 2^63 is the first float64 above MaxInt64.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func textValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case int, int32, int64:
		return fmt.Sprint(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}

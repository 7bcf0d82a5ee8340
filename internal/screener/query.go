// Package screener parses the filter language of the screen command into
// query trees Yahoo's screener endpoint accepts.
package screener

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"yfin/internal/validate"
)

// Operators lists the accepted filter operators.
var Operators = []string{"btwn", "eq", "gt", "gte", "is-in", "lt", "lte"}

// Query is a node of a screener query tree. Leaves carry Field and Values;
// "and" and "or" nodes carry Operands.
type Query struct {
	Operator string
	Field    string
	Values   []any
	Operands []*Query
}

// And combines queries with a logical and. A single query is returned as is.
func And(queries ...*Query) *Query {
	if len(queries) == 1 {
		return queries[0]
	}
	return &Query{Operator: "and", Operands: queries}
}

// ParseFilter parses "<field> <operator> <value>". Field and operator are case
// insensitive. btwn and is-in take comma separated values.
func ParseFilter(s string) (*Query, error) {
	parts := splitFields(strings.TrimSpace(s), 3)
	if len(parts) != 3 {
		return nil, usage("Invalid filter format: '%s'. Expected '<field> <operator> <value>'.", s)
	}
	field, op, raw := strings.ToLower(parts[0]), strings.ToLower(parts[1]), parts[2]

	if !IsField(field) {
		return nil, usage("Invalid field: '%s'. Valid fields can be found using `yfin screen-query-fields`.", field)
	}
	if !slices.Contains(Operators, op) {
		return nil, usage("Invalid operator: '%s'. Use one of %s", op, strings.Join(Operators, ", "))
	}

	var values []any
	if op == "btwn" || op == "is-in" {
		for _, v := range strings.Split(raw, ",") {
			parsed, err := parseValue(field, strings.TrimSpace(v))
			if err != nil {
				return nil, err
			}
			values = append(values, parsed)
		}
		if op == "btwn" && len(values) != 2 {
			return nil, usage("Invalid value: '%s' for '%s' field. Expected exactly two values.", raw, field)
		}
	} else {
		parsed, err := parseValue(field, raw)
		if err != nil {
			return nil, err
		}
		values = []any{parsed}
	}

	return &Query{Operator: op, Field: field, Values: values}, nil
}

// ParseFilters parses every filter and joins them with and.
func ParseFilters(filters []string) (*Query, error) {
	queries := make([]*Query, 0, len(filters))
	for _, f := range filters {
		q, err := ParseFilter(f)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, usage("At least one filter is required.")
	}
	return And(queries...), nil
}

// ParseJSONQuery parses a query tree of the form
// {"operator": "and"|"or", "queries": [filter string or tree, ...]}. A bare
// JSON string is a single filter. A node with one operand is replaced by it.
func ParseJSONQuery(s string) (*Query, error) {
	var node any
	if err := json.Unmarshal([]byte(s), &node); err != nil {
		return nil, usage("Invalid JSON query: '%s'.", s)
	}
	return buildQuery(node)
}

func buildQuery(node any) (*Query, error) {
	switch n := node.(type) {
	case string:
		return ParseFilter(n)
	case map[string]any:
		op, queries := n["operator"], n["queries"]
		if op == nil {
			return nil, usage("Invalid query, 'operator' is required.")
		}
		if queries == nil {
			return nil, usage("Invalid query, 'queries' is required.")
		}
		if op != "and" && op != "or" {
			return nil, usage("Invalid query, 'operator' must be either 'and' or 'or'.")
		}
		list, ok := queries.([]any)
		if !ok || len(list) == 0 {
			return nil, usage("Invalid query, 'queries' must be a non-empty list.")
		}

		operands := make([]*Query, 0, len(list))
		for _, child := range list {
			q, err := buildQuery(child)
			if err != nil {
				return nil, err
			}
			operands = append(operands, q)
		}
		if len(operands) == 1 {
			return operands[0], nil
		}
		return &Query{Operator: op.(string), Operands: operands}, nil
	default:
		return nil, usage("Invalid query, unexpected type: %s", jsonType(node))
	}
}

// MarshalJSON encodes q in Yahoo's wire format. Operators are upper case and
// is-in becomes an or of equalities.
func (q *Query) MarshalJSON() ([]byte, error) {
	type wire struct {
		Operator string `json:"operator"`
		Operands []any  `json:"operands"`
	}

	switch q.Operator {
	case "and", "or":
		operands := make([]any, len(q.Operands))
		for i, o := range q.Operands {
			operands[i] = o
		}
		return json.Marshal(wire{Operator: strings.ToUpper(q.Operator), Operands: operands})
	case "is-in":
		eqs := make([]any, len(q.Values))
		for i, v := range q.Values {
			eqs[i] = &Query{Operator: "eq", Field: q.Field, Values: []any{v}}
		}
		return json.Marshal(wire{Operator: "OR", Operands: eqs})
	default:
		operands := append([]any{q.Field}, q.Values...)
		return json.Marshal(wire{Operator: strings.ToUpper(q.Operator), Operands: operands})
	}
}

func parseValue(field, value string) (any, error) {
	if IsEnumField(field) {
		if !slices.Contains(enumValues[field], value) {
			return nil, usage("Invalid value: '%s' for '%s' field. Valid values can be found using `yfin screen-query-values %s`.",
				value, field, field)
		}
		return value, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, validate.Usage(validate.InvalidNumber,
			fmt.Sprintf("Invalid value: '%s' for '%s' field: must be numeric.", value, field))
	}
	return f, nil
}

// splitFields splits s on runs of white space into at most n parts. The last
// part keeps its inner white space.
func splitFields(s string, n int) []string {
	var parts []string
	for len(parts) < n-1 {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return parts
		}
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i:]
	}
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func usage(format string, args ...any) error {
	return validate.Usage(validate.InvalidArgument, fmt.Sprintf(format, args...))
}

package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq      = "eq"
	FilterOperatorIn      = "in"
	FilterOperatorLessEq  = "less_eq"
	FilterOperatorGreater = "greater"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:      "=",
	FilterOperatorLessEq:  "<=",
	FilterOperatorGreater: ">",
}

// Filter is a single named-parameter predicate on one column.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) arg() string {
	if f.ArgName == "" {
		return f.Field
	}

	return f.ArgName
}

// GetWhereClause renders the predicate. Unknown operators render nothing.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}

	if f.Operator == FilterOperatorIn {
		return f.in(args), args
	}

	symbol, ok := comparisons[f.Operator]
	if !ok {
		return "", args
	}

	args[f.arg()] = f.Value

	return fmt.Sprintf("%s %s :%s", f.column(), symbol, f.arg()), args
}

// in binds every element of a slice value as its own parameter.
// An empty slice matches no rows.
func (f *Filter) in(args map[string]any) string {
	val := reflect.ValueOf(f.Value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		args[f.arg()] = f.Value

		return fmt.Sprintf("%s IN (:%s)", f.column(), f.arg())
	}

	if val.Len() == 0 {
		return "FALSE"
	}

	named := make([]string, val.Len())
	for idx := range val.Len() {
		name := fmt.Sprintf("%s_%d", f.arg(), idx)
		args[name] = val.Index(idx).Interface()
		named[idx] = ":" + name
	}

	return fmt.Sprintf("%s IN (%s)", f.column(), strings.Join(named, ", "))
}

// FilterGroup joins Filter and nested FilterGroup values with Operator.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch fill := item.(type) {
		case Filter:
			where, arg = fill.GetWhereClause()
		case FilterGroup:
			where, arg = fill.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	return "(" + strings.Join(clauses, " "+f.Operator+" ") + ")", args
}

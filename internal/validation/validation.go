// Package validation checks decoded request bodies against declarative
// per-endpoint rule tables.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type constrains the JSON type a field may carry.
type Type int

const (
	// String must be a JSON string.
	String Type = iota
	// Text is an unbounded string.
	Text
	// Any accepts a string or a number; numbers are rendered as strings.
	Any
	// Email must be a string shaped like an email address.
	Email
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UniqueFunc reports whether value is already taken.
type UniqueFunc func(ctx context.Context, value string) (bool, error)

// Rule describes the checks applied to one field.
type Rule struct {
	Field    string
	Required bool
	Type     Type
	// Min and Max bound the length in characters; zero disables the bound.
	Min int
	Max int
	// Unique, when set, is consulted after every other check passed.
	Unique UniqueFunc
	// RequiredWith makes the field required whenever the named field is present.
	RequiredWith string
}

// Values holds the coerced fields that were present in the input.
type Values map[string]string

// Get returns the value of field, or "" when absent.
func (v Values) Get(field string) string {
	return v[field]
}

// Has reports whether field was present.
func (v Values) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Errors maps each failing field to its messages.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, strings.Join(e[f], " "))
	}
	return strings.Join(parts, " ")
}

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Validate evaluates every rule against input. On failure the returned error
// is Errors describing every violated field. A failing uniqueness lookup is
// returned as a plain error.
func Validate(ctx context.Context, input map[string]any, rules []Rule) (Values, error) {
	values := make(Values)
	errs := make(Errors)

	present := func(field string) bool {
		_, ok := presentValue(input[field])
		return ok
	}

	for _, rule := range rules {
		raw, ok := presentValue(input[rule.Field])
		label := attribute(rule.Field)

		if !ok {
			switch {
			case rule.Required:
				errs.add(rule.Field, fmt.Sprintf("The %s field is required.", label))
			case rule.RequiredWith != "" && present(rule.RequiredWith):
				errs.add(rule.Field, fmt.Sprintf("The %s field is required when %s is present.", label, attribute(rule.RequiredWith)))
			}
			continue
		}

		value, ok := coerce(raw, rule.Type)
		if !ok {
			errs.add(rule.Field, fmt.Sprintf("The %s field must be a string.", label))
			continue
		}

		failed := false
		length := utf8.RuneCountInString(value)
		if rule.Min > 0 && length < rule.Min {
			errs.add(rule.Field, fmt.Sprintf("The %s field must be at least %d characters.", label, rule.Min))
			failed = true
		}
		if rule.Max > 0 && length > rule.Max {
			errs.add(rule.Field, fmt.Sprintf("The %s field must not be greater than %d characters.", label, rule.Max))
			failed = true
		}
		if rule.Type == Email && !emailRegex.MatchString(value) {
			errs.add(rule.Field, fmt.Sprintf("The %s field must be a valid email address.", label))
			failed = true
		}

		if !failed && rule.Unique != nil {
			taken, err := rule.Unique(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("unique check on %s: %w", rule.Field, err)
			}
			if taken {
				errs.add(rule.Field, fmt.Sprintf("The %s has already been taken.", label))
				failed = true
			}
		}

		if !failed {
			values[rule.Field] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

// presentValue treats absent keys, null and blank strings as missing.
func presentValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
	}
	return v, true
}

func coerce(v any, typ Type) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if typ != Any {
		return "", false
	}

	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case bool:
		return strconv.FormatBool(n), true
	}
	return "", false
}

// attribute renders a field name the way messages refer to it.
func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// Package validate holds the input rules for every entity. Validators are
// pure: they never touch storage and take "now" as an argument, so the same
// input always yields the same verdict.
package validate

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindRequired              Kind = "Required"
	KindInvalidID             Kind = "InvalidId"
	KindInvalidEmail          Kind = "InvalidEmail"
	KindDisallowedEmailDomain Kind = "DisallowedEmailDomain"
	KindWeakPassword          Kind = "WeakPassword"
	KindInvalidPhone          Kind = "InvalidPhone"
	KindPastStartTime         Kind = "PastStartTime"
	KindEndBeforeStart        Kind = "EndBeforeStart"
	KindTooLong               Kind = "TooLong"
	KindTooShort              Kind = "TooShort"
	KindOutOfRange            Kind = "OutOfRange"
	KindInvalidCurrency       Kind = "InvalidCurrency"
	KindInvalidEnum           Kind = "InvalidEnum"
	KindInvalidRole           Kind = "InvalidRole"
	KindInvalidDate           Kind = "InvalidDate"
	KindInvalidTime           Kind = "InvalidTime"
)

type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Error lists every rule an input violated.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, field.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any field failed with the given kind.
func (e *Error) Has(kind Kind) bool {
	for _, field := range e.Fields {
		if field.Kind == kind {
			return true
		}
	}
	return false
}

// Field returns the first failure recorded for name.
func (e *Error) Field(name string) (FieldError, bool) {
	for _, field := range e.Fields {
		if field.Field == name {
			return field, true
		}
	}
	return FieldError{}, false
}

type collector struct {
	fields []FieldError
}

func (c *collector) add(field string, kind Kind, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Kind: kind, Message: message})
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}

func (c *collector) merge(err error) {
	if err == nil {
		return
	}
	if verr, ok := err.(*Error); ok {
		c.fields = append(c.fields, verr.Fields...)
	}
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when a draft or upload is rejected. Nothing was persisted.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return "validation failed: " + strings.Join(messages, " ")
}

// ByField groups the messages by field name in rule order.
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// Summary returns the first message and the number of further failures.
func (e *ValidationError) Summary() string {
	if len(e.Fields) == 0 {
		return "The given data was invalid."
	}
	switch rest := len(e.Fields) - 1; rest {
	case 0:
		return e.Fields[0].Message
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", e.Fields[0].Message)
	default:
		return fmt.Sprintf("%s (and %d more errors)", e.Fields[0].Message, rest)
	}
}

// Has reports whether the given field failed the given rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Rule == rule {
			return true
		}
	}
	return false
}

// NotFoundError is returned when an operation targets an unknown resource id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %d not found", e.ID)
}

// StorageError wraps a failure of the record store or the blob store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	default:
		return "storage"
	}
}

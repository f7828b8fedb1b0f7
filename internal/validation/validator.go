// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxEntityIDLength bounds user and song identifiers.
const MaxEntityIDLength = 128

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors is the set of constraints a value failed. A nil Errors means the
// value is valid.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	if len(es) == 1 {
		return es[0].Message
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Details renders the errors for an API error envelope.
func (es Errors) Details() map[string]any {
	switch len(es) {
	case 0:
		return nil
	case 1:
		return map[string]any{"field": es[0].Field, "tag": es[0].Tag, "value": es[0].Value}
	}
	fields := make([]map[string]any, len(es))
	for i, e := range es {
		fields[i] = map[string]any{"field": e.Field, "tag": e.Tag, "message": e.Message}
	}
	return map[string]any{"fields": fields}
}

// Validator returns the shared validator with the custom tags registered:
//
//	entityid     user and song identifiers (see IsEntityID)
//	dedup        none | against_direct | all
//	persistmode  replace | append
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for empty tags or nil functions.
		_ = validate.RegisterValidation("entityid", func(fl validator.FieldLevel) bool {
			return IsEntityID(fl.Field().String())
		})
		_ = validate.RegisterValidation("dedup", oneOf("none", "against_direct", "all"))
		_ = validate.RegisterValidation("persistmode", oneOf("replace", "append"))
	})
	return validate
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(s any) Errors {
	return convert(Validator().Struct(s), "")
}

// ValidateVar checks a single value, reporting failures under field.
func ValidateVar(field string, value any, tag string) Errors {
	return convert(Validator().Var(value, tag), field)
}

// IsEntityID reports whether s is a usable user or song identifier:
// 1-128 printable characters with no whitespace or slashes.
func IsEntityID(s string) bool {
	if s == "" || len(s) > MaxEntityIDLength {
		return false
	}
	for _, r := range s {
		if r == '/' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

func convert(err error, field string) Errors {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out[i] = FieldError{
			Field:   name,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe, name),
		}
	}
	return out
}

var fixedMessages = map[string]string{
	"required":    "is required",
	"url":         "must be a valid URL",
	"hostname":    "must be a valid hostname",
	"entityid":    "must be 1-128 printable characters without spaces or slashes",
	"dedup":       "must be one of: none, against_direct, all",
	"persistmode": "must be one of: replace, append",
}

var paramMessages = map[string]string{
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"gt":    "must be greater than %s",
	"lt":    "must be less than %s",
}

func message(fe validator.FieldError, field string) string {
	tag, param := fe.Tag(), fe.Param()

	if m, ok := fixedMessages[tag]; ok {
		return field + " " + m
	}
	if m, ok := paramMessages[tag]; ok {
		return field + " " + fmt.Sprintf(m, param)
	}

	unit := ""
	if fe.Kind().String() == "string" {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

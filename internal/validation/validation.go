// Package validation turns raw request payloads into typed inputs or field-level errors.
// Every function here is pure: no I/O, no store access.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages reported per field.
const (
	MsgRequired      = "Missing data for required field."
	MsgNotString     = "Not a valid string."
	MsgUnknownField  = "Unknown field."
	MsgNonEmpty      = "Shorter than minimum length 1."
	MsgPasswordLen   = "Length must be between 6 and 20."
	MsgInvalidEmail  = "Not a valid email address."
	MsgAtLeastOne    = "at least one field required"
	MsgInvalidInput  = "Invalid input type."
	MsgInvalidFormat = "Invalid value."
)

// SchemaKey holds errors that concern the payload as a whole.
const SchemaKey = "_schema"

// Error is a set of field-level validation messages.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *Error) has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewSchemaError reports a payload-level problem such as a body that is not a JSON object.
func NewSchemaError(msg string) *Error {
	e := &Error{}
	e.add(SchemaKey, msg)
	return e
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ve *Error
	ok := errors.As(err, &ve)
	return ve, ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterAlias("nonempty", "min=1")
	v.RegisterAlias("password", "min=6,max=20")
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldSpec describes one accepted payload key.
type fieldSpec struct {
	name     string
	required bool
}

// readStrings collects the string values of known keys and records presence,
// type and unknown-key problems in verr.
func readStrings(payload map[string]any, specs []fieldSpec, verr *Error) map[string]string {
	known := make(map[string]bool, len(specs))
	out := make(map[string]string, len(specs))

	for _, s := range specs {
		known[s.name] = true
		raw, ok := payload[s.name]
		if !ok {
			if s.required {
				verr.add(s.name, MsgRequired)
			}
			continue
		}
		str, ok := raw.(string)
		if !ok {
			verr.add(s.name, MsgNotString)
			continue
		}
		out[s.name] = str
	}

	unknown := make([]string, 0)
	for k := range payload {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		verr.add(k, MsgUnknownField)
	}
	return out
}

// checkStruct runs tag validation and adds messages for fields not already reported.
func checkStruct(v any, verr *Error) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(SchemaKey, MsgInvalidFormat)
		return
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if verr.has(field) {
			continue
		}
		verr.add(field, messageFor(fe))
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "nonempty":
		return MsgNonEmpty
	case "password":
		return MsgPasswordLen
	case "email":
		return MsgInvalidEmail
	case "required":
		return MsgRequired
	default:
		return MsgInvalidFormat
	}
}

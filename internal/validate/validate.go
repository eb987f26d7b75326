// Package validate decodes raw request payloads into typed commands and checks
// them against the constraints declared in their struct tags.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// Violation names one broken constraint. Path uses the wire (json/form) names.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		if violation.Path == "" {
			parts = append(parts, violation.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", violation.Path, violation.Message))
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any violation is recorded against path.
func (v Violations) Has(path string) bool {
	for _, violation := range v {
		if violation.Path == path {
			return true
		}
	}
	return false
}

// Refiner is implemented by commands with constraints spanning several fields
// that struct tags cannot express. It runs only after every tag passes.
type Refiner interface {
	Refine() Violations
}

// Defaulter is implemented by commands that fill optional fields after decoding
// and before constraint checks run.
type Defaulter interface {
	ApplyDefaults()
}

var (
	checker      = newValidator()
	queryDecoder = form.NewDecoder()

	hasUpperReg = regexp.MustCompile(`[A-Z]`)
	hasLowerReg = regexp.MustCompile(`[a-z]`)
	hasDigitReg = regexp.MustCompile(`[0-9]`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return "-"
			}
			if name != "" {
				return name
			}
		}
		return ""
	})

	_ = v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	})

	// bcrypt rejects input past 72 bytes, which max= cannot see for
	// multibyte text.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return hasUpperReg.MatchString(pw) && hasLowerReg.MatchString(pw) && hasDigitReg.MatchString(pw)
	})

	return v
}

// DecodeJSON decodes body into dst, applies defaults and validates it. A nil
// result means dst is ready to use.
func DecodeJSON(body io.Reader, dst any) Violations {
	data, err := io.ReadAll(body)
	if err != nil {
		return Violations{{Message: "request body could not be read"}}
	}

	return decodeBytes(data, dst)
}

// DecodeTagged implements a discriminated union: the value of tagField selects
// which variant the rest of the payload is decoded into.
func DecodeTagged(body io.Reader, tagField string, variants map[string]func() any) (any, Violations) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, Violations{{Message: "request body could not be read"}}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Violations{{Message: "request body is required"}}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, Violations{{Message: "request body must be a JSON object"}}
	}

	raw, ok := envelope[tagField]
	if !ok {
		return nil, Violations{{Path: tagField, Message: "is required"}}
	}

	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, Violations{{Path: tagField, Message: "must be a string"}}
	}

	newVariant, ok := variants[tag]
	if !ok {
		return nil, Violations{{Path: tagField, Message: "must be one of: " + strings.Join(variantNames(variants), ", ")}}
	}

	dst := newVariant()
	if violations := decodeBytes(data, dst); violations != nil {
		return nil, violations
	}

	return dst, nil
}

// DecodeQuery decodes URL query values into dst using `form` tags, then
// validates it the same way as a JSON payload.
func DecodeQuery(values url.Values, dst any) Violations {
	if err := queryDecoder.Decode(dst, values); err != nil {
		var decodeErrs form.DecodeErrors
		if errors.As(err, &decodeErrs) {
			out := make(Violations, 0, len(decodeErrs))
			for field := range decodeErrs {
				out = append(out, Violation{Path: field, Message: "has an invalid value"})
			}
			sortViolations(out)
			return out
		}
		return Violations{{Message: "query string could not be decoded"}}
	}

	return check(dst)
}

// Struct validates an already-populated value.
func Struct(dst any) Violations {
	return check(dst)
}

func decodeBytes(data []byte, dst any) Violations {
	if len(bytes.TrimSpace(data)) == 0 {
		return Violations{{Message: "request body is required"}}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Violations{{Path: typeErr.Field, Message: "must be " + describeKind(typeErr.Type)}}
		}
		return Violations{{Message: "request body must be a JSON object"}}
	}

	return check(dst)
}

func check(dst any) Violations {
	if d, ok := dst.(Defaulter); ok {
		d.ApplyDefaults()
	}

	err := checker.Struct(dst)
	if err == nil {
		if r, ok := dst.(Refiner); ok {
			if violations := r.Refine(); len(violations) > 0 {
				return violations
			}
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Violations{{Message: "payload could not be validated"}}
	}

	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Path:    fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}

	return out
}

// fieldPath drops the root type and any embedded struct type names from a
// validator namespace, leaving the wire path.
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	kept := make([]string, 0, len(segments))
	for i, seg := range segments {
		if i == 0 || seg == "" {
			continue
		}
		if first := seg[0]; first >= 'A' && first <= 'Z' {
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, ".")
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	isText := kind == reflect.String
	isList := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map

	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "accepted":
		return "must be accepted"
	case "password":
		return "must include uppercase, lowercase and a number"
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "eqfield":
		return "must match " + lowerFirst(fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		switch {
		case isText:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		switch {
		case isText:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "required_with_all":
		return "must be provided together with " + lowerFirst(fe.Param())
	}

	return fmt.Sprintf("is invalid (%s)", fe.Tag())
}

func describeKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a valid value"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func variantNames(variants map[string]func() any) []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortViolations(v Violations) {
	sort.Slice(v, func(i, j int) bool { return v[i].Path < v[j].Path })
}

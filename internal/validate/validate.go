package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})

	// filled rejects a present but blank string, for optional pointer fields
	validate.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FieldErrors maps a request field to every message it failed with
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(fe[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends message to field
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Set replaces the messages of field
func (fe FieldErrors) Set(field string, messages ...string) {
	fe[field] = messages
}

// Has reports whether field failed
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Merge appends every message of other
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

// StructFields validates v against its validate tags. It returns nil, a
// FieldErrors holding every failed field, or the validator's own error when v
// cannot be validated at all.
func StructFields(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := FieldErrors{}
	for _, fieldErr := range validationErrors {
		key := fieldKey(fieldErr)
		fields.Add(key, message(key, fieldErr))
	}
	return fields
}

// Collect is StructFields for callers that merge further messages in
func Collect(v any) (FieldErrors, error) {
	err := StructFields(v)
	if err == nil {
		return FieldErrors{}, nil
	}

	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields, nil
	}
	return nil, err
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// fieldKey turns Request.delete_images[0] into delete_images.0
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return indexPattern.ReplaceAllString(ns, ".$1")
}

// Attribute is the human form of a field key used inside messages
func Attribute(field string) string {
	if strings.Contains(field, ".") {
		return field
	}
	return strings.ReplaceAll(field, "_", " ")
}

func message(key string, fe validator.FieldError) string {
	attr := Attribute(key)
	numeric := isNumeric(fe.Kind())

	switch fe.Tag() {
	case "required", "filled":
		return Required(key)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", attr)
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("The %s may not be greater than %s.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s characters.", attr, fe.Param())
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("The %s must be at least %s.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", attr, fe.Param())
	case "oneof":
		return Invalid(key)
	case "numeric", "number":
		return Number(key)
	}
	return fmt.Sprintf("The %s is invalid.", attr)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func Required(field string) string {
	return fmt.Sprintf("The %s field is required.", Attribute(field))
}

func Taken(field string) string {
	return fmt.Sprintf("The %s has already been taken.", Attribute(field))
}

func Invalid(field string) string {
	return fmt.Sprintf("The selected %s is invalid.", Attribute(field))
}

func Number(field string) string {
	return fmt.Sprintf("The %s must be a number.", Attribute(field))
}

func Integer(field string) string {
	return fmt.Sprintf("The %s must be an integer.", Attribute(field))
}

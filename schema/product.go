// Package schema defines the product payload shapes and the validation rules
// shared by the HTTP surface and the product service.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field limits. Integer columns are 32-bit in storage.
const (
	ArticleMaxLength = 100
	NameMaxLength    = 255
	MaxStoredInt     = 1<<31 - 1
)

// CreateProduct is the payload for creating a product. Every field is required.
type CreateProduct struct {
	Article    *string `json:"article" validate:"required,min=1,max=100"`
	Name       *string `json:"name" validate:"required,min=1,max=255"`
	PriceMinor *int64  `json:"priceMinor" validate:"required,gt=0,lte=2147483647"`
	Quantity   *int64  `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

// UpdateProduct is a partial product payload. Absent fields stay unchanged;
// an empty object is valid.
type UpdateProduct struct {
	Article    *string `json:"article,omitempty" validate:"omitnil,min=1,max=100"`
	Name       *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	PriceMinor *int64  `json:"priceMinor,omitempty" validate:"omitnil,gt=0,lte=2147483647"`
	Quantity   *int64  `json:"quantity,omitempty" validate:"omitnil,gte=0,lte=2147483647"`
}

// Empty reports whether the update carries no field.
func (u UpdateProduct) Empty() bool {
	return u.Article == nil && u.Name == nil && u.PriceMinor == nil && u.Quantity == nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a payload struct against its validate tags and returns a
// *ValidationError keyed by JSON field name, or nil.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(BodyField, err.Error())
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr.orNil()
}

// DecodeCreate strictly decodes and validates a create payload.
func DecodeCreate(body []byte) (CreateProduct, error) {
	var p CreateProduct
	if err := decodeStrict(body, &p); err != nil {
		return CreateProduct{}, err
	}
	if err := Validate(p); err != nil {
		return CreateProduct{}, err
	}
	return p, nil
}

// DecodeUpdate strictly decodes and validates a partial update payload.
// An empty body is treated as an empty object.
func DecodeUpdate(body []byte) (UpdateProduct, error) {
	var p UpdateProduct
	if err := decodeStrict(body, &p); err != nil {
		return UpdateProduct{}, err
	}
	if err := Validate(p); err != nil {
		return UpdateProduct{}, err
	}
	return p, nil
}

// decodeStrict decodes a single JSON object, rejecting unknown fields,
// mistyped values and trailing data.
func decodeStrict(body []byte, dest any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewValidationError(BodyField, "unexpected data after JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return NewValidationError(BodyField, "expected a JSON object")
		}
		return NewValidationError(field, fmt.Sprintf("expected %s", expectedKind(typeErr.Type)))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NewValidationError(BodyField, "malformed JSON")
	}

	// encoding/json reports unknown fields as: json: unknown field "name"
	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`)
		return NewValidationError(field, "unknown field")
	}

	return NewValidationError(BodyField, err.Error())
}

func expectedKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must contain at least %s character(s)", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must contain at most %s character(s)", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

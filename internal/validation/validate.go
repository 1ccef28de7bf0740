package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// FieldError is one rule a field broke
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Errors collects every broken rule of one input
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// prices are checked as numbers
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "cents", func(fl validator.FieldLevel) bool {
		return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks v against its validate tags and returns nil when every rule holds
func Validate(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Message: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.Tag()),
			Value:   fe.Value(),
		})
	}
	return out
}

func message(field, rule string) string {
	if m, ok := messages[field][rule]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", field)
}

// rule names beyond validator tags: "number" for a value of the wrong type,
// "integer" for a fractional number where a whole one is needed
var messages = map[string]map[string]string{
	"sku": {
		"required": "SKU is required",
		"sku":      "SKU must contain only uppercase letters, numbers, and hyphens",
		"min":      "SKU must be at least 3 characters long",
		"max":      "SKU must not exceed 50 characters",
	},
	"name": {
		"required": "Product name is required",
		"min":      "Product name must not be empty",
		"max":      "Product name must not exceed 255 characters",
	},
	"description": {
		"required": "Product description is required",
		"min":      "Product description must not be empty",
		"max":      "Product description must not exceed 1000 characters",
	},
	"price": {
		"required": "Price is required",
		"number":   "Price must be a number",
		"gt":       "Price must be greater than 0",
		"cents":    "Price must have at most 2 decimal places",
		"lte":      "Price must not exceed 999,999.99",
	},
	"stockLevel": {
		"required": "Stock level is required",
		"number":   "Stock level must be a number",
		"integer":  "Stock level must be a whole number",
		"min":      "Stock level cannot be negative",
		"max":      "Stock level must not exceed 999,999",
	},
	"categoryId": {
		"required": "Category ID is required",
		"number":   "Category ID must be a number",
		"integer":  "Category ID must be a whole number",
		"gt":       "Category ID must be greater than 0",
	},
	"productId": {
		"required": "Product ID is required",
		"number":   "Product ID must be a number",
		"integer":  "Product ID must be a whole number",
		"gt":       "Product ID must be greater than 0",
	},
	"quantity": {
		"required": "Quantity is required",
		"number":   "Quantity must be a number",
		"integer":  "Quantity must be a whole number",
		"gt":       "Quantity must be greater than 0",
		"max":      "Quantity must not exceed 100",
	},
	"id": {
		"number":  "ID must be a number",
		"integer": "ID must be a whole number",
		"gt":      "ID must be greater than 0",
	},
	"itemId": {
		"number":  "Item ID must be a number",
		"integer": "Item ID must be a whole number",
		"gt":      "Item ID must be greater than 0",
	},
	"page": {
		"number":  "Page must be a number",
		"integer": "Page must be a whole number",
		"gt":      "Page must be greater than 0",
		"max":     "Page must not exceed 1000",
	},
	"limit": {
		"number":  "Limit must be a number",
		"integer": "Limit must be a whole number",
		"gt":      "Limit must be greater than 0",
		"max":     "Limit must not exceed 100",
	},
}

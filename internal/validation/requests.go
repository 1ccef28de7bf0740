package validation

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// A JSON null is treated the same as an absent field.
type CreateProductRequest struct {
	SKU         *string          `json:"sku" validate:"required,sku,min=3,max=50"`
	Name        *string          `json:"name" validate:"required,min=1,max=255"`
	Description *string          `json:"description" validate:"required,min=1,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gt=0,cents,lte=999999.99"`
	StockLevel  *int             `json:"stockLevel" validate:"required,min=0,max=999999"`
	CategoryID  *int64           `json:"categoryId" validate:"required,gt=0"`
}

func (r CreateProductRequest) NewProduct() product.NewProduct {
	return product.NewProduct{
		SKU:         *r.SKU,
		Name:        *r.Name,
		Description: *r.Description,
		Price:       *r.Price,
		StockLevel:  *r.StockLevel,
		CategoryID:  *r.CategoryID,
	}
}

type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,sku,min=3,max=50"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0,cents,lte=999999.99"`
	StockLevel  *int             `json:"stockLevel" validate:"omitempty,min=0,max=999999"`
	CategoryID  *int64           `json:"categoryId" validate:"omitempty,gt=0"`
}

// Patch keeps exactly the fields present in the request
func (r UpdateProductRequest) Patch() product.Patch {
	var p product.Patch
	if r.SKU != nil {
		p.SKU = product.Some(*r.SKU)
	}
	if r.Name != nil {
		p.Name = product.Some(*r.Name)
	}
	if r.Description != nil {
		p.Description = product.Some(*r.Description)
	}
	if r.Price != nil {
		p.Price = product.Some(*r.Price)
	}
	if r.StockLevel != nil {
		p.StockLevel = product.Some(*r.StockLevel)
	}
	if r.CategoryID != nil {
		p.CategoryID = product.Some(*r.CategoryID)
	}
	return p
}

type AddToCartRequest struct {
	ProductID *int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int   `json:"quantity" validate:"required,gt=0,max=100"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gt=0,max=100"`
}

type StockDecrementRequest struct {
	Quantity *int `json:"quantity" validate:"required,gt=0"`
}

type Pagination struct {
	Page  int `json:"page" validate:"gt=0,max=1000"`
	Limit int `json:"limit" validate:"gt=0,max=100"`
}

// numericFields accept a JSON number or a string holding one
var numericFields = map[string]bool{
	"price":      true,
	"stockLevel": true,
	"categoryId": true,
	"productId":  true,
	"quantity":   true,
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

var malformed = Errors{{Field: "body", Message: "Malformed JSON body"}}

// DecodeJSON reads one JSON object from body into dst and validates it.
// An empty body is validated as an empty object.
func DecodeJSON(body io.Reader, dst any) Errors {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return Validate(dst)
		}
		return malformed
	}
	if errs := coerceNumbers(fields); errs != nil {
		return errs
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return malformed
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Errors{{
				Field:   typeErr.Field,
				Message: message(typeErr.Field, typeRule(typeErr.Value)),
				Value:   typeErr.Value,
			}}
		}
		return malformed
	}
	return Validate(dst)
}

// coerceNumbers unquotes numeric strings in place and reports numeric fields
// holding anything other than a number
func coerceNumbers(fields map[string]json.RawMessage) Errors {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if numericFields[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var errs Errors
	for _, name := range names {
		v := bytes.TrimSpace(fields[name])
		switch {
		case string(v) == "null" || jsonNumber.Match(v):
			continue
		case len(v) > 0 && v[0] == '"':
			var str string
			if err := json.Unmarshal(v, &str); err == nil {
				if n := strings.TrimSpace(str); jsonNumber.MatchString(n) {
					fields[name] = json.RawMessage(n)
					continue
				}
			}
		}
		var value any
		_ = json.Unmarshal(v, &value)
		errs = append(errs, FieldError{Field: name, Message: message(name, "number"), Value: value})
	}
	return errs
}

// ParsePagination reads page and limit from a query string, defaulting absent values
func ParsePagination(q url.Values) (Pagination, Errors) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	var errs Errors

	for _, f := range []struct {
		name string
		dst  *int
	}{{"page", &p.Page}, {"limit", &p.Limit}} {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		n, rule := parseInt(raw)
		if rule != "" {
			errs = append(errs, FieldError{Field: f.name, Message: message(f.name, rule), Value: raw})
			continue
		}
		*f.dst = n
	}
	if len(errs) > 0 {
		return p, errs
	}
	return p, Validate(p)
}

// ParseID reads a positive integer path parameter
func ParseID(name, raw string) (int64, Errors) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		rule := "number"
		if _, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			rule = "integer"
		}
		return 0, Errors{{Field: name, Message: message(name, rule), Value: raw}}
	}
	if id <= 0 {
		return 0, Errors{{Field: name, Message: message(name, "gt"), Value: raw}}
	}
	return id, nil
}

func parseInt(raw string) (int, string) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, ""
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return 0, "integer"
	}
	return 0, "number"
}

// typeRule maps the JSON value kind reported by encoding/json to a message rule
func typeRule(kind string) string {
	if strings.HasPrefix(kind, "number") {
		return "integer"
	}
	return "number"
}

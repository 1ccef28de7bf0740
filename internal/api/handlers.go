package api

import (
	"net/http"
	"time"

	"github.com/example/ec-catalog-cart/internal/command"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/query"
	"github.com/example/ec-catalog-cart/internal/validation"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// bodies above this size are rejected as malformed
const maxBodyBytes = 10 << 20

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	environment  string
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, environment string) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		environment:  environment,
	}
}

type healthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Success:     true,
		Message:     "Shopping Cart API is running",
		Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.environment,
	})
}

// Product Handlers

type productList struct {
	Data       []*product.Product `json:"data"`
	Pagination product.Pagination `json:"pagination"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateProductRequest
	if errs := decodeBody(w, r, &req); errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	p, err := h.cmdHandler.CreateProduct(r.Context(), command.CreateProduct{Product: req.NewProduct()})
	if errors.Is(err, product.ErrDuplicateSKU) {
		respondError(w, "Product with this SKU already exists", http.StatusConflict)
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, p, "Product created successfully")
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, errs := validation.ParsePagination(r.URL.Query())
	if errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	result, err := h.queryHandler.ListProducts(r.Context(), page.Page, page.Limit)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondData(w, http.StatusOK, productList{Data: result.Products, Pagination: result.Pagination}, "")
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.queryHandler.GetProduct(r.Context(), id)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if p == nil {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, p, "")
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req validation.UpdateProductRequest
	if errs := decodeBody(w, r, &req); errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	p, err := h.cmdHandler.UpdateProduct(r.Context(), command.UpdateProduct{ProductID: id, Patch: req.Patch()})
	if errors.Is(err, product.ErrDuplicateSKU) {
		respondError(w, "Product with this SKU already exists", http.StatusConflict)
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if p == nil {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, p, "Product updated successfully")
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.cmdHandler.DeleteProduct(r.Context(), command.DeleteProduct{ProductID: id})
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if !removed {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, nil, "Product deleted successfully")
}

func (h *Handlers) DecrementStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req validation.StockDecrementRequest
	if errs := decodeBody(w, r, &req); errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	p, err := h.cmdHandler.DecrementStock(r.Context(), command.DecrementStock{ProductID: id, Quantity: *req.Quantity})
	if errors.Is(err, product.ErrInsufficientStock) {
		respondError(w, "Insufficient stock", http.StatusConflict)
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if p == nil {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, p, "Stock decremented successfully")
}

// Helper functions

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) validation.Errors {
	return validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
}

// pathID parses a positive id path variable, answering 400 when it is not one
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, errs := validation.ParseID(name, mux.Vars(r)[name])
	if errs != nil {
		respondInvalid(w, r, errs)
		return 0, false
	}
	return id, true
}

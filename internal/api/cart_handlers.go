package api

import (
	"net/http"

	"github.com/example/ec-catalog-cart/internal/command"
	"github.com/example/ec-catalog-cart/internal/domain/cart"
	"github.com/example/ec-catalog-cart/internal/validation"
	"github.com/pkg/errors"
)

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.queryHandler.GetCart(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondData(w, http.StatusOK, c, "")
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req validation.AddToCartRequest
	if errs := decodeBody(w, r, &req); errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	item, err := h.cmdHandler.AddToCart(r.Context(), command.AddToCart{
		ProductID: *req.ProductID,
		Quantity:  *req.Quantity,
	})
	if msg, ok := cartRejection(err); ok {
		respondError(w, msg, http.StatusBadRequest)
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, item, "Item added to cart successfully")
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var req validation.UpdateCartItemRequest
	if errs := decodeBody(w, r, &req); errs != nil {
		respondInvalid(w, r, errs)
		return
	}

	item, err := h.cmdHandler.UpdateCartItem(r.Context(), command.UpdateCartItem{ItemID: itemID, Quantity: *req.Quantity})
	if msg, ok := cartRejection(err); ok {
		respondError(w, msg, http.StatusBadRequest)
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if item == nil {
		respondError(w, "Cart item not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, item, "Cart item updated successfully")
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	removed, err := h.cmdHandler.RemoveFromCart(r.Context(), command.RemoveFromCart{ItemID: itemID})
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if !removed {
		respondError(w, "Cart item not found", http.StatusNotFound)
		return
	}

	respondData(w, http.StatusOK, nil, "Item removed from cart successfully")
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{}); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil, "Cart cleared successfully")
}

// cartRejection maps the domain errors a cart change can fail with to the
// message returned to the client
func cartRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		return "Product not found", true
	case errors.Is(err, cart.ErrInsufficientStock):
		return "Insufficient stock", true
	default:
		return "", false
	}
}

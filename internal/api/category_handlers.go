package api

import "net/http"

// ListCategories returns all categories ordered by name
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queryHandler.ListCategories(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondData(w, http.StatusOK, categories, "")
}

package api

import (
	"net/http"

	"github.com/erazemk/lostfound/internal/store"
)

// EntitiesHandler exposes filtered and projected reads over every
// registered entity, Users included, so its routes are staff only.
type EntitiesHandler struct {
	Store *store.Store
}

// Search handles POST /api/entities/{entity}/search.
func (h *EntitiesHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Store.Search(r.Context(), r.PathValue("entity"), req.Conditions, req.Logic)
	if err != nil {
		serviceError(w, r, "failed to search", err)
		return
	}
	jsonResponse(w, http.StatusOK, res.Records())
}

// Projection handles POST /api/entities/{entity}/projection. The response is
// {columns, rows} so repeated attributes survive in request order.
func (h *EntitiesHandler) Projection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Store.Project(r.Context(), r.PathValue("entity"), req.Attributes)
	if err != nil {
		serviceError(w, r, "failed to project", err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles item reporting, lookup, claiming and editing.
type ItemsHandler struct {
	Store *store.Store
}

type claimRequest struct {
	UserID int64 `json:"userId"`
	ItemID int64 `json:"itemId"`
}

type searchRequest struct {
	Conditions []query.Condition `json:"conditions"`
	Logic      string            `json:"logic"`
}

type projectionRequest struct {
	Attributes []string `json:"attributes"`
}

// ReportLost handles POST /api/items/report-lost.
func (h *ItemsHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, h.Store.ReportLostItem, "lost")
}

// ReportFound handles POST /api/items/report-found.
func (h *ItemsHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, h.Store.ReportFoundItem, "found")
}

type reportFunc func(ctx context.Context, in model.ItemReport) (*model.ReportResult, error)

func (h *ItemsHandler) report(w http.ResponseWriter, r *http.Request, fn reportFunc, kind string) {
	var req model.ItemReport
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := fn(r.Context(), req)
	if err != nil {
		serviceError(w, r, "failed to report item", err)
		return
	}

	slog.Info("item reported", "kind", kind, "item_id", res.ItemID, "user_id", req.UserID)
	jsonResponse(w, http.StatusCreated, res)
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list items", err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	reports, err := h.Store.ListReports(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to list item reports", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":    item,
		"reports": reports,
	})
}

// Update handles PUT /api/items/{id}. The body maps attribute names to new
// values.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var attrs map[string]any
	if err := decodeJSON(r, &attrs); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Store.UpdateItem(r.Context(), id, attrs); err != nil {
		serviceError(w, r, "failed to update item", err)
		return
	}

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get item", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item updated", "user", claims.Username, "item_id", id)
	jsonResponse(w, http.StatusOK, item)
}

// Claim handles POST /api/items/claim.
func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "userId and itemId are required")
		return
	}

	claim, err := h.Store.ClaimItem(r.Context(), req.UserID, req.ItemID)
	if err != nil {
		serviceError(w, r, "failed to claim item", err)
		return
	}

	slog.Info("item claimed", "item_id", req.ItemID, "user_id", req.UserID, "claim_id", claim.ID)
	jsonResponse(w, http.StatusCreated, claim)
}

// Search handles POST /api/items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.Store.SearchItems(r.Context(), req.Conditions, req.Logic)
	if err != nil {
		serviceError(w, r, "failed to search items", err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Projection handles POST /api/items/projection.
func (h *ItemsHandler) Projection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Store.ProjectItems(r.Context(), req.Attributes)
	if err != nil {
		serviceError(w, r, "failed to project items", err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// DeleteReport handles DELETE /api/reports/user/{userId}/item/{itemId}.
func (h *ItemsHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	itemID, ok := pathID(r, "itemId")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Store.DeleteReport(r.Context(), userID, itemID); err != nil {
		serviceError(w, r, "failed to delete report", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("report deleted", "user", claims.Username, "user_id", userID, "item_id", itemID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "report deleted"})
}

// UploadImage handles PUT /api/images/{id}. The photo is re-encoded as a
// bounded JPEG before it is stored.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	photo, err := imaging.Process(file)
	if err != nil {
		serviceError(w, r, "failed to process image", err)
		return
	}

	if err := h.Store.SetItemImage(r.Context(), id, photo.Data, photo.MIME); err != nil {
		serviceError(w, r, "failed to save image", err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/images/{id}.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := h.Store.GetItemImage(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

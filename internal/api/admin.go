package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminHandler handles database maintenance and health endpoints.
type AdminHandler struct {
	Store    *store.Store
	Migrator db.Migrator
}

// InitializeDatabase handles POST /api/initialize-database. It rebuilds the
// lost-and-found tables and reloads the reference data.
func (h *AdminHandler) InitializeDatabase(w http.ResponseWriter, r *http.Request) {
	if err := db.Reset(r.Context(), h.Migrator); err != nil {
		serviceError(w, r, "failed to initialize database", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("database initialized", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "database initialized"})
}

// Health handles GET /healthz.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		serviceError(w, r, "database unreachable", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

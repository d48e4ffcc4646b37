package api

import (
	"net/http"

	"github.com/erazemk/lostfound/internal/report"
	"github.com/erazemk/lostfound/internal/store"
)

// ReportsHandler serves the catalogued reports and reference lookups.
type ReportsHandler struct {
	Store *store.Store
}

type reportInfo struct {
	Name     string `json:"name"`
	Argument string `json:"argument,omitempty"`
}

// Named returns a handler running the named report. argParam names the path
// parameter carrying the report's argument, if it takes one.
func (h *ReportsHandler) Named(name, argParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var args []string
		if argParam != "" {
			args = append(args, r.PathValue(argParam))
		}
		h.run(w, r, name, args)
	}
}

// Catalogue handles GET /api/reports.
func (h *ReportsHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	infos := []reportInfo{}
	for _, name := range report.Names() {
		arg, _ := report.Argument(name)
		infos = append(infos, reportInfo{Name: name, Argument: arg})
	}
	jsonResponse(w, http.StatusOK, infos)
}

// Run handles GET /api/reports/{name}. A report argument is read from the
// query parameter it is named after.
func (h *ReportsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	arg, err := report.Argument(name)
	if err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}

	var args []string
	if arg != "" {
		args = append(args, r.URL.Query().Get(arg))
	}
	h.run(w, r, name, args)
}

func (h *ReportsHandler) run(w http.ResponseWriter, r *http.Request, name string, args []string) {
	res, err := h.Store.RunReport(r.Context(), name, args...)
	if err != nil {
		serviceError(w, r, "failed to run report", err)
		return
	}
	jsonResponse(w, http.StatusOK, res.Records())
}

// Categories handles GET /api/categories.
func (h *ReportsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Store.ListCategories(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list categories", err)
		return
	}
	jsonResponse(w, http.StatusOK, cats)
}

// Locations handles GET /api/locations.
func (h *ReportsHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Store.ListLocations(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list locations", err)
		return
	}
	jsonResponse(w, http.StatusOK, locs)
}

// Statuses handles GET /api/statuses.
func (h *ReportsHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.ListStatuses(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list statuses", err)
		return
	}
	jsonResponse(w, http.StatusOK, statuses)
}

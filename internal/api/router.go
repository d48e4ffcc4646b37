package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/report"
	"github.com/erazemk/lostfound/internal/store"
)

// Options configures the API router.
type Options struct {
	JWTSecret string
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter creates the API router with all endpoints registered. The
// returned handler assigns request IDs and logs every request.
func NewRouter(st *store.Store, mg db.Migrator, opts Options) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, Instrument(pattern, h))
	}
	handleFunc := func(pattern string, h http.HandlerFunc) {
		handle(pattern, h)
	}

	authHandler := &AuthHandler{Store: st, JWTSecret: opts.JWTSecret}
	accountsHandler := &AccountsHandler{Store: st}
	usersHandler := &UsersHandler{Store: st}
	itemsHandler := &ItemsHandler{Store: st}
	reportsHandler := &ReportsHandler{Store: st}
	entitiesHandler := &EntitiesHandler{Store: st}
	adminHandler := &AdminHandler{Store: st, Migrator: mg}

	authMW := AuthMiddleware(opts.JWTSecret, st)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)
	staff := func(h http.HandlerFunc) http.Handler { return authMW(requireStaff(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Operator authentication.
	handleFunc("POST /api/auth/login", authHandler.Login)
	handle("PUT /api/auth/password", staff(authHandler.ChangePassword))
	handle("POST /api/auth/logout", staff(authHandler.Logout))

	// Operator accounts (admin only).
	handle("GET /api/accounts", admin(accountsHandler.List))
	handle("POST /api/accounts", admin(accountsHandler.Create))
	handle("GET /api/accounts/{id}", admin(accountsHandler.Get))
	handle("PUT /api/accounts/{id}", admin(accountsHandler.Update))
	handle("PUT /api/accounts/{id}/password", admin(accountsHandler.ResetPassword))
	handle("DELETE /api/accounts/{id}", admin(accountsHandler.Delete))
	handle("POST /api/initialize-database", admin(adminHandler.InitializeDatabase))

	// Users: self-service registration, operator lookups.
	handleFunc("POST /api/users/register", usersHandler.Register)
	handle("GET /api/users", staff(usersHandler.List))
	handle("GET /api/users/{id}", staff(usersHandler.Get))
	handleFunc("GET /api/notifications/{userId}", usersHandler.Notifications)

	// Items.
	handleFunc("POST /api/items/report-lost", itemsHandler.ReportLost)
	handleFunc("POST /api/items/report-found", itemsHandler.ReportFound)
	handleFunc("POST /api/items/claim", itemsHandler.Claim)
	handleFunc("POST /api/items/search", itemsHandler.Search)
	handleFunc("POST /api/items/projection", itemsHandler.Projection)
	handleFunc("GET /api/items", itemsHandler.List)
	handleFunc("GET /api/items/{id}", itemsHandler.Get)
	handle("PUT /api/items/{id}", staff(itemsHandler.Update))
	handle("DELETE /api/reports/user/{userId}/item/{itemId}", staff(itemsHandler.DeleteReport))

	// Item photos live outside /api/items/{id}/ so they cannot collide with
	// /api/items/category/{categoryName}.
	handleFunc("GET /api/images/{id}", itemsHandler.GetImage)
	handle("PUT /api/images/{id}", staff(itemsHandler.UploadImage))

	// Reports.
	handleFunc("GET /api/items/lost", reportsHandler.Named(report.NameLostItems, ""))
	handleFunc("GET /api/items/found", reportsHandler.Named(report.NameFoundItems, ""))
	handleFunc("GET /api/items/category/{categoryName}", reportsHandler.Named(report.NameItemsByCategory, "categoryName"))
	handleFunc("GET /api/claims", reportsHandler.Named(report.NameClaims, ""))
	handleFunc("GET /api/stats/lost-items-count", reportsHandler.Named(report.NameLostItemsCount, ""))
	handleFunc("GET /api/stats/categories-with-lost-items-over/{threshold}", reportsHandler.Named(report.NameCategoriesOver, "threshold"))
	handleFunc("GET /api/stats/top-category-per-building", reportsHandler.Named(report.NameTopCategory, ""))
	handleFunc("GET /api/stats/users-reporting-all-categories", reportsHandler.Named(report.NameUsersAllCategories, ""))
	handleFunc("GET /api/reports", reportsHandler.Catalogue)
	handleFunc("GET /api/reports/{name}", reportsHandler.Run)

	// Reference data.
	handleFunc("GET /api/categories", reportsHandler.Categories)
	handleFunc("GET /api/locations", reportsHandler.Locations)
	handleFunc("GET /api/statuses", reportsHandler.Statuses)

	// Generic entity reads.
	handle("POST /api/entities/{entity}/search", staff(entitiesHandler.Search))
	handle("POST /api/entities/{entity}/projection", staff(entitiesHandler.Projection))

	handleFunc("GET /healthz", adminHandler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return LoggingMiddleware(TimeoutMiddleware(opts.RequestTimeout)(mux))
}

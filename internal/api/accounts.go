package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AccountsHandler handles operator account management (admin only).
type AccountsHandler struct {
	Store *store.Store
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateAccountRequest struct {
	Role string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list accounts", err)
		return
	}
	jsonResponse(w, http.StatusOK, accts)
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Role == "" {
		jsonError(w, http.StatusBadRequest, "username, password, and role required")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	acct, err := h.Store.CreateAccount(r.Context(), req.Username, hash, req.Role)
	if err != nil {
		if errorStatus(err) == http.StatusConflict {
			jsonError(w, http.StatusConflict, "username already exists")
			return
		}
		serviceError(w, r, "failed to create account", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("account created", "user", claims.Username, "new_account", req.Username, "role", req.Role)
	jsonResponse(w, http.StatusCreated, acct)
}

// Get handles GET /api/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	acct, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get account", err)
		return
	}
	if acct == nil || acct.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	jsonResponse(w, http.StatusOK, acct)
}

// Update handles PUT /api/accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if req.Role != model.RoleAdmin {
		if ok := h.keepsAnAdmin(w, r, id); !ok {
			return
		}
	}

	if err := h.Store.UpdateAccountRole(r.Context(), id, req.Role); err != nil {
		serviceError(w, r, "failed to update account", err)
		return
	}

	acct, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get account", err)
		return
	}
	claims := GetClaims(r.Context())
	slog.Info("account role updated", "user", claims.Username, "target_account", acct.Username, "new_role", req.Role)
	jsonResponse(w, http.StatusOK, acct)
}

// ResetPassword handles PUT /api/accounts/{id}/password.
func (h *AccountsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := h.Store.UpdateAccountPassword(r.Context(), id, hash); err != nil {
		serviceError(w, r, "failed to reset password", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("account password reset", "user", claims.Username, "target_account", h.accountName(r, id))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims != nil && claims.AccountID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	// Look up target name before deleting.
	name := h.accountName(r, id)

	if err := h.Store.DeleteAccount(r.Context(), id); err != nil {
		serviceError(w, r, "failed to delete account", err)
		return
	}

	slog.Info("account deleted", "user", claims.Username, "deleted_account", name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// keepsAnAdmin rejects demoting the last active admin.
func (h *AccountsHandler) keepsAnAdmin(w http.ResponseWriter, r *http.Request, id int64) bool {
	acct, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get account", err)
		return false
	}
	if acct == nil || acct.Role != model.RoleAdmin {
		return true
	}
	n, err := h.Store.CountAdmins(r.Context())
	if err != nil {
		serviceError(w, r, "failed to count admins", err)
		return false
	}
	if n <= 1 {
		jsonError(w, http.StatusConflict, "cannot demote the last admin")
		return false
	}
	return true
}

func (h *AccountsHandler) accountName(r *http.Request, id int64) string {
	acct, _ := h.Store.GetAccount(r.Context(), id)
	if acct == nil {
		return fmt.Sprintf("id:%d", id)
	}
	return acct.Username
}

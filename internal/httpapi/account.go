package httpapi

import (
	"net/http"
	"strings"

	"randevulu/internal/directory"
	"randevulu/internal/identity"
	"randevulu/internal/models"
	"randevulu/internal/store"
)

type registerRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AccountType  string `json:"account_type"`
	BusinessName string `json:"business_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type profileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type tenantRequest struct {
	Name             string                `json:"name"`
	SubscriptionTier string                `json:"subscription_tier"`
	Settings         models.TenantSettings `json:"settings"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req registerRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	account, profile, err := h.identity.Register(r.Context(), identity.RegisterInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		AccountType:  req.AccountType,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"account": account,
		"profile": profile,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	result, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.identity.Logout(r.Context(), sessionIDFromRequest(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req passwordRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	if err := h.identity.UpdatePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		profile, err := h.directory.GetProfile(r.Context(), actor)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})
	case http.MethodPut:
		var req profileRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		profile, set, err := h.directory.UpdateProfile(r.Context(), actor, req.FullName, req.Phone)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile, "changes": changeList(set)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleOwnTenant serves the caller's business. Saving as a customer creates
// the business and returns the upgraded actor.
func (h *Handler) handleOwnTenant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if actor.TenantID == "" {
			h.fail(w, r, store.ErrTenantNotFound)
			return
		}
		tenant, err := h.directory.GetTenant(r.Context(), actor.TenantID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"tenant": tenant})
	case http.MethodPut:
		var req tenantRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		tenant, updated, set, err := h.directory.SaveTenant(r.Context(), actor, directory.TenantInput{
			Name:             req.Name,
			SubscriptionTier: req.SubscriptionTier,
			Settings:         req.Settings,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"tenant":  tenant,
			"actor":   updated,
			"changes": changeList(set),
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleTenants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenants, err := h.directory.ListTenants(r.Context(), strings.TrimSpace(r.URL.Query().Get("city")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tenants": tenants})
}

// handleTenant serves /api/tenants/{id} and /api/tenants/{id}/services.
func (h *Handler) handleTenant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenantID, tail := pathID(r.URL.Path, "/api/tenants/")
	if tenantID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch tail {
	case "":
		tenant, err := h.directory.GetTenant(r.Context(), tenantID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"tenant": tenant})
	case "services":
		services, err := h.directory.ListServices(r.Context(), tenantID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"services": services})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

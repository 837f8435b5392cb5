package httpapi

import (
	"net/http"

	"randevulu/internal/directory"
)

type serviceRequest struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
}

type serviceUpdateRequest struct {
	Name            *string  `json:"name"`
	DurationMinutes *int     `json:"duration_minutes"`
	Price           *float64 `json:"price"`
}

type customerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Notes    string `json:"notes"`
}

func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !actor.IsBusiness() {
			h.fail(w, r, directory.ErrForbidden)
			return
		}
		services, err := h.directory.ListServices(r.Context(), actor.TenantID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"services": services})
	case http.MethodPost:
		var req serviceRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		service, set, err := h.directory.CreateService(r.Context(), actor, directory.ServiceInput(req))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"service": service, "changes": changeList(set)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleService(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	serviceID, tail := pathID(r.URL.Path, "/api/services/")
	if serviceID == "" || tail != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req serviceUpdateRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		service, set, err := h.directory.UpdateService(r.Context(), actor, serviceID, directory.ServiceUpdate(req))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"service": service, "changes": changeList(set)})
	case http.MethodDelete:
		set, err := h.directory.DeleteService(r.Context(), actor, serviceID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"changes": changeList(set)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		customers, err := h.directory.ListCustomers(r.Context(), actor)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
	case http.MethodPost:
		var req customerRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		customer, set, err := h.directory.CreateCustomer(r.Context(), actor, directory.CustomerInput(req))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"customer": customer, "changes": changeList(set)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCustomer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	customerID, tail := pathID(r.URL.Path, "/api/customers/")
	if customerID == "" || tail != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	set, err := h.directory.DeleteCustomer(r.Context(), actor, customerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"changes": changeList(set)})
}

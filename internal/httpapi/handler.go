package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"randevulu/internal/booking"
	"randevulu/internal/changes"
	"randevulu/internal/directory"
	"randevulu/internal/identity"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"
)

const maxBodyBytes = 1 << 20

type Bookings interface {
	Availability(ctx context.Context, tenantID, date string) ([]string, error)
	Create(ctx context.Context, actor models.Actor, input booking.CreateInput) (models.Appointment, changes.Set, error)
	Book(ctx context.Context, actor models.Actor, input booking.BookInput) (models.Appointment, changes.Set, error)
	Approve(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error)
	Reject(ctx context.Context, actor models.Actor, appointmentID, reason string) (models.Appointment, changes.Set, error)
	Cancel(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error)
	Complete(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error)
	Delete(ctx context.Context, actor models.Actor, appointmentID string) (changes.Set, error)
	ListByTenant(ctx context.Context, actor models.Actor) ([]models.AppointmentDetail, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.AppointmentDetail, error)
}

type Directory interface {
	GetTenant(ctx context.Context, tenantID string) (models.Tenant, error)
	ListTenants(ctx context.Context, city string) ([]models.Tenant, error)
	SaveTenant(ctx context.Context, actor models.Actor, input directory.TenantInput) (models.Tenant, models.Actor, changes.Set, error)
	GetProfile(ctx context.Context, actor models.Actor) (models.Profile, error)
	UpdateProfile(ctx context.Context, actor models.Actor, fullName, phone string) (models.Profile, changes.Set, error)
	ListCustomers(ctx context.Context, actor models.Actor) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, actor models.Actor, input directory.CustomerInput) (models.Customer, changes.Set, error)
	DeleteCustomer(ctx context.Context, actor models.Actor, customerID string) (changes.Set, error)
	ListServices(ctx context.Context, tenantID string) ([]models.Service, error)
	CreateService(ctx context.Context, actor models.Actor, input directory.ServiceInput) (models.Service, changes.Set, error)
	UpdateService(ctx context.Context, actor models.Actor, serviceID string, update directory.ServiceUpdate) (models.Service, changes.Set, error)
	DeleteService(ctx context.Context, actor models.Actor, serviceID string) (changes.Set, error)
}

type Notifications interface {
	List(ctx context.Context, userID string) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) (changes.Set, error)
	MarkAllRead(ctx context.Context, userID string) (int64, changes.Set, error)
}

type Identity interface {
	ActorResolver
	Register(ctx context.Context, input identity.RegisterInput) (models.Account, models.Profile, error)
	Login(ctx context.Context, email, password string) (identity.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	UpdatePassword(ctx context.Context, actor models.Actor, current, next string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Bookings      Bookings
	Directory     Directory
	Notifications Notifications
	Identity      Identity
}

type Options struct {
	Logger *zap.Logger
	// Location interprets zone-less timestamps in request bodies.
	Location *time.Location
	Pinger   Pinger
	Metrics  http.Handler
	// Realtime is mounted under /realtime/ when set.
	Realtime http.Handler
}

type Handler struct {
	bookings      Bookings
	directory     Directory
	notifications Notifications
	identity      Identity
	pinger        Pinger
	metrics       http.Handler
	realtime      http.Handler
	logger        *zap.Logger
	location      *time.Location
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

func NewHandler(services Services, options Options) *Handler {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Metrics == nil {
		options.Metrics = promhttp.Handler()
	}
	return &Handler{
		bookings:      services.Bookings,
		directory:     services.Directory,
		notifications: services.Notifications,
		identity:      services.Identity,
		pinger:        options.Pinger,
		metrics:       options.Metrics,
		realtime:      options.Realtime,
		logger:        options.Logger,
		location:      options.Location,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", h.metrics)

	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/password", h.handlePassword)
	mux.HandleFunc("/api/me", h.handleMe)

	mux.HandleFunc("/api/tenant", h.handleOwnTenant)
	mux.HandleFunc("/api/tenants", h.handleTenants)
	mux.HandleFunc("/api/tenants/", h.handleTenant)
	mux.HandleFunc("/api/availability", h.handleAvailability)

	mux.HandleFunc("/api/services", h.handleServices)
	mux.HandleFunc("/api/services/", h.handleService)
	mux.HandleFunc("/api/customers", h.handleCustomers)
	mux.HandleFunc("/api/customers/", h.handleCustomer)

	mux.HandleFunc("/api/appointments", h.handleAppointments)
	mux.HandleFunc("/api/appointments/mine", h.handleMyAppointments)
	mux.HandleFunc("/api/appointments/", h.handleAppointmentActions)
	mux.HandleFunc("/api/bookings", h.handleBookings)

	mux.HandleFunc("/api/notifications", h.handleNotifications)
	mux.HandleFunc("/api/notifications/unread-count", h.handleUnreadCount)
	mux.HandleFunc("/api/notifications/read-all", h.handleReadAll)
	mux.HandleFunc("/api/notifications/", h.handleNotificationRead)

	if h.realtime != nil {
		mux.Handle("/realtime/", h.realtime)
	}
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeError(w, requestIDFromRequest(r), http.StatusServiceUnavailable, "unavailable", "database unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// pathID returns the single segment after prefix and whatever follows it.
func pathID(path, prefix string) (string, string) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, tail, _ := strings.Cut(rest, "/")
	return id, tail
}

func changeList(set changes.Set) changes.Set {
	if set == nil {
		return changes.Set{}
	}
	return set
}

// decodeRequest reads a JSON body into target. An empty body is accepted
// when optional is set.
func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}, optional bool) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

// fail maps err onto the error envelope. Validation failures carry their
// field list; unexpected errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromRequest(r)),
			zap.Error(err))
	}
	var fields []validate.FieldError
	var verr *validate.Error
	if errors.As(err, &verr) {
		fields = verr.Fields
	}
	writeJSON(w, status, errorResponse{
		RequestID: requestIDFromRequest(r),
		Error:     responseError{Code: code, Message: msg, Fields: fields},
	})
}

func mapError(err error) (int, string, string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_failed", "request validation failed"
	case errors.Is(err, store.ErrAppointmentNotFound):
		return http.StatusNotFound, "appointment_not_found", "appointment not found"
	case errors.Is(err, store.ErrTenantNotFound):
		return http.StatusNotFound, "tenant_not_found", "tenant not found"
	case errors.Is(err, store.ErrCustomerNotFound):
		return http.StatusNotFound, "customer_not_found", "customer not found"
	case errors.Is(err, store.ErrServiceNotFound):
		return http.StatusNotFound, "service_not_found", "service not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return http.StatusNotFound, "notification_not_found", "notification not found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "appointment state does not allow this action"
	case errors.Is(err, booking.ErrSlotTaken):
		return http.StatusConflict, "slot_taken", "the selected slot is already booked"
	case errors.Is(err, store.ErrAccountExists):
		return http.StatusConflict, "account_exists", "an account with this e-mail already exists"
	case errors.Is(err, store.ErrCustomerExists):
		return http.StatusConflict, "customer_exists", "a customer with this phone already exists"
	case errors.Is(err, store.ErrInUse):
		return http.StatusConflict, "in_use", "record is still referenced by appointments"
	case errors.Is(err, booking.ErrForbidden), errors.Is(err, directory.ErrForbidden):
		return http.StatusForbidden, "access_denied", "access denied"
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid e-mail or password"
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized", "missing or expired session"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

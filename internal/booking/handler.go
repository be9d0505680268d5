package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/holds"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// GuestCookie persists the per-browser guest id used to key holds.
const GuestCookie = "bcrm_guest_id"

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Handler serves the booking wizard session endpoints.
type Handler struct {
	store   *Store
	catalog *catalog.Store
	holds   *holds.Manager
	logger  *logging.Logger
}

// NewHandler creates a session handler.
func NewHandler(store *Store, catalogStore *catalog.Store, holdManager *holds.Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, catalog: catalogStore, holds: holdManager, logger: logger}
}

// CreateSession handles POST /api/sessions. Deep-link resume: when the
// request carries step/ids/current query parameters the session is
// reconstructed from them, intersecting ids with the live catalog.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	clientID, generated := holds.ResolveClientID(r.Header.Get("X-Client-Id"), guestIDFromCookie(r))
	if generated {
		http.SetCookie(w, &http.Cookie{
			Name:     GuestCookie,
			Value:    clientID,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	var session *Session
	query := r.URL.Query()
	if query.Get(queryIDs) != "" || query.Get(queryStep) != "" {
		services, err := h.catalog.Services(r.Context())
		if err != nil {
			h.logger.Error("failed to load catalog for resume", "error", err)
			http.Error(w, "failed to load catalog", http.StatusBadGateway)
			return
		}
		session = DecodeQuery(query, services)
	} else {
		session = NewSession("", "")
	}
	session.ID = uuid.NewString()
	session.ClientID = clientID

	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("failed to save session", "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	h.logger.Info("session created", "session_id", session.ID, "step", session.Step)
	writeJSON(w, http.StatusCreated, session)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ShareLink handles GET /api/sessions/{id}/link and returns the query
// string that resumes this session.
func (h *Handler) ShareLink(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"query": EncodeQuery(session).Encode()})
}

type addServiceRequest struct {
	ServiceID string `json:"service_id"`
}

// AddService handles POST /api/sessions/{id}/services.
func (h *Handler) AddService(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req addServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ServiceID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.catalog.ServiceByID(r.Context(), req.ServiceID)
	if err != nil {
		h.logger.Error("failed to resolve service", "service_id", req.ServiceID, "error", err)
		http.Error(w, "failed to resolve service", http.StatusBadGateway)
		return
	}
	if svc == nil {
		http.Error(w, "unknown service", http.StatusUnprocessableEntity)
		return
	}

	session.AddService(req.ServiceID)
	h.saveAndReply(w, r, session)
}

// RemoveService handles DELETE /api/sessions/{id}/services/{serviceID}.
func (h *Handler) RemoveService(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	session.RemoveService(chi.URLParam(r, "serviceID"))
	h.saveAndReply(w, r, session)
}

type setMasterRequest struct {
	Any      bool   `json:"any"`
	MasterID string `json:"master_id"`
}

// SetMaster handles PUT /api/sessions/{id}/services/{serviceID}/master.
// Any=true commits "any available professional"; otherwise the master must
// exist and be capable of the service.
func (h *Handler) SetMaster(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	serviceID := chi.URLParam(r, "serviceID")

	var req setMasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	choice := &MasterChoice{Any: true}
	if !req.Any {
		if req.MasterID == "" {
			http.Error(w, "master_id or any required", http.StatusBadRequest)
			return
		}
		master, err := h.catalog.MasterByID(r.Context(), req.MasterID)
		if err != nil {
			h.logger.Error("failed to resolve master", "master_id", req.MasterID, "error", err)
			http.Error(w, "failed to resolve master", http.StatusBadGateway)
			return
		}
		if master == nil {
			http.Error(w, "unknown master", http.StatusUnprocessableEntity)
			return
		}
		if !master.CanPerform(serviceID) {
			http.Error(w, "master does not perform this service", http.StatusUnprocessableEntity)
			return
		}
		choice = &MasterChoice{ID: master.ID, Name: master.FullName}
	}

	if err := session.SetMaster(serviceID, choice); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.saveAndReply(w, r, session)
}

type setDateRequest struct {
	Date string `json:"date"`
}

// SetDate handles PUT /api/sessions/{id}/services/{serviceID}/date.
func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req setDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	if err := session.SetDate(chi.URLParam(r, "serviceID"), req.Date); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.saveAndReply(w, r, session)
}

type setTimeRequest struct {
	Time string `json:"time"`
}

type setTimeResponse struct {
	Session *Session `json:"session"`
	Hold    string   `json:"hold"`
}

// SetTime handles PUT /api/sessions/{id}/services/{serviceID}/time. With a
// specific master selected a provisional hold is attempted; an explicit
// rejection rolls the selection back with 409, while a transport failure
// leaves the optimistic selection standing.
func (h *Handler) SetTime(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	serviceID := chi.URLParam(r, "serviceID")

	var req setTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !timeOfDayPattern.MatchString(req.Time) {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	cfg, ok := session.Configs[serviceID]
	if !ok {
		http.Error(w, "service not selected", http.StatusBadRequest)
		return
	}
	if cfg.Date == "" {
		http.Error(w, "date must be selected before a time", http.StatusUnprocessableEntity)
		return
	}

	if err := session.SetTime(serviceID, req.Time); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	masterName := ""
	if cfg.Master != nil && !cfg.Master.Any {
		masterName = cfg.Master.Name
	}

	outcome := h.holds.TryHold(r.Context(), holds.Request{
		ServiceID:  serviceID,
		MasterName: masterName,
		Date:       cfg.Date,
		Time:       cfg.Time,
		ClientID:   session.ClientID,
	})
	if outcome == holds.OutcomeRejected {
		session.ClearTime(serviceID)
		if err := h.store.Save(r.Context(), session); err != nil {
			h.logger.Error("failed to save session", "session_id", session.ID, "error", err)
		}
		http.Error(w, "slot already taken", http.StatusConflict)
		return
	}

	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("failed to save session", "session_id", session.ID, "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, setTimeResponse{Session: session, Hold: outcome.String()})
}

type draftRequest struct {
	Any      *bool   `json:"any,omitempty"`
	MasterID *string `json:"master_id,omitempty"`
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
}

// UpdateDraft handles PUT /api/sessions/{id}/draft for the
// professional-first entry flow: selections made before any service exists.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch {
	case req.Any != nil && *req.Any:
		session.SetDraftMaster(&MasterChoice{Any: true})
	case req.MasterID != nil && *req.MasterID != "":
		master, err := h.catalog.MasterByID(r.Context(), *req.MasterID)
		if err != nil {
			h.logger.Error("failed to resolve master", "master_id", *req.MasterID, "error", err)
			http.Error(w, "failed to resolve master", http.StatusBadGateway)
			return
		}
		if master == nil {
			http.Error(w, "unknown master", http.StatusUnprocessableEntity)
			return
		}
		session.SetDraftMaster(&MasterChoice{ID: master.ID, Name: master.FullName})
	}

	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		session.SetDraftDate(*req.Date)
	}
	if req.Time != nil {
		if !timeOfDayPattern.MatchString(*req.Time) {
			http.Error(w, "invalid time", http.StatusBadRequest)
			return
		}
		session.SetDraftTime(*req.Time)
	}

	h.saveAndReply(w, r, session)
}

type stepRequest struct {
	Step string `json:"step"`
}

// Navigate handles POST /api/sessions/{id}/step. "back" pops the history;
// "menu" hard-resets the whole session.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Step == "back" {
		session.Back()
	} else {
		step, valid := ParseStep(req.Step)
		if !valid {
			http.Error(w, "unknown step", http.StatusBadRequest)
			return
		}
		session.GoTo(step)
	}
	h.saveAndReply(w, r, session)
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	session, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

func (h *Handler) saveAndReply(w http.ResponseWriter, r *http.Request, session *Session) {
	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("failed to save session", "session_id", session.ID, "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func guestIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(GuestCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

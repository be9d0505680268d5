package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/booking"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Handler serves submission and booking-history endpoints.
type Handler struct {
	service  *Service
	sessions *booking.Store
	repo     *Repository
	logger   *logging.Logger
}

// NewHandler creates a bookings handler. repo may be nil; history then
// returns 404.
func NewHandler(service *Service, sessions *booking.Store, repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, sessions: sessions, repo: repo, logger: logger}
}

type submitRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	InstagramID string `json:"instagram_id"`
}

type incompleteResponse struct {
	Error      string   `json:"error"`
	ServiceIDs []string `json:"service_ids"`
}

// Submit handles POST /api/sessions/{id}/submit. A fully successful
// submission deletes the session; a partial one keeps it so the client can
// retry the remainder.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, booking.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Phone == "" {
		http.Error(w, "name and phone are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Submit(r.Context(), session, Client{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		InstagramID: req.InstagramID,
	})
	var incomplete *ErrIncompleteSession
	if errors.As(err, &incomplete) {
		writeJSON(w, http.StatusUnprocessableEntity, incompleteResponse{
			Error:      "session is not ready for submission",
			ServiceIDs: incomplete.ServiceIDs,
		})
		return
	}
	if err != nil {
		h.logger.Error("submission failed", "session_id", id, "error", err)
		http.Error(w, "submission failed", http.StatusInternalServerError)
		return
	}

	if result.Failed != nil {
		status := http.StatusOK
		if len(result.Created) == 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, result)
		return
	}

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.logger.Warn("failed to delete submitted session", "session_id", id, "error", err)
	}
	writeJSON(w, http.StatusCreated, result)
}

// History handles GET /api/bookings and lists the caller's bookings by
// client id.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "booking history unavailable", http.StatusNotFound)
		return
	}

	clientID := r.Header.Get("X-Client-Id")
	if clientID == "" {
		if cookie, err := r.Cookie(booking.GuestCookie); err == nil {
			clientID = cookie.Value
		}
	}
	if clientID == "" {
		http.Error(w, "client id required", http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("failed to list bookings", "client_id", clientID, "error", err)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

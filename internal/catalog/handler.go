package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Handler serves the public catalog endpoints.
type Handler struct {
	store         *Store
	defaultLocale string
	logger        *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(store *Store, defaultLocale string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Handler{store: store, defaultLocale: defaultLocale, logger: logger}
}

type serviceView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Duration string  `json:"duration"`
	Category string  `json:"category"`
}

// GetServices handles GET /api/services. Names are resolved to the locale in
// the ?locale query parameter.
func (h *Handler) GetServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.Services(r.Context())
	if err != nil {
		h.logger.Error("failed to load services", "error", err)
		http.Error(w, "failed to load services", http.StatusBadGateway)
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = h.defaultLocale
	}

	views := make([]serviceView, 0, len(services))
	for _, svc := range services {
		views = append(views, serviceView{
			ID:       svc.ID,
			Name:     svc.Name(locale, h.defaultLocale),
			Price:    svc.Price,
			Currency: svc.Currency,
			Duration: svc.Duration,
			Category: svc.Category,
		})
	}

	writeJSON(w, http.StatusOK, views)
}

// GetMasters handles GET /api/masters. An optional ?service_id filters to
// masters capable of that service.
func (h *Handler) GetMasters(w http.ResponseWriter, r *http.Request) {
	var (
		masters []Master
		err     error
	)
	if serviceID := r.URL.Query().Get("service_id"); serviceID != "" {
		masters, err = h.store.CandidatesFor(r.Context(), serviceID)
	} else {
		masters, err = h.store.Masters(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to load masters", "error", err)
		http.Error(w, "failed to load masters", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, masters)
}

// GetHolidays handles GET /api/holidays.
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.store.Holidays(r.Context())
	if err != nil {
		h.logger.Error("failed to load holidays", "error", err)
		http.Error(w, "failed to load holidays", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, holidays)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package availability

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

const defaultDurationMinutes = 30

// Handler serves slot and calendar availability for the booking wizard.
type Handler struct {
	service *Service
	catalog *catalog.Store
	roster  RosterSource
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates an availability handler. roster may be nil; the
// masters-availability endpoint then reports not found.
func NewHandler(service *Service, catalogStore *catalog.Store, roster RosterSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, catalog: catalogStore, roster: roster, logger: logger, now: time.Now}
}

type slotsResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// GetSlots handles GET /api/slots?date&service_id[&master_id].
// Without master_id the answer aggregates every master capable of the
// service ("any professional").
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "invalid or missing date", http.StatusBadRequest)
		return
	}
	serviceID := r.URL.Query().Get("service_id")
	if serviceID == "" {
		http.Error(w, "missing service_id", http.StatusBadRequest)
		return
	}

	var (
		specific   *catalog.Master
		candidates []catalog.Master
	)
	if masterID := r.URL.Query().Get("master_id"); masterID != "" {
		master, err := h.catalog.MasterByID(r.Context(), masterID)
		if err != nil {
			h.logger.Error("failed to resolve master", "master_id", masterID, "error", err)
			http.Error(w, "failed to resolve master", http.StatusBadGateway)
			return
		}
		if master == nil {
			http.Error(w, "unknown master", http.StatusNotFound)
			return
		}
		specific = master
	} else {
		var err error
		candidates, err = h.catalog.CandidatesFor(r.Context(), serviceID)
		if err != nil {
			h.logger.Error("failed to load candidates", "service_id", serviceID, "error", err)
			http.Error(w, "failed to load masters", http.StatusBadGateway)
			return
		}
	}

	slots, err := h.service.ComputeAvailableSlots(r.Context(), date, candidates, specific)
	if err != nil {
		h.logger.Error("failed to compute slots", "date", date, "error", err)
		http.Error(w, "failed to compute slots", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, slotsResponse{Date: date, Slots: slots})
}

type availableDatesResponse struct {
	AvailableDates []string `json:"available_dates"`
}

// GetAvailableDates handles GET /api/available-dates?year&month&service_id[&master_id].
// Duration is derived from the service's free-text duration.
func (h *Handler) GetAvailableDates(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(r)
	if !ok {
		http.Error(w, "invalid year/month", http.StatusBadRequest)
		return
	}

	duration, master, ok := h.resolveDatesQuery(w, r)
	if !ok {
		return
	}

	set, err := h.service.AvailableDates(r.Context(), year, month, master, duration)
	if err != nil {
		h.logger.Error("failed to load available dates", "year", year, "month", month, "error", err)
		http.Error(w, "failed to load available dates", http.StatusBadGateway)
		return
	}

	days := make([]string, 0, len(set))
	for day := range set {
		days = append(days, day)
	}
	sort.Strings(days)
	writeJSON(w, http.StatusOK, availableDatesResponse{AvailableDates: days})
}

type calendarDay struct {
	Date       string `json:"date"`
	InMonth    bool   `json:"in_month"`
	Selectable bool   `json:"selectable"`
}

type calendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []calendarDay `json:"days"`
}

// GetCalendar handles GET /api/calendar?year&month&service_id[&master_id].
// It returns a Monday-aligned grid with the selectability flag already
// applied, so clients render days without re-implementing the policy.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(r)
	if !ok {
		http.Error(w, "invalid year/month", http.StatusBadRequest)
		return
	}

	duration, master, ok := h.resolveDatesQuery(w, r)
	if !ok {
		return
	}

	set, err := h.service.AvailableDates(r.Context(), year, month, master, duration)
	if err != nil {
		h.logger.Error("failed to load available dates", "year", year, "month", month, "error", err)
		http.Error(w, "failed to load available dates", http.StatusBadGateway)
		return
	}

	holidayList, err := h.catalog.Holidays(r.Context())
	if err != nil {
		h.logger.Error("failed to load holidays", "error", err)
		http.Error(w, "failed to load holidays", http.StatusBadGateway)
		return
	}
	holidays := make(map[string]bool, len(holidayList))
	for _, hd := range holidayList {
		holidays[hd.Date] = true
	}

	today := h.now()
	displayedMonth := time.Month(month)
	first := time.Date(year, displayedMonth, 1, 0, 0, 0, 0, today.Location())
	// Pad back to Monday and forward to a full final week.
	gridStart := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	gridEnd := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))

	days := make([]calendarDay, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		days = append(days, calendarDay{
			Date:       day.Format("2006-01-02"),
			InMonth:    day.Month() == displayedMonth && day.Year() == year,
			Selectable: DaySelectable(day, today, year, displayedMonth, holidays, set),
		})
	}

	writeJSON(w, http.StatusOK, calendarResponse{Year: year, Month: month, Days: days})
}

// resolveDatesQuery derives the duration and upstream master key shared by
// the dates and calendar endpoints.
func (h *Handler) resolveDatesQuery(w http.ResponseWriter, r *http.Request) (int, string, bool) {
	serviceID := r.URL.Query().Get("service_id")
	if serviceID == "" {
		http.Error(w, "missing service_id", http.StatusBadRequest)
		return 0, "", false
	}
	svc, err := h.catalog.ServiceByID(r.Context(), serviceID)
	if err != nil {
		h.logger.Error("failed to resolve service", "service_id", serviceID, "error", err)
		http.Error(w, "failed to resolve service", http.StatusBadGateway)
		return 0, "", false
	}
	if svc == nil {
		http.Error(w, "unknown service", http.StatusNotFound)
		return 0, "", false
	}
	duration := catalog.DurationMinutes(svc.Duration, defaultDurationMinutes)

	master := "any"
	if masterID := r.URL.Query().Get("master_id"); masterID != "" {
		m, err := h.catalog.MasterByID(r.Context(), masterID)
		if err != nil {
			h.logger.Error("failed to resolve master", "master_id", masterID, "error", err)
			http.Error(w, "failed to resolve master", http.StatusBadGateway)
			return 0, "", false
		}
		if m == nil {
			http.Error(w, "unknown master", http.StatusNotFound)
			return 0, "", false
		}
		// The scheduler keys monthly availability by master name.
		master = m.FullName
	}
	return duration, master, true
}

func parseYearMonth(r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// mondayOffset returns how many days a weekday sits after Monday.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package availability

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// RosterSource exposes the scheduler's per-master view of one day, used by
// the professional-selection screen to show who is free before a master is
// chosen.
type RosterSource interface {
	GetMastersAvailability(ctx context.Context, date string) (map[string][]string, error)
}

type rosterEntry struct {
	Master string   `json:"master"`
	Times  []string `json:"times"`
}

type rosterResponse struct {
	Date    string        `json:"date"`
	Masters []rosterEntry `json:"masters"`
}

// GetMastersAvailability handles GET /api/masters-availability?date=.
// Masters are returned alphabetically with their free times sorted.
func (h *Handler) GetMastersAvailability(w http.ResponseWriter, r *http.Request) {
	if h.roster == nil {
		http.Error(w, "masters availability unavailable", http.StatusNotFound)
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "invalid or missing date", http.StatusBadRequest)
		return
	}

	availability, err := h.roster.GetMastersAvailability(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to load masters availability", "date", date, "error", err)
		http.Error(w, "failed to load masters availability", http.StatusBadGateway)
		return
	}

	entries := make([]rosterEntry, 0, len(availability))
	for master, times := range availability {
		sorted := append([]string(nil), times...)
		sort.Strings(sorted)
		entries = append(entries, rosterEntry{Master: master, Times: sorted})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Master < entries[j].Master })

	writeJSON(w, http.StatusOK, rosterResponse{Date: date, Masters: entries})
}

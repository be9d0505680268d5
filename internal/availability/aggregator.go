// Package availability computes which time slots and calendar days are open
// for booking. Slot truth lives on the upstream scheduler; this package
// aggregates per-master answers into the single list the wizard shows.
package availability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/observability/metrics"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Slot is one offerable time in the aggregated result. Master attribution is
// dropped in "any professional" mode.
type Slot struct {
	Time      string `json:"time"`
	IsOptimal bool   `json:"is_optimal"`
}

// Source is the slice of the scheduler API this package consumes.
type Source interface {
	GetAvailableSlots(ctx context.Context, date, employeeID string) ([]upstream.Slot, error)
	GetAvailableDates(ctx context.Context, master string, year, month, durationMinutes int) ([]string, error)
}

// Service aggregates availability across masters.
type Service struct {
	source  Source
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates an availability service.
func NewService(source Source, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if source == nil {
		panic("availability: source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, logger: logger, metrics: m}
}

// ComputeAvailableSlots returns the sorted, de-duplicated free slots for a
// date. With a specific master the scheduler is asked once and the answer is
// filtered to available times. With specific nil ("any professional") every
// candidate is queried concurrently; a master whose query fails contributes
// zero slots and never fails the aggregate. Zero candidates short-circuits
// to an empty list without touching the network.
func (s *Service) ComputeAvailableSlots(ctx context.Context, date string, candidates []catalog.Master, specific *catalog.Master) ([]Slot, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveAggregateLatency(time.Since(started).Seconds())
	}()

	if specific != nil {
		raw, err := s.source.GetAvailableSlots(ctx, date, specific.ID)
		if err != nil {
			s.metrics.ObserveFanout("error")
			return nil, err
		}
		s.metrics.ObserveFanout("ok")
		return filterAvailable(raw), nil
	}

	if len(candidates) == 0 {
		return []Slot{}, nil
	}

	perMaster := make([][]upstream.Slot, len(candidates))
	var wg sync.WaitGroup
	for i, master := range candidates {
		wg.Add(1)
		go func(idx int, m catalog.Master) {
			defer wg.Done()
			raw, err := s.source.GetAvailableSlots(ctx, date, m.ID)
			if err != nil {
				// Soft-fail: this master simply contributes nothing.
				s.metrics.ObserveFanout("error")
				s.logger.Warn("slot query failed", "master_id", m.ID, "date", date, "error", err)
				return
			}
			s.metrics.ObserveFanout("ok")
			perMaster[idx] = raw
		}(i, master)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	union := make([]Slot, 0)
	for _, raw := range perMaster {
		for _, slot := range raw {
			if !slot.Available {
				continue
			}
			if _, dup := seen[slot.Time]; dup {
				continue
			}
			seen[slot.Time] = struct{}{}
			union = append(union, Slot{Time: slot.Time})
		}
	}

	// Lexicographic order is chronological for zero-padded 24h HH:MM.
	sort.Slice(union, func(i, j int) bool { return union[i].Time < union[j].Time })
	return union, nil
}

func filterAvailable(raw []upstream.Slot) []Slot {
	out := make([]Slot, 0, len(raw))
	for _, slot := range raw {
		if slot.Available {
			out = append(out, Slot{Time: slot.Time})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

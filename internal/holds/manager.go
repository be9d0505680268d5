// Package holds asks the scheduler for short-lived advisory reservations so
// two clients picking the same slot during the wizard collide early instead
// of at submission. Holds are best-effort; the scheduler re-checks conflicts
// when the booking is finally created.
package holds

import (
	"context"

	"github.com/google/uuid"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/observability/metrics"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Outcome is the tagged result of a hold attempt. The asymmetry matters:
// only Rejected rolls the caller's time selection back; TransportError leaves
// the optimistic selection standing.
type Outcome int

const (
	// OutcomeAccepted means the scheduler reserved the slot.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected means the scheduler explicitly refused: someone else
	// holds the slot. Callers must roll back the time selection.
	OutcomeRejected
	// OutcomeTransportError means the scheduler was unreachable. The
	// selection stands and the conflict, if any, surfaces at submission.
	OutcomeTransportError
	// OutcomeSkipped means no hold was attempted: holds are disabled or no
	// specific master is selected yet, so there is no slot to pin.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Creator is the slice of the scheduler API the manager consumes.
type Creator interface {
	CreateHold(ctx context.Context, req upstream.HoldRequest) (bool, error)
}

// Request identifies the slot to reserve. An empty MasterName means "any
// professional": no hold is attempted, because pinning the slot on an
// arbitrary master before one is assigned would block the wrong calendar.
type Request struct {
	ServiceID  string
	MasterName string
	Date       string
	Time       string
	ClientID   string
}

// Manager coordinates provisional holds.
type Manager struct {
	creator Creator
	enabled bool
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewManager creates a hold manager. A nil creator or enabled=false turns
// every attempt into OutcomeSkipped.
func NewManager(creator Creator, enabled bool, logger *logging.Logger, m *metrics.BookingMetrics) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{creator: creator, enabled: enabled, logger: logger, metrics: m}
}

// TryHold attempts to reserve the slot and classifies the result.
func (m *Manager) TryHold(ctx context.Context, req Request) Outcome {
	outcome := m.tryHold(ctx, req)
	m.metrics.ObserveHold(outcome.String())
	return outcome
}

func (m *Manager) tryHold(ctx context.Context, req Request) Outcome {
	if !m.enabled || m.creator == nil || req.MasterName == "" {
		return OutcomeSkipped
	}

	ok, err := m.creator.CreateHold(ctx, upstream.HoldRequest{
		ServiceID:  req.ServiceID,
		MasterName: req.MasterName,
		Date:       req.Date,
		Time:       req.Time,
		ClientID:   req.ClientID,
	})
	if err != nil {
		m.logger.Warn("hold request failed, keeping optimistic selection",
			"service_id", req.ServiceID,
			"master", req.MasterName,
			"date", req.Date,
			"time", req.Time,
			"error", err,
		)
		return OutcomeTransportError
	}
	if !ok {
		return OutcomeRejected
	}
	return OutcomeAccepted
}

// ResolveClientID picks the id a hold is keyed by: the authenticated user id
// when present, otherwise the caller's persisted guest id, otherwise a fresh
// guest id. The second return reports whether a new id was generated and
// should be persisted by the caller.
func ResolveClientID(authenticatedID, guestID string) (string, bool) {
	if authenticatedID != "" {
		return authenticatedID, false
	}
	if guestID != "" {
		return guestID, false
	}
	return "guest-" + uuid.NewString(), true
}

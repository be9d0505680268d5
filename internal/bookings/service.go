package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/booking"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/notify"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/observability/metrics"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

var tracer = otel.Tracer("internal/bookings")

// Creator is the slice of the scheduler API submission consumes.
type Creator interface {
	CreateBooking(ctx context.Context, req upstream.BookingRequest) (*upstream.BookingRecord, error)
}

// ErrIncompleteSession rejects a submission whose services are not all fully
// configured. No upstream calls are made in this case.
type ErrIncompleteSession struct {
	ServiceIDs []string
}

func (e *ErrIncompleteSession) Error() string {
	return fmt.Sprintf("bookings: %d service(s) not fully configured", len(e.ServiceIDs))
}

// Client identifies who the appointments are for.
type Client struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
}

// Created is one successfully created appointment.
type Created struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	MasterName  string `json:"master_name,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status,omitempty"`
}

// Failed describes the service whose creation failed.
type Failed struct {
	ServiceID string `json:"service_id"`
	Reason    string `json:"reason"`
}

// Result reports what a submission achieved. Created appointments are never
// rolled back: a partial failure returns what exists so the client can retry
// only the remainder.
type Result struct {
	Created []Created `json:"created"`
	Failed  *Failed   `json:"failed,omitempty"`
}

// Service submits completed sessions to the scheduler.
type Service struct {
	creator Creator
	catalog *catalog.Store
	repo    *Repository
	sender  notify.EmailSender
	locale  string
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates a submission service. repo and sender may be nil; local
// persistence and confirmation email are then skipped.
func NewService(creator Creator, catalogStore *catalog.Store, repo *Repository, sender notify.EmailSender, defaultLocale string, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if creator == nil {
		panic("bookings: creator required")
	}
	if catalogStore == nil {
		panic("bookings: catalog store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Service{
		creator: creator,
		catalog: catalogStore,
		repo:    repo,
		sender:  sender,
		locale:  defaultLocale,
		logger:  logger,
		metrics: m,
	}
}

// Submit creates one appointment per selected service, in selection order.
// It fails fast when any service is incomplete, before touching the
// scheduler. On a mid-sequence failure it stops and returns the appointments
// already created.
func (s *Service) Submit(ctx context.Context, session *booking.Session, client Client) (*Result, error) {
	ctx, span := tracer.Start(ctx, "bookings.Submit", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("session.services", len(session.SelectedServices)),
	))
	defer span.End()

	if incomplete := session.IncompleteServices(); len(incomplete) > 0 {
		s.metrics.ObserveSubmission("incomplete")
		return nil, &ErrIncompleteSession{ServiceIDs: incomplete}
	}
	if len(session.SelectedServices) == 0 {
		s.metrics.ObserveSubmission("empty")
		return nil, &ErrIncompleteSession{}
	}

	result := &Result{Created: []Created{}}
	for _, serviceID := range session.SelectedServices {
		cfg := session.Configs[serviceID]

		serviceName := serviceID
		if svc, err := s.catalog.ServiceByID(ctx, serviceID); err == nil && svc != nil {
			serviceName = catalog.DisplayName(svc.Names, s.locale, s.locale)
		}

		masterName := ""
		if cfg.Master != nil && !cfg.Master.Any {
			masterName = cfg.Master.Name
		}

		record, err := s.creator.CreateBooking(ctx, upstream.BookingRequest{
			Name:        client.Name,
			InstagramID: client.InstagramID,
			Service:     serviceName,
			Master:      masterName,
			Date:        cfg.Date,
			Time:        cfg.Time,
			Phone:       client.Phone,
		})
		if err != nil {
			span.RecordError(err)
			s.logger.Error("booking creation failed, stopping sequence",
				"session_id", session.ID,
				"service_id", serviceID,
				"created_so_far", len(result.Created),
				"error", err,
			)
			result.Failed = &Failed{ServiceID: serviceID, Reason: err.Error()}
			s.metrics.ObserveSubmission("partial")
			return result, nil
		}

		created := Created{
			ServiceID:   serviceID,
			ServiceName: serviceName,
			MasterName:  masterName,
			Date:        cfg.Date,
			Time:        cfg.Time,
		}
		if record != nil {
			created.Status = record.Status
		}
		result.Created = append(result.Created, created)
		s.metrics.ObserveBookingCreated()

		s.persist(ctx, session, created, record)
	}

	s.metrics.ObserveSubmission("success")
	s.logger.Info("session submitted", "session_id", session.ID, "created", len(result.Created))
	s.sendConfirmation(ctx, session, client, result)
	return result, nil
}

// persist stores the local record; failures are logged, not surfaced, since
// the appointment already exists in the scheduler.
func (s *Service) persist(ctx context.Context, session *booking.Session, created Created, record *upstream.BookingRecord) {
	if s.repo == nil {
		return
	}
	rec := Record{
		ID:          uuid.NewString(),
		SessionID:   session.ID,
		ClientID:    session.ClientID,
		ServiceID:   created.ServiceID,
		ServiceName: created.ServiceName,
		MasterName:  created.MasterName,
		Date:        created.Date,
		Time:        created.Time,
		Status:      created.Status,
		CreatedAt:   time.Now().UTC(),
	}
	if record != nil {
		rec.UpstreamID = record.ID
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.logger.Warn("failed to persist booking record", "session_id", session.ID, "service_id", created.ServiceID, "error", err)
	}
}

// sendConfirmation emails the client after a fully successful submission.
// Partial failures send nothing; the confirmation would misstate what is
// booked. Best effort: a delivery failure never fails the submission.
func (s *Service) sendConfirmation(ctx context.Context, session *booking.Session, client Client, result *Result) {
	if s.sender == nil || client.Email == "" || len(result.Created) == 0 {
		return
	}

	lines := make([]notify.ConfirmationLine, 0, len(result.Created))
	for _, c := range result.Created {
		lines = append(lines, notify.ConfirmationLine{
			ServiceName: c.ServiceName,
			MasterName:  c.MasterName,
			Date:        c.Date,
			Time:        c.Time,
		})
	}
	subject, plainText, htmlBody := notify.BuildConfirmation(client.Name, lines)
	if err := s.sender.Send(ctx, client.Email, subject, plainText, htmlBody); err != nil {
		s.logger.Warn("failed to send confirmation email", "session_id", session.ID, "error", err)
	}
}

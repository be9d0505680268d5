// Package bookings turns a completed session into real appointments: it
// submits each configured service to the scheduler in order and keeps a
// local record of what was created.
package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// DB is the subset of pgxpool.Pool the repository uses, narrowed so tests
// can substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one created appointment as stored locally.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	ClientID    string    `json:"client_id"`
	ServiceID   string    `json:"service_id"`
	ServiceName string    `json:"service_name"`
	MasterName  string    `json:"master_name,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	UpstreamID  string    `json:"upstream_id,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository persists booking records in Postgres.
type Repository struct {
	db     DB
	logger *logging.Logger
}

// NewRepository creates a booking repository.
func NewRepository(db DB, logger *logging.Logger) *Repository {
	if db == nil {
		panic("bookings: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Insert stores one created booking.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (id, session_id, client_id, service_id, service_name, master_name, booking_date, booking_time, upstream_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.SessionID, rec.ClientID, rec.ServiceID, rec.ServiceName,
		rec.MasterName, rec.Date, rec.Time, rec.UpstreamID, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("bookings: insert record: %w", err)
	}
	return nil
}

// ListByClient returns a client's bookings, newest first.
func (r *Repository) ListByClient(ctx context.Context, clientID string) ([]Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, client_id, service_id, service_name, master_name, booking_date, booking_time, upstream_id, status, created_at
		FROM bookings
		WHERE client_id = $1
		ORDER BY created_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("bookings: list by client: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.ClientID, &rec.ServiceID, &rec.ServiceName,
			&rec.MasterName, &rec.Date, &rec.Time, &rec.UpstreamID, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("bookings: scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate records: %w", err)
	}
	return records, nil
}

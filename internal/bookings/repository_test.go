package bookings

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepository(mock, nil)

	rec := Record{
		ID:          "r1",
		SessionID:   "s1",
		ClientID:    "guest-1",
		ServiceID:   "5",
		ServiceName: "Manicure",
		MasterName:  "Jane Doe",
		Date:        "2026-09-01",
		Time:        "14:00",
		UpstreamID:  "b1",
		Status:      "confirmed",
		CreatedAt:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(rec.ID, rec.SessionID, rec.ClientID, rec.ServiceID, rec.ServiceName,
			rec.MasterName, rec.Date, rec.Time, rec.UpstreamID, rec.Status, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryListByClient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepository(mock, nil)

	created := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "session_id", "client_id", "service_id", "service_name",
		"master_name", "booking_date", "booking_time", "upstream_id", "status", "created_at",
	}).AddRow("r1", "s1", "guest-1", "5", "Manicure", "Jane Doe", "2026-09-01", "14:00", "b1", "confirmed", created)

	mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs("guest-1").WillReturnRows(rows)

	records, err := repo.ListByClient(context.Background(), "guest-1")
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(records) != 1 || records[0].ServiceName != "Manicure" || records[0].CreatedAt != created {
		t.Fatalf("unexpected records: %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

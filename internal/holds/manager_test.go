package holds

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
)

type fakeCreator struct {
	success bool
	err     error
	calls   int
	last    upstream.HoldRequest
}

func (f *fakeCreator) CreateHold(_ context.Context, req upstream.HoldRequest) (bool, error) {
	f.calls++
	f.last = req
	return f.success, f.err
}

func TestTryHoldAccepted(t *testing.T) {
	creator := &fakeCreator{success: true}
	m := NewManager(creator, true, nil, nil)

	outcome := m.TryHold(context.Background(), Request{
		ServiceID: "5", MasterName: "Jane", Date: "2026-09-01", Time: "14:00", ClientID: "guest-1",
	})
	if outcome != OutcomeAccepted {
		t.Fatalf("expected accepted, got %s", outcome)
	}
	if creator.last.MasterName != "Jane" || creator.last.ClientID != "guest-1" {
		t.Fatalf("unexpected upstream request: %+v", creator.last)
	}
}

func TestTryHoldRejected(t *testing.T) {
	creator := &fakeCreator{success: false}
	m := NewManager(creator, true, nil, nil)

	outcome := m.TryHold(context.Background(), Request{ServiceID: "5", MasterName: "Jane", Date: "2026-09-01", Time: "14:00"})
	if outcome != OutcomeRejected {
		t.Fatalf("expected rejected, got %s", outcome)
	}
}

func TestTryHoldTransportError(t *testing.T) {
	creator := &fakeCreator{err: errors.New("scheduler unreachable")}
	m := NewManager(creator, true, nil, nil)

	outcome := m.TryHold(context.Background(), Request{ServiceID: "5", MasterName: "Jane", Date: "2026-09-01", Time: "14:00"})
	if outcome != OutcomeTransportError {
		t.Fatalf("expected transport error, got %s", outcome)
	}
}

func TestTryHoldSkippedForAnyProfessional(t *testing.T) {
	creator := &fakeCreator{success: true}
	m := NewManager(creator, true, nil, nil)

	outcome := m.TryHold(context.Background(), Request{ServiceID: "5", MasterName: "", Date: "2026-09-01", Time: "14:00"})
	if outcome != OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", outcome)
	}
	if creator.calls != 0 {
		t.Fatalf("no upstream call expected in any-professional mode, got %d", creator.calls)
	}
}

func TestTryHoldSkippedWhenDisabled(t *testing.T) {
	creator := &fakeCreator{success: true}
	m := NewManager(creator, false, nil, nil)

	outcome := m.TryHold(context.Background(), Request{ServiceID: "5", MasterName: "Jane", Date: "2026-09-01", Time: "14:00"})
	if outcome != OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", outcome)
	}
	if creator.calls != 0 {
		t.Fatalf("no upstream call expected when disabled, got %d", creator.calls)
	}
}

func TestResolveClientID(t *testing.T) {
	if id, generated := ResolveClientID("user-9", "guest-1"); id != "user-9" || generated {
		t.Fatalf("authenticated id must win: %s %v", id, generated)
	}
	if id, generated := ResolveClientID("", "guest-1"); id != "guest-1" || generated {
		t.Fatalf("existing guest id must be reused: %s %v", id, generated)
	}
	id, generated := ResolveClientID("", "")
	if !generated || !strings.HasPrefix(id, "guest-") || len(id) <= len("guest-") {
		t.Fatalf("expected fresh guest id, got %s %v", id, generated)
	}
}

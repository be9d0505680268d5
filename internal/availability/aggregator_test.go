package availability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
)

type fakeSource struct {
	mu    sync.Mutex
	slots map[string][]upstream.Slot // employeeID -> slots
	fail  map[string]bool
	calls int

	dates     []string
	datesErr  error
	dateCalls int
}

func (f *fakeSource) GetAvailableSlots(_ context.Context, _ string, employeeID string) ([]upstream.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[employeeID] {
		return nil, errors.New("scheduler unreachable")
	}
	return f.slots[employeeID], nil
}

func (f *fakeSource) GetAvailableDates(_ context.Context, _ string, _, _, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dateCalls++
	if f.datesErr != nil {
		return nil, f.datesErr
	}
	return f.dates, nil
}

func masters(ids ...string) []catalog.Master {
	out := make([]catalog.Master, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Master{ID: id, FullName: "Master " + id})
	}
	return out
}

func TestZeroCandidatesNoNetworkCalls(t *testing.T) {
	source := &fakeSource{}
	svc := NewService(source, nil, nil)

	slots, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected empty result, got %+v", slots)
	}
	if source.calls != 0 {
		t.Fatalf("expected zero upstream calls, got %d", source.calls)
	}
}

func TestAnyModeUnionDedupeSorted(t *testing.T) {
	source := &fakeSource{slots: map[string][]upstream.Slot{
		"a": {{Time: "12:00", Available: true}, {Time: "09:00", Available: true}, {Time: "11:00", Available: false}},
		"b": {{Time: "09:00", Available: true}, {Time: "10:30", Available: true}},
	}}
	svc := NewService(source, nil, nil)

	slots, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", masters("a", "b"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "10:30", "12:00"}
	if len(slots) != len(want) {
		t.Fatalf("unexpected slots: %+v", slots)
	}
	for i, w := range want {
		if slots[i].Time != w {
			t.Fatalf("slot[%d] = %s, want %s (all: %+v)", i, slots[i].Time, w, slots)
		}
	}
}

func TestAnyModePartialFailureTolerated(t *testing.T) {
	source := &fakeSource{
		slots: map[string][]upstream.Slot{"b": {{Time: "10:00", Available: true}}},
		fail:  map[string]bool{"a": true},
	}
	svc := NewService(source, nil, nil)

	slots, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", masters("a", "b"), nil)
	if err != nil {
		t.Fatalf("partial failure must not fail the aggregate: %v", err)
	}
	if len(slots) != 1 || slots[0].Time != "10:00" {
		t.Fatalf("unexpected slots: %+v", slots)
	}
}

func TestAnyModeAllFail(t *testing.T) {
	source := &fakeSource{fail: map[string]bool{"a": true, "b": true}}
	svc := NewService(source, nil, nil)

	slots, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", masters("a", "b"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected empty aggregate, got %+v", slots)
	}
}

func TestSpecificMasterFiltersUnavailable(t *testing.T) {
	source := &fakeSource{slots: map[string][]upstream.Slot{
		"a": {{Time: "10:00", Available: true}, {Time: "10:30", Available: false}, {Time: "09:00", Available: true}},
	}}
	svc := NewService(source, nil, nil)

	m := catalog.Master{ID: "a"}
	slots, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", nil, &m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 || slots[0].Time != "09:00" || slots[1].Time != "10:00" {
		t.Fatalf("unexpected slots: %+v", slots)
	}
	if slots[0].IsOptimal || slots[1].IsOptimal {
		t.Fatalf("specific-master slots are never marked optimal: %+v", slots)
	}
}

func TestSpecificMasterErrorPropagates(t *testing.T) {
	source := &fakeSource{fail: map[string]bool{"a": true}}
	svc := NewService(source, nil, nil)

	m := catalog.Master{ID: "a"}
	if _, err := svc.ComputeAvailableSlots(context.Background(), "2026-09-01", nil, &m); err == nil {
		t.Fatal("expected error for specific master fetch failure")
	}
}

func TestAvailableDates(t *testing.T) {
	source := &fakeSource{dates: []string{"2026-09-03", "2026-09-10"}}
	svc := NewService(source, nil, nil)

	set, err := svc.AvailableDates(context.Background(), 2026, 9, "", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Contains("2026-09-03") || !set.Contains("2026-09-10") || set.Contains("2026-09-04") {
		t.Fatalf("unexpected set: %v", set)
	}
}

func TestAvailableDatesError(t *testing.T) {
	source := &fakeSource{datesErr: errors.New("boom")}
	svc := NewService(source, nil, nil)

	if _, err := svc.AvailableDates(context.Background(), 2026, 9, "any", 60); err == nil {
		t.Fatal("expected error")
	}
}

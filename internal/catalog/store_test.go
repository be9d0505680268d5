package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
)

type fakeSource struct {
	services     []upstream.Service
	users        []upstream.User
	holidays     []upstream.Holiday
	serviceCalls int
	userCalls    int
	holidayCalls int
}

func (f *fakeSource) GetServices(context.Context) ([]upstream.Service, error) {
	f.serviceCalls++
	return f.services, nil
}

func (f *fakeSource) GetUsers(context.Context) ([]upstream.User, error) {
	f.userCalls++
	return f.users, nil
}

func (f *fakeSource) GetHolidays(context.Context) ([]upstream.Holiday, error) {
	f.holidayCalls++
	return f.holidays, nil
}

func newTestStore(t *testing.T, source Source) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, source, time.Minute, nil), mr
}

func TestServicesCached(t *testing.T) {
	source := &fakeSource{services: []upstream.Service{
		{ID: "1", Names: map[string]string{"default": "Manicure"}, Price: 20},
	}}
	store, _ := newTestStore(t, source)
	ctx := context.Background()

	first, err := store.Services(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Services(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.serviceCalls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", source.serviceCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Names["default"] != "Manicure" {
		t.Fatalf("unexpected services: %+v / %+v", first, second)
	}
}

func TestServicesCacheExpires(t *testing.T) {
	source := &fakeSource{services: []upstream.Service{{ID: "1"}}}
	store, mr := newTestStore(t, source)
	ctx := context.Background()

	if _, err := store.Services(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Services(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.serviceCalls != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", source.serviceCalls)
	}
}

func TestMastersFilteredAndCached(t *testing.T) {
	source := &fakeSource{users: []upstream.User{
		{ID: "1", FullName: "Jane", Role: "master", Services: []upstream.Service{{ID: "10"}}},
		{ID: "2", FullName: "Client", Role: "client"},
		{ID: "3", FullName: "Amy", Role: "employee"},
	}}
	store, _ := newTestStore(t, source)
	ctx := context.Background()

	masters, err := store.Masters(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(masters) != 2 {
		t.Fatalf("expected two masters, got %+v", masters)
	}

	candidates, err := store.CandidatesFor(ctx, "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Jane declares service 10; Amy declares nothing and is treated as
	// capable of everything.
	if len(candidates) != 2 {
		t.Fatalf("expected both masters as candidates, got %+v", candidates)
	}

	candidates, err = store.CandidatesFor(ctx, "99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].FullName != "Amy" {
		t.Fatalf("expected only unrestricted master, got %+v", candidates)
	}
}

func TestStoreWithoutRedis(t *testing.T) {
	source := &fakeSource{holidays: []upstream.Holiday{{Date: "2026-01-01", Name: "New Year"}}}
	store := NewStore(nil, source, time.Minute, nil)

	for i := 0; i < 2; i++ {
		holidays, err := store.Holidays(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(holidays) != 1 || holidays[0].Name != "New Year" {
			t.Fatalf("unexpected holidays: %+v", holidays)
		}
	}
	if source.holidayCalls != 2 {
		t.Fatalf("expected direct fetches without redis, got %d", source.holidayCalls)
	}
}

func TestLookupHelpers(t *testing.T) {
	source := &fakeSource{
		services: []upstream.Service{{ID: "1"}, {ID: "2"}},
		users:    []upstream.User{{ID: "7", Role: "master"}},
	}
	store, _ := newTestStore(t, source)
	ctx := context.Background()

	svc, err := store.ServiceByID(ctx, "2")
	if err != nil || svc == nil || svc.ID != "2" {
		t.Fatalf("unexpected lookup: %+v err=%v", svc, err)
	}
	missing, err := store.ServiceByID(ctx, "9")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing service, got %+v err=%v", missing, err)
	}

	m, err := store.MasterByID(ctx, "7")
	if err != nil || m == nil || m.ID != "7" {
		t.Fatalf("unexpected master lookup: %+v err=%v", m, err)
	}
}

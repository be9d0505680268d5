package booking

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
)

func TestEncodeQuery(t *testing.T) {
	s := NewSession("s1", "guest-1")
	s.AddService("5")
	s.AddService("6")
	s.GoTo(StepProfessional)

	values := EncodeQuery(s)
	if got := values.Get("step"); got != "professional" {
		t.Fatalf("expected step=professional, got %q", got)
	}
	if got := values.Get("ids"); got != "5,6" {
		t.Fatalf("expected ids=5,6, got %q", got)
	}
	if got := values.Get("current"); got != "6" {
		t.Fatalf("expected current=6, got %q", got)
	}
}

func TestDecodeQueryIntersectsWithCatalog(t *testing.T) {
	services := []catalog.Service{{ID: "5"}, {ID: "6"}}
	values := url.Values{}
	values.Set("step", "professional")
	values.Set("ids", "5,99,6,5")
	values.Set("current", "99")

	s := DecodeQuery(values, services)

	if s.Step != StepProfessional {
		t.Fatalf("expected professional, got %s", s.Step)
	}
	if !reflect.DeepEqual(s.SelectedServices, []string{"5", "6"}) {
		t.Fatalf("expected [5 6], got %v", s.SelectedServices)
	}
	if s.CurrentServiceID != "" {
		t.Fatalf("current pointing at a dropped id must be cleared, got %q", s.CurrentServiceID)
	}
	for _, id := range s.SelectedServices {
		if s.Configs[id] == nil {
			t.Fatalf("missing config for %s", id)
		}
	}
}

func TestDecodeQueryUnknownStepFallsBackToMenu(t *testing.T) {
	values := url.Values{}
	values.Set("step", "checkout")

	if s := DecodeQuery(values, nil); s.Step != StepMenu {
		t.Fatalf("expected menu fallback, got %s", s.Step)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	services := []catalog.Service{{ID: "5"}, {ID: "6"}}
	s := NewSession("s1", "")
	s.AddService("5")
	s.AddService("6")
	s.GoTo(StepDateTime)

	decoded := DecodeQuery(EncodeQuery(s), services)

	if decoded.Step != s.Step {
		t.Fatalf("step lost in round trip: %s vs %s", decoded.Step, s.Step)
	}
	if !reflect.DeepEqual(decoded.SelectedServices, s.SelectedServices) {
		t.Fatalf("ids lost in round trip: %v vs %v", decoded.SelectedServices, s.SelectedServices)
	}
	if decoded.CurrentServiceID != s.CurrentServiceID {
		t.Fatalf("current lost in round trip: %q vs %q", decoded.CurrentServiceID, s.CurrentServiceID)
	}
}

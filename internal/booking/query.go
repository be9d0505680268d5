package booking

import (
	"net/url"
	"strings"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
)

// Query parameter names mirrored into shareable links so a refresh or
// deep-link resumes the wizard where the client left it.
const (
	queryStep    = "step"
	queryIDs     = "ids"
	queryCurrent = "current"
)

// EncodeQuery serializes the resumable part of a session into query
// parameters. Only the coarse shape travels in the URL; per-service
// selections stay server-side.
func EncodeQuery(s *Session) url.Values {
	values := url.Values{}
	if s == nil {
		return values
	}
	if s.Step != "" {
		values.Set(queryStep, string(s.Step))
	}
	if len(s.SelectedServices) > 0 {
		values.Set(queryIDs, strings.Join(s.SelectedServices, ","))
	}
	if s.CurrentServiceID != "" {
		values.Set(queryCurrent, s.CurrentServiceID)
	}
	return values
}

// DecodeQuery rebuilds a partial session from query parameters. Service ids
// are intersected with the live catalog: ids for services that disappeared
// since the link was made are silently dropped, as is a current pointer at a
// dropped id. An unknown step falls back to the menu.
func DecodeQuery(values url.Values, services []catalog.Service) *Session {
	s := NewSession("", "")

	if step, ok := ParseStep(values.Get(queryStep)); ok {
		s.Step = step
	}

	known := make(map[string]struct{}, len(services))
	for _, svc := range services {
		known[svc.ID] = struct{}{}
	}

	for _, id := range strings.Split(values.Get(queryIDs), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := s.Configs[id]; dup {
			continue
		}
		s.SelectedServices = append(s.SelectedServices, id)
		s.Configs[id] = &Config{ServiceID: id}
	}

	if current := values.Get(queryCurrent); current != "" {
		if _, ok := s.Configs[current]; ok {
			s.CurrentServiceID = current
		}
	}

	return s
}

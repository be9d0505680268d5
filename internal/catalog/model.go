// Package catalog holds the salon's reference data: services, masters and
// holidays. The data is owned by the upstream scheduler and cached here.
package catalog

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
)

// Service is immutable reference data fetched once per session.
type Service struct {
	ID       string            `json:"id"`
	Names    map[string]string `json:"names"`
	Price    float64           `json:"price"`
	Currency string            `json:"currency"`
	Duration string            `json:"duration"`
	Category string            `json:"category"`
}

// Master is a professional who performs services. An empty ServiceIDs list
// means the master performs every service; several call sites in earlier
// versions of this product disagreed on that, the permissive reading is the
// one we standardize on.
type Master struct {
	ID         string   `json:"id"`
	FullName   string   `json:"full_name"`
	Username   string   `json:"username"`
	Photo      string   `json:"photo"`
	Position   string   `json:"position"`
	ServiceIDs []string `json:"service_ids"`
}

// Holiday marks a non-working calendar day.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// CanPerform reports whether the master offers the given service.
func (m Master) CanPerform(serviceID string) bool {
	if len(m.ServiceIDs) == 0 {
		return true
	}
	for _, id := range m.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// DisplayName resolves a locale-variant name map through a fixed fallback
// chain: requested locale, default locale, the bare "default" name, then the
// lexicographically first entry so the result is deterministic.
func DisplayName(names map[string]string, locale, defaultLocale string) string {
	if len(names) == 0 {
		return ""
	}
	if name, ok := names[locale]; ok && name != "" {
		return name
	}
	if name, ok := names[defaultLocale]; ok && name != "" {
		return name
	}
	if name, ok := names["default"]; ok && name != "" {
		return name
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if names[k] != "" {
			return names[k]
		}
	}
	return ""
}

// Name resolves the service's display name for a locale.
func (s Service) Name(locale, defaultLocale string) string {
	return DisplayName(s.Names, locale, defaultLocale)
}

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*(?:h|hr|hour)`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*(?:min|m\b)`)
	bareNumber     = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// DurationMinutes parses the free-text duration carried by the scheduler,
// e.g. "1h 30 min", "45 min", "2h". A bare number is read as minutes.
// Unparseable text falls back to the given default.
func DurationMinutes(text string, fallback int) int {
	if m := bareNumber.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}

	total := 0
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			total += v * 60
		}
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			total += v
		}
	}
	if total == 0 {
		return fallback
	}
	return total
}

// FromUpstreamService converts a scheduler wire record to the domain type.
func FromUpstreamService(s upstream.Service) Service {
	names := s.Names
	if names == nil {
		names = map[string]string{}
	}
	return Service{
		ID:       s.ID,
		Names:    names,
		Price:    s.Price,
		Currency: s.Currency,
		Duration: s.Duration,
		Category: s.Category,
	}
}

// FromUpstreamUser converts a scheduler user to a Master. It returns false
// for records that are not staff.
func FromUpstreamUser(u upstream.User) (Master, bool) {
	switch u.Role {
	case "master", "employee", "staff":
	default:
		return Master{}, false
	}
	m := Master{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Photo:    u.Photo,
		Position: u.Position,
	}
	for _, svc := range u.Services {
		if svc.ID != "" {
			m.ServiceIDs = append(m.ServiceIDs, svc.ID)
		}
	}
	return m, true
}

package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Slot is a single bookable time-of-day for one master on one date.
// Times are zero-padded local wall-clock "HH:MM" strings; the scheduler
// carries no timezone on the wire.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Service is a catalog entry as returned by the scheduler. Localized names
// arrive as sibling keys (name, name_ru, name_es, ...) and are collected
// into Names keyed by locale; the bare "name" key is stored under "default".
type Service struct {
	ID       string
	Names    map[string]string
	Price    float64
	Currency string
	Duration string
	Category string
}

// UnmarshalJSON sweeps the dynamic name_<locale> keys into the Names map.
func (s *Service) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("upstream: decode service: %w", err)
	}

	s.Names = make(map[string]string)
	for key, val := range raw {
		switch {
		case key == "name":
			var name string
			if err := json.Unmarshal(val, &name); err == nil {
				s.Names["default"] = name
			}
		case strings.HasPrefix(key, "name_"):
			locale := strings.TrimPrefix(key, "name_")
			var name string
			if err := json.Unmarshal(val, &name); err == nil && locale != "" {
				s.Names[locale] = name
			}
		case key == "id":
			s.ID = decodeFlexibleID(val)
		case key == "price":
			_ = json.Unmarshal(val, &s.Price)
		case key == "currency":
			_ = json.Unmarshal(val, &s.Currency)
		case key == "duration":
			_ = json.Unmarshal(val, &s.Duration)
		case key == "category":
			_ = json.Unmarshal(val, &s.Category)
		}
	}
	return nil
}

// decodeFlexibleID accepts both numeric and string ids.
func decodeFlexibleID(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

// User is a staff or client record from the scheduler's user list.
// Callers filter to masters via the Role field.
type User struct {
	ID       string    `json:"-"`
	FullName string    `json:"full_name"`
	Username string    `json:"username"`
	Photo    string    `json:"photo"`
	Position string    `json:"position"`
	Role     string    `json:"role"`
	Services []Service `json:"services"`
}

type userAlias User

// UnmarshalJSON tolerates numeric ids.
func (u *User) UnmarshalJSON(data []byte) error {
	var alias userAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("upstream: decode user: %w", err)
	}
	*u = User(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		if idRaw, ok := raw["id"]; ok {
			u.ID = decodeFlexibleID(idRaw)
		}
	}
	return nil
}

// Holiday marks a non-working calendar day.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// HoldRequest asks the scheduler for a short-lived advisory reservation of a
// slot. TTL and expiry policy are owned entirely by the scheduler.
type HoldRequest struct {
	ServiceID  string `json:"service_id"`
	MasterName string `json:"master_name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	ClientID   string `json:"client_id"`
}

// BookingRequest creates one booking for one service. An empty Master defers
// professional assignment to the scheduler ("any available professional").
type BookingRequest struct {
	Name        string `json:"name,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
	Service     string `json:"service"`
	Master      string `json:"master,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Phone       string `json:"phone"`
}

// BookingRecord is the scheduler's echo of a created booking.
type BookingRecord struct {
	ID      string `json:"-"`
	Service string `json:"service"`
	Master  string `json:"master"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

type bookingRecordAlias BookingRecord

// UnmarshalJSON tolerates numeric ids.
func (b *BookingRecord) UnmarshalJSON(data []byte) error {
	var alias bookingRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("upstream: decode booking record: %w", err)
	}
	*b = BookingRecord(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		if idRaw, ok := raw["id"]; ok {
			b.ID = decodeFlexibleID(idRaw)
		}
	}
	return nil
}

type slotsResponse struct {
	Slots []Slot `json:"slots"`
}

type availableDatesResponse struct {
	Success        bool     `json:"success"`
	AvailableDates []string `json:"available_dates"`
}

type mastersAvailabilityResponse struct {
	Success      bool                `json:"success"`
	Availability map[string][]string `json:"availability"`
}

type holdResponse struct {
	Success bool `json:"success"`
}

// Package booking keeps the multi-service booking session: which services
// the client picked, who performs each one, and when. The session is the
// shared state hub of the wizard; every selection step mutates it.
package booking

import (
	"fmt"
	"time"
)

// Step is a wizard screen. Navigation pushes onto a history stack so "back"
// retraces the client's actual path.
type Step string

const (
	StepMenu         Step = "menu"
	StepServices     Step = "services"
	StepProfessional Step = "professional"
	StepDateTime     Step = "datetime"
	StepConfirm      Step = "confirm"
)

// ParseStep validates a wire step value.
func ParseStep(s string) (Step, bool) {
	switch Step(s) {
	case StepMenu, StepServices, StepProfessional, StepDateTime, StepConfirm:
		return Step(s), true
	}
	return "", false
}

// MasterChoice is a committed professional selection. Any=true defers the
// assignment to the scheduler ("any available professional") and is a valid
// terminal choice; a nil *MasterChoice on a config means nothing was chosen
// yet.
type MasterChoice struct {
	Any  bool   `json:"any"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (m *MasterChoice) clone() *MasterChoice {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (m *MasterChoice) equal(other *MasterChoice) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Any == other.Any && m.ID == other.ID
}

// Config is one service's booking selections.
type Config struct {
	ServiceID string        `json:"service_id"`
	Master    *MasterChoice `json:"master,omitempty"`
	Date      string        `json:"date,omitempty"`
	Time      string        `json:"time,omitempty"`
}

// Complete reports whether the config can be submitted. "Any professional"
// counts as complete; only a missing choice does not.
func (c *Config) Complete() bool {
	return c != nil && c.Master != nil && c.Date != "" && c.Time != ""
}

// Draft carries selections made before any service is chosen (the
// professional-first entry flow); the first added service inherits them.
type Draft struct {
	Master *MasterChoice `json:"master,omitempty"`
	Date   string        `json:"date,omitempty"`
	Time   string        `json:"time,omitempty"`
}

// Session is the root aggregate for one booking flow. Invariant: every id in
// SelectedServices has an entry in Configs and vice versa.
type Session struct {
	ID               string             `json:"id"`
	ClientID         string             `json:"client_id,omitempty"`
	Step             Step               `json:"step"`
	SelectedServices []string           `json:"selected_services"`
	Configs          map[string]*Config `json:"configs"`
	Draft            Draft              `json:"draft"`
	CurrentServiceID string             `json:"current_service_id,omitempty"`
	History          []Step             `json:"history,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewSession creates an empty session at the menu step.
func NewSession(id, clientID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:               id,
		ClientID:         clientID,
		Step:             StepMenu,
		SelectedServices: []string{},
		Configs:          map[string]*Config{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AddService selects a service and seeds its config from the draft. The time
// is always reset: the total duration changed, so previously valid slots may
// no longer fit. Adding an already-selected service only refocuses it.
func (s *Session) AddService(serviceID string) {
	if cfg := s.Configs[serviceID]; cfg != nil {
		s.CurrentServiceID = serviceID
		return
	}
	s.SelectedServices = append(s.SelectedServices, serviceID)
	s.Configs[serviceID] = &Config{
		ServiceID: serviceID,
		Master:    s.Draft.Master.clone(),
		Date:      s.Draft.Date,
	}
	s.CurrentServiceID = serviceID
	s.touch()
}

// RemoveService drops a service and its config. Focus is cleared when it
// pointed at the removed service.
func (s *Session) RemoveService(serviceID string) {
	if _, ok := s.Configs[serviceID]; !ok {
		return
	}
	delete(s.Configs, serviceID)
	kept := s.SelectedServices[:0]
	for _, id := range s.SelectedServices {
		if id != serviceID {
			kept = append(kept, id)
		}
	}
	s.SelectedServices = kept
	if s.CurrentServiceID == serviceID {
		s.CurrentServiceID = ""
	}
	s.touch()
}

// SetMaster commits a professional for one service. A changed master resets
// that service's date and time: a different calendar invalidates both.
// Other services' configs are untouched.
func (s *Session) SetMaster(serviceID string, choice *MasterChoice) error {
	cfg, ok := s.Configs[serviceID]
	if !ok {
		return fmt.Errorf("booking: service %s not selected", serviceID)
	}
	if choice == nil {
		return fmt.Errorf("booking: master choice required")
	}
	if !cfg.Master.equal(choice) {
		cfg.Date = ""
		cfg.Time = ""
	}
	cfg.Master = choice.clone()
	s.touch()
	return nil
}

// SetDate commits a date for one service. A changed date resets only the
// time.
func (s *Session) SetDate(serviceID, date string) error {
	cfg, ok := s.Configs[serviceID]
	if !ok {
		return fmt.Errorf("booking: service %s not selected", serviceID)
	}
	if cfg.Date != date {
		cfg.Time = ""
	}
	cfg.Date = date
	s.touch()
	return nil
}

// SetTime commits a time for one service.
func (s *Session) SetTime(serviceID, timeOfDay string) error {
	cfg, ok := s.Configs[serviceID]
	if !ok {
		return fmt.Errorf("booking: service %s not selected", serviceID)
	}
	cfg.Time = timeOfDay
	s.touch()
	return nil
}

// ClearTime rolls back a time selection, used when a hold is rejected.
func (s *Session) ClearTime(serviceID string) {
	if cfg, ok := s.Configs[serviceID]; ok {
		cfg.Time = ""
		s.touch()
	}
}

// SetDraftMaster records a professional chosen before any service.
func (s *Session) SetDraftMaster(choice *MasterChoice) {
	s.Draft.Master = choice.clone()
	s.touch()
}

// SetDraftDate records a date chosen before any service.
func (s *Session) SetDraftDate(date string) {
	s.Draft.Date = date
	s.touch()
}

// SetDraftTime records a time chosen before any service.
func (s *Session) SetDraftTime(timeOfDay string) {
	s.Draft.Time = timeOfDay
	s.touch()
}

// Complete reports whether one service's config is submittable.
func (s *Session) Complete(serviceID string) bool {
	return s.Configs[serviceID].Complete()
}

// IncompleteServices lists selected services whose configs cannot be
// submitted yet, in selection order.
func (s *Session) IncompleteServices() []string {
	var incomplete []string
	for _, id := range s.SelectedServices {
		if !s.Configs[id].Complete() {
			incomplete = append(incomplete, id)
		}
	}
	return incomplete
}

// GoTo navigates to a step. Returning to the menu is a deliberate
// start-over: the whole session resets.
func (s *Session) GoTo(step Step) {
	if step == StepMenu {
		s.Reset()
		return
	}
	if s.Step == step {
		return
	}
	s.History = append(s.History, s.Step)
	s.Step = step
	s.touch()
}

// Back pops the navigation history; at the bottom it stays put. Arriving at
// the menu resets the session the same way direct menu navigation does.
func (s *Session) Back() Step {
	if n := len(s.History); n > 0 {
		popped := s.History[n-1]
		s.History = s.History[:n-1]
		if popped == StepMenu {
			s.Reset()
			return s.Step
		}
		s.Step = popped
		s.touch()
	}
	return s.Step
}

// Reset returns the session to its initial empty state at the menu.
func (s *Session) Reset() {
	s.Step = StepMenu
	s.SelectedServices = []string{}
	s.Configs = map[string]*Config{}
	s.Draft = Draft{}
	s.CurrentServiceID = ""
	s.History = nil
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

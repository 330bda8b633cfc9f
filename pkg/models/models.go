package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnknownVisitType is returned when a visit type string is not one of VisitTypes
	ErrUnknownVisitType = errors.New("unknown visit type")
	// ErrInvalidInput marks structurally invalid scheduling input
	ErrInvalidInput = errors.New("invalid input")
)

// VisitType is the category of a clinic visit
type VisitType string

const (
	Consult     VisitType = "consult"
	Wellness    VisitType = "wellness"
	Vaccination VisitType = "vaccination"
	Surgery     VisitType = "surgery"
	Grooming    VisitType = "grooming"
	EndOfLife   VisitType = "end_of_life"
	Dental      VisitType = "dental"
	Specialty   VisitType = "specialty"
)

// VisitTypes lists every visit type in declaration order
var VisitTypes = []VisitType{Consult, Wellness, Vaccination, Surgery, Grooming, EndOfLife, Dental, Specialty}

var visitTypeAliases = map[string]VisitType{
	"euthanasia":  EndOfLife,
	"end-of-life": EndOfLife,
	"checkup":     Wellness,
}

// ParseVisitType normalizes s and resolves it to a known visit type
func ParseVisitType(s string) (VisitType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, v := range VisitTypes {
		if string(v) == norm {
			return v, nil
		}
	}
	if v, ok := visitTypeAliases[norm]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVisitType, s)
}

// Valid reports whether v is one of VisitTypes
func (v VisitType) Valid() bool {
	for _, known := range VisitTypes {
		if v == known {
			return true
		}
	}
	return false
}

// UnmarshalText lets JSON bodies, map keys and form values carry visit types
func (v *VisitType) UnmarshalText(text []byte) error {
	parsed, err := ParseVisitType(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// TimeOfDay is a wall clock time without a date, encoded as "HH:MM"
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q: %v", ErrInvalidInput, s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On places t on the calendar day of day, in day's location
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// StaffMember is a clinician or nurse who can take visits
type StaffMember struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	Capabilities []VisitType `json:"capabilities"`
	LunchStart   TimeOfDay   `json:"lunch_start"`
}

// Can reports whether the staff member performs visits of type v
func (s StaffMember) Can(v VisitType) bool {
	for _, c := range s.Capabilities {
		if c == v {
			return true
		}
	}
	return false
}

// Roster is the staff keyed by identifier
type Roster map[string]StaffMember

// NewRoster keys staff by ID; duplicate IDs are rejected
func NewRoster(staff []StaffMember) (Roster, error) {
	r := make(Roster, len(staff))
	for _, s := range staff {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: staff member without id", ErrInvalidInput)
		}
		if _, dup := r[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate staff id %q", ErrInvalidInput, s.ID)
		}
		r[s.ID] = s
	}
	return r, nil
}

// IDs returns the roster identifiers in sorted order
func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ScheduledVisit is a booked visit occupying the schedule
type ScheduledVisit struct {
	ID        string    `json:"id,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	VisitType VisitType `json:"visit_type"`
	StaffID   string    `json:"staff_id"`
	Species   string    `json:"species"`
}

// DurationMinutes is the booked length of the visit
func (v ScheduledVisit) DurationMinutes() int {
	return int(v.End.Sub(v.Start).Minutes())
}

// Customer carries the owner's attendance history
type Customer struct {
	ID         string  `json:"id"`
	LateRate   float64 `json:"late_rate"`
	NoShowRate float64 `json:"no_show_rate"`
}

// Unreliable reports a customer who is often late or misses visits
func (c Customer) Unreliable() bool {
	return Clamp01(c.LateRate) > 0.2 || Clamp01(c.NoShowRate) > 0.1
}

// Pet is the patient being booked
type Pet struct {
	ID               string           `json:"id"`
	Species          string           `json:"species"`
	HealthComplexity float64          `json:"health_complexity"`
	History          []ScheduledVisit `json:"history,omitempty"`
}

// Inventory maps a visit type to how urgently its consumables should be used, in [0,1]
type Inventory map[VisitType]float64

// Urgency returns the clamped urgency for v, zero when absent
func (inv Inventory) Urgency(v VisitType) float64 {
	return Clamp01(inv[v])
}

// Clamp01 bounds f to [0,1]
func Clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// SlotDuration is a visit length in minutes. Only the four constants below are valid.
type SlotDuration int

const (
	Short    SlotDuration = 15
	Standard SlotDuration = 30
	Extended SlotDuration = 45
	Long     SlotDuration = 60
)

// Valid reports whether d is one of the four visit lengths
func (d SlotDuration) Valid() bool {
	switch d {
	case Short, Standard, Extended, Long:
		return true
	}
	return false
}

// HourRange is an inclusive range of hours of the day
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether hour lies in the range, both ends included
func (r HourRange) Contains(hour int) bool {
	return r.Start <= hour && hour <= r.End
}

// VisitPolicy holds the duration and padding rules for one visit type
type VisitPolicy struct {
	MinDuration         SlotDuration `json:"min_duration"`
	RecommendedDuration SlotDuration `json:"recommended_duration"`
	MaxDuration         SlotDuration `json:"max_duration"`
	PaddingBefore       int          `json:"padding_before"`
	PaddingAfter        int          `json:"padding_after"`
	PreferredHours      []HourRange  `json:"preferred_hours"`
}

// DurationFor resolves the visit length for a pet's health complexity:
// complex cases get the maximum, simple ones the minimum.
func (p VisitPolicy) DurationFor(complexity float64) int {
	switch {
	case complexity > 0.7:
		return int(p.MaxDuration)
	case complexity < 0.3:
		return int(p.MinDuration)
	default:
		return int(p.RecommendedDuration)
	}
}

// Preferred reports whether t's hour falls in any preferred range
func (p VisitPolicy) Preferred(t time.Time) bool {
	for _, r := range p.PreferredHours {
		if r.Contains(t.Hour()) {
			return true
		}
	}
	return false
}

// OccupiedMinutes is the span a visit blocks including setup and cleanup
func (p VisitPolicy) OccupiedMinutes(duration int) int {
	return duration + p.PaddingBefore + p.PaddingAfter
}

func (p VisitPolicy) validate() error {
	for _, d := range []SlotDuration{p.MinDuration, p.RecommendedDuration, p.MaxDuration} {
		if !d.Valid() {
			return fmt.Errorf("duration %d is not one of 15/30/45/60", d)
		}
	}
	if p.MinDuration > p.RecommendedDuration || p.RecommendedDuration > p.MaxDuration {
		return fmt.Errorf("durations must satisfy min <= recommended <= max")
	}
	if p.PaddingBefore < 0 || p.PaddingAfter < 0 {
		return fmt.Errorf("padding cannot be negative")
	}
	if len(p.PreferredHours) == 0 {
		return fmt.Errorf("at least one preferred hour range is required")
	}
	for _, r := range p.PreferredHours {
		if r.Start < 0 || r.End > 23 || r.Start > r.End {
			return fmt.Errorf("invalid preferred hour range %d-%d", r.Start, r.End)
		}
	}
	return nil
}

// PolicyTable maps every visit type to its policy. It is read-only once built.
type PolicyTable struct {
	policies map[models.VisitType]VisitPolicy
}

// NewPolicyTable validates policies and requires an entry for every visit type
func NewPolicyTable(policies map[models.VisitType]VisitPolicy) (*PolicyTable, error) {
	t := &PolicyTable{policies: make(map[models.VisitType]VisitPolicy, len(policies))}
	for v, p := range policies {
		if !v.Valid() {
			return nil, fmt.Errorf("policy for %w %q", models.ErrUnknownVisitType, v)
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("policy for %s: %w", v, err)
		}
		p.PreferredHours = append([]HourRange(nil), p.PreferredHours...)
		t.policies[v] = p
	}
	for _, v := range models.VisitTypes {
		if _, ok := t.policies[v]; !ok {
			return nil, fmt.Errorf("missing policy for visit type %s", v)
		}
	}
	return t, nil
}

func defaultPolicyMap() map[models.VisitType]VisitPolicy {
	return map[models.VisitType]VisitPolicy{
		models.Consult:     {Standard, Standard, Extended, 5, 5, []HourRange{{9, 17}}},
		models.Wellness:    {Standard, Standard, Extended, 5, 5, []HourRange{{9, 17}}},
		models.Vaccination: {Short, Standard, Standard, 5, 5, []HourRange{{9, 17}}},
		// surgery and dental work go in the morning
		models.Surgery:  {Long, Long, Long, 15, 15, []HourRange{{9, 14}}},
		models.Grooming: {Extended, Long, Long, 10, 10, []HourRange{{9, 16}}},
		// avoid the first and last hour of the day
		models.EndOfLife: {Extended, Extended, Long, 15, 15, []HourRange{{10, 16}}},
		models.Dental:    {Long, Long, Long, 15, 15, []HourRange{{9, 14}}},
		models.Specialty: {Extended, Long, Long, 10, 10, []HourRange{{9, 16}}},
	}
}

// DefaultPolicies returns the clinic's standard policy table
func DefaultPolicies() *PolicyTable {
	t, err := NewPolicyTable(defaultPolicyMap())
	if err != nil {
		panic(err)
	}
	return t
}

// Policy returns the policy for v. Visit types are a closed set validated at
// the input boundary, so an unknown one here is a programming error and panics.
func (t *PolicyTable) Policy(v models.VisitType) VisitPolicy {
	p, ok := t.policies[v]
	if !ok {
		panic(fmt.Sprintf("scheduler: no policy for visit type %q", v))
	}
	return p
}

// Categories returns the covered visit types in declaration order
func (t *PolicyTable) Categories() []models.VisitType {
	return append([]models.VisitType(nil), models.VisitTypes...)
}

package models

import (
	"fmt"
	"sort"
	"time"
)

// Schedule holds booked visits keyed by their start instant. Two visits can
// never share a start time; the key always equals the visit's Start.
// A nil *Schedule behaves as an empty schedule.
type Schedule struct {
	byStart map[int64]ScheduledVisit
}

// NewSchedule builds a schedule from visits, rejecting duplicate start times
func NewSchedule(visits ...ScheduledVisit) (*Schedule, error) {
	s := &Schedule{byStart: make(map[int64]ScheduledVisit, len(visits))}
	for _, v := range visits {
		if err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add books v. It fails if a visit already starts at v.Start.
func (s *Schedule) Add(v ScheduledVisit) error {
	if s.byStart == nil {
		s.byStart = make(map[int64]ScheduledVisit)
	}
	key := v.Start.Unix()
	if _, taken := s.byStart[key]; taken {
		return fmt.Errorf("%w: a visit already starts at %s", ErrInvalidInput, v.Start.Format(time.RFC3339))
	}
	s.byStart[key] = v
	return nil
}

// At returns the visit starting exactly at t
func (s *Schedule) At(t time.Time) (ScheduledVisit, bool) {
	if s == nil {
		return ScheduledVisit{}, false
	}
	v, ok := s.byStart[t.Unix()]
	return v, ok
}

// Has reports whether a visit starts exactly at t
func (s *Schedule) Has(t time.Time) bool {
	_, ok := s.At(t)
	return ok
}

func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byStart)
}

// Visits returns every visit in chronological order
func (s *Schedule) Visits() []ScheduledVisit {
	if s == nil {
		return nil
	}
	out := make([]ScheduledVisit, 0, len(s.byStart))
	for _, v := range s.byStart {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Clone returns an independent copy that can be mutated without touching s
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{byStart: make(map[int64]ScheduledVisit, s.Len())}
	if s != nil {
		for k, v := range s.byStart {
			c.byStart[k] = v
		}
	}
	return c
}

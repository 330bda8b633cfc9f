package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

const (
	// OpenHour and CloseHour bound the clinic day; CloseHour is exclusive
	OpenHour  = 9
	CloseHour = 17
	// BusinessDays is the candidate horizon; weekends are skipped and not counted
	BusinessDays = 5
)

// DefaultStartDate rounds now down to the hour, moving to 09:00 the next day
// once the clinic has closed.
func DefaultStartDate(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	if start.Hour() >= CloseHour {
		next := start.AddDate(0, 0, 1)
		start = time.Date(next.Year(), next.Month(), next.Day(), OpenHour, 0, 0, 0, next.Location())
	}
	return start
}

// IsBusinessDay reports Monday through Friday
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Rejections counts why grid times were not offered as candidates
type Rejections struct {
	Examined     int
	NotPreferred int
	NoStaff      int
	Conflict     int
}

// Reasons renders the counts the way conflict reports are shown to callers
func (r Rejections) Reasons() []string {
	var reasons []string
	if r.NotPreferred > 0 {
		reasons = append(reasons, fmt.Sprintf("%d times were outside the preferred hours", r.NotPreferred))
	}
	if r.NoStaff > 0 {
		reasons = append(reasons, fmt.Sprintf("%d times had no capable staff free", r.NoStaff))
	}
	if r.Conflict > 0 {
		reasons = append(reasons, fmt.Sprintf("%d times overlapped an existing visit", r.Conflict))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no clinic hours in the search window")
	}
	return reasons
}

// GenerateCandidates enumerates feasible start times over the next five
// business days, in chronological order. A zero startDate means
// DefaultStartDate(s.Now()). An empty result is a normal outcome.
func (s *Scheduler) GenerateCandidates(schedule *models.Schedule, roster models.Roster, visitType models.VisitType, pet models.Pet, startDate time.Time) []time.Time {
	candidates, _ := s.generate(schedule, roster, visitType, pet, startDate)
	return candidates
}

func (s *Scheduler) generate(schedule *models.Schedule, roster models.Roster, visitType models.VisitType, pet models.Pet, startDate time.Time) ([]time.Time, Rejections) {
	if startDate.IsZero() {
		startDate = DefaultStartDate(s.now())
	}

	policy := s.Policies.Policy(visitType)
	duration := policy.DurationFor(pet.HealthComplexity)
	occupied := policy.OccupiedMinutes(duration)

	var candidates []time.Time
	var rej Rejections

	day := startDate
	for counted := 0; counted < BusinessDays; day = day.AddDate(0, 0, 1) {
		if !IsBusinessDay(day) {
			continue
		}
		counted++

		open := time.Date(day.Year(), day.Month(), day.Day(), OpenHour, 0, 0, 0, day.Location())
		closing := time.Date(day.Year(), day.Month(), day.Day(), CloseHour, 0, 0, 0, day.Location())
		for t := open; t.Before(closing); t = t.Add(SlotStep) {
			rej.Examined++
			if !policy.Preferred(t) {
				rej.NotPreferred++
				continue
			}
			if len(AvailableStaff(t, occupied, roster, schedule, visitType)) == 0 {
				rej.NoStaff++
				continue
			}
			if HasConflict(t, duration, schedule) {
				rej.Conflict++
				continue
			}
			candidates = append(candidates, t)
		}
	}
	return candidates, rej
}

package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

const (
	// SlotStep is the granularity of the schedule grid
	SlotStep = 15 * time.Minute
	// LunchDuration is the fixed length of every staff lunch break
	LunchDuration = time.Hour
)

// gridSteps returns the 15-minute marks in [at, at+minutes)
func gridSteps(at time.Time, minutes int) []time.Time {
	end := at.Add(time.Duration(minutes) * time.Minute)
	var steps []time.Time
	for t := at; t.Before(end); t = t.Add(SlotStep) {
		steps = append(steps, t)
	}
	return steps
}

// OnLunch reports whether at falls inside the staff member's lunch break on that day
func OnLunch(staff models.StaffMember, at time.Time) bool {
	start := staff.LunchStart.On(at)
	return !at.Before(start) && at.Before(start.Add(LunchDuration))
}

// BookedAt reports whether the staff member already has a visit starting on
// any 15-minute mark of [at, at+minutes). Visits starting off the grid are not seen.
func BookedAt(staffID string, at time.Time, minutes int, schedule *models.Schedule) bool {
	for _, step := range gridSteps(at, minutes) {
		if v, ok := schedule.At(step); ok && v.StaffID == staffID {
			return true
		}
	}
	return false
}

// AvailableStaff returns, sorted, the IDs of staff who can perform visitType
// at the given time for the given number of minutes: capable, not on lunch
// when the visit starts, and not already booked on the grid.
func AvailableStaff(at time.Time, minutes int, roster models.Roster, schedule *models.Schedule, visitType models.VisitType) []string {
	var available []string
	for id, staff := range roster {
		if !staff.Can(visitType) {
			continue
		}
		if OnLunch(staff, at) {
			continue
		}
		if BookedAt(id, at, minutes, schedule) {
			continue
		}
		available = append(available, id)
	}
	sort.Strings(available)
	return available
}

// HasConflict reports whether any visit, whoever is assigned, starts on a
// 15-minute mark of [at, at+minutes)
func HasConflict(at time.Time, minutes int, schedule *models.Schedule) bool {
	for _, step := range gridSteps(at, minutes) {
		if schedule.Has(step) {
			return true
		}
	}
	return false
}

package scheduler

import (
	"math"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// slotsPerStaffDay is the number of 30-minute slots between opening and closing
const slotsPerStaffDay = (CloseHour - OpenHour) * 2

// Summarize reports how full the given day is and how evenly it is spread over the roster
func Summarize(schedule *models.Schedule, roster models.Roster, day time.Time) models.ScheduleSummary {
	summary := models.ScheduleSummary{
		Date:        day.Format("2006-01-02"),
		TotalSlots:  len(roster) * slotsPerStaffDay,
		ByVisitType: make(map[models.VisitType]int),
		ByStaff:     make(map[string]int),
	}

	minutes := make(map[string]float64, len(roster))
	for id := range roster {
		minutes[id] = 0
	}

	y, m, d := day.Date()
	for _, v := range schedule.Visits() {
		vy, vm, vd := v.Start.In(day.Location()).Date()
		if vy != y || vm != m || vd != d {
			continue
		}
		summary.BookedSlots++
		summary.ByVisitType[v.VisitType]++
		summary.ByStaff[v.StaffID]++
		if _, ok := minutes[v.StaffID]; ok {
			minutes[v.StaffID] += v.End.Sub(v.Start).Minutes()
		}
	}

	if summary.TotalSlots > 0 {
		summary.Utilization = float64(summary.BookedSlots) / float64(summary.TotalSlots) * 100
	}
	summary.FairnessScore = FairnessScore(minutes)
	return summary
}

// FairnessScore returns a percentage (0-100) representing how evenly
// booked minutes are distributed. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(load map[string]float64) float64 {
	if len(load) == 0 {
		return 100.0
	}

	var sum float64
	for _, v := range load {
		sum += v
	}

	if sum == 0 {
		return 100.0 // an empty day is perfectly fair
	}

	mean := sum / float64(len(load))

	var varianceSum float64
	for _, v := range load {
		diff := v - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(load))
	stdDev := math.Sqrt(variance)

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

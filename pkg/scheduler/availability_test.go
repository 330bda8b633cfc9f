package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

func TestAvailableStaff_Lunch(t *testing.T) {
	roster := testRoster()

	assert.Equal(t, []string{"staff1"}, AvailableStaff(at(21, 11, 45), 30, roster, nil, models.Vaccination))
	assert.Empty(t, AvailableStaff(at(21, 12, 0), 30, roster, nil, models.Vaccination))
	assert.Empty(t, AvailableStaff(at(21, 12, 59), 30, roster, nil, models.Vaccination))
	assert.Equal(t, []string{"staff1"}, AvailableStaff(at(21, 13, 0), 30, roster, nil, models.Vaccination))
}

func TestAvailableStaff_Capability(t *testing.T) {
	roster := testRoster()
	roster["staff3"] = models.StaffMember{ID: "staff3", Capabilities: []models.VisitType{models.Surgery}, LunchStart: lunch(12)}

	assert.Equal(t, []string{"staff2", "staff3"}, AvailableStaff(at(21, 9, 0), 60, roster, nil, models.Surgery))
	assert.Empty(t, AvailableStaff(at(21, 9, 0), 60, roster, nil, models.Grooming))
}

func TestAvailableStaff_Booked(t *testing.T) {
	schedule := mustSchedule(t, visit(at(21, 10, 0), 30, models.Wellness, "staff1", "cat"))
	roster := testRoster()

	assert.Empty(t, AvailableStaff(at(21, 9, 45), 30, roster, schedule, models.Vaccination))
	assert.Equal(t, []string{"staff1"}, AvailableStaff(at(21, 9, 15), 30, roster, schedule, models.Vaccination))
	// other staff's visits do not block
	assert.Equal(t, []string{"staff2"}, AvailableStaff(at(21, 10, 0), 60, roster, schedule, models.Surgery))
}

func TestAvailableStaff_OffGridVisitNotSeen(t *testing.T) {
	schedule := mustSchedule(t, visit(at(21, 10, 5), 30, models.Wellness, "staff1", "cat"))

	assert.Equal(t, []string{"staff1"}, AvailableStaff(at(21, 10, 0), 30, testRoster(), schedule, models.Vaccination))
	assert.False(t, HasConflict(at(21, 10, 0), 30, schedule))
}

func TestHasConflict(t *testing.T) {
	schedule := mustSchedule(t, visit(at(21, 10, 0), 30, models.Surgery, "staff2", "dog"))

	assert.True(t, HasConflict(at(21, 9, 45), 30, schedule))
	assert.True(t, HasConflict(at(21, 10, 0), 15, schedule))
	assert.False(t, HasConflict(at(21, 9, 30), 30, schedule))
	assert.False(t, HasConflict(at(21, 10, 15), 30, schedule))
	assert.False(t, HasConflict(at(21, 10, 0), 30, nil))
}

func TestSummarize(t *testing.T) {
	roster := testRoster()

	even := mustSchedule(t,
		visit(at(21, 9, 0), 30, models.Vaccination, "staff1", "dog"),
		visit(at(21, 10, 0), 30, models.Surgery, "staff2", "cat"),
		visit(at(22, 10, 0), 30, models.Surgery, "staff2", "cat"),
	)
	s := Summarize(even, roster, at(21, 0, 0))
	assert.Equal(t, "2024-10-21", s.Date)
	assert.Equal(t, 2, s.BookedSlots)
	assert.Equal(t, 32, s.TotalSlots)
	assert.InDelta(t, 6.25, s.Utilization, 1e-9)
	assert.Equal(t, 1, s.ByVisitType[models.Surgery])
	assert.Equal(t, 1, s.ByStaff["staff1"])
	assert.InDelta(t, 100, s.FairnessScore, 1e-9)

	skewed := mustSchedule(t,
		visit(at(21, 9, 0), 30, models.Vaccination, "staff1", "dog"),
		visit(at(21, 10, 0), 30, models.Wellness, "staff1", "cat"),
	)
	s = Summarize(skewed, roster, at(21, 0, 0))
	assert.InDelta(t, 0, s.FairnessScore, 1e-9)
}

func TestFairnessScore(t *testing.T) {
	assert.Equal(t, 100.0, FairnessScore(nil))
	assert.Equal(t, 100.0, FairnessScore(map[string]float64{"a": 0, "b": 0}))
	assert.InDelta(t, 50, FairnessScore(map[string]float64{"a": 90, "b": 30}), 1e-9)
}

func TestRequestFromInput(t *testing.T) {
	valid := func() models.SuggestInput {
		return models.SuggestInput{
			Schedule: []models.ScheduledVisit{visit(at(21, 9, 0), 30, models.Wellness, "staff1", "dog")},
			Roster: []models.StaffMember{
				{ID: "staff1", Capabilities: []models.VisitType{models.Wellness}, LunchStart: lunch(12)},
			},
			VisitType: models.Wellness,
			Pet:       models.Pet{Species: "dog", HealthComplexity: 0.5},
		}
	}

	loc := time.FixedZone("clinic", -5*3600)
	in := valid()
	in.Candidates = []time.Time{at(21, 15, 0)}
	req, err := RequestFromInput(in, loc, DefaultAdjustments)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Schedule.Len())
	assert.Len(t, req.Roster, 1)
	assert.Equal(t, 10, req.Candidates[0].Hour())
	assert.Equal(t, DefaultAdjustments, req.Adjustments)

	off := false
	in = valid()
	in.Adjustments = &models.AdjustmentToggles{OffPreferredPenalty: &off}
	req, err = RequestFromInput(in, time.UTC, DefaultAdjustments)
	require.NoError(t, err)
	assert.Equal(t, Adjustments{RecommendedBonus: 5}, req.Adjustments)

	tests := []struct {
		name   string
		mutate func(*models.SuggestInput)
		want   error
	}{
		{"unknown visit type", func(in *models.SuggestInput) { in.VisitType = "boarding" }, models.ErrUnknownVisitType},
		{"unknown schedule type", func(in *models.SuggestInput) { in.Schedule[0].VisitType = "boarding" }, models.ErrUnknownVisitType},
		{"unknown capability", func(in *models.SuggestInput) {
			in.Roster[0].Capabilities = []models.VisitType{"boarding"}
		}, models.ErrUnknownVisitType},
		{"reversed visit", func(in *models.SuggestInput) { in.Schedule[0].End = in.Schedule[0].Start }, models.ErrInvalidInput},
		{"duplicate start", func(in *models.SuggestInput) { in.Schedule = append(in.Schedule, in.Schedule[0]) }, models.ErrInvalidInput},
		{"duplicate staff", func(in *models.SuggestInput) { in.Roster = append(in.Roster, in.Roster[0]) }, models.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			_, err := RequestFromInput(in, time.UTC, Adjustments{})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAdjustmentsFor(t *testing.T) {
	on, off := true, false

	assert.Equal(t, Adjustments{}, AdjustmentsFor(nil, Adjustments{}))
	assert.Equal(t, DefaultAdjustments, AdjustmentsFor(&models.AdjustmentToggles{RecommendedBonus: &on, OffPreferredPenalty: &on}, Adjustments{}))
	assert.Equal(t, Adjustments{OffPreferredPenalty: 10}, AdjustmentsFor(&models.AdjustmentToggles{RecommendedBonus: &off}, DefaultAdjustments))
}

func TestStaffOverview(t *testing.T) {
	overview := StaffOverview(testRoster(), models.Surgery)

	require.Len(t, overview, 2)
	assert.Equal(t, "staff1", overview[0].StaffID)
	assert.False(t, overview[0].Capable)
	assert.True(t, overview[1].Capable)
	assert.Equal(t, "13:00", overview[1].LunchStart)
}

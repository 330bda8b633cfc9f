package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

func TestDurationFor(t *testing.T) {
	p := DefaultPolicies().Policy(models.Consult)

	tests := []struct {
		complexity float64
		want       int
	}{
		{0.0, 30},
		{0.29, 30},
		{0.3, 30},
		{0.7, 30},
		{0.71, 45},
		{1.0, 45},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.DurationFor(tt.complexity), "complexity %.2f", tt.complexity)
	}

	vacc := DefaultPolicies().Policy(models.Vaccination)
	assert.Equal(t, 15, vacc.DurationFor(0.1))
	assert.Equal(t, 30, vacc.DurationFor(0.9))
}

func TestSlotDuration_Valid(t *testing.T) {
	for _, d := range []SlotDuration{Short, Standard, Extended, Long} {
		assert.True(t, d.Valid(), "%d", d)
	}
	for _, d := range []SlotDuration{0, -15, 17, 90, 50_000_000} {
		assert.False(t, d.Valid(), "%d", d)
	}
}

func TestDefaultPolicies_CoverEveryVisitType(t *testing.T) {
	table := DefaultPolicies()
	for _, v := range models.VisitTypes {
		p := table.Policy(v)
		assert.LessOrEqual(t, p.MinDuration, p.RecommendedDuration, v)
		assert.LessOrEqual(t, p.RecommendedDuration, p.MaxDuration, v)
		assert.NotEmpty(t, p.PreferredHours, v)
	}
	assert.Equal(t, models.VisitTypes, table.Categories())
}

func TestPolicy_UnknownVisitTypePanics(t *testing.T) {
	assert.Panics(t, func() { DefaultPolicies().Policy(models.VisitType("boarding")) })
}

func TestPreferred(t *testing.T) {
	surgery := DefaultPolicies().Policy(models.Surgery)

	assert.True(t, surgery.Preferred(at(21, 9, 0)))
	assert.True(t, surgery.Preferred(at(21, 14, 45)))
	assert.False(t, surgery.Preferred(at(21, 15, 0)))

	eol := DefaultPolicies().Policy(models.EndOfLife)
	assert.False(t, eol.Preferred(at(21, 9, 30)))
	assert.True(t, eol.Preferred(at(21, 16, 30)))
}

func TestNewPolicyTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[models.VisitType]VisitPolicy)
	}{
		{"bad duration", func(m map[models.VisitType]VisitPolicy) {
			p := m[models.Consult]
			p.MaxDuration = 50
			m[models.Consult] = p
		}},
		{"unordered durations", func(m map[models.VisitType]VisitPolicy) {
			p := m[models.Consult]
			p.MinDuration = Long
			m[models.Consult] = p
		}},
		{"negative padding", func(m map[models.VisitType]VisitPolicy) {
			p := m[models.Dental]
			p.PaddingAfter = -1
			m[models.Dental] = p
		}},
		{"empty preferred hours", func(m map[models.VisitType]VisitPolicy) {
			p := m[models.Grooming]
			p.PreferredHours = nil
			m[models.Grooming] = p
		}},
		{"inverted hour range", func(m map[models.VisitType]VisitPolicy) {
			p := m[models.Grooming]
			p.PreferredHours = []HourRange{{16, 9}}
			m[models.Grooming] = p
		}},
		{"missing visit type", func(m map[models.VisitType]VisitPolicy) {
			delete(m, models.Specialty)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := defaultPolicyMap()
			tt.mutate(m)
			_, err := NewPolicyTable(m)
			assert.Error(t, err)
		})
	}

	m := defaultPolicyMap()
	m[models.VisitType("boarding")] = m[models.Consult]
	_, err := NewPolicyTable(m)
	assert.True(t, errors.Is(err, models.ErrUnknownVisitType))
}

func TestNewPolicyTable_CopiesHours(t *testing.T) {
	m := defaultPolicyMap()
	hours := []HourRange{{9, 12}}
	p := m[models.Consult]
	p.PreferredHours = hours
	m[models.Consult] = p

	table, err := NewPolicyTable(m)
	require.NoError(t, err)
	hours[0].End = 23

	assert.False(t, table.Policy(models.Consult).Preferred(at(21, 13, 0)))
}

func TestAppointmentDetails(t *testing.T) {
	s := NewScheduler(nil)
	d := s.AppointmentDetails(at(21, 9, 0), models.Surgery, models.Pet{HealthComplexity: 0.9})

	assert.Equal(t, 60, d.DurationMinutes)
	assert.Equal(t, at(21, 10, 0), d.End)
	assert.Equal(t, 15, d.PaddingBefore)
	assert.True(t, d.Preferred)
	assert.Equal(t, 90, DefaultPolicies().Policy(models.Surgery).OccupiedMinutes(d.DurationMinutes))
	assert.Equal(t, time.Hour, d.End.Sub(d.Start))
}

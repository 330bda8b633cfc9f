package scheduler

import (
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// Factor names and their point caps. Factors are additive and each is capped
// independently, so a new factor does not rescale the others.
const (
	FactorStaff       = "staff_availability"
	FactorVisitType   = "visit_type_alignment"
	FactorSpecies     = "species_alignment"
	FactorComplexity  = "complexity_adequacy"
	FactorPreferred   = "preferred_time"
	FactorInventory   = "expiring_inventory"
	FactorReliability = "customer_reliability"
	FactorPadding     = "padding_spacing"

	MaxStaffPoints       = 20.0
	MaxVisitTypePoints   = 15.0
	MaxSpeciesPoints     = 15.0
	MaxComplexityPoints  = 10.0
	MaxPreferredPoints   = 10.0
	MaxInventoryPoints   = 10.0
	MaxReliabilityPoints = 10.0
	MaxPaddingPoints     = 10.0

	// MaxBaseScore is the sum of all factor caps
	MaxBaseScore = MaxStaffPoints + MaxVisitTypePoints + MaxSpeciesPoints + MaxComplexityPoints +
		MaxPreferredPoints + MaxInventoryPoints + MaxReliabilityPoints + MaxPaddingPoints

	neighborhood       = time.Hour
	peakStartHour      = 10
	peakEndHour        = 15
	inadequatePoints   = 5.0
	paddingViolationPt = 2.0
)

var factorLabels = map[string]string{
	FactorStaff:       "Staff availability",
	FactorVisitType:   "Visit type alignment",
	FactorSpecies:     "Species alignment",
	FactorComplexity:  "Health complexity",
	FactorPreferred:   "Preferred time",
	FactorInventory:   "Expiring inventory",
	FactorReliability: "Customer reliability",
	FactorPadding:     "Break time",
}

// Adjustments is the optional layer applied on top of the base score.
// The zero value applies no bonus and no penalty.
type Adjustments struct {
	// RecommendedBonus is added when the resolved duration equals the recommended one
	RecommendedBonus float64
	// OffPreferredPenalty is subtracted when the start hour is outside the preferred ranges.
	// The base score already withholds the preferred-time factor in that case.
	OffPreferredPenalty float64
}

// DefaultAdjustments are the values the clinic front desk runs with
var DefaultAdjustments = Adjustments{RecommendedBonus: 5, OffPreferredPenalty: 10}

// ScoreOptions configures the scoring engine
type ScoreOptions struct {
	// RequiredDuration returns the minutes a pet's case needs. Nil means the
	// policy's complexity-resolved duration, which always counts as adequate.
	RequiredDuration func(policy VisitPolicy, pet models.Pet) int
}

func (o ScoreOptions) required(policy VisitPolicy, pet models.Pet) int {
	if o.RequiredDuration != nil {
		return o.RequiredDuration(policy, pet)
	}
	return policy.DurationFor(pet.HealthComplexity)
}

// Score computes the weighted multi-factor score of a proposed start time.
// When no staff member is available the whole score is zero.
func (s *Scheduler) Score(at time.Time, req Request) models.Breakdown {
	policy := s.Policies.Policy(req.VisitType)
	duration := policy.DurationFor(req.Pet.HealthComplexity)
	preferred := policy.Preferred(at)

	available := AvailableStaff(at, duration, req.Roster, req.Schedule, req.VisitType)
	b := models.Breakdown{
		AvailableStaff:  available,
		DurationMinutes: duration,
	}
	if available == nil {
		b.AvailableStaff = []string{}
	}

	add := func(name string, points, limit float64) {
		b.Factors = append(b.Factors, models.FactorScore{
			Name:   name,
			Label:  factorLabels[name],
			Points: points,
			Max:    limit,
		})
		b.Base += points
	}

	staffPoints := 0.0
	if len(req.Roster) > 0 {
		staffPoints = MaxStaffPoints * float64(len(available)) / float64(len(req.Roster))
	}
	add(FactorStaff, staffPoints, MaxStaffPoints)

	sameType, sameSpecies, neighbors := neighborCounts(at, req)
	add(FactorVisitType, MaxVisitTypePoints*float64(sameType)/float64(max(1, neighbors)), MaxVisitTypePoints)
	add(FactorSpecies, MaxSpeciesPoints*float64(sameSpecies)/float64(max(1, neighbors)), MaxSpeciesPoints)

	complexity := inadequatePoints
	if duration >= s.Options.required(policy, req.Pet) {
		complexity = MaxComplexityPoints
	}
	add(FactorComplexity, complexity, MaxComplexityPoints)

	preferredPoints := 0.0
	if preferred {
		preferredPoints = MaxPreferredPoints
	}
	add(FactorPreferred, preferredPoints, MaxPreferredPoints)

	add(FactorInventory, MaxInventoryPoints*req.Inventory.Urgency(req.VisitType), MaxInventoryPoints)
	add(FactorReliability, reliabilityPoints(at, req.Customer), MaxReliabilityPoints)
	add(FactorPadding, paddingPoints(at, policy, req.Schedule), MaxPaddingPoints)

	if len(available) == 0 {
		b.Gated = true
		b.Base = 0
		b.Total = 0
		return b
	}

	if duration == int(policy.RecommendedDuration) {
		b.Adjustment += req.Adjustments.RecommendedBonus
	}
	if !preferred {
		b.Adjustment -= req.Adjustments.OffPreferredPenalty
	}
	b.Total = b.Base + b.Adjustment
	return b
}

// neighborCounts looks at visits starting within an hour either side of at
func neighborCounts(at time.Time, req Request) (sameType, sameSpecies, total int) {
	for _, v := range req.Schedule.Visits() {
		if absDuration(v.Start.Sub(at)) > neighborhood {
			continue
		}
		total++
		if v.VisitType == req.VisitType {
			sameType++
		}
		if v.Species == req.Pet.Species {
			sameSpecies++
		}
	}
	return sameType, sameSpecies, total
}

// reliabilityPoints favours peak hours (10-15) for unreliable customers and
// off-peak hours for reliable ones
func reliabilityPoints(at time.Time, customer models.Customer) float64 {
	peak := peakStartHour <= at.Hour() && at.Hour() <= peakEndHour
	if customer.Unreliable() == peak {
		return MaxReliabilityPoints
	}
	return MaxReliabilityPoints / 2
}

// paddingPoints deducts for every visit closer than the padding windows.
// The floor applies to the total, not to each window.
func paddingPoints(at time.Time, policy VisitPolicy, schedule *models.Schedule) float64 {
	points := MaxPaddingPoints
	for _, v := range schedule.Visits() {
		gap := absDuration(v.Start.Sub(at)).Minutes()
		if gap < float64(policy.PaddingBefore) {
			points -= paddingViolationPt
		}
		if gap < float64(policy.PaddingAfter) {
			points -= paddingViolationPt
		}
	}
	if points < 0 {
		return 0
	}
	return points
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

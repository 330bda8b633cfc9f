package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// Request is a read-only snapshot of everything one scheduling pass looks at
type Request struct {
	Schedule  *models.Schedule
	Roster    models.Roster
	VisitType models.VisitType
	Customer  models.Customer
	Pet       models.Pet
	Inventory models.Inventory
	// Candidates, when set, replaces candidate generation
	Candidates []time.Time
	// StartDate is where generation begins; zero means DefaultStartDate
	StartDate   time.Time
	Adjustments Adjustments
}

// Scheduler ranks appointment times for a visit. It never mutates the
// schedule or roster it is given and is safe for concurrent use.
type Scheduler struct {
	Policies *PolicyTable
	Options  ScoreOptions
	// Now is the clock used for the default start date
	Now func() time.Time
}

// NewScheduler creates a new scheduler instance; nil policies means DefaultPolicies
func NewScheduler(policies *PolicyTable) *Scheduler {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Scheduler{
		Policies: policies,
		Now:      time.Now,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Details describes a potential appointment at a given time
type Details struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
	PaddingBefore   int
	PaddingAfter    int
	Preferred       bool
}

// AppointmentDetails resolves duration, padding and preference for a visit at t
func (s *Scheduler) AppointmentDetails(t time.Time, visitType models.VisitType, pet models.Pet) Details {
	policy := s.Policies.Policy(visitType)
	duration := policy.DurationFor(pet.HealthComplexity)
	return Details{
		Start:           t,
		End:             t.Add(time.Duration(duration) * time.Minute),
		DurationMinutes: duration,
		PaddingBefore:   policy.PaddingBefore,
		PaddingAfter:    policy.PaddingAfter,
		Preferred:       policy.Preferred(t),
	}
}

// Result is the outcome of a full scheduling pass
type Result struct {
	// Scored holds every candidate in chronological order
	Scored     []models.ScoredCandidate
	Best       []models.ScoredCandidate
	Rejections Rejections
}

// Suggest generates (or takes) candidates, scores each and keeps the top n
func (s *Scheduler) Suggest(req Request, n int) Result {
	var res Result
	candidates := req.Candidates
	if candidates == nil {
		candidates, res.Rejections = s.generate(req.Schedule, req.Roster, req.VisitType, req.Pet, req.StartDate)
	}

	res.Scored = make([]models.ScoredCandidate, 0, len(candidates))
	for _, t := range candidates {
		b := s.Score(t, req)
		res.Scored = append(res.Scored, models.ScoredCandidate{
			Start:     t,
			End:       t.Add(time.Duration(b.DurationMinutes) * time.Minute),
			Score:     b.Total,
			Breakdown: b,
		})
	}
	res.Best = TopN(res.Scored, n)
	return res
}

// BestAppointments returns the three best start times for the request
func (s *Scheduler) BestAppointments(req Request) []time.Time {
	return TopThree(s.Suggest(req, DefaultTop).Scored)
}

// StaffOverview lists every staff member, sorted by ID, with whether they can take visitType
func StaffOverview(roster models.Roster, visitType models.VisitType) []models.StaffOverview {
	out := make([]models.StaffOverview, 0, len(roster))
	for _, id := range roster.IDs() {
		staff := roster[id]
		out = append(out, models.StaffOverview{
			StaffID:    id,
			Name:       staff.Name,
			Capable:    staff.Can(visitType),
			LunchStart: staff.LunchStart.String(),
		})
	}
	return out
}

// AdjustmentsFor applies per-request toggles to the configured defaults
func AdjustmentsFor(toggles *models.AdjustmentToggles, defaults Adjustments) Adjustments {
	adj := defaults
	if toggles == nil {
		return adj
	}
	if toggles.RecommendedBonus != nil {
		adj.RecommendedBonus = 0
		if *toggles.RecommendedBonus {
			adj.RecommendedBonus = DefaultAdjustments.RecommendedBonus
		}
	}
	if toggles.OffPreferredPenalty != nil {
		adj.OffPreferredPenalty = 0
		if *toggles.OffPreferredPenalty {
			adj.OffPreferredPenalty = DefaultAdjustments.OffPreferredPenalty
		}
	}
	return adj
}

// RequestFromInput validates a decoded suggestion input and builds the engine
// request. Times are moved into loc so hour-of-day rules use clinic time.
func RequestFromInput(in models.SuggestInput, loc *time.Location, defaults Adjustments) (Request, error) {
	if loc == nil {
		loc = time.Local
	}
	if !in.VisitType.Valid() {
		return Request{}, fmt.Errorf("%w: %q", models.ErrUnknownVisitType, in.VisitType)
	}

	visits := make([]models.ScheduledVisit, len(in.Schedule))
	for i, v := range in.Schedule {
		if !v.VisitType.Valid() {
			return Request{}, fmt.Errorf("schedule entry %d: %w: %q", i, models.ErrUnknownVisitType, v.VisitType)
		}
		if !v.End.After(v.Start) {
			return Request{}, fmt.Errorf("%w: schedule entry %d ends before it starts", models.ErrInvalidInput, i)
		}
		v.Start, v.End = v.Start.In(loc), v.End.In(loc)
		visits[i] = v
	}
	schedule, err := models.NewSchedule(visits...)
	if err != nil {
		return Request{}, err
	}

	for _, staff := range in.Roster {
		for _, c := range staff.Capabilities {
			if !c.Valid() {
				return Request{}, fmt.Errorf("staff %s: %w: %q", staff.ID, models.ErrUnknownVisitType, c)
			}
		}
	}
	roster, err := models.NewRoster(in.Roster)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Schedule:    schedule,
		Roster:      roster,
		VisitType:   in.VisitType,
		Customer:    in.Customer,
		Pet:         in.Pet,
		Inventory:   in.Inventory,
		Adjustments: AdjustmentsFor(in.Adjustments, defaults),
	}
	if in.Candidates != nil {
		req.Candidates = make([]time.Time, len(in.Candidates))
		for i, c := range in.Candidates {
			req.Candidates[i] = c.In(loc)
		}
	}
	if in.StartDate != nil {
		req.StartDate = in.StartDate.In(loc)
	}
	return req, nil
}

package models

import "time"

// AdjustmentToggles switches the post-score adjustment layer per request.
// A nil field keeps the server default.
type AdjustmentToggles struct {
	RecommendedBonus    *bool `json:"recommended_bonus,omitempty"`
	OffPreferredPenalty *bool `json:"off_preferred_penalty,omitempty"`
}

// SuggestInput is the data structure for the suggestion endpoints and the CLI
type SuggestInput struct {
	Schedule    []ScheduledVisit   `json:"schedule"`
	Roster      []StaffMember      `json:"roster"`
	VisitType   VisitType          `json:"visit_type" binding:"required"`
	Customer    Customer           `json:"customer"`
	Pet         Pet                `json:"pet"`
	Inventory   Inventory          `json:"inventory,omitempty"`
	Candidates  []time.Time        `json:"candidates,omitempty"`
	StartDate   *time.Time         `json:"start_date,omitempty"`
	Adjustments *AdjustmentToggles `json:"adjustments,omitempty"`
	Top         int                `json:"top,omitempty"`
}

// ScoreInput asks for the breakdown of a single proposed time
type ScoreInput struct {
	SuggestInput
	Time time.Time `json:"time" binding:"required"`
}

// StaffOverview summarizes one staff member for the requested visit type
type StaffOverview struct {
	StaffID    string `json:"staff_id"`
	Name       string `json:"name,omitempty"`
	Capable    bool   `json:"capable"`
	LunchStart string `json:"lunch_start"`
}

// ConflictReason explains why no candidate could be produced
type ConflictReason struct {
	VisitType VisitType `json:"visit_type"`
	Reasons   []string  `json:"reasons"`
}

// Suggestion is one ranked appointment option
type Suggestion struct {
	Rank       int       `json:"rank"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Score      float64   `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
	KeyFactors []string  `json:"key_factors,omitempty"`
}

// SuggestResponse is the data structure for the suggestion result
type SuggestResponse struct {
	VisitType       VisitType       `json:"visit_type"`
	DurationMinutes int             `json:"duration_minutes"`
	CandidateCount  int             `json:"candidate_count"`
	Suggestions     []Suggestion    `json:"suggestions"`
	Conflicts       *ConflictReason `json:"conflicts,omitempty"`
	StaffOverview   []StaffOverview `json:"staff_overview"`
	Cached          bool            `json:"cached"`
}

// BookingInput books a visit into the clinic's stored schedule
type BookingInput struct {
	Start      time.Time `json:"start" binding:"required"`
	VisitType  VisitType `json:"visit_type" binding:"required"`
	StaffID    string    `json:"staff_id" binding:"required"`
	Species    string    `json:"species"`
	PetID      string    `json:"pet_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	// DurationMinutes overrides the duration resolved from the pet's complexity
	DurationMinutes  int     `json:"duration_minutes,omitempty"`
	HealthComplexity float64 `json:"health_complexity"`
}

// StoredSuggestInput asks for suggestions against the stored schedule and roster
type StoredSuggestInput struct {
	VisitType   VisitType          `json:"visit_type" binding:"required"`
	Customer    Customer           `json:"customer"`
	Pet         Pet                `json:"pet"`
	Inventory   Inventory          `json:"inventory,omitempty"`
	StartDate   *time.Time         `json:"start_date,omitempty"`
	Adjustments *AdjustmentToggles `json:"adjustments,omitempty"`
	Top         int                `json:"top,omitempty"`
}

// ScheduleSummary describes how full a day is
type ScheduleSummary struct {
	Date          string            `json:"date"`
	BookedSlots   int               `json:"booked_slots"`
	TotalSlots    int               `json:"total_slots"`
	Utilization   float64           `json:"utilization"`
	ByVisitType   map[VisitType]int `json:"by_visit_type"`
	ByStaff       map[string]int    `json:"by_staff"`
	FairnessScore float64           `json:"fairness_score"`
}

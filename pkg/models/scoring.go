package models

import "time"

// FactorScore is one capped component of a slot score
type FactorScore struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
}

// Breakdown explains how a slot score was assembled
type Breakdown struct {
	Factors         []FactorScore `json:"factors"`
	Base            float64       `json:"base"`
	Adjustment      float64       `json:"adjustment"`
	Total           float64       `json:"total"`
	Gated           bool          `json:"gated"`
	AvailableStaff  []string      `json:"available_staff"`
	DurationMinutes int           `json:"duration_minutes"`
}

// Factor looks up a factor by name
func (b Breakdown) Factor(name string) (FactorScore, bool) {
	for _, f := range b.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorScore{}, false
}

// KeyFactors lists the labels of factors scoring at least half their maximum
func (b Breakdown) KeyFactors() []string {
	return b.factorsAtLeast(0.5, 0)
}

// TopFactors lists up to two labels of factors scoring at least 70% of their maximum
func (b Breakdown) TopFactors() []string {
	return b.factorsAtLeast(0.7, 2)
}

func (b Breakdown) factorsAtLeast(ratio float64, limit int) []string {
	var out []string
	for _, f := range b.Factors {
		if f.Max > 0 && f.Points >= ratio*f.Max {
			out = append(out, f.Label)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// ScoredCandidate is a candidate start time with its score
type ScoredCandidate struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

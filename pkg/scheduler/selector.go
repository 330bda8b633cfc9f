package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// DefaultTop is how many suggestions the front desk is shown
const DefaultTop = 3

// TopN returns up to n candidates by descending score. The sort is stable,
// so equal scores keep their input (chronological) order.
func TopN(candidates []models.ScoredCandidate, n int) []models.ScoredCandidate {
	if n <= 0 || len(candidates) == 0 {
		return []models.ScoredCandidate{}
	}
	ranked := append([]models.ScoredCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopThree returns the start times of the three best candidates
func TopThree(candidates []models.ScoredCandidate) []time.Time {
	best := TopN(candidates, DefaultTop)
	times := make([]time.Time, len(best))
	for i, c := range best {
		times[i] = c.Start
	}
	return times
}

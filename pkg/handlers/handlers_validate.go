package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

// ValidateInput checks a suggestion body without running the engine
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.SuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Roster) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one staff member is required",
		})
		return
	}

	// duplicate staff IDs, duplicate start times and unknown visit types
	req, err := scheduler.RequestFromInput(input, h.loc(), h.Adjustments)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	capable := 0
	for _, s := range req.Roster {
		if s.Can(req.VisitType) {
			capable++
		}
	}
	warnings := []string{}
	if capable == 0 {
		warnings = append(warnings, "No staff member can perform "+string(req.VisitType))
	}
	for _, v := range req.Schedule.Visits() {
		if _, ok := req.Roster[v.StaffID]; !ok {
			warnings = append(warnings, "Visit at "+v.Start.Format("2006-01-02 15:04")+" is assigned to unknown staff "+v.StaffID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": warnings,
		"stats": gin.H{
			"staff_count":      len(req.Roster),
			"capable_staff":    capable,
			"visit_count":      req.Schedule.Len(),
			"candidate_count":  len(req.Candidates),
			"duration_minutes": h.Scheduler.Policies.Policy(req.VisitType).DurationFor(req.Pet.HealthComplexity),
			"visit_type":       req.VisitType,
			"categories":       h.Scheduler.Policies.Categories(),
		},
	})
}

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/internal/metrics"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/cache"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

// MaxTop caps how many suggestions one request can ask for
const MaxTop = 20

func clampTop(top int) int {
	switch {
	case top <= 0:
		return scheduler.DefaultTop
	case top > MaxTop:
		return MaxTop
	}
	return top
}

// suggest runs one scheduling pass and shapes the response
func (h *Handler) suggest(req scheduler.Request, top int) *models.SuggestResponse {
	started := time.Now()
	res := h.Scheduler.Suggest(req, clampTop(top))

	resp := &models.SuggestResponse{
		VisitType:       req.VisitType,
		DurationMinutes: h.Scheduler.Policies.Policy(req.VisitType).DurationFor(req.Pet.HealthComplexity),
		CandidateCount:  len(res.Scored),
		Suggestions:     make([]models.Suggestion, 0, len(res.Best)),
		StaffOverview:   scheduler.StaffOverview(req.Roster, req.VisitType),
	}
	for i, c := range res.Best {
		resp.Suggestions = append(resp.Suggestions, models.Suggestion{
			Rank:       i + 1,
			Start:      c.Start,
			End:        c.End,
			Score:      c.Score,
			Breakdown:  c.Breakdown,
			KeyFactors: c.Breakdown.KeyFactors(),
		})
	}

	outcome := metrics.OutcomeSuggested
	if len(resp.Suggestions) == 0 {
		outcome = metrics.OutcomeEmpty
		reasons := res.Rejections.Reasons()
		if req.Candidates != nil {
			reasons = []string{"no candidate times were supplied"}
		}
		resp.Conflicts = &models.ConflictReason{VisitType: req.VisitType, Reasons: reasons}
	}
	h.Metrics.ObserveSuggest(string(req.VisitType), outcome, resp.CandidateCount, time.Since(started).Seconds())
	return resp
}

// cacheable reports whether the answer is fully determined by the body:
// without explicit candidates or a start date the search window follows the clock
func cacheable(in models.SuggestInput) bool {
	return in.Candidates != nil || in.StartDate != nil
}

// SuggestJSON handles the JSON-based suggestion request
func (h *Handler) SuggestJSON(c *gin.Context) {
	var input models.SuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := scheduler.RequestFromInput(input, h.loc(), h.Adjustments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var key string
	if h.Cache != nil && cacheable(input) {
		key, err = cache.Key(clinicID(c), struct {
			Input    models.SuggestInput   `json:"input"`
			Defaults scheduler.Adjustments `json:"defaults"`
			Zone     string                `json:"zone"`
		}{input, h.Adjustments, h.loc().String()})
		if err != nil {
			h.logger().Warn("cache key", zap.Error(err))
			key = ""
		}
	}
	if key != "" {
		cached, ok, err := h.Cache.Get(c.Request.Context(), key)
		if err != nil {
			h.logger().Warn("cache lookup failed", zap.Error(err))
		} else if ok {
			cached.Cached = true
			h.Metrics.ObserveSuggest(string(req.VisitType), metrics.OutcomeCached, cached.CandidateCount, 0)
			h.RecordUsage(c, cached.CandidateCount, len(cached.Suggestions))
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	resp := h.suggest(req, input.Top)
	h.RecordUsage(c, resp.CandidateCount, len(resp.Suggestions))

	if key != "" {
		if err := h.Cache.Set(c.Request.Context(), key, resp); err != nil {
			h.logger().Warn("cache store failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ScoreSlot returns the score breakdown of a single proposed time
func (h *Handler) ScoreSlot(c *gin.Context) {
	var input models.ScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := scheduler.RequestFromInput(input.SuggestInput, h.loc(), h.Adjustments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := input.Time.In(h.loc())
	b := h.Scheduler.Score(at, req)
	details := h.Scheduler.AppointmentDetails(at, req.VisitType, req.Pet)
	h.RecordUsage(c, 1, 0)

	c.JSON(http.StatusOK, gin.H{
		"time":        at,
		"end":         details.End,
		"preferred":   details.Preferred,
		"score":       b.Total,
		"breakdown":   b,
		"key_factors": b.KeyFactors(),
		"top_factors": b.TopFactors(),
	})
}

// SuggestCSV handles CSV uploads: a schedule file, a roster file and form
// fields describing the visit
func (h *Handler) SuggestCSV(c *gin.Context) {
	scheduleFile, _ := c.FormFile("schedule_file")
	rosterFile, _ := c.FormFile("roster_file")

	if rosterFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster_file is required"})
		return
	}

	input, err := h.suggestInputFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rf, err := rosterFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open roster file"})
		return
	}
	defer rf.Close()
	if input.Roster, err = ParseRosterCSV(rf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scheduleFile != nil {
		sf, err := scheduleFile.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open schedule file"})
			return
		}
		defer sf.Close()
		if input.Schedule, err = ParseScheduleCSV(sf, h.loc()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	req, err := scheduler.RequestFromInput(input, h.loc(), h.Adjustments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := h.suggest(req, input.Top)
	h.RecordUsage(c, resp.CandidateCount, len(resp.Suggestions))

	// Export CSV
	data, err := suggestionsCSV(resp.Suggestions)
	if err != nil {
		h.logger().Error("write suggestions csv", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write CSV"})
		return
	}

	out := gin.H{"csv": data, "candidate_count": resp.CandidateCount}
	if resp.Conflicts != nil {
		out["conflicts"] = resp.Conflicts
	}
	c.JSON(http.StatusOK, out)
}

// suggestionsCSV renders ranked suggestions, one row per suggestion
func suggestionsCSV(suggestions []models.Suggestion) (string, error) {
	var out strings.Builder
	writer := csv.NewWriter(&out)
	if err := writer.Write([]string{"rank", "start", "end", "duration_minutes", "score", "available_staff", "key_factors"}); err != nil {
		return "", err
	}
	for _, s := range suggestions {
		err := writer.Write([]string{
			fmt.Sprint(s.Rank),
			s.Start.Format(time.RFC3339),
			s.End.Format(time.RFC3339),
			fmt.Sprint(s.Breakdown.DurationMinutes),
			fmt.Sprintf("%.2f", s.Score),
			strings.Join(s.Breakdown.AvailableStaff, "|"),
			strings.Join(s.KeyFactors, "|"),
		})
		if err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (h *Handler) suggestInputFromForm(c *gin.Context) (models.SuggestInput, error) {
	var form struct {
		VisitType        string  `form:"visit_type" binding:"required"`
		Species          string  `form:"species"`
		PetID            string  `form:"pet_id"`
		HealthComplexity float64 `form:"health_complexity"`
		CustomerID       string  `form:"customer_id"`
		LateRate         float64 `form:"late_rate"`
		NoShowRate       float64 `form:"no_show_rate"`
		Inventory        string  `form:"inventory"`
		StartDate        string  `form:"start_date"`
		Top              int     `form:"top"`
	}
	if err := c.ShouldBind(&form); err != nil {
		return models.SuggestInput{}, err
	}

	vt, err := models.ParseVisitType(form.VisitType)
	if err != nil {
		return models.SuggestInput{}, err
	}
	in := models.SuggestInput{
		VisitType: vt,
		Customer:  models.Customer{ID: form.CustomerID, LateRate: form.LateRate, NoShowRate: form.NoShowRate},
		Pet:       models.Pet{ID: form.PetID, Species: form.Species, HealthComplexity: form.HealthComplexity},
		Top:       form.Top,
	}
	if in.Inventory, err = ParseInventory(form.Inventory); err != nil {
		return models.SuggestInput{}, err
	}
	if form.StartDate != "" {
		start, err := parseTime(form.StartDate, h.loc())
		if err != nil {
			return models.SuggestInput{}, fmt.Errorf("start_date: %w", err)
		}
		in.StartDate = &start
	}
	return in, nil
}

// errorStatus maps input errors to 400 and everything else to 500
func errorStatus(err error) int {
	if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrUnknownVisitType) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

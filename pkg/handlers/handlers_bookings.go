package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/database"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

// snapshotHorizonDays covers five business days plus a weekend from any start date
const snapshotHorizonDays = 10

// CreateStaff adds or replaces a staff member on the clinic's roster
func (h *Handler) CreateStaff(c *gin.Context) {
	var m models.StaffMember
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Staff.Upsert(c.Request.Context(), clinicID(c), m); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": m})
}

// ListStaff returns the clinic's roster
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.Staff.List(c.Request.Context(), clinicID(c))
	if err != nil {
		h.logger().Error("list staff", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list staff"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// DeleteStaff removes a staff member from the roster
func (h *Handler) DeleteStaff(c *gin.Context) {
	err := h.Staff.Delete(c.Request.Context(), clinicID(c), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete staff member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member removed"})
}

// CreateBooking books a visit into the stored schedule
func (h *Handler) CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minutes := input.DurationMinutes
	if minutes == 0 {
		minutes = h.Scheduler.Policies.Policy(input.VisitType).DurationFor(input.HealthComplexity)
	}
	if !scheduler.SlotDuration(minutes).Valid() {
		h.Metrics.ObserveBooking("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be 15, 30, 45 or 60"})
		return
	}

	ctx := c.Request.Context()
	roster, err := h.Staff.Roster(ctx, clinicID(c))
	if err != nil {
		h.logger().Error("load roster", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load roster"})
		return
	}
	start := input.Start.In(h.loc())
	rec, err := h.Bookings.Book(ctx, clinicID(c), database.Booking{
		Visit: models.ScheduledVisit{
			Start:     start,
			End:       start.Add(time.Duration(minutes) * time.Minute),
			VisitType: input.VisitType,
			StaffID:   input.StaffID,
			Species:   input.Species,
		},
		PetID:      input.PetID,
		CustomerID: input.CustomerID,
	}, roster)

	switch {
	case err == nil:
		h.Metrics.ObserveBooking("booked")
		c.JSON(http.StatusCreated, gin.H{"booking": rec})
	case errors.Is(err, database.ErrSlotTaken):
		h.Metrics.ObserveBooking("slot_taken")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrStaffUnavailable):
		h.Metrics.ObserveBooking("staff_unavailable")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrUnknownVisitType):
		h.Metrics.ObserveBooking("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Metrics.ObserveBooking("error")
		h.logger().Error("create booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create booking"})
	}
}

// snapshotWindow spans whole calendar days in start's zone, from its midnight
// to midnight snapshotHorizonDays later
func snapshotWindow(start time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return from, from.AddDate(0, 0, snapshotHorizonDays)
}

// dateRange reads ?from=&to= (YYYY-MM-DD, to inclusive); defaults to today plus a week
func (h *Handler) dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc())
	to := from.AddDate(0, 0, 7)

	if s := c.Query("from"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, h.loc())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
		to = from.AddDate(0, 0, 7)
	}
	if s := c.Query("to"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, h.loc())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// ListBookings returns stored bookings in a date range
func (h *Handler) ListBookings(c *gin.Context) {
	from, to, err := h.dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	records, err := h.Bookings.List(c.Request.Context(), clinicID(c), from, to)
	if err != nil {
		h.logger().Error("list bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": records})
}

// CancelBooking removes a stored booking
func (h *Handler) CancelBooking(c *gin.Context) {
	err := h.Bookings.Cancel(c.Request.Context(), clinicID(c), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not cancel booking"})
		return
	}
	h.Metrics.ObserveBooking("cancelled")
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// SuggestStored ranks times against the stored schedule and roster
func (h *Handler) SuggestStored(c *gin.Context) {
	var input models.StoredSuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	roster, err := h.Staff.Roster(ctx, clinicID(c))
	if err != nil {
		h.logger().Error("load roster", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load roster"})
		return
	}

	start := scheduler.DefaultStartDate(h.now())
	if input.StartDate != nil {
		start = input.StartDate.In(h.loc())
	}
	from, to := snapshotWindow(start)
	schedule, err := h.Bookings.Snapshot(ctx, clinicID(c), from, to)
	if err != nil {
		h.logger().Error("snapshot schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}

	resp := h.suggest(scheduler.Request{
		Schedule:    schedule,
		Roster:      roster,
		VisitType:   input.VisitType,
		Customer:    input.Customer,
		Pet:         input.Pet,
		Inventory:   input.Inventory,
		StartDate:   start,
		Adjustments: scheduler.AdjustmentsFor(input.Adjustments, h.Adjustments),
	}, input.Top)
	h.RecordUsage(c, resp.CandidateCount, len(resp.Suggestions))
	c.JSON(http.StatusOK, resp)
}

// ScheduleSummary reports utilization and fairness for one day of the stored schedule
func (h *Handler) ScheduleSummary(c *gin.Context) {
	now := h.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc())
	if s := c.Query("date"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, h.loc())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = t
	}

	ctx := c.Request.Context()
	roster, err := h.Staff.Roster(ctx, clinicID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load roster"})
		return
	}
	schedule, err := h.Bookings.Snapshot(ctx, clinicID(c), day, day.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}
	c.JSON(http.StatusOK, scheduler.Summarize(schedule, roster, day))
}

package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

// BookingRecord represents the bookings table. Times are stored in UTC.
type BookingRecord struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ClinicID   string    `gorm:"uniqueIndex:idx_clinic_start;not null" json:"-"`
	StartAt    time.Time `gorm:"uniqueIndex:idx_clinic_start;not null" json:"start"`
	EndAt      time.Time `gorm:"not null" json:"end"`
	VisitType  string    `gorm:"not null" json:"visit_type"`
	StaffID    string    `gorm:"index;not null" json:"staff_id"`
	Species    string    `json:"species"`
	PetID      string    `json:"pet_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Visit converts the record into the engine's view of a booked visit
func (r BookingRecord) Visit(loc *time.Location) models.ScheduledVisit {
	return models.ScheduledVisit{
		ID:        r.ID,
		Start:     r.StartAt.In(loc),
		End:       r.EndAt.In(loc),
		VisitType: models.VisitType(r.VisitType),
		StaffID:   r.StaffID,
		Species:   r.Species,
	}
}

// Booking is what a caller asks ScheduleStore.Book to persist
type Booking struct {
	Visit      models.ScheduledVisit
	PetID      string
	CustomerID string
}

// ScheduleStore is the caller-owned mutable schedule. The engine only ever
// sees read-only snapshots of it.
type ScheduleStore struct {
	db     *gorm.DB
	loc    *time.Location
	logger *zap.Logger
	// Book is a read-check-write sequence; SQLite has no row locks to lean on
	mu sync.Mutex
}

func NewScheduleStore(db *gorm.DB, loc *time.Location, logger *zap.Logger) *ScheduleStore {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleStore{db: db, loc: loc, logger: logger}
}

// List returns the clinic's bookings starting in [from, to), oldest first
func (s *ScheduleStore) List(ctx context.Context, clinicID string, from, to time.Time) ([]BookingRecord, error) {
	return listBookings(s.db.WithContext(ctx), clinicID, from, to)
}

func listBookings(tx *gorm.DB, clinicID string, from, to time.Time) ([]BookingRecord, error) {
	var records []BookingRecord
	err := tx.Where("clinic_id = ? AND start_at >= ? AND start_at < ?", clinicID, from.UTC(), to.UTC()).
		Order("start_at asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return records, nil
}

// Snapshot builds a read-only schedule of the bookings starting in [from, to)
func (s *ScheduleStore) Snapshot(ctx context.Context, clinicID string, from, to time.Time) (*models.Schedule, error) {
	return s.snapshot(s.db.WithContext(ctx), clinicID, from, to)
}

func (s *ScheduleStore) snapshot(tx *gorm.DB, clinicID string, from, to time.Time) (*models.Schedule, error) {
	records, err := listBookings(tx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	visits := make([]models.ScheduledVisit, len(records))
	for i, r := range records {
		visits[i] = r.Visit(s.loc)
	}
	return models.NewSchedule(visits...)
}

// Book stores a visit after checking, against a fresh snapshot, that no visit
// occupies its grid marks and that the assigned staff member is available.
func (s *ScheduleStore) Book(ctx context.Context, clinicID string, b Booking, roster models.Roster) (BookingRecord, error) {
	v := b.Visit
	if !v.VisitType.Valid() {
		return BookingRecord{}, fmt.Errorf("%w: %q", models.ErrUnknownVisitType, v.VisitType)
	}
	if !v.End.After(v.Start) {
		return BookingRecord{}, fmt.Errorf("%w: visit ends before it starts", models.ErrInvalidInput)
	}
	minutes := v.DurationMinutes()
	if !scheduler.SlotDuration(minutes).Valid() || v.End.Sub(v.Start) != time.Duration(minutes)*time.Minute {
		return BookingRecord{}, fmt.Errorf("%w: visit length %s is not 15, 30, 45 or 60 minutes", models.ErrInvalidInput, v.End.Sub(v.Start))
	}
	v.Start, v.End = v.Start.In(s.loc), v.End.In(s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec BookingRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day := time.Date(v.Start.Year(), v.Start.Month(), v.Start.Day(), 0, 0, 0, 0, s.loc)
		snapshot, err := s.snapshot(tx, clinicID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return err
		}

		if scheduler.HasConflict(v.Start, minutes, snapshot) {
			return ErrSlotTaken
		}
		if !containsString(scheduler.AvailableStaff(v.Start, minutes, roster, snapshot, v.VisitType), v.StaffID) {
			return fmt.Errorf("%w: %s at %s", ErrStaffUnavailable, v.StaffID, v.Start.Format(time.RFC3339))
		}

		rec = BookingRecord{
			ID:         uuid.NewString(),
			ClinicID:   clinicID,
			StartAt:    v.Start.UTC(),
			EndAt:      v.End.UTC(),
			VisitType:  string(v.VisitType),
			StaffID:    v.StaffID,
			Species:    v.Species,
			PetID:      b.PetID,
			CustomerID: b.CustomerID,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return BookingRecord{}, err
	}

	s.logger.Info("visit booked",
		zap.String("clinic", clinicID),
		zap.String("booking_id", rec.ID),
		zap.String("visit_type", rec.VisitType),
		zap.String("staff_id", rec.StaffID),
		zap.Time("start", rec.StartAt))
	return rec, nil
}

// Cancel removes a booking
func (s *ScheduleStore) Cancel(ctx context.Context, clinicID, id string) error {
	res := s.db.WithContext(ctx).Where("clinic_id = ? AND id = ?", clinicID, id).Delete(&BookingRecord{})
	if res.Error != nil {
		return fmt.Errorf("cancel booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info("booking cancelled", zap.String("clinic", clinicID), zap.String("booking_id", id))
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// StaffRecord represents the staff table
type StaffRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	ClinicID string `gorm:"uniqueIndex:idx_clinic_staff;not null"`
	StaffID  string `gorm:"uniqueIndex:idx_clinic_staff;not null"`
	Name     string
	// Capabilities is a comma separated list of visit types
	Capabilities string
	// LunchStart is "HH:MM"
	LunchStart string `gorm:"not null"`
	UpdatedAt  time.Time
}

// Member decodes the record into a staff member
func (r StaffRecord) Member() (models.StaffMember, error) {
	lunch, err := models.ParseTimeOfDay(r.LunchStart)
	if err != nil {
		return models.StaffMember{}, fmt.Errorf("staff %s: %w", r.StaffID, err)
	}
	m := models.StaffMember{ID: r.StaffID, Name: r.Name, LunchStart: lunch}
	for _, c := range strings.Split(r.Capabilities, ",") {
		if c == "" {
			continue
		}
		v, err := models.ParseVisitType(c)
		if err != nil {
			return models.StaffMember{}, fmt.Errorf("staff %s: %w", r.StaffID, err)
		}
		m.Capabilities = append(m.Capabilities, v)
	}
	return m, nil
}

// StaffStore persists each clinic's roster
type StaffStore struct {
	db *gorm.DB
}

func NewStaffStore(db *gorm.DB) *StaffStore {
	return &StaffStore{db: db}
}

// Upsert creates or replaces a staff member
func (s *StaffStore) Upsert(ctx context.Context, clinicID string, m models.StaffMember) error {
	if m.ID == "" {
		return fmt.Errorf("%w: staff member without id", models.ErrInvalidInput)
	}
	caps := make([]string, 0, len(m.Capabilities))
	for _, c := range m.Capabilities {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownVisitType, c)
		}
		caps = append(caps, string(c))
	}

	rec := StaffRecord{
		ID:           uuid.NewString(),
		ClinicID:     clinicID,
		StaffID:      m.ID,
		Name:         m.Name,
		Capabilities: strings.Join(caps, ","),
		LunchStart:   m.LunchStart.String(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clinic_id"}, {Name: "staff_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "capabilities", "lunch_start", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}
	return nil
}

// List returns the clinic's staff sorted by ID
func (s *StaffStore) List(ctx context.Context, clinicID string) ([]models.StaffMember, error) {
	var records []StaffRecord
	if err := s.db.WithContext(ctx).Where("clinic_id = ?", clinicID).Order("staff_id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	members := make([]models.StaffMember, 0, len(records))
	for _, r := range records {
		m, err := r.Member()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// Roster returns the clinic's staff keyed by ID
func (s *StaffStore) Roster(ctx context.Context, clinicID string) (models.Roster, error) {
	members, err := s.List(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return models.NewRoster(members)
}

// Delete removes a staff member from the roster
func (s *StaffStore) Delete(ctx context.Context, clinicID, staffID string) error {
	res := s.db.WithContext(ctx).Where("clinic_id = ? AND staff_id = ?", clinicID, staffID).Delete(&StaffRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete staff: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

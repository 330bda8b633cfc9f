package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// 2024-10-21 is a Monday
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.October, day, hour, minute, 0, 0, time.UTC)
}

func testRoster() models.Roster {
	return models.Roster{
		"vet1":   {ID: "vet1", Capabilities: []models.VisitType{models.Surgery, models.Consult}, LunchStart: models.TimeOfDay{Hour: 12}},
		"nurse1": {ID: "nurse1", Capabilities: []models.VisitType{models.Vaccination}, LunchStart: models.TimeOfDay{Hour: 13}},
	}
}

func booking(start time.Time, minutes int, vt models.VisitType, staff string) Booking {
	return Booking{Visit: models.ScheduledVisit{
		Start:     start,
		End:       start.Add(time.Duration(minutes) * time.Minute),
		VisitType: vt,
		StaffID:   staff,
		Species:   "dog",
	}}
}

func TestOpen_MigratesTables(t *testing.T) {
	db := newTestDB(t)
	for _, table := range []any{&APIKey{}, &APIUsage{}, &MasterUser{}, &BookingRecord{}, &StaffRecord{}} {
		assert.True(t, db.Migrator().HasTable(table), "%T", table)
	}
}

func TestScheduleStore_BookAndSnapshot(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	rec, err := store.Book(ctx, "clinic", booking(at(21, 9, 0), 60, models.Surgery, "vet1"), testRoster())
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.True(t, rec.StartAt.Equal(at(21, 9, 0)))

	_, err = store.Book(ctx, "clinic", booking(at(21, 10, 0), 15, models.Vaccination, "nurse1"), testRoster())
	require.NoError(t, err)

	snapshot, err := store.Snapshot(ctx, "clinic", at(21, 0, 0), at(22, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Len())
	v, ok := snapshot.At(at(21, 9, 0))
	require.True(t, ok)
	assert.Equal(t, models.Surgery, v.VisitType)
	assert.Equal(t, 60, v.DurationMinutes())

	other, err := store.Snapshot(ctx, "other-clinic", at(21, 0, 0), at(22, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, other.Len())
}

func TestScheduleStore_SlotTaken(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	_, err := store.Book(ctx, "clinic", booking(at(21, 9, 0), 60, models.Surgery, "vet1"), testRoster())
	require.NoError(t, err)

	_, err = store.Book(ctx, "clinic", booking(at(21, 9, 0), 15, models.Vaccination, "nurse1"), testRoster())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// 08:45 for 30 minutes reaches the 09:00 mark
	_, err = store.Book(ctx, "clinic", booking(at(21, 8, 45), 30, models.Vaccination, "nurse1"), testRoster())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// same time in another clinic is free
	_, err = store.Book(ctx, "other", booking(at(21, 9, 0), 60, models.Surgery, "vet1"), testRoster())
	assert.NoError(t, err)
}

func TestScheduleStore_StaffUnavailable(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	// lunch
	_, err := store.Book(ctx, "clinic", booking(at(21, 12, 15), 60, models.Surgery, "vet1"), testRoster())
	assert.ErrorIs(t, err, ErrStaffUnavailable)

	// not capable
	_, err = store.Book(ctx, "clinic", booking(at(21, 9, 0), 60, models.Surgery, "nurse1"), testRoster())
	assert.ErrorIs(t, err, ErrStaffUnavailable)

	// unknown staff member
	_, err = store.Book(ctx, "clinic", booking(at(21, 9, 0), 60, models.Surgery, "ghost"), testRoster())
	assert.ErrorIs(t, err, ErrStaffUnavailable)

	_, err = store.Book(ctx, "clinic", booking(at(21, 9, 0), 0, models.Surgery, "vet1"), testRoster())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestScheduleStore_RejectsOffGridDurations(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	for _, minutes := range []int{17, 90, 50_000_000} {
		_, err := store.Book(ctx, "clinic", booking(at(21, 9, 0), minutes, models.Consult, "vet1"), testRoster())
		assert.ErrorIs(t, err, models.ErrInvalidInput, "%d minutes", minutes)
	}

	b := booking(at(21, 9, 0), 30, models.Consult, "vet1")
	b.Visit.End = b.Visit.End.Add(20 * time.Second)
	_, err := store.Book(ctx, "clinic", b, testRoster())
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	records, err := store.List(ctx, "clinic", at(21, 0, 0), at(22, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, minutes := range []int{15, 30, 45, 60} {
		_, err := store.Book(ctx, "clinic", booking(at(22, 9, 0).Add(time.Duration(minutes)*2*time.Minute), minutes, models.Consult, "vet1"), testRoster())
		assert.NoError(t, err, "%d minutes", minutes)
	}
}

func TestScheduleStore_ConcurrentBooking(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Book(ctx, "clinic", booking(at(22, 10, 0), 30, models.Consult, "vet1"), testRoster())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	booked := 0
	for err := range results {
		if err == nil {
			booked++
			continue
		}
		assert.True(t, errors.Is(err, ErrSlotTaken), "got %v", err)
	}
	assert.Equal(t, 1, booked)
}

func TestScheduleStore_ListAndCancel(t *testing.T) {
	store := NewScheduleStore(newTestDB(t), time.UTC, nil)
	ctx := context.Background()

	first, err := store.Book(ctx, "clinic", booking(at(23, 14, 0), 30, models.Consult, "vet1"), testRoster())
	require.NoError(t, err)
	_, err = store.Book(ctx, "clinic", booking(at(23, 9, 0), 15, models.Vaccination, "nurse1"), testRoster())
	require.NoError(t, err)

	list, err := store.List(ctx, "clinic", at(23, 0, 0), at(24, 0, 0))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "nurse1", list[0].StaffID)

	require.NoError(t, store.Cancel(ctx, "clinic", first.ID))
	assert.ErrorIs(t, store.Cancel(ctx, "clinic", first.ID), ErrNotFound)

	list, err = store.List(ctx, "clinic", at(23, 0, 0), at(24, 0, 0))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStaffStore(t *testing.T) {
	store := NewStaffStore(newTestDB(t))
	ctx := context.Background()

	for _, m := range testRoster() {
		require.NoError(t, store.Upsert(ctx, "clinic", m))
	}

	roster, err := store.Roster(ctx, "clinic")
	require.NoError(t, err)
	assert.Equal(t, testRoster(), roster)

	updated := roster["nurse1"]
	updated.Name = "Nurse Joy"
	updated.Capabilities = append(updated.Capabilities, models.Wellness)
	require.NoError(t, store.Upsert(ctx, "clinic", updated))

	members, err := store.List(ctx, "clinic")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "nurse1", members[0].ID)
	assert.Equal(t, "Nurse Joy", members[0].Name)
	assert.True(t, members[0].Can(models.Wellness))

	require.NoError(t, store.Delete(ctx, "clinic", "vet1"))
	assert.ErrorIs(t, store.Delete(ctx, "clinic", "vet1"), ErrNotFound)

	empty, err := store.Roster(ctx, "elsewhere")
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.ErrorIs(t, store.Upsert(ctx, "clinic", models.StaffMember{ID: "x", Capabilities: []models.VisitType{"boarding"}}), models.ErrUnknownVisitType)
}

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}

// parseTime accepts RFC 3339 or a local wall time interpreted in loc
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", models.ErrInvalidInput, s)
}

// csvTable reads a header row and serves columns by name
type csvTable struct {
	name string
	r    *csv.Reader
	cols map[string]int
	line int
}

func newCSVTable(name string, r io.Reader, required ...string) (*csvTable, error) {
	t := &csvTable{name: name, r: csv.NewReader(r), cols: make(map[string]int)}
	t.r.TrimLeadingSpace = true
	header, err := t.r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read header: %v", models.ErrInvalidInput, name, err)
	}
	for i, h := range header {
		t.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", models.ErrInvalidInput, name, col)
		}
	}
	t.line = 1
	return t, nil
}

// next returns the following record, or nil at the end of the file
func (t *csvTable) next() ([]string, error) {
	record, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	t.line++
	if err != nil {
		return nil, t.errorf("%v", err)
	}
	return record, nil
}

func (t *csvTable) get(record []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (t *csvTable) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", models.ErrInvalidInput, t.name, t.line, fmt.Sprintf(format, args...))
}

// ParseRosterCSV reads id,name,capabilities,lunch_start rows. Capabilities
// are separated by "|".
func ParseRosterCSV(r io.Reader) ([]models.StaffMember, error) {
	t, err := newCSVTable("roster_file", r, "id", "capabilities", "lunch_start")
	if err != nil {
		return nil, err
	}

	var staff []models.StaffMember
	for {
		record, err := t.next()
		if err != nil {
			return nil, err
		}
		if record == nil {
			return staff, nil
		}

		lunch, err := models.ParseTimeOfDay(t.get(record, "lunch_start"))
		if err != nil {
			return nil, t.errorf("lunch_start: %v", err)
		}
		m := models.StaffMember{
			ID:         t.get(record, "id"),
			Name:       t.get(record, "name"),
			LunchStart: lunch,
		}
		for _, part := range strings.Split(t.get(record, "capabilities"), "|") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, err := models.ParseVisitType(part)
			if err != nil {
				return nil, t.errorf("%v", err)
			}
			m.Capabilities = append(m.Capabilities, v)
		}
		staff = append(staff, m)
	}
}

// ParseScheduleCSV reads id,start,end,visit_type,staff_id,species rows
func ParseScheduleCSV(r io.Reader, loc *time.Location) ([]models.ScheduledVisit, error) {
	t, err := newCSVTable("schedule_file", r, "start", "end", "visit_type", "staff_id")
	if err != nil {
		return nil, err
	}

	var visits []models.ScheduledVisit
	for {
		record, err := t.next()
		if err != nil {
			return nil, err
		}
		if record == nil {
			return visits, nil
		}

		start, err := parseTime(t.get(record, "start"), loc)
		if err != nil {
			return nil, t.errorf("start: %v", err)
		}
		end, err := parseTime(t.get(record, "end"), loc)
		if err != nil {
			return nil, t.errorf("end: %v", err)
		}
		vt, err := models.ParseVisitType(t.get(record, "visit_type"))
		if err != nil {
			return nil, t.errorf("%v", err)
		}
		visits = append(visits, models.ScheduledVisit{
			ID:        t.get(record, "id"),
			Start:     start,
			End:       end,
			VisitType: vt,
			StaffID:   t.get(record, "staff_id"),
			Species:   t.get(record, "species"),
		})
	}
}

// ParseInventory reads "vaccination:0.8|dental:0.2"
func ParseInventory(s string) (models.Inventory, error) {
	inv := models.Inventory{}
	for _, part := range strings.Split(s, "|") {
		if !strings.Contains(part, ":") {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		vt, err := models.ParseVisitType(kv[0])
		if err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
		urgency, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: inventory urgency %q", models.ErrInvalidInput, kv[1])
		}
		inv[vt] = urgency
	}
	return inv, nil
}

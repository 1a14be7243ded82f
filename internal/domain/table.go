package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultTableCapacity = 2
	maxTableNote         = 140
)

// Table is a physical seating unit.
type Table struct {
	ID        int64
	Label     string
	Capacity  int
	Status    TableStatus
	Note      *string
	UpdatedAt time.Time
}

type TableInput struct {
	Label    string
	Capacity *int
	Status   string
	Note     string
}

func NewTable(in TableInput) (*Table, error) {
	var errs ValidationErrors

	table := &Table{
		Label:    strings.TrimSpace(in.Label),
		Capacity: DefaultTableCapacity,
		Status:   TableAvailable,
	}
	if table.Label == "" {
		errs.add("label", CodeRequired, "label is required")
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			errs.add("capacity", CodeOutOfRange, "capacity must be positive")
		}
		table.Capacity = *in.Capacity
	}
	if in.Status != "" {
		status, err := ParseTableStatus(in.Status)
		if err != nil {
			errs = append(errs, err.(ValidationErrors)...)
		}
		table.Status = status
	}
	if note, ok := tableNote(in.Note, &errs); ok {
		table.Note = &note
	}

	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return table, nil
}

// TablePatch holds the fields of a partial table update; nil means unchanged.
type TablePatch struct {
	Label    *string
	Capacity *int
	Status   *TableStatus
	Note     *string
}

func NewTablePatch(label *string, capacity *int, status *string, note *string) (TablePatch, error) {
	var (
		errs  ValidationErrors
		patch TablePatch
	)

	if label != nil {
		l := strings.TrimSpace(*label)
		if l == "" {
			errs.add("label", CodeRequired, "label must not be empty")
		}
		patch.Label = &l
	}
	if capacity != nil {
		if *capacity <= 0 {
			errs.add("capacity", CodeOutOfRange, "capacity must be positive")
		}
		patch.Capacity = capacity
	}
	if status != nil {
		s, err := ParseTableStatus(*status)
		if err != nil {
			errs = append(errs, err.(ValidationErrors)...)
		}
		patch.Status = &s
	}
	if note != nil {
		if n, ok := tableNote(*note, &errs); ok {
			patch.Note = &n
		}
	}

	return patch, errs.orNil()
}

func tableNote(raw string, errs *ValidationErrors) (string, bool) {
	note := strings.TrimSpace(raw)
	if note == "" {
		return "", false
	}
	if utf8.RuneCountInString(note) > maxTableNote {
		errs.add("note", CodeTooLong, fmt.Sprintf("note must not exceed %d characters", maxTableNote))
	}
	return note, true
}

package schedule

import (
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Entry types
const (
	TypeClass = "class"
	TypeLab   = "lab"
)

var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type (
	// Entry is one period in a batch's day plan. Time is a zero-padded
	// 24h HH:MM string; day ordering relies on its lexicographic order.
	Entry struct {
		ID      string `json:"id"`
		Time    string `json:"time" validate:"required,hhmm"`
		Subject string `json:"subject" validate:"required"`
		Type    string `json:"type" validate:"required,oneof=class lab"`
	}

	// Table maps batch key -> day of week -> entries.
	Table map[string]map[string][]Entry
)

// ForDay returns the entries for a batch and day, sorted ascending by time.
// An unknown batch or day yields an empty list, never nil.
func (t Table) ForDay(batchKey, day string) []Entry {
	entries := append([]Entry{}, t[batchKey][day]...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Time < entries[j].Time })
	return entries
}

// Clone copies the table down to the day lists so a day can be swapped
// without touching the shared snapshot.
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for batch, days := range t {
		cd := make(map[string][]Entry, len(days))
		for day, entries := range days {
			cd[day] = append([]Entry{}, entries...)
		}
		clone[batch] = cd
	}
	return clone
}

// SetDay replaces a batch's plan for one day.
func (t Table) SetDay(batchKey, day string, entries []Entry) {
	days, ok := t[batchKey]
	if !ok {
		days = make(map[string][]Entry)
		t[batchKey] = days
	}
	days[day] = entries
}

func IsValidDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// ValidateEntries validates a full day submission; the first invalid entry
// fails the whole submission.
func ValidateEntries(validate *validator.Validate, entries []Entry) error {
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

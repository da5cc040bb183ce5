package attendance

// Statuses a student can resolve to for a day.
const (
	StatusPresent  = "present"
	StatusAbsent   = "absent"
	StatusHoliday  = "holiday"
	StatusUnmarked = "unmarked"
)

type (
	// Day classifies the students of a date into present and absent sets,
	// or marks the whole date a holiday.
	Day struct {
		Present []string `json:"present"` // student IDs
		Absent  []string `json:"absent"`  // student IDs
		Holiday bool     `json:"holiday"`
	}

	// Table maps date (YYYY-MM-DD) -> day classification.
	Table map[string]Day
)

// StatusOf resolves one student's status for the day.
func (d Day) StatusOf(studentID string) string {
	if d.Holiday {
		return StatusHoliday
	}
	for _, id := range d.Present {
		if id == studentID {
			return StatusPresent
		}
	}
	for _, id := range d.Absent {
		if id == studentID {
			return StatusAbsent
		}
	}
	return StatusUnmarked
}

// RateFor computes a student's attendance percentage over all marked days.
// Holidays and unmarked days are excluded; no marked days yields 0.
func (t Table) RateFor(studentID string) float64 {
	var present, total int
	for _, day := range t {
		switch day.StatusOf(studentID) {
		case StatusPresent:
			present++
			total++
		case StatusAbsent:
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// NewDay carries a day marking submission.
type NewDay struct {
	Date    string   `json:"date" validate:"required,datetime=2006-01-02"`
	Present []string `json:"present"`
	Absent  []string `json:"absent"`
	Holiday bool     `json:"holiday"`
}

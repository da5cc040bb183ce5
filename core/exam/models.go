package exam

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
)

// Test statuses. Status is never persisted: it is derived from the test date
// on every read so it cannot go stale.
const (
	StatusUpcoming  = "Upcoming"
	StatusCompleted = "Completed"
)

const dateLayout = "2006-01-02"

var ErrTestNotFound = errors.New("test not found")

type (
	Test struct {
		ID         string `json:"id"`
		TestName   string `json:"testName"`
		Subject    string `json:"subject"`
		Grade      string `json:"grade"`
		Medium     string `json:"medium"`
		Date       string `json:"date"` // YYYY-MM-DD
		Time       string `json:"time"` // HH:MM
		TotalMarks int    `json:"totalMarks"`
	}

	// Result is one student's score for one test. At most one result per
	// (testId, studentId) pair is kept on entry.
	Result struct {
		ID          string `json:"id"`
		TestID      string `json:"testId"`
		StudentID   string `json:"studentId"`
		StudentName string `json:"studentName"`
		Score       int    `json:"score"`
	}

	// ScoreEntry is one row of a result entry submission. A nil Score means
	// the field was left blank; blank rows are skipped, not saved as zero.
	ScoreEntry struct {
		StudentID   string `json:"student_id" validate:"required"`
		StudentName string `json:"student_name"`
		Score       *int   `json:"score"`
	}

	// View is a Test plus its derived status, as served to clients.
	View struct {
		Test
		Status string `json:"status"`
	}
)

// Status derives the test status from its date: strictly after today means
// upcoming, anything else (including an unparseable date) means completed.
func (t Test) Status(now time.Time) string {
	d, err := time.ParseInLocation(dateLayout, t.Date, now.Location())
	if err != nil {
		return StatusCompleted
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.After(today) {
		return StatusUpcoming
	}
	return StatusCompleted
}

func (t Test) AsView(now time.Time) View {
	return View{Test: t, Status: t.Status(now)}
}

func AsViews(tests []Test, now time.Time) []View {
	views := make([]View, 0, len(tests))
	for _, t := range tests {
		views = append(views, t.AsView(now))
	}
	return views
}

// ValidateScores is the all-or-nothing validation pass for a result entry
// batch: every submitted score must be within [0, totalMarks]. Any violation
// fails the entire batch before a single result is written.
func ValidateScores(entries []ScoreEntry, totalMarks int) error {
	var flds []core.FieldError
	for _, e := range entries {
		if e.Score == nil {
			continue
		}
		if *e.Score < 0 {
			flds = append(flds, core.FieldError{
				Field: e.StudentID,
				Error: "score cannot be negative",
			})
		} else if *e.Score > totalMarks {
			flds = append(flds, core.FieldError{
				Field: e.StudentID,
				Error: fmt.Sprintf("score exceeds total marks (%d)", totalMarks),
			})
		}
	}
	if flds != nil {
		return core.NewValidationError(errors.New("scores exceed total marks"), flds...)
	}
	return nil
}

// ClassAverage computes the average percentage over the recorded results.
// A test with no results averages to 0, never NaN.
func ClassAverage(results []Result, totalMarks int) float64 {
	if len(results) == 0 || totalMarks == 0 {
		return 0
	}
	var sum int
	for _, r := range results {
		sum += r.Score
	}
	return float64(sum) / float64(len(results)) / float64(totalMarks) * 100
}

// MergeResults applies a validated entry batch to the existing result list:
// blank entries are dropped, an existing (testId, studentId) result is
// replaced rather than duplicated.
func MergeResults(existing []Result, testID string, entries []ScoreEntry, newID func() string) []Result {
	merged := append([]Result{}, existing...)
	for _, e := range entries {
		if e.Score == nil {
			continue
		}
		res := Result{
			ID:          newID(),
			TestID:      testID,
			StudentID:   e.StudentID,
			StudentName: e.StudentName,
			Score:       *e.Score,
		}
		replaced := false
		for i, r := range merged {
			if r.TestID == testID && r.StudentID == e.StudentID {
				res.ID = r.ID
				merged[i] = res
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, res)
		}
	}
	return merged
}

// ResultsForTest filters results down to one test.
func ResultsForTest(results []Result, testID string) []Result {
	out := make([]Result, 0)
	for _, r := range results {
		if r.TestID == testID {
			out = append(out, r)
		}
	}
	return out
}

// NewTest carries a test create/update submission. Status is accepted here
// for backward compatibility with older clients and ignored.
type NewTest struct {
	TestName   string `json:"testName" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
	Grade      string `json:"grade" validate:"required"`
	Medium     string `json:"medium" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,hhmm"`
	TotalMarks int    `json:"totalMarks" validate:"required,gt=0"`
	Status     string `json:"status"`
}

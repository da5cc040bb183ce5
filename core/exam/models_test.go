package exam

import (
	"math"
	"testing"
	"time"

	"github.com/setulabs/shikshasetu/core"
)

func TestTest_Status(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want string
	}{
		{"future date", "2026-03-16", StatusUpcoming},
		{"today counts as completed", "2026-03-15", StatusCompleted},
		{"past date", "2026-03-01", StatusCompleted},
		{"unparseable date", "not-a-date", StatusCompleted},
		{"empty date", "", StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := Test{Date: tt.date}
			if got := test.Status(now); got != tt.want {
				t.Errorf("Status() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestValidateScores(t *testing.T) {
	iPtr := func(i int) *int { return &i }

	tests := []struct {
		name       string
		entries    []ScoreEntry
		totalMarks int
		wantFields []string
	}{
		{"all valid", []ScoreEntry{{StudentID: "S1", Score: iPtr(50)}, {StudentID: "S2", Score: iPtr(0)}}, 50, nil},
		{"blanks skipped", []ScoreEntry{{StudentID: "S1"}, {StudentID: "S2"}}, 50, nil},
		{"over total", []ScoreEntry{{StudentID: "S1", Score: iPtr(51)}}, 50, []string{"S1"}},
		{"negative", []ScoreEntry{{StudentID: "S1", Score: iPtr(-1)}}, 50, []string{"S1"}},
		{
			"one violation fails the whole batch",
			[]ScoreEntry{{StudentID: "S1", Score: iPtr(10)}, {StudentID: "S2", Score: iPtr(99)}},
			50,
			[]string{"S2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScores(tt.entries, tt.totalMarks)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("ValidateScores(): %v", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("err = %T; want *core.ValidationError", err)
			}
			if len(vErr.Fields) != len(tt.wantFields) {
				t.Fatalf("fields = %+v; want %v", vErr.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if vErr.Fields[i].Field != f {
					t.Errorf("field[%d] = %q; want %q", i, vErr.Fields[i].Field, f)
				}
			}
		})
	}
}

func TestClassAverage(t *testing.T) {
	tests := []struct {
		name       string
		results    []Result
		totalMarks int
		want       float64
	}{
		{"no results", nil, 50, 0},
		{"zero total marks", []Result{{Score: 10}}, 0, 0},
		{"single", []Result{{Score: 25}}, 50, 50},
		{"several", []Result{{Score: 42}, {Score: 37}}, 50, 79},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassAverage(tt.results, tt.totalMarks)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ClassAverage() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMergeResults(t *testing.T) {
	iPtr := func(i int) *int { return &i }
	nextID := func() func() string {
		n := 0
		return func() string { n++; return "N" + string(rune('0'+n)) }
	}

	existing := []Result{
		{ID: "R1", TestID: "T1", StudentID: "S1", Score: 42},
		{ID: "R2", TestID: "T2", StudentID: "S1", Score: 30},
	}

	t.Run("replaces the existing pair, keeps its ID", func(t *testing.T) {
		merged := MergeResults(existing, "T1", []ScoreEntry{{StudentID: "S1", Score: iPtr(48)}}, nextID())
		if len(merged) != 2 {
			t.Fatalf("len(merged) = %d; want 2", len(merged))
		}
		if merged[0].ID != "R1" || merged[0].Score != 48 {
			t.Errorf("merged[0] = %+v; want ID R1 score 48", merged[0])
		}
		// the other test's result is untouched
		if merged[1].Score != 30 {
			t.Errorf("merged[1] = %+v; want untouched", merged[1])
		}
	})

	t.Run("appends new students, skips blanks", func(t *testing.T) {
		merged := MergeResults(existing, "T1", []ScoreEntry{
			{StudentID: "S2", Score: iPtr(11)},
			{StudentID: "S3"}, // blank
		}, nextID())
		if len(merged) != 3 {
			t.Fatalf("len(merged) = %d; want 3", len(merged))
		}
		if merged[2].StudentID != "S2" || merged[2].Score != 11 {
			t.Errorf("merged[2] = %+v; want S2/11", merged[2])
		}
	})

	t.Run("input slice untouched", func(t *testing.T) {
		MergeResults(existing, "T1", []ScoreEntry{{StudentID: "S1", Score: iPtr(1)}}, nextID())
		if existing[0].Score != 42 {
			t.Error("MergeResults() mutated its input")
		}
	})
}

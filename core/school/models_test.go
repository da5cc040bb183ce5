package school

import (
	"testing"

	"github.com/setulabs/shikshasetu/core/exam"
)

func TestBatchKey(t *testing.T) {
	tests := []struct {
		name          string
		grade, medium string
		want          string
	}{
		{"simple", "10", "English", "10-English"},
		{"no case normalization", "10", "english", "10-english"},
		{"verbatim whitespace", "10 ", "English", "10 -English"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BatchKey(tt.grade, tt.medium); got != tt.want {
				t.Errorf("BatchKey() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestDatabase_TestsForBatch(t *testing.T) {
	db := Database{
		Students: []Student{
			{ID: "S1", Grade: "10", Medium: "English"},
			{ID: "S2", Grade: "10", Medium: "English"},
			{ID: "S3", Grade: "10", Medium: "english"},
		},
		Tests: []exam.Test{
			{ID: "T1", Grade: "10", Medium: "English"},
			{ID: "T2", Grade: "10", Medium: "english"},
			{ID: "T3", Grade: "9", Medium: "English"},
		},
	}

	// two students with the same grade and medium resolve to the same tests
	s1, _ := db.StudentByID("S1")
	s2, _ := db.StudentByID("S2")
	t1 := db.TestsForBatch(s1.BatchKey())
	t2 := db.TestsForBatch(s2.BatchKey())
	if len(t1) != 1 || len(t2) != 1 || t1[0].ID != t2[0].ID {
		t.Errorf("same batch resolved to different tests: %+v vs %+v", t1, t2)
	}

	// a casing mismatch is a different batch
	s3, _ := db.StudentByID("S3")
	if got := db.TestsForBatch(s3.BatchKey()); len(got) != 1 || got[0].ID != "T2" {
		t.Errorf("TestsForBatch(%q) = %+v; want only T2", s3.BatchKey(), got)
	}
}

func TestDatabase_FeeRecord(t *testing.T) {
	db := Database{
		Students: []Student{{ID: "S1", TotalAnnualFees: 40000}},
	}

	t.Run("opens empty record from annual total", func(t *testing.T) {
		rec, err := db.FeeRecord("S1")
		if err != nil {
			t.Fatalf("FeeRecord(): %v", err)
		}
		if rec.Summary.Total != 40000 || rec.Summary.Paid != 0 || rec.Summary.Due != 40000 {
			t.Errorf("summary = %+v; want 40000/0/40000", rec.Summary)
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		if _, err := db.FeeRecord("nope"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestDatabase_StudentByID(t *testing.T) {
	db := Database{Students: []Student{{ID: "S1", Name: "A"}}}
	if _, err := db.StudentByID("S1"); err != nil {
		t.Errorf("StudentByID(S1): %v", err)
	}
	if _, err := db.StudentByID("S2"); err != ErrStudentNotFound {
		t.Errorf("err = %v; want ErrStudentNotFound", err)
	}
}

package attendance

import (
	"math"
	"testing"
)

func TestDay_StatusOf(t *testing.T) {
	day := Day{Present: []string{"S1"}, Absent: []string{"S2"}}

	tests := []struct {
		name      string
		day       Day
		studentID string
		want      string
	}{
		{"present", day, "S1", StatusPresent},
		{"absent", day, "S2", StatusAbsent},
		{"unmarked", day, "S3", StatusUnmarked},
		{"holiday wins", Day{Present: []string{"S1"}, Holiday: true}, "S1", StatusHoliday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.StatusOf(tt.studentID); got != tt.want {
				t.Errorf("StatusOf() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestTable_RateFor(t *testing.T) {
	table := Table{
		"2026-03-01": {Present: []string{"S1"}, Absent: []string{"S2"}},
		"2026-03-02": {Present: []string{"S1", "S2"}},
		"2026-03-03": {Holiday: true},
		"2026-03-04": {Present: []string{"S2"}, Absent: []string{"S1"}},
	}

	tests := []struct {
		name      string
		studentID string
		want      float64
	}{
		{"two of three marked days", "S1", 200.0 / 3},
		{"absent once", "S2", 200.0 / 3},
		{"never marked", "S3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.RateFor(tt.studentID)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RateFor() = %v; want %v", got, tt.want)
			}
		})
	}

	t.Run("empty table", func(t *testing.T) {
		if got := (Table{}).RateFor("S1"); got != 0 {
			t.Errorf("RateFor() = %v; want 0", got)
		}
	})
}

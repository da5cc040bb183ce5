package school

import (
	"github.com/setulabs/shikshasetu/core/announce"
	"github.com/setulabs/shikshasetu/core/attendance"
	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/fees"
	"github.com/setulabs/shikshasetu/core/schedule"
	"github.com/setulabs/shikshasetu/core/user"
)

// Document tree paths. Every collection lives under a fixed top-level key;
// writes below these keys overwrite whole values (last write wins).
const (
	PathStudents      = "students"
	PathTeachers      = "teachers"
	PathUsers         = "users"
	PathSchedules     = "schedules"
	PathTests         = "tests"
	PathTestResults   = "testResults"
	PathFees          = "fees"
	PathAnnouncements = "announcements"
	PathAttendance    = "attendance"
)

// Database is the typed shape of the whole document tree.
type Database struct {
	Students      []Student               `json:"students"`
	Teachers      []Teacher               `json:"teachers"`
	Users         []user.User             `json:"users"`
	Schedules     schedule.Table          `json:"schedules"`
	Tests         []exam.Test             `json:"tests"`
	TestResults   []exam.Result           `json:"testResults"`
	Fees          fees.Table              `json:"fees"`
	Announcements []announce.Announcement `json:"announcements"`
	Attendance    attendance.Table        `json:"attendance"`
}

func (db *Database) StudentByID(id string) (Student, error) {
	for _, s := range db.Students {
		if s.ID == id {
			return s, nil
		}
	}
	return Student{}, ErrStudentNotFound
}

func (db *Database) TeacherByID(id string) (Teacher, error) {
	for _, t := range db.Teachers {
		if t.ID == id {
			return t, nil
		}
	}
	return Teacher{}, ErrTeacherNotFound
}

// StudentsInBatch returns the students whose grade and medium resolve to the
// given batch key.
func (db *Database) StudentsInBatch(batchKey string) []Student {
	students := make([]Student, 0)
	for _, s := range db.Students {
		if s.BatchKey() == batchKey {
			students = append(students, s)
		}
	}
	return students
}

// TestsForBatch returns the tests bound to a batch key. Two students with the
// same grade and medium always resolve to the same set.
func (db *Database) TestsForBatch(batchKey string) []exam.Test {
	tests := make([]exam.Test, 0)
	for _, t := range db.Tests {
		if BatchKey(t.Grade, t.Medium) == batchKey {
			tests = append(tests, t)
		}
	}
	return tests
}

func (db *Database) TestByID(id string) (exam.Test, error) {
	for _, t := range db.Tests {
		if t.ID == id {
			return t, nil
		}
	}
	return exam.Test{}, exam.ErrTestNotFound
}

// FeeRecord returns a student's fee record, opening an empty one from the
// student's annual total when none is stored yet.
func (db *Database) FeeRecord(studentID string) (fees.Record, error) {
	if rec, ok := db.Fees[studentID]; ok {
		return rec, nil
	}
	s, err := db.StudentByID(studentID)
	if err != nil {
		return fees.Record{}, fees.ErrRecordNotFound
	}
	return fees.NewRecord(s.TotalAnnualFees, ""), nil
}

package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/announce"
	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/fees"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/schedule"
	"github.com/setulabs/shikshasetu/core/school"
)

// Dashboard variants
const (
	variantStudent = "student"
	variantTeacher = "teacher"
	variantAdmin   = "admin"
)

var (
	studentNav = []string{"dashboard", "schedule", "exams", "fees", "announcements"}
	teacherNav = []string{"dashboard", "students", "schedule", "exams", "attendance", "announcements"}
	adminNav   = []string{"dashboard", "students", "teachers", "schedule", "exams", "fees", "attendance", "announcements", "users"}
)

type dashboardApi struct {
	syncer *portal.Syncer
}

func registerDashboardAPI(g *echo.Group, syncer *portal.Syncer) {
	api := dashboardApi{syncer: syncer}
	g.GET("/dashboard", api.retrieve)
}

type (
	StudentDashboard struct {
		Variant        string                  `json:"variant"`
		Nav            []string                `json:"nav"`
		Student        school.Student          `json:"student"`
		TodaySchedule  []schedule.Entry        `json:"today_schedule"`
		Tests          []exam.View             `json:"tests"`
		AttendanceRate float64                 `json:"attendance_rate"`
		Fees           fees.Summary            `json:"fees"`
		Announcements  []announce.Announcement `json:"announcements"`
	}

	StaffDashboard struct {
		Variant       string                  `json:"variant"`
		Nav           []string                `json:"nav"`
		StudentCount  int                     `json:"student_count"`
		TeacherCount  int                     `json:"teacher_count"`
		TestCount     int                     `json:"test_count"`
		TotalFeesDue  *int                    `json:"total_fees_due,omitempty"` // admin only
		Announcements []announce.Announcement `json:"announcements"`
	}
)

// retrieve serves the role-appropriate dashboard. A user whose roles match
// none of the known portals falls back to the teacher variant; this
// permissive default applies to the dashboard only, every mutating endpoint
// stays role-gated.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	db := api.syncer.Snapshot()

	if claims.IsStudent {
		return api.studentDashboard(ctx, db, claims)
	}
	if claims.IsAdmin {
		due := db.Fees.TotalDue()
		return ctx.JSON(http.StatusOK, StaffDashboard{
			Variant:       variantAdmin,
			Nav:           adminNav,
			StudentCount:  len(db.Students),
			TeacherCount:  len(db.Teachers),
			TestCount:     len(db.Tests),
			TotalFeesDue:  &due,
			Announcements: db.Announcements,
		})
	}
	return ctx.JSON(http.StatusOK, StaffDashboard{
		Variant:       variantTeacher,
		Nav:           teacherNav,
		StudentCount:  len(db.Students),
		TeacherCount:  len(db.Teachers),
		TestCount:     len(db.Tests),
		Announcements: db.Announcements,
	})
}

func (api *dashboardApi) studentDashboard(ctx echo.Context, db school.Database, claims Claims) error {
	student, err := db.StudentByID(claims.StudentID)
	if err != nil {
		return errHttpNotFound
	}

	now := time.Now()
	batch := student.BatchKey()

	rec, err := db.FeeRecord(student.ID)
	if err != nil {
		rec = fees.NewRecord(student.TotalAnnualFees, "")
	}

	return ctx.JSON(http.StatusOK, StudentDashboard{
		Variant:        variantStudent,
		Nav:            studentNav,
		Student:        student,
		TodaySchedule:  db.Schedules.ForDay(batch, now.Weekday().String()),
		Tests:          exam.AsViews(db.TestsForBatch(batch), now),
		AttendanceRate: db.Attendance.RateFor(student.ID),
		Fees:           rec.Summary,
		Announcements:  db.Announcements,
	})
}

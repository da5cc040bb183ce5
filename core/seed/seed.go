// Package seed supplies the default fixture set used to initialise an empty
// document store on first run.
package seed

import (
	"log"
	"time"

	"github.com/setulabs/shikshasetu/core/announce"
	"github.com/setulabs/shikshasetu/core/attendance"
	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/fees"
	"github.com/setulabs/shikshasetu/core/schedule"
	"github.com/setulabs/shikshasetu/core/school"
	"github.com/setulabs/shikshasetu/core/user"
)

// Default credentials present in every freshly seeded install.
const (
	AdminUsername = "admin"
	AdminPassword = "admin"

	StudentPassword = "student123"
	TeacherPassword = "teacher123"
)

const dateLayout = "2006-01-02"

// Database returns the seed fixture set. IDs are fixed so that repeated
// seeding is idempotent; test dates are derived from the clock so one test is
// always upcoming and one completed.
func Database() school.Database {
	now := time.Now()

	students := []school.Student{
		{
			ID: "STU-1001", Name: "Aarav Sharma", Grade: "10", Medium: "English",
			ParentName: "Rohit Sharma", ParentContact: "+91 98200 11001", ParentEmail: "rohit.sharma@example.com",
			Email: "aarav@example.com", Username: "aarav", TotalAnnualFees: 45000,
		},
		{
			ID: "STU-1002", Name: "Diya Patel", Grade: "10", Medium: "English",
			ParentName: "Mehul Patel", ParentContact: "+91 98200 11002", ParentEmail: "mehul.patel@example.com",
			Email: "diya@example.com", Username: "diya", TotalAnnualFees: 45000,
		},
		{
			ID: "STU-1003", Name: "Kabir Joshi", Grade: "9", Medium: "Marathi",
			ParentName: "Anita Joshi", ParentContact: "+91 98200 11003", ParentEmail: "anita.joshi@example.com",
			Email: "kabir@example.com", Username: "kabir", TotalAnnualFees: 38000,
		},
	}

	teachers := []school.Teacher{
		{ID: "TCH-2001", Name: "Sunita Deshpande", Subject: "Mathematics", Email: "sunita@shikshasetu.example", Username: "sunita"},
		{ID: "TCH-2002", Name: "Vikram Rao", Subject: "Science", Email: "vikram@shikshasetu.example", Username: "vikram"},
	}

	schedules := schedule.Table{
		"10-English": {
			"Monday": {
				{ID: "SCH-01", Time: "09:00", Subject: "Mathematics", Type: schedule.TypeClass},
				{ID: "SCH-02", Time: "10:00", Subject: "Science", Type: schedule.TypeClass},
				{ID: "SCH-03", Time: "11:15", Subject: "Science", Type: schedule.TypeLab},
			},
			"Tuesday": {
				{ID: "SCH-04", Time: "09:00", Subject: "English", Type: schedule.TypeClass},
				{ID: "SCH-05", Time: "10:00", Subject: "History", Type: schedule.TypeClass},
			},
		},
		"9-Marathi": {
			"Monday": {
				{ID: "SCH-06", Time: "09:00", Subject: "Marathi", Type: schedule.TypeClass},
				{ID: "SCH-07", Time: "10:00", Subject: "Mathematics", Type: schedule.TypeClass},
			},
		},
	}

	tests := []exam.Test{
		{
			ID: "TST-3001", TestName: "Unit Test 1", Subject: "Mathematics",
			Grade: "10", Medium: "English",
			Date: now.AddDate(0, 0, -14).Format(dateLayout), Time: "09:00", TotalMarks: 50,
		},
		{
			ID: "TST-3002", TestName: "Unit Test 2", Subject: "Science",
			Grade: "10", Medium: "English",
			Date: now.AddDate(0, 0, 7).Format(dateLayout), Time: "09:00", TotalMarks: 50,
		},
	}

	results := []exam.Result{
		{ID: "RES-4001", TestID: "TST-3001", StudentID: "STU-1001", StudentName: "Aarav Sharma", Score: 42},
		{ID: "RES-4002", TestID: "TST-3001", StudentID: "STU-1002", StudentName: "Diya Patel", Score: 37},
	}

	feeTable := fees.Table{
		"STU-1001": fees.NewRecord(45000, now.AddDate(0, 1, 0).Format(dateLayout)).ApplyPayment(fees.Payment{
			ID: "PAY-5001", Amount: 15000, Date: now.AddDate(0, -1, 0).Format(dateLayout), Mode: fees.ModeOnline,
		}),
		"STU-1002": fees.NewRecord(45000, now.AddDate(0, 1, 0).Format(dateLayout)),
		"STU-1003": fees.NewRecord(38000, now.AddDate(0, 1, 0).Format(dateLayout)),
	}

	announcements := []announce.Announcement{
		{
			ID: "ANN-6001", Title: "Welcome back",
			Message: "School reopens Monday. Timetables are live on the portal.",
			Date:    now.AddDate(0, 0, -2).Format(dateLayout),
		},
	}

	attendanceTable := attendance.Table{
		now.AddDate(0, 0, -1).Format(dateLayout): {
			Present: []string{"STU-1001", "STU-1002"},
			Absent:  []string{"STU-1003"},
		},
	}

	return school.Database{
		Students:      students,
		Teachers:      teachers,
		Users:         Users(students, teachers),
		Schedules:     schedules,
		Tests:         tests,
		TestResults:   results,
		Fees:          feeTable,
		Announcements: announcements,
		Attendance:    attendanceTable,
	}
}

// Users builds the portal accounts backing the seeded records: one account
// per student and teacher plus the super admin.
func Users(students []school.Student, teachers []school.Teacher) []user.User {
	now := time.Now().UTC()
	users := make([]user.User, 0, len(students)+len(teachers)+1)

	admin := user.User{
		ID: "USR-0001", Name: "Super Admin", Username: AdminUsername, Email: "admin@shikshasetu.example",
		IsActive: true, Roles: []string{user.RoleAdminSuper}, CreatedAt: now, UpdatedAt: now,
	}
	mustSetPassword(&admin, AdminPassword)
	users = append(users, admin)

	for _, s := range students {
		usr := user.User{
			ID: s.ID + "-U", Name: s.Name, Username: s.Username, Email: s.Email,
			IsActive: true, Roles: []string{user.RoleStudent}, StudentID: s.ID,
			CreatedAt: now, UpdatedAt: now,
		}
		mustSetPassword(&usr, StudentPassword)
		users = append(users, usr)
	}

	for _, t := range teachers {
		usr := user.User{
			ID: t.ID + "-U", Name: t.Name, Username: t.Username, Email: t.Email,
			IsActive: true, Roles: []string{user.RoleTeacher},
			CreatedAt: now, UpdatedAt: now,
		}
		mustSetPassword(&usr, TeacherPassword)
		users = append(users, usr)
	}
	return users
}

func mustSetPassword(usr *user.User, pwd string) {
	if err := usr.SetPassword(pwd); err != nil {
		// bcrypt only fails on absurd input; fixtures are static
		log.Fatalf("seed: hashing password for %s: %v", usr.Username, err)
	}
}

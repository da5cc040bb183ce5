package school

import (
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherNotFound = errors.New("teacher not found")
)

// BatchKey joins a student to its schedule and test cohort. No case or
// whitespace normalization is applied: "10-English" and "10-english" are
// distinct batches.
func BatchKey(grade, medium string) string {
	return grade + "-" + medium
}

type (
	Student struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Grade           string `json:"grade"`
		Medium          string `json:"medium"`
		ParentName      string `json:"parentName"`
		ParentContact   string `json:"parentContact"`
		ParentEmail     string `json:"parentEmail,omitempty"`
		Email           string `json:"email"`
		Username        string `json:"username"`
		TotalAnnualFees int    `json:"totalAnnualFees"`
	}

	Teacher struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Subject  string `json:"subject"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
)

func (s Student) BatchKey() string { return BatchKey(s.Grade, s.Medium) }

// NewStudent carries a student create/update submission.
type NewStudent struct {
	Name            string `json:"name" validate:"required"`
	Grade           string `json:"grade" validate:"required"`
	Medium          string `json:"medium" validate:"required"`
	ParentName      string `json:"parentName" validate:"required"`
	ParentContact   string `json:"parentContact" validate:"required"`
	ParentEmail     string `json:"parentEmail" validate:"omitempty,email"`
	Email           string `json:"email" validate:"omitempty,email"`
	Username        string `json:"username" validate:"omitempty,min=4,alphanum_"`
	TotalAnnualFees int    `json:"totalAnnualFees" validate:"gte=0"`
}

func (ns *NewStudent) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	// grade and medium are stored verbatim; the batch key never normalizes
	ns.Grade = core.CleanString(ns.Grade)
	ns.Medium = core.CleanString(ns.Medium)
}

func (ns NewStudent) Student(id string) Student {
	return Student{
		ID:              id,
		Name:            ns.Name,
		Grade:           ns.Grade,
		Medium:          ns.Medium,
		ParentName:      ns.ParentName,
		ParentContact:   ns.ParentContact,
		ParentEmail:     ns.ParentEmail,
		Email:           ns.Email,
		Username:        ns.Username,
		TotalAnnualFees: ns.TotalAnnualFees,
	}
}

// NewTeacher carries a teacher create/update submission.
type NewTeacher struct {
	Name     string `json:"name" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,min=4,alphanum_"`
}

func (nt *NewTeacher) Clean() {
	nt.Name = core.CleanString(nt.Name)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
}

func (nt NewTeacher) Teacher(id string) Teacher {
	return Teacher{
		ID:       id,
		Name:     nt.Name,
		Subject:  nt.Subject,
		Email:    nt.Email,
		Username: nt.Username,
	}
}

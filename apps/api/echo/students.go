package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
	"github.com/setulabs/shikshasetu/core/user"
)

type studentApi struct {
	syncer   *portal.Syncer
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, syncer *portal.Syncer, usrSvc *user.Service, validate *validator.Validate) {
	api := studentApi{syncer: syncer, usrSvc: usrSvc, validate: validate}

	sg := g.Group("/students")
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, adminMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// NewStudentRequest is a student submission, optionally opening a linked
// portal account when a password is supplied alongside the username.
type NewStudentRequest struct {
	school.NewStudent
	Password string `json:"password" validate:"omitempty,required_with=Username"`
}

func (api *studentApi) query(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	students := db.Students
	if students == nil {
		students = []school.Student{}
	}
	if batch := ctx.QueryParam("batch"); batch != "" {
		students = db.StudentsInBatch(batch)
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data NewStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentRequest")
	}
	data.Clean()
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	student := data.Student(uuid.NewString())

	db := api.syncer.Snapshot()
	students := append(append([]school.Student{}, db.Students...), student)
	if err := api.syncer.Save(ctx.Request().Context(), school.PathStudents, students); err != nil {
		return errors.Wrap(err, "saving students")
	}

	if data.Username != "" && data.Password != "" {
		nu := user.NewUser{
			Name:            student.Name,
			Username:        student.Username,
			Email:           student.Email,
			Password:        data.Password,
			PasswordConfirm: data.Password,
			Roles:           []string{user.RoleStudent},
			StudentID:       student.ID,
		}
		if err := nu.Validate(api.validate, api.usrSvc); err != nil {
			return err
		}
		if _, err := api.usrSvc.Create(ctx.Request().Context(), nu); err != nil {
			return errors.Wrap(err, "creating student account")
		}
	}

	return ctx.JSON(http.StatusCreated, student)
}

// retrieve serves one student: staff can fetch any, a student only their own.
func (api *studentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsAdmin || claims.IsTeacher || claims.StudentID == ctx.Param("id")) {
		return errHttpForbidden
	}

	db := api.syncer.Snapshot()
	student, err := db.StudentByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	data.Clean()
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	db := api.syncer.Snapshot()
	students := append([]school.Student{}, db.Students...)
	var updated school.Student
	found := false
	for i, s := range students {
		if s.ID == ctx.Param("id") {
			updated = data.Student(s.ID)
			students[i] = updated
			found = true
			break
		}
	}
	if !found {
		return errHttpNotFound
	}

	if err := api.syncer.Save(ctx.Request().Context(), school.PathStudents, students); err != nil {
		return errors.Wrap(err, "saving students")
	}
	return ctx.JSON(http.StatusOK, updated)
}

// destroy removes the student and its fee record. Linked portal accounts are
// managed through the users API.
func (api *studentApi) destroy(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	students := make([]school.Student, 0, len(db.Students))
	found := false
	for _, s := range db.Students {
		if s.ID == ctx.Param("id") {
			found = true
			continue
		}
		students = append(students, s)
	}
	if !found {
		return errHttpNotFound
	}

	reqCtx := ctx.Request().Context()
	if err := api.syncer.Save(reqCtx, school.PathStudents, students); err != nil {
		return errors.Wrap(err, "saving students")
	}
	if _, ok := db.Fees[ctx.Param("id")]; ok {
		feeTable := db.Fees.Clone()
		delete(feeTable, ctx.Param("id"))
		if err := api.syncer.Save(reqCtx, school.PathFees, feeTable); err != nil {
			return errors.Wrap(err, "saving fee records")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
)

type teacherApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := teacherApi{syncer: syncer, validate: validate}

	tg := g.Group("/teachers")
	tg.GET("", api.query, staffMiddleware())
	tg.POST("", api.create, adminMiddleware())
	tg.GET("/:id", api.retrieve, staffMiddleware())
	tg.PUT("/:id", api.update, adminMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *teacherApi) query(ctx echo.Context) error {
	teachers := api.syncer.Snapshot().Teachers
	if teachers == nil {
		teachers = []school.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	data.Clean()
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	teacher := data.Teacher(uuid.NewString())

	db := api.syncer.Snapshot()
	teachers := append(append([]school.Teacher{}, db.Teachers...), teacher)
	if err := api.syncer.Save(ctx.Request().Context(), school.PathTeachers, teachers); err != nil {
		return errors.Wrap(err, "saving teachers")
	}
	return ctx.JSON(http.StatusCreated, teacher)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	teacher, err := db.TeacherByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *teacherApi) update(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	data.Clean()
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	db := api.syncer.Snapshot()
	teachers := append([]school.Teacher{}, db.Teachers...)
	var updated school.Teacher
	found := false
	for i, t := range teachers {
		if t.ID == ctx.Param("id") {
			updated = data.Teacher(t.ID)
			teachers[i] = updated
			found = true
			break
		}
	}
	if !found {
		return errHttpNotFound
	}

	if err := api.syncer.Save(ctx.Request().Context(), school.PathTeachers, teachers); err != nil {
		return errors.Wrap(err, "saving teachers")
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	teachers := make([]school.Teacher, 0, len(db.Teachers))
	found := false
	for _, t := range db.Teachers {
		if t.ID == ctx.Param("id") {
			found = true
			continue
		}
		teachers = append(teachers, t)
	}
	if !found {
		return errHttpNotFound
	}

	if err := api.syncer.Save(ctx.Request().Context(), school.PathTeachers, teachers); err != nil {
		return errors.Wrap(err, "saving teachers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/schedule"
	"github.com/setulabs/shikshasetu/core/school"
)

type scheduleApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := scheduleApi{syncer: syncer, validate: validate}

	sg := g.Group("/schedule")
	sg.GET("/days", api.queryDays)
	sg.GET("/:day", api.retrieveDay)
	sg.PUT("/:day", api.updateDay, staffMiddleware())
}

// UpdateDayRequest replaces one batch's plan for one day wholesale.
type UpdateDayRequest struct {
	Batch   string           `json:"batch" validate:"required"`
	Entries []schedule.Entry `json:"entries"`
}

func (api *scheduleApi) queryDays(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, schedule.Days)
}

// retrieveDay serves a day plan sorted by time. Students get their own
// batch; staff select one with the batch query param.
func (api *scheduleApi) retrieveDay(ctx echo.Context) error {
	day := ctx.Param("day")
	if !schedule.IsValidDay(day) {
		return errHttpNotFound
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	db := api.syncer.Snapshot()

	batch := ctx.QueryParam("batch")
	if claims.IsStudent {
		student, err := db.StudentByID(claims.StudentID)
		if err != nil {
			return errHttpNotFound
		}
		batch = student.BatchKey()
	} else if batch == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "batch", Error: "batch is required"})
	}

	return ctx.JSON(http.StatusOK, db.Schedules.ForDay(batch, day))
}

func (api *scheduleApi) updateDay(ctx echo.Context) error {
	day := ctx.Param("day")
	if !schedule.IsValidDay(day) {
		return errHttpNotFound
	}

	var data UpdateDayRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDayRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if err := schedule.ValidateEntries(api.validate, data.Entries); err != nil {
		return err
	}

	entries := append([]schedule.Entry{}, data.Entries...)
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}

	table := api.syncer.Snapshot().Schedules.Clone()
	table.SetDay(data.Batch, day, entries)

	if err := api.syncer.Save(ctx.Request().Context(), school.PathSchedules, table); err != nil {
		return errors.Wrap(err, "saving schedules")
	}
	return ctx.JSON(http.StatusOK, table.ForDay(data.Batch, day))
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/attendance"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
)

type attendanceApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := attendanceApi{syncer: syncer, validate: validate}

	ag := g.Group("/attendance")
	ag.GET("/me", api.retrieveOwn)
	ag.GET("/:date", api.retrieveDay, staffMiddleware())
	ag.POST("", api.markDay, staffMiddleware())
}

type (
	OwnAttendanceResponse struct {
		Rate float64           `json:"rate"`
		Days map[string]string `json:"days"` // date -> status
	}

	DayResponse struct {
		Date string         `json:"date"`
		Day  attendance.Day `json:"day"`
	}
)

// retrieveOwn serves a student's attendance rate and per-day statuses.
func (api *attendanceApi) retrieveOwn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	table := api.syncer.Snapshot().Attendance
	days := make(map[string]string, len(table))
	for date, day := range table {
		days[date] = day.StatusOf(claims.StudentID)
	}

	return ctx.JSON(http.StatusOK, OwnAttendanceResponse{
		Rate: table.RateFor(claims.StudentID),
		Days: days,
	})
}

func (api *attendanceApi) retrieveDay(ctx echo.Context) error {
	table := api.syncer.Snapshot().Attendance
	day, ok := table[ctx.Param("date")]
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, DayResponse{Date: ctx.Param("date"), Day: day})
}

// markDay records one date's classification, replacing any previous marking.
func (api *attendanceApi) markDay(ctx echo.Context) error {
	var data attendance.NewDay
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDay")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	table := make(attendance.Table)
	for date, day := range api.syncer.Snapshot().Attendance {
		table[date] = day
	}
	table[data.Date] = attendance.Day{
		Present: data.Present,
		Absent:  data.Absent,
		Holiday: data.Holiday,
	}

	if err := api.syncer.Save(ctx.Request().Context(), school.PathAttendance, table); err != nil {
		return errors.Wrap(err, "saving attendance")
	}
	return ctx.JSON(http.StatusCreated, DayResponse{Date: data.Date, Day: table[data.Date]})
}

package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/notify"
	"github.com/setulabs/shikshasetu/core/portal"
)

type notifyApi struct {
	syncer   *portal.Syncer
	svc      *notify.Service
	validate *validator.Validate
}

func registerNotifyAPI(g *echo.Group, syncer *portal.Syncer, svc *notify.Service, validate *validator.Validate) {
	api := notifyApi{syncer: syncer, svc: svc, validate: validate}

	ng := g.Group("/notify", staffMiddleware())
	ng.POST("/parent-message", api.composeParentMessage)
}

type (
	ParentMessageRequest struct {
		StudentID  string `json:"student_id" validate:"required"`
		Activities string `json:"activities"`
		SendEmail  bool   `json:"send_email"`
	}

	ParentMessageResponse struct {
		notify.Message
		Emailed bool `json:"emailed"`
	}
)

// composeParentMessage generates a parent progress message from the
// student's recorded performance and attendance, optionally emailing it to
// the parent contact. A generation failure surfaces as-is; any previously
// composed message on the client stays untouched.
func (api *notifyApi) composeParentMessage(ctx echo.Context) error {
	var data ParentMessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentMessageRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	db := api.syncer.Snapshot()
	student, err := db.StudentByID(data.StudentID)
	if err != nil {
		return errHttpNotFound
	}

	req := notify.Request{
		StudentName:        student.Name,
		StudentPerformance: performanceSummary(db.TestResults, db.Tests, student.ID),
		StudentAttendance:  fmt.Sprintf("%.0f%% attendance", db.Attendance.RateFor(student.ID)),
		StudentActivities:  data.Activities,
	}

	msg, err := api.svc.ComposeParentMessage(ctx.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "message generation failed")
	}

	emailed := false
	if data.SendEmail && student.ParentEmail != "" {
		api.svc.EmailParent(student.ParentName, student.ParentEmail, student.Name, msg)
		emailed = true
	}

	return ctx.JSON(http.StatusOK, ParentMessageResponse{Message: msg, Emailed: emailed})
}

// performanceSummary flattens a student's scores into a short free-text
// summary for the generator prompt.
func performanceSummary(results []exam.Result, tests []exam.Test, studentID string) string {
	totals := make(map[string]int, len(tests))
	names := make(map[string]string, len(tests))
	for _, t := range tests {
		totals[t.ID] = t.TotalMarks
		names[t.ID] = t.TestName + " (" + t.Subject + ")"
	}

	var parts []string
	for _, r := range results {
		if r.StudentID != studentID {
			continue
		}
		name, ok := names[r.TestID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d/%d", name, r.Score, totals[r.TestID]))
	}
	if parts == nil {
		return "no test results recorded yet"
	}
	return strings.Join(parts, "; ")
}

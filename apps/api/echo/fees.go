package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/setulabs/shikshasetu/core/fees"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
)

type feesApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerFeesAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := feesApi{syncer: syncer, validate: validate}

	fg := g.Group("/fees")
	fg.GET("/me", api.retrieveOwn)
	fg.GET("/summary", api.querySummary, adminMiddleware())
	fg.GET("/students/:id", api.retrieve, adminMiddleware())
	fg.POST("/payments", api.recordPayment, adminMiddleware())
}

type (
	StudentFeesSummary struct {
		StudentID   string       `json:"student_id"`
		StudentName string       `json:"student_name"`
		Summary     fees.Summary `json:"summary"`
	}

	FeesSummaryResponse struct {
		Students []StudentFeesSummary `json:"students"`
		TotalDue int                  `json:"total_due"`
	}
)

func (api *feesApi) retrieveOwn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	db := api.syncer.Snapshot()
	rec, err := db.FeeRecord(claims.StudentID)
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *feesApi) retrieve(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	rec, err := db.FeeRecord(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, rec)
}

// querySummary lists every student's fee position. The total due is
// recomputed from current records on every call.
func (api *feesApi) querySummary(ctx echo.Context) error {
	db := api.syncer.Snapshot()

	students := make([]StudentFeesSummary, 0, len(db.Students))
	var totalDue int
	for _, s := range db.Students {
		rec, err := db.FeeRecord(s.ID)
		if err != nil {
			continue
		}
		students = append(students, StudentFeesSummary{
			StudentID:   s.ID,
			StudentName: s.Name,
			Summary:     rec.Summary,
		})
		totalDue += rec.Summary.Due
	}

	return ctx.JSON(http.StatusOK, FeesSummaryResponse{Students: students, TotalDue: totalDue})
}

func (api *feesApi) recordPayment(ctx echo.Context) error {
	var data fees.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	db := api.syncer.Snapshot()
	rec, err := db.FeeRecord(data.StudentID)
	if err != nil {
		return errHttpNotFound
	}

	payment := fees.Payment{
		ID:     uuid.NewString(),
		Amount: data.Amount,
		Date:   data.Date,
		Mode:   data.Mode,
		Note:   null.NewString(data.Note, data.Note != ""),
	}

	table := db.Fees.Clone()
	table[data.StudentID] = rec.ApplyPayment(payment)

	if err = api.syncer.Save(ctx.Request().Context(), school.PathFees, table); err != nil {
		return errors.Wrap(err, "saving fee records")
	}
	return ctx.JSON(http.StatusCreated, table[data.StudentID])
}

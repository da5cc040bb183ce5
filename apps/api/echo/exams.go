package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/school"
)

type examApi struct {
	syncer   *portal.Syncer
	validate *validator.Validate
}

func registerExamAPI(g *echo.Group, syncer *portal.Syncer, validate *validator.Validate) {
	api := examApi{syncer: syncer, validate: validate}

	eg := g.Group("/exams")
	eg.GET("", api.query)
	eg.POST("", api.create, staffMiddleware())
	eg.PUT("/:id", api.update, staffMiddleware())
	eg.DELETE("/:id", api.destroy, staffMiddleware())
	eg.GET("/:id/results", api.queryResults)
	eg.POST("/:id/results", api.enterResults, staffMiddleware())
}

type ResultsResponse struct {
	Test    exam.View     `json:"test"`
	Results []exam.Result `json:"results"`
	Average float64       `json:"average"`
}

// query lists tests with their status derived from the date at read time.
// Students see their own batch; staff see everything, optionally narrowed
// with the batch query param.
func (api *examApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	db := api.syncer.Snapshot()

	var tests []exam.Test
	if claims.IsStudent {
		student, err := db.StudentByID(claims.StudentID)
		if err != nil {
			return errHttpNotFound
		}
		tests = db.TestsForBatch(student.BatchKey())
	} else if batch := ctx.QueryParam("batch"); batch != "" {
		tests = db.TestsForBatch(batch)
	} else {
		tests = db.Tests
	}

	return ctx.JSON(http.StatusOK, exam.AsViews(tests, time.Now()))
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	test := exam.Test{
		ID:         uuid.NewString(),
		TestName:   data.TestName,
		Subject:    data.Subject,
		Grade:      data.Grade,
		Medium:     data.Medium,
		Date:       data.Date,
		Time:       data.Time,
		TotalMarks: data.TotalMarks,
	}

	db := api.syncer.Snapshot()
	tests := append(append([]exam.Test{}, db.Tests...), test)
	if err := api.syncer.Save(ctx.Request().Context(), school.PathTests, tests); err != nil {
		return errors.Wrap(err, "saving tests")
	}
	return ctx.JSON(http.StatusCreated, test.AsView(time.Now()))
}

func (api *examApi) update(ctx echo.Context) error {
	var data exam.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	db := api.syncer.Snapshot()
	tests := append([]exam.Test{}, db.Tests...)
	var updated exam.Test
	found := false
	for i, t := range tests {
		if t.ID == ctx.Param("id") {
			updated = exam.Test{
				ID:         t.ID,
				TestName:   data.TestName,
				Subject:    data.Subject,
				Grade:      data.Grade,
				Medium:     data.Medium,
				Date:       data.Date,
				Time:       data.Time,
				TotalMarks: data.TotalMarks,
			}
			tests[i] = updated
			found = true
			break
		}
	}
	if !found {
		return errHttpNotFound
	}

	if err := api.syncer.Save(ctx.Request().Context(), school.PathTests, tests); err != nil {
		return errors.Wrap(err, "saving tests")
	}
	return ctx.JSON(http.StatusOK, updated.AsView(time.Now()))
}

// destroy removes a test and its results.
func (api *examApi) destroy(ctx echo.Context) error {
	db := api.syncer.Snapshot()
	tests := make([]exam.Test, 0, len(db.Tests))
	found := false
	for _, t := range db.Tests {
		if t.ID == ctx.Param("id") {
			found = true
			continue
		}
		tests = append(tests, t)
	}
	if !found {
		return errHttpNotFound
	}

	results := make([]exam.Result, 0, len(db.TestResults))
	for _, r := range db.TestResults {
		if r.TestID == ctx.Param("id") {
			continue
		}
		results = append(results, r)
	}

	reqCtx := ctx.Request().Context()
	if err := api.syncer.Save(reqCtx, school.PathTests, tests); err != nil {
		return errors.Wrap(err, "saving tests")
	}
	if err := api.syncer.Save(reqCtx, school.PathTestResults, results); err != nil {
		return errors.Wrap(err, "saving test results")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// queryResults serves a test's results and class average. Students only see
// their own score.
func (api *examApi) queryResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	db := api.syncer.Snapshot()

	test, err := db.TestByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	results := exam.ResultsForTest(db.TestResults, test.ID)
	average := exam.ClassAverage(results, test.TotalMarks)
	if claims.IsStudent {
		own := make([]exam.Result, 0, 1)
		for _, r := range results {
			if r.StudentID == claims.StudentID {
				own = append(own, r)
			}
		}
		results = own
	}

	return ctx.JSON(http.StatusOK, ResultsResponse{
		Test:    test.AsView(time.Now()),
		Results: results,
		Average: average,
	})
}

// enterResults applies a batch of score entries. The batch is validated in
// full before any result is written: one bad score rejects the whole batch.
func (api *examApi) enterResults(ctx echo.Context) error {
	var entries []exam.ScoreEntry
	if err := ctx.Bind(&entries); err != nil {
		return errors.Wrap(err, "binding to score entries")
	}
	for _, e := range entries {
		if err := api.validate.Struct(&e); err != nil {
			return err
		}
	}

	db := api.syncer.Snapshot()
	test, err := db.TestByID(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	if err = exam.ValidateScores(entries, test.TotalMarks); err != nil {
		return err
	}

	results := exam.MergeResults(db.TestResults, test.ID, entries, uuid.NewString)
	if err = api.syncer.Save(ctx.Request().Context(), school.PathTestResults, results); err != nil {
		return errors.Wrap(err, "saving test results")
	}

	return ctx.JSON(http.StatusOK, ResultsResponse{
		Test:    test.AsView(time.Now()),
		Results: exam.ResultsForTest(results, test.ID),
		Average: exam.ClassAverage(exam.ResultsForTest(results, test.ID), test.TotalMarks),
	})
}

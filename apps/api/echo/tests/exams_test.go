package tests

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"github.com/setulabs/shikshasetu/core/exam"
	"github.com/setulabs/shikshasetu/core/seed"
)

func Test_examApi_enterResults(t *testing.T) {
	app := setup(t)

	teacher := seededUser(t, "sunita")
	student := seededUser(t, "aarav")

	iPtr := func(i int) *int { return &i }
	entries := func(es ...exam.ScoreEntry) []byte { return marchallObj(t, es) }

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", token: getToken(t, student),
			body:     entries(exam.ScoreEntry{StudentID: "STU-1001", Score: iPtr(40)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:  "One bad score rejects the whole batch",
			token: getToken(t, teacher),
			body: entries(
				exam.ScoreEntry{StudentID: "STU-1001", StudentName: "Aarav Sharma", Score: iPtr(45)},
				exam.ScoreEntry{StudentID: "STU-1002", StudentName: "Diya Patel", Score: iPtr(51)}, // > 50 total marks
			),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"STU-1002": "score exceeds total marks (50)"}),
		},
		{
			name:  "Negative score rejected",
			token: getToken(t, teacher),
			body:     entries(exam.ScoreEntry{StudentID: "STU-1001", Score: iPtr(-1)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"STU-1001": "score cannot be negative"}),
		},
		{
			name:  "Valid batch saved, blanks skipped, existing replaced",
			token: getToken(t, teacher),
			body: entries(
				exam.ScoreEntry{StudentID: "STU-1001", StudentName: "Aarav Sharma", Score: iPtr(48)}, // replaces seeded 42
				exam.ScoreEntry{StudentID: "STU-1002", StudentName: "Diya Patel"},                    // blank, skipped
			),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/exams/TST-3001/results", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the rejected batch must not have written anything; the valid one must
	// have replaced Aarav's score and kept Diya's seeded 37
	results := syncer.Snapshot().TestResults
	scores := map[string]int{}
	for _, r := range results {
		if r.TestID == "TST-3001" {
			scores[r.StudentID] = r.Score
		}
	}
	if len(scores) != 2 {
		t.Fatalf("len(results) = %d; want 2", len(scores))
	}
	if scores["STU-1001"] != 48 {
		t.Errorf("STU-1001 score = %d; want 48", scores["STU-1001"])
	}
	if scores["STU-1002"] != 37 {
		t.Errorf("STU-1002 score = %d; want 37", scores["STU-1002"])
	}
}

func Test_examApi_queryResults(t *testing.T) {
	app := setup(t)

	teacher := seededUser(t, "sunita")
	student := seededUser(t, "aarav")

	t.Run("Staff sees all results and average", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/TST-3001/results", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var body struct {
			Results []exam.Result `json:"results"`
			Average float64       `json:"average"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(body.Results) != 2 {
			t.Errorf("len(results) = %d; want 2", len(body.Results))
		}
		// seeded: (42+37)/2/50 = 79%
		if math.Abs(body.Average-79) > 1e-9 {
			t.Errorf("average = %v; want 79", body.Average)
		}
	})

	t.Run("Student sees only their own score", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/TST-3001/results", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var body struct {
			Results []exam.Result `json:"results"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(body.Results) != 1 || body.Results[0].StudentID != "STU-1001" {
			t.Errorf("results = %+v; want only STU-1001", body.Results)
		}
	})

	t.Run("Unknown test", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams/nope/results", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_examApi_query(t *testing.T) {
	app := setup(t)

	admin := seededUser(t, seed.AdminUsername)
	kabir := seededUser(t, "kabir") // batch 9-Marathi, no tests

	t.Run("Student sees own batch only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams", getToken(t, kabir))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var views []exam.View
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(views) != 0 {
			t.Errorf("len(views) = %d; want 0", len(views))
		}
	})

	t.Run("Staff sees everything with derived status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/exams", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var views []exam.View
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(views) != 2 {
			t.Errorf("len(views) = %d; want 2", len(views))
		}
		for _, v := range views {
			if v.Status != exam.StatusUpcoming && v.Status != exam.StatusCompleted {
				t.Errorf("status = %q; want derived", v.Status)
			}
		}
	})
}

func Test_examApi_create(t *testing.T) {
	app := setup(t)

	teacher := seededUser(t, "sunita")

	body := marchallObj(t, exam.NewTest{
		TestName: "Term Exam", Subject: "History", Grade: "10", Medium: "English",
		Date: "2099-03-01", Time: "10:00", TotalMarks: 100,
		Status: "Completed", // submitted status is ignored
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/exams", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var view exam.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if view.Status != exam.StatusUpcoming {
		t.Errorf("status = %q; want %q (derived from date, not the submission)", view.Status, exam.StatusUpcoming)
	}
}

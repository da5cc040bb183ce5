package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/setulabs/shikshasetu/core/seed"
	"github.com/setulabs/shikshasetu/tests"
)

func Test_dashboardApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := seededUser(t, seed.AdminUsername)
	teacher := seededUser(t, "sunita")
	student := seededUser(t, "aarav")
	// unknown roles fall back to the staff view
	misfit := testutil.CreateUser(t, usrRepo, "Misfit", "misfit", "misfit@test.cd", []string{"librarian:"}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student variant", token: getToken(t, student), wantCode: http.StatusOK, extra: "student"},
		{name: "Teacher variant", token: getToken(t, teacher), wantCode: http.StatusOK, extra: "teacher"},
		{name: "Admin variant", token: getToken(t, admin), wantCode: http.StatusOK, extra: "admin"},
		{name: "Unrecognized role gets staff variant", token: getToken(t, misfit), wantCode: http.StatusOK, extra: "teacher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				return
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["variant"] != tt.extra {
				t.Errorf("variant = %v; want %v", body["variant"], tt.extra)
			}
		})
	}
}

func Test_dashboardApi_studentPayload(t *testing.T) {
	app := setup(t)

	student := seededUser(t, "aarav")

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}

	var body struct {
		Variant string `json:"variant"`
		Student struct {
			ID string `json:"id"`
		} `json:"student"`
		AttendanceRate float64 `json:"attendance_rate"`
		Fees           struct {
			Total int `json:"total"`
			Paid  int `json:"paid"`
			Due   int `json:"due"`
		} `json:"fees"`
		Tests []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"tests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	if body.Student.ID != "STU-1001" {
		t.Errorf("student.id = %v; want STU-1001", body.Student.ID)
	}
	// seeded: present on the only marked day
	if body.AttendanceRate != 100 {
		t.Errorf("attendance_rate = %v; want 100", body.AttendanceRate)
	}
	if body.Fees.Due != body.Fees.Total-body.Fees.Paid {
		t.Errorf("fees due = %d; want total-paid = %d", body.Fees.Due, body.Fees.Total-body.Fees.Paid)
	}
	// seeded batch 10-English has one completed and one upcoming test
	statuses := map[string]string{}
	for _, tst := range body.Tests {
		statuses[tst.ID] = tst.Status
	}
	if statuses["TST-3001"] != "Completed" {
		t.Errorf("TST-3001 status = %v; want Completed", statuses["TST-3001"])
	}
	if statuses["TST-3002"] != "Upcoming" {
		t.Errorf("TST-3002 status = %v; want Upcoming", statuses["TST-3002"])
	}
}

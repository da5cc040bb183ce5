package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/setulabs/shikshasetu/core/announce"
)

func Test_announcementApi(t *testing.T) {
	app := setup(t)

	teacher := seededUser(t, "sunita")
	student := seededUser(t, "aarav")

	t.Run("Staff required to broadcast", func(t *testing.T) {
		body := marchallObj(t, announce.NewAnnouncement{Title: "Nope", Message: "nope"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Broadcast lists first", func(t *testing.T) {
		body := marchallObj(t, announce.NewAnnouncement{Title: "Sports day", Message: "Friday on the main ground."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusCreated)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/announcements", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var list []announce.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("len(list) = %d; want 2", len(list))
		}
		if list[0].Title != "Sports day" {
			t.Errorf("list[0].Title = %q; want the latest broadcast first", list[0].Title)
		}
		if list[1].ID != "ANN-6001" {
			t.Errorf("list[1].ID = %q; seeded announcement must survive", list[1].ID)
		}
	})

	t.Run("Empty fields rejected", func(t *testing.T) {
		body := marchallObj(t, announce.NewAnnouncement{Title: "  ", Message: ""})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}

package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/setulabs/shikshasetu/apps/api/echo"
	"github.com/setulabs/shikshasetu/core/seed"
	"github.com/setulabs/shikshasetu/core/user"
	"github.com/setulabs/shikshasetu/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", []string{user.RoleStudent}, false)

	loginBody := func(uname, pwd string) []byte {
		return marchallObj(t, map[string]string{"username": uname, "password": pwd})
	}

	tests := []httpTest{
		{
			name: "Valid credentials", body: loginBody(seed.AdminUsername, seed.AdminPassword),
			wantCode: http.StatusOK,
		},
		{
			name: "Login with email", body: loginBody("admin@shikshasetu.example", seed.AdminPassword),
			wantCode: http.StatusOK,
		},
		{
			name: "Wrong password", body: loginBody(seed.AdminUsername, "nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Unknown user", body: loginBody("ghost", "nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Inactive user", body: loginBody("ndog", "Str0ngPwd!"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Missing fields", body: loginBody("", ""),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var res struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("decoding LoginResponse: %v", err)
				}
				if res.Token == "" {
					t.Error("expected a token")
				}
			}
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	student := seededUser(t, "aarav")

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Own profile without password hash", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["username"] != "aarav" {
			t.Errorf("username = %v; want aarav", body["username"])
		}
		if body["student_id"] != "STU-1001" {
			t.Errorf("student_id = %v; want STU-1001", body["student_id"])
		}
		if _, ok := body["password_hash"]; ok {
			t.Error("password_hash leaked in response")
		}
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := seededUser(t, seed.AdminUsername)
	student := seededUser(t, "aarav")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var users []user.Public
				if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
					t.Fatalf("decoding users: %v", err)
				}
				// admin + 3 students + 2 teachers
				if len(users) != 6 {
					t.Errorf("len(users) = %d; want 6", len(users))
				}
			}
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	student := seededUser(t, "aarav")

	now := time.Now()
	unrefreshableClaims := echoapi.GetUserClaims(student)
	unrefreshableClaims.OrigIssuedAt = now.Add(-8 * time.Hour).Unix() // older than threshold
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

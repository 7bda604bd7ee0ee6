package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
	testutil "github.com/tmalu/clubhub/tests"
)

func Test_seasonApi_active(t *testing.T) {
	app, repos := setup(t)

	member := testutil.CreateUser(t, repos.usr, "Jonah", "Kasongo", "jonah@test.cd", []string{user.RoleMember}, true)
	admin := testutil.CreateUser(t, repos.usr, "Admin", "Kal", "admin@test.cd", []string{user.RoleAdmin}, true)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/seasons/active")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("No active season", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "no active season"})}
		req, rec := newAuthRequest(http.MethodGet, "/v1/seasons/active", getToken(t, member))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Active season returned", func(t *testing.T) {
		s := testutil.StartSeason(t, repos.season, admin.ID)

		req, rec := newAuthRequest(http.MethodGet, "/v1/seasons/active", getToken(t, member))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, s)}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_seasonApi_start(t *testing.T) {
	app, repos := setup(t)

	member := testutil.CreateUser(t, repos.usr, "Jonah", "Kasongo", "jonah@test.cd", []string{user.RoleMember}, true)
	teacher := testutil.CreateUser(t, repos.usr, "Tina", "Mwamba", "tina@test.cd", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, repos.usr, "Admin", "Kal", "admin@test.cd", []string{user.RoleAdmin}, true)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/seasons/start")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Admin required", func(t *testing.T) {
		for _, usr := range []user.User{member, teacher} {
			tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
			req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/start", getToken(t, usr))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		}
	})

	t.Run("Season started", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/start", getToken(t, admin))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var s season.Season
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if s.ID == "" {
			t.Error("failed! empty season ID")
		}
		if !s.IsActive {
			t.Error("failed! season not active")
		}
		if s.StartedByID != admin.ID {
			t.Errorf("failed! StartedByID = %q; want %q", s.StartedByID, admin.ID)
		}
		if s.StartDate != core.Today() {
			t.Errorf("failed! StartDate = %v; want %v", s.StartDate, core.Today())
		}
	})

	t.Run("Seasons never stack", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "a season is already active"})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/start", getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_seasonApi_finish(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "Kal", "admin@test.cd", []string{user.RoleAdmin}, true)
	member := testutil.CreateUser(t, repos.usr, "Jonah", "Kasongo", "jonah@test.cd", []string{user.RoleMember}, true)

	t.Run("No active season", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "no active season"})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/finish", getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Season finished and attendance wiped", func(t *testing.T) {
		testutil.StartSeason(t, repos.season, admin.ID)

		// record a fact that must be wiped with the season
		date := core.NewDate(2021, 4, 5)
		if _, err := repos.att.SaveFacts(context.Background(), []attendance.Fact{
			{Date: date, UserID: member.ID, Attended: true},
		}); err != nil {
			t.Fatalf("SaveFacts() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/finish", getToken(t, admin))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var s season.Season
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if s.IsActive {
			t.Error("failed! season still active")
		}
		if !s.FinishDate.Valid {
			t.Error("failed! empty FinishDate")
		}
		if s.FinishedByID.String != admin.ID {
			t.Errorf("failed! FinishedByID = %q; want %q", s.FinishedByID.String, admin.ID)
		}

		if _, err := repos.att.FindFact(context.Background(), member.ID, date); err != attendance.ErrFactNotFound {
			t.Errorf("FindFact() err = %v; want %v", err, attendance.ErrFactNotFound)
		}
	})

	t.Run("Finished season stays finished", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "no active season"})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/seasons/finish", getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

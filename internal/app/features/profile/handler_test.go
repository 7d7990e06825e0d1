package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h        *Handler
	accounts *account.Service
	events   *audit.Store
	sm       *auth.SessionManager
	user     models.User
	caller   testutil.TestUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	accounts := account.NewService(db, mailer.NewLogSender(logger), nil, account.Config{}, logger)
	sm := testutil.NewSessionManager(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateStudent(ctx, "eleve@example.ma")
	events := audit.New(db)

	return &env{
		h:        NewHandler(accounts, events, sm, uierrors.NewErrorLogger(logger), logger),
		accounts: accounts,
		events:   events,
		sm:       sm,
		user:     u,
		caller:   testutil.TestUser{ID: u.ID.Hex(), Email: u.Email, Role: models.RoleStudent},
	}
}

func (e *env) post(target string, form url.Values, fn http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fn(rec, testutil.WithUser(testutil.NewFormRequest(target, form), e.caller))
	return rec
}

func assertFlash(t *testing.T, e *env, rec *httptest.ResponseRecorder, kind, msg string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile" {
		t.Errorf("Location = %q", loc)
	}
	if !testutil.HasFlash(e.sm, rec, kind, msg) {
		t.Errorf("missing %s flash %q; got %+v", kind, msg, testutil.Flashes(e.sm, rec))
	}
}

func TestBuildProfile(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	cur := &account.Current{
		User: models.User{
			Email:        "a@b.ma",
			PasswordHash: "x",
			AuthMethod:   models.AuthMethodPassword,
			Metadata:     models.UserMetadata{FirstName: "Meta", LastName: "Data"},
			CreatedAt:    now,
		},
		Profile: &models.UserProfile{FirstName: "Salma", LastName: "Idrissi"},
	}
	data := buildProfile(viewdata.BaseVM{}, cur)
	if data.FirstName != "Salma" || data.LastName != "Idrissi" {
		t.Errorf("names = %q %q", data.FirstName, data.LastName)
	}
	if !data.ShowPasswordSection {
		t.Error("password section should show for password accounts")
	}
	if data.MemberSince != "01/09/2024" {
		t.Errorf("MemberSince = %q", data.MemberSince)
	}

	cur.Profile = nil
	cur.User.PasswordHash = ""
	cur.User.AuthMethod = models.AuthMethodGoogle
	data = buildProfile(viewdata.BaseVM{}, cur)
	if data.FirstName != "Meta" {
		t.Errorf("expected metadata fallback, got %q", data.FirstName)
	}
	if data.ShowPasswordSection {
		t.Error("password section should be hidden for Google accounts")
	}
	if data.AuthMethod != "Google" {
		t.Errorf("AuthMethod = %q", data.AuthMethod)
	}
}

func TestLoadActivity(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := primitive.NewObjectID()
	base := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	for i, ev := range []audit.Event{
		{EventType: audit.EventLoginSuccess, UserID: &e.user.ID, IP: "10.0.0.1", Success: true},
		{EventType: audit.EventLoginFailedWrongPassword, UserID: &e.user.ID, IP: "10.0.0.2"},
		{EventType: "custom_event", UserID: &e.user.ID, Success: true},
		{EventType: audit.EventLogout, UserID: &other, Success: true},
	} {
		ev.Category = audit.CategoryAuth
		ev.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := e.events.Log(ctx, ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	items := e.h.loadActivity(ctx, e.user.ID)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3 (other users excluded)", len(items))
	}
	if items[0].Label != "custom_event" {
		t.Errorf("unknown type label = %q, want raw type", items[0].Label)
	}
	if items[1].Label != "Connexion refusée (mot de passe)" || items[1].Success {
		t.Errorf("second item = %+v", items[1])
	}
	if items[2].Label != "Connexion" || items[2].IP != "10.0.0.1" || items[2].When != "02/03/2026 08:30" {
		t.Errorf("oldest item = %+v", items[2])
	}
}

type failingActivity struct{}

func (failingActivity) GetByUser(context.Context, primitive.ObjectID, int64) ([]audit.Event, error) {
	return nil, errors.New("journal indisponible")
}

func TestLoadActivity_Unavailable(t *testing.T) {
	e := newEnv(t)
	e.h.Activity = failingActivity{}
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if items := e.h.loadActivity(ctx, e.user.ID); items != nil {
		t.Errorf("items = %+v, want nil", items)
	}
}

func TestHandleUpdate(t *testing.T) {
	e := newEnv(t)
	rec := e.post("/profile", url.Values{"first_name": {" Salma "}, "last_name": {"Idrissi"}}, e.h.HandleUpdate)
	assertFlash(t, e, rec, auth.FlashSuccess, MsgProfileSaved)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	cur, err := e.accounts.CurrentUser(ctx, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Profile == nil || cur.Profile.FirstName != "Salma" || cur.Profile.LastName != "Idrissi" {
		t.Errorf("profile = %+v", cur.Profile)
	}
	if cur.DisplayName() != "Salma Idrissi" {
		t.Errorf("DisplayName = %q", cur.DisplayName())
	}
}

func TestHandleUpdate_TooLong(t *testing.T) {
	e := newEnv(t)
	rec := e.post("/profile", url.Values{"first_name": {strings.Repeat("a", 101)}}, e.h.HandleUpdate)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	flashes := testutil.Flashes(e.sm, rec)
	if len(flashes) != 1 || flashes[0].Kind != auth.FlashError {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestHandleChangePassword(t *testing.T) {
	e := newEnv(t)
	rec := e.post("/profile/password", url.Values{
		"current_password": {testutil.DefaultPassword},
		"new_password":     {"Pythagore-1987"},
		"confirm_password": {"Pythagore-1987"},
	}, e.h.HandleChangePassword)
	assertFlash(t, e, rec, auth.FlashSuccess, MsgPasswordChanged)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := e.accounts.SignIn(ctx, e.user.Email, "Pythagore-1987", account.RequestMeta{}); err != nil {
		t.Errorf("sign in with new password: %v", err)
	}
	if _, err := e.accounts.SignIn(ctx, e.user.Email, testutil.DefaultPassword, account.RequestMeta{}); err == nil {
		t.Error("old password still accepted")
	}
}

func TestHandleChangePassword_Rejected(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		msg  string
	}{
		{"mismatch", url.Values{
			"current_password": {testutil.DefaultPassword},
			"new_password":     {"Pythagore-1987"},
			"confirm_password": {"Thales-1987"},
		}, MsgPasswordsDiffer},
		{"wrong current", url.Values{
			"current_password": {"not-my-password"},
			"new_password":     {"Pythagore-1987"},
			"confirm_password": {"Pythagore-1987"},
		}, account.MsgWrongPassword},
		{"too short", url.Values{
			"current_password": {testutil.DefaultPassword},
			"new_password":     {"abc"},
			"confirm_password": {"abc"},
		}, inputval.MsgPasswordShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			rec := e.post("/profile/password", tc.form, e.h.HandleChangePassword)
			assertFlash(t, e, rec, auth.FlashError, tc.msg)
		})
	}
}

func TestHandleUpdate_StaleSession(t *testing.T) {
	e := newEnv(t)
	e.caller.ID = primitive.NewObjectID().Hex()
	rec := e.post("/profile", url.Values{"first_name": {"X"}}, e.h.HandleUpdate)
	assertFlash(t, e, rec, auth.FlashError, account.MsgUserNotFound)
}

func TestRoutes_RequireSignIn(t *testing.T) {
	e := newEnv(t)
	rec := httptest.NewRecorder()
	Routes(e.h, e.sm).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

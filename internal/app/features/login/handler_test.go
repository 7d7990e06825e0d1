package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/features/login"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db       *mongo.Database
	h        *login.Handler
	sm       *auth.SessionManager
	mail     *testutil.MailRecorder
	fixtures *testutil.Fixtures
}

func newEnv(t *testing.T, requireConfirm bool) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mail := testutil.NewMailRecorder()
	accounts := account.NewService(db, mail, account.NewEvents(), account.Config{
		RequireEmailConfirmation: requireConfirm,
		BaseURL:                  "http://localhost:8080",
	}, logger)
	sm := testutil.NewSessionManager(t)

	return &env{
		db:       db,
		h:        login.NewHandler(accounts, sm, uierrors.NewErrorLogger(logger), false, requireConfirm, logger),
		sm:       sm,
		mail:     mail,
		fixtures: testutil.NewFixtures(t, db),
	}
}

func TestHandleLoginPost_Success(t *testing.T) {
	e := newEnv(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateStudent(ctx, "eleve@example.ma")

	req := testutil.NewFormRequest("/login", url.Values{
		"email":    {"eleve@example.ma"},
		"password": {testutil.DefaultPassword},
	})
	rec := httptest.NewRecorder()
	e.h.HandleLoginPost(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}

	next := testutil.CarryCookies(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec)
	if id, ok := e.sm.SessionUserID(next); !ok || id == "" {
		t.Error("session does not carry the signed-in user")
	}
	if !testutil.HasFlash(e.sm, rec, auth.FlashSuccess, account.MsgSignedIn) {
		t.Errorf("missing %q flash", account.MsgSignedIn)
	}
}

func TestHandleLoginPost_WithReturnURL(t *testing.T) {
	e := newEnv(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateStudent(ctx, "retour@example.ma")

	req := testutil.NewFormRequest("/login", url.Values{
		"email":    {"retour@example.ma"},
		"password": {testutil.DefaultPassword},
		"return":   {"/dashboard/chapters/abc"},
	})
	rec := httptest.NewRecorder()
	e.h.HandleLoginPost(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/dashboard/chapters/abc" {
		t.Errorf("Location = %q", loc)
	}
}

func TestServeLogin_SignedInRedirects(t *testing.T) {
	e := newEnv(t, false)
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/login", testutil.StudentUser())
	rec := httptest.NewRecorder()
	e.h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("got %d %q, want 303 /dashboard", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleSignupPost_SignsInWithoutConfirmation(t *testing.T) {
	e := newEnv(t, false)

	req := testutil.NewFormRequest("/signup", url.Values{
		"email":            {"Nouveau@Example.ma"},
		"password":         {"tangente7"},
		"confirm_password": {"tangente7"},
		"first_name":       {"Yassine"},
		"last_name":        {"Alaoui"},
	})
	rec := httptest.NewRecorder()
	e.h.HandleSignupPost(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d %q, want 303 /dashboard", rec.Code, rec.Header().Get("Location"))
	}
	if !testutil.HasFlash(e.sm, rec, auth.FlashSuccess, account.MsgSignedUpActive) {
		t.Errorf("missing %q flash", account.MsgSignedUpActive)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := userstore.New(e.db).GetByEmail(ctx, "nouveau@example.ma")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.Role != "student" || !u.IsConfirmed() {
		t.Errorf("user = role %q confirmed %v", u.Role, u.IsConfirmed())
	}
}

func TestHandleSignupPost_ConfirmationRequired(t *testing.T) {
	e := newEnv(t, true)

	req := testutil.NewFormRequest("/signup", url.Values{
		"email":    {"attente@example.ma"},
		"password": {"tangente7"},
	})
	rec := httptest.NewRecorder()
	e.h.HandleSignupPost(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q, want 303 /login", rec.Code, rec.Header().Get("Location"))
	}
	if !testutil.HasFlash(e.sm, rec, auth.FlashSuccess, account.MsgSignedUp) {
		t.Errorf("missing %q flash", account.MsgSignedUp)
	}
	if n := len(e.mail.Sent()); n != 1 {
		t.Errorf("sent %d emails, want 1", n)
	}

	next := testutil.CarryCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if _, ok := e.sm.SessionUserID(next); ok {
		t.Error("unconfirmed sign-up must not start a session")
	}
}

func TestHandleConfirm_InvalidToken(t *testing.T) {
	e := newEnv(t, true)

	rec := httptest.NewRecorder()
	e.h.HandleConfirm(rec, httptest.NewRequest(http.MethodGet, "/auth/confirm?token=nope", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q, want 303 /login", rec.Code, rec.Header().Get("Location"))
	}
	if !testutil.HasFlash(e.sm, rec, auth.FlashError, account.MsgInvalidToken) {
		t.Errorf("missing %q flash", account.MsgInvalidToken)
	}
}

func TestHandleResend(t *testing.T) {
	e := newEnv(t, true)

	rec := httptest.NewRecorder()
	e.h.HandleResend(rec, testutil.NewFormRequest("/auth/resend", url.Values{"email": {"inconnu@example.ma"}}))
	if !testutil.HasFlash(e.sm, rec, auth.FlashSuccess, login.MsgResent) {
		t.Errorf("missing %q flash", login.MsgResent)
	}
	if n := len(e.mail.Sent()); n != 0 {
		t.Errorf("sent %d emails for unknown address", n)
	}

	rec = httptest.NewRecorder()
	e.h.HandleResend(rec, testutil.NewFormRequest("/auth/resend", url.Values{}))
	if !testutil.HasFlash(e.sm, rec, auth.FlashError, login.MsgEmailRequired) {
		t.Errorf("missing %q flash", login.MsgEmailRequired)
	}
}

func TestRoutes(t *testing.T) {
	e := newEnv(t, false)
	if login.Routes(e.h) == nil || login.SignupRoutes(e.h) == nil {
		t.Fatal("routes returned nil")
	}
}

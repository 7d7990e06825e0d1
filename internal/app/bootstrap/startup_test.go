package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	homefeature "github.com/dalemusser/mathmastery/internal/app/features/home"
	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestStartup_CreatesAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := Startup(ctx, &config.CoreConfig{Env: "dev"}, AppConfig{AdminEmail: "Prof@Test.com"}, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "prof@test.com"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created admin: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %q", user.Role)
	}
	if !user.IsConfirmed() {
		t.Error("expected created admin to be confirmed")
	}
}

func TestStartup_PromotesExistingStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	existing := models.User{
		ID:               primitive.NewObjectID(),
		Email:            "eleve@test.com",
		Role:             models.RoleStudent,
		AuthMethod:       models.AuthMethodPassword,
		EmailConfirmedAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, existing); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}
	if err := Startup(ctx, &config.CoreConfig{Env: "dev"}, AppConfig{AdminEmail: "eleve@test.com"}, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %q", user.Role)
	}
	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestSeedChapters_EmptyDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := seedChapters(ctx, db, testLogger()); err != nil {
		t.Fatalf("seedChapters: %v", err)
	}
	// A second run must not duplicate anything.
	if err := seedChapters(ctx, db, testLogger()); err != nil {
		t.Fatalf("seedChapters (again): %v", err)
	}

	got, err := chapterstore.New(db).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(homefeature.Chapters) {
		t.Fatalf("expected %d chapters, got %d", len(homefeature.Chapters), len(got))
	}
	for i, ch := range got {
		if ch.OrderIndex != i {
			t.Errorf("chapter %d: order_index = %d", i, ch.OrderIndex)
		}
		if ch.Title != homefeature.Chapters[i].Title {
			t.Errorf("chapter %d: title = %q, want %q", i, ch.Title, homefeature.Chapters[i].Title)
		}
	}
}

func TestSeedChapters_KeepsExistingContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := chapterstore.New(db)
	if _, err := store.Create(ctx, models.Chapter{Title: "Trigonométrie"}); err != nil {
		t.Fatal(err)
	}
	if err := seedChapters(ctx, db, testLogger()); err != nil {
		t.Fatalf("seedChapters: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 chapter, got %d", n)
	}
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "math_mastery",
		SessionKey:    strings.Repeat("k", 40),
		JWTSecret:     strings.Repeat("j", 40),
		CSRFKey:       deriveKey(strings.Repeat("k", 40), "csrf"),
		AuditLogAuth:  "all",
		AuditLogAdmin: "db",
		MailProvider:  "log",

		AuthLoadTimeout: 5 * time.Second,
		DBTimeoutPing:   2 * time.Second,
		DBTimeoutShort:  5 * time.Second,
		DBTimeoutMedium: 10 * time.Second,
		DBTimeoutLong:   30 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(dev, validConfig(), testLogger()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		core *config.CoreConfig
		mod  func(*AppConfig)
	}{
		{"no database", dev, func(c *AppConfig) { c.MongoDatabase = "" }},
		{"short session key", dev, func(c *AppConfig) { c.SessionKey = "short" }},
		{"dev key in prod", &config.CoreConfig{Env: "prod"}, func(c *AppConfig) { c.SessionKey = devSessionKey }},
		{"short jwt secret", dev, func(c *AppConfig) { c.JWTSecret = "short" }},
		{"short csrf key", dev, func(c *AppConfig) { c.CSRFKey = "short-csrf-key" }},
		{"zero auth load timeout", dev, func(c *AppConfig) { c.AuthLoadTimeout = 0 }},
		{"negative db timeout", dev, func(c *AppConfig) { c.DBTimeoutLong = -time.Second }},
		{"bad audit destination", dev, func(c *AppConfig) { c.AuditLogAdmin = "everywhere" }},
		{"google id without secret", dev, func(c *AppConfig) { c.GoogleClientID = "id" }},
		{"sendgrid without key", dev, func(c *AppConfig) { c.MailProvider = "sendgrid" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mod(&cfg)
			if err := ValidateConfig(tc.core, cfg, testLogger()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example.com, ,https://b.example.com ")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestDeriveKey(t *testing.T) {
	a := deriveKey(devSessionKey, "csrf")
	b := deriveKey(devSessionKey, "api-token")
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("unexpected key lengths %d, %d", len(a), len(b))
	}
	if a == b {
		t.Error("keys for different purposes must differ")
	}
	if a != deriveKey(devSessionKey, "csrf") {
		t.Error("deriveKey must be deterministic")
	}
}

func TestCSRFMiddleware_AcceptsValidatedKey(t *testing.T) {
	cfg := validConfig()
	cfg.CSRFKey = strings.Repeat("c", 32)
	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}

	h := csrfMiddleware(cfg.CSRFKey, false, "", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("GET through csrf middleware = %d, want 204", rec.Code)
	}
}

func TestConfigureTimeouts(t *testing.T) {
	prev := timeouts.Config{Ping: timeouts.Ping(), Short: timeouts.Short(), Medium: timeouts.Medium(), Long: timeouts.Long()}
	t.Cleanup(func() { timeouts.Configure(prev) })

	cfg := validConfig()
	cfg.DBTimeoutPing = time.Second
	cfg.DBTimeoutShort = 3 * time.Second
	cfg.DBTimeoutMedium = 7 * time.Second
	cfg.DBTimeoutLong = time.Minute
	configureTimeouts(cfg)

	if timeouts.Ping() != time.Second || timeouts.Short() != 3*time.Second ||
		timeouts.Medium() != 7*time.Second || timeouts.Long() != time.Minute {
		t.Errorf("timeouts = %v/%v/%v/%v", timeouts.Ping(), timeouts.Short(), timeouts.Medium(), timeouts.Long())
	}
}

type blockingFetcher struct{}

func (blockingFetcher) FetchUser(ctx context.Context, _ string) *auth.SessionUser {
	<-ctx.Done()
	return nil
}

func TestNewSessionManager_AppliesLoadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.SessionName = "mm-test"
	cfg.SessionMaxAge = time.Hour
	cfg.AuthLoadTimeout = 20 * time.Millisecond

	sm, err := newSessionManager(cfg, false, testLogger())
	if err != nil {
		t.Fatalf("newSessionManager: %v", err)
	}
	sm.SetUserFetcher(blockingFetcher{})

	login := httptest.NewRecorder()
	if err := sm.SignIn(login, httptest.NewRequest(http.MethodPost, "/login", nil), primitive.NewObjectID().Hex()); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}

	done := make(chan bool, 1)
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := auth.CurrentUser(r)
		done <- signedIn
	}))
	go h.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case signedIn := <-done:
		if signedIn {
			t.Error("request should continue anonymously after the load timeout")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("configured auth_load_timeout was not applied")
	}
}

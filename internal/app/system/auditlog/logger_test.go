package auditlog_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.AccountEvent(ctx, account.Event{Kind: account.KindSignedIn})
	logger.ContentChanged(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), auditlog.ResourceChapter, auditlog.ActionCreated, "x")
}

func TestLogger_ConfigDestinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantLog int
	}{
		{auditlog.Off, 0, 0},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.All, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zap.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			userID := primitive.NewObjectID()
			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: tt.setting})
			logger.Log(ctx, audit.Event{
				Category:  audit.CategoryAuth,
				EventType: audit.EventLoginSuccess,
				UserID:    &userID,
				Success:   true,
			})

			events, err := store.GetByUser(ctx, userID, 10)
			if err != nil {
				t.Fatalf("GetByUser failed: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(events), tt.wantDB)
			}
			if n := logs.FilterMessage("audit event").Len(); n != tt.wantLog {
				t.Errorf("logged %d events, want %d", n, tt.wantLog)
			}
		})
	}
}

func TestLogger_CategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB})
	userID := primitive.NewObjectID()

	logger.AccountEvent(ctx, account.Event{Kind: account.KindSignedIn, UserID: userID})
	logger.AccountEvent(ctx, account.Event{Kind: account.KindRoleChanged, UserID: userID, ActorID: primitive.NewObjectID(), Role: "admin"})

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventRoleChanged {
		t.Fatalf("expected only the role change, got %+v", events)
	}
	if events[0].Details["new_role"] != "admin" || events[0].ActorID == nil {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestLogger_AccountEvent_Types(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.DB})

	tests := []struct {
		event   account.Event
		want    string
		success bool
	}{
		{account.Event{Kind: account.KindSignedUp}, audit.EventSignUp, true},
		{account.Event{Kind: account.KindSignedIn}, audit.EventLoginSuccess, true},
		{account.Event{Kind: account.KindSignedOut}, audit.EventLogout, true},
		{account.Event{Kind: account.KindEmailConfirmed}, audit.EventEmailConfirmed, true},
		{account.Event{Kind: account.KindSignInFailed, Reason: account.ReasonWrongPassword}, audit.EventLoginFailedWrongPassword, false},
		{account.Event{Kind: account.KindSignInFailed, Reason: account.ReasonUnconfirmed}, audit.EventLoginFailedUnconfirmed, false},
		{account.Event{Kind: account.KindSignInFailed, Reason: account.ReasonRateLimit, Method: "ip"}, audit.EventLoginFailedRateLimit, false},
	}
	for _, tt := range tests {
		uid := primitive.NewObjectID()
		tt.event.UserID = uid
		tt.event.Meta = account.RequestMeta{IP: "10.1.1.1", UserAgent: "ua"}
		logger.AccountEvent(ctx, tt.event)

		events, err := store.GetByUser(ctx, uid, 10)
		if err != nil {
			t.Fatalf("GetByUser: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("%s: stored %d events", tt.want, len(events))
		}
		got := events[0]
		if got.EventType != tt.want || got.Success != tt.success || got.IP != "10.1.1.1" {
			t.Errorf("%s: got %+v", tt.want, got)
		}
	}
}

func TestLogger_SubscribesToEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.DB})

	ev := account.NewEvents()
	ev.Subscribe(logger.AccountEvent)

	uid := primitive.NewObjectID()
	ev.Publish(context.Background(), account.Event{Kind: account.KindSignedOut, UserID: uid})

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := store.GetByUser(ctx, uid, 10)
	if err != nil || len(events) != 1 || events[0].EventType != audit.EventLogout {
		t.Fatalf("expected logout event, got %+v (%v)", events, err)
	}
}

func TestLogger_ContentChanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: auditlog.DB})

	actor := primitive.NewObjectID()
	chapter := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/admin/chapters", nil)
	req.Header.Set("X-Real-IP", "192.0.2.7")

	logger.ContentChanged(ctx, req, actor, chapter, auditlog.ResourceChapter, auditlog.ActionCreated, "Trigonométrie")
	logger.ContentChanged(ctx, req, actor, chapter, "unknown", auditlog.ActionCreated, "ignored")

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventChapterCreated || e.IP != "192.0.2.7" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Details["chapter_id"] != chapter.Hex() || e.Details["title"] != "Trigonométrie" {
		t.Errorf("details = %v", e.Details)
	}
	if e.ActorID == nil || *e.ActorID != actor {
		t.Errorf("actor = %v", e.ActorID)
	}
}

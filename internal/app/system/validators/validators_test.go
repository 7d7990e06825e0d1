package validators_test

import (
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/system/validators"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range []string{
		"users", "user_profiles", "chapters", "lessons", "exercises",
		"email_confirmations", "oauth_states", "audit_events",
	} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"email": "a@b.ma", "role": "student", "auth_method": "password"}, false},
		{"user missing email", "users", bson.M{"role": "student", "auth_method": "password"}, true},
		{"user bad role", "users", bson.M{"email": "a@b.ma", "role": "moderator", "auth_method": "password"}, true},
		{"user bad auth method", "users", bson.M{"email": "a@b.ma", "role": "student", "auth_method": "saml"}, true},
		{"valid chapter", "chapters", bson.M{"title": "Analyse", "order_index": 0}, false},
		{"chapter blank title", "chapters", bson.M{"title": "   ", "order_index": 0}, true},
		{"chapter negative order", "chapters", bson.M{"title": "A", "order_index": -1}, true},
		{"valid lesson", "lessons", bson.M{"title": "L", "chapter_id": primitive.NewObjectID(), "order_index": 0}, false},
		{"lesson without chapter", "lessons", bson.M{"title": "L", "order_index": 0}, true},
		{"valid exercise", "exercises", bson.M{"title": "E", "problem": "p", "lesson_id": primitive.NewObjectID(), "difficulty": "easy", "order_index": 0}, false},
		{"exercise bad difficulty", "exercises", bson.M{"title": "E", "problem": "p", "lesson_id": primitive.NewObjectID(), "difficulty": "extreme", "order_index": 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

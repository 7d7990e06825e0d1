package indexes_test

import (
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/system/indexes"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":               {"uniq_users_email", "idx_users_google_id", "idx_users_created_at"},
		"user_profiles":       {"uniq_profiles_user_id"},
		"chapters":            {"idx_chapters_order"},
		"lessons":             {"idx_lessons_chapter_order"},
		"exercises":           {"idx_exercises_lesson_order"},
		"email_confirmations": {"uniq_confirmation_token", "idx_confirmation_ttl"},
		"oauth_states":        {"idx_oauth_state", "idx_oauth_ttl"},
	}
	for coll, names := range expected {
		got := indexNames(t, db, coll)
		for _, name := range names {
			if !got[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

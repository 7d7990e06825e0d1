package confirmations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/store/confirmations"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := confirmations.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	token, err := store.Create(ctx, uid)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != confirmations.TokenLength {
		t.Errorf("token length: got %d, want %d", len(token), confirmations.TokenLength)
	}

	got, err := store.Consume(ctx, token)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != uid {
		t.Errorf("user id: got %s, want %s", got.Hex(), uid.Hex())
	}

	if _, err := store.Consume(ctx, token); !errors.Is(err, confirmations.ErrNotFound) {
		t.Errorf("second Consume: got %v, want ErrNotFound", err)
	}
}

func TestStore_Create_ReplacesOldToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := confirmations.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	old, _ := store.Create(ctx, uid)
	fresh, _ := store.Create(ctx, uid)

	if _, err := store.Consume(ctx, old); !errors.Is(err, confirmations.ErrNotFound) {
		t.Errorf("old token: got %v, want ErrNotFound", err)
	}
	if _, err := store.Consume(ctx, fresh); err != nil {
		t.Errorf("fresh token: %v", err)
	}
}

func TestStore_Consume_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := confirmations.New(db, time.Millisecond)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	token, _ := store.Create(ctx, primitive.NewObjectID())
	time.Sleep(10 * time.Millisecond)

	if _, err := store.Consume(ctx, token); !errors.Is(err, confirmations.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

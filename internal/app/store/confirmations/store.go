// internal/app/store/confirmations/store.go
package confirmations

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// TokenLength is the nanoid length of a confirmation token.
	TokenLength = 32
	// DefaultExpiry is how long a confirmation link stays valid.
	DefaultExpiry = 48 * time.Hour
)

// ErrNotFound is returned when a token is unknown, used or expired.
var ErrNotFound = errors.New("confirmation not found or expired")

// Confirmation is a pending email confirmation link.
type Confirmation struct {
	Token     string             `bson:"token"`
	UserID    primitive.ObjectID `bson:"user_id"`
	ExpiresAt time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages email confirmation tokens.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. If expiry is 0 or negative, DefaultExpiry is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("email_confirmations"), expiry: expiry}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_confirmation_token"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_confirmation_ttl"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_confirmation_user"),
		},
	})
	return err
}

// Create issues a new token for userID, replacing any earlier ones.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	token, err := gonanoid.New(TokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", fmt.Errorf("clear old tokens: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.c.InsertOne(ctx, Confirmation{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume deletes a valid token (one-time use) and returns its user id.
func (s *Store) Consume(ctx context.Context, token string) (primitive.ObjectID, error) {
	if token == "" {
		return primitive.NilObjectID, ErrNotFound
	}
	var c Confirmation
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return c.UserID, nil
}

// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/normalize"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrExists is returned when the user already has a profile.
var ErrExists = errors.New("profile already exists for user")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_profiles")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_profiles_user_id"),
	})
	return err
}

// GetByUserID returns mongo.ErrNoDocuments when the user has no profile.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a profile. The role is normalized the same way as on users.
func (s *Store) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.FirstName = normalize.Name(p.FirstName)
	p.LastName = normalize.Name(p.LastName)
	p.Role = normalize.Role(p.Role)
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.UserProfile{}, ErrExists
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

// SetRole rewrites the mirrored role. A missing profile is not an error.
func (s *Store) SetRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"role": normalize.Role(role), "updated_at": time.Now().UTC()}},
	)
	return err
}

// SetNames updates the names on a user's profile, creating the profile when
// it does not exist yet.
func (s *Store) SetNames(ctx context.Context, userID primitive.ObjectID, firstName, lastName, role string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set": bson.M{"first_name": firstName, "last_name": lastName, "updated_at": now},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"role":       normalize.Role(role),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

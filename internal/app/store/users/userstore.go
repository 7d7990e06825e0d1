package userstore

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

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errEmailRequired  = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("idx_users_google_id").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_created_at"),
		},
	})
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID looks up a user by Google subject id.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Email is lower-cased and role normalized
// (students by default).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errEmailRequired
	}
	u.Role = normalize.Role(u.Role)
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthMethodPassword
	}
	u.Metadata.FirstName = normalize.Name(u.Metadata.FirstName)
	u.Metadata.LastName = normalize.Name(u.Metadata.LastName)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetRoleByEmail sets the role of the user with the given email and returns
// the updated user. Returns mongo.ErrNoDocuments when no user matches.
func (s *Store) SetRoleByEmail(ctx context.Context, email, role string) (*models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": normalize.Role(role), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// MarkConfirmed stamps email_confirmed_at if it is not already set.
func (s *Store) MarkConfirmed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "email_confirmed_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"email_confirmed_at": at.UTC(), "updated_at": time.Now().UTC()}},
	)
	return err
}

// TouchSignIn records a successful sign-in.
func (s *Store) TouchSignIn(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_sign_in_at": at.UTC()}})
	return err
}

// LinkGoogle attaches a Google subject id to an existing account and marks
// its email confirmed (Google has verified it).
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_id":  googleID,
		"updated_at": now,
	}})
	if err != nil {
		return err
	}
	return s.MarkConfirmed(ctx, id, now)
}

// SetPasswordHash replaces the stored password hash. Returns
// mongo.ErrNoDocuments when the user does not exist.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Count returns the number of users matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.CountDocuments(ctx, filter)
}

// ListManaged returns every account joined with its profile, newest first.
func (s *Store) ListManaged(ctx context.Context) ([]models.ManagedUser, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "user_profiles",
			"localField":   "_id",
			"foreignField": "user_id",
			"as":           "profile",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$profile", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":                1,
			"email":              1,
			"role":               1,
			"created_at":         1,
			"email_confirmed_at": 1,
			"last_sign_in_at":    1,
			"first_name":         "$metadata.first_name",
			"last_name":          "$metadata.last_name",
			"profile_first_name": "$profile.first_name",
			"profile_last_name":  "$profile.last_name",
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ManagedUser{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EmailsByIDs maps each existing user id in ids to its email.
func (s *Store) EmailsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "email": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Email string             `bson:"email"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Email
	}
	return out, nil
}

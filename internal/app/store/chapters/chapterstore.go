// internal/app/store/chapters/chapterstore.go
package chapterstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/ordering"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrTitleRequired = errors.New("title is required")

type Store struct {
	c         *mongo.Collection
	lessons   *mongo.Collection
	exercises *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:         db.Collection("chapters"),
		lessons:   db.Collection("lessons"),
		exercises: db.Collection("exercises"),
	}
}

// EnsureIndexes creates the ordering index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: ordering.Field, Value: 1}}, Options: options.Index().SetName("idx_chapters_order")},
		{Keys: bson.D{{Key: "title_ci", Value: 1}}, Options: options.Index().SetName("idx_chapters_title_ci")},
	})
	return err
}

// List returns every chapter ordered by order_index.
func (s *Store) List(ctx context.Context) ([]models.Chapter, error) {
	cur, err := s.c.Find(ctx, bson.M{}, ordering.SortOpts())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Chapter{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns mongo.ErrNoDocuments when the chapter does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error) {
	var ch models.Chapter
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ch); err != nil {
		return models.Chapter{}, err
	}
	return ch, nil
}

// Count returns the number of chapters.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Create appends a chapter at the end of the list (order_index = current
// count). Blank color/icon take the form defaults.
func (s *Store) Create(ctx context.Context, ch models.Chapter) (models.Chapter, error) {
	ch.Title = strings.TrimSpace(ch.Title)
	if ch.Title == "" {
		return models.Chapter{}, ErrTitleRequired
	}
	if ch.Color == "" {
		ch.Color = models.DefaultChapterColor
	}
	if ch.Icon == "" {
		ch.Icon = models.DefaultChapterIcon
	}

	idx, err := ordering.Next(ctx, s.c, bson.M{})
	if err != nil {
		return models.Chapter{}, err
	}

	now := time.Now().UTC()
	ch.ID = primitive.NewObjectID()
	ch.TitleCI = text.Fold(ch.Title)
	ch.OrderIndex = idx
	ch.CreatedAt = now
	ch.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		return models.Chapter{}, err
	}
	return ch, nil
}

// Update holds the editable chapter fields.
type Update struct {
	Title       string
	Description string
	Color       string
	Icon        string
}

// Update sets the editable fields of a chapter. order_index is untouched.
// Returns mongo.ErrNoDocuments when the chapter does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := strings.TrimSpace(upd.Title)
	if title == "" {
		return ErrTitleRequired
	}
	set := bson.M{
		"title":       title,
		"title_ci":    text.Fold(title),
		"description": upd.Description,
		"updated_at":  time.Now().UTC(),
	}
	if upd.Color != "" {
		set["color"] = upd.Color
	}
	if upd.Icon != "" {
		set["icon"] = upd.Icon
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a chapter together with its lessons and their exercises,
// then renumbers the remaining chapters. Returns the number of chapters
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	lessonIDs, err := s.lessonIDs(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(lessonIDs) > 0 {
		if _, err := s.exercises.DeleteMany(ctx, bson.M{"lesson_id": bson.M{"$in": lessonIDs}}); err != nil {
			return 0, fmt.Errorf("delete chapter exercises: %w", err)
		}
		if _, err := s.lessons.DeleteMany(ctx, bson.M{"chapter_id": id}); err != nil {
			return 0, fmt.Errorf("delete chapter lessons: %w", err)
		}
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		if err := ordering.Compact(ctx, s.c, bson.M{}); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

func (s *Store) lessonIDs(ctx context.Context, chapterID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.lessons.Find(ctx, bson.M{"chapter_id": chapterID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list chapter lessons: %w", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

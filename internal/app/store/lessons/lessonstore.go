// internal/app/store/lessons/lessonstore.go
package lessonstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/ordering"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrChapterRequired = errors.New("chapter is required")
	ErrChapterNotFound = errors.New("chapter not found")
)

type Store struct {
	c         *mongo.Collection
	chapters  *mongo.Collection
	exercises *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:         db.Collection("lessons"),
		chapters:  db.Collection("chapters"),
		exercises: db.Collection("exercises"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: ordering.Field, Value: 1}},
		Options: options.Index().SetName("idx_lessons_chapter_order"),
	})
	return err
}

// List returns every lesson ordered by order_index.
func (s *Store) List(ctx context.Context) ([]models.Lesson, error) {
	return s.find(ctx, bson.M{})
}

// ListByChapter returns the lessons of one chapter ordered by order_index.
func (s *Store) ListByChapter(ctx context.Context, chapterID primitive.ObjectID) ([]models.Lesson, error) {
	return s.find(ctx, bson.M{"chapter_id": chapterID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Lesson, error) {
	cur, err := s.c.Find(ctx, filter, ordering.SortOpts())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Lesson{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns mongo.ErrNoDocuments when the lesson does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Lesson, error) {
	var l models.Lesson
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

// CountByChapter returns the number of lessons in a chapter.
func (s *Store) CountByChapter(ctx context.Context, chapterID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"chapter_id": chapterID})
}

// Create appends a lesson at the end of its chapter.
func (s *Store) Create(ctx context.Context, l models.Lesson) (models.Lesson, error) {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return models.Lesson{}, ErrTitleRequired
	}
	if err := s.checkChapter(ctx, l.ChapterID); err != nil {
		return models.Lesson{}, err
	}

	idx, err := ordering.Next(ctx, s.c, bson.M{"chapter_id": l.ChapterID})
	if err != nil {
		return models.Lesson{}, err
	}

	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.OrderIndex = idx
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

// Update holds the editable lesson fields.
type Update struct {
	Title     string
	Content   string
	ChapterID primitive.ObjectID
}

// Update sets the editable fields of a lesson. When the chapter changes the
// lesson is appended to the new chapter and the old chapter is renumbered.
// Returns mongo.ErrNoDocuments when the lesson does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := strings.TrimSpace(upd.Title)
	if title == "" {
		return ErrTitleRequired
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	set := bson.M{
		"title":      title,
		"content":    upd.Content,
		"updated_at": time.Now().UTC(),
	}

	moved := !upd.ChapterID.IsZero() && upd.ChapterID != cur.ChapterID
	if moved {
		if err := s.checkChapter(ctx, upd.ChapterID); err != nil {
			return err
		}
		idx, err := ordering.Next(ctx, s.c, bson.M{"chapter_id": upd.ChapterID})
		if err != nil {
			return err
		}
		set["chapter_id"] = upd.ChapterID
		set[ordering.Field] = idx
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	if moved {
		return ordering.Compact(ctx, s.c, bson.M{"chapter_id": cur.ChapterID})
	}
	return nil
}

// Delete removes a lesson and its exercises, then renumbers the remaining
// lessons of the chapter.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	l, err := s.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if _, err := s.exercises.DeleteMany(ctx, bson.M{"lesson_id": id}); err != nil {
		return 0, fmt.Errorf("delete lesson exercises: %w", err)
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		if err := ordering.Compact(ctx, s.c, bson.M{"chapter_id": l.ChapterID}); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

func (s *Store) checkChapter(ctx context.Context, chapterID primitive.ObjectID) error {
	if chapterID.IsZero() {
		return ErrChapterRequired
	}
	n, err := s.chapters.CountDocuments(ctx, bson.M{"_id": chapterID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check chapter: %w", err)
	}
	if n == 0 {
		return ErrChapterNotFound
	}
	return nil
}

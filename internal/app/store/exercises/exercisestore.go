// internal/app/store/exercises/exercisestore.go
package exercisestore

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
	ErrTitleRequired     = errors.New("title is required")
	ErrProblemRequired   = errors.New("problem is required")
	ErrLessonRequired    = errors.New("lesson is required")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

type Store struct {
	c       *mongo.Collection
	lessons *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("exercises"),
		lessons: db.Collection("lessons"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "lesson_id", Value: 1}, {Key: ordering.Field, Value: 1}},
		Options: options.Index().SetName("idx_exercises_lesson_order"),
	})
	return err
}

// List returns every exercise ordered by order_index.
func (s *Store) List(ctx context.Context) ([]models.Exercise, error) {
	return s.find(ctx, bson.M{})
}

// ListByLesson returns the exercises of one lesson ordered by order_index.
func (s *Store) ListByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]models.Exercise, error) {
	return s.find(ctx, bson.M{"lesson_id": lessonID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Exercise, error) {
	cur, err := s.c.Find(ctx, filter, ordering.SortOpts())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Exercise{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns mongo.ErrNoDocuments when the exercise does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Exercise, error) {
	var e models.Exercise
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Exercise{}, err
	}
	return e, nil
}

// Create appends an exercise at the end of its lesson. An empty difficulty
// defaults to medium.
func (s *Store) Create(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return models.Exercise{}, ErrTitleRequired
	}
	if strings.TrimSpace(e.Problem) == "" {
		return models.Exercise{}, ErrProblemRequired
	}
	if e.Difficulty == "" {
		e.Difficulty = models.DifficultyMedium
	}
	if !models.IsValidDifficulty(e.Difficulty) {
		return models.Exercise{}, ErrInvalidDifficulty
	}
	if err := s.checkLesson(ctx, e.LessonID); err != nil {
		return models.Exercise{}, err
	}

	idx, err := ordering.Next(ctx, s.c, bson.M{"lesson_id": e.LessonID})
	if err != nil {
		return models.Exercise{}, err
	}

	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.OrderIndex = idx
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Exercise{}, err
	}
	return e, nil
}

// Update holds the editable exercise fields.
type Update struct {
	Title      string
	Problem    string
	Solution   string
	Difficulty string
	LessonID   primitive.ObjectID
}

// Update sets the editable fields of an exercise, moving it to the end of
// another lesson when LessonID changes.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := strings.TrimSpace(upd.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(upd.Problem) == "" {
		return ErrProblemRequired
	}
	if upd.Difficulty != "" && !models.IsValidDifficulty(upd.Difficulty) {
		return ErrInvalidDifficulty
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	set := bson.M{
		"title":      title,
		"problem":    upd.Problem,
		"solution":   upd.Solution,
		"updated_at": time.Now().UTC(),
	}
	if upd.Difficulty != "" {
		set["difficulty"] = upd.Difficulty
	}

	moved := !upd.LessonID.IsZero() && upd.LessonID != cur.LessonID
	if moved {
		if err := s.checkLesson(ctx, upd.LessonID); err != nil {
			return err
		}
		idx, err := ordering.Next(ctx, s.c, bson.M{"lesson_id": upd.LessonID})
		if err != nil {
			return err
		}
		set["lesson_id"] = upd.LessonID
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
		return ordering.Compact(ctx, s.c, bson.M{"lesson_id": cur.LessonID})
	}
	return nil
}

// Delete removes an exercise and renumbers the rest of its lesson.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	e, err := s.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		if err := ordering.Compact(ctx, s.c, bson.M{"lesson_id": e.LessonID}); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

func (s *Store) checkLesson(ctx context.Context, lessonID primitive.ObjectID) error {
	if lessonID.IsZero() {
		return ErrLessonRequired
	}
	n, err := s.lessons.CountDocuments(ctx, bson.M{"_id": lessonID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check lesson: %w", err)
	}
	if n == 0 {
		return ErrLessonNotFound
	}
	return nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise belongs to a Lesson. Problem and Solution use the same markup as
// Lesson.Content.
type Exercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LessonID   primitive.ObjectID `bson:"lesson_id" json:"lesson_id"`
	Title      string             `bson:"title" json:"title"`
	Problem    string             `bson:"problem" json:"problem"`
	Solution   string             `bson:"solution" json:"solution"`
	Difficulty string             `bson:"difficulty" json:"difficulty"` // easy | medium | hard
	OrderIndex int                `bson:"order_index" json:"order_index"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Difficulties lists the levels in display order.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// DifficultyLabel returns the French label for a difficulty level.
func DifficultyLabel(d string) string {
	switch d {
	case DifficultyEasy:
		return "Facile"
	case DifficultyMedium:
		return "Moyen"
	case DifficultyHard:
		return "Difficile"
	default:
		return d
	}
}

// IsValidDifficulty reports whether d is one of the known levels.
func IsValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

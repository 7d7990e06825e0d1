package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson belongs to a Chapter. Content is marked-up text that may embed
// $...$ and $$...$$ formulas.
type Lesson struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Content    string             `bson:"content" json:"content"`
	ChapterID  primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	OrderIndex int                `bson:"order_index" json:"order_index"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter groups lessons. Color is a CSS utility class (e.g. "bg-blue-500")
// and Icon the name of the icon shown next to the title.
type Chapter struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"` // lowercase, diacritics-stripped
	Description string             `bson:"description" json:"description"`
	Color       string             `bson:"color" json:"color"`
	Icon        string             `bson:"icon" json:"icon"`
	OrderIndex  int                `bson:"order_index" json:"order_index"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Defaults used by the admin chapter form.
const (
	DefaultChapterColor = "bg-blue-500"
	DefaultChapterIcon  = "Calculator"
)

// ChapterIcons lists the icon names the UI knows how to draw. Unknown names
// are drawn as BookOpen.
var ChapterIcons = []string{"Calculator", "Target", "BarChart3", "BookOpen", "TrendingUp"}

// ChapterColors lists the palette offered in the admin chapter form.
var ChapterColors = []string{
	"bg-blue-500", "bg-emerald-500", "bg-purple-500", "bg-orange-500",
	"bg-red-500", "bg-pink-500", "bg-indigo-500", "bg-teal-500",
}

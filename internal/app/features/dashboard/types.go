package dashboard

import (
	"html/template"

	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
)

type chapterItem struct {
	ID          string
	Title       string
	Description string
	Color       string
	Icon        string
	Selected    bool
}

type lessonItem struct {
	ID      string
	Title   string
	Excerpt string
}

type exerciseItem struct {
	ID              string
	Title           string
	Difficulty      string
	DifficultyLabel string
	Problem         template.HTML
	Solution        template.HTML
	HasSolution     bool
}

// indexData backs /dashboard and /dashboard/chapters/{id}.
type indexData struct {
	viewdata.BaseVM

	Chapters []chapterItem
	Selected *chapterItem
	Lessons  []lessonItem
}

// lessonData backs /dashboard/lessons/{id}.
type lessonData struct {
	viewdata.BaseVM

	ChapterID    string
	ChapterTitle string
	LessonTitle  string
	Content      template.HTML
	Exercises    []exerciseItem
}

const excerptLen = 140

func toChapterItems(chs []models.Chapter, selected string) []chapterItem {
	out := make([]chapterItem, 0, len(chs))
	for _, c := range chs {
		id := c.ID.Hex()
		out = append(out, chapterItem{
			ID:          id,
			Title:       c.Title,
			Description: c.Description,
			Color:       c.Color,
			Icon:        c.Icon,
			Selected:    id == selected,
		})
	}
	return out
}

func toLessonItems(ls []models.Lesson) []lessonItem {
	out := make([]lessonItem, 0, len(ls))
	for _, l := range ls {
		out = append(out, lessonItem{
			ID:      l.ID.Hex(),
			Title:   l.Title,
			Excerpt: mathtext.Plain(l.Content, excerptLen),
		})
	}
	return out
}

func toExerciseItems(es []models.Exercise) []exerciseItem {
	out := make([]exerciseItem, 0, len(es))
	for _, e := range es {
		out = append(out, exerciseItem{
			ID:              e.ID.Hex(),
			Title:           e.Title,
			Difficulty:      e.Difficulty,
			DifficultyLabel: models.DifficultyLabel(e.Difficulty),
			Problem:         mathtext.Render(e.Problem),
			Solution:        mathtext.Render(e.Solution),
			HasSolution:     e.Solution != "",
		})
	}
	return out
}

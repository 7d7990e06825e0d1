package admin

import (
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/formutil"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
)

// Tabs of the admin overview, selected with ?tab=.
const (
	TabChapters  = "chapters"
	TabLessons   = "lessons"
	TabExercises = "exercises"
	TabUsers     = "users"
)

// Tabs lists the overview tabs in display order.
var Tabs = []tabItem{
	{ID: TabChapters, Label: "Chapitres"},
	{ID: TabLessons, Label: "Leçons"},
	{ID: TabExercises, Label: "Exercices"},
	{ID: TabUsers, Label: "Utilisateurs"},
}

// normalizeTab returns tab when it names a known tab, else the chapters tab.
func normalizeTab(tab string) string {
	for _, t := range Tabs {
		if t.ID == tab {
			return tab
		}
	}
	return TabChapters
}

// Notices flashed after a mutation.
const (
	MsgChapterCreated  = "Chapitre créé"
	MsgChapterUpdated  = "Chapitre mis à jour"
	MsgChapterDeleted  = "Chapitre supprimé"
	MsgLessonCreated   = "Leçon créée"
	MsgLessonUpdated   = "Leçon mise à jour"
	MsgLessonDeleted   = "Leçon supprimée"
	MsgExerciseCreated = "Exercice créé"
	MsgExerciseUpdated = "Exercice mis à jour"
	MsgExerciseDeleted = "Exercice supprimé"

	MsgUserPromoted = "Utilisateur %s promu en admin avec succès"
	MsgUserDemoted  = "Utilisateur %s rétrogradé en étudiant avec succès"

	MsgChaptersLoadFailed  = "Erreur lors du chargement des chapitres"
	MsgLessonsLoadFailed   = "Erreur lors du chargement des leçons"
	MsgExercisesLoadFailed = "Erreur lors du chargement des exercices"
	MsgUsersLoadFailed     = "Erreur lors du chargement des utilisateurs"

	MsgChapterNotFound  = "Chapitre introuvable."
	MsgLessonNotFound   = "Leçon introuvable."
	MsgExerciseNotFound = "Exercice introuvable."
	MsgChapterRequired  = "Veuillez choisir un chapitre."
	MsgLessonRequired   = "Veuillez choisir une leçon."
	MsgProblemRequired  = "L'énoncé est obligatoire."
	MsgTitleRequired    = "Le titre est obligatoire."
	MsgEmailRequired    = "Veuillez saisir une adresse email."
	MsgEmailInvalid     = "Adresse email invalide."
	MsgSaveFailed       = "Erreur lors de l'enregistrement. Veuillez réessayer."
	MsgDeleteFailed     = "Erreur lors de la suppression. Veuillez réessayer."
)

type tabItem struct {
	ID    string
	Label string
	Count int
}

type chapterRow struct {
	ID          string
	Title       string
	Description string
	Color       string
	Icon        string
	OrderIndex  int
	LessonCount int
}

type lessonRow struct {
	ID           string
	Title        string
	ChapterID    string
	ChapterTitle string
	OrderIndex   int
	Excerpt      string
}

type exerciseRow struct {
	ID              string
	Title           string
	LessonID        string
	LessonTitle     string
	Difficulty      string
	DifficultyLabel string
	OrderIndex      int
}

type userRow struct {
	ID         string
	Email      string
	Name       string
	Role       string
	IsAdmin    bool
	IsSelf     bool
	Confirmed  bool
	LastSignIn *time.Time
	CreatedAt  time.Time
}

// overviewData backs GET /admin.
type overviewData struct {
	viewdata.BaseVM

	Tab       string
	Tabs      []tabItem
	Chapters  []chapterRow
	Lessons   []lessonRow
	Exercises []exerciseRow
	Users     []userRow
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type chapterFormData struct {
	formutil.Base

	IsEdit      bool
	ID          string
	ItemTitle   string
	Description string
	Color       string
	Icon        string
	Colors      []option
	Icons       []option
}

type lessonFormData struct {
	formutil.Base

	IsEdit    bool
	ID        string
	ItemTitle string
	Content   string
	ChapterID string
	Chapters  []option
}

type exerciseFormData struct {
	formutil.Base

	IsEdit       bool
	ID           string
	ItemTitle    string
	Problem      string
	Solution     string
	Difficulty   string
	LessonID     string
	Lessons      []option
	Difficulties []option
}

// confirmDeleteData backs the delete confirmation pages.
type confirmDeleteData struct {
	viewdata.BaseVM

	Kind    string // "le chapitre", "la leçon", "l'exercice"
	Name    string
	Action  string
	Warning string
}

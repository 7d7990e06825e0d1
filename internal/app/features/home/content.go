package home

// Landing page sections, selected with ?section=.
const (
	SectionHome      = "accueil"
	SectionChapters  = "chapitres"
	SectionExercises = "exercices"
)

// NavItem is one entry of the landing page section menu.
type NavItem struct {
	ID    string
	Title string
	Icon  string
}

// Stat is a headline figure.
type Stat struct {
	Label       string
	Value       string
	Description string
	Icon        string
	TextColor   string
	BgColor     string
}

// ChapterCard is a marketing card for one part of the curriculum. It is
// static copy and unrelated to the chapters stored in the database.
type ChapterCard struct {
	ID          string
	Title       string
	Description string
	Topics      []string
	Gradient    string
	Accent      string
	Icon        string
	Progress    int
	Exercises   int
	Duration    string
}

// Level groups the exercise catalogue by difficulty.
type Level struct {
	Name        string
	Count       int
	Description string
	Gradient    string
	BgColor     string
	BorderColor string
	Icon        string
}

// FeaturedExercise is a highlighted exercise on the exercises section.
type FeaturedExercise struct {
	Title      string
	Chapter    string
	Duration   string
	Points     string
	Difficulty string
	Color      string
}

// NavItems lists the landing sections. Only the first three have content;
// the others fall back to the home section.
var NavItems = []NavItem{
	{ID: SectionHome, Title: "Accueil", Icon: "BookOpen"},
	{ID: SectionChapters, Title: "Chapitres", Icon: "BookMarked"},
	{ID: SectionExercises, Title: "Exercices", Icon: "PenTool"},
	{ID: "examens", Title: "Examens Blancs", Icon: "GraduationCap"},
	{ID: "progression", Title: "Progression", Icon: "Trophy"},
}

// HeroStats are the four figures in the hero banner.
var HeroStats = []Stat{
	{Label: "Étudiants", Value: "3.2K+", Icon: "Users"},
	{Label: "Exercices", Value: "500+", Icon: "PenTool"},
	{Label: "Réussite", Value: "94%", Icon: "Trophy"},
	{Label: "Satisfaction", Value: "4.9/5", Icon: "Star"},
}

// OverviewStats are the cards below the hero banner.
var OverviewStats = []Stat{
	{Label: "Chapitres Complets", Value: "24", Description: "Programme officiel 2 BAC", Icon: "BookOpen", TextColor: "text-blue-600", BgColor: "bg-blue-50"},
	{Label: "Exercices Variés", Value: "500+", Description: "Tous niveaux de difficulté", Icon: "PenTool", TextColor: "text-emerald-600", BgColor: "bg-emerald-50"},
	{Label: "Examens Blancs", Value: "15", Description: "Conditions réelles", Icon: "GraduationCap", TextColor: "text-purple-600", BgColor: "bg-purple-50"},
	{Label: "Taux de Réussite", Value: "94%", Description: "Étudiants satisfaits", Icon: "Trophy", TextColor: "text-orange-600", BgColor: "bg-orange-50"},
}

// Chapters are the four curriculum cards.
var Chapters = []ChapterCard{
	{
		ID:          "analyse",
		Title:       "Analyse Mathématique",
		Description: "Maîtrisez les concepts fondamentaux de l'analyse",
		Topics:      []string{"Limites et Continuité", "Dérivabilité", "Étude de Fonctions", "Primitives et Intégrales"},
		Gradient:    "from-blue-500 to-blue-700",
		Accent:      "bg-blue-500",
		Icon:        "TrendingUp",
		Progress:    85,
		Exercises:   120,
		Duration:    "45h",
	},
	{
		ID:          "algebre",
		Title:       "Algèbre Avancée",
		Description: "Explorez les structures algébriques complexes",
		Topics:      []string{"Nombres Complexes", "Arithmétique", "Structures Algébriques", "Polynômes"},
		Gradient:    "from-emerald-500 to-emerald-700",
		Accent:      "bg-emerald-500",
		Icon:        "Calculator",
		Progress:    72,
		Exercises:   95,
		Duration:    "38h",
	},
	{
		ID:          "geometrie",
		Title:       "Géométrie dans l'Espace",
		Description: "Visualisez et résolvez en trois dimensions",
		Topics:      []string{"Géométrie Euclidienne", "Géométrie Analytique", "Transformations", "Sections Planes"},
		Gradient:    "from-purple-500 to-purple-700",
		Accent:      "bg-purple-500",
		Icon:        "Target",
		Progress:    58,
		Exercises:   87,
		Duration:    "42h",
	},
	{
		ID:          "probabilites",
		Title:       "Probabilités & Statistiques",
		Description: "Analysez l'incertain avec précision",
		Topics:      []string{"Probabilités Conditionnelles", "Variables Aléatoires", "Lois de Probabilité", "Statistiques"},
		Gradient:    "from-orange-500 to-red-500",
		Accent:      "bg-orange-500",
		Icon:        "BarChart3",
		Progress:    43,
		Exercises:   76,
		Duration:    "35h",
	},
}

// Levels split the exercise catalogue.
var Levels = []Level{
	{Name: "Débutant", Count: 180, Description: "Bases solides", Gradient: "from-green-500 to-emerald-600", BgColor: "bg-green-50", BorderColor: "border-green-200", Icon: "Star"},
	{Name: "Intermédiaire", Count: 220, Description: "Progression rapide", Gradient: "from-orange-500 to-red-500", BgColor: "bg-orange-50", BorderColor: "border-orange-200", Icon: "Target"},
	{Name: "Avancé", Count: 100, Description: "Excellence garantie", Gradient: "from-purple-500 to-indigo-600", BgColor: "bg-purple-50", BorderColor: "border-purple-200", Icon: "Brain"},
}

// FeaturedExercises are the recommended exercises.
var FeaturedExercises = []FeaturedExercise{
	{Title: "Limites de fonctions - Formes indéterminées", Chapter: "Analyse", Duration: "25 min", Points: "8 pts", Difficulty: "Moyen", Color: "bg-blue-500"},
	{Title: "Nombres Complexes - Forme exponentielle", Chapter: "Algèbre", Duration: "30 min", Points: "10 pts", Difficulty: "Avancé", Color: "bg-purple-500"},
	{Title: "Géométrie dans l'Espace - Sections planes", Chapter: "Géométrie", Duration: "35 min", Points: "12 pts", Difficulty: "Avancé", Color: "bg-purple-500"},
}

// SectionFor maps the ?section= value to a section with content.
// Unknown and content-less sections show the home section.
func SectionFor(s string) string {
	switch s {
	case SectionChapters, SectionExercises:
		return s
	default:
		return SectionHome
	}
}

package home

import (
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public landing page. All of its content is static.
type Handler struct {
	Flashes viewdata.FlashSource
	Log     *zap.Logger
}

func NewHandler(flashes viewdata.FlashSource, logger *zap.Logger) *Handler {
	return &Handler{
		Flashes: flashes,
		Log:     logger,
	}
}

type landingData struct {
	viewdata.BaseVM

	Section           string
	NavItems          []NavItem
	HeroStats         []Stat
	OverviewStats     []Stat
	Chapters          []ChapterCard
	Levels            []Level
	FeaturedExercises []FeaturedExercise
}

func buildLanding(base viewdata.BaseVM, section string) landingData {
	return landingData{
		BaseVM:            base,
		Section:           SectionFor(section),
		NavItems:          NavItems,
		HeroStats:         HeroStats,
		OverviewStats:     OverviewStats,
		Chapters:          Chapters,
		Levels:            Levels,
		FeaturedExercises: FeaturedExercises,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(w, r, h.Flashes, "Accueil", "/")
	templates.Render(w, r, "home", buildLanding(base, query.Get(r, "section")))
}

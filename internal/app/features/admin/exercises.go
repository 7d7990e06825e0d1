package admin

import (
	"errors"
	"net/http"
	"strings"

	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/formutil"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/navigation"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (h *Handler) exerciseForm(r *http.Request, title string, in exerciseInput) exerciseFormData {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "exercise form options")
	defer cancel()

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	data := exerciseFormData{
		ItemTitle:    in.Title,
		Problem:      in.Problem,
		Solution:     in.Solution,
		Difficulty:   difficulty,
		LessonID:     in.LessonID,
		Lessons:      h.lessonOptions(ctx, in.LessonID),
		Difficulties: stringOptions(models.Difficulties, difficulty, models.DifficultyLabel),
	}
	formutil.SetBase(&data.Base, r, title, navigation.AdminTab(TabExercises))
	return data
}

func readExerciseForm(r *http.Request) exerciseInput {
	return exerciseInput{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Problem:    r.FormValue("problem"),
		Solution:   r.FormValue("solution"),
		Difficulty: strings.TrimSpace(r.FormValue("difficulty")),
		LessonID:   strings.TrimSpace(r.FormValue("lesson_id")),
	}
}

func exerciseErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, exercisestore.ErrTitleRequired):
		return MsgTitleRequired, true
	case errors.Is(err, exercisestore.ErrProblemRequired):
		return MsgProblemRequired, true
	case errors.Is(err, exercisestore.ErrLessonRequired):
		return MsgLessonRequired, true
	case errors.Is(err, exercisestore.ErrLessonNotFound):
		return MsgLessonNotFound, true
	case errors.Is(err, exercisestore.ErrInvalidDifficulty):
		return inputval.MsgBadDifficulty, true
	}
	return MsgSaveFailed, false
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/exercises/new[?lesson=id] · POST /admin/exercises                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeExerciseNew(w http.ResponseWriter, r *http.Request) {
	data := h.exerciseForm(r, "Nouvel exercice", exerciseInput{LessonID: query.Get(r, "lesson")})
	templates.Render(w, r, "admin_exercise_form", data)
}

func (h *Handler) HandleExerciseCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseContentForm(w, r) {
		return
	}
	in := readExerciseForm(r)

	renderWithError := func(msg string) {
		data := h.exerciseForm(r, "Nouvel exercice", in)
		data.SetError(msg)
		templates.Render(w, r, "admin_exercise_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}
	lessonID, err := primitive.ObjectIDFromHex(in.LessonID)
	if err != nil {
		renderWithError(MsgLessonRequired)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create exercise")
	defer cancel()

	e, err := h.Exercises.Create(ctx, models.Exercise{
		LessonID:   lessonID,
		Title:      in.Title,
		Problem:    in.Problem,
		Solution:   in.Solution,
		Difficulty: in.Difficulty,
	})
	if err != nil {
		msg, known := exerciseErrorMessage(err)
		if !known {
			h.Log.Error("create exercise failed", zap.String("title", in.Title), zap.Error(err))
		}
		renderWithError(msg)
		return
	}

	h.contentChanged(r, e.ID, auditlog.ResourceExercise, auditlog.ActionCreated, e.Title)
	h.success(w, r, TabExercises, MsgExerciseCreated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/exercises/{id}/edit · POST /admin/exercises/{id}                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeExerciseEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load exercise")
	defer cancel()

	e, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load exercise failed", zap.String("exercise_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	data := h.exerciseForm(r, "Modifier l'exercice", exerciseInput{
		Title:      e.Title,
		Problem:    e.Problem,
		Solution:   e.Solution,
		Difficulty: e.Difficulty,
		LessonID:   e.LessonID.Hex(),
	})
	data.IsEdit = true
	data.ID = id.Hex()
	templates.Render(w, r, "admin_exercise_form", data)
}

func (h *Handler) HandleExerciseUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}
	if !h.parseContentForm(w, r) {
		return
	}
	in := readExerciseForm(r)

	renderWithError := func(msg string) {
		data := h.exerciseForm(r, "Modifier l'exercice", in)
		data.IsEdit = true
		data.ID = id.Hex()
		data.SetError(msg)
		templates.Render(w, r, "admin_exercise_form", data)
	}

	if err := inputval.Struct(in); err != nil {
		renderWithError(err.Error())
		return
	}
	lessonID, err := primitive.ObjectIDFromHex(in.LessonID)
	if err != nil {
		renderWithError(MsgLessonRequired)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update exercise")
	defer cancel()

	err = h.Exercises.Update(ctx, id, exercisestore.Update{
		Title:      in.Title,
		Problem:    in.Problem,
		Solution:   in.Solution,
		Difficulty: in.Difficulty,
		LessonID:   lessonID,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}
	if err != nil {
		msg, known := exerciseErrorMessage(err)
		if !known {
			h.Log.Error("update exercise failed", zap.String("exercise_id", id.Hex()), zap.Error(err))
		}
		renderWithError(msg)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceExercise, auditlog.ActionUpdated, in.Title)
	h.success(w, r, TabExercises, MsgExerciseUpdated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/exercises/{id}/delete · POST /admin/exercises/{id}/delete         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeExerciseDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load exercise")
	defer cancel()

	e, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load exercise failed", zap.String("exercise_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	data := confirmDeleteData{
		BaseVM: viewdata.NewBaseVM(w, r, nil, "Supprimer l'exercice", navigation.AdminTab(TabExercises)),
		Kind:   "l'exercice",
		Name:   e.Title,
		Action: "/admin/exercises/" + id.Hex() + "/delete",
	}
	templates.Render(w, r, "admin_confirm_delete", data)
}

func (h *Handler) HandleExerciseDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete exercise")
	defer cancel()

	e, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("load exercise failed", zap.String("exercise_id", id.Hex()), zap.Error(err))
		}
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	n, err := h.Exercises.Delete(ctx, id)
	if err != nil {
		h.Log.Error("delete exercise failed", zap.String("exercise_id", id.Hex()), zap.Int64("deleted", n), zap.Error(err))
		if n == 0 {
			h.failure(w, r, TabExercises, MsgDeleteFailed)
			return
		}
	}
	if n == 0 {
		h.failure(w, r, TabExercises, MsgExerciseNotFound)
		return
	}

	h.contentChanged(r, id, auditlog.ResourceExercise, auditlog.ActionDeleted, e.Title)
	h.success(w, r, TabExercises, MsgExerciseDeleted)
}

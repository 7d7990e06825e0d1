package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	chapterstore "github.com/dalemusser/mathmastery/internal/app/store/chapters"
	exercisestore "github.com/dalemusser/mathmastery/internal/app/store/exercises"
	lessonstore "github.com/dalemusser/mathmastery/internal/app/store/lessons"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
	"github.com/dalemusser/mathmastery/internal/app/system/metrics"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/mathmastery/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db       *mongo.Database
	h        *Handler
	sm       *auth.SessionManager
	fixtures *testutil.Fixtures
	admin    testutil.TestUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	accounts := account.NewService(db, mailer.NewLogSender(logger), account.NewEvents(), account.Config{
		BaseURL: "http://localhost:8080",
	}, logger)
	sm := testutil.NewSessionManager(t)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Admin: auditlog.DB})

	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := fixtures.CreateAdmin(ctx, "prof@example.ma")

	return &env{
		db:       db,
		h:        NewHandler(db, accounts, sm, auditLog, metrics.New(), uierrors.NewErrorLogger(logger), logger),
		sm:       sm,
		fixtures: fixtures,
		admin: testutil.TestUser{
			ID:    admin.ID.Hex(),
			Name:  "Prof",
			Email: admin.Email,
			Role:  models.RoleAdmin,
		},
	}
}

// post builds an admin form POST, optionally with an {id} path param.
func (e *env) post(target, id string, form url.Values) *http.Request {
	req := testutil.WithUser(testutil.NewFormRequest(target, form), e.admin)
	if id != "" {
		req = testutil.WithChiURLParam(req, "id", id)
	}
	return req
}

func assertRedirectWithFlash(t *testing.T, sm *auth.SessionManager, rec *httptest.ResponseRecorder, loc, kind, msg string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != loc {
		t.Errorf("Location = %q, want %q", got, loc)
	}
	if !testutil.HasFlash(sm, rec, kind, msg) {
		t.Errorf("missing %s flash %q; got %v", kind, msg, testutil.Flashes(sm, rec))
	}
}

func auditCount(t *testing.T, db *mongo.Database, eventType string) int {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := audit.New(db).Query(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	return len(events)
}

/*─────────────────────────── chapters ───────────────────────────*/

func TestHandleChapterCreate_AppendsAtEnd(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateChapter(ctx, "Analyse")
	e.fixtures.CreateChapter(ctx, "Algèbre")

	rec := httptest.NewRecorder()
	e.h.HandleChapterCreate(rec, e.post("/admin/chapters", "", url.Values{
		"title":       {"Trigonométrie"},
		"description": {"Cercle trigonométrique"},
		"color":       {"bg-red-500"},
		"icon":        {"Target"},
	}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=chapters", auth.FlashSuccess, MsgChapterCreated)

	chs, err := chapterstore.New(e.db).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(chs) != 3 {
		t.Fatalf("chapters = %d, want 3", len(chs))
	}
	last := chs[2]
	if last.Title != "Trigonométrie" || last.OrderIndex != 2 {
		t.Errorf("new chapter = %q at %d, want Trigonométrie at 2", last.Title, last.OrderIndex)
	}
	if last.Color != "bg-red-500" || last.Icon != "Target" {
		t.Errorf("color/icon = %q/%q", last.Color, last.Icon)
	}
	if n := auditCount(t, e.db, audit.EventChapterCreated); n != 1 {
		t.Errorf("chapter_created audit events = %d, want 1", n)
	}
}

func TestHandleChapterCreate_ReturnURL(t *testing.T) {
	tests := []struct {
		name string
		ret  string
		want string
	}{
		{"admin page", "/admin?tab=lessons", "/admin?tab=lessons"},
		{"form page", "/admin/chapters/new", "/admin?tab=chapters"},
		{"outside admin", "/dashboard", "/admin?tab=chapters"},
		{"other host", "https://evil.example/admin", "/admin?tab=chapters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := httptest.NewRecorder()
			e.h.HandleChapterCreate(rec, e.post("/admin/chapters", "", url.Values{
				"title":  {"Probabilités"},
				"return": {tt.ret},
			}))
			assertRedirectWithFlash(t, e.sm, rec, tt.want, auth.FlashSuccess, MsgChapterCreated)
		})
	}
}

func TestHandleChapterCreate_UnknownColorFallsBack(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandleChapterCreate(rec, e.post("/admin/chapters", "", url.Values{
		"title": {"Géométrie"},
		"color": {"bg-[url(javascript:x)]"},
		"icon":  {"Skull"},
	}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	chs, _ := chapterstore.New(e.db).List(ctx)
	if len(chs) != 1 {
		t.Fatalf("chapters = %d, want 1", len(chs))
	}
	if chs[0].Color != models.DefaultChapterColor || chs[0].Icon != models.DefaultChapterIcon {
		t.Errorf("color/icon = %q/%q, want defaults", chs[0].Color, chs[0].Icon)
	}
}

func TestHandleChapterUpdate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ch := e.fixtures.CreateChapter(ctx, "Analyse")

	rec := httptest.NewRecorder()
	e.h.HandleChapterUpdate(rec, e.post("/admin/chapters/"+ch.ID.Hex(), ch.ID.Hex(), url.Values{
		"title":       {"Analyse réelle"},
		"description": {"Limites et dérivées"},
		"color":       {"bg-teal-500"},
		"icon":        {"TrendingUp"},
	}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=chapters", auth.FlashSuccess, MsgChapterUpdated)

	got, err := chapterstore.New(e.db).GetByID(ctx, ch.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Analyse réelle" || got.Description != "Limites et dérivées" || got.OrderIndex != ch.OrderIndex {
		t.Errorf("updated chapter = %+v", got)
	}
}

func TestHandleChapterUpdate_Unknown(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID().Hex()

	rec := httptest.NewRecorder()
	e.h.HandleChapterUpdate(rec, e.post("/admin/chapters/"+id, id, url.Values{"title": {"X"}}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=chapters", auth.FlashError, MsgChapterNotFound)
}

func TestHandleChapterDelete_Cascades(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	analyse := e.fixtures.CreateChapter(ctx, "Analyse")
	algebre := e.fixtures.CreateChapter(ctx, "Algèbre")
	l := e.fixtures.CreateLesson(ctx, analyse.ID, "Limites")
	e.fixtures.CreateExercise(ctx, l.ID, "Limite usuelle")

	rec := httptest.NewRecorder()
	e.h.HandleChapterDelete(rec, e.post("/admin/chapters/"+analyse.ID.Hex()+"/delete", analyse.ID.Hex(), nil))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=chapters", auth.FlashSuccess, MsgChapterDeleted)

	chs, _ := chapterstore.New(e.db).List(ctx)
	if len(chs) != 1 || chs[0].ID != algebre.ID || chs[0].OrderIndex != 0 {
		t.Errorf("remaining chapters = %+v, want Algèbre at 0", chs)
	}
	if ls, _ := lessonstore.New(e.db).List(ctx); len(ls) != 0 {
		t.Errorf("lessons left = %d, want 0", len(ls))
	}
	if es, _ := exercisestore.New(e.db).List(ctx); len(es) != 0 {
		t.Errorf("exercises left = %d, want 0", len(es))
	}
}

func TestHandleChapterDelete_BadID(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandleChapterDelete(rec, e.post("/admin/chapters/nope/delete", "nope", nil))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=chapters", auth.FlashError, MsgChapterNotFound)
}

/*─────────────────────────── lessons ───────────────────────────*/

func TestHandleLessonCreate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ch := e.fixtures.CreateChapter(ctx, "Analyse")
	e.fixtures.CreateLesson(ctx, ch.ID, "Limites")

	rec := httptest.NewRecorder()
	e.h.HandleLessonCreate(rec, e.post("/admin/lessons", "", url.Values{
		"title":      {"Dérivation"},
		"content":    {"La dérivée de $x^n$ est $nx^{n-1}$."},
		"chapter_id": {ch.ID.Hex()},
	}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=lessons", auth.FlashSuccess, MsgLessonCreated)

	ls, _ := lessonstore.New(e.db).ListByChapter(ctx, ch.ID)
	if len(ls) != 2 || ls[1].Title != "Dérivation" || ls[1].OrderIndex != 1 {
		t.Errorf("lessons = %+v, want Dérivation appended at 1", ls)
	}
}

func TestHandleLessonUpdate_MovesChapter(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	analyse := e.fixtures.CreateChapter(ctx, "Analyse")
	algebre := e.fixtures.CreateChapter(ctx, "Algèbre")
	l := e.fixtures.CreateLesson(ctx, analyse.ID, "Nombres complexes")

	rec := httptest.NewRecorder()
	e.h.HandleLessonUpdate(rec, e.post("/admin/lessons/"+l.ID.Hex(), l.ID.Hex(), url.Values{
		"title":      {"Nombres complexes"},
		"content":    {"$z = a + ib$"},
		"chapter_id": {algebre.ID.Hex()},
	}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=lessons", auth.FlashSuccess, MsgLessonUpdated)

	got, _ := lessonstore.New(e.db).GetByID(ctx, l.ID)
	if got.ChapterID != algebre.ID {
		t.Errorf("ChapterID = %s, want %s", got.ChapterID.Hex(), algebre.ID.Hex())
	}
}

func TestHandleLessonDelete_KeepsSiblings(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ch := e.fixtures.CreateChapter(ctx, "Analyse")
	first := e.fixtures.CreateLesson(ctx, ch.ID, "Limites")
	second := e.fixtures.CreateLesson(ctx, ch.ID, "Continuité")
	third := e.fixtures.CreateLesson(ctx, ch.ID, "Dérivation")

	rec := httptest.NewRecorder()
	e.h.HandleLessonDelete(rec, e.post("/admin/lessons/"+second.ID.Hex()+"/delete", second.ID.Hex(), nil))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=lessons", auth.FlashSuccess, MsgLessonDeleted)

	ls, _ := lessonstore.New(e.db).ListByChapter(ctx, ch.ID)
	if len(ls) != 2 {
		t.Fatalf("lessons = %d, want 2", len(ls))
	}
	if ls[0].ID != first.ID || ls[1].ID != third.ID {
		t.Errorf("remaining = %s, %s; want Limites, Dérivation", ls[0].Title, ls[1].Title)
	}
	if ls[1].OrderIndex != 1 {
		t.Errorf("Dérivation order_index = %d, want 1", ls[1].OrderIndex)
	}
}

/*─────────────────────────── exercises ───────────────────────────*/

func TestHandleExerciseCreate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ch := e.fixtures.CreateChapter(ctx, "Analyse")
	l := e.fixtures.CreateLesson(ctx, ch.ID, "Limites")

	rec := httptest.NewRecorder()
	e.h.HandleExerciseCreate(rec, e.post("/admin/exercises", "", url.Values{
		"title":      {"Limite en l'infini"},
		"problem":    {"Calculer $\\lim_{x\\to+\\infty} \\frac{1}{x}$."},
		"solution":   {"$0$"},
		"difficulty": {models.DifficultyHard},
		"lesson_id":  {l.ID.Hex()},
	}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=exercises", auth.FlashSuccess, MsgExerciseCreated)

	es, _ := exercisestore.New(e.db).ListByLesson(ctx, l.ID)
	if len(es) != 1 || es[0].Difficulty != models.DifficultyHard || es[0].OrderIndex != 0 {
		t.Errorf("exercises = %+v", es)
	}
}

func TestHandleExerciseUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ch := e.fixtures.CreateChapter(ctx, "Analyse")
	l := e.fixtures.CreateLesson(ctx, ch.ID, "Limites")
	ex := e.fixtures.CreateExercise(ctx, l.ID, "Limite usuelle")

	rec := httptest.NewRecorder()
	e.h.HandleExerciseUpdate(rec, e.post("/admin/exercises/"+ex.ID.Hex(), ex.ID.Hex(), url.Values{
		"title":      {"Limite remarquable"},
		"problem":    {ex.Problem},
		"solution":   {ex.Solution},
		"difficulty": {models.DifficultyEasy},
		"lesson_id":  {l.ID.Hex()},
	}))
	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=exercises", auth.FlashSuccess, MsgExerciseUpdated)

	got, _ := exercisestore.New(e.db).GetByID(ctx, ex.ID)
	if got.Title != "Limite remarquable" || got.Difficulty != models.DifficultyEasy {
		t.Errorf("updated exercise = %+v", got)
	}

	rec = httptest.NewRecorder()
	e.h.HandleExerciseDelete(rec, e.post("/admin/exercises/"+ex.ID.Hex()+"/delete", ex.ID.Hex(), nil))
	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=exercises", auth.FlashSuccess, MsgExerciseDeleted)

	if _, err := exercisestore.New(e.db).GetByID(ctx, ex.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete err = %v, want ErrNoDocuments", err)
	}
	if n := auditCount(t, e.db, audit.EventExerciseDeleted); n != 1 {
		t.Errorf("exercise_deleted audit events = %d, want 1", n)
	}
}

/*─────────────────────────── users ───────────────────────────*/

func TestHandlePromoteAndDemote(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateStudent(ctx, "eleve@example.ma")
	users := userstore.New(e.db)

	rec := httptest.NewRecorder()
	e.h.HandlePromote(rec, e.post("/admin/users/promote", "", url.Values{"email": {"Eleve@Example.ma"}}))
	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashSuccess,
		fmt.Sprintf(MsgUserPromoted, "eleve@example.ma"))

	u, err := users.GetByEmail(ctx, "eleve@example.ma")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role after promote = %q, want admin", u.Role)
	}

	rec = httptest.NewRecorder()
	e.h.HandleDemote(rec, e.post("/admin/users/demote", "", url.Values{"email": {"eleve@example.ma"}}))
	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashSuccess,
		fmt.Sprintf(MsgUserDemoted, "eleve@example.ma"))

	u, _ = users.GetByEmail(ctx, "eleve@example.ma")
	if u.Role != models.RoleStudent {
		t.Errorf("role after demote = %q, want student", u.Role)
	}
}

func TestHandlePromote_UnknownUser(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandlePromote(rec, e.post("/admin/users/promote", "", url.Values{"email": {"personne@example.ma"}}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashError, account.MsgUserNotFound)
}

func TestHandleDemote_Self(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandleDemote(rec, e.post("/admin/users/demote", "", url.Values{"email": {e.admin.Email}}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashError, account.MsgSelfDemotion)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, _ := userstore.New(e.db).GetByEmail(ctx, e.admin.Email)
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin kept", u.Role)
	}
}

func TestHandlePromote_MissingEmail(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandlePromote(rec, e.post("/admin/users/promote", "", url.Values{}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashError, MsgEmailRequired)
}

func TestHandlePromote_InvalidEmail(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.HandlePromote(rec, e.post("/admin/users/promote", "", url.Values{"email": {"pas-un-email"}}))

	assertRedirectWithFlash(t, e.sm, rec, "/admin?tab=users", auth.FlashError, MsgEmailInvalid)
}

/*─────────────────────────── overview ───────────────────────────*/

type failingUsers struct{}

func (failingUsers) ListManaged(context.Context) ([]models.ManagedUser, error) {
	return nil, errors.New("boom")
}

type fixedUsers []models.ManagedUser

func (u fixedUsers) ListManaged(context.Context) ([]models.ManagedUser, error) { return u, nil }

type fixedChapters struct {
	ChapterStore
	list []models.Chapter
}

func (c fixedChapters) List(context.Context) ([]models.Chapter, error) { return c.list, nil }

type fixedLessons struct {
	LessonStore
	list []models.Lesson
}

func (l fixedLessons) List(context.Context) ([]models.Lesson, error) { return l.list, nil }

type fixedExercises struct {
	ExerciseStore
	list []models.Exercise
	err  error
}

func (e fixedExercises) List(context.Context) ([]models.Exercise, error) { return e.list, e.err }

func TestBuildOverview(t *testing.T) {
	ch := models.Chapter{ID: primitive.NewObjectID(), Title: "Analyse"}
	l1 := models.Lesson{ID: primitive.NewObjectID(), ChapterID: ch.ID, Title: "Limites"}
	l2 := models.Lesson{ID: primitive.NewObjectID(), ChapterID: ch.ID, Title: "Continuité", OrderIndex: 1}
	ex := models.Exercise{ID: primitive.NewObjectID(), LessonID: l1.ID, Title: "Ex 1", Difficulty: models.DifficultyHard}
	self := models.ManagedUser{ID: primitive.NewObjectID(), Email: "prof@example.ma", Role: models.RoleAdmin}
	other := models.ManagedUser{ID: primitive.NewObjectID(), Email: "eleve@example.ma", Role: models.RoleStudent}

	h := &Handler{
		Chapters:  fixedChapters{list: []models.Chapter{ch}},
		Lessons:   fixedLessons{list: []models.Lesson{l1, l2}},
		Exercises: fixedExercises{list: []models.Exercise{ex}},
		Users:     fixedUsers{self, other},
		Log:       zap.NewNop(),
	}

	data := h.buildOverview(context.Background(), viewdata.BaseVM{}, "users", self.ID.Hex())

	if data.Tab != TabUsers {
		t.Errorf("Tab = %q, want users", data.Tab)
	}
	if len(data.Chapters) != 1 || data.Chapters[0].LessonCount != 2 {
		t.Errorf("Chapters = %+v, want 1 with 2 lessons", data.Chapters)
	}
	if data.Lessons[0].ChapterTitle != "Analyse" {
		t.Errorf("lesson ChapterTitle = %q", data.Lessons[0].ChapterTitle)
	}
	if data.Exercises[0].LessonTitle != "Limites" || data.Exercises[0].DifficultyLabel != "Difficile" {
		t.Errorf("exercise row = %+v", data.Exercises[0])
	}
	if !data.Users[0].IsSelf || data.Users[1].IsSelf {
		t.Error("only the signed-in admin's row should be marked IsSelf")
	}
	if !data.Users[0].IsAdmin || data.Users[1].IsAdmin {
		t.Error("IsAdmin flags wrong")
	}
	counts := map[string]int{}
	for _, tab := range data.Tabs {
		counts[tab.ID] = tab.Count
	}
	if counts[TabChapters] != 1 || counts[TabLessons] != 2 || counts[TabExercises] != 1 || counts[TabUsers] != 2 {
		t.Errorf("tab counts = %v", counts)
	}
	if len(data.Flashes) != 0 {
		t.Errorf("Flashes = %v, want none", data.Flashes)
	}
}

func TestBuildOverview_PartialFailures(t *testing.T) {
	h := &Handler{
		Chapters:  fixedChapters{list: []models.Chapter{{ID: primitive.NewObjectID(), Title: "Analyse"}}},
		Lessons:   fixedLessons{},
		Exercises: fixedExercises{err: errors.New("boom")},
		Users:     failingUsers{},
		Log:       zap.NewNop(),
	}

	data := h.buildOverview(context.Background(), viewdata.BaseVM{}, "bogus", "")

	if data.Tab != TabChapters {
		t.Errorf("Tab = %q, want chapters for an unknown tab", data.Tab)
	}
	if len(data.Chapters) != 1 {
		t.Errorf("Chapters = %d, want 1", len(data.Chapters))
	}
	if len(data.Exercises) != 0 || len(data.Users) != 0 {
		t.Error("failed lists should render empty")
	}
	if len(data.Flashes) != 1 || data.Flashes[0].Message != MsgUsersLoadFailed {
		t.Errorf("Flashes = %v, want only %q", data.Flashes, MsgUsersLoadFailed)
	}
}

/*─────────────────────────── preview & routes ───────────────────────────*/

func TestHandlePreview(t *testing.T) {
	h := &Handler{Log: zap.NewNop(), ErrLog: uierrors.NewErrorLogger(zap.NewNop())}

	rec := httptest.NewRecorder()
	h.HandlePreview(rec, testutil.NewFormRequest("/admin/preview", url.Values{
		"content": {"**Théorème** : $a^2 + b^2 = c^2$"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>Théorème</strong>") {
		t.Errorf("body = %q, want rendered Markdown", body)
	}
	if !strings.Contains(body, `<span class="math-inline">a^2 + b^2 = c^2</span>`) {
		t.Errorf("body = %q, want inline formula", body)
	}
}

func TestRoutes_AdminOnly(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	h := &Handler{Log: zap.NewNop()}
	r := Routes(h, sm)

	tests := []struct {
		name string
		req  *http.Request
		loc  string
	}{
		{"anonymous", httptest.NewRequest(http.MethodGet, "/", nil), "/login"},
		{"student", testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.StudentUser()), "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Header.Set("Accept", "text/html")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, tt.req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			loc := rec.Header().Get("Location")
			if tt.loc == "/" && loc != "/" {
				t.Errorf("Location = %q, want /", loc)
			}
			if tt.loc == "/login" && !strings.HasPrefix(loc, "/login") {
				t.Errorf("Location = %q, want /login…", loc)
			}
		})
	}
}

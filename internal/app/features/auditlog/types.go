// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
)

// listItem is one row of the journal.
type listItem struct {
	Timestamp time.Time
	Category  string
	EventType string
	Label     string
	Actor     string // email of whoever acted, resolved from ActorID
	Target    string // email of the affected account, resolved from UserID
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// listData is the view model for the journal page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	Category  string
	EventType string
	StartDate string
	EndDate   string

	Categories []option
	EventTypes []option

	Page       int
	TotalPages int
	Total      int64
	RangeStart int
	RangeEnd   int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type option struct {
	Value string
	Label string
}

func allCategories() []option {
	return []option{
		{Value: audit.CategoryAuth, Label: "Authentification"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

var authEvents = []option{
	{audit.EventSignUp, "Inscription"},
	{audit.EventLoginSuccess, "Connexion réussie"},
	{audit.EventLoginFailedUserNotFound, "Connexion refusée (compte inconnu)"},
	{audit.EventLoginFailedWrongPassword, "Connexion refusée (mot de passe)"},
	{audit.EventLoginFailedUnconfirmed, "Connexion refusée (email non confirmé)"},
	{audit.EventLoginFailedRateLimit, "Connexion bloquée (trop de tentatives)"},
	{audit.EventLogout, "Déconnexion"},
	{audit.EventEmailConfirmed, "Email confirmé"},
	{audit.EventPasswordChanged, "Mot de passe modifié"},
}

var adminEvents = []option{
	{audit.EventRoleChanged, "Rôle modifié"},
	{audit.EventChapterCreated, "Chapitre créé"},
	{audit.EventChapterUpdated, "Chapitre modifié"},
	{audit.EventChapterDeleted, "Chapitre supprimé"},
	{audit.EventLessonCreated, "Leçon créée"},
	{audit.EventLessonUpdated, "Leçon modifiée"},
	{audit.EventLessonDeleted, "Leçon supprimée"},
	{audit.EventExerciseCreated, "Exercice créé"},
	{audit.EventExerciseUpdated, "Exercice modifié"},
	{audit.EventExerciseDeleted, "Exercice supprimé"},
}

// eventTypesForCategory lists the event types offered in the filter. An
// empty category offers every type; an unknown one offers none.
func eventTypesForCategory(category string) []option {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]option, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}

// eventLabel returns the French label for an event type, or the raw type
// when it is not known.
func eventLabel(eventType string) string {
	for _, o := range eventTypesForCategory("") {
		if o.Value == eventType {
			return o.Label
		}
	}
	return eventType
}

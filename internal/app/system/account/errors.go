package account

import (
	"errors"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/system/authutil"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
)

var (
	ErrDuplicateEmail     = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfDemotion       = errors.New("cannot remove own admin role")
	ErrRateLimited        = errors.New("too many attempts")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrNoPassword         = errors.New("account has no password")
)

// User-facing notices.
const (
	MsgSignedUp        = "Compte créé avec succès! Vérifiez votre email."
	MsgSignedUpActive  = "Compte créé avec succès!"
	MsgSignedIn        = "Connexion réussie!"
	MsgSignedOut       = "Déconnexion réussie!"
	MsgEmailConfirmed  = "Email confirmé. Vous pouvez maintenant vous connecter."
	MsgDuplicateEmail  = "Un compte avec cette adresse email existe déjà."
	MsgBadCredentials  = "Email ou mot de passe incorrect."
	MsgNotConfirmed    = "Veuillez confirmer votre adresse email avant de vous connecter."
	MsgInvalidToken    = "Lien de confirmation invalide ou expiré."
	MsgUserNotFound    = "Utilisateur non trouvé"
	MsgSelfDemotion    = "Vous ne pouvez pas retirer votre propre rôle d'administrateur."
	MsgRateLimited     = "Trop de tentatives. Veuillez réessayer plus tard."
	MsgPasswordCommon  = "Ce mot de passe est trop courant."
	MsgPasswordTooLong = "Le mot de passe est trop long."
	MsgGeneric         = "Une erreur est survenue. Veuillez réessayer."
	MsgWrongPassword   = "Mot de passe actuel incorrect."
	MsgNoPassword      = "Ce compte utilise la connexion Google et n'a pas de mot de passe."
)

// Localize maps an error from this package (or a raw error whose text
// identifies a known condition) to the French message shown to users.
func Localize(err error) string {
	if err == nil {
		return ""
	}

	var verrs inputval.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Message
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return MsgDuplicateEmail
	case errors.Is(err, ErrInvalidCredentials):
		return MsgBadCredentials
	case errors.Is(err, ErrEmailNotConfirmed):
		return MsgNotConfirmed
	case errors.Is(err, ErrInvalidToken):
		return MsgInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return MsgUserNotFound
	case errors.Is(err, ErrSelfDemotion):
		return MsgSelfDemotion
	case errors.Is(err, ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, ErrWrongPassword):
		return MsgWrongPassword
	case errors.Is(err, ErrNoPassword):
		return MsgNoPassword
	case errors.Is(err, authutil.ErrPasswordTooShort):
		return inputval.MsgPasswordShort
	case errors.Is(err, authutil.ErrPasswordTooLong):
		return MsgPasswordTooLong
	case errors.Is(err, authutil.ErrPasswordCommon):
		return MsgPasswordCommon
	}

	msg := strings.ToLower(err.Error())
	for _, m := range substringMessages {
		if strings.Contains(msg, m.substr) {
			return m.text
		}
	}
	return MsgGeneric
}

var substringMessages = []struct {
	substr string
	text   string
}{
	{"already registered", MsgDuplicateEmail},
	{"already exists", MsgDuplicateEmail},
	{"duplicate key", MsgDuplicateEmail},
	{"invalid login credentials", MsgBadCredentials},
	{"email not confirmed", MsgNotConfirmed},
	{"password should be at least", inputval.MsgPasswordShort},
	{"invalid email", inputval.MsgInvalidEmail},
	{"rate limit", MsgRateLimited},
	{"too many", MsgRateLimited},
}

// IsUserError reports whether err is an expected outcome of user input
// (bad credentials, invalid form, duplicate email...) rather than a
// failure that should be logged.
func IsUserError(err error) bool {
	var verrs inputval.Errors
	if errors.As(err, &verrs) {
		return true
	}
	for _, target := range []error{
		ErrDuplicateEmail, ErrInvalidCredentials, ErrEmailNotConfirmed,
		ErrInvalidToken, ErrUserNotFound, ErrSelfDemotion, ErrRateLimited,
		ErrWrongPassword, ErrNoPassword,
		authutil.ErrPasswordTooShort, authutil.ErrPasswordTooLong, authutil.ErrPasswordCommon,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

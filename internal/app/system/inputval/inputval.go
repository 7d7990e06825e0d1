// Package inputval validates form and API input with go-playground/validator
// and reports French messages.
package inputval

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag   = "notblank"
	difficultyTag = "difficulty"
)

// Messages used by the auth forms.
const (
	MsgInvalidEmail  = "Adresse email invalide."
	MsgPasswordShort = "Le mot de passe doit contenir au moins 6 caractères."
	MsgRequired      = "Ce champ est obligatoire."
	MsgBadDifficulty = "Difficulté invalide."
)

func init() {
	validate = validator.New()

	_fr := fr.New()
	uni := ut.New(_fr, _fr)
	translator, _ = uni.GetTranslator("fr")
	_ = fr_translations.RegisterDefaultTranslations(validate, translator)

	// Report the form/json field name instead of the Go struct field.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = validate.RegisterValidation(difficultyTag, func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "easy", "medium", "hard":
			return true
		}
		return false
	})

	// Overrides take the place of the default French wording for the
	// messages the forms show verbatim.
	override := func(tag string, fn validator.TranslationFunc) {
		_ = validate.RegisterTranslation(tag, translator, func(ut.Translator) error { return nil }, fn)
	}
	override("email", func(ut.Translator, validator.FieldError) string { return MsgInvalidEmail })
	override("required", func(ut.Translator, validator.FieldError) string { return MsgRequired })
	override(notBlankTag, func(ut.Translator, validator.FieldError) string { return MsgRequired })
	override(difficultyTag, func(ut.Translator, validator.FieldError) string { return MsgBadDifficulty })
	override("min", func(_ ut.Translator, fe validator.FieldError) string {
		if fe.Field() == "password" {
			return MsgPasswordShort
		}
		return fe.Field() + " doit contenir au moins " + fe.Param() + " caractères."
	})
}

// FieldError is one failed rule, translated.
type FieldError struct {
	Field   string
	Message string
}

// Errors is returned by Struct when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// For returns the message for field, or "".
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Struct validates v. It returns nil or an Errors value.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fe.Translate(translator)})
	}
	return out
}

// IsValidEmail reports whether s is a single bare email address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}

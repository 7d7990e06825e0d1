// Package authutil holds password rules and hashing.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes and newer x/crypto rejects it.
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {}, "password": {},
	"qwerty": {}, "azerty": {}, "abc123": {}, "iloveyou": {}, "letmein": {},
	"football": {}, "welcome": {}, "motdepasse": {}, "soleil": {}, "bonjour": {},
}

// ValidatePassword enforces length bounds and rejects very common passwords.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, ok := commonPasswords[strings.ToLower(pw)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes the rules for display next to password fields.
func PasswordRules() string {
	return fmt.Sprintf("Au moins %d caractères. Évitez les mots de passe trop courants.", MinPasswordLength)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

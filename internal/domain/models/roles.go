package models

import "strings"

// Roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Auth methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// NormalizeRole lower-cases and trims a role, falling back to student for
// anything that is not a known role.
func NormalizeRole(role string) string {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case RoleAdmin, RoleStudent:
		return r
	default:
		return RoleStudent
	}
}

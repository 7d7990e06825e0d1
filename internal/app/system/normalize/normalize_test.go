package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.MA", "mixed.case@domain.ma"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Amine Benali", "Amine Benali"},
		{"  Amine Benali  ", "Amine Benali"},
		{"", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"admin", "admin"},
		{"ADMIN", "admin"},
		{"  Student  ", "student"},
		{"moderator", "student"},
		{"", "student"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryParam(t *testing.T) {
	if got := QueryParam("  trimmed  "); got != "trimmed" {
		t.Errorf("QueryParam = %q, want %q", got, "trimmed")
	}
	if got := QueryParam("UPPER"); got != "UPPER" {
		t.Errorf("QueryParam = %q, want %q", got, "UPPER")
	}
}

func TestTab(t *testing.T) {
	allowed := []string{"chapters", "lessons", "exercises", "users"}
	tests := []struct {
		input string
		want  string
	}{
		{"lessons", "lessons"},
		{"  USERS ", "users"},
		{"", "chapters"},
		{"unknown", "chapters"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Tab(tt.input, allowed...)
			if got != tt.want {
				t.Errorf("Tab(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if got := Tab("x"); got != "" {
		t.Errorf("Tab with no allowed values = %q, want empty", got)
	}
}

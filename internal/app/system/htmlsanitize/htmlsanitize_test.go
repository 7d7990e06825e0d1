package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if result := htmlsanitize.Sanitize(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if result := htmlsanitize.Sanitize("Hello, World!"); result != "Hello, World!" {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected safe HTML preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	result := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if result := htmlsanitize.Sanitize(input); strings.Contains(result, "javascript:") {
		t.Errorf("expected javascript: href to be removed, got %q", result)
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	result := htmlsanitize.Sanitize(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(result, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", result)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ul><li>Item 1</li><li>Item 2</li></ul>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected list preserved, got %q", result)
	}
}

func TestSanitize_AllowsCodeBlocks(t *testing.T) {
	input := "<pre><code>f(x) = x^2</code></pre>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected code blocks preserved, got %q", result)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	result := htmlsanitize.Sanitize(`<p>Content</p><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(result, "iframe") {
		t.Error("expected iframe to be removed")
	}
	if !strings.Contains(result, "Content") {
		t.Error("expected safe content to be preserved")
	}
}

func TestSanitize_RemovesOnError(t *testing.T) {
	result := htmlsanitize.Sanitize(`<img src="x" onerror="alert('xss')">`)
	if strings.Contains(result, "onerror") {
		t.Error("expected onerror attribute to be removed")
	}
}

func TestSanitize_AllowsClassOnBlocks(t *testing.T) {
	result := htmlsanitize.Sanitize(`<div class="theorem">Théorème</div>`)
	if !strings.Contains(result, `class="theorem"`) {
		t.Errorf("expected class attribute preserved, got %q", result)
	}
}

// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Lesson markup may carry utility classes on block and table elements.
	p.AllowAttrs("class").
		Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).
		OnElements("p", "div", "span", "pre", "code", "table", "thead", "tbody", "tr", "th", "td", "blockquote")
	return p
}

// Sanitize strips anything unsafe from s, keeping formatting markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// Package mathtext renders lesson and exercise text: Markdown with inline
// $...$ and block $$...$$ formulas.
//
// Formulas are not typeset on the server. They are HTML-escaped and wrapped
// in <span class="math-inline"> / <div class="math-block"> for KaTeX to pick
// up in the browser. Text between formulas is rendered as Markdown and
// sanitized.
package mathtext

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/system/htmlsanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Kind of a Segment.
type Kind int

const (
	Text Kind = iota
	Inline
	Block
)

// Segment is a run of plain text or a single formula (delimiters removed).
type Segment struct {
	Kind  Kind
	Value string
}

// Split cuts s into text and formula segments. A \$ is a literal dollar.
// If any delimiter is left unclosed, or a formula is empty, the whole input
// comes back as one Text segment.
func Split(s string) []Segment {
	segs, _ := split(s)
	return segs
}

func split(s string) ([]Segment, bool) {
	var (
		out []Segment
		buf strings.Builder
	)
	raw := []Segment{{Kind: Text, Value: s}}

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, Segment{Kind: Text, Value: buf.String()})
			buf.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '$':
			buf.WriteByte('$')
			i += 2

		case strings.HasPrefix(s[i:], "$$"):
			end := strings.Index(s[i+2:], "$$")
			if end < 0 {
				return raw, false
			}
			expr := strings.TrimSpace(s[i+2 : i+2+end])
			if expr == "" {
				return raw, false
			}
			flush()
			out = append(out, Segment{Kind: Block, Value: expr})
			i += 2 + end + 2

		case s[i] == '$':
			end := strings.IndexByte(s[i+1:], '$')
			if end < 0 {
				return raw, false
			}
			expr := s[i+1 : i+1+end]
			if strings.TrimSpace(expr) == "" {
				return raw, false
			}
			flush()
			out = append(out, Segment{Kind: Inline, Value: expr})
			i += 1 + end + 1

		default:
			buf.WriteByte(s[i])
			i++
		}
	}
	flush()
	return out, true
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// Placeholders are framed by private-use runes, which Markdown leaves alone
// and which are stripped from the input so no text can forge one.
const (
	phOpen  = "\uE000"
	phClose = "\uE001"
)

var stripPlaceholderRunes = strings.NewReplacer(phOpen, "", phClose, "")

func placeholder(n int) string { return fmt.Sprintf("%s%d%s", phOpen, n, phClose) }

// Render turns marked-up text into safe HTML.
func Render(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	segs, ok := split(s)
	if !ok {
		return malformed(s)
	}

	var (
		src      strings.Builder
		formulas []Segment
	)
	for _, seg := range segs {
		switch seg.Kind {
		case Text:
			src.WriteString(stripPlaceholderRunes.Replace(seg.Value))
		case Inline:
			src.WriteString(placeholder(len(formulas)))
			formulas = append(formulas, seg)
		case Block:
			src.WriteString("\n\n" + placeholder(len(formulas)) + "\n\n")
			formulas = append(formulas, seg)
		}
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src.String()), &buf); err != nil {
		return malformed(s)
	}
	out := htmlsanitize.Sanitize(buf.String())

	for n := len(formulas) - 1; n >= 0; n-- {
		f := formulas[n]
		ph := placeholder(n)
		esc := html.EscapeString(f.Value)
		if f.Kind == Block {
			div := `<div class="math-block">` + esc + `</div>`
			out = strings.Replace(out, "<p>"+ph+"</p>", div, 1)
			out = strings.Replace(out, ph, div, 1)
			continue
		}
		out = strings.Replace(out, ph, `<span class="math-inline">`+esc+`</span>`, 1)
	}
	return template.HTML(strings.TrimSpace(out))
}

// malformed shows the source untouched, escaped, keeping line breaks.
func malformed(s string) template.HTML {
	return template.HTML(`<p class="whitespace-pre-wrap">` + html.EscapeString(s) + `</p>`)
}

// Plain returns s with formulas kept as their source and Markdown left as
// is. Used for previews in lists.
func Plain(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && len([]rune(s)) > max {
		r := []rune(s)
		return string(r[:max]) + "…"
	}
	return s
}

package query

import (
	"fmt"
	"strings"

	"github.com/jongo-go/jongo/pkg/constants"
)

type segmentKind uint8

const (
	literalSegment segmentKind = iota
	markerSegment
)

type segment struct {
	kind segmentKind
	text string
}

// Template is a parsed query text: literal spans interleaved with positional markers.
// A Template is immutable and may be bound any number of times concurrently.
type Template struct {
	text     string
	segments []segment
	markers  int
}

// MalformedTemplateError reports a template whose quoted span or regular expression never closes.
type MalformedTemplateError struct {
	Template string
	Offset   int
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("%s: unterminated literal at offset %d in %q", constants.ErrMalformedTemplate, e.Offset, e.Template)
}

func (e *MalformedTemplateError) Unwrap() error {
	return constants.ErrMalformedTemplate
}

// Parse splits text into literal and marker segments.
// A '#' inside a single or double quoted span, or inside a /regex/ in value position, is
// literal text. Quotes and regular expressions honor backslash escapes.
// A blank text parses as the empty query.
func Parse(text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		text = constants.EmptyQuery
	}

	t := &Template{text: text}

	var (
		quote     byte
		quoteAt   int
		escaped   bool
		spanStart int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
			quoteAt = i
		case '/':
			if valueStart(text[:i]) {
				quote = c
				quoteAt = i
			}
		case constants.Placeholder:
			if i > spanStart {
				t.segments = append(t.segments, segment{kind: literalSegment, text: text[spanStart:i]})
			}
			t.segments = append(t.segments, segment{kind: markerSegment})
			t.markers++
			spanStart = i + 1
		}
	}

	if quote != 0 {
		return nil, &MalformedTemplateError{Template: text, Offset: quoteAt}
	}
	if spanStart < len(text) {
		t.segments = append(t.segments, segment{kind: literalSegment, text: text[spanStart:]})
	}

	return t, nil
}

// valueStart reports whether the text preceding a position ends where a value may begin.
func valueStart(before string) bool {
	before = strings.TrimRight(before, " \t\r\n")
	if before == "" {
		return true
	}
	switch before[len(before)-1] {
	case ':', ',', '[', '(':
		return true
	}
	return false
}

// MustParse is like Parse but panics on a malformed template.
func MustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Text returns the template as written.
func (t *Template) Text() string {
	return t.text
}

// Markers returns the number of positional markers.
func (t *Template) Markers() int {
	return t.markers
}

func (t *Template) String() string {
	return t.text
}

// Package shell rewrites mongo shell query syntax into strict Extended JSON.
//
// The shell accepts unquoted keys, single quoted strings, constructor calls such as
// ObjectId('...') and /regex/flags literals. Normalize turns all of these into the
// Extended JSON equivalents the driver's parser understands, leaving strict input untouched.
package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SyntaxError locates the first construct Normalize could not rewrite.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999Z0700",
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04",
	"2006-01-02",
}

type lexer struct {
	src string
	pos int
	out strings.Builder
}

// Normalize returns src with shell syntax rewritten to strict Extended JSON.
// Anything it does not recognize is copied as is for the JSON parser to diagnose.
func Normalize(src string) (string, error) {
	l := &lexer{src: src}
	l.out.Grow(len(src) + len(src)/4)

	for l.pos < len(l.src) {
		if err := l.step(); err != nil {
			return "", err
		}
	}
	return l.out.String(), nil
}

func (l *lexer) step() error {
	c := l.src[l.pos]
	switch {
	case c == '"' || c == '\'':
		s, err := l.readString()
		if err != nil {
			return err
		}
		l.out.WriteString(s)
	case c == '/' && l.valuePosition():
		return l.regex()
	case c == '-' || isDigit(c):
		start := l.pos
		for l.pos < len(l.src) && isNumberChar(l.src[l.pos]) {
			l.pos++
		}
		l.emitWord(l.src[start:l.pos])
	case isWordStart(c):
		start := l.pos
		for l.pos < len(l.src) && isWordChar(l.src[l.pos]) {
			l.pos++
		}
		return l.word(start, l.src[start:l.pos])
	default:
		l.out.WriteByte(c)
		l.pos++
	}
	return nil
}

// emitWord writes a bare token, quoting it when it is used as a key.
func (l *lexer) emitWord(w string) {
	if l.peek() == ':' {
		l.out.WriteString(quote(w))
		return
	}
	l.out.WriteString(w)
}

func (l *lexer) word(start int, w string) error {
	if l.peek() == ':' {
		l.out.WriteString(quote(w))
		return nil
	}

	switch w {
	case "true", "false", "null":
		l.out.WriteString(w)
		return nil
	case "new":
		l.skipSpace()
		return nil
	}

	if l.peek() != '(' {
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected identifier %q", w)}
	}
	return l.constructor(start, w)
}

func (l *lexer) constructor(start int, name string) error {
	l.skipSpace()
	l.pos++ // (
	l.skipSpace()

	var (
		arg    string
		hasArg bool
	)
	if l.pos < len(l.src) && l.src[l.pos] != ')' {
		a, err := l.readArg()
		if err != nil {
			return err
		}
		arg, hasArg = a, true
		l.skipSpace()
	}
	if l.pos >= len(l.src) || l.src[l.pos] != ')' {
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("unterminated %s(", name)}
	}
	l.pos++

	switch name {
	case "ObjectId":
		if !hasArg {
			return &SyntaxError{Offset: start, Msg: "ObjectId requires a hex string"}
		}
		l.wrap("$oid", arg)
	case "ISODate", "Date":
		millis := time.Now().UnixMilli()
		if hasArg {
			t, err := parseDate(arg)
			if err != nil {
				return &SyntaxError{Offset: start, Msg: err.Error()}
			}
			millis = t.UnixMilli()
		}
		l.out.WriteString(`{"$date":{"$numberLong":"` + strconv.FormatInt(millis, 10) + `"}}`)
	case "NumberLong":
		l.wrap("$numberLong", arg)
	case "NumberInt":
		l.wrap("$numberInt", arg)
	case "NumberDecimal":
		l.wrap("$numberDecimal", arg)
	default:
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("unknown constructor %s", name)}
	}
	return nil
}

func (l *lexer) wrap(key, value string) {
	l.out.WriteString(`{"` + key + `":`)
	l.out.WriteString(quote(value))
	l.out.WriteByte('}')
}

// readArg reads a quoted or bare constructor argument and returns its unquoted value.
func (l *lexer) readArg() (string, error) {
	if c := l.src[l.pos]; c == '"' || c == '\'' {
		s, err := l.readString()
		if err != nil {
			return "", err
		}
		var v string
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return "", &SyntaxError{Offset: l.pos, Msg: "invalid string argument"}
		}
		return v, nil
	}

	start := l.pos
	for l.pos < len(l.src) && isNumberChar(l.src[l.pos]) {
		l.pos++
	}
	if start == l.pos {
		return "", &SyntaxError{Offset: start, Msg: "invalid constructor argument"}
	}
	return l.src[start:l.pos], nil
}

// readString consumes a quoted string and returns it as a double quoted JSON string.
func (l *lexer) readString() (string, error) {
	start := l.pos
	q := l.src[l.pos]
	l.pos++

	var sb strings.Builder
	sb.WriteByte('"')
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			next := l.src[l.pos+1]
			if next == '\'' {
				sb.WriteByte('\'')
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
			l.pos += 2
			continue
		case c == q:
			l.pos++
			sb.WriteByte('"')
			return sb.String(), nil
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
		l.pos++
	}
	return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func (l *lexer) regex() error {
	start := l.pos
	l.pos++

	var pattern strings.Builder
	for {
		if l.pos >= len(l.src) {
			return &SyntaxError{Offset: start, Msg: "unterminated regular expression"}
		}
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			if l.src[l.pos+1] != '/' {
				pattern.WriteByte(c)
			}
			pattern.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		l.pos++
		if c == '/' {
			break
		}
		pattern.WriteByte(c)
	}

	flagStart := l.pos
	for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		l.pos++
	}
	flags := []byte(l.src[flagStart:l.pos])
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	l.out.WriteString(`{"$regularExpression":{"pattern":`)
	l.out.WriteString(quote(pattern.String()))
	l.out.WriteString(`,"options":"` + string(flags) + `"}}`)
	return nil
}

// valuePosition reports whether the last significant output byte starts a value.
func (l *lexer) valuePosition() bool {
	s := strings.TrimRight(l.out.String(), " \t\r\n")
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case ':', ',', '[', '(':
		return true
	}
	return false
}

func (l *lexer) peek() byte {
	for i := l.pos; i < len(l.src); i++ {
		if !isSpace(l.src[i]) {
			return l.src[i]
		}
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordStart(c byte) bool {
	return isLetter(c) || c == '$' || c == '_' || c >= 0x80
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '.'
}

func isNumberChar(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

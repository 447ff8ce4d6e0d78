// Package lexer tokenizes protobuf source text. It is a thin collaborator
// (spec.md §1): the checker never sees a token stream, only the AST the
// parser builds from it.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/protoxlang/protox/report"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	IntLiteral
	FloatLiteral
	StringLiteral
	Symbol // any other single byte, e.g. punctuation such as { } ( ) [ ] < > ; , . = -
)

// Token is one lexical unit with its source span.
type Token struct {
	Kind  TokenKind
	Text  string
	Span  report.Span
	// IntValue/FloatValue/StringValue hold the decoded literal payload.
	IntValue    uint64
	FloatValue  float64
	StringValue []byte
}

// Lexer produces a stream of Tokens from source bytes. Comments (// line,
// /* block */) are skipped; the reference implementation attaches them to
// SourceCodeInfo, which this port treats as out of scope beyond the
// coarse --include-source-info flag (SPEC_FULL.md §7).
type Lexer struct {
	src []byte
	pos int
	errs []report.Diagnostic
}

// New returns a Lexer over source.
func New(source []byte) *Lexer {
	return &Lexer{src: source}
}

// Errors returns any lexical diagnostics accumulated so far.
func (l *Lexer) Errors() []report.Diagnostic { return l.errs }

func (l *Lexer) errorf(span report.Span, kind report.Kind, format string, args ...any) {
	l.errs = append(l.errs, report.Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)})
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) byteAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.byteAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.byteAt(1) == '*':
			l.pos += 2
			for l.pos < len(l.src) && !(l.src[l.pos] == '*' && l.byteAt(1) == '/') {
				l.pos++
			}
			if l.pos < len(l.src) {
				l.pos += 2
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Next returns the next token, or a Token with Kind EOF at end of input.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Span: report.Span{Start: uint32(start), End: uint32(start)}}
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentContinue(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[start:l.pos])
		return Token{Kind: Ident, Text: text, Span: l.span(start)}

	case isDigit(c):
		return l.lexNumber(start)

	case c == '"' || c == '\'':
		return l.lexString(start, c)

	default:
		l.pos++
		return Token{Kind: Symbol, Text: string(c), Span: l.span(start)}
	}
}

func (l *Lexer) span(start int) report.Span {
	return report.Span{Start: uint32(start), End: uint32(l.pos)}
}

func (l *Lexer) lexNumber(start int) Token {
	isFloat := false
	if l.src[l.pos] == '0' && (l.byteAt(1) == 'x' || l.byteAt(1) == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && isHex(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[start:l.pos])
		v := parseHex(text[2:])
		return Token{Kind: IntLiteral, Text: text, Span: l.span(start), IntValue: v}
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.byteAt(1)) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		isFloat = true
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	text := string(l.src[start:l.pos])
	if isFloat {
		return Token{Kind: FloatLiteral, Text: text, Span: l.span(start), FloatValue: parseFloat(text)}
	}
	return Token{Kind: IntLiteral, Text: text, Span: l.span(start), IntValue: parseUint(text)}
}

func (l *Lexer) lexString(start int, quote byte) Token {
	l.pos++ // opening quote
	var buf strings.Builder
	for l.pos < len(l.src) && l.src[l.pos] != quote {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			buf.WriteByte(unescape(l.src[l.pos+1]))
			l.pos += 2
			continue
		}
		buf.WriteByte(l.src[l.pos])
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.errorf(l.span(start), report.UnterminatedLiteral, "unterminated string literal")
	} else {
		l.pos++ // closing quote
	}
	return Token{Kind: StringLiteral, Text: buf.String(), Span: l.span(start), StringValue: []byte(buf.String())}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\\':
		return '\\'
	case '"':
		return '"'
	case '\'':
		return '\''
	default:
		return c
	}
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHex(s string) uint64 {
	v, _ := strconv.ParseUint(s, 16, 64)
	return v
}

func parseUint(s string) uint64 {
	if len(s) > 1 && s[0] == '0' {
		// Octal literal, protobuf-style (e.g. 0755); fall back to decimal
		// on parse failure so malformed input doesn't panic the lexer.
		if v, err := strconv.ParseUint(s, 8, 64); err == nil {
			return v
		}
	}
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

package condition

import (
	"fmt"
	"strings"
)

// ParseErrorKind classifies condition parse failures.
type ParseErrorKind int

const (
	// UnexpectedToken is any token the grammar does not allow here.
	UnexpectedToken ParseErrorKind = iota
	// UnterminatedString is a quoted string with no closing quote.
	UnterminatedString
	// UnknownFunction is a call to a function the language lacks.
	UnknownFunction
	// BadArgument is an argument that fails parse-time validation
	// (bad comparator, malformed hex, out-of-range number).
	BadArgument
)

// ParseError reports a malformed condition string with the byte
// position of the failure.
type ParseError struct {
	Kind ParseErrorKind
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition parse error at %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokComparator
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex tokenizes a condition string. String literals are single-quoted
// (double quotes accepted as the original evaluator does) with `\\`
// and `\'` escapes recognized inside them.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == '\'' || c == '"':
			text, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, text, i})
			i = next
		case c == '=' || c == '!' || c == '<' || c == '>':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
			}
			op := src[start:i]
			if op == "=" || op == "!" {
				return nil, &ParseError{Kind: UnexpectedToken, Pos: start, Msg: fmt.Sprintf("invalid operator %q", op)}
			}
			toks = append(toks, token{tokComparator, op, start})
		case isIdentChar(c):
			start := i
			for i < len(src) && isIdentChar(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		default:
			return nil, &ParseError{Kind: UnexpectedToken, Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

// lexString scans a quoted string starting at src[start] and returns
// the unescaped contents and the index past the closing quote.
func lexString(src string, start int) (string, int, error) {
	delim := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			next := src[i+1]
			if next == '\\' || next == delim {
				b.WriteByte(next)
				i += 2
				continue
			}
			// Any other backslash is literal: masterlist paths use
			// forward slashes, but regex patterns keep their escapes.
			b.WriteByte(c)
			i++
			continue
		}
		if c == delim {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, &ParseError{Kind: UnterminatedString, Pos: start, Msg: "unterminated string literal"}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

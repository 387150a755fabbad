package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a condition string into its expression tree.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok, "end of condition")
	}
	return expr, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return token{}, p.unexpected(tok, what)
	}
	return tok, nil
}

func (p *parser) unexpected(tok token, want string) error {
	got := tok.text
	if tok.kind == tokEOF {
		got = "end of input"
	}
	return &ParseError{
		Kind: UnexpectedToken,
		Pos:  tok.pos,
		Msg:  fmt.Sprintf("expected %s, got %q", want, got),
	}
}

// parseOr handles `and_expr ( "or" and_expr )*`, flattening nested
// disjunctions so the canonical form is stable.
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	var xs []Expr
	appendOperand(&xs, left, true)
	for p.peek().kind == tokIdent && p.peek().text == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		appendOperand(&xs, right, true)
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	return Or{Xs: xs}, nil
}

// parseAnd handles `unary ( "and" unary )*`.
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	var xs []Expr
	appendOperand(&xs, left, false)
	for p.peek().kind == tokIdent && p.peek().text == "and" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		appendOperand(&xs, right, false)
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	return And{Xs: xs}, nil
}

// appendOperand splices same-kind composites into the operand list so
// `(a and b) and c` and `a and b and c` build the same tree.
func appendOperand(xs *[]Expr, e Expr, or bool) {
	if or {
		if inner, ok := e.(Or); ok {
			*xs = append(*xs, inner.Xs...)
			return
		}
	} else {
		if inner, ok := e.(And); ok {
			*xs = append(*xs, inner.Xs...)
			return
		}
	}
	*xs = append(*xs, e)
}

func (p *parser) parseUnary() (Expr, error) {
	if tok := p.peek(); tok.kind == tokIdent && tok.text == "not" {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return expr, nil
	case tokIdent:
		return p.parseCall(tok)
	default:
		return nil, p.unexpected(tok, "function call or parenthesized expression")
	}
}

// parseCall parses a function call whose name token has been consumed.
// Argument shapes are validated here so malformed arguments become
// parse errors rather than evaluation surprises.
func (p *parser) parseCall(name token) (Expr, error) {
	if _, err := p.expect(tokLParen, `"(" after function name`); err != nil {
		return nil, err
	}

	var expr Expr
	var err error
	switch name.text {
	case "file":
		var path string
		if path, err = p.stringArg(); err == nil {
			expr = FileExists{Path: path}
		}
	case "readable":
		var path string
		if path, err = p.stringArg(); err == nil {
			expr = Readable{Path: path}
		}
	case "many":
		var path string
		if path, err = p.stringArg(); err == nil {
			expr = Many{Path: path}
		}
	case "active":
		var pname string
		if pname, err = p.stringArg(); err == nil {
			expr = ActivePlugin{Name: pname}
		}
	case "many_active":
		var pname string
		if pname, err = p.stringArg(); err == nil {
			expr = ManyActive{Name: pname}
		}
	case "is_master":
		var pname string
		if pname, err = p.stringArg(); err == nil {
			expr = IsMaster{Name: pname}
		}
	case "file_size":
		expr, err = p.parseFileSize()
	case "checksum":
		expr, err = p.parseChecksum()
	case "version", "product_version":
		expr, err = p.parseVersion(name.text)
	case "active_has_formid":
		expr, err = p.parseActiveHasFormID()
	default:
		return nil, &ParseError{
			Kind: UnknownFunction,
			Pos:  name.pos,
			Msg:  fmt.Sprintf("unknown function %q", name.text),
		}
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, `")" after arguments`); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) stringArg() (string, error) {
	tok, err := p.expect(tokString, "string argument")
	if err != nil {
		return "", err
	}
	return tok.text, nil
}

func (p *parser) comma() error {
	_, err := p.expect(tokComma, `","`)
	return err
}

func (p *parser) parseFileSize() (Expr, error) {
	path, err := p.stringArg()
	if err != nil {
		return nil, err
	}
	if err := p.comma(); err != nil {
		return nil, err
	}
	tok, err := p.expect(tokIdent, "file size in bytes")
	if err != nil {
		return nil, err
	}
	size, convErr := strconv.ParseInt(tok.text, 10, 64)
	if convErr != nil || size < 0 {
		return nil, &ParseError{Kind: BadArgument, Pos: tok.pos, Msg: fmt.Sprintf("invalid file size %q", tok.text)}
	}
	return FileSize{Path: path, Size: size}, nil
}

func (p *parser) parseChecksum() (Expr, error) {
	path, err := p.stringArg()
	if err != nil {
		return nil, err
	}
	if err := p.comma(); err != nil {
		return nil, err
	}
	crc, err := p.hexArg("checksum")
	if err != nil {
		return nil, err
	}
	return Checksum{Path: path, CRC: crc}, nil
}

func (p *parser) parseVersion(fn string) (Expr, error) {
	path, err := p.stringArg()
	if err != nil {
		return nil, err
	}
	if err := p.comma(); err != nil {
		return nil, err
	}
	want, err := p.stringArg()
	if err != nil {
		return nil, err
	}
	if err := p.comma(); err != nil {
		return nil, err
	}
	tok, err := p.expect(tokComparator, "comparison operator")
	if err != nil {
		return nil, err
	}
	op, ok := parseComparator(tok.text)
	if !ok {
		return nil, &ParseError{Kind: BadArgument, Pos: tok.pos, Msg: fmt.Sprintf("invalid comparator %q", tok.text)}
	}
	if fn == "product_version" {
		return ProductVersion{Path: path, Want: want, Op: op}, nil
	}
	return Version{Path: path, Want: want, Op: op}, nil
}

func (p *parser) parseActiveHasFormID() (Expr, error) {
	name, err := p.stringArg()
	if err != nil {
		return nil, err
	}
	if err := p.comma(); err != nil {
		return nil, err
	}
	id, err := p.hexArg("FormID")
	if err != nil {
		return nil, err
	}
	return ActiveHasFormID{Name: name, FormID: id}, nil
}

// hexArg parses a bare hexadecimal argument. Masterlists write
// checksums as plain hex digits; an optional 0x prefix is accepted.
func (p *parser) hexArg(what string) (uint32, error) {
	tok, err := p.expect(tokIdent, what+" in hexadecimal")
	if err != nil {
		return 0, err
	}
	text := strings.TrimPrefix(strings.TrimPrefix(tok.text, "0x"), "0X")
	v, convErr := strconv.ParseUint(text, 16, 32)
	if convErr != nil {
		return 0, &ParseError{Kind: BadArgument, Pos: tok.pos, Msg: fmt.Sprintf("invalid %s %q", what, tok.text)}
	}
	return uint32(v), nil
}

func parseComparator(s string) (Comparator, bool) {
	switch Comparator(s) {
	case CmpEq, CmpNe, CmpLt, CmpLe, CmpGt, CmpGe:
		return Comparator(s), true
	}
	return "", false
}

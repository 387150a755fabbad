package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	expr, err := Parse(src)
	require.NoError(t, err, "parse %q", src)
	return expr
}

func TestParseSimpleFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want Expr
	}{
		{`file('Foo.esp')`, FileExists{Path: "Foo.esp"}},
		{`readable('textures/landscape')`, Readable{Path: "textures/landscape"}},
		{`many('Bashed Patch.*\.esp')`, Many{Path: `Bashed Patch.*\.esp`}},
		{`active('Foo.esp')`, ActivePlugin{Name: "Foo.esp"}},
		{`many_active('.*Patch.*')`, ManyActive{Name: ".*Patch.*"}},
		{`is_master('Skyrim.esm')`, IsMaster{Name: "Skyrim.esm"}},
		{`file_size('Foo.esp', 1024)`, FileSize{Path: "Foo.esp", Size: 1024}},
		{`checksum('Foo.esp', DEADBEEF)`, Checksum{Path: "Foo.esp", CRC: 0xDEADBEEF}},
		{`checksum('Foo.esp', 0xDEADBEEF)`, Checksum{Path: "Foo.esp", CRC: 0xDEADBEEF}},
		{`version('Foo.esp', '1.2', >=)`, Version{Path: "Foo.esp", Want: "1.2", Op: CmpGe}},
		{`product_version('SKSE/skse64_loader.exe', '2.0.17', ==)`,
			ProductVersion{Path: "SKSE/skse64_loader.exe", Want: "2.0.17", Op: CmpEq}},
		{`active_has_formid('Foo.esp', D62)`, ActiveHasFormID{Name: "Foo.esp", FormID: 0xD62}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mustParse(t, tt.src), tt.src)
	}
}

func TestParseStringEscapes(t *testing.T) {
	// Escaped backslash collapses to a single one.
	expr := mustParse(t, `file('C:\\Data\\Foo.esp')`)
	assert.Equal(t, FileExists{Path: `C:\Data\Foo.esp`}, expr)

	// Escaped quote inside a single-quoted string.
	expr = mustParse(t, `file('it\'s.esp')`)
	assert.Equal(t, FileExists{Path: "it's.esp"}, expr)

	// Regex escapes that are not string escapes pass through.
	expr = mustParse(t, `active('Unofficial.*Patch\.esp')`)
	assert.Equal(t, ActivePlugin{Name: `Unofficial.*Patch\.esp`}, expr)

	// Double-quoted strings are accepted too.
	expr = mustParse(t, `file("Foo's Mod.esp")`)
	assert.Equal(t, FileExists{Path: "Foo's Mod.esp"}, expr)
}

func TestParseBooleanStructure(t *testing.T) {
	a := FileExists{Path: "a"}
	b := FileExists{Path: "b"}
	c := FileExists{Path: "c"}

	assert.Equal(t, And{Xs: []Expr{a, b}}, mustParse(t, `file('a') and file('b')`))
	assert.Equal(t, Or{Xs: []Expr{a, b}}, mustParse(t, `file('a') or file('b')`))
	assert.Equal(t, Not{X: a}, mustParse(t, `not file('a')`))

	// and binds tighter than or
	assert.Equal(t,
		Or{Xs: []Expr{a, And{Xs: []Expr{b, c}}}},
		mustParse(t, `file('a') or file('b') and file('c')`))

	// parens override precedence
	assert.Equal(t,
		And{Xs: []Expr{Or{Xs: []Expr{a, b}}, c}},
		mustParse(t, `(file('a') or file('b')) and file('c')`))

	// not binds tighter than and
	assert.Equal(t,
		And{Xs: []Expr{Not{X: a}, b}},
		mustParse(t, `not file('a') and file('b')`))

	// not over a composite needs parens
	assert.Equal(t,
		Not{X: And{Xs: []Expr{a, b}}},
		mustParse(t, `not (file('a') and file('b'))`))

	// redundant parens flatten to the same tree
	assert.Equal(t,
		mustParse(t, `file('a') and file('b') and file('c')`),
		mustParse(t, `(file('a') and file('b')) and file('c')`))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ParseErrorKind
	}{
		{`file('a.esp'`, UnexpectedToken},
		{`file 'a.esp')`, UnexpectedToken},
		{`file('a.esp') and`, UnexpectedToken},
		{`and file('a.esp')`, UnknownFunction},
		{`file('a.esp') file('b.esp')`, UnexpectedToken},
		{`file('a.esp`, UnterminatedString},
		{`frobnicate('a.esp')`, UnknownFunction},
		{`version('a.esp', '1.0', ~=)`, UnexpectedToken},
		{`version('a.esp', '1.0', equals)`, UnexpectedToken},
		{`checksum('a.esp', XYZ)`, BadArgument},
		{`file_size('a.esp', 'big')`, UnexpectedToken},
		{`file_size('a.esp', 12cd)`, BadArgument},
		{``, UnexpectedToken},
		{`()`, UnexpectedToken},
	}
	for _, tt := range tests {
		_, err := Parse(tt.src)
		require.Error(t, err, "parse %q", tt.src)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "parse %q", tt.src)
		assert.Equal(t, tt.kind, parseErr.Kind, "parse %q: %v", tt.src, err)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(`file('a.esp') and $`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 18, parseErr.Pos)

	_, err = Parse(`file('unterminated`)
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 5, parseErr.Pos)
}

func TestCanonicalRoundTrip(t *testing.T) {
	sources := []string{
		`file('Foo.esp')`,
		`file('C:\\Data\\Foo.esp')`,
		`file('it\'s.esp')`,
		`checksum('Foo.esp', DEADBEEF)`,
		`file_size('Foo.esp', 4096)`,
		`version('Foo.esp', '1.2.3', <)`,
		`product_version('f4se_loader.exe', '0.6.21', >=)`,
		`active('/^Unofficial.*Patch\.esp$/i')`,
		`active_has_formid('Foo.esp', D62)`,
		`not file('a') and (file('b') or not file('c'))`,
		`file('a') or file('b') and file('c') or not file('d')`,
		`many('DLC.*\.esp') and many_active('DLC.*\.esp')`,
		`not (file('a') or file('b'))`,
		`not not file('a')`,
	}
	for _, src := range sources {
		first := mustParse(t, src)
		canonical := first.String()
		second := mustParse(t, canonical)
		assert.Equal(t, first, second, "round trip of %q via %q", src, canonical)
		// The canonical form is a fixed point.
		assert.Equal(t, canonical, second.String(), src)
	}
}

// Package condition parses and evaluates LOOT masterlist condition
// strings: small boolean expressions over file existence, checksums,
// versions and active-plugin queries that gate whether a metadata
// entry applies to an installed load order.
package condition

import (
	"fmt"
	"strings"
)

// Comparator is a version comparison operator token.
type Comparator string

const (
	CmpEq Comparator = "=="
	CmpNe Comparator = "!="
	CmpLt Comparator = "<"
	CmpLe Comparator = "<="
	CmpGt Comparator = ">"
	CmpGe Comparator = ">="
)

// Expr is a node of a parsed condition. Expressions are immutable
// after parsing; String returns the canonical source text, and parsing
// that text again yields an identical tree.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// FileExists is `file(path)`: true if the path (or, for a pattern, any
// match in its directory) exists.
type FileExists struct {
	Path string
}

// FileSize is `file_size(path, size)`: true if the file exists with
// exactly the given size in bytes.
type FileSize struct {
	Path string
	Size int64
}

// Readable is `readable(path)`: true if the path exists and is
// readable.
type Readable struct {
	Path string
}

// Checksum is `checksum(path, crc)`: true if the file exists and its
// CRC-32 matches.
type Checksum struct {
	Path string
	CRC  uint32
}

// Version is `version(path, version, comparator)`.
type Version struct {
	Path string
	Want string
	Op   Comparator
}

// ProductVersion is `product_version(path, version, comparator)`,
// comparing the product version of an installed executable.
type ProductVersion struct {
	Path string
	Want string
	Op   Comparator
}

// ActivePlugin is `active(name)`: true if a plugin matching the name
// (or pattern) is active.
type ActivePlugin struct {
	Name string
}

// ManyActive is `many_active(pattern)`: true if two or more active
// plugins match.
type ManyActive struct {
	Name string
}

// Many is `many(pattern)`: true if two or more files match.
type Many struct {
	Path string
}

// IsMaster is `is_master(name)`: true if the plugin is ESM-flagged.
type IsMaster struct {
	Name string
}

// ActiveHasFormID is `active_has_formid(name, formid)`: true if a
// matching plugin is active and its header defines the FormID.
type ActiveHasFormID struct {
	Name   string
	FormID uint32
}

// Not negates its operand.
type Not struct {
	X Expr
}

// And is a left-to-right short-circuiting conjunction.
type And struct {
	Xs []Expr
}

// Or is a left-to-right short-circuiting disjunction.
type Or struct {
	Xs []Expr
}

func (FileExists) isExpr()      {}
func (FileSize) isExpr()        {}
func (Readable) isExpr()        {}
func (Checksum) isExpr()        {}
func (Version) isExpr()         {}
func (ProductVersion) isExpr()  {}
func (ActivePlugin) isExpr()    {}
func (ManyActive) isExpr()      {}
func (Many) isExpr()            {}
func (IsMaster) isExpr()        {}
func (ActiveHasFormID) isExpr() {}
func (Not) isExpr()             {}
func (And) isExpr()             {}
func (Or) isExpr()              {}

// quote renders a string argument in canonical single-quoted form.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (e FileExists) String() string { return fmt.Sprintf("file(%s)", quote(e.Path)) }
func (e FileSize) String() string   { return fmt.Sprintf("file_size(%s, %d)", quote(e.Path), e.Size) }
func (e Readable) String() string   { return fmt.Sprintf("readable(%s)", quote(e.Path)) }
func (e Checksum) String() string   { return fmt.Sprintf("checksum(%s, %X)", quote(e.Path), e.CRC) }
func (e Version) String() string {
	return fmt.Sprintf("version(%s, %s, %s)", quote(e.Path), quote(e.Want), e.Op)
}
func (e ProductVersion) String() string {
	return fmt.Sprintf("product_version(%s, %s, %s)", quote(e.Path), quote(e.Want), e.Op)
}
func (e ActivePlugin) String() string { return fmt.Sprintf("active(%s)", quote(e.Name)) }
func (e ManyActive) String() string   { return fmt.Sprintf("many_active(%s)", quote(e.Name)) }
func (e Many) String() string         { return fmt.Sprintf("many(%s)", quote(e.Path)) }
func (e IsMaster) String() string     { return fmt.Sprintf("is_master(%s)", quote(e.Name)) }
func (e ActiveHasFormID) String() string {
	return fmt.Sprintf("active_has_formid(%s, %X)", quote(e.Name), e.FormID)
}

func (e Not) String() string {
	switch e.X.(type) {
	case And, Or:
		return fmt.Sprintf("not (%s)", e.X)
	default:
		return fmt.Sprintf("not %s", e.X)
	}
}

func (e And) String() string {
	parts := make([]string, len(e.Xs))
	for i, x := range e.Xs {
		if _, ok := x.(Or); ok {
			parts[i] = fmt.Sprintf("(%s)", x)
		} else {
			parts[i] = x.String()
		}
	}
	return strings.Join(parts, " and ")
}

func (e Or) String() string {
	parts := make([]string, len(e.Xs))
	for i, x := range e.Xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, " or ")
}

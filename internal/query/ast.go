// Package query implements the boolean query language of §4.1: a
// lexer, a recursive-descent parser, a compiler that folds the parse
// tree into a compact executable predicate, and the predicate
// evaluator itself.
//
// Grammar (infix, left-associative, standard precedence):
//
//	expr   := or
//	or     := and ( "OR" and )*
//	and    := not ( "AND"? not )*        ; implicit AND when adjacent
//	not    := "NOT" not | atom
//	atom   := "(" expr ")" | regex | quoted | bare
//	quoted := '"' ... '"' | '\'' ... '\''
//	regex  := "/" pattern "/" flags*      ; flags ⊂ {i, m, s}
//	bare   := run of non-whitespace, non-special characters
//
// AND/OR/NOT are recognised case-insensitively only when they appear as
// a standalone token; a bare literal containing them as a substring
// (e.g. "android") is never split. Implicit AND between adjacent atoms
// is accepted, resolving one of spec.md's stated Open Questions.
package query

import "github.com/coregx/coregex"

// rawNode is the uncompiled parse tree produced by parse().
type rawNode interface {
	isRawNode()
}

type rawLiteral struct {
	text   string
	offset int
}

type rawRegex struct {
	pattern string
	flags   string
	offset  int
}

type rawAnd struct{ children []rawNode }
type rawOr struct{ children []rawNode }
type rawNot struct{ child rawNode }

func (rawLiteral) isRawNode() {}
func (rawRegex) isRawNode()   {}
func (rawAnd) isRawNode()     {}
func (rawOr) isRawNode()      {}
func (rawNot) isRawNode()     {}

// NodeKind discriminates the compiled expression tree (§3 "Compiled query").
type NodeKind int

const (
	KindMatchAll NodeKind = iota
	KindLiteral
	KindRegex
	KindAnd
	KindOr
	KindNot
)

// Expr is one node of the compiled predicate tree. Leaves are
// pre-normalised at compile time: literals are lower-cased when
// case-insensitive, regexes are compiled once.
type Expr struct {
	Kind NodeKind

	// Literal
	LiteralBytes     []byte
	CaseSensitive    bool
	NeedsUnicodeFold bool
	UnicodeRegex     *coregex.Regex

	// Regex
	Regex *coregex.Regex

	// And / Or
	Children []*Expr

	// Not
	Child *Expr
}

// Query is a fully compiled query: the predicate tree plus the leaves
// needed for cheap pre-decode rejection (§4.4.2 step c).
type Query struct {
	Source    string
	Root      *Expr
	mandatory [][]byte
}

// MandatoryLiterals returns the literal leaves that must be present in
// any satisfying text — every leaf not nested under Or or Not. An empty
// result means no cheap pre-decode rejection is possible for this
// query (e.g. a query built entirely of Or/Not/Regex).
func (q *Query) MandatoryLiterals() [][]byte {
	return q.mandatory
}

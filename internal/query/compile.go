package query

import (
	"regexp"
	"strings"

	"github.com/coregx/coregex"
)

// Compile lexes, parses and compiles a query string into an executable
// predicate (§4.1). Compilation is deterministic: Compile(q) always
// produces structurally identical trees for the same q.
func Compile(query string) (*Query, error) {
	raw, err := parse(query)
	if err != nil {
		return nil, err
	}
	root, err := compileNode(raw)
	if err != nil {
		return nil, err
	}
	q := &Query{Source: query, Root: root}
	q.mandatory = collectMandatory(root)
	return q, nil
}

func compileNode(n rawNode) (*Expr, error) {
	switch v := n.(type) {
	case rawAnd:
		return compileConjunction(v.children)
	case rawOr:
		return compileDisjunction(v.children)
	case rawNot:
		child, err := compileNode(v.child)
		if err != nil {
			return nil, err
		}
		if child.Kind == KindNot {
			// Double Not cancels (§4.1 semantic folding).
			return child.Child, nil
		}
		return &Expr{Kind: KindNot, Child: child}, nil
	case rawLiteral:
		return compileLiteral(v)
	case rawRegex:
		return compileRegex(v)
	default:
		return nil, parseErrorf(0, "internal: unknown node type")
	}
}

func compileConjunction(children []rawNode) (*Expr, error) {
	if len(children) == 0 {
		// Empty And matches every record (§4.1: empty query = match-all).
		return &Expr{Kind: KindMatchAll}, nil
	}
	var flat []*Expr
	for _, c := range children {
		ce, err := compileNode(c)
		if err != nil {
			return nil, err
		}
		if ce.Kind == KindAnd {
			flat = append(flat, ce.Children...)
		} else {
			flat = append(flat, ce)
		}
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	return &Expr{Kind: KindAnd, Children: flat}, nil
}

func compileDisjunction(children []rawNode) (*Expr, error) {
	var flat []*Expr
	for _, c := range children {
		ce, err := compileNode(c)
		if err != nil {
			return nil, err
		}
		if ce.Kind == KindOr {
			flat = append(flat, ce.Children...)
		} else {
			flat = append(flat, ce)
		}
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	return &Expr{Kind: KindOr, Children: flat}, nil
}

func compileLiteral(v rawLiteral) (*Expr, error) {
	e := &Expr{Kind: KindLiteral, CaseSensitive: false}
	if containsNonASCII(v.text) {
		// Non-ASCII literals fold via the regex engine's own Unicode
		// case-folding table rather than a hand-rolled table (§4.1).
		pattern := "(?i)" + regexp.QuoteMeta(v.text)
		re, err := coregex.Compile(pattern)
		if err != nil {
			return nil, parseErrorf(v.offset, "invalid literal: %v", err)
		}
		e.NeedsUnicodeFold = true
		e.UnicodeRegex = re
		e.LiteralBytes = []byte(v.text)
		return e, nil
	}
	e.LiteralBytes = asciiLower([]byte(v.text))
	return e, nil
}

func compileRegex(v rawRegex) (*Expr, error) {
	pattern := v.pattern
	if v.flags != "" {
		pattern = "(?" + normaliseFlags(v.flags) + ")" + pattern
	}
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, parseErrorf(v.offset, "invalid regex /%s/: %v", v.pattern, err)
	}
	return &Expr{Kind: KindRegex, Regex: re}, nil
}

// normaliseFlags deduplicates and sorts flag characters into the
// canonical i<m<s order expected by the inline-flag-group syntax.
func normaliseFlags(flags string) string {
	var b strings.Builder
	for _, f := range []byte{'i', 'm', 's'} {
		if strings.IndexByte(flags, f) >= 0 {
			b.WriteByte(f)
		}
	}
	return b.String()
}

func containsNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

func asciiLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

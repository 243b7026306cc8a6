package query

import "bytes"

// Eval evaluates the compiled predicate against a Record's canonical
// text (§4.1 "Evaluation"). It is a pure function: And/Or short-circuit
// and no node allocates during evaluation.
func Eval(e *Expr, text string) bool {
	switch e.Kind {
	case KindMatchAll:
		return true
	case KindLiteral:
		if e.CaseSensitive {
			return bytes.Contains([]byte(text), e.LiteralBytes)
		}
		if e.NeedsUnicodeFold {
			return e.UnicodeRegex.MatchString(text)
		}
		return asciiFoldContains(text, e.LiteralBytes)
	case KindRegex:
		return e.Regex.MatchString(text)
	case KindAnd:
		for _, c := range e.Children {
			if !Eval(c, text) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range e.Children {
			if Eval(c, text) {
				return true
			}
		}
		return false
	case KindNot:
		return !Eval(e.Child, text)
	default:
		return false
	}
}

// asciiFoldContains reports whether needleLower (already ASCII
// lower-cased) occurs in haystack under ASCII case folding, without
// allocating a lowered copy of haystack.
func asciiFoldContains(haystack string, needleLower []byte) bool {
	n := len(needleLower)
	if n == 0 {
		return true
	}
	h := len(haystack)
	if h < n {
		return false
	}
	for i := 0; i+n <= h; i++ {
		matched := true
		for j := 0; j < n; j++ {
			c := haystack[i+j]
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != needleLower[j] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// MatchesRawLine reports whether the query's mandatory literal set is
// satisfied by a raw (undecoded) line, using the same ASCII-folded
// substring search as Eval. An empty mandatory set always matches,
// since no cheap rejection is possible.
func (q *Query) MatchesRawLine(line []byte) bool {
	if len(q.mandatory) == 0 {
		return true
	}
	s := string(line)
	for _, lit := range q.mandatory {
		if !asciiFoldContains(s, lit) {
			return false
		}
	}
	return true
}

package query

// collectMandatory walks the compiled tree and gathers literal leaves
// that must be present in any satisfying text: roughly, all literal
// leaves not under an Or or a Not (§4.4.2 step c). A literal that needs
// full Unicode folding is never added — an ASCII-folded byte scan of
// the raw line could produce a false negative for it, and the
// mandatory set exists purely as a safe, optional pre-decode rejection.
// For the same reason a literal containing a byte that JSON escapes (a
// double quote, a backslash or a control character) is never added.
func collectMandatory(root *Expr) [][]byte {
	var out [][]byte
	walkMandatory(root, true, &out)
	return out
}

func walkMandatory(e *Expr, mandatory bool, out *[][]byte) {
	if !mandatory {
		return
	}
	switch e.Kind {
	case KindLiteral:
		if e.NeedsUnicodeFold || len(e.LiteralBytes) == 0 {
			return
		}
		for _, c := range e.LiteralBytes {
			if c == '"' || c == '\\' || c < 0x20 {
				return
			}
		}
		*out = append(*out, e.LiteralBytes)
	case KindAnd:
		for _, c := range e.Children {
			walkMandatory(c, true, out)
		}
	case KindOr:
		for _, c := range e.Children {
			walkMandatory(c, false, out)
		}
	case KindNot:
		walkMandatory(e.Child, false, out)
	}
}

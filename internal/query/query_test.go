package query

import "testing"

func mustCompile(t *testing.T, q string) *Query {
	t.Helper()
	compiled, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile(%q) returned error: %v", q, err)
	}
	return compiled
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	q := mustCompile(t, "")
	if q.Root.Kind != KindMatchAll {
		t.Fatalf("Root.Kind = %v, want KindMatchAll", q.Root.Kind)
	}
	if !Eval(q.Root, "anything at all") {
		t.Fatalf("empty query should match every text")
	}
}

func TestLiteralCaseInsensitive(t *testing.T) {
	q := mustCompile(t, "error")
	if !Eval(q.Root, "an ERROR occurred") {
		t.Fatalf("expected case-insensitive literal match")
	}
	if Eval(q.Root, "nothing here") {
		t.Fatalf("unexpected match")
	}
}

func TestQuotedPhrasePreservesSpaces(t *testing.T) {
	q := mustCompile(t, `"hello world"`)
	if !Eval(q.Root, "say Hello World now") {
		t.Fatalf("expected quoted phrase to match case-insensitively")
	}
	if Eval(q.Root, "hello, world") {
		t.Fatalf("comma-separated text should not match the exact phrase")
	}
}

func TestImplicitAnd(t *testing.T) {
	q := mustCompile(t, "Hello world")
	if !Eval(q.Root, "well, hello there world") {
		t.Fatalf("expected implicit AND to require both terms")
	}
	if Eval(q.Root, "hello only") {
		t.Fatalf("should not match when only one term present")
	}
}

func TestExplicitAndOrNot(t *testing.T) {
	q := mustCompile(t, "(warning OR error) AND NOT timeout")
	cases := []struct {
		text string
		want bool
	}{
		{"a warning appeared", true},
		{"an error occurred", true},
		{"warning: timeout exceeded", false},
		{"all good", false},
	}
	for _, c := range cases {
		if got := Eval(q.Root, c.text); got != c.want {
			t.Errorf("Eval(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestBareLiteralNotSplitOnKeywordSubstring(t *testing.T) {
	q := mustCompile(t, "android")
	if !Eval(q.Root, "I love android phones") {
		t.Fatalf("expected bare literal containing AND substring to match whole")
	}
}

func TestRegexFlags(t *testing.T) {
	noFlag := mustCompile(t, `/Error.*\d+/`)
	if !Eval(noFlag.Root, "Error: 42") {
		t.Fatalf("expected match for Error: 42")
	}
	if Eval(noFlag.Root, "ERROR 7") {
		t.Fatalf("did not expect case-insensitive match without /i/")
	}

	withI := mustCompile(t, `/Error.*\d+/i`)
	if !Eval(withI.Root, "ERROR 7") {
		t.Fatalf("expected /i/ flag to allow case-insensitive match")
	}
}

func TestUnknownRegexFlagIsParseError(t *testing.T) {
	_, err := Compile(`/foo/z`)
	if err == nil {
		t.Fatalf("expected parse error for unknown flag")
	}
	var pe *ParseError
	if !isParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestUnterminatedQuoteIsParseError(t *testing.T) {
	_, err := Compile(`"unterminated`)
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestUnbalancedParensIsParseError(t *testing.T) {
	if _, err := Compile(`(foo`); err == nil {
		t.Fatalf("expected parse error for unbalanced parens")
	}
	if _, err := Compile(`foo)`); err == nil {
		t.Fatalf("expected parse error for stray close paren")
	}
}

func TestEmptyGroupIsParseError(t *testing.T) {
	if _, err := Compile(`()`); err == nil {
		t.Fatalf("expected parse error for empty group")
	}
}

func TestDanglingOperatorIsParseError(t *testing.T) {
	if _, err := Compile(`foo AND`); err == nil {
		t.Fatalf("expected parse error for trailing operator")
	}
	if _, err := Compile(`AND foo`); err == nil {
		t.Fatalf("expected parse error for leading operator")
	}
}

func TestParseIsDeterministic(t *testing.T) {
	const q = `(warning OR error) AND NOT /timeout\d+/i`
	a := mustCompile(t, q)
	b := mustCompile(t, q)
	if len(a.MandatoryLiterals()) != len(b.MandatoryLiterals()) {
		t.Fatalf("mandatory literal sets differ between identical compiles")
	}
}

func TestDeMorgan(t *testing.T) {
	a := mustCompile(t, "NOT (error AND warning)")
	b := mustCompile(t, "(NOT error) OR (NOT warning)")
	texts := []string{
		"error warning both",
		"just error",
		"just warning",
		"neither",
	}
	for _, text := range texts {
		if Eval(a.Root, text) != Eval(b.Root, text) {
			t.Errorf("De Morgan mismatch on %q", text)
		}
	}
}

func TestMandatoryLiteralSet(t *testing.T) {
	q := mustCompile(t, "error AND (slow OR fast)")
	lits := q.MandatoryLiterals()
	if len(lits) != 1 || string(lits[0]) != "error" {
		t.Fatalf("mandatory literals = %v, want just [error]", litsAsStrings(lits))
	}
}

func TestMandatoryLiteralSetUnderOrIsEmpty(t *testing.T) {
	q := mustCompile(t, "error OR warning")
	if len(q.MandatoryLiterals()) != 0 {
		t.Fatalf("expected no mandatory literals under OR")
	}
}

func TestMandatoryLiteralSetUnderNotIsEmpty(t *testing.T) {
	q := mustCompile(t, "NOT error")
	if len(q.MandatoryLiterals()) != 0 {
		t.Fatalf("expected no mandatory literals under NOT")
	}
}

func TestLiteralMatchesRegexEquivalent(t *testing.T) {
	// §8 property 7: literal x matches r iff /x/i does, for literals
	// that are also valid regex fragments.
	lit := mustCompile(t, "failed")
	re := mustCompile(t, `/failed/i`)
	texts := []string{"it FAILED badly", "all good", "Failed once"}
	for _, text := range texts {
		if Eval(lit.Root, text) != Eval(re.Root, text) {
			t.Errorf("literal/regex mismatch on %q", text)
		}
	}
}

func TestDoubleNegationCancels(t *testing.T) {
	q := mustCompile(t, "NOT NOT error")
	if q.Root.Kind != KindLiteral {
		t.Fatalf("expected double negation to fold away, got Kind=%v", q.Root.Kind)
	}
}

func litsAsStrings(lits [][]byte) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = string(l)
	}
	return out
}

func isParseError(err error, out **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*out = pe
	}
	return ok
}

package expr

import "testing"

func TestLexer_Tokenize(t *testing.T) {
	toks, err := newLexer(`1 == "a" && true || !false >= 2.5`).tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := make([]kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	want := []kind{tNumber, tEq, tString, tAnd, tTrue, tOr, tNot, tFalse, tGte, tNumber, tEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got kind %d, want %d", i, kinds[i], want[i])
		}
	}
}

func TestLexer_NegativeNumber(t *testing.T) {
	toks, err := newLexer("-5").tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].kind != tNumber || toks[0].num != -5 {
		t.Errorf("got %+v, want number -5", toks[0])
	}
}

func TestLexer_EscapedString(t *testing.T) {
	toks, err := newLexer(`"a\"b"`).tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].text != `a"b` {
		t.Errorf("got %q, want %q", toks[0].text, `a"b`)
	}
}

func TestLexer_RejectsAssignment(t *testing.T) {
	if _, err := newLexer("x = 1").tokenize(); err == nil {
		t.Errorf("expected error for '='")
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	if _, err := newLexer(`"abc`).tokenize(); err == nil {
		t.Errorf("expected error for unterminated string")
	}
}

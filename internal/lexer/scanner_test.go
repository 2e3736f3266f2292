package lexer

import "testing"

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, source string, want []Kind) {
	t.Helper()
	got := kinds(Scan(source))
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", source, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan(%q)[%d] = %v, want %v", source, i, got[i], want[i])
		}
	}
}

func TestScanKeywordsAndIdentifier(t *testing.T) {
	assertKinds(t, "def Main", []Kind{KwDef, Identifier})
}

func TestScanFloatSuffixedOperators(t *testing.T) {
	assertKinds(t, "a +f b -f c", []Kind{Identifier, FloatPlus, Identifier, FloatMinus, Identifier})
}

func TestScanCompoundAssignmentOperators(t *testing.T) {
	src := "a += b -= c *= d /= e %= f |= g &= h ^= i >>= j <<= k"
	want := []Kind{
		Identifier, AssignAdd, Identifier, AssignSubtract, Identifier, AssignMultiply,
		Identifier, AssignDivide, Identifier, AssignModulo, Identifier, AssignBinaryOr,
		Identifier, AssignBinaryAnd, Identifier, AssignXor, Identifier, AssignRightShift,
		Identifier, AssignLeftShift, Identifier,
	}
	assertKinds(t, src, want)
}

func TestScanIntLiteralPrefixes(t *testing.T) {
	toks := Scan("0x1F 0o17 0b101 42")
	for i, want := range []string{"0x1F", "0o17", "0b101", "42"} {
		if toks[i].Kind != Int {
			t.Fatalf("token %d: kind = %v, want Int", i, toks[i].Kind)
		}
		if toks[i].Text != want {
			t.Errorf("token %d: text = %q, want %q", i, toks[i].Text, want)
		}
	}
}

func TestScanFloatLiteral(t *testing.T) {
	toks := Scan("3.14")
	if len(toks) < 1 || toks[0].Kind != Float {
		t.Fatalf("Scan(3.14) = %v, want a Float token first", kinds(toks))
	}
}

func TestScanString(t *testing.T) {
	toks := Scan(`"hello world"`)
	if toks[0].Kind != Str {
		t.Fatalf("kind = %v, want Str", toks[0].Kind)
	}
	if toks[0].Text != `"hello world"` {
		t.Errorf("text = %q, want %q", toks[0].Text, `"hello world"`)
	}
}

func TestScanNamespacedIdentifier(t *testing.T) {
	toks := Scan("Foo::Bar")
	if toks[0].Kind != Identifier || toks[0].Text != "Foo::Bar" {
		t.Errorf("got %+v, want a single namespaced identifier", toks[0])
	}
}

func TestScanCJKIdentifierPunctuation(t *testing.T) {
	toks := Scan("ｲﾍﾞﾝﾄ・発生？")
	if toks[0].Kind != Identifier {
		t.Fatalf("kind = %v, want Identifier for a CJK-punctuated identifier", toks[0].Kind)
	}
}

func TestScanStructAndStaticAreKeywords(t *testing.T) {
	assertKinds(t, "struct static", []Kind{KwStruct, KwStatic})
}

func TestScanPunctuation(t *testing.T) {
	assertKinds(t, "(){}[];:,.->@",
		[]Kind{LeftParen, RightParen, LeftBrace, RightBrace, LeftBracket, RightBracket,
			Semicolon, Colon, Comma, Dot, Arrow, AtSign})
}

func TestScanIncrementVsPlus(t *testing.T) {
	assertKinds(t, "a++ + b", []Kind{Identifier, Increment, Plus, Identifier})
}

func TestScanEmptySourceProducesNoTokens(t *testing.T) {
	assertKinds(t, "", nil)
}

func TestScanLineCommentIsSkipped(t *testing.T) {
	assertKinds(t, "a // trailing comment\nb", []Kind{Identifier, Identifier})
}

func TestScanUnterminatedStringIsInvalid(t *testing.T) {
	assertKinds(t, `"unterminated`, []Kind{Invalid})
}

func TestScanUnknownByteIsInvalid(t *testing.T) {
	assertKinds(t, "a $ b", []Kind{Identifier, Invalid, Identifier})
}

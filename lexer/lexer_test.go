package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(src string) []Token {
	l := New([]byte(src))
	var toks []Token
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexIdentsAndSymbols(t *testing.T) {
	toks := collect(`message Foo { optional int32 x = 1; }`)
	require.Equal(t, "message", toks[0].Text)
	require.Equal(t, Ident, toks[0].Kind)
	require.Equal(t, "{", toks[2].Text)
	require.Equal(t, Symbol, toks[2].Kind)
}

func TestLexStringLiteral(t *testing.T) {
	toks := collect(`"hello\nworld"`)
	require.Len(t, toks, 1)
	require.Equal(t, StringLiteral, toks[0].Kind)
	require.Equal(t, "hello\nworld", string(toks[0].StringValue))
}

func TestLexNumbers(t *testing.T) {
	toks := collect(`1 3.14 0x1F`)
	require.Equal(t, uint64(1), toks[0].IntValue)
	require.Equal(t, FloatLiteral, toks[1].Kind)
	require.InDelta(t, 3.14, toks[1].FloatValue, 0.0001)
	require.Equal(t, uint64(31), toks[2].IntValue)
}

func TestLexSkipsComments(t *testing.T) {
	toks := collect("// a comment\nmessage /* inline */ Foo {}")
	require.Equal(t, "message", toks[0].Text)
	require.Equal(t, "Foo", toks[1].Text)
}

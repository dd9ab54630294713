package hostcmd

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"mixed", `foo "bar baz" {01 02} qux`, []string{"foo", "bar baz", "{01 02}", "qux"}},
		{"doubled quote", `"a""b"`, []string{`a"b`}},
		{"empty quoted", `R:GETNAME 12 ""`, []string{"R:GETNAME", "12", ""}},
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"invoke reply", "R:INVOKE 12 100.000 Load.GetLevel", []string{"R:INVOKE", "12", "100.000", "Load.GetLevel"}},
		{"non-greedy braces", "{01} {02 03}", []string{"{01}", "{02 03}"}},
		{"unterminated quote", `"abc`, []string{`"abc`}},
		{"tabs", "a\tb", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestEncodeParams(t *testing.T) {
	tests := []struct {
		name        string
		forceQuotes bool
		params      []any
		want        string
	}{
		{"mixed", false, []any{"hello world", 1, true, 3.5}, `"hello world" 1 1 3.5`},
		{"plain string", false, []any{"hello"}, "hello"},
		{"forced quotes", true, []any{"hello", 2}, `"hello" 2`},
		{"internal quote", false, []any{`say "hi"`}, `"say ""hi"""`},
		{"false", false, []any{false}, "0"},
		{"unsigned", false, []any{uint8(7), uint64(9)}, "7 9"},
		{"negative", false, []any{int64(-3)}, "-3"},
		{"float32", false, []any{float32(0.5)}, "0.5"},
		{"whole float", false, []any{100.0}, "100"},
		{"decimal", false, []any{decimal.RequireFromString("12.345")}, "12.345"},
		{"none", false, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeParams(tt.forceQuotes, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeParamsInvalidType(t *testing.T) {
	_, err := EncodeParams(false, "ok", []byte{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	assert.Contains(t, err.Error(), "[]uint8")

	_, err = EncodeParams(false, nil)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestTokenizeEncodeRoundTrip(t *testing.T) {
	inputs := []string{"plain", "with space", `with "quote"`, ""}
	for _, in := range inputs {
		encoded, err := EncodeParams(true, in)
		require.NoError(t, err)
		tokens := Tokenize(encoded)
		require.Len(t, tokens, 1, "input %q", in)
		assert.Equal(t, in, tokens[0])
	}
}

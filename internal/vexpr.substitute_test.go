package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituter_ParenDelimiters(t *testing.T) {
	d := Delimiters{Start: "$", TypeDelim: "(", End: ")"}
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"nested escape", "$escape($escape(LayoutElement))", "LayoutElement"},
		{"nested escape long key", "$escape($escape(EEPersistenceManager))", "EEPersistenceManager"},
		{"broken outer type", "$es$cape$escape(EEPersistenceManager))", "$es$capeEEPersistenceManager)"},
		{"missing inner delimiter", "$escape($escapeEEP$ersistenceManager))", "$escapeEEP$ersistenceManager)"},
		{"extra closing", "$escape($escape(EEPersistenceManager)))", "EEPersistenceManager)"},
		{"unbalanced inner", "$escape($escape(EEPersistenceManager())", "$escape(EEPersistenceManager()"},
		{
			"two nested groups",
			"$escape($escape($escape(EEPersistenceManager()))==$escape(EEPersistenceManager()))",
			"EEPersistenceManager()==EEPersistenceManager()",
		},
	}

	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.ResolveWith(context.Background(), Env{}, tt.input, d)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestSubstituter_Resolve(t *testing.T) {
	host := newTestHost().
		set(TypeAttribute, "name", "Bob").
		set(TypeAttribute, "ptr", "name").
		set(TypeAttribute, "count", 21).
		set(TypeSession, "user", "alice").
		set(TypeApplication, "title", "Shop").
		set(TypePageSession, "tab", "cart").
		set(TypeRequestParameter, "q", "shoes")

	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"plain text", "hello world", "hello world"},
		{"default type", "${name}", "Bob"},
		{"attribute", "Hi $attribute{name}!", "Hi Bob!"},
		{"session", "$session{user}", "alice"},
		{"application", "$application{title}", "Shop"},
		{"page session", "$pageSession{tab}", "cart"},
		{"request parameter", "$requestParameter{q}", "shoes"},
		{"missing is nil", "${nothing}", nil},
		{"missing inside text is empty", "[${nothing}]", "[]"},
		{"nested lookup", "$attribute{$attribute{ptr}}", "Bob"},
		{"native int", "$int{42}", 42},
		{"native bool", "$boolean{TRUE}", true},
		{"bool no", "$boolean{yes}", false},
		{"native attribute", "${count}", 21},
		{"int in text", "n=$int{4}", "n=4"},
		{"eval", "$eval{true&false}", false},
		{"eval with lookup", "$eval{equals(${name},Bob)}", true},
		{"escape leaves text", "a \\$escape{x} $escape{y}", "a $escape{x} y"},
		{"escaped dollar kept", "cost \\${name}", "cost ${name}"},
		{"no type delimiter", "cost $5", "cost $5"},
		{"unterminated", "$attribute{name", "$attribute{name"},
		{"foreign markup", "a $<b>{c}", "a $<b>{c}"},
		{"foreign markup percent", "$%{x} ${name}", "$%{x} Bob"},
		{"expr", "$expr{count * 2}", 42},
		{"expr scope", "$expr{session.user}", "alice"},
	}

	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	env := Env{Host: host}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Resolve(context.Background(), env, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestSubstituter_UnknownType(t *testing.T) {
	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)

	_, err := s.Resolve(context.Background(), Env{}, "x $atribute{name}")
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrMsgInvalidType, resErr.Message)
	assert.Equal(t, "atribute", resErr.Type)
	assert.Contains(t, resErr.Suggestions, TypeAttribute)
	assert.LessOrEqual(t, len(resErr.Suggestions), DefaultMaxSuggestions)
}

func TestSubstituter_SourceErrors(t *testing.T) {
	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	require.NoError(t, s.Sources().Register(SourceFunc{
		TypeName: "broken",
		Fn: func(context.Context, Env, string) (any, error) {
			return nil, errors.New("backend down")
		},
	}))

	_, err := s.Resolve(context.Background(), Env{}, "$int{abc}")
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrMsgInvalidInt, resErr.Message)

	_, err = s.Resolve(context.Background(), Env{}, "$broken{k}")
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrMsgSourceFailed, resErr.Message)
	assert.Equal(t, "broken", resErr.Type)
	assert.EqualError(t, errors.Unwrap(resErr), "backend down")

	_, err = s.Resolve(context.Background(), Env{}, "$eval{empty}")
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, ErrMsgMissingLeftParen, syntaxErr.Message)
}

func TestSubstituter_Params(t *testing.T) {
	tests := []struct {
		name     string
		host     *testHost
		input    string
		expected any
	}{
		{
			name:     "replace",
			host:     newTestHost().param("who", "Ann"),
			input:    "Hi #{who}!",
			expected: "Hi Ann!",
		},
		{
			name:     "whole string keeps type",
			host:     newTestHost().param("count", 5),
			input:    "#{count}",
			expected: 5,
		},
		{
			name:     "unknown param untouched",
			host:     newTestHost().param("who", "Ann"),
			input:    "#{other} #{who}",
			expected: "#{other} Ann",
		},
		{
			name:     "no params",
			host:     newTestHost(),
			input:    "#{who}",
			expected: "#{who}",
		},
		{
			name:     "default used",
			host:     newTestHost().param("who", "Ann"),
			input:    "#{missing,none}",
			expected: "none",
		},
		{
			name:     "default ignored without params",
			host:     newTestHost(),
			input:    "#{missing,none}",
			expected: "#{missing,none}",
		},
		{
			name:     "escaped token next to param",
			host:     newTestHost().param("p", "v").set(TypeAttribute, "x", "LEAK"),
			input:    "\\$attribute{x} #{p}",
			expected: "$attribute{x} v",
		},
		{
			name:     "escaped token inside param value",
			host:     newTestHost().param("p", "\\${x}").set(TypeAttribute, "x", "LEAK"),
			input:    "[#{p}]",
			expected: "[${x}]",
		},
		{
			name:     "default ignored when set",
			host:     newTestHost().param("who", "Ann"),
			input:    "[#{ who , nobody }]",
			expected: "[Ann]",
		},
		{
			name:     "merge expression",
			host:     newTestHost().param("base", "#{user}"),
			input:    "#{base.name}",
			expected: "#{user.name}",
		},
		{
			name:     "merge plain value",
			host:     newTestHost().param("base", "order"),
			input:    "x #{base.total>10} y",
			expected: "x #{order.total>10} y",
		},
		{
			name:     "param value is substituted",
			host:     newTestHost().param("who", "${name}").set(TypeAttribute, "name", "Bob"),
			input:    "Hi #{who}",
			expected: "Hi Bob",
		},
		{
			name:     "substitution result is merged",
			host:     newTestHost().param("who", "Ann").set(TypeAttribute, "greeting", "Hello #{who}"),
			input:    "${greeting}",
			expected: "Hello Ann",
		},
		{
			name:     "too short to be a param",
			host:     newTestHost().param("a", "A"),
			input:    "x#{a",
			expected: "x#{a",
		},
	}

	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Resolve(context.Background(), Env{Host: tt.host}, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestSubstituter_UnterminatedParamMerge(t *testing.T) {
	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	host := newTestHost().param("base", "order")

	_, err := s.Resolve(context.Background(), Env{Host: host}, "#{base.name")
	require.Error(t, err)
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, ErrMsgUnterminatedParam, syntaxErr.Message)
}

func TestSubstituter_MaxDepth(t *testing.T) {
	config := DefaultSubstituterConfig()
	config.MaxDepth = 5
	s := newTestSubstituter(t, config, nil)
	host := newTestHost().param("loop", "#{loop}")

	_, err := s.Resolve(context.Background(), Env{Host: host}, "#{loop}")
	require.Error(t, err)
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrMsgMaxDepthExceeded, resErr.Message)
}

func TestSubstituter_ResolveValue(t *testing.T) {
	s := newTestSubstituter(t, DefaultSubstituterConfig(), nil)
	env := Env{Host: newTestHost().set(TypeAttribute, "a", "A")}

	input := []string{"${a}", "plain"}
	v, err := s.ResolveValue(context.Background(), env, input)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "plain"}, v)
	assert.Equal(t, []string{"${a}", "plain"}, input)

	nested := []any{"${a}", 3, []any{"x${a}"}}
	v, err = s.ResolveValue(context.Background(), env, nested)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", 3, []any{"xA"}}, v)
	assert.Equal(t, "${a}", nested[0])

	v, err = s.ResolveValue(context.Background(), env, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSubstituter_InvalidConfigFallsBack(t *testing.T) {
	s := newTestSubstituter(t, SubstituterConfig{Delimiters: Delimiters{Start: "$"}, MaxDepth: -1, MaxSuggestions: -1}, nil)
	assert.Equal(t, DefaultDelimiters(), s.Delimiters())

	v, err := s.ResolveWith(context.Background(), Env{}, "$escape{x}", Delimiters{})
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestFindOpenParam(t *testing.T) {
	assert.Equal(t, 0, findOpenParam("#{a}", 0))
	assert.Equal(t, -1, findOpenParam("#{a", 0))
	assert.Equal(t, 2, findOpenParam("x #{ab}", 0))
	assert.Equal(t, -1, findOpenParam("#{a} ", 1))
}

func TestMatchingEnd(t *testing.T) {
	d := DefaultDelimiters()
	assert.Equal(t, 5, matchingEnd([]byte("{a{b}}"), 1, d))
	assert.Equal(t, -1, matchingEnd([]byte("{a{b}"), 1, d))
	assert.Equal(t, 4, matchingEnd([]byte("x(ab))"), 2, Delimiters{Start: "$", TypeDelim: "(", End: ")"}))
}

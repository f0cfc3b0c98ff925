package vexpr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContext() *Context {
	c := NewContext()
	c.SetAttribute("name", "Bob")
	c.SetAttribute("count", 7)
	c.Set(ScopeSession, "user", "alice")
	c.Set(ScopeApplication, "title", "Shop")
	c.SetParam("who", "Ann")
	return c
}

func TestNew_Defaults(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	start, typeDelim, end := engine.Delimiters()
	assert.Equal(t, DefaultStart, start)
	assert.Equal(t, DefaultTypeDelim, typeDelim)
	assert.Equal(t, DefaultEnd, end)

	for _, typ := range []string{TypeDefault, TypeAttribute, TypeSession, TypeEscape, TypeEval, TypeResource, TypeExpr} {
		assert.True(t, engine.HasDataSource(typ), typ)
	}
	for _, name := range []string{FuncNameEmpty, FuncNameEquals, FuncNameContains, FuncNameHas} {
		assert.True(t, engine.HasFunc(name), name)
	}
	assert.Nil(t, engine.BundleStore())
	assert.NotNil(t, engine.Logger())
	assert.Equal(t, []string{ScopeAttribute, ScopeApplication, ScopeSession, ScopePageSession}, engine.OutputTypes())
}

func TestNew_WithoutBuiltins(t *testing.T) {
	engine := MustNew(WithoutBuiltins(), WithLogger(zap.NewNop()))
	assert.Zero(t, engine.DataSourceCount())
	assert.Zero(t, engine.FuncCount())

	_, err := engine.Resolve(context.Background(), nil, "${name}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidType)
}

func TestEngine_Resolve(t *testing.T) {
	engine := MustNew()
	vctx := newTestContext()

	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"plain", "hello", "hello"},
		{"attribute in text", "Hi ${name}!", "Hi Bob!"},
		{"session", "$session{user}", "alice"},
		{"whole token keeps type", "${count}", 7},
		{"int", "$int{42}", 42},
		{"eval", "$eval{equals(${name},Bob)}", true},
		{"param", "Dear #{who}", "Dear Ann"},
		{"param default", "#{missing,friend}", "friend"},
		{"escaped token next to param", `\${name} #{who}`, "${name} Ann"},
		{"escape", "$escape{a,b}", "a,b"},
		{"nested lookup", "${$escape{name}}", "Bob"},
		{"resource without store", "$resource{msgs.title}", "msgs.title"},
		{"expr", "$expr{count * 2}", 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := engine.Resolve(context.Background(), vctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestEngine_Resolve_NoParams(t *testing.T) {
	engine := MustNew()

	v, err := engine.Resolve(context.Background(), nil, "#{a,b}")
	require.NoError(t, err)
	assert.Equal(t, "#{a,b}", v)
}

func TestEngine_ResolveString(t *testing.T) {
	engine := MustNew()

	s, err := engine.ResolveString(context.Background(), newTestContext(), "${count}")
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	s, err = engine.ResolveString(context.Background(), nil, "${missing}")
	require.NoError(t, err)
	assert.Equal(t, StringValueEmpty, s)
}

func TestEngine_Resolve_UnknownType(t *testing.T) {
	engine := MustNew()

	_, err := engine.Resolve(context.Background(), nil, "x $sesion{user}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidType)

	typ, ok := metadata(t, err, MetaKeyType)
	assert.True(t, ok)
	assert.Equal(t, "sesion", typ)

	suggestions, ok := metadata(t, err, MetaKeySuggestions)
	assert.True(t, ok)
	assert.Contains(t, suggestions, TypeSession)
}

func TestEngine_Resolve_CancelledContext(t *testing.T) {
	engine := MustNew()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Resolve(ctx, nil, "${name}")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = engine.Evaluate(ctx, nil, "true")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ResolveWithDelimiters(t *testing.T) {
	engine := MustNew()

	v, err := engine.ResolveWithDelimiters(context.Background(), nil, "$escape($escape(LayoutElement))", "$", "(", ")")
	require.NoError(t, err)
	assert.Equal(t, "LayoutElement", v)
}

func TestEngine_WithDelimiters(t *testing.T) {
	engine := MustNew(WithDelimiters("@", "[", "]"))

	v, err := engine.Resolve(context.Background(), newTestContext(), "Hi @session[user] ${name}")
	require.NoError(t, err)
	assert.Equal(t, "Hi alice ${name}", v)
}

func TestEngine_ResolveValue(t *testing.T) {
	engine := MustNew()
	vctx := newTestContext()

	in := []any{"${name}", 5, "$session{user}"}
	out, err := engine.ResolveValue(context.Background(), vctx, in)
	require.NoError(t, err)
	assert.Equal(t, []any{"Bob", 5, "alice"}, out)
	assert.Equal(t, "${name}", in[0])

	out, err = engine.ResolveValue(context.Background(), vctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, out)
}

func TestEngine_WithMaxDepth(t *testing.T) {
	engine := MustNew(WithMaxDepth(2))
	vctx := NewContext()
	vctx.SetParam("loop", "#{loop}")

	_, err := engine.Resolve(context.Background(), vctx, "#{loop}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMaxDepthExceeded)
}

func TestEngine_Evaluate(t *testing.T) {
	engine := MustNew()
	vctx := newTestContext()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"literal", "true&(false|true)", true},
		{"lone not", "!", true},
		{"empty", "", false},
		{"match", "$session{user}=a.*", true},
		{"guarded match", "!empty($session{user})&($session{user}=a.*)", true},
		{"compare", "${count}>5", true},
		{"has", "has(key='user',scope='session')", true},
		{"missing", "empty(${nothing})", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := engine.Evaluate(context.Background(), vctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestEngine_Evaluate_Errors(t *testing.T) {
	engine := MustNew()

	_, err := engine.Evaluate(context.Background(), nil, "1/0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgDivideByZero)
	op, ok := metadata(t, err, MetaKeyOperator)
	assert.True(t, ok)
	assert.NotEmpty(t, op)

	_, err = engine.Evaluate(context.Background(), nil, "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMissingLeftParen)
}

func TestEngine_Compile(t *testing.T) {
	engine := MustNew()

	expr, err := engine.Compile("(${a}=x)&empty(${b})")
	require.NoError(t, err)
	assert.Equal(t, "(${a}=x)&empty(${b})", expr.Infix())
	assert.Equal(t, "${a}x=empty(${b})&", expr.Postfix())
	assert.Equal(t, "(${a}=x)&empty(${b}) = ${a}x=empty(${b})&", expr.String())
	assert.Equal(t, []string{"${a}", "x", "empty(${b})"}, expr.Operands())
	assert.Equal(t, 1, expr.FunctionCount())

	vctx := NewContext()
	vctx.SetAttribute("a", "x")
	ok, err := expr.Evaluate(context.Background(), vctx)
	require.NoError(t, err)
	assert.True(t, ok)

	vctx.SetAttribute("b", "set")
	ok, err = expr.Evaluate(context.Background(), vctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_MustCompilePanics(t *testing.T) {
	engine := MustNew()
	assert.Panics(t, func() { engine.MustCompile("equals") })
}

func TestExpression_NilEvaluate(t *testing.T) {
	var expr *Expression
	_, err := expr.Evaluate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgExpressionNil)
}

func TestEngine_ApplyOutput(t *testing.T) {
	engine := MustNew(WithOutputTypes(ScopeSession))
	vctx := NewContext()

	require.NoError(t, engine.ApplyOutput(vctx, NewOutputMapping("r", ScopeSession, "k"), 1))
	v, ok := vctx.Get(ScopeSession, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	err := engine.ApplyOutput(vctx, NewOutputMapping("r", ScopeApplication, "k"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownOutputTarget)

	err = engine.ApplyOutput(vctx, NewNameValuePair("r", "k"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNotOutputMapping)
}

func TestEngine_ResourceWithBundleStore(t *testing.T) {
	store := NewMemoryBundleStore()
	require.NoError(t, store.Put("msgs", "greet", "Hello {0}, you have {1} items"))

	engine := MustNew(WithBundleStore(store))
	assert.Same(t, store, engine.BundleStore())

	v, err := engine.Resolve(context.Background(), newTestContext(), "$resource{msgs.greet,${name},3}")
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob, you have 3 items", v)
}

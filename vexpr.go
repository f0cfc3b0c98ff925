// Package vexpr provides a small expression and value-substitution runtime
// for templates.
//
// Two syntaxes are understood. Substitutions look like $type{key}, where
// type names a registered data source:
//
//	engine := vexpr.MustNew()
//	vctx := vexpr.NewContext()
//	vctx.Set(vexpr.ScopeSession, "user", "alice")
//	out, err := engine.ResolveString(ctx, vctx, "Hello $session{user}!")
//	// out: "Hello alice!"
//
// Boolean expressions combine literals, operators and function calls:
//
//	ok, err := engine.Evaluate(ctx, vctx, "!empty($session{user})&($session{user}=a.*)")
//	// ok: true
//
// # Substitution
//
// Tokens are resolved from the rightmost '$' backwards, so nested tokens
// such as $attribute{$attribute{name}} resolve inside-out. A backslash
// before '$' escapes the token. When a single token spans the whole input
// its value is returned with its native type:
//
//	v, _ := engine.Resolve(ctx, vctx, "$int{42}") // v: 42 (int)
//
// After every $type{key} token is resolved, #{key} and #{key,default}
// template parameters taken from the Context are merged in.
//
// # Expressions
//
// Operators, loosest first: = (regular expression match), < and >, |, &,
// % and /, !. Parentheses group. true and false are literals in any case.
// Any other run of characters is a value resolved through substitution,
// unless it names a registered function followed by '(':
//
//	equals($attribute{role},admin)|has(key='token',scope='session')
//
// # Data Sources
//
// Built-in types: attribute (also the empty type), application, session,
// pageSession, requestParameter, escape, eval, boolean, int, resource, env,
// expr and stackTrace. Custom types implement DataSource:
//
//	engine.MustRegisterDataSource(vexpr.NewDataSourceFunc("upper",
//	    func(ctx context.Context, vctx *vexpr.Context, key string) (any, error) {
//	        return strings.ToUpper(key), nil
//	    }))
//
// # Resource Bundles
//
// $resource{bundle.key,arg0,arg1} reads a message from the configured
// BundleStore and formats {0}, {1} placeholders. Memory, filesystem and
// PostgreSQL stores are provided, and any store can be wrapped with
// NewCachedBundleStore.
package vexpr

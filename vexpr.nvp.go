package vexpr

import (
	"io"

	"github.com/itsatony/go-vexpr/internal"
)

// NameValuePair is an immutable name/value assignment parsed from
// name="value", name='value', name={"a","b"}, name=["a","b"] or the output
// mapping form name => $type{key}.
type NameValuePair = internal.NameValuePair

// ValueKind identifies whether a pair holds a string, a list or an array.
type ValueKind = internal.ValueKind

// Value kinds
const (
	ValueKindString = internal.ValueKindString
	ValueKindList   = internal.ValueKindList
	ValueKindArray  = internal.ValueKindArray
)

// NewNameValuePair creates a plain string pair.
func NewNameValuePair(name, value string) NameValuePair {
	return internal.NewNameValuePair(name, value)
}

// NewOutputMapping creates the pair "name => $target{key}".
func NewOutputMapping(name, target, key string) NameValuePair {
	return internal.NewOutputMapping(name, target, key)
}

// NVPOptions controls name/value pair parsing.
type NVPOptions struct {
	// DefaultName is assigned to a leading bare quoted value.
	DefaultName string
	// RequireQuotes rejects unquoted values.
	RequireQuotes bool
	// ExtraNameChars are accepted in names besides letters and digits.
	// Default: "_."
	ExtraNameChars string
}

// ParseNameValuePairs parses consecutive pairs from source, stopping at the
// end of input or at a '>' or '/' closing a tag. Output mapping targets are
// checked against the engine's output types.
func (e *Engine) ParseNameValuePairs(source string, opts NVPOptions) ([]NameValuePair, error) {
	c := e.cursor(internal.NewStringCursor(source, e.logger))
	pairs, err := c.NameValuePairs(opts.DefaultName, opts.RequireQuotes, opts.ExtraNameChars)
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

// ParseNameValuePair parses a single pair from source.
func (e *Engine) ParseNameValuePair(source string, opts NVPOptions) (NameValuePair, error) {
	c := e.cursor(internal.NewStringCursor(source, e.logger))
	pair, err := c.NameValuePair(opts.DefaultName, opts.RequireQuotes, opts.ExtraNameChars)
	if err != nil {
		return NameValuePair{}, wrapError(err)
	}
	return pair, nil
}

// ReadNameValuePairs is ParseNameValuePairs over a reader.
func (e *Engine) ReadNameValuePairs(r io.Reader, opts NVPOptions) ([]NameValuePair, error) {
	c := e.cursor(internal.NewCursor(r, e.logger))
	pairs, err := c.NameValuePairs(opts.DefaultName, opts.RequireQuotes, opts.ExtraNameChars)
	if err != nil {
		return nil, wrapError(err)
	}
	return pairs, nil
}

func (e *Engine) cursor(c *internal.Cursor) *internal.Cursor {
	if len(e.config.outputTypes) > 0 {
		c.SetOutputTypes(e.config.outputTypes)
	}
	return c
}

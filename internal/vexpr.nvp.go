package internal

import (
	"slices"
	"strings"
)

// ValueKind identifies the shape of a NameValuePair value.
type ValueKind int

const (
	ValueKindString ValueKind = iota
	ValueKindList
	ValueKindArray
)

// String returns a readable kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueKindList:
		return "list"
	case ValueKindArray:
		return "array"
	default:
		return "string"
	}
}

// NameValuePair is an immutable name/value assignment. When target is set
// the pair is an output mapping ("name => $target{value}").
type NameValuePair struct {
	name   string
	value  string
	values []string
	kind   ValueKind
	target string
}

// NewNameValuePair creates a plain string assignment.
func NewNameValuePair(name, value string) NameValuePair {
	return NameValuePair{name: name, value: value}
}

// NewListValuePair creates a list or array assignment.
func NewListValuePair(name string, values []string, kind ValueKind) NameValuePair {
	return NameValuePair{name: name, values: slices.Clone(values), kind: kind}
}

// NewOutputMapping creates an output mapping to key in the target scope.
func NewOutputMapping(name, target, key string) NameValuePair {
	return NameValuePair{name: name, value: key, target: target}
}

func (p NameValuePair) Name() string { return p.name }

// Value returns the string value, or the key of an output mapping.
func (p NameValuePair) Value() string { return p.value }

func (p NameValuePair) Kind() ValueKind { return p.kind }

// Target returns the output mapping scope, empty for plain assignments.
func (p NameValuePair) Target() string { return p.target }

// Values returns a copy of the list or array elements.
func (p NameValuePair) Values() []string { return slices.Clone(p.values) }

// IsOutputMapping reports whether the pair maps an output into a scope.
func (p NameValuePair) IsOutputMapping() bool {
	return p.target != StringValueEmpty
}

// String renders the pair in the syntax it was parsed from.
func (p NameValuePair) String() string {
	var sb strings.Builder
	sb.WriteString(p.name)
	switch {
	case p.IsOutputMapping():
		sb.WriteString("=>")
		sb.WriteRune(OutputTargetPrefix)
		sb.WriteString(p.target)
		sb.WriteString(SubTypeDelim)
		sb.WriteString(p.value)
		sb.WriteString(SubEnd)
	case p.kind == ValueKindString:
		sb.WriteString(`="`)
		sb.WriteString(p.value)
		sb.WriteString(`"`)
	default:
		open, end := "={", "}"
		if p.kind == ValueKindArray {
			open, end = "=[", "]"
		}
		sb.WriteString(open)
		for i, v := range p.values {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`"`)
			sb.WriteString(v)
			sb.WriteString(`"`)
		}
		sb.WriteString(end)
	}
	return sb.String()
}

// NameValuePair parses one name/value pair. The name is read as a token of
// letters, digits and extraNameChars (DefaultNameChars when empty). When
// defaultName is set a bare value is assigned to it. Without requireQuotes
// an unquoted value is read up to the next '>'.
func (c *Cursor) NameValuePair(defaultName string, requireQuotes bool, extraNameChars string) (NameValuePair, error) {
	if extraNameChars == StringValueEmpty {
		extraNameChars = DefaultNameChars
	}

	name := c.ReadToken(extraNameChars)
	if name == StringValueEmpty && defaultName != StringValueEmpty {
		name = defaultName
		c.Unread('=')
	}

	gap := c.readSet(SimpleWhiteSpace)
	if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace); err != nil {
		return NameValuePair{}, err
	}

	next := c.Next()
	if next != '=' && next != ':' {
		if requireQuotes || (defaultName != StringValueEmpty && name == defaultName) {
			return NameValuePair{}, NewSyntaxError(ErrMsgMissingEquals, name, StringValueEmpty)
		}
		// no name and no quotes: the whole input is the value
		c.Unread(next)
		rest, err := c.readBareValue()
		if err != nil {
			return NameValuePair{}, err
		}
		return NewNameValuePair(defaultName, name+gap+rest), nil
	}

	if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace); err != nil {
		return NameValuePair{}, err
	}

	next = c.Next()
	switch next {
	case '>':
		if !requireQuotes {
			// output mappings are not allowed, this is the end of the pair
			c.Unread(next)
			return NewNameValuePair(name, StringValueEmpty), nil
		}
		return c.outputMapping(name)
	case '{':
		values, err := c.parseList('}')
		if err != nil {
			return NameValuePair{}, err
		}
		return NewListValuePair(name, values, ValueKindList), nil
	case '[':
		values, err := c.parseList(']')
		if err != nil {
			return NameValuePair{}, err
		}
		return NewListValuePair(name, values, ValueKindArray), nil
	case '"', '\'':
		value, found, err := c.readUntil(next, false)
		if err != nil {
			return NameValuePair{}, err
		}
		if !found {
			return NameValuePair{}, NewSyntaxError(ErrMsgUnterminatedQuote, name, string(next)+value)
		}
		return NewNameValuePair(name, value), nil
	default:
		if requireQuotes {
			return NameValuePair{}, NewSyntaxError(ErrMsgMissingQuotes, name, StringValueEmpty)
		}
		c.Unread(next)
		value, err := c.readBareValue()
		if err != nil {
			return NameValuePair{}, err
		}
		return NewNameValuePair(name, value), nil
	}
}

// readBareValue reads an unquoted value up to '>', leaving the '>' and
// any trailing '/' unread for the caller.
func (c *Cursor) readBareValue() (string, error) {
	value, found, err := c.readUntil('>', true)
	if err != nil {
		return "", err
	}
	if found {
		c.Unread('>')
	}
	if strings.HasSuffix(value, "/") {
		value = strings.TrimSpace(value[:len(value)-1])
		c.Unread('/')
	}
	return value, nil
}

func (c *Cursor) outputMapping(name string) (NameValuePair, error) {
	if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace); err != nil {
		return NameValuePair{}, err
	}
	if c.Next() != OutputTargetPrefix {
		return NameValuePair{}, NewSyntaxError(ErrMsgMissingOutputDollar, name+"=>", StringValueEmpty)
	}

	target := c.ReadToken(DefaultTokenChars)
	if !slices.Contains(c.outputTypes, target) {
		return NameValuePair{}, NewSyntaxError(ErrMsgInvalidOutputType, target, name+"=>$"+target)
	}

	if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace); err != nil {
		return NameValuePair{}, err
	}
	if c.Next() != '{' {
		return NameValuePair{}, NewSyntaxError(ErrMsgMissingOutputBrace, target, name+"=>$"+target)
	}

	key, err := c.ReadUntil('}', false)
	if err != nil {
		return NameValuePair{}, err
	}
	return NewOutputMapping(name, target, key), nil
}

// parseList reads quoted values separated by whitespace or ListSeparators
// until end.
func (c *Cursor) parseList(end rune) ([]string, error) {
	values := []string{}
	if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace); err != nil {
		return nil, err
	}

	next := c.Next()
	for next != end {
		if next == EOF {
			return nil, NewSyntaxError(ErrMsgUnterminatedList, string(end), strings.Join(values, ","))
		}
		if next != '\'' && next != '"' {
			return nil, NewSyntaxError(ErrMsgListMissingQuotes, string(next), strings.Join(values, ","))
		}

		value, found, err := c.readUntil(next, false)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, NewSyntaxError(ErrMsgUnterminatedQuote, string(next)+value, StringValueEmpty)
		}
		values = append(values, value)

		if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace + ListSeparators); err != nil {
			return nil, err
		}
		next = c.Next()
	}
	return values, nil
}

// NameValuePairs parses consecutive pairs until the end of input or the
// '>' or '/' that closes a tag.
func (c *Cursor) NameValuePairs(defaultName string, requireQuotes bool, extraNameChars string) ([]NameValuePair, error) {
	var pairs []NameValuePair
	for {
		if err := c.SkipCommentsAndWhitespace(SimpleWhiteSpace + ListSeparators); err != nil {
			return nil, err
		}
		ch := c.Next()
		if ch == EOF || ch == '>' || ch == '/' {
			c.Unread(ch)
			return pairs, c.Err()
		}
		c.Unread(ch)

		pair, err := c.NameValuePair(defaultName, requireQuotes, extraNameChars)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
		// only the first pair may use the default name
		defaultName = StringValueEmpty
	}
}

package internal

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// EOF is returned by Cursor.Next once the source is exhausted.
const EOF rune = -1

// Cursor is a pushback character reader over a template source. Pushed back
// characters are replayed in LIFO order before the source is read again.
type Cursor struct {
	reader      *bufio.Reader
	pushback    []rune
	err         error
	outputTypes []string
	logger      *zap.Logger
}

// NewCursor creates a cursor reading from r.
func NewCursor(r io.Reader, logger *zap.Logger) *Cursor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgCursorCreated)
	return &Cursor{
		reader:      bufio.NewReader(r),
		outputTypes: DefaultOutputTypes(),
		logger:      logger,
	}
}

// NewStringCursor creates a cursor over an in-memory string.
func NewStringCursor(source string, logger *zap.Logger) *Cursor {
	return NewCursor(strings.NewReader(source), logger)
}

// DefaultOutputTypes returns the scopes accepted as output mapping targets.
func DefaultOutputTypes() []string {
	return []string{TypeAttribute, TypeApplication, TypeSession, TypePageSession}
}

// SetOutputTypes replaces the set of valid output mapping targets.
func (c *Cursor) SetOutputTypes(types []string) {
	c.outputTypes = append([]string(nil), types...)
}

// Err returns the first non-EOF error reported by the underlying reader.
func (c *Cursor) Err() error {
	return c.err
}

// Next returns the next character, or EOF.
func (c *Cursor) Next() rune {
	if n := len(c.pushback); n > 0 {
		ch := c.pushback[n-1]
		c.pushback = c.pushback[:n-1]
		return ch
	}
	if c.err != nil {
		return EOF
	}
	ch, _, err := c.reader.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		return EOF
	}
	return ch
}

// Unread pushes ch back onto the cursor. Pushing EOF is a no-op.
func (c *Cursor) Unread(ch rune) {
	if ch == EOF {
		return
	}
	c.pushback = append(c.pushback, ch)
}

// readSet consumes and returns the characters contained in set.
func (c *Cursor) readSet(set string) string {
	var sb strings.Builder
	ch := c.Next()
	for ch != EOF && strings.ContainsRune(set, ch) {
		sb.WriteRune(ch)
		ch = c.Next()
	}
	c.Unread(ch)
	return sb.String()
}

// SkipWhitespace consumes characters contained in set.
func (c *Cursor) SkipWhitespace(set string) {
	c.readSet(set)
}

// SkipCommentsAndWhitespace consumes characters in set as well as any
// "#", "//", "/* */" and "<!-- -->" comments. A sequence that only looks
// like the start of a comment is pushed back untouched.
func (c *Cursor) SkipCommentsAndWhitespace(set string) error {
	for {
		c.SkipWhitespace(set)
		ch := c.Next()
		switch ch {
		case '#':
			c.ReadLine()
		case '/':
			second := c.Next()
			switch second {
			case '/':
				c.ReadLine()
			case '*':
				if _, err := c.ReadUntilString(CommentBlockEnd, false); err != nil {
					return err
				}
			default:
				c.Unread(second)
				c.Unread(ch)
				return nil
			}
		case '<':
			if !c.consume("!--") {
				c.Unread(ch)
				return nil
			}
			if _, err := c.ReadUntilString(CommentHTMLEnd, false); err != nil {
				return err
			}
		default:
			c.Unread(ch)
			return nil
		}
	}
}

// consume reads s if it is next in the input. Otherwise nothing is consumed.
func (c *Cursor) consume(s string) bool {
	runes := []rune(s)
	for i, want := range runes {
		ch := c.Next()
		if ch != want {
			c.Unread(ch)
			for j := i - 1; j >= 0; j-- {
				c.Unread(runes[j])
			}
			return false
		}
	}
	return true
}

// ReadLine reads the rest of the current line. A literal "\n" sequence
// becomes a newline and a trailing backslash joins the following line.
func (c *Cursor) ReadLine() string {
	var sb strings.Builder
	for {
		ch := c.Next()
		if ch == EOF || ch == '\n' {
			break
		}
		if ch == '\r' {
			if next := c.Next(); next != '\n' {
				c.Unread(next)
			}
			break
		}
		sb.WriteRune(ch)
	}

	line := strings.ReplaceAll(sb.String(), `\n`, "\n")
	if strings.HasSuffix(line, `\`) {
		return line[:len(line)-1] + c.ReadLine()
	}
	return line
}

// ReadToken reads letters, digits and any character in extra. The first
// non-matching character is pushed back.
func (c *Cursor) ReadToken(extra string) string {
	var sb strings.Builder
	ch := c.Next()
	for ch != EOF && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || strings.ContainsRune(extra, ch)) {
		sb.WriteRune(ch)
		ch = c.Next()
	}
	c.Unread(ch)
	return sb.String()
}

// ReadUntil reads up to, but not including, end. The terminator is
// consumed. Reaching the end of input first is a syntax error.
func (c *Cursor) ReadUntil(end rune, skipComments bool) (string, error) {
	value, found, err := c.readUntil(end, skipComments)
	if err != nil {
		return "", err
	}
	if !found {
		return "", NewSyntaxError(ErrMsgUnterminatedToken, string(end), value)
	}
	return value, nil
}

// readUntil reports whether end was found rather than failing at EOF.
func (c *Cursor) readUntil(end rune, skipComments bool) (string, bool, error) {
	if skipComments {
		if err := c.SkipCommentsAndWhitespace(StringValueEmpty); err != nil {
			return "", false, err
		}
	}

	var sb strings.Builder
	for {
		ch := c.Next()
		if ch == end {
			return sb.String(), true, nil
		}
		if ch == EOF {
			return sb.String(), false, c.err
		}

		switch ch {
		case '\'', '"':
			if !skipComments {
				sb.WriteRune(ch)
				continue
			}
			// quoted text is opaque: no comments, no terminator
			quoted, found, err := c.readUntil(ch, false)
			if err != nil {
				return "", false, err
			}
			if !found {
				return "", false, NewSyntaxError(ErrMsgUnterminatedQuote, string(ch)+quoted, sb.String())
			}
			sb.WriteRune(ch)
			sb.WriteString(quoted)
			sb.WriteRune(ch)
		case '#', '/', '<':
			if !skipComments {
				sb.WriteRune(ch)
				continue
			}
			c.Unread(ch)
			if err := c.SkipCommentsAndWhitespace(StringValueEmpty); err != nil {
				return "", false, err
			}
			if next := c.Next(); next == ch {
				sb.WriteRune(ch)
			} else {
				c.Unread(next)
			}
		case EscapeChar:
			switch next := c.Next(); next {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\n', EOF:
			case '\r':
				if after := c.Next(); after != '\n' {
					c.Unread(after)
				}
			default:
				sb.WriteRune(next)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

// ReadUntilString reads up to, but not including, the multi-character
// terminator end. Partial matches are re-scanned so overlapping prefixes
// such as "--->" against "-->" are handled.
func (c *Cursor) ReadUntilString(end string, skipComments bool) (string, error) {
	if end == StringValueEmpty {
		return StringValueEmpty, nil
	}
	terminator := []rune(end)

	var sb strings.Builder
	for {
		chunk, found, err := c.readUntil(terminator[0], skipComments)
		if err != nil {
			return "", err
		}
		sb.WriteString(chunk)
		if !found {
			return "", NewSyntaxError(ErrMsgUnterminatedToken, end, sb.String())
		}

		matched := 1
		for matched < len(terminator) {
			ch := c.Next()
			if ch != terminator[matched] {
				c.Unread(ch)
				break
			}
			matched++
		}
		if matched == len(terminator) {
			return sb.String(), nil
		}

		sb.WriteRune(terminator[0])
		for i := matched - 1; i >= 1; i-- {
			c.Unread(terminator[i])
		}
	}
}

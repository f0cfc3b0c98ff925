package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Delimiters describe the $type{key} token shape.
type Delimiters struct {
	Start     string
	TypeDelim string
	End       string
}

// DefaultDelimiters returns "$", "{" and "}".
func DefaultDelimiters() Delimiters {
	return Delimiters{Start: SubStart, TypeDelim: SubTypeDelim, End: SubEnd}
}

func (d Delimiters) valid() bool {
	return d.Start != StringValueEmpty && d.TypeDelim != StringValueEmpty && d.End != StringValueEmpty
}

// SubstituterConfig holds substitution limits and token shape.
type SubstituterConfig struct {
	Delimiters     Delimiters
	MaxDepth       int
	MaxSuggestions int
}

// DefaultSubstituterConfig returns the default configuration.
func DefaultSubstituterConfig() SubstituterConfig {
	return SubstituterConfig{
		Delimiters:     DefaultDelimiters(),
		MaxDepth:       DefaultMaxDepth,
		MaxSuggestions: DefaultMaxSuggestions,
	}
}

// Substituter resolves $type{key} tokens through a SourceRegistry and
// merges #{key} template parameters.
type Substituter struct {
	sources *SourceRegistry
	config  SubstituterConfig
	logger  *zap.Logger
}

// NewSubstituter creates a substituter over sources.
func NewSubstituter(sources *SourceRegistry, config SubstituterConfig, logger *zap.Logger) *Substituter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !config.Delimiters.valid() {
		config.Delimiters = DefaultDelimiters()
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.MaxSuggestions < 0 {
		config.MaxSuggestions = 0
	}
	return &Substituter{sources: sources, config: config, logger: logger}
}

// Delimiters returns the configured token shape.
func (s *Substituter) Delimiters() Delimiters {
	return s.config.Delimiters
}

// Sources returns the registry used to resolve type keywords.
func (s *Substituter) Sources() *SourceRegistry {
	return s.sources
}

// Resolve substitutes every token in source using the configured
// delimiters. When one token spans the whole string its value is returned
// with its native type.
func (s *Substituter) Resolve(ctx context.Context, env Env, source string) (any, error) {
	return s.ResolveWith(ctx, env, source, s.config.Delimiters)
}

// ResolveWith is Resolve with an explicit token shape.
func (s *Substituter) ResolveWith(ctx context.Context, env Env, source string, d Delimiters) (any, error) {
	if !d.valid() {
		d = s.config.Delimiters
	}
	if env.Substituter == nil {
		env.Substituter = s
	}
	if env.Depth > s.config.MaxDepth {
		return nil, NewResolutionError(ErrMsgMaxDepthExceeded, StringValueEmpty, source, nil)
	}

	s.logger.Debug(LogMsgSubstituteStart,
		zap.Int(LogFieldSource, len(source)),
		zap.Int(LogFieldDepth, env.Depth),
	)
	v, err := s.substitute(ctx, env, source, d)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(LogMsgSubstituteEnd, zap.Int(LogFieldDepth, env.Depth))
	return v, nil
}

// ResolveValue resolves strings and, element-wise, slices of values.
// Input slices are never modified. Other values are returned as-is.
func (s *Substituter) ResolveValue(ctx context.Context, env Env, v any) (any, error) {
	switch val := v.(type) {
	case string:
		return s.Resolve(ctx, env, val)
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			r, err := s.Resolve(ctx, env, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			r, err := s.ResolveValue(ctx, env, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// substitute scans from the rightmost start token backwards so nested
// tokens resolve inside-out.
func (s *Substituter) substitute(ctx context.Context, env Env, source string, d Delimiters) (any, error) {
	buf := []byte(source)

	for start := bytes.LastIndex(buf, []byte(d.Start)); start != -1; {
		if start > 0 && buf[start-1] == EscapeChar {
			buf = append(buf[:start-1], buf[start:]...)
			start = lastIndexBefore(buf, d.Start, start-2)
			continue
		}

		delimIdx := indexFrom(buf, d.TypeDelim, start+len(d.Start))
		if delimIdx == -1 {
			start = lastIndexBefore(buf, d.Start, start-1)
			continue
		}
		endIdx := matchingEnd(buf, delimIdx+len(d.TypeDelim), d)
		if endIdx == -1 {
			start = lastIndexBefore(buf, d.Start, start-1)
			continue
		}

		typ := string(buf[start+len(d.Start) : delimIdx])
		ds, ok := s.sources.Get(typ)
		if !ok {
			if strings.ContainsAny(typ, ForeignMarkupChars) {
				s.logger.Debug(LogMsgForeignMarkup, zap.String(LogFieldType, typ))
				start = lastIndexBefore(buf, d.Start, start-1)
				continue
			}
			err := NewResolutionError(ErrMsgInvalidType, typ, string(buf), nil)
			err.Suggestions = FindSimilarStrings(typ, s.sources.List(), s.config.MaxSuggestions)
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := string(buf[delimIdx+len(d.TypeDelim) : endIdx])
		s.logger.Debug(LogMsgSourceInvoked, zap.String(LogFieldType, typ), zap.String(LogFieldKey, key))
		value, err := ds.Value(ctx, env, key)
		if err != nil {
			return nil, wrapSourceError(err, typ, key)
		}

		if start == 0 && endIdx+len(d.End) == len(buf) {
			if str, isString := value.(string); isString {
				return s.mergeParams(ctx, env, str)
			}
			return value, nil
		}

		buf = splice(buf, start, endIdx+len(d.End), Stringify(value))
		start = lastIndexBefore(buf, d.Start, start-1)
	}

	return s.mergeParams(ctx, env, string(buf))
}

// mergeParams replaces or extends #{key} expressions whose key names a
// template parameter. Parameter values are substituted on their own before
// they are spliced in, so text already handled by the token scan is never scanned
// again. The merged result is searched for parameters once more.
func (s *Substituter) mergeParams(ctx context.Context, env Env, str string) (any, error) {
	if !strings.Contains(str, ParamOpen) {
		return str, nil
	}
	if env.Depth > s.config.MaxDepth {
		return nil, NewResolutionError(ErrMsgMaxDepthExceeded, StringValueEmpty, str, nil)
	}

	var buf []byte
	found := false
	loopStart := 0
	for {
		startEL, endEL, value := s.findParam(env, str, loopStart)
		if startEL == -1 {
			if !found {
				return str, nil
			}
			buf = append(buf, str[loopStart:]...)
			break
		}
		found = true
		buf = append(buf, str[loopStart:startEL]...)

		if str[endEL] == ParamClose {
			endEL++
			if startEL == 0 && endEL >= len(str) {
				return s.ResolveValue(ctx, env.Nested(), value)
			}
			resolved, err := s.ResolveValue(ctx, env.Nested(), value)
			if err != nil {
				return nil, err
			}
			buf = append(buf, Stringify(resolved)...)
		} else {
			merged := Stringify(value)
			merged = strings.TrimPrefix(merged, ParamOpen)
			merged = strings.TrimSuffix(merged, string(ParamClose))
			resolved, err := s.Resolve(ctx, env.Nested(), merged)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ParamOpen...)
			buf = append(buf, Stringify(resolved)...)

			closeIdx := strings.IndexByte(str[endEL+1:], ParamClose)
			if closeIdx == -1 {
				return nil, NewSyntaxError(ErrMsgUnterminatedParam, str[startEL:], str)
			}
			closeIdx += endEL + 1
			buf = append(buf, str[endEL:closeIdx+1]...)
			endEL = closeIdx + 1
		}
		s.logger.Debug(LogMsgParamMerged, zap.Int(LogFieldDepth, env.Depth))
		loopStart = endEL
	}

	return s.mergeParams(ctx, env.Nested(), string(buf))
}

// findParam locates the next #{token whose token is a template parameter,
// or whose ",default" suffix supplies a value. It returns -1 when none is
// left, and always when the host holds no parameters.
func (s *Substituter) findParam(env Env, str string, from int) (startEL, endEL int, value any) {
	if env.Host == nil || env.Host.ParamCount() == 0 {
		return -1, -1, nil
	}
	startEL = findOpenParam(str, from)
	for startEL != -1 {
		endEL = indexAnyFrom(str, startEL+ParamOpenLen, ParamTerminals)
		if endEL == -1 {
			return -1, -1, nil
		}
		token := strings.TrimSpace(str[startEL+ParamOpenLen : endEL])
		key, fallback, hasDefault := strings.Cut(token, ParamDefaultSep)
		if !hasDefault {
			key = token
		}
		if v, ok := env.Host.Param(strings.TrimSpace(key)); ok && v != nil {
			return startEL, endEL, v
		}
		if hasDefault {
			return startEL, endEL, strings.TrimSpace(fallback)
		}
		startEL = indexFrom([]byte(str), ParamOpen, endEL+1)
	}
	return -1, -1, nil
}

// findOpenParam finds "#{" leaving room for at least "{x}" after the '#'.
func findOpenParam(str string, from int) int {
	limit := len(str) - ParamMinTail
	for i := from; i < limit; i++ {
		if str[i] == ParamOpen[0] && str[i+1] == ParamOpen[1] {
			return i
		}
	}
	return -1
}

// wrapSourceError keeps typed errors intact and attributes anything else
// to the failing data source.
func wrapSourceError(err error, typ, key string) error {
	var (
		syntaxErr *SyntaxError
		resErr    *ResolutionError
		evalErr   *EvaluationError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &resErr) || errors.As(err, &evalErr) {
		return err
	}
	return NewResolutionError(ErrMsgSourceFailed, typ, key, err)
}

// matchingEnd returns the index of the end token balancing the type
// delimiter that precedes from, or -1.
func matchingEnd(buf []byte, from int, d Delimiters) int {
	open, end := []byte(d.TypeDelim), []byte(d.End)
	depth := 0
	for i := from; i < len(buf); {
		if bytes.HasPrefix(buf[i:], open) {
			depth++
			i += len(open)
			continue
		}
		if bytes.HasPrefix(buf[i:], end) {
			depth--
			if depth < 0 {
				return i
			}
			i += len(end)
			continue
		}
		i++
	}
	return -1
}

// lastIndexBefore returns the last index <= from at which tok starts.
func lastIndexBefore(buf []byte, tok string, from int) int {
	if from < 0 {
		return -1
	}
	end := min(from+len(tok), len(buf))
	return bytes.LastIndex(buf[:end], []byte(tok))
}

func indexFrom(buf []byte, tok string, from int) int {
	if from > len(buf) {
		return -1
	}
	idx := bytes.Index(buf[from:], []byte(tok))
	if idx == -1 {
		return -1
	}
	return idx + from
}

func indexAnyFrom(str string, from int, chars string) int {
	if from > len(str) {
		return -1
	}
	idx := strings.IndexAny(str[from:], chars)
	if idx == -1 {
		return -1
	}
	return idx + from
}

// splice replaces buf[from:to] with s.
func splice(buf []byte, from, to int, s string) []byte {
	out := make([]byte, 0, len(buf)-(to-from)+len(s))
	out = append(out, buf[:from]...)
	out = append(out, s...)
	return append(out, buf[to:]...)
}

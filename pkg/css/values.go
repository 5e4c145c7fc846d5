package css

import (
	"strconv"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ValueKind classifies a component value of a property.
type ValueKind int

const (
	StringValue ValueKind = iota
	IdentValue
	FunctionValue
	URLValue
	NumberValue
)

func (k ValueKind) String() string {
	switch k {
	case StringValue:
		return "string"
	case IdentValue:
		return "ident"
	case FunctionValue:
		return "function"
	case URLValue:
		return "url"
	case NumberValue:
		return "number"
	}
	return "unknown"
}

// Value is one component of a property value such as content.
type Value struct {
	Kind ValueKind
	// Text is the unescaped string, the identifier, the URL target or the
	// number as written.
	Text string
	Func *Function
}

// Function is a functional notation, e.g. counter(item, upper-roman).
type Function struct {
	Name string // lower-cased, without the parenthesis
	Args []Value
	// Malformed is set when an argument is empty or holds more than one
	// component value.
	Malformed bool
}

// ParseValues splits a raw property value into component values.
// Unsupported tokens are dropped.
func ParseValues(raw string) []Value {
	l := css.NewLexer(parse.NewInputString(raw))
	vals, _ := parseValueList(l, false)
	return vals
}

// parseValueList reads values until EOF or, in a function, the closing
// parenthesis. Inside a function each comma starts a new argument.
func parseValueList(l *css.Lexer, inFunction bool) ([]Value, bool) {
	var (
		vals      []Value
		arg       []Value
		malformed bool
		argCount  int
	)
	flushArg := func() {
		argCount++
		if len(arg) != 1 {
			malformed = true
		}
		vals = append(vals, arg...)
		arg = nil
	}
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if inFunction {
				// unterminated function
				if len(arg) > 0 || argCount > 0 {
					flushArg()
				}
				return vals, true
			}
			return append(vals, arg...), malformed
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.RightParenthesisToken:
			if inFunction {
				if len(arg) > 0 || argCount > 0 {
					flushArg()
				}
				return vals, malformed
			}
		case css.CommaToken:
			if inFunction {
				flushArg()
			}
		case css.StringToken:
			arg = append(arg, Value{Kind: StringValue, Text: unescapeString(string(data))})
		case css.IdentToken:
			arg = append(arg, Value{Kind: IdentValue, Text: unescapeIdent(string(data))})
		case css.NumberToken, css.PercentageToken, css.DimensionToken:
			arg = append(arg, Value{Kind: NumberValue, Text: string(data)})
		case css.URLToken:
			arg = append(arg, Value{Kind: URLValue, Text: urlTarget(string(data))})
		case css.FunctionToken:
			name := strings.ToLower(strings.TrimSuffix(string(data), "("))
			args, bad := parseValueList(l, true)
			if name == "url" {
				if len(args) == 1 && args[0].Kind == StringValue {
					arg = append(arg, Value{Kind: URLValue, Text: args[0].Text})
				}
				continue
			}
			arg = append(arg, Value{Kind: FunctionValue, Text: name, Func: &Function{Name: name, Args: args, Malformed: bad}})
		default:
			if inFunction {
				malformed = true
			}
		}
	}
}

// urlTarget extracts the target of an unquoted url(...) token.
func urlTarget(tok string) string {
	s := strings.TrimSpace(tok)
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return unescapeString(s)
	}
	return s
}

// unescapeString removes the quotes of a CSS string token and resolves
// escapes, including hex escapes such as \201C.
func unescapeString(tok string) string {
	if len(tok) >= 1 && (tok[0] == '"' || tok[0] == '\'') {
		q := tok[0]
		tok = tok[1:]
		if len(tok) > 0 && tok[len(tok)-1] == q {
			tok = tok[:len(tok)-1]
		}
	}
	return unescape(tok)
}

func unescapeIdent(tok string) string {
	if !strings.Contains(tok, `\`) {
		return tok
	}
	return unescape(tok)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '\n':
			// line continuation
			continue
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		}
		j := i
		for j < len(s) && j-i < 6 && isHex(s[j]) {
			j++
		}
		if j == i {
			r, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteRune(r)
			i += size - 1
			continue
		}
		cp, _ := strconv.ParseUint(s[i:j], 16, 32)
		if cp == 0 || cp > utf8.MaxRune || (cp >= 0xD800 && cp <= 0xDFFF) {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.WriteRune(rune(cp))
		}
		// a single whitespace after a hex escape belongs to the escape
		if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
			j++
		}
		i = j - 1
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Content is the parsed content property. Keyword is "normal" or "none"
// when the property holds one of those keywords, otherwise Items lists the
// values in order.
type Content struct {
	Keyword string
	Items   []Value
}

func (c Content) IsNormal() bool { return c.Keyword == "normal" }
func (c Content) IsNone() bool   { return c.Keyword == "none" }

// HasItems reports whether the content generates anything at all.
func (c Content) HasItems() bool { return c.Keyword == "" && len(c.Items) > 0 }

// GetContent returns the parsed content property (default: normal).
func (s *Style) GetContent() Content {
	raw, ok := s.Get("content")
	if !ok {
		return Content{Keyword: "normal"}
	}
	return ParseContent(raw)
}

func ParseContent(raw string) Content {
	switch kw := strings.ToLower(strings.TrimSpace(raw)); kw {
	case "", "normal":
		return Content{Keyword: "normal"}
	case "none":
		return Content{Keyword: "none"}
	}
	return Content{Items: ParseValues(raw)}
}

// QuotePair is one level of the quotes property.
type QuotePair struct {
	Open, Close string
}

// DefaultQuotes is used when quotes is not set anywhere.
var DefaultQuotes = []QuotePair{{"“", "”"}, {"‘", "’"}}

// GetQuotes returns the quote pairs of s. none reports quotes: none, in
// which case open-quote and close-quote produce no text.
func (s *Style) GetQuotes() (pairs []QuotePair, none bool) {
	raw, ok := s.Get("quotes")
	if !ok || strings.EqualFold(strings.TrimSpace(raw), "auto") {
		return DefaultQuotes, false
	}
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return nil, true
	}
	var strs []string
	for _, v := range ParseValues(raw) {
		if v.Kind == StringValue {
			strs = append(strs, v.Text)
		}
	}
	for i := 0; i+1 < len(strs); i += 2 {
		pairs = append(pairs, QuotePair{strs[i], strs[i+1]})
	}
	if len(pairs) == 0 {
		return DefaultQuotes, false
	}
	return pairs, false
}

// CounterChange is one entry of counter-reset or counter-increment.
type CounterChange struct {
	Name  string
	Value int
}

// GetCounterResets returns counter-reset entries in declaration order.
func (s *Style) GetCounterResets() []CounterChange {
	raw, _ := s.Get("counter-reset")
	return parseCounterList(raw, 0)
}

// GetCounterIncrements returns counter-increment entries in declaration
// order.
func (s *Style) GetCounterIncrements() []CounterChange {
	raw, _ := s.Get("counter-increment")
	return parseCounterList(raw, 1)
}

// HasCounterDeclarations reports whether s resets or increments counters.
func (s *Style) HasCounterDeclarations() bool {
	return len(s.GetCounterResets()) > 0 || len(s.GetCounterIncrements()) > 0
}

// parseCounterList parses "name [value] [name2 [value2] ...]" or "none".
func parseCounterList(value string, def int) []CounterChange {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "none") {
		return nil
	}
	var result []CounterChange
	for _, v := range ParseValues(value) {
		switch v.Kind {
		case IdentValue:
			result = append(result, CounterChange{Name: v.Text, Value: def})
		case NumberValue:
			n, err := strconv.Atoi(v.Text)
			if err == nil && len(result) > 0 {
				result[len(result)-1].Value = n
			}
		}
	}
	return result
}

package css

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Selector is a complex selector: compound parts joined by combinators,
// optionally ending in a pseudo-element.
type Selector struct {
	Raw           string
	Parts         []SelectorPart
	Combinators   []Combinator // Combinators[i] joins Parts[i] and Parts[i+1]
	PseudoElement string       // "before", "after" or ""
	Specificity   int
}

// SelectorPart is a compound selector such as div.note[title].
type SelectorPart struct {
	Element       string // "" or "*" match any element
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

type Combinator int

const (
	DescendantCombinator Combinator = iota
	ChildCombinator
	AdjacentSiblingCombinator
	GeneralSiblingCombinator
)

var errEmptySelector = errors.New("empty selector")

// ParseSelector parses a single complex selector (no commas).
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	sel := Selector{Raw: raw}
	if raw == "" {
		return sel, errEmptySelector
	}

	toks := lexAll(raw)
	var (
		cur        SelectorPart
		curSet     bool
		pendingWS  bool
		pendingCmb = -1
	)
	// finishPart appends the current compound and, when another compound
	// follows, the combinator joining the two.
	finishPart := func(followed bool) error {
		if !curSet {
			return fmt.Errorf("selector %q: missing compound selector", raw)
		}
		sel.Parts = append(sel.Parts, cur)
		if followed {
			c := DescendantCombinator
			if pendingCmb >= 0 {
				c = Combinator(pendingCmb)
			}
			sel.Combinators = append(sel.Combinators, c)
		}
		cur, curSet, pendingWS, pendingCmb = SelectorPart{}, false, false, -1
		return nil
	}
	// startPart flushes the previous compound when a combinator or
	// whitespace separated it from the one now starting.
	startPart := func() error {
		if sel.PseudoElement != "" {
			return fmt.Errorf("selector %q: pseudo-element must be last", raw)
		}
		if curSet && (pendingWS || pendingCmb >= 0) {
			return finishPart(true)
		}
		return nil
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			if curSet {
				pendingWS = true
			}
			continue
		case css.DelimToken:
			switch d := string(t.Data); d {
			case ">", "+", "~":
				if !curSet || pendingCmb >= 0 {
					return sel, fmt.Errorf("selector %q: dangling combinator %q", raw, d)
				}
				pendingCmb = map[string]int{">": int(ChildCombinator), "+": int(AdjacentSiblingCombinator), "~": int(GeneralSiblingCombinator)}[d]
				continue
			case "*":
				if err := startPart(); err != nil {
					return sel, err
				}
				cur.Element, curSet = "*", true
				continue
			case ".":
				if i+1 >= len(toks) || toks[i+1].TokenType != css.IdentToken {
					return sel, fmt.Errorf("selector %q: expected class name", raw)
				}
				if err := startPart(); err != nil {
					return sel, err
				}
				i++
				cur.Classes = append(cur.Classes, unescapeIdent(string(toks[i].Data)))
				curSet = true
				continue
			}
			return sel, fmt.Errorf("selector %q: unexpected %q", raw, t.Data)
		case css.IdentToken:
			if err := startPart(); err != nil {
				return sel, err
			}
			if curSet && cur.Element != "" {
				return sel, fmt.Errorf("selector %q: misplaced type selector", raw)
			}
			cur.Element, curSet = strings.ToLower(unescapeIdent(string(t.Data))), true
			continue
		case css.HashToken:
			if err := startPart(); err != nil {
				return sel, err
			}
			cur.ID, curSet = unescapeIdent(strings.TrimPrefix(string(t.Data), "#")), true
			continue
		case css.LeftBracketToken:
			if err := startPart(); err != nil {
				return sel, err
			}
			end := i + 1
			for end < len(toks) && toks[end].TokenType != css.RightBracketToken {
				end++
			}
			if end >= len(toks) {
				return sel, fmt.Errorf("selector %q: unterminated attribute selector", raw)
			}
			attr, err := parseAttributeSelector(toks[i+1 : end])
			if err != nil {
				return sel, fmt.Errorf("selector %q: %w", raw, err)
			}
			cur.Attributes = append(cur.Attributes, attr)
			curSet = true
			i = end
			continue
		case css.ColonToken:
			double := i+1 < len(toks) && toks[i+1].TokenType == css.ColonToken
			if double {
				i++
			}
			if i+1 >= len(toks) {
				return sel, fmt.Errorf("selector %q: expected pseudo name", raw)
			}
			i++
			nt := toks[i]
			if nt.TokenType == css.FunctionToken {
				// functional pseudo-classes are kept by name and never match
				depth := 1
				for depth > 0 && i+1 < len(toks) {
					i++
					switch toks[i].TokenType {
					case css.FunctionToken, css.LeftParenthesisToken:
						depth++
					case css.RightParenthesisToken:
						depth--
					}
				}
				if err := startPart(); err != nil {
					return sel, err
				}
				cur.PseudoClasses = append(cur.PseudoClasses, strings.ToLower(string(nt.Data))+")")
				curSet = true
				continue
			}
			if nt.TokenType != css.IdentToken {
				return sel, fmt.Errorf("selector %q: expected pseudo name", raw)
			}
			name := strings.ToLower(string(nt.Data))
			if double || name == "before" || name == "after" {
				if name != "before" && name != "after" {
					return sel, fmt.Errorf("selector %q: unsupported pseudo-element ::%s", raw, name)
				}
				if err := startPart(); err != nil {
					return sel, err
				}
				if !curSet {
					cur.Element, curSet = "*", true
				}
				sel.PseudoElement = name
				continue
			}
			if err := startPart(); err != nil {
				return sel, err
			}
			cur.PseudoClasses = append(cur.PseudoClasses, name)
			curSet = true
			continue
		}
		return sel, fmt.Errorf("selector %q: unexpected %q", raw, t.Data)
	}
	if pendingCmb >= 0 {
		return sel, fmt.Errorf("selector %q: dangling combinator", raw)
	}
	if err := finishPart(false); err != nil {
		return sel, err
	}
	sel.Specificity = specificity(sel)
	return sel, nil
}

func parseAttributeSelector(toks []css.Token) (AttributeSelector, error) {
	var attr AttributeSelector
	var rest []css.Token
	for _, t := range toks {
		if t.TokenType != css.WhitespaceToken {
			rest = append(rest, t)
		}
	}
	if len(rest) == 0 || rest[0].TokenType != css.IdentToken {
		return attr, errors.New("expected attribute name")
	}
	attr.Name = strings.ToLower(string(rest[0].Data))
	rest = rest[1:]
	if len(rest) == 0 {
		return attr, nil
	}
	switch rest[0].TokenType {
	case css.IncludeMatchToken, css.DashMatchToken, css.PrefixMatchToken,
		css.SuffixMatchToken, css.SubstringMatchToken:
		attr.Operator = string(rest[0].Data)
	case css.DelimToken:
		if string(rest[0].Data) != "=" {
			return attr, fmt.Errorf("unexpected %q in attribute selector", rest[0].Data)
		}
		attr.Operator = "="
	default:
		return attr, fmt.Errorf("unexpected %q in attribute selector", rest[0].Data)
	}
	if len(rest) < 2 {
		return attr, errors.New("missing attribute value")
	}
	switch rest[1].TokenType {
	case css.StringToken:
		attr.Value = unescapeString(string(rest[1].Data))
	case css.IdentToken, css.NumberToken:
		attr.Value = string(rest[1].Data)
	default:
		return attr, fmt.Errorf("unexpected %q in attribute selector", rest[1].Data)
	}
	return attr, nil
}

// specificity packs (ids, classes, types) as a*100 + b*10 + c.
func specificity(sel Selector) int {
	a, b, c := 0, 0, 0
	for _, p := range sel.Parts {
		if p.ID != "" {
			a++
		}
		b += len(p.Classes) + len(p.Attributes) + len(p.PseudoClasses)
		if p.Element != "" && p.Element != "*" {
			c++
		}
	}
	if sel.PseudoElement != "" {
		c++
	}
	return a*100 + b*10 + c
}

// lexAll tokenizes src, copying token data out of the lexer buffer.
func lexAll(src string) []css.Token {
	l := css.NewLexer(parse.NewInputString(src))
	var toks []css.Token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return toks
		}
		toks = append(toks, css.Token{TokenType: tt, Data: append([]byte(nil), data...)})
	}
}

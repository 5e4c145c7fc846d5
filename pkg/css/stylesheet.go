package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Origin of a stylesheet in the cascade.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
)

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations map[string]string // property -> value, shorthands expanded
	Media        string            // media query list of the enclosing @media, if any
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Origin   Origin
	Rules    []Rule
	Pages    []PageRule
	Warnings []string
}

// Parser parses CSS stylesheets into rules.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses stylesheet text. Problems are recorded as warnings and the
// offending rule is skipped.
func (p *Parser) Parse(src string, origin Origin) *Stylesheet {
	sheet := &Stylesheet{Origin: origin}

	rest, pages, warns := extractPageRules(lexAll(src))
	sheet.Pages = pages
	sheet.Warnings = append(sheet.Warnings, warns...)

	var sb strings.Builder
	for _, t := range rest {
		sb.Write(t.Data)
	}
	parser := css.NewParser(parse.NewInputString(sb.String()), false)
	p.parseRuleList(parser, sheet, "", false)

	for _, w := range sheet.Warnings {
		p.log.Debug("CSS warning", zap.String("warning", w))
	}
	return sheet
}

// parseRuleList reads rules until EOF or, inside @media, the end of the
// block.
func (p *Parser) parseRuleList(parser *css.Parser, sheet *Stylesheet, media string, nested bool) {
	var selectors []string
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("parse error: %v", err))
			}
			return
		case css.EndAtRuleGrammar:
			if nested {
				return
			}
		case css.BeginAtRuleGrammar:
			name := strings.ToLower(string(data))
			if name == "@media" && !nested {
				p.parseRuleList(parser, sheet, tokensToValue(parser.Values()), true)
				continue
			}
			p.log.Debug("Skipping @-rule", zap.String("rule", name))
			p.skipAtRuleBlock(parser)
		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
		case css.QualifiedRuleGrammar:
			selectors = append(selectors, splitSelectors(data, parser.Values())...)
		case css.BeginRulesetGrammar:
			selectors = append(selectors, splitSelectors(data, parser.Values())...)
			decls := p.parseDeclarations(parser)
			for _, raw := range selectors {
				sel, err := ParseSelector(raw)
				if err != nil {
					sheet.Warnings = append(sheet.Warnings, err.Error())
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: decls, Media: media})
			}
			selectors = nil
		}
	}
}

func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
// Rules sharing a selector list share the returned map; it is never
// modified afterwards.
func (p *Parser) parseDeclarations(parser *css.Parser) map[string]string {
	decls := make(map[string]string)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			if value := tokensToValue(parser.Values()); value != "" {
				expandShorthand(decls, name, value)
			}
		}
	}
}

// ParseInlineStyle parses the declarations of a style attribute.
func ParseInlineStyle(styleAttr string) map[string]string {
	decls := make(map[string]string)
	parser := css.NewParser(parse.NewInputString(styleAttr), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			if value := tokensToValue(parser.Values()); value != "" {
				expandShorthand(decls, name, value)
			}
		}
	}
}

// splitSelectors builds the selector text of a rule prelude and splits
// grouped selectors.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "{"))
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// tokensToValue renders tokens as a property value: whitespace runs become
// one space, comments and a trailing !important are dropped.
func tokensToValue(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		switch t.TokenType {
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			if len(parts) > 0 && parts[len(parts)-1] != " " {
				parts = append(parts, " ")
			}
			continue
		}
		parts = append(parts, string(t.Data))
	}
	raw := strings.TrimSpace(strings.Join(parts, ""))
	if i := strings.LastIndex(raw, "!"); i >= 0 && strings.EqualFold(strings.TrimSpace(raw[i+1:]), "important") {
		raw = strings.TrimSpace(raw[:i])
	}
	return raw
}

// matchesMedium evaluates a media query list against a media type. Feature
// expressions are not evaluated; only the media types are compared.
func matchesMedium(query, medium string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	for q := range strings.SplitSeq(query, ",") {
		fields := strings.Fields(strings.ToLower(q))
		if len(fields) == 0 {
			continue
		}
		negate := false
		if fields[0] == "not" || fields[0] == "only" {
			negate = fields[0] == "not"
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		typ := fields[0]
		if strings.HasPrefix(typ, "(") {
			typ = "all"
		}
		match := typ == "all" || typ == medium
		if match != negate {
			return true
		}
	}
	return false
}

// ParseStylesheets parses author stylesheets in order. Warnings of all
// sheets are combined into the returned error; the sheets are usable
// regardless.
func ParseStylesheets(srcs []string, log *zap.Logger) ([]*Stylesheet, error) {
	p := NewParser(log)
	var (
		sheets []*Stylesheet
		err    error
	)
	for i, src := range srcs {
		sheet := p.Parse(src, OriginAuthor)
		for _, w := range sheet.Warnings {
			err = multierr.Append(err, fmt.Errorf("stylesheet %d: %s", i+1, w))
		}
		sheets = append(sheets, sheet)
	}
	return sheets, err
}

package css

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// MarginBoxName names one of the sixteen page-margin boxes.
type MarginBoxName string

const (
	TopLeftCorner     MarginBoxName = "top-left-corner"
	TopLeft           MarginBoxName = "top-left"
	TopCenter         MarginBoxName = "top-center"
	TopRight          MarginBoxName = "top-right"
	TopRightCorner    MarginBoxName = "top-right-corner"
	BottomLeftCorner  MarginBoxName = "bottom-left-corner"
	BottomLeft        MarginBoxName = "bottom-left"
	BottomCenter      MarginBoxName = "bottom-center"
	BottomRight       MarginBoxName = "bottom-right"
	BottomRightCorner MarginBoxName = "bottom-right-corner"
	LeftTop           MarginBoxName = "left-top"
	LeftMiddle        MarginBoxName = "left-middle"
	LeftBottom        MarginBoxName = "left-bottom"
	RightTop          MarginBoxName = "right-top"
	RightMiddle       MarginBoxName = "right-middle"
	RightBottom       MarginBoxName = "right-bottom"
)

type marginDefaults struct {
	textAlign     TextAlign
	verticalAlign VerticalAlign
}

var marginBoxDefaults = map[MarginBoxName]marginDefaults{
	TopLeftCorner:     {TextAlignRight, VerticalAlignMiddle},
	TopLeft:           {TextAlignLeft, VerticalAlignMiddle},
	TopCenter:         {TextAlignCenter, VerticalAlignMiddle},
	TopRight:          {TextAlignRight, VerticalAlignMiddle},
	TopRightCorner:    {TextAlignLeft, VerticalAlignMiddle},
	BottomLeftCorner:  {TextAlignRight, VerticalAlignMiddle},
	BottomLeft:        {TextAlignLeft, VerticalAlignMiddle},
	BottomCenter:      {TextAlignCenter, VerticalAlignMiddle},
	BottomRight:       {TextAlignRight, VerticalAlignMiddle},
	BottomRightCorner: {TextAlignLeft, VerticalAlignMiddle},
	LeftTop:           {TextAlignCenter, VerticalAlignTop},
	LeftMiddle:        {TextAlignCenter, VerticalAlignMiddle},
	LeftBottom:        {TextAlignCenter, VerticalAlignBottom},
	RightTop:          {TextAlignCenter, VerticalAlignTop},
	RightMiddle:       {TextAlignCenter, VerticalAlignMiddle},
	RightBottom:       {TextAlignCenter, VerticalAlignBottom},
}

// ParseMarginBoxName resolves an at-keyword name such as "top-center".
func ParseMarginBoxName(name string) (MarginBoxName, bool) {
	n := MarginBoxName(strings.ToLower(strings.TrimPrefix(name, "@")))
	_, ok := marginBoxDefaults[n]
	return n, ok
}

// InitialTextAlign is the text-align a margin box gets unless declared.
func (n MarginBoxName) InitialTextAlign() TextAlign { return marginBoxDefaults[n].textAlign }

// InitialVerticalAlign is the vertical-align a margin box gets unless
// declared.
func (n MarginBoxName) InitialVerticalAlign() VerticalAlign {
	return marginBoxDefaults[n].verticalAlign
}

// Margin box groups in document order, as laid out along each page edge.
var (
	TopMarginBoxes    = []MarginBoxName{TopLeft, TopCenter, TopRight}
	BottomMarginBoxes = []MarginBoxName{BottomLeft, BottomCenter, BottomRight}
	LeftMarginBoxes   = []MarginBoxName{LeftTop, LeftMiddle, LeftBottom}
	RightMarginBoxes  = []MarginBoxName{RightTop, RightMiddle, RightBottom}
	CornerMarginBoxes = []MarginBoxName{TopLeftCorner, TopRightCorner, BottomLeftCorner, BottomRightCorner}
)

// PageRule is one @page block.
type PageRule struct {
	Selector     string // "", ":first", ":left", ":right" or a page name
	Declarations map[string]string
	Margins      map[MarginBoxName]map[string]string
}

// pseudoSpecificity orders page selectors; named pages are not matched.
func (r PageRule) pseudoSpecificity() (int, bool) {
	switch r.Selector {
	case "":
		return 0, true
	case ":left", ":right":
		return 1, true
	case ":first":
		return 2, true
	}
	return 0, false
}

func (r PageRule) appliesTo(page int) bool {
	switch r.Selector {
	case "":
		return true
	case ":first":
		return page == 1
	case ":left":
		return page%2 == 0
	case ":right":
		return page%2 == 1
	}
	return false
}

// PageInfo is the cascaded @page context of one page.
type PageInfo struct {
	Style   *Style
	margins map[MarginBoxName]map[string]string
}

// NewPageInfo builds a page context from page declarations and margin box
// declarations. root is the style the page context inherits from; it may be
// nil.
func NewPageInfo(root *Style, decls map[string]string, margins map[MarginBoxName]map[string]string) *PageInfo {
	if margins == nil {
		margins = make(map[MarginBoxName]map[string]string)
	}
	return &PageInfo{Style: root.Derive(decls), margins: margins}
}

// HasAny reports whether any of names has a margin box rule.
func (p *PageInfo) HasAny(names []MarginBoxName) bool {
	if p == nil {
		return false
	}
	for _, n := range names {
		if _, ok := p.margins[n]; ok {
			return true
		}
	}
	return false
}

// MarginBoxStyle returns the style of the named margin box, or nil when it
// has no rule and alwaysCreate is false. The box gets display table-cell
// and the initial alignment of its position unless declarations override
// them.
func (p *PageInfo) MarginBoxStyle(name MarginBoxName, alwaysCreate bool) *Style {
	decls, ok := p.margins[name]
	if !ok && !alwaysCreate {
		return nil
	}
	all := map[string]string{
		"display":        string(DisplayTableCell),
		"text-align":     string(name.InitialTextAlign()),
		"vertical-align": string(name.InitialVerticalAlign()),
	}
	for k, v := range decls {
		all[k] = v
	}
	return p.Style.Derive(all)
}

// resolvePage merges the applicable @page rules of sheets for the given
// 1-based page number, lowest precedence first.
func resolvePage(sheets []*Stylesheet, page int) (map[string]string, map[MarginBoxName]map[string]string) {
	type ranked struct {
		rule  PageRule
		spec  int
		order int
	}
	var rules []ranked
	order := 0
	for _, sheet := range sheets {
		for _, r := range sheet.Pages {
			order++
			spec, ok := r.pseudoSpecificity()
			if !ok || !r.appliesTo(page) {
				continue
			}
			rules = append(rules, ranked{r, spec, order})
		}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].spec < rules[j].spec })

	decls := make(map[string]string)
	margins := make(map[MarginBoxName]map[string]string)
	for _, r := range rules {
		for k, v := range r.rule.Declarations {
			decls[k] = v
		}
		for name, md := range r.rule.Margins {
			if margins[name] == nil {
				margins[name] = make(map[string]string)
			}
			for k, v := range md {
				margins[name][k] = v
			}
		}
	}
	return decls, margins
}

// extractPageRules removes top-level @page blocks from toks and parses them.
// @page is handled at token level because its body mixes declarations and
// nested margin rules.
func extractPageRules(toks []css.Token) (rest []css.Token, pages []PageRule, warnings []string) {
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.TokenType {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			if depth > 0 {
				depth--
			}
		case css.AtKeywordToken:
			if depth == 0 && strings.EqualFold(string(t.Data), "@page") {
				open := i + 1
				for open < len(toks) && toks[open].TokenType != css.LeftBraceToken && toks[open].TokenType != css.SemicolonToken {
					open++
				}
				if open >= len(toks) || toks[open].TokenType == css.SemicolonToken {
					warnings = append(warnings, "malformed @page rule")
					i = open
					continue
				}
				end := matchingBrace(toks, open)
				rule, warns := parsePageBody(tokensToValue(toks[i+1:open]), toks[open+1:end])
				pages = append(pages, rule)
				warnings = append(warnings, warns...)
				i = end
				continue
			}
		}
		rest = append(rest, t)
	}
	return rest, pages, warnings
}

// matchingBrace returns the index of the brace closing the one at open, or
// len(toks) when the block is unterminated.
func matchingBrace(toks []css.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].TokenType {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks)
}

func parsePageBody(selector string, body []css.Token) (PageRule, []string) {
	rule := PageRule{
		Selector:     strings.ToLower(strings.ReplaceAll(selector, " ", "")),
		Declarations: make(map[string]string),
		Margins:      make(map[MarginBoxName]map[string]string),
	}
	var warnings []string
	if _, ok := rule.pseudoSpecificity(); !ok {
		warnings = append(warnings, fmt.Sprintf("unsupported @page selector %q", selector))
	}
	start := 0
	for i := 0; i < len(body); i++ {
		if body[i].TokenType != css.AtKeywordToken {
			continue
		}
		parseDeclarationTokens(body[start:i], rule.Declarations)
		open := i + 1
		for open < len(body) && body[open].TokenType != css.LeftBraceToken {
			open++
		}
		end := matchingBrace(body, open)
		if name, ok := ParseMarginBoxName(string(body[i].Data)); ok && open < len(body) {
			decls := rule.Margins[name]
			if decls == nil {
				decls = make(map[string]string)
				rule.Margins[name] = decls
			}
			parseDeclarationTokens(body[open+1:min(end, len(body))], decls)
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown page margin rule %s", body[i].Data))
		}
		i = end
		start = end + 1
	}
	if start < len(body) {
		parseDeclarationTokens(body[start:], rule.Declarations)
	}
	return rule, warnings
}

// parseDeclarationTokens reads "name: value;" sequences into decls.
func parseDeclarationTokens(toks []css.Token, decls map[string]string) {
	depth := 0
	start := 0
	flush := func(end int) {
		decl := toks[start:end]
		start = end + 1
		colon := -1
		for j, t := range decl {
			if t.TokenType == css.ColonToken {
				colon = j
				break
			}
		}
		if colon < 0 {
			return
		}
		name := strings.ToLower(tokensToValue(decl[:colon]))
		value := tokensToValue(decl[colon+1:])
		if name == "" || value == "" || strings.ContainsAny(name, " ") {
			return
		}
		expandShorthand(decls, name, value)
	}
	for i, t := range toks {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			depth--
		case css.SemicolonToken:
			if depth == 0 {
				flush(i)
			}
		}
	}
	if start < len(toks) {
		flush(len(toks))
	}
}

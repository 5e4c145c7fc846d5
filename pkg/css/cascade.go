package css

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"boxtree/pkg/html"
)

// DefaultMedium is the media type rules are matched against unless
// configured otherwise.
const DefaultMedium = "print"

// Cascade computes element and pseudo-element styles from the user agent
// stylesheet and the author stylesheets. Styles are computed once and
// cached; a Cascade is not safe for concurrent use.
type Cascade struct {
	sheets []*Stylesheet
	medium string
	log    *zap.Logger

	styles map[*html.Node]*Style
	pseudo map[pseudoKey]*Style
}

type pseudoKey struct {
	node   *html.Node
	pseudo string
}

type CascadeOption func(*Cascade)

// WithMedium sets the media type @media rules are evaluated against.
func WithMedium(medium string) CascadeOption {
	return func(c *Cascade) { c.medium = medium }
}

func WithCascadeLogger(log *zap.Logger) CascadeOption {
	return func(c *Cascade) { c.log = log }
}

// NewCascade parses the author stylesheets and prepares a cascade over them.
// The returned error aggregates stylesheet warnings; the cascade is usable
// even when it is non-nil.
func NewCascade(authorCSS []string, opts ...CascadeOption) (*Cascade, error) {
	c := &Cascade{
		medium: DefaultMedium,
		log:    zap.NewNop(),
		styles: make(map[*html.Node]*Style),
		pseudo: make(map[pseudoKey]*Style),
	}
	for _, opt := range opts {
		opt(c)
	}
	ua := NewParser(c.log).Parse(userAgentCSS, OriginUserAgent)
	authors, err := ParseStylesheets(authorCSS, c.log)
	c.sheets = append([]*Stylesheet{ua}, authors...)
	return c, err
}

// Style returns the computed style of an element. The synthetic document
// node gets an empty style; character data has no style of its own.
func (c *Cascade) Style(n *html.Node) *Style {
	if !n.IsElement() {
		return nil
	}
	if s, ok := c.styles[n]; ok {
		return s
	}
	var s *Style
	if n.IsDocument() {
		s = NewStyle()
	} else {
		s = c.Style(n.Parent).inherit()
		hinted := false
		for _, m := range c.matchingRules(n, "") {
			if m.origin == OriginAuthor && !hinted {
				s.apply(presentationalHints(n))
				hinted = true
			}
			s.apply(m.Declarations)
		}
		if !hinted {
			s.apply(presentationalHints(n))
		}
		if attr, ok := n.GetAttribute("style"); ok {
			s.apply(ParseInlineStyle(attr))
		}
	}
	c.styles[n] = s
	return s
}

// PseudoStyle returns the style of n::pseudo, or nil when no rule targets
// that pseudo-element.
func (c *Cascade) PseudoStyle(n *html.Node, pseudo string) *Style {
	if !n.IsElement() {
		return nil
	}
	key := pseudoKey{n, pseudo}
	if s, ok := c.pseudo[key]; ok {
		return s
	}
	rules := c.matchingRules(n, pseudo)
	var s *Style
	if len(rules) > 0 {
		s = c.Style(n).inherit()
		for _, m := range rules {
			s.apply(m.Declarations)
		}
	}
	c.pseudo[key] = s
	return s
}

// PageInfo returns the @page context for a 1-based page number.
func (c *Cascade) PageInfo(page int) *PageInfo {
	decls, margins := resolvePage(c.sheets, page)
	return NewPageInfo(nil, decls, margins)
}

type matchedRule struct {
	Rule
	origin Origin
}

// matchingRules returns the rules matching n with the given pseudo-element,
// lowest precedence first: user agent before author, then by specificity,
// then in source order.
func (c *Cascade) matchingRules(n *html.Node, pseudo string) []matchedRule {
	var matches []matchedRule
	for _, sheet := range c.sheets {
		for _, r := range sheet.Rules {
			if r.Selector.PseudoElement != pseudo || !matchesMedium(r.Media, c.medium) {
				continue
			}
			if MatchesSelector(n, r.Selector) {
				matches = append(matches, matchedRule{r, sheet.Origin})
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].origin != matches[j].origin {
			return matches[i].origin < matches[j].origin
		}
		return matches[i].Selector.Specificity < matches[j].Selector.Specificity
	})
	return matches
}

// presentationalHints maps HTML attributes that affect box construction to
// declarations. They rank below every author rule.
func presentationalHints(n *html.Node) map[string]string {
	hints := make(map[string]string)
	switch n.TagName {
	case "ol":
		if v, ok := n.GetAttribute("start"); ok {
			if start, err := strconv.Atoi(v); err == nil {
				hints["counter-reset"] = "list-item " + strconv.Itoa(start-1)
			}
		}
	case "td", "th":
		if _, ok := n.GetAttribute("nowrap"); ok {
			hints["white-space"] = "nowrap"
		}
	}
	return hints
}

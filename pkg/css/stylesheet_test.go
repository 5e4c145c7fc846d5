package css

import (
	"strings"
	"testing"
)

func parseAuthor(t *testing.T, src string) *Stylesheet {
	t.Helper()
	return NewParser(nil).Parse(src, OriginAuthor)
}

func TestParse_SimpleRule(t *testing.T) {
	sheet := parseAuthor(t, `div { color: red; display: block }`)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	r := sheet.Rules[0]
	if r.Selector.Raw != "div" {
		t.Errorf("expected selector 'div', got %q", r.Selector.Raw)
	}
	if r.Declarations["color"] != "red" || r.Declarations["display"] != "block" {
		t.Errorf("unexpected declarations %v", r.Declarations)
	}
}

func TestParse_GroupedSelectors(t *testing.T) {
	sheet := parseAuthor(t, `h1, h2 , .note { font-weight: bold }`)
	if len(sheet.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(sheet.Rules))
	}
	want := []string{"h1", "h2", ".note"}
	for i, r := range sheet.Rules {
		if r.Selector.Raw != want[i] {
			t.Errorf("rule %d: expected %q, got %q", i, want[i], r.Selector.Raw)
		}
		if r.Declarations["font-weight"] != "bold" {
			t.Errorf("rule %d: missing declaration", i)
		}
	}
}

func TestParse_Comments(t *testing.T) {
	sheet := parseAuthor(t, `/* lead */ p { /* inner */ color: blue; } /* tail */`)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	if sheet.Rules[0].Declarations["color"] != "blue" {
		t.Errorf("expected color blue, got %q", sheet.Rules[0].Declarations["color"])
	}
}

func TestParse_ValuesKeepStringsAndDropImportant(t *testing.T) {
	sheet := parseAuthor(t, `p::before { content: "a;b"  counter(item) !important; margin: 1px 2px }`)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	d := sheet.Rules[0].Declarations
	if d["content"] != `"a;b" counter(item)` {
		t.Errorf("unexpected content value %q", d["content"])
	}
	if d["margin-top"] != "1px" || d["margin-left"] != "2px" {
		t.Errorf("margin shorthand not expanded: %v", d)
	}
	if sheet.Rules[0].Selector.PseudoElement != "before" {
		t.Errorf("expected ::before, got %q", sheet.Rules[0].Selector.PseudoElement)
	}
}

func TestParse_MediaBlocks(t *testing.T) {
	sheet := parseAuthor(t, `p { color: red } @media screen { p { color: blue } } div { color: green }`)
	if len(sheet.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(sheet.Rules))
	}
	if sheet.Rules[1].Media != "screen" {
		t.Errorf("expected media 'screen', got %q", sheet.Rules[1].Media)
	}
	if sheet.Rules[2].Media != "" {
		t.Errorf("rule after @media should have no media, got %q", sheet.Rules[2].Media)
	}
}

func TestParse_SkipsUnknownAtRules(t *testing.T) {
	sheet := parseAuthor(t, `@font-face { font-family: x; src: url(x.ttf) } p { color: blue }`)
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selector.Raw != "p" {
		t.Fatalf("expected only the p rule, got %+v", sheet.Rules)
	}
}

func TestParse_InvalidSelectorIsWarning(t *testing.T) {
	sheet := parseAuthor(t, `p > { color: red } div { color: blue }`)
	if len(sheet.Rules) != 1 || sheet.Rules[0].Selector.Raw != "div" {
		t.Fatalf("expected only the div rule, got %+v", sheet.Rules)
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected a warning for the invalid selector")
	}
}

func TestParse_PageRules(t *testing.T) {
	src := `
@page { margin: 20px; @top-center { content: "Title" } @bottom-right { content: counter(page) } }
@page :first { @top-center { content: none } }
p { color: red }`
	sheet := parseAuthor(t, src)
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected the p rule to survive, got %d rules", len(sheet.Rules))
	}
	if len(sheet.Pages) != 2 {
		t.Fatalf("expected 2 page rules, got %d", len(sheet.Pages))
	}
	first := sheet.Pages[0]
	if first.Selector != "" {
		t.Errorf("expected empty selector, got %q", first.Selector)
	}
	if first.Declarations["margin-top"] != "20px" {
		t.Errorf("page margin not parsed: %v", first.Declarations)
	}
	if got := first.Margins[TopCenter]["content"]; got != `"Title"` {
		t.Errorf("unexpected top-center content %q", got)
	}
	if got := first.Margins[BottomRight]["content"]; got != "counter(page)" {
		t.Errorf("unexpected bottom-right content %q", got)
	}
	if sheet.Pages[1].Selector != ":first" {
		t.Errorf("expected :first, got %q", sheet.Pages[1].Selector)
	}
}

func TestParseInlineStyle(t *testing.T) {
	decls := ParseInlineStyle(`display: table-cell; content: "x;y"; padding: 1px`)
	if decls["display"] != "table-cell" {
		t.Errorf("unexpected display %q", decls["display"])
	}
	if decls["content"] != `"x;y"` {
		t.Errorf("unexpected content %q", decls["content"])
	}
	if decls["padding-bottom"] != "1px" {
		t.Errorf("padding shorthand not expanded: %v", decls)
	}
}

func TestParseStylesheets_AggregatesWarnings(t *testing.T) {
	sheets, err := ParseStylesheets([]string{`p { color: red }`, `p > { x: y } q > { x: y }`}, nil)
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(sheets))
	}
	if err == nil {
		t.Fatal("expected aggregated warnings")
	}
	if !strings.Contains(err.Error(), "stylesheet 2") {
		t.Errorf("warning should name the sheet: %v", err)
	}
}

func TestMatchesMedium(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"all", true},
		{"print", true},
		{"screen", false},
		{"screen, print", true},
		{"not screen", true},
		{"only print and (min-width: 10px)", true},
		{"(orientation: portrait)", true},
	}
	for _, tt := range tests {
		if got := matchesMedium(tt.query, "print"); got != tt.want {
			t.Errorf("matchesMedium(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

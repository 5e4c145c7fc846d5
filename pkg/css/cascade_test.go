package css

import (
	"testing"

	"boxtree/pkg/html"
)

func cascadeFor(t *testing.T, src string) (*html.Document, *Cascade) {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, err := NewCascade(doc.Stylesheets)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	return doc, c
}

func TestCascade_UserAgentDisplay(t *testing.T) {
	doc, c := cascadeFor(t, `<div><span>a</span><table><tr><td>x</td></tr></table><ul><li>i</li></ul></div>`)
	body := doc.Body()
	tests := []struct {
		tag  string
		want DisplayType
	}{
		{"body", DisplayBlock},
		{"div", DisplayBlock},
		{"span", DisplayInline},
		{"table", DisplayTable},
		{"tbody", DisplayTableRowGroup},
		{"tr", DisplayTableRow},
		{"td", DisplayTableCell},
		{"li", DisplayListItem},
	}
	for _, tt := range tests {
		n := body.FindFirst(tt.tag)
		if n == nil {
			t.Fatalf("no <%s> in document", tt.tag)
		}
		if got := c.Style(n).GetDisplay(); got != tt.want {
			t.Errorf("<%s> display = %s, want %s", tt.tag, got, tt.want)
		}
	}
	if head := doc.DocumentElement().FindFirst("head"); c.Style(head).GetDisplay() != DisplayNone {
		t.Error("head should not be displayed")
	}
}

func TestCascade_SpecificityAndSourceOrder(t *testing.T) {
	doc, c := cascadeFor(t, `<style>
#x { color: red }
p.a { color: green }
p { color: blue }
p { text-align: left }
p { text-align: right }
</style><p id="x" class="a">t</p>`)
	s := c.Style(doc.Body().FindFirst("p"))
	if v, _ := s.Get("color"); v != "red" {
		t.Errorf("id selector should win, got %q", v)
	}
	if s.GetTextAlign() != TextAlignRight {
		t.Errorf("later rule should win, got %s", s.GetTextAlign())
	}
}

func TestCascade_AuthorOverridesUserAgent(t *testing.T) {
	doc, c := cascadeFor(t, `<style>div { display: inline }</style><div>t</div>`)
	if got := c.Style(doc.Body().FindFirst("div")).GetDisplay(); got != DisplayInline {
		t.Errorf("expected author display inline, got %s", got)
	}
}

func TestCascade_InheritanceAndInlineStyle(t *testing.T) {
	doc, c := cascadeFor(t, `<style>div { white-space: pre; width: 10px }</style><div><span style="color: red">t</span></div>`)
	span := doc.Body().FindFirst("span")
	s := c.Style(span)
	if s.GetWhiteSpace() != WhiteSpacePre {
		t.Errorf("white-space should inherit, got %s", s.GetWhiteSpace())
	}
	if !s.IsAutoWidth() {
		t.Error("width must not inherit")
	}
	if v, _ := s.Get("color"); v != "red" {
		t.Errorf("inline style not applied, got %q", v)
	}
	if s.Parent() != c.Style(doc.Body().FindFirst("div")) {
		t.Error("style parent should be the div style")
	}
}

func TestCascade_InheritKeyword(t *testing.T) {
	doc, c := cascadeFor(t, `<style>div { float: left } p { float: inherit }</style><div><p>t</p></div>`)
	if got := c.Style(doc.Body().FindFirst("p")).GetFloat(); got != FloatLeft {
		t.Errorf("expected inherited float left, got %s", got)
	}
}

func TestCascade_MediaRules(t *testing.T) {
	doc, c := cascadeFor(t, `<style>@media screen { p { display: none } } @media print { p { color: red } }</style><p>t</p>`)
	s := c.Style(doc.Body().FindFirst("p"))
	if s.GetDisplay() == DisplayNone {
		t.Error("screen rule should not apply to print")
	}
	if v, _ := s.Get("color"); v != "red" {
		t.Errorf("print rule should apply, got %q", v)
	}
}

func TestCascade_PseudoStyle(t *testing.T) {
	doc, c := cascadeFor(t, `<style>p::before { content: "x"; color: red } p { text-transform: uppercase }</style><p>t</p><div>d</div>`)
	p := doc.Body().FindFirst("p")
	before := c.PseudoStyle(p, "before")
	if before == nil {
		t.Fatal("expected a ::before style")
	}
	if before.GetTextTransform() != TextTransformUppercase {
		t.Error("pseudo style should inherit from its element")
	}
	if c.PseudoStyle(p, "after") != nil {
		t.Error("no ::after rule should give a nil style")
	}
	if c.PseudoStyle(doc.Body().FindFirst("div"), "before") != nil {
		t.Error("div has no ::before rule")
	}
}

func TestCascade_QuoteElementsGetGeneratedContent(t *testing.T) {
	doc, c := cascadeFor(t, `<p><q>x</q></p>`)
	before := c.PseudoStyle(doc.Body().FindFirst("q"), "before")
	if before == nil {
		t.Fatal("expected user agent q::before")
	}
	content := before.GetContent()
	if len(content.Items) != 1 || content.Items[0].Text != "open-quote" {
		t.Errorf("unexpected content %+v", content)
	}
}

func TestCascade_OrderedListStart(t *testing.T) {
	doc, c := cascadeFor(t, `<ol start="5"><li>a</li></ol>`)
	resets := c.Style(doc.Body().FindFirst("ol")).GetCounterResets()
	if len(resets) != 1 || resets[0] != (CounterChange{"list-item", 4}) {
		t.Errorf("unexpected resets %v", resets)
	}
}

func TestCascade_PageInfo(t *testing.T) {
	_, c := cascadeFor(t, `<style>
@page { @top-center { content: "All" } }
@page :first { @top-center { content: "First" } @top-left { width: 10px } }
</style><p>t</p>`)

	first := c.PageInfo(1)
	if !first.HasAny(TopMarginBoxes) {
		t.Fatal("page 1 should have top margin boxes")
	}
	if first.HasAny(BottomMarginBoxes) {
		t.Error("no bottom margin boxes were declared")
	}
	s := first.MarginBoxStyle(TopCenter, false)
	if v, _ := s.Get("content"); v != `"First"` {
		t.Errorf(":first should override, got %q", v)
	}
	if s.GetDisplay() != DisplayTableCell || s.GetTextAlign() != TextAlignCenter || s.GetVerticalAlign() != VerticalAlignMiddle {
		t.Errorf("unexpected margin box defaults %v", s.Properties)
	}

	second := c.PageInfo(2)
	if v, _ := second.MarginBoxStyle(TopCenter, false).Get("content"); v != `"All"` {
		t.Errorf("page 2 should use the general rule, got %q", v)
	}
	if second.MarginBoxStyle(TopLeft, false) != nil {
		t.Error("top-left only exists on the first page")
	}
	if second.MarginBoxStyle(TopLeft, true) == nil {
		t.Error("alwaysCreate should produce a style")
	}
}

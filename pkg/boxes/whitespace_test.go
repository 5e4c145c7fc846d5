package boxes

import (
	"testing"

	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

func TestWhitespace_Build(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"collapses across elements", `<p>  a   <b> b </b>  c  </p>`, "a b c"},
		{"newlines are spaces", "<p>a\n\tb</p>", "a b"},
		{"pre is preserved", "<pre>  a\n  b  </pre>", "  a\n  b  "},
		{"pre-wrap keeps spaces", "<p style=\"white-space: pre-wrap\">a  b </p>", "a  b "},
		{"pre-line keeps newlines", "<p style=\"white-space: pre-line\">a  \n  b  c</p>", "a\nb c"},
		{"nowrap collapses", "<p style=\"white-space: nowrap\"> a  b </p>", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody(t, tt.src)
			if got := text(body.Children[0]); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWhitespace_WhitespaceOnlyInlineKeepsMarks(t *testing.T) {
	body := buildBody(t, `<div><span> </span><p>x</p></div>`)
	div := body.Children[0]
	if len(div.Children) != 2 || div.Children[0].Kind != KindAnonymousBlock {
		t.Fatalf("an element run survives as an empty anonymous block\n%s", Dump(div))
	}
	frags := div.Children[0].Fragments()
	if len(frags) != 1 || frags[0].Text != "" || !frags[0].StartsHere || !frags[0].EndsHere {
		t.Errorf("span should keep its marks with no text\n%s", Dump(div))
	}
}

func TestStripInlineContent_Idempotent(t *testing.T) {
	span := &html.Node{Type: html.ElementNode, TagName: "span"}
	style := css.NewStyle()
	run := []Styleable{
		&InlineFragment{Text: "  x   ", Style: style, StartsHere: true, EndsHere: true},
		&InlineFragment{Text: " y\n", Style: style, Element: span, StartsHere: true},
		&InlineFragment{Text: " ", Style: style, Element: span, EndsHere: true},
		&InlineFragment{Text: "  ", Style: style, StartsHere: true, EndsHere: true},
	}
	first := stripInlineContent(run)
	want := []string{"x ", "y", ""}
	if len(first) != len(want) {
		t.Fatalf("got %d fragments, want %d", len(first), len(want))
	}
	for i, item := range first {
		if got := item.(*InlineFragment).Text; got != want[i] {
			t.Errorf("fragment %d: got %q, want %q", i, got, want[i])
		}
	}

	second := stripInlineContent(append([]Styleable(nil), first...))
	if len(second) != len(first) {
		t.Fatalf("second pass changed the length: %d != %d", len(second), len(first))
	}
	for i := range second {
		if a, b := first[i].(*InlineFragment).Text, second[i].(*InlineFragment).Text; a != b {
			t.Errorf("fragment %d changed: %q -> %q", i, a, b)
		}
	}
}

func TestStripInlineContent_AnonymousWhitespaceRunDisappears(t *testing.T) {
	style := css.NewStyle()
	run := []Styleable{
		&InlineFragment{Text: " \n ", Style: style, StartsHere: true, EndsHere: true},
		&InlineFragment{Text: "\t", Style: style, StartsHere: true, EndsHere: true},
	}
	if got := stripInlineContent(run); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestStripInlineContent_PreWhitespaceIsContent(t *testing.T) {
	style := css.NewStyle()
	style.Set("white-space", "pre")
	run := []Styleable{&InlineFragment{Text: "  ", Style: style, StartsHere: true, EndsHere: true}}
	got := stripInlineContent(run)
	if len(got) != 1 || got[0].(*InlineFragment).Text != "  " {
		t.Errorf("preserved spaces should stay")
	}
}

func TestStripInlineContent_CollapsesAcrossFloats(t *testing.T) {
	style := css.NewStyle()
	float := css.NewStyle()
	float.Set("float", "left")
	run := []Styleable{
		&InlineFragment{Text: "a ", Style: style, StartsHere: true, EndsHere: true},
		&BlockBox{Kind: KindBlock, Style: float},
		&InlineFragment{Text: " b", Style: style, StartsHere: true, EndsHere: true},
	}
	stripInlineContent(run)
	if got := run[2].(*InlineFragment).Text; got != "b" {
		t.Errorf("space after a float should collapse, got %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		ws      css.WhiteSpace
		in      string
		leading bool
		want    string
	}{
		{css.WhiteSpaceNormal, "  a  b  ", true, "a b "},
		{css.WhiteSpaceNormal, "  a", false, " a"},
		{css.WhiteSpaceNormal, "a\r\nb", false, "a b"},
		{css.WhiteSpacePre, "a\r\n  b", true, "a\n  b"},
		{css.WhiteSpacePreWrap, " a ", true, " a "},
		{css.WhiteSpacePreLine, " a \n b ", true, "a\nb "},
	}
	for _, tt := range tests {
		if got := collapseWhitespace(tt.ws, tt.in, tt.leading); got != tt.want {
			t.Errorf("collapseWhitespace(%s, %q, %v) = %q, want %q", tt.ws, tt.in, tt.leading, got, tt.want)
		}
	}
}

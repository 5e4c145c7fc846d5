package boxes

import (
	"context"
	"slices"
	"testing"

	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// buildPage builds src and returns the builder plus the cascaded page info
// of the given page.
func buildPage(t *testing.T, src string, page int) (*Builder, *css.PageInfo) {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cascade, err := css.NewCascade(doc.Stylesheets)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	b := NewBuilder(cascade)
	root, err := b.BuildRoot(context.Background(), doc.DocumentElement())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Check(root); err != nil {
		t.Fatalf("check: %v", err)
	}
	return b, cascade.PageInfo(page)
}

func marginTable(t *testing.T, b *Builder, area MarginArea) *BlockBox {
	t.Helper()
	table, err := b.BuildMarginTable(context.Background(), area)
	if err != nil {
		t.Fatalf("margin table: %v", err)
	}
	if table != nil {
		if err := Check(table); err != nil {
			t.Fatalf("check: %v\n%s", err, Dump(table))
		}
	}
	return table
}

func TestMarginTable_Top(t *testing.T) {
	b, page := buildPage(t, `<style>
.h { position: running(hdr) }
@page {
  @top-left { content: "L" }
  @top-center { content: element(hdr) }
}
</style><div class="h">Header</div><p>body</p>`, 1)

	names, dir := MarginBoxNames(SideTop)
	table := marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Height: 40, Direction: dir})
	if table == nil {
		t.Fatal("expected a margin table")
	}
	if !table.MarginAreaRoot || !table.Anonymous || table.Kind != KindTable {
		t.Errorf("unexpected root\n%s", Dump(table))
	}
	if w, _ := table.Style.Get("width"); w != "100%" {
		t.Errorf("margin table width %q", w)
	}
	rows := table.Children[0].Children
	if len(rows) != 1 || rows[0].HeightOverride != 40 {
		t.Fatalf("horizontal areas use one row of the area height\n%s", Dump(table))
	}
	cells := rows[0].Children
	if len(cells) != 3 {
		t.Fatalf("all three top boxes are created once one has a rule\n%s", Dump(table))
	}
	if got := text(cells[0]); got != "L" {
		t.Errorf("top-left: got %q", got)
	}

	orig := b.Running().Lookup("hdr", 1, RunningFirst)
	center := cells[1]
	if center.ContentType != ContentBlock || len(center.Children) != 1 {
		t.Fatalf("top-center should hold the running element as a block\n%s", Dump(center))
	}
	copied := center.Children[0]
	if copied == orig || copied.Element != orig.Element {
		t.Error("top-center should hold a copy of the running element")
	}
	if text(copied) != "Header" {
		t.Errorf("copied text %q", text(copied))
	}

	if cells[2].ContentType != ContentEmpty {
		t.Errorf("top-right has no rule and should be empty\n%s", Dump(cells[2]))
	}
	for _, c := range cells {
		if c.Style.GetDisplay() != css.DisplayTableCell {
			t.Errorf("margin box display %s", c.Style.GetDisplay())
		}
	}
}

func TestMarginTable_NoRules(t *testing.T) {
	b, page := buildPage(t, `<style>@page { @top-center { content: "x" } }</style><p>x</p>`, 1)
	names, dir := MarginBoxNames(SideBottom)
	if table := marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Direction: dir}); table != nil {
		t.Errorf("no bottom rules should give no table\n%s", Dump(table))
	}
	if table := marginTable(t, b, MarginArea{Page: nil, Number: 1, Names: names, Direction: dir}); table != nil {
		t.Error("a nil page has no margin boxes")
	}
}

func TestMarginTable_VerticalHeights(t *testing.T) {
	tests := []struct {
		name   string
		css    string
		height int
		want   []int
	}{
		{"two rows even", `@left-top { content: "a" } @left-bottom { content: "b" }`, 10, []int{5, 5}},
		{"two rows odd", `@left-top { content: "a" } @left-bottom { content: "b" }`, 11, []int{6, 5}},
		{"three rows", `@left-top { content: "a" } @left-middle { content: "m" } @left-bottom { content: "b" }`, 10, []int{4, 3, 3}},
		{"one row", `@left-middle { content: "m" }`, 7, []int{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, page := buildPage(t, `<style>@page { `+tt.css+` }</style><p>x</p>`, 1)
			names, dir := MarginBoxNames(SideLeft)
			if dir != MarginVertical {
				t.Fatal("left boxes are vertical")
			}
			table := marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Height: tt.height, Direction: dir})
			if table == nil {
				t.Fatal("expected a margin table")
			}
			var got []int
			for _, row := range table.Children[0].Children {
				if len(row.Children) != 1 {
					t.Errorf("vertical rows hold one box each\n%s", Dump(table))
				}
				got = append(got, row.HeightOverride)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got heights %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarginTable_Omission(t *testing.T) {
	tests := []struct {
		name  string
		css   string
		cells int
	}{
		{"no content and auto width", `@left-top { color: red }`, 0},
		{"explicit width keeps an empty box", `@left-top { width: 10px }`, 1},
		{"display none", `@left-top { display: none; content: "x" }`, 0},
		{"content none", `@left-top { content: none } @left-bottom { content: "b" }`, 1},
		{"other display becomes a cell", `@left-top { display: block; content: "x" }`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, page := buildPage(t, `<style>@page { `+tt.css+` }</style><p>x</p>`, 1)
			names, dir := MarginBoxNames(SideLeft)
			table := marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Height: 10, Direction: dir})
			cells := 0
			if table != nil {
				cells = len(table.Children[0].Children)
			}
			if cells != tt.cells {
				t.Errorf("got %d boxes, want %d", cells, tt.cells)
			}
		})
	}
}

func TestMarginTable_AlwaysCreateIgnoresDisplayNone(t *testing.T) {
	b, page := buildPage(t, `<style>@page { @top-left { display: none; content: "x" } @top-right { content: "r" } }</style><p>x</p>`, 1)
	names, dir := MarginBoxNames(SideTop)
	table := marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Height: 10, Direction: dir})
	cells := table.Children[0].Children[0].Children
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells\n%s", Dump(table))
	}
	if text(cells[0]) != "x" || cells[0].Style.GetDisplay() != css.DisplayTableCell {
		t.Errorf("top-left should be created as a cell\n%s", Dump(table))
	}
}

func TestMarginTable_PageCounters(t *testing.T) {
	b, page := buildPage(t, `<style>@page { @bottom-center { content: "Page " counter(page) " of " counter(pages) } }</style><p>x</p>`, 4)
	names, dir := MarginBoxNames(SideBottom)
	table := marginTable(t, b, MarginArea{Page: page, Number: 4, Names: names, Height: 10, Direction: dir})
	center := table.Children[0].Children[0].Children[1]
	if got := text(center); got != "Page 999 of 999" {
		t.Fatalf("placeholders: got %q", got)
	}
	if err := ResolveDynamic(table, EvalContext{Page: 4, PageCount: 9}); err != nil {
		t.Fatal(err)
	}
	if got := text(center); got != "Page 4 of 9" {
		t.Errorf("resolved: got %q", got)
	}
}

func TestMarginTable_RunningPositions(t *testing.T) {
	b, page := buildPage(t, `<style>
.h { position: running(hdr) }
@page { @top-center { content: element(hdr, last) } }
</style><div class="h">One</div><div class="h">Two</div><p>x</p>`, 2)
	boxes := []*BlockBox{b.Running().Lookup("hdr", 1, RunningFirst), b.Running().Lookup("hdr", 1, RunningLast)}
	b.Running().Place(boxes[1], 2)

	names, dir := MarginBoxNames(SideTop)
	table := marginTable(t, b, MarginArea{Page: page, Number: 2, Names: names, Height: 10, Direction: dir})
	center := table.Children[0].Children[0].Children[1]
	if got := text(center.Children[0]); got != "Two" {
		t.Errorf("last on page 2: got %q", got)
	}

	table = marginTable(t, b, MarginArea{Page: page, Number: 1, Names: names, Height: 10, Direction: dir})
	center = table.Children[0].Children[0].Children[1]
	if got := text(center.Children[0]); got != "One" {
		t.Errorf("last on page 1: got %q", got)
	}
}

func TestMarginTable_Cancelled(t *testing.T) {
	b, page := buildPage(t, `<style>@page { @top-center { content: "x" } }</style><p>x</p>`, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	names, dir := MarginBoxNames(SideTop)
	if _, err := b.BuildMarginTable(ctx, MarginArea{Page: page, Number: 1, Names: names, Direction: dir}); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestApportionRowHeights(t *testing.T) {
	rows := []*BlockBox{{}, {}, {}}
	apportionRowHeights(rows, 11)
	got := []int{rows[0].HeightOverride, rows[1].HeightOverride, rows[2].HeightOverride}
	if !slices.Equal(got, []int{4, 4, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestMarginBoxNames(t *testing.T) {
	tests := []struct {
		side  PageSide
		first css.MarginBoxName
		dir   MarginDirection
	}{
		{SideTop, css.TopLeft, MarginHorizontal},
		{SideBottom, css.BottomLeft, MarginHorizontal},
		{SideLeft, css.LeftTop, MarginVertical},
		{SideRight, css.RightTop, MarginVertical},
	}
	for _, tt := range tests {
		names, dir := MarginBoxNames(tt.side)
		if len(names) != 3 || names[0] != tt.first || dir != tt.dir {
			t.Errorf("%s: got %v %v", tt.side, names, dir)
		}
	}
}

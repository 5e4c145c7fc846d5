package boxes

import (
	"context"
	"slices"
	"testing"

	"boxtree/pkg/css"
)

func TestTables_OrphanCellGetsFullTable(t *testing.T) {
	body := buildBody(t, `<div><p style="display: table-cell">x</p></div>`)
	div := body.Children[0]
	if len(div.Children) != 1 {
		t.Fatalf("expected one anonymous table\n%s", Dump(div))
	}
	table := div.Children[0]
	path := []*BlockBox{table}
	for b := table; len(b.Children) > 0 && b.Kind != KindTableCell; b = b.Children[0] {
		path = append(path, b.Children[0])
	}
	want := []Kind{KindTable, KindTableSection, KindTableRow, KindTableCell}
	if got := kinds(path); !slices.Equal(got, want) {
		t.Fatalf("got path %v, want %v\n%s", got, want, Dump(div))
	}
	for _, b := range path[:3] {
		if !b.Anonymous {
			t.Errorf("%s should be anonymous", b.Kind)
		}
	}
	if path[3].Anonymous || path[3].Element.TagName != "p" {
		t.Errorf("the cell should be the p element")
	}
	if table.Style.GetDisplay() != css.DisplayTable {
		t.Errorf("anonymous table in a block should be display table, got %s", table.Style.GetDisplay())
	}
}

func TestTables_OrphanCellInInlineMakesInlineTable(t *testing.T) {
	body := buildBody(t, `<div>a<span><i style="display: table-cell">x</i></span></div>`)
	div := body.Children[0]
	var table *BlockBox
	div.Walk(func(b *BlockBox) bool {
		if b.Kind == KindTable && table == nil {
			table = b
		}
		return true
	})
	if table == nil {
		t.Fatalf("no anonymous table\n%s", Dump(div))
	}
	if table.Style.GetDisplay() != css.DisplayInlineTable {
		t.Errorf("expected inline-table, got %s", table.Style.GetDisplay())
	}
	if len(div.Children) != 1 || div.Children[0].Kind != KindAnonymousBlock {
		t.Errorf("the inline table should share an anonymous block with the text\n%s", Dump(div))
	}
}

func TestTables_NonCellContentOfRowIsWrapped(t *testing.T) {
	body := buildBody(t, `<div style="display: table-row">loose<div style="display: table-cell">cell</div></div>`)
	row := findBox(body, "div")
	if row == nil {
		t.Fatalf("no row\n%s", Dump(body))
	}
	if len(row.Children) != 2 {
		t.Fatalf("expected an anonymous cell and the td\n%s", Dump(row))
	}
	anon := row.Children[0]
	if anon.Kind != KindTableCell || !anon.Anonymous || text(anon) != "loose" {
		t.Errorf("loose text should be wrapped in an anonymous cell\n%s", Dump(row))
	}
}

func TestTables_OrphanRowInsideRow(t *testing.T) {
	body := buildBody(t, `<div style="display: table-row"><div style="display: table-row"><div style="display: table-cell">x</div></div></div>`)
	outer := findBox(body, "div")
	if outer == nil || outer.Kind != KindTableRow {
		t.Fatalf("expected the outer div as a row\n%s", Dump(body))
	}
	cell := outer.Children[0]
	if cell.Kind != KindTableCell || !cell.Anonymous {
		t.Fatalf("the inner row should sit in an anonymous cell\n%s", Dump(outer))
	}
	if len(cell.Children) != 1 || cell.Children[0].Kind != KindTable || !cell.Children[0].Anonymous {
		t.Fatalf("the orphaned row should get its own anonymous table\n%s", Dump(cell))
	}
}

func TestTables_SectionOrder(t *testing.T) {
	body := buildBody(t, `<table>`+
		`<tfoot id="f1"><tr><td>f</td></tr></tfoot>`+
		`<tbody id="b1"><tr><td>b</td></tr></tbody>`+
		`<thead id="h1"><tr><td>h</td></tr></thead>`+
		`<thead id="h2"><tr><td>h2</td></tr></thead>`+
		`<tfoot id="f2"><tr><td>f2</td></tr></tfoot>`+
		`</table>`)
	table := findBox(body, "table")
	var ids []string
	for _, s := range table.Children {
		id, _ := s.Element.GetAttribute("id")
		ids = append(ids, id)
	}
	if want := []string{"h1", "b1", "h2", "f2", "f1"}; !slices.Equal(ids, want) {
		t.Fatalf("got section order %v, want %v", ids, want)
	}
	if !table.Children[0].IsHeader() || !table.Children[4].IsFooter() {
		t.Error("first header and first footer should be marked")
	}
	for _, s := range table.Children[1:4] {
		if s.IsHeader() || s.IsFooter() {
			t.Errorf("%s should be a plain body", s.Element.Describe())
		}
	}
}

func TestTables_Captions(t *testing.T) {
	body := buildBody(t, `<style>.bottom { caption-side: bottom }</style>`+
		`<table><caption class="bottom">b</caption><caption>t</caption><tr><td>x</td></tr></table>`)
	wrapper := body.Children[0]
	if !wrapper.FromCaptionedTable || !wrapper.Anonymous || wrapper.Element.TagName != "table" {
		t.Fatalf("expected a captioned table wrapper\n%s", Dump(body))
	}
	if len(wrapper.Children) != 3 {
		t.Fatalf("wrapper should hold caption, table, caption\n%s", Dump(wrapper))
	}
	if text(wrapper.Children[0]) != "t" || wrapper.Children[1].Kind != KindTable || text(wrapper.Children[2]) != "b" {
		t.Errorf("unexpected wrapper order\n%s", Dump(wrapper))
	}
	if wrapper.Style.GetDisplay() != css.DisplayBlock {
		t.Errorf("wrapper display %s", wrapper.Style.GetDisplay())
	}
}

func TestTables_FloatMovesToCaptionWrapper(t *testing.T) {
	body := buildBody(t, `<table style="float: left"><caption>c</caption><tr><td>x</td></tr></table><p>b</p>`)
	if len(body.Children) != 2 || body.Children[0].Kind != KindAnonymousBlock {
		t.Fatalf("the floated wrapper should sit in an anonymous block\n%s", Dump(body))
	}
	wrapper, ok := body.Children[0].Inline[0].(*BlockBox)
	if !ok || !wrapper.FromCaptionedTable {
		t.Fatalf("expected the caption wrapper\n%s", Dump(body))
	}
	if wrapper.Floated == nil || wrapper.Floated.Side != css.FloatLeft || wrapper.Style.GetFloat() != css.FloatLeft {
		t.Error("wrapper should float left")
	}
	table := wrapper.Children[1]
	if table.Floated != nil || table.Style.IsFloated() {
		t.Error("the table itself should no longer float")
	}
}

func TestTables_UncaptionedFloatStaysOnTable(t *testing.T) {
	body := buildBody(t, `<table style="float: right"><tr><td>x</td></tr></table>`)
	table := findBox(body, "table")
	if table.Floated == nil || table.Floated.Side != css.FloatRight {
		t.Errorf("table without captions keeps its float\n%s", Dump(body))
	}
}

func TestTables_Columns(t *testing.T) {
	body := buildBody(t, `<table><colgroup span="2"></colgroup><colgroup><col><col span="3"></colgroup><tr><td>x</td></tr></table>`)
	table := findBox(body, "table")
	if len(table.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(table.Columns))
	}
	spans := []int{table.Columns[0].Span, table.Columns[1].Span, table.Columns[2].Span}
	if !slices.Equal(spans, []int{2, 1, 3}) {
		t.Errorf("got spans %v", spans)
	}
	if table.Columns[0].Group != nil || table.Columns[0].Element.TagName != "colgroup" {
		t.Error("an empty group counts as a column")
	}
	if g := table.Columns[1].Group; g == nil || g.Element.TagName != "colgroup" {
		t.Error("columns should point at their group")
	}
	for _, s := range table.Children {
		if s.Kind != KindTableSection {
			t.Errorf("columns must not become boxes\n%s", Dump(table))
		}
	}
}

func TestTables_ColumnsReachTheNearestTable(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "column in a row group",
			src: `<div id="t" style="display: table"><div style="display: table-row-group">` +
				`<div style="display: table-column"></div><div style="display: table-row"><div style="display: table-cell">x</div></div>` +
				`</div></div>`,
			want: 1,
		},
		{
			name: "column in a row",
			src: `<div id="t" style="display: table"><div style="display: table-row">` +
				`<span style="display: table-column"></span><div style="display: table-cell">x</div>` +
				`</div></div>`,
			want: 1,
		},
		{
			name: "column inside a cell",
			src: `<div id="t" style="display: table"><div style="display: table-row"><div style="display: table-cell">` +
				`<div style="display: table-column"></div>x</div></div></div>`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody(t, tt.src)
			var table *BlockBox
			body.Walk(func(b *BlockBox) bool {
				if table == nil && b.Kind == KindTable && b.Element != nil {
					if id, _ := b.Element.GetAttribute("id"); id == "t" {
						table = b
					}
				}
				return table == nil
			})
			if table == nil {
				t.Fatalf("no table box\n%s", Dump(body))
			}
			if len(table.Columns) != tt.want {
				t.Errorf("got %d columns, want %d\n%s", len(table.Columns), tt.want, Dump(body))
			}
		})
	}
}

func TestTables_CaptionedInlineTableStaysInline(t *testing.T) {
	body := buildBody(t, `<p>a<span style="display: inline-table"><span style="display: table-caption">c</span>x</span>b</p>`)
	p := findBox(body, "p")
	if p.ContentType != ContentInline || len(p.Inline) != 3 {
		t.Fatalf("the wrapped inline table should stay in the line\n%s", Dump(p))
	}
	wrapper, ok := p.Inline[1].(*BlockBox)
	if !ok || !wrapper.FromCaptionedTable || wrapper.Style.GetDisplay() != css.DisplayInlineBlock {
		t.Fatalf("expected an inline-block caption wrapper\n%s", Dump(p))
	}
	if got := kinds(wrapper.Children); !slices.Equal(got, []Kind{KindBlock, KindTable}) {
		t.Errorf("unexpected wrapper children %v\n%s", got, Dump(p))
	}
}

func TestTables_WhitespaceInsideTableIsIgnored(t *testing.T) {
	body := buildBody(t, "<table>\n  <tr>\n    <td>x</td>\n  </tr>\n</table>")
	row := findBox(body, "tr")
	if len(row.Children) != 1 {
		t.Errorf("whitespace between cells should vanish\n%s", Dump(row))
	}
}

func TestTableNesting(t *testing.T) {
	if got := nextTableNestingLevel(css.DisplayInlineTable); got != css.DisplayTableRowGroup {
		t.Errorf("inline-table children should be row groups, got %q", got)
	}
	if got := previousTableNestingLevel(css.DisplayTableCaption); got != css.DisplayTable {
		t.Errorf("captions are wrapped in tables, got %q", got)
	}
	if !isProperTableNesting(css.DisplayTable, css.DisplayTableCaption) {
		t.Error("captions belong in tables")
	}
	if isProperTableNesting(css.DisplayTableRow, css.DisplayTableRow) {
		t.Error("rows do not nest")
	}
	if !matchesTableLevel(css.DisplayTableRowGroup, css.DisplayTableHeaderGroup) {
		t.Error("header groups match the row group level")
	}
}

func TestReorder_Cancelled(t *testing.T) {
	b := NewBuilder(nil)
	table := &BlockBox{Kind: KindTable, Style: css.NewStyle(), Children: []*BlockBox{{Style: css.NewStyle()}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.reorderTableContent(ctx, table); err == nil {
		t.Error("expected cancellation error")
	}
}

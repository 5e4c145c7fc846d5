package boxes

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"boxtree/pkg/counters"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// ErrAborted is returned when the build context is cancelled.
var ErrAborted = errors.New("box construction aborted")

// StyleSource supplies computed styles. *css.Cascade implements it.
type StyleSource interface {
	// Style returns the style of an element, or nil for other nodes.
	Style(n *html.Node) *css.Style
	// PseudoStyle returns the style of n::pseudo, or nil when no rule
	// targets it.
	PseudoStyle(n *html.Node, pseudo string) *css.Style
}

// Builder builds box trees. A Builder holds the counter and quote state of
// one document walk and must not be used from several goroutines.
type Builder struct {
	styles    StyleSource
	log       *zap.Logger
	functions FunctionFactory
	counters  *counters.Context
	running   *RunningBlocks

	root       *html.Node
	quoteDepth int
	// nearest table while its sections and rows are collected
	table *BlockBox

	upper, lower, title cases.Caser
}

type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log.Named("boxes") }
}

// WithFunctions registers content functions. They are consulted before the
// built-in ones.
func WithFunctions(f FunctionFactory) Option {
	return func(b *Builder) { b.functions = ChainFactories(f, b.functions) }
}

// WithCounters shares a counter context with the caller.
func WithCounters(c *counters.Context) Option {
	return func(b *Builder) { b.counters = c }
}

// WithRunningBlocks shares the running element registry, e.g. so that
// margin boxes of later pages can be built by another Builder.
func WithRunningBlocks(r *RunningBlocks) Option {
	return func(b *Builder) { b.running = r }
}

func NewBuilder(styles StyleSource, opts ...Option) *Builder {
	b := &Builder{
		styles:    styles,
		log:       zap.NewNop(),
		functions: BuiltinFunctions(),
		counters:  counters.NewContext(),
		running:   NewRunningBlocks(),
		upper:     cases.Upper(language.Und),
		lower:     cases.Lower(language.Und),
		title:     cases.Title(language.Und, cases.NoLower),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Running returns the registry running elements are recorded in.
func (b *Builder) Running() *RunningBlocks { return b.running }

// Counters returns the counter context of the walk.
func (b *Builder) Counters() *counters.Context { return b.counters }

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return nil
}

// BuildRoot builds the box tree of a document element.
func (b *Builder) BuildRoot(ctx context.Context, root *html.Node) (*BlockBox, error) {
	if root == nil || !root.IsElement() {
		return nil, errors.New("boxes: root must be an element")
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	b.root = root
	style := b.styles.Style(root)
	if style == nil {
		style = css.NewStyle().CreateAnonymousStyle(css.DisplayBlock)
	}
	b.counters.Apply(style)

	info := &childBoxInfo{}
	box := b.newBlockBox(style, info, false)
	if box.Kind != KindTable {
		box.Kind = KindBlock
	}
	box.Element = root
	if style.GetDisplay() == css.DisplayNone {
		b.log.Debug("document element is not displayed", zap.String("element", root.Describe()))
		return box, nil
	}
	if err := b.CreateChildren(ctx, box); err != nil {
		return nil, err
	}
	if box.Kind == KindTable {
		return b.reorderTableContent(ctx, box)
	}
	return box, nil
}

// CreateChildren builds the content of parent from its element's children
// and generated content, replacing whatever content it had.
func (b *Builder) CreateChildren(ctx context.Context, parent *BlockBox) error {
	parent.Children = nil
	parent.Inline = nil
	parent.ContentType = ContentEmpty
	if parent.Element == nil {
		return nil
	}

	defer func(table *BlockBox) { b.table = table }(b.table)
	switch parent.Kind {
	case KindTable:
		b.table = parent
	case KindTableSection, KindTableRow:
	default:
		b.table = nil
	}

	info := &childBoxInfo{}
	var children []Styleable
	if err := b.collect(ctx, parent, parent.Element, parent.Style, &children, info, false); err != nil {
		return err
	}

	nesting := isNestingTableContent(parent.Style.GetDisplay())
	if !nesting && !info.containsTableContent {
		return b.resolveChildren(ctx, parent, children, info)
	}
	children = stripAllWhitespace(children)
	if nesting {
		return b.resolveTableContent(ctx, parent, children, info)
	}
	return b.resolveChildTableContent(ctx, parent, children, info, css.DisplayTableCell)
}

// newBlockBox picks the box variant for style. Generated content never
// produces table, row or section boxes.
func (b *Builder) newBlockBox(style *css.Style, info *childBoxInfo, generated bool) *BlockBox {
	box := &BlockBox{Style: style}
	display := style.GetDisplay()
	switch {
	case style.IsFloated() && !style.IsAbsolute() && !style.IsFixed():
		switch display {
		case css.DisplayTable, css.DisplayInlineTable:
			box.Kind = KindTable
		case css.DisplayTableCell:
			info.containsTableContent = true
			box.Kind = KindTableCell
		default:
			box.Kind = KindBlock
		}
		box.Floated = &FloatedBoxData{Side: style.GetFloat()}
	case display == css.DisplayBlock || display == css.DisplayListItem:
		box.Kind = KindBlock
	case !generated && (display == css.DisplayTable || display == css.DisplayInlineTable):
		box.Kind = KindTable
	case display == css.DisplayTableCell:
		info.containsTableContent = true
		box.Kind = KindTableCell
	case !generated && display == css.DisplayTableRow:
		info.containsTableContent = true
		box.Kind = KindTableRow
	case !generated && display.IsTableSection():
		info.containsTableContent = true
		box.Kind = KindTableSection
		box.Section = sectionRole(display)
	case display == css.DisplayTableCaption:
		info.containsTableContent = true
		box.Kind = KindBlock
	default:
		box.Kind = KindBlock
	}
	return box
}

func sectionRole(d css.DisplayType) SectionRole {
	switch d {
	case css.DisplayTableHeaderGroup:
		return SectionHeader
	case css.DisplayTableFooterGroup:
		return SectionFooter
	}
	return SectionBody
}

func (b *Builder) transformText(text string, tt css.TextTransform) string {
	switch tt {
	case css.TextTransformUppercase:
		return b.upper.String(text)
	case css.TextTransformLowercase:
		return b.lower.String(text)
	case css.TextTransformCapitalize:
		return b.title.String(text)
	}
	return text
}

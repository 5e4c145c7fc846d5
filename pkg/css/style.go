package css

import (
	"strconv"
	"strings"
)

// Style is the computed property set of an element, pseudo-element or
// anonymous box. Inherited properties are copied in when the style is
// computed, so Get never has to walk the parent chain.
type Style struct {
	Properties map[string]string
	parent     *Style
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

// Parent returns the style this one inherited from, or nil for the root.
func (s *Style) Parent() *Style {
	if s == nil {
		return nil
	}
	return s.parent
}

func (s *Style) Get(property string) (string, bool) {
	if s == nil {
		return "", false
	}
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

// keyword returns the lower-cased value of property, or def when unset.
func (s *Style) keyword(property, def string) string {
	if v, ok := s.Get(property); ok && v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return def
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// IsAutoWidth reports whether width is unset or auto.
func (s *Style) IsAutoWidth() bool {
	return s.keyword("width", "auto") == "auto"
}

// IsAutoHeight reports whether height is unset or auto.
func (s *Style) IsAutoHeight() bool {
	return s.keyword("height", "auto") == "auto"
}

// Position type constants
type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
	// PositionRunning is position: running(name), which moves an element
	// out of the flow and into a page margin box.
	PositionRunning  PositionType = "running"
)

// GetPosition returns the position type (default: static)
func (s *Style) GetPosition() PositionType {
	pos := s.keyword("position", "static")
	switch {
	case pos == "relative":
		return PositionRelative
	case pos == "absolute":
		return PositionAbsolute
	case pos == "fixed":
		return PositionFixed
	case strings.HasPrefix(pos, "running("):
		return PositionRunning
	}
	return PositionStatic
}

// RunningName returns the name given in position: running(name).
func (s *Style) RunningName() (string, bool) {
	v, ok := s.Get("position")
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(strings.ToLower(v), "running(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	name := strings.TrimSpace(v[len("running(") : len(v)-1])
	if name == "" {
		return "", false
	}
	return name, true
}

func (s *Style) IsAbsolute() bool { return s.GetPosition() == PositionAbsolute }
func (s *Style) IsFixed() bool    { return s.GetPosition() == PositionFixed }
func (s *Style) IsRunning() bool  { return s.GetPosition() == PositionRunning }

// FloatType represents the float property value
type FloatType string

const (
	FloatNone  FloatType = "none"
	FloatLeft  FloatType = "left"
	FloatRight FloatType = "right"
)

// GetFloat returns the float value (default: none)
func (s *Style) GetFloat() FloatType {
	switch s.keyword("float", "none") {
	case "left":
		return FloatLeft
	case "right":
		return FloatRight
	}
	return FloatNone
}

func (s *Style) IsFloated() bool { return s.GetFloat() != FloatNone }

// DisplayType represents the display property value
type DisplayType string

const (
	DisplayBlock            DisplayType = "block"
	DisplayInline           DisplayType = "inline"
	DisplayInlineBlock      DisplayType = "inline-block"
	DisplayNone             DisplayType = "none"
	DisplayListItem         DisplayType = "list-item"
	DisplayTable            DisplayType = "table"
	DisplayInlineTable      DisplayType = "inline-table"
	DisplayTableRowGroup    DisplayType = "table-row-group"
	DisplayTableHeaderGroup DisplayType = "table-header-group"
	DisplayTableFooterGroup DisplayType = "table-footer-group"
	DisplayTableRow         DisplayType = "table-row"
	DisplayTableCell        DisplayType = "table-cell"
	DisplayTableCaption     DisplayType = "table-caption"
	DisplayTableColumn      DisplayType = "table-column"
	DisplayTableColumnGroup DisplayType = "table-column-group"
)

var knownDisplays = map[string]DisplayType{
	"block":              DisplayBlock,
	"inline":             DisplayInline,
	"inline-block":       DisplayInlineBlock,
	"none":               DisplayNone,
	"list-item":          DisplayListItem,
	"table":              DisplayTable,
	"inline-table":       DisplayInlineTable,
	"table-row-group":    DisplayTableRowGroup,
	"table-header-group": DisplayTableHeaderGroup,
	"table-footer-group": DisplayTableFooterGroup,
	"table-row":          DisplayTableRow,
	"table-cell":         DisplayTableCell,
	"table-caption":      DisplayTableCaption,
	"table-column":       DisplayTableColumn,
	"table-column-group": DisplayTableColumnGroup,

	// flow-root and flex containers build block boxes here
	"flow-root":   DisplayBlock,
	"flex":        DisplayBlock,
	"grid":        DisplayBlock,
	"inline-flex": DisplayInlineBlock,
	"inline-grid": DisplayInlineBlock,
}

// GetDisplay returns the display value. Unset and unrecognized values are
// inline, the initial value.
func (s *Style) GetDisplay() DisplayType {
	if d, ok := knownDisplays[s.keyword("display", "inline")]; ok {
		return d
	}
	return DisplayInline
}

// IsTableSection reports row-group, header-group and footer-group.
func (d DisplayType) IsTableSection() bool {
	return d == DisplayTableRowGroup || d == DisplayTableHeaderGroup || d == DisplayTableFooterGroup
}

// IsTableContent reports the displays that take part in table structure.
func (d DisplayType) IsTableContent() bool {
	switch d {
	case DisplayTable, DisplayInlineTable, DisplayTableRow, DisplayTableCell,
		DisplayTableCaption, DisplayTableColumn, DisplayTableColumnGroup:
		return true
	}
	return d.IsTableSection()
}

// IsTableInternal reports displays that must live inside a table.
func (d DisplayType) IsTableInternal() bool {
	return d.IsTableContent() && d != DisplayTable && d != DisplayInlineTable
}

// IsInline reports whether the element generates a plain inline box: it is
// display: inline and neither floated, absolutely positioned nor running.
func (s *Style) IsInline() bool {
	if s.GetDisplay() != DisplayInline {
		return false
	}
	return !s.IsFloated() && !s.IsAbsolute() && !s.IsFixed() && !s.IsRunning()
}

// IsLaidOutInInlineContext reports whether the box takes part in an inline
// formatting context as an inline-level or out-of-flow box.
func (s *Style) IsLaidOutInInlineContext() bool {
	if s.IsFloated() || s.IsAbsolute() || s.IsFixed() || s.IsRunning() {
		return true
	}
	switch s.GetDisplay() {
	case DisplayInline, DisplayInlineBlock, DisplayInlineTable:
		return true
	}
	return false
}

// WhiteSpace represents the white-space property value
type WhiteSpace string

const (
	WhiteSpaceNormal  WhiteSpace = "normal"
	WhiteSpacePre     WhiteSpace = "pre"
	WhiteSpaceNowrap  WhiteSpace = "nowrap"
	WhiteSpacePreWrap WhiteSpace = "pre-wrap"
	WhiteSpacePreLine WhiteSpace = "pre-line"
)

func (s *Style) GetWhiteSpace() WhiteSpace {
	switch ws := WhiteSpace(s.keyword("white-space", "normal")); ws {
	case WhiteSpacePre, WhiteSpaceNowrap, WhiteSpacePreWrap, WhiteSpacePreLine:
		return ws
	}
	return WhiteSpaceNormal
}

// CollapsesSpaces reports whether runs of spaces and tabs collapse.
func (ws WhiteSpace) CollapsesSpaces() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpaceNowrap || ws == WhiteSpacePreLine
}

// CaptionSide is top (the default) or bottom.
type CaptionSide string

const (
	CaptionTop    CaptionSide = "top"
	CaptionBottom CaptionSide = "bottom"
)

func (s *Style) GetCaptionSide() CaptionSide {
	if s.keyword("caption-side", "top") == "bottom" {
		return CaptionBottom
	}
	return CaptionTop
}

// TextTransform represents the text-transform property value
type TextTransform string

const (
	TextTransformNone       TextTransform = "none"
	TextTransformUppercase  TextTransform = "uppercase"
	TextTransformLowercase  TextTransform = "lowercase"
	TextTransformCapitalize TextTransform = "capitalize"
)

func (s *Style) GetTextTransform() TextTransform {
	switch tt := TextTransform(s.keyword("text-transform", "none")); tt {
	case TextTransformUppercase, TextTransformLowercase, TextTransformCapitalize:
		return tt
	}
	return TextTransformNone
}

// TextAlign represents the text-align property value
type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// GetTextAlign returns the text-align value (default: left)
func (s *Style) GetTextAlign() TextAlign {
	switch s.keyword("text-align", "left") {
	case "center":
		return TextAlignCenter
	case "right":
		return TextAlignRight
	}
	return TextAlignLeft
}

// VerticalAlign represents the vertical-align property value
type VerticalAlign string

const (
	VerticalAlignBaseline VerticalAlign = "baseline"
	VerticalAlignTop      VerticalAlign = "top"
	VerticalAlignMiddle   VerticalAlign = "middle"
	VerticalAlignBottom   VerticalAlign = "bottom"
)

// GetVerticalAlign returns the vertical-align value (default: baseline)
func (s *Style) GetVerticalAlign() VerticalAlign {
	switch s.keyword("vertical-align", "baseline") {
	case "top":
		return VerticalAlignTop
	case "middle":
		return VerticalAlignMiddle
	case "bottom":
		return VerticalAlignBottom
	}
	return VerticalAlignBaseline
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(decls map[string]string, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(decls, property, value)
	case "border":
		expandBorderProperty(decls, value)
	default:
		decls[property] = value
	}
}

// expandBoxProperty expands margin/padding shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
//
//	"10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func expandBoxProperty(decls map[string]string, prefix, value string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	decls[prefix+"-top"] = top
	decls[prefix+"-right"] = right
	decls[prefix+"-bottom"] = bottom
	decls[prefix+"-left"] = left
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func expandBorderProperty(decls map[string]string, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasSuffix(part, "px"):
			for _, side := range []string{"top", "right", "bottom", "left"} {
				decls["border-"+side+"-width"] = part
			}
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double" || part == "none":
			decls["border-style"] = part
		default:
			decls["border-color"] = part
		}
	}
}

package boxes

import (
	"fmt"
	"strconv"
	"strings"
)

// Outline is a printable view of a box tree. It marshals to YAML.
type Outline struct {
	Kind     string     `yaml:"kind"`
	Element  string     `yaml:"element,omitempty"`
	Pseudo   string     `yaml:"pseudo,omitempty"`
	Text     string     `yaml:"text,omitempty"`
	Flags    []string   `yaml:"flags,omitempty,flow"`
	Children []*Outline `yaml:"children,omitempty"`
}

// NewOutline describes box and everything below it.
func NewOutline(box *BlockBox) *Outline {
	o := &Outline{
		Kind:    box.Kind.String(),
		Element: box.Element.Describe(),
		Pseudo:  box.Pseudo,
	}
	if box.Anonymous && box.Kind != KindAnonymousBlock {
		o.Flags = append(o.Flags, "anon")
	}
	if box.Floated != nil {
		o.Flags = append(o.Flags, "float="+string(box.Floated.Side))
	}
	if box.FromCaptionedTable {
		o.Flags = append(o.Flags, "captioned")
	}
	if box.MarginAreaRoot {
		o.Flags = append(o.Flags, "margin-area")
	}
	if box.IsHeader() {
		o.Flags = append(o.Flags, "header")
	}
	if box.IsFooter() {
		o.Flags = append(o.Flags, "footer")
	}
	if box.Kind == KindTableRow && box.HeightOverride > 0 {
		o.Flags = append(o.Flags, "height="+strconv.Itoa(box.HeightOverride))
	}
	if box.IsListItem() {
		o.Flags = append(o.Flags, "list="+strconv.Itoa(box.ListCounter))
	}
	if len(box.Columns) > 0 {
		o.Flags = append(o.Flags, "columns="+strconv.Itoa(len(box.Columns)))
	}
	if name, ok := box.Style.RunningName(); ok {
		o.Flags = append(o.Flags, "running="+name)
	}

	for _, child := range box.Children {
		o.Children = append(o.Children, NewOutline(child))
	}
	for _, item := range box.Inline {
		switch v := item.(type) {
		case *InlineFragment:
			o.Children = append(o.Children, fragmentOutline(v))
		case *BlockBox:
			o.Children = append(o.Children, NewOutline(v))
		}
	}
	return o
}

func fragmentOutline(f *InlineFragment) *Outline {
	o := &Outline{
		Kind:    "inline",
		Element: f.Element.Describe(),
		Pseudo:  f.Pseudo,
		Text:    f.Text,
	}
	if f.StartsHere {
		o.Flags = append(o.Flags, "start")
	}
	if f.EndsHere {
		o.Flags = append(o.Flags, "end")
	}
	if f.Reopened {
		o.Flags = append(o.Flags, "reopened")
	}
	if f.Dynamic != nil {
		o.Flags = append(o.Flags, "dynamic")
	}
	return o
}

// String renders the outline one node per line, indented by depth.
func (o *Outline) String() string {
	var sb strings.Builder
	o.write(&sb, 0)
	return sb.String()
}

func (o *Outline) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(o.Kind)
	if o.Element != "" {
		sb.WriteByte(' ')
		sb.WriteString(o.Element)
	}
	if o.Pseudo != "" {
		sb.WriteString("::")
		sb.WriteString(o.Pseudo)
	}
	if o.Kind == "inline" {
		fmt.Fprintf(sb, " %q", o.Text)
	}
	if len(o.Flags) > 0 {
		fmt.Fprintf(sb, " [%s]", strings.Join(o.Flags, " "))
	}
	sb.WriteByte('\n')
	for _, c := range o.Children {
		c.write(sb, depth+1)
	}
}

// Dump renders the box tree as indented text.
func Dump(box *BlockBox) string {
	return NewOutline(box).String()
}

// Package render paints a box tree as nested outlines, one labelled
// rectangle per box, for inspecting how a document was split into boxes.
package render

import (
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/fogleman/gg"

	"boxtree/pkg/boxes"
)

const (
	lineHeight = 16.0
	indent     = 10.0
	gap        = 4.0
	margin     = 8.0
	// longest text shown for an inline run
	maxTextRunes = 60
)

type rgb struct{ r, g, b float64 }

var kindColors = map[string]rgb{
	"block":      {0.20, 0.35, 0.75},
	"anon-block": {0.45, 0.55, 0.80},
	"table":      {0.70, 0.30, 0.15},
	"section":    {0.75, 0.50, 0.10},
	"row":        {0.55, 0.55, 0.10},
	"cell":       {0.15, 0.55, 0.25},
	"inline":     {0.30, 0.30, 0.30},
}

// Renderer draws onto a canvas sized to the tree it was created for.
type Renderer struct {
	context *gg.Context
	outline *boxes.Outline
	width   float64
}

// NewRenderer sizes a canvas of the given width for the box tree under root.
func NewRenderer(width int, root *boxes.BlockBox) *Renderer {
	o := boxes.NewOutline(root)
	height := measure(o) + 2*margin
	return &Renderer{
		context: gg.NewContext(width, int(height)),
		outline: o,
		width:   float64(width),
	}
}

// measure returns the height of the rectangle drawn for o.
func measure(o *boxes.Outline) float64 {
	if o.Kind == "inline" {
		return lineHeight
	}
	h := lineHeight + gap
	for _, c := range o.Children {
		h += measure(c) + gap
	}
	return h
}

// Render paints the whole tree.
func (r *Renderer) Render() {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.drawOutline(r.outline, margin, margin, r.width-2*margin)
}

// drawOutline paints o with its top-left corner at x, y and returns the
// height used.
func (r *Renderer) drawOutline(o *boxes.Outline, x, y, w float64) float64 {
	dc := r.context
	c, ok := kindColors[o.Kind]
	if !ok {
		c = kindColors["block"]
	}

	if o.Kind == "inline" {
		dc.SetRGB(c.r, c.g, c.b)
		dc.DrawStringAnchored(truncate(label(o), maxTextRunes), x+2, y+lineHeight/2, 0, 0.5)
		return lineHeight
	}

	h := measure(o)
	dc.Push()
	if anonymous(o) {
		dc.SetDash(4, 3)
	}
	dc.SetLineWidth(1)
	dc.SetRGB(c.r, c.g, c.b)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.Pop()

	dc.SetRGB(c.r, c.g, c.b)
	dc.DrawStringAnchored(truncate(label(o), maxTextRunes), x+4, y+lineHeight/2+1, 0, 0.5)

	cy := y + lineHeight + gap
	for _, child := range o.Children {
		cy += r.drawOutline(child, x+indent, cy, w-2*indent) + gap
	}
	return h
}

func anonymous(o *boxes.Outline) bool {
	if o.Kind == "anon-block" {
		return true
	}
	for _, f := range o.Flags {
		if f == "anon" {
			return true
		}
	}
	return false
}

func label(o *boxes.Outline) string {
	var sb strings.Builder
	if o.Kind == "inline" {
		if o.Pseudo != "" {
			sb.WriteString("::" + o.Pseudo + " ")
		}
		sb.WriteString(`"` + o.Text + `"`)
		return sb.String()
	}
	sb.WriteString(o.Kind)
	if o.Element != "" {
		sb.WriteString(" " + o.Element)
	}
	if o.Pseudo != "" {
		sb.WriteString("::" + o.Pseudo)
	}
	if len(o.Flags) > 0 {
		sb.WriteString(" [" + strings.Join(o.Flags, " ") + "]")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// EncodePNG writes the canvas as PNG to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.context.Image())
}

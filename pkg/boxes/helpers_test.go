package boxes

import (
	"context"
	"strings"
	"testing"

	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// build parses src, builds its box tree and validates it.
func build(t *testing.T, src string, opts ...Option) (*Builder, *BlockBox) {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cascade, err := css.NewCascade(doc.Stylesheets)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	b := NewBuilder(cascade, opts...)
	root, err := b.BuildRoot(context.Background(), doc.DocumentElement())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Check(root); err != nil {
		t.Fatalf("check: %v\n%s", err, Dump(root))
	}
	return b, root
}

// buildBody is build returning the body box.
func buildBody(t *testing.T, src string, opts ...Option) *BlockBox {
	t.Helper()
	_, root := build(t, src, opts...)
	body := findBox(root, "body")
	if body == nil {
		t.Fatalf("no body box in\n%s", Dump(root))
	}
	return body
}

// findBox returns the first non-generated box of the given tag, depth first.
func findBox(root *BlockBox, tag string) *BlockBox {
	var found *BlockBox
	root.Walk(func(b *BlockBox) bool {
		if found != nil {
			return false
		}
		if b.Element != nil && b.Element.TagName == tag && b.Pseudo == "" && !b.Anonymous {
			found = b
			return false
		}
		return true
	})
	return found
}

// text joins the fragment texts of a box and its anonymous blocks.
func text(box *BlockBox) string {
	var sb strings.Builder
	for _, f := range box.Fragments() {
		sb.WriteString(f.Text)
	}
	for _, c := range box.Children {
		if c.Kind == KindAnonymousBlock {
			sb.WriteString(text(c))
		}
	}
	return sb.String()
}

func kinds(boxes []*BlockBox) []Kind {
	out := make([]Kind, len(boxes))
	for i, b := range boxes {
		out[i] = b.Kind
	}
	return out
}

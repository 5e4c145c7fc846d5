package process

import (
	"strconv"

	"boxtree/pkg/boxes"
)

// Index addresses the nodes of a Result by string ids, the way tree
// widgets want them. The empty id is the invisible root; its children are
// the document tree followed by the margin tables.
type Index struct {
	nodes    map[string]*boxes.Outline
	children map[string][]string
	labels   map[string]string
}

func NewIndex(res *Result) *Index {
	idx := &Index{
		nodes:    make(map[string]*boxes.Outline),
		children: make(map[string][]string),
		labels:   make(map[string]string),
	}
	if res.Root != nil {
		idx.add("", "root", boxes.NewOutline(res.Root), "document")
	}
	for i, m := range res.Margins {
		id := "m" + strconv.Itoa(i)
		idx.add("", id, boxes.NewOutline(m.Table), "page "+strconv.Itoa(m.Page)+" "+string(m.Side))
	}
	return idx
}

func (idx *Index) add(parent, id string, o *boxes.Outline, label string) {
	idx.nodes[id] = o
	idx.labels[id] = label
	idx.children[parent] = append(idx.children[parent], id)
	for i, c := range o.Children {
		idx.add(id, id+"/"+strconv.Itoa(i), c, "")
	}
}

// Children returns the ids below id.
func (idx *Index) Children(id string) []string {
	return idx.children[id]
}

func (idx *Index) IsBranch(id string) bool {
	return len(idx.children[id]) > 0
}

func (idx *Index) Outline(id string) *boxes.Outline {
	return idx.nodes[id]
}

// Label is the one line description of the node shown in a tree.
func (idx *Index) Label(id string) string {
	o := idx.nodes[id]
	if o == nil {
		return ""
	}
	s := o.Kind
	if o.Element != "" {
		s += " " + o.Element
	}
	if o.Pseudo != "" {
		s += "::" + o.Pseudo
	}
	if o.Kind == "inline" {
		s += " " + strconv.Quote(o.Text)
	}
	if l := idx.labels[id]; l != "" {
		s = l + ": " + s
	}
	return s
}

package css

import (
	"strings"

	"boxtree/pkg/html"
)

// MatchesSelector returns true if the element matches the complex selector.
// The pseudo-element of the selector is not considered.
func MatchesSelector(node *html.Node, selector Selector) bool {
	if !node.IsElement() || len(selector.Parts) == 0 {
		return false
	}
	// Start matching from the rightmost part (the subject element)
	return matchesCompoundSelector(node, selector, len(selector.Parts)-1)
}

// matchesCompoundSelector checks the part at partIndex against node and
// then the remaining parts against its ancestors or siblings.
func matchesCompoundSelector(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	prev := partIndex - 1
	switch selector.Combinators[prev] {
	case DescendantCombinator:
		for ancestor := node.Parent; isStyledElement(ancestor); ancestor = ancestor.Parent {
			if matchesCompoundSelector(ancestor, selector, prev) {
				return true
			}
		}
	case ChildCombinator:
		if isStyledElement(node.Parent) {
			return matchesCompoundSelector(node.Parent, selector, prev)
		}
	case AdjacentSiblingCombinator:
		if sibling := node.PreviousElementSibling(); sibling != nil {
			return matchesCompoundSelector(sibling, selector, prev)
		}
	case GeneralSiblingCombinator:
		for sibling := node.PreviousElementSibling(); sibling != nil; sibling = sibling.PreviousElementSibling() {
			if matchesCompoundSelector(sibling, selector, prev) {
				return true
			}
		}
	}
	return false
}

// isStyledElement excludes the synthetic document node.
func isStyledElement(n *html.Node) bool {
	return n.IsElement() && !n.IsDocument()
}

func matchesSelectorPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}

	if part.ID != "" {
		if id, ok := node.GetAttribute("id"); !ok || id != part.ID {
			return false
		}
	}

	if len(part.Classes) > 0 {
		classAttr, ok := node.GetAttribute("class")
		if !ok {
			return false
		}
		nodeClasses := strings.Fields(classAttr)
		for _, required := range part.Classes {
			if !containsWord(nodeClasses, required) {
				return false
			}
		}
	}

	for _, attrSel := range part.Attributes {
		if !matchesAttributeSelector(node, attrSel) {
			return false
		}
	}

	for _, pc := range part.PseudoClasses {
		if !matchesPseudoClass(node, pc) {
			return false
		}
	}
	return true
}

// matchesPseudoClass handles the structural pseudo-classes. Dynamic and
// functional pseudo-classes never match in a static document.
func matchesPseudoClass(node *html.Node, pc string) bool {
	switch pc {
	case "first-child":
		return node.PreviousElementSibling() == nil
	case "last-child":
		return nextElementSibling(node) == nil
	case "only-child":
		return node.PreviousElementSibling() == nil && nextElementSibling(node) == nil
	case "root":
		return node.IsTopLevel()
	case "empty":
		for _, c := range node.Children {
			if c.IsElement() || (c.IsCharacterData() && c.Text != "") {
				return false
			}
		}
		return true
	case "link", "any-link":
		_, ok := node.GetAttribute("href")
		return ok && node.TagName == "a"
	}
	return false
}

func nextElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	seen := false
	for _, c := range node.Parent.Children {
		if seen && c.IsElement() {
			return c
		}
		if c == node {
			seen = true
		}
	}
	return nil
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

// matchesAttributeSelector checks if a node matches an attribute selector
func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}

	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		return containsWord(strings.Fields(value), attr.Value)
	case "|=":
		// Language prefix (starts with value or value-)
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}
	return false
}

package css

import "maps"

// inheritedProperties are copied from a parent style into every child
// style, including anonymous boxes.
var inheritedProperties = map[string]bool{
	"border-collapse":     true,
	"border-spacing":      true,
	"caption-side":        true,
	"color":               true,
	"cursor":              true,
	"direction":           true,
	"empty-cells":         true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"hyphens":             true,
	"letter-spacing":      true,
	"line-height":         true,
	"list-style-image":    true,
	"list-style-position": true,
	"list-style-type":     true,
	"orphans":             true,
	"overflow-wrap":       true,
	"quotes":              true,
	"text-align":          true,
	"text-indent":         true,
	"text-transform":      true,
	"visibility":          true,
	"white-space":         true,
	"widows":              true,
	"word-break":          true,
	"word-spacing":        true,
	"word-wrap":           true,
}

// IsInherited reports whether property is inherited by default.
func IsInherited(property string) bool {
	return inheritedProperties[property]
}

// inherit returns an empty child of s carrying s's inherited properties.
func (s *Style) inherit() *Style {
	child := NewStyle()
	child.parent = s
	if s == nil {
		return child
	}
	for prop, v := range s.Properties {
		if inheritedProperties[prop] {
			child.Properties[prop] = v
		}
	}
	return child
}

// apply sets decls on s. The keywords inherit and initial take the parent's
// value and drop the property respectively.
func (s *Style) apply(decls map[string]string) {
	for prop, v := range decls {
		switch v {
		case "inherit":
			if pv, ok := s.parent.Get(prop); ok {
				s.Properties[prop] = pv
			} else {
				delete(s.Properties, prop)
			}
		case "initial":
			delete(s.Properties, prop)
		default:
			s.Properties[prop] = v
		}
	}
}

// CreateAnonymousStyle returns the style of an anonymous box with the given
// display generated inside a box styled by s.
func (s *Style) CreateAnonymousStyle(display DisplayType) *Style {
	anon := s.inherit()
	anon.Properties["display"] = string(display)
	return anon
}

// Derive returns a child style of s with decls applied on top of the
// inherited properties.
func (s *Style) Derive(decls map[string]string) *Style {
	child := s.inherit()
	child.apply(decls)
	return child
}

// With returns a copy of s, sharing its parent, with overrides applied.
func (s *Style) With(overrides map[string]string) *Style {
	c := s.Clone()
	c.apply(overrides)
	return c
}

func (s *Style) Clone() *Style {
	if s == nil {
		return NewStyle()
	}
	return &Style{Properties: maps.Clone(s.Properties), parent: s.parent}
}

package boxes

import (
	"strings"

	"boxtree/pkg/css"
)

// stripInlineContent collapses whitespace across one run of inline
// content, following the white-space property of each fragment. A run made
// only of removable whitespace is emptied: its element fragments keep
// their start and end marks with no text, and a run with no element
// fragments disappears. Running it twice gives the same result.
func stripInlineContent(run []Styleable) []Styleable {
	collapse := true
	allWhitespace := true
	for _, item := range run {
		switch v := item.(type) {
		case *InlineFragment:
			collapse = v.stripWhitespace(collapse)
			if !v.RemovableWhitespace {
				allWhitespace = false
			}
		case *BlockBox:
			if !canCollapseThrough(v.Style) {
				allWhitespace = false
				collapse = false
			}
		}
	}
	if allWhitespace {
		return stripTextContent(run)
	}
	trimTrailingSpace(run)

	kept := run[:0]
	for _, item := range run {
		if f, ok := item.(*InlineFragment); ok && f.Element == nil && f.Text == "" && f.Dynamic == nil {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// stripAllWhitespace strips each inline run found between the block-level
// items of a table content list.
func stripAllWhitespace(list []Styleable) []Styleable {
	var out, run []Styleable
	flush := func() {
		if len(run) > 0 {
			out = append(out, stripInlineContent(run)...)
			run = nil
		}
	}
	for _, item := range list {
		if item.GetStyle().IsLaidOutInInlineContext() {
			run = append(run, item)
			continue
		}
		flush()
		out = append(out, item)
	}
	flush()
	return out
}

// stripWhitespace collapses the fragment's text and reports whether a
// leading space of the next fragment should collapse into this one.
func (f *InlineFragment) stripWhitespace(collapseLeading bool) bool {
	ws := f.Style.GetWhiteSpace()
	if f.Text == "" {
		f.RemovableWhitespace = ws != css.WhiteSpacePre
		return collapseLeading
	}
	text := collapseWhitespace(ws, f.Text, collapseLeading)
	f.Text = text

	f.RemovableWhitespace = false
	if strings.TrimSpace(text) == "" {
		switch ws {
		case css.WhiteSpaceNormal, css.WhiteSpaceNowrap:
			f.RemovableWhitespace = true
		case css.WhiteSpacePre:
		default:
			f.RemovableWhitespace = !strings.Contains(text, "\n")
		}
	}
	if text == "" {
		return collapseLeading
	}
	if !ws.CollapsesSpaces() {
		return false
	}
	return strings.HasSuffix(text, " ") || (ws == css.WhiteSpacePreLine && strings.HasSuffix(text, "\n"))
}

// collapseWhitespace applies the white-space processing rules to text.
// Preserved modes only normalize line endings.
func collapseWhitespace(ws css.WhiteSpace, text string, collapseLeading bool) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	switch ws {
	case css.WhiteSpaceNormal, css.WhiteSpaceNowrap:
		text = collapseSpaces(text, true)
	case css.WhiteSpacePreLine:
		text = collapseSpaces(text, false)
	default:
		return text
	}
	if collapseLeading && strings.HasPrefix(text, " ") {
		text = text[1:]
	}
	return text
}

// collapseSpaces turns each run of spaces and tabs into one space. With
// newlines false, line feeds are kept and the spaces around them removed;
// otherwise they collapse like spaces.
func collapseSpaces(text string, newlines bool) string {
	var sb strings.Builder
	sb.Grow(len(text))
	pendingSpace, afterNewline := false, false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\r', '\f':
			pendingSpace = true
		case '\n':
			if newlines {
				pendingSpace = true
				continue
			}
			pendingSpace = false
			afterNewline = true
			sb.WriteRune('\n')
		default:
			if pendingSpace && !afterNewline {
				sb.WriteByte(' ')
			}
			pendingSpace, afterNewline = false, false
			sb.WriteRune(r)
		}
	}
	if pendingSpace && !afterNewline {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimTrailingSpace removes one collapsible space at the end of the run.
func trimTrailingSpace(run []Styleable) {
	for i := len(run) - 1; i >= 0; i-- {
		switch v := run[i].(type) {
		case *InlineFragment:
			if v.Text == "" {
				continue
			}
			if v.Style.GetWhiteSpace().CollapsesSpaces() && strings.HasSuffix(v.Text, " ") {
				v.Text = v.Text[:len(v.Text)-1]
			}
			return
		case *BlockBox:
			if !canCollapseThrough(v.Style) {
				return
			}
		}
	}
}

func stripTextContent(run []Styleable) []Styleable {
	onlyAnonymous := true
	for _, item := range run {
		if f, ok := item.(*InlineFragment); ok {
			if f.Element != nil {
				onlyAnonymous = false
			}
			f.Text = ""
		}
	}
	if !onlyAnonymous {
		return run
	}
	kept := run[:0]
	for _, item := range run {
		if _, ok := item.(*InlineFragment); !ok {
			kept = append(kept, item)
		}
	}
	return kept
}

// canCollapseThrough reports boxes that whitespace collapses across.
func canCollapseThrough(s *css.Style) bool {
	return s.IsFloated() || s.IsAbsolute() || s.IsFixed() || s.IsRunning()
}

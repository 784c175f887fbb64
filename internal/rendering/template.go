// Package rendering turns resume templates and display models into HTML.
//
// Templates use a small mustache-like syntax:
//
//	{{path.to.value}}   substitute a value found by walking the context
//	{{.}}               substitute the current list item
//	{{#key}}...{{/key}} section: repeated for lists, entered for maps,
//	                    kept for truthy scalars, dropped otherwise
//
// Rendering never fails. Missing data renders as empty text, and markers
// that do not pair up are left in the output as literal text.
package rendering

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
	itemPath   = "."
)

type node interface {
	isNode()
}

type textNode struct {
	text string
}

type valueNode struct {
	raw  string
	path []string
}

type sectionNode struct {
	key      string
	children []node
}

func (textNode) isNode()    {}
func (valueNode) isNode()   {}
func (sectionNode) isNode() {}

// Template is a parsed template. It holds no per-render state and may be
// executed any number of times, including concurrently.
type Template struct {
	nodes []node
}

// frame is an open section waiting for its close marker.
type frame struct {
	key    string
	marker string
	nodes  []node
}

func (f *frame) appendText(s string) {
	if s == "" {
		return
	}
	if n := len(f.nodes); n > 0 {
		if prev, ok := f.nodes[n-1].(textNode); ok {
			f.nodes[n-1] = textNode{text: prev.text + s}
			return
		}
	}
	f.nodes = append(f.nodes, textNode{text: s})
}

func (f *frame) appendNodes(nodes []node) {
	for _, n := range nodes {
		if t, ok := n.(textNode); ok {
			f.appendText(t.text)
			continue
		}
		f.nodes = append(f.nodes, n)
	}
}

// Parse builds the node tree for src. A close marker ends the innermost open
// section with the same key, so sections may nest inside sections of the same
// name. Open markers that are never closed, and close markers that match no
// open section, are kept as text.
func Parse(src string) *Template {
	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	// unwind turns the top frame back into text inside its parent.
	unwind := func() {
		f := top()
		stack = stack[:len(stack)-1]
		top().appendText(f.marker)
		top().appendNodes(f.nodes)
	}

	pos := 0
	for pos < len(src) {
		start := strings.Index(src[pos:], openDelim)
		if start < 0 {
			top().appendText(src[pos:])
			break
		}
		start += pos
		top().appendText(src[pos:start])

		end := strings.Index(src[start+len(openDelim):], closeDelim)
		if end < 0 {
			top().appendText(src[start:])
			break
		}
		end += start + len(openDelim)
		tag := src[start+len(openDelim) : end]
		marker := src[start : end+len(closeDelim)]

		switch {
		case strings.HasPrefix(tag, "#") && isKey(tag[1:]):
			stack = append(stack, &frame{key: tag[1:], marker: marker})
		case strings.HasPrefix(tag, "/") && isKey(tag[1:]):
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].key == tag[1:] {
					idx = i
					break
				}
			}
			if idx < 0 {
				top().appendText(marker)
				break
			}
			for len(stack)-1 > idx {
				unwind()
			}
			f := top()
			stack = stack[:len(stack)-1]
			top().nodes = append(top().nodes, sectionNode{key: f.key, children: f.nodes})
		case isPath(tag):
			top().nodes = append(top().nodes, valueNode{raw: tag, path: splitPath(tag)})
		default:
			// Not a marker. Emit one brace and rescan so "{{{name}}}" still
			// finds the inner placeholder.
			top().appendText(src[start : start+1])
			pos = start + 1
			continue
		}
		pos = end + len(closeDelim)
	}

	for len(stack) > 1 {
		unwind()
	}
	return &Template{nodes: stack[0].nodes}
}

func splitPath(tag string) []string {
	if tag == itemPath {
		return nil
	}
	return strings.Split(tag, ".")
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// isKey reports whether s is a valid section key: one or more word characters.
func isKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

// isPath reports whether s is a valid placeholder: word characters and dots.
func isPath(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '.' && !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

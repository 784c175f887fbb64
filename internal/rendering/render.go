package rendering

import (
	"strings"

	"github.com/jonathan/resume-site/internal/sanitize"
)

// Render parses tmpl and executes it against data.
func Render(tmpl string, data map[string]any) string {
	return Parse(tmpl).Execute(data)
}

// Execute renders the template against data. A nil map behaves like an empty one.
func (t *Template) Execute(data map[string]any) string {
	var b strings.Builder
	renderNodes(&b, t.nodes, &scope{vars: data})
	return b.String()
}

func renderNodes(b *strings.Builder, nodes []node, sc *scope) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)
		case valueNode:
			b.WriteString(sc.text(n.path))
		case sectionNode:
			renderSection(b, n, sc)
		}
	}
}

func renderSection(b *strings.Builder, s sectionNode, sc *scope) {
	value, _ := sc.lookup(s.key)

	if items, ok := asList(value); ok {
		for _, item := range items {
			if m, ok := asMap(item); ok {
				renderNodes(b, s.children, sc.withVars(m))
				continue
			}
			renderNodes(b, s.children, sc.withItem(item))
		}
		return
	}

	if m, ok := asMap(value); ok {
		renderNodes(b, s.children, sc.withVars(m))
		return
	}

	if truthy(value) {
		renderNodes(b, s.children, sc)
	}
}

// scope is one level of section nesting. Lookups walk outward, so keys of an
// inner level shadow the same keys further out.
type scope struct {
	vars    map[string]any
	item    any
	hasItem bool
	parent  *scope
}

func (sc *scope) withVars(vars map[string]any) *scope {
	return &scope{vars: vars, parent: sc}
}

func (sc *scope) withItem(item any) *scope {
	return &scope{item: item, hasItem: true, parent: sc}
}

func (sc *scope) lookup(key string) (any, bool) {
	for s := sc; s != nil; s = s.parent {
		if v, ok := s.vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (sc *scope) currentItem() any {
	for s := sc; s != nil; s = s.parent {
		if s.hasItem {
			return s.item
		}
	}
	return nil
}

// text resolves a placeholder path to sanitized text. A nil path is the
// current list item.
func (sc *scope) text(path []string) string {
	if path == nil {
		return scalarText(sc.currentItem())
	}

	value, ok := sc.lookup(path[0])
	if !ok {
		return ""
	}
	for _, segment := range path[1:] {
		value, ok = child(value, segment)
		if !ok {
			return ""
		}
	}
	return scalarText(value)
}

// scalarText renders a resolved value. Lists join their scalar elements with
// commas and maps render as nothing.
func scalarText(value any) string {
	if _, ok := asMap(value); ok {
		return ""
	}
	if items, ok := asList(value); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, scalarText(item))
		}
		return strings.Join(parts, ",")
	}
	return sanitize.Value(value)
}

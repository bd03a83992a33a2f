package template

import (
	"fmt"
	"strings"
)

// Template is a parsed template ready for repeated rendering. Parsing happens
// once; rendering walks the node tree without re-scanning the source.
type Template struct {
	nodes []node
}

type node interface {
	render(sb *strings.Builder, data map[string]any)
}

// textNode is a literal chunk of template source.
type textNode struct {
	text string
}

func (n *textNode) render(sb *strings.Builder, data map[string]any) {
	sb.WriteString(n.text)
}

// varNode is a {{path}} interpolation. Unresolved paths render as "".
type varNode struct {
	path string
}

func (n *varNode) render(sb *strings.Builder, data map[string]any) {
	sb.WriteString(toString(lookup(data, n.path)))
}

// ifNode renders its children when the condition path is truthy. With
// negate set it implements {{#unless}}.
type ifNode struct {
	path     string
	negate   bool
	children []node
}

func (n *ifNode) render(sb *strings.Builder, data map[string]any) {
	if truthy(lookup(data, n.path)) != n.negate {
		for _, child := range n.children {
			child.render(sb, data)
		}
	}
}

// eachNode renders its children once per item. Map items are merged over the
// outer context so their fields resolve directly; every item is also exposed
// as "this" alongside "@index", "@first", and "@last".
type eachNode struct {
	path     string
	children []node
}

func (n *eachNode) render(sb *strings.Builder, data map[string]any) {
	items := toSlice(lookup(data, n.path))

	for i, item := range items {
		scope := make(map[string]any, len(data)+4)
		for k, v := range data {
			scope[k] = v
		}
		if m, ok := item.(map[string]any); ok {
			for k, v := range m {
				scope[k] = v
			}
		}
		scope["this"] = item
		scope["@index"] = i
		scope["@first"] = i == 0
		scope["@last"] = i == len(items)-1

		for _, child := range n.children {
			child.render(sb, scope)
		}
	}
}

// Parse compiles template source into a Template. Block tags must be
// properly nested and closed.
func Parse(source string) (*Template, error) {
	parser := &parser{source: source}
	nodes, err := parser.parseNodes("")
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

// MustParse is Parse that panics on error, for built-in templates.
func MustParse(source string) *Template {
	tmpl, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Render evaluates the template against data.
func (t *Template) Render(data map[string]any) string {
	var sb strings.Builder
	for _, n := range t.nodes {
		n.render(&sb, data)
	}
	return sb.String()
}

type parser struct {
	source string
	pos    int
}

// parseNodes consumes nodes until the closing tag for the named block (or
// end of input when until is empty).
func (p *parser) parseNodes(until string) ([]node, error) {
	var nodes []node

	for p.pos < len(p.source) {
		open := strings.Index(p.source[p.pos:], "{{")
		if open == -1 {
			nodes = append(nodes, &textNode{text: p.source[p.pos:]})
			p.pos = len(p.source)
			break
		}

		if open > 0 {
			nodes = append(nodes, &textNode{text: p.source[p.pos : p.pos+open]})
		}
		p.pos += open

		closing := strings.Index(p.source[p.pos:], "}}")
		if closing == -1 {
			return nil, fmt.Errorf("unclosed tag at offset %d", p.pos)
		}

		tag := strings.TrimSpace(p.source[p.pos+2 : p.pos+closing])
		p.pos += closing + 2

		switch {
		case strings.HasPrefix(tag, "#if "):
			children, err := p.parseNodes("if")
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ifNode{path: strings.TrimSpace(tag[4:]), children: children})
		case strings.HasPrefix(tag, "#unless "):
			children, err := p.parseNodes("unless")
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ifNode{path: strings.TrimSpace(tag[8:]), negate: true, children: children})
		case strings.HasPrefix(tag, "#each "):
			children, err := p.parseNodes("each")
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &eachNode{path: strings.TrimSpace(tag[6:]), children: children})
		case strings.HasPrefix(tag, "/"):
			name := strings.TrimSpace(tag[1:])
			if until == "" {
				return nil, fmt.Errorf("unexpected closing tag {{/%s}}", name)
			}
			if name != until {
				return nil, fmt.Errorf("mismatched closing tag: expected {{/%s}}, got {{/%s}}", until, name)
			}
			return nodes, nil
		default:
			nodes = append(nodes, &varNode{path: tag})
		}
	}

	if until != "" {
		return nil, fmt.Errorf("missing closing tag {{/%s}}", until)
	}
	return nodes, nil
}

// lookup resolves a possibly dotted path against the data map. A direct key
// match wins over dotted traversal, and "this" resolves to the current scope
// when no item was bound.
func lookup(data map[string]any, path string) any {
	if v, ok := data[path]; ok {
		return v
	}
	if path == "this" {
		return data
	}
	if !strings.Contains(path, ".") {
		return nil
	}

	var current any = data
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil
			}
			current = v
		case map[string]string:
			v, ok := m[part]
			if !ok {
				return nil
			}
			current = v
		default:
			return nil
		}
	}
	return current
}

// truthy mirrors loose truthiness: non-empty trimmed strings, non-empty
// collections, true booleans, and non-zero numbers.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return strings.TrimSpace(value) != ""
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	case []any:
		return len(value) > 0
	case []map[string]any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	case map[string]string:
		return len(value) > 0
	default:
		return true
	}
}

func toSlice(v any) []any {
	switch items := v.(type) {
	case []any:
		return items
	case []map[string]any:
		result := make([]any, len(items))
		for i, item := range items {
			result[i] = item
		}
		return result
	case []string:
		result := make([]any, len(items))
		for i, item := range items {
			result[i] = item
		}
		return result
	default:
		return nil
	}
}

func toString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case map[string]any, map[string]string, []any, []map[string]any:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}

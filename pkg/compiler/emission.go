package compiler

import "strings"

const indentUnit = "  "

type attribute struct {
	key, value string
}

// emission accumulates the output of one node. It is created when the
// node's visit starts and rendered into a text fragment when it ends.
type emission struct {
	tag      string
	depth    int
	classes  []string
	styles   []string
	attrs    []attribute
	children []string
}

func (e *emission) class(tokens ...string) {
	e.classes = append(e.classes, tokens...)
}

func (e *emission) style(decl string) {
	e.styles = append(e.styles, decl)
}

// attr sets a named attribute. Setting it again replaces the value in place.
func (e *emission) attr(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].key == name {
			e.attrs[i].value = value
			return
		}
	}
	e.attrs = append(e.attrs, attribute{key: name, value: value})
}

// rawAttr adds an attribute whose key is written quoted, for names that
// are not identifiers in the template language (d, fill-rule, ...).
// Raw keys may repeat: a vector emits one pair per path.
func (e *emission) rawAttr(name, value string) {
	e.attrs = append(e.attrs, attribute{key: `"` + name + `"`, value: value})
}

// line adds a literal child line one level below the node.
func (e *emission) line(text string) {
	e.children = append(e.children, indent(e.depth+1)+text+"\n")
}

// child adds an already rendered child fragment.
func (e *emission) child(fragment string) {
	if fragment != "" {
		e.children = append(e.children, fragment)
	}
}

// render writes the node header, its property block and its children:
//
//	tag(
//	  class = "...",
//	  style = "...",
//	  key = "value",
//	):
//	  children
//
// The property block is left out when there is nothing in it, and the
// trailing colon only appears when there are children.
func (e *emission) render() string {
	ind := indent(e.depth)
	colon := ""
	if len(e.children) > 0 {
		colon = ":"
	}

	var b strings.Builder
	b.WriteString(ind)
	b.WriteString(e.tag)

	if len(e.classes) == 0 && len(e.styles) == 0 && len(e.attrs) == 0 {
		b.WriteString(colon + "\n")
	} else {
		b.WriteString("(\n")
		if len(e.classes) > 0 {
			writeProperty(&b, ind, "class", strings.Join(e.classes, " "))
		}
		if len(e.styles) > 0 {
			writeProperty(&b, ind, "style", strings.Join(e.styles, " "))
		}
		for _, a := range e.attrs {
			writeProperty(&b, ind, a.key, a.value)
		}
		b.WriteString(ind + ")" + colon + "\n")
	}

	for _, c := range e.children {
		b.WriteString(c)
	}
	return b.String()
}

func writeProperty(b *strings.Builder, ind, key, value string) {
	b.WriteString(ind)
	b.WriteString(indentUnit)
	b.WriteString(key)
	b.WriteString(` = "`)
	b.WriteString(value)
	b.WriteString("\",\n")
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

package dom

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
)

// Element обёртка над узлом дерева. Два Element равны, если Is возвращает true.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

func (e *Element) TagName() string { return e.node.Data }

func (e *Element) ID() string { return attr(e.node, "id") }

func (e *Element) GetAttribute(key string) string { return attr(e.node, key) }

func (e *Element) HasAttribute(key string) bool {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func (e *Element) SetAttribute(key, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: value})
}

func (e *Element) RemoveAttribute(key string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

func (e *Element) HasClass(class string) bool { return hasClass(e.node, class) }

func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	classes := strings.Fields(attr(e.node, "class"))
	e.SetAttribute("class", strings.Join(append(classes, class), " "))
}

func (e *Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	var kept []string
	for _, c := range strings.Fields(attr(e.node, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	e.SetAttribute("class", strings.Join(kept, " "))
}

// TextContent конкатенация всех текстовых потомков
func (e *Element) TextContent() string {
	var b strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent заменяет всех потомков одним текстовым узлом
func (e *Element) SetTextContent(text string) {
	e.clear()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML разбирает markup как фрагмент в контексте элемента и
// заменяет им потомков. Разметка в строке становится настоящими узлами.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	e.clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// AppendChild переносит child в конец списка потомков
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Parent родительский элемент; nil для корня и для элемента вне дерева
func (e *Element) Parent() *Element {
	return e.doc.wrap(e.node.Parent)
}

func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Closest ближайший элемент с классом class, начиная с самого элемента
func (e *Element) Closest(class string) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasClass(n, class) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

func (e *Element) ElementsByClass(class string) []*Element {
	return e.doc.collect(e.node, func(n *html.Node) bool { return hasClass(n, class) })
}

func (e *Element) ElementsByTag(tag string) []*Element {
	return e.doc.collect(e.node, func(n *html.Node) bool { return n.Data == tag })
}

// Value значение поля формы: текст для textarea, атрибут value для остальных
func (e *Element) Value() string {
	if e.node.Data == "textarea" {
		return e.TextContent()
	}
	return attr(e.node, "value")
}

func (e *Element) SetValue(value string) {
	if e.node.Data == "textarea" {
		e.SetTextContent(value)
		return
	}
	e.SetAttribute("value", value)
}

// Style значение свойства из атрибута style
func (e *Element) Style(prop string) string {
	for _, d := range parseStyle(attr(e.node, "style")) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle задаёт свойство в атрибуте style; пустое значение удаляет его
func (e *Element) SetStyle(prop, value string) {
	decls := parseStyle(attr(e.node, "style"))
	set := false
	out := decls[:0]
	for _, d := range decls {
		if d.prop == prop {
			if value == "" {
				continue
			}
			d.value = value
			set = true
		}
		out = append(out, d)
	}
	if !set && value != "" {
		out = append(out, declaration{prop: prop, value: value})
	}
	if len(out) == 0 {
		e.RemoveAttribute("style")
		return
	}
	e.SetAttribute("style", formatStyle(out))
}

func (e *Element) AddEventListener(typ string, fn Listener) ListenerID {
	return e.doc.addListener(e.node, typ, fn)
}

func (e *Element) Click(ctx context.Context) *Event {
	return e.doc.Dispatch(ctx, e, "click")
}

func (e *Element) Submit(ctx context.Context) *Event {
	return e.doc.Dispatch(ctx, e, "submit")
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

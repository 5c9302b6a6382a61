// Package dom is a headless HTML document: element lookup, attribute and text
// access, fragment parsing for innerHTML, and a click/submit listener registry
// with bubbling dispatch. It stands in for a browser DOM on the server.
package dom

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Listener обработчик события
type Listener func(ev *Event)

// ListenerID handle for exact listener removal
type ListenerID uint64

type binding struct {
	node *html.Node
	typ  string
	fn   Listener
}

// Document корень дерева и реестр обработчиков событий.
// Не потокобезопасен: вызывающая сторона сериализует доступ.
type Document struct {
	root      *html.Node
	listeners map[ListenerID]*binding
	byNode    map[*html.Node][]ListenerID
	nextID    ListenerID
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[ListenerID]*binding),
		byNode:    make(map[*html.Node][]ListenerID),
	}, nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) ElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

func (d *Document) ElementsByClass(class string) []*Element {
	return d.collect(d.root, func(n *html.Node) bool { return hasClass(n, class) })
}

func (d *Document) ElementsByTag(tag string) []*Element {
	return d.collect(d.root, func(n *html.Node) bool { return n.Data == tag })
}

// CreateElement создаёт элемент вне дерева
func (d *Document) CreateElement(tag string) *Element {
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

func (d *Document) Body() *Element {
	if bodies := d.ElementsByTag("body"); len(bodies) > 0 {
		return bodies[0]
	}
	return nil
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Path адрес элемента: индексы среди дочерних элементов, начиная от корня документа.
// ok == false для элемента вне дерева.
func (d *Document) Path(e *Element) ([]int, bool) {
	if e == nil {
		return nil, false
	}
	var rev []int
	n := e.node
	for n != d.root {
		p := n.Parent
		if p == nil {
			return nil, false
		}
		i := 0
		for c := p.FirstChild; c != n; c = c.NextSibling {
			if c.Type == html.ElementNode {
				i++
			}
		}
		rev = append(rev, i)
		n = p
	}
	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, true
}

// ElementAt обратная операция к Path. nil, если адрес не существует.
func (d *Document) ElementAt(path []int) *Element {
	if len(path) == 0 {
		return nil
	}
	n := d.root
	for _, idx := range path {
		n = nthElementChild(n, idx)
		if n == nil {
			return nil
		}
	}
	return d.wrap(n)
}

// AddEventListener вешает обработчик на сам документ: до него всплывают
// события от всех элементов дерева.
func (d *Document) AddEventListener(typ string, fn Listener) ListenerID {
	return d.addListener(d.root, typ, fn)
}

// RemoveEventListener снимает обработчик. Повторный вызов ничего не делает.
func (d *Document) RemoveEventListener(id ListenerID) bool {
	b, ok := d.listeners[id]
	if !ok {
		return false
	}
	delete(d.listeners, id)
	ids := d.byNode[b.node]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(d.byNode, b.node)
	} else {
		d.byNode[b.node] = ids
	}
	return true
}

// ListenerCount число обработчиков типа typ на элементе; nil означает сам документ
func (d *Document) ListenerCount(e *Element, typ string) int {
	n := d.root
	if e != nil {
		n = e.node
	}
	count := 0
	for _, id := range d.byNode[n] {
		if d.listeners[id].typ == typ {
			count++
		}
	}
	return count
}

// Listeners total number of registered listeners
func (d *Document) Listeners() int {
	return len(d.listeners)
}

func (d *Document) addListener(n *html.Node, typ string, fn Listener) ListenerID {
	d.nextID++
	id := d.nextID
	d.listeners[id] = &binding{node: n, typ: typ, fn: fn}
	d.byNode[n] = append(d.byNode[n], id)
	return id
}

// Dispatch доставляет событие цели и всплывает до документа. Путь
// всплытия фиксируется до вызова обработчиков, поэтому перестроение
// дерева внутри обработчика его не меняет. Обработчики, снятые во время
// доставки, больше не вызываются.
func (d *Document) Dispatch(ctx context.Context, target *Element, typ string) *Event {
	ev := &Event{Type: typ, Target: target, ctx: ctx}
	if target == nil {
		return ev
	}
	var path []*html.Node
	for n := target.node; n != nil; n = n.Parent {
		path = append(path, n)
	}
	for _, n := range path {
		ids := append([]ListenerID(nil), d.byNode[n]...)
		ev.CurrentTarget = d.wrap(n)
		for _, id := range ids {
			b, ok := d.listeners[id]
			if !ok || b.typ != typ {
				continue
			}
			b.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev
}

func (d *Document) collect(from *html.Node, match func(*html.Node) bool) []*Element {
	var out []*Element
	walk(from, func(n *html.Node) bool {
		if n != from && n.Type == html.ElementNode && match(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

// walk обходит поддерево в порядке документа, пока visit возвращает true
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func nthElementChild(n *html.Node, idx int) *html.Node {
	if idx < 0 {
		return nil
	}
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if i == idx {
			return c
		}
		i++
	}
	return nil
}

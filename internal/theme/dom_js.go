//go:build js && wasm

package theme

import "syscall/js"

// DOM is the browser document, reached through syscall/js.
type DOM struct {
	doc js.Value
}

// NewDOM binds to the global document.
func NewDOM() *DOM {
	return &DOM{doc: js.Global().Get("document")}
}

type domElement struct {
	v js.Value
}

func (d *DOM) QueryByClass(class string) []Element {
	list := d.doc.Call("querySelectorAll", "."+class)
	n := list.Length()
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domElement{v: list.Index(i)})
	}
	return out
}

func (d *DOM) CreateStyle() Element {
	return domElement{v: d.doc.Call("createElement", "style")}
}

// AppendToStyleRoot appends to document.body so the block comes after every
// stylesheet in <head>.
func (d *DOM) AppendToStyleRoot(el Element) {
	e, ok := el.(domElement)
	if !ok {
		return
	}
	d.doc.Get("body").Call("appendChild", e.v)
}

func (e domElement) AddClass(class string) {
	e.v.Get("classList").Call("add", class)
}

func (e domElement) SetText(css string) {
	e.v.Set("textContent", css)
}

func (e domElement) Remove() {
	e.v.Call("remove")
}

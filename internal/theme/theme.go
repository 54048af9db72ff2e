// Package theme applies the dark or light palette to a document's style root.
//
// The document is reached only through the Document port, so the applier
// works the same against a browser DOM (see dom_js.go), the in-memory Sheet,
// or a recording fake in tests.
package theme

// Marker is the class carried by the single style block the applier owns.
const Marker = "drk"

// Element is a style-bearing node.
type Element interface {
	AddClass(class string)
	SetText(css string)
	Remove()
}

// Document is the styling surface the applier mutates.
type Document interface {
	// QueryByClass returns every element carrying class.
	QueryByClass(class string) []Element
	// CreateStyle returns a detached style element.
	CreateStyle() Element
	// AppendToStyleRoot inserts el after every existing child of the style root.
	AppendToStyleRoot(el Element)
}

// Applier reflects a palette choice onto a Document.
type Applier struct {
	doc Document
}

// NewApplier returns an Applier bound to doc. A nil doc makes Apply a no-op.
func NewApplier(doc Document) *Applier {
	return &Applier{doc: doc}
}

// Apply removes any marker-tagged block and appends exactly one new block with
// the CSS for the selected palette. Calling it again with the same value
// replaces the block rather than skipping.
func (a *Applier) Apply(isDark bool) {
	if a == nil || a.doc == nil {
		return
	}

	for _, el := range a.doc.QueryByClass(Marker) {
		el.Remove()
	}

	style := a.doc.CreateStyle()
	style.AddClass(Marker)
	style.SetText(CSS(PaletteFor(isDark)))
	a.doc.AppendToStyleRoot(style)
}

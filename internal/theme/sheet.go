package theme

import (
	"slices"
	"strings"
	"sync"
)

// Sheet is an in-memory Document: an ordered list of style blocks.
type Sheet struct {
	mu     sync.Mutex
	blocks []*Block
}

// Block is a style element owned by a Sheet.
type Block struct {
	sheet   *Sheet
	classes []string
	text    string
}

// NewSheet returns a Sheet whose style root holds the given base blocks,
// standing in for the page's default styling.
func NewSheet(base ...string) *Sheet {
	s := &Sheet{}
	for _, css := range base {
		s.blocks = append(s.blocks, &Block{sheet: s, text: css})
	}
	return s
}

func (s *Sheet) QueryByClass(class string) []Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Element
	for _, b := range s.blocks {
		if b.HasClass(class) {
			out = append(out, b)
		}
	}
	return out
}

func (s *Sheet) CreateStyle() Element {
	return &Block{sheet: s}
}

func (s *Sheet) AppendToStyleRoot(el Element) {
	b, ok := el.(*Block)
	if !ok || b.sheet != s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(b)
	s.blocks = append(s.blocks, b)
}

// remove drops b from the style root; the caller holds s.mu.
func (s *Sheet) remove(b *Block) {
	s.blocks = slices.DeleteFunc(s.blocks, func(x *Block) bool { return x == b })
}

// Blocks returns a copy of the style root, in document order.
func (s *Sheet) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = Block{classes: slices.Clone(b.classes), text: b.text}
	}
	return out
}

// String concatenates the style root as a single stylesheet.
func (s *Sheet) String() string {
	var sb strings.Builder
	for _, b := range s.Blocks() {
		sb.WriteString(b.Text())
	}
	return sb.String()
}

func (b *Block) AddClass(class string) {
	if !slices.Contains(b.classes, class) {
		b.classes = append(b.classes, class)
	}
}

func (b *Block) SetText(css string) {
	b.text = css
}

func (b *Block) Remove() {
	if b.sheet == nil {
		return
	}
	b.sheet.mu.Lock()
	defer b.sheet.mu.Unlock()
	b.sheet.remove(b)
}

// Text returns the block's CSS text.
func (b Block) Text() string { return b.text }

// HasClass reports whether the block carries class.
func (b Block) HasClass(class string) bool { return slices.Contains(b.classes, class) }

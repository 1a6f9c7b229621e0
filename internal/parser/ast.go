package parser

import "strings"

// Name is a dotted tag name such as div or ui.Card. An empty Name is the
// fragment sentinel written as <>.
type Name []string

// String returns the textual form used to match closing tags.
func (n Name) String() string {
	return strings.Join(n, ".")
}

// Local returns the last segment, or "" for a fragment.
func (n Name) Local() string {
	if len(n) == 0 {
		return ""
	}
	return n[len(n)-1]
}

// IsFragment reports whether the name is absent.
func (n Name) IsFragment() bool {
	return len(n) == 0
}

// OpenTag is <name attr* > or <name attr* />.
type OpenTag struct {
	Name        Name
	Attributes  *AttributeSet
	SelfClosing bool
	Pos         Pos
}

// ClosingTag is </name>.
type ClosingTag struct {
	Name Name
	Pos  Pos
}

// AttributeKey holds the dash separated segments of an attribute name:
// data-test-id is [data test id].
type AttributeKey []string

// String joins the segments with dashes.
func (k AttributeKey) String() string {
	return strings.Join(k, "-")
}

// Underscored joins the segments with underscores, the spelling a dashed
// key would need as a field name.
func (k AttributeKey) Underscored() string {
	return strings.Join(k, "_")
}

// Expr is an embedded expression. Its source is opaque to the parser.
// Quoted is set for attribute values written as "text", whose Src keeps
// the quotes.
type Expr struct {
	Src    string
	Pos    Pos
	Quoted bool
}

// Attribute is key or key={expr}. A nil Value means the attribute is
// punned: its value is the variable spelled like the key.
type Attribute struct {
	Key   AttributeKey
	Value *Expr
	Pos   Pos
}

// Punned reports whether the attribute has no explicit value.
func (a *Attribute) Punned() bool {
	return a.Value == nil
}

// Source returns the expression producing the attribute value.
func (a *Attribute) Source() string {
	if a.Value == nil {
		return a.Key.String()
	}
	return a.Value.Src
}

// AttributeSet holds at most one Attribute per key. Keys compare by their
// segments; values take no part in equality.
type AttributeSet struct {
	byKey map[string]*Attribute
	order []string
}

// NewAttributeSet creates an empty set.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{byKey: make(map[string]*Attribute)}
}

// Insert adds a to the set. If the key is already present the set is left
// unchanged and Insert returns false.
func (s *AttributeSet) Insert(a *Attribute) bool {
	key := a.Key.String()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = a
	s.order = append(s.order, key)
	return true
}

// Get returns the attribute stored under key.
func (s *AttributeSet) Get(key string) (*Attribute, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.byKey[key]
	return a, ok
}

// Remove deletes the attribute stored under key.
func (s *AttributeSet) Remove(key string) {
	if _, ok := s.byKey[key]; !ok {
		return
	}
	delete(s.byKey, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of attributes.
func (s *AttributeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the attributes in source order.
func (s *AttributeSet) All() []*Attribute {
	if s == nil {
		return nil
	}
	out := make([]*Attribute, len(s.order))
	for i, k := range s.order {
		out[i] = s.byKey[k]
	}
	return out
}

// ElementKind is the classification of an element.
type ElementKind int

const (
	Unclassified ElementKind = iota
	Simple
	Custom
	Fragment
)

func (k ElementKind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Custom:
		return "custom"
	case Fragment:
		return "fragment"
	default:
		return "unclassified"
	}
}

// Child is one entry of an element body: *Element, *RawBlock or *Literal.
type Child interface {
	Position() Pos
	child()
}

// Element is a parsed element. Kind is filled in by classification.
type Element struct {
	Tag      OpenTag
	Children []Child
	Closing  *ClosingTag
	Kind     ElementKind
}

// RawBlock is an embedded {expression} child.
type RawBlock struct {
	Expr Expr
}

// Literal is a run of text with its whitespace collapsed.
type Literal struct {
	Text string
	Pos  Pos
}

func (e *Element) Position() Pos  { return e.Tag.Pos }
func (b *RawBlock) Position() Pos { return b.Expr.Pos }
func (l *Literal) Position() Pos  { return l.Pos }

func (*Element) child()  {}
func (*RawBlock) child() {}
func (*Literal) child()  {}

// Walk calls fn for every element in children, parents before their
// children. Returning false from fn skips that element's subtree.
func Walk(children []Child, fn func(*Element) bool) {
	for _, c := range children {
		el, ok := c.(*Element)
		if !ok {
			continue
		}
		if fn(el) {
			Walk(el.Children, fn)
		}
	}
}

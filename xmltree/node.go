package xmltree

// Node is either an *Element or a CDATA leaf.
type Node interface {
	isNode()
}

// Attr is a single XML attribute. Names may carry a prefix such as "rdf:about".
type Attr struct {
	Name  string
	Value string
}

// Element is a regular XML element with ordered attributes and children.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []Node
}

// CDATA is raw text rendered inside a CDATA section instead of being escaped.
type CDATA string

func (*Element) isNode() {}
func (CDATA) isNode()    {}

// NewElement creates a detached element.
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// SubElement creates a child element and appends it to e.
func (e *Element) SubElement(name string, attrs ...Attr) *Element {
	child := NewElement(name, attrs...)
	e.Children = append(e.Children, child)
	return child
}

// Append adds an existing node as the last child of e.
func (e *Element) Append(n Node) {
	e.Children = append(e.Children, n)
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute or appends it.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Elements returns the element children of e, skipping CDATA leaves.
func (e *Element) Elements() []*Element {
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Find returns the first element child with the given name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// FindAll returns every element child with the given name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, el := range e.Elements() {
		if el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

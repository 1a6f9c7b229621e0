package node

// Kind is the node type discriminator.
type Kind uint8

const (
	KindUnit      Kind = iota // Renders nothing
	KindText                  // Escaped text
	KindRaw                   // Unescaped markup (dangerous)
	KindElement               // <div>, <a>, etc.
	KindFragment              // Grouping without wrapper
	KindSequence              // Ordered list of nodes
	KindPair                  // Left then right
	KindOptional              // Some or None
	KindResult                // Ok or Err
	KindNumber                // Numeric primitive
	KindComponent             // Host supplied component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	case KindElement:
		return "Element"
	case KindFragment:
		return "Fragment"
	case KindSequence:
		return "Sequence"
	case KindPair:
		return "Pair"
	case KindOptional:
		return "Optional"
	case KindResult:
		return "Result"
	case KindNumber:
		return "Number"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Node is a render tree node. A nil *Node renders as Unit.
type Node struct {
	Kind        Kind
	Tag         string    // Element tag name (e.g., "div")
	Attrs       Attrs     // Element attributes, escaped at render time
	SelfClosing bool      // Element renders as <tag/>
	Text        string    // For KindText, KindRaw and KindNumber
	Content     *Node     // Element contents, Optional and Result payload
	Children    []*Node   // For KindSequence and KindFragment
	Left, Right *Node     // For KindPair
	Failed      bool      // KindResult holds the Err arm
	Comp        Component // For KindComponent
}

// Attrs holds simple element attributes. Values are unescaped; the renderer
// escapes them.
type Attrs map[string]string

// Component is anything that can render to a Node.
type Component interface {
	Render() *Node
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func() *Node

// Render implements Component.
func (f ComponentFunc) Render() *Node {
	return f()
}

// IsNone reports whether n is an Optional holding no value.
func (n *Node) IsNone() bool {
	return n != nil && n.Kind == KindOptional && n.Content == nil
}

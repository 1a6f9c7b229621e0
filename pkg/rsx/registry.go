package rsx

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/rsx/internal/compiler"
	"github.com/vango-dev/rsx/pkg/node"
)

// Scope holds the variables visible to a template's expressions.
type Scope = compiler.Scope

// Props are the fields passed to a custom component. Children, when the
// element has any, arrive under the "children" key as a *node.Node.
type Props = compiler.Props

// Factory builds the tree of a custom component from its props.
type Factory = compiler.Factory

// ChildrenProp is the props key holding a component's children.
const ChildrenProp = compiler.ChildrenProp

// Registry maps component names to factories. Templates resolve their
// custom elements against a registry when they are compiled, so a
// component must be registered before any template using it.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry holding the built-in components
// Fragment and HTML5Doctype.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories["Fragment"] = fragment
	r.factories["HTML5Doctype"] = doctype
	return r
}

func fragment(p Props) (*node.Node, error) {
	children, _ := p[ChildrenProp].(*node.Node)
	return node.Fragment(children), nil
}

func doctype(Props) (*node.Node, error) {
	return node.Doctype(), nil
}

// Register adds or replaces the factory for name. Dotted names such as
// "ui.Card" are allowed.
func (r *Registry) Register(name string, f Factory) {
	if f == nil {
		panic(fmt.Sprintf("rsx: nil factory for component %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RegisterTemplate makes a compiled template usable as a component. The
// element's props become the template's scope, children included.
func (r *Registry) RegisterTemplate(name string, t *Template) {
	r.Register(name, func(p Props) (*node.Node, error) {
		scope := make(Scope, len(p))
		for k, v := range p {
			scope[k] = v
		}
		return t.Build(scope)
	})
}

// Lookup returns the factory registered for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered component names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

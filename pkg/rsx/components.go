package rsx

import (
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/pkg/node"
)

// Func adapts a plain function to a Factory.
func Func(fn func(Props) (*node.Node, error)) Factory {
	return Factory(fn)
}

// Struct returns a factory that decodes props into a fresh T and renders
// it. Props match fields by name, case-insensitively, or by a `prop`
// struct tag; the children land in a *node.Node field tagged
// `prop:"children"`. Values are converted weakly, so "3" fills an int.
//
//	type Card struct {
//	    Title    string
//	    Children *node.Node `prop:"children"`
//	}
//
//	func (c *Card) Render() *node.Node { ... }
//
//	registry.Register("Card", rsx.Struct[Card]("Card"))
//
// A prop that matches no field fails the render with R112.
func Struct[T any, PT interface {
	*T
	node.Component
}](name string) Factory {
	return func(p Props) (*node.Node, error) {
		v := PT(new(T))
		var md mapstructure.Metadata
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           v,
			TagName:          "prop",
			WeaklyTypedInput: true,
			Metadata:         &md,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(map[string]any(p)); err != nil {
			return nil, err
		}
		if len(md.Unused) > 0 {
			sort.Strings(md.Unused)
			return nil, errors.New("R112", md.Unused[0], name)
		}
		return node.Comp(v), nil
	}
}

package node

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// Set stores v under key as a string. Nil values and nil pointers leave
// the attribute out, which makes attributes conditional. Values that have
// no sensible string form are an error.
func (a Attrs) Set(key string, v any) error {
	if isNil(v) {
		return nil
	}
	if n, ok := v.(*Node); ok {
		return fmt.Errorf("attribute %q: cannot use a %s node as a value", key, n.Kind)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", key, err)
	}
	a[key] = s
	return nil
}

// AttrsOf builds Attrs from alternating keys and values. It is the form
// used by generated code; values follow the rules of Set, except that a
// value without a string form is written with fmt.Sprint.
func AttrsOf(pairs ...any) Attrs {
	if len(pairs) == 0 {
		return nil
	}
	attrs := make(Attrs, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := cast.ToString(pairs[i])
		if err := attrs.Set(key, pairs[i+1]); err != nil {
			attrs[key] = fmt.Sprint(pairs[i+1])
		}
	}
	return attrs
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

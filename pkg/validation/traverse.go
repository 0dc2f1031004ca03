package validation

import (
	"fmt"
	"reflect"
	"sort"
)

// Keyed is implemented by structures that list their own children for
// traversal, in the order the group should visit them.
type Keyed interface {
	Values() []any
}

// Opaque marks values a traversal must not descend into.
type Opaque interface {
	Opaque()
}

// traversal collects cells reachable from a root.
type traversal struct {
	registry *Registry
	members  []*Observable

	// path holds the containers on the current branch.
	path map[nodeKey]bool
}

type nodeKey struct {
	typ reflect.Type
	ptr uintptr
}

// collect walks root and returns the cells found, in depth-first order.
// Shallow walks inspect the root's direct children only.
func collect(root any, deep bool, registry *Registry) []*Observable {
	t := &traversal{registry: registry, path: make(map[nodeKey]bool)}
	level := -1
	if deep {
		level = 1
	}
	t.walk(root, level)
	return t.members
}

func (t *traversal) walk(node any, level int) {
	val := node
	if o, ok := node.(*Observable); ok {
		if o == nil {
			return
		}
		key := nodeKey{typ: reflect.TypeOf(o), ptr: reflect.ValueOf(o).Pointer()}
		if t.path[key] {
			return
		}
		t.path[key] = true
		defer delete(t.path, key)

		if !o.IsValidatable() {
			Attach(o, WithRegistry(t.registry))
		}
		t.members = append(t.members, o)
		val = o.Peek()
	}

	if level == 0 || val == nil {
		return
	}

	key, hasKey := identity(val)
	if hasKey {
		if t.path[key] {
			return
		}
		t.path[key] = true
		defer delete(t.path, key)
	}

	for _, child := range children(val) {
		if isNil(child) {
			continue
		}
		t.walk(child, level+1)
	}
}

// identity returns a key for reference values so cycles can be detected.
func identity(v any) (nodeKey, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nodeKey{}, false
		}
		return nodeKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return nodeKey{}, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// children lists the values a node contains. Primitives, cells and Opaque
// values have none.
func children(v any) []any {
	switch n := v.(type) {
	case nil, *Observable, Opaque:
		return nil
	case Keyed:
		return n.Values()
	case []any:
		return n
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = n[k]
		}
		return out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
		if rv.CanInterface() {
			if k, ok := rv.Interface().(Keyed); ok {
				return k.Values()
			}
		}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = rv.MapIndex(k).Interface()
		}
		return out
	case reflect.Struct:
		typ := rv.Type()
		out := make([]any, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !typ.Field(i).IsExported() {
				continue
			}
			out = append(out, rv.Field(i).Interface())
		}
		return out
	}
	return nil
}

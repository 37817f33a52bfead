// Package schema resolves OpenAPI documents to PII path sets and caches
// them behind a lock-free, atomically swapped table.
package schema

import (
	"strings"

	"github.com/allisson/enclaved/internal/openapi"
)

// componentsRefPrefix is the only $ref form this resolver understands:
// a pointer straight at a component schema.
const componentsRefPrefix = "#/components/schemas/"

// PathSet is the set of PII dot-notation paths a schema produces.
type PathSet map[string]struct{}

// Resolve walks every top-level component schema in doc and returns the set
// of PII paths: dot-notation strings with "[]" array markers, exactly the
// grammar the encryption pipeline consumes.
//
// The walk is deterministic regardless of Go's randomized map iteration:
// paths are inserted into a set keyed by the fully-built path string, so
// the final PathSet's membership never depends on visitation order, only
// the documents' content.
func Resolve(doc *openapi.Document) PathSet {
	out := PathSet{}
	if doc == nil || doc.Components == nil {
		return out
	}

	for name, root := range doc.Components.Schemas {
		onStack := map[string]bool{name: true}
		walk(doc.Components.Schemas, root, "", onStack, out)
	}

	return out
}

// walk descends one schema node. prefix is the path accumulated so far;
// onStack is the set of component-schema names currently being descended,
// used to detect $ref cycles.
func walk(components map[string]*openapi.Schema, s *openapi.Schema, prefix string, onStack map[string]bool, out PathSet) {
	if s == nil {
		return
	}

	switch {
	case s.IsObject():
		for name, child := range s.Properties {
			childPath := extendPath(prefix, name)
			resolved, resolvedName, ok := resolveRef(components, child, onStack)
			if !ok {
				continue
			}
			if resolved.XPii {
				out[childPath] = struct{}{}
			}
			descendInto(components, resolved, resolvedName, childPath, onStack, out)
		}

	case s.IsArray():
		arrayPath := arrayPath(prefix)
		resolved, resolvedName, ok := resolveRef(components, s.Items, onStack)
		if !ok {
			return
		}
		if resolved.XPii {
			out[arrayPath] = struct{}{}
		}
		descendInto(components, resolved, resolvedName, arrayPath, onStack, out)
	}
}

// descendInto pushes resolvedName (if this schema came from a $ref) onto
// onStack for the duration of the recursive walk, then pops it, so a cycle
// back to the same component name is caught but re-visiting it from an
// unrelated branch afterward is not falsely blocked.
func descendInto(
	components map[string]*openapi.Schema,
	resolved *openapi.Schema,
	resolvedName string,
	path string,
	onStack map[string]bool,
	out PathSet,
) {
	if resolvedName != "" {
		onStack[resolvedName] = true
		defer delete(onStack, resolvedName)
	}
	walk(components, resolved, path, onStack, out)
}

// resolveRef follows a single level of $ref against components. It returns
// ok=false ("unresolvable") when s is nil, when s.Ref points to another
// $ref, when s.Ref isn't a local component-schema pointer, or when s.Ref
// names a component already on the current descent stack (a cycle).
//
// resolvedName is the component name the schema resolved from, or "" when
// s was not itself a $ref (an inline schema); only named resolutions are
// tracked on the cycle stack.
func resolveRef(
	components map[string]*openapi.Schema,
	s *openapi.Schema,
	onStack map[string]bool,
) (resolved *openapi.Schema, resolvedName string, ok bool) {
	if s == nil {
		return nil, "", false
	}
	if s.Ref == "" {
		return s, "", true
	}

	name, isLocal := componentName(s.Ref)
	if !isLocal {
		return nil, "", false
	}
	if onStack[name] {
		return nil, "", false
	}

	target, found := components[name]
	if !found {
		return nil, "", false
	}
	if target.Ref != "" {
		// A $ref pointing at another $ref: not followed.
		return nil, "", false
	}

	return target, name, true
}

// componentName extracts "<Name>" from "#/components/schemas/<Name>". ok
// is false for any other pointer shape (external documents, non-schema
// local pointers).
func componentName(ref string) (name string, ok bool) {
	if !strings.HasPrefix(ref, componentsRefPrefix) {
		return "", false
	}
	name = strings.TrimPrefix(ref, componentsRefPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func extendPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func arrayPath(prefix string) string {
	if prefix == "" {
		return "[]"
	}
	return prefix + "[]"
}

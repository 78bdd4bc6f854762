package toolregistry

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Registry is a read-only index of tool descriptors, built once per run from the
// tool server's capability listing and frozen before the first model call.
type Registry struct {
	descriptors []Descriptor
	byName      map[string]*Descriptor
}

// New builds a registry from the descriptors advertised by the tool server.
// Descriptor order is preserved as returned by the server.
func New(descriptors []Descriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byName:      make(map[string]*Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("tool descriptor has empty name")
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", d.Name)
		}

		// Compile the input schema once. A schema the server advertises but
		// that does not compile disables argument validation for that tool;
		// it does not fail the run.
		if len(d.InputSchema) > 0 {
			if schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(d.InputSchema)); err == nil {
				d.schema = schema
			}
		}

		r.descriptors = append(r.descriptors, d)
		r.byName[d.Name] = &r.descriptors[len(r.descriptors)-1]
	}

	return r, nil
}

// Lookup returns the descriptor for a tool name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns the descriptors in server order.
func (r *Registry) Descriptors() []Descriptor {
	return r.descriptors
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

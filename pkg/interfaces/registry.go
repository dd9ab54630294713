package interfaces

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrMissingParser means a method has no registered parser. It is a
// programming error; callers should not retry.
var ErrMissingParser = errors.New("no parser registered for method")

// Capability names an object interface.
type Capability string

// Capabilities provided by this package.
const (
	CapabilityLoad             Capability = "Load"
	CapabilityRGBLoad          Capability = "RGBLoad"
	CapabilityColorTemperature Capability = "ColorTemperature"
	CapabilityIntrospection    Capability = "Introspection"
)

// Parser decodes one method's response.
type Parser func(Response) (any, error)

// Method is one registry entry.
type Method struct {
	Capability Capability
	Parse      Parser
}

// Registry maps full method names ("Load.GetLevel") to parsers.
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	methods map[string]Method
}

// NewRegistry declares the methods of one capability. Keys of parsers are
// the short method names; entries are stored as "<capability>.<name>".
func NewRegistry(capability Capability, parsers map[string]Parser) *Registry {
	r := &Registry{methods: make(map[string]Method, len(parsers))}
	for name, p := range parsers {
		r.methods[string(capability)+"."+name] = Method{Capability: capability, Parse: p}
	}
	return r
}

// Compose merges registries. Later registries win on duplicate names.
func Compose(registries ...*Registry) *Registry {
	r := &Registry{methods: make(map[string]Method)}
	for _, reg := range registries {
		maps.Copy(r.methods, reg.methods)
	}
	return r
}

// Lookup returns the entry for a full method name.
func (r *Registry) Lookup(method string) (Method, bool) {
	m, ok := r.methods[method]
	return m, ok
}

// Has reports whether method is registered.
func (r *Registry) Has(method string) bool {
	_, ok := r.methods[method]
	return ok
}

// Capabilities returns the distinct capabilities in the registry, sorted.
func (r *Registry) Capabilities() []Capability {
	seen := make(map[Capability]struct{})
	for _, m := range r.methods {
		seen[m.Capability] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Methods returns the registered method names, sorted.
func (r *Registry) Methods() []string {
	return slices.Sorted(maps.Keys(r.methods))
}

// Parse decodes resp using the parser for the method it carries.
func (r *Registry) Parse(resp Response) (any, error) {
	m, ok := r.methods[resp.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParser, resp.Method)
	}
	v, err := m.Parse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", resp.Method, err)
	}
	return v, nil
}

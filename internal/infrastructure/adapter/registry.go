// Package adapter resolves platform capabilities to remote endpoints or
// statically linked adapter modules and invokes them.
package adapter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/openship/backend/internal/domain/integration"
)

// Namespace separates shop modules from channel modules.
// A module name is only unique within its namespace.
type Namespace string

const (
	NamespaceShop    Namespace = "shop"
	NamespaceChannel Namespace = "channel"
)

// NamespaceFor returns the module namespace used by platforms of the given kind
func NamespaceFor(kind integration.PlatformKind) Namespace {
	if kind == integration.PlatformKindChannel {
		return NamespaceChannel
	}
	return NamespaceShop
}

// Kind returns the platform kind served by the namespace
func (n Namespace) Kind() integration.PlatformKind {
	if n == NamespaceChannel {
		return integration.PlatformKindChannel
	}
	return integration.PlatformKindShop
}

// IsValid reports whether n is a known namespace
func (n Namespace) IsValid() bool {
	return n == NamespaceShop || n == NamespaceChannel
}

// Module maps the capabilities a local adapter module exports to their functions
type Module map[integration.Capability]integration.AdapterFunc

var (
	ErrDuplicateRegistration = errors.New("adapter: capability already registered")
	ErrInvalidNamespace      = errors.New("adapter: invalid namespace")
	ErrNilAdapterFunc        = errors.New("adapter: adapter function is nil")
)

// Registry holds the statically linked adapter modules.
// It is populated once at process start and read concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	modules map[Namespace]map[string]Module
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		modules: map[Namespace]map[string]Module{
			NamespaceShop:    {},
			NamespaceChannel: {},
		},
	}
}

// Register adds a single capability export to a module.
// Registering the same (namespace, module, capability) twice is an error.
func (r *Registry) Register(ns Namespace, module string, c integration.Capability, fn integration.AdapterFunc) error {
	if !ns.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
	}
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", integration.ErrUnknownCapability, c)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s.%s", ErrNilAdapterFunc, module, c.ExportName())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mods := r.modules[ns]
	m, ok := mods[module]
	if !ok {
		m = Module{}
		mods[module] = m
	}
	if _, exists := m[c]; exists {
		return fmt.Errorf("%w: %s/%s.%s", ErrDuplicateRegistration, ns, module, c.ExportName())
	}
	m[c] = fn
	return nil
}

// RegisterModule registers every export of m under the given module name
func (r *Registry) RegisterModule(ns Namespace, module string, m Module) error {
	for c, fn := range m {
		if err := r.Register(ns, module, c, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterShopModule registers a module in the shop namespace
func (r *Registry) RegisterShopModule(module string, m Module) error {
	return r.RegisterModule(NamespaceShop, module, m)
}

// RegisterChannelModule registers a module in the channel namespace
func (r *Registry) RegisterChannelModule(module string, m Module) error {
	return r.RegisterModule(NamespaceChannel, module, m)
}

// Lookup returns the function a module exports for c
func (r *Registry) Lookup(ns Namespace, module string, c integration.Capability) (integration.AdapterFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[ns][module]
	if !ok {
		return nil, false
	}
	fn, ok := m[c]
	return fn, ok
}

// Modules lists the registered module names of a namespace in sorted order
func (r *Registry) Modules(ns Namespace) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules[ns]))
	for name := range r.modules[ns] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exports lists the capabilities a module exports
func (r *Registry) Exports(ns Namespace, module string) []integration.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.modules[ns][module]
	out := make([]integration.Capability, 0, len(m))
	for _, c := range integration.AllCapabilities() {
		if _, ok := m[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

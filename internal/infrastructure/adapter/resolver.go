package adapter

import (
	"github.com/openship/backend/internal/domain/integration"
)

// Resolved is a capability bound to where it will run.
// Func is set only for local targets.
type Resolved struct {
	Namespace  Namespace
	Capability integration.Capability
	Target     integration.CapabilityTarget
	Func       integration.AdapterFunc
}

// Transport is "remote" or "local"
func (r Resolved) Transport() string {
	return integration.TransportName(r.Target)
}

// Module is the local module name, or empty for remote targets
func (r Resolved) Module() string {
	if t, ok := r.Target.(integration.TargetLocal); ok {
		return t.Module
	}
	return ""
}

// Resolver maps a platform capability to a remote endpoint or registered function
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over the given registry
func NewResolver(registry *Registry) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{registry: registry}
}

// Registry returns the underlying module registry
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve binds capability c of platform p.
//
// A nil platform and an unconfigured capability are configuration errors.
// A local module or export that is not registered is a not-found error.
// Remote targets are returned without any lookup.
func (r *Resolver) Resolve(ns Namespace, p *integration.Platform, c integration.Capability) (Resolved, error) {
	res, ok, err := r.Lookup(ns, p, c)
	if err != nil {
		return Resolved{}, err
	}
	if !ok {
		return Resolved{}, integration.CapabilityNotConfigured(c)
	}
	return res, nil
}

// Lookup is Resolve for optional capabilities: an unconfigured capability
// returns ok=false and no error so callers can skip the feature.
func (r *Resolver) Lookup(ns Namespace, p *integration.Platform, c integration.Capability) (Resolved, bool, error) {
	if p == nil {
		return Resolved{}, false, integration.PlatformNotConfigured(ns.Kind())
	}
	target, ok := p.Target(c)
	if !ok {
		return Resolved{}, false, nil
	}

	res := Resolved{Namespace: ns, Capability: c, Target: target}
	switch t := target.(type) {
	case integration.TargetRemote:
		return res, true, nil
	case integration.TargetLocal:
		fn, found := r.registry.Lookup(ns, t.Module, c)
		if !found {
			return Resolved{}, false, integration.CapabilityNotFound(t.Module)
		}
		res.Func = fn
		return res, true, nil
	default:
		return Resolved{}, false, integration.CapabilityNotConfigured(c)
	}
}

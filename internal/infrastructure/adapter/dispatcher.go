package adapter

import (
	"context"

	"github.com/openship/backend/internal/domain/integration"
)

// Dispatcher resolves a capability on a platform and invokes it in one step
type Dispatcher struct {
	resolver *Resolver
	invoker  *Invoker
}

// NewDispatcher combines a resolver and an invoker
func NewDispatcher(resolver *Resolver, invoker *Invoker) *Dispatcher {
	return &Dispatcher{resolver: resolver, invoker: invoker}
}

// Call resolves c on p within the namespace for kind, then invokes it with req
func (d *Dispatcher) Call(ctx context.Context, kind integration.PlatformKind, p *integration.Platform, c integration.Capability, req integration.AdapterRequest) (integration.AdapterResult, error) {
	res, err := d.resolver.Resolve(NamespaceFor(kind), p, c)
	if err != nil {
		return nil, err
	}
	return d.invoker.Invoke(ctx, res, req)
}

// Supports reports whether c is configured and resolvable on p
func (d *Dispatcher) Supports(kind integration.PlatformKind, p *integration.Platform, c integration.Capability) bool {
	_, ok, err := d.resolver.Lookup(NamespaceFor(kind), p, c)
	return ok && err == nil
}

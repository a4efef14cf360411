// Package integration coordinates platform capability calls for order
// search, purchase fan-out, webhook reconciliation and OAuth.
package integration

import (
	"context"

	"github.com/openship/backend/internal/domain/integration"
)

// CapabilityCaller resolves a capability on a platform and invokes it.
// adapter.Dispatcher is the production implementation.
type CapabilityCaller interface {
	Call(ctx context.Context, kind integration.PlatformKind, p *integration.Platform, c integration.Capability, req integration.AdapterRequest) (integration.AdapterResult, error)
}

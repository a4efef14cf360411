package integration

import (
	"fmt"
	"net/url"
	"strings"
)

// CapabilityTarget says where a capability is implemented.
// It is either TargetRemote or TargetLocal; the set is closed.
type CapabilityTarget interface {
	// Identifier returns the configured function identifier
	Identifier() string
	isTarget()
}

// TargetRemote is a capability served by POSTing JSON to URL
type TargetRemote struct {
	URL string
}

// TargetLocal is a capability served by a statically registered adapter module
type TargetLocal struct {
	Module string
}

func (t TargetRemote) Identifier() string { return t.URL }
func (t TargetLocal) Identifier() string  { return t.Module }

func (TargetRemote) isTarget() {}
func (TargetLocal) isTarget()  {}

// ParseCapabilityTarget decides the transport for a configured identifier.
// An empty identifier means the capability is unconfigured and returns ok=false
// with no error. Identifiers starting with "http" are remote and must be
// absolute URLs; anything else names a local module.
func ParseCapabilityTarget(identifier string) (target CapabilityTarget, ok bool, err error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, false, nil
	}
	if strings.HasPrefix(strings.ToLower(identifier), "http") {
		u, err := url.Parse(identifier)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidCapabilityTarget, identifier)
		}
		return TargetRemote{URL: identifier}, true, nil
	}
	if strings.ContainsAny(identifier, "/\\ ") {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidCapabilityTarget, identifier)
	}
	return TargetLocal{Module: identifier}, true, nil
}

// IsRemote reports whether t is served over HTTP
func IsRemote(t CapabilityTarget) bool {
	_, ok := t.(TargetRemote)
	return ok
}

// TransportName is "remote" or "local"; used for logs and metrics labels
func TransportName(t CapabilityTarget) string {
	switch t.(type) {
	case TargetRemote:
		return "remote"
	case TargetLocal:
		return "local"
	default:
		return "none"
	}
}

package integration

import (
	"errors"
	"fmt"

	"github.com/openship/backend/internal/domain/shared"
)

// Validation errors raised by entity constructors and mutators
var (
	ErrInvalidCapabilityTarget  = errors.New("invalid capability target")
	ErrInvalidPlatformKind      = errors.New("invalid platform kind")
	ErrPlatformNameRequired     = errors.New("platform name is required")
	ErrUnknownCapability        = errors.New("unknown capability")
	ErrCapabilityNotSupported   = errors.New("capability not supported by platform kind")
	ErrAccountNameRequired      = errors.New("account name is required")
	ErrOwnerRequired            = errors.New("owner is required")
	ErrShopRequired             = errors.New("shop is required")
	ErrPlatformOrderIDRequired  = errors.New("platform order id is required")
	ErrChannelRequired          = errors.New("channel is required")
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrPurchaseIDRequired       = errors.New("purchase id is required")
	ErrCartItemAlreadyPurchased = errors.New("cart item already has a purchase")
	ErrInvalidResponse          = errors.New("invalid adapter response")
	ErrMissingOrderID           = errors.New("webhook handler returned no order id")
)

// ConfigurationError reports a missing platform or capability binding
type ConfigurationError struct {
	Subject string
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ErrorCode implements shared.Coder
func (e *ConfigurationError) ErrorCode() string { return shared.CodeCapabilityNotConfigured }

// PlatformNotConfigured is returned when a shop or channel has no platform
func PlatformNotConfigured(kind PlatformKind) *ConfigurationError {
	return &ConfigurationError{
		Subject: kind.String(),
		Message: fmt.Sprintf("%s platform not configured.", kind.Label()),
	}
}

// CapabilityNotConfigured is returned when a platform has no target for c
func CapabilityNotConfigured(c Capability) *ConfigurationError {
	return &ConfigurationError{
		Subject: c.String(),
		Message: fmt.Sprintf("%s function not configured.", c.Label()),
	}
}

// TransportError reports a failed remote call: non-2xx, network failure or timeout
type TransportError struct {
	Target     string
	StatusCode int
	Status     string
	Verb       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("Failed to %s: %s", e.Verb, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("Failed to %s: %v", e.Verb, e.Err)
	default:
		return fmt.Sprintf("Failed to %s", e.Verb)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrorCode implements shared.Coder
func (e *TransportError) ErrorCode() string { return shared.CodeUpstreamFailed }

// NotFoundError reports a missing entity or local capability.
// ID is kept for logs and is not part of the message.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

// ErrorCode implements shared.Coder
func (e *NotFoundError) ErrorCode() string { return shared.CodeNotFound }

// AdapterError carries the explicit error a local module returned
type AdapterError struct {
	Message string
}

func (e *AdapterError) Error() string { return e.Message }

// ErrorCode implements shared.Coder
func (e *AdapterError) ErrorCode() string { return shared.CodeUpstreamFailed }

// ChannelNotFound is returned when a channel is missing or not owned by the actor
func ChannelNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "Channel", ID: id}
}

// ShopNotFound is returned when a shop is missing or not owned by the actor
func ShopNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "Shop", ID: id}
}

// CapabilityNotFound is returned when a local module or export is not registered
func CapabilityNotFound(module string) *NotFoundError {
	return &NotFoundError{Kind: "capability", ID: module}
}

// IsConfiguration reports whether err is a ConfigurationError
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsTransport reports whether err is a TransportError
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAdapter reports whether err is an AdapterError
func IsAdapter(err error) bool {
	var target *AdapterError
	return errors.As(err, &target)
}

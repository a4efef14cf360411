package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", integration.ShopNotFound("x"), shared.CodeNotFound},
		{"wrapped transport", fmt.Errorf("call: %w", &integration.TransportError{Verb: "search orders"}), shared.CodeUpstreamFailed},
		{"configuration", integration.PlatformNotConfigured(integration.PlatformKindChannel), shared.CodeCapabilityNotConfigured},
		{"domain", shared.ErrInvalidState, shared.CodeInvalidState},
		{"deadline", context.DeadlineExceeded, shared.CodeUpstreamFailed},
		{"plain", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestNewUnitError(t *testing.T) {
	assert.Nil(t, NewUnitError(nil))
	ue := NewUnitError(integration.ChannelNotFound("c"))
	assert.Equal(t, &UnitError{Code: shared.CodeNotFound, Message: "Channel not found"}, ue)
}

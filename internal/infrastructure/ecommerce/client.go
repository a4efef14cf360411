// Package ecommerce contains the statically linked adapter modules for
// platforms that are not reached through a remote capability URL.
package ecommerce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openship/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const defaultTimeout = 30 * time.Second

// Platform API errors
var (
	ErrPlatformUnavailable     = errors.New("platform API unavailable")
	ErrPlatformRequestFailed   = errors.New("platform API request failed")
	ErrPlatformInvalidResponse = errors.New("platform API returned an invalid response")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrMissingField            = errors.New("missing required field")
)

// send performs req and returns the body, capped at maxResponseSize
func send(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrPlatformRequestFailed, resp.StatusCode)
	}
	return body, nil
}

func newClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}

// requireField returns a non-empty string field or ErrMissingField
func requireField(req integration.AdapterRequest, key string) (string, error) {
	v := strings.TrimSpace(req.StringField(key))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

// headerValue reads a header from the "headers" field, case-insensitively.
// The field is a map[string]string in-process and a map[string]any after JSON.
func headerValue(req integration.AdapterRequest, name string) string {
	raw, _ := req.Field("headers")
	switch h := raw.(type) {
	case map[string]string:
		for k, v := range h {
			if strings.EqualFold(k, name) {
				return v
			}
		}
	case map[string]any:
		for k, v := range h {
			if strings.EqualFold(k, name) {
				s, _ := v.(string)
				return s
			}
		}
	}
	return ""
}

// ParseDecimal safely parses a string to decimal
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Product is the normalized product shape returned by getProduct and searchProducts
type Product struct {
	ProductID        string          `json:"productId"`
	VariantID        string          `json:"variantId,omitempty"`
	Title            string          `json:"title"`
	Image            string          `json:"image,omitempty"`
	Price            decimal.Decimal `json:"price"`
	AvailableForSale bool            `json:"availableForSale"`
	Inventory        int64           `json:"inventory"`
	ProductLink      string          `json:"productLink,omitempty"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// withDeadline bounds ctx by defaultTimeout when the caller set no deadline
func withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

package ecommerce

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/openship/backend/internal/infrastructure/adapter"
)

// ModulesConfig carries the app credentials of every local module
type ModulesConfig struct {
	Taobao TaobaoConfig
	Douyin DouyinConfig
	// HTTPClient is shared by the modules; its transport is traced.
	HTTPClient *http.Client
}

// Register links the built-in modules into reg. It is called once at startup.
func Register(reg *adapter.Registry, cfg ModulesConfig) error {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	traced := *client
	base := traced.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	traced.Transport = otelhttp.NewTransport(base)

	if err := reg.RegisterShopModule(TaobaoModuleName, NewTaobaoModule(cfg.Taobao, &traced).Exports()); err != nil {
		return fmt.Errorf("register %s: %w", TaobaoModuleName, err)
	}
	if err := reg.RegisterChannelModule(DouyinModuleName, NewDouyinModule(cfg.Douyin, &traced).Exports()); err != nil {
		return fmt.Errorf("register %s: %w", DouyinModuleName, err)
	}
	return nil
}

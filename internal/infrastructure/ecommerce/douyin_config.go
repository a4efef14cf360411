package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// DouyinConfig holds the app credentials of the Douyin (TikTok Shop) open platform
type DouyinConfig struct {
	AppKey    string
	AppSecret string
	// Gateway overrides the API base URL; a channel's domain overrides it again.
	Gateway string
}

const (
	// DouyinProductionAPIURL is the production API endpoint
	DouyinProductionAPIURL = "https://openapi-fxg.jinritemai.com"
	// DouyinSandboxAPIURL is the sandbox API endpoint
	DouyinSandboxAPIURL = "https://openapi-sandbox.jinritemai.com"
)

var (
	ErrDouyinConfigMissingAppKey      = errors.New("douyin: app key is required")
	ErrDouyinConfigMissingAppSecret   = errors.New("douyin: app secret is required")
	ErrDouyinConfigMissingAccessToken = errors.New("douyin: access token is required")
)

// Validate checks that the app credentials are present
func (c DouyinConfig) Validate() error {
	if c.AppKey == "" {
		return ErrDouyinConfigMissingAppKey
	}
	if c.AppSecret == "" {
		return ErrDouyinConfigMissingAppSecret
	}
	return nil
}

func (c DouyinConfig) baseURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return strings.TrimRight(domain, "/")
	}
	if c.Gateway != "" {
		return strings.TrimRight(c.Gateway, "/")
	}
	return DouyinProductionAPIURL
}

// Sign computes HMAC-SHA256 over
// app_secret + method + param_json + timestamp + v + app_secret.
func (c DouyinConfig) Sign(method, paramJSON, timestamp, v string) string {
	var b strings.Builder
	b.WriteString(c.AppSecret)
	b.WriteString(method)
	b.WriteString(paramJSON)
	b.WriteString(timestamp)
	b.WriteString(v)
	b.WriteString(c.AppSecret)

	h := hmac.New(sha256.New, []byte(c.AppSecret))
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil))
}

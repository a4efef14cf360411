package ecommerce

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

// TaobaoConfig holds the app credentials of the Taobao/Tmall open platform.
// The per-shop session key travels as the capability access token.
type TaobaoConfig struct {
	AppKey    string
	AppSecret string
	// Gateway overrides the API endpoint; a shop's domain overrides it again.
	Gateway string
}

const (
	// TaobaoProductionAPIURL is the production API endpoint
	TaobaoProductionAPIURL = "https://gw.api.taobao.com/router/rest"
	// TaobaoSandboxAPIURL is the sandbox API endpoint
	TaobaoSandboxAPIURL = "https://gw.api.tbsandbox.com/router/rest"
)

var (
	ErrTaobaoConfigMissingAppKey     = errors.New("taobao: app key is required")
	ErrTaobaoConfigMissingAppSecret  = errors.New("taobao: app secret is required")
	ErrTaobaoConfigMissingSessionKey = errors.New("taobao: session key is required")
)

// Validate checks that the app credentials are present
func (c TaobaoConfig) Validate() error {
	if c.AppKey == "" {
		return ErrTaobaoConfigMissingAppKey
	}
	if c.AppSecret == "" {
		return ErrTaobaoConfigMissingAppSecret
	}
	return nil
}

// endpoint picks the shop domain, then the configured gateway, then production
func (c TaobaoConfig) endpoint(domain string) string {
	domain = strings.TrimSpace(domain)
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	if c.Gateway != "" {
		return c.Gateway
	}
	return TaobaoProductionAPIURL
}

// Sign generates the request signature.
// Taobao's API requires MD5(secret + sorted key/value pairs + secret).
func (c TaobaoConfig) Sign(params map[string]string) string {
	var b strings.Builder
	b.WriteString(c.AppSecret)
	writeSorted(&b, params)
	b.WriteString(c.AppSecret)

	hash := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// SignHMAC generates the HMAC-MD5 signature used for message push
func (c TaobaoConfig) SignHMAC(params map[string]string) string {
	var b strings.Builder
	writeSorted(&b, params)

	h := hmac.New(md5.New, []byte(c.AppSecret))
	h.Write([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func writeSorted(b *strings.Builder, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
}

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// AdapterRequest is the normalized input to every capability call
type AdapterRequest struct {
	Domain      string
	AccessToken string
	Fields      map[string]any
}

// NewAdapterRequest builds a request from account credentials and capability fields
func NewAdapterRequest(creds Credentials, fields map[string]any) AdapterRequest {
	return AdapterRequest{
		Domain:      creds.Domain,
		AccessToken: creds.AccessToken,
		Fields:      fields,
	}
}

// Payload flattens the request into {domain, accessToken, ...fields}.
// Credentials always win over fields of the same name.
func (r AdapterRequest) Payload() map[string]any {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["domain"] = r.Domain
	out["accessToken"] = r.AccessToken
	return out
}

// Field returns a capability field
func (r AdapterRequest) Field(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// StringField returns a capability field as a string, "" when absent
func (r AdapterRequest) StringField(key string) string {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// IntField returns a numeric capability field, def when absent or not numeric
func (r AdapterRequest) IntField(key string, def int) int {
	switch t := r.Fields[key].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// DecodeFields decodes the capability fields into a typed struct
func (r AdapterRequest) DecodeFields(into any) error {
	raw, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

// AdapterResult is the success payload of a capability call.
// It is returned verbatim to callers and never persisted.
type AdapterResult map[string]any

// String returns a string field, "" when absent
func (r AdapterResult) String(key string) string {
	switch t := r[key].(type) {
	case string:
		return t
	case nil:
		return ""
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Bool returns a boolean field, false when absent
func (r AdapterResult) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// ErrorMessage returns the explicit error field of a local module result.
// Only a non-empty string or an object with a non-empty message counts;
// false, 0 and other falsy values mean no error.
func (r AdapterResult) ErrorMessage() string {
	switch t := r["error"].(type) {
	case string:
		return t
	case map[string]any:
		if msg, ok := t["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Decode converts the payload into a typed struct
func (r AdapterResult) Decode(into any) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// ResultFrom marshals any value into an AdapterResult.
// Local modules use it to return typed responses.
func ResultFrom(v any) (AdapterResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out AdapterResult
	if err := DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: result must be a JSON object", ErrInvalidResponse)
	}
	return out, nil
}

// DecodeJSON decodes raw into v keeping numbers as json.Number, so
// platform ids wider than 53 bits keep every digit.
func DecodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// ErrorResult is the {error} shape a local module returns on failure
func ErrorResult(msg string) AdapterResult {
	return AdapterResult{"error": msg}
}

// AdapterFunc is the signature every local module export implements
type AdapterFunc func(ctx context.Context, req AdapterRequest) (AdapterResult, error)

package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Param is a single key=value pair of a signed request. Binance verifies the
// signature against the query string exactly as transmitted, so parameters
// are kept as an ordered slice and never pass through a map.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Append order is transmission order.
type Params []Param

// Add appends a parameter and returns the extended list.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode renders the list as k=v pairs joined by '&' in insertion order.
// Values are used verbatim: every parameter this client sends (symbols,
// sides, decimal amounts, UUIDs, epoch millis) is already URL-safe.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(kv.Key)
		sb.WriteByte('=')
		sb.WriteString(kv.Value)
	}
	return sb.String()
}

// Sign computes the hex HMAC-SHA256 of the encoded parameter string under
// the account secret. The signature parameter itself must not be part of
// params; it is appended after signing.
func Sign(params Params, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

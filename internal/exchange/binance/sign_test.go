package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParamsEncode_InsertionOrder tests that parameters are encoded in the
// exact order they were added
func TestParamsEncode_InsertionOrder(t *testing.T) {
	params := Params{}.
		Add("symbol", "ETHUSDC").
		Add("side", "BUY").
		Add("type", "MARKET").
		Add("quoteOrderQty", "25.00").
		Add("timestamp", "1700000000000")

	assert.Equal(t, "symbol=ETHUSDC&side=BUY&type=MARKET&quoteOrderQty=25.00&timestamp=1700000000000", params.Encode())
}

// TestParamsEncode_Empty tests encoding of an empty parameter list
func TestParamsEncode_Empty(t *testing.T) {
	assert.Equal(t, "", Params{}.Encode())
}

// TestSign_Deterministic tests that the same parameters and key always
// produce the identical digest
func TestSign_Deterministic(t *testing.T) {
	params := Params{}.
		Add("symbol", "ETHUSDC").
		Add("side", "SELL").
		Add("timestamp", "1700000000000")

	first := Sign(params, "test-secret")
	second := Sign(params, "test-secret")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex SHA-256
}

// TestSign_MatchesQueryStringDigest tests that the signature is the
// HMAC-SHA256 of the encoded query string
func TestSign_MatchesQueryStringDigest(t *testing.T) {
	params := Params{}.
		Add("symbol", "BTCUSDC").
		Add("quantity", "0.500000")
	secret := "another-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("symbol=BTCUSDC&quantity=0.500000"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(params, secret))
}

// TestSign_OrderMatters tests that reordering parameters changes the digest
func TestSign_OrderMatters(t *testing.T) {
	a := Params{}.Add("symbol", "ETHUSDC").Add("side", "BUY")
	b := Params{}.Add("side", "BUY").Add("symbol", "ETHUSDC")

	assert.NotEqual(t, Sign(a, "secret"), Sign(b, "secret"))
}

// TestSign_KeyMatters tests that different secrets produce different digests
func TestSign_KeyMatters(t *testing.T) {
	params := Params{}.Add("symbol", "ETHUSDC")

	assert.NotEqual(t, Sign(params, "key-one"), Sign(params, "key-two"))
}

package binance

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountBody = `{"balances":[
	{"asset":"ETH","free":"1.25000000","locked":"0.00000000"},
	{"asset":"USDC","free":"104.37000000","locked":"5.00000000"}
]}`

// TestFreeBalance_ReturnsFreeAmount tests that the free field of the
// matching asset is returned
func TestFreeBalance_ReturnsFreeAmount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(accountBody))
	})

	free, err := client.FreeBalance(context.Background(), "USDC")
	require.NoError(t, err)
	assert.Equal(t, 104.37, free)
}

// TestFreeBalance_AssetAbsent tests that an asset missing from the response
// is a zero balance, not an error
func TestFreeBalance_AssetAbsent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(accountBody))
	})

	free, err := client.FreeBalance(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, 0.0, free)
}

// TestFreeBalance_UpstreamFailurePropagates tests that lookup failures are
// errors rather than a silent zero balance
func TestFreeBalance_UpstreamFailurePropagates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":-2014,"msg":"API-key format invalid."}`))
	})

	_, err := client.FreeBalance(context.Background(), "USDC")
	require.Error(t, err)
	assert.True(t, IsAuthenticationError(errUnwrapAll(err)))
}

// TestFreeBalance_MalformedBody tests that undecodable JSON propagates
func TestFreeBalance_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.FreeBalance(context.Background(), "USDC")
	assert.Error(t, err)
}

// errUnwrapAll unwraps to the innermost error.
func errUnwrapAll(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

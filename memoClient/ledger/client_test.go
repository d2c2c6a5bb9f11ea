package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// ===== Constants & helpers

var testAccount = solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")

type rpcServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newRPCServer answers every JSON-RPC call with reply(method). A reply
// starting with '{"code"' is sent as the error member; "" yields HTTP 500.
func newRPCServer(t *testing.T, reply func(method string) string) *rpcServer {
	t.Helper()
	s := &rpcServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body := reply(req.Method)
		if body == "" {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		member := "result"
		if len(body) > 7 && body[:7] == `{"code"` {
			member = "error"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,%q:%s}`, req.ID, member, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestClient(t *testing.T, servers ...*rpcServer) *Client {
	t.Helper()
	urls := make([]string, 0, len(servers))
	for _, s := range servers {
		urls = append(urls, s.URL)
	}
	c, err := NewClient(urls, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func down(string) string { return "" }

// ===== Tests

func TestNewClientRequiresURLs(t *testing.T) {
	_, err := NewClient(nil, zerolog.Nop())
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeConfig))
}

func TestFailoverSkipsBrokenEndpoint(t *testing.T) {
	broken := newRPCServer(t, down)
	healthy := newRPCServer(t, func(method string) string {
		assert.Equal(t, "getBalance", method)
		return `{"context":{"slot":1},"value":42}`
	})
	c := newTestClient(t, broken, healthy)

	lamports, err := c.Balance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), lamports)
	assert.Equal(t, int32(1), broken.hits.Load())
	assert.Equal(t, int32(1), healthy.hits.Load())
}

func TestFailoverExhausted(t *testing.T) {
	a, b := newRPCServer(t, down), newRPCServer(t, down)
	c := newTestClient(t, a, b)

	_, err := c.Balance(context.Background(), testAccount)
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeRPC))
	assert.Contains(t, err.Error(), "failed after trying 2 endpoints")
	assert.True(t, merrors.IsRetryable(err))
}

func TestNodeErrorIsNotRetriedElsewhere(t *testing.T) {
	answering := newRPCServer(t, func(string) string {
		return `{"code":-32602,"message":"Invalid param: WrongSize"}`
	})
	spare := newRPCServer(t, func(string) string { return `{"context":{"slot":1},"value":1}` })
	c := newTestClient(t, answering, spare)

	_, err := c.Balance(context.Background(), testAccount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WrongSize")
	assert.Equal(t, int32(0), spare.hits.Load())
}

func TestAccountData(t *testing.T) {
	s := newRPCServer(t, func(method string) string {
		assert.Equal(t, "getAccountInfo", method)
		return `{"context":{"slot":1},"value":{"data":["AQID","base64"],"executable":false,"lamports":1,"owner":"11111111111111111111111111111111","rentEpoch":0,"space":3}}`
	})
	c := newTestClient(t, s)

	data, err := c.AccountData(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestAccountDataNotFound(t *testing.T) {
	missing := newRPCServer(t, func(string) string { return `{"context":{"slot":1},"value":null}` })
	spare := newRPCServer(t, down)
	c := newTestClient(t, missing, spare)

	_, err := c.AccountData(context.Background(), testAccount)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, int32(0), spare.hits.Load())
}

func TestSignatureStatus(t *testing.T) {
	sig := solana.SignatureFromBytes(make([]byte, 64))

	t.Run("unknown", func(t *testing.T) {
		s := newRPCServer(t, func(string) string { return `{"context":{"slot":1},"value":[null]}` })
		status, err := newTestClient(t, s).SignatureStatus(context.Background(), sig)
		require.NoError(t, err)
		assert.Nil(t, status)
		assert.False(t, status.Landed())
	})

	t.Run("confirmed", func(t *testing.T) {
		s := newRPCServer(t, func(string) string {
			return `{"context":{"slot":9},"value":[{"slot":7,"confirmations":1,"err":null,"confirmationStatus":"confirmed","status":{"Ok":null}}]}`
		})
		status, err := newTestClient(t, s).SignatureStatus(context.Background(), sig)
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, uint64(7), status.Slot)
		assert.True(t, status.Landed())
		assert.Nil(t, status.Err)
	})

	t.Run("processed only", func(t *testing.T) {
		s := newRPCServer(t, func(string) string {
			return `{"context":{"slot":9},"value":[{"slot":8,"confirmations":0,"err":null,"confirmationStatus":"processed","status":{"Ok":null}}]}`
		})
		status, err := newTestClient(t, s).SignatureStatus(context.Background(), sig)
		require.NoError(t, err)
		assert.False(t, status.Landed())
	})
}

func TestCancelledContext(t *testing.T) {
	s := newRPCServer(t, func(string) string { return `{"context":{"slot":1},"value":1}` })
	c := newTestClient(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Balance(ctx, testAccount)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), s.hits.Load())
}

func TestCloseDropsEndpoints(t *testing.T) {
	c := newTestClient(t, newRPCServer(t, down))
	assert.Len(t, c.Endpoints(), 1)
	c.Close()
	assert.Empty(t, c.Endpoints())

	_, err := c.Balance(context.Background(), testAccount)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeRPC))
}

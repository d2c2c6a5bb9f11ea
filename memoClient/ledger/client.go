// Package ledger wraps solana-go's RPC client with round-robin failover
// across endpoints and exposes the calls the operation pipeline uses.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rs/zerolog"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

const dialTimeout = 30 * time.Second

// Client provides RPC operations with failover across endpoints.
type Client struct {
	clients []*rpc.Client
	urls    []string
	index   uint64
	mu      sync.RWMutex
	logger  zerolog.Logger
}

var _ Ledger = (*Client)(nil)

// NewClient creates a client over urls without probing them.
func NewClient(urls []string, logger zerolog.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, merrors.New(merrors.ErrCodeConfig, "ledger.new", "no RPC URLs provided", nil)
	}
	c := &Client{logger: logger.With().Str("component", "ledger_client").Logger()}
	for _, url := range urls {
		c.clients = append(c.clients, rpc.New(url))
		c.urls = append(c.urls, url)
	}
	return c, nil
}

// Dial creates a client over the urls that answer getHealth with "ok".
func Dial(ctx context.Context, urls []string, logger zerolog.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, merrors.New(merrors.ErrCodeConfig, "ledger.dial", "no RPC URLs provided", nil)
	}
	log := logger.With().Str("component", "ledger_client").Logger()

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	c := &Client{logger: log}
	for _, url := range urls {
		client := rpc.New(url)
		health, err := client.GetHealth(ctx)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}
		if health != rpc.HealthOk {
			log.Warn().Str("url", url).Str("health", health).Msg("node is not healthy, skipping")
			continue
		}
		c.clients = append(c.clients, client)
		c.urls = append(c.urls, url)
		log.Debug().Str("url", url).Msg("connected to RPC endpoint")
	}
	if len(c.clients) == 0 {
		return nil, merrors.Newf(merrors.ErrCodeRPC, "ledger.dial", "failed to connect to any of %d RPC endpoints", len(urls)).
			WithHint(merrors.Hint{Key: "rpc_unreachable", Advice: "check RPC_URL or provider.cluster in Anchor.toml"})
	}
	return c, nil
}

// Endpoints returns the URLs the client rotates over.
func (c *Client) Endpoints() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.urls...)
}

// terminal errors are answers, not endpoint failures; trying another node
// would give the same result.
func terminal(err error) bool {
	if errors.Is(err, rpc.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr)
}

// executeWithFailover executes fn with round-robin failover.
func (c *Client) executeWithFailover(ctx context.Context, operation string, fn func(*rpc.Client) error) error {
	c.mu.RLock()
	clients := c.clients
	c.mu.RUnlock()

	if len(clients) == 0 {
		return merrors.Newf(merrors.ErrCodeRPC, operation, "no RPC clients available")
	}

	var lastErr error
	for attempt := 0; attempt < len(clients); attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		index := atomic.AddUint64(&c.index, 1) - 1
		err := fn(clients[index%uint64(len(clients))])
		if err == nil {
			return nil
		}
		if terminal(err) {
			return err
		}
		lastErr = err

		c.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}

	return merrors.New(merrors.ErrCodeRPC, operation, fmt.Sprintf("failed after trying %d endpoints", len(clients)), lastErr)
}

// Health returns nil when any endpoint reports healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.executeWithFailover(ctx, "get_health", func(client *rpc.Client) error {
		health, err := client.GetHealth(ctx)
		if err != nil {
			return err
		}
		if health != rpc.HealthOk {
			return fmt.Errorf("node reports %q", health)
		}
		return nil
	})
}

// LatestBlockhash returns a blockhash at confirmed commitment.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := c.executeWithFailover(ctx, "get_latest_blockhash", func(client *rpc.Client) error {
		resp, err := client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		if resp == nil || resp.Value == nil {
			return fmt.Errorf("empty blockhash response")
		}
		hash = resp.Value.Blockhash
		return nil
	})
	return hash, err
}

// Simulate runs tx at confirmed commitment with signature verification off
// and the blockhash left as built.
func (c *Client) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	var out *SimulationResult
	err := c.executeWithFailover(ctx, "simulate_transaction", func(client *rpc.Client) error {
		resp, err := client.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
			SigVerify:              false,
			Commitment:             rpc.CommitmentConfirmed,
			ReplaceRecentBlockhash: false,
		})
		if err != nil {
			return err
		}
		if resp == nil || resp.Value == nil {
			return fmt.Errorf("empty simulation response")
		}
		out = &SimulationResult{
			Err:           resp.Value.Err,
			Logs:          resp.Value.Logs,
			UnitsConsumed: resp.Value.UnitsConsumed,
		}
		return nil
	})
	return out, err
}

// Send submits tx with preflight at confirmed commitment.
func (c *Client) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := c.executeWithFailover(ctx, "send_transaction", func(client *rpc.Client) error {
		var err error
		sig, err = client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		return err
	})
	if err != nil {
		return solana.Signature{}, err
	}
	c.logger.Debug().Str("signature", sig.String()).Msg("transaction sent")
	return sig, nil
}

// SignatureStatus looks sig up in the recent status cache.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	var out *SignatureStatus
	err := c.executeWithFailover(ctx, "get_signature_statuses", func(client *rpc.Client) error {
		resp, err := client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return err
		}
		if len(resp.Value) == 0 || resp.Value[0] == nil {
			return nil
		}
		s := resp.Value[0]
		out = &SignatureStatus{Slot: s.Slot, Err: s.Err, Status: s.ConfirmationStatus}
		return nil
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

// Transaction fetches a confirmed transaction with its logs.
func (c *Client) Transaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error) {
	var out *TransactionRecord
	err := c.executeWithFailover(ctx, "get_transaction", func(client *rpc.Client) error {
		maxVersion := uint64(0)
		resp, err := client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil {
			return err
		}
		if resp.Transaction == nil {
			return fmt.Errorf("transaction %s has no body", sig)
		}
		tx, err := resp.Transaction.GetTransaction()
		if err != nil {
			return err
		}
		out = &TransactionRecord{Slot: resp.Slot, Transaction: tx}
		if resp.Meta != nil {
			out.Logs = resp.Meta.LogMessages
			out.Err = resp.Meta.Err
			out.UnitsConsumed = resp.Meta.ComputeUnitsConsumed
		}
		return nil
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, merrors.New(merrors.ErrCodeVerification, "get_transaction", fmt.Sprintf("transaction %s not found", sig), err)
	}
	return out, err
}

// AccountData returns the raw data of account at confirmed commitment.
func (c *Client) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	var data []byte
	err := c.executeWithFailover(ctx, "get_account_info", func(client *rpc.Client) error {
		resp, err := client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
			Commitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return err
		}
		data = resp.Value.Data.GetBinary()
		return nil
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return data, err
}

// Balance returns the lamports held by account.
func (c *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := c.executeWithFailover(ctx, "get_balance", func(client *rpc.Client) error {
		resp, err := client.GetBalance(ctx, account, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		lamports = resp.Value
		return nil
	})
	return lamports, err
}

// Close drops every endpoint.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = nil
	c.urls = nil
}

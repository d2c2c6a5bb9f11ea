// Package guardrail tops up the signer's token balance through memo-mint
// before an operation that burns.
package guardrail

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/ledger"
)

// DefaultMaxMints bounds one Ensure call.
const DefaultMaxMints = 50

var supplyHint = merrors.Hint{Key: "supply_limit", Advice: "Supply limit reached: the mint cap is exhausted, no further mints are possible"}

// tiers is memo-mint's schedule: the amount minted while supply is at most
// the bound.
var tiers = []struct {
	maxSupply uint64
	amount    uint64
}{
	{100_000_000_000_000, 1_000_000},
	{1_000_000_000_000_000, 100_000},
	{10_000_000_000_000_000, 10_000},
	{100_000_000_000_000_000, 1_000},
	{1_000_000_000_000_000_000, 100},
}

// MintAmount is the number of units the next process_mint yields at
// supply. It fails with ErrCodeSupply when that mint would cross the cap.
func MintAmount(supply uint64) (uint64, error) {
	amount := uint64(1)
	for _, t := range tiers {
		if supply <= t.maxSupply {
			amount = t.amount
			break
		}
	}
	if supply >= constant.SupplyCap || supply+amount > constant.SupplyCap {
		return 0, merrors.Newf(merrors.ErrCodeSupply, "process_mint", "mint supply %d units is at the cap of %d", supply, constant.SupplyCap).
			WithHint(supplyHint)
	}
	return amount, nil
}

// State reads the balances the guardrail acts on.
type State interface {
	TokenBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	Supply(ctx context.Context) (uint64, error)
}

// Minter performs one confirmed process_mint for the signer.
type Minter interface {
	MintOnce(ctx context.Context) error
}

// Options tune Ensure.
type Options struct {
	MaxMints int
	// SettleDelay is waited before re-reading a balance that did not move.
	SettleDelay time.Duration
}

// Guardrail keeps owner's token balance above a requirement.
type Guardrail struct {
	state  State
	minter Minter
	owner  solana.PublicKey
	opts   Options
	logger zerolog.Logger
}

// New creates a guardrail for owner.
func New(state State, minter Minter, owner solana.PublicKey, opts Options, logger zerolog.Logger) *Guardrail {
	if opts.MaxMints <= 0 {
		opts.MaxMints = DefaultMaxMints
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = time.Second
	}
	return &Guardrail{
		state:  state,
		minter: minter,
		owner:  owner,
		opts:   opts,
		logger: logger.With().Str("component", "guardrail").Logger(),
	}
}

// Outcome summarises one Ensure call.
type Outcome struct {
	Start  uint64
	End    uint64
	Mints  int
	Minted uint64
}

// Ensure mints until owner holds at least required units.
func (g *Guardrail) Ensure(ctx context.Context, required uint64) (Outcome, error) {
	balance, err := g.balance(ctx)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Start: balance, End: balance}
	if balance >= required {
		g.logger.Debug().Uint64("balance", balance).Uint64("required", required).Msg("balance sufficient")
		return out, nil
	}

	g.logger.Info().
		Uint64("balance", balance).
		Uint64("required", required).
		Msg("balance below requirement, minting")

	for balance < required {
		if out.Mints >= g.opts.MaxMints {
			return out, merrors.Newf(merrors.ErrCodePrecondition, "guardrail", "balance %d still below %d after %d mints", balance, required, out.Mints)
		}

		supply, err := g.state.Supply(ctx)
		if err != nil {
			return out, err
		}
		expected, err := MintAmount(supply)
		if err != nil {
			return out, err
		}

		if err := g.minter.MintOnce(ctx); err != nil {
			return out, err
		}
		out.Mints++

		next, err := g.balance(ctx)
		if err != nil {
			return out, err
		}
		if next <= balance {
			// The read may precede the confirmed slot; look once more.
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(g.opts.SettleDelay):
			}
			if next, err = g.balance(ctx); err != nil {
				return out, err
			}
			if next <= balance {
				return out, merrors.Newf(merrors.ErrCodeSupply, "guardrail", "mint confirmed but balance stayed at %d units", balance).
					WithContext("supply", supply).
					WithHint(supplyHint)
			}
		}

		g.logger.Debug().
			Uint64("expected", expected).
			Uint64("minted", next-balance).
			Uint64("balance", next).
			Msg("minted")
		out.Minted += next - balance
		balance = next
		out.End = balance
	}

	g.logger.Info().
		Int("mints", out.Mints).
		Uint64("minted", out.Minted).
		Uint64("balance", out.End).
		Msg("balance topped up")
	return out, nil
}

// balance treats a missing token account as empty.
func (g *Guardrail) balance(ctx context.Context) (uint64, error) {
	b, err := g.state.TokenBalance(ctx, g.owner)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return 0, nil
	}
	return b, err
}

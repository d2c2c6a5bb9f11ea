package smoke

import (
	"context"
	"errors"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/guardrail"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// balance reads the signer's token balance; a missing account is zero.
func (r *Runner) balance(ctx context.Context) (uint64, error) {
	b, err := r.c.Reader().TokenBalance(ctx, r.c.Payer())
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return 0, nil
	}
	return b, err
}

func mintScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	before, err := r.balance(ctx)
	if err != nil {
		return err
	}
	supply, err := c.Reader().Supply(ctx)
	if err != nil {
		return err
	}
	expected, err := guardrail.MintAmount(supply)
	if err != nil {
		return err
	}

	out, err := c.Mint(ctx, client.MintParams{MemoLength: constant.MinMemoLength})
	if err := r.landed(ctx, rep, "process mint", out, err, 0, memo.Expectation{Actor: c.Payer()}); err != nil {
		return err
	}
	after, err := r.balance(ctx)
	if err != nil {
		return err
	}
	supplyAfter, err := c.Reader().Supply(ctx)
	if err != nil {
		return err
	}
	// Other signers can mint concurrently, so supply only bounds from below.
	return r.check(rep, verify.Check("token balance after mint",
		verify.Increased("balance", before, after, expected),
		verify.Equal("supply moved", true, supplyAfter >= supply+expected),
	))
}

func burnScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	tokens := uint64(1)
	units := constant.Tokens(tokens)

	if err := r.prepareBurner(ctx, rep, r.opts.BalanceTokens); err != nil {
		return err
	}
	before, err := r.balance(ctx)
	if err != nil {
		return err
	}
	stats, err := c.Reader().BurnStats(ctx, c.Payer())
	if err != nil {
		return err
	}

	out, err := c.Burn(ctx, client.BurnParams{Tokens: tokens})
	if err := r.landed(ctx, rep, "process burn", out, err, units, memo.Expectation{Actor: c.Payer()}); err != nil {
		return err
	}
	after, err := r.balance(ctx)
	if err != nil {
		return err
	}
	statsAfter, err := c.Reader().BurnStats(ctx, c.Payer())
	if err != nil {
		return err
	}
	return r.check(rep, verify.Check("token balance after burn",
		verify.Increased("balance", after, before, units),
		verify.ActorIs("stats user", c.Payer(), statsAfter.User),
		verify.NotBefore("last_burn_time", stats.LastBurnTime, statsAfter.LastBurnTime),
	))
}

// guardrailScenario tops the balance up to the configured requirement.
// Exhausted supply is an accepted outcome.
func guardrailScenario(ctx context.Context, r *Runner, rep *Report) error {
	required := constant.Tokens(r.opts.BalanceTokens)
	res, err := r.c.EnsureBalance(ctx, required)
	if merrors.IsCode(err, merrors.ErrCodeSupply) {
		r.logger.Warn().Err(err).Int("mints", res.Mints).Msg("supply exhausted before reaching the requirement")
		return r.check(rep, verify.Check("guardrail",
			verify.Equal("stopped on supply", merrors.ErrCodeSupply, merrors.CodeOf(err)),
		))
	}
	if err != nil {
		return err
	}
	after, err := r.balance(ctx)
	if err != nil {
		return err
	}
	return r.check(rep, verify.Check("guardrail",
		verify.Equal("balance sufficient", true, after >= required),
		verify.Equal("minted covers the gap", true, res.Start >= required || res.Start+res.Minted >= required),
	))
}

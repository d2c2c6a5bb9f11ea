// Package smoke runs end-to-end scenarios against a live cluster and
// verifies the resulting on-chain state.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// Options tune the scenarios.
type Options struct {
	// BalanceTokens is the balance the guardrail guarantees before a
	// scenario that burns.
	BalanceTokens uint64
	// ChatBurnTokens is burned by the chat scenario's burn step.
	ChatBurnTokens uint64
}

// Step is one submitted transaction of a scenario.
type Step struct {
	Name            string
	Op              instruction.Op
	Signature       solana.Signature
	Limit           uint32
	UnitsConsumed   uint64
	ExpectedFailure bool
	Hint            string
	Err             error
}

// Report is the outcome of one scenario.
type Report struct {
	Scenario string
	Steps    []Step
	Checks   []verify.Report
	Elapsed  time.Duration
	Err      error
}

// OK reports whether every step and check passed.
func (r Report) OK() bool { return r.Err == nil }

// Summary is a one-line result.
func (r Report) Summary() string {
	status := "PASS"
	if !r.OK() {
		status = "FAIL"
	}
	failed := 0
	for _, c := range r.Checks {
		failed += len(c.Failed())
	}
	return fmt.Sprintf("%s %-12s steps=%d checks=%d failed=%d elapsed=%s",
		status, r.Scenario, len(r.Steps), len(r.Checks), failed, r.Elapsed.Round(time.Millisecond))
}

type scenario func(ctx context.Context, r *Runner, rep *Report) error

var scenarios = map[string]scenario{
	"mint":      mintScenario,
	"burn":      burnScenario,
	"blog":      blogScenario,
	"profile":   profileScenario,
	"forum":     forumScenario,
	"chat":      chatScenario,
	"project":   projectScenario,
	"burn-memo": burnMemoScenario,
	"budget":    budgetScenario,
	"guardrail": guardrailScenario,
	"ordering":  orderingScenario,
}

// Names lists the scenarios in run order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Runner runs scenarios with one client.
type Runner struct {
	c      *client.Client
	opts   Options
	logger zerolog.Logger
}

// New creates a runner. Zero options take the package defaults.
func New(c *client.Client, opts Options, logger zerolog.Logger) *Runner {
	if opts.BalanceTokens == 0 {
		opts.BalanceTokens = constant.DefaultSmokeBalanceTokens
	}
	if opts.ChatBurnTokens == 0 {
		opts.ChatBurnTokens = constant.DefaultChatSmokeBurnTokens
	}
	return &Runner{c: c, opts: opts, logger: logger.With().Str("component", "smoke").Logger()}
}

// Run executes the named scenario.
func (r *Runner) Run(ctx context.Context, name string) Report {
	rep := Report{Scenario: name}
	fn, ok := scenarios[name]
	if !ok {
		rep.Err = fmt.Errorf("unknown scenario %q", name)
		return rep
	}
	start := time.Now()
	r.logger.Info().Str("scenario", name).Msg("scenario started")
	rep.Err = fn(ctx, r, &rep)
	rep.Elapsed = time.Since(start)
	ev := r.logger.Info()
	if rep.Err != nil {
		ev = r.logger.Error().Err(rep.Err)
	}
	ev.Str("scenario", name).Dur("elapsed", rep.Elapsed).Msg("scenario finished")
	return rep
}

// RunAll executes every scenario in order and keeps going after failures.
func (r *Runner) RunAll(ctx context.Context) []Report {
	out := make([]Report, 0, len(scenarios))
	for _, name := range Names() {
		if ctx.Err() != nil {
			break
		}
		out = append(out, r.Run(ctx, name))
	}
	return out
}

// ===== step helpers

// step records a submitted transaction.
func (r *Runner) step(rep *Report, name string, out client.Outcome, err error) error {
	s := Step{
		Name:            name,
		Op:              out.Op,
		Signature:       out.Signature,
		Limit:           out.Plan.Limit,
		UnitsConsumed:   out.UnitsConsumed,
		ExpectedFailure: out.ExpectedFailure,
		Err:             err,
	}
	if out.Hint != nil {
		s.Hint = out.Hint.Key
	}
	rep.Steps = append(rep.Steps, s)

	ev := r.logger.Info()
	if err != nil {
		ev = r.logger.Error().Err(err)
	}
	ev.Str("scenario", rep.Scenario).
		Str("step", name).
		Str("signature", out.Signature.String()).
		Uint32("cu_limit", out.Plan.Limit).
		Uint64("units", out.UnitsConsumed).
		Msg("step")
	return err
}

// check records a verification report and fails on any mismatch.
func (r *Runner) check(rep *Report, vr verify.Report) error {
	rep.Checks = append(rep.Checks, vr)
	return r.c.Verifier().Accept(vr)
}

// landed runs a step, then re-parses its memo from the confirmed
// transaction.
func (r *Runner) landed(ctx context.Context, rep *Report, name string, out client.Outcome, err error, burnUnits uint64, exp memo.Expectation) error {
	if err := r.step(rep, name, out, err); err != nil {
		return err
	}
	if _, _, ok := verify.MemoShape(out.Op); !ok {
		return nil
	}
	_, err = r.c.Verifier().VerifyMemo(ctx, out.Signature, verify.ExpectedMemo{
		Op:         out.Op,
		Sent:       out.Memo,
		BurnAmount: burnUnits,
		Expect:     exp,
	})
	return err
}

// prepareBurner guarantees the burn statistics account and balance that
// burning operations require.
func (r *Runner) prepareBurner(ctx context.Context, rep *Report, tokens uint64) error {
	if err := r.c.CheckBurnStats(ctx); err != nil {
		r.logger.Info().Msg("initializing burn statistics")
		out, err := r.c.InitBurnStats(ctx)
		if err := r.step(rep, "init burn stats", out, err); err != nil {
			return err
		}
	}
	res, err := r.c.EnsureBalance(ctx, constant.Tokens(tokens))
	if err != nil {
		return err
	}
	r.logger.Info().
		Uint64("start_units", res.Start).
		Uint64("end_units", res.End).
		Int("mints", res.Mints).
		Msg("balance ensured")
	return nil
}

// counterReady initializes program's global counter when it is missing.
func (r *Runner) counterReady(ctx context.Context, rep *Report, program solana.PublicKey) error {
	_, err := r.c.Reader().Counter(ctx, program)
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		return err
	}
	out, err := r.c.InitGlobalCounter(ctx, program)
	return r.step(rep, "init global counter", out, err)
}

func strPtr(s string) *string { return &s }

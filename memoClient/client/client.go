// Package client drives the memo program family end to end: payload,
// instruction, ordering, compute budget, submission and run log.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/accounts"
	"github.com/pushchain/memo-clients/memoClient/assembler"
	"github.com/pushchain/memo-clients/memoClient/budget"
	"github.com/pushchain/memo-clients/memoClient/config"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/guardrail"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/pda"
	"github.com/pushchain/memo-clients/memoClient/store"
	"github.com/pushchain/memo-clients/memoClient/submit"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// RunLog persists submissions. *db.DB implements it.
type RunLog interface {
	Record(tx *store.SubmittedTransaction) error
}

// Options wire optional collaborators.
type Options struct {
	Observer submit.Observer
	RunLog   RunLog
	// Now stamps generated memos; defaults to time.Now.
	Now func() time.Time
}

// Client holds one wallet's pipeline against one ledger.
type Client struct {
	cfg      config.Config
	programs config.Programs
	wallet   solana.PrivateKey
	ledger   ledger.Ledger

	deriver   *pda.Deriver
	builder   *instruction.Builder
	assembler *assembler.Assembler
	estimator *budget.Estimator
	submitter *submit.Submitter
	reader    *accounts.Reader
	verifier  *verify.Verifier
	guardrail *guardrail.Guardrail

	runLog RunLog
	now    func() time.Time
	logger zerolog.Logger
}

// New assembles a client.
func New(cfg config.Config, programs config.Programs, wallet solana.PrivateKey, l ledger.Ledger, opts Options, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "client").Str("signer", wallet.PublicKey().String()).Logger()
	deriver := pda.NewDeriver(logger)
	c := &Client{
		cfg:       cfg,
		programs:  programs,
		wallet:    wallet,
		ledger:    l,
		deriver:   deriver,
		builder:   instruction.NewBuilder(programs, deriver),
		assembler: assembler.New(l, wallet, logger),
		estimator: budget.NewEstimator(l, budget.OptionsFromConfig(cfg), logger),
		submitter: submit.New(l, submit.OptionsFromConfig(cfg), opts.Observer, logger),
		reader:    accounts.NewReader(l, deriver, programs, logger),
		verifier:  verify.New(l, l, logger),
		runLog:    opts.RunLog,
		now:       opts.Now,
		logger:    logger,
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.guardrail = guardrail.New(c.reader, c, c.Payer(), guardrail.Options{
		MaxMints:    cfg.GuardrailMaxMints,
		SettleDelay: cfg.ConfirmPollInterval(),
	}, logger)
	return c
}

func (c *Client) Payer() solana.PublicKey { return c.wallet.PublicKey() }
func (c *Client) Programs() config.Programs { return c.programs }
func (c *Client) Builder() *instruction.Builder { return c.builder }
func (c *Client) Assembler() *assembler.Assembler { return c.assembler }
func (c *Client) Estimator() *budget.Estimator { return c.estimator }
func (c *Client) Reader() *accounts.Reader { return c.reader }
func (c *Client) Verifier() *verify.Verifier { return c.verifier }
func (c *Client) Deriver() *pda.Deriver { return c.deriver }
func (c *Client) Ledger() ledger.Ledger { return c.ledger }
func (c *Client) Now() time.Time { return c.now() }
func (c *Client) Guardrail() *guardrail.Guardrail { return c.guardrail }

// Request is one transaction to plan and submit.
type Request struct {
	Op instruction.Op
	// Memo is nil for operations without a memo.
	Memo    memo.MemoBytes
	Program solana.Instruction
	// BurnAmount is recorded in the run log, in units.
	BurnAmount uint64
	// ExpectFailure turns a failing simulation into an outcome instead of
	// an error. Nothing is sent then.
	ExpectFailure bool
}

// Outcome is the result of Execute.
type Outcome struct {
	Op              instruction.Op
	Signature       solana.Signature
	Slot            uint64
	Memo            memo.MemoBytes
	Plan            budget.Plan
	Logs            []string
	UnitsConsumed   uint64
	ExpectedFailure bool
	Hint            *merrors.Hint

	// ID is the record id a create on a counter program allocated, or the
	// id an interaction addressed.
	ID uint64
}

// checkEnvelope rejects a burning request whose memo envelope declares a
// different amount than the instruction burns.
func checkEnvelope(req Request) error {
	def, ok := instruction.DefOf(req.Op)
	if !ok || !def.Burns() {
		return nil
	}
	data, err := req.Program.Data()
	if err != nil {
		return merrors.New(merrors.ErrCodeInternal, string(req.Op), "failed to read instruction data", err)
	}
	amount, err := instruction.BurnAmount(req.Op, data)
	if err != nil {
		return err
	}
	env, err := memo.DecodeBurnMemo(req.Memo)
	if err != nil {
		return err
	}
	return env.Validate(amount)
}

// Execute plans the compute budget for req, then submits it.
func (c *Client) Execute(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Op: req.Op, Memo: req.Memo}

	layout, err := assembler.LayoutFor(req.Op)
	if err != nil {
		return out, err
	}
	if layout.HasMemo() {
		if err := memo.CheckLength(req.Memo); err != nil {
			return out, err
		}
		if err := checkEnvelope(req); err != nil {
			return out, err
		}
	}

	blockhash, err := c.assembler.Blockhash(ctx)
	if err != nil {
		return out, err
	}
	parts := assembler.Parts{Program: req.Program}
	if len(req.Memo) > 0 {
		parts.Memo = c.memoInstruction(req.Op, req.Memo)
	}
	build := func(limit uint32) (*solana.Transaction, error) {
		cu, err := instruction.ComputeUnitLimit(limit)
		if err != nil {
			return nil, err
		}
		p := parts
		p.ComputeBudget = cu
		return c.assembler.Build(req.Op, p, blockhash)
	}

	plan, err := c.estimator.Plan(ctx, req.Op, build, req.ExpectFailure)
	out.Plan = plan
	out.Logs = plan.Logs
	if err != nil {
		c.record(req, out, store.StatusFailed, err)
		return out, err
	}
	if plan.ExpectedFailure {
		out.ExpectedFailure = true
		out.Hint = plan.Hint
		c.record(req, out, store.StatusExpectedFailure, nil)
		return out, nil
	}

	res, err := c.submitter.Submit(ctx, req.Op, plan.Tx)
	out.Signature = res.Signature
	out.Slot = res.Slot
	out.UnitsConsumed = res.UnitsConsumed
	if res.Logs != nil {
		out.Logs = res.Logs
	}
	if err != nil {
		if hint, ok := merrors.HintOf(err); ok {
			out.Hint = &hint
		}
		c.record(req, out, store.StatusFailed, err)
		return out, err
	}
	c.record(req, out, store.StatusConfirmed, nil)
	return out, nil
}

// memoInstruction attaches the payer as memo signer where the SPL memo
// builder of the mint and burn clients does.
func (c *Client) memoInstruction(op instruction.Op, data memo.MemoBytes) solana.Instruction {
	switch op {
	case instruction.OpProcessMint, instruction.OpProcessBurn:
		return instruction.Memo(data, c.Payer())
	}
	return instruction.Memo(data)
}

func (c *Client) record(req Request, out Outcome, status string, err error) {
	if c.runLog == nil {
		return
	}
	entry := &store.SubmittedTransaction{
		Operation:        req.Op.String(),
		Signer:           c.Payer().String(),
		Status:           status,
		Slot:             out.Slot,
		ComputeUnitLimit: out.Plan.Limit,
		UnitsConsumed:    out.UnitsConsumed,
		BurnAmount:       req.BurnAmount,
	}
	if req.Program != nil {
		entry.Program = req.Program.ProgramID().String()
	}
	if !out.Signature.IsZero() {
		entry.Signature = out.Signature.String()
	}
	if err != nil {
		entry.ErrorMsg = err.Error()
	}
	if out.Hint != nil {
		entry.Hint = out.Hint.Key
	}
	if rerr := c.runLog.Record(entry); rerr != nil {
		c.logger.Warn().Err(rerr).Str("op", req.Op.String()).Msg("failed to record submission")
	}
}

// ===== Preconditions

var (
	hintNoSOL = merrors.Hint{Key: "insufficient_funds", Advice: "Insufficient funds: the signer has no SOL for fees"}
	hintNoATA = merrors.Hint{Key: "invalid_token_account", Advice: "No token account: run `memoclient mint` once to create it"}
	hintStats = merrors.Hint{Key: "account_missing", Advice: "Burn statistics not initialized: run `memoclient burn init-stats` first"}
	hintFunds = merrors.Hint{Key: "insufficient_funds", Advice: "Insufficient token balance: mint first or lower the burn"}
)

// CheckFees fails when the signer holds no lamports.
func (c *Client) CheckFees(ctx context.Context) error {
	lamports, err := c.reader.Lamports(ctx, c.Payer())
	if err != nil {
		return err
	}
	if lamports == 0 {
		return merrors.Newf(merrors.ErrCodePrecondition, "precondition", "signer %s has no SOL", c.Payer()).WithHint(hintNoSOL)
	}
	return nil
}

// CheckTokenAccount fails when the signer's token account is missing.
func (c *Client) CheckTokenAccount(ctx context.Context) error {
	ok, err := c.reader.Exists(ctx, c.reader.TokenAccount(c.Payer()))
	if err != nil {
		return err
	}
	if !ok {
		return merrors.Newf(merrors.ErrCodePrecondition, "precondition", "token account %s does not exist", c.reader.TokenAccount(c.Payer())).
			WithHint(hintNoATA)
	}
	return nil
}

// CheckBurnStats fails when the signer's burn statistics PDA is missing.
func (c *Client) CheckBurnStats(ctx context.Context) error {
	stats := c.deriver.UserGlobalBurnStats(c.Payer(), c.programs.Burn).Address
	ok, err := c.reader.Exists(ctx, stats)
	if err != nil {
		return err
	}
	if !ok {
		return merrors.Newf(merrors.ErrCodePrecondition, "precondition", "burn statistics %s not initialized", stats).WithHint(hintStats)
	}
	return nil
}

// CheckBalance fails when the signer holds fewer than units tokens.
func (c *Client) CheckBalance(ctx context.Context, units uint64) error {
	balance, err := c.reader.TokenBalance(ctx, c.Payer())
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return c.CheckTokenAccount(ctx)
	}
	if err != nil {
		return err
	}
	if balance < units {
		return merrors.Newf(merrors.ErrCodePrecondition, "precondition", "balance %d units below the %d required", balance, units).
			WithHint(hintFunds)
	}
	return nil
}

// burnPreconditions runs every check a burning operation needs.
func (c *Client) burnPreconditions(ctx context.Context, op instruction.Op, units uint64) error {
	if err := c.CheckFees(ctx); err != nil {
		return err
	}
	if err := c.CheckBurnStats(ctx); err != nil {
		return err
	}
	if err := instruction.CheckBurn(op, units); err != nil {
		return err
	}
	return c.CheckBalance(ctx, units)
}

// EnsureBalance tops the signer up to units through memo-mint.
func (c *Client) EnsureBalance(ctx context.Context, units uint64) (guardrail.Outcome, error) {
	return c.guardrail.Ensure(ctx, units)
}

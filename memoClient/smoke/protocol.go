package smoke

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/memo-clients/memoClient/assembler"
	"github.com/pushchain/memo-clients/memoClient/budget"
	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// burnMemoScenario feeds the payload validator one broken field at a
// time. It submits nothing.
func burnMemoScenario(_ context.Context, r *Runner, rep *Report) error {
	me := r.c.Payer()
	const groupID = 7
	exp := memo.Expectation{Actor: me, ID: groupID}
	valid := func() *memo.ChatGroupBurn {
		return memo.NewChatGroupBurn(groupID, me.String(), "Burning for the smoke test group")
	}

	wrongCategory := valid()
	wrongCategory.Header.Category = "wrong"
	wrongOperation := valid()
	wrongOperation.Header.Operation = "wrong"
	wrongActor := valid()
	wrongActor.Burner = solana.SystemProgramID.String()
	tooLong := valid()
	tooLong.Message = strings.Repeat("a", memo.MaxChatMessageLen+1)
	wrongVersion := valid()
	wrongVersion.Header.Version = memo.PayloadVersion + 1
	wrongID := valid()
	wrongID.GroupID = groupID + 1

	envelope, err := memo.Envelope(valid(), constant.Tokens(1), exp)
	if err != nil {
		return err
	}
	env, err := memo.DecodeBurnMemo(envelope)
	if err != nil {
		return err
	}
	amountErr := env.Validate(constant.Tokens(2))
	_, oversizeErr := memo.EncodeBurnMemo(constant.Tokens(1), make([]byte, constant.MaxBurnPayloadBytes+1))

	return r.check(rep, verify.Check("burn memo validation",
		verify.Equal("valid payload accepted", nil, valid().Validate(exp)),
		verify.Rejects("category", wrongCategory.Validate(exp), "Invalid category"),
		verify.Rejects("operation", wrongOperation.Validate(exp), "Invalid operation"),
		verify.Rejects("burner", wrongActor.Validate(exp), "pubkey mismatch"),
		verify.Rejects("message length", tooLong.Validate(exp), "Message too long"),
		verify.Rejects("version", wrongVersion.Validate(exp), "Unsupported memo version"),
		verify.Rejects("group id", wrongID.Validate(exp), "ID mismatch"),
		verify.Rejects("envelope amount", amountErr, "Burn amount mismatch"),
		verify.Rejects("payload size", oversizeErr, "Payload too long"),
	))
}

// budgetScenario checks that a blog write lands with the limit derived
// from its own simulation.
func budgetScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	if err := r.prepareBurner(ctx, rep, r.opts.BalanceTokens); err != nil {
		return err
	}

	var (
		out client.Outcome
		err error
	)
	exists, err := c.Reader().Exists(ctx, c.Deriver().Blog(me, c.Programs().Blog).Address)
	if err != nil {
		return err
	}
	if exists {
		out, err = c.UpdateBlog(ctx, client.BlogUpdateParams{Description: strPtr("Compute budget smoke scenario"), BurnTokens: 1})
	} else {
		out, err = c.CreateBlog(ctx, client.BlogParams{Name: "Smoke Test Blog", Description: "Compute budget smoke scenario", BurnTokens: 1})
	}
	if err := r.step(rep, "blog write", out, err); err != nil {
		return err
	}

	want, _ := budget.Limit(out.Plan.Simulated, out.Plan.Margin, 0)
	record, err := c.Ledger().Transaction(ctx, out.Signature)
	if err != nil {
		return err
	}
	landed, found := limitOf(record.Transaction)
	return r.check(rep, verify.Check("compute budget",
		verify.Equal("source", budget.SourceSimulated, out.Plan.Source),
		verify.Equal("planned limit", want, out.Plan.Limit),
		verify.Equal("limit instruction present", true, found),
		verify.Equal("landed limit", want, landed),
		verify.Equal("consumed within limit", true, out.UnitsConsumed <= uint64(out.Plan.Limit)),
	))
}

// limitOf returns the SetComputeUnitLimit value carried by tx.
func limitOf(tx *solana.Transaction) (uint32, bool) {
	if tx == nil {
		return 0, false
	}
	for _, ci := range tx.Message.Instructions {
		program, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil || !program.Equals(solana.ComputeBudget) {
			continue
		}
		// SetComputeUnitLimit: tag 2, u32 LE units.
		if len(ci.Data) == 5 && ci.Data[0] == 2 {
			return binary.LittleEndian.Uint32(ci.Data[1:]), true
		}
	}
	return 0, false
}

// orderingScenario swaps the memo and program instructions of a
// process_mint and expects the program to reject it for a missing memo.
// The broken transaction is only simulated.
func orderingScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	op := instruction.OpProcessMint

	if err := c.CheckTokenAccount(ctx); err != nil {
		out, err := c.Mint(ctx, client.MintParams{})
		if err := r.step(rep, "create token account", out, err); err != nil {
			return err
		}
	}

	blockhash, err := c.Assembler().Blockhash(ctx)
	if err != nil {
		return err
	}
	memoIx := instruction.Memo(memo.ASCIIMemo(constant.MinMemoLength, c.Now()), c.Payer())
	program := c.Builder().ProcessMint(c.Payer())
	var broken *solana.Transaction
	build := func(limit uint32) (*solana.Transaction, error) {
		cu, err := instruction.ComputeUnitLimit(limit)
		if err != nil {
			return nil, err
		}
		tx, err := c.Assembler().Compose([]solana.Instruction{program, memoIx, cu}, blockhash)
		broken = tx
		return tx, err
	}

	plan, err := c.Estimator().Plan(ctx, op, build, true)
	if err != nil {
		return err
	}
	rep.Steps = append(rep.Steps, Step{Name: "swapped memo and program", Op: op, ExpectedFailure: plan.ExpectedFailure, Limit: plan.Limit})
	hint, advice := "", ""
	if plan.Hint != nil {
		hint, advice = plan.Hint.Key, plan.Hint.Advice
		rep.Steps[len(rep.Steps)-1].Hint = hint
		r.logger.Info().Str("hint", hint).Str("advice", plan.Hint.Advice).Msg("classified rejection")
	}
	orderErr := assembler.CheckOrder(op, broken)

	return r.check(rep, verify.Check("ordering breakage",
		verify.Equal("rejected on chain", true, plan.ExpectedFailure),
		verify.Equal("hint", "memo_required", hint),
		verify.Equal("advice names the missing memo", true, strings.HasPrefix(advice, "Missing memo instruction")),
		verify.Rejects("client order check", orderErr, "order"),
	))
}

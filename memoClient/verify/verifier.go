package verify

import (
	"bytes"
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
)

// MemoShape is how op's memo is laid out. raw is set for memo-burn, whose
// envelope payload has no schema header.
func MemoShape(op instruction.Op) (shape memo.Shape, raw bool, ok bool) {
	switch op {
	case instruction.OpProcessMint:
		return memo.ShapeRaw, false, true
	case instruction.OpProcessBurn:
		return memo.ShapeEnvelope, true, true
	case instruction.OpSendMemoToGroup:
		return memo.ShapeBare, false, true
	case instruction.OpCreateBlog, instruction.OpUpdateBlog, instruction.OpBurnForBlog, instruction.OpMintForBlog,
		instruction.OpCreateProfile, instruction.OpUpdateProfile,
		instruction.OpCreatePost, instruction.OpBurnForPost, instruction.OpMintForPost,
		instruction.OpCreateChatGroup, instruction.OpBurnTokensForGroup,
		instruction.OpCreateProject, instruction.OpUpdateProject, instruction.OpBurnForProject:
		return memo.ShapeEnvelope, false, true
	}
	return 0, false, false
}

// ExpectedMemo is what a confirmed transaction's memo must match.
type ExpectedMemo struct {
	Op instruction.Op
	// Sent is the exact memo data submitted.
	Sent memo.MemoBytes
	// BurnAmount is checked against the envelope, when the shape has one.
	BurnAmount uint64
	Expect     memo.Expectation
}

// Verifier checks confirmed state.
type Verifier struct {
	src    ledger.AccountReader
	txs    ledger.TransactionReader
	logger zerolog.Logger
}

// New creates a verifier.
func New(src ledger.AccountReader, txs ledger.TransactionReader, logger zerolog.Logger) *Verifier {
	return &Verifier{src: src, txs: txs, logger: logger.With().Str("component", "verifier").Logger()}
}

// Absent asserts address holds no account, as after a close.
func (v *Verifier) Absent(ctx context.Context, subject string, address solana.PublicKey) error {
	_, err := v.src.AccountData(ctx, address)
	switch {
	case merrors.Is(err, ledger.ErrAccountNotFound):
		v.logger.Info().Str("subject", subject).Str("address", address.String()).Msg("account absent as expected")
		return nil
	case err != nil:
		return err
	}
	return merrors.Newf(merrors.ErrCodeVerification, subject, "account %s still exists", address)
}

// Accept logs a report and returns its error.
func (v *Verifier) Accept(r Report) error {
	if r.OK() {
		v.logger.Info().Str("subject", r.Subject).Int("assertions", len(r.Assertions)).Msg("post-conditions hold")
		return nil
	}
	v.logger.Error().Str("subject", r.Subject).Msg(r.Diff())
	return r.Err()
}

// VerifyMemo fetches sig, locates its memo instruction and checks that it
// is the memo that was sent and that it still decodes and validates.
func (v *Verifier) VerifyMemo(ctx context.Context, sig solana.Signature, expected ExpectedMemo) (memo.Decoded, error) {
	op := expected.Op.String()
	shape, raw, ok := MemoShape(expected.Op)
	if !ok {
		return memo.Decoded{}, merrors.Newf(merrors.ErrCodeInternal, op, "operation carries no memo")
	}

	rec, err := v.txs.Transaction(ctx, sig)
	if err != nil {
		return memo.Decoded{}, err
	}
	if rec.Transaction == nil {
		return memo.Decoded{}, merrors.Newf(merrors.ErrCodeVerification, op, "transaction %s has no body", sig)
	}
	data, err := memoData(rec.Transaction)
	if err != nil {
		return memo.Decoded{}, merrors.WrapClientError(err, merrors.ErrCodeVerification, op, "memo not found in transaction")
	}

	if len(expected.Sent) > 0 && !bytes.Equal(data, expected.Sent) {
		return memo.Decoded{}, merrors.Newf(merrors.ErrCodeVerification, op, "on-chain memo differs from the submitted one").
			WithContext("sent", expected.Sent.String()).
			WithContext("landed", string(data))
	}

	decoded, err := memo.DecodeMemo(data, shape, raw)
	if err != nil {
		return decoded, merrors.New(merrors.ErrCodeVerification, op, "landed memo does not decode", err)
	}
	if decoded.Envelope != nil {
		if err := decoded.Envelope.Validate(expected.BurnAmount); err != nil {
			return decoded, merrors.New(merrors.ErrCodeVerification, op, "landed burn envelope does not match", err)
		}
	}
	if decoded.Payload != nil {
		if err := decoded.Payload.Validate(expected.Expect); err != nil {
			return decoded, merrors.New(merrors.ErrCodeVerification, op, "landed payload does not validate", err)
		}
	}

	v.logger.Info().Str("op", op).Str("signature", sig.String()).Str("shape", shape.String()).Msg("memo verified")
	return decoded, nil
}

func memoData(tx *solana.Transaction) ([]byte, error) {
	for _, ci := range tx.Message.Instructions {
		program, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		if program.Equals(solana.MemoProgramID) {
			return ci.Data, nil
		}
	}
	return nil, merrors.Newf(merrors.ErrCodeVerification, "verify.memo", "no memo instruction")
}

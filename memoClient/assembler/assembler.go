package assembler

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
)

// Assembler builds signed transactions paid for by one wallet.
type Assembler struct {
	blockhash ledger.Blockhasher
	wallet    solana.PrivateKey
	logger    zerolog.Logger
}

// New creates an assembler signing with wallet.
func New(blockhash ledger.Blockhasher, wallet solana.PrivateKey, logger zerolog.Logger) *Assembler {
	return &Assembler{
		blockhash: blockhash,
		wallet:    wallet,
		logger:    logger.With().Str("component", "assembler").Logger(),
	}
}

// Payer is the fee payer and sole signer.
func (a *Assembler) Payer() solana.PublicKey { return a.wallet.PublicKey() }

// Blockhash fetches a recent blockhash.
func (a *Assembler) Blockhash(ctx context.Context) (solana.Hash, error) {
	hash, err := a.blockhash.LatestBlockhash(ctx)
	if err != nil {
		return solana.Hash{}, merrors.WrapClientError(err, merrors.ErrCodeRPC, "get_latest_blockhash", "failed to get recent blockhash")
	}
	return hash, nil
}

// Build arranges parts per op's layout and signs.
func (a *Assembler) Build(op instruction.Op, parts Parts, blockhash solana.Hash) (*solana.Transaction, error) {
	instrs, err := Arrange(op, parts)
	if err != nil {
		return nil, err
	}
	tx, err := a.Compose(instrs, blockhash)
	if err != nil {
		return nil, merrors.WrapClientError(err, merrors.ErrCodeInternal, op.String(), "failed to build transaction")
	}
	return tx, nil
}

// Assemble fetches a blockhash and builds op's transaction.
func (a *Assembler) Assemble(ctx context.Context, op instruction.Op, parts Parts) (*solana.Transaction, error) {
	hash, err := a.Blockhash(ctx)
	if err != nil {
		return nil, err
	}
	return a.Build(op, parts, hash)
}

// Compose signs instrs as given, with no ordering checks. Used to build
// deliberately misordered transactions.
func (a *Assembler) Compose(instrs []solana.Instruction, blockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instrs, blockhash, solana.TransactionPayer(a.Payer()))
	if err != nil {
		return nil, merrors.Wrap(err, "failed to create transaction")
	}

	payer := a.Payer()
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &a.wallet
		}
		return nil
	})
	if err != nil {
		return nil, merrors.Wrap(err, "failed to sign transaction")
	}

	a.logger.Debug().
		Int("instructions", len(instrs)).
		Str("blockhash", blockhash.String()).
		Msg("transaction assembled")
	return tx, nil
}

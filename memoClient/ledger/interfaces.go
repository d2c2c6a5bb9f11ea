package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks github.com/pushchain/memo-clients/memoClient/ledger Ledger

// Blockhasher supplies recent blockhashes for transaction assembly.
type Blockhasher interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Simulator runs transactions without landing them.
type Simulator interface {
	Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
}

// Sender submits transactions and reports their status.
type Sender interface {
	Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus returns nil, nil while the cluster has not seen sig.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
}

// AccountReader reads raw account state.
type AccountReader interface {
	// AccountData returns ErrAccountNotFound when the account is absent.
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	// Balance returns the account's lamports.
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// TransactionReader fetches confirmed transactions.
type TransactionReader interface {
	Transaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error)
}

// Ledger is everything the operation pipeline needs from an RPC node.
type Ledger interface {
	Blockhasher
	Simulator
	Sender
	AccountReader
	TransactionReader
	Health(ctx context.Context) error
}

package ledger

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned by AccountData when the account does not
// exist.
var ErrAccountNotFound = errors.New("account not found")

// SimulationResult is the outcome of a transaction simulation.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed *uint64
}

// Failed reports whether the simulated transaction returned an error.
func (r *SimulationResult) Failed() bool { return r != nil && r.Err != nil }

// SignatureStatus is the cluster's view of a submitted signature.
type SignatureStatus struct {
	Slot   uint64
	Err    interface{}
	Status rpc.ConfirmationStatusType
}

// Landed reports whether the signature reached confirmed or finalized.
func (s *SignatureStatus) Landed() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true
	}
	return false
}

// TransactionRecord is a confirmed transaction fetched back from the ledger.
type TransactionRecord struct {
	Slot          uint64
	Transaction   *solana.Transaction
	Logs          []string
	Err           interface{}
	UnitsConsumed *uint64
}

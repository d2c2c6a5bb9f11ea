package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/ledger/mocks"
)

// ===== Constants & helpers

var testSig = solana.SignatureFromBytes(append(make([]byte, 63), 7))

type recorder struct {
	mu        sync.Mutex
	submitted int
	confirmed int
	failed    []string
}

func (r *recorder) Submitted(instruction.Op) { r.mu.Lock(); r.submitted++; r.mu.Unlock() }
func (r *recorder) Confirmed(instruction.Op, uint64, time.Duration) {
	r.mu.Lock()
	r.confirmed++
	r.mu.Unlock()
}
func (r *recorder) Failed(_ instruction.Op, hint string) {
	r.mu.Lock()
	r.failed = append(r.failed, hint)
	r.mu.Unlock()
}

func fastOptions() Options {
	retry := merrors.NewRetryConfig(3, time.Millisecond)
	retry.MaxDelay = 2 * time.Millisecond
	return Options{ConfirmTimeout: 200 * time.Millisecond, PollInterval: time.Millisecond, Retry: retry}
}

func newTestSubmitter(t *testing.T, opts Options) (*Submitter, *mocks.MockLedger, *recorder) {
	t.Helper()
	l := mocks.NewMockLedger(gomock.NewController(t))
	rec := &recorder{}
	return New(l, opts, rec, zerolog.Nop()), l, rec
}

func u64(v uint64) *uint64 { return &v }

// ===== Tests

func TestSubmitConfirms(t *testing.T) {
	s, l, rec := newTestSubmitter(t, fastOptions())
	tx := &solana.Transaction{}

	gomock.InOrder(
		l.EXPECT().Send(gomock.Any(), tx).Return(testSig, nil),
		l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(nil, nil),
		l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(&ledger.SignatureStatus{Slot: 5, Status: rpc.ConfirmationStatusProcessed}, nil),
		l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(&ledger.SignatureStatus{Slot: 6, Status: rpc.ConfirmationStatusConfirmed}, nil),
		l.EXPECT().Transaction(gomock.Any(), testSig).Return(&ledger.TransactionRecord{Slot: 6, Logs: []string{"Program log: done"}, UnitsConsumed: u64(12_345)}, nil),
	)

	res, err := s.Submit(context.Background(), instruction.OpProcessMint, tx)
	require.NoError(t, err)
	assert.Equal(t, testSig, res.Signature)
	assert.Equal(t, uint64(6), res.Slot)
	assert.Equal(t, uint64(12_345), res.UnitsConsumed)
	assert.Equal(t, []string{"Program log: done"}, res.Logs)
	assert.Equal(t, 1, rec.submitted)
	assert.Equal(t, 1, rec.confirmed)
	assert.Empty(t, rec.failed)
}

func TestSubmitFinalizedCounts(t *testing.T) {
	s, l, _ := newTestSubmitter(t, fastOptions())
	l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(testSig, nil)
	l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(&ledger.SignatureStatus{Slot: 9, Status: rpc.ConfirmationStatusFinalized}, nil)
	l.EXPECT().Transaction(gomock.Any(), testSig).Return(nil, errors.New("not yet indexed"))

	res, err := s.Submit(context.Background(), instruction.OpProcessBurn, &solana.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), res.Slot)
	assert.Nil(t, res.Logs)
}

func TestSubmitOnChainFailure(t *testing.T) {
	s, l, rec := newTestSubmitter(t, fastOptions())
	onChain := map[string]interface{}{"InstructionError": []interface{}{1, map[string]interface{}{"Custom": 6001}}}

	l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(testSig, nil)
	l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(&ledger.SignatureStatus{Slot: 3, Err: onChain, Status: rpc.ConfirmationStatusConfirmed}, nil)
	l.EXPECT().Transaction(gomock.Any(), testSig).Return(&ledger.TransactionRecord{
		Logs: []string{"Program log: AnchorError occurred. Error Code: PubkeyMismatch. Error Number: 6001."},
	}, nil)

	_, err := s.Submit(context.Background(), instruction.OpCreateBlog, &solana.Transaction{})
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeSubmission))
	hint, ok := merrors.HintOf(err)
	require.True(t, ok)
	assert.Equal(t, "actor_mismatch", hint.Key)
	assert.Equal(t, []string{"actor_mismatch"}, rec.failed)
}

func TestSubmitPreflightRejection(t *testing.T) {
	s, l, rec := newTestSubmitter(t, fastOptions())
	l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(solana.Signature{}, &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 1: custom program error: 0x1770",
		Data:    map[string]interface{}{"logs": []interface{}{"Program log: Error Code: MemoTooShort"}},
	}).Times(1)

	_, err := s.Submit(context.Background(), instruction.OpProcessMint, &solana.Transaction{})
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeSubmission))
	hint, ok := merrors.HintOf(err)
	require.True(t, ok)
	assert.Equal(t, "memo_too_short", hint.Key)
	assert.Equal(t, 0, rec.submitted)
	assert.Len(t, rec.failed, 1)
}

func TestSubmitRetriesTransportErrors(t *testing.T) {
	s, l, _ := newTestSubmitter(t, fastOptions())
	transport := merrors.Newf(merrors.ErrCodeRPC, "send_transaction", "failed after trying 1 endpoints")

	gomock.InOrder(
		l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(solana.Signature{}, transport),
		l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(testSig, nil),
	)
	l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(&ledger.SignatureStatus{Status: rpc.ConfirmationStatusConfirmed}, nil)
	l.EXPECT().Transaction(gomock.Any(), testSig).Return(&ledger.TransactionRecord{}, nil)

	_, err := s.Submit(context.Background(), instruction.OpProcessMint, &solana.Transaction{})
	require.NoError(t, err)
}

func TestSubmitTimesOut(t *testing.T) {
	opts := fastOptions()
	opts.ConfirmTimeout = 20 * time.Millisecond
	s, l, rec := newTestSubmitter(t, opts)

	l.EXPECT().Send(gomock.Any(), gomock.Any()).Return(testSig, nil)
	l.EXPECT().SignatureStatus(gomock.Any(), testSig).Return(nil, nil).AnyTimes()

	_, err := s.Submit(context.Background(), instruction.OpCreatePost, &solana.Transaction{})
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeTimeout))
	assert.Contains(t, err.Error(), testSig.String())
	assert.Equal(t, []string{"unknown"}, rec.failed)
}

func TestConfirmHonoursCancellation(t *testing.T) {
	s, l, _ := newTestSubmitter(t, fastOptions())
	ctx, cancel := context.WithCancel(context.Background())
	l.EXPECT().SignatureStatus(gomock.Any(), testSig).DoAndReturn(
		func(context.Context, solana.Signature) (*ledger.SignatureStatus, error) {
			cancel()
			return nil, nil
		})

	_, err := s.Confirm(ctx, instruction.OpProcessMint, testSig)
	assert.ErrorIs(t, err, context.Canceled)
}

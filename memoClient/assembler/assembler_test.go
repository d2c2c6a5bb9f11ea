package assembler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/memo-clients/memoClient/config"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger/mocks"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/pda"
)

// ===== Constants & helpers

var (
	testTime      = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	testBlockhash = solana.MustHashFromBase58("4sGjMW1sUnHzSxGspuhpqLDx6wiyjNtZAMdL4VZHirAn")
	testPrograms  = config.Programs{
		Mint:    solana.MustPublicKeyFromBase58("A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy"),
		Burn:    solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP"),
		Profile: solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US"),
		Blog:    solana.MustPublicKeyFromBase58("HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB"),
		Forum:   solana.MustPublicKeyFromBase58("GGBTvBRDFuyKSuFGjJgTEkuGHRqKr6Kz6T6ZzwM6Ya1U"),
		Chat:    solana.MustPublicKeyFromBase58("54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBWF"),
		Project: solana.MustPublicKeyFromBase58("ENVapgjzzMjbRhLJ279yNsSgaQtDYYVgWq98j54yYnyx"),
		Token:   solana.MustPublicKeyFromBase58("HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1"),
	}
)

type fixture struct {
	wallet    solana.PrivateKey
	builder   *instruction.Builder
	assembler *Assembler
	ledger    *mocks.MockLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	wallet, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	l := mocks.NewMockLedger(ctrl)
	return &fixture{
		wallet:    wallet,
		builder:   instruction.NewBuilder(testPrograms, pda.NewDeriver(zerolog.Nop())),
		assembler: New(l, wallet, zerolog.Nop()),
		ledger:    l,
	}
}

func (f *fixture) memoIx(t *testing.T) solana.Instruction {
	t.Helper()
	return instruction.Memo(memo.ASCIIMemo(69, testTime))
}

func cuIx(t *testing.T) solana.Instruction {
	t.Helper()
	ix, err := instruction.ComputeUnitLimit(200_000)
	require.NoError(t, err)
	return ix
}

func programsOf(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	out := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ci := range tx.Message.Instructions {
		p, err := tx.Message.Program(ci.ProgramIDIndex)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

// ===== Ordering table

func TestEveryOpHasALayout(t *testing.T) {
	for _, op := range instruction.Ops() {
		_, err := LayoutFor(op)
		assert.NoError(t, err, op)
	}
	_, err := LayoutFor(instruction.OpCreateTokenAccount)
	assert.NoError(t, err)

	_, err = LayoutFor("no_such_op")
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeInternal))
}

func TestLayoutTable(t *testing.T) {
	tests := []struct {
		op   instruction.Op
		want Layout
	}{
		{instruction.OpProcessMint, OrderALayout},
		{instruction.OpProcessBurn, OrderALayout},
		{instruction.OpUpdateProfile, OrderALayout},
		{instruction.OpSendMemoToGroup, OrderALayout},
		{instruction.OpCreateProfile, OrderBLayout},
		{instruction.OpDeleteProfile, BareLayout},
		{instruction.OpInitializeUserGlobalBurnStats, BareLayout},
		{instruction.OpClearBurnLeaderboard, BareLayout},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := LayoutFor(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ===== Building

func TestBuildOrderA(t *testing.T) {
	f := newFixture(t)
	parts := Parts{Memo: f.memoIx(t), Program: f.builder.ProcessMint(f.assembler.Payer()), ComputeBudget: cuIx(t)}

	tx, err := f.assembler.Build(instruction.OpProcessMint, parts, testBlockhash)
	require.NoError(t, err)

	assert.Equal(t, []solana.PublicKey{solana.MemoProgramID, testPrograms.Mint, solana.ComputeBudget}, programsOf(t, tx))
	assert.Equal(t, testBlockhash, tx.Message.RecentBlockhash)
	assert.Equal(t, f.wallet.PublicKey(), tx.Message.AccountKeys[0])
	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
	require.NoError(t, CheckOrder(instruction.OpProcessMint, tx))
}

func TestBuildOrderB(t *testing.T) {
	f := newFixture(t)
	parts := Parts{Memo: f.memoIx(t), Program: f.builder.CreateProfile(f.assembler.Payer(), 420_000_000), ComputeBudget: cuIx(t)}

	tx, err := f.assembler.Build(instruction.OpCreateProfile, parts, testBlockhash)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{solana.ComputeBudget, solana.MemoProgramID, testPrograms.Profile}, programsOf(t, tx))
	require.NoError(t, CheckOrder(instruction.OpCreateProfile, tx))

	// The same transaction is out of order for update.
	err = CheckOrder(instruction.OpUpdateProfile, tx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[compute_budget, memo, program] does not match order_a [memo, program, compute_budget]")
}

func TestBuildBare(t *testing.T) {
	f := newFixture(t)
	parts := Parts{Program: f.builder.DeleteProfile(f.assembler.Payer()), ComputeBudget: cuIx(t)}

	tx, err := f.assembler.Build(instruction.OpDeleteProfile, parts, testBlockhash)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{solana.ComputeBudget, testPrograms.Profile}, programsOf(t, tx))

	parts.Memo = f.memoIx(t)
	_, err = f.assembler.Build(instruction.OpDeleteProfile, parts, testBlockhash)
	assert.Error(t, err)
}

func TestBuildRequiresMemo(t *testing.T) {
	f := newFixture(t)
	parts := Parts{Program: f.builder.ProcessMint(f.assembler.Payer()), ComputeBudget: cuIx(t)}

	_, err := f.assembler.Build(instruction.OpProcessMint, parts, testBlockhash)
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeValidation))
	assert.Contains(t, err.Error(), "Missing memo")
}

func TestComposeKeepsGivenOrder(t *testing.T) {
	f := newFixture(t)
	memoIx := f.memoIx(t)
	program := f.builder.ProcessBurn(f.assembler.Payer(), 1_000_000)

	tx, err := f.assembler.Compose([]solana.Instruction{program, memoIx, cuIx(t)}, testBlockhash)
	require.NoError(t, err)
	slots, err := SlotsOf(tx)
	require.NoError(t, err)
	assert.Equal(t, []Slot{SlotProgram, SlotMemo, SlotComputeBudget}, slots)
	assert.Error(t, CheckOrder(instruction.OpProcessBurn, tx))
}

func TestAssembleFetchesBlockhash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parts := Parts{Program: f.builder.InitializeUserGlobalBurnStats(f.assembler.Payer()), ComputeBudget: cuIx(t)}

	f.ledger.EXPECT().LatestBlockhash(gomock.Any()).Return(testBlockhash, nil)
	tx, err := f.assembler.Assemble(ctx, instruction.OpInitializeUserGlobalBurnStats, parts)
	require.NoError(t, err)
	assert.Equal(t, testBlockhash, tx.Message.RecentBlockhash)

	f.ledger.EXPECT().LatestBlockhash(gomock.Any()).Return(solana.Hash{}, errors.New("connection refused"))
	_, err = f.assembler.Assemble(ctx, instruction.OpInitializeUserGlobalBurnStats, parts)
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeRPC))
}

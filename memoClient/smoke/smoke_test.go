package smoke

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/config"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/ledger/mocks"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// ===== Constants & helpers

var (
	testPrograms = config.Programs{
		Mint:    solana.MustPublicKeyFromBase58("A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy"),
		Burn:    solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP"),
		Profile: solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US"),
		Blog:    solana.MustPublicKeyFromBase58("HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB"),
		Forum:   solana.MustPublicKeyFromBase58("GGBTvBRDFuyKSuFGjJgTEkuGHRqKr6Kz6T6ZzwM6Ya1U"),
		Chat:    solana.MustPublicKeyFromBase58("54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBWF"),
		Project: solana.MustPublicKeyFromBase58("ENVapgjzzMjbRhLJ279yNsSgaQtDYYVgWq98j54yYnyx"),
		Token:   solana.MustPublicKeyFromBase58("HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1"),
	}
	testHash = solana.HashFromBytes(append(make([]byte, 31), 1))
)

func newTestRunner(t *testing.T) (*Runner, *client.Client, *mocks.MockLedger) {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	l := mocks.NewMockLedger(gomock.NewController(t))
	cfg := config.Config{
		ComputeUnitMargin:     1.10,
		ConfirmTimeoutSeconds: 1,
		ConfirmPollIntervalMs: 1,
		MaxRetries:            1,
		RetryBackoffMs:        1,
		GuardrailMaxMints:     5,
	}
	c := client.New(cfg, testPrograms, key, l, client.Options{}, zerolog.Nop())
	return New(c, Options{}, zerolog.Nop()), c, l
}

func tokenAccountData(units uint64) []byte {
	data := make([]byte, 165)
	binary.LittleEndian.PutUint64(data[64:], units)
	return data
}

// ===== Runner

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.Len(t, names, len(scenarios))
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "burn-memo")
	assert.Contains(t, names, "ordering")
}

func TestNewAppliesDefaults(t *testing.T) {
	r, _, _ := newTestRunner(t)
	assert.Equal(t, uint64(constant.DefaultSmokeBalanceTokens), r.opts.BalanceTokens)
	assert.Equal(t, uint64(constant.DefaultChatSmokeBurnTokens), r.opts.ChatBurnTokens)
}

func TestRunUnknownScenario(t *testing.T) {
	r, _, _ := newTestRunner(t)
	rep := r.Run(context.Background(), "nope")
	require.Error(t, rep.Err)
	assert.False(t, rep.OK())
	assert.Contains(t, rep.Err.Error(), "unknown scenario")
}

func TestReportSummary(t *testing.T) {
	tests := []struct {
		name string
		rep  Report
		want []string
	}{
		{
			name: "pass",
			rep:  Report{Scenario: "blog", Steps: make([]Step, 3), Checks: []verify.Report{verify.Check("blog")}, Elapsed: 1500 * time.Millisecond},
			want: []string{"PASS", "blog", "steps=3", "checks=1", "failed=0", "1.5s"},
		},
		{
			name: "fail counts mismatches",
			rep: Report{
				Scenario: "chat",
				Checks:   []verify.Report{verify.Check("group", verify.Equal("memo_count", 2, 1), verify.Equal("name", "a", "a"))},
				Err:      errors.New("post-condition failed"),
			},
			want: []string{"FAIL", "chat", "failed=1"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.rep.Summary()
			for _, w := range tc.want {
				assert.Contains(t, s, w)
			}
		})
	}
}

// ===== Scenarios

func TestBurnMemoScenarioOffline(t *testing.T) {
	// No ledger expectations: the scenario must not touch the cluster.
	r, _, _ := newTestRunner(t)
	rep := r.Run(context.Background(), "burn-memo")
	require.NoError(t, rep.Err)
	require.Len(t, rep.Checks, 1)
	assert.Empty(t, rep.Checks[0].Failed())
	assert.Len(t, rep.Checks[0].Assertions, 9)
}

func TestOrderingScenarioExpectsMemoRequired(t *testing.T) {
	r, c, l := newTestRunner(t)
	ata := c.Reader().TokenAccount(c.Payer())

	l.EXPECT().AccountData(gomock.Any(), ata).Return(tokenAccountData(constant.Tokens(1)), nil)
	l.EXPECT().LatestBlockhash(gomock.Any()).Return(testHash, nil)
	l.EXPECT().Simulate(gomock.Any(), gomock.Any()).Return(&ledger.SimulationResult{
		Err:  map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 6000}}},
		Logs: []string{"Program log: AnchorError occurred. Error Code: MemoRequired. Error Number: 6000."},
	}, nil)

	rep := r.Run(context.Background(), "ordering")
	require.NoError(t, rep.Err)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, instruction.OpProcessMint, rep.Steps[0].Op)
	assert.True(t, rep.Steps[0].ExpectedFailure)
	assert.Equal(t, "memo_required", rep.Steps[0].Hint)
}

func TestOrderingScenarioFailsWhenAccepted(t *testing.T) {
	r, c, l := newTestRunner(t)
	ata := c.Reader().TokenAccount(c.Payer())
	units := uint64(30_000)

	l.EXPECT().AccountData(gomock.Any(), ata).Return(tokenAccountData(0), nil)
	l.EXPECT().LatestBlockhash(gomock.Any()).Return(testHash, nil)
	l.EXPECT().Simulate(gomock.Any(), gomock.Any()).Return(&ledger.SimulationResult{UnitsConsumed: &units}, nil)

	rep := r.Run(context.Background(), "ordering")
	require.Error(t, rep.Err)
	require.Len(t, rep.Checks, 1)
	assert.False(t, rep.Checks[0].OK())
}

func TestLimitOf(t *testing.T) {
	_, c, _ := newTestRunner(t)
	cu, err := instruction.ComputeUnitLimit(55_000)
	require.NoError(t, err)
	memoIx := instruction.Memo([]byte("smoke"), c.Payer())

	tx, err := c.Assembler().Compose([]solana.Instruction{memoIx, cu}, testHash)
	require.NoError(t, err)
	got, ok := limitOf(tx)
	require.True(t, ok)
	assert.Equal(t, uint32(55_000), got)

	bare, err := c.Assembler().Compose([]solana.Instruction{memoIx}, testHash)
	require.NoError(t, err)
	_, ok = limitOf(bare)
	assert.False(t, ok)

	_, ok = limitOf(nil)
	assert.False(t, ok)
}

package instruction

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/memo-clients/memoClient/config"
	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/pda"
)

// ===== Constants & helpers

var (
	testUser  = solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")
	testOther = solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP")

	testPrograms = config.Programs{
		Mint:    solana.MustPublicKeyFromBase58("A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy"),
		Burn:    solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaQ"),
		Profile: solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8UT"),
		Blog:    solana.MustPublicKeyFromBase58("HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB"),
		Forum:   solana.MustPublicKeyFromBase58("GGBTvBRDFuyKSuFGjJgTEkuGHRqKr6Kz6T6ZzwM6Ya1U"),
		Chat:    solana.MustPublicKeyFromBase58("54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBWF"),
		Project: solana.MustPublicKeyFromBase58("ENVapgjzzMjbRhLJ279yNsSgaQtDYYVgWq98j54yYnyx"),
		Token:   solana.MustPublicKeyFromBase58("HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1"),
	}
)

func newTestBuilder(t *testing.T) (*Builder, *pda.Deriver) {
	t.Helper()
	d := pda.NewDeriver(zerolog.Nop())
	return NewBuilder(testPrograms, d), d
}

type meta struct {
	key      solana.PublicKey
	writable bool
	signer   bool
}

func metasOf(t *testing.T, ix solana.Instruction) []meta {
	t.Helper()
	out := make([]meta, 0, len(ix.Accounts()))
	for _, a := range ix.Accounts() {
		out = append(out, meta{a.PublicKey, a.IsWritable, a.IsSigner})
	}
	return out
}

func dataOf(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

// ===== Discriminators

func TestDiscriminatorKnownValues(t *testing.T) {
	assert.Equal(t, [8]byte{220, 214, 24, 210, 116, 16, 167, 18}, Discriminator("process_burn"))
	assert.Equal(t, [8]byte{200, 231, 6, 155, 161, 236, 10, 151}, Discriminator("initialize_user_global_burn_stats"))
	assert.Equal(t, [8]byte{223, 152, 48, 109, 252, 238, 111, 136}, Discriminator("process_mint"))
}

func TestEncodeArgs(t *testing.T) {
	data := encode(OpCreatePost, 7, constant.Tokens(5))
	require.Len(t, data, 24)

	d, args, err := DecodeArgs(data)
	require.NoError(t, err)
	assert.Equal(t, Discriminator("create_post"), d)
	assert.Equal(t, []uint64{7, constant.Tokens(5)}, args)

	assert.Panics(t, func() { encode(OpCreatePost, 7) })

	_, _, err = DecodeArgs([]byte{1, 2, 3})
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeValidation))
}

func TestOpsCoverDefs(t *testing.T) {
	ops := Ops()
	assert.Len(t, ops, len(defs)-1)
	assert.NotContains(t, ops, OpCreateTokenAccount)
	for _, op := range ops {
		s, ok := DefOf(op)
		require.True(t, ok, op)
		if s.Burns() {
			assert.Equal(t, "amount", trimPrefix(s.Args[len(s.Args)-1]), op)
		}
	}
}

func trimPrefix(arg string) string {
	if len(arg) > 5 && arg[:5] == "burn_" {
		return arg[5:]
	}
	return arg
}

// ===== Account orders

func TestProcessMintAccounts(t *testing.T) {
	b, d := newTestBuilder(t)
	ix := b.ProcessMint(testUser)

	assert.Equal(t, testPrograms.Mint, ix.ProgramID())
	assert.Equal(t, []meta{
		{testUser, true, true},
		{testPrograms.Token, true, false},
		{d.MintAuthority(testPrograms.Mint).Address, false, false},
		{d.AssociatedTokenAccount(testUser, testPrograms.Token).Address, true, false},
		{solana.Token2022ProgramID, false, false},
		{solana.SysVarInstructionsPubkey, false, false},
	}, metasOf(t, ix))
	assert.Equal(t, []byte{223, 152, 48, 109, 252, 238, 111, 136}, dataOf(t, ix))
}

func TestProcessBurnAccounts(t *testing.T) {
	b, d := newTestBuilder(t)
	ix := b.ProcessBurn(testUser, constant.Tokens(2))

	assert.Equal(t, []meta{
		{testUser, true, true},
		{testPrograms.Token, true, false},
		{d.AssociatedTokenAccount(testUser, testPrograms.Token).Address, true, false},
		{d.UserGlobalBurnStats(testUser, testPrograms.Burn).Address, true, false},
		{solana.Token2022ProgramID, false, false},
		{solana.SysVarInstructionsPubkey, false, false},
	}, metasOf(t, ix))

	amount, err := BurnAmount(OpProcessBurn, dataOf(t, ix))
	require.NoError(t, err)
	assert.Equal(t, constant.Tokens(2), amount)
}

func TestUpdateProfileAccountOrder(t *testing.T) {
	b, d := newTestBuilder(t)
	ix := b.UpdateProfile(testUser, constant.Tokens(420))
	got := metasOf(t, ix)

	require.Len(t, got, 8)
	assert.Equal(t, testPrograms.Token, got[1].key)
	assert.Equal(t, d.AssociatedTokenAccount(testUser, testPrograms.Token).Address, got[2].key)
	assert.Equal(t, d.Profile(testUser, testPrograms.Profile).Address, got[3].key)
	assert.Equal(t, solana.SysVarInstructionsPubkey, got[6].key)
	assert.Equal(t, testPrograms.Burn, got[7].key)
}

func TestBlogTargetsOwnerBlog(t *testing.T) {
	b, d := newTestBuilder(t)
	blog := d.Blog(testOther, testPrograms.Blog).Address

	burn := metasOf(t, b.BurnForBlog(testUser, testOther, constant.Tokens(1)))
	assert.Equal(t, blog, burn[1].key)
	assert.Equal(t, d.UserGlobalBurnStats(testUser, testPrograms.Burn).Address, burn[4].key)

	mint := metasOf(t, b.MintForBlog(testUser, testOther))
	assert.Equal(t, blog, mint[1].key)
	assert.Equal(t, meta{testPrograms.Mint, false, false}, mint[6])
}

func TestCounterAccountsUseTargetProgram(t *testing.T) {
	b, d := newTestBuilder(t)

	post := metasOf(t, b.CreatePost(testUser, 3, constant.Tokens(1)))
	assert.Equal(t, d.GlobalCounter(testPrograms.Forum).Address, post[1].key)
	assert.Equal(t, d.Post(3, testPrograms.Forum).Address, post[2].key)

	group := metasOf(t, b.CreateChatGroup(testUser, 4, constant.Tokens(42_069)))
	require.Len(t, group, 11)
	assert.Equal(t, d.ChatGroup(4, testPrograms.Chat).Address, group[2].key)
	assert.Equal(t, d.BurnLeaderboard(testPrograms.Chat).Address, group[3].key)

	project := metasOf(t, b.CreateProject(testUser, 5, constant.Tokens(42_069)))
	assert.Equal(t, d.GlobalCounter(testPrograms.Project).Address, project[1].key)
	assert.Equal(t, d.BurnLeaderboard(testPrograms.Project).Address, project[3].key)

	init := b.InitializeGlobalCounter(testUser, testPrograms.Chat)
	assert.Equal(t, testPrograms.Chat, init.ProgramID())
	assert.Equal(t, d.GlobalCounter(testPrograms.Chat).Address, metasOf(t, init)[1].key)

	clearIx := b.ClearBurnLeaderboard(testUser, testPrograms.Project)
	assert.Len(t, metasOf(t, clearIx), 2)
}

func TestCreateTokenAccount(t *testing.T) {
	b, _ := newTestBuilder(t)
	ix := b.CreateTokenAccount(testUser, testOther)

	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())
	assert.Equal(t, []byte{1}, dataOf(t, ix))
	got := metasOf(t, ix)
	assert.Equal(t, meta{testUser, true, true}, got[0])
	assert.Equal(t, b.TokenAccount(testOther), got[1].key)
	assert.Equal(t, solana.Token2022ProgramID, got[5].key)
}

// ===== Burn amounts

func TestBurnAmountMatchesArgument(t *testing.T) {
	b, _ := newTestBuilder(t)
	amount := constant.Tokens(42_069)

	tests := []struct {
		op Op
		ix solana.Instruction
	}{
		{OpCreateBlog, b.CreateBlog(testUser, amount)},
		{OpUpdateBlog, b.UpdateBlog(testUser, amount)},
		{OpBurnForBlog, b.BurnForBlog(testUser, testUser, amount)},
		{OpCreateProfile, b.CreateProfile(testUser, amount)},
		{OpUpdateProfile, b.UpdateProfile(testUser, amount)},
		{OpCreatePost, b.CreatePost(testUser, 1, amount)},
		{OpBurnForPost, b.BurnForPost(testUser, 1, amount)},
		{OpCreateChatGroup, b.CreateChatGroup(testUser, 1, amount)},
		{OpBurnTokensForGroup, b.BurnTokensForGroup(testUser, 1, amount)},
		{OpCreateProject, b.CreateProject(testUser, 1, amount)},
		{OpUpdateProject, b.UpdateProject(testUser, 1, amount)},
		{OpBurnForProject, b.BurnForProject(testUser, 1, amount)},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := BurnAmount(tt.op, dataOf(t, tt.ix))
			require.NoError(t, err)
			assert.Equal(t, amount, got)
			require.NoError(t, CheckBurn(tt.op, got))
		})
	}

	_, err := BurnAmount(OpMintForPost, dataOf(t, b.MintForPost(testUser, 1)))
	assert.Error(t, err)
	_, err = BurnAmount(OpBurnForPost, dataOf(t, b.CreatePost(testUser, 1, amount)))
	assert.Error(t, err)
}

func TestCheckBurn(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		amount  uint64
		wantErr string
	}{
		{name: "profile minimum", op: OpCreateProfile, amount: constant.Tokens(420)},
		{name: "profile below minimum", op: OpCreateProfile, amount: constant.Tokens(419), wantErr: "Burn amount too small"},
		{name: "fractional token", op: OpBurnForBlog, amount: constant.Tokens(1) + 1, wantErr: "Invalid burn amount"},
		{name: "per-tx ceiling", op: OpProcessBurn, amount: constant.Tokens(constant.MaxBurnPerTx)},
		{name: "over per-tx ceiling", op: OpProcessBurn, amount: constant.Tokens(constant.MaxBurnPerTx + 1), wantErr: "Burn amount too large"},
		{name: "chat create minimum", op: OpCreateChatGroup, amount: constant.Tokens(42_068), wantErr: "Burn amount too small"},
		{name: "non-burning op", op: OpMintForBlog, amount: constant.Tokens(1), wantErr: "does not burn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBurn(tt.op, tt.amount)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ===== Memo and compute budget

func TestMemoInstruction(t *testing.T) {
	data := memo.MemoBytes("hello memo")

	plain := Memo(data)
	assert.Equal(t, solana.MemoProgramID, plain.ProgramID())
	assert.Empty(t, plain.Accounts())
	assert.Equal(t, []byte("hello memo"), dataOf(t, plain))

	signed := Memo(data, testUser)
	assert.Equal(t, []meta{{testUser, false, true}}, metasOf(t, signed))
}

func TestComputeUnitLimit(t *testing.T) {
	ix, err := ComputeUnitLimit(300_000)
	require.NoError(t, err)
	assert.Equal(t, solana.ComputeBudget, ix.ProgramID())
	data := dataOf(t, ix)
	assert.Equal(t, []byte{2, 0xe0, 0x93, 0x04, 0x00}, data)

	_, err = ComputeUnitLimit(0)
	assert.Error(t, err)
}

package pda

import (
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Constants & helpers

var (
	testProgram = solana.MustPublicKeyFromBase58("HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB")
	testBurn    = solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP")
	testUser    = solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")
	testMint    = solana.MustPublicKeyFromBase58("HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1")
)

func newTestDeriver(t *testing.T) *Deriver {
	t.Helper()
	return NewDeriver(zerolog.Nop())
}

// ===== Tests

func TestDeriveDeterministic(t *testing.T) {
	d := newTestDeriver(t)
	seeds := [][]byte{SeedBlog, testUser.Bytes()}

	first, err := d.Derive(seeds, testProgram)
	require.NoError(t, err)
	second, err := d.Derive(seeds, testProgram)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.Len())

	fresh, err := NewDeriver(zerolog.Nop()).Derive(seeds, testProgram)
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestDeriveMatchesProgramAddress(t *testing.T) {
	d := newTestDeriver(t)
	p := d.Blog(testUser, testProgram)

	addr, err := solana.CreateProgramAddress([][]byte{SeedBlog, testUser.Bytes(), {p.Bump}}, testProgram)
	require.NoError(t, err)
	assert.Equal(t, addr, p.Address)
	assert.False(t, solana.IsOnCurve(p.Address.Bytes()))

	// Every bump above the returned one yields an on-curve point.
	for b := 255; b > int(p.Bump); b-- {
		_, err := solana.CreateProgramAddress([][]byte{SeedBlog, testUser.Bytes(), {byte(b)}}, testProgram)
		assert.Error(t, err)
	}
}

func TestNamedDerivations(t *testing.T) {
	d := newTestDeriver(t)

	tests := []struct {
		name    string
		got     PDA
		seeds   [][]byte
		program solana.PublicKey
	}{
		{"mint authority", d.MintAuthority(testProgram), [][]byte{[]byte("mint_authority")}, testProgram},
		{"user global burn stats", d.UserGlobalBurnStats(testUser, testBurn), [][]byte{[]byte("user_global_burn_stats"), testUser.Bytes()}, testBurn},
		{"global counter", d.GlobalCounter(testProgram), [][]byte{[]byte("global_counter")}, testProgram},
		{"chat group", d.ChatGroup(7, testProgram), [][]byte{[]byte("chat_group"), {7, 0, 0, 0, 0, 0, 0, 0}}, testProgram},
		{"project", d.Project(258, testProgram), [][]byte{[]byte("project"), {2, 1, 0, 0, 0, 0, 0, 0}}, testProgram},
		{"post", d.Post(0, testProgram), [][]byte{[]byte("post"), make([]byte, 8)}, testProgram},
		{"blog", d.Blog(testUser, testProgram), [][]byte{[]byte("blog"), testUser.Bytes()}, testProgram},
		{"profile", d.Profile(testUser, testProgram), [][]byte{[]byte("profile"), testUser.Bytes()}, testProgram},
		{"burn leaderboard", d.BurnLeaderboard(testProgram), [][]byte{[]byte("burn_leaderboard")}, testProgram},
		{
			"associated token account",
			d.AssociatedTokenAccount(testUser, testMint),
			[][]byte{testUser.Bytes(), solana.Token2022ProgramID.Bytes(), testMint.Bytes()},
			solana.SPLAssociatedTokenAccountProgramID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, bump, err := solana.FindProgramAddress(tt.seeds, tt.program)
			require.NoError(t, err)
			assert.Equal(t, addr, tt.got.Address)
			assert.Equal(t, bump, tt.got.Bump)
		})
	}
}

func TestDistinctInputsDistinctAddresses(t *testing.T) {
	d := newTestDeriver(t)
	assert.NotEqual(t, d.ChatGroup(1, testProgram).Address, d.ChatGroup(2, testProgram).Address)
	assert.NotEqual(t, d.Project(1, testProgram).Address, d.Post(1, testProgram).Address)
	assert.NotEqual(t, d.GlobalCounter(testProgram).Address, d.GlobalCounter(testBurn).Address)
}

func TestSeedHashBoundaries(t *testing.T) {
	a := hashSeeds([][]byte{[]byte("ab"), []byte("c")})
	b := hashSeeds([][]byte{[]byte("a"), []byte("bc")})
	assert.NotEqual(t, a, b)
}

func TestU64Seed(t *testing.T) {
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, U64Seed(0x0102030405060708))
}

func TestConcurrentDerivations(t *testing.T) {
	d := newTestDeriver(t)
	var wg sync.WaitGroup
	results := make([]PDA, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.UserGlobalBurnStats(testUser, testBurn)
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, 1, d.Len())
}

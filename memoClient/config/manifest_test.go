package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// ===== Constants & helpers

const (
	testProfileID = "BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US"
	testBurnID    = "FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP"
	testBlogID    = "HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB"
	testChatID    = "54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBRF"
	testMintID    = "A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy"
	testTokenID   = "HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1"
	testMainToken = "memoX1sJsBY6od7CfQ58XooRALwnocAZen4L7mW1ick"
)

const testManifest = `
[provider]
cluster = "https://rpc.example.test"
wallet = "~/keys/id.json"
program_env = "%s"

[programs.testnet]
memo_mint = "` + testMintID + `"
memo-burn = "` + testBurnID + `"
memo_profile = "` + testProfileID + `"
memo_blog = "` + testBlogID + `"
memo_forum = "` + testBlogID + `"
memo_chat = "` + testChatID + `"
memo_project = "` + testChatID + `"

[programs.mainnet]
memo_mint = "` + testMintID + `"

[tokens.testnet]
memo_token = "` + testTokenID + `"

[tokens.mainnet]
memo-token = "` + testMainToken + `"
`

func writeManifest(t *testing.T, dir, env string) string {
	t.Helper()
	path := filepath.Join(dir, "Anchor.toml")
	content := []byte(fmt.Sprintf(testManifest, env))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func noEnv(string) string { return "" }

// ===== Tests

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "testnet")
	nested := filepath.Join(root, "clients", "smoke", "src")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	t.Run("found walking up", func(t *testing.T) {
		path, err := FindManifest(nested, 5)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "Anchor.toml"), path)
	})

	t.Run("depth bound respected", func(t *testing.T) {
		_, err := FindManifest(nested, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found within 2 levels")
	})
}

func TestManifestLookups(t *testing.T) {
	dir := t.TempDir()
	m := LoadManifest(writeManifest(t, dir, "testnet"), zerolog.Nop()).WithEnv(noEnv)
	require.NoError(t, m.Err())

	assert.Equal(t, "https://rpc.example.test", m.Endpoint())
	assert.Equal(t, "testnet", m.ProgramEnv())
	assert.NotContains(t, m.WalletPath(), "~")
	assert.Contains(t, m.WalletPath(), filepath.Join("keys", "id.json"))

	t.Run("dash and underscore forms", func(t *testing.T) {
		a, err := m.ProgramID("memo_burn")
		require.NoError(t, err)
		b, err := m.ProgramID("memo-burn")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, testBurnID, a.String())
	})

	t.Run("missing program names name and env", func(t *testing.T) {
		_, err := m.ProgramID("memo_unknown")
		require.Error(t, err)
		assert.True(t, merrors.IsCode(err, merrors.ErrCodeConfig))
		assert.Contains(t, err.Error(), "memo_unknown")
		assert.Contains(t, err.Error(), "testnet")
	})

	t.Run("token mint", func(t *testing.T) {
		mint, err := m.TokenMint("memo-token")
		require.NoError(t, err)
		assert.Equal(t, testTokenID, mint.String())
	})

	t.Run("all programs", func(t *testing.T) {
		all, err := m.AllProgramIDs()
		require.NoError(t, err)
		assert.Len(t, all, 7)
		assert.Contains(t, all, "memo_burn")
		assert.Equal(t, "memo_blog", m.ProgramNames()[0])
	})

	t.Run("typed programs", func(t *testing.T) {
		p, err := m.Programs()
		require.NoError(t, err)
		assert.Equal(t, testProfileID, p.Profile.String())
		assert.Equal(t, testTokenID, p.Token.String())
	})
}

func TestManifestEnvironments(t *testing.T) {
	t.Run("mainnet selects mainnet tables", func(t *testing.T) {
		m := LoadManifest(writeManifest(t, t.TempDir(), "mainnet"), zerolog.Nop()).WithEnv(noEnv)
		assert.Equal(t, "mainnet", m.ProgramEnv())

		mint, err := m.TokenMint("memo_token")
		require.NoError(t, err)
		assert.Equal(t, testMainToken, mint.String())

		_, err = m.Programs()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memo_burn")
	})

	t.Run("unknown env falls back to testnet", func(t *testing.T) {
		m := LoadManifest(writeManifest(t, t.TempDir(), "devnet"), zerolog.Nop()).WithEnv(noEnv)
		assert.Equal(t, "testnet", m.ProgramEnv())
	})
}

func TestManifestFallbacks(t *testing.T) {
	m := LoadManifest(filepath.Join(t.TempDir(), "Anchor.toml"), zerolog.Nop()).WithEnv(noEnv)
	require.Error(t, m.Err())

	assert.Equal(t, "https://rpc.testnet.x1.xyz", m.Endpoint())
	assert.Contains(t, m.WalletPath(), filepath.Join(".config", "solana", "id.json"))
	assert.Equal(t, "testnet", m.ProgramEnv())

	_, err := m.ProgramID("memo_mint")
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeConfig))
}

func TestManifestEnvOverrides(t *testing.T) {
	m := LoadManifest(writeManifest(t, t.TempDir(), "testnet"), zerolog.Nop()).
		WithEnv(func(k string) string {
			switch k {
			case "RPC_URL":
				return "http://localhost:8899"
			case "WALLET_PATH":
				return "/opt/wallet.json"
			}
			return ""
		})

	assert.Equal(t, "http://localhost:8899", m.Endpoint())
	assert.Equal(t, "/opt/wallet.json", m.WalletPath())
}

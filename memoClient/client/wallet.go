package client

import (
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/gagliardetto/solana-go"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// LoadWallet reads a Solana keypair file: a JSON array of the 64 secret
// key bytes.
func LoadWallet(path string) (solana.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, merrors.New(merrors.ErrCodePrecondition, "wallet", "failed to read wallet file "+path, err).
			WithHint(merrors.Hint{Key: "wallet_missing", Advice: "Set WALLET_PATH or provider.wallet in Anchor.toml to a solana-keygen keypair file"})
	}

	var keyBytes []byte
	if err := json.Unmarshal(keyData, &keyBytes); err != nil {
		return nil, merrors.New(merrors.ErrCodePrecondition, "wallet", "failed to parse wallet file as JSON array", err)
	}

	// 32-byte seed followed by the 32-byte public key.
	if len(keyBytes) != 64 {
		return nil, merrors.Newf(merrors.ErrCodePrecondition, "wallet", "invalid key length: expected 64 bytes, got %d", len(keyBytes))
	}
	key := solana.PrivateKey(ed25519.NewKeyFromSeed(keyBytes[:32]))
	if !key.PublicKey().Equals(solana.PublicKeyFromBytes(keyBytes[32:])) {
		return nil, merrors.Newf(merrors.ErrCodePrecondition, "wallet", "wallet file public key does not match its secret key")
	}
	return key, nil
}

package accounts

import (
	"encoding/binary"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// SPL token layouts, shared by Token and Token-2022 base state.
const (
	mintSupplyOffset   = 36
	tokenAmountOffset  = 64
	tokenAccountMinLen = 165
	mintMinLen         = 82
)

// MintSupply reads the supply field of an SPL mint.
func MintSupply(data []byte) (uint64, error) {
	if len(data) < mintMinLen {
		return 0, merrors.Newf(merrors.ErrCodeVerification, "accounts.mint_supply",
			"mint account too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[mintSupplyOffset:]), nil
}

// TokenAmount reads the amount field of an SPL token account.
func TokenAmount(data []byte) (uint64, error) {
	if len(data) < tokenAccountMinLen {
		return 0, merrors.Newf(merrors.ErrCodeVerification, "accounts.token_amount",
			"token account too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[tokenAmountOffset:]), nil
}

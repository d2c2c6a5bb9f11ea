package memo

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	bin "github.com/gagliardetto/binary"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// BurnMemoVersion is the envelope version the burning programs accept.
const BurnMemoVersion uint8 = 1

// MemoBytes is the memo instruction data: ASCII text, base64 for structured
// memos.
type MemoBytes []byte

func (m MemoBytes) String() string { return string(m) }

// BurnMemo wraps an operation payload for programs that burn tokens. The
// encoded envelope is u8 version, u64 LE amount, u32 LE length, payload.
type BurnMemo struct {
	Version    uint8
	BurnAmount uint64
	Payload    []byte
}

// Validate checks the envelope against the burn argument of the instruction
// it travels with.
func (b BurnMemo) Validate(expectedAmount uint64) error {
	if b.Version != BurnMemoVersion {
		return invalid("Unsupported memo version %d (expected %d)", b.Version, BurnMemoVersion)
	}
	if b.BurnAmount != expectedAmount {
		return invalid("Burn amount mismatch: memo declares %d units, instruction burns %d", b.BurnAmount, expectedAmount)
	}
	if len(b.Payload) > constant.MaxBurnPayloadBytes {
		return invalid("Payload too long: %d bytes (max %d)", len(b.Payload), constant.MaxBurnPayloadBytes)
	}
	return nil
}

// CheckLength enforces the memo size window shared by every program.
func CheckLength(memo []byte) error {
	n := len(memo)
	if n < constant.MinMemoLength {
		return invalid("Memo too short: %d bytes (min %d)", n, constant.MinMemoLength)
	}
	if n > constant.MaxMemoLength {
		return invalid("Memo too long: %d bytes (max %d)", n, constant.MaxMemoLength)
	}
	return nil
}

// EncodeBurnMemo wraps an already encoded payload in a version 1 envelope
// and base64 encodes it.
func EncodeBurnMemo(amount uint64, payload []byte) (MemoBytes, error) {
	env := BurnMemo{Version: BurnMemoVersion, BurnAmount: amount, Payload: payload}
	if err := env.Validate(amount); err != nil {
		return nil, err
	}
	raw, err := bin.MarshalBorsh(env)
	if err != nil {
		return nil, merrors.New(merrors.ErrCodeInternal, "memo.encode", "failed to encode burn memo", err)
	}
	return toMemo(raw)
}

// DecodeBurnMemo reverses EncodeBurnMemo. It does not validate the version
// or amount; call Validate for that.
func DecodeBurnMemo(memo []byte) (BurnMemo, error) {
	raw, err := fromMemo(memo)
	if err != nil {
		return BurnMemo{}, err
	}
	var env BurnMemo
	if err := bin.UnmarshalBorsh(&env, raw); err != nil {
		return BurnMemo{}, invalid("Invalid memo format: %v", err)
	}
	return env, nil
}

// EncodePayload returns the Borsh encoding of p, without base64.
func EncodePayload(p Payload) ([]byte, error) {
	raw, err := bin.MarshalBorsh(p)
	if err != nil {
		return nil, merrors.New(merrors.ErrCodeInternal, "memo.encode", fmt.Sprintf("failed to encode %s/%s payload", p.Category(), p.Operation()), err)
	}
	return raw, nil
}

// Envelope validates p, wraps it in a burn envelope declaring amount and
// returns the memo bytes.
func Envelope(p Payload, amount uint64, expected Expectation) (MemoBytes, error) {
	if err := p.Validate(expected); err != nil {
		return nil, err
	}
	raw, err := EncodePayload(p)
	if err != nil {
		return nil, err
	}
	return EncodeBurnMemo(amount, raw)
}

// Bare validates p and returns its base64 encoding with no envelope.
func Bare(p Payload, expected Expectation) (MemoBytes, error) {
	if err := p.Validate(expected); err != nil {
		return nil, err
	}
	raw, err := EncodePayload(p)
	if err != nil {
		return nil, err
	}
	return toMemo(raw)
}

// EncodeRaw returns text as plain memo bytes, as memo-mint expects.
func EncodeRaw(text string) (MemoBytes, error) {
	for i := 0; i < len(text); i++ {
		if text[i] < 0x20 || text[i] > 0x7e {
			return nil, invalid("Invalid memo format: byte %d (0x%02x) is not printable ASCII", i, text[i])
		}
	}
	memo := MemoBytes(text)
	if err := CheckLength(memo); err != nil {
		return nil, err
	}
	return memo, nil
}

const asciiAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ASCIIMemo returns an n byte memo made of a timestamped prefix padded
// with random letters. Prefixes longer than n are truncated.
func ASCIIMemo(n int, at time.Time) MemoBytes {
	prefix := "SMOKE_TEST_" + at.UTC().Format("20060102_150405") + "_"
	if len(prefix) >= n {
		return MemoBytes(prefix[:n])
	}
	out := make([]byte, n)
	copy(out, prefix)
	for i := len(prefix); i < n; i++ {
		out[i] = asciiAlphabet[rand.Intn(len(asciiAlphabet))]
	}
	return out
}

func toMemo(raw []byte) (MemoBytes, error) {
	memo := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(memo, raw)
	if err := CheckLength(memo); err != nil {
		return nil, err
	}
	return memo, nil
}

func fromMemo(memo []byte) ([]byte, error) {
	if err := CheckLength(memo); err != nil {
		return nil, err
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(memo)))
	n, err := base64.StdEncoding.Decode(raw, memo)
	if err != nil {
		return nil, invalid("Invalid memo format: not base64: %v", err)
	}
	if n > constant.MaxMemoLength {
		return nil, invalid("Invalid memo format: decoded memo is %d bytes (max %d)", n, constant.MaxMemoLength)
	}
	return raw[:n], nil
}

package memo

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// ===== Constants & helpers

var (
	testSigner = solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")
	otherKey   = solana.MustPublicKeyFromBase58("FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP")
	testTime   = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func requireValidation(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeValidation), "unexpected code for %v", err)
	if contains != "" {
		assert.Contains(t, err.Error(), contains)
	}
}

func decodeRaw(t *testing.T, memo MemoBytes) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(string(memo))
	require.NoError(t, err)
	return raw
}

// ===== Envelope

func TestEncodeBurnMemoLayout(t *testing.T) {
	payload := []byte(strings.Repeat("p", 60))
	memo, err := EncodeBurnMemo(constant.Tokens(3), payload)
	require.NoError(t, err)

	raw := decodeRaw(t, memo)
	require.Len(t, raw, constant.BurnMemoOverhead+len(payload))
	assert.Equal(t, BurnMemoVersion, raw[0])
	assert.Equal(t, constant.Tokens(3), binary.LittleEndian.Uint64(raw[1:9]))
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(raw[9:13]))
	assert.Equal(t, payload, raw[13:])

	env, err := DecodeBurnMemo(memo)
	require.NoError(t, err)
	assert.Equal(t, BurnMemo{Version: 1, BurnAmount: constant.Tokens(3), Payload: payload}, env)
	require.NoError(t, env.Validate(constant.Tokens(3)))
}

func TestBurnMemoSizeWindow(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		wantErr    string
	}{
		{name: "smallest payload that reaches 69 bytes", payloadLen: 39},
		{name: "one byte short of the minimum", payloadLen: 38, wantErr: "Memo too short"},
		{name: "largest payload within 800 base64 bytes", payloadLen: 587},
		{name: "one byte over the base64 ceiling", payloadLen: 588, wantErr: "Memo too long"},
		{name: "at the envelope payload ceiling", payloadLen: constant.MaxBurnPayloadBytes, wantErr: "Memo too long"},
		{name: "over the envelope payload ceiling", payloadLen: constant.MaxBurnPayloadBytes + 1, wantErr: "Payload too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memo, err := EncodeBurnMemo(constant.Tokens(1), make([]byte, tt.payloadLen))
			if tt.wantErr != "" {
				requireValidation(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(memo), constant.MinMemoLength)
			assert.LessOrEqual(t, len(memo), constant.MaxMemoLength)
		})
	}
}

func TestBurnMemoValidate(t *testing.T) {
	good := BurnMemo{Version: 1, BurnAmount: 5, Payload: []byte("x")}
	require.NoError(t, good.Validate(5))

	wrongVersion := good
	wrongVersion.Version = 2
	requireValidation(t, wrongVersion.Validate(5), "Unsupported memo version")

	requireValidation(t, good.Validate(6), "Burn amount mismatch")

	tooLong := good
	tooLong.Payload = make([]byte, constant.MaxBurnPayloadBytes+1)
	requireValidation(t, tooLong.Validate(5), "Payload too long")
}

func TestDecodeBurnMemoRejectsGarbage(t *testing.T) {
	_, err := DecodeBurnMemo([]byte(strings.Repeat("!", 80)))
	requireValidation(t, err, "Invalid memo format")

	_, err = DecodeBurnMemo([]byte("short"))
	requireValidation(t, err, "Memo too short")
}

// ===== Raw memos

func TestASCIIMemo(t *testing.T) {
	memo := ASCIIMemo(constant.MinMemoLength, testTime)
	require.Len(t, memo, constant.MinMemoLength)
	assert.True(t, strings.HasPrefix(memo.String(), "SMOKE_TEST_20250314_150926_"))

	_, err := EncodeRaw(memo.String())
	require.NoError(t, err)

	short := ASCIIMemo(10, testTime)
	assert.Equal(t, "SMOKE_TEST", short.String())
}

func TestEncodeRaw(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{name: "minimum", text: strings.Repeat("a", constant.MinMemoLength)},
		{name: "maximum", text: strings.Repeat("a", constant.MaxMemoLength)},
		{name: "too short", text: strings.Repeat("a", constant.MinMemoLength-1), wantErr: "Memo too short"},
		{name: "too long", text: strings.Repeat("a", constant.MaxMemoLength+1), wantErr: "Memo too long"},
		{name: "control byte", text: strings.Repeat("a", 70) + "\n", wantErr: "Invalid memo format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memo, err := EncodeRaw(tt.text)
			if tt.wantErr != "" {
				requireValidation(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.text, memo.String())
		})
	}
}

// ===== Patch

func TestPatchWireFormat(t *testing.T) {
	user := testSigner.String()
	encode := func(p Patch[string]) []byte {
		raw, err := EncodePayload(NewProfileUpdate(user, nil, nil, p))
		require.NoError(t, err)
		return raw
	}

	keep := encode(Keep[string]())
	cleared := encode(Clear[string]())
	set := encode(Set("hi"))

	// username and image are absent (0, 0); the about_me patch follows.
	prefixLen := len(keep) - 1
	assert.Equal(t, []byte{0}, keep[prefixLen:])
	assert.Equal(t, []byte{1, 0}, cleared[prefixLen:])
	assert.Equal(t, []byte{1, 1, 2, 0, 0, 0, 'h', 'i'}, set[prefixLen:])

	for _, p := range []Patch[string]{Keep[string](), Clear[string](), Set("hi")} {
		decoded, err := DecodePayload(encode(p))
		require.NoError(t, err)
		assert.Equal(t, p, decoded.(*ProfileUpdate).AboutMe, p.String())
	}
}

func TestPatchAccessors(t *testing.T) {
	assert.True(t, Keep[string]().IsKeep())
	assert.True(t, Clear[string]().IsClear())
	v, ok := Set("x").Value()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = Clear[string]().Value()
	assert.False(t, ok)
}

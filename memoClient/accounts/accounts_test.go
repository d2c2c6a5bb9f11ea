package accounts

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/memo-clients/memoClient/config"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/ledger/mocks"
	"github.com/pushchain/memo-clients/memoClient/pda"
)

// ===== Constants & helpers

var (
	testUser     = solana.MustPublicKeyFromBase58("BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US")
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
)

func strPtr(s string) *string { return &s }

// accountData encodes v the way Anchor stores it, with padding appended.
func accountData(t *testing.T, name string, v interface{}, padding int) []byte {
	t.Helper()
	body, err := bin.MarshalBorsh(v)
	require.NoError(t, err)
	disc := instruction.AccountDiscriminator(name)
	out := append(disc[:], body...)
	return append(out, make([]byte, padding)...)
}

// rawAccount writes an account body field by field in stored order, so the
// bytes do not depend on the Go struct being decoded.
func rawAccount(t *testing.T, name string, padding int, write func(enc *bin.Encoder) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	disc := instruction.AccountDiscriminator(name)
	buf.Write(disc[:])
	require.NoError(t, write(bin.NewBorshEncoder(&buf)))
	buf.Write(make([]byte, padding))
	return buf.Bytes()
}

func newTestReader(t *testing.T) (*Reader, *mocks.MockLedger, *pda.Deriver) {
	t.Helper()
	l := mocks.NewMockLedger(gomock.NewController(t))
	d := pda.NewDeriver(zerolog.Nop())
	return NewReader(l, d, testPrograms, zerolog.Nop()), l, d
}

// ===== Decoding

func TestDecodeBlogToleratesPadding(t *testing.T) {
	want := Blog{
		Creator:      testUser,
		CreatedAt:    1_700_000_000,
		LastUpdated:  1_700_000_100,
		Name:         "Smoke Test Blog",
		Description:  "A comprehensive test blog",
		Image:        "https://example.com/blog-cover.png",
		MemoCount:    2,
		BurnedAmount: 3_000_000,
		MintedAmount: 5_000_000,
		LastMemoTime: 1_700_000_200,
		Bump:         254,
	}
	data := accountData(t, "Blog", want, 128)

	var got Blog
	require.NoError(t, DecodeChecked(data, &got))
	assert.Equal(t, want, got)
}

func TestDecodeProfileOptionals(t *testing.T) {
	tests := []struct {
		name    string
		aboutMe *string
	}{
		{name: "about me absent"},
		{name: "about me present", aboutMe: strPtr("Smoke test profile")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := Profile{User: testUser, Username: "SmokeTestUser", Image: "c:32x32:test_image_data",
				CreatedAt: 10, LastUpdated: 11, AboutMe: tt.aboutMe, Bump: 255}
			var got Profile
			require.NoError(t, DecodeChecked(accountData(t, "Profile", want, 16), &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeStoredFieldOrder(t *testing.T) {
	t.Run("profile", func(t *testing.T) {
		data := rawAccount(t, "Profile", 64, func(enc *bin.Encoder) error {
			for _, err := range []error{
				enc.WriteBytes(testUser[:], false),
				enc.WriteString("SmokeTestUser"),
				enc.WriteString("c:32x32:test_image_data"),
				enc.WriteInt64(1_700_000_000, bin.LE),
				enc.WriteInt64(1_700_000_100, bin.LE),
				enc.WriteOption(true),
				enc.WriteString("about"),
				enc.WriteUint8(253),
			} {
				if err != nil {
					return err
				}
			}
			return nil
		})
		var got Profile
		require.NoError(t, DecodeChecked(data, &got))
		assert.Equal(t, Profile{User: testUser, Username: "SmokeTestUser", Image: "c:32x32:test_image_data",
			CreatedAt: 1_700_000_000, LastUpdated: 1_700_000_100, AboutMe: strPtr("about"), Bump: 253}, got)
	})

	t.Run("blog", func(t *testing.T) {
		data := rawAccount(t, "Blog", 64, func(enc *bin.Encoder) error {
			for _, err := range []error{
				enc.WriteBytes(testUser[:], false),
				enc.WriteInt64(1_700_000_000, bin.LE),
				enc.WriteInt64(1_700_000_100, bin.LE),
				enc.WriteString("Smoke Test Blog"),
				enc.WriteString("desc"),
				enc.WriteString("img"),
				enc.WriteUint64(2, bin.LE),
				enc.WriteUint64(3_000_000, bin.LE),
				enc.WriteUint64(7_000_000, bin.LE),
				enc.WriteInt64(1_700_000_500, bin.LE),
				enc.WriteUint8(254),
			} {
				if err != nil {
					return err
				}
			}
			return nil
		})
		var got Blog
		require.NoError(t, DecodeChecked(data, &got))
		assert.Equal(t, uint64(3_000_000), got.BurnedAmount)
		assert.Equal(t, uint64(7_000_000), got.MintedAmount)
		assert.Equal(t, int64(1_700_000_500), got.LastMemoTime)
		assert.Equal(t, uint8(254), got.Bump)
	})

	t.Run("project", func(t *testing.T) {
		data := rawAccount(t, "Project", 32, func(enc *bin.Encoder) error {
			for _, err := range []error{
				enc.WriteUint64(4, bin.LE),
				enc.WriteBytes(testUser[:], false),
				enc.WriteInt64(1_700_000_000, bin.LE),
				enc.WriteInt64(1_700_000_100, bin.LE),
				enc.WriteUint64(9, bin.LE),
				enc.WriteUint64(42_069_000_000, bin.LE),
				enc.WriteInt64(1_700_000_200, bin.LE),
				enc.WriteUint8(251),
				enc.WriteString("Smoke Test Project"),
				enc.WriteString("desc"),
				enc.WriteString("img"),
				enc.WriteString("https://p.io"),
				enc.WriteLength(1),
				enc.WriteString("smoke"),
			} {
				if err != nil {
					return err
				}
			}
			return nil
		})
		var got Project
		require.NoError(t, DecodeChecked(data, &got))
		assert.Equal(t, Project{ProjectID: 4, Creator: testUser, CreatedAt: 1_700_000_000, LastUpdated: 1_700_000_100,
			MemoCount: 9, BurnedAmount: 42_069_000_000, LastMemoTime: 1_700_000_200, Bump: 251,
			Name: "Smoke Test Project", Description: "desc", Image: "img", Website: "https://p.io", Tags: []string{"smoke"}}, got)
	})
}

func TestDecodeChatGroupAndProject(t *testing.T) {
	group := ChatGroup{GroupID: 7, Creator: testUser, CreatedAt: 1, Name: "g", Description: "d",
		Tags: []string{"a", "b"}, MemoCount: 3, BurnedAmount: 42_069_000_000, MinMemoInterval: 60, LastMemoTime: 5, Bump: 250}
	var gotGroup ChatGroup
	require.NoError(t, DecodeChecked(accountData(t, "ChatGroup", group, 0), &gotGroup))
	assert.Equal(t, group, gotGroup)

	project := Project{ProjectID: 2, Creator: testUser, Name: "p", Website: "https://p.io", Tags: []string{"x"}, BurnedAmount: 1}
	var gotProject Project
	require.NoError(t, DecodeChecked(accountData(t, "Project", project, 32), &gotProject))
	assert.Equal(t, project, gotProject)
}

func TestDecodeCounterAndLeaderboard(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 41)
	disc := instruction.AccountDiscriminator("GlobalPostCounter")
	counter := NewGlobalCounter("GlobalPostCounter")
	require.NoError(t, DecodeChecked(append(disc[:], raw...), counter))
	assert.Equal(t, uint64(41), counter.Total)

	board := BurnLeaderboard{Entries: []LeaderboardEntry{{ID: 1, BurnedAmount: 10}, {ID: 4, BurnedAmount: 99}}}
	var got BurnLeaderboard
	require.NoError(t, DecodeChecked(accountData(t, "BurnLeaderboard", board, 64), &got))
	entry, ok := got.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, uint64(99), entry.BurnedAmount)
	_, ok = got.Lookup(5)
	assert.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		err := Decode([]byte{1, 2, 3}, &Blog{})
		assert.True(t, merrors.IsCode(err, merrors.ErrCodeVerification))
	})
	t.Run("wrong discriminator", func(t *testing.T) {
		data := accountData(t, "Post", Post{PostID: 1}, 0)
		err := DecodeChecked(data, &Blog{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a Blog")
	})
	t.Run("truncated body", func(t *testing.T) {
		data := accountData(t, "Blog", Blog{Name: "name"}, 0)
		err := Decode(data[:len(data)-20], &Blog{})
		assert.True(t, merrors.IsCode(err, merrors.ErrCodeVerification))
	})
}

func TestSPLFields(t *testing.T) {
	mint := make([]byte, 82)
	binary.LittleEndian.PutUint64(mint[36:], 123_456)
	supply, err := MintSupply(mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456), supply)

	token := make([]byte, 170)
	binary.LittleEndian.PutUint64(token[64:], 9_000_000)
	amount, err := TokenAmount(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_000_000), amount)

	_, err = MintSupply(mint[:40])
	assert.Error(t, err)
	_, err = TokenAmount(token[:100])
	assert.Error(t, err)
}

// ===== Reader

func TestReaderBlog(t *testing.T) {
	r, l, d := newTestReader(t)
	want := Blog{Creator: testUser, Name: "n", BurnedAmount: 1_000_000}
	l.EXPECT().AccountData(gomock.Any(), d.Blog(testUser, testPrograms.Blog).Address).
		Return(accountData(t, "Blog", want, 8), nil)

	got, err := r.Blog(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestReaderCounterNames(t *testing.T) {
	r, l, d := newTestReader(t)
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 3)
	disc := instruction.AccountDiscriminator("GlobalGroupCounter")
	l.EXPECT().AccountData(gomock.Any(), d.GlobalCounter(testPrograms.Chat).Address).
		Return(append(disc[:], raw...), nil)

	c, err := r.Counter(context.Background(), testPrograms.Chat)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), c.Total)

	_, err = r.Counter(context.Background(), testPrograms.Blog)
	assert.True(t, merrors.IsCode(err, merrors.ErrCodeInternal))
}

func TestReaderExists(t *testing.T) {
	r, l, _ := newTestReader(t)
	l.EXPECT().AccountData(gomock.Any(), testUser).Return(nil, ledger.ErrAccountNotFound)
	ok, err := r.Exists(context.Background(), testUser)
	require.NoError(t, err)
	assert.False(t, ok)

	l.EXPECT().AccountData(gomock.Any(), testUser).Return([]byte{0}, nil)
	ok, err = r.Exists(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReaderTokenBalanceAndSupply(t *testing.T) {
	r, l, _ := newTestReader(t)
	token := make([]byte, 165)
	binary.LittleEndian.PutUint64(token[64:], 10_000_000)
	mint := make([]byte, 82)
	binary.LittleEndian.PutUint64(mint[36:], 5)

	l.EXPECT().AccountData(gomock.Any(), r.TokenAccount(testUser)).Return(token, nil)
	l.EXPECT().AccountData(gomock.Any(), testPrograms.Token).Return(mint, nil)

	bal, err := r.TokenBalance(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), bal)

	supply, err := r.Supply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), supply)
}

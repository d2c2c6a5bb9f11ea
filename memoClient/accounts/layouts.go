// Package accounts decodes the stored state of the memo programs and the
// SPL token accounts the pipeline inspects.
package accounts

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
)

// DiscriminatorLen is the Anchor account discriminator size.
const DiscriminatorLen = 8

// Account is a decodable program account. Name is the Anchor account type
// name its discriminator is derived from.
type Account interface {
	AccountName() string
}

// Blog is memo-blog's per-creator record.
type Blog struct {
	Creator      solana.PublicKey
	CreatedAt    int64
	LastUpdated  int64
	Name         string
	Description  string
	Image        string
	MemoCount    uint64
	BurnedAmount uint64
	MintedAmount uint64
	LastMemoTime int64
	Bump         uint8
}

func (*Blog) AccountName() string { return "Blog" }

// Profile is memo-profile's per-user record.
type Profile struct {
	User        solana.PublicKey
	Username    string
	Image       string
	CreatedAt   int64
	LastUpdated int64
	AboutMe     *string `bin:"optional"`
	Bump        uint8
}

func (*Profile) AccountName() string { return "Profile" }

// Post is a memo-forum post.
type Post struct {
	PostID        uint64
	Creator       solana.PublicKey
	CreatedAt     int64
	LastUpdated   int64
	Title         string
	Content       string
	Image         string
	ReplyCount    uint64
	BurnedAmount  uint64
	LastReplyTime int64
	Bump          uint8
}

func (*Post) AccountName() string { return "Post" }

// ChatGroup is a memo-chat group.
type ChatGroup struct {
	GroupID         uint64
	Creator         solana.PublicKey
	CreatedAt       int64
	Name            string
	Description     string
	Image           string
	Tags            []string
	MemoCount       uint64
	BurnedAmount    uint64
	MinMemoInterval int64
	LastMemoTime    int64
	Bump            uint8
}

func (*ChatGroup) AccountName() string { return "ChatGroup" }

// Project is a memo-project record. The counters precede the strings.
type Project struct {
	ProjectID    uint64
	Creator      solana.PublicKey
	CreatedAt    int64
	LastUpdated  int64
	MemoCount    uint64
	BurnedAmount uint64
	LastMemoTime int64
	Bump         uint8
	Name         string
	Description  string
	Image        string
	Website      string
	Tags         []string
}

func (*Project) AccountName() string { return "Project" }

// UserGlobalBurnStats is memo-burn's per-user burn total.
type UserGlobalBurnStats struct {
	User         solana.PublicKey
	TotalBurned  uint64
	BurnCount    uint64
	LastBurnTime int64
	Bump         uint8
}

func (*UserGlobalBurnStats) AccountName() string { return "UserGlobalBurnStats" }

// GlobalCounter is the next-id counter of forum, chat and project. The
// layout is shared; only the account name differs per program.
type GlobalCounter struct {
	Total uint64

	name string
}

// NewGlobalCounter returns an empty counter for the named account type
// (GlobalPostCounter, GlobalGroupCounter or GlobalProjectCounter).
func NewGlobalCounter(name string) *GlobalCounter { return &GlobalCounter{name: name} }

func (c *GlobalCounter) AccountName() string { return c.name }

func (c *GlobalCounter) UnmarshalWithDecoder(dec *bin.Decoder) error {
	total, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	c.Total = total
	return nil
}

// LeaderboardEntry pairs a record id with its total burn.
type LeaderboardEntry struct {
	ID           uint64
	BurnedAmount uint64
}

// BurnLeaderboard holds up to 100 unsorted entries.
type BurnLeaderboard struct {
	Entries []LeaderboardEntry
}

func (*BurnLeaderboard) AccountName() string { return "BurnLeaderboard" }

// Lookup returns id's entry.
func (l *BurnLeaderboard) Lookup(id uint64) (LeaderboardEntry, bool) {
	for _, e := range l.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return LeaderboardEntry{}, false
}

// Decode skips the discriminator and decodes data into dst. Bytes past the
// declared fields are ignored; programs reallocate records with slack.
func Decode(data []byte, dst Account) error {
	if len(data) < DiscriminatorLen {
		return merrors.Newf(merrors.ErrCodeVerification, "accounts.decode",
			"%s account too short: %d bytes", dst.AccountName(), len(data))
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLen:]).Decode(dst); err != nil {
		return merrors.New(merrors.ErrCodeVerification, "accounts.decode",
			fmt.Sprintf("failed to decode %s account", dst.AccountName()), err)
	}
	return nil
}

// DecodeChecked is Decode after asserting the discriminator matches dst's
// account name.
func DecodeChecked(data []byte, dst Account) error {
	if err := CheckDiscriminator(data, dst.AccountName()); err != nil {
		return err
	}
	return Decode(data, dst)
}

// CheckDiscriminator asserts data starts with sha256("account:"+name)[:8].
func CheckDiscriminator(data []byte, name string) error {
	want := instruction.AccountDiscriminator(name)
	if len(data) < DiscriminatorLen || [DiscriminatorLen]byte(data[:DiscriminatorLen]) != want {
		return merrors.Newf(merrors.ErrCodeVerification, "accounts.decode",
			"account is not a %s: discriminator mismatch", name)
	}
	return nil
}

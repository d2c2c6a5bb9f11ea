package accounts

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/memo-clients/memoClient/config"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/pda"
)

// Reader fetches and decodes the accounts of the memo program family.
type Reader struct {
	src      ledger.AccountReader
	deriver  *pda.Deriver
	programs config.Programs
	logger   zerolog.Logger
}

// NewReader creates a reader over src.
func NewReader(src ledger.AccountReader, deriver *pda.Deriver, programs config.Programs, logger zerolog.Logger) *Reader {
	return &Reader{
		src:      src,
		deriver:  deriver,
		programs: programs,
		logger:   logger.With().Str("component", "accounts").Logger(),
	}
}

// Fetch reads address and decodes it into dst, checking the discriminator.
// A missing account is ledger.ErrAccountNotFound.
func (r *Reader) Fetch(ctx context.Context, address solana.PublicKey, dst Account) error {
	data, err := r.src.AccountData(ctx, address)
	if err != nil {
		return err
	}
	if err := DecodeChecked(data, dst); err != nil {
		return err
	}
	r.logger.Debug().
		Str("account", dst.AccountName()).
		Str("address", address.String()).
		Int("bytes", len(data)).
		Msg("account decoded")
	return nil
}

// Exists reports whether address holds data.
func (r *Reader) Exists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := r.src.AccountData(ctx, address)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reader) Blog(ctx context.Context, owner solana.PublicKey) (*Blog, error) {
	var b Blog
	return &b, r.Fetch(ctx, r.deriver.Blog(owner, r.programs.Blog).Address, &b)
}

func (r *Reader) Profile(ctx context.Context, user solana.PublicKey) (*Profile, error) {
	var p Profile
	return &p, r.Fetch(ctx, r.deriver.Profile(user, r.programs.Profile).Address, &p)
}

func (r *Reader) Post(ctx context.Context, id uint64) (*Post, error) {
	var p Post
	return &p, r.Fetch(ctx, r.deriver.Post(id, r.programs.Forum).Address, &p)
}

func (r *Reader) ChatGroup(ctx context.Context, id uint64) (*ChatGroup, error) {
	var g ChatGroup
	return &g, r.Fetch(ctx, r.deriver.ChatGroup(id, r.programs.Chat).Address, &g)
}

func (r *Reader) Project(ctx context.Context, id uint64) (*Project, error) {
	var p Project
	return &p, r.Fetch(ctx, r.deriver.Project(id, r.programs.Project).Address, &p)
}

func (r *Reader) BurnStats(ctx context.Context, user solana.PublicKey) (*UserGlobalBurnStats, error) {
	var s UserGlobalBurnStats
	return &s, r.Fetch(ctx, r.deriver.UserGlobalBurnStats(user, r.programs.Burn).Address, &s)
}

// Counter reads program's global id counter. The next record id equals
// Total.
func (r *Reader) Counter(ctx context.Context, program solana.PublicKey) (*GlobalCounter, error) {
	name, err := r.counterName(program)
	if err != nil {
		return nil, err
	}
	c := NewGlobalCounter(name)
	return c, r.Fetch(ctx, r.deriver.GlobalCounter(program).Address, c)
}

func (r *Reader) counterName(program solana.PublicKey) (string, error) {
	switch {
	case program.Equals(r.programs.Forum):
		return "GlobalPostCounter", nil
	case program.Equals(r.programs.Chat):
		return "GlobalGroupCounter", nil
	case program.Equals(r.programs.Project):
		return "GlobalProjectCounter", nil
	}
	return "", merrors.Newf(merrors.ErrCodeInternal, "accounts.counter", "program %s has no global counter", program)
}

func (r *Reader) Leaderboard(ctx context.Context, program solana.PublicKey) (*BurnLeaderboard, error) {
	var l BurnLeaderboard
	return &l, r.Fetch(ctx, r.deriver.BurnLeaderboard(program).Address, &l)
}

// Supply is the memo token mint's current supply in units.
func (r *Reader) Supply(ctx context.Context) (uint64, error) {
	data, err := r.src.AccountData(ctx, r.programs.Token)
	if err != nil {
		return 0, merrors.WrapClientError(err, merrors.ErrCodeRPC, "accounts.supply", "failed to read mint")
	}
	return MintSupply(data)
}

// TokenBalance is owner's memo token balance in units. A missing token
// account reads as ledger.ErrAccountNotFound.
func (r *Reader) TokenBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	data, err := r.src.AccountData(ctx, r.TokenAccount(owner))
	if err != nil {
		return 0, err
	}
	return TokenAmount(data)
}

// TokenAccount is owner's associated token account for the memo token.
func (r *Reader) TokenAccount(owner solana.PublicKey) solana.PublicKey {
	return r.deriver.AssociatedTokenAccount(owner, r.programs.Token).Address
}

// Lamports is address's SOL balance.
func (r *Reader) Lamports(ctx context.Context, address solana.PublicKey) (uint64, error) {
	return r.src.Balance(ctx, address)
}

// Package pda derives every program-derived address the memo programs use.
// Derivations are pure; the Deriver memoizes them so repeated lookups in a
// run (and across batch-mint workers) do not redo the bump search.
package pda

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// Seed labels.
var (
	SeedMintAuthority       = []byte("mint_authority")
	SeedUserGlobalBurnStats = []byte("user_global_burn_stats")
	SeedGlobalCounter       = []byte("global_counter")
	SeedChatGroup           = []byte("chat_group")
	SeedProject             = []byte("project")
	SeedPost                = []byte("post")
	SeedBlog                = []byte("blog")
	SeedProfile             = []byte("profile")
	SeedBurnLeaderboard     = []byte("burn_leaderboard")
)

// PDA is a derived address together with the bump that produced it.
type PDA struct {
	Address solana.PublicKey
	Bump    uint8
}

type cacheKey struct {
	program solana.PublicKey
	seeds   [sha256.Size]byte
}

// Deriver is a thread-safe memoizing PDA deriver.
type Deriver struct {
	mu      sync.RWMutex
	entries map[cacheKey]PDA
	logger  zerolog.Logger
}

// NewDeriver creates an empty Deriver.
func NewDeriver(logger zerolog.Logger) *Deriver {
	return &Deriver{
		entries: make(map[cacheKey]PDA),
		logger:  logger.With().Str("component", "pda").Logger(),
	}
}

// Derive returns the PDA for seeds under program, searching bumps from 255
// downward for the first off-curve point.
func (d *Deriver) Derive(seeds [][]byte, program solana.PublicKey) (PDA, error) {
	key := cacheKey{program: program, seeds: hashSeeds(seeds)}

	d.mu.RLock()
	hit, ok := d.entries[key]
	d.mu.RUnlock()
	if ok {
		return hit, nil
	}

	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return PDA{}, err
	}
	p := PDA{Address: addr, Bump: bump}

	d.mu.Lock()
	d.entries[key] = p
	d.mu.Unlock()

	d.logger.Debug().
		Str("program", program.String()).
		Str("address", addr.String()).
		Uint8("bump", bump).
		Msg("derived address")
	return p, nil
}

// Len reports the number of memoized derivations.
func (d *Deriver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// hashSeeds length-prefixes each seed so that ("ab","c") and ("a","bc")
// never collide.
func hashSeeds(seeds [][]byte) [sha256.Size]byte {
	h := sha256.New()
	var n [4]byte
	for _, s := range seeds {
		binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
		h.Write(n[:])
		h.Write(s)
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// U64Seed encodes an id as the 8-byte little-endian seed the programs use.
func U64Seed(id uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, id)
	return b
}

func (d *Deriver) mustDerive(seeds [][]byte, program solana.PublicKey) PDA {
	p, err := d.Derive(seeds, program)
	if err != nil {
		// FindProgramAddress only fails when all 256 bumps land on the
		// curve or a seed exceeds 32 bytes; neither happens for the fixed
		// labels and 32/8-byte components below.
		panic(err)
	}
	return p
}

// MintAuthority is ["mint_authority"] under memo-mint.
func (d *Deriver) MintAuthority(mintProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedMintAuthority}, mintProgram)
}

// UserGlobalBurnStats is ["user_global_burn_stats", user] under memo-burn.
func (d *Deriver) UserGlobalBurnStats(user, burnProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedUserGlobalBurnStats, user.Bytes()}, burnProgram)
}

// GlobalCounter is ["global_counter"] under the given program.
func (d *Deriver) GlobalCounter(program solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedGlobalCounter}, program)
}

// ChatGroup is ["chat_group", id LE] under memo-chat.
func (d *Deriver) ChatGroup(groupID uint64, chatProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedChatGroup, U64Seed(groupID)}, chatProgram)
}

// Project is ["project", id LE] under memo-project.
func (d *Deriver) Project(projectID uint64, projectProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedProject, U64Seed(projectID)}, projectProgram)
}

// Post is ["post", id LE] under memo-forum.
func (d *Deriver) Post(postID uint64, forumProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedPost, U64Seed(postID)}, forumProgram)
}

// Blog is ["blog", user] under memo-blog.
func (d *Deriver) Blog(user, blogProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedBlog, user.Bytes()}, blogProgram)
}

// Profile is ["profile", user] under memo-profile.
func (d *Deriver) Profile(user, profileProgram solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedProfile, user.Bytes()}, profileProgram)
}

// BurnLeaderboard is ["burn_leaderboard"] under the given program.
func (d *Deriver) BurnLeaderboard(program solana.PublicKey) PDA {
	return d.mustDerive([][]byte{SeedBurnLeaderboard}, program)
}

// AssociatedTokenAccount is the Token-2022 ATA of wallet for mint:
// [wallet, token-2022 program, mint] under the associated token program.
func (d *Deriver) AssociatedTokenAccount(wallet, mint solana.PublicKey) PDA {
	return d.mustDerive(
		[][]byte{wallet.Bytes(), solana.Token2022ProgramID.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

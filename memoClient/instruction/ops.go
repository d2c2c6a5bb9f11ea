// Package instruction builds the program instructions of the memo program
// family. Instruction data is discriminator || little-endian scalar args;
// strings and optionals travel in the memo, never here.
package instruction

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
)

// Op is an on-chain instruction name.
type Op string

const (
	OpProcessMint                   Op = "process_mint"
	OpProcessBurn                   Op = "process_burn"
	OpInitializeUserGlobalBurnStats Op = "initialize_user_global_burn_stats"
	OpCreateBlog                    Op = "create_blog"
	OpUpdateBlog                    Op = "update_blog"
	OpBurnForBlog                   Op = "burn_for_blog"
	OpMintForBlog                   Op = "mint_for_blog"
	OpCreateProfile                 Op = "create_profile"
	OpUpdateProfile                 Op = "update_profile"
	OpDeleteProfile                 Op = "delete_profile"
	OpCreatePost                    Op = "create_post"
	OpBurnForPost                   Op = "burn_for_post"
	OpMintForPost                   Op = "mint_for_post"
	OpInitializeGlobalCounter       Op = "initialize_global_counter"
	OpCreateChatGroup               Op = "create_chat_group"
	OpSendMemoToGroup               Op = "send_memo_to_group"
	OpBurnTokensForGroup            Op = "burn_tokens_for_group"
	OpInitializeBurnLeaderboard     Op = "initialize_burn_leaderboard"
	OpClearBurnLeaderboard          Op = "clear_burn_leaderboard"
	OpCreateProject                 Op = "create_project"
	OpUpdateProject                 Op = "update_project"
	OpBurnForProject                Op = "burn_for_project"

	// OpCreateTokenAccount is the associated token program's idempotent
	// create, not an Anchor instruction.
	OpCreateTokenAccount Op = "create_associated_token_account"
)

func (o Op) String() string { return string(o) }

// Def describes an instruction's scalar arguments and burn rule.
type Def struct {
	// Args names the u64 arguments in declared order.
	Args []string
	// MinBurnTokens is the program's minimum burn; zero for ops that do
	// not burn.
	MinBurnTokens uint64
	// Mints is set for ops that mint through memo-mint.
	Mints bool
}

// Burns reports whether the op burns tokens (its last arg is the amount).
func (d Def) Burns() bool { return d.MinBurnTokens > 0 }

var defs = map[Op]Def{
	OpProcessMint:                   {Mints: true},
	OpProcessBurn:                   {Args: []string{"amount"}, MinBurnTokens: 1},
	OpInitializeUserGlobalBurnStats: {},
	OpCreateBlog:                    {Args: []string{"burn_amount"}, MinBurnTokens: constant.MinBlogBurnTokens},
	OpUpdateBlog:                    {Args: []string{"burn_amount"}, MinBurnTokens: constant.MinBlogBurnTokens},
	OpBurnForBlog:                   {Args: []string{"amount"}, MinBurnTokens: constant.MinBlogBurnTokens},
	OpMintForBlog:                   {Mints: true},
	OpCreateProfile:                 {Args: []string{"burn_amount"}, MinBurnTokens: constant.MinProfileBurnTokens},
	OpUpdateProfile:                 {Args: []string{"burn_amount"}, MinBurnTokens: constant.MinProfileBurnTokens},
	OpDeleteProfile:                 {},
	OpCreatePost:                    {Args: []string{"expected_post_id", "burn_amount"}, MinBurnTokens: constant.MinPostBurnTokens},
	OpBurnForPost:                   {Args: []string{"post_id", "amount"}, MinBurnTokens: constant.MinPostBurnTokens},
	OpMintForPost:                   {Args: []string{"post_id"}, Mints: true},
	OpInitializeGlobalCounter:       {},
	OpCreateChatGroup:               {Args: []string{"expected_group_id", "burn_amount"}, MinBurnTokens: constant.MinChatGroupCreateTokens},
	OpSendMemoToGroup:               {Args: []string{"group_id"}, Mints: true},
	OpBurnTokensForGroup:            {Args: []string{"group_id", "amount"}, MinBurnTokens: constant.MinChatGroupBurnTokens},
	OpInitializeBurnLeaderboard:     {},
	OpClearBurnLeaderboard:          {},
	OpCreateProject:                 {Args: []string{"expected_project_id", "burn_amount"}, MinBurnTokens: constant.MinProjectCreateTokens},
	OpUpdateProject:                 {Args: []string{"project_id", "burn_amount"}, MinBurnTokens: constant.MinProjectUpdateTokens},
	OpBurnForProject:                {Args: []string{"project_id", "amount"}, MinBurnTokens: constant.MinProjectBurnTokens},
	OpCreateTokenAccount:            {},
}

// DefOf returns the argument and burn rules of op.
func DefOf(op Op) (Def, bool) {
	s, ok := defs[op]
	return s, ok
}

// Ops lists every Anchor instruction this package builds.
func Ops() []Op {
	out := make([]Op, 0, len(defs))
	for op := range defs {
		if op == OpCreateTokenAccount {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Discriminator is sha256("global:" + name)[:8].
func Discriminator(name string) [8]byte {
	return prefix8("global:" + name)
}

// AccountDiscriminator is sha256("account:" + name)[:8].
func AccountDiscriminator(name string) [8]byte {
	return prefix8("account:" + name)
}

func prefix8(s string) [8]byte {
	sum := sha256.Sum256([]byte(s))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// encode builds discriminator || args. The argument count must match the
// op's def.
func encode(op Op, args ...uint64) []byte {
	if n := len(defs[op].Args); n != len(args) {
		panic(fmt.Sprintf("instruction %s takes %d args, got %d", op, n, len(args)))
	}
	d := Discriminator(string(op))
	out := make([]byte, 8, 8+8*len(args))
	copy(out, d[:])
	for _, a := range args {
		out = binary.LittleEndian.AppendUint64(out, a)
	}
	return out
}

// DecodeArgs splits instruction data into its discriminator and u64 args.
func DecodeArgs(data []byte) ([8]byte, []uint64, error) {
	var d [8]byte
	if len(data) < 8 || (len(data)-8)%8 != 0 {
		return d, nil, merrors.Newf(merrors.ErrCodeValidation, "instruction.decode", "instruction data has %d bytes, not 8 + 8n", len(data))
	}
	copy(d[:], data[:8])
	args := make([]uint64, 0, (len(data)-8)/8)
	for i := 8; i < len(data); i += 8 {
		args = append(args, binary.LittleEndian.Uint64(data[i:]))
	}
	return d, args, nil
}

// BurnAmount returns the amount argument of a burning op's data.
func BurnAmount(op Op, data []byte) (uint64, error) {
	def, ok := defs[op]
	if !ok || !def.Burns() {
		return 0, merrors.Newf(merrors.ErrCodeValidation, "instruction.decode", "%s does not burn", op)
	}
	d, args, err := DecodeArgs(data)
	if err != nil {
		return 0, err
	}
	if d != Discriminator(string(op)) {
		return 0, merrors.Newf(merrors.ErrCodeValidation, "instruction.decode", "data is not a %s instruction", op)
	}
	if len(args) != len(def.Args) {
		return 0, merrors.Newf(merrors.ErrCodeValidation, "instruction.decode", "%s takes %d args, data has %d", op, len(def.Args), len(args))
	}
	return args[len(args)-1], nil
}

// CheckBurn enforces the program-side burn rules on amount (raw units):
// whole tokens, at least the op minimum, at most the per-tx ceiling.
func CheckBurn(op Op, amount uint64) error {
	def, ok := defs[op]
	if !ok || !def.Burns() {
		return merrors.Newf(merrors.ErrCodeValidation, "instruction.burn", "%s does not burn", op)
	}
	if amount%constant.DecimalFactor != 0 {
		return merrors.Newf(merrors.ErrCodeValidation, "instruction.burn",
			"Invalid burn amount %d: must be a multiple of %d units", amount, constant.DecimalFactor)
	}
	tokens := amount / constant.DecimalFactor
	if tokens < def.MinBurnTokens {
		return merrors.Newf(merrors.ErrCodeValidation, "instruction.burn",
			"Burn amount too small: %s requires at least %d tokens, got %d", op, def.MinBurnTokens, tokens)
	}
	if tokens > constant.MaxBurnPerTx {
		return merrors.Newf(merrors.ErrCodeValidation, "instruction.burn",
			"Burn amount too large: %d tokens exceeds %d per transaction", tokens, constant.MaxBurnPerTx)
	}
	return nil
}

package instruction

import (
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"

	"github.com/pushchain/memo-clients/memoClient/config"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/pda"
)

// Builder produces program instructions with the exact account order each
// program declares. Every account list is documented next to its builder.
type Builder struct {
	programs config.Programs
	deriver  *pda.Deriver
}

// NewBuilder returns a Builder over the resolved program set.
func NewBuilder(programs config.Programs, deriver *pda.Deriver) *Builder {
	return &Builder{programs: programs, deriver: deriver}
}

// Programs returns the program set the builder was created with.
func (b *Builder) Programs() config.Programs { return b.programs }

// TokenAccount is the user's Token-2022 associated account for the memo
// token.
func (b *Builder) TokenAccount(user solana.PublicKey) solana.PublicKey {
	return b.deriver.AssociatedTokenAccount(user, b.programs.Token).Address
}

func (b *Builder) burnStats(user solana.PublicKey) solana.PublicKey {
	return b.deriver.UserGlobalBurnStats(user, b.programs.Burn).Address
}

func (b *Builder) mintAuthority() solana.PublicKey {
	return b.deriver.MintAuthority(b.programs.Mint).Address
}

func signer(pk solana.PublicKey) *solana.AccountMeta { return solana.Meta(pk).WRITE().SIGNER() }
func writable(pk solana.PublicKey) *solana.AccountMeta { return solana.Meta(pk).WRITE() }
func readonly(pk solana.PublicKey) *solana.AccountMeta { return solana.Meta(pk) }

var (
	tokenProgram  = readonly(solana.Token2022ProgramID)
	systemProgram = readonly(solana.SystemProgramID)
	sysvarIxs     = readonly(solana.SysVarInstructionsPubkey)
)

// Memo builds an SPL memo instruction. Signers are attached read-only, as
// spl_memo::build_memo does.
func Memo(data memo.MemoBytes, signers ...solana.PublicKey) solana.Instruction {
	metas := make(solana.AccountMetaSlice, 0, len(signers))
	for _, s := range signers {
		metas = append(metas, solana.Meta(s).SIGNER())
	}
	return solana.NewInstruction(solana.MemoProgramID, metas, []byte(data))
}

// ComputeUnitLimit builds a SetComputeUnitLimit instruction.
func ComputeUnitLimit(units uint32) (solana.Instruction, error) {
	ix, err := computebudget.NewSetComputeUnitLimitInstruction(units).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// CreateTokenAccount creates wallet's Token-2022 associated account if it
// does not exist yet.
//
// Accounts: payer (w,s), ata (w), wallet, mint, system program, token program.
func (b *Builder) CreateTokenAccount(payer, wallet solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, solana.AccountMetaSlice{
		signer(payer),
		writable(b.TokenAccount(wallet)),
		readonly(wallet),
		readonly(b.programs.Token),
		systemProgram,
		tokenProgram,
	}, []byte{1})
}

// ===== memo-mint

// ProcessMint mints the current tier amount to user.
//
// Accounts: user (w,s), mint (w), mint_authority, token_account (w),
// token program, instructions sysvar.
func (b *Builder) ProcessMint(user solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(b.programs.Mint, solana.AccountMetaSlice{
		signer(user),
		writable(b.programs.Token),
		readonly(b.mintAuthority()),
		writable(b.TokenAccount(user)),
		tokenProgram,
		sysvarIxs,
	}, encode(OpProcessMint))
}

// ===== memo-burn

// ProcessBurn burns amount units from user.
//
// Accounts: user (w,s), mint (w), token_account (w),
// user_global_burn_stats (w), token program, instructions sysvar.
func (b *Builder) ProcessBurn(user solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Burn, solana.AccountMetaSlice{
		signer(user),
		writable(b.programs.Token),
		writable(b.TokenAccount(user)),
		writable(b.burnStats(user)),
		tokenProgram,
		sysvarIxs,
	}, encode(OpProcessBurn, amount))
}

// InitializeUserGlobalBurnStats creates user's burn statistics record.
//
// Accounts: user (w,s), user_global_burn_stats (w), system program.
func (b *Builder) InitializeUserGlobalBurnStats(user solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(b.programs.Burn, solana.AccountMetaSlice{
		signer(user),
		writable(b.burnStats(user)),
		systemProgram,
	}, encode(OpInitializeUserGlobalBurnStats))
}

// ===== memo-blog

// CreateBlog creates creator's blog.
//
// Accounts: creator (w,s), blog (w), mint (w), creator_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, system program,
// instructions sysvar.
func (b *Builder) CreateBlog(creator solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Blog, solana.AccountMetaSlice{
		signer(creator),
		writable(b.deriver.Blog(creator, b.programs.Blog).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(creator)),
		writable(b.burnStats(creator)),
		tokenProgram,
		readonly(b.programs.Burn),
		systemProgram,
		sysvarIxs,
	}, encode(OpCreateBlog, amount))
}

// UpdateBlog updates updater's own blog.
//
// Accounts: updater (w,s), blog (w), mint (w), updater_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, instructions sysvar.
func (b *Builder) UpdateBlog(updater solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Blog, solana.AccountMetaSlice{
		signer(updater),
		writable(b.deriver.Blog(updater, b.programs.Blog).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(updater)),
		writable(b.burnStats(updater)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpUpdateBlog, amount))
}

// BurnForBlog burns in support of blogOwner's blog.
//
// Accounts: burner (w,s), blog (w), mint (w), burner_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, instructions sysvar.
func (b *Builder) BurnForBlog(burner, blogOwner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Blog, solana.AccountMetaSlice{
		signer(burner),
		writable(b.deriver.Blog(blogOwner, b.programs.Blog).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(burner)),
		writable(b.burnStats(burner)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpBurnForBlog, amount))
}

// MintForBlog mints to minter through blogOwner's blog.
//
// Accounts: minter (w,s), blog (w), mint (w), mint_authority,
// minter_token_account (w), token program, memo-mint, instructions sysvar.
func (b *Builder) MintForBlog(minter, blogOwner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(b.programs.Blog, solana.AccountMetaSlice{
		signer(minter),
		writable(b.deriver.Blog(blogOwner, b.programs.Blog).Address),
		writable(b.programs.Token),
		readonly(b.mintAuthority()),
		writable(b.TokenAccount(minter)),
		tokenProgram,
		readonly(b.programs.Mint),
		sysvarIxs,
	}, encode(OpMintForBlog))
}

// ===== memo-profile

// CreateProfile creates user's profile.
//
// Accounts: user (w,s), profile (w), mint (w), user_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, system program,
// instructions sysvar.
func (b *Builder) CreateProfile(user solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Profile, solana.AccountMetaSlice{
		signer(user),
		writable(b.deriver.Profile(user, b.programs.Profile).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(user)),
		writable(b.burnStats(user)),
		tokenProgram,
		readonly(b.programs.Burn),
		systemProgram,
		sysvarIxs,
	}, encode(OpCreateProfile, amount))
}

// UpdateProfile updates user's profile. Note the mint and token account
// precede the profile here, unlike create.
//
// Accounts: user (w,s), mint (w), user_token_account (w), profile (w),
// user_global_burn_stats (w), token program, instructions sysvar, memo-burn.
func (b *Builder) UpdateProfile(user solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(b.programs.Profile, solana.AccountMetaSlice{
		signer(user),
		writable(b.programs.Token),
		writable(b.TokenAccount(user)),
		writable(b.deriver.Profile(user, b.programs.Profile).Address),
		writable(b.burnStats(user)),
		tokenProgram,
		sysvarIxs,
		readonly(b.programs.Burn),
	}, encode(OpUpdateProfile, amount))
}

// DeleteProfile closes user's profile.
//
// Accounts: user (w,s), profile (w).
func (b *Builder) DeleteProfile(user solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(b.programs.Profile, solana.AccountMetaSlice{
		signer(user),
		writable(b.deriver.Profile(user, b.programs.Profile).Address),
	}, encode(OpDeleteProfile))
}

// ===== shared admin instructions (forum, chat, project)

// InitializeGlobalCounter creates program's id counter.
//
// Accounts: admin (w,s), global_counter (w), system program.
func (b *Builder) InitializeGlobalCounter(admin, program solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(program, solana.AccountMetaSlice{
		signer(admin),
		writable(b.deriver.GlobalCounter(program).Address),
		systemProgram,
	}, encode(OpInitializeGlobalCounter))
}

// InitializeBurnLeaderboard creates program's burn leaderboard.
//
// Accounts: admin (w,s), burn_leaderboard (w), system program.
func (b *Builder) InitializeBurnLeaderboard(admin, program solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(program, solana.AccountMetaSlice{
		signer(admin),
		writable(b.deriver.BurnLeaderboard(program).Address),
		systemProgram,
	}, encode(OpInitializeBurnLeaderboard))
}

// ClearBurnLeaderboard empties program's burn leaderboard.
//
// Accounts: admin (w,s), burn_leaderboard (w).
func (b *Builder) ClearBurnLeaderboard(admin, program solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(program, solana.AccountMetaSlice{
		signer(admin),
		writable(b.deriver.BurnLeaderboard(program).Address),
	}, encode(OpClearBurnLeaderboard))
}

// ===== memo-forum

// CreatePost creates post postID, which must be the counter's next value.
//
// Accounts: creator (w,s), global_counter (w), post (w), mint (w),
// creator_token_account (w), user_global_burn_stats (w), token program,
// memo-burn, system program, instructions sysvar.
func (b *Builder) CreatePost(creator solana.PublicKey, postID, amount uint64) solana.Instruction {
	forum := b.programs.Forum
	return solana.NewInstruction(forum, solana.AccountMetaSlice{
		signer(creator),
		writable(b.deriver.GlobalCounter(forum).Address),
		writable(b.deriver.Post(postID, forum).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(creator)),
		writable(b.burnStats(creator)),
		tokenProgram,
		readonly(b.programs.Burn),
		systemProgram,
		sysvarIxs,
	}, encode(OpCreatePost, postID, amount))
}

// BurnForPost burns in reply to post postID.
//
// Accounts: user (w,s), post (w), mint (w), user_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, instructions sysvar.
func (b *Builder) BurnForPost(user solana.PublicKey, postID, amount uint64) solana.Instruction {
	forum := b.programs.Forum
	return solana.NewInstruction(forum, solana.AccountMetaSlice{
		signer(user),
		writable(b.deriver.Post(postID, forum).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(user)),
		writable(b.burnStats(user)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpBurnForPost, postID, amount))
}

// MintForPost mints to user in reply to post postID.
//
// Accounts: user (w,s), post (w), mint (w), mint_authority,
// user_token_account (w), token program, memo-mint, instructions sysvar.
func (b *Builder) MintForPost(user solana.PublicKey, postID uint64) solana.Instruction {
	forum := b.programs.Forum
	return solana.NewInstruction(forum, solana.AccountMetaSlice{
		signer(user),
		writable(b.deriver.Post(postID, forum).Address),
		writable(b.programs.Token),
		readonly(b.mintAuthority()),
		writable(b.TokenAccount(user)),
		tokenProgram,
		readonly(b.programs.Mint),
		sysvarIxs,
	}, encode(OpMintForPost, postID))
}

// ===== memo-chat

// CreateChatGroup creates group groupID, which must be the counter's next
// value.
//
// Accounts: creator (w,s), global_counter (w), chat_group (w),
// burn_leaderboard (w), mint (w), creator_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, system program,
// instructions sysvar.
func (b *Builder) CreateChatGroup(creator solana.PublicKey, groupID, amount uint64) solana.Instruction {
	chat := b.programs.Chat
	return solana.NewInstruction(chat, solana.AccountMetaSlice{
		signer(creator),
		writable(b.deriver.GlobalCounter(chat).Address),
		writable(b.deriver.ChatGroup(groupID, chat).Address),
		writable(b.deriver.BurnLeaderboard(chat).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(creator)),
		writable(b.burnStats(creator)),
		tokenProgram,
		readonly(b.programs.Burn),
		systemProgram,
		sysvarIxs,
	}, encode(OpCreateChatGroup, groupID, amount))
}

// SendMemoToGroup posts a message to group groupID; the program mints to
// the sender.
//
// Accounts: sender (w,s), chat_group (w), mint (w), mint_authority,
// sender_token_account (w), token program, memo-mint, instructions sysvar.
func (b *Builder) SendMemoToGroup(sender solana.PublicKey, groupID uint64) solana.Instruction {
	chat := b.programs.Chat
	return solana.NewInstruction(chat, solana.AccountMetaSlice{
		signer(sender),
		writable(b.deriver.ChatGroup(groupID, chat).Address),
		writable(b.programs.Token),
		readonly(b.mintAuthority()),
		writable(b.TokenAccount(sender)),
		tokenProgram,
		readonly(b.programs.Mint),
		sysvarIxs,
	}, encode(OpSendMemoToGroup, groupID))
}

// BurnTokensForGroup burns in support of group groupID.
//
// Accounts: burner (w,s), chat_group (w), burn_leaderboard (w), mint (w),
// burner_token_account (w), user_global_burn_stats (w), token program,
// memo-burn, instructions sysvar.
func (b *Builder) BurnTokensForGroup(burner solana.PublicKey, groupID, amount uint64) solana.Instruction {
	chat := b.programs.Chat
	return solana.NewInstruction(chat, solana.AccountMetaSlice{
		signer(burner),
		writable(b.deriver.ChatGroup(groupID, chat).Address),
		writable(b.deriver.BurnLeaderboard(chat).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(burner)),
		writable(b.burnStats(burner)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpBurnTokensForGroup, groupID, amount))
}

// ===== memo-project

// CreateProject creates project projectID, which must be the counter's
// next value.
//
// Accounts: creator (w,s), global_counter (w), project (w),
// burn_leaderboard (w), mint (w), creator_token_account (w),
// user_global_burn_stats (w), token program, memo-burn, system program,
// instructions sysvar.
func (b *Builder) CreateProject(creator solana.PublicKey, projectID, amount uint64) solana.Instruction {
	project := b.programs.Project
	return solana.NewInstruction(project, solana.AccountMetaSlice{
		signer(creator),
		writable(b.deriver.GlobalCounter(project).Address),
		writable(b.deriver.Project(projectID, project).Address),
		writable(b.deriver.BurnLeaderboard(project).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(creator)),
		writable(b.burnStats(creator)),
		tokenProgram,
		readonly(b.programs.Burn),
		systemProgram,
		sysvarIxs,
	}, encode(OpCreateProject, projectID, amount))
}

// UpdateProject updates project projectID; only its creator may.
//
// Accounts: updater (w,s), project (w), burn_leaderboard (w), mint (w),
// updater_token_account (w), user_global_burn_stats (w), token program,
// memo-burn, instructions sysvar.
func (b *Builder) UpdateProject(updater solana.PublicKey, projectID, amount uint64) solana.Instruction {
	project := b.programs.Project
	return solana.NewInstruction(project, solana.AccountMetaSlice{
		signer(updater),
		writable(b.deriver.Project(projectID, project).Address),
		writable(b.deriver.BurnLeaderboard(project).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(updater)),
		writable(b.burnStats(updater)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpUpdateProject, projectID, amount))
}

// BurnForProject burns in support of project projectID.
//
// Accounts: burner (w,s), project (w), burn_leaderboard (w), mint (w),
// burner_token_account (w), user_global_burn_stats (w), token program,
// memo-burn, instructions sysvar.
func (b *Builder) BurnForProject(burner solana.PublicKey, projectID, amount uint64) solana.Instruction {
	project := b.programs.Project
	return solana.NewInstruction(project, solana.AccountMetaSlice{
		signer(burner),
		writable(b.deriver.Project(projectID, project).Address),
		writable(b.deriver.BurnLeaderboard(project).Address),
		writable(b.programs.Token),
		writable(b.TokenAccount(burner)),
		writable(b.burnStats(burner)),
		tokenProgram,
		readonly(b.programs.Burn),
		sysvarIxs,
	}, encode(OpBurnForProject, projectID, amount))
}

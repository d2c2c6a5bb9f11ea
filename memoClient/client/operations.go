package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/instruction"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
)

// burn runs the shared path of every burning operation: preconditions,
// envelope, instruction, submission. amount is in tokens.
func (c *Client) burn(ctx context.Context, op instruction.Op, tokens uint64, p memo.Payload, exp memo.Expectation,
	program func(units uint64) solana.Instruction) (Outcome, error) {
	units := constant.Tokens(tokens)
	if err := c.burnPreconditions(ctx, op, units); err != nil {
		return Outcome{Op: op}, err
	}
	data, err := memo.Envelope(p, units, exp)
	if err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Memo: data, Program: program(units), BurnAmount: units})
}

func (c *Client) expectSigner() memo.Expectation {
	return memo.Expectation{Actor: c.Payer()}
}

// nextID reads the next id a counter program will assign.
func (c *Client) nextID(ctx context.Context, program solana.PublicKey) (uint64, error) {
	counter, err := c.reader.Counter(ctx, program)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return 0, merrors.Newf(merrors.ErrCodePrecondition, "precondition", "global counter of %s is not initialized", program).
				WithHint(merrors.Hint{Key: "account_missing", Advice: "Global counter not initialized: run the program's init-counter command first"})
		}
		return 0, err
	}
	return counter.Total, nil
}

// ===== memo-mint / memo-burn

// MintParams configure Mint.
type MintParams struct {
	// MemoLength is the size of the generated ASCII memo, 69 when zero.
	MemoLength int
	// Memo, when set, is sent instead of a generated one.
	Memo string
}

// Mint calls process_mint, creating the signer's token account first
// when it is missing.
func (c *Client) Mint(ctx context.Context, p MintParams) (Outcome, error) {
	op := instruction.OpProcessMint
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	if err := c.ensureTokenAccount(ctx); err != nil {
		return Outcome{Op: op}, err
	}

	var data memo.MemoBytes
	if p.Memo != "" {
		var err error
		if data, err = memo.EncodeRaw(p.Memo); err != nil {
			return Outcome{Op: op}, err
		}
	} else {
		n := p.MemoLength
		if n == 0 {
			n = constant.MinMemoLength
		}
		data = memo.ASCIIMemo(n, c.now())
	}
	return c.Execute(ctx, Request{Op: op, Memo: data, Program: c.builder.ProcessMint(c.Payer())})
}

// MintOnce is a single confirmed process_mint; it satisfies
// guardrail.Minter.
func (c *Client) MintOnce(ctx context.Context) error {
	_, err := c.Mint(ctx, MintParams{})
	return err
}

func (c *Client) ensureTokenAccount(ctx context.Context) error {
	ata := c.reader.TokenAccount(c.Payer())
	ok, err := c.reader.Exists(ctx, ata)
	if err != nil || ok {
		return err
	}
	c.logger.Info().Str("token_account", ata.String()).Msg("creating token account")
	_, err = c.Execute(ctx, Request{
		Op:      instruction.OpCreateTokenAccount,
		Program: c.builder.CreateTokenAccount(c.Payer(), c.Payer()),
	})
	return err
}

// InitBurnStats creates the signer's global burn statistics account.
func (c *Client) InitBurnStats(ctx context.Context) (Outcome, error) {
	op := instruction.OpInitializeUserGlobalBurnStats
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Program: c.builder.InitializeUserGlobalBurnStats(c.Payer())})
}

// BurnParams configure Burn.
type BurnParams struct {
	Tokens uint64
	// Message is the envelope payload; a timestamped default when empty.
	Message string
}

// Burn calls memo-burn's process_burn.
func (c *Client) Burn(ctx context.Context, p BurnParams) (Outcome, error) {
	payload := memo.NewBurnMessage(p.Tokens, c.now())
	if p.Message != "" {
		payload = &memo.BurnMessage{Text: []byte(p.Message)}
	}
	return c.burn(ctx, instruction.OpProcessBurn, p.Tokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.ProcessBurn(c.Payer(), units)
	})
}

// ===== memo-blog

// BlogParams configure CreateBlog.
type BlogParams struct {
	Name        string
	Description string
	Image       string
	BurnTokens  uint64
}

func (c *Client) CreateBlog(ctx context.Context, p BlogParams) (Outcome, error) {
	payload := memo.NewBlogCreation(c.Payer().String(), p.Name, p.Description, p.Image)
	return c.burn(ctx, instruction.OpCreateBlog, p.BurnTokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.CreateBlog(c.Payer(), units)
	})
}

// BlogUpdateParams configure UpdateBlog; nil fields stay unchanged.
type BlogUpdateParams struct {
	Name        *string
	Description *string
	Image       *string
	BurnTokens  uint64
}

func (c *Client) UpdateBlog(ctx context.Context, p BlogUpdateParams) (Outcome, error) {
	payload := memo.NewBlogUpdate(c.Payer().String(), p.Name, p.Description, p.Image)
	return c.burn(ctx, instruction.OpUpdateBlog, p.BurnTokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.UpdateBlog(c.Payer(), units)
	})
}

// BurnForBlog burns tokens in support of owner's blog.
func (c *Client) BurnForBlog(ctx context.Context, owner solana.PublicKey, tokens uint64, message string) (Outcome, error) {
	payload := memo.NewBlogBurn(c.Payer().String(), message)
	return c.burn(ctx, instruction.OpBurnForBlog, tokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.BurnForBlog(c.Payer(), owner, units)
	})
}

// MintForBlog mints to the signer through owner's blog.
func (c *Client) MintForBlog(ctx context.Context, owner solana.PublicKey, message string) (Outcome, error) {
	op := instruction.OpMintForBlog
	if err := c.mintPreconditions(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	data, err := memo.Envelope(memo.NewBlogMint(c.Payer().String(), message), 0, c.expectSigner())
	if err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Memo: data, Program: c.builder.MintForBlog(c.Payer(), owner)})
}

func (c *Client) mintPreconditions(ctx context.Context) error {
	if err := c.CheckFees(ctx); err != nil {
		return err
	}
	return c.CheckTokenAccount(ctx)
}

// ===== memo-profile

// ProfileParams configure CreateProfile.
type ProfileParams struct {
	Username   string
	Image      string
	AboutMe    *string
	BurnTokens uint64
}

func (c *Client) CreateProfile(ctx context.Context, p ProfileParams) (Outcome, error) {
	payload := memo.NewProfileCreation(c.Payer().String(), p.Username, p.Image, p.AboutMe)
	return c.burn(ctx, instruction.OpCreateProfile, p.BurnTokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.CreateProfile(c.Payer(), units)
	})
}

// ProfileUpdateParams configure UpdateProfile. AboutMe distinguishes keep
// from clear.
type ProfileUpdateParams struct {
	Username   *string
	Image      *string
	AboutMe    memo.Patch[string]
	BurnTokens uint64
}

func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdateParams) (Outcome, error) {
	payload := memo.NewProfileUpdate(c.Payer().String(), p.Username, p.Image, p.AboutMe)
	return c.burn(ctx, instruction.OpUpdateProfile, p.BurnTokens, payload, c.expectSigner(), func(units uint64) solana.Instruction {
		return c.builder.UpdateProfile(c.Payer(), units)
	})
}

// DeleteProfile closes the signer's profile; it carries no memo.
func (c *Client) DeleteProfile(ctx context.Context) (Outcome, error) {
	op := instruction.OpDeleteProfile
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Program: c.builder.DeleteProfile(c.Payer())})
}

// ===== counters and leaderboards

// InitGlobalCounter creates the id counter of a forum, chat or project
// program. Admin only.
func (c *Client) InitGlobalCounter(ctx context.Context, program solana.PublicKey) (Outcome, error) {
	op := instruction.OpInitializeGlobalCounter
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Program: c.builder.InitializeGlobalCounter(c.Payer(), program)})
}

// InitBurnLeaderboard creates the burn leaderboard of a chat or project
// program. Admin only.
func (c *Client) InitBurnLeaderboard(ctx context.Context, program solana.PublicKey) (Outcome, error) {
	op := instruction.OpInitializeBurnLeaderboard
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Program: c.builder.InitializeBurnLeaderboard(c.Payer(), program)})
}

// ClearBurnLeaderboard empties a burn leaderboard. Admin only.
func (c *Client) ClearBurnLeaderboard(ctx context.Context, program solana.PublicKey) (Outcome, error) {
	op := instruction.OpClearBurnLeaderboard
	if err := c.CheckFees(ctx); err != nil {
		return Outcome{Op: op}, err
	}
	return c.Execute(ctx, Request{Op: op, Program: c.builder.ClearBurnLeaderboard(c.Payer(), program)})
}

// ===== memo-forum

// PostParams configure CreatePost.
type PostParams struct {
	Title      string
	Content    string
	Image      string
	BurnTokens uint64
}

// CreatePost creates the post with the forum counter's next id.
func (c *Client) CreatePost(ctx context.Context, p PostParams) (Outcome, error) {
	id, err := c.nextID(ctx, c.programs.Forum)
	if err != nil {
		return Outcome{Op: instruction.OpCreatePost}, err
	}
	payload := memo.NewPostCreation(c.Payer().String(), id, p.Title, p.Content, p.Image)
	out, err := c.burn(ctx, instruction.OpCreatePost, p.BurnTokens, payload, memo.Expectation{Actor: c.Payer(), ID: id},
		func(units uint64) solana.Instruction { return c.builder.CreatePost(c.Payer(), id, units) })
	out.ID = id
	return out, err
}

func (c *Client) BurnForPost(ctx context.Context, postID, tokens uint64, message string) (Outcome, error) {
	payload := memo.NewPostBurn(c.Payer().String(), postID, message)
	out, err := c.burn(ctx, instruction.OpBurnForPost, tokens, payload, memo.Expectation{Actor: c.Payer(), ID: postID},
		func(units uint64) solana.Instruction { return c.builder.BurnForPost(c.Payer(), postID, units) })
	out.ID = postID
	return out, err
}

func (c *Client) MintForPost(ctx context.Context, postID uint64, message string) (Outcome, error) {
	op := instruction.OpMintForPost
	if err := c.mintPreconditions(ctx); err != nil {
		return Outcome{Op: op, ID: postID}, err
	}
	data, err := memo.Envelope(memo.NewPostMint(c.Payer().String(), postID, message), 0, memo.Expectation{Actor: c.Payer(), ID: postID})
	if err != nil {
		return Outcome{Op: op, ID: postID}, err
	}
	out, err := c.Execute(ctx, Request{Op: op, Memo: data, Program: c.builder.MintForPost(c.Payer(), postID)})
	out.ID = postID
	return out, err
}

// ===== memo-chat

// GroupParams configure CreateChatGroup.
type GroupParams struct {
	Name        string
	Description string
	Image       string
	Tags        []string
	// MinMemoInterval is the per-sender cooldown in seconds; nil keeps
	// the program default.
	MinMemoInterval *int64
	BurnTokens      uint64
}

// CreateChatGroup creates the group with the chat counter's next id.
func (c *Client) CreateChatGroup(ctx context.Context, p GroupParams) (Outcome, error) {
	id, err := c.nextID(ctx, c.programs.Chat)
	if err != nil {
		return Outcome{Op: instruction.OpCreateChatGroup}, err
	}
	payload := memo.NewChatGroupCreation(id, p.Name, p.Description, p.Image, p.Tags, p.MinMemoInterval)
	out, err := c.burn(ctx, instruction.OpCreateChatGroup, p.BurnTokens, payload, memo.Expectation{ID: id},
		func(units uint64) solana.Instruction { return c.builder.CreateChatGroup(c.Payer(), id, units) })
	out.ID = id
	return out, err
}

// MessageParams configure SendToGroup.
type MessageParams struct {
	Message  string
	Receiver *string
	// ReplyTo is the base58 signature of the message replied to.
	ReplyTo *string
}

// SendToGroup posts a message; the program mints a reward to the sender.
func (c *Client) SendToGroup(ctx context.Context, groupID uint64, p MessageParams) (Outcome, error) {
	op := instruction.OpSendMemoToGroup
	if err := c.mintPreconditions(ctx); err != nil {
		return Outcome{Op: op, ID: groupID}, err
	}
	payload := memo.NewChatMessage(groupID, c.Payer().String(), p.Message, p.Receiver, p.ReplyTo)
	data, err := memo.Bare(payload, memo.Expectation{Actor: c.Payer(), ID: groupID})
	if err != nil {
		return Outcome{Op: op, ID: groupID}, err
	}
	out, err := c.Execute(ctx, Request{Op: op, Memo: data, Program: c.builder.SendMemoToGroup(c.Payer(), groupID)})
	out.ID = groupID
	return out, err
}

func (c *Client) BurnForGroup(ctx context.Context, groupID, tokens uint64, message string) (Outcome, error) {
	payload := memo.NewChatGroupBurn(groupID, c.Payer().String(), message)
	out, err := c.burn(ctx, instruction.OpBurnTokensForGroup, tokens, payload, memo.Expectation{Actor: c.Payer(), ID: groupID},
		func(units uint64) solana.Instruction { return c.builder.BurnTokensForGroup(c.Payer(), groupID, units) })
	out.ID = groupID
	return out, err
}

// ===== memo-project

// ProjectParams configure CreateProject.
type ProjectParams struct {
	Name        string
	Description string
	Image       string
	Website     string
	Tags        []string
	BurnTokens  uint64
}

// CreateProject creates the project with the project counter's next id.
func (c *Client) CreateProject(ctx context.Context, p ProjectParams) (Outcome, error) {
	id, err := c.nextID(ctx, c.programs.Project)
	if err != nil {
		return Outcome{Op: instruction.OpCreateProject}, err
	}
	payload := memo.NewProjectCreation(id, p.Name, p.Description, p.Image, p.Website, p.Tags)
	out, err := c.burn(ctx, instruction.OpCreateProject, p.BurnTokens, payload, memo.Expectation{ID: id},
		func(units uint64) solana.Instruction { return c.builder.CreateProject(c.Payer(), id, units) })
	out.ID = id
	return out, err
}

// ProjectUpdateParams configure UpdateProject; nil fields stay unchanged.
type ProjectUpdateParams struct {
	Name        *string
	Description *string
	Image       *string
	Website     *string
	Tags        *[]string
	BurnTokens  uint64
}

func (c *Client) UpdateProject(ctx context.Context, projectID uint64, p ProjectUpdateParams) (Outcome, error) {
	payload := memo.NewProjectUpdate(projectID)
	payload.Name = p.Name
	payload.Description = p.Description
	payload.Image = p.Image
	payload.Website = p.Website
	payload.Tags = p.Tags
	out, err := c.burn(ctx, instruction.OpUpdateProject, p.BurnTokens, payload, memo.Expectation{ID: projectID},
		func(units uint64) solana.Instruction { return c.builder.UpdateProject(c.Payer(), projectID, units) })
	out.ID = projectID
	return out, err
}

func (c *Client) BurnForProject(ctx context.Context, projectID, tokens uint64, message string) (Outcome, error) {
	payload := memo.NewProjectBurn(projectID, c.Payer().String(), message)
	out, err := c.burn(ctx, instruction.OpBurnForProject, tokens, payload, memo.Expectation{Actor: c.Payer(), ID: projectID},
		func(units uint64) solana.Instruction { return c.builder.BurnForProject(c.Payer(), projectID, units) })
	out.ID = projectID
	return out, err
}

// ProgramByName maps a CLI program name to its address.
func (c *Client) ProgramByName(name string) (solana.PublicKey, error) {
	switch name {
	case "forum":
		return c.programs.Forum, nil
	case "chat":
		return c.programs.Chat, nil
	case "project":
		return c.programs.Project, nil
	}
	return solana.PublicKey{}, merrors.New(merrors.ErrCodeConfig, "client", fmt.Sprintf("unknown program %q: want forum, chat or project", name), nil)
}

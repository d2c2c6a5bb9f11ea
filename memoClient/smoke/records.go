package smoke

import (
	"context"
	"errors"
	"fmt"

	"github.com/pushchain/memo-clients/memoClient/accounts"
	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/memo"
	"github.com/pushchain/memo-clients/memoClient/verify"
)

// ===== memo-blog

func blogScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	signer := memo.Expectation{Actor: me}
	one := constant.Tokens(1)

	if err := r.prepareBurner(ctx, rep, r.opts.BalanceTokens); err != nil {
		return err
	}

	before, err := c.Reader().Blog(ctx, me)
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		out, err := c.CreateBlog(ctx, client.BlogParams{
			Name:        "Smoke Test Blog",
			Description: "A comprehensive test blog",
			Image:       "https://example.com/blog-cover.png",
			BurnTokens:  1,
		})
		if err := r.landed(ctx, rep, "create blog", out, err, one, signer); err != nil {
			return err
		}
		after, err := c.Reader().Blog(ctx, me)
		if err != nil {
			return err
		}
		if err := r.check(rep, verify.Check("blog after create",
			verify.ActorIs("creator", me, after.Creator),
			verify.Equal("name", "Smoke Test Blog", after.Name),
			verify.Equal("description", "A comprehensive test blog", after.Description),
			verify.Equal("image", "https://example.com/blog-cover.png", after.Image),
			verify.Equal("burned_amount", one, after.BurnedAmount),
			verify.Equal("memo_count", uint64(0), after.MemoCount),
			verify.NonZeroTime("created_at", after.CreatedAt),
		)); err != nil {
			return err
		}
		before = after
	case err != nil:
		return err
	default:
		r.logger.Info().Str("blog", c.Deriver().Blog(me, c.Programs().Blog).Address.String()).Msg("blog exists, skipping create")
	}

	out, err := c.UpdateBlog(ctx, client.BlogUpdateParams{
		Name:        strPtr("Updated Smoke Test Blog"),
		Description: strPtr("This blog has been updated"),
		BurnTokens:  1,
	})
	if err := r.landed(ctx, rep, "update blog", out, err, one, signer); err != nil {
		return err
	}
	after, err := c.Reader().Blog(ctx, me)
	if err != nil {
		return err
	}
	if err := r.check(rep, verify.Check("blog after update",
		verify.Equal("name", "Updated Smoke Test Blog", after.Name),
		verify.Equal("description", "This blog has been updated", after.Description),
		verify.Equal("image", before.Image, after.Image),
		verify.Increased("burned_amount", before.BurnedAmount, after.BurnedAmount, one),
		verify.Equal("memo_count", before.MemoCount, after.MemoCount),
		verify.NotBefore("last_updated", before.LastUpdated, after.LastUpdated),
	)); err != nil {
		return err
	}
	before = after

	out, err = c.BurnForBlog(ctx, me, 1, "Supporting this awesome blog!")
	if err := r.landed(ctx, rep, "burn for blog", out, err, one, signer); err != nil {
		return err
	}
	if after, err = c.Reader().Blog(ctx, me); err != nil {
		return err
	}
	if err := r.check(rep, verify.Check("blog after burn",
		verify.Increased("burned_amount", before.BurnedAmount, after.BurnedAmount, one),
		verify.Increased("memo_count", before.MemoCount, after.MemoCount, 1),
		verify.NonZeroTime("last_memo_time", after.LastMemoTime),
	)); err != nil {
		return err
	}
	before = after

	out, err = c.MintForBlog(ctx, me, "Rewarding blog creator!")
	if err := r.landed(ctx, rep, "mint for blog", out, err, 0, signer); err != nil {
		return err
	}
	if after, err = c.Reader().Blog(ctx, me); err != nil {
		return err
	}
	return r.check(rep, verify.Check("blog after mint",
		verify.Equal("burned_amount", before.BurnedAmount, after.BurnedAmount),
		verify.Equal("minted_amount increased", true, after.MintedAmount > before.MintedAmount),
		verify.Increased("memo_count", before.MemoCount, after.MemoCount, 1),
		verify.NotBefore("last_memo_time", before.LastMemoTime, after.LastMemoTime),
	))
}

// ===== memo-profile

func profileScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	signer := memo.Expectation{Actor: me}
	burn := constant.MinProfileBurnTokens
	address := c.Deriver().Profile(me, c.Programs().Profile).Address

	if err := r.prepareBurner(ctx, rep, max(r.opts.BalanceTokens, 2*burn)); err != nil {
		return err
	}

	exists, err := c.Reader().Exists(ctx, address)
	if err != nil {
		return err
	}
	if exists {
		out, err := c.DeleteProfile(ctx)
		if err := r.step(rep, "delete stale profile", out, err); err != nil {
			return err
		}
	}

	out, err := c.CreateProfile(ctx, client.ProfileParams{
		Username:   "SmokeTestUser",
		Image:      "c:32x32:test_image_data",
		AboutMe:    strPtr("Smoke test profile"),
		BurnTokens: burn,
	})
	if err := r.landed(ctx, rep, "create profile", out, err, constant.Tokens(burn), signer); err != nil {
		return err
	}
	created, err := c.Reader().Profile(ctx, me)
	if err != nil {
		return err
	}
	if err := r.check(rep, verify.Check("profile after create",
		verify.ActorIs("user", me, created.User),
		verify.Equal("username", "SmokeTestUser", created.Username),
		verify.Equal("image", "c:32x32:test_image_data", created.Image),
		verify.Equal("about_me", strPtr("Smoke test profile"), created.AboutMe),
		verify.NonZeroTime("created_at", created.CreatedAt),
	)); err != nil {
		return err
	}

	out, err = c.UpdateProfile(ctx, client.ProfileUpdateParams{
		Username:   strPtr("UpdatedUser"),
		Image:      strPtr("c:64x64:updated_image_data"),
		AboutMe:    memo.Set("Updated smoke test profile"),
		BurnTokens: burn,
	})
	if err := r.landed(ctx, rep, "update profile", out, err, constant.Tokens(burn), signer); err != nil {
		return err
	}
	updated, err := c.Reader().Profile(ctx, me)
	if err != nil {
		return err
	}
	if err := r.check(rep, verify.Check("profile after update",
		verify.Equal("username", "UpdatedUser", updated.Username),
		verify.Equal("image", "c:64x64:updated_image_data", updated.Image),
		verify.Equal("about_me", strPtr("Updated smoke test profile"), updated.AboutMe),
		verify.Equal("created_at", created.CreatedAt, updated.CreatedAt),
		verify.NotBefore("last_updated", created.LastUpdated, updated.LastUpdated),
	)); err != nil {
		return err
	}

	out, err = c.DeleteProfile(ctx)
	if err := r.step(rep, "delete profile", out, err); err != nil {
		return err
	}
	return c.Verifier().Absent(ctx, "profile", address)
}

// ===== memo-forum

func forumScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	one := constant.Tokens(1)
	forum := c.Programs().Forum

	if err := r.prepareBurner(ctx, rep, r.opts.BalanceTokens); err != nil {
		return err
	}
	if err := r.counterReady(ctx, rep, forum); err != nil {
		return err
	}

	out, err := c.CreatePost(ctx, client.PostParams{
		Title:      "Smoke Test Post",
		Content:    "Posted by the forum smoke scenario",
		Image:      "https://example.com/post.png",
		BurnTokens: 1,
	})
	id := out.ID
	expect := memo.Expectation{Actor: me, ID: id}
	if err := r.landed(ctx, rep, "create post", out, err, one, expect); err != nil {
		return err
	}
	post, err := c.Reader().Post(ctx, id)
	if err != nil {
		return err
	}
	counter, err := c.Reader().Counter(ctx, forum)
	if err != nil {
		return err
	}
	if err := r.check(rep, verify.Check(fmt.Sprintf("post %d after create", id),
		verify.Equal("post_id", id, post.PostID),
		verify.ActorIs("creator", me, post.Creator),
		verify.Equal("title", "Smoke Test Post", post.Title),
		verify.Equal("burned_amount", one, post.BurnedAmount),
		verify.Equal("reply_count", uint64(0), post.ReplyCount),
		verify.Increased("counter", id, counter.Total, 1),
	)); err != nil {
		return err
	}

	before := post
	out, err = c.BurnForPost(ctx, id, 1, "Burning for a great post")
	if err := r.landed(ctx, rep, "burn for post", out, err, one, expect); err != nil {
		return err
	}
	if post, err = c.Reader().Post(ctx, id); err != nil {
		return err
	}
	if err := r.check(rep, verify.Check(fmt.Sprintf("post %d after burn", id),
		verify.Increased("burned_amount", before.BurnedAmount, post.BurnedAmount, one),
		verify.Increased("reply_count", before.ReplyCount, post.ReplyCount, 1),
		verify.NonZeroTime("last_reply_time", post.LastReplyTime),
	)); err != nil {
		return err
	}

	before = post
	out, err = c.MintForPost(ctx, id, "Minting on a great post")
	if err := r.landed(ctx, rep, "mint for post", out, err, 0, expect); err != nil {
		return err
	}
	if post, err = c.Reader().Post(ctx, id); err != nil {
		return err
	}
	return r.check(rep, verify.Check(fmt.Sprintf("post %d after mint", id),
		verify.Equal("burned_amount", before.BurnedAmount, post.BurnedAmount),
		verify.Increased("reply_count", before.ReplyCount, post.ReplyCount, 1),
		verify.NotBefore("last_reply_time", before.LastReplyTime, post.LastReplyTime),
	))
}

// ===== memo-chat

func chatScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	chat := c.Programs().Chat

	if err := r.counterReady(ctx, rep, chat); err != nil {
		return err
	}
	counter, err := c.Reader().Counter(ctx, chat)
	if err != nil {
		return err
	}

	// Reuse the newest group; creating one burns the 42,069 token minimum.
	var id uint64
	if counter.Total > 0 {
		id = counter.Total - 1
		r.logger.Info().Uint64("group_id", id).Msg("reusing newest chat group")
	} else {
		if err := r.prepareBurner(ctx, rep, constant.MinChatGroupCreateTokens); err != nil {
			return err
		}
		out, err := c.CreateChatGroup(ctx, client.GroupParams{
			Name:        "Smoke Test Group",
			Description: "Created by the chat smoke scenario",
			Tags:        []string{"smoke"},
			BurnTokens:  constant.MinChatGroupCreateTokens,
		})
		id = out.ID
		if err := r.landed(ctx, rep, "create chat group", out, err, constant.Tokens(constant.MinChatGroupCreateTokens), memo.Expectation{ID: id}); err != nil {
			return err
		}
	}
	expect := memo.Expectation{Actor: me, ID: id}

	before, err := c.Reader().ChatGroup(ctx, id)
	if err != nil {
		return err
	}
	out, err := c.SendToGroup(ctx, id, client.MessageParams{Message: "Hello from the chat smoke scenario"})
	if err := r.landed(ctx, rep, "send memo to group", out, err, 0, expect); err != nil {
		return err
	}
	after, err := c.Reader().ChatGroup(ctx, id)
	if err != nil {
		return err
	}
	if err := r.check(rep, verify.Check(fmt.Sprintf("group %d after send", id),
		verify.Equal("group_id", id, after.GroupID),
		verify.Increased("memo_count", before.MemoCount, after.MemoCount, 1),
		verify.NotBefore("last_memo_time", before.LastMemoTime, after.LastMemoTime),
		verify.NonZeroTime("last_memo_time", after.LastMemoTime),
	)); err != nil {
		return err
	}

	if err := r.prepareBurner(ctx, rep, r.opts.ChatBurnTokens); err != nil {
		return err
	}
	before = after
	burn := constant.Tokens(r.opts.ChatBurnTokens)
	out, err = c.BurnForGroup(ctx, id, r.opts.ChatBurnTokens, "Burning for the smoke test group")
	if err := r.landed(ctx, rep, "burn tokens for group", out, err, burn, expect); err != nil {
		return err
	}
	if after, err = c.Reader().ChatGroup(ctx, id); err != nil {
		return err
	}
	return r.check(rep, verify.Check(fmt.Sprintf("group %d after burn", id),
		verify.Increased("burned_amount", before.BurnedAmount, after.BurnedAmount, burn),
		verify.Equal("memo_count", before.MemoCount, after.MemoCount),
	))
}

// ===== memo-project

func projectScenario(ctx context.Context, r *Runner, rep *Report) error {
	c := r.c
	me := c.Payer()
	program := c.Programs().Project

	if err := r.counterReady(ctx, rep, program); err != nil {
		return err
	}
	counter, err := c.Reader().Counter(ctx, program)
	if err != nil {
		return err
	}

	var project *accounts.Project
	if counter.Total > 0 {
		latest, err := c.Reader().Project(ctx, counter.Total-1)
		if err != nil {
			return err
		}
		if latest.Creator.Equals(me) {
			project = latest
			r.logger.Info().Uint64("project_id", latest.ProjectID).Msg("reusing own newest project")
		}
	}
	if project == nil {
		create := constant.MinProjectCreateTokens
		if err := r.prepareBurner(ctx, rep, create); err != nil {
			return err
		}
		out, err := c.CreateProject(ctx, client.ProjectParams{
			Name:        "Smoke Test Project",
			Description: "Created by the project smoke scenario",
			Website:     "https://example.com",
			Tags:        []string{"smoke", "test"},
			BurnTokens:  create,
		})
		if err := r.landed(ctx, rep, "create project", out, err, constant.Tokens(create), memo.Expectation{ID: out.ID}); err != nil {
			return err
		}
		if project, err = c.Reader().Project(ctx, out.ID); err != nil {
			return err
		}
		if err := r.check(rep, verify.Check(fmt.Sprintf("project %d after create", out.ID),
			verify.Equal("project_id", out.ID, project.ProjectID),
			verify.ActorIs("creator", me, project.Creator),
			verify.Equal("name", "Smoke Test Project", project.Name),
			verify.Equal("burned_amount", constant.Tokens(create), project.BurnedAmount),
		)); err != nil {
			return err
		}
	}
	id := project.ProjectID

	update := constant.MinProjectUpdateTokens
	if err := r.prepareBurner(ctx, rep, update); err != nil {
		return err
	}
	before := project
	out, err := c.UpdateProject(ctx, id, client.ProjectUpdateParams{
		Description: strPtr("Updated by the project smoke scenario"),
		BurnTokens:  update,
	})
	if err := r.landed(ctx, rep, "update project", out, err, constant.Tokens(update), memo.Expectation{ID: id}); err != nil {
		return err
	}
	if project, err = c.Reader().Project(ctx, id); err != nil {
		return err
	}
	if err := r.check(rep, verify.Check(fmt.Sprintf("project %d after update", id),
		verify.Equal("name", before.Name, project.Name),
		verify.Equal("description", "Updated by the project smoke scenario", project.Description),
		verify.Increased("burned_amount", before.BurnedAmount, project.BurnedAmount, constant.Tokens(update)),
		verify.NotBefore("last_updated", before.LastUpdated, project.LastUpdated),
	)); err != nil {
		return err
	}

	burn := constant.MinProjectBurnTokens
	if err := r.prepareBurner(ctx, rep, burn); err != nil {
		return err
	}
	before = project
	out, err = c.BurnForProject(ctx, id, burn, "Burning for the smoke test project")
	if err := r.landed(ctx, rep, "burn for project", out, err, constant.Tokens(burn), memo.Expectation{Actor: me, ID: id}); err != nil {
		return err
	}
	if project, err = c.Reader().Project(ctx, id); err != nil {
		return err
	}
	assertions := []verify.Assertion{
		verify.Increased("burned_amount", before.BurnedAmount, project.BurnedAmount, constant.Tokens(burn)),
		verify.Increased("memo_count", before.MemoCount, project.MemoCount, 1),
		verify.NonZeroTime("last_memo_time", project.LastMemoTime),
	}
	board, err := c.Reader().Leaderboard(ctx, program)
	switch {
	case err == nil:
		entry, _ := board.Lookup(id)
		assertions = append(assertions, verify.Equal("leaderboard burned_amount", project.BurnedAmount, entry.BurnedAmount))
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return err
	}
	return r.check(rep, verify.Check(fmt.Sprintf("project %d after burn", id), assertions...))
}

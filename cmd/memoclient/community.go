package main

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
)

// adminCmd runs a program-scoped setup instruction against program.
func adminCmd(env *appEnv, use, short, program string, run func(*client.Client, context.Context, solana.PublicKey) (client.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			target, err := c.ProgramByName(program)
			if err != nil {
				return err
			}
			out, err := run(c, cmd.Context(), target)
			return printOutcome(cmd, out, err, false)
		},
	}
}

// ===== chat

func chatCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "memo-chat commands",
	}
	cmd.AddCommand(
		adminCmd(env, "init-counter", "Initialize the global group counter", "chat", (*client.Client).InitGlobalCounter),
		adminCmd(env, "init-leaderboard", "Initialize the group burn leaderboard", "chat", (*client.Client).InitBurnLeaderboard),
		adminCmd(env, "clear-leaderboard", "Reset the group burn leaderboard", "chat", (*client.Client).ClearBurnLeaderboard),
		chatCreateCmd(env),
		chatSendCmd(env),
		chatBurnCmd(env),
	)
	return cmd
}

func chatCreateCmd(env *appEnv) *cobra.Command {
	var (
		p        client.GroupParams
		interval int64
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a chat group with the next group id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			if cmd.Flags().Changed("min-interval") {
				p.MinMemoInterval = &interval
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.CreateChatGroup(cmd.Context(), p)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVar(&p.Description, "description", "", "Group description")
	cmd.Flags().StringVar(&p.Image, "image", "", "Group image URL")
	cmd.Flags().StringSliceVar(&p.Tags, "tags", nil, "Comma separated tags")
	cmd.Flags().Int64Var(&interval, "min-interval", 0, "Per-sender cooldown in seconds")
	cmd.Flags().Uint64Var(&p.BurnTokens, "burn", constant.MinChatGroupCreateTokens, "Tokens to burn")
	return cmd
}

func chatSendCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <group-id> <message>",
		Short: "Send a message to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("group-id", args[0])
			if err != nil {
				return err
			}
			p := client.MessageParams{
				Message:  args[1],
				Receiver: optString(cmd, "receiver"),
				ReplyTo:  optString(cmd, "reply-to"),
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.SendToGroup(cmd.Context(), id, p)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().String("receiver", "", "Receiver public key")
	cmd.Flags().String("reply-to", "", "Signature of the message replied to")
	return cmd
}

func chatBurnCmd(env *appEnv) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "burn <group-id> <tokens>",
		Short: "Burn tokens for a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("group-id", args[0])
			if err != nil {
				return err
			}
			tokens, err := parseUint("tokens", args[1])
			if err != nil {
				return err
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.BurnForGroup(cmd.Context(), id, tokens, message)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Burn message")
	return cmd
}

// ===== project

func projectCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "memo-project commands",
	}
	cmd.AddCommand(
		adminCmd(env, "init-counter", "Initialize the global project counter", "project", (*client.Client).InitGlobalCounter),
		adminCmd(env, "init-leaderboard", "Initialize the project burn leaderboard", "project", (*client.Client).InitBurnLeaderboard),
		projectCreateCmd(env),
		projectUpdateCmd(env),
		projectBurnCmd(env),
	)
	return cmd
}

func projectCreateCmd(env *appEnv) *cobra.Command {
	var p client.ProjectParams
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project with the next project id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.CreateProject(cmd.Context(), p)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVar(&p.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&p.Image, "image", "", "Project image URL")
	cmd.Flags().StringVar(&p.Website, "website", "", "Project website")
	cmd.Flags().StringSliceVar(&p.Tags, "tags", nil, "Comma separated tags")
	cmd.Flags().Uint64Var(&p.BurnTokens, "burn", constant.MinProjectCreateTokens, "Tokens to burn")
	return cmd
}

func projectUpdateCmd(env *appEnv) *cobra.Command {
	var (
		burn uint64
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project; unset fields stay unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("project-id", args[0])
			if err != nil {
				return err
			}
			p := client.ProjectUpdateParams{
				Name:        optString(cmd, "name"),
				Description: optString(cmd, "description"),
				Image:       optString(cmd, "image"),
				Website:     optString(cmd, "website"),
				BurnTokens:  burn,
			}
			if cmd.Flags().Changed("tags") {
				p.Tags = &tags
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.UpdateProject(cmd.Context(), id, p)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("image", "", "New image URL")
	cmd.Flags().String("website", "", "New website")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "New comma separated tags")
	cmd.Flags().Uint64Var(&burn, "burn", constant.MinProjectUpdateTokens, "Tokens to burn")
	return cmd
}

func projectBurnCmd(env *appEnv) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "burn <project-id> <tokens>",
		Short: "Burn tokens for a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("project-id", args[0])
			if err != nil {
				return err
			}
			tokens, err := parseUint("tokens", args[1])
			if err != nil {
				return err
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.BurnForProject(cmd.Context(), id, tokens, message)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Burn message")
	return cmd
}

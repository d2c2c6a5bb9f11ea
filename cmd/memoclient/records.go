package main

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/memo"
)

// optString returns a pointer to the flag value when the flag was given.
func optString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func parseOwner(raw string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, merrors.New(merrors.ErrCodeValidation, "args", "owner must be a base58 public key", err)
	}
	return pk, nil
}

// ===== blog

func blogCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "memo-blog commands",
	}
	cmd.AddCommand(blogCreateCmd(env), blogUpdateCmd(env), blogBurnCmd(env), blogMintCmd(env))
	return cmd
}

func blogCreateCmd(env *appEnv) *cobra.Command {
	var p client.BlogParams
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create the signer's blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.CreateBlog(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().StringVar(&p.Description, "description", "", "Blog description")
	cmd.Flags().StringVar(&p.Image, "image", "", "Blog image URL")
	cmd.Flags().Uint64Var(&p.BurnTokens, "burn", constant.MinBlogBurnTokens, "Tokens to burn")
	return cmd
}

func blogUpdateCmd(env *appEnv) *cobra.Command {
	var burn uint64
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signer's blog; unset fields stay unchanged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := client.BlogUpdateParams{
				Name:        optString(cmd, "name"),
				Description: optString(cmd, "description"),
				Image:       optString(cmd, "image"),
				BurnTokens:  burn,
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.UpdateBlog(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("image", "", "New image URL")
	cmd.Flags().Uint64Var(&burn, "burn", constant.MinBlogBurnTokens, "Tokens to burn")
	return cmd
}

func blogBurnCmd(env *appEnv) *cobra.Command {
	var owner, message string
	cmd := &cobra.Command{
		Use:   "burn <tokens>",
		Short: "Burn tokens for a blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := parseUint("tokens", args[0])
			if err != nil {
				return err
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			target := c.Payer()
			if owner != "" {
				if target, err = parseOwner(owner); err != nil {
					return err
				}
			}
			out, err := c.BurnForBlog(cmd.Context(), target, tokens, message)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Blog owner, the signer when empty")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Burn message")
	return cmd
}

func blogMintCmd(env *appEnv) *cobra.Command {
	var owner, message string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens through a blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			target := c.Payer()
			if owner != "" {
				if target, err = parseOwner(owner); err != nil {
					return err
				}
			}
			out, err := c.MintForBlog(cmd.Context(), target, message)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Blog owner, the signer when empty")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Mint message")
	return cmd
}

// ===== profile

func profileCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "memo-profile commands",
	}
	cmd.AddCommand(profileCreateCmd(env), profileUpdateCmd(env), profileDeleteCmd(env), profileShowCmd(env))
	return cmd
}

func profileCreateCmd(env *appEnv) *cobra.Command {
	var p client.ProfileParams
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create the signer's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Username = args[0]
			p.AboutMe = optString(cmd, "about-me")
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.CreateProfile(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().StringVar(&p.Image, "image", "", "Profile image URL")
	cmd.Flags().String("about-me", "", "About me text")
	cmd.Flags().Uint64Var(&p.BurnTokens, "burn", constant.MinProfileBurnTokens, "Tokens to burn")
	return cmd
}

func profileUpdateCmd(env *appEnv) *cobra.Command {
	var (
		burn         uint64
		clearAboutMe bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signer's profile; unset fields stay unchanged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := client.ProfileUpdateParams{
				Username:   optString(cmd, "username"),
				Image:      optString(cmd, "image"),
				AboutMe:    memo.Keep[string](),
				BurnTokens: burn,
			}
			switch {
			case clearAboutMe && cmd.Flags().Changed("about-me"):
				return merrors.New(merrors.ErrCodeValidation, "args", "--about-me and --clear-about-me are exclusive", nil)
			case clearAboutMe:
				p.AboutMe = memo.Clear[string]()
			case cmd.Flags().Changed("about-me"):
				p.AboutMe = memo.Set(*optString(cmd, "about-me"))
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.UpdateProfile(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().String("username", "", "New username")
	cmd.Flags().String("image", "", "New image URL")
	cmd.Flags().String("about-me", "", "New about me text")
	cmd.Flags().BoolVar(&clearAboutMe, "clear-about-me", false, "Remove the about me text")
	cmd.Flags().Uint64Var(&burn, "burn", constant.MinProfileBurnTokens, "Tokens to burn")
	return cmd
}

func profileDeleteCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the signer's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.DeleteProfile(cmd.Context())
			return printOutcome(cmd, out, err, false)
		},
	}
}

// ProfileOutput is a fetched profile.
type ProfileOutput struct {
	Address     string    `yaml:"address" json:"address"`
	User        string    `yaml:"user" json:"user"`
	Username    string    `yaml:"username" json:"username"`
	Image       string    `yaml:"image,omitempty" json:"image,omitempty"`
	AboutMe     *string   `yaml:"about_me,omitempty" json:"about_me,omitempty"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	LastUpdated time.Time `yaml:"last_updated" json:"last_updated"`
}

func profileShowCmd(env *appEnv) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			target := c.Payer()
			if user != "" {
				if target, err = parseOwner(user); err != nil {
					return err
				}
			}
			p, err := c.Reader().Profile(cmd.Context(), target)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), ProfileOutput{
				Address:     c.Deriver().Profile(target, c.Programs().Profile).Address.String(),
				User:        p.User.String(),
				Username:    p.Username,
				Image:       p.Image,
				AboutMe:     p.AboutMe,
				CreatedAt:   time.Unix(p.CreatedAt, 0).UTC(),
				LastUpdated: time.Unix(p.LastUpdated, 0).UTC(),
			}, outputFormat(cmd))
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Profile owner, the signer when empty")
	return cmd
}

// ===== forum

func forumCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forum",
		Short: "memo-forum commands",
	}
	cmd.AddCommand(forumCreateCmd(env), forumBurnCmd(env), forumMintCmd(env))
	return cmd
}

func forumCreateCmd(env *appEnv) *cobra.Command {
	var p client.PostParams
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a post with the next post id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Title = args[0]
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.CreatePost(cmd.Context(), p)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVar(&p.Content, "content", "", "Post content")
	cmd.Flags().StringVar(&p.Image, "image", "", "Post image URL")
	cmd.Flags().Uint64Var(&p.BurnTokens, "burn", constant.MinPostBurnTokens, "Tokens to burn")
	return cmd
}

func forumBurnCmd(env *appEnv) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "burn <post-id> <tokens>",
		Short: "Burn tokens for a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("post-id", args[0])
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
			out, err := c.BurnForPost(cmd.Context(), id, tokens, message)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Reply message")
	return cmd
}

func forumMintCmd(env *appEnv) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "mint <post-id>",
		Short: "Mint tokens by replying to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("post-id", args[0])
			if err != nil {
				return err
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.MintForPost(cmd.Context(), id, message)
			return printOutcome(cmd, out, err, true)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Reply message")
	return cmd
}

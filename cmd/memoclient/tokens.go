package main

import (
	"github.com/spf13/cobra"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/constant"
)

func mintCmd(env *appEnv) *cobra.Command {
	var p client.MintParams
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint memo tokens through memo-mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.Mint(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.Flags().IntVar(&p.MemoLength, "memo-length", constant.MinMemoLength, "Length of the generated ASCII memo (69-800)")
	cmd.Flags().StringVar(&p.Memo, "memo", "", "Send this printable ASCII memo instead of a generated one")
	return cmd
}

func burnCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burn <tokens> [message]",
		Short: "Burn whole memo tokens through memo-burn",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := parseUint("tokens", args[0])
			if err != nil {
				return err
			}
			p := client.BurnParams{Tokens: tokens}
			if len(args) == 2 {
				p.Message = args[1]
			}
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.Burn(cmd.Context(), p)
			return printOutcome(cmd, out, err, false)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init-stats",
		Short: "Create the signer's burn statistics account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			out, err := c.InitBurnStats(cmd.Context())
			return printOutcome(cmd, out, err, false)
		},
	})
	return cmd
}

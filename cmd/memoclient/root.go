package main

import (
	"github.com/spf13/cobra"

	"github.com/pushchain/memo-clients/memoClient/constant"
)

func NewRootCmd() *cobra.Command {
	env := &appEnv{}
	rootCmd := &cobra.Command{
		Use:           "memoclient",
		Short:         "Client for the memo-* Solana programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&env.home, "home", constant.DefaultNodeHome, "Client home directory")
	rootCmd.PersistentFlags().IntVar(&env.logLevel, "log-level", -1, "Log level override (0 debug .. 5 panic)")
	rootCmd.PersistentFlags().StringP("output", "o", OutputFormatYAML, "Output format (yaml|json)")

	cobra.OnFinalize(env.close)

	InitRootCmd(rootCmd, env) // add subcommands

	return rootCmd
}

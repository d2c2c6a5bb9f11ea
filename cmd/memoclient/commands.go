package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

func InitRootCmd(rootCmd *cobra.Command, env *appEnv) {
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd(env))
	rootCmd.AddCommand(historyCmd(env))
	rootCmd.AddCommand(mintCmd(env))
	rootCmd.AddCommand(burnCmd(env))
	rootCmd.AddCommand(blogCmd(env))
	rootCmd.AddCommand(profileCmd(env))
	rootCmd.AddCommand(forumCmd(env))
	rootCmd.AddCommand(chatCmd(env))
	rootCmd.AddCommand(projectCmd(env))
	rootCmd.AddCommand(smokeCmd(env))
	rootCmd.AddCommand(batchMintCmd(env))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print memoclient version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Name:       %s\n", "memoclient")
			fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", Commit)
		},
	}
}

// ConfigOutput is the effective configuration of an invocation.
type ConfigOutput struct {
	Home       string            `yaml:"home" json:"home"`
	Manifest   string            `yaml:"manifest,omitempty" json:"manifest,omitempty"`
	Endpoint   string            `yaml:"endpoint" json:"endpoint"`
	Wallet     string            `yaml:"wallet" json:"wallet"`
	ProgramEnv string            `yaml:"program_env" json:"program_env"`
	Programs   map[string]string `yaml:"programs,omitempty" json:"programs,omitempty"`
	Client     interface{}       `yaml:"client" json:"client"`
	Warnings   []string          `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

func configCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved manifest and client configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ConfigOutput{
				Home:       env.home,
				Manifest:   env.manifest.Path(),
				Endpoint:   env.manifest.Endpoint(),
				Wallet:     env.manifest.WalletPath(),
				ProgramEnv: env.manifest.ProgramEnv(),
				Client:     env.cfg,
			}
			if err := env.manifest.Err(); err != nil {
				out.Warnings = append(out.Warnings, err.Error())
			}
			ids, err := env.manifest.AllProgramIDs()
			if err != nil {
				out.Warnings = append(out.Warnings, err.Error())
			} else {
				out.Programs = make(map[string]string, len(ids))
				for name, pk := range ids {
					out.Programs[name] = pk.String()
				}
			}
			return printOutput(cmd.OutOrStdout(), out, outputFormat(cmd))
		},
	})
	return cmd
}

// HistoryEntry is one run log record.
type HistoryEntry struct {
	Time          time.Time `yaml:"time" json:"time"`
	Operation     string    `yaml:"operation" json:"operation"`
	Status        string    `yaml:"status" json:"status"`
	Signature     string    `yaml:"signature,omitempty" json:"signature,omitempty"`
	Slot          uint64    `yaml:"slot,omitempty" json:"slot,omitempty"`
	Limit         uint32    `yaml:"compute_unit_limit,omitempty" json:"compute_unit_limit,omitempty"`
	UnitsConsumed uint64    `yaml:"units_consumed,omitempty" json:"units_consumed,omitempty"`
	BurnAmount    uint64    `yaml:"burn_amount,omitempty" json:"burn_amount,omitempty"`
	Hint          string    `yaml:"hint,omitempty" json:"hint,omitempty"`
	Error         string    `yaml:"error,omitempty" json:"error,omitempty"`
}

func historyCmd(env *appEnv) *cobra.Command {
	var (
		limit     int
		operation string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent submissions from the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !env.cfg.RunLogEnabled {
				return fmt.Errorf("run log is disabled (run_log_enabled=false)")
			}
			if _, err := env.openRunLog(); err != nil {
				return err
			}
			records, err := env.runLog.Recent(limit, operation)
			if err != nil {
				return err
			}
			out := make([]HistoryEntry, 0, len(records))
			for _, r := range records {
				out = append(out, HistoryEntry{
					Time:          r.CreatedAt,
					Operation:     r.Operation,
					Status:        r.Status,
					Signature:     r.Signature,
					Slot:          r.Slot,
					Limit:         r.ComputeUnitLimit,
					UnitsConsumed: r.UnitsConsumed,
					BurnAmount:    r.BurnAmount,
					Hint:          r.Hint,
					Error:         r.ErrorMsg,
				})
			}
			return printOutput(cmd.OutOrStdout(), out, outputFormat(cmd))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	cmd.Flags().StringVar(&operation, "op", "", "Only show this operation, e.g. burn_for_blog")
	return cmd
}

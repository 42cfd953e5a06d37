package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tolaworks/caps/cmd/capctl/commands"
	"github.com/tolaworks/caps/config"
	"github.com/tolaworks/caps/logger"
)

var rootCmd = &cobra.Command{
	Use:   "capctl",
	Short: "capctl - capability manifest checker and dispatch resolver",
	Long: `capctl - inspect capability manifests, check requirements, resolve dispatch.

A capability manifest declares capabilities with their defining sites,
tags entities with the capabilities they hold, states boolean
requirements, and lists specialization variants per contract.

Available commands:
  check    - Check a requirement against an entity's capability set
  resolve  - Resolve the winning specialization variant for an entity
  inspect  - Show registry statistics and occupied trie paths
  version  - Show version information

Examples:
  capctl check caps.toml --entity draft --requirement publishable
  capctl resolve caps.toml --entity draft --contract Render
  capctl inspect caps.toml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		commands.Config = cfg

		jsonOutput, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		verbosity, _ := cmd.Flags().GetCount("verbose")

		commands.JSONOutput = jsonOutput || cfg.Output.JSON
		commands.PlainOutput = plain || cfg.Output.Plain

		return logger.InitializeAtLevel(commands.JSONOutput, logger.VerbosityToLevel(verbosity))
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Structured JSON log output")
	rootCmd.PersistentFlags().Bool("plain", false, "Disable ANSI colors in output")

	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

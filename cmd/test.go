package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/server"
)

var testCmd = &cobra.Command{
	Use:   "test [provider]",
	Short: "Test provider connectivity",
	Long:  `Validate a provider's configuration and probe it with a minimal request. With no argument, every configured provider is tested.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	if err := ensureConfigExists(); err != nil {
		return err
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}

	client := ai.NewClient(server.BuildClientConfig(cfg), logger)

	var names []string
	if len(args) == 1 {
		names = []string{args[0]}
	} else {
		for _, p := range cfg.Providers {
			names = append(names, p.Name)
		}
	}

	if len(names) == 0 {
		color.Yellow("No providers configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	failures := 0
	for _, name := range names {
		result := client.TestConnection(ctx, name)
		if result.Success {
			color.Green("✓ %s: %s", result.Provider, result.Message)
		} else {
			color.Red("✗ %s: %s", result.Provider, result.Message)
			failures++
		}
	}

	if failures > 0 {
		return errConnectionTest
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/server"
)

var errConnectionTest = errors.New("one or more providers failed the connection test")

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List a provider's available models",
	Long:  `Query a provider's model listing endpoint. With no argument, the default provider is used.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	if err := ensureConfigExists(); err != nil {
		return err
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}

	client := ai.NewClient(server.BuildClientConfig(cfg), logger)

	providerName := ""
	if len(args) == 1 {
		providerName = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	models := client.AvailableModels(ctx, providerName)
	if len(models) == 0 {
		color.Yellow("No models returned")
		return nil
	}

	color.Blue("Available models:")
	for _, model := range models {
		fmt.Printf("  %s\n", model)
	}
	return nil
}

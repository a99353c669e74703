package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forumkit/aibot/internal/ai/providers"
	"github.com/forumkit/aibot/internal/config"
)

var errConfigRequired = errors.New("configuration required, run 'aibot config init'")

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the forum bot configuration.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration interactively",
	Long:  `Initialize configuration by prompting for provider and bot details.`,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration.`,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  `Validate the current configuration for errors.`,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	color.Blue("Forum AI Bot Configuration Setup")
	color.Yellow("Follow the prompts to configure your provider and bot identity.")

	reader := bufio.NewReader(os.Stdin)

	prompt := func(label string) string {
		fmt.Printf("%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	fmt.Printf("\nSupported providers: %s\n", strings.Join(providers.Names(), ", "))
	providerName := strings.ToLower(prompt("Provider Name"))
	apiKey := prompt("API Key")
	model := prompt("Default Model")
	baseURL := prompt("API Base URL (optional, blank for vendor default)")

	botUsername := prompt("\nBot Username (forum account slug)")
	botUserIDRaw := prompt("Bot User ID (forum account id)")
	botUserID, _ := strconv.ParseInt(botUserIDRaw, 10, 64)
	keywords := prompt("Trigger Keywords (comma separated, optional)")
	dbPath := prompt("Forum Database Path (blank for default)")

	serviceAPIKey := prompt("\nService API Key (optional, for event authentication)")

	cfg := &config.Config{
		Host:            config.DefaultHost,
		Port:            config.DefaultPort,
		APIKey:          serviceAPIKey,
		DatabasePath:    dbPath,
		DefaultProvider: providerName,
		Providers: []config.Provider{
			{
				Name:    providerName,
				APIBase: baseURL,
				APIKey:  apiKey,
				Model:   model,
			},
		},
		Bot: config.Bot{
			Username:        botUsername,
			UserID:          botUserID,
			TriggerKeywords: keywords,
		},
	}

	if err := cfgMgr.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	color.Green("Configuration saved successfully to: %s", cfgMgr.GetPath())
	color.Cyan("You can now start the bot with: aibot start")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if !cfgMgr.Exists() {
		color.Yellow("No configuration found. Run 'aibot config init' to create one.")
		return nil
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	color.Blue("Current Configuration:")
	fmt.Printf("  %-18s: %s\n", "Host", cfg.Host)
	fmt.Printf("  %-18s: %d\n", "Port", cfg.Port)
	fmt.Printf("  %-18s: %s\n", "Service API Key", maskString(cfg.APIKey))
	fmt.Printf("  %-18s: %s\n", "Database", cfg.DatabasePath)
	fmt.Printf("  %-18s: %s\n", "Default Provider", cfg.DefaultProvider)
	fmt.Printf("  %-18s: %s\n", "Config Path", cfgMgr.GetPath())

	fmt.Println("\nProviders:")
	for _, provider := range cfg.Providers {
		fmt.Printf("  - Name: %s\n", provider.Name)
		if provider.APIBase != "" {
			fmt.Printf("    API Base: %s\n", provider.APIBase)
		}
		fmt.Printf("    API Key: %s\n", maskString(provider.APIKey))
		fmt.Printf("    Model: %s\n", provider.Model)
		fmt.Println()
	}

	fmt.Println("Bot:")
	fmt.Printf("  %-18s: @%s (id %d)\n", "Account", cfg.Bot.Username, cfg.Bot.UserID)
	if cfg.Bot.TriggerKeywords != "" {
		fmt.Printf("  %-18s: %s\n", "Trigger Keywords", cfg.Bot.TriggerKeywords)
	}
	if len(cfg.Bot.AllowedForums) > 0 {
		fmt.Printf("  %-18s: %v\n", "Allowed Forums", cfg.Bot.AllowedForums)
	}
	fmt.Printf("  %-18s: %d posts / %d tokens\n", "History Budget", cfg.Bot.ReplyHistoryLimit, cfg.Bot.HistoryTokenBudget)
	fmt.Printf("  %-18s: %d\n", "Max Tool Rounds", cfg.Bot.MaxToolRounds)

	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if !cfgMgr.Exists() {
		return fmt.Errorf("no configuration found")
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var problems []string

	if len(cfg.Providers) == 0 {
		problems = append(problems, "no providers configured")
	}

	supported := providers.Names()
	for i, provider := range cfg.Providers {
		if provider.Name == "" {
			problems = append(problems, fmt.Sprintf("provider %d: name is required", i))
		} else if !slices.Contains(supported, provider.Name) {
			problems = append(problems, fmt.Sprintf("provider %d: unsupported provider %q", i, provider.Name))
		}
		if provider.APIKey == "" {
			problems = append(problems, fmt.Sprintf("provider %d: API key is required", i))
		}
		if provider.Name == "gemini" && provider.Model == "" {
			problems = append(problems, fmt.Sprintf("provider %d: gemini requires a model", i))
		}
	}

	if cfg.DefaultProvider == "" {
		problems = append(problems, "default provider is required")
	} else if _, ok := cfg.ProviderByName(cfg.DefaultProvider); !ok {
		problems = append(problems, fmt.Sprintf("default provider %q has no stored settings", cfg.DefaultProvider))
	}

	if cfg.Bot.Username == "" {
		problems = append(problems, "bot username is required")
	}
	if cfg.Bot.UserID == 0 {
		problems = append(problems, "bot user id is required")
	}

	if len(problems) > 0 {
		color.Red("Configuration validation failed:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("configuration validation failed")
	}

	color.Green("Configuration is valid!")
	return nil
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forumkit/aibot/internal/process"
	"github.com/forumkit/aibot/internal/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot service",
	Long:  `Start the forum bot service in the foreground.`,
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	setupLogging(verbose)

	if err := ensureConfigExists(); err != nil {
		return err
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}

	color.Green("Starting %s v%s...", AppName, Version)
	logger.Info("Starting server",
		"host", cfg.Host,
		"port", cfg.Port,
		"providers", len(cfg.Providers),
		"default_provider", cfg.DefaultProvider,
	)

	procMgr := process.NewManager(baseDir)
	if err := procMgr.WritePID(); err != nil {
		return err
	}
	defer procMgr.CleanupPID()

	srv := server.New(cfgMgr, logger)
	return srv.Start()
}

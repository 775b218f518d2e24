package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/clipdeck-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipdeck-api",
	Short: "ClipDeck API server",
	Long: `ClipDeck API - A video clipping and social publishing API

This API registers source videos by URL, cuts time-bounded clips out of
them with ffmpeg, and publishes the results to social platforms through
scripted browser sessions.

Features:
  • Source video registration with metadata resolution
  • Background clip trimming and thumbnail generation
  • Publishing to TikTok, Instagram, and YouTube Shorts
  • Scheduled posts with a cron-based dispatcher`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("config", "", "path to config file (default ./config/settings.yaml)")
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	if err := config.Init(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

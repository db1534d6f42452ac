package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/cinepost/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cinepost configuration",
		Long: `Commands for managing cinepost configuration.

The config file is stored at: ~/.config/cinepost/config.toml

Examples:
  cinepost config init              # Create default config file
  cinepost config show              # Display current configuration
  cinepost config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

The config file will be created at ~/.config/cinepost/config.toml
Edit it to set the bot token, channel id, and TMDB API key, or run
"cinepost setup" for a guided version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists() && !force {
				path, _ := config.ConfigPath()
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.ConfigPath()
			fmt.Printf("✓ Created config file: %s\n", path)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Set telegram.token, telegram.channel_id, and tmdb.api_key")
			fmt.Println("  2. Run 'cinepost run' to start the bot")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(redacted(cfg).ToTOML())
			return nil
		},
	}
}

// redacted masks secrets for display.
func redacted(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Telegram.Token != "" {
		out.Telegram.Token = "********"
	}
	if out.TMDB.APIKey != "" {
		out.TMDB.APIKey = "********"
	}
	return &out
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

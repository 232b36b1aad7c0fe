// Package cli provides the command-line interface for tickersheet.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantview/tickersheet/config"
)

// Run starts the CLI application.
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tickersheet",
		Short: "Tickersheet - market data extraction and normalization",
		Long: `Tickersheet fetches price history, financial statements, company
profiles and analyst data for stock symbols, normalizing everything into
clean tables that can be rendered or exported as CSV.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug || cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode.
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newFinancialsCmd(cfg))
	rootCmd.AddCommand(newProfileCmd(cfg))
	rootCmd.AddCommand(newDownloadCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Tickersheet v1.0.0")
			fmt.Println("Market data extraction and normalization")
		},
	}
}

// newConfigCmd creates the config command.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage tickersheet configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the persisted configuration file, creating it if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithInitialConfig(cfg))
			if err != nil {
				return err
			}
			fmt.Println(mgr.Path())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <json>",
		Short: "Replace the persisted configuration from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithInitialConfig(cfg))
			if err != nil {
				return err
			}
			if err := mgr.UpdateFromJSON(args[0]); err != nil {
				return err
			}
			fmt.Println("✅ Configuration updated")
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("directory validation failed: %w", err)
			}
			fmt.Println("✅ Configuration is valid")
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration.
func showConfig(cfg *config.Config) {
	fmt.Println("📋 Current Tickersheet Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("User Agent:           %s\n", cfg.UserAgent)
	if cfg.ProxyURL != "" {
		fmt.Printf("Proxy URL:            %s\n", cfg.ProxyURL)
	}
	fmt.Printf("Request Timeout:      %ds\n", cfg.TimeoutSeconds)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Cache TTL:            %dh\n", cfg.CacheTTLHours)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
}

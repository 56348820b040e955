package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Merith-TK/tftpd/internal/config"
	"github.com/Merith-TK/tftpd/internal/fs"
	"github.com/Merith-TK/tftpd/internal/server"
	"github.com/Merith-TK/tftpd/internal/tftplog"
	"github.com/Merith-TK/tftpd/internal/utils"
)

var (
	configFile string
	root       string
	bind       string
	timeout    string
	retries    int
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "tftpd [root-directory]",
	Short: "A TFTP (RFC 1350) server",
	Long: `tftpd serves and accepts files over TFTP.

Examples:
  tftpd ./data
  tftpd --bind=:69 --root=./data --timeout=3s --retries=5
  tftpd --config=tftpd.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "Server file root directory (default ./data)")
	rootCmd.PersistentFlags().StringVar(&bind, "bind", "", "UDP address to bind (default :69)")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "Per-block retransmit timeout (e.g. 3s)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "Max retransmits before giving up")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := loadConfiguration()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := applyCLIFlags(cfg); err != nil {
		return fmt.Errorf("failed to apply CLI flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger := tftplog.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting tftpd...")
	logger.Info("root=%s bind=%s timeout=%s retries=%d", cfg.Root, cfg.Bind, cfg.Timeout, cfg.MaxRetries)

	fileRoot, err := fs.NewRoot(cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to prepare root directory: %w", err)
	}

	manager := server.NewManager(cfg, logger, fileRoot)

	ctx, cancel := context.WithCancel(context.Background())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	utils.GracefulShutdown(ctx, cancel, logger, func() error {
		return manager.Stop()
	})

	return nil
}

func loadConfiguration() (*config.Config, error) {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironmentVariables()
	return cfg, nil
}

func applyCLIFlags(cfg *config.Config) error {
	if root != "" {
		cfg.Root = root
	}
	if bind != "" {
		cfg.Bind = bind
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if retries > 0 {
		cfg.MaxRetries = retries
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mua/config"
	"github.com/zostay/go-mua/internal/mlog"
)

var (
	rootCmd = &cobra.Command{
		Use:               "mimetree",
		Short:             "Inspect the MIME structure of mail messages",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	configPath string
	logLevel   string

	conf   = config.Default()
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "read settings from this sconf file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for recovered problems: debug, info, warn or error")
}

func setup(_ *cobra.Command, _ []string) error {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: mlog.ParseLevel(logLevel),
	}))

	if configPath == "" {
		return nil
	}

	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	conf = c

	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tential/gqlbody/internal/config"
	"github.com/tential/gqlbody/internal/server"
)

var (
	// Build information injected at build time
	version = "dev"
	commit  = "unknown"

	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "gqlbodyd",
		Short: "gqlbodyd decodes GraphQL-over-HTTP request bodies",
		Long: `gqlbodyd serves a GraphQL endpoint that decodes request bodies the way a
GraphQL server would before execution: application/json, application/graphql
and application/x-www-form-urlencoded bodies, optionally gzip or deflate
encoded, in utf-8 or utf16le.

The decoded query, variables and operationName are returned as JSON. Browsers
asking for text/html get the GraphiQL explorer instead.

Configuration is read from a YAML file (--config) and GQLBODY_* environment
variables.`,
		RunE: run,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (YAML format)")
}

func initConfig() {
	config.InitConfig(cfgFile)
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version": version,
		"commit":  commit,
	}).Info("gqlbodyd build information")

	srv, err := server.NewServer(cfg, logrus.NewEntry(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

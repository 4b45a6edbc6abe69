package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribehub/go-scribe/config"
	"github.com/scribehub/go-scribe/di"
)

var (
	cfgFile string
	baseURL string

	sdk *di.SDK
)

var rootCmd = &cobra.Command{
	Use:           "scribe",
	Short:         "Client for the Scribe publishing platform",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initSDK()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sdk == nil {
			return nil
		}
		return sdk.Shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default scribe.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "platform API base URL (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(articlesCmd)
	rootCmd.AddCommand(statsCmd)
}

// initSDK merges config file and SCRIBE_ environment overrides, then
// assembles the SDK.
func initSDK() error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.AddSource(config.NewFileSource(cfgFile, 10))
	} else {
		loader.AddSource(config.NewOptionalFileSource("scribe.yaml", 10))
	}
	loader.AddSource(config.NewEnvSource("SCRIBE", 20))
	if err := loader.Load(); err != nil {
		return err
	}

	cfg, err := di.LoadConfig(loader)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	sdk, err = di.New(cfg)
	return err
}

// printJSON renders a command result on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loginFromEnv authenticates when SCRIBE_EMAIL and SCRIBE_PASSWORD are set;
// read commands work anonymously otherwise.
func loginFromEnv(ctx context.Context) error {
	email, password := os.Getenv("SCRIBE_EMAIL"), os.Getenv("SCRIBE_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	if _, err := sdk.Auth.Login(ctx, authLoginRequest(email, password)); err != nil {
		return fmt.Errorf("login with SCRIBE_EMAIL failed: %w", err)
	}
	return nil
}

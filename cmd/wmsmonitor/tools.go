package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/secrets"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example TOML configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "wms-monitor.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.WriteExampleConfig(path); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	}

	secretsCmd = &cobra.Command{
		Use:   "secrets",
		Short: "Manage the encrypted secrets file",
	}

	secretsKeygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key for WMS_SECRETS_ENCRYPTION_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secrets.GenerateKey()
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	secretsSealCmd = &cobra.Command{
		Use:   "seal key=value...",
		Short: "Encrypt credentials into the secrets data directory",
		Long: `Encrypts the given key=value pairs with WMS_SECRETS_ENCRYPTION_KEY and writes
them to WMS_SECRETS_DATA_DIR, replacing the previous file. Keys are the names
the monitor resolves, e.g. servicenow-password or oracle-password.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parsePairs(args)
			if err != nil {
				return err
			}
			cfg := secrets.LoadConfigFromEnv()
			if err := secrets.Seal(cfg.EncryptionKey, cfg.DataDir, values); err != nil {
				return err
			}
			cmd.Printf("Sealed %d secrets into %s\n", len(values), cfg.DataDir)
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configInitCmd)
	secretsCmd.AddCommand(secretsKeygenCmd)
	secretsCmd.AddCommand(secretsSealCmd)
}

func parsePairs(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		values[key] = value
	}
	return values, nil
}

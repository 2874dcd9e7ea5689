package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/vsce-audit/pkg/adk"
	"github.com/user/vsce-audit/pkg/config"
	"github.com/user/vsce-audit/pkg/log"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (semgrep, marketplace, history, assistant)",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Assistant.APIKey != "" {
			cfg.Assistant.APIKey = "********"
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value, e.g. 'semgrep.timeout 120s'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		if err := saveConfig(cfg); err != nil {
			return err
		}
		log.Successf("%s = %s", args[0], args[1])
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the Gemini API key used by the triage assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			return fmt.Errorf("--key is required")
		}
		cmd.SilenceUsage = true
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Assistant.APIKey = key
		if err := saveConfig(cfg); err != nil {
			return err
		}
		log.Successf("API key saved")
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List the Gemini models available to the configured key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		p, err := adk.NewProvider(ctx, "gemini", cfg.GetAPIKey(), "")
		if err != nil {
			return err
		}
		if closer, ok := p.(interface{ Close() }); ok {
			defer closer.Close()
		}

		models, err := p.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("fetching models: %w", err)
		}
		for _, m := range models {
			mark := " "
			if m == cfg.Assistant.Model {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, m)
		}
		return nil
	},
}

func saveConfig(cfg *config.Config) error {
	if err := config.SaveConfig(ConfigPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func init() {
	setKeyCmd.Flags().StringP("key", "k", "", "API key")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)
	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(configCmd)
}

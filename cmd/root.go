package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/config"
	"github.com/user/vsce-audit/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "vsce-audit",
	Short: "Compliance scanner for VS Code extensions",
	Long: `vsce-audit scans a directory of unpacked VS Code extensions with semgrep,
checks licenses and marketplace publishers, scores each extension from 1 to 10
and writes JSON, CSV and HTML reports.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.DebugEnabled = DebugMode
	},
}

var (
	DebugMode  bool
	ConfigPath string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(ConfigPath)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Config file (default ~/.vsce-audit/config.yaml)")
}

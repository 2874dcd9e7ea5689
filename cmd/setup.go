package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/adk"
	"github.com/user/vsce-audit/pkg/log"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		in := bufio.NewScanner(os.Stdin)
		prompt := func(label string) string {
			fmt.Print(label + " > ")
			in.Scan()
			return strings.TrimSpace(in.Text())
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Println("vsce-audit setup")
		fmt.Println("----------------")

		fmt.Println("Step 1: semgrep executable")
		if path := prompt(fmt.Sprintf("Path [%s]", cfg.Semgrep.Path)); path != "" {
			cfg.Semgrep.Path = path
		}
		if resolved, err := exec.LookPath(cfg.Semgrep.Path); err != nil {
			log.Warnf("%s not found; scans will record 'semgrep not found in PATH' for every extension", cfg.Semgrep.Path)
		} else {
			log.Successf("Found semgrep at %s", resolved)
		}

		fmt.Println("\nStep 2: Gemini API key for the triage assistant (empty to skip)")
		apiKey := prompt("Key")
		if apiKey != "" {
			cfg.Assistant.APIKey = apiKey
			cfg.Assistant.Model = chooseModel(apiKey, cfg.Assistant.Model, prompt)
		}

		if err := saveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("----------------")
		log.Successf("Setup complete")
		fmt.Printf("Semgrep: %s\n", cfg.Semgrep.Path)
		fmt.Printf("Model:   %s\n", cfg.Assistant.Model)
		fmt.Println("You can now run 'vsce-audit scan <extensions_dir> <output_dir>'")
		return nil
	},
}

// chooseModel validates the key by listing models and lets the user pick one.
func chooseModel(apiKey, current string, prompt func(string) string) string {
	ctx := context.Background()
	p, err := adk.NewProvider(ctx, "gemini", apiKey, "")
	if err != nil {
		log.Warnf("Could not initialize provider: %v", err)
		return current
	}
	if closer, ok := p.(interface{ Close() }); ok {
		defer closer.Close()
	}

	models, err := p.ListModels(ctx)
	if err != nil || len(models) == 0 {
		log.Warnf("Could not fetch models: %v", err)
		if m := prompt(fmt.Sprintf("Model name [%s]", current)); m != "" {
			return m
		}
		return current
	}

	for i, m := range models {
		fmt.Printf("%d. %s\n", i+1, m)
	}
	idx, err := strconv.Atoi(prompt("Select model (number)"))
	if err != nil || idx < 1 || idx > len(models) {
		log.Warnf("Invalid selection, keeping %s", current)
		return current
	}
	return models[idx-1]
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

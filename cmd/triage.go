package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/adk"
	"github.com/user/vsce-audit/pkg/log"
	"github.com/user/vsce-audit/pkg/store"
	"github.com/user/vsce-audit/pkg/wrappers"
)

var triageCmd = &cobra.Command{
	Use:   "triage <output_dir>",
	Short: "Ask an AI assistant questions about a finished scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		outDir := args[0]

		results, err := wrappers.LoadScanResults(outDir)
		if err != nil {
			return fmt.Errorf("loading scan from %s: %w", outDir, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		log.Infof("Connecting to gemini (model: %s)...", cfg.Assistant.Model)
		provider, err := adk.NewProvider(ctx, "gemini", cfg.GetAPIKey(), cfg.Assistant.Model)
		if err != nil {
			return err
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}
		if p, ok := provider.(interface{ SetSystemPrompt(string) }); ok {
			p.SetSystemPrompt(adk.GetSystemPrompt(outDir))
		}

		agent := adk.NewAgent(provider)
		agent.RegisterTool(&wrappers.SummarizeReportTool{Results: results})
		agent.RegisterTool(&wrappers.ExtensionDetailTool{Results: results})
		agent.RegisterTool(&wrappers.CompareWithBaselineTool{Results: results})

		historyTool := &wrappers.ScoreHistoryTool{}
		if cfg.History.Enabled {
			if path, err := cfg.HistoryPath(); err == nil {
				if st, err := store.Open(ctx, path); err == nil {
					defer st.Close()
					historyTool.History = st
				} else {
					log.Warnf("Scan history unavailable: %v", err)
				}
			}
		}
		agent.RegisterTool(historyTool)

		in := bufio.NewScanner(os.Stdin)
		fmt.Println("\n---------------------------------------------------------")
		fmt.Printf("Loaded %d extension reports from %s.\n", len(results.Global.Reports), outDir)
		fmt.Println("Example: 'Which extensions are on the blocklist and why?'")
		fmt.Println("Example: 'Explain the score of ms-python.python'")
		fmt.Println("Type 'quit' or 'exit' to stop, 'reset' to clear the conversation.")
		fmt.Println("---------------------------------------------------------")

		for {
			fmt.Print("\n> ")
			if !in.Scan() {
				break
			}
			input := strings.TrimSpace(in.Text())
			switch input {
			case "quit", "exit":
				return nil
			case "reset":
				agent.Reset()
				continue
			case "":
				continue
			}

			fmt.Print("Assistant thinking... ")
			resp, err := agent.Chat(ctx, input, func(msg string) {
				fmt.Printf("\r\033[K[Progress]: %s\nAssistant thinking... ", msg)
			})
			fmt.Print("\r\033[K")

			if err != nil {
				log.Errorf("%v", err)
			} else {
				fmt.Printf("\n[Assistant]: %s\n", resp)
			}
		}
		return in.Err()
	},
}

func init() {
	rootCmd.AddCommand(triageCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/report"
	"github.com/user/vsce-audit/pkg/wrappers"
)

var diffCmd = &cobra.Command{
	Use:   "diff <baseline report.json> <current report.json>",
	Short: "Compare two consolidated reports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		baseline, err := report.LoadGlobal(args[0])
		if err != nil {
			return err
		}
		current, err := report.LoadGlobal(args[1])
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimRight(wrappers.FormatDiff(engine.CompareReports(baseline, current)), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

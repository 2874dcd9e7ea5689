package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/log"
	"github.com/user/vsce-audit/pkg/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [folder]",
	Short: "Show past scans, or the score history of one extension",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		limit, _ := cmd.Flags().GetInt("limit")
		prune, _ := cmd.Flags().GetDuration("prune")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := cfg.HistoryPath()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := store.Open(ctx, path)
		if err != nil {
			return err
		}
		defer st.Close()

		if prune > 0 {
			n, err := st.Prune(ctx, prune)
			if err != nil {
				return fmt.Errorf("pruning history: %w", err)
			}
			log.Successf("Removed %d runs older than %s", n, prune)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		if len(args) == 0 {
			runs, err := st.Runs(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				log.Infof("No scans recorded in %s", path)
				return nil
			}
			fmt.Fprintln(w, "RUN\tGENERATED\tSCANNED\tBLOCKLISTED\tSKIPPED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.RunID, r.GeneratedAt, r.ExtensionsScanned, r.Blocklisted, r.Errors)
			}
			return nil
		}

		recs, err := st.History(ctx, args[0], limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			log.Infof("No scans recorded for %s", args[0])
			return nil
		}
		fmt.Fprintln(w, "GENERATED\tSCORE\tLICENSE\tGDPR\tFINDINGS\tVERIFIED")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%t\n", r.GeneratedAt, r.FinalScore, r.License, r.GDPRStatus, r.Findings, r.Verified)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of rows")
	historyCmd.Flags().Duration("prune", 0, "Delete runs older than this age first (e.g. 2160h)")
	rootCmd.AddCommand(historyCmd)
}

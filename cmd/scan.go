package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/user/vsce-audit/pkg/config"
	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/log"
	"github.com/user/vsce-audit/pkg/report"
	"github.com/user/vsce-audit/pkg/scanner"
	"github.com/user/vsce-audit/pkg/store"
	"github.com/user/vsce-audit/pkg/wrappers"
)

var scanCmd = &cobra.Command{
	Use:   "scan <extensions_dir> <output_dir>",
	Short: "Scan every extension folder and write the reports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyScanFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		// a second interrupt kills the process
		go func() {
			<-ctx.Done()
			stop()
		}()
		return runScan(ctx, cfg, args[0], args[1])
	},
}

func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.Semgrep.Rules, _ = flags.GetString("rules")
	}
	if flags.Changed("semgrep") {
		cfg.Semgrep.Path, _ = flags.GetString("semgrep")
	}
	if flags.Changed("timeout") {
		cfg.Semgrep.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("offline") {
		cfg.Marketplace.Disabled, _ = flags.GetBool("offline")
	}
	if flags.Changed("history-db") {
		cfg.History.Path, _ = flags.GetString("history-db")
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.History.Enabled = false
	}
}

func runScan(ctx context.Context, cfg *config.Config, extensionsDir, outputDir string) error {
	semgrep := &wrappers.SemgrepWrapper{
		Path:    cfg.Semgrep.Path,
		Rules:   cfg.Semgrep.Rules,
		Timeout: cfg.Semgrep.Timeout,
	}
	cleanup, err := semgrep.Prepare()
	if err != nil {
		return err
	}
	defer cleanup()

	market := wrappers.NewMarketplaceWrapper(cfg.Marketplace.URL, cfg.Marketplace.Timeout)
	market.Disabled = cfg.Marketplace.Disabled
	if market.Disabled {
		log.Warnf("Marketplace lookup disabled, all publishers will be reported as unverified")
	}

	writer, err := report.NewWriter(outputDir)
	if err != nil {
		return err
	}

	s := &scanner.Scanner{
		Publishers: market,
		Analyzer:   semgrep,
		Sink:       writer,
	}
	batch, err := s.Run(ctx, extensionsDir)
	if errors.Is(err, context.Canceled) {
		log.Warnf("Scan interrupted; per-extension reports in %s are kept, consolidated reports were not written", outputDir)
	}
	if err != nil {
		return err
	}

	global := batch.Global(time.Now())
	if err := writer.WriteAll(global); err != nil {
		return err
	}
	recordHistory(ctx, cfg, global)

	reportPath, blocklistPath, dashboardPath := writer.Paths()
	log.Successf("Scan complete: %s", batch.Summary())
	log.Infof("Consolidated report: %s", reportPath)
	log.Infof("Blocklist: %s", blocklistPath)
	log.Infof("Dashboard: %s", dashboardPath)
	return nil
}

// recordHistory stores the run in the history database. Failures only warn.
func recordHistory(ctx context.Context, cfg *config.Config, g engine.GlobalReport) {
	if !cfg.History.Enabled {
		return
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		log.Warnf("Scan history not recorded: %v", err)
		return
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		log.Warnf("Scan history not recorded: %v", err)
		return
	}
	defer st.Close()

	runID := uuid.NewString()
	if err := st.RecordBatch(ctx, runID, g); err != nil {
		log.Warnf("Scan history not recorded: %v", err)
		return
	}
	log.Debugf("Recorded run %s in %s", runID, path)
}

func init() {
	scanCmd.Flags().String("rules", "", "Semgrep rules file (default: bundled rules)")
	scanCmd.Flags().String("semgrep", "", "Semgrep executable")
	scanCmd.Flags().Duration("timeout", config.DefaultSemgrepTimeout, "Semgrep timeout per extension")
	scanCmd.Flags().Bool("offline", false, "Skip the marketplace publisher lookup")
	scanCmd.Flags().String("history-db", "", "Scan history database (default ~/.vsce-audit/history.db)")
	scanCmd.Flags().Bool("no-history", false, "Do not record this scan in the history database")
	rootCmd.AddCommand(scanCmd)
}

package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantview/tickersheet/config"
	"github.com/quantview/tickersheet/internal/backoff"
	"github.com/quantview/tickersheet/internal/csvutil"
	"github.com/quantview/tickersheet/pkg/ticker"
)

// newDownloadCmd creates the download command.
func newDownloadCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [SYMBOL...]",
		Short: "Download price history for multiple symbols as CSV",
		Long: `Download price history for one or more symbols and export each
table as CSV. A symbol that fails never aborts the batch; its reason is
reported at the end.
Example: tickersheet download AAPL MSFT GOOG --period=1y`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, _ := cmd.Flags().GetString("period")
			interval, _ := cmd.Flags().GetString("interval")
			retries, _ := cmd.Flags().GetInt("retries")
			keepDays, _ := cmd.Flags().GetInt("keep-days")
			return runDownloadCommand(cfg, args, period, ticker.Interval(interval), retries, keepDays)
		},
	}

	cmd.Flags().String("period", "1y", "Named range to download")
	cmd.Flags().String("interval", "1d", "Bar width")
	cmd.Flags().Int("retries", 2, "Retry attempts per symbol on transport failures")
	cmd.Flags().Int("keep-days", 30, "Remove exports older than this many days before downloading (0 keeps everything)")

	return cmd
}

func runDownloadCommand(cfg *config.Config, symbols []string, period string, interval ticker.Interval, retries, keepDays int, tickerOpts ...ticker.Option) error {
	manager := csvutil.NewManager(cfg.DataDir)
	if keepDays > 0 {
		// Stale exports go before the batch starts; a failed cleanup
		// never blocks the downloads.
		if err := manager.CleanOldFiles(time.Duration(keepDays) * 24 * time.Hour); err != nil {
			logrus.WithError(err).Warn("stale export cleanup failed")
		}
	}

	retryCfg := backoff.DefaultConfig()
	retryCfg.MaxRetries = retries

	opts := ticker.DefaultHistoryOptions()
	opts.Period = period
	opts.Interval = interval

	failures := make(map[string]error)
	for _, symbol := range symbols {
		tk, err := ticker.New(symbol, append([]ticker.Option{ticker.WithConfig(cfg)}, tickerOpts...)...)
		if err != nil {
			failures[symbol] = err
			continue
		}

		var h ticker.History
		err = backoff.Retry(retryCfg, func() error {
			var fetchErr error
			h, fetchErr = tk.History(opts)
			return fetchErr
		})
		if err != nil {
			failures[tk.Symbol] = err
			logrus.WithError(err).WithField("symbol", tk.Symbol).Warn("download failed")
			continue
		}

		path, err := manager.WriteHistory(h)
		if err != nil {
			failures[tk.Symbol] = err
			continue
		}
		fmt.Printf("✅ %s: %d bars -> %s\n", tk.Symbol, len(h.Bars), path)
	}

	if len(failures) > 0 {
		fmt.Printf("\n⚠️  %d of %d symbols failed:\n", len(failures), len(symbols))
		for symbol, err := range failures {
			fmt.Printf("  %s: %v\n", symbol, err)
		}
	}
	return nil
}

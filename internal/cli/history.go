package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantview/tickersheet/config"
	"github.com/quantview/tickersheet/internal/csvutil"
	"github.com/quantview/tickersheet/pkg/ticker"
)

// newHistoryCmd creates the history command.
func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [SYMBOL]",
		Short: "Fetch normalized price history for a stock symbol",
		Long: `Fetch the price history for a symbol and print it as a table.
Example: tickersheet history AAPL --period=6mo --interval=1d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := historyOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			toCSV, _ := cmd.Flags().GetBool("csv")
			return runHistoryCommand(cfg, args[0], opts, toCSV)
		},
	}

	cmd.Flags().String("period", "1mo", "Named range: 1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max")
	cmd.Flags().String("interval", "1d", "Bar width: 1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo")
	cmd.Flags().String("start", "", "Start date YYYY-MM-DD (overrides --period)")
	cmd.Flags().String("end", "", "End date YYYY-MM-DD")
	cmd.Flags().Bool("no-adjust", false, "Keep raw prices instead of auto-adjusting to the adjusted close")
	cmd.Flags().Bool("back-adjust", false, "Back-adjust prices to mimic true historical prices")
	cmd.Flags().Bool("prepost", false, "Include pre- and post-market bars")
	cmd.Flags().Bool("rounding", false, "Round prices to the upstream's suggested precision")
	cmd.Flags().String("tz", "", "Re-localize the index to this timezone")
	cmd.Flags().Bool("no-actions", false, "Drop the dividend and split columns")
	cmd.Flags().Bool("csv", false, "Export the table as CSV under the data directory")

	return cmd
}

func historyOptionsFromFlags(cmd *cobra.Command) (ticker.HistoryOptions, error) {
	opts := ticker.DefaultHistoryOptions()

	opts.Period, _ = cmd.Flags().GetString("period")
	interval, _ := cmd.Flags().GetString("interval")
	opts.Interval = ticker.Interval(interval)

	if start, _ := cmd.Flags().GetString("start"); start != "" {
		ts, err := time.Parse("2006-01-02", start)
		if err != nil {
			return opts, fmt.Errorf("invalid start date, use YYYY-MM-DD: %w", err)
		}
		opts.Start = ts
	}
	if end, _ := cmd.Flags().GetString("end"); end != "" {
		ts, err := time.Parse("2006-01-02", end)
		if err != nil {
			return opts, fmt.Errorf("invalid end date, use YYYY-MM-DD: %w", err)
		}
		opts.End = ts
	}

	if noAdjust, _ := cmd.Flags().GetBool("no-adjust"); noAdjust {
		opts.AutoAdjust = false
	}
	opts.BackAdjust, _ = cmd.Flags().GetBool("back-adjust")
	opts.PrePost, _ = cmd.Flags().GetBool("prepost")
	opts.Rounding, _ = cmd.Flags().GetBool("rounding")
	opts.TZ, _ = cmd.Flags().GetString("tz")
	if noActions, _ := cmd.Flags().GetBool("no-actions"); noActions {
		opts.Actions = false
	}

	return opts, nil
}

func runHistoryCommand(cfg *config.Config, symbol string, opts ticker.HistoryOptions, toCSV bool) error {
	tk, err := ticker.New(symbol, ticker.WithConfig(cfg))
	if err != nil {
		return err
	}

	h, err := tk.History(opts)
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	if h.Empty() {
		fmt.Println(errorStyle.Render("No bars returned for " + tk.Symbol))
		return nil
	}

	fmt.Println(renderHistory(h))

	if toCSV {
		path, err := csvutil.NewManager(cfg.DataDir).WriteHistory(h)
		if err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
		fmt.Printf("💾 Exported %d bars to %s\n", len(h.Bars), path)
	}
	return nil
}

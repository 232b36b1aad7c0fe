package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantview/tickersheet/config"
	"github.com/quantview/tickersheet/pkg/ticker"
)

// newProfileCmd creates the profile command.
func newProfileCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [SYMBOL]",
		Short: "Show the company profile and analyst view for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCommand(cfg, args[0])
		},
	}
	return cmd
}

func runProfileCommand(cfg *config.Config, symbol string) error {
	tk, err := ticker.New(symbol, ticker.WithConfig(cfg))
	if err != nil {
		return err
	}
	f := tk.Fundamentals()

	if f.Info.Err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Profile unavailable: %v", f.Info.Err)))
	} else {
		fmt.Println(renderProfile(tk.Symbol, f.Info.Data))
	}

	if f.PriceTarget.Err == nil {
		pt := f.PriceTarget.Data
		fmt.Println(headerStyle.Render("Analyst Price Targets"))
		fmt.Printf("  Current: %s  Low: %s  Mean: %s  High: %s  (%d analysts)\n",
			formatCell(pt.Current), formatCell(pt.Low), formatCell(pt.Mean),
			formatCell(pt.High), pt.NumberOfAnalysts)
	}

	if f.Recommendations.Err == nil && len(f.Recommendations.Data) > 0 {
		recs := f.Recommendations.Data
		fmt.Println(headerStyle.Render("Recent Recommendations"))
		start := len(recs) - 5
		if start < 0 {
			start = 0
		}
		for _, rec := range recs[start:] {
			fmt.Printf("  %s  %-20s %s\n", rec.Date.Format("2006-01-02"), rec.Firm, rec.ToGrade)
		}
	}

	if isin, err := tk.ISIN(); err == nil {
		fmt.Printf("\nISIN: %s\n", isin)
	}
	return nil
}

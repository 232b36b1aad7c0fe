package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantview/tickersheet/config"
	"github.com/quantview/tickersheet/internal/csvutil"
	"github.com/quantview/tickersheet/pkg/ticker"
)

// newFinancialsCmd creates the financials command.
func newFinancialsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financials [SYMBOL]",
		Short: "Fetch financial statements for a stock symbol",
		Long: `Fetch a company's financial statements and print them as tables.
Example: tickersheet financials AAPL --statement=income`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, _ := cmd.Flags().GetString("statement")
			quarterly, _ := cmd.Flags().GetBool("quarterly")
			toCSV, _ := cmd.Flags().GetBool("csv")
			return runFinancialsCommand(cfg, args[0], statement, quarterly, toCSV)
		},
	}

	cmd.Flags().String("statement", "income", "Statement type: income, balance, cashflow")
	cmd.Flags().Bool("quarterly", false, "Show the quarterly history instead of the annual statement")
	cmd.Flags().Bool("csv", false, "Export the table as CSV under the data directory")

	return cmd
}

func runFinancialsCommand(cfg *config.Config, symbol, statement string, quarterly, toCSV bool) error {
	tk, err := ticker.New(symbol, ticker.WithConfig(cfg))
	if err != nil {
		return err
	}
	f := tk.Fundamentals()

	var name string
	var annual ticker.Section[ticker.Statement]
	var quarterlyTable ticker.Section[ticker.PeriodTable]
	switch statement {
	case "income":
		name = "Income Statement"
		annual = f.IncomeStatement
		quarterlyTable = f.QuarterlyIncomeStatement
	case "balance":
		name = "Balance Sheet"
		annual = f.BalanceSheet
		quarterlyTable = f.QuarterlyBalanceSheet
	case "cashflow":
		name = "Cash Flow"
		annual = f.CashFlow
		quarterlyTable = f.QuarterlyCashFlow
	default:
		return fmt.Errorf("unknown statement type %q (use income, balance or cashflow)", statement)
	}

	if quarterly {
		if quarterlyTable.Err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Quarterly %s unavailable: %v", name, quarterlyTable.Err)))
			return nil
		}
		fmt.Println(renderPeriodTable(tk.Symbol+" - Quarterly "+name, quarterlyTable.Data))
		return nil
	}

	if annual.Err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("%s unavailable: %v", name, annual.Err)))
		return nil
	}
	fmt.Println(renderStatement(tk.Symbol+" - "+name, annual.Data))

	if toCSV {
		path, err := csvutil.NewManager(cfg.DataDir).WriteStatement(tk.Symbol, name, annual.Data)
		if err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
		fmt.Printf("💾 Exported %s to %s\n", name, path)
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/jsontree"
	"github.com/quantview/tickersheet/pkg/ticker"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// maxRenderRows caps table output; full series belong in CSV exports.
const maxRenderRows = 15

func formatCell(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return v.Decimal.StringFixed(2)
}

// renderHistory renders the tail of a price table.
func renderHistory(h ticker.History) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s price history (%s)", h.Symbol, h.Interval)))
	sb.WriteString("\n")

	dateFormat := "2006-01-02"
	dateWidth := 10
	if h.Interval.Intraday() {
		dateFormat = time.RFC3339
		dateWidth = 25
	}

	sb.WriteString(columnStyle.Render(fmt.Sprintf("%-*s %10s %10s %10s %10s %12s %9s %8s",
		dateWidth, "Date", "Open", "High", "Low", "Close", "Volume", "Dividends", "Splits")))
	sb.WriteString("\n")

	bars := h.Bars
	if len(bars) > maxRenderRows {
		sb.WriteString(fmt.Sprintf("  ... %d earlier bars omitted ...\n", len(bars)-maxRenderRows))
		bars = bars[len(bars)-maxRenderRows:]
	}
	for _, b := range bars {
		sb.WriteString(fmt.Sprintf("%-*s %10s %10s %10s %10s %12d %9s %8s\n",
			dateWidth, b.Time.Format(dateFormat),
			formatCell(b.Open), formatCell(b.High), formatCell(b.Low), formatCell(b.Close),
			b.Volume, b.Dividends.String(), b.StockSplits.String()))
	}
	return sb.String()
}

// renderStatement renders an annual statement, indenting line items by
// their nesting depth.
func renderStatement(title string, st ticker.Statement) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")

	sb.WriteString(columnStyle.Render(fmt.Sprintf("%-44s", "Item")))
	for _, col := range st.Columns {
		sb.WriteString(columnStyle.Render(fmt.Sprintf(" %18s", col)))
	}
	sb.WriteString("\n")

	for _, row := range st.Rows {
		label := strings.Repeat("  ", row.Level) + row.Label
		sb.WriteString(fmt.Sprintf("%-44s", label))
		for _, v := range row.Values {
			sb.WriteString(fmt.Sprintf(" %18s", formatAmount(v)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderPeriodTable renders a quarterly statement history.
func renderPeriodTable(title string, pt ticker.PeriodTable) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")

	sb.WriteString(columnStyle.Render(fmt.Sprintf("%-44s", "Item")))
	for _, col := range pt.Columns {
		sb.WriteString(columnStyle.Render(fmt.Sprintf(" %18s", col.Format("2006-01-02"))))
	}
	sb.WriteString("\n")

	for _, row := range pt.Rows {
		sb.WriteString(fmt.Sprintf("%-44s", row.Label))
		for _, v := range row.Values {
			sb.WriteString(fmt.Sprintf(" %18s", formatAmount(v)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// profileFields is the subset of the merged profile worth showing in a
// terminal; the full map is available through the library.
var profileFields = []string{
	"shortName", "longName", "sector", "industry", "country", "website",
	"marketCap", "regularMarketPrice", "trailingPE", "dividendYield",
	"fullTimeEmployees",
}

func renderProfile(symbol string, info ticker.Info) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(symbol + " profile"))
	sb.WriteString("\n")

	for _, key := range profileFields {
		value, ok := info.Fields[key]
		if !ok || value.IsNull() {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", key+":", scalarString(value)))
	}
	if info.LogoURL != "" {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", "logo:", info.LogoURL))
	}
	return sb.String()
}

func scalarString(v *jsontree.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	if d, ok := v.Decimal(); ok {
		return d.String()
	}
	return fmt.Sprintf("%v", v.BoolOr(false))
}

func formatAmount(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	abs := v.Decimal.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000)):
		return v.Decimal.Div(decimal.NewFromInt(1_000_000_000)).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return v.Decimal.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + "M"
	default:
		return v.Decimal.String()
	}
}

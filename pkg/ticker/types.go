package ticker

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "ticker")

// Interval is a bar width accepted by the chart endpoint.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval90m Interval = "90m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval5d  Interval = "5d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
)

// Intraday reports whether bars of this width carry a time-of-day component.
func (i Interval) Intraday() bool {
	s := string(i)
	if s == "" {
		return false
	}
	if s == "1mo" || s == "3mo" {
		return false
	}
	return s[len(s)-1] == 'm' || s == "1h"
}

// Bar is one trading interval of the normalized price series. OHLC fields
// are nullable because the upstream emits null slots for halted sessions.
type Bar struct {
	Time        time.Time
	Open        decimal.NullDecimal
	High        decimal.NullDecimal
	Low         decimal.NullDecimal
	Close       decimal.NullDecimal
	AdjClose    decimal.NullDecimal
	Volume      int64
	Dividends   decimal.Decimal
	StockSplits decimal.Decimal
}

// ohlcNull reports whether every price field of the bar is null.
func (b Bar) ohlcNull() bool {
	return !b.Open.Valid && !b.High.Valid && !b.Low.Valid && !b.Close.Valid
}

// empty reports whether the bar carries no information at all.
func (b Bar) empty() bool {
	return b.ohlcNull() && b.Volume == 0 &&
		b.Dividends.IsZero() && b.StockSplits.IsZero()
}

// History is a time-indexed price table: sorted ascending, no duplicate
// timestamps, daily-and-coarser bars truncated to bare dates.
type History struct {
	Symbol   string
	Interval Interval
	Bars     []Bar
}

// Empty reports whether the table holds no bars.
func (h History) Empty() bool { return len(h.Bars) == 0 }

// Action is a dividend payment or stock split keyed by its effective date.
type Action struct {
	Date     time.Time
	Dividend decimal.Decimal
	Split    decimal.Decimal
}

// Dividends returns the non-zero dividend events in the series.
func (h History) Dividends() []Action {
	var out []Action
	for _, b := range h.Bars {
		if !b.Dividends.IsZero() {
			out = append(out, Action{Date: b.Time, Dividend: b.Dividends})
		}
	}
	return out
}

// Splits returns the non-zero split events in the series.
func (h History) Splits() []Action {
	var out []Action
	for _, b := range h.Bars {
		if !b.StockSplits.IsZero() {
			out = append(out, Action{Date: b.Time, Split: b.StockSplits})
		}
	}
	return out
}

// Actions returns every bar that carries a dividend or a split.
func (h History) Actions() []Action {
	var out []Action
	for _, b := range h.Bars {
		if !b.Dividends.IsZero() || !b.StockSplits.IsZero() {
			out = append(out, Action{Date: b.Time, Dividend: b.Dividends, Split: b.StockSplits})
		}
	}
	return out
}

// Section pairs a best-effort table with the reason it degraded, if it did.
// Data is always usable; Err is nil only when the section parsed cleanly.
type Section[T any] struct {
	Data T
	Err  error
}

// section records a degradation reason and logs it as a warning.
func section[T any](data T, err error) Section[T] {
	if err != nil {
		log.WithError(err).Warn("section degraded to empty")
	}
	return Section[T]{Data: data, Err: err}
}

// FlatTemplate is a statement template flattened into three index-aligned
// sequences: trailing-period keys, annual keys, and nesting depth per slot.
type FlatTemplate struct {
	TTMKeys    []string
	AnnualKeys []string
	Levels     []int
}

// Len returns the number of template slots.
func (t FlatTemplate) Len() int { return len(t.Levels) }

// MetricRow is one metric's dated observations, keyed by as-of date.
type MetricRow struct {
	Key    string
	Values map[string]decimal.Decimal
}

// StatementRow is one line item of an assembled statement. Label and Level
// together identify the row; the same label can recur at different depths.
type StatementRow struct {
	Label  string
	Level  int
	Values []decimal.NullDecimal // aligned with Statement.Columns
}

// Statement is a presentation-ordered financial statement table.
type Statement struct {
	Columns []string
	Rows    []StatementRow
}

// Empty reports whether the statement holds no rows.
func (s Statement) Empty() bool { return len(s.Rows) == 0 }

package ticker

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/jsontree"
)

// outageBanner is the literal the upstream serves while the whole site is
// down for maintenance.
const outageBanner = "Will be right back"

// Epoch for "max" ranges: 1900-01-01 UTC.
const maxRangeStart = -2208988800

// HistoryOptions controls a price history request.
type HistoryOptions struct {
	// Period is a named range: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y,
	// ytd, max. Ignored when Start is set.
	Period string
	Start  time.Time
	End    time.Time

	Interval Interval

	// PrePost includes pre- and post-market bars for intraday intervals.
	PrePost bool

	// AutoAdjust rewrites OHLC so Close always equals the adjusted close.
	// BackAdjust scales OHLC to mimic true historical prices. AutoAdjust
	// wins when both are set.
	AutoAdjust bool
	BackAdjust bool

	// Rounding rounds prices to the precision the upstream suggests.
	Rounding bool

	// TZ optionally re-localizes the index to a caller-supplied zone.
	TZ string

	// Actions keeps the Dividends and Stock Splits columns populated.
	Actions bool
}

// DefaultHistoryOptions mirrors the common case: one month of daily bars,
// adjusted, with corporate actions included.
func DefaultHistoryOptions() HistoryOptions {
	return HistoryOptions{
		Period:     "1mo",
		Interval:   Interval1d,
		AutoAdjust: true,
		Actions:    true,
	}
}

func (o HistoryOptions) chartParams() map[string]string {
	params := make(map[string]string)

	period := strings.ToLower(o.Period)
	if !o.Start.IsZero() || period == "" || period == "max" {
		start := int64(maxRangeStart)
		if !o.Start.IsZero() {
			start = o.Start.Unix()
		}
		end := time.Now().Unix()
		if !o.End.IsZero() {
			end = o.End.Unix()
		}
		params["period1"] = strconv.FormatInt(start, 10)
		params["period2"] = strconv.FormatInt(end, 10)
	} else {
		params["range"] = period
	}

	interval := Interval(strings.ToLower(string(o.Interval)))
	if interval == "" {
		interval = Interval1d
	}
	// The upstream silently serves the wrong bar width for 30m requests,
	// so ask for 15m and resample after parsing.
	if interval == Interval30m {
		interval = Interval15m
	}
	params["interval"] = string(interval)
	params["includePrePost"] = strconv.FormatBool(o.PrePost)
	params["events"] = "div,splits"
	return params
}

// History fetches and normalizes the price series for the ticker's symbol.
//
// The table contract is batch-friendly: the returned History is always
// usable, degrading to empty with the reason in err. Only a transport
// failure or the upstream outage banner is fatal in the usual sense; a
// per-symbol "no data" condition comes back as ErrNoData alongside the
// empty table.
func (t *Ticker) History(opts HistoryOptions) (History, error) {
	empty := History{Symbol: t.Symbol, Interval: opts.Interval}

	body, err := t.client.text(t.quoteAPIURL+"/v8/finance/chart/"+t.Symbol, opts.chartParams())
	if err != nil {
		return empty, err
	}
	if strings.Contains(body, outageBanner) {
		return empty, ErrServiceUnavailable
	}

	tree, err := jsontree.Parse([]byte(body))
	if err != nil {
		return empty, t.recordErr(ErrNoData)
	}

	chart := tree.Get("chart")
	if desc, ok := chart.Get("error", "description").Str(); ok {
		return empty, t.recordErr(errors.New(desc))
	}
	result := chart.Get("result").Index(0)
	if result.IsNull() {
		return empty, t.recordErr(ErrNoData)
	}

	bars, err := parseQuotes(result)
	if err != nil {
		return empty, t.recordErr(ErrNoData)
	}

	requested := Interval(strings.ToLower(string(opts.Interval)))
	if requested == Interval30m {
		bars = resample(bars, 30*time.Minute)
	}

	if opts.AutoAdjust {
		if bars, err = autoAdjust(bars); err != nil {
			return empty, t.recordErr(&FieldError{Field: "auto adjust", Err: err})
		}
	} else if opts.BackAdjust {
		if bars, err = backAdjust(bars); err != nil {
			return empty, t.recordErr(&FieldError{Field: "back adjust", Err: err})
		}
	}

	if opts.Rounding {
		hint, ok := result.Get("meta", "priceHint").Int()
		if !ok {
			hint = 2
		}
		bars = roundBars(bars, int32(hint))
	}

	// Quote rows that never traded carry nothing worth keeping.
	kept := bars[:0]
	for _, b := range bars {
		if !b.ohlcNull() {
			kept = append(kept, b)
		}
	}
	bars = kept

	dividends, splits := parseActions(result)
	bars = mergeActions(bars, dividends, splits)

	bars = localizeIndex(bars, requested, result.Get("meta", "exchangeTimezoneName").StringOr("UTC"), opts.TZ)
	bars = dedupeKeepLast(bars)

	if !opts.Actions {
		for i := range bars {
			bars[i].Dividends = decimal.Decimal{}
			bars[i].StockSplits = decimal.Decimal{}
		}
	}

	h := History{Symbol: t.Symbol, Interval: requested, Bars: bars}
	t.mu.Lock()
	t.history = &h
	t.mu.Unlock()
	return h, nil
}

// parseQuotes builds the base bar slice from the chart result: one row per
// timestamp position, sorted ascending, adjusted close defaulting to the
// unadjusted close when the upstream omits it.
func parseQuotes(result *jsontree.Value) ([]Bar, error) {
	timestamps := result.Get("timestamp").Arr()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("chart result carries no timestamps")
	}

	quote := result.Get("indicators", "quote").Index(0)
	opens := quote.Get("open")
	highs := quote.Get("high")
	lows := quote.Get("low")
	closes := quote.Get("close")
	volumes := quote.Get("volume")

	adjcloses := result.Get("indicators", "adjclose").Index(0).Get("adjclose")
	hasAdj := adjcloses.Len() > 0

	bars := make([]Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		sec, ok := ts.Int()
		if !ok {
			continue
		}

		bar := Bar{
			Time:  time.Unix(sec, 0).UTC(),
			Open:  opens.Index(i).NullDecimal(),
			High:  highs.Index(i).NullDecimal(),
			Low:   lows.Index(i).NullDecimal(),
			Close: closes.Index(i).NullDecimal(),
		}
		if v, ok := volumes.Index(i).Int(); ok && v > 0 {
			bar.Volume = v
		}
		if hasAdj {
			bar.AdjClose = adjcloses.Index(i).NullDecimal()
		} else {
			bar.AdjClose = bar.Close
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// resample buckets bars into fixed windows: Open is the first sub-bar's,
// High the max, Low the min, Close and AdjClose the last, Volume the sum,
// Dividends and Stock Splits the max. Input must be sorted ascending.
func resample(bars []Bar, window time.Duration) []Bar {
	if len(bars) == 0 {
		return bars
	}

	var out []Bar
	for _, b := range bars {
		start := b.Time.Truncate(window)
		if len(out) == 0 || !out[len(out)-1].Time.Equal(start) {
			b.Time = start
			out = append(out, b)
			continue
		}

		agg := &out[len(out)-1]
		agg.High = maxND(agg.High, b.High)
		agg.Low = minND(agg.Low, b.Low)
		if b.Close.Valid {
			agg.Close = b.Close
		}
		if b.AdjClose.Valid {
			agg.AdjClose = b.AdjClose
		}
		agg.Volume += b.Volume
		if b.Dividends.GreaterThan(agg.Dividends) {
			agg.Dividends = b.Dividends
		}
		if b.StockSplits.GreaterThan(agg.StockSplits) {
			agg.StockSplits = b.StockSplits
		}
	}
	return out
}

func maxND(a, b decimal.NullDecimal) decimal.NullDecimal {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	case b.Decimal.GreaterThan(a.Decimal):
		return b
	default:
		return a
	}
}

func minND(a, b decimal.NullDecimal) decimal.NullDecimal {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	case b.Decimal.LessThan(a.Decimal):
		return b
	default:
		return a
	}
}

// autoAdjust rewrites OHLC so Close equals the adjusted close: each price
// is scaled by AdjClose/Close for its row.
func autoAdjust(bars []Bar) ([]Bar, error) {
	for i, b := range bars {
		if !b.Close.Valid || !b.AdjClose.Valid {
			continue
		}
		if b.Close.Decimal.IsZero() {
			return nil, fmt.Errorf("close is zero at %s", b.Time.Format(time.RFC3339))
		}
		scale := b.AdjClose.Decimal.Div(b.Close.Decimal)
		bars[i].Open = scaleND(b.Open, scale)
		bars[i].High = scaleND(b.High, scale)
		bars[i].Low = scaleND(b.Low, scale)
		bars[i].Close = b.AdjClose
		bars[i].AdjClose = b.AdjClose
	}
	return bars, nil
}

// backAdjust scales OHLC by AdjClose/Close to approximate true historical
// prices.
func backAdjust(bars []Bar) ([]Bar, error) {
	for i, b := range bars {
		if !b.Close.Valid || !b.AdjClose.Valid {
			continue
		}
		if b.Close.Decimal.IsZero() {
			return nil, fmt.Errorf("close is zero at %s", b.Time.Format(time.RFC3339))
		}
		scale := b.AdjClose.Decimal.Div(b.Close.Decimal)
		bars[i].Open = scaleND(b.Open, scale)
		bars[i].High = scaleND(b.High, scale)
		bars[i].Low = scaleND(b.Low, scale)
		bars[i].Close = scaleND(b.Close, scale)
		bars[i].AdjClose = bars[i].Close
	}
	return bars, nil
}

func scaleND(v decimal.NullDecimal, scale decimal.Decimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NullDecimal{Decimal: v.Decimal.Mul(scale), Valid: true}
}

func roundBars(bars []Bar, places int32) []Bar {
	round := func(v decimal.NullDecimal) decimal.NullDecimal {
		if !v.Valid {
			return v
		}
		return decimal.NullDecimal{Decimal: v.Decimal.Round(places), Valid: true}
	}
	for i, b := range bars {
		bars[i].Open = round(b.Open)
		bars[i].High = round(b.High)
		bars[i].Low = round(b.Low)
		bars[i].Close = round(b.Close)
		bars[i].AdjClose = round(b.AdjClose)
	}
	return bars
}

// parseActions reads the dividend and split event maps off a chart result.
// Splits come back as a ratio of numerator over denominator.
func parseActions(result *jsontree.Value) (dividends, splits map[int64]decimal.Decimal) {
	dividends = make(map[int64]decimal.Decimal)
	splits = make(map[int64]decimal.Decimal)

	events := result.Get("events")
	for _, ev := range events.Get("dividends").Obj() {
		date, ok := ev.Get("date").Int()
		if !ok {
			continue
		}
		if amount, ok := ev.Get("amount").Decimal(); ok {
			dividends[date] = amount
		}
	}
	for _, ev := range events.Get("splits").Obj() {
		date, ok := ev.Get("date").Int()
		if !ok {
			continue
		}
		num, numOK := ev.Get("numerator").Decimal()
		den, denOK := ev.Get("denominator").Decimal()
		if !numOK || !denOK || den.IsZero() {
			continue
		}
		splits[date] = num.Div(den)
	}
	return dividends, splits
}

// mergeActions attaches corporate actions to their bars, creating a price-
// less bar for any event date the quote series does not cover. Missing
// entries stay zero.
func mergeActions(bars []Bar, dividends, splits map[int64]decimal.Decimal) []Bar {
	byTime := make(map[int64]int, len(bars))
	for i, b := range bars {
		byTime[b.Time.Unix()] = i
	}

	attach := func(date int64) *Bar {
		if i, ok := byTime[date]; ok {
			return &bars[i]
		}
		bars = append(bars, Bar{Time: time.Unix(date, 0).UTC()})
		byTime[date] = len(bars) - 1
		return &bars[len(bars)-1]
	}

	for date, amount := range dividends {
		attach(date).Dividends = amount
	}
	for date, ratio := range splits {
		attach(date).StockSplits = ratio
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

// localizeIndex converts the UTC index to the exchange's local zone for
// intraday intervals, or truncates to a bare date for daily and coarser
// ones. A caller-supplied zone, when given, wins over the exchange zone.
func localizeIndex(bars []Bar, interval Interval, exchangeTZ, callerTZ string) []Bar {
	loc, err := time.LoadLocation(exchangeTZ)
	if err != nil {
		log.WithField("tz", exchangeTZ).Warn("unknown exchange timezone, keeping UTC")
		loc = time.UTC
	}
	if callerTZ != "" {
		if callerLoc, err := time.LoadLocation(callerTZ); err == nil {
			loc = callerLoc
		} else {
			log.WithField("tz", callerTZ).Warn("unknown caller timezone, using exchange zone")
		}
	}

	for i, b := range bars {
		local := b.Time.In(loc)
		if interval.Intraday() {
			bars[i].Time = local
			continue
		}
		y, m, d := local.Date()
		bars[i].Time = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return bars
}

// dedupeKeepLast removes empty rows and collapses duplicate timestamps,
// keeping the last occurrence of each.
func dedupeKeepLast(bars []Bar) []Bar {
	lastAt := make(map[int64]int, len(bars))
	for i, b := range bars {
		if b.empty() {
			continue
		}
		lastAt[b.Time.Unix()] = i
	}

	out := make([]Bar, 0, len(lastAt))
	for i, b := range bars {
		if idx, ok := lastAt[b.Time.Unix()]; ok && idx == i {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

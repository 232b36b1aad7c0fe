package ticker

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/jsontree"
)

// Fundamentals is the full set of company data sections. Every section is
// fetched and normalized independently: one section failing to parse leaves
// the others intact, with the reason kept on the section itself.
type Fundamentals struct {
	IncomeStatement Section[Statement]
	BalanceSheet    Section[Statement]
	CashFlow        Section[Statement]

	QuarterlyIncomeStatement Section[PeriodTable]
	QuarterlyBalanceSheet    Section[PeriodTable]
	QuarterlyCashFlow        Section[PeriodTable]

	Earnings       Section[Earnings]
	Info           Section[Info]
	Sustainability Section[Sustainability]
	Calendar       Section[Calendar]

	Recommendations Section[[]Recommendation]

	MajorHolders         Section[[][2]string]
	InstitutionalHolders Section[[]HolderRow]
	MutualFundHolders    Section[[]HolderRow]

	AnalystTrend      Section[[]TrendPeriod]
	PriceTarget       Section[PriceTarget]
	EarningsEstimates Section[[]EarningsEstimate]
	RevenueEstimates  Section[[]RevenueEstimate]
}

// PeriodTable is a statement keyed by reporting period end date, one row
// per line item. Used for the quarterly statement histories.
type PeriodTable struct {
	Columns []time.Time
	Rows    []LabeledRow
}

// LabeledRow is one line item with values aligned to the table's columns.
type LabeledRow struct {
	Label  string
	Values []decimal.NullDecimal
}

// Empty reports whether the table holds no rows.
func (p PeriodTable) Empty() bool { return len(p.Rows) == 0 }

// EarningsPeriod is one reported period of the earnings chart.
type EarningsPeriod struct {
	Period   string
	Revenue  decimal.NullDecimal
	Earnings decimal.NullDecimal
}

// Earnings is the yearly and quarterly earnings chart.
type Earnings struct {
	Currency  string
	Yearly    []EarningsPeriod
	Quarterly []EarningsPeriod
}

// Info is the merged company profile: every scalar the summary stores
// expose, plus a best-effort logo URL derived from the website field.
type Info struct {
	Fields  map[string]*jsontree.Value
	LogoURL string
}

// ScoreEntry is one named sustainability score.
type ScoreEntry struct {
	Name  string
	Value *jsontree.Value
}

// Sustainability carries the ESG scalar scores with their rating period.
type Sustainability struct {
	Period string
	Scores []ScoreEntry
}

// Calendar is the upcoming earnings event summary.
type Calendar struct {
	EarningsDates []time.Time
	EarningsAvg   decimal.NullDecimal
	EarningsLow   decimal.NullDecimal
	EarningsHigh  decimal.NullDecimal
	RevenueAvg    decimal.NullDecimal
	RevenueLow    decimal.NullDecimal
	RevenueHigh   decimal.NullDecimal
}

// Recommendation is one analyst upgrade/downgrade event.
type Recommendation struct {
	Date      time.Time
	Firm      string
	ToGrade   string
	FromGrade string
	Action    string
}

// Fundamentals fetches every company data section, normalizing each one
// independently. The result is cached on the ticker; the first call does
// the network work.
func (t *Ticker) Fundamentals() *Fundamentals {
	t.mu.Lock()
	if t.fundamentals != nil {
		defer t.mu.Unlock()
		return t.fundamentals
	}
	t.mu.Unlock()

	f := &Fundamentals{}
	pageURL := t.scrapeURL + "/" + t.Symbol

	// Summary page: info, sustainability, calendar, recommendations.
	summary, err := t.client.fetchStores(pageURL, nil)
	if err != nil {
		f.Info = section(Info{}, &FieldError{Field: "info", Err: err})
		f.Sustainability = section(Sustainability{}, &FieldError{Field: "sustainability", Err: err})
		f.Calendar = section(Calendar{}, &FieldError{Field: "calendar", Err: err})
		f.Recommendations = section[[]Recommendation](nil, &FieldError{Field: "recommendations", Err: err})
	} else {
		store := summary.Get("QuoteSummaryStore")
		f.Info = section(parseInfo(store), nil)
		f.Sustainability = parseSustainability(store)
		f.Calendar = parseCalendar(store)
		f.Recommendations = parseRecommendations(store)
	}

	// Financials page: annual statements, quarterly histories, earnings.
	financials, err := t.client.fetchStores(pageURL+"/financials", nil)
	if err != nil {
		f.IncomeStatement = section(Statement{}, &FieldError{Field: "income statement", Err: err})
		f.QuarterlyIncomeStatement = section(PeriodTable{}, &FieldError{Field: "quarterly income statement", Err: err})
		f.QuarterlyBalanceSheet = section(PeriodTable{}, &FieldError{Field: "quarterly balance sheet", Err: err})
		f.QuarterlyCashFlow = section(PeriodTable{}, &FieldError{Field: "quarterly cash flow", Err: err})
		f.Earnings = section(Earnings{}, &FieldError{Field: "earnings", Err: err})
	} else {
		f.IncomeStatement = assembleFromStores(financials, "income statement", true)

		quote := financials.Get("QuoteSummaryStore")
		f.QuarterlyIncomeStatement = parsePeriodTable(quote, "incomeStatementHistoryQuarterly", "incomeStatementHistory")
		f.QuarterlyBalanceSheet = parsePeriodTable(quote, "balanceSheetHistoryQuarterly", "balanceSheetStatements")
		f.QuarterlyCashFlow = parsePeriodTable(quote, "cashflowStatementHistoryQuarterly", "cashflowStatements")
		f.Earnings = parseEarnings(quote)
	}

	// Balance sheet and cash flow pages carry their own template stores.
	if stores, err := t.client.fetchStores(pageURL+"/balance-sheet", nil); err != nil {
		f.BalanceSheet = section(Statement{}, &FieldError{Field: "balance sheet", Err: err})
	} else {
		f.BalanceSheet = assembleFromStores(stores, "balance sheet", false)
	}
	if stores, err := t.client.fetchStores(pageURL+"/cash-flow", nil); err != nil {
		f.CashFlow = section(Statement{}, &FieldError{Field: "cash flow", Err: err})
	} else {
		f.CashFlow = assembleFromStores(stores, "cash flow", true)
	}

	// Holders page is plain HTML tables.
	f.MajorHolders, f.InstitutionalHolders, f.MutualFundHolders = t.fetchHolders(pageURL + "/holders")

	// Analysis page: trend, price targets, estimates.
	t.fetchAnalysis(pageURL+"/analysis", f)

	t.mu.Lock()
	t.fundamentals = f
	t.mu.Unlock()
	return f
}

// assembleFromStores runs the template-and-timeseries pipeline for one
// statement type, degrading to an empty statement when the stores are
// missing or malformed.
func assembleFromStores(stores *jsontree.Value, name string, includeTTM bool) Section[Statement] {
	tplStore := stores.Get("FinancialTemplateStore")
	if tplStore.IsNull() {
		return section(Statement{}, &FieldError{
			Field: name,
			Err:   fmt.Errorf("financial template store missing"),
		})
	}

	tpl := buildTemplate(tplStore)
	if tpl.Len() == 0 {
		return section(Statement{}, &FieldError{
			Field: name,
			Err:   fmt.Errorf("financial template is empty"),
		})
	}

	ttm, annual := splitTimeSeries(stores.Get("QuoteTimeSeriesStore"))
	return section(assembleStatement(tpl, ttm, annual, includeTTM), nil)
}

// parsePeriodTable turns one quarterly statement history into a table:
// endDate becomes the column key, maxAge is dropped, sentinel "-" strings
// become nulls, and row labels are humanized.
func parsePeriodTable(store *jsontree.Value, historyKey, listKey string) Section[PeriodTable] {
	records := store.Get(historyKey, listKey).Arr()
	if len(records) == 0 {
		return section(PeriodTable{}, &FieldError{
			Field: historyKey,
			Err:   fmt.Errorf("statement history missing"),
		})
	}

	var table PeriodTable
	var labels []string
	seen := make(map[string]struct{})
	cells := make(map[string][]decimal.NullDecimal)

	for _, record := range records {
		endDate, ok := parseEndDate(record.Get("endDate"))
		if !ok {
			continue
		}
		col := len(table.Columns)
		table.Columns = append(table.Columns, endDate)

		for key, value := range record.Obj() {
			if key == "endDate" || key == "maxAge" {
				continue
			}
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				labels = append(labels, key)
				cells[key] = make([]decimal.NullDecimal, len(records))
			}
			if s, isStr := value.Str(); isStr && s == "-" {
				continue // sentinel for missing
			}
			cells[key][col] = value.NullDecimal()
		}
	}

	sort.Strings(labels)
	for _, key := range labels {
		table.Rows = append(table.Rows, LabeledRow{
			Label:  camelToTitle(key),
			Values: cells[key][:len(table.Columns)],
		})
	}
	return section(table, nil)
}

// parseEndDate accepts both representations the upstream has used: epoch
// seconds and a plain YYYY-MM-DD string.
func parseEndDate(v *jsontree.Value) (time.Time, bool) {
	if sec, ok := v.Int(); ok {
		return time.Unix(sec, 0).UTC(), true
	}
	if s, ok := v.Str(); ok {
		if ts, err := time.Parse("2006-01-02", s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseEarnings(store *jsontree.Value) Section[Earnings] {
	earnings := store.Get("earnings")
	chart := earnings.Get("financialsChart")
	if chart.IsNull() {
		return section(Earnings{}, &FieldError{
			Field: "earnings",
			Err:   fmt.Errorf("financials chart missing"),
		})
	}

	out := Earnings{Currency: earnings.Get("financialCurrency").StringOr("USD")}
	for _, row := range chart.Get("yearly").Arr() {
		out.Yearly = append(out.Yearly, earningsPeriod(row))
	}
	for _, row := range chart.Get("quarterly").Arr() {
		out.Quarterly = append(out.Quarterly, earningsPeriod(row))
	}
	return section(out, nil)
}

func earningsPeriod(row *jsontree.Value) EarningsPeriod {
	period := row.Get("date").StringOr("")
	if period == "" {
		if year, ok := row.Get("date").Int(); ok {
			period = fmt.Sprintf("%d", year)
		}
	}
	return EarningsPeriod{
		Period:   period,
		Revenue:  row.Get("revenue").NullDecimal(),
		Earnings: row.Get("earnings").NullDecimal(),
	}
}

// parseInfo merges the summary stores into one flat profile. When the
// summary detail block is absent the price block fills in, matching what
// the upstream page itself falls back to.
func parseInfo(store *jsontree.Value) Info {
	info := Info{Fields: make(map[string]*jsontree.Value)}

	blocks := []string{
		"summaryProfile", "financialData", "quoteType",
		"defaultKeyStatistics", "assetProfile", "summaryDetail",
	}
	for _, block := range blocks {
		for key, value := range store.Get(block).Obj() {
			info.Fields[key] = value
		}
	}
	if store.Get("summaryDetail").Kind() != jsontree.Object {
		for key, value := range store.Get("price").Obj() {
			info.Fields[key] = value
		}
	}
	if price := store.Get("price", "regularMarketPrice"); !price.IsNull() {
		info.Fields["regularMarketPrice"] = price
	}

	if website, ok := info.Fields["website"]; ok {
		if url, isStr := website.Str(); isStr {
			info.LogoURL = logoURL(url)
		}
	}
	return info
}

func logoURL(website string) string {
	domain := website
	if i := strings.Index(domain, "://"); i >= 0 {
		domain = domain[i+3:]
	}
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		return ""
	}
	return "https://logo.clearbit.com/" + domain
}

func parseSustainability(store *jsontree.Value) Section[Sustainability] {
	esg := store.Get("esgScores")
	if esg.Kind() != jsontree.Object {
		return section(Sustainability{}, &FieldError{
			Field: "sustainability",
			Err:   fmt.Errorf("esg scores missing"),
		})
	}

	year, _ := esg.Get("ratingYear").Int()
	month, _ := esg.Get("ratingMonth").Int()

	out := Sustainability{Period: fmt.Sprintf("%d-%d", year, month)}
	for key, value := range esg.Obj() {
		if key == "maxAge" || key == "ratingYear" || key == "ratingMonth" {
			continue
		}
		if !value.Scalar() {
			continue
		}
		out.Scores = append(out.Scores, ScoreEntry{Name: key, Value: value})
	}
	sort.Slice(out.Scores, func(i, j int) bool { return out.Scores[i].Name < out.Scores[j].Name })
	return section(out, nil)
}

func parseCalendar(store *jsontree.Value) Section[Calendar] {
	earnings := store.Get("calendarEvents", "earnings")
	if earnings.Kind() != jsontree.Object {
		return section(Calendar{}, &FieldError{
			Field: "calendar",
			Err:   fmt.Errorf("calendar events missing"),
		})
	}

	out := Calendar{
		EarningsAvg:  earnings.Get("earningsAverage").NullDecimal(),
		EarningsLow:  earnings.Get("earningsLow").NullDecimal(),
		EarningsHigh: earnings.Get("earningsHigh").NullDecimal(),
		RevenueAvg:   earnings.Get("revenueAverage").NullDecimal(),
		RevenueLow:   earnings.Get("revenueLow").NullDecimal(),
		RevenueHigh:  earnings.Get("revenueHigh").NullDecimal(),
	}
	for _, raw := range earnings.Get("earningsDate").Arr() {
		if sec, ok := raw.Int(); ok {
			out.EarningsDates = append(out.EarningsDates, time.Unix(sec, 0).UTC())
		}
	}
	return section(out, nil)
}

func parseRecommendations(store *jsontree.Value) Section[[]Recommendation] {
	history := store.Get("upgradeDowngradeHistory", "history").Arr()
	if len(history) == 0 {
		return section[[]Recommendation](nil, &FieldError{
			Field: "recommendations",
			Err:   fmt.Errorf("upgrade/downgrade history missing"),
		})
	}

	recs := make([]Recommendation, 0, len(history))
	for _, item := range history {
		sec, ok := item.Get("epochGradeDate").Int()
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			Date:      time.Unix(sec, 0).UTC(),
			Firm:      item.Get("firm").StringOr(""),
			ToGrade:   item.Get("toGrade").StringOr(""),
			FromGrade: item.Get("fromGrade").StringOr(""),
			Action:    item.Get("action").StringOr(""),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return section(recs, nil)
}

package ticker

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func chartServer(t *testing.T, body string, lastQuery *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if lastQuery != nil {
			*lastQuery = r.URL.Query()
		}
		w.Write([]byte(body))
	}))
}

func eq(t *testing.T, got decimal.NullDecimal, want int64, what string) {
	t.Helper()
	if !got.Valid || !got.Decimal.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s = %v, want %d", what, got, want)
	}
}

func eqs(t *testing.T, got decimal.NullDecimal, want, what string) {
	t.Helper()
	if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %v, want %s", what, got, want)
	}
}

func TestHistoryAutoAdjust(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"America/New_York","priceHint":2},
		"timestamp":[1609770600],
		"indicators":{
			"quote":[{"open":[50],"high":[110],"low":[40],"close":[100],"volume":[1000]}],
			"adjclose":[{"adjclose":[90]}]
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, AutoAdjust: true, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(h.Bars))
	}

	b := h.Bars[0]
	eq(t, b.Open, 45, "Open")
	eq(t, b.High, 99, "High")
	eq(t, b.Low, 36, "Low")
	eq(t, b.Close, 90, "Close")
	eq(t, b.AdjClose, 90, "AdjClose")
	if b.Volume != 1000 {
		t.Fatalf("Volume = %d, want 1000", b.Volume)
	}

	ny, _ := time.LoadLocation("America/New_York")
	want := time.Date(2021, 1, 4, 0, 0, 0, 0, ny)
	if !b.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", b.Time, want)
	}
}

func TestHistoryBackAdjust(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609770600],
		"indicators":{
			"quote":[{"open":[50],"high":[110],"low":[40],"close":[100],"volume":[1000]}],
			"adjclose":[{"adjclose":[90]}]
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, BackAdjust: true, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(h.Bars))
	}

	// Every price column scales by AdjClose/Close, Close included.
	b := h.Bars[0]
	eq(t, b.Open, 45, "Open")
	eq(t, b.High, 99, "High")
	eq(t, b.Low, 36, "Low")
	eq(t, b.Close, 90, "Close")
	eq(t, b.AdjClose, 90, "AdjClose")
}

func TestHistoryRoundsToPriceHint(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":1},
		"timestamp":[1609718400],
		"indicators":{
			"quote":[{"open":[10.46],"high":[11.44],"low":[9.95],"close":[10.06],"volume":[500]}],
			"adjclose":[{"adjclose":[10.06]}]
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, Rounding: true, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(h.Bars))
	}

	b := h.Bars[0]
	eqs(t, b.Open, "10.5", "Open")
	eqs(t, b.High, "11.4", "High")
	eqs(t, b.Low, "10", "Low")
	eqs(t, b.Close, "10.1", "Close")
	eqs(t, b.AdjClose, "10.1", "AdjClose")
}

func TestHistoryAdjustZeroCloseDegrades(t *testing.T) {
	// A zero close makes the adjustment ratio undefined; the call must
	// degrade rather than divide.
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609718400],
		"indicators":{
			"quote":[{"open":[50],"high":[110],"low":[40],"close":[0],"volume":[1000]}],
			"adjclose":[{"adjclose":[90]}]
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)

	var fieldErr *FieldError
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, AutoAdjust: true})
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected a FieldError from auto adjustment, got %v", err)
	}
	if !h.Empty() {
		t.Fatal("expected an empty table alongside the error")
	}
	if tk.LastError() == nil {
		t.Fatal("expected the failure recorded on the ticker")
	}

	if _, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, BackAdjust: true}); !errors.As(err, &fieldErr) {
		t.Fatalf("expected a FieldError from back adjustment, got %v", err)
	}
}

func TestHistory30mRequestsAndResamples(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609767000,1609767900,1609768800,1609769700],
		"indicators":{
			"quote":[{
				"open":[10,11,12,13],
				"high":[15,20,14,16],
				"low":[9,8,12,11],
				"close":[11,12,13,14],
				"volume":[100,200,150,50]
			}],
			"adjclose":[{"adjclose":[11,12,13,14]}]
		}
	}],"error":null}}`
	var query url.Values
	server := chartServer(t, body, &query)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval30m, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	// The upstream serves wrong bars for 30m, so the request goes out as 15m.
	if got := query.Get("interval"); got != "15m" {
		t.Fatalf("requested interval %q, want 15m", got)
	}
	if h.Interval != Interval30m {
		t.Fatalf("result interval %q, want 30m", h.Interval)
	}
	if len(h.Bars) != 2 {
		t.Fatalf("expected 2 resampled bars, got %d", len(h.Bars))
	}

	first := h.Bars[0]
	if first.Time.Unix() != 1609767000 {
		t.Fatalf("first window at %v", first.Time)
	}
	eq(t, first.Open, 10, "Open")
	eq(t, first.High, 20, "High")
	eq(t, first.Low, 8, "Low")
	eq(t, first.Close, 12, "Close")
	if first.Volume != 300 {
		t.Fatalf("first window volume = %d, want 300", first.Volume)
	}

	second := h.Bars[1]
	eq(t, second.Close, 14, "second Close")
	if second.Volume != 200 {
		t.Fatalf("second window volume = %d, want 200", second.Volume)
	}
}

func TestHistoryChartError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "GONE", server.URL)
	h, err := tk.History(DefaultHistoryOptions())
	if err == nil || err.Error() != "No data found, symbol may be delisted" {
		t.Fatalf("expected the upstream description, got %v", err)
	}
	if !h.Empty() {
		t.Fatal("expected an empty table alongside the error")
	}
	if tk.LastError() == nil {
		t.Fatal("expected the failure recorded on the ticker")
	}
}

func TestHistoryNullResult(t *testing.T) {
	server := chartServer(t, `{"chart":{"result":[null],"error":null}}`, nil)
	defer server.Close()

	tk := testTicker(t, "GONE", server.URL)
	if _, err := tk.History(DefaultHistoryOptions()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestHistoryOutageBanner(t *testing.T) {
	server := chartServer(t, "<html><body>Our engineers are working quickly. Will be right back.</body></html>", nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	if _, err := tk.History(DefaultHistoryOptions()); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestHistoryMergesOrphanActions(t *testing.T) {
	// The dividend on 2021-01-07 has no quote row; it must get its own
	// price-less row rather than being dropped.
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609718400],
		"indicators":{
			"quote":[{"open":[10],"high":[11],"low":[9],"close":[10],"volume":[500]}],
			"adjclose":[{"adjclose":[10]}]
		},
		"events":{
			"dividends":{"1609977600":{"amount":0.22,"date":1609977600}},
			"splits":{"1609718400":{"numerator":4,"denominator":1,"splitRatio":"4:1","date":1609718400}}
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "5d", Interval: Interval1d, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(h.Bars))
	}

	if !h.Bars[0].StockSplits.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("split ratio = %v, want 4", h.Bars[0].StockSplits)
	}
	orphan := h.Bars[1]
	if !orphan.ohlcNull() {
		t.Fatal("expected the orphan action row to carry no prices")
	}
	if orphan.Dividends.String() != "0.22" {
		t.Fatalf("dividend = %v, want 0.22", orphan.Dividends)
	}

	divs := h.Dividends()
	if len(divs) != 1 || divs[0].Dividend.String() != "0.22" {
		t.Fatalf("unexpected dividend events %v", divs)
	}
	splits := h.Splits()
	if len(splits) != 1 || !splits[0].Split.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("unexpected split events %v", splits)
	}
}

func TestHistoryActionsDisabled(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609718400],
		"indicators":{
			"quote":[{"open":[10],"high":[11],"low":[9],"close":[10],"volume":[500]}],
			"adjclose":[{"adjclose":[10]}]
		},
		"events":{"dividends":{"1609718400":{"amount":0.22,"date":1609718400}}}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 1 || !h.Bars[0].Dividends.IsZero() {
		t.Fatalf("expected the dividend column zeroed, got %v", h.Bars)
	}
}

func TestHistoryDedupeKeepsLast(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"exchangeTimezoneName":"UTC","priceHint":2},
		"timestamp":[1609718400,1609718400],
		"indicators":{
			"quote":[{"open":[10,10],"high":[11,12],"low":[9,9],"close":[10,11],"volume":[500,600]}],
			"adjclose":[{"adjclose":[10,11]}]
		}
	}],"error":null}}`
	server := chartServer(t, body, nil)
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	h, err := tk.History(HistoryOptions{Period: "1d", Interval: Interval1d, Actions: true})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(h.Bars) != 1 {
		t.Fatalf("expected duplicates collapsed, got %d rows", len(h.Bars))
	}
	eq(t, h.Bars[0].Close, 11, "Close")
}

func TestChartParams(t *testing.T) {
	p := HistoryOptions{Period: "1mo", Interval: Interval1d}.chartParams()
	if p["range"] != "1mo" || p["interval"] != "1d" {
		t.Fatalf("unexpected params %v", p)
	}
	if _, ok := p["period1"]; ok {
		t.Fatal("named range must not carry explicit bounds")
	}

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	p = HistoryOptions{Start: start, End: end, Interval: Interval1d}.chartParams()
	if p["period1"] != "1609459200" || p["period2"] != "1612137600" {
		t.Fatalf("unexpected bounds %v", p)
	}

	p = HistoryOptions{Period: "max", Interval: Interval1d}.chartParams()
	if p["period1"] != "-2208988800" {
		t.Fatalf("max range must start at 1900-01-01, got %v", p["period1"])
	}
}

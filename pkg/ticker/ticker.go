// Package ticker fetches and normalizes per-symbol market data: price
// history from the chart API, and financial statements, profile, holders
// and analyst data scraped from the quote pages.
package ticker

import (
	"strings"
	"sync"

	"github.com/quantview/tickersheet/config"
)

// Ticker is the per-symbol entry point. A Ticker is safe for concurrent
// use; fetched fundamentals and the last price history are cached on it.
type Ticker struct {
	Symbol string

	cfg    *config.Config
	client *httpClient

	quoteAPIURL string
	scrapeURL   string
	suggestURL  string

	mu           sync.Mutex
	history      *History
	fundamentals *Fundamentals
	lastErr      error
	isin         string
}

// Option customizes a Ticker at construction time.
type Option func(*Ticker)

// WithConfig supplies an explicit configuration instead of the default
// environment-derived one.
func WithConfig(cfg *config.Config) Option {
	return func(t *Ticker) { t.cfg = cfg }
}

// WithBaseURL overrides the chart API endpoint.
func WithBaseURL(url string) Option {
	return func(t *Ticker) { t.quoteAPIURL = strings.TrimSuffix(url, "/") }
}

// WithScrapeURL overrides the quote page endpoint.
func WithScrapeURL(url string) Option {
	return func(t *Ticker) { t.scrapeURL = strings.TrimSuffix(url, "/") }
}

// WithSuggestURL overrides the symbol suggestion endpoint used for ISIN
// lookup.
func WithSuggestURL(url string) Option {
	return func(t *Ticker) { t.suggestURL = url }
}

// New builds a Ticker for a symbol. The symbol is upper-cased and trimmed;
// an empty or oversized symbol is rejected up front rather than producing
// a guaranteed-empty fetch later.
func New(symbol string, opts ...Option) (*Ticker, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	t := &Ticker{
		Symbol:      normalizeSymbol(symbol),
		quoteAPIURL: defaultQuoteAPIURL,
		scrapeURL:   defaultScrapeURL,
		suggestURL:  defaultSuggestURL,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.cfg == nil {
		t.cfg = config.DefaultConfig()
	}
	t.client = newHTTPClient(t.cfg)
	return t, nil
}

// recordErr keeps the most recent per-symbol failure so batch callers can
// report it after the fact, and passes the error through.
func (t *Ticker) recordErr(err error) error {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
	return err
}

// LastError returns the most recent recorded failure for this symbol, or
// nil when every call so far succeeded.
func (t *Ticker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// fullHistory returns the complete daily series, serving the cached table
// when one covering call already ran.
func (t *Ticker) fullHistory() (History, error) {
	t.mu.Lock()
	cached := t.history
	t.mu.Unlock()
	if cached != nil && cached.Interval == Interval1d {
		return *cached, nil
	}

	return t.History(HistoryOptions{
		Period:     "max",
		Interval:   Interval1d,
		AutoAdjust: true,
		Actions:    true,
	})
}

// Dividends returns every dividend payment on record for the symbol.
func (t *Ticker) Dividends() ([]Action, error) {
	h, err := t.fullHistory()
	if err != nil {
		return nil, err
	}
	return h.Dividends(), nil
}

// Splits returns every stock split on record for the symbol.
func (t *Ticker) Splits() ([]Action, error) {
	h, err := t.fullHistory()
	if err != nil {
		return nil, err
	}
	return h.Splits(), nil
}

// Actions returns every dividend and split on record for the symbol.
func (t *Ticker) Actions() ([]Action, error) {
	h, err := t.fullHistory()
	if err != nil {
		return nil, err
	}
	return h.Actions(), nil
}

// ISIN resolves the symbol's international securities identifier through a
// third-party suggestion endpoint. Symbols with index or share-class
// punctuation are not resolvable there.
func (t *Ticker) ISIN() (string, error) {
	t.mu.Lock()
	cached := t.isin
	t.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	if strings.ContainsAny(t.Symbol, "-^") {
		return "", &ValidationError{Symbol: t.Symbol, Reason: "symbol cannot carry an ISIN"}
	}

	body, err := t.client.text(t.suggestURL, map[string]string{
		"max_results": "25",
		"query":       t.Symbol,
	})
	if err != nil {
		return "", err
	}

	marker := `"` + t.Symbol + `|`
	i := strings.Index(body, marker)
	if i < 0 {
		return "", t.recordErr(ErrNoData)
	}
	rest := body[i+len(marker):]
	if j := strings.IndexByte(rest, '"'); j >= 0 {
		rest = rest[:j]
	}
	isin := strings.SplitN(rest, "|", 2)[0]
	if isin == "" {
		return "", t.recordErr(ErrNoData)
	}

	t.mu.Lock()
	t.isin = isin
	t.mu.Unlock()
	return isin, nil
}

package ticker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantview/tickersheet/config"
)

func testTicker(t *testing.T, symbol, baseURL string) *Ticker {
	t.Helper()

	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.CacheEnabled = false
	cfg.TimeoutSeconds = 5

	tk, err := New(symbol,
		WithConfig(cfg),
		WithBaseURL(baseURL),
		WithScrapeURL(baseURL+"/quote"),
		WithSuggestURL(baseURL+"/suggest"),
	)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", symbol, err)
	}
	return tk
}

func TestNewNormalizesSymbol(t *testing.T) {
	tk, err := New(" msft ", WithConfig(config.DefaultConfigWithRoot(t.TempDir())))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tk.Symbol != "MSFT" {
		t.Fatalf("expected symbol MSFT, got %q", tk.Symbol)
	}
}

func TestNewRejectsBadSymbols(t *testing.T) {
	for _, symbol := range []string{"", "   ", "WAYTOOLONGSYMBOL"} {
		if _, err := New(symbol); err == nil {
			t.Fatalf("expected error for symbol %q", symbol)
		}
	}
}

func TestISIN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "AAPL" {
			t.Errorf("expected query AAPL, got %q", got)
		}
		w.Write([]byte(`[{"value":"AAPL|US0378331005|Apple"}]`))
	}))
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	isin, err := tk.ISIN()
	if err != nil {
		t.Fatalf("ISIN failed: %v", err)
	}
	if isin != "US0378331005" {
		t.Fatalf("expected US0378331005, got %q", isin)
	}

	// Second call serves the cached value without touching the network.
	server.Close()
	if isin, err = tk.ISIN(); err != nil || isin != "US0378331005" {
		t.Fatalf("cached ISIN lookup failed: %q, %v", isin, err)
	}
}

func TestISINNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tk := testTicker(t, "ZZZZ", server.URL)
	if _, err := tk.ISIN(); err == nil {
		t.Fatal("expected an error for an unknown symbol")
	}
	if tk.LastError() == nil {
		t.Fatal("expected the failure to be recorded on the ticker")
	}
}

func TestISINRejectsUnresolvableSymbols(t *testing.T) {
	tk := testTicker(t, "BRK-B", "http://127.0.0.1:0")
	if _, err := tk.ISIN(); err == nil {
		t.Fatal("expected an error for a share-class symbol")
	}
}

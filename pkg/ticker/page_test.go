package ticker

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePage = `<html><head><title>Quote</title></head><body>
<script>window.other = (function() { return 1; }());</script>
<script>
(function (root) {
root.App.main = {"context":{"dispatcher":{"stores":{"QuoteSummaryStore":{"price":{"regularMarketPrice":{"raw":123.45,"fmt":"123.45"},"missing":{}}}}}}};
}(this));
</script>
</body></html>`

func TestExtractPayload(t *testing.T) {
	tree, err := extractPayload(samplePage, "http://example.test/quote/AAPL")
	if err != nil {
		t.Fatalf("extractPayload failed: %v", err)
	}

	price := tree.Get("context", "dispatcher", "stores", "QuoteSummaryStore", "price")
	if got, ok := price.Get("regularMarketPrice").Num(); !ok || got != 123.45 {
		t.Fatalf("expected raw wrapper collapsed to 123.45, got %v (ok=%v)", got, ok)
	}
	if !price.Get("missing").IsNull() {
		t.Fatal("expected empty object normalized to null")
	}
}

func TestExtractPayloadMissingMarker(t *testing.T) {
	_, err := extractPayload("<html><body>nothing here</body></html>", "http://example.test")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestExtractPayloadInvalidLiteral(t *testing.T) {
	page := "<script>\nroot.App.main = {broken json;\n}(this));\n</script>"
	if _, err := extractPayload(page, "http://example.test"); err == nil {
		t.Fatal("expected an error for an unparsable literal")
	}
}

func TestFetchStores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	stores, err := tk.client.fetchStores(server.URL+"/quote/AAPL", nil)
	if err != nil {
		t.Fatalf("fetchStores failed: %v", err)
	}
	if stores.Get("QuoteSummaryStore").IsNull() {
		t.Fatal("expected QuoteSummaryStore in the store container")
	}
}

func TestFetchStoresMissingContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<script>\nroot.App.main = {\"context\":{}};\n}(this));\n</script>"))
	}))
	defer server.Close()

	tk := testTicker(t, "AAPL", server.URL)
	if _, err := tk.client.fetchStores(server.URL, nil); err == nil {
		t.Fatal("expected an error when the store container is missing")
	}
}

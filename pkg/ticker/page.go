package ticker

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantview/tickersheet/pkg/jsontree"
)

// The provider embeds its page state as a script assignment rather than
// serving JSON. The literal sits between the marker and the IIFE closer.
const (
	payloadMarker   = "root.App.main ="
	payloadEndParen = "(this)"
	payloadEndBrace = ";\n}"
)

// extractPayload pulls the embedded data blob out of an HTML document and
// returns it as a normalized tree: raw-value wrappers collapsed, empty
// objects turned into nulls. A missing marker or an unparsable literal is
// an ExtractionError, which callers treat as "no data" for that section.
func extractPayload(html, url string) (*jsontree.Value, error) {
	script := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.Contains(s.Text(), payloadMarker) {
				script = s.Text()
				return false
			}
			return true
		})
	}

	idx := strings.Index(script, payloadMarker)
	if idx < 0 {
		return nil, &ExtractionError{URL: url, Reason: "embedded data marker not found"}
	}

	blob := script[idx+len(payloadMarker):]
	if cut := strings.Index(blob, payloadEndParen); cut >= 0 {
		blob = blob[:cut]
	}
	if cut := strings.Index(blob, payloadEndBrace); cut >= 0 {
		blob = blob[:cut]
	}
	blob = strings.TrimSpace(blob)

	tree, err := jsontree.Parse([]byte(blob))
	if err != nil {
		return nil, &ExtractionError{URL: url, Reason: "embedded literal is not valid JSON"}
	}
	return jsontree.Normalize(tree), nil
}

// fetchStores fetches a quote page and returns its store map, the container
// every data section hangs off of.
func (c *httpClient) fetchStores(url string, params map[string]string) (*jsontree.Value, error) {
	html, err := c.text(url, params)
	if err != nil {
		return nil, err
	}

	tree, err := extractPayload(html, url)
	if err != nil {
		return nil, err
	}

	stores := tree.Get("context", "dispatcher", "stores")
	if stores.IsNull() {
		return nil, &ExtractionError{URL: url, Reason: "store container missing from payload"}
	}
	return stores, nil
}

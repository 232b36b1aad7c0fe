package ticker

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quantview/tickersheet/config"
)

const (
	defaultQuoteAPIURL = "https://query2.finance.yahoo.com"
	defaultScrapeURL   = "https://finance.yahoo.com/quote"
	defaultSuggestURL  = "https://markets.businessinsider.com/ajax/SearchController_Suggest"
)

// httpClient is the single synchronous boundary to the upstream site: one
// GET, one result, browser-like headers, optional proxy. No retries here;
// batch callers retry at the edge if they want to.
type httpClient struct {
	rc    *resty.Client
	cache *pageCache
}

func newHTTPClient(cfg *config.Config) *httpClient {
	rc := resty.New()
	rc.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	rc.SetHeader("User-Agent", cfg.UserAgent)
	rc.SetRetryCount(0)
	if cfg.ProxyURL != "" {
		rc.SetProxy(cfg.ProxyURL)
	}

	return &httpClient{
		rc:    rc,
		cache: newPageCache(cfg),
	}
}

// text fetches a URL and returns the response body as text. Cached bodies
// are served until their TTL lapses.
func (c *httpClient) text(url string, params map[string]string) (string, error) {
	if body, ok := c.cache.get(url, params); ok {
		return body, nil
	}

	resp, err := c.rc.R().SetQueryParams(params).Get(url)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode() >= 500 {
		return "", &TransportError{
			URL: url,
			Err: fmt.Errorf("server returned status %d", resp.StatusCode()),
		}
	}

	body := resp.String()
	c.cache.put(url, params, body)
	return body, nil
}

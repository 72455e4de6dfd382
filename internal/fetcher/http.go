package fetcher

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPFetcher implements Fetcher against a live index listing endpoint.
//
// Page 1 requests the bare URL; later pages attach a "page" query
// parameter. The target site's real pagination mechanism is unconfirmed,
// so the parameter is a best-effort convention, not a guaranteed contract.
type HTTPFetcher struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewHTTPFetcher creates a fetcher with the given timeout and optional proxy.
func NewHTTPFetcher(baseURL, userAgent, proxyURL string, timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// FetchPage issues one blocking GET and returns the response body.
func (f *HTTPFetcher) FetchPage(pageIndex int) ([]byte, error) {
	pageURL := f.BaseURL
	if pageIndex > 1 {
		u, err := url.Parse(f.BaseURL)
		if err != nil {
			return nil, &FetchError{URL: f.BaseURL, PageIndex: pageIndex, Err: err}
		}
		q := u.Query()
		q.Set("page", strconv.Itoa(pageIndex))
		u.RawQuery = q.Encode()
		pageURL = u.String()
	}
	return f.Get(pageURL, pageIndex)
}

// Get fetches an arbitrary URL with the fetcher's headers and timeout.
// Fallback sources reuse this without the pagination convention.
func (f *HTTPFetcher) Get(rawURL string, pageIndex int) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, PageIndex: pageIndex, Err: err}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, PageIndex: pageIndex, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: rawURL, PageIndex: pageIndex, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, PageIndex: pageIndex, Err: err}
	}
	return body, nil
}

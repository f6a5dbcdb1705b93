package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"

	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"
)

// UserAgent is the browser-like User-Agent sent with every page request
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a page is read
const maxBodyBytes = 10 << 20

// PageFetcher issues the single GET of a run
type PageFetcher struct {
	client  *http.Client
	maxBody int64
	log     *logger.Logger
}

// NewPageFetcher creates a fetcher whose requests are bounded by timeout
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxBodyBytes,
		log:     logger.ForComponent("fetcher"),
	}
}

// Fetch sends an HTTP GET with browser-like headers and returns the body
// converted to UTF-8. Non-2xx statuses and transport failures are returned
// as fetch errors.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperrors.NewFetch(pageURL, "failed to create request", err)
	}

	// Set browser-like headers
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetch(pageURL, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Rate limiting is reported, not handled
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := resp.Header.Get("Retry-After")
		return nil, apperrors.NewFetch(pageURL, fmt.Sprintf("rate limited; retry after %q", retryAfter), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewFetch(pageURL, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, apperrors.NewFetch(pageURL, "failed to read response body", err)
	}
	if int64(len(bodyBytes)) > f.maxBody {
		bodyBytes = bodyBytes[:f.maxBody]
		f.log.Warn().
			Str("url", pageURL).
			Int64("limit_bytes", f.maxBody).
			Msg("Page body exceeds size limit; only the first part is compared")
	}

	return toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// toUTF8 decodes body using the charset from the Content-Type header or the document itself
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperrors.NewFetch("", "failed to read converted UTF-8 body", err)
	}

	return buf.Bytes(), nil
}

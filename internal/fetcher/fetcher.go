package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
)

// MaxBodySize is maximal number of bytes read from single response.
const MaxBodySize = 8 << 20

var (
	pageContentTypes      = []string{"text/html", "application/xhtml+xml"}
	inventoryContentTypes = []string{"application/json", "text/javascript"}
)

// Fetcher builds http requests and fetches product pages and inventory documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns new Fetcher.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// FetchPage returns HTML of product page.
func (f *Fetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, "text/html,application/xhtml+xml", pageContentTypes)
}

// FetchInventory returns JSON inventory document.
func (f *Fetcher) FetchInventory(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, "application/json", inventoryContentTypes)
}

func (f *Fetcher) fetch(ctx context.Context, url, accept string, contentTypes []string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("can't build http request: %w", err)
	}

	req.Header.Add("Accept", accept)
	req.Header.Add("Accept-Encoding", "gzip")
	req.Header.Add("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't get http response: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%w: %d", ErrPageGone, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: %d", ErrStatusNotOK, resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !slices.Contains(contentTypes, mediaType) {
		return nil, fmt.Errorf("%w: %q", ErrContentTypeNotSupported, resp.Header.Get("Content-Type"))
	}

	body := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		decompressed, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("can't decompress response: %w", err)
		}
		defer decompressed.Close()
		body = decompressed
	}

	content, err := io.ReadAll(io.LimitReader(body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("can't read response: %w", err)
	}

	return content, nil
}

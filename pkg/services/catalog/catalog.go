package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/cavaliergopher/grab/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Book is one search hit: its title and the detail page it links to.
type Book struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Cache stores serialized search results.
type Cache interface {
	GetCatalogSearch(ctx context.Context, query string, limit int) ([]byte, error)
	SetCatalogSearch(ctx context.Context, query string, limit int, data []byte, ttl time.Duration) error
}

// ParseError means a page didn't have the expected layout.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// UpstreamError means the catalog site could not be reached or answered
// with a non 2xx status.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type Client struct {
	cnf        config.CatalogSettings
	cache      Cache
	httpClient *http.Client
	grabClient *grab.Client
	group      singleflight.Group
	logger     *logrus.Entry
}

// New creates the catalog client. cache may be nil.
func New(cnf config.CatalogSettings, cache Cache, logger *logrus.Logger) *Client {
	return &Client{
		cnf:   cnf,
		cache: cache,
		httpClient: &http.Client{
			Timeout: cnf.Timeout,
		},
		grabClient: grab.NewClient(),
		logger:     logger.WithField("service", "catalog"),
	}
}

// fetch downloads and parses an html page.
func (c *Client) fetch(ctx context.Context, pageUrl string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: pageUrl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{URL: pageUrl, StatusCode: resp.StatusCode}
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

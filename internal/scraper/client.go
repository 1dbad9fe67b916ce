package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/news"
)

const (
	// DefaultListURL is the realtime securities news listing.
	DefaultListURL = "https://finance.naver.com/news/news_list.naver?mode=LSS2D&section_id=101&section_id2=258"
	// DefaultCharset is the listing's native encoding.
	DefaultCharset = "euc-kr"

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrFetch marks a failure to retrieve a listing page. It aborts the run.
var ErrFetch = errors.New("fetch listing page")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	ListURL     string
	ArticleHost string
	Charset     string
	UserAgent   string
	Timeout     time.Duration
	Selectors   Selectors
	HTTPClient  *http.Client
}

// Client fetches and parses listing pages.
type Client struct {
	http        *http.Client
	listURL     *url.URL
	origin      *url.URL
	articleHost string
	charset     string
	userAgent   string
	selectors   Selectors
}

// NewClient builds a Client for the configured listing.
func NewClient(opts Options) (*Client, error) {
	if opts.ListURL == "" {
		opts.ListURL = DefaultListURL
	}
	if opts.ArticleHost == "" {
		opts.ArticleHost = DefaultArticleHost
	}
	if opts.Charset == "" {
		opts.Charset = DefaultCharset
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	listURL, err := url.Parse(opts.ListURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}
	if listURL.Scheme == "" || listURL.Host == "" {
		return nil, fmt.Errorf("list url must be absolute: %q", opts.ListURL)
	}
	if _, err := htmlindex.Get(opts.Charset); err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", opts.Charset, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		http:        httpClient,
		listURL:     listURL,
		origin:      &url.URL{Scheme: listURL.Scheme, Host: listURL.Host},
		articleHost: opts.ArticleHost,
		charset:     opts.Charset,
		userAgent:   opts.UserAgent,
		selectors:   opts.Selectors.merge(DefaultSelectors()),
	}, nil
}

// pageURL returns the listing URL for a 1-based page number.
func (c *Client) pageURL(page int) string {
	u := *c.listURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// resolve turns a raw href into the canonical article URL.
func (c *Client) resolve(href string) string {
	return canonicalURL(absoluteURL(c.origin, href), c.articleHost)
}

// FetchPage retrieves one listing page and extracts its articles. When
// allowedSources is non-empty, entries whose press name contains none of
// them are dropped. Transport failures and non-2xx answers wrap ErrFetch.
func (c *Client) FetchPage(ctx context.Context, page int, allowedSources []string) ([]news.Article, error) {
	target := c.pageURL(page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrFetch, page, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: page %d: HTTP status %d", ErrFetch, page, resp.StatusCode)
	}

	enc, err := htmlindex.Get(c.charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", c.charset, err)
	}

	doc, err := goquery.NewDocumentFromReader(enc.NewDecoder().Reader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: read body: %v", ErrFetch, page, err)
	}

	items := c.parsePage(doc, allowedSources)
	if len(items) == 0 && page == 1 {
		items = c.parseFallback(doc)
		logger.Warn("primary listing layout yielded nothing, used fallback selectors",
			"page", page, "items", len(items))
	}

	return items, nil
}

// parsePage extracts articles from the regular listing layout.
func (c *Client) parsePage(doc *goquery.Document, allowedSources []string) []news.Article {
	var items []news.Article

	doc.Find(c.selectors.Primary).Each(func(i int, s *goquery.Selection) {
		title, _ := s.Attr("title")
		if title == "" {
			title = strings.TrimSpace(s.Text())
		}
		href, _ := s.Attr("href")
		if title == "" || href == "" {
			return
		}

		publishedAt, source := c.summaryFor(s)

		if len(allowedSources) > 0 && source != "" && !containsAny(source, allowedSources) {
			return
		}

		items = append(items, news.Article{
			Title:       title,
			URL:         c.resolve(href),
			PublishedAt: publishedAt,
			Source:      source,
		})
	})

	return items
}

// summaryFor reads timestamp and press name from the summary element that
// follows the link's enclosing dd/dt.
func (c *Client) summaryFor(link *goquery.Selection) (string, string) {
	parent := link.ParentsFiltered("dd").First()
	if parent.Length() == 0 {
		parent = link.ParentsFiltered("dt").First()
	}
	if parent.Length() == 0 {
		return "", ""
	}

	summary := parent.NextAllFiltered(c.selectors.Summary).First()
	if summary.Length() == 0 {
		return "", ""
	}

	publishedAt := strings.TrimSpace(summary.Find(c.selectors.Time).First().Text())
	source := strings.TrimSpace(summary.Find(c.selectors.Source).First().Text())
	return publishedAt, source
}

// parseFallback tries each alternate layout in turn and keeps the first one
// that produces anything. These entries carry no timestamp or source.
func (c *Client) parseFallback(doc *goquery.Document) []news.Article {
	for _, selector := range c.selectors.Fallbacks {
		var items []news.Article

		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			title := strings.TrimSpace(s.Text())
			href, _ := s.Attr("href")
			if title == "" || href == "" {
				return
			}
			if utf8.RuneCountInString(title) <= c.selectors.MinFallbackTitleLen {
				return
			}

			items = append(items, news.Article{
				Title: title,
				URL:   c.resolve(href),
			})
		})

		if len(items) > 0 {
			logger.Debug("fallback selector matched", "selector", selector, "items", len(items))
			return items
		}
	}

	return nil
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

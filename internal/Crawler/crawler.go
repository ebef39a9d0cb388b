package crawler

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Crawler walks pages on a single host looking for links to interesting
// documents. It never leaves the target host and never fetches a page twice.
type Crawler struct {
	client    *http.Client
	log       zerolog.Logger
	userAgent string
	limiter   *rate.Limiter
	formats   map[string]struct{}

	visited map[string]struct{}
	found   []string
}

func New(log zerolog.Logger, userAgent string, delay time.Duration, formats []string) *Crawler {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	fm := map[string]struct{}{}
	for _, f := range formats {
		fm[strings.ToLower(f)] = struct{}{}
	}
	return &Crawler{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		log:       log,
		userAgent: userAgent,
		limiter:   limiter,
		formats:   fm,
		visited:   map[string]struct{}{},
	}
}

// DefaultFormats are the document extensions hunted for on the target site.
var DefaultFormats = []string{
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "csv",
	"jpg", "jpeg", "png", "gif", "tiff",
}

// Run crawls from startURL down to the given depth and returns the unique
// document URLs discovered, in discovery order.
func (c *Crawler) Run(ctx context.Context, startURL string, depth int) ([]string, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	c.crawl(ctx, start, start.Host, depth)
	return c.found, nil
}

func (c *Crawler) crawl(ctx context.Context, page *url.URL, host string, depth int) {
	key := page.String()
	if _, seen := c.visited[key]; seen {
		return
	}
	c.visited[key] = struct{}{}

	if err := c.limiter.Wait(ctx); err != nil {
		return
	}

	doc, err := c.fetch(ctx, key)
	if err != nil {
		c.log.Debug().Err(err).Str("url", key).Msg("page fetch failed")
		return
	}
	c.log.Debug().Str("url", key).Int("depth", depth).Msg("crawled page")

	var children []*url.URL
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link, err := page.Parse(href)
		if err != nil {
			return
		}
		link.Fragment = ""
		if !strings.EqualFold(link.Host, host) {
			return
		}
		if c.isDocument(link) {
			c.addDocument(link.String())
			return
		}
		children = append(children, link)
	})

	if depth <= 0 {
		return
	}
	for _, child := range children {
		c.crawl(ctx, child, host, depth-1)
	}
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (c *Crawler) isDocument(link *url.URL) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(link.Path), "."))
	if ext == "" {
		return false
	}
	_, ok := c.formats[ext]
	return ok
}

func (c *Crawler) addDocument(u string) {
	for _, existing := range c.found {
		if existing == u {
			return
		}
	}
	c.log.Info().Str("url", u).Msg("document found")
	c.found = append(c.found, u)
}

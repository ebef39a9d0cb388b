package download

import (
	"crypto/sha1"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches discovered documents into a local directory with a
// bounded worker pool. A failed download costs only that one file.
type Downloader struct {
	client    *http.Client
	log       zerolog.Logger
	userAgent string
	workers   int
}

func New(log zerolog.Logger, userAgent string, workers int) *Downloader {
	if workers < 1 {
		workers = 1
	}
	return &Downloader{
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		log:       log,
		userAgent: userAgent,
		workers:   workers,
	}
}

// FetchAll downloads every URL into destDir and returns the local paths of
// the files that made it to disk.
func (d *Downloader) FetchAll(urls []string, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	g := errgroup.Group{}
	g.SetLimit(d.workers)
	for _, u := range urls {
		g.Go(func() error {
			local, err := d.fetchOne(u, destDir)
			if err != nil {
				d.log.Warn().Err(err).Str("url", u).Msg("download failed")
				return nil
			}
			mu.Lock()
			paths = append(paths, local)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return paths, nil
}

func (d *Downloader) fetchOne(rawURL, destDir string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	local := filepath.Join(destDir, localName(rawURL))
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(local)
		return "", fmt.Errorf("write %s: %w", local, err)
	}
	d.log.Info().Str("file", local).Int64("bytes", n).Msg("downloaded")
	return local, nil
}

// localName derives a filename from the URL path, falling back to a hashed
// name when the path carries none.
func localName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
			return base
		}
	}
	sum := sha1.Sum([]byte(rawURL))
	return fmt.Sprintf("document_%x", sum[:6])
}

// Package source downloads v2fly data fragments, one request per keyword.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"siteblock/config"
	"siteblock/logger"
)

var log = logger.For("Fetch")

// Status is the outcome of one keyword fetch.
type Status int

const (
	StatusOK Status = iota
	StatusNotModified
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotModified:
		return "not_modified"
	default:
		return "failed"
	}
}

// Result carries the raw lines of one fragment. On failure Lines is empty
// and Err tells why.
type Result struct {
	Keyword string
	URL     string
	Lines   []string
	Status  Status
	Err     error
}

// Fetcher issues a single GET per keyword against the configured base URL.
// It never retries and never returns an error to the caller: a bad status
// or a transport error yields an empty Result and a warning.
type Fetcher struct {
	baseURL   string
	localDir  string // set when base_url is file://
	client    *http.Client
	userAgent string
	maxBytes  int64
	cache     *CacheStore
}

// NewFetcher builds a fetcher from the validated config. A non-empty
// cache_dir enables conditional requests.
func NewFetcher(cfg *config.Config) (*Fetcher, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	f := &Fetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		userAgent: cfg.UserAgent,
		maxBytes:  int64(cfg.MaxDownloadSize.Bytes()),
	}
	if base.Scheme == "file" {
		f.localDir = base.Path
	}

	if cfg.CacheDir != "" && f.localDir == "" {
		f.cache, err = NewCacheStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// URLFor returns the fragment URL of a keyword.
func (f *Fetcher) URLFor(keyword string) string {
	return f.baseURL + "/" + url.PathEscape(keyword)
}

// Fetch downloads the fragment of one keyword.
func (f *Fetcher) Fetch(ctx context.Context, keyword string) Result {
	res := Result{Keyword: keyword, URL: f.URLFor(keyword)}
	log.Infof("fetching domains strictly for: %s", keyword)

	var (
		body []byte
		err  error
	)
	if f.localDir != "" {
		body, err = f.readLocal(keyword)
		res.Status = StatusOK
	} else {
		body, res.Status, err = f.download(ctx, res.URL)
	}

	if err != nil {
		log.Warnf("site data for %s not found or inaccessible: %v", keyword, err)
		if f.cache != nil {
			f.cache.MarkFailed(res.URL, err)
		}
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	res.Lines = splitLines(body)
	log.Debugf("%s: %d lines (%s)", keyword, len(res.Lines), res.Status)
	return res
}

func (f *Fetcher) download(ctx context.Context, u string) ([]byte, Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, StatusFailed, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	// Only send validators when the cached body is still there to serve a 304.
	var cached []byte
	if f.cache != nil {
		if entry, ok := f.cache.Get(u); ok {
			if cached, err = f.cache.ReadBody(u); err == nil {
				if entry.ETag != "" {
					req.Header.Set("If-None-Match", entry.ETag)
				}
				if entry.LastModified != "" {
					req.Header.Set("If-Modified-Since", entry.LastModified)
				}
			} else {
				cached = nil
			}
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, StatusFailed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		f.cache.MarkFresh(u)
		return cached, StatusNotModified, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, StatusFailed, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, StatusFailed, err
	}

	if f.cache != nil {
		err := f.cache.Store(u, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), body, strings.Count(string(body), "\n"))
		if err != nil {
			log.Warnf("cache %s: %v", u, err)
		}
	}
	return body, StatusOK, nil
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	limited := &io.LimitedReader{R: r, N: f.maxBytes + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("fragment exceeds %d bytes limit", f.maxBytes)
	}
	return body, nil
}

func (f *Fetcher) readLocal(keyword string) ([]byte, error) {
	file, err := os.Open(filepath.Join(f.localDir, filepath.Base(keyword)))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readLimited(file)
}

// Close persists the cache metadata.
func (f *Fetcher) Close() error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Save()
}

func splitLines(body []byte) []string {
	text := strings.TrimSuffix(string(body), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"siteblock/config"
	"siteblock/geosite"
	"siteblock/metrics"
	"siteblock/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// fakeFetcher 返回预置的片段，未预置的关键词视为下载失败
type fakeFetcher struct {
	mu        sync.Mutex
	fragments map[string]string
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, keyword string) source.Result {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.mu.Unlock()

	body, ok := f.fragments[keyword]
	if !ok {
		return source.Result{Keyword: keyword, Status: source.StatusFailed, Err: errors.New("404 Not Found")}
	}
	return source.Result{Keyword: keyword, Lines: strings.Split(body, "\n"), Status: source.StatusOK}
}

var fragments = map[string]string{
	"google": `# Google
include:google-ads
domain:google.com
full:www.google.com @cn
regexp:^gg\d+\.google\.com$
8.8.8.8`,
	"bilibili": `bilibili.com
full:api.bilibili.com
@ads
domain:google.com`,
}

func setup(t *testing.T, targets string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input = filepath.Join(dir, "target_sites.txt")
	cfg.Output = filepath.Join(dir, "adguardhome_blocklist.txt")
	require.NoError(t, os.WriteFile(cfg.Input, []byte(targets), 0644))
	return cfg
}

func run(t *testing.T, cfg *config.Config, opts ...Option) (Report, error) {
	t.Helper()
	b, err := New(cfg, &fakeFetcher{fragments: fragments}, append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return b.Run(context.Background())
}

func readOutput(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	return string(data)
}

func TestRunPlain(t *testing.T) {
	cfg := setup(t, "google\n# comment\nBilibili\n")

	report, err := run(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, `# AdGuard Home Blocklist for: google, bilibili
# Source: v2fly/domain-list-community (Strict Keyword Matching)
# Last Updated: 2025-01-02 03:04:05 UTC

api.bilibili.com
bilibili.com
google.com
www.google.com
`, readOutput(t, cfg))

	assert.Equal(t, []string{"google", "bilibili"}, report.Keywords)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 4, report.Tokens)
	assert.Equal(t, 10, report.Lines)
	assert.Equal(t, 1, report.Skipped[geosite.SkipInclude])
	assert.Equal(t, 1, report.Skipped[geosite.SkipRegexp])
	assert.Equal(t, 1, report.Skipped[geosite.SkipIP])
	assert.Equal(t, 1, report.Skipped[geosite.SkipAttribute])
	assert.Equal(t, 1, report.Skipped[geosite.SkipComment])
}

func TestRunRules(t *testing.T) {
	cfg := setup(t, "google\nbilibili\n")
	cfg.Dialect = config.DialectRules

	report, err := run(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, `! Title: AdGuard Home Blocklist (google, bilibili)
! Description: Generated from v2fly/domain-list-community, include: directives not followed
! Count: 4
! Last modified: Thu Jan  2 03:04:05 UTC 2025
|api.bilibili.com^
|www.google.com^
||bilibili.com^
||google.com^
`, readOutput(t, cfg))
	assert.Equal(t, 4, report.Tokens)
	assert.Zero(t, report.Dropped)
}

func TestRunFailedKeywordSkipped(t *testing.T) {
	cfg := setup(t, "nonexistent\nbilibili\n")

	report, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"nonexistent"}, report.Failed)
	assert.Equal(t, 3, report.Tokens)
	assert.Contains(t, readOutput(t, cfg), "# AdGuard Home Blocklist for: nonexistent, bilibili\n")
}

func TestRunZeroTokensStillWrites(t *testing.T) {
	cfg := setup(t, "nonexistent\n")

	report, err := run(t, cfg)
	require.NoError(t, err)
	assert.Zero(t, report.Tokens)
	assert.True(t, strings.HasSuffix(readOutput(t, cfg), "UTC\n\n"))
}

func TestRunOnlyComments(t *testing.T) {
	cfg := setup(t, "# nothing\n\n   \n")

	_, err := run(t, cfg)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, statErr := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingInput(t *testing.T) {
	cfg := setup(t, "google\n")
	require.NoError(t, os.Remove(cfg.Input))

	_, err := run(t, cfg)
	assert.ErrorIs(t, err, geosite.ErrTargetsNotFound)

	_, statErr := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunReproducibleAcrossConcurrency(t *testing.T) {
	cfg := setup(t, "google\nbilibili\nnonexistent\n")
	cfg.Dialect = config.DialectRules

	_, err := run(t, cfg)
	require.NoError(t, err)
	first := readOutput(t, cfg)

	cfg.Concurrency = 4
	report, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, readOutput(t, cfg))
	assert.Equal(t, []string{"nonexistent"}, report.Failed)
}

func TestRunWritesMetrics(t *testing.T) {
	cfg := setup(t, "google\nnonexistent\n")
	cfg.MetricsFile = filepath.Join(filepath.Dir(cfg.Output), "siteblock.prom")

	_, err := run(t, cfg, WithMetrics(metrics.New()))
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "siteblock_keywords_total 2\n")
	assert.Contains(t, text, "siteblock_fetch_failures_total 1\n")
	assert.Contains(t, text, `siteblock_lines_skipped_total{reason="include"} 1`)
	assert.Contains(t, text, "siteblock_tokens 2\n")
}

func TestRunCanceled(t *testing.T) {
	cfg := setup(t, "google\n")
	b, err := New(cfg, &fakeFetcher{fragments: fragments})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadDialect(t *testing.T) {
	cfg := config.Default()
	cfg.Dialect = "hosts"
	_, err := New(cfg, &fakeFetcher{})
	assert.Error(t, err)
}

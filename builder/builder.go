// Package builder runs the fetch, normalize, aggregate and write pipeline.
package builder

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"siteblock/adblock"
	"siteblock/blocklist"
	"siteblock/config"
	"siteblock/geosite"
	"siteblock/logger"
	"siteblock/metrics"
	"siteblock/source"
)

var log = logger.For("Build")

// ErrNoTargets is returned when the target file holds no keyword. No output
// file is written in that case.
var ErrNoTargets = errors.New("no target sites found")

// Fetcher fetches the raw fragment of one keyword. Failures are reported in
// the result, never as an error.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string) source.Result
}

// Report summarizes one run.
type Report struct {
	Keywords []string
	Failed   []string
	Lines    int
	Skipped  map[geosite.SkipReason]int
	Tokens   int // tokens written
	Dropped  int // tokens rejected by rule validation
	Output   string
	Duration time.Duration
}

// Builder wires the pipeline stages together.
type Builder struct {
	cfg        *config.Config
	fetcher    Fetcher
	normalizer *geosite.Normalizer
	dialect    geosite.Dialect
	metrics    *metrics.Recorder
	now        func() time.Time
}

type Option func(*Builder)

// WithClock replaces time.Now, so a run can be reproduced byte for byte.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithMetrics records run metrics into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = r }
}

func New(cfg *config.Config, f Fetcher, opts ...Option) (*Builder, error) {
	policy, err := geosite.PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:        cfg,
		fetcher:    f,
		normalizer: geosite.NewNormalizer(policy),
		dialect:    policy.Dialect,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics == nil {
		b.metrics = metrics.New()
	}
	return b, nil
}

// fragment 单个关键词的处理结果
type fragment struct {
	failed bool
	result geosite.Result
}

// Run executes the pipeline once. It returns geosite.ErrTargetsNotFound when
// the input file is missing and ErrNoTargets when it is empty; in both cases
// the output file is left untouched.
func (b *Builder) Run(ctx context.Context) (Report, error) {
	start := b.now()
	report := Report{
		Output:  b.cfg.Output,
		Skipped: make(map[geosite.SkipReason]int),
	}

	keywords, err := geosite.ReadTargets(b.cfg.Input)
	if err != nil {
		return report, err
	}
	if len(keywords) == 0 {
		return report, ErrNoTargets
	}
	report.Keywords = keywords

	set := blocklist.NewSet()
	frags := make([]fragment, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i, kw := range keywords {
		g.Go(func() error {
			res := b.fetcher.Fetch(gctx, kw)
			if res.Status == source.StatusFailed {
				frags[i].failed = true
				return nil
			}

			nr := b.normalizer.NormalizeLines(res.Lines)
			added := set.AddAll(nr.Tokens)
			frags[i].result = nr
			log.Debugf("%s: %d lines, %d tokens, %d new", kw, nr.Lines, len(nr.Tokens), added)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	// 按关键词顺序汇总，报告与并发度无关
	for i, f := range frags {
		b.metrics.ObserveKeyword(f.failed)
		if f.failed {
			report.Failed = append(report.Failed, keywords[i])
			continue
		}
		report.Lines += f.result.Lines
		for reason, n := range f.result.Skipped {
			report.Skipped[reason] += n
		}
	}
	for _, reason := range geosite.SkipReasons {
		b.metrics.ObserveSkipped(string(reason), report.Skipped[reason])
	}

	w := blocklist.NewWriter(b.dialect)
	if b.dialect == geosite.DialectRules {
		w.Validate = adblock.ValidateRule
	}

	header := blocklist.Header{
		Keywords:  keywords,
		Title:     b.cfg.Title,
		Generated: b.now(),
	}
	n, err := w.WriteFile(b.cfg.Output, header, set)
	if err != nil {
		return report, err
	}
	report.Tokens = n
	report.Dropped = set.Len() - n

	end := b.now()
	report.Duration = end.Sub(start)
	b.metrics.SetTokens(n)
	b.metrics.Finish(end, report.Duration)

	if b.cfg.MetricsFile != "" {
		if err := b.metrics.WriteTextfile(b.cfg.MetricsFile); err != nil {
			log.Warnf("write metrics to %s: %v", b.cfg.MetricsFile, err)
		}
	}

	log.Infof("blocklist saved to %s (%d %s from %d keywords, %d failed)",
		b.cfg.Output, n, unit(b.dialect), len(keywords), len(report.Failed))
	return report, nil
}

func unit(d geosite.Dialect) string {
	if d == geosite.DialectRules {
		return "rules"
	}
	return "domains"
}

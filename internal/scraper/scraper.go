// Package scraper runs the per-keyword pipeline: resolve, fetch, extract,
// persist. Keywords are processed strictly in sequence with a fixed pacing
// delay between them.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkonrad/wikiharvest/internal/storage"
	"github.com/mkonrad/wikiharvest/internal/types"
)

// Resolver turns a keyword into an article URL ("" = no match).
type Resolver interface {
	Resolve(ctx context.Context, keyword string) (string, error)
}

// Extractor fetches an article URL and extracts its record (nil = fetch failed).
type Extractor interface {
	Extract(ctx context.Context, url string) (*types.ArticleRecord, error)
}

// RobotsGate answers whether a URL may be fetched.
type RobotsGate interface {
	Allowed(ctx context.Context, url string) (bool, error)
}

// KeywordState tracks where a keyword is in its pipeline.
type KeywordState int

const (
	StatePending KeywordState = iota
	StateResolved
	StateFetched
	StatePersisted
	StateSkipped
)

func (s KeywordState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFetched:
		return "fetched"
	case StatePersisted:
		return "persisted"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// RunStats counts keyword outcomes for a run.
type RunStats struct {
	Keywords  int
	Resolved  int
	Fetched   int
	Persisted int
	Skipped   int
}

// Scraper drives the sequential keyword pipeline.
type Scraper struct {
	resolver  Resolver
	extractor Extractor
	store     storage.Store
	robots    RobotsGate // nil disables the robots gate
	delay     time.Duration
	logger    *slog.Logger
}

// New creates a Scraper. robots may be nil to skip robots.txt checks.
func New(resolver Resolver, extractor Extractor, store storage.Store, robots RobotsGate, delay time.Duration, logger *slog.Logger) *Scraper {
	return &Scraper{
		resolver:  resolver,
		extractor: extractor,
		store:     store,
		robots:    robots,
		delay:     delay,
		logger:    logger.With("component", "scraper"),
	}
}

// Run processes every keyword in order and finalizes the run summary when at
// least one record was produced. Enumerated failures (no match, fetch
// failure, robots-disallowed) skip the keyword; anything else aborts the run.
func (s *Scraper) Run(ctx context.Context, keywords []string) ([]*types.ArticleRecord, *RunStats, error) {
	stats := &RunStats{Keywords: len(keywords)}
	var records []*types.ArticleRecord

	for _, keyword := range keywords {
		rec, err := s.processKeyword(ctx, keyword, stats)
		if err != nil {
			return records, stats, err
		}
		if rec != nil {
			records = append(records, rec)
		}

		// Courtesy pause after every keyword, success or not.
		if err := s.pause(ctx); err != nil {
			return records, stats, err
		}
	}

	if len(records) > 0 {
		if err := s.store.Finalize(ctx, records); err != nil {
			return records, stats, fmt.Errorf("finalize run: %w", err)
		}
	}

	return records, stats, nil
}

// processKeyword walks one keyword through the state machine. A nil record
// with nil error means the keyword was skipped.
func (s *Scraper) processKeyword(ctx context.Context, keyword string, stats *RunStats) (*types.ArticleRecord, error) {
	state := StatePending

	url, err := s.resolver.Resolve(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if url == "" {
		state = StateSkipped
		stats.Skipped++
		s.logger.Debug("keyword done", "keyword", keyword, "state", state)
		return nil, nil
	}
	state = StateResolved
	stats.Resolved++

	if s.robots != nil {
		allowed, err := s.robots.Allowed(ctx, url)
		if err != nil {
			return nil, err
		}
		if !allowed {
			s.logger.Warn("robots.txt disallows article", "keyword", keyword, "url", url)
			stats.Skipped++
			return nil, nil
		}
	}

	rec, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		state = StateSkipped
		stats.Skipped++
		s.logger.Debug("keyword done", "keyword", keyword, "state", state)
		return nil, nil
	}
	state = StateFetched
	stats.Fetched++

	rec.Keyword = keyword
	if err := s.store.Persist(ctx, rec); err != nil {
		return nil, err
	}
	state = StatePersisted
	stats.Persisted++

	s.logger.Debug("keyword done", "keyword", keyword, "state", state)
	return rec, nil
}

func (s *Scraper) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

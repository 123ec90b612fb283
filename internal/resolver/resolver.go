// Package resolver turns keywords into canonical Wikipedia article URLs via
// the site's search endpoint.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkonrad/wikiharvest/internal/fetcher"
)

const searchPath = "/w/index.php?search="

// Resolver resolves keywords against a wiki's search endpoint.
type Resolver struct {
	client   *fetcher.Client
	siteRoot string
	logger   *slog.Logger
}

// New creates a Resolver for the given site root (e.g. https://en.wikipedia.org).
func New(client *fetcher.Client, siteRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:   client,
		siteRoot: strings.TrimRight(siteRoot, "/"),
		logger:   logger.With("component", "resolver"),
	}
}

// Resolve returns the article URL for a keyword, or "" when the search has
// no results. On an exact or unique match Wikipedia redirects the search
// request straight to the article, which shows up as a /wiki/ final URL.
// Otherwise the first search-result heading link wins.
func (r *Resolver) Resolve(ctx context.Context, keyword string) (string, error) {
	r.logger.Info("searching", "keyword", keyword)

	searchTerm := strings.ReplaceAll(keyword, " ", "+")
	resp, err := r.client.Get(ctx, r.siteRoot+searchPath+searchTerm)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", keyword, err)
	}

	if strings.Contains(resp.FinalURL, "/wiki/") && !strings.Contains(resp.FinalURL, "index.php?search=") {
		r.logger.Info("direct match found", "keyword", keyword, "url", resp.FinalURL)
		return resp.FinalURL, nil
	}

	doc, err := resp.Document()
	if err != nil {
		return "", fmt.Errorf("parse search results for %q: %w", keyword, err)
	}

	if href, ok := doc.Find(".mw-search-result-heading a").First().Attr("href"); ok {
		fullURL := r.siteRoot + href
		r.logger.Info("best match found", "keyword", keyword, "url", fullURL)
		return fullURL, nil
	}

	r.logger.Warn("no results found", "keyword", keyword)
	return "", nil
}

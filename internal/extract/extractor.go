// Package extract derives structured article records from Wikipedia page HTML.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkonrad/wikiharvest/internal/fetcher"
	"github.com/mkonrad/wikiharvest/internal/types"
)

// Extractor fetches an article page and extracts its content fields.
type Extractor struct {
	client   *fetcher.Client
	siteRoot string
	logger   *slog.Logger
}

// New creates an Extractor bound to the run's HTTP client.
func New(client *fetcher.Client, siteRoot string, logger *slog.Logger) *Extractor {
	return &Extractor{
		client:   client,
		siteRoot: strings.TrimRight(siteRoot, "/"),
		logger:   logger.With("component", "extractor"),
	}
}

// Extract fetches the article at url and returns its record. A non-success
// HTTP status is logged and yields (nil, nil) so the run can continue with
// the next keyword. Missing optional structures (infobox, summary) degrade
// to empty values, never errors.
func (e *Extractor) Extract(ctx context.Context, url string) (*types.ArticleRecord, error) {
	e.logger.Info("fetching content", "url", url)

	resp, err := e.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		e.logger.Error("failed to retrieve article", "url", url, "status", resp.StatusCode)
		return nil, nil
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	rec := types.NewArticleRecord("", url)
	rec.Title = strings.TrimSpace(doc.Find("#firstHeading").Text())
	rec.Summary = extractSummary(doc)
	rec.Infobox = extractInfobox(doc)
	rec.Sections = extractSections(doc)
	rec.References = extractReferences(doc)
	rec.Links = e.extractLinks(doc)
	rec.Images = extractImages(doc)

	return rec, nil
}

// extractSummary returns the first non-empty content paragraph that carries
// no image. Image-only paragraphs precede the lead text on many articles.
func extractSummary(doc *goquery.Document) string {
	var summary string
	doc.Find("#mw-content-text p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if text != "" && p.Find("img").Length() == 0 {
			summary = text
			return false
		}
		return true
	})
	return summary
}

// extractInfobox reads the first infobox table. Rows need both a header and
// a data cell; later duplicate headers overwrite earlier values.
func extractInfobox(doc *goquery.Document) *types.OrderedMap {
	infobox := types.NewOrderedMap()
	doc.Find(".infobox").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		header := row.Find("th").First()
		data := row.Find("td").First()
		if header.Length() > 0 && data.Length() > 0 {
			infobox.Set(strings.TrimSpace(header.Text()), strings.TrimSpace(data.Text()))
		}
	})
	return infobox
}

// extractSections walks the content area's top-level h2/h3/p elements in
// document order. Headings open sections; paragraphs accumulate onto the
// open one. Paragraphs before the first heading belong to the lead and are
// dropped here.
func extractSections(doc *goquery.Document) *types.OrderedMap {
	sections := types.NewOrderedMap()
	current := ""
	hasCurrent := false

	sel := "#mw-content-text > div > h2, #mw-content-text > div > h3, #mw-content-text > div > p"
	doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
		switch goquery.NodeName(el) {
		case "h2", "h3":
			el.Find(".mw-editsection").Remove()
			current = strings.TrimSpace(el.Text())
			hasCurrent = true
			sections.Set(current, "")
		case "p":
			if hasCurrent {
				sections.Append(current, strings.TrimSpace(el.Text())+" ")
			}
		}
	})
	return sections
}

func extractReferences(doc *goquery.Document) []string {
	refs := []string{}
	doc.Find(".reference-text").Each(func(_ int, ref *goquery.Selection) {
		refs = append(refs, strings.TrimSpace(ref.Text()))
	})
	return refs
}

// extractLinks keeps in-content anchors to internal wiki pages. Hrefs with a
// colon point into namespaces (File:, Category:, ...) and are skipped.
func (e *Extractor) extractLinks(doc *goquery.Document) []types.Link {
	links := []types.Link{}
	doc.Find("#mw-content-text a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/wiki/") && !strings.Contains(href, ":") {
			links = append(links, types.Link{
				Text: strings.TrimSpace(a.Text()),
				URL:  e.siteRoot + href,
			})
		}
	})
	return links
}

func extractImages(doc *goquery.Document) []types.Image {
	images := []types.Image{}
	doc.Find(".image img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if !strings.HasPrefix(src, "http") {
			src = "https:" + src
		}
		alt, _ := img.Attr("alt")
		images = append(images, types.Image{Src: src, Alt: alt})
	})
	return images
}

package extract

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkonrad/wikiharvest/internal/config"
	"github.com/mkonrad/wikiharvest/internal/fetcher"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const articleHTML = `<!DOCTYPE html>
<html>
<body>
<h1 id="firstHeading">Alan Turing</h1>
<div id="mw-content-text">
  <div class="mw-parser-output">
    <p><img src="//upload.example.org/turing.jpg" alt=""></p>
    <p>   </p>
    <p>Alan Mathison Turing was an English mathematician and computer scientist.</p>
    <p>He was highly influential in the development of theoretical computer science.</p>
    <h2>Early life<span class="mw-editsection">[edit]</span></h2>
    <p>Turing was born in Maida Vale, London.</p>
    <p>His father was on leave from his position in India.</p>
    <h3>Education<span class="mw-editsection">[edit]</span></h3>
    <p>Turing attended Sherborne School.</p>
    <h2>Legacy</h2>
    <table class="infobox">
      <tr><th>Born</th><td>23 June 1912</td></tr>
      <tr><th colspan="2">Header-only row</th></tr>
      <tr><th>Fields</th><td>Logic</td></tr>
      <tr><th>Fields</th><td>Computer science</td></tr>
    </table>
    <a href="/wiki/Computer_science">computer science</a>
    <a href="/wiki/Category:Mathematicians">category link</a>
    <a href="https://external.example.com/page">external</a>
    <a href="/wiki/Cryptanalysis">cryptanalysis</a>
    <span class="image"><img src="//upload.example.org/photo.png" alt="Turing in 1936"></span>
    <span class="image"><img src="https://cdn.example.org/abs.png"></span>
    <span class="reference-text">Hodges, Andrew (1983).</span>
    <span class="reference-text">Turing, A. M. (1936).</span>
  </div>
</div>
</body>
</html>`

func testDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestExtractSummarySkipsImageParagraphs(t *testing.T) {
	summary := extractSummary(testDoc(t))
	want := "Alan Mathison Turing was an English mathematician and computer scientist."
	if summary != want {
		t.Errorf("expected first text paragraph, got %q", summary)
	}
}

func TestExtractSummaryEmptyWhenNoParagraphs(t *testing.T) {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="mw-content-text"><p><img src="x.png"></p></div>`))
	if got := extractSummary(doc); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}

func TestExtractInfobox(t *testing.T) {
	infobox := extractInfobox(testDoc(t))

	if infobox.Len() != 2 {
		t.Fatalf("expected 2 entries (header-only row skipped, duplicate merged), got %d", infobox.Len())
	}
	if v, _ := infobox.Get("Born"); v != "23 June 1912" {
		t.Errorf("Born: got %q", v)
	}
	// Later duplicate header overwrites the earlier value.
	if v, _ := infobox.Get("Fields"); v != "Computer science" {
		t.Errorf("Fields: expected last occurrence to win, got %q", v)
	}
	if keys := infobox.Keys(); keys[0] != "Born" || keys[1] != "Fields" {
		t.Errorf("row order not preserved: %v", keys)
	}
}

func TestExtractSections(t *testing.T) {
	sections := extractSections(testDoc(t))

	wantKeys := []string{"Early life", "Education", "Legacy"}
	keys := sections.Keys()
	if len(keys) != len(wantKeys) {
		t.Fatalf("expected %d sections, got %d: %v", len(wantKeys), len(keys), keys)
	}
	for i, k := range wantKeys {
		if keys[i] != k {
			t.Errorf("section %d: expected %q, got %q", i, k, keys[i])
		}
	}

	early, _ := sections.Get("Early life")
	want := "Turing was born in Maida Vale, London. His father was on leave from his position in India. "
	if early != want {
		t.Errorf("Early life: expected %q, got %q", want, early)
	}

	edu, _ := sections.Get("Education")
	if edu != "Turing attended Sherborne School. " {
		t.Errorf("Education: got %q", edu)
	}

	// Heading with no following paragraphs stays empty.
	if legacy, _ := sections.Get("Legacy"); legacy != "" {
		t.Errorf("Legacy: expected empty, got %q", legacy)
	}
}

func TestExtractSectionsEditMarkerRemoved(t *testing.T) {
	sections := extractSections(testDoc(t))
	for _, k := range sections.Keys() {
		if strings.Contains(k, "[edit]") {
			t.Errorf("edit marker left in heading %q", k)
		}
	}
}

func TestExtractReferences(t *testing.T) {
	refs := extractReferences(testDoc(t))
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0] != "Hodges, Andrew (1983)." {
		t.Errorf("first reference: got %q", refs[0])
	}
}

func TestExtractLinksFiltersNamespaces(t *testing.T) {
	e := &Extractor{siteRoot: "https://en.wikipedia.org", logger: testLogger}
	links := e.extractLinks(testDoc(t))

	if len(links) != 2 {
		t.Fatalf("expected 2 internal links, got %d: %v", len(links), links)
	}
	if links[0].URL != "https://en.wikipedia.org/wiki/Computer_science" {
		t.Errorf("first link URL: got %q", links[0].URL)
	}
	if links[0].Text != "computer science" {
		t.Errorf("first link text: got %q", links[0].Text)
	}
	for _, l := range links {
		if strings.Contains(l.URL[len("https://en.wikipedia.org"):], ":") {
			t.Errorf("namespace link leaked through: %q", l.URL)
		}
	}
}

func TestExtractImagesNormalizesSrc(t *testing.T) {
	images := extractImages(testDoc(t))
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Src != "https://upload.example.org/photo.png" {
		t.Errorf("protocol-relative src not normalized: %q", images[0].Src)
	}
	if images[0].Alt != "Turing in 1936" {
		t.Errorf("alt text: got %q", images[0].Alt)
	}
	if images[1].Src != "https://cdn.example.org/abs.png" {
		t.Errorf("absolute src changed: %q", images[1].Src)
	}
	if images[1].Alt != "" {
		t.Errorf("missing alt should be empty, got %q", images[1].Alt)
	}
}

func TestExtractFetchesAndAssembles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.HTTP.RequestsPerSecond = 1000
	client, err := fetcher.New(cfg, testLogger)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()

	e := New(client, "https://en.wikipedia.org", testLogger)
	rec, err := e.Extract(context.Background(), srv.URL+"/wiki/Alan_Turing")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "Alan Turing" {
		t.Errorf("title: got %q", rec.Title)
	}
	if rec.Summary == "" {
		t.Error("expected non-empty summary")
	}
	if rec.URL != srv.URL+"/wiki/Alan_Turing" {
		t.Errorf("record URL: got %q", rec.URL)
	}
}

func TestExtractNonSuccessSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.HTTP.RequestsPerSecond = 1000
	client, err := fetcher.New(cfg, testLogger)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()

	e := New(client, "https://en.wikipedia.org", testLogger)
	rec, err := e.Extract(context.Background(), srv.URL+"/wiki/Removed")
	if err != nil {
		t.Fatalf("a non-2xx status must not be an error: %v", err)
	}
	if rec != nil {
		t.Error("expected nil record for failed fetch")
	}
}

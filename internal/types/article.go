package types

// SummaryMaxLen is the maximum summary length carried into the run summary
// table before truncation.
const SummaryMaxLen = 200

// Link is an internal wiki link found in article body content.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Image is an image reference found in an article.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// ArticleRecord is the structured content extracted from a single Wikipedia
// article. It is created once per successfully resolved keyword and is not
// mutated afterwards.
type ArticleRecord struct {
	Keyword    string      `json:"keyword"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	Summary    string      `json:"summary"`
	Infobox    *OrderedMap `json:"infobox"`
	Sections   *OrderedMap `json:"sections"`
	References []string    `json:"references"`
	Links      []Link      `json:"links"`
	Images     []Image     `json:"images"`
}

// NewArticleRecord creates an empty record for a keyword/URL pair.
func NewArticleRecord(keyword, url string) *ArticleRecord {
	return &ArticleRecord{
		Keyword:    keyword,
		URL:        url,
		Infobox:    NewOrderedMap(),
		Sections:   NewOrderedMap(),
		References: []string{},
		Links:      []Link{},
		Images:     []Image{},
	}
}

// SummaryRow is one row of the run-level summary table.
type SummaryRow struct {
	Keyword string
	Title   string
	URL     string
	Summary string
}

// NewSummaryRow derives a summary row from a record, truncating summaries
// over SummaryMaxLen characters and appending an ellipsis marker. The cut is
// by rune, not byte: lead paragraphs carry IPA and diacritics, and a byte
// slice could split a multi-byte character.
func NewSummaryRow(rec *ArticleRecord) SummaryRow {
	summary := rec.Summary
	if runes := []rune(summary); len(runes) > SummaryMaxLen {
		summary = string(runes[:SummaryMaxLen]) + "..."
	}
	return SummaryRow{
		Keyword: rec.Keyword,
		Title:   rec.Title,
		URL:     rec.URL,
		Summary: summary,
	}
}

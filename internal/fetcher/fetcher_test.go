package fetcher

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const patternPageHTML = `<html>
<head>
<title>Ravelry: Little Octopus pattern by A. Knitter</title>
<script type="application/ld+json">
{"name": "Little Octopus", "description": "A stuffed toy worked in the round.", "brand": {"name": "A. Knitter"}}
</script>
</head>
<body>
<a href="/patterns/library/little-octopus/report">report this pattern</a>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Craft</label>
  <div class="value">Knitting</div>
</div>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Category</label>
  <div class="value"><span>Softies</span><span>Other</span></div>
</div>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Needle size</label>
  <div class="value">US 7 (4.5 mm)</div>
</div>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Yarn</label>
  <div class="value">Cascade 220 Worsted</div>
</div>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Gauge</label>
  <div class="value">20 sts = 4 in</div>
</div>
<div class="field core_item_content__field">
  <label class="core_item_content__label">Sizes available</label>
  <div class="value">one size</div>
</div>
<div class="core_item_content__field--languages">
  <label class="core_item_content__label">Languages</label>
  <div class="value"><span>English</span><span>German</span></div>
</div>
<ul class="tag_set"><li class="tag"><a href="/x">toy</a></li><li class="tag"><a href="/y">head</a></li></ul>
<div class="notes">Cast on 6 stitches.
Work in the round.</div>
<a href="https://example.com/little-octopus.pdf">download the pdf</a>
</body>
</html>`

func parseTestPage(t *testing.T, html, pageURL string) map[string]any {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return ParsePage(doc, pageURL)
}

func TestParsePage(t *testing.T) {
	record := parseTestPage(t, patternPageHTML, "https://www.ravelry.com/patterns/library/little-octopus")

	if got := record["name"]; got != "Little Octopus" {
		t.Fatalf("name: %v", got)
	}
	if got := record["designer"]; got != "A. Knitter" {
		t.Fatalf("designer: %v", got)
	}
	if got := record["description"]; got != "A stuffed toy worked in the round." {
		t.Fatalf("description: %v", got)
	}
	if got := record["pattern_page"]; got != "https://www.ravelry.com/patterns/library/little-octopus" {
		t.Fatalf("pattern_page: %v", got)
	}
	if got := record["craft"]; got != "Knitting" {
		t.Fatalf("craft: %v", got)
	}
	if got := record["category"]; got != "Softies → Other" {
		t.Fatalf("category: %v", got)
	}
	if got := record["needle_size"]; got != "US 7 (4.5 mm)" {
		t.Fatalf("needle_size: %v", got)
	}
	if got := record["gauge"]; got != "20 sts = 4 in" {
		t.Fatalf("gauge: %v", got)
	}
	if got := record["sizes_available"]; got != "one size" {
		t.Fatalf("sizes_available: %v", got)
	}
	if got := record["suggested_yarn"]; !reflect.DeepEqual(got, []string{"Cascade 220 Worsted"}) {
		t.Fatalf("suggested_yarn: %v", got)
	}
	if got := record["languages"]; !reflect.DeepEqual(got, []string{"English", "German"}) {
		t.Fatalf("languages: %v", got)
	}
	if got := record["attributes"]; !reflect.DeepEqual(got, []string{"toy", "head"}) {
		t.Fatalf("attributes: %v", got)
	}
	full, ok := record["full_text"].(string)
	if !ok || !strings.Contains(full, "Cast on 6 stitches") {
		t.Fatalf("full_text: %v", record["full_text"])
	}
	links, ok := record["download_links"].([]string)
	if !ok || len(links) == 0 {
		t.Fatalf("download_links: %v", record["download_links"])
	}
	found := false
	for _, l := range links {
		if l == "https://example.com/little-octopus.pdf" {
			found = true
		}
	}
	if !found {
		t.Fatalf("pdf link missing: %v", links)
	}
}

func TestParsePageTitleFallback(t *testing.T) {
	html := `<html><head><title>Ravelry: Plain Square</title></head><body><p>nothing else</p></body></html>`
	record := parseTestPage(t, html, "")
	if got := record["name"]; got != "Plain Square" {
		t.Fatalf("name: %v", got)
	}
	if _, ok := record["pattern_page"]; ok {
		t.Fatalf("pattern_page invented: %v", record["pattern_page"])
	}
}

func TestParsePageReportLinkWins(t *testing.T) {
	html := `<html><body><a href="/patterns/library/real-page/report">report</a></body></html>`
	record := parseTestPage(t, html, "https://www.ravelry.com/something-else")
	if got := record["pattern_page"]; got != "https://www.ravelry.com/patterns/library/real-page" {
		t.Fatalf("pattern_page: %v", got)
	}
}

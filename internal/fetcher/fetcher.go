// Package fetcher acquires pattern pages and files over HTTP and turns them
// into raw records. It is an optional collaborator: the pipeline itself never
// performs I/O.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"knitnorm/internal"
	"knitnorm/internal/logger"
	"knitnorm/internal/util"
)

type Client struct {
	http      *http.Client
	limiter   *RateLimiter
	userAgent string
	log       *logger.Logger
}

func NewClient(timeoutMs, rateLimitRPS int, userAgent string, log *logger.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		limiter:   NewRateLimiter(rateLimitRPS),
		userAgent: userAgent,
		log:       log,
	}
}

func (c *Client) get(ctx context.Context, pageURL string) ([]byte, error) {
	c.limiter.WaitTurn()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FetchRecord downloads a pattern page and parses it into a raw record.
func (c *Client) FetchRecord(ctx context.Context, pageURL string) (internal.RawRecord, error) {
	c.log.Debug("fetching pattern page", "url", pageURL)
	blob, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(blob)))
	if err != nil {
		return nil, err
	}
	return ParsePage(doc, pageURL), nil
}

// ParsePage extracts the known raw-record fields from a pattern page. Fields
// the page does not carry are simply absent from the returned map.
func ParsePage(doc *goquery.Document, pageURL string) internal.RawRecord {
	record := internal.RawRecord{}

	if pageURL != "" {
		record["pattern_page"] = pageURL
	}
	if report, ok := doc.Find(`a[href*="/report"]`).First().Attr("href"); ok {
		page := strings.TrimSuffix(report, "/report")
		record["pattern_page"] = resolveLink(pageURL, page)
	}

	parseJSONLD(doc, record)

	yarns := []string{}
	doc.Find("div.field.core_item_content__field, div.core_item_content__field--languages").Each(func(_ int, field *goquery.Selection) {
		label := strings.ToLower(util.NormalizeSpaces(field.Find("label.core_item_content__label").Text()))
		value := field.Find("div.value")
		if label == "" || value.Length() == 0 {
			return
		}
		text := util.NormalizeSpaces(value.Text())
		switch {
		case strings.Contains(label, "craft"):
			record["craft"] = text
		case strings.Contains(label, "category"):
			record["category"] = categoryText(value)
		case strings.Contains(label, "needle"):
			record["needle_size"] = text
		case strings.Contains(label, "yarn"):
			yarns = append(yarns, text)
		case strings.Contains(label, "gauge"):
			record["gauge"] = text
		case strings.Contains(label, "sizes available"):
			record["sizes_available"] = text
		case strings.Contains(label, "languages"):
			langs := []string{}
			value.Find("span").Each(func(_ int, span *goquery.Selection) {
				if lang := util.NormalizeSpaces(span.Text()); lang != "" {
					langs = append(langs, lang)
				}
			})
			if len(langs) > 0 {
				record["languages"] = langs
			}
		}
	})
	if len(yarns) > 0 {
		record["suggested_yarn"] = yarns
	}

	attrs := []string{}
	doc.Find("ul.tag_set li.tag a").Each(func(_ int, tag *goquery.Selection) {
		if a := util.NormalizeSpaces(tag.Text()); a != "" {
			attrs = append(attrs, a)
		}
	})
	if len(attrs) > 0 {
		record["attributes"] = attrs
	}

	if notes := doc.Find("div.notes").First(); notes.Length() > 0 {
		if text := util.NormalizeSpaces(notes.Text()); text != "" {
			record["full_text"] = notes.Text()
		}
	}

	links := []string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		if strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, "download") || strings.Contains(lower, "/patterns/") {
			links = append(links, href)
		}
	})
	if len(links) > 0 {
		record["download_links"] = links
	}

	if _, ok := record["name"]; !ok {
		if title := util.NormalizeSpaces(doc.Find("title").Text()); title != "" {
			record["name"] = strings.TrimPrefix(title, "Ravelry: ")
		}
	}

	return record
}

// parseJSONLD reads the structured-data block for name, description and
// designer when the page carries one.
func parseJSONLD(doc *goquery.Document, record internal.RawRecord) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Brand       struct {
			Name string `json:"name"`
		} `json:"brand"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return
	}

	if s := util.NormalizeSpaces(payload.Name); s != "" {
		record["name"] = s
	}
	if s := util.NormalizeSpaces(payload.Description); s != "" {
		record["description"] = s
	}
	if s := util.NormalizeSpaces(payload.Brand.Name); s != "" {
		record["designer"] = s
	}
}

// categoryText rebuilds a nested category path like "Softies → Other" from
// the value's spans.
func categoryText(value *goquery.Selection) string {
	parts := []string{}
	value.Find("span").Each(func(_ int, span *goquery.Selection) {
		if p := util.NormalizeSpaces(span.Text()); p != "" {
			parts = append(parts, p)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, " → ")
	}
	return util.NormalizeSpaces(value.Text())
}

func resolveLink(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	rel, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(rel).String()
}

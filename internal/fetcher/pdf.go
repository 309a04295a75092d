package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// FetchPDFText downloads a pattern file, verifies it really is a PDF and
// extracts its plain text. Used as full_text fallback evidence when a page
// carries no usable notes.
func (c *Client) FetchPDFText(ctx context.Context, fileURL string) (string, error) {
	blob, err := c.get(ctx, fileURL)
	if err != nil {
		return "", err
	}
	return ExtractPDFText(blob)
}

// ExtractPDFText pulls the page texts out of a PDF blob. A blob that does
// not parse as a PDF is rejected, not silently treated as text.
func ExtractPDFText(blob []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", fmt.Errorf("not a valid pdf: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
	}
	return out.String(), nil
}

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// courtesyDelay is applied before every fetch so back-to-back research
	// queries do not hammer the same host.
	courtesyDelay = 1 * time.Second
	fetchTimeout  = 10 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// PageFetcher downloads a page and reduces it to plain text suitable for
// feeding into a research prompt.
type PageFetcher struct {
	httpClient *http.Client
	delay      time.Duration
}

func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		delay:      courtesyDelay,
	}
}

// PlainText fetches the URL and returns its visible text with scripts and
// styles stripped. It never fails: any error is returned inline as the page
// content so research degrades to the model's own knowledge.
func (f *PageFetcher) PlainText(ctx context.Context, pageURL string) string {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return fmt.Sprintf("Error scraping URL %s: %v", pageURL, ctx.Err())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Sprintf("Error scraping URL %s: %v", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error scraping URL %s: %v", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("Error scraping URL %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	text, err := extractText(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error scraping URL %s: %v", pageURL, err)
	}
	return text
}

// extractText walks the HTML token stream collecting text nodes, skipping
// the contents of script and style elements, and collapses blank lines.
func extractText(r io.Reader) (string, error) {
	tok := html.NewTokenizer(r)

	var b strings.Builder
	skipDepth := 0
	for {
		switch tok.Next() {
		case html.ErrorToken:
			if tok.Err() == io.EOF {
				return collapse(b.String()), nil
			}
			return "", tok.Err()
		case html.StartTagToken:
			name, _ := tok.TagName()
			if skippable(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if skippable(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tok.Text())
				b.WriteByte('\n')
			}
		}
	}
}

func skippable(tag string) bool {
	return tag == "script" || tag == "style"
}

// collapse trims every line and drops the empty ones, mirroring how the
// scraped text is normalised before it reaches the prompt.
func collapse(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		for _, chunk := range strings.Split(line, "  ") {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				kept = append(kept, chunk)
			}
		}
	}
	return strings.Join(kept, "\n")
}

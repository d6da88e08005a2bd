package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *PageFetcher {
	f := NewPageFetcher()
	f.delay = time.Millisecond
	return f
}

func TestPlainTextStripsScriptsAndStyles(t *testing.T) {
	page := `<html><head>
		<style>body { color: red; }</style>
		<script>alert("hi")</script>
	</head><body>
		<h1>Goa Travel Guide</h1>
		<p>Beaches   and    forts.</p>
		<script>trackPageView()</script>
	</body></html>`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	text := newTestFetcher().PlainText(context.Background(), srv.URL)
	assert.Contains(t, text, "Goa Travel Guide")
	assert.Contains(t, text, "Beaches")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "trackPageView")
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestPlainTextCollapsesBlankLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<body><p>  one  </p>\n\n\n<p>two</p></body>"))
	}))
	defer srv.Close()

	text := newTestFetcher().PlainText(context.Background(), srv.URL)
	for _, line := range strings.Split(text, "\n") {
		require.NotEqual(t, "", line)
		require.Equal(t, strings.TrimSpace(line), line)
	}
}

func TestPlainTextErrorsInline(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		text := newTestFetcher().PlainText(context.Background(), srv.URL)
		assert.Contains(t, text, "Error scraping URL "+srv.URL)
		assert.Contains(t, text, "403")
	})

	t.Run("unreachable host", func(t *testing.T) {
		text := newTestFetcher().PlainText(context.Background(), "http://127.0.0.1:1/nope")
		assert.Contains(t, text, "Error scraping URL http://127.0.0.1:1/nope")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		text := newTestFetcher().PlainText(ctx, "http://example.com")
		assert.Contains(t, text, "Error scraping URL http://example.com")
	})
}

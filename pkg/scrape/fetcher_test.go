package scrape

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

const page = `<!doctype html>
<html><head><title>Title</title><style>body{color:red}</style>
<script>var x = 1;</script></head>
<body>
  <h1> Heading </h1>
  <noscript>enable js</noscript>
  <p>First paragraph.</p>
  <!-- a comment -->
  <div><span>Nested</span> text</div>
</body></html>`

func TestVisibleText(t *testing.T) {
	text, err := VisibleText(page)
	require.NoError(t, err)

	assert.Equal(t, "Title\nHeading\nFirst paragraph.\nNested\ntext", text)
}

func TestFetcher_FetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(page))
		case "/long":
			_, _ = w.Write([]byte("<p>" + strings.Repeat("a", 50) + "</p>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcher(Config{MaxChars: 20})

	text, err := f.FetchText(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Title\nHeading"))

	text, err = f.FetchText(context.Background(), srv.URL+"/long")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 20)+TruncatedMarker, text)

	_, err = f.FetchText(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewFetcher(Config{Timeout: 20 * time.Millisecond}).FetchText(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetcher_ReadabilityFallsBackToVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>tiny</p></body></html>"))
	}))
	defer srv.Close()

	text, err := NewFetcher(Config{Mode: ModeReadability}).FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "tiny")
}

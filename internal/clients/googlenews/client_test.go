package googlenews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/clients"
	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"pelosi" - Google News</title>
    <item>
      <title>Pelosi discloses new NVIDIA calls - Reuters</title>
      <link>https://news.example.com/a</link>
      <guid isPermaLink="false">guid-a</guid>
      <pubDate>Tue, 02 Jan 2024 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Untitled wire story</title>
      <link>https://news.example.com/b</link>
    </item>
  </channel>
</rss>`

func newCache(t *testing.T) *clientdata.Repository {
	db, cleanup := testingpkg.NewTestDB(t, "client_data")
	t.Cleanup(cleanup)
	return clientdata.NewRepository(db.Conn())
}

func TestSearch_ParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nancy pelosi", r.URL.Query().Get("q"))
		assert.Equal(t, "US:en", r.URL.Query().Get("ceid"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, zerolog.Nop(), clients.WithRateLimit(0))
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	items, err := c.Search(context.Background(), "nancy pelosi")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "guid-a", items[0].ID)
	assert.Equal(t, "Pelosi discloses new NVIDIA calls", items[0].Title)
	assert.Equal(t, "Reuters", items[0].Source)
	assert.Equal(t, "https://news.example.com/a", items[0].URL)
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)))

	assert.Equal(t, "https://news.example.com/b", items[1].ID)
	assert.Equal(t, "Google News", items[1].Source)
	assert.True(t, items[1].PublishedAt.Equal(fixed))
}

func TestSearch_CachesAndFallsBackToStale(t *testing.T) {
	var calls int32
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	cache := newCache(t)
	c := NewClient(server.URL, cache, zerolog.Nop(), clients.WithRateLimit(0))
	ctx := context.Background()

	first, err := c.Search(ctx, "Pelosi")
	require.NoError(t, err)

	// fresh cache hit, no second request
	second, err := c.Search(ctx, "  pelosi ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, len(first), len(second))

	// expire the entry, then fail upstream: stale data is served
	require.NoError(t, cache.Store(ctx, clientdata.TableNewsItems, "pelosi", first, -time.Minute))
	fail.Store(true)

	stale, err := c.Search(ctx, "pelosi")
	require.NoError(t, err)
	assert.Len(t, stale, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearch_ErrorWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not xml at all {"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil, zerolog.Nop()).Search(context.Background(), "x")
	assert.Error(t, err)
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		raw, title, source string
	}{
		{"Headline - Bloomberg", "Headline", "Bloomberg"},
		{"A - B - The Verge", "A - B", "The Verge"},
		{"No publisher", "No publisher", "Google News"},
		{"Trailing - ", "Trailing -", "Google News"},
	}

	for _, tt := range tests {
		title, source := splitTitle(tt.raw)
		assert.Equal(t, tt.title, title, tt.raw)
		assert.Equal(t, tt.source, source, tt.raw)
	}
}

package reddit

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

const listing = `{
  "kind": "Listing",
  "data": {
    "children": [
      {"kind": "t3", "data": {
        "id": "xyz1", "title": "Pelosi bought more NVDA", "subreddit": "wallstreetbets",
        "author": "deepvalue", "score": 420, "num_comments": 69,
        "permalink": "/r/wallstreetbets/comments/xyz1/pelosi/", "created_utc": 1704207845.0
      }},
      {"kind": "t3", "data": {"title": "missing id"}}
    ]
  }
}`

func TestSearch_MapsPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pelosi", r.URL.Query().Get("q"))
		assert.Equal(t, "new", r.URL.Query().Get("sort"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "tracker-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(listing))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tracker-test", nil, zerolog.Nop(), clients.WithRateLimit(0))

	posts, err := c.Search(context.Background(), "pelosi", 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "xyz1", p.ID)
	assert.Equal(t, "wallstreetbets", p.Subreddit)
	assert.Equal(t, "deepvalue", p.Author)
	assert.Equal(t, 420, p.Score)
	assert.Equal(t, 69, p.NumComments)
	assert.Equal(t, "https://reddit.com/r/wallstreetbets/comments/xyz1/pelosi/", p.URL)
	assert.True(t, p.CreatedAt.Equal(time.Unix(1704207845, 0)))
}

func TestSearch_DefaultUserAgentAndLimitClamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer server.Close()

	posts, err := NewClient(server.URL, "", nil, zerolog.Nop()).Search(context.Background(), "q", 500)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSearch_StaleFallback(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) > 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(listing))
	}))
	defer server.Close()

	db, cleanup := testingpkg.NewTestDB(t, "client_data")
	defer cleanup()
	cache := clientdata.NewRepository(db.Conn())

	c := NewClient(server.URL, "", cache, zerolog.Nop(), clients.WithRateLimit(0))
	ctx := context.Background()

	first, err := c.Search(ctx, "Pelosi", 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, cache.Store(ctx, clientdata.TableRedditPosts, "pelosi:10", first, -time.Minute))

	stale, err := c.Search(ctx, "pelosi", 10)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, stale[0].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearch_UpstreamErrorWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", nil, zerolog.Nop()).Search(context.Background(), "q", 10)
	require.Error(t, err)

	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

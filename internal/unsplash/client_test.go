package unsplash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewClient("test-key", ts.Client())
	require.NoError(t, err)
	client.BaseURL = ts.URL
	return client, ts
}

func TestNewClientRequiresAccessKey(t *testing.T) {
	_, err := NewClient("", nil)
	require.ErrorIs(t, err, ErrMissingAccessKey)
}

func TestRandom(t *testing.T) {
	var gotAuth, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/photos/random", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		err := json.NewEncoder(w).Encode([]Photo{
			{ID: "abc123"},
			{ID: "def456"},
		})
		require.NoError(t, err)
	}))

	photos, err := client.Random(context.Background(), Criteria{Count: 2, Topic: "nature-id"})
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "abc123", photos[0].ID)
	assert.Equal(t, "Client-ID test-key", gotAuth)
	assert.Contains(t, gotQuery, "count=2")
	assert.Contains(t, gotQuery, "topics=nature-id")
	assert.NotContains(t, gotQuery, "query=")
}

func TestRandomQueryFilter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mountains", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte("[]"))
	}))

	_, err := client.Random(context.Background(), Criteria{Count: 1, Query: "mountains"})
	require.NoError(t, err)
}

func TestRandomRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.Random(context.Background(), Criteria{Count: 1})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestRandomMalformed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	_, err := client.Random(context.Background(), Criteria{Count: 1})
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRandomUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient("test-key", ts.Client())
	require.NoError(t, err)
	client.BaseURL = ts.URL
	ts.Close()

	_, err = client.Random(context.Background(), Criteria{Count: 1})
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFindTopic(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/topics/wallpapers", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"bo8jQKTaE0Y"}`))
	}))

	topic, err := client.FindTopic(context.Background(), "wallpapers")
	require.NoError(t, err)
	assert.Equal(t, "bo8jQKTaE0Y", topic.ID)
}

func TestDownloadNotifiesBeforeFetch(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	mux := http.NewServeMux()
	mux.HandleFunc("/track/abc123", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, "track")
		mu.Unlock()
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
	})
	mux.HandleFunc("/raw/abc123", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, "fetch")
		mu.Unlock()
		assert.Equal(t, "png", r.URL.Query().Get("fm"))
		_, _ = w.Write([]byte("image-bytes"))
	})

	client, ts := newTestClient(t, mux)
	photo := Photo{
		ID:    "abc123",
		URLs:  map[string]string{"raw": ts.URL + "/raw/abc123"},
		Links: map[string]string{"download_location": ts.URL + "/track/abc123"},
	}

	data, err := client.Download(context.Background(), photo, Quality{}, "png")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
	require.Equal(t, []string{"track", "fetch"}, calls)
}

func TestDownloadCustomQuality(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/track", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/raw", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1920", q.Get("w"))
		assert.Equal(t, "1080", q.Get("h"))
		assert.Equal(t, "min", q.Get("fit"))
		assert.Equal(t, "jpg", q.Get("fm"))
		_, _ = w.Write([]byte("ok"))
	})

	client, ts := newTestClient(t, mux)
	photo := Photo{
		ID:    "abc123",
		URLs:  map[string]string{"raw": ts.URL + "/raw"},
		Links: map[string]string{"download_location": ts.URL + "/track"},
	}

	_, err := client.Download(context.Background(), photo, CustomQuality(1920, 1080), "jpg")
	require.NoError(t, err)
}

func TestDownloadTrackFailureAbortsFetch(t *testing.T) {
	fetched := false
	mux := http.NewServeMux()
	mux.HandleFunc("/track", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/raw", func(w http.ResponseWriter, r *http.Request) {
		fetched = true
	})

	client, ts := newTestClient(t, mux)
	photo := Photo{
		ID:    "abc123",
		URLs:  map[string]string{"raw": ts.URL + "/raw"},
		Links: map[string]string{"download_location": ts.URL + "/track"},
	}

	_, err := client.Download(context.Background(), photo, Quality{}, "png")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.False(t, fetched, "content must not be fetched when tracking fails")
}

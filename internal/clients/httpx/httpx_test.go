package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkelsall/piefolio/internal/cache"
)

func TestGetCacheIdempotence(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(WithCache(cache.NewMemory(), time.Minute))

	first, err := client.Get(context.Background(), srv.URL, nil, "")
	require.NoError(t, err)
	second, err := client.Get(context.Background(), srv.URL, nil, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second call within TTL must not hit the network")
}

func TestGetRetriesThenSucceeds(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(WithRetries(3, time.Millisecond))

	body, err := client.Get(context.Background(), srv.URL, nil, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithRetries(2, time.Millisecond))

	_, err := client.Get(context.Background(), srv.URL, nil, "")
	require.Error(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls), "maxRetries+1 total attempts")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGetScopePartitionsCache(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(WithCache(cache.NewMemory(), time.Minute))

	_, err := client.Get(context.Background(), srv.URL, nil, "user-a")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), srv.URL, nil, "user-b")
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls), "different scopes must not share cache entries")
}

type recordingStore struct {
	cache.Store
	lastTTL time.Duration
}

func (r *recordingStore) Set(key string, value []byte, ttl time.Duration) {
	r.lastTTL = ttl
	r.Store.Set(key, value, ttl)
}

func TestGetWithTTLOverridesClientDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	store := &recordingStore{Store: cache.NewMemory()}
	client := NewClient(WithCache(store, time.Minute))

	_, err := client.Get(context.Background(), srv.URL+"/a", nil, "")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, store.lastTTL, "Get caches with the client TTL")

	_, err = client.GetWithTTL(context.Background(), srv.URL+"/b", nil, "", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, store.lastTTL, "GetWithTTL caches with the per-call TTL")
}

func TestGetCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithRetries(5, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, srv.URL, nil, "")
	require.ErrorIs(t, err, context.Canceled)
}

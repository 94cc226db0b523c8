package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><title>Hello</title></html>"))
	}))
	defer server.Close()

	f := New(WithDelay(0))
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><title>Hello</title></html>", string(body))
	// 固定浏览器 UA
	assert.Contains(t, gotUA, "Chrome/91.0.4472.124")
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := New(WithDelay(0))
	body, err := f.Fetch(context.Background(), server.URL+"/missing")
	assert.Nil(t, body)
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, server.URL+"/missing", fetchErr.URL)
	assert.Contains(t, fetchErr.Error(), "HTTP 404")
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	f := New(WithDelay(0), WithTimeout(50*time.Millisecond))
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestFetchConnectionRefused(t *testing.T) {
	f := New(WithDelay(0), WithTimeout(time.Second))
	// 端口无监听
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/none")
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
}

func TestFetchContextCancelledDuringDelay(t *testing.T) {
	f := New(WithDelay(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, "http://example.com")
	require.Error(t, err)
	// 取消应立即返回，而不是等满延时
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFetchAppliesPolitenessDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(WithDelay(100 * time.Millisecond))
	start := time.Now()
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

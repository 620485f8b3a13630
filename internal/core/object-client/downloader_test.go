package objectclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

func TestHTTPDownloader_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	data, err := NewHTTPDownloader(5*time.Second).Download(context.Background(), srv.URL+"/obj?sig=abc")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
}

func TestHTTPDownloader_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Object not found"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPDownloader(5*time.Second).Download(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *core.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode)
	assert.Equal(t, `404 | {"error":"Object not found"}`, err.Error())
}

func TestHTTPDownloader_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewHTTPDownloader(20*time.Millisecond).Download(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHTTPDownloader_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	d := NewHTTPDownloader(5 * time.Second)
	d.maxBytes = 16
	_, err := d.Download(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "larger than")
}

func TestSplitEndpoint(t *testing.T) {
	host, secure, err := splitEndpoint("https://storage.example.com/", false)
	require.NoError(t, err)
	assert.Equal(t, "storage.example.com", host)
	assert.True(t, secure)

	host, secure, err = splitEndpoint("localhost:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	_, _, err = splitEndpoint("https://", true)
	assert.Error(t, err)
}

func TestMinioClient_NoEndpoint(t *testing.T) {
	c := &MinioClient{}
	_, err := c.CreateSignedURL(context.Background(), "b", "k", time.Minute)
	assert.ErrorIs(t, err, errNoEndpoint)
}

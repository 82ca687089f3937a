package collector

import (
	"context"
	"errors"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeRequest struct {
	method      string
	path        string
	org         string
	bucket      string
	precision   string
	auth        string
	contentType string
	body        string
}

type fakeStore struct {
	mu       sync.Mutex
	status   int
	requests []storeRequest
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	b, _ := ioutil.ReadAll(req.Body)
	q := req.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, storeRequest{
		method:      req.Method,
		path:        req.URL.Path,
		org:         q.Get("org"),
		bucket:      q.Get("bucket"),
		precision:   q.Get("precision"),
		auth:        req.Header.Get("Authorization"),
		contentType: req.Header.Get("Content-Type"),
		body:        string(b),
	})
	status := s.status
	s.mu.Unlock()

	if status >= 300 {
		http.Error(w, `{"code":"invalid","message":"bad line"}`, status)
		return
	}
	w.WriteHeader(status)
}

func (s *fakeStore) snapshot() []storeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeRequest(nil), s.requests...)
}

func newFakeStore(t *testing.T, status int) (*fakeStore, StoreConfig) {
	store := &fakeStore{status: status}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	config := DefaultConfig().Store
	config.URL = srv.URL
	config.Token = "secret-token"

	return store, config
}

func TestWriteEndpoint(t *testing.T) {
	config := DefaultConfig().Store
	config.URL = "http://localhost:8086/"

	endpoint, err := writeEndpoint(config)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8086/api/v2/write?bucket=ISI_KOPI&org=its&precision=s", endpoint)

	config.URL = "://bad"
	_, err = writeEndpoint(config)
	assert.Error(t, err)
}

func TestLineWriterPostsLine(t *testing.T) {
	store, config := newFakeStore(t, http.StatusNoContent)
	logger, _ := newObservedLogger()
	w, err := NewLineWriter(config, nil, logger)
	require.NoError(t, err)

	line := `monitoring,sensor_id=S1,location=Room\ A,stage=Dry temperature=21.3,humidity=55 1704067200`
	require.NoError(t, w.WriteLine(context.Background(), line))

	requests := store.snapshot()
	require.Len(t, requests, 1)
	assert.Equal(t, storeRequest{
		method:      http.MethodPost,
		path:        "/api/v2/write",
		org:         "its",
		bucket:      "ISI_KOPI",
		precision:   "s",
		auth:        "Token secret-token",
		contentType: "text/plain",
		body:        line,
	}, requests[0])
}

func TestLineWriterRejected(t *testing.T) {
	_, config := newFakeStore(t, http.StatusBadRequest)
	logger, _ := newObservedLogger()
	w, err := NewLineWriter(config, nil, logger)
	require.NoError(t, err)

	err = w.WriteLine(context.Background(), "garbage")
	assert.True(t, errors.Is(err, ErrStoreRejected), "got %v", err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "bad line")
}

func TestLineWriterTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	config := DefaultConfig().Store
	config.URL = "http://" + addr
	logger, _ := newObservedLogger()
	w, err := NewLineWriter(config, nil, logger)
	require.NoError(t, err)

	err = w.WriteLine(context.Background(), "monitoring temperature=1 0")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStoreRejected))
}

func TestCollectorPostsScenarioRecord(t *testing.T) {
	store, config := newFakeStore(t, http.StatusNoContent)
	logger, _ := newObservedLogger()
	w, err := NewLineWriter(config, nil, logger)
	require.NoError(t, err)

	addr, _, _ := startCollector(t, w)
	writeLines(t, dial(t, addr), recordS1)

	require.Eventually(t, func() bool { return len(store.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	got := store.snapshot()[0]
	assert.Equal(t, `monitoring,sensor_id=S1,location=Room\ A,stage=Dry temperature=21.3,humidity=55 1704067200`, got.body)
	assert.Equal(t, "Token secret-token", got.auth)
	assert.Equal(t, "s", got.precision)
}

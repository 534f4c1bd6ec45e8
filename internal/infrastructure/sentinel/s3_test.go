package sentinel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 serves path-style object requests from a map
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.Contains(r.URL.Path, "forbidden") {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodHead:
		if f.objects[r.URL.Path] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[r.URL.Path] = true
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string]bool)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Endpoint:     srv.URL,
		Region:       "us-east-1",
		Bucket:       "prints",
		Prefix:       "sentinels/",
		AccessKey:    "test",
		SecretKey:    "test",
		UsePathStyle: true,
		MaxAttempts:  1,
	}, zap.NewNop())
	require.NoError(t, err)
	return store, fake
}

func TestS3Store(t *testing.T) {
	store, _ := newFakeS3Store(t)
	exerciseStore(t, store)
}

func TestS3Store_ObjectLayout(t *testing.T) {
	store, fake := newFakeS3Store(t)

	require.NoError(t, store.Put(context.Background(), testKey, []byte("%PDF")))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.objects["/prints/sentinels/"+testKey+".pdf"])
}

func TestS3Store_ForbiddenIsAnError(t *testing.T) {
	store, _ := newFakeS3Store(t)

	has, err := store.Has(context.Background(), "label-2026-02-02-forbidden")
	assert.Error(t, err)
	assert.False(t, has)
}

func TestNewS3Store_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Store(ctx, S3Config{}, nil)
	assert.Error(t, err)

	_, err = NewS3Store(ctx, S3Config{Bucket: "b", AccessKey: "only-one"}, nil)
	assert.Error(t, err)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
	}{
		{"", true, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.endpoint, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Package testutil has helpers shared by tests in several packages.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// S3Server is an in-memory stand-in for an S3 endpoint, serving path-style requests
// for a single bucket. It understands just enough of the protocol for HeadBucket,
// HeadObject, PutObject, and (ranged) GetObject.
type S3Server struct {
	URL    string
	Bucket string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewS3Server starts a server for bucket and stops it when the test ends.
// It also points the AWS SDK at static test credentials.
func NewS3Server(t testing.TB, bucket string) *S3Server {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	s := &S3Server{Bucket: bucket, objects: map[string][]byte{}}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Object returns a stored object and whether it exists.
func (s *S3Server) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// SetObject stores an object directly.
func (s *S3Server) SetObject(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

func (s *S3Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != s.Bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if key == "" {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.SetObject(key, data)
		w.Header().Set("ETag", `"test"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead, http.MethodGet:
		data, ok := s.Object(key)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"test"`)
		http.ServeContent(w, r, key, time.Unix(0, 0), bytes.NewReader(data))
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

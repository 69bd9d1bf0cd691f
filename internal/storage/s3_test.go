package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		filename string
		suffix   string
	}{
		{"plain", "shot.png", "-shot.png"},
		{"path components stripped", "../../etc/passwd", "-passwd"},
		{"windows path", `C:\Users\me\shot.png`, "-shot.png"},
		{"spaces replaced", "my shot (1).png", "-my_shot_1_.png"},
		{"empty uses default", "", "-screenshot.png"},
		{"dot only uses default", ".", "-screenshot.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey("uploads/", tt.filename, now)
			if !strings.HasPrefix(key, "uploads/1700000000123-") {
				t.Errorf("unexpected prefix in %q", key)
			}
			if !strings.HasSuffix(key, tt.suffix) {
				t.Errorf("expected suffix %q in %q", tt.suffix, key)
			}
		})
	}
}

func TestObjectKey_UniqueWithinMillisecond(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := ObjectKey("", "a.png", now)
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			"public base wins",
			Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com/"},
			"https://cdn.example.com/uploads/k.png",
		},
		{
			"custom endpoint path style",
			Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://minio:9000/"},
			"http://minio:9000/b/uploads/k.png",
		},
		{
			"aws virtual hosted",
			Config{Bucket: "b", Region: "eu-west-2"},
			"https://b.s3.eu-west-2.amazonaws.com/uploads/k.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicURL(tt.cfg, "uploads/k.png"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewS3Store_Validation(t *testing.T) {
	if _, err := NewS3Store(context.Background(), Config{Region: "us-east-1"}); !errors.Is(err, ErrMissingBucket) {
		t.Errorf("expected ErrMissingBucket, got %v", err)
	}
	if _, err := NewS3Store(context.Background(), Config{Bucket: "b"}); !errors.Is(err, ErrMissingRegion) {
		t.Errorf("expected ErrMissingRegion, got %v", err)
	}
}

func TestS3Store_Put(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     string
		contentType string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		gotBody = string(body)
		contentType = r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Store(context.Background(), Config{
		Region:          "us-east-1",
		Bucket:          "shots",
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(42) }

	url, err := store.Put(context.Background(), "shot.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.HasPrefix(gotPath, "/shots/uploads/42-") || !strings.HasSuffix(gotPath, "-shot.png") {
		t.Errorf("unexpected object path %q", gotPath)
	}
	if gotBody != "png-bytes" {
		t.Errorf("unexpected body %q", gotBody)
	}
	if contentType != "image/png" {
		t.Errorf("expected image/png, got %q", contentType)
	}
	if url != server.URL+gotPath {
		t.Errorf("expected url %q, got %q", server.URL+gotPath, url)
	}
}

func TestS3Store_PutFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer server.Close()

	store, err := NewS3Store(context.Background(), Config{
		Region:          "us-east-1",
		Bucket:          "shots",
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Put(context.Background(), "shot.png", []byte("x"), "image/png"); err == nil {
		t.Error("expected error for 403 response")
	}
}

package material

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syllabus.txt")
	if err := os.WriteFile(path, []byte("Unit 1\n\nকোষ বিভাজন"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Loader{}.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Source != path || !strings.Contains(doc.Text, "কোষ বিভাজন") {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestLoadRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x81}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (Loader{}).Load(context.Background(), path); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadEmptyLocation(t *testing.T) {
	if _, err := (Loader{}).Load(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestLoadRemoteText(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Previous year paper, Section A"))
	}))
	t.Cleanup(server.Close)

	doc, err := Loader{HTTPClient: server.Client()}.Load(context.Background(), server.URL+"/papers/2023.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Text != "Previous year paper, Section A" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestDownloadCacheReusesFreshFile(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	ctx := context.Background()

	path, err := cache.Fetch(ctx, server.URL+"/books/physics.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if filepath.Ext(path) != ".pdf" {
		t.Fatalf("cached file should keep extension, got %s", path)
	}
	path2, err := cache.Fetch(ctx, server.URL+"/books/physics.pdf")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if path != path2 {
		t.Fatalf("paths differ: %s vs %s", path, path2)
	}
	if hits != 1 {
		t.Fatalf("expected single download, got %d hits", hits)
	}
}

func TestDownloadCacheRevalidatesStaleFile(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var conditional bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional = true
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("chapter text"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	ctx := context.Background()
	path, err := cache.Fetch(ctx, server.URL+"/notes.txt")
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	old := time.Now().Add(-(cacheTTL + time.Hour))
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, err := cache.Fetch(ctx, server.URL+"/notes.txt"); err != nil {
		t.Fatalf("conditional fetch: %v", err)
	}
	if !conditional {
		t.Fatal("expected a conditional request for the stale copy")
	}
}

func TestDownloadCacheResumesPartialDownload(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var rangeHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader = r.Header.Get("Range")
		w.Header().Set("Etag", `"resume"`)
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("world"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	rawURL := server.URL + "/guide.txt"
	filePath, metaPath, partPath := cache.pathsFor(rawURL)
	if err := os.WriteFile(partPath, []byte("hello "), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := writeMeta(metaPath, cacheMeta{ETag: `"resume"`}); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	path, err := cache.Fetch(context.Background(), rawURL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if path != filePath {
		t.Fatalf("unexpected path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("resume failed, got %q", string(data))
	}
	if rangeHeader != fmt.Sprintf("bytes=%d-", len("hello ")) {
		t.Fatalf("expected range header, got %q", rangeHeader)
	}
	if _, err := os.Stat(partPath); !os.IsNotExist(err) {
		t.Fatalf("partial file should be removed, err=%v", err)
	}
}

func TestDownloadCacheReportsServerErrors(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	if _, err := cache.Fetch(context.Background(), server.URL+"/missing.pdf"); err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("expected status error, got %v", err)
	}
}

// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/covid19db/internal/config"
)

const sampleCSV = "date,county,state,fips,cases,deaths\n2020-03-01,Harvey,Kansas,20079,1,0\n"

func testConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:                 5 * time.Second,
		UserAgent:               "covid19db-test",
		RequestsPerSecond:       1000,
		BreakerFailureThreshold: 2,
		BreakerTimeout:          time.Minute,
	}
}

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := New(testConfig(), t.TempDir(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", p, err)
	}
	return string(b)
}

func TestFetch_HTTP(t *testing.T) {
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.UserAgent())
		switch r.URL.Path {
		case "/us-counties.csv":
			_, _ = w.Write([]byte(sampleCSV))
		case "/values-sqlite.db.gz":
			_, _ = w.Write(gzipBytes(t, sampleCSV))
		case "/data.csv.zst":
			_, _ = w.Write(zstdBytes(t, sampleCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		path     string
		wantBase string
	}{
		{"plain", "/us-counties.csv", "nyt-us-counties.csv"},
		{"gzip", "/values-sqlite.db.gz", "nyt-values-sqlite.db"},
		{"zstd", "/data.csv.zst", "nyt-data.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t)
			local, err := f.Fetch(context.Background(), "nyt", srv.URL+tt.path)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if filepath.Base(local) != tt.wantBase {
				t.Errorf("local name = %s, want %s", filepath.Base(local), tt.wantBase)
			}
			if got := readFile(t, local); got != sampleCSV {
				t.Errorf("content = %q, want %q", got, sampleCSV)
			}
		})
	}

	if got, _ := userAgent.Load().(string); got != "covid19db-test" {
		t.Errorf("User-Agent = %q, want covid19db-test", got)
	}
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "owid", srv.URL+"/missing.csv")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("Fetch() error = %v, want ErrBadStatus", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusError = %+v, want 404", se)
	}

	entries, _ := os.ReadDir(f.WorkDir())
	if len(entries) != 0 {
		t.Errorf("work dir has %d entries after failure, want 0", len(entries))
	}
}

func TestFetch_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(ctx, "rtlive", srv.URL+"/rt.csv"); !errors.Is(err, ErrBadStatus) {
			t.Fatalf("attempt %d: error = %v, want ErrBadStatus", i+1, err)
		}
	}

	_, err := f.Fetch(ctx, "rtlive", srv.URL+"/rt.csv")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("third attempt error = %v, want ErrOpenState", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}

func TestFetch_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "owid", srv.URL+"/owid.csv")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
	if classify(err) != "canceled" {
		t.Errorf("classify() = %s, want canceled", classify(err))
	}
}

func TestFetch_LocalPath(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "locations.tsv")
	if err := os.WriteFile(plain, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	compressed := filepath.Join(dir, "values.db.gz")
	if err := os.WriteFile(compressed, gzipBytes(t, sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t)

	got, err := f.Fetch(context.Background(), "locations", plain)
	if err != nil {
		t.Fatalf("Fetch(plain): %v", err)
	}
	if got != plain {
		t.Errorf("plain path = %s, want it used in place", got)
	}

	got, err = f.Fetch(context.Background(), "combined", compressed)
	if err != nil {
		t.Fatalf("Fetch(gz): %v", err)
	}
	if filepath.Dir(got) != f.WorkDir() {
		t.Errorf("decompressed file %s not in work dir", got)
	}
	if readFile(t, got) != sampleCSV {
		t.Error("decompressed content mismatch")
	}

	if _, err := f.Fetch(context.Background(), "missing", filepath.Join(dir, "nope.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing path error = %v, want ErrNotExist", err)
	}
}

func TestFetch_Blob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "harvey.csv.gz"), gzipBytes(t, sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t)
	got, err := f.Fetch(context.Background(), "harveyco", "file://"+filepath.ToSlash(dir)+"/harvey.csv.gz")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Base(got) != "harveyco-harvey.csv" {
		t.Errorf("local name = %s", filepath.Base(got))
	}
	if readFile(t, got) != sampleCSV {
		t.Error("content mismatch")
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "owid", "ftp://example.com/owid.csv")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("Fetch() error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestFetch_CorruptGzip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.db.gz")
	if err := os.WriteFile(p, []byte("not gzip"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "combined", p)
	if !errors.Is(err, errDecompress) {
		t.Fatalf("Fetch() error = %v, want decompress error", err)
	}
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name  string
		want  compression
		plain string
	}{
		{"values-sqlite.db.gz", compressionGzip, "values-sqlite.db"},
		{"DATA.CSV.GZ", compressionGzip, "DATA.CSV"},
		{"owid.csv.zst", compressionZstd, "owid.csv"},
		{"locations.tsv", compressionNone, "locations.tsv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, plain := detectCompression(tt.name)
			if c != tt.want || plain != tt.plain {
				t.Errorf("detectCompression(%q) = %v, %q; want %v, %q", tt.name, c, plain, tt.want, tt.plain)
			}
		})
	}
}

func TestSplitBlobURL(t *testing.T) {
	tests := []struct {
		raw        string
		wantBucket string
		wantKey    string
	}{
		{"s3://covid/exports/values.db.gz?region=us-east-1", "s3://covid?region=us-east-1", "exports/values.db.gz"},
		{"gs://covid/owid.csv", "gs://covid", "owid.csv"},
		{"file:///srv/data/locations.tsv", "file:///srv/data", "locations.tsv"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, u, err := parseSource(tt.raw)
			if err != nil {
				t.Fatalf("parseSource: %v", err)
			}
			bucket, key := splitBlobURL(u)
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("splitBlobURL = %s, %s; want %s, %s", bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}

func TestCleanup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	t.Run("owned temp dir removed", func(t *testing.T) {
		f, err := New(testConfig(), "", false)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := f.Fetch(context.Background(), "owid", srv.URL+"/owid.csv"); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if err := f.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if _, err := os.Stat(f.WorkDir()); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("work dir still exists: %v", err)
		}
	})

	t.Run("configured dir keeps unrelated files", func(t *testing.T) {
		dir := t.TempDir()
		other := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(other, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		f, err := New(testConfig(), dir, false)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		local, err := f.Fetch(context.Background(), "owid", srv.URL+"/owid.csv")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if err := f.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if _, err := os.Stat(local); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("download %s still exists", local)
		}
		if _, err := os.Stat(other); err != nil {
			t.Errorf("unrelated file removed: %v", err)
		}
	})

	t.Run("keep downloads", func(t *testing.T) {
		dir := t.TempDir()
		f, err := New(testConfig(), dir, true)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		local, err := f.Fetch(context.Background(), "owid", srv.URL+"/owid.csv")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if err := f.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		if !strings.HasPrefix(local, dir) {
			t.Errorf("download %s outside work dir", local)
		}
		if _, err := os.Stat(local); err != nil {
			t.Errorf("kept download missing: %v", err)
		}
	})
}

// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"golang.org/x/time/rate"

	"github.com/tomtom215/covid19db/internal/config"
	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/metrics"
)

// Fetcher downloads sources into a work directory.
type Fetcher struct {
	cfg     config.FetchConfig
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	workDir     string
	ownsWorkDir bool
	keep        bool

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[int64]
	files    []string
}

// New returns a Fetcher writing into workDir. An empty workDir means a
// fresh temporary directory, removed by Cleanup unless keep is set.
func New(cfg config.FetchConfig, workDir string, keep bool) (*Fetcher, error) {
	f := &Fetcher{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:      logging.WithComponent("fetch"),
		keep:     keep,
		breakers: make(map[string]*gobreaker.CircuitBreaker[int64]),
	}

	if workDir == "" {
		dir, err := os.MkdirTemp("", "covid19db-")
		if err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
		f.workDir = dir
		f.ownsWorkDir = true
	} else {
		if err := os.MkdirAll(workDir, 0o750); err != nil {
			return nil, fmt.Errorf("create work dir %s: %w", workDir, err)
		}
		f.workDir = workDir
	}
	return f, nil
}

// WorkDir returns the directory downloads are written to.
func (f *Fetcher) WorkDir() string {
	return f.workDir
}

// Fetch makes the source src available on local disk and returns its path.
// name labels the source in logs, metrics and the downloaded file name.
func (f *Fetcher) Fetch(ctx context.Context, name, src string) (string, error) {
	start := time.Now()
	logger := logging.CtxComponent(ctx, "fetch")

	scheme, u, err := parseSource(src)
	if err != nil {
		metrics.RecordFetchError(name, classify(err))
		return "", err
	}

	var (
		local string
		n     int64
	)
	switch scheme {
	case "path":
		local, n, err = f.fetchPath(name, src)
	case "http", "https":
		local, n, err = f.fetchHTTP(ctx, name, u)
	case "file", "s3", "gs":
		local, n, err = f.fetchBlob(ctx, name, u)
	}
	if err != nil {
		metrics.RecordFetchError(name, classify(err))
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}

	metrics.RecordFetch(name, scheme, n, time.Since(start))
	logger.Info().
		Str("source", name).
		Str("scheme", scheme).
		Str("path", local).
		Int64("bytes", n).
		Dur("duration", time.Since(start)).
		Msg("Source fetched")
	return local, nil
}

// parseSource returns the scheme of src, or "path" for a filesystem path.
func parseSource(src string) (string, *url.URL, error) {
	if !strings.Contains(src, "://") {
		return "path", nil, nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", nil, fmt.Errorf("parse source %q: %w", src, err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "file", "s3", "gs":
		return scheme, u, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// fetchPath uses an uncompressed file in place and decompresses a
// compressed one into the work dir.
func (f *Fetcher) fetchPath(name, p string) (string, int64, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", 0, err
	}
	c, _ := detectCompression(p)
	if c == compressionNone {
		return p, info.Size(), nil
	}

	in, err := os.Open(p) //nolint:gosec // path comes from configuration
	if err != nil {
		return "", 0, err
	}
	defer in.Close() //nolint:errcheck // read-only

	return f.writeLocal(name, filepath.Base(p), func(w io.Writer) (int64, error) {
		return copyDecompressed(w, in, c)
	})
}

func (f *Fetcher) fetchHTTP(ctx context.Context, name string, u *url.URL) (string, int64, error) {
	cb := f.breaker(u.Host)

	var local string
	n, err := cb.Execute(func() (int64, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
		if err != nil {
			return 0, err
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close() //nolint:errcheck // body fully consumed or abandoned

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return 0, &StatusError{URL: u.Redacted(), StatusCode: resp.StatusCode}
		}

		c, _ := detectCompression(u.Path)
		var n int64
		local, n, err = f.writeLocal(name, path.Base(u.Path), func(w io.Writer) (int64, error) {
			return copyDecompressed(w, resp.Body, c)
		})
		return n, err
	})
	if err != nil {
		return "", 0, err
	}
	return local, n, nil
}

// fetchBlob reads one object through gocloud. The bucket is the URL
// without its last path element; the object key is that element.
func (f *Fetcher) fetchBlob(ctx context.Context, name string, u *url.URL) (string, int64, error) {
	bucketURL, key := splitBlobURL(u)

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return "", 0, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close() //nolint:errcheck // read-only

	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return "", 0, fmt.Errorf("open object %s: %w", key, err)
	}
	defer r.Close() //nolint:errcheck // read-only

	c, _ := detectCompression(key)
	return f.writeLocal(name, path.Base(key), func(w io.Writer) (int64, error) {
		return copyDecompressed(w, r, c)
	})
}

func splitBlobURL(u *url.URL) (bucketURL, key string) {
	b := *u
	switch b.Scheme {
	case "file":
		b.Path = path.Dir(u.Path)
		key = path.Base(u.Path)
	default:
		key = strings.TrimPrefix(u.Path, "/")
		b.Path = ""
	}
	return b.String(), key
}

// writeLocal streams into a temp file in the work dir and renames it to
// "<name>-<base without compression suffix>" once complete.
func (f *Fetcher) writeLocal(name, base string, copyFn func(io.Writer) (int64, error)) (string, int64, error) {
	_, plain := detectCompression(base)
	if plain == "" || plain == "." || plain == "/" {
		plain = "data"
	}
	dst := filepath.Join(f.workDir, name+"-"+plain)

	tmp, err := os.CreateTemp(f.workDir, name+"-*.part")
	if err != nil {
		return "", 0, err
	}
	tmpName := tmp.Name()

	n, err := copyFn(tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return "", 0, err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return "", 0, err
	}

	f.mu.Lock()
	f.files = append(f.files, dst)
	f.mu.Unlock()
	return dst, n, nil
}

// breaker returns the circuit breaker for host, creating it on first use.
func (f *Fetcher) breaker(host string) *gobreaker.CircuitBreaker[int64] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[host]; ok {
		return cb
	}

	threshold := f.cfg.BreakerFailureThreshold
	cb := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        "fetch-" + host,
		MaxRequests: 1,
		Timeout:     f.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Cancellation is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
	f.breakers[host] = cb
	return cb
}

// Cleanup removes downloaded files, and the work dir if New created it,
// unless downloads are kept.
func (f *Fetcher) Cleanup() error {
	if f.keep {
		return nil
	}
	if f.ownsWorkDir {
		return os.RemoveAll(f.workDir)
	}

	f.mu.Lock()
	files := f.files
	f.files = nil
	f.mu.Unlock()

	var errs []error
	for _, p := range files {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

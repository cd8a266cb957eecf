package visual

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/agiangrant/toolkit/internal/logger"
)

var (
	// ErrMissingURL is returned when a visual that loads an asset has no url.
	ErrMissingURL = errors.New("visual: missing url")
	// ErrUnsupportedURL is returned for url schemes the loader cannot fetch.
	ErrUnsupportedURL = errors.New("visual: unsupported url")
)

// Poster runs functions on the loop goroutine.
type Poster interface {
	Post(fn func())
}

// FittingMode selects how a loaded image is scaled to the desired size.
type FittingMode uint8

const (
	// FitDefault keeps the image size.
	FitDefault FittingMode = iota
	// ShrinkToFit scales down to fit inside the desired size, keeping aspect.
	ShrinkToFit
	// ScaleToFill scales and crops to cover the desired size.
	ScaleToFill
	// FitWidth scales to the desired width, keeping aspect.
	FitWidth
	// FitHeight scales to the desired height, keeping aspect.
	FitHeight
	// Stretch scales to exactly the desired size.
	Stretch
)

var fittingNames = [...]string{
	FitDefault:  "DEFAULT",
	ShrinkToFit: "SHRINK_TO_FIT",
	ScaleToFill: "SCALE_TO_FILL",
	FitWidth:    "FIT_WIDTH",
	FitHeight:   "FIT_HEIGHT",
	Stretch:     "FILL",
}

func (f FittingMode) String() string {
	if int(f) < len(fittingNames) {
		return fittingNames[f]
	}
	return "UNKNOWN"
}

// ParseFittingMode returns the fitting mode named s, case insensitive.
func ParseFittingMode(s string) (FittingMode, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range fittingNames {
		if name == s {
			return FittingMode(i), true
		}
	}
	return 0, false
}

// ImageRequest describes one image to load.
type ImageRequest struct {
	URL    string
	Width  int
	Height int
	Fit    FittingMode
}

func (r ImageRequest) key() string {
	return fmt.Sprintf("%s@%dx%d/%d", r.URL, r.Width, r.Height, r.Fit)
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// MaxConcurrent bounds the number of fetches in flight (default: 4).
	MaxConcurrent int64
	// HTTPTimeout bounds one http fetch (default: 10s).
	HTTPTimeout time.Duration
	Logger      *zap.Logger
}

// Loader fetches and decodes assets off the loop goroutine and posts the
// results back to it. Concurrent requests for the same asset share one
// fetch, and decoded images are cached.
type Loader struct {
	poster Poster
	client *http.Client
	sem    *semaphore.Weighted
	group  singleflight.Group
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string]image.Image
}

// DefaultLoaderConfig returns the defaults NewLoader applies to zero fields.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MaxConcurrent: 4,
		HTTPTimeout:   10 * time.Second,
	}
}

// NewLoader creates a loader posting completions to poster.
func NewLoader(poster Poster, config LoaderConfig) *Loader {
	d := DefaultLoaderConfig()
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = d.MaxConcurrent
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = d.HTTPTimeout
	}
	return &Loader{
		poster: poster,
		client: &http.Client{Timeout: config.HTTPTimeout},
		sem:    semaphore.NewWeighted(config.MaxConcurrent),
		log:    logger.Or(config.Logger).Named("loader"),
		cache:  make(map[string]image.Image),
	}
}

// CachedImage returns the image already decoded for req, if any.
func (l *Loader) CachedImage(req ImageRequest) (image.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.cache[req.key()]
	return img, ok
}

// Evict drops every cached image loaded from u.
func (l *Loader) Evict(u string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.cache {
		if strings.HasPrefix(k, u+"@") {
			delete(l.cache, k)
		}
	}
}

// LoadImage loads req in the background and calls done on the loop
// goroutine.
func (l *Loader) LoadImage(ctx context.Context, req ImageRequest, done func(image.Image, error)) {
	go func() {
		img, err := l.LoadImageSync(ctx, req)
		l.poster.Post(func() { done(img, err) })
	}()
}

// LoadImageSync loads req on the calling goroutine.
func (l *Loader) LoadImageSync(ctx context.Context, req ImageRequest) (image.Image, error) {
	if img, ok := l.CachedImage(req); ok {
		return img, nil
	}
	v, err, shared := l.group.Do(req.key(), func() (any, error) {
		data, err := l.fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode image %s", req.URL)
		}
		img = fitImage(img, req)

		l.mu.Lock()
		l.cache[req.key()] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		l.log.Warn("image load failed", zap.String("url", req.URL), zap.Error(err))
		return nil, err
	}
	if ce := l.log.Check(zap.DebugLevel, "image loaded"); ce != nil {
		ce.Write(zap.String("url", req.URL), zap.Bool("shared", shared))
	}
	return v.(image.Image), nil
}

// LoadData fetches the raw bytes at u in the background and calls done on
// the loop goroutine.
func (l *Loader) LoadData(ctx context.Context, u string, done func([]byte, error)) {
	go func() {
		data, err := l.LoadDataSync(ctx, u)
		l.poster.Post(func() { done(data, err) })
	}()
}

// LoadDataSync fetches the raw bytes at u on the calling goroutine.
func (l *Loader) LoadDataSync(ctx context.Context, u string) ([]byte, error) {
	v, err, _ := l.group.Do("data:"+u, func() (any, error) {
		return l.fetch(ctx, u)
	})
	if err != nil {
		l.log.Warn("data load failed", zap.String("url", u), zap.Error(err))
		return nil, err
	}
	return v.([]byte), nil
}

func (l *Loader) fetch(ctx context.Context, u string) ([]byte, error) {
	if u == "" {
		return nil, ErrMissingURL
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "failed to acquire load slot")
	}
	defer l.sem.Release(1)

	parsed, err := url.Parse(u)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedURL, "%s: %v", u, err)
	}
	switch parsed.Scheme {
	case "", "file":
		path := u
		if parsed.Scheme == "file" {
			path = parsed.Path
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		return data, nil
	case "http", "https":
		return l.fetchHTTP(ctx, u)
	}
	return nil, errors.Wrapf(ErrUnsupportedURL, "scheme %q", parsed.Scheme)
}

func (l *Loader) fetchHTTP(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", u)
	}
	res, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", u)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to download %s: status %s", u, res.Status)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response body of %s", u)
	}
	return data, nil
}

// ContentType sniffs the media type of data.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}

func fitImage(img image.Image, req ImageRequest) image.Image {
	w, h := req.Width, req.Height
	if w <= 0 && h <= 0 {
		return img
	}
	switch req.Fit {
	case ShrinkToFit:
		if w <= 0 || h <= 0 {
			return imaging.Resize(img, w, h, imaging.Lanczos)
		}
		return imaging.Fit(img, w, h, imaging.Lanczos)
	case ScaleToFill:
		if w <= 0 || h <= 0 {
			return imaging.Resize(img, w, h, imaging.Lanczos)
		}
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	case FitWidth:
		if w <= 0 {
			return img
		}
		return imaging.Resize(img, w, 0, imaging.Lanczos)
	case FitHeight:
		if h <= 0 {
			return img
		}
		return imaging.Resize(img, 0, h, imaging.Lanczos)
	case Stretch:
		b := img.Bounds()
		if w <= 0 {
			w = b.Dx()
		}
		if h <= 0 {
			h = b.Dy()
		}
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img
}

package artifact

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/lucko/mod-publish/internal/branding"
)

// Source names an upstream project whose builds can be fetched.
type Source string

const (
	Spark     Source = "spark"
	LuckPerms Source = "luckperms"
)

const (
	DefaultSparkURL     = "https://sparkapi.lucko.me/download"
	DefaultLuckPermsURL = "https://metadata.luckperms.net/data/all"
)

// Info describes a downloaded build.
type Info struct {
	FileName string
	Version  string
	Path     string
}

// Fetcher downloads build artifacts.
type Fetcher struct {
	httpClient   *http.Client
	dir          string
	userAgent    string
	sparkURL     string
	luckPermsURL string
	progress     io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithDir sets the directory artifacts are written to.
func WithDir(dir string) Option {
	return func(f *Fetcher) {
		f.dir = dir
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithEndpoints overrides the metadata endpoints. Empty values keep the
// defaults.
func WithEndpoints(sparkURL, luckPermsURL string) Option {
	return func(f *Fetcher) {
		if sparkURL != "" {
			f.sparkURL = sparkURL
		}
		if luckPermsURL != "" {
			f.luckPermsURL = luckPermsURL
		}
	}
}

// WithProgress enables download progress output on w.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// New creates a Fetcher writing to the working directory.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:   http.DefaultClient,
		dir:          ".",
		userAgent:    branding.UserAgent(),
		sparkURL:     DefaultSparkURL,
		luckPermsURL: DefaultLuckPermsURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) destPath(fileName string) string {
	return filepath.Join(f.dir, filepath.Base(fileName))
}

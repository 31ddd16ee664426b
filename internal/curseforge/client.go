package curseforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lucko/mod-publish/internal/branding"
	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/versions"
)

// DefaultAPIBase is the CurseForge upload API root.
const DefaultAPIBase = "https://minecraft.curseforge.com/api"

// Name identifies this platform in logs and reports.
const Name = "curseforge"

// Client is a CurseForge API client.
type Client struct {
	token      string
	apiBase    string
	userAgent  string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIBase overrides the API root.
func WithAPIBase(base string) Option {
	return func(cl *Client) {
		if base != "" {
			cl.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a Client authenticating with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		apiBase:    DefaultAPIBase,
		userAgent:  branding.UserAgent(),
		httpClient: http.DefaultClient,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the platform name.
func (c *Client) Name() string { return Name }

func (c *Client) header() http.Header {
	return http.Header{
		"X-Api-Token": {c.token},
		"User-Agent":  {c.userAgent},
	}
}

// GameVersionTypes fetches every version type.
func (c *Client) GameVersionTypes(ctx context.Context) ([]versions.GameVersionType, error) {
	var types []versions.GameVersionType
	if err := c.get(ctx, "/game/version-types", "game version types", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// GameVersions fetches every game version.
func (c *Client) GameVersions(ctx context.Context) ([]versions.GameVersion, error) {
	var vs []versions.GameVersion
	if err := c.get(ctx, "/game/versions", "game versions", &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// Catalog fetches version types and versions together.
func (c *Client) Catalog(ctx context.Context) (versions.Catalog, error) {
	types, err := c.GameVersionTypes(ctx)
	if err != nil {
		return versions.Catalog{}, err
	}
	vs, err := c.GameVersions(ctx)
	if err != nil {
		return versions.Catalog{}, err
	}
	return versions.Catalog{Types: types, Versions: vs}, nil
}

func (c *Client) get(ctx context.Context, path, what string, out any) error {
	url := c.apiBase + path
	fail := func(err error) error {
		return &errdefs.FetchError{Source: what, URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(fmt.Errorf("creating request: %w", err))
	}
	req.Header = c.header()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errdefs.Configuration("curseforge token", "API returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("reading response body: %w", err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fail(fmt.Errorf("parsing %s JSON: %w", what, err))
	}
	return nil
}

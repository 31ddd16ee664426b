// Package modrinth uploads files to the Modrinth version API.
package modrinth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lucko/mod-publish/internal/branding"
	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/publish"
	"github.com/lucko/mod-publish/internal/upload"
)

// DefaultAPIBase is the Modrinth API root.
const DefaultAPIBase = "https://api.modrinth.com/v2"

// Name identifies this platform in logs and reports.
const Name = "modrinth"

// Dependency is an entry of a version's dependency list.
type Dependency struct {
	VersionID      string `json:"version_id,omitempty"`
	ProjectID      string `json:"project_id,omitempty"`
	DependencyType string `json:"dependency_type"`
}

// VersionData is the JSON "data" part of a create-version request.
type VersionData struct {
	Name          string       `json:"name"`
	VersionNumber string       `json:"version_number"`
	Changelog     string       `json:"changelog"`
	Dependencies  []Dependency `json:"dependencies"`
	GameVersions  []string     `json:"game_versions"`
	VersionType   string       `json:"version_type"`
	Loaders       []string     `json:"loaders"`
	Featured      bool         `json:"featured"`
	ProjectID     string       `json:"project_id"`
	FileParts     []string     `json:"file_parts"`
	PrimaryFile   string       `json:"primary_file"`
}

type versionResponse struct {
	ID string `json:"id"`
}

// Client is a Modrinth API client. Modrinth names game versions directly,
// so the client carries its own version list instead of using resolved ids.
type Client struct {
	token          string
	apiBase        string
	userAgent      string
	primaryVersion string
	gameVersions   []string
	httpClient     *http.Client
	logger         *log.Logger
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

// New creates a Client that declares gameVersions on every upload and
// labels files with primaryVersion.
func New(token, primaryVersion string, gameVersions []string, opts ...Option) *Client {
	c := &Client{
		token:          token,
		apiBase:        DefaultAPIBase,
		userAgent:      branding.UserAgent(),
		primaryVersion: primaryVersion,
		gameVersions:   gameVersions,
		httpClient:     http.DefaultClient,
		logger:         log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the platform name.
func (c *Client) Name() string { return Name }

// BuildVersionData renders the create-version payload for req.
func (c *Client) BuildVersionData(req publish.Request) VersionData {
	return VersionData{
		Name:          fmt.Sprintf("%s (%s %s)", req.Artifact.Version, req.Loader.DisplayName(), c.primaryVersion),
		VersionNumber: fmt.Sprintf("%s-%s", req.Artifact.Version, req.Loader.Slug()),
		Changelog: fmt.Sprintf("This update brings the latest version of %s for Minecraft %s to Modrinth. %s",
			req.Project, c.primaryVersion, req.ChangelogSuffix),
		Dependencies: []Dependency{},
		GameVersions: c.gameVersions,
		VersionType:  req.Channel.String(),
		Loaders:      req.Loader.DistributionLoaders(),
		Featured:     true,
		ProjectID:    req.ProjectID,
		FileParts:    []string{"file"},
		PrimaryFile:  "file",
	}
}

// Publish creates a new version of the project and returns its id.
func (c *Client) Publish(ctx context.Context, req publish.Request) (string, error) {
	data := c.BuildVersionData(req)
	if len(data.GameVersions) == 0 {
		c.logger.Warn("uploading without game versions", "project_id", req.ProjectID, "loader", req.Loader)
	}

	form, err := upload.NewForm("data", data, req.Artifact.Path, req.Artifact.FileName)
	if err != nil {
		return "", &errdefs.PublishError{Publisher: Name, Err: err}
	}

	header := http.Header{
		"Authorization": {c.token},
		"User-Agent":    {c.userAgent},
	}
	var resp versionResponse
	if err := upload.Post(ctx, c.httpClient, Name, c.apiBase+"/version", form, header, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

package publish

import (
	"context"

	"github.com/lucko/mod-publish/internal/artifact"
	"github.com/lucko/mod-publish/internal/loader"
	"github.com/lucko/mod-publish/internal/versions"
)

// Request is everything a platform needs to publish one file.
type Request struct {
	Project         string
	ProjectID       string
	Loader          loader.Loader
	Artifact        *artifact.Info
	Versions        *versions.Resolution
	Channel         loader.Channel
	ChangelogSuffix string
}

// Publisher submits a file to one distribution platform and returns the id
// the platform assigned to the new version.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, req Request) (string, error)
}

// Fetcher retrieves build artifacts.
type Fetcher interface {
	Fetch(ctx context.Context, source artifact.Source, l loader.Loader) (*artifact.Info, error)
}

// CatalogSource provides the game version catalog used for resolution.
type CatalogSource interface {
	Catalog(ctx context.Context) (versions.Catalog, error)
}

// Plan describes one project's publishing run.
type Plan struct {
	Project   string
	Source    artifact.Source
	Changelog string
	Variants  []Variant
}

// Variant is one loader build and the platforms it is published to, in
// order.
type Variant struct {
	Loader  loader.Loader
	Targets []Target
}

// Target binds a publisher to the project id and channel used there.
type Target struct {
	Publisher Publisher
	ProjectID string
	Channel   loader.Channel
}

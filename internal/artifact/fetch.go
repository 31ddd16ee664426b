package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/loader"
)

type sparkBuild struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

type luckPermsManifest struct {
	Downloads map[string]string `json:"downloads"`
	Version   string            `json:"version"`
}

// Fetch downloads the latest build of source for l. Every failure is
// returned as an *errdefs.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source Source, l loader.Loader) (*Info, error) {
	var (
		url, fileName, version string
		err                    error
	)
	switch source {
	case Spark:
		url, fileName, version, err = f.sparkBuild(ctx, l)
	case LuckPerms:
		url, fileName, version, err = f.luckPermsBuild(ctx, l)
	default:
		return nil, &errdefs.FetchError{Source: string(source), Err: fmt.Errorf("unknown artifact source")}
	}
	if err != nil {
		return nil, err
	}

	if _, err := semver.NewVersion(strings.TrimPrefix(version, "v")); err != nil {
		return nil, &errdefs.FetchError{
			Source: string(source) + " metadata",
			Err:    fmt.Errorf("invalid version %q for %s: %w", version, fileName, err),
		}
	}

	dest := f.destPath(fileName)
	if err := f.download(ctx, url, dest); err != nil {
		return nil, &errdefs.FetchError{Source: fileName, URL: url, Err: err}
	}

	return &Info{FileName: fileName, Version: version, Path: dest}, nil
}

func (f *Fetcher) sparkBuild(ctx context.Context, l loader.Loader) (url, fileName, version string, err error) {
	var manifest map[string]sparkBuild
	if err := f.getJSON(ctx, f.sparkURL, &manifest); err != nil {
		return "", "", "", &errdefs.FetchError{Source: "spark metadata", URL: f.sparkURL, Err: err}
	}

	build, ok := manifest[l.Slug()]
	if !ok || build.URL == "" || build.FileName == "" {
		return "", "", "", &errdefs.FetchError{
			Source: "spark metadata", URL: f.sparkURL,
			Err: fmt.Errorf("no build listed for %s", l),
		}
	}

	// File names follow spark-{version}-{loader}.jar.
	parts := strings.Split(build.FileName, "-")
	if len(parts) < 2 {
		return "", "", "", &errdefs.FetchError{
			Source: "spark metadata", URL: f.sparkURL,
			Err: fmt.Errorf("cannot derive version from file name %q", build.FileName),
		}
	}
	return build.URL, build.FileName, parts[1], nil
}

func (f *Fetcher) luckPermsBuild(ctx context.Context, l loader.Loader) (url, fileName, version string, err error) {
	var manifest luckPermsManifest
	if err := f.getJSON(ctx, f.luckPermsURL, &manifest); err != nil {
		return "", "", "", &errdefs.FetchError{Source: "luckperms metadata", URL: f.luckPermsURL, Err: err}
	}

	url = manifest.Downloads[l.Slug()]
	if url == "" {
		return "", "", "", &errdefs.FetchError{
			Source: "luckperms metadata", URL: f.luckPermsURL,
			Err: fmt.Errorf("no download listed for %s", l),
		}
	}
	return url, path.Base(url), "v" + manifest.Version, nil
}

func (f *Fetcher) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing metadata JSON: %w", err)
	}
	return nil
}

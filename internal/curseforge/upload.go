package curseforge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/publish"
	"github.com/lucko/mod-publish/internal/upload"
)

// Metadata is the JSON "metadata" part of an upload.
type Metadata struct {
	Changelog    string `json:"changelog"`
	DisplayName  string `json:"displayName"`
	GameVersions []int  `json:"gameVersions"`
	ReleaseType  string `json:"releaseType"`
}

type uploadResponse struct {
	ID int `json:"id"`
}

// BuildMetadata renders the upload metadata for req.
func BuildMetadata(req publish.Request) (Metadata, error) {
	if req.Versions == nil {
		return Metadata{}, errdefs.Configuration("curseforge upload", "no game version resolution for %s", req.Loader)
	}
	display := req.Versions.DisplayVersion
	return Metadata{
		Changelog: fmt.Sprintf("This update brings the latest version of %s for Minecraft %s to CurseForge. %s",
			req.Project, display, req.ChangelogSuffix),
		DisplayName:  fmt.Sprintf("%s (%s %s)", req.Artifact.Version, req.Loader.DisplayName(), display),
		GameVersions: req.Versions.Sorted(),
		ReleaseType:  req.Channel.String(),
	}, nil
}

// Publish uploads the artifact to the project and returns the new file id.
func (c *Client) Publish(ctx context.Context, req publish.Request) (string, error) {
	meta, err := BuildMetadata(req)
	if err != nil {
		return "", err
	}
	if len(meta.GameVersions) == 0 {
		c.logger.Warn("uploading without game versions", "project_id", req.ProjectID, "loader", req.Loader)
	}

	form, err := upload.NewForm("metadata", meta, req.Artifact.Path, req.Artifact.FileName)
	if err != nil {
		return "", &errdefs.PublishError{Publisher: Name, Err: err}
	}

	url := fmt.Sprintf("%s/projects/%s/upload-file", c.apiBase, req.ProjectID)
	var resp uploadResponse
	if err := upload.Post(ctx, c.httpClient, Name, url, form, c.header(), &resp); err != nil {
		return "", err
	}
	return strconv.Itoa(resp.ID), nil
}

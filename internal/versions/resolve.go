package versions

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/loader"
)

// Strategy selects how the Minecraft part of the version set is chosen.
type Strategy string

const (
	// AllowList attaches every version of the target release whose name is
	// explicitly listed, and labels the file with a configured primary
	// version.
	AllowList Strategy = "allow-list"

	// LatestSnapshot finds the release through its "{base}-Snapshot" marker
	// and attaches only the newest non-snapshot version under it.
	LatestSnapshot Strategy = "latest-snapshot"
)

// Registry-assigned type ids for Java versions and loader markers.
const (
	DefaultJavaTypeID   = 2
	DefaultLoaderTypeID = 68441
)

// ResolverConfig holds the deployment's version policy.
type ResolverConfig struct {
	Strategy       Strategy
	TargetRelease  string
	SnapshotBase   string
	JavaSlugs      []string
	MinecraftNames []string
	PrimaryVersion string
	JavaTypeID     int
	LoaderTypeID   int
}

func (c ResolverConfig) javaTypeID() int {
	if c.JavaTypeID == 0 {
		return DefaultJavaTypeID
	}
	return c.JavaTypeID
}

func (c ResolverConfig) loaderTypeID() int {
	if c.LoaderTypeID == 0 {
		return DefaultLoaderTypeID
	}
	return c.LoaderTypeID
}

// Resolve computes the version ids compatible with l and the label used to
// describe them. A missing or ambiguous release mapping is returned as an
// *errdefs.ConfigurationError.
func Resolve(catalog Catalog, l loader.Loader, cfg ResolverConfig) (Resolution, error) {
	release, err := expectExactlyOne("game version type "+quote(cfg.TargetRelease), catalog.Types,
		func(t GameVersionType) bool { return t.Name == cfg.TargetRelease })
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{VersionIDs: make(map[int]struct{})}

	switch cfg.Strategy {
	case AllowList, "":
		for _, v := range catalog.Versions {
			if v.GameVersionTypeID == release.ID && slices.Contains(cfg.MinecraftNames, v.Name) {
				res.VersionIDs[v.ID] = struct{}{}
			}
		}
		res.DisplayVersion = cfg.PrimaryVersion
	case LatestSnapshot:
		latest, err := latestRelease(catalog.Versions, cfg.SnapshotBase)
		if err != nil {
			return Resolution{}, err
		}
		res.VersionIDs[latest.ID] = struct{}{}
		res.DisplayVersion = latest.Name
	default:
		return Resolution{}, errdefs.Configuration("resolver", "unknown strategy %q", cfg.Strategy)
	}

	for _, v := range catalog.Versions {
		switch {
		case v.GameVersionTypeID == cfg.javaTypeID() && slices.Contains(cfg.JavaSlugs, v.Slug):
			res.VersionIDs[v.ID] = struct{}{}
		case v.GameVersionTypeID == cfg.loaderTypeID() && v.Slug == l.Slug():
			res.VersionIDs[v.ID] = struct{}{}
		}
	}

	return res, nil
}

// latestRelease locates the release through its snapshot marker and returns
// the non-snapshot version with the highest id. Ids grow with release order;
// names are not reliably sortable.
func latestRelease(all []GameVersion, base string) (GameVersion, error) {
	marker := base + "-Snapshot"
	snapshot, err := expectExactlyOne("snapshot version "+quote(marker), all,
		func(v GameVersion) bool { return v.Name == marker })
	if err != nil {
		return GameVersion{}, err
	}

	var (
		latest GameVersion
		found  bool
	)
	for _, v := range all {
		if v.GameVersionTypeID != snapshot.GameVersionTypeID || strings.Contains(v.Name, "Snapshot") {
			continue
		}
		if !found || v.ID > latest.ID {
			latest, found = v, true
		}
	}
	if !found {
		return GameVersion{}, errdefs.Configuration("snapshot version "+quote(marker),
			"no released versions under game version type %d", snapshot.GameVersionTypeID)
	}
	return latest, nil
}

// expectExactlyOne returns the single record matching pred. Zero or several
// matches is a configuration error.
func expectExactlyOne[T any](what string, records []T, pred func(T) bool) (T, error) {
	var (
		match T
		count int
	)
	for _, r := range records {
		if pred(r) {
			match = r
			count++
		}
	}
	if count != 1 {
		var zero T
		return zero, errdefs.Configuration(what, "expected exactly one match, found %d", count)
	}
	return match, nil
}

func quote(s string) string { return fmt.Sprintf("%q", s) }

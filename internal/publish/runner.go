package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/versions"
)

// Runner executes publishing plans one variant at a time.
type Runner struct {
	fetcher  Fetcher
	catalog  CatalogSource
	resolver versions.ResolverConfig
	cooldown time.Duration
	pause    Pause
	logger   *log.Logger
	dryRun   bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCatalog enables version resolution against the catalog provided by
// src, using cfg as the version policy.
func WithCatalog(src CatalogSource, cfg versions.ResolverConfig) RunnerOption {
	return func(r *Runner) {
		r.catalog = src
		r.resolver = cfg
	}
}

// WithCooldown sets the pause after each upload.
func WithCooldown(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.cooldown = d
	}
}

// WithPause replaces the function used to wait out the cooldown (useful
// for testing).
func WithPause(p Pause) RunnerOption {
	return func(r *Runner) {
		r.pause = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithDryRun resolves and logs every submission without uploading.
func WithDryRun(dryRun bool) RunnerOption {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// NewRunner creates a Runner that fetches artifacts with fetcher.
func NewRunner(fetcher Fetcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:  fetcher,
		cooldown: DefaultCooldown,
		pause:    sleep,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run publishes every variant of plan. Fetch and publish failures are
// recorded and the run moves on; a configuration error stops the run at
// once. The returned error is the fatal error, if any, or the joined
// per-step failures.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Report, error) {
	report := &Report{Project: plan.Project}
	logger := r.logger.With("project", plan.Project)

	var catalog *versions.Catalog
	if r.catalog != nil {
		logger.Info("fetching game version catalog")
		c, err := r.catalog.Catalog(ctx)
		if err != nil {
			return report, fmt.Errorf("fetching game version catalog: %w", err)
		}
		logger.Debug("catalog loaded", "types", len(c.Types), "versions", len(c.Versions))
		catalog = &c
	}

	for _, variant := range plan.Variants {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		vlog := logger.With("loader", variant.Loader)
		vlog.Info("fetching artifact", "source", plan.Source)
		info, err := r.fetcher.Fetch(ctx, plan.Source, variant.Loader)
		if err != nil {
			vlog.Error("fetch failed, skipping variant", "err", err)
			report.add(Outcome{Loader: variant.Loader, Err: err})
			continue
		}
		vlog.Info("artifact ready", "file", info.FileName, "version", info.Version)

		var resolution *versions.Resolution
		if catalog != nil {
			res, err := versions.Resolve(*catalog, variant.Loader, r.resolver)
			if err != nil {
				vlog.Error("version resolution failed, aborting run", "err", err)
				report.add(Outcome{Loader: variant.Loader, Version: info.Version, Err: err})
				return report, err
			}
			if res.Empty() {
				vlog.Warn("no compatible game versions resolved; publishing without any")
			}
			vlog.Debug("versions resolved", "ids", res.Sorted(), "display", res.DisplayVersion)
			resolution = &res
		}

		for _, target := range variant.Targets {
			req := Request{
				Project:         plan.Project,
				ProjectID:       target.ProjectID,
				Loader:          variant.Loader,
				Artifact:        info,
				Versions:        resolution,
				Channel:         target.Channel,
				ChangelogSuffix: plan.Changelog,
			}
			outcome, err := r.publish(ctx, vlog, target.Publisher, req)
			report.add(outcome)
			if err != nil {
				return report, err
			}
		}
	}

	logger.Info("done", "steps", len(report.Outcomes), "failed", len(report.Failed()))
	return report, report.Err()
}

// publish submits req and waits out the cooldown. Only a fatal error or a
// cancelled context is returned; publish failures land in the outcome.
func (r *Runner) publish(ctx context.Context, logger *log.Logger, p Publisher, req Request) (Outcome, error) {
	outcome := Outcome{Loader: req.Loader, Publisher: p.Name(), Version: req.Artifact.Version}
	plog := logger.With("publisher", p.Name(), "channel", req.Channel)

	if r.dryRun {
		plog.Info("dry run: skipping upload", "project_id", req.ProjectID, "file", req.Artifact.FileName)
		outcome.RemoteID = "dry-run"
		return outcome, nil
	}

	plog.Info("publishing", "project_id", req.ProjectID)
	id, err := p.Publish(ctx, req)
	switch {
	case err == nil:
		outcome.RemoteID = id
		plog.Info("published", "id", id, "cooldown", r.cooldown)
	case errdefs.IsFatal(err):
		outcome.Err = err
		plog.Error("publish rejected by configuration, aborting run", "err", err)
		return outcome, err
	default:
		outcome.Err = err
		logPublishError(plog, err)
	}

	if perr := r.pause(ctx, r.cooldown); perr != nil {
		return outcome, perr
	}
	return outcome, nil
}

func logPublishError(logger *log.Logger, err error) {
	var pubErr *errdefs.PublishError
	if !errors.As(err, &pubErr) {
		logger.Error("publish failed", "err", err)
		return
	}
	logger.Error("publish failed",
		"status", pubErr.Status,
		"body", pubErr.Body,
		"headers", pubErr.HeaderLines(),
		"err", pubErr.Err,
	)
}

// Download fetches every variant of every plan without publishing.
func (r *Runner) Download(ctx context.Context, plans []Plan) error {
	var errs []error
	for _, plan := range plans {
		for _, variant := range plan.Variants {
			if err := ctx.Err(); err != nil {
				return err
			}
			vlog := r.logger.With("project", plan.Project, "loader", variant.Loader)
			info, err := r.fetcher.Fetch(ctx, plan.Source, variant.Loader)
			if err != nil {
				vlog.Error("download failed", "err", err)
				errs = append(errs, fmt.Errorf("%s %s: %w", plan.Project, variant.Loader, err))
				continue
			}
			vlog.Info("downloaded", "file", info.FileName, "version", info.Version, "path", info.Path)
		}
	}
	return errors.Join(errs...)
}

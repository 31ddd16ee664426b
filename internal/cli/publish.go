package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lucko/mod-publish/internal/artifact"
	"github.com/lucko/mod-publish/internal/config"
	"github.com/lucko/mod-publish/internal/curseforge"
	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/loader"
	"github.com/lucko/mod-publish/internal/modrinth"
	"github.com/lucko/mod-publish/internal/notify"
	"github.com/lucko/mod-publish/internal/publish"
)

// publishModes are the projects that get their own subcommand.
var publishModes = []string{"spark", "luckperms", "luckperms-plugin"}

func init() {
	for _, name := range publishModes {
		rootCmd.AddCommand(newPublishCmd(name))
	}
}

func newPublishCmd(project string) *cobra.Command {
	return &cobra.Command{
		Use:   project,
		Short: fmt.Sprintf("Publish the latest %s builds", project),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return runPublish(cmd.Context(), s, project)
		},
	}
}

// registries holds the publishers a plan can target.
type registries struct {
	curseforge publish.Publisher
	modrinth   publish.Publisher
}

func runPublish(ctx context.Context, s *session, name string) error {
	cfg := s.cfg
	project, err := cfg.Project(name)
	if err != nil {
		return err
	}
	if err := cfg.RequireTokens(project); err != nil {
		return err
	}

	cf := curseforge.New(cfg.CurseForge.Token,
		curseforge.WithAPIBase(cfg.CurseForge.APIBase),
		curseforge.WithUserAgent(cfg.UserAgent),
		curseforge.WithLogger(s.logger),
	)
	mr := modrinth.New(cfg.Modrinth.Token, cfg.Modrinth.PrimaryVersion, cfg.Modrinth.GameVersions,
		modrinth.WithAPIBase(cfg.Modrinth.APIBase),
		modrinth.WithUserAgent(cfg.UserAgent),
		modrinth.WithLogger(s.logger),
	)

	plan, err := buildPlan(project, registries{curseforge: cf, modrinth: mr})
	if err != nil {
		return err
	}

	opts := []publish.RunnerOption{
		publish.WithCooldown(cfg.Cooldown),
		publish.WithLogger(s.logger),
		publish.WithDryRun(dryRun),
	}
	if project.UsesCurseForge() {
		opts = append(opts, publish.WithCatalog(cf, cfg.Resolver()))
	}
	runner := publish.NewRunner(newFetcher(cfg), opts...)

	report, runErr := runner.Run(ctx, plan)
	if !dryRun {
		sendNotification(s.logger, cfg.Notify.DiscordWebhook, report)
	}
	return runErr
}

// buildPlan turns a configured project into a plan. Each variant targets
// CurseForge before Modrinth; a registry without a channel is skipped.
func buildPlan(p config.Project, reg registries) (publish.Plan, error) {
	source := artifact.Source(p.Source)
	switch source {
	case artifact.Spark, artifact.LuckPerms:
	default:
		return publish.Plan{}, errdefs.Configuration("project "+p.Name, "unknown source %q", p.Source)
	}

	plan := publish.Plan{Project: p.Name, Source: source, Changelog: p.Changelog}
	for _, v := range p.Variants {
		l, err := loader.Parse(v.Loader)
		if err != nil {
			return publish.Plan{}, errdefs.Configuration("project "+p.Name, "%v", err)
		}
		variant := publish.Variant{Loader: l}
		for _, t := range []struct {
			channel   string
			projectID string
			publisher publish.Publisher
		}{
			{v.CurseForge, p.CurseForgeID, reg.curseforge},
			{v.Modrinth, p.ModrinthID, reg.modrinth},
		} {
			if t.channel == "" {
				continue
			}
			ch, err := loader.ParseChannel(t.channel)
			if err != nil {
				return publish.Plan{}, errdefs.Configuration("project "+p.Name, "%v", err)
			}
			variant.Targets = append(variant.Targets, publish.Target{
				Publisher: t.publisher,
				ProjectID: t.projectID,
				Channel:   ch,
			})
		}
		plan.Variants = append(plan.Variants, variant)
	}
	return plan, nil
}

func newFetcher(cfg *config.Config, opts ...artifact.Option) *artifact.Fetcher {
	base := []artifact.Option{
		artifact.WithDir(cfg.DownloadDir),
		artifact.WithUserAgent(cfg.UserAgent),
		artifact.WithEndpoints(cfg.Sources.Spark, cfg.Sources.LuckPerms),
	}
	return artifact.New(append(base, opts...)...)
}

func sendNotification(logger *log.Logger, webhook string, report *publish.Report) {
	if webhook == "" || report == nil || len(report.Outcomes) == 0 {
		return
	}
	if err := notify.NewDiscord(webhook).Notify(report); err != nil {
		logger.Warn("discord notification failed", "err", err)
	}
}

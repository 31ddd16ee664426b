package cli

import (
	"github.com/spf13/cobra"

	"github.com/lucko/mod-publish/internal/artifact"
	"github.com/lucko/mod-publish/internal/config"
	"github.com/lucko/mod-publish/internal/publish"
)

var downloadProgress bool

func init() {
	downloadCmd.Flags().BoolVar(&downloadProgress, "progress", true, "Print download progress")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [project...]",
	Short: "Download the latest builds without publishing",
	Long: `Download fetches every loader build of the named projects (all configured
projects when none are given) into the download directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		plans, err := downloadPlans(s.cfg, args)
		if err != nil {
			return err
		}

		var opts []artifact.Option
		if downloadProgress {
			opts = append(opts, artifact.WithProgress(cmd.ErrOrStderr()))
		}
		runner := publish.NewRunner(newFetcher(s.cfg, opts...), publish.WithLogger(s.logger))
		return runner.Download(cmd.Context(), plans)
	},
}

// downloadPlans builds target-less plans for the named projects, or every
// project when names is empty.
func downloadPlans(cfg *config.Config, names []string) ([]publish.Plan, error) {
	if len(names) == 0 {
		names = cfg.ProjectNames()
	}
	plans := make([]publish.Plan, 0, len(names))
	for _, name := range names {
		p, err := cfg.Project(name)
		if err != nil {
			return nil, err
		}
		plan, err := buildPlan(p, registries{})
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

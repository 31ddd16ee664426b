package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lucko/mod-publish/internal/branding"
	"github.com/lucko/mod-publish/internal/config"
	"github.com/lucko/mod-publish/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Global flags.
var (
	configPath string
	logLevel   string
	logFile    string
	dryRun     bool
)

// errNoMode is returned when the root command runs without a subcommand.
var errNoMode = errors.New("a mode is required: download, spark, luckperms or luckperms-plugin")

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " <mode>",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` downloads the latest spark and LuckPerms builds and publishes each
loader variant to CurseForge and Modrinth with the matching game versions,
loaders and release channel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return errNoMode
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")
	pf.BoolVar(&dryRun, "dry-run", false, "resolve and log every upload without sending it")
}

// session is the state shared by the mode commands.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	closer io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	opts := logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Output:     cmd.ErrOrStderr(),
	}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if logFile != "" {
		opts.File = logFile
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	logger = logger.WithPrefix(cmd.Name())
	return &session{cfg: cfg, logger: logger, closer: closer}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT cancels the command context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}

package config

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lucko/mod-publish/internal/branding"
	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/loader"
	"github.com/lucko/mod-publish/internal/versions"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultFile is read from the working directory when no --config path is
// given and the file exists.
const DefaultFile = "mod-publish.yaml"

// Token environment variables. The short names are the ones CI sets.
const (
	EnvCurseForgeToken = "CURSE_API_TOKEN"
	EnvModrinthToken   = "MODRINTH_API_TOKEN"
)

// DotEnvFiles are loaded, in order, before the environment is read. Values
// already in the environment win.
var DotEnvFiles = []string{".env", ".env.local"}

type Config struct {
	UserAgent   string             `mapstructure:"user_agent"`
	Cooldown    time.Duration      `mapstructure:"cooldown"`
	DownloadDir string             `mapstructure:"download_dir"`
	Sources     Sources            `mapstructure:"sources"`
	CurseForge  CurseForge         `mapstructure:"curseforge"`
	Modrinth    Modrinth           `mapstructure:"modrinth"`
	Projects    map[string]Project `mapstructure:"projects"`
	Notify      Notify             `mapstructure:"notify"`
	Log         Log                `mapstructure:"log"`
}

type Sources struct {
	Spark     string `mapstructure:"spark"`
	LuckPerms string `mapstructure:"luckperms"`
}

type CurseForge struct {
	APIBase           string   `mapstructure:"api_base"`
	Token             string   `mapstructure:"token"`
	Strategy          string   `mapstructure:"strategy"`
	TargetRelease     string   `mapstructure:"target_release"`
	SnapshotBase      string   `mapstructure:"snapshot_base"`
	JavaVersions      []string `mapstructure:"java_versions"`
	MinecraftVersions []string `mapstructure:"minecraft_versions"`
	PrimaryVersion    string   `mapstructure:"primary_version"`
	JavaTypeID        int      `mapstructure:"java_type_id"`
	LoaderTypeID      int      `mapstructure:"loader_type_id"`
}

type Modrinth struct {
	APIBase        string   `mapstructure:"api_base"`
	Token          string   `mapstructure:"token"`
	PrimaryVersion string   `mapstructure:"primary_version"`
	GameVersions   []string `mapstructure:"game_versions"`
}

// Project is one publishable project. An empty registry id means the
// project is not published there.
type Project struct {
	Name         string    `mapstructure:"name"`
	Source       string    `mapstructure:"source"`
	Changelog    string    `mapstructure:"changelog"`
	CurseForgeID string    `mapstructure:"curseforge_id"`
	ModrinthID   string    `mapstructure:"modrinth_id"`
	Variants     []Variant `mapstructure:"variants"`
}

// Variant names a loader build and the channel used on each registry. An
// empty channel skips that registry.
type Variant struct {
	Loader     string `mapstructure:"loader"`
	CurseForge string `mapstructure:"curseforge"`
	Modrinth   string `mapstructure:"modrinth"`
}

type Notify struct {
	DiscordWebhook string `mapstructure:"discord_webhook"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Load builds the configuration from the embedded defaults, the YAML file
// at path (or DefaultFile when path is empty and the file exists), .env
// files and the environment. Any invalid input is reported as an
// *errdefs.ConfigurationError.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := mergeDocument(v, "embedded defaults", defaultsYAML, v.ReadConfig); err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := mergeDocument(v, path, data, v.MergeConfig); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, errdefs.Configuration("config file", "%v", err)
	}

	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("curseforge.token", branding.EnvVar("CURSEFORGE_TOKEN"), EnvCurseForgeToken)
	_ = v.BindEnv("modrinth.token", branding.EnvVar("MODRINTH_TOKEN"), EnvModrinthToken)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errdefs.Configuration("config", "decoding: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeDocument(v *viper.Viper, name string, data []byte, merge func(io.Reader) error) error {
	issues, err := ValidateYAML(data)
	if err != nil {
		return errdefs.Configuration(name, "%v", err)
	}
	if len(issues) > 0 {
		lines := make([]string, len(issues))
		for i, issue := range issues {
			lines[i] = issue.String()
		}
		return errdefs.Configuration(name, "schema violations: %s", strings.Join(lines, "; "))
	}
	if err := merge(bytes.NewReader(data)); err != nil {
		return errdefs.Configuration(name, "%v", err)
	}
	return nil
}

func loadDotEnv() error {
	for _, f := range DotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errdefs.Configuration(f, "%v", err)
		}
	}
	return nil
}

// validate checks the values the schema cannot express.
func (c *Config) validate() error {
	if c.Cooldown < 0 {
		return errdefs.Configuration("cooldown", "must not be negative, got %s", c.Cooldown)
	}
	for name, p := range c.Projects {
		if len(p.Variants) == 0 {
			return errdefs.Configuration("project "+name, "has no variants")
		}
		for _, variant := range p.Variants {
			if _, err := loader.Parse(variant.Loader); err != nil {
				return errdefs.Configuration("project "+name, "%v", err)
			}
			if variant.CurseForge != "" && p.CurseForgeID == "" {
				return errdefs.Configuration("project "+name,
					"variant %s targets curseforge but curseforge_id is empty", variant.Loader)
			}
			if variant.Modrinth != "" && p.ModrinthID == "" {
				return errdefs.Configuration("project "+name,
					"variant %s targets modrinth but modrinth_id is empty", variant.Loader)
			}
		}
	}
	return nil
}

// Project returns the named project.
func (c *Config) Project(name string) (Project, error) {
	p, ok := c.Projects[name]
	if !ok {
		names := c.ProjectNames()
		return Project{}, errdefs.Configuration("project", "unknown project %q (known: %s)",
			name, strings.Join(names, ", "))
	}
	return p, nil
}

// ProjectNames returns the configured project names, sorted.
func (c *Config) ProjectNames() []string {
	names := make([]string, 0, len(c.Projects))
	for name := range c.Projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RequireTokens fails when a registry the projects publish to has no
// token.
func (c *Config) RequireTokens(projects ...Project) error {
	var curse, modrinth bool
	for _, p := range projects {
		curse = curse || p.UsesCurseForge()
		modrinth = modrinth || p.UsesModrinth()
	}
	if curse && c.CurseForge.Token == "" {
		return errdefs.Configuration("curseforge token", "set %s or %s",
			EnvCurseForgeToken, branding.EnvVar("CURSEFORGE_TOKEN"))
	}
	if modrinth && c.Modrinth.Token == "" {
		return errdefs.Configuration("modrinth token", "set %s or %s",
			EnvModrinthToken, branding.EnvVar("MODRINTH_TOKEN"))
	}
	return nil
}

// Resolver returns the CurseForge version policy.
func (c *Config) Resolver() versions.ResolverConfig {
	cf := c.CurseForge
	return versions.ResolverConfig{
		Strategy:       versions.Strategy(cf.Strategy),
		TargetRelease:  cf.TargetRelease,
		SnapshotBase:   cf.SnapshotBase,
		JavaSlugs:      cf.JavaVersions,
		MinecraftNames: cf.MinecraftVersions,
		PrimaryVersion: cf.PrimaryVersion,
		JavaTypeID:     cf.JavaTypeID,
		LoaderTypeID:   cf.LoaderTypeID,
	}
}

// UsesCurseForge reports whether any variant is published to CurseForge.
func (p Project) UsesCurseForge() bool {
	return slices.ContainsFunc(p.Variants, func(v Variant) bool { return v.CurseForge != "" })
}

// UsesModrinth reports whether any variant is published to Modrinth.
func (p Project) UsesModrinth() bool {
	return slices.ContainsFunc(p.Variants, func(v Variant) bool { return v.Modrinth != "" })
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lucko/mod-publish/internal/artifact"
	"github.com/lucko/mod-publish/internal/config"
	"github.com/lucko/mod-publish/internal/errdefs"
	"github.com/lucko/mod-publish/internal/loader"
	"github.com/lucko/mod-publish/internal/publish"
)

// fakeUpstream serves the spark metadata, the jars and both registry APIs.
type fakeUpstream struct {
	*httptest.Server

	mu         sync.Mutex
	curseforge []string // upload paths, in order
	modrinth   int
	failForge  bool
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/spark", func(w http.ResponseWriter, r *http.Request) {
		builds := map[string]map[string]string{}
		for _, l := range []string{"forge", "fabric", "neoforge"} {
			name := fmt.Sprintf("spark-1.2.3-%s.jar", l)
			builds[l] = map[string]string{"url": f.URL + "/files/" + name, "fileName": name}
		}
		json.NewEncoder(w).Encode(builds)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jar bytes"))
	})
	mux.HandleFunc("/cf/game/version-types", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Minecraft 1.19","slug":"minecraft-1-19"},{"id":2,"name":"Java","slug":"java"}]`))
	})
	mux.HandleFunc("/cf/game/versions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":10,"gameVersionTypeID":1,"name":"1.19.4","slug":"1-19-4"},
			{"id":20,"gameVersionTypeID":2,"name":"Java 17","slug":"java-17"},
			{"id":30,"gameVersionTypeID":68441,"name":"Forge","slug":"forge"},
			{"id":31,"gameVersionTypeID":68441,"name":"Fabric","slug":"fabric"},
			{"id":32,"gameVersionTypeID":68441,"name":"NeoForge","slug":"neoforge"}]`))
	})
	mux.HandleFunc("/cf/projects/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.curseforge = append(f.curseforge, r.URL.Path)
		n := len(f.curseforge)
		fail := f.failForge && n == 1
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"id": %d}`, 1000+n)
	})
	mux.HandleFunc("/mr/version", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.modrinth++
		f.mu.Unlock()
		w.Write([]byte(`{"id":"AbCdEf"}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// testSession loads a config pointed at upstream, with tokens set.
func testSession(t *testing.T, upstream *fakeUpstream) *session {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvCurseForgeToken, "cf")
	t.Setenv(config.EnvModrinthToken, "mr")

	path := filepath.Join(dir, "test.yaml")
	content := fmt.Sprintf(`cooldown: 0s
download_dir: %q
sources:
  spark: %s/spark
  luckperms: %s/luckperms
curseforge:
  api_base: %s/cf
  minecraft_versions: ["1.19.4"]
  java_versions: [java-17]
modrinth:
  api_base: %s/mr
`, dir, upstream.URL, upstream.URL, upstream.URL, upstream.URL)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return &session{cfg: cfg, logger: log.New(io.Discard), closer: io.NopCloser(nil)}
}

func TestRunPublishSpark(t *testing.T) {
	upstream := newFakeUpstream(t)
	s := testSession(t, upstream)

	if err := runPublish(context.Background(), s, "spark"); err != nil {
		t.Fatalf("runPublish: %v", err)
	}
	if len(upstream.curseforge) != 3 {
		t.Errorf("curseforge uploads = %d, want 3", len(upstream.curseforge))
	}
	for _, p := range upstream.curseforge {
		if p != "/cf/projects/361579/upload-file" {
			t.Errorf("upload path = %q", p)
		}
	}
	if upstream.modrinth != 3 {
		t.Errorf("modrinth uploads = %d, want 3", upstream.modrinth)
	}
}

func TestRunPublishContinuesAfterFailure(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.failForge = true
	s := testSession(t, upstream)

	err := runPublish(context.Background(), s, "spark")
	if !errors.Is(err, errdefs.ErrPublish) {
		t.Fatalf("err = %v, want publish error", err)
	}
	if len(upstream.curseforge) != 3 || upstream.modrinth != 3 {
		t.Errorf("uploads = %d/%d, want 3/3", len(upstream.curseforge), upstream.modrinth)
	}
}

func TestRunPublishDryRun(t *testing.T) {
	upstream := newFakeUpstream(t)
	s := testSession(t, upstream)
	dryRun = true
	t.Cleanup(func() { dryRun = false })

	if err := runPublish(context.Background(), s, "spark"); err != nil {
		t.Fatalf("runPublish: %v", err)
	}
	if len(upstream.curseforge) != 0 || upstream.modrinth != 0 {
		t.Errorf("dry run uploaded %d/%d files", len(upstream.curseforge), upstream.modrinth)
	}
}

func TestRunPublishMissingToken(t *testing.T) {
	upstream := newFakeUpstream(t)
	s := testSession(t, upstream)
	s.cfg.CurseForge.Token = ""

	err := runPublish(context.Background(), s, "spark")
	if !errors.Is(err, errdefs.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if len(upstream.curseforge) != 0 {
		t.Error("nothing should be uploaded without a token")
	}
}

func TestBuildPlan(t *testing.T) {
	cf, mr := fakePublisher("curseforge"), fakePublisher("modrinth")
	p := config.Project{
		Name:         "LuckPerms",
		Source:       "luckperms",
		CurseForgeID: "431733",
		ModrinthID:   "Vebnzrzj",
		Variants: []config.Variant{
			{Loader: "forge", CurseForge: "beta", Modrinth: "release"},
			{Loader: "velocity", Modrinth: "release"},
		},
	}

	plan, err := buildPlan(p, registries{curseforge: cf, modrinth: mr})
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.Source != artifact.LuckPerms || len(plan.Variants) != 2 {
		t.Fatalf("plan = %+v", plan)
	}

	forge := plan.Variants[0]
	if forge.Loader != loader.Forge || len(forge.Targets) != 2 {
		t.Fatalf("forge variant = %+v", forge)
	}
	if forge.Targets[0].Publisher.Name() != "curseforge" || forge.Targets[0].Channel != loader.Beta ||
		forge.Targets[0].ProjectID != "431733" {
		t.Errorf("first forge target = %+v", forge.Targets[0])
	}
	if forge.Targets[1].Publisher.Name() != "modrinth" || forge.Targets[1].ProjectID != "Vebnzrzj" {
		t.Errorf("second forge target = %+v", forge.Targets[1])
	}

	if vel := plan.Variants[1]; len(vel.Targets) != 1 || vel.Targets[0].Publisher.Name() != "modrinth" {
		t.Errorf("velocity targets = %+v", vel.Targets)
	}
}

func TestBuildPlanRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		p    config.Project
	}{
		{"source", config.Project{Source: "bukkit"}},
		{"loader", config.Project{Source: "spark", Variants: []config.Variant{{Loader: "quilt"}}}},
		{"channel", config.Project{Source: "spark", Variants: []config.Variant{{Loader: "forge", Modrinth: "stable"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildPlan(tt.p, registries{})
			if !errors.Is(err, errdefs.ErrConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestDownloadPlans(t *testing.T) {
	upstream := newFakeUpstream(t)
	s := testSession(t, upstream)

	plans, err := downloadPlans(s.cfg, nil)
	if err != nil {
		t.Fatalf("downloadPlans: %v", err)
	}
	if len(plans) != 3 {
		t.Errorf("plans = %d, want every configured project", len(plans))
	}

	if _, err := downloadPlans(s.cfg, []string{"nope"}); !errors.Is(err, errdefs.ErrConfiguration) {
		t.Errorf("unknown project err = %v", err)
	}
}

func TestRootRequiresMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing", []string{}},
		{"unknown", []string{"fabric"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() { rootCmd.SetArgs(nil) })

			if err := rootCmd.Execute(); err == nil {
				t.Error("expected a usage error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.0.0", "abc123", "2026-01-01"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "1.0.0 (commit: abc123") {
		t.Errorf("output = %q", out.String())
	}
}

type namedPublisher string

func fakePublisher(name string) namedPublisher { return namedPublisher(name) }

func (p namedPublisher) Name() string { return string(p) }

func (p namedPublisher) Publish(context.Context, publish.Request) (string, error) { return "", nil }

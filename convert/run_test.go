package convert

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	yaml "gopkg.in/yaml.v3"

	"storyc/common"
	"storyc/config"
	"storyc/script"
	"storyc/state"
)

const introScript = "# Alice\n\nHello ![bg fade-in](bg/room.png \"/ cover\")\n\n---\n\nThe end. [goto](two.md)\n"

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Cfg = cfg
	env.Format = cfg.Document.OutputFormat
	return ctx, env
}

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
}

func readStory(t *testing.T, path string) wireStory {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	var s wireStory
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	return s
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (err = %v)", path, err)
	}
}

func TestProcessSingleFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"intro.md": introScript})

	if err := process(ctx, filepath.Join(src, "intro.md"), dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	s := readStory(t, filepath.Join(dst, "intro.yaml"))
	if len(s.Steps) != 2 {
		t.Fatalf("got %d steps", len(s.Steps))
	}
	first := s.Steps[0].Actions
	if len(first) != 2 || first[0].Name != "Alice" || first[0].Text != "Hello " {
		t.Errorf("first step = %+v", first)
	}
	wantBg := "file://" + filepath.ToSlash(filepath.Join(src, "bg", "room.png"))
	if first[1].URL != wantBg || first[1].Location.Size != "cover" {
		t.Errorf("bg = %+v, want url %q", first[1], wantBg)
	}
	if second := s.Steps[1].Actions; second[0].Name != "" || second[1].Type != "goto" {
		t.Errorf("second step = %+v", second)
	}
}

func TestProcessOverwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"intro.md": introScript})
	in := filepath.Join(src, "intro.md")

	if err := process(ctx, in, dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	err := process(ctx, in, dst, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second process() error = %v", err)
	}
	env.Overwrite = true
	if err := process(ctx, in, dst, zap.NewNop()); err != nil {
		t.Errorf("process() with overwrite error = %v", err)
	}
}

func TestProcessFormats(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"intro.md": introScript})

	env.Format = common.OutputFmtJson
	if err := process(ctx, filepath.Join(src, "intro.md"), dst, zap.NewNop()); err != nil {
		t.Fatalf("process() json error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "intro.json"))
	if err != nil {
		t.Fatal(err)
	}
	var s wireStory
	if err := json.Unmarshal(data, &s); err != nil || len(s.Steps) != 2 {
		t.Errorf("json output = %s, err = %v", data, err)
	}

	env.Format = common.OutputFmtIon
	if err := process(ctx, filepath.Join(src, "intro.md"), dst, zap.NewNop()); err != nil {
		t.Fatalf("process() ion error = %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(dst, "intro.ion")); err != nil || !strings.Contains(string(data), `"Hello "`) {
		t.Errorf("ion output = %s, err = %v", data, err)
	}
}

func TestProcessDirectory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{
		"intro.md":            introScript,
		"scenes/two.markdown": "Second\n",
		"scenes/bad.md":       "[x](#abc)\n",
		"readme.txt":          "not a script",
	})
	writeZip(t, filepath.Join(src, "extra", "pack.zip"), map[string]string{
		"three.md":  "Third\n",
		"notes.txt": "skip",
	})

	if err := process(ctx, src, dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	readStory(t, filepath.Join(dst, "intro.yaml"))
	if s := readStory(t, filepath.Join(dst, "scenes", "two.yaml")); s.Steps[0].Actions[0].Text != "Second" {
		t.Errorf("two = %+v", s)
	}
	readStory(t, filepath.Join(dst, "extra", "pack", "three.yaml"))
	assertMissing(t, filepath.Join(dst, "scenes", "bad.yaml"))
	assertMissing(t, filepath.Join(dst, "readme.yaml"))
	assertMissing(t, filepath.Join(dst, "extra", "pack", "notes.yaml"))

	env.NoDirs = true
	dst = t.TempDir()
	if err := process(ctx, src, dst, zap.NewNop()); err != nil {
		t.Fatalf("process() no dirs error = %v", err)
	}
	readStory(t, filepath.Join(dst, "two.yaml"))
	readStory(t, filepath.Join(dst, "three.yaml"))
}

func TestProcessArchive(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src := t.TempDir()
	arc := filepath.Join(src, "game.zip")
	writeZip(t, arc, map[string]string{
		"scenes/intro.md":     introScript,
		"scenes/act2/next.md": "Next\n",
		"other/skip.md":       "Skip\n",
		"scenes/bg/room.png":  "png",
	})

	dst := t.TempDir()
	if err := process(ctx, arc, dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	s := readStory(t, filepath.Join(dst, "scenes", "intro.yaml"))
	if bg := s.Steps[0].Actions[1].URL; !strings.HasSuffix(bg, "/game.zip/scenes/bg/room.png") {
		t.Errorf("bg url = %q", bg)
	}
	readStory(t, filepath.Join(dst, "scenes", "act2", "next.yaml"))
	readStory(t, filepath.Join(dst, "other", "skip.yaml"))

	// path inside archive
	dst = t.TempDir()
	if err := process(ctx, filepath.Join(arc, "scenes"), dst, zap.NewNop()); err != nil {
		t.Fatalf("process() inside archive error = %v", err)
	}
	readStory(t, filepath.Join(dst, "scenes", "intro.yaml"))
	readStory(t, filepath.Join(dst, "scenes", "act2", "next.yaml"))
	assertMissing(t, filepath.Join(dst, "other", "skip.yaml"))
}

func TestProcessErrors(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"bad.md": "Hi [wait](#soon)\n"})

	err := process(ctx, filepath.Join(src, "bad.md"), dst, zap.NewNop())
	if kind, ok := script.KindOf(err); !ok || kind != script.InvalidWaitTime {
		t.Errorf("process() error = %v", err)
	}
	assertMissing(t, filepath.Join(dst, "bad.yaml"))

	err = process(ctx, filepath.Join(src, "absent.md"), dst, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing source error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := process(canceled, src, dst, zap.NewNop()); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled process() error = %v", err)
	}
}

func TestProcessURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/game/intro.md" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, introScript)
	}))
	defer srv.Close()

	ctx, _ := setupTestEnv(t)
	dst := t.TempDir()
	if err := process(ctx, srv.URL+"/game/intro.md", dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	s := readStory(t, filepath.Join(dst, "intro.yaml"))
	if bg := s.Steps[0].Actions[1].URL; bg != srv.URL+"/game/bg/room.png" {
		t.Errorf("bg url = %q", bg)
	}
	if next := s.Steps[1].Actions[1].URL; next != srv.URL+"/game/two.md" {
		t.Errorf("goto url = %q", next)
	}

	if err := process(ctx, srv.URL+"/game/absent.md", dst, zap.NewNop()); err == nil {
		t.Error("process() of missing URL succeeded")
	}
}

func TestProcessBaseURL(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Document.BaseURL = "https://cdn.example.com/assets/"
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"intro.md": introScript})

	if err := process(ctx, filepath.Join(src, "intro.md"), dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	s := readStory(t, filepath.Join(dst, "intro.yaml"))
	if bg := s.Steps[0].Actions[1].URL; bg != "https://cdn.example.com/assets/bg/room.png" {
		t.Errorf("bg url = %q", bg)
	}
}

func TestProcessReport(t *testing.T) {
	ctx, env := setupTestEnv(t)
	rc := config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt

	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"intro.md": introScript, "two.md": "Two\n"})
	if err := process(ctx, src, dst, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(rc.Destination)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	counts := make(map[string]int)
	for _, f := range zr.File {
		counts[strings.SplitN(f.Name, "/", 2)[0]]++
	}
	if counts["source"] != 2 || counts["dump"] != 2 || counts["result"] != 2 {
		t.Errorf("report entries = %v", counts)
	}
}

func TestRunCommand(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{"scenes/intro.md": introScript})

	newCommand := func() *cli.Command {
		return &cli.Command{
			Name:   "compile",
			Action: Run,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "to"},
				&cli.BoolFlag{Name: "nodirs"},
				&cli.BoolFlag{Name: "overwrite"},
			},
		}
	}
	if err := newCommand().Run(ctx, []string{"compile", "--to", "json", "--nodirs", src, dst}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "intro.json")); err != nil {
		t.Errorf("output missing: %v", err)
	}

	if err := newCommand().Run(ctx, []string{"compile"}); err == nil {
		t.Error("Run() without source succeeded")
	}
}

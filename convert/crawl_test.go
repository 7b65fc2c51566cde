package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

func TestCrawlWritesManifest(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{
		"intro.md": introScript,
		"two.md":   "![bgm](music/theme.mp3)\n\n[end](intro.md)\n",
	})

	if err := crawl(ctx, filepath.Join(src, "intro.md"), dst, false, zap.NewNop()); err != nil {
		t.Fatalf("crawl() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "intro.manifest.yaml"))
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	var m wireManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid yaml: %v", err)
	}
	if len(m.Scripts) != 2 {
		t.Fatalf("got %d scripts", len(m.Scripts))
	}
	if !strings.HasSuffix(m.Entry, "/intro.md") || m.Scripts[0].Ref != m.Entry || !strings.HasSuffix(m.Scripts[1].Ref, "/two.md") {
		t.Errorf("entry = %q, scripts = %q, %q", m.Entry, m.Scripts[0].Ref, m.Scripts[1].Ref)
	}
	if len(m.Images) != 1 || !strings.HasSuffix(m.Images[0], "/bg/room.png") {
		t.Errorf("images = %q", m.Images)
	}
	if len(m.Audio) != 1 || !strings.HasSuffix(m.Audio[0], "/music/theme.mp3") {
		t.Errorf("audio = %q", m.Audio)
	}
	if m.ID == "" {
		t.Error("manifest has no id")
	}

	// second run needs overwrite
	if err := crawl(ctx, filepath.Join(src, "intro.md"), dst, false, zap.NewNop()); err == nil {
		t.Error("crawl() over existing manifest succeeded")
	}
}

func TestCrawlVerifyFails(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{
		"intro.md":    introScript,
		"two.md":      "Two\n",
		"bg/room.png": "not an image",
	})

	err := crawl(ctx, filepath.Join(src, "intro.md"), dst, true, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "1 asset(s) failed verification") {
		t.Fatalf("crawl() error = %v", err)
	}
	assertMissing(t, filepath.Join(dst, "intro.manifest.yaml"))
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/games/intro.md", "intro"},
		{"https://example.com/game/start.markdown?x=1", "start"},
		{"file:///games/chapter.1.md", "chapter.1"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := entryName(tt.in); got != tt.want {
				t.Errorf("entryName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package project

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"storyc/config"
	"storyc/script"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func testConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		Normalize:  true,
		Extensions: []string{".md"},
		Network: config.NetworkConfig{
			Timeout:   5 * time.Second,
			UserAgent: "storyc-test",
		},
	}
}

func newTestLoader(t *testing.T, conf *config.DocumentConfig) *Loader {
	t.Helper()
	if conf == nil {
		conf = testConfig()
	}
	return NewLoader(conf, testLogger(t))
}

func newTestCrawler(t *testing.T) *Crawler {
	t.Helper()
	log := testLogger(t)
	return NewCrawler(script.NewCompiler(log), NewLoader(testConfig(), log), log)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
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

func makeZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(dir, "game.zip")

	f, err := os.Create(zipPath)
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
	return zipPath
}

func fileURL(t *testing.T, path string) string {
	t.Helper()
	u, err := script.BaseURL(path)
	if err != nil {
		t.Fatalf("BaseURL(%q) error = %v", path, err)
	}
	return u.String()
}

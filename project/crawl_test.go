package project

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"storyc/script"
)

const (
	pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"
	mp3Header = "ID3\x03\x00\x00\x00\x00\x00\x00"
	wavHeader = "RIFF\x24\x00\x00\x00WAVEfmt "
)

func sampleGame(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"intro.md":     "# Alice\n\nHello ![bg](bg/room2.png) [goto](chapter1.md)\n\n[goto](chapter2.md#start)\n",
		"chapter1.md":  "![bgm](audio/theme.mp3)\n\n[goto](chapter2.md)\n\n[goto](chapter10.md)\n",
		"chapter2.md":  "![fig](alice.png \"alice left\")\n\n![sfx](audio/door.wav)\n\n[end](intro.md)\n",
		"chapter10.md": "![bg](bg/room2.png)\n\n![bg](bg/room10.png)\n",

		"alice.png":       pngHeader,
		"bg/room2.png":    pngHeader,
		"bg/room10.png":   pngHeader,
		"audio/theme.mp3": mp3Header,
		"audio/door.wav":  wavHeader,
	})
	return dir
}

func TestCrawl(t *testing.T) {
	dir := sampleGame(t)
	c := newTestCrawler(t)

	m, err := c.Crawl(context.Background(), filepath.Join(dir, "intro.md"))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	url := func(name string) string { return fileURL(t, filepath.Join(dir, filepath.FromSlash(name))) }

	wantScripts := []string{url("intro.md"), url("chapter1.md"), url("chapter2.md"), url("chapter10.md")}
	if !slices.Equal(m.Scripts, wantScripts) {
		t.Errorf("Scripts = %q, want %q", m.Scripts, wantScripts)
	}
	if m.Entry != wantScripts[0] {
		t.Errorf("Entry = %q", m.Entry)
	}
	if len(m.Stories) != len(wantScripts) {
		t.Errorf("got %d stories", len(m.Stories))
	}
	if s := m.Stories[url("intro.md")]; s == nil || len(s.Steps) != 2 {
		t.Errorf("intro story = %v", s)
	}

	wantImages := []string{url("alice.png"), url("bg/room2.png"), url("bg/room10.png")}
	if !slices.Equal(m.Images, wantImages) {
		t.Errorf("Images = %q, want %q", m.Images, wantImages)
	}
	wantAudio := []string{url("audio/door.wav"), url("audio/theme.mp3")}
	if !slices.Equal(m.Audio, wantAudio) {
		t.Errorf("Audio = %q, want %q", m.Audio, wantAudio)
	}
	if got := m.Assets(); len(got) != 5 || got[0] != wantImages[0] || got[4] != wantAudio[1] {
		t.Errorf("Assets() = %q", got)
	}

	again, err := c.Crawl(context.Background(), url("intro.md"))
	if err != nil {
		t.Fatalf("second Crawl() error = %v", err)
	}
	if again.ID != m.ID {
		t.Errorf("ID is not stable: %v != %v", again.ID, m.ID)
	}
	if m.ID.Version() != 5 {
		t.Errorf("ID version = %d", m.ID.Version())
	}
}

func TestCrawlFromArchive(t *testing.T) {
	dir := t.TempDir()
	makeZip(t, dir, map[string]string{
		"scenes/intro.md": "[goto](next.md)\n",
		"scenes/next.md":  "![bg](../bg/room.png)\n",
		"bg/room.png":     pngHeader,
	})

	c := newTestCrawler(t)
	m, err := c.Crawl(context.Background(), filepath.Join(dir, "game.zip", "scenes", "intro.md"))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(m.Scripts) != 2 || !strings.HasSuffix(m.Scripts[1], "/game.zip/scenes/next.md") {
		t.Errorf("Scripts = %q", m.Scripts)
	}
	if len(m.Images) != 1 || !strings.HasSuffix(m.Images[0], "/game.zip/bg/room.png") {
		t.Errorf("Images = %q", m.Images)
	}
	if err := c.Verify(context.Background(), m); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestCrawlErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"intro.md":  "[goto](missing.md)\n",
		"broken.md": "[goto](bad.md)\n",
		"bad.md":    "[wait](#soon)\n",
	})
	c := newTestCrawler(t)

	_, err := c.Crawl(context.Background(), filepath.Join(dir, "intro.md"))
	if !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "missing.md") {
		t.Errorf("missing script error = %v", err)
	}

	_, err = c.Crawl(context.Background(), filepath.Join(dir, "broken.md"))
	if err == nil || !strings.Contains(err.Error(), "bad.md") {
		t.Errorf("compile error = %v", err)
	}
	var pe *script.ParseError
	if !errors.As(err, &pe) || pe.Kind != script.InvalidWaitTime {
		t.Errorf("compile error kind = %v", err)
	}

	if _, err := c.Crawl(context.Background(), ""); err == nil {
		t.Error("Crawl() with empty entry succeeded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Crawl(ctx, filepath.Join(dir, "bad.md")); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled crawl error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	dir := sampleGame(t)
	c := newTestCrawler(t)

	m, err := c.Crawl(context.Background(), filepath.Join(dir, "intro.md"))
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if err := c.Verify(context.Background(), m); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	// swap content: audio where image is expected and vice versa, drop one
	writeFiles(t, dir, map[string]string{
		"alice.png":       mp3Header,
		"audio/theme.mp3": pngHeader,
		"bg/room2.png":    "",
	})
	if err := os.Remove(filepath.Join(dir, "audio", "door.wav")); err != nil {
		t.Fatal(err)
	}

	err = c.Verify(context.Background(), m)
	if err == nil {
		t.Fatal("Verify() succeeded")
	}
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("Verify() reported %d errors: %v", len(errs), err)
	}
	var typed, missing int
	for _, e := range errs {
		switch {
		case errors.Is(e, ErrUnexpectedType):
			typed++
		case errors.Is(e, fs.ErrNotExist):
			missing++
		}
	}
	if typed != 3 || missing != 1 {
		t.Errorf("typed = %d, missing = %d: %v", typed, missing, err)
	}
	for _, want := range []string{"image/png", "audio/mpeg", "empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Verify() error does not mention %q: %v", want, err)
		}
	}
}

func TestIsImageSVG(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	if !isImage("file:///game/logo.svg?v=2", svg) {
		t.Error("svg was not accepted")
	}
	if isImage("file:///game/logo.png", svg) {
		t.Error("svg content accepted under png name")
	}
	if isImage("file:///game/notes.svg", []byte("plain text")) {
		t.Error("text accepted as svg")
	}
}

// Package script compiles Markdown scene scripts into stories.
//
// Top-level headings set the current speaker, thematic breaks clear it and
// every paragraph becomes one step. Inside a paragraph plain text becomes
// dialogue, links become navigation or waits and images become
// background, figure and audio actions configured by their alt and title
// attributes.
package script

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"storyc/document"
	"storyc/story"
)

// Loader reads script text for a path or URL.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Compiler turns script text into a Story. It holds no per-call state and
// may be used concurrently.
type Compiler struct {
	log    *zap.Logger
	parser *document.Parser
}

func NewCompiler(log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		log:    log.Named("script"),
		parser: document.NewParser(),
	}
}

// Compile parses src. Relative link and image targets are resolved against
// base which may be a URL or a filesystem path, when base is empty targets
// are kept as written.
func (c *Compiler) Compile(src []byte, base string) (*story.Story, error) {
	baseURL, err := BaseURL(base)
	if err != nil {
		return nil, err
	}

	doc, err := c.parser.Parse(src)
	if err != nil {
		return nil, &ParseError{Kind: DocumentError, Detail: err.Error(), err: err}
	}

	w := &walker{log: c.log, base: baseURL}
	s, err := w.document(doc)
	if err != nil {
		c.log.Debug("Script compilation failed", zap.String("base", base), zap.Error(err))
		return nil, err
	}
	c.log.Debug("Script compiled", zap.String("base", base), zap.Int("steps", len(s.Steps)))
	return s, nil
}

// CompileFile loads ref through loader and compiles it using ref as the
// base for relative targets.
func (c *Compiler) CompileFile(ctx context.Context, loader Loader, ref string) (*story.Story, error) {
	data, err := loader.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("unable to load script %q: %w", ref, err)
	}
	return c.Compile(data, ref)
}

// BaseURL turns a base reference into an absolute URL. Strings with a
// scheme are taken as URLs, anything else is a filesystem path and becomes
// a file URL. Empty base yields nil.
func BaseURL(base string) (*url.URL, error) {
	if base == "" {
		return nil, nil
	}
	// single letter schemes are Windows drive letters
	if u, err := url.Parse(base); err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, &ParseError{Kind: InvalidURL, Detail: base, err: err}
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

package project

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"storyc/script"
	"storyc/story"
)

// Source gives crawler access to scripts and assets.
type Source interface {
	script.Loader
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Manifest describes everything reachable from an entry script.
type Manifest struct {
	// ID is derived from the entry, so crawling the same game produces
	// the same identifier.
	ID    uuid.UUID
	Entry string
	// Scripts in order of discovery, the entry first.
	Scripts []string
	Stories map[string]*story.Story
	// Images and Audio are naturally sorted.
	Images []string
	Audio  []string
}

type Crawler struct {
	log      *zap.Logger
	compiler *script.Compiler
	src      Source
}

func NewCrawler(compiler *script.Compiler, src Source, log *zap.Logger) *Crawler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Crawler{log: log.Named("crawler"), compiler: compiler, src: src}
}

// Crawl compiles entry and every script reachable from it through goto and
// end actions, each one once, breadth first. The first script which fails
// to load or compile stops the crawl.
func (c *Crawler) Crawl(ctx context.Context, entry string) (*Manifest, error) {
	root, err := canonical(entry)
	if err != nil {
		return nil, fmt.Errorf("bad entry %q: %w", entry, err)
	}

	m := &Manifest{
		ID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(root)),
		Entry:   root,
		Stories: make(map[string]*story.Story),
	}
	images, audio := make(map[string]struct{}), make(map[string]struct{})

	queue := []string{root}
	seen := map[string]struct{}{root: {}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref := queue[0]
		queue = queue[1:]

		s, err := c.compiler.CompileFile(ctx, c.src, ref)
		if err != nil {
			return nil, fmt.Errorf("unable to compile %q: %w", ref, err)
		}
		m.Scripts = append(m.Scripts, ref)
		m.Stories[ref] = s

		refs := s.References()
		for _, u := range refs.Images {
			images[u] = struct{}{}
		}
		for _, u := range refs.Audio {
			audio[u] = struct{}{}
		}
		for _, target := range refs.Scripts {
			next, err := canonical(target)
			if err != nil {
				// compiler already validated targets
				c.log.Warn("Unexpected navigation target, ignoring", zap.String("script", ref), zap.String("target", target), zap.Error(err))
				continue
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
		c.log.Debug("Script crawled", zap.String("script", ref), zap.Int("steps", len(s.Steps)), zap.Int("queued", len(queue)))
	}

	m.Images = sortedKeys(images)
	m.Audio = sortedKeys(audio)
	return m, nil
}

// canonical turns script reference into absolute URL without fragment.
func canonical(ref string) (string, error) {
	u, err := script.BaseURL(ref)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", errors.New("empty reference")
	}
	c := *u
	c.Fragment, c.RawFragment = "", ""
	return (&c).String(), nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return keys
}

// Assets returns all asset references of the manifest.
func (m *Manifest) Assets() []string {
	return append(slices.Clone(m.Images), m.Audio...)
}

package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrUnexpectedType is reported for assets whose content does not match
// the way script uses them.
var ErrUnexpectedType = errors.New("unexpected asset type")

// Verify fetches every asset of the manifest and checks its content: bg and
// fig targets must be images, bgm and sfx targets must be audio. All
// failures are reported together.
func (c *Crawler) Verify(ctx context.Context, m *Manifest) error {
	var errs error
	check := func(class, ref string, accept func(string, []byte) bool) {
		data, err := c.src.Fetch(ctx, ref)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %q: %w", class, ref, err))
			return
		}
		if !accept(ref, data) {
			errs = multierr.Append(errs, fmt.Errorf("%s %q: %w (%s)", class, ref, ErrUnexpectedType, describe(data)))
			return
		}
		c.log.Debug("Asset verified", zap.String("class", class), zap.String("ref", ref), zap.Int("size", len(data)))
	}

	for _, ref := range m.Images {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		check("image", ref, isImage)
	}
	for _, ref := range m.Audio {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		check("audio", ref, isAudio)
	}
	return errs
}

func isImage(ref string, data []byte) bool {
	if filetype.IsImage(data) {
		return true
	}
	// svg is text and has no magic
	return strings.EqualFold(path.Ext(stripQuery(ref)), ".svg") && bytes.Contains(data, []byte("<svg"))
}

func isAudio(_ string, data []byte) bool {
	return filetype.IsAudio(data)
}

func describe(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "unknown content"
	}
	return kind.MIME.Value
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

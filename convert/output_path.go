package convert

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"storyc/config"
	"storyc/state"
	"storyc/story"
)

// buildOutputPath returns output file path for compiled script. src is the
// script path relative to the input root, dst is destination directory.
// Source directory structure is kept unless NoDirs is set. Name comes from
// the source or from configured template, which may add subdirectories.
func buildOutputPath(s *story.Story, src, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	ext := env.Format.Ext()

	if env.Cfg.Document.OutputNameTemplate != "" {
		if expanded := expandOutputNameTemplate(s, src, env); expanded != "" {
			return assemblePathWithSubdirs(outDir, expanded, ext, env)
		}
	}

	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, cleanPathSegment(baseName, env)+ext)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func expandOutputNameTemplate(s *story.Story, src string, env *state.LocalEnv) string {
	expanded, err := expandTemplate(s, src, config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, env.Format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename, using default", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expanded)
}

// assemblePathWithSubdirs cleans every segment of expanded name, which may
// contain path separators, and joins them under outDir.
func assemblePathWithSubdirs(outDir, expanded, ext string, env *state.LocalEnv) string {
	segments := splitPath(expanded)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+ext)
	return filepath.Join(parts...)
}

// splitPath drops empty, "." and ".." segments so expanded template cannot
// leave destination directory.
func splitPath(p string) []string {
	segments := strings.FieldsFunc(p, func(r rune) bool {
		return r == filepath.Separator || r == '/'
	})
	return slices.DeleteFunc(segments, func(s string) bool {
		return s == "." || s == ".."
	})
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

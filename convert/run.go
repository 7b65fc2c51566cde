// Package convert implements compile and crawl commands: it finds scripts,
// compiles them and writes the results.
package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"storyc/archive"
	"storyc/common"
	"storyc/state"
)

// Run is the action of compile command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst, err := destination(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format = selectFormat(cmd.String("to"), env, log)
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

func destination(dst string) (string, error) {
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(dst)
}

func selectFormat(requested string, env *state.LocalEnv, log *zap.Logger) common.OutputFmt {
	format := env.Cfg.Document.OutputFormat
	if requested == "" {
		return format
	}
	f, err := common.ParseOutputFmt(requested)
	if err != nil {
		log.Warn("Unknown output format requested, using configured one", zap.Stringer("format", format), zap.Error(err))
		return format
	}
	return f
}

// isRemote reports whether src is an URL rather than a local path.
func isRemote(src string) bool {
	u, err := url.Parse(src)
	// single letter schemes are Windows drive letters
	return err == nil && len(u.Scheme) > 1
}

// process determines the input type (URL, directory, archive, path inside
// archive, or single script) and compiles accordingly. Failure of a single
// requested script is returned, failures inside directories and archives
// are logged and skipped.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	if isRemote(src) {
		u, _ := url.Parse(src)
		data, err := env.Loader().Load(ctx, src)
		if err != nil {
			return fmt.Errorf("unable to load script: %w", err)
		}
		return processScript(ctx, data, src, path.Base(u.Path), dst, log)
	}

	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	fi, err := os.Stat(src)
	if err != nil {
		if arc, entry, ok := archive.Split(src); ok {
			if err := processArchive(ctx, arc, entry, dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}
		return fmt.Errorf("input source was not found (%s)", src)
	}

	switch {
	case fi.IsDir():
		if err := processDir(ctx, src, dst, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	case !fi.Mode().IsRegular():
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	isArchive, err := isArchiveFile(src)
	if err != nil {
		return fmt.Errorf("unable to check archive type: %w", err)
	}
	if isArchive {
		if err := processArchive(ctx, src, "", dst, log); err != nil {
			return fmt.Errorf("unable to process archive: %w", err)
		}
		return nil
	}

	data, err := env.Loader().Load(ctx, src)
	if err != nil {
		return fmt.Errorf("unable to load script: %w", err)
	}
	return processScript(ctx, data, src, filepath.Base(src), dst, log)
}

// processDir walks directory tree compiling scripts and archives it finds.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		isArchive, err := isArchiveFile(p)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			// scripts from archive go under archive name without extension
			out := filepath.Join(dst, strings.TrimSuffix(rel, filepath.Ext(rel)))
			if env.NoDirs {
				out = dst
			}
			if err := processArchive(ctx, p, "", out, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", p), zap.Error(err))
			}
			return nil
		}

		if !isScriptName(p, env.Cfg.Document.Extensions) {
			log.Debug("Skipping file, not recognized as script or archive", zap.String("file", p))
			return nil
		}
		count++

		data, err := env.Loader().Load(ctx, p)
		if err != nil {
			log.Error("Unable to load script", zap.String("file", p), zap.Error(err))
			return nil
		}
		if err := processScript(ctx, data, p, rel, dst, log); err != nil {
			log.Error("Unable to compile script", zap.String("file", p), zap.Error(err))
		}
		return nil
	})
}

// processArchive compiles every script in archive under prefix.
func processArchive(ctx context.Context, arc, prefix, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", arc), zap.String("prefix", prefix))
		}
	}()

	return archive.Walk(arc, filepath.ToSlash(prefix), "", func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isScriptName(f.Name, env.Cfg.Document.Extensions) {
			log.Debug("Skipping file, not recognized as script", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}
		count++

		data, err := readZipFile(f)
		if err == nil {
			data, err = env.Loader().Decode(data)
		}
		if err != nil {
			log.Error("Unable to read script in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}

		ref := filepath.Join(arc, filepath.FromSlash(f.Name))
		if err := processScript(ctx, data, ref, filepath.FromSlash(f.Name), dst, log); err != nil {
			log.Error("Unable to compile script in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// processScript compiles one script. ref is where script came from and is
// used to resolve relative targets unless base URL is configured. src is the
// script name relative to the input root and determines output location.
func processScript(ctx context.Context, data []byte, ref, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	var outputName string

	log.Info("Compilation starting", zap.String("from", ref))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", r)
		} else if rerr == nil {
			log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	base := env.Cfg.Document.BaseURL
	if base == "" {
		base = ref
	}
	s, err := env.Compiler().Compile(data, base)
	if err != nil {
		return fmt.Errorf("unable to compile %s: %w", src, err)
	}

	outputName = buildOutputPath(s, src, dst, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := EncodeStory(buf, s, env.Format); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if env.Rpt != nil {
		name := reportName(ref)
		env.Rpt.StoreData("source/"+name, data)
		env.Rpt.StoreData("dump/"+name+".txt", []byte(s.String()))
		env.Rpt.Store("result/"+name+env.Format.Ext(), outputName)
	}
	return nil
}

// reportName turns script reference into unique archive entry name.
func reportName(ref string) string {
	name := filepath.ToSlash(ref)
	name = strings.NewReplacer("://", "/", ":", "_").Replace(name)
	return strings.TrimLeft(name, "/")
}

// prepareOutput makes sure output file can be written.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

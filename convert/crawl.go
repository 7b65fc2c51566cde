package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"storyc/state"
)

// Crawl is the action of crawl command: it compiles entry script with
// everything reachable from it and writes single manifest file.
func Crawl(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("crawl")

	entry := cmd.Args().Get(0)
	if len(entry) == 0 {
		return errors.New("no entry script has been specified")
	}
	if !isRemote(entry) {
		if entry, err = filepath.Abs(entry); err != nil {
			return err
		}
	}
	dst, err := destination(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Format = selectFormat(cmd.String("to"), env, log)
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Crawling starting", zap.String("entry", entry), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Crawling completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return crawl(ctx, entry, dst, cmd.Bool("verify") || env.Cfg.Document.VerifyAssets, log)
}

func crawl(ctx context.Context, entry, dst string, verify bool, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	crawler := env.Crawler()

	m, err := crawler.Crawl(ctx, entry)
	if err != nil {
		return err
	}
	log.Info("Scripts collected",
		zap.Stringer("id", m.ID), zap.Int("scripts", len(m.Scripts)), zap.Int("images", len(m.Images)), zap.Int("audio", len(m.Audio)))

	if verify {
		if err := crawler.Verify(ctx, m); err != nil {
			errs := multierr.Errors(err)
			for _, e := range errs {
				log.Error("Asset verification failed", zap.Error(e))
			}
			return fmt.Errorf("%d asset(s) failed verification", len(errs))
		}
		log.Info("Assets verified", zap.Int("count", len(m.Assets())))
	}

	outputName := filepath.Join(dst, cleanPathSegment(entryName(entry), env)+".manifest"+env.Format.Ext())
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err := EncodeManifest(buf, m, env.Format); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	log.Info("Manifest written", zap.String("to", outputName))

	if env.Rpt != nil {
		for _, ref := range m.Scripts {
			env.Rpt.StoreData("dump/"+reportName(ref)+".txt", []byte(m.Stories[ref].String()))
		}
		env.Rpt.Store("result/"+filepath.Base(outputName), outputName)
	}
	return nil
}

// entryName returns entry script name without directory and extension.
func entryName(entry string) string {
	var name string
	if u, err := url.Parse(entry); err == nil && len(u.Scheme) > 1 {
		name = path.Base(u.Path)
	} else {
		name = filepath.Base(entry)
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

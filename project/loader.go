// Package project loads scene scripts from files, archives and the network
// and follows navigation between them to collect the whole game.
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/unicode/norm"

	"storyc/archive"
	"storyc/config"
)

// ErrUnknownEncoding is returned for charset names not known to the loader.
var ErrUnknownEncoding = errors.New("unknown encoding")

// maxBody limits size of anything fetched over network.
const maxBody = 64 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads scripts and assets. References are local paths (possibly
// going through zip archive), file URLs or http(s) URLs.
type Loader struct {
	log       *zap.Logger
	client    *http.Client
	userAgent string
	token     config.SecretString
	encoding  string
	normalize bool
}

func NewLoader(conf *config.DocumentConfig, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		log:       log.Named("loader"),
		client:    &http.Client{Timeout: conf.Network.Timeout},
		userAgent: conf.Network.UserAgent,
		token:     conf.Network.Token,
		encoding:  conf.Encoding,
		normalize: conf.Normalize,
	}
}

// Load returns script text for ref converted to UTF-8.
func (l *Loader) Load(ctx context.Context, ref string) ([]byte, error) {
	data, ctype, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if data, err = l.prepare(data, ctype); err != nil {
		return nil, fmt.Errorf("unable to decode %q: %w", ref, err)
	}
	return data, nil
}

// Decode converts script text obtained elsewhere the same way Load does.
func (l *Loader) Decode(data []byte) ([]byte, error) {
	return l.prepare(data, "")
}

func (l *Loader) prepare(data []byte, ctype string) ([]byte, error) {
	data, err := l.decode(data, ctype)
	if err != nil {
		return nil, err
	}
	if l.normalize {
		data = norm.NFC.Bytes(data)
	}
	return data, nil
}

// Fetch returns raw content of ref.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	data, _, err := l.fetch(ctx, ref)
	return data, err
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) <= 1 {
		// not an URL or Windows drive letter
		data, err := readLocal(ref)
		return data, "", err
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		data, err := readLocal(fileURLPath(u))
		return data, "", err
	case "http", "https":
		return l.get(ctx, u)
	default:
		return nil, "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, ref)
	}
}

func (l *Loader) get(ctx context.Context, u *url.URL) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token.Reveal())
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unable to get %q: %s", u.Redacted(), resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, "", fmt.Errorf("unable to read %q: %w", u.Redacted(), err)
	}
	if len(data) > maxBody {
		return nil, "", fmt.Errorf("response for %q is larger than %d bytes", u.Redacted(), maxBody)
	}
	l.log.Debug("Fetched", zap.String("url", u.Redacted()), zap.Int("size", len(data)), zap.Duration("elapsed", time.Since(start)))
	return data, resp.Header.Get("Content-Type"), nil
}

// decode converts data to UTF-8. Without configured encoding BOM and
// Content-Type are honored, then valid UTF-8 is taken as is.
func (l *Loader) decode(data []byte, ctype string) ([]byte, error) {
	var (
		enc  encoding.Encoding
		name string
	)
	if l.encoding != "" {
		if enc, name = charset.Lookup(l.encoding); enc == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, l.encoding)
		}
	} else {
		var certain bool
		enc, name, certain = charset.DetermineEncoding(data, ctype)
		// detection looks at the first KiB only
		if !certain && utf8.Valid(data) {
			enc, name = encoding.Nop, "utf-8"
		}
	}

	if name != "utf-8" {
		l.log.Debug("Decoding script", zap.String("charset", name))
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		data = out
	}
	// decoded UTF-16 keeps its byte order mark
	return bytes.TrimPrefix(data, utf8BOM), nil
}

func readLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%q is a directory", path)
		}
		return os.ReadFile(path)
	}
	if arc, entry, ok := archive.Split(path); ok {
		return archive.ReadFile(arc, entry)
	}
	return nil, err
}

func fileURLPath(u *url.URL) string {
	p := u.Path
	// "/C:/dir" on Windows
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// Package convert implements convert command: finding HTML sources, running
// conversion and writing results.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"

	"h2docx/config"
	"h2docx/convert/htmldocx"
	"h2docx/docx"
	"h2docx/fetch"
	"h2docx/misc"
	"h2docx/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if !isURL(src) {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Declared or detected encoding of sources may be wrong, allow to force it
	if cs := cmd.String("charset"); len(cs) > 0 {
		env.Charset, err = ianaindex.IANA.Encoding(cs)
		if err != nil || env.Charset == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cs), zap.Error(err))
			env.Charset = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.Charset)
			log.Debug("Forcefully decoding all sources", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return newProcessor(env, log).process(ctx, src, dst)
}

// processor keeps what every source conversion needs.
type processor struct {
	env     *state.LocalEnv
	cfg     *config.DocumentConfig
	fetcher *fetch.Client
	log     *zap.Logger
}

func newProcessor(env *state.LocalEnv, log *zap.Logger) *processor {
	return &processor{
		env:     env,
		cfg:     &env.Cfg.Document,
		fetcher: fetch.New(&env.Cfg.Document.Fetch, log),
		log:     log,
	}
}

// options builds engine options for source, relative image references are
// resolved against base.
func options(cfg *config.DocumentConfig, base string) htmldocx.Options {
	return htmldocx.Options{
		RepairHTML:      cfg.RepairHTML,
		Images:          cfg.Images,
		Tables:          cfg.Tables,
		InlineStyles:    cfg.InlineStyles,
		TableStyle:      cfg.TableStyle,
		ParagraphStyle:  cfg.ParagraphStyle,
		WatermarkMarker: cfg.WatermarkMarker,
		MaxTableDepth:   cfg.MaxTableDepth,
		Base:            base,
	}
}

func isURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isHTMLFile checks file extension, content is sniffed by charset decoder
// later.
func isHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// process determines the input type (remote page, directory or single file)
// and processes accordingly.
func (p *processor) process(ctx context.Context, src, dst string) error {
	if isURL(src) {
		return p.processURL(ctx, src, dst)
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if fi.IsDir() {
		return p.processDir(ctx, src, dst)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	if !isHTMLFile(src) {
		return fmt.Errorf("input was not recognized as HTML document (%s)", src)
	}
	return p.processFile(ctx, src, filepath.Base(src), dst)
}

// processDir walks directory tree finding html files and processes them.
// Failure of a single file does not stop processing.
func (p *processor) processDir(ctx context.Context, dir, dst string) error {
	var (
		count  int
		failed error
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			p.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !isHTMLFile(path) {
			p.log.Debug("Skipping file, not recognized as html", zap.String("file", path))
			return nil
		}

		count++
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := p.processFile(ctx, path, src, dst); err != nil {
			p.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", src, err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		p.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	if failed != nil {
		return fmt.Errorf("unable to process %d of %d file(s): %w", len(multierr.Errors(failed)), count, failed)
	}
	return nil
}

func (p *processor) processFile(ctx context.Context, path, src, dst string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.processSource(ctx, data, src, filepath.Dir(path), buildOutputPath(src, dst, p.env))
}

func (p *processor) processURL(ctx context.Context, src, dst string) error {
	u, err := url.Parse(src)
	if err != nil {
		return err
	}
	data, err := p.fetcher.Get(ctx, src)
	if err != nil {
		return fmt.Errorf("unable to download source: %w", err)
	}
	return p.processSource(ctx, data, src, src, buildURLOutputPath(u, dst, p.env))
}

// decode returns source markup as UTF-8 text. Forced charset wins over
// byte order mark and meta declarations.
func (p *processor) decode(data []byte, src string) (string, error) {
	enc := p.env.Charset
	if enc == nil {
		var (
			name    string
			certain bool
		)
		enc, name, certain = charset.DetermineEncoding(data, "")
		p.log.Debug("Source encoding", zap.String("source", src), zap.String("charset", name), zap.Bool("certain", certain))
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("unable to decode source: %w", err)
	}
	// decoders keep byte order mark
	return string(bytes.TrimPrefix(out, []byte("\ufeff"))), nil
}

// processSource converts single HTML document. "src" is source name used
// for logging and reporting, "base" is where relative image references are
// resolved and "outputName" is resulting file.
func (p *processor) processSource(ctx context.Context, data []byte, src, base, outputName string) (rerr error) {
	log := p.log

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// NOTE: image decoders are not hardened against malformed input, when
		// multiple files are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	p.env.Rpt.StoreData("source/"+config.CleanFileName(filepath.Base(src)), data)

	markup, err := p.decode(data, src)
	if err != nil {
		return err
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !p.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	conv := htmldocx.New(options(p.cfg, base), p.fetcher, log)
	doc, err := conv.ConvertDocument(ctx, markup)
	if err != nil {
		return fmt.Errorf("unable to convert (%s): %w", src, err)
	}
	doc.Properties.Creator = misc.GetAppName() + " " + misc.GetVersion()
	if doc.Properties.Title == "" {
		doc.Properties.Title = strings.TrimSuffix(filepath.Base(outputName), outputExt)
	}

	result, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}
	if p.cfg.FixZip {
		if result, err = docx.RewriteWithoutDataDescriptors(result); err != nil {
			return fmt.Errorf("unable to fix output archive: %w", err)
		}
	}
	if err := write(result, outputName); err != nil {
		return err
	}

	// Store conversion result for debugging
	if p.env.Rpt != nil {
		name := filepath.Base(outputName)
		p.env.Rpt.StoreData("result/"+name, result)
		p.env.Rpt.StoreData("structure/"+strings.TrimSuffix(name, outputExt)+".txt", []byte(dumpDocument(doc)))
	}
	return nil
}

func write(data []byte, outputName string) (err error) {
	f, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

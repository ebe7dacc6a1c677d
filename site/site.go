// Package site generates localized variants of the HTML documents in a
// directory.
package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZaguanLabs/rtlify"
	"github.com/ZaguanLabs/rtlify/processor"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultSuffix marks generated Persian variants (index.html → index-fa.html).
const DefaultSuffix = "fa"

// Result is the completion record of one generated document.
type Result struct {
	Source     string // Input path
	Output     string // Written path
	Units      int    // Units translated and written back
	Distinct   int    // Distinct strings among Units
	Translated int    // Strings that needed a provider call
	Cached     int    // Strings resolved from the run cache
}

// Generator drives the per-document pipeline. One Generator, and therefore
// one Translator and cache, is shared by every document of a run.
type Generator struct {
	translator *rtlify.Translator
	processor  *processor.HTMLProcessor
	adjuster   *processor.RTLAdjuster
	suffix     string
	logger     *slog.Logger
	report     func(Result)
}

// Option configures a Generator.
type Option func(*Generator)

// WithSuffix sets the localized-variant suffix.
func WithSuffix(suffix string) Option {
	return func(g *Generator) {
		if suffix != "" {
			g.suffix = suffix
		}
	}
}

// WithLogger sets the logger receiving completion records.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithReporter registers fn to receive each document's Result as soon as its
// variant is written.
func WithReporter(fn func(Result)) Option {
	return func(g *Generator) {
		g.report = fn
	}
}

// NewGenerator creates a Generator.
func NewGenerator(t *rtlify.Translator, p *processor.HTMLProcessor, a *processor.RTLAdjuster, opts ...Option) *Generator {
	g := &Generator{
		translator: t,
		processor:  p,
		adjuster:   a,
		suffix:     DefaultSuffix,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Suffix returns the localized-variant suffix.
func (g *Generator) Suffix() string {
	return g.suffix
}

// Discover lists the HTML documents directly inside dir, sorted by name,
// skipping localized variants produced by an earlier run.
func (g *Generator) Discover(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var docs []string
	for _, path := range matches {
		if g.IsVariant(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		docs = append(docs, path)
	}

	sort.Strings(docs)
	return docs, nil
}

// IsVariant reports whether path already carries the localized suffix.
func (g *Generator) IsVariant(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, "-"+g.suffix)
}

// VariantPath returns the sibling path of the localized variant:
// <stem>-<suffix><ext>.
func (g *Generator) VariantPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + g.suffix + ext
}

// Localize runs the full pipeline on one document read from r and returns
// the serialized variant.
func (g *Generator) Localize(ctx context.Context, r io.Reader) (string, Result, error) {
	var res Result

	doc, err := g.processor.Parse(decodeUTF8(r))
	if err != nil {
		return "", res, err
	}

	g.adjuster.Adjust(doc)

	units := g.processor.Extract(doc)

	translations, stats, err := g.translator.TranslateUnits(ctx, units)
	if err != nil {
		return "", res, err
	}
	res.Distinct = stats.Distinct
	res.Translated = stats.Translated
	res.Cached = stats.Cached

	res.Units, err = g.processor.Apply(units, translations)
	if err != nil {
		return "", res, err
	}

	out, err := g.processor.Render(doc)
	if err != nil {
		return "", res, err
	}

	return out, res, nil
}

// Extract returns the translatable units of one document without
// translating anything.
func (g *Generator) Extract(r io.Reader) ([]rtlify.Unit, error) {
	doc, err := g.processor.Parse(decodeUTF8(r))
	if err != nil {
		return nil, err
	}
	return g.processor.Extract(doc), nil
}

// decodeUTF8 drops a leading UTF-8 byte order mark. Reads fail with
// encoding.ErrInvalidUTF8 on the first byte that is not valid UTF-8.
func decodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(encoding.UTF8Validator, unicode.BOMOverride(transform.Nop)))
}

// ProcessFile localizes one document and writes its variant. Nothing is
// written when any step fails.
func (g *Generator) ProcessFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path) // #nosec G304 - documents come from the site directory
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out, res, err := g.Localize(ctx, f)
	if err != nil {
		return res, fmt.Errorf("localizing %s: %w", filepath.Base(path), err)
	}

	res.Source = path
	res.Output = g.VariantPath(path)

	if err := os.WriteFile(res.Output, []byte(out), 0o644); err != nil { // #nosec G306 - generated site pages are world readable
		return res, fmt.Errorf("writing %s: %w", res.Output, err)
	}

	g.logger.InfoContext(ctx, "created localized variant",
		"file", filepath.Base(res.Output),
		"entries", res.Units,
		"distinct", res.Distinct,
		"requested", res.Translated,
		"cached", res.Cached)

	if g.report != nil {
		g.report(res)
	}

	return res, nil
}

// Run localizes every document discovered in dir, one at a time. The first
// failure aborts the run; variants written before it are kept and the
// failing document gets no output.
func (g *Generator) Run(ctx context.Context, dir string) ([]Result, error) {
	docs, err := g.Discover(dir)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		g.logger.WarnContext(ctx, "no HTML documents found", "dir", dir)
		return nil, nil
	}

	results := make([]Result, 0, len(docs))
	for _, path := range docs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := g.ProcessFile(ctx, path)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

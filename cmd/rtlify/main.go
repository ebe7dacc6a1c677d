// Command rtlify generates right-to-left translated variants of the HTML
// pages in a directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ZaguanLabs/rtlify"
	"github.com/ZaguanLabs/rtlify/cache"
	"github.com/ZaguanLabs/rtlify/config"
	"github.com/ZaguanLabs/rtlify/processor"
	"github.com/ZaguanLabs/rtlify/provider"
	"github.com/ZaguanLabs/rtlify/site"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = rtlify.FullVersion()
	buildDate = rtlify.BuildDate
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// flags holds command-line values. Only flags the user set override the
// loaded configuration.
type flags struct {
	configPath  string
	lang        string
	suffix      string
	provider    string
	redisURL    string
	cacheFile   string
	logLevel    string
	noPretty    bool
	noColor     bool
	showVersion bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "rtlify [dir]",
		Short: "Generate right-to-left translated variants of HTML pages",
		Long: `rtlify translates every HTML page in a directory and writes a
right-to-left variant next to it (index.html -> index-fa.html).

Text nodes and the placeholder, title, alt, aria-label and value attributes are
translated; script and style contents are left alone. The variant gets
lang/dir attributes, an rtl-body class, css/rtl.css and js/rtl.js.

Settings are read from defaults, the --config YAML file, RTLIFY_* environment
variables and flags, each overriding the previous.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				printVersion(stdout)
				return nil
			}
			return runGenerate(cmd, f, args, stdout, stderr)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&f.lang, "lang", "", "Target language code (default: fa)")
	pf.StringVar(&f.suffix, "suffix", "", "Suffix of generated files (default: fa)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored log output")

	fl := root.Flags()
	fl.StringVar(&f.provider, "provider", "", "Translation backend: google or openai")
	fl.StringVar(&f.redisURL, "redis-url", "", "Share translations through Redis (e.g., redis://localhost:6379/0)")
	fl.StringVar(&f.cacheFile, "cache-file", "", "Load translations from and save them to a JSON file")
	fl.BoolVar(&f.noPretty, "no-pretty", false, "Write the serialized tree without re-indenting")
	fl.BoolVarP(&f.showVersion, "version", "v", false, "Show version")

	root.AddCommand(
		newExtractCmd(f, stdout),
		newVersionCmd(stdout),
	)

	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", rtlify.Name, version)
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}

// loadConfig layers flags the user set over the file and environment.
func loadConfig(cmd *cobra.Command, f *flags, args []string) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("lang") {
		cfg.Lang = f.lang
	}
	if changed("suffix") {
		cfg.Suffix = f.suffix
	}
	if changed("provider") {
		cfg.Provider = f.provider
	}
	if changed("redis-url") {
		cfg.Cache.RedisURL = f.redisURL
	}
	if changed("cache-file") {
		cfg.Cache.File = f.cacheFile
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("no-color") {
		cfg.Log.NoColor = f.noColor
	}
	if changed("no-pretty") {
		cfg.Pretty = !f.noPretty
	}
	if len(args) > 0 {
		cfg.Dir = args[0]
	}

	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.NoColor,
	})), nil
}

func newProvider(cfg config.Config) rtlify.Provider {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	default:
		return provider.NewGoogleProvider(provider.GoogleConfig{
			Endpoint:  cfg.Google.Endpoint,
			UserAgent: cfg.Google.UserAgent,
			Timeout:   cfg.Google.Timeout,
		})
	}
}

// openCache returns the run cache and a function persisting it. Redis is
// used when configured; otherwise translations live for one run. A cache
// file is loaded first and written back by the returned function.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.ExportableCache, func() error, error) {
	var c cache.ExportableCache
	closeFn := func() error { return nil }

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       int(cfg.RedisTTL / time.Second),
			KeyPrefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, &rtlify.CacheError{Message: "connecting to redis", Cause: err}
		}
		logger.Info("using redis cache", "prefix", cfg.RedisPrefix)
		c = rc
		closeFn = rc.Close
	} else {
		c = cache.NewRunCache()
	}

	if cfg.File == "" {
		return c, closeFn, nil
	}

	res, err := cache.NewImporter(c).ImportFromFile(cfg.File)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("no cache file yet", "file", cfg.File)
	case err != nil:
		_ = closeFn()
		return nil, nil, &rtlify.CacheError{Message: "loading " + cfg.File, Cause: err}
	default:
		logger.Info("loaded cache file", "file", cfg.File, "entries", res.Imported, "failed", res.Failed)
	}

	persist := func() error {
		exportErr := cache.NewExporter(c).ExportToFile(cfg.File, map[string]string{
			"generator": rtlify.Name + "/" + rtlify.Version,
		})
		if exportErr != nil {
			exportErr = &rtlify.CacheError{Message: "saving " + cfg.File, Cause: exportErr}
		}
		return errors.Join(exportErr, closeFn())
	}

	return c, persist, nil
}

func runGenerate(cmd *cobra.Command, f *flags, args []string, stdout, stderr io.Writer) (err error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, f, args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.Log)
	if err != nil {
		return err
	}

	tc, persist, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	// Save the cache even when the run fails
	defer func() {
		err = errors.Join(err, persist())
	}()

	backend := newProvider(cfg)
	if limit, ok := cfg.RateLimitPolicy(); ok {
		backend = rtlify.NewRateLimitedProvider(backend, limit)
	}
	retrying := rtlify.NewRetryableProvider(backend, cfg.RetryPolicy()).WithLogger(logger)

	translator := rtlify.NewTranslator(cfg.Lang, retrying,
		rtlify.WithSourceLang(cfg.SourceLang),
		rtlify.WithCache(tc),
		rtlify.WithLogger(logger),
	)

	gen := site.NewGenerator(translator,
		processor.NewHTMLProcessor(processor.WithPrettyPrint(cfg.Pretty)),
		processor.NewRTLAdjuster(cfg.RTLOptions()),
		site.WithSuffix(cfg.Suffix),
		site.WithLogger(logger),
		site.WithReporter(func(res site.Result) {
			fmt.Fprintf(stdout, "Created %s (%d translated entries)\n", filepath.Base(res.Output), res.Units)
		}),
	)

	logger.Debug("starting run",
		"dir", cfg.Dir,
		"lang", cfg.Lang,
		"provider", cfg.Provider,
		"direction", rtlify.GetDirection(cfg.Lang))

	start := time.Now()
	results, err := gen.Run(ctx, cfg.Dir)
	if err != nil {
		return err
	}

	logger.Info("run complete",
		"documents", len(results),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return nil
}

func newExtractCmd(f *flags, stdout io.Writer) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "List translatable units without translating",
		Long: `Print the text and attribute units that would be sent for translation.
Without arguments every page of the configured directory is listed. No network
requests are made.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, nil)
			if err != nil {
				return err
			}

			gen := site.NewGenerator(nil,
				processor.NewHTMLProcessor(),
				processor.NewRTLAdjuster(cfg.RTLOptions()),
				site.WithSuffix(cfg.Suffix),
			)

			files := args
			if len(files) == 0 {
				if files, err = gen.Discover(cfg.Dir); err != nil {
					return err
				}
			}

			reports := make([]extractReport, 0, len(files))
			for _, path := range files {
				r, err := extractFile(gen, path)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}

			if jsonOut {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}

			printExtract(stdout, reports)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

type extractUnit struct {
	Kind string `json:"kind"`
	Attr string `json:"attr,omitempty"`
	Text string `json:"text"`
}

type extractReport struct {
	File     string        `json:"file"`
	Distinct int           `json:"distinct"`
	Units    []extractUnit `json:"units"`
}

func extractFile(gen *site.Generator, path string) (extractReport, error) {
	file, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return extractReport{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	units, err := gen.Extract(file)
	if err != nil {
		return extractReport{}, fmt.Errorf("extracting %s: %w", path, err)
	}

	report := extractReport{File: filepath.Base(path), Units: make([]extractUnit, len(units))}
	seen := make(map[string]bool)
	for i, u := range units {
		report.Units[i] = extractUnit{Kind: u.Kind.String(), Attr: u.Attr, Text: u.Content}
		if !seen[u.Content] {
			seen[u.Content] = true
			report.Distinct++
		}
	}
	return report, nil
}

func printExtract(w io.Writer, reports []extractReport) {
	for _, r := range reports {
		fmt.Fprintf(w, "%s: %d units (%d distinct)\n", r.File, len(r.Units), r.Distinct)
		for i, u := range r.Units {
			label := u.Kind
			if u.Attr != "" {
				label = "@" + u.Attr
			}
			fmt.Fprintf(w, "%4d. %-12s %q\n", i+1, label, truncate(u.Text, 60))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

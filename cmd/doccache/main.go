package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/catalog"
	"github.com/fwojciec/doccache/fs"
	"github.com/fwojciec/doccache/github"
	"github.com/fwojciec/doccache/goquery"
	"github.com/fwojciec/doccache/htmltomarkdown"
	dochttp "github.com/fwojciec/doccache/http"
	"github.com/fwojciec/doccache/ratelimit"
	docslog "github.com/fwojciec/doccache/slog"
	"github.com/fwojciec/doccache/trafilatura"
)

// Rate limit defaults for CLI clients: a generous bucket refilled once
// a second.
const (
	defaultMaxTokens   = 60
	defaultRefillRate  = 1
	defaultRefillEvery = time.Second
)

func main() {
	ctx := context.Background()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory. Set before calling Run().
	DataDir string

	// Store and sweeper backing the catalog.
	Store   *fs.Store
	Sweeper *fs.Sweeper

	// Catalog for end-to-end testing.
	Catalog doccache.CatalogService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Sweeper != nil {
		m.Sweeper.Stop()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:      ctx,
		Stdout:   stdout,
		Stderr:   stderr,
		ClientID: clientID(),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("doccache"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'doccache --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Wire services once so repeated Run calls share the store and its
	// background sweeper.
	if m.Catalog == nil {
		logger := newLogger(stderr)

		m.Store = fs.NewStore(m.DataDir, fs.WithLogger(logger))
		if err := m.Store.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DOCCACHE_DIR to use a different data directory\n")
			return fmt.Errorf("failed to open store at %q: %w", m.DataDir, err)
		}

		m.Sweeper = fs.NewSweeper(m.Store, fs.WithSweepLogger(logger))
		m.Sweeper.Start()

		fetcher := newFetcher(logger)
		limiter := ratelimit.NewLimiter(defaultMaxTokens, defaultRefillRate, defaultRefillEvery)

		m.Catalog = catalog.NewCatalog(m.Store, fetcher, limiter, catalog.WithLogger(logger))
	}
	deps.Catalog = m.Catalog

	return kongCtx.Run(deps)
}

// newFetcher wires the protocol fetcher with its GitHub client and HTML
// pipeline, wrapped in the logging decorator.
func newFetcher(logger *slog.Logger) doccache.Fetcher {
	var opts []dochttp.Option

	var ghOpts []github.Option
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghOpts = append(ghOpts, github.WithToken(token))
	}
	if gh, err := github.NewClient(ghOpts...); err == nil {
		opts = append(opts, dochttp.WithRepoContentFetcher(gh))
	}

	var extractor doccache.Extractor = goquery.NewExtractor()
	if os.Getenv("DOCCACHE_EXTRACTOR") == "trafilatura" {
		extractor = trafilatura.NewExtractor()
	}
	opts = append(opts,
		dochttp.WithHTMLPipeline(extractor, htmltomarkdown.NewConverter()),
		dochttp.WithLogger(logger),
	)

	return docslog.NewLoggingFetcher(dochttp.NewFetcher(opts...), logger)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("DOCCACHE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// clientID attributes CLI calls for rate limiting.
func clientID() string {
	if id := os.Getenv("DOCCACHE_CLIENT"); id != "" {
		return id
	}
	return "cli"
}

func defaultDataDir() string {
	if path := os.Getenv("DOCCACHE_DIR"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".doccache"
	}
	return filepath.Join(home, ".doccache")
}

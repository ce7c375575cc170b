package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/gemini"
	"github.com/fwojciec/mailscan/goquery"
	mailhttp "github.com/fwojciec/mailscan/http"
	"github.com/fwojciec/mailscan/readability"
	"github.com/fwojciec/mailscan/rod"
	"github.com/fwojciec/mailscan/scan"
	mailslog "github.com/fwojciec/mailscan/slog"
	"github.com/fwojciec/mailscan/trafilatura"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Input for the interactive popup. Set before calling Run().
	Stdin io.Reader

	// Optional .env file loaded before flags are parsed.
	EnvFile string

	// Browser opened for live tabs, closed by Close.
	Browser *rod.Browser

	// Services for end-to-end testing. When set they replace the ones built
	// from flags.
	Pages      mailscan.PageFinder
	Classifier mailscan.Classifier
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin:   os.Stdin,
		EnvFile: ".env",
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Browser != nil {
		return m.Browser.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		if err := godotenv.Load(m.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", m.EnvFile, err)
		}
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mailscan"),
		kong.Description("Scan the email open in your webmail for spam and phishing"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'mailscan --help' to see available commands")
	}

	if slices.Contains([]string{"help", "--help", "-h"}, args[0]) {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if useColor(stdout, cli.NoColor) {
		// color.Output translates escapes for Windows consoles.
		deps.Renderer = NewConsoleRenderer(color.Output, true)
	} else {
		deps.Renderer = NewConsoleRenderer(stdout, false)
	}

	var page PageFlags
	switch kongCtx.Command() {
	case "scan":
		page = cli.Scan.PageFlags
	case "popup":
		page = cli.Popup.PageFlags
	case "extract":
		page = cli.Extract.PageFlags
	}

	defer m.Close()
	if err := m.wirePages(ctx, deps, page); err != nil {
		return err
	}

	var classify ClassifierFlags
	switch kongCtx.Command() {
	case "scan":
		classify = cli.Scan.ClassifierFlags
	case "popup":
		classify = cli.Popup.ClassifierFlags
	default:
		return kongCtx.Run(deps)
	}

	if err := m.wireClassifier(ctx, deps, classify); err != nil {
		return err
	}

	deps.Scanner = &scan.Scanner{
		Pages:          deps.Pages,
		Classifier:     deps.Classifier,
		Renderer:       deps.Renderer,
		Logger:         deps.Logger,
		ExtractTimeout: page.ExtractTimeout,
		AnalyzeTimeout: classify.AnalyzeTimeout,
	}

	return kongCtx.Run(deps)
}

// wirePages builds the page finder for a saved file or a browser.
func (m *Main) wirePages(ctx context.Context, deps *Dependencies, flags PageFlags) error {
	deps.ExtractTimeout = flags.ExtractTimeout

	if m.Pages != nil {
		deps.Pages = mailslog.NewLoggingPageFinder(m.Pages, deps.Logger)
		return nil
	}

	locators, err := parseLocators(flags.Selectors)
	if err != nil {
		return err
	}

	detector := goquery.NewDetector()
	registry := goquery.NewRegistry(detector, mailscan.DefaultLocators)
	goquery.RegisterDefaults(registry)
	locate := mailslog.NewLoggingRegistry(registry, detector, deps.Logger)

	fallbacks := fallbackStrategies(flags.Fallback)

	if flags.File != "" {
		raw, err := os.ReadFile(flags.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", flags.File, err)
		}
		html := string(raw)
		if locators == nil {
			locators = locate.LocatorsFor(flags.URL, html)
		}
		page := goquery.NewPage(filepath.Base(flags.File), flags.URL, html, locators, fallbacks...)
		deps.Pages = mailslog.NewLoggingPageFinder(goquery.NewPageFinder(page), deps.Logger)
		return nil
	}

	opts := []rod.Option{
		rod.WithHeadless(flags.Headless),
		rod.WithFallbacks(fallbacks...),
	}
	if flags.ControlURL != "" {
		opts = append(opts, rod.WithControlURL(flags.ControlURL))
	}
	if locators != nil {
		opts = append(opts, rod.WithLocators(locators))
	} else {
		opts = append(opts, rod.WithRegistry(locate))
	}

	browser, err := rod.NewBrowser(opts...)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or pass --control-url to attach to a running browser")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	m.Browser = browser

	if flags.Open != "" {
		if _, err := browser.Open(ctx, flags.Open); err != nil {
			return fmt.Errorf("failed to open %s: %w", flags.Open, err)
		}
	}

	deps.Pages = mailslog.NewLoggingPageFinder(browser, deps.Logger)
	return nil
}

// wireClassifier builds the classifier selected by flags.
func (m *Main) wireClassifier(ctx context.Context, deps *Dependencies, flags ClassifierFlags) error {
	base, err := m.newClassifier(ctx, deps, flags)
	if err != nil {
		return err
	}

	retrying := scan.NewRetryingClassifier(base,
		scan.WithRetryDelays(retryDelays(flags.Retries)),
		scan.WithRateLimit(flags.RateLimit),
		scan.WithRetryLogger(deps.Logger),
	)
	deps.Classifier = mailslog.NewLoggingClassifier(retrying, deps.Logger)
	return nil
}

func (m *Main) newClassifier(ctx context.Context, deps *Dependencies, flags ClassifierFlags) (mailscan.Classifier, error) {
	if m.Classifier != nil {
		return m.Classifier, nil
	}

	switch flags.Classifier {
	case "gemini":
		if flags.APIKey == "" {
			fmt.Fprintln(deps.Stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, mailscan.Errorf(mailscan.EINVALID, "GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  flags.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		opts := []gemini.Option{gemini.WithModel(flags.Model)}
		if flags.MaxTokens > 0 {
			counter, err := gemini.NewTokenCounter(flags.Model)
			if err != nil {
				return nil, fmt.Errorf("failed to create token counter: %w", err)
			}
			opts = append(opts, gemini.WithTokenLimit(counter, flags.MaxTokens))
		}
		return gemini.NewClassifier(client, opts...), nil
	default:
		return mailhttp.NewClassifier(
			mailhttp.WithBaseURL(flags.Service),
			mailhttp.WithTimeout(flags.AnalyzeTimeout),
		), nil
	}
}

// retryDelays doubles from the first default delay, one entry per retry.
func retryDelays(retries int) []time.Duration {
	if retries <= 0 {
		return nil
	}
	delays := make([]time.Duration, retries)
	d := scan.DefaultRetryDelays()[0]
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// parseLocators parses name=css flags. It returns nil when none are given.
func parseLocators(values []string) ([]mailscan.Locator, error) {
	if len(values) == 0 {
		return nil, nil
	}
	locators := make([]mailscan.Locator, 0, len(values))
	for _, v := range values {
		loc, err := mailscan.ParseLocator(v)
		if err != nil {
			return nil, err
		}
		locators = append(locators, loc)
	}
	if err := goquery.CompileLocators(locators); err != nil {
		return nil, err
	}
	return locators, nil
}

func fallbackStrategies(name string) []mailscan.Strategy {
	switch name {
	case "trafilatura":
		return []mailscan.Strategy{trafilatura.Strategy}
	case "readability":
		return []mailscan.Strategy{readability.Strategy}
	}
	return nil
}

// useColor reports whether output to w should be colored. Only the
// process's stdout is colored, and only when color.NoColor allows it: a
// terminal, TERM other than dumb, and NO_COLOR unset.
func useColor(w io.Writer, disabled bool) bool {
	if disabled || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && f == os.Stdout
}

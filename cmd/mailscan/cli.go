package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/scan"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Pages          mailscan.PageFinder
	Classifier     mailscan.Classifier
	Renderer       mailscan.Renderer
	Scanner        *scan.Scanner
	ExtractTimeout time.Duration
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug details to stderr"`
	NoColor bool `name:"no-color" help:"Disable colored output (also disabled by NO_COLOR)"`

	Scan    ScanCmd    `cmd:"" help:"Scan the email open in the active tab"`
	Popup   PopupCmd   `cmd:"" help:"Scan interactively: Enter scans, q closes"`
	Extract ExtractCmd `cmd:"" help:"Print the email body found on the active tab"`
}

// PageFlags select where the email is read from and how its body is found.
type PageFlags struct {
	File           string        `short:"f" type:"existingfile" help:"Saved webmail page to read instead of a browser tab"`
	URL            string        `name:"url" help:"Address the saved page was taken from, used to detect the webmail client"`
	ControlURL     string        `name:"control-url" env:"MAILSCAN_CONTROL_URL" help:"DevTools address of a running browser (e.g. 9222 or ws://host:9222/...)"`
	Open           string        `help:"Open this address in a new tab and make it the active page"`
	Headless       bool          `default:"true" negatable:"" help:"Run a launched browser headless"`
	Selectors      []string      `short:"s" name:"selector" help:"Body locator as name=css, tried in order (repeatable, disables webmail detection)"`
	Fallback       string        `enum:"none,trafilatura,readability" default:"none" help:"Heuristic extraction tried after the locators (${enum})"`
	ExtractTimeout time.Duration `name:"extract-timeout" default:"5s" env:"MAILSCAN_EXTRACT_TIMEOUT" help:"How long to wait for the page to reply"`
}

// ClassifierFlags select the classifier verdicts come from.
type ClassifierFlags struct {
	Classifier     string        `enum:"http,gemini" default:"http" env:"MAILSCAN_CLASSIFIER" help:"Classifier backend (${enum})"`
	Service        string        `default:"http://127.0.0.1:8000" env:"MAILSCAN_SERVICE_URL" help:"Base URL of the classification service"`
	Model          string        `default:"gemini-2.5-flash" env:"MAILSCAN_GEMINI_MODEL" help:"Gemini model"`
	APIKey         string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	MaxTokens      int           `name:"max-tokens" default:"0" help:"Token budget for the email sent to Gemini (0 disables)"`
	AnalyzeTimeout time.Duration `name:"analyze-timeout" default:"10s" env:"MAILSCAN_ANALYZE_TIMEOUT" help:"How long to wait for a verdict"`
	Retries        int           `default:"1" help:"Retries when the classifier is unreachable"`
	RateLimit      float64       `name:"rate-limit" default:"2" help:"Maximum classification requests per second (0 disables)"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	PageFlags       `embed:""`
	ClassifierFlags `embed:""`
}

// PopupCmd is the "popup" subcommand.
type PopupCmd struct {
	PageFlags       `embed:""`
	ClassifierFlags `embed:""`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	PageFlags `embed:""`
}

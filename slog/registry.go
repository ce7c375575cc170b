package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/mailscan"
)

// Ensure LoggingRegistry implements mailscan.LocatorRegistry.
var _ mailscan.LocatorRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a LocatorRegistry with debug logging for webmail detection.
type LoggingRegistry struct {
	next     mailscan.LocatorRegistry
	detector mailscan.WebmailDetector
	logger   *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next mailscan.LocatorRegistry, detector mailscan.WebmailDetector, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, detector: detector, logger: logger}
}

// Locators delegates to the wrapped registry.
func (r *LoggingRegistry) Locators(webmail mailscan.Webmail) []mailscan.Locator {
	return r.next.Locators(webmail)
}

// LocatorsFor detects the webmail client, logs it, and returns its locators.
func (r *LoggingRegistry) LocatorsFor(pageURL, html string) []mailscan.Locator {
	begin := time.Now()
	webmail := r.detector.Detect(pageURL, html)
	name := string(webmail)
	if webmail == mailscan.WebmailUnknown {
		name = "(unknown)"
	}
	locators := r.next.LocatorsFor(pageURL, html)
	r.logger.Debug("webmail detection",
		"webmail", name,
		"url", pageURL,
		"locators", len(locators),
		"duration", time.Since(begin),
	)
	return locators
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(webmail mailscan.Webmail, locators []mailscan.Locator) {
	r.next.Register(webmail, locators)
}

// List delegates to the wrapped registry.
func (r *LoggingRegistry) List() []mailscan.Webmail {
	return r.next.List()
}

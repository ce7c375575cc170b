package goquery

import "github.com/fwojciec/mailscan"

var _ mailscan.LocatorRegistry = (*Registry)(nil)

// Registry manages client-specific body locators and auto-detects the
// webmail client from the page. It falls back to a default locator list
// when the client is unknown or has no locators registered.
type Registry struct {
	detector mailscan.WebmailDetector
	fallback []mailscan.Locator
	locators map[mailscan.Webmail][]mailscan.Locator
}

// NewRegistry creates a new Registry with the given detector and fallback locators.
func NewRegistry(detector mailscan.WebmailDetector, fallback []mailscan.Locator) *Registry {
	return &Registry{
		detector: detector,
		fallback: fallback,
		locators: make(map[mailscan.Webmail][]mailscan.Locator),
	}
}

// Locators returns the locators registered for a client, or the fallback.
func (r *Registry) Locators(webmail mailscan.Webmail) []mailscan.Locator {
	if locators, ok := r.locators[webmail]; ok {
		return locators
	}
	return r.fallback
}

// LocatorsFor detects the client serving the page and returns its locators.
func (r *Registry) LocatorsFor(pageURL, html string) []mailscan.Locator {
	return r.Locators(r.detector.Detect(pageURL, html))
}

// Register adds locators for a client.
// If locators are already registered for the client, they are replaced.
func (r *Registry) Register(webmail mailscan.Webmail, locators []mailscan.Locator) {
	r.locators[webmail] = locators
}

// List returns all registered clients.
func (r *Registry) List() []mailscan.Webmail {
	clients := make([]mailscan.Webmail, 0, len(r.locators))
	for w := range r.locators {
		clients = append(clients, w)
	}
	return clients
}

// OutlookLocators find message bodies in Outlook on the web.
var OutlookLocators = []mailscan.Locator{
	{Name: "body", Selector: "div[aria-label='Message body']"},
	{Name: "container", Selector: "#UniqueMessageBody"},
	{Name: "main", Selector: "[role='main']"},
}

// YahooLocators find message bodies in Yahoo Mail.
var YahooLocators = []mailscan.Locator{
	{Name: "body", Selector: "[data-test-id='message-view-body-content']"},
	{Name: "container", Selector: ".msg-body"},
	{Name: "main", Selector: "[role='main']"},
}

// RegisterDefaults registers the built-in locators for every supported client.
func RegisterDefaults(r mailscan.LocatorRegistry) {
	r.Register(mailscan.WebmailGmail, mailscan.DefaultLocators)
	r.Register(mailscan.WebmailOutlook, OutlookLocators)
	r.Register(mailscan.WebmailYahoo, YahooLocators)
}

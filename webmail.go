package mailscan

// Webmail identifies the webmail client that rendered a page.
type Webmail string

// Webmail constants.
const (
	WebmailUnknown Webmail = ""
	WebmailGmail   Webmail = "gmail"
	WebmailOutlook Webmail = "outlook"
	WebmailYahoo   Webmail = "yahoo"
)

// WebmailDetector identifies webmail clients from a page's address and markup.
type WebmailDetector interface {
	// Detect returns WebmailUnknown if the client cannot be determined.
	// Either argument may be empty.
	Detect(pageURL, html string) Webmail
}

// LocatorRegistry maps webmail clients to the locators that find their
// message bodies.
type LocatorRegistry interface {
	// Locators returns the locators for a client, or the fallback list if
	// none are registered.
	Locators(webmail Webmail) []Locator

	// LocatorsFor detects the client serving a page and returns its locators.
	LocatorsFor(pageURL, html string) []Locator

	// Register replaces the locators for a client.
	Register(webmail Webmail, locators []Locator)

	// List returns all registered clients.
	List() []Webmail
}

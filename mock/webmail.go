package mock

import "github.com/fwojciec/mailscan"

var (
	_ mailscan.WebmailDetector = (*WebmailDetector)(nil)
	_ mailscan.LocatorRegistry = (*LocatorRegistry)(nil)
)

// WebmailDetector is a mock implementation of mailscan.WebmailDetector.
type WebmailDetector struct {
	DetectFn func(pageURL, html string) mailscan.Webmail
}

func (d *WebmailDetector) Detect(pageURL, html string) mailscan.Webmail {
	return d.DetectFn(pageURL, html)
}

// LocatorRegistry is a mock implementation of mailscan.LocatorRegistry.
type LocatorRegistry struct {
	LocatorsFn    func(webmail mailscan.Webmail) []mailscan.Locator
	LocatorsForFn func(pageURL, html string) []mailscan.Locator
	RegisterFn    func(webmail mailscan.Webmail, locators []mailscan.Locator)
	ListFn        func() []mailscan.Webmail
}

func (r *LocatorRegistry) Locators(webmail mailscan.Webmail) []mailscan.Locator {
	return r.LocatorsFn(webmail)
}

func (r *LocatorRegistry) LocatorsFor(pageURL, html string) []mailscan.Locator {
	return r.LocatorsForFn(pageURL, html)
}

func (r *LocatorRegistry) Register(webmail mailscan.Webmail, locators []mailscan.Locator) {
	r.RegisterFn(webmail, locators)
}

func (r *LocatorRegistry) List() []mailscan.Webmail {
	return r.ListFn()
}

package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mailscan"
)

var _ mailscan.WebmailDetector = (*Detector)(nil)

// Detector identifies webmail clients. The page address is checked first;
// saved snapshots have no address, so client-specific markup is checked next.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the webmail client serving the page.
func (d *Detector) Detect(pageURL, html string) mailscan.Webmail {
	if webmail := d.detectFromURL(pageURL); webmail != mailscan.WebmailUnknown {
		return webmail
	}
	if html == "" {
		return mailscan.WebmailUnknown
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return mailscan.WebmailUnknown
	}

	// application-name is set by Gmail and Outlook shells
	if name, ok := doc.Find("meta[name='application-name']").Attr("content"); ok {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gmail":
			return mailscan.WebmailGmail
		case "outlook":
			return mailscan.WebmailOutlook
		}
	}

	// .a3s is Gmail's message body class
	if d.hasSelector(doc, ".a3s") || d.hasSelector(doc, ".ii.gt") {
		return mailscan.WebmailGmail
	}

	if d.hasSelector(doc, "div[aria-label='Message body']") ||
		d.hasSelector(doc, "#UniqueMessageBody") {
		return mailscan.WebmailOutlook
	}

	if d.hasSelector(doc, "[data-test-id='message-view-body-content']") ||
		d.hasSelector(doc, ".msg-body") {
		return mailscan.WebmailYahoo
	}

	return mailscan.WebmailUnknown
}

func (d *Detector) detectFromURL(pageURL string) mailscan.Webmail {
	if pageURL == "" {
		return mailscan.WebmailUnknown
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return mailscan.WebmailUnknown
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "mail.google.com":
		return mailscan.WebmailGmail
	case host == "outlook.live.com", host == "outlook.office.com", host == "outlook.office365.com":
		return mailscan.WebmailOutlook
	case strings.HasSuffix(host, "mail.yahoo.com"):
		return mailscan.WebmailYahoo
	}
	return mailscan.WebmailUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

package goquery_test

import (
	"testing"

	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/goquery"
	"github.com/stretchr/testify/assert"
)

var _ mailscan.LocatorRegistry = (*goquery.Registry)(nil)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("returns fallback for unregistered client", func(t *testing.T) {
		t.Parallel()

		r := goquery.NewRegistry(goquery.NewDetector(), mailscan.DefaultLocators)

		assert.Equal(t, mailscan.DefaultLocators, r.Locators(mailscan.WebmailYahoo))
	})

	t.Run("returns registered locators", func(t *testing.T) {
		t.Parallel()

		r := goquery.NewRegistry(goquery.NewDetector(), mailscan.DefaultLocators)
		goquery.RegisterDefaults(r)

		assert.Equal(t, goquery.OutlookLocators, r.Locators(mailscan.WebmailOutlook))
		assert.Equal(t, goquery.YahooLocators, r.Locators(mailscan.WebmailYahoo))
		assert.Equal(t, mailscan.DefaultLocators, r.Locators(mailscan.WebmailGmail))
		assert.ElementsMatch(t, []mailscan.Webmail{
			mailscan.WebmailGmail, mailscan.WebmailOutlook, mailscan.WebmailYahoo,
		}, r.List())
	})

	t.Run("detects client from page", func(t *testing.T) {
		t.Parallel()

		r := goquery.NewRegistry(goquery.NewDetector(), mailscan.DefaultLocators)
		goquery.RegisterDefaults(r)

		assert.Equal(t, goquery.YahooLocators, r.LocatorsFor("https://mail.yahoo.com/d/", ""))
		assert.Equal(t, mailscan.DefaultLocators, r.LocatorsFor("https://example.com/", "<p>hi</p>"))
	})

	t.Run("replaces locators on re-register", func(t *testing.T) {
		t.Parallel()

		custom := []mailscan.Locator{{Name: "custom", Selector: ".body"}}
		r := goquery.NewRegistry(goquery.NewDetector(), mailscan.DefaultLocators)
		goquery.RegisterDefaults(r)
		r.Register(mailscan.WebmailGmail, custom)

		assert.Equal(t, custom, r.Locators(mailscan.WebmailGmail))
	})
}

package goquery_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/goquery"
	"github.com/fwojciec/mailscan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ mailscan.Page       = (*goquery.Page)(nil)
	_ mailscan.PageFinder = (*goquery.PageFinder)(nil)
)

func getContent() mailscan.ExtractionRequest {
	return mailscan.ExtractionRequest{Action: mailscan.ActionGetContent}
}

func TestPage_Send(t *testing.T) {
	t.Parallel()

	t.Run("replies with located body", func(t *testing.T) {
		t.Parallel()

		page := goquery.NewPage("p1", "", `<div class="a3s aiL">Win a free prize now</div>`, mailscan.DefaultLocators)

		res, err := page.Send(context.Background(), getContent())

		require.NoError(t, err)
		text, ok := res.Content()
		require.True(t, ok)
		assert.Equal(t, "Win a free prize now", text)
	})

	t.Run("replies with null text when nothing matches", func(t *testing.T) {
		t.Parallel()

		page := goquery.NewPage("p1", "", `<p>Inbox is empty</p>`, mailscan.DefaultLocators)

		res, err := page.Send(context.Background(), getContent())

		require.NoError(t, err)
		assert.Nil(t, res.Text)
	})

	t.Run("sends no reply for unrecognized action", func(t *testing.T) {
		t.Parallel()

		page := goquery.NewPage("p1", "", `<div class="a3s aiL">body</div>`, mailscan.DefaultLocators)

		res, err := page.Send(context.Background(), mailscan.ExtractionRequest{Action: "get_subject"})

		require.Error(t, err)
		assert.Nil(t, res)
		assert.Equal(t, mailscan.ENORESPONSE, mailscan.ErrorCode(err))
	})

	t.Run("tries fallback strategies after locators", func(t *testing.T) {
		t.Parallel()

		var gotHTML string
		fallback := func(src mailscan.HTMLSource) mailscan.ContentExtractor {
			return &mock.ContentExtractor{
				ExtractContentFn: func(ctx context.Context) (*mailscan.ExtractionResult, error) {
					html, err := src.HTML(ctx)
					gotHTML = html
					return mailscan.Found("heuristic body"), err
				},
			}
		}

		page := goquery.NewPage("p1", "", `<article>Newsletter</article>`, mailscan.DefaultLocators, fallback)

		res, err := page.Send(context.Background(), getContent())

		require.NoError(t, err)
		text, _ := res.Content()
		assert.Equal(t, "heuristic body", text)
		assert.Equal(t, `<article>Newsletter</article>`, gotHTML)
	})

	t.Run("gives up when the context ends before a reply", func(t *testing.T) {
		t.Parallel()

		block := make(chan struct{})
		defer close(block)
		slow := func(mailscan.HTMLSource) mailscan.ContentExtractor {
			return &mock.ContentExtractor{
				ExtractContentFn: func(context.Context) (*mailscan.ExtractionResult, error) {
					<-block
					return mailscan.NotFound(), nil
				},
			}
		}

		page := goquery.NewPage("p1", "", `<p>nothing</p>`, mailscan.DefaultLocators, slow)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := page.Send(ctx, getContent())

		require.Error(t, err)
		assert.Equal(t, mailscan.ENORESPONSE, mailscan.ErrorCode(err))
	})
}

func TestPageFinder_ActivePage(t *testing.T) {
	t.Parallel()

	t.Run("returns the snapshot", func(t *testing.T) {
		t.Parallel()

		page := goquery.NewPage("p1", "https://mail.google.com/", "<p></p>", mailscan.DefaultLocators)

		got, err := goquery.NewPageFinder(page).ActivePage(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "p1", got.ID())
		assert.Equal(t, "https://mail.google.com/", got.URL())
	})

	t.Run("returns ENOPAGE without a snapshot", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewPageFinder(nil).ActivePage(context.Background())

		require.Error(t, err)
		assert.Equal(t, mailscan.ENOPAGE, mailscan.ErrorCode(err))
	})
}

package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/mailscan"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	page, err := deps.Pages.ActivePage(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mailscan.ErrorMessage(err))
		return err
	}

	ctx := deps.Ctx
	if deps.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.ExtractTimeout)
		defer cancel()
	}

	res, err := page.Send(ctx, mailscan.ExtractionRequest{Action: mailscan.ActionGetContent})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mailscan.ErrorMessage(err))
		return err
	}

	text, ok := res.Content()
	if !ok {
		fmt.Fprintln(deps.Stderr, "No email body found on this page.")
		return mailscan.Errorf(mailscan.ENOCONTENT, "no email content on page %s", page.ID())
	}

	fmt.Fprintln(deps.Stdout, text)
	return nil
}

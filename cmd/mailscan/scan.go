package main

import (
	"fmt"

	"github.com/fwojciec/mailscan"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	err := deps.Scanner.Run(deps.Ctx)
	switch mailscan.ErrorCode(err) {
	case "":
		return nil
	case mailscan.ENOPAGE:
		fmt.Fprintf(deps.Stderr, "error: %s. Open an email in the browser, or pass --file or --open.\n", mailscan.ErrorMessage(err))
	}
	return err
}

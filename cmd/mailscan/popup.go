package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fwojciec/mailscan"
)

// Run executes the popup command. Each line read from stdin triggers a scan
// in the background; a newer scan supersedes one still in flight. Reading
// "q" or the end of input closes the popup and discards in-flight scans.
func (c *PopupCmd) Run(deps *Dependencies) error {
	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	scanner := deps.Scanner
	if err := deps.Renderer.Render(ctx, mailscan.IdleView()); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "Press Enter to scan the current email, q to close.")

	var wg sync.WaitGroup
	defer func() {
		scanner.Reset()
		cancel()
		wg.Wait()
	}()

	lines := bufio.NewScanner(deps.Stdin)
	for lines.Scan() {
		switch strings.TrimSpace(lines.Text()) {
		case "q", "quit", "exit":
			return nil
		}

		// Claimed here so a slow page lookup cannot reorder triggers.
		id := scanner.Begin()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scanner.RunSession(ctx, id)
			switch mailscan.ErrorCode(err) {
			case mailscan.ENOPAGE:
				fmt.Fprintf(deps.Stderr, "error: %s\n", mailscan.ErrorMessage(err))
			case "", mailscan.ESUPERSEDED:
			default:
				deps.Logger.Debug("scan failed", "err", err)
			}
		}()
	}
	return lines.Err()
}

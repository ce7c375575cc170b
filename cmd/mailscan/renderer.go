package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/fwojciec/mailscan"
)

var _ mailscan.Renderer = (*ConsoleRenderer)(nil)

// barWidth is the number of cells in the confidence bar.
const barWidth = 20

// glyphs stand in for the popup's icons.
var glyphs = map[string]string{
	mailscan.IconHigh: "⚠",
	mailscan.IconSafe: "✔",
}

// ConsoleRenderer draws views as lines of text. Each call prints the regions
// the view makes visible; nothing is printed for the idle view.
type ConsoleRenderer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsoleRenderer creates a ConsoleRenderer writing to w. When color is
// set, verdicts are painted with the view's accent color in 24-bit color.
func NewConsoleRenderer(w io.Writer, color bool) *ConsoleRenderer {
	return &ConsoleRenderer{w: w, color: color}
}

// Render prints v.
func (r *ConsoleRenderer) Render(ctx context.Context, v mailscan.View) error {
	var b strings.Builder

	if v.StatusText != "" {
		if v.Busy {
			b.WriteString("... ")
		}
		b.WriteString(v.StatusText)
		b.WriteByte('\n')
	}

	if v.ResultVisible {
		verdict := v.LabelText
		if glyph, ok := glyphs[v.Icon]; ok {
			verdict = glyph + " " + verdict
		}
		fmt.Fprintf(&b, "%s  %s\n", r.paint(v.AccentColor, verdict), v.PercentText)
		fmt.Fprintf(&b, "[%s]\n", r.paint(v.AccentColor, bar(v.Percentage)))
	}

	if v.EvidenceVisible {
		b.WriteString(v.EvidenceText)
		b.WriteByte('\n')
	}

	if v.DeepDiveVisible {
		b.WriteString("Suspicious sentences:\n")
		for _, s := range v.Sentences {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	if b.Len() == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, b.String())
	return err
}

// paint colors s with the view's accent color, given as #rrggbb.
func (r *ConsoleRenderer) paint(hex, s string) string {
	if !r.color || len(hex) != 7 || hex[0] != '#' {
		return s
	}
	rgb, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return s
	}
	c := color.RGB(int(rgb>>16&0xff), int(rgb>>8&0xff), int(rgb&0xff))
	// The renderer decides, not the process-wide NoColor setting.
	c.EnableColor()
	return c.Sprint(s)
}

// bar draws a percentage as a fixed-width fill.
func bar(percentage float64) string {
	filled := int(math.Round(percentage / 100 * barWidth))
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
}

package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mailscan"
	"golang.org/x/net/html"
)

// blockElements produce a line break before and after their content.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true, "caption": true,
}

// skippedElements never render text.
var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "title": true, "iframe": true, "object": true,
}

// InnerText renders the first element of sel the way a browser's innerText
// would: whitespace is collapsed, block elements and <br> become line
// breaks, paragraphs are separated by a blank line and hidden or
// non-rendered elements are skipped.
func InnerText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var w textWriter
	w.walk(sel.Get(0), false)
	return w.sb.String()
}

// Text parses an HTML fragment or document and renders it with InnerText.
func Text(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", mailscan.Errorf(mailscan.EINVALID, "parsing html: %v", err)
	}
	return InnerText(doc.Selection), nil
}

type textWriter struct {
	sb           strings.Builder
	started      bool
	pendingSpace bool
	pendingBreak int
}

// lineBreak requests at least n newlines before the next content.
func (w *textWriter) lineBreak(n int) {
	if n > w.pendingBreak {
		w.pendingBreak = n
	}
}

func (w *textWriter) write(s string) {
	if s == "" {
		return
	}
	if w.started {
		if w.pendingBreak > 0 {
			w.sb.WriteString(strings.Repeat("\n", w.pendingBreak))
		} else if w.pendingSpace {
			w.sb.WriteByte(' ')
		}
	}
	w.pendingBreak = 0
	w.pendingSpace = false
	w.sb.WriteString(s)
	w.started = true
}

func (w *textWriter) text(data string, preformatted bool) {
	if preformatted {
		w.write(data)
		return
	}
	fields := strings.Fields(data)
	if len(fields) == 0 {
		if data != "" {
			w.pendingSpace = true
		}
		return
	}
	if isSpace(data[0]) {
		w.pendingSpace = true
	}
	w.write(strings.Join(fields, " "))
	if isSpace(data[len(data)-1]) {
		w.pendingSpace = true
	}
}

func (w *textWriter) walk(n *html.Node, preformatted bool) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, preformatted)
		return
	case html.ElementNode:
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, preformatted)
		}
		return
	default:
		return
	}

	if skippedElements[n.Data] || isHidden(n) {
		return
	}

	switch n.Data {
	case "br":
		w.write("\n")
		w.pendingSpace = false
		return
	case "td", "th":
		if prev := previousElement(n); prev != nil && (prev.Data == "td" || prev.Data == "th") {
			w.write("\t")
			w.pendingSpace = false
		}
	case "p":
		w.lineBreak(2)
	}

	block := blockElements[n.Data]
	if block {
		w.lineBreak(1)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, preformatted || n.Data == "pre" || n.Data == "textarea")
	}

	switch {
	case n.Data == "p":
		w.lineBreak(2)
	case block:
		w.lineBreak(1)
	}
}

// isHidden reports whether an element is excluded from rendering by its
// attributes.
func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") {
				return true
			}
		}
	}
	return false
}

func previousElement(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

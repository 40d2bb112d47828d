package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/personadoc/internal/doctree"
)

var (
	// Page chrome and code, never analyzed.
	skippedElements = map[atom.Atom]bool{
		atom.Script: true, atom.Style: true, atom.Noscript: true,
		atom.Nav: true, atom.Header: true, atom.Footer: true,
	}
	blockElements = map[atom.Atom]bool{
		atom.P: true, atom.Td: true, atom.Blockquote: true,
		atom.Pre: true, atom.Dt: true, atom.Dd: true,
	}
	headingElements = map[atom.Atom]int{
		atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
	}
)

// HTMLParser handles HTML files. The <title> names the document; h1..h6
// become heading lines.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := baseTitle(filename)
	if n := findElement(root, atom.Title); n != nil {
		if t := collapse(textContent(n)); t != "" {
			title = t
		}
	}

	var w pageWriter
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case skippedElements[n.DataAtom]:
				return
			case headingElements[n.DataAtom] > 0:
				w.heading(headingElements[n.DataAtom], textContent(n))
				return
			case blockElements[n.DataAtom]:
				w.block(collapse(textContent(n)))
				return
			case n.DataAtom == atom.Li:
				if t := collapse(textContent(n)); t != "" {
					w.block("- " + t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	start := root
	if body := findElement(root, atom.Body); body != nil {
		start = body
	}
	walk(start)

	return w.document(filename, title), nil
}

// findElement returns the first element of the given kind in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the text below n; <br> becomes a newline.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.TrimSpace(buf.String())
}

// collapse squeezes source indentation out of a block while keeping
// explicit line breaks.
func collapse(text string) string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.Join(strings.Fields(ln), " "); ln != "" {
			lines = append(lines, ln)
		}
	}
	return strings.Join(lines, "\n")
}

package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_HeadingsAndBlocks(t *testing.T) {
	input := `<html><head><title>Cuisine of Provence</title><style>p{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Culinary Experiences</h1>
<p>Provence is known for
   olive oil and herbs.</p>
<h2>Wine Tasting</h2>
<ul><li>Bandol</li><li>Cassis</li></ul>
<script>var x = 1;</script>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "cuisine.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Cuisine of Provence" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}
	want := "# Culinary Experiences\n\nProvence is known for\nolive oil and herbs.\n\n## Wine Tasting\n\n- Bandol\n\n- Cassis\n"
	if got := doc.Pages[0].Text; got != want {
		t.Errorf("page text mismatch\nwant %q\ngot  %q", want, got)
	}
}

func TestHTMLParser_NoTitle(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<p>Hello</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", doc.Title)
	}
	if doc.Pages[0].Text != "Hello\n" {
		t.Errorf("unexpected text %q", doc.Pages[0].Text)
	}
}

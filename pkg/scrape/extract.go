package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// VisibleText returns every non-empty text node of the document, trimmed and
// joined by newlines, after dropping script, style and noscript elements.
func VisibleText(doc string) (string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	d.Find("script, style, noscript").Remove()

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n"), nil
}

// ArticleText runs readability over the document and returns the main article
// text. ok is false when no article could be isolated.
func ArticleText(doc string, pageURL string) (text string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(doc), u)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(article.TextContent)
	return text, text != ""
}

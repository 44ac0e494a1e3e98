package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// renderedText returns the visible text of the first node in s, with
// whitespace runs collapsed to single spaces and the ends trimmed.
// Hidden subtrees (scripts, hidden attribute, display:none, visually-hidden
// screen-reader copies) are skipped. The tree is only read.
func renderedText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	collectVisible(s.Get(0), &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectVisible(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if isHidden(n) {
			return
		}
		if isBlock(n) {
			b.WriteByte(' ')
			defer b.WriteByte(' ')
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectVisible(c, b)
	}
}

func isHidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "class":
			for _, c := range strings.Fields(a.Val) {
				if c == "visually-hidden" {
					return true
				}
			}
		case "style":
			compact := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(compact, "display:none") {
				return true
			}
		}
	}
	return false
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.P, atom.Li, atom.Br, atom.Ul, atom.Ol, atom.Section,
		atom.Article, atom.H1, atom.H2, atom.H3, atom.H4, atom.Tr, atom.Td:
		return true
	}
	return false
}

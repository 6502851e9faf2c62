package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// AdjacentText returns the first non-empty text that follows the selection's
// first node, skipping over intervening comments and whitespace. It is the
// structural replacement for counting "next sibling" hops against a known
// markup layout.
func AdjacentText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	for node := sel.Nodes[0].NextSibling; node != nil; node = node.NextSibling {
		var text string
		switch node.Type {
		case html.TextNode:
			text = node.Data
		case html.ElementNode:
			text = GetText(node)
		default:
			continue
		}
		text = NormalizeSpace(text)
		if text != "" {
			return text
		}
	}
	return ""
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// NormalizeSpace strips non-printable runes, trims the ends and collapses
// runs of inner whitespace down to a single space.
func NormalizeSpace(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	out := strings.Trim(newStr.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(out, " ")
}

// Package content parses, cleans and combines the HTML stored in notes.
package content

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	bodyWrapper   = `<div style="all: unset; display: block;">%s</div>`
	headSeparator = "\n"
	bodySeparator = "\n\n<br/>\n\n"
)

// Classes with these prefixes force full-screen layouts and break when notes are stacked.
var layoutClassPrefixes = []string{"min-h-", "min-w-", "h-screen", "w-screen"}

var styleMinHeight = regexp.MustCompile(`(?i)min-height\s*:\s*\w+`)

// Parts is a document split for merging.
type Parts struct {
	Head string
	Body string
}

// SplitForMerge parses doc, strips layout classes and min-height rules and
// returns the inner HTML of head and the wrapped inner HTML of body.
func SplitForMerge(doc string) (Parts, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return Parts{}, fmt.Errorf("html.Parse > %w", err)
	}
	head := findElement(root, atom.Head)
	body := findElement(root, atom.Body)
	if head == nil || body == nil {
		return Parts{}, nil
	}

	walkElements(body, func(n *html.Node) {
		for i, attr := range n.Attr {
			switch attr.Key {
			case "class":
				n.Attr[i].Val = StripLayoutClasses(attr.Val)
			case "style":
				n.Attr[i].Val = StripMinHeight(attr.Val)
			}
		}
	})
	walkElements(head, func(n *html.Node) {
		if n.DataAtom != atom.Style {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				c.Data = styleMinHeight.ReplaceAllString(c.Data, "")
			}
		}
	})

	headHTML, err := innerHTML(head)
	if err != nil {
		return Parts{}, err
	}
	bodyHTML, err := innerHTML(body)
	if err != nil {
		return Parts{}, err
	}
	return Parts{
		Head: headHTML,
		Body: fmt.Sprintf(bodyWrapper, bodyHTML),
	}, nil
}

// StripLayoutClasses removes the full-screen layout classes from a class attribute.
func StripLayoutClasses(classAttr string) string {
	classes := strings.Fields(classAttr)
	kept := classes[:0]
	for _, c := range classes {
		if !hasLayoutPrefix(c) {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}

func hasLayoutPrefix(class string) bool {
	for _, prefix := range layoutClassPrefixes {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return false
}

// StripMinHeight drops min-height declarations from an inline style and keeps the rest as written.
func StripMinHeight(style string) string {
	if !strings.Contains(style, "min-height") {
		return style
	}
	declarations := strings.Split(style, ";")
	kept := declarations[:0]
	for _, d := range declarations {
		if !strings.HasPrefix(strings.TrimSpace(d), "min-height") {
			kept = append(kept, d)
		}
	}
	return strings.Join(kept, ";")
}

// MergeDocuments combines documents into one: heads are concatenated and
// bodies are wrapped and separated by a line break.
func MergeDocuments(docs []string) (string, error) {
	heads := make([]string, 0, len(docs))
	bodies := make([]string, 0, len(docs))
	for i, doc := range docs {
		parts, err := SplitForMerge(doc)
		if err != nil {
			return "", fmt.Errorf("SplitForMerge(document %d) > %w", i, err)
		}
		heads = append(heads, parts.Head)
		bodies = append(bodies, parts.Body)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(strings.Join(heads, headSeparator))
	b.WriteString("\n</head>\n<body>\n")
	b.WriteString(strings.Join(bodies, bodySeparator))
	b.WriteString("\n</body>\n</html>")
	return b.String(), nil
}

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

func walkElements(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walkElements(c, fn)
	}
}

func innerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("html.Render > %w", err)
		}
	}
	return b.String(), nil
}

package page

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/noah-isme/attendance-tracker/internal/controller"
)

// DeleteClass marks the per-row delete link.
const DeleteClass = "delete-btn"

// Element is an interactive element found in a records fragment.
type Element struct {
	Tag     string
	Classes []string
	Attrs   map[string]string
	Text    string
}

// HasClass reports whether name is one of the element's classes.
func (e Element) HasClass(name string) bool {
	for _, c := range e.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Attr returns an attribute value and whether the element carries it.
func (e Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Row is one table row of the records fragment.
type Row struct {
	Cells   []string
	Actions []Element
}

// EditTarget returns the row's edit action.
func (r Row) EditTarget() (controller.Target, bool) {
	for _, a := range r.Actions {
		if _, ok := controller.RecordIDFromTarget(a); ok {
			return a, true
		}
	}
	return nil, false
}

// DeleteHref returns the link of the row's delete action.
func (r Row) DeleteHref() (string, bool) {
	for _, a := range r.Actions {
		if !a.HasClass(DeleteClass) {
			continue
		}
		if href, ok := a.Attr("href"); ok && href != "" {
			return href, true
		}
	}
	return "", false
}

// Table is the parsed records region. Empty is the text shown instead of a
// table when there are no records.
type Table struct {
	Headers []string
	Rows    []Row
	Empty   string
}

// ParseRecords extracts rows and their actions from a records fragment.
func ParseRecords(markup string) (Table, error) {
	var t Table
	if strings.TrimSpace(markup) == "" {
		return t, nil
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return t, fmt.Errorf("parse records: %w", err)
	}

	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Tr:
			headers, row := parseRow(n)
			if len(headers) > 0 && len(t.Headers) == 0 {
				t.Headers = headers
			}
			if len(row.Cells) > 0 || len(row.Actions) > 0 {
				t.Rows = append(t.Rows, row)
			}
			return false
		case atom.P:
			if t.Empty == "" {
				t.Empty = text(n)
			}
			return false
		}
		return true
	})
	return t, nil
}

func parseRow(tr *html.Node) ([]string, Row) {
	var headers []string
	var row Row
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
			headers = append(headers, text(c))
		case atom.Td:
			actions := collectActions(c)
			if len(actions) > 0 {
				row.Actions = append(row.Actions, actions...)
				continue
			}
			row.Cells = append(row.Cells, text(c))
		}
	}
	return headers, row
}

func collectActions(n *html.Node) []Element {
	var out []Element
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.DataAtom == atom.A || c.DataAtom == atom.Button) {
			out = append(out, element(c))
			return false
		}
		return true
	})
	return out
}

func element(n *html.Node) Element {
	e := Element{Tag: n.Data, Attrs: make(map[string]string, len(n.Attr)), Text: text(n)}
	for _, a := range n.Attr {
		e.Attrs[a.Key] = a.Val
		if a.Key == "class" {
			e.Classes = strings.Fields(a.Val)
		}
	}
	return e
}

// walk visits n and its descendants depth first; fn returning false skips
// the children of the node it was given.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func innerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

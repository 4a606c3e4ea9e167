// Package dom builds detached HTML elements on top of golang.org/x/net/html.
// Elements are plain node trees: nothing is attached to a document and
// no events fire unless the caller invokes them.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an HTML element node with an optional click handler.
type Element struct {
	Node    *html.Node
	OnClick func()
}

// CreateClassedElement builds a <tag> element. classes becomes the class
// attribute, content is parsed as inner HTML, color sets the inline CSS
// color and onClick is kept for Click. Empty arguments are skipped.
// It returns nil when tag is empty.
func CreateClassedElement(tag, classes, content, color string, onClick func()) *Element {
	if tag == "" {
		return nil
	}

	name := strings.ToLower(tag)
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
	el := &Element{Node: node}

	if classes != "" {
		el.SetAttr("class", classes)
	}
	if content != "" {
		el.SetInnerHTML(content)
	}
	if color != "" {
		el.SetAttr("style", fmt.Sprintf("color: %s;", color))
	}
	if onClick != nil {
		el.OnClick = onClick
	}

	return el
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.Node.Attr {
		if e.Node.Attr[i].Key == key {
			e.Node.Attr[i].Val = val
			return
		}
	}
	e.Node.Attr = append(e.Node.Attr, html.Attribute{Key: key, Val: val})
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetInnerHTML replaces the children of the element with the nodes parsed
// from markup in the element's context.
func (e *Element) SetInnerHTML(markup string) {
	for c := e.Node.FirstChild; c != nil; {
		next := c.NextSibling
		e.Node.RemoveChild(c)
		c = next
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), e.Node)
	if err != nil {
		// A strings.Reader never fails; keep the markup as text regardless.
		nodes = []*html.Node{{Type: html.TextNode, Data: markup}}
	}
	for _, n := range nodes {
		e.Node.AppendChild(n)
	}
}

// InnerHTML renders the children of the element.
func (e *Element) InnerHTML() (string, error) {
	var buf bytes.Buffer
	for c := e.Node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render child: %w", err)
		}
	}
	return buf.String(), nil
}

// Render returns the outer HTML of the element.
func (e *Element) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.Node); err != nil {
		return "", fmt.Errorf("failed to render element: %w", err)
	}
	return buf.String(), nil
}

// Click invokes the click handler, if any. It reports whether one ran.
func (e *Element) Click() bool {
	if e.OnClick == nil {
		return false
	}
	e.OnClick()
	return true
}

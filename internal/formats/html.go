package formats

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Browser container folders that never become a category level.
var rootContainerAttrs = []string{"personal_toolbar_folder", "unfiled_bookmarks_folder"}

// parseHTML walks a Netscape bookmark document.
//
// An <H3> announces a folder that is opened by the next <DL> and closed
// when that <DL> ends. A <DD> following an anchor is its description.
func parseHTML(data []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	res := &Result{Format: HTML, Source: SourceNetscape}

	var (
		stack       []string
		pending     *string
		pendingSkip bool
		last        = -1 // index of the entry a <DD> would describe
		anchors     int
		structural  bool
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom.String() {
			case "h3":
				structural = true
				name := textContent(n)
				pending, pendingSkip = &name, isRootContainer(n)
				last = -1
				return

			case "a":
				structural = true
				anchors++
				last = -1
				pos := fmt.Sprintf("anchor %d", anchors)
				href := strings.TrimSpace(attr(n, "href"))
				title := textContent(n)
				if href == "" {
					res.warn(pos, "anchor without href", title)
					return
				}
				cat, sub := folderPath(stack)
				res.Entries = append(res.Entries, Entry{
					Title:       title,
					URL:         href,
					Category:    cat,
					Subcategory: sub,
					Tags:        splitTags(attr(n, "tags")),
				})
				last = len(res.Entries) - 1
				return

			case "dd":
				if last >= 0 {
					res.Entries[last].Description = ownText(n)
				}
				last = -1

			case "dl":
				structural = true
				pushed := false
				if pending != nil {
					if !pendingSkip && *pending != "" {
						stack = append(stack, *pending)
						pushed = true
					}
					pending = nil
				}
				last = -1
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !structural {
		return nil, fmt.Errorf("%w: no bookmark markup found", domain.ErrInvalidFormat)
	}
	return res, nil
}

func isRootContainer(n *html.Node) bool {
	for _, a := range n.Attr {
		for _, k := range rootContainerAttrs {
			if strings.EqualFold(a.Key, k) {
				return true
			}
		}
	}
	return false
}

// textContent returns the trimmed text below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(b.String())
}

// ownText returns the direct text children of n only; a <DD> may swallow
// the following <DL> when the markup leaves it open.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

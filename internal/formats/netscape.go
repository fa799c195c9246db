package formats

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

const netscapeHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
`

// folder is a node of the HTML export tree. Collapsed subcategories
// ("Go / Tools") are expanded back into nested folders.
type folder struct {
	name      string
	bookmarks []*domain.Bookmark
	children  []*folder
}

func (f *folder) child(name string) *folder {
	for _, c := range f.children {
		if c.name == name {
			return c
		}
	}
	c := &folder{name: name}
	f.children = append(f.children, c)
	return c
}

func serializeHTML(records []*domain.Bookmark) []byte {
	root := &folder{}
	for _, g := range group(records) {
		cat := root.child(g.Name)
		cat.bookmarks = append(cat.bookmarks, g.Bookmarks...)
		for _, s := range g.Subcategories {
			node := cat
			for _, part := range domain.SplitSubcategory(s.Name) {
				node = node.child(part)
			}
			node.bookmarks = append(node.bookmarks, s.Bookmarks...)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(netscapeHeader)
	buf.WriteString("<DL><p>\n")
	for _, c := range root.children {
		writeFolder(&buf, c, 1)
	}
	buf.WriteString("</DL><p>\n")
	return buf.Bytes()
}

func writeFolder(buf *bytes.Buffer, f *folder, depth int) {
	indent := strings.Repeat("    ", depth)
	buf.WriteString(indent + "<DT><H3>" + html.EscapeString(f.name) + "</H3>\n")
	buf.WriteString(indent + "<DL><p>\n")
	for _, b := range f.bookmarks {
		writeAnchor(buf, b, depth+1)
	}
	for _, c := range f.children {
		writeFolder(buf, c, depth+1)
	}
	buf.WriteString(indent + "</DL><p>\n")
}

func writeAnchor(buf *bytes.Buffer, b *domain.Bookmark, depth int) {
	indent := strings.Repeat("    ", depth)
	buf.WriteString(indent + `<DT><A HREF="` + html.EscapeString(b.URL) + `"`)
	if !b.DateAdded.IsZero() {
		buf.WriteString(` ADD_DATE="` + strconv.FormatInt(b.DateAdded.Unix(), 10) + `"`)
	}
	if len(b.Tags) > 0 {
		buf.WriteString(` TAGS="` + html.EscapeString(strings.Join(b.Tags, ",")) + `"`)
	}
	buf.WriteString(">" + html.EscapeString(b.Title) + "</A>\n")
	if b.Description != "" {
		buf.WriteString(indent + "<DD>" + html.EscapeString(b.Description) + "\n")
	}
}

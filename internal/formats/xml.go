package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

type xmlTags struct {
	Items []string `xml:"tag"`
	Text  string   `xml:",chardata"`
}

// xmlBookmark is one repeated <bookmark> element. Unknown children are ignored.
type xmlBookmark struct {
	Title       string  `xml:"title"`
	URL         string  `xml:"url"`
	Category    string  `xml:"category"`
	Subcategory string  `xml:"subcategory"`
	Description string  `xml:"description"`
	Tags        xmlTags `xml:"tags"`

	TitleAttr string `xml:"title,attr"`
	URLAttr   string `xml:"url,attr"`
	HrefAttr  string `xml:"href,attr"`
}

func parseXML(data []byte) (*Result, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	res := &Result{Format: XML, Source: SourceXML}
	sawElement := false
	found := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if found == 0 {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
			}
			line, _ := dec.InputPos()
			res.warn(fmt.Sprintf("line %d", line), "malformed XML, rest of document skipped", err.Error())
			break
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true
		if !strings.EqualFold(se.Name.Local, "bookmark") {
			continue
		}

		found++
		line, _ := dec.InputPos()
		pos := fmt.Sprintf("bookmark %d (line %d)", found, line)

		var b xmlBookmark
		if err := dec.DecodeElement(&b, &se); err != nil {
			res.warn(pos, "malformed XML, rest of document skipped", err.Error())
			break
		}

		link := firstNonEmpty(b.URL, b.URLAttr, b.HrefAttr)
		title := firstNonEmpty(b.Title, b.TitleAttr)
		if link == "" {
			res.warn(pos, "bookmark without url", title)
			continue
		}

		tags := domain.CleanTags(b.Tags.Items)
		if len(tags) == 0 {
			tags = splitTags(b.Tags.Text)
		}

		res.Entries = append(res.Entries, Entry{
			Title:       title,
			URL:         link,
			Category:    strings.TrimSpace(b.Category),
			Subcategory: strings.TrimSpace(b.Subcategory),
			Description: strings.TrimSpace(b.Description),
			Tags:        tags,
		})
	}

	if !sawElement {
		return nil, fmt.Errorf("%w: no XML elements", domain.ErrInvalidFormat)
	}
	if found == 0 {
		res.warn("$", "no <bookmark> elements found", "")
	}
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

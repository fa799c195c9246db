package formats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// csvColumns maps accepted header names (lower case) to entry fields.
var csvColumns = map[string]string{
	"title":       "title",
	"name":        "title",
	"url":         "url",
	"category":    "category",
	"folder":      "category",
	"subcategory": "subcategory",
	"description": "description",
	"tags":        "tags",
}

func parseCSV(data []byte) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(data)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty CSV", domain.ErrInvalidFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CSV header: %v", domain.ErrInvalidFormat, err)
	}

	idx := make(map[string]int)
	for i, h := range header {
		field, ok := csvColumns[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := idx[field]; !dup {
			idx[field] = i
		}
	}
	if _, ok := idx["url"]; !ok {
		return nil, fmt.Errorf("%w: CSV header has no url column", domain.ErrInvalidFormat)
	}

	res := &Result{Format: CSV, Source: SourceCSV}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			pos := "row"
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				pos = fmt.Sprintf("line %d", perr.Line)
			}
			res.warn(pos, "unreadable row", err.Error())
			continue
		}
		line, _ := r.FieldPos(0)
		pos := fmt.Sprintf("line %d", line)

		get := func(field string) string {
			i, ok := idx[field]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		link := get("url")
		if link == "" {
			res.warn(pos, "empty url", get("title"))
			continue
		}

		res.Entries = append(res.Entries, Entry{
			Title:       get("title"),
			URL:         link,
			Category:    get("category"),
			Subcategory: get("subcategory"),
			Description: get("description"),
			Tags:        splitTags(get("tags")),
		})
	}

	return res, nil
}

// sniffDelimiter picks ';' for spreadsheet exports whose header has no comma.
func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if !bytes.ContainsRune(first, ',') && bytes.ContainsRune(first, ';') {
		return ';'
	}
	return ','
}

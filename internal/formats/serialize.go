package formats

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// ExportVersion is written into JSON exports.
const ExportVersion = 1

// ExportOptions filters the records before serialization.
// Zero values mean "everything".
type ExportOptions struct {
	Category string        `json:"category,omitempty"`
	Status   domain.Status `json:"status,omitempty"`
}

// Filter returns the records matching opts, in input order.
func Filter(records []*domain.Bookmark, opts ExportOptions) []*domain.Bookmark {
	category := strings.TrimSpace(opts.Category)
	out := make([]*domain.Bookmark, 0, len(records))
	for _, b := range records {
		if category != "" && !strings.EqualFold(b.Category, category) {
			continue
		}
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Serialize filters records and renders them in format f.
// HTML and JSON keep the category/subcategory hierarchy; XML and CSV are flat.
func Serialize(f Format, records []*domain.Bookmark, opts ExportOptions, now time.Time) ([]byte, error) {
	records = Filter(records, opts)

	switch f {
	case HTML:
		return serializeHTML(records), nil
	case JSON:
		return serializeJSON(records, now)
	case XML:
		return serializeXML(records, now)
	case CSV:
		return serializeCSV(records)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
}

// ─────────────────────────────
// Grouping
// ─────────────────────────────

type subGroup struct {
	Name      string
	Bookmarks []*domain.Bookmark
}

type categoryGroup struct {
	Name          string
	Bookmarks     []*domain.Bookmark
	Subcategories []*subGroup
}

// group buckets records by category then subcategory, both sorted by name.
// Record order inside a bucket is the input order.
func group(records []*domain.Bookmark) []*categoryGroup {
	byName := make(map[string]*categoryGroup)
	subs := make(map[string]map[string]*subGroup)

	for _, b := range records {
		name := domain.CategoryOrDefault(b.Category)
		g, ok := byName[name]
		if !ok {
			g = &categoryGroup{Name: name}
			byName[name] = g
			subs[name] = make(map[string]*subGroup)
		}
		if b.Subcategory == "" {
			g.Bookmarks = append(g.Bookmarks, b)
			continue
		}
		s, ok := subs[name][b.Subcategory]
		if !ok {
			s = &subGroup{Name: b.Subcategory}
			subs[name][b.Subcategory] = s
			g.Subcategories = append(g.Subcategories, s)
		}
		s.Bookmarks = append(s.Bookmarks, b)
	}

	out := make([]*categoryGroup, 0, len(byName))
	for _, g := range byName {
		sort.SliceStable(g.Subcategories, func(i, j int) bool {
			return lessFold(g.Subcategories[i].Name, g.Subcategories[j].Name)
		})
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	return out
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// flat returns records ordered by category path, input order otherwise.
func flat(records []*domain.Bookmark) []*domain.Bookmark {
	out := append([]*domain.Bookmark(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return lessFold(out[i].CategoryPath(), out[j].CategoryPath())
	})
	return out
}

// ─────────────────────────────
// JSON
// ─────────────────────────────

type jsonSubcategory struct {
	Name      string             `json:"name"`
	Bookmarks []*domain.Bookmark `json:"bookmarks"`
}

type jsonCategory struct {
	Name          string             `json:"name"`
	Bookmarks     []*domain.Bookmark `json:"bookmarks"`
	Subcategories []jsonSubcategory  `json:"subcategories"`
}

type jsonDocument struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Total      int            `json:"total"`
	Categories []jsonCategory `json:"categories"`
}

func serializeJSON(records []*domain.Bookmark, now time.Time) ([]byte, error) {
	doc := jsonDocument{
		Version:    ExportVersion,
		ExportedAt: now.UTC(),
		Total:      len(records),
		Categories: []jsonCategory{},
	}
	for _, g := range group(records) {
		c := jsonCategory{
			Name:          g.Name,
			Bookmarks:     withTags(g.Bookmarks),
			Subcategories: []jsonSubcategory{},
		}
		for _, s := range g.Subcategories {
			c.Subcategories = append(c.Subcategories, jsonSubcategory{Name: s.Name, Bookmarks: withTags(s.Bookmarks)})
		}
		doc.Categories = append(doc.Categories, c)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return append(out, '\n'), nil
}

// withTags copies records so that nil tags encode as [] rather than null.
func withTags(in []*domain.Bookmark) []*domain.Bookmark {
	out := make([]*domain.Bookmark, 0, len(in))
	for _, b := range in {
		c := b.Clone()
		if c.Tags == nil {
			c.Tags = []string{}
		}
		out = append(out, c)
	}
	return out
}

// ─────────────────────────────
// XML
// ─────────────────────────────

type xmlTagList struct {
	Items []string `xml:"tag"`
}

type xmlRecord struct {
	ID            string      `xml:"id"`
	Title         string      `xml:"title"`
	URL           string      `xml:"url"`
	Category      string      `xml:"category"`
	Subcategory   string      `xml:"subcategory,omitempty"`
	Description   string      `xml:"description,omitempty"`
	Tags          *xmlTagList `xml:"tags,omitempty"`
	Status        string      `xml:"status_type"`
	IsLocked      bool        `xml:"is_locked"`
	DateAdded     string      `xml:"date_added"`
	BrowserSource string      `xml:"browser_source,omitempty"`
}

type xmlDocument struct {
	XMLName    xml.Name    `xml:"bookmarks"`
	ExportedAt string      `xml:"exported_at,attr"`
	Total      int         `xml:"total,attr"`
	Bookmarks  []xmlRecord `xml:"bookmark"`
}

func serializeXML(records []*domain.Bookmark, now time.Time) ([]byte, error) {
	doc := xmlDocument{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Total:      len(records),
	}
	for _, b := range flat(records) {
		r := xmlRecord{
			ID:            b.ID,
			Title:         b.Title,
			URL:           b.URL,
			Category:      b.Category,
			Subcategory:   b.Subcategory,
			Description:   b.Description,
			Status:        b.Status.String(),
			IsLocked:      b.IsLocked,
			DateAdded:     b.DateAdded.UTC().Format(time.RFC3339Nano),
			BrowserSource: b.BrowserSource,
		}
		if len(b.Tags) > 0 {
			r.Tags = &xmlTagList{Items: b.Tags}
		}
		doc.Bookmarks = append(doc.Bookmarks, r)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml export: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ─────────────────────────────
// CSV
// ─────────────────────────────

var csvHeader = []string{
	"id", "title", "url", "category", "subcategory", "description",
	"tags", "status_type", "is_locked", "date_added", "browser_source",
}

func serializeCSV(records []*domain.Bookmark) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("encode csv export: %w", err)
	}
	for _, b := range flat(records) {
		row := []string{
			b.ID,
			b.Title,
			b.URL,
			b.Category,
			b.Subcategory,
			b.Description,
			strings.Join(b.Tags, ";"),
			b.Status.String(),
			strconv.FormatBool(b.IsLocked),
			b.DateAdded.UTC().Format(time.RFC3339Nano),
			b.BrowserSource,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv export: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv export: %w", err)
	}
	return buf.Bytes(), nil
}

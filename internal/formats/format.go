// Package formats converts between bookmark files (Netscape HTML, JSON,
// XML, CSV) and flat lists of candidate entries or records.
package formats

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Format is an import/export file format token.
type Format string

const (
	HTML Format = "html"
	JSON Format = "json"
	XML  Format = "xml"
	CSV  Format = "csv"
)

// All lists the supported formats in content-sniffing order.
var All = []Format{HTML, JSON, XML, CSV}

// FileNamePrefix starts every suggested export file name.
const FileNamePrefix = "favoriten_"

// ParseFormat parses a format token; "htm" is accepted as html.
func ParseFormat(raw string) (Format, error) {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	switch s {
	case "html", "htm":
		return HTML, nil
	case "json":
		return JSON, nil
	case "xml":
		return XML, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, raw)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// ContentType returns the MIME type used when serving an export.
func (f Format) ContentType() string {
	switch f {
	case HTML:
		return "text/html; charset=utf-8"
	case JSON:
		return "application/json"
	case XML:
		return "application/xml; charset=utf-8"
	case CSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

// FileName returns the suggested export file name, favoriten_<YYYY-MM-DD>.<ext>.
func FileName(f Format, now time.Time) string {
	return FileNamePrefix + now.Format("2006-01-02") + "." + f.Extension()
}

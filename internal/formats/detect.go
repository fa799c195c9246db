package formats

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect returns the formats worth trying for a file, most likely first:
// the extension hint, then the content sniff, then the remaining formats.
func Detect(filename string, data []byte) []Format {
	var order []Format
	seen := make(map[Format]bool, len(All))
	add := func(f Format) {
		if f != "" && !seen[f] {
			seen[f] = true
			order = append(order, f)
		}
	}

	if ext := filepath.Ext(filename); ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			add(f)
		}
	}
	add(sniff(data))
	for _, f := range All {
		add(f)
	}
	return order
}

func sniff(data []byte) Format {
	head := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := bytes.ToLower(head)

	switch {
	case len(head) == 0:
		return ""
	case bytes.HasPrefix(lower, []byte("<!doctype netscape")),
		bytes.Contains(lower, []byte("<dl")),
		bytes.HasPrefix(lower, []byte("<!doctype html")),
		bytes.HasPrefix(lower, []byte("<html")):
		return HTML
	case head[0] == '{' || head[0] == '[':
		return JSON
	case head[0] == '<':
		return XML
	}
	return CSV
}

// Parse detects the format of data and parses it with the first parser
// that accepts it. When none does, the error wraps domain.ErrUnsupportedFormat
// together with every parser's reason.
func Parse(filename string, data []byte) (*Result, error) {
	var errs []error
	for _, f := range Detect(filename, data) {
		res, err := ParseAs(f, data)
		if err == nil {
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", f, err))
	}
	return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedFormat, displayName(filename), errors.Join(errs...))
}

// ParseAs parses data as the given format.
func ParseAs(f Format, data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch f {
	case HTML:
		return parseHTML(data)
	case JSON:
		return parseJSON(data)
	case XML:
		return parseXML(data)
	case CSV:
		return parseCSV(data)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
}

func displayName(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return "upload"
	}
	return filepath.Base(filename)
}

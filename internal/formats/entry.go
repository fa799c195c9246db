package formats

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Entry is a parsed but not yet persisted bookmark.
type Entry struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Warning is a non-fatal problem with a single record of the input.
type Warning struct {
	// Position locates the record: "line 4", "entry 12", "roots.other.children.3".
	Position string `json:"position"`
	Reason   string `json:"reason"`
	Value    string `json:"value,omitempty"`
}

func (w Warning) String() string {
	if w.Value == "" {
		return fmt.Sprintf("%s: %s", w.Position, w.Reason)
	}
	return fmt.Sprintf("%s: %s (%q)", w.Position, w.Reason, w.Value)
}

// Result is the output of a successful parse.
type Result struct {
	Format   Format    `json:"format"`
	Source   string    `json:"source"`
	Entries  []Entry   `json:"entries"`
	Warnings []Warning `json:"warnings"`
}

func (r *Result) warn(pos, reason, value string) {
	r.Warnings = append(r.Warnings, Warning{Position: pos, Reason: reason, Value: value})
}

// Browser sources reported by the parsers.
const (
	SourceChrome   = "chrome"
	SourceFirefox  = "firefox"
	SourceNetscape = "netscape"
	SourceFavOrg   = "favorg"
	SourceJSON     = "json"
	SourceXML      = "xml"
	SourceCSV      = "csv"
)

// folderPath maps a folder path onto the two-level category model:
// the first level is the category, deeper levels collapse into the subcategory.
func folderPath(path []string) (category, subcategory string) {
	if len(path) == 0 {
		return "", ""
	}
	return path[0], strings.Join(path[1:], domain.SubcategorySeparator)
}

// splitTags accepts "a, b" and "a;b" lists.
func splitTags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	return domain.CleanTags(fields)
}

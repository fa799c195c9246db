package homepage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/favorg/internal/formats"
)

// ErrNoEntries is returned when a file holds no usable item.
var ErrNoEntries = errors.New("no valid bookmarks found in homepage config")

// MapEntries converts a Homepage config to import entries: every group
// becomes a category, every item a bookmark titled with its name.
// Items without href are reported as warnings.
func MapEntries(config Config) ([]formats.Entry, []formats.Warning, error) {
	var (
		entries  []formats.Entry
		warnings []formats.Warning
	)

	for gi, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			for ii, itemMap := range groupMap[groupName] {
				for _, itemName := range sortedKeys(itemMap) {
					node := itemMap[itemName]
					pos := fmt.Sprintf("%s[%d].%s[%d]", groupName, gi, itemName, ii)

					e, err := decodeItem(&node)
					if err != nil {
						warnings = append(warnings, formats.Warning{Position: pos, Reason: err.Error()})
						continue
					}
					if e.URL == "" {
						warnings = append(warnings, formats.Warning{Position: pos, Reason: "missing href", Value: itemName})
						continue
					}

					e.Title = itemName
					e.Category = groupName
					entries = append(entries, e)
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, warnings, ErrNoEntries
	}
	return entries, warnings, nil
}

// decodeItem reads a bookmarks.yaml item (a list with a single entry) or a
// services.yaml item (a mapping).
func decodeItem(node *yaml.Node) (formats.Entry, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []BookmarkEntry
		if err := node.Decode(&list); err != nil {
			return formats.Entry{}, fmt.Errorf("invalid bookmark: %w", err)
		}
		if len(list) == 0 {
			return formats.Entry{}, nil
		}
		b := list[0]
		e := formats.Entry{URL: strings.TrimSpace(b.Href), Description: b.Description}
		if b.Abbr != "" {
			e.Tags = []string{b.Abbr}
		}
		return e, nil

	case yaml.MappingNode:
		var svc ServiceProps
		if err := node.Decode(&svc); err != nil {
			return formats.Entry{}, fmt.Errorf("invalid service: %w", err)
		}
		return formats.Entry{URL: strings.TrimSpace(svc.Href), Description: svc.Description}, nil

	default:
		return formats.Entry{}, fmt.Errorf("unexpected yaml node kind %d", node.Kind)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

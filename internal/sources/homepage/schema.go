package homepage

import "gopkg.in/yaml.v3"

// Config is the top-level structure shared by Homepage bookmarks.yaml and
// services.yaml: a list of groups, each a list of single-key item maps.
//
//	- Group:
//	    - Item Name: [{ abbr, href }]     # bookmarks.yaml
//	    - Item Name: { href, description } # services.yaml
//
// Items are kept as raw nodes and decoded by shape.
type Config []map[string][]map[string]yaml.Node

// BookmarkEntry represents a single bookmark entry in bookmarks.yaml
type BookmarkEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// ServiceProps contains the service properties of services.yaml
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

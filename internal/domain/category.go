package domain

import (
	"sort"
	"strings"
)

const (
	// MaxCategoryDepth caps every walk over the category graph.
	MaxCategoryDepth = 10

	// SubcategorySeparator joins folder levels below the second one.
	SubcategorySeparator = " / "
)

// Category is a node of the category hierarchy.
// Parents are referenced by name only; the graph may contain cycles
// introduced by external mutation, so every walk is guarded.
type Category struct {
	Name           string `json:"name"`
	ParentCategory string `json:"parent_category,omitempty"`
}

// Key identifies a category within its parent scope.
func (c Category) Key() string {
	return c.ParentCategory + "\x00" + c.Name
}

// CategoryNode is a rendered tree node with derived counts.
type CategoryNode struct {
	Name           string          `json:"name"`
	ParentCategory string          `json:"parent_category,omitempty"`
	Path           string          `json:"path"`
	BookmarkCount  int             `json:"bookmark_count"`
	TotalCount     int             `json:"total_count"`
	Children       []*CategoryNode `json:"children,omitempty"`
}

// DeriveCategories returns the categories implied by the records:
// every category is a root, every subcategory level a child of the previous one.
func DeriveCategories(bookmarks []*Bookmark) []Category {
	seen := make(map[string]bool)
	var out []Category
	add := func(c Category) {
		if c.Name == "" || seen[c.Key()] {
			return
		}
		seen[c.Key()] = true
		out = append(out, c)
	}

	for _, b := range bookmarks {
		root := CategoryOrDefault(b.Category)
		add(Category{Name: root})
		parent := root
		for _, part := range SplitSubcategory(b.Subcategory) {
			add(Category{Name: part, ParentCategory: parent})
			parent = part
		}
	}
	return out
}

// SplitSubcategory splits a collapsed subcategory path into its levels.
func SplitSubcategory(sub string) []string {
	if strings.TrimSpace(sub) == "" {
		return nil
	}
	raw := strings.Split(sub, SubcategorySeparator)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// CleanSubcategory returns the stored form of a subcategory path: levels
// trimmed, empty levels dropped, joined by SubcategorySeparator. Exports
// split on the separator, so only this form survives a round trip.
func CleanSubcategory(sub string) string {
	return strings.Join(SplitSubcategory(sub), SubcategorySeparator)
}

// MergeCategories unions stored and derived categories, stored ones first.
func MergeCategories(lists ...[]Category) []Category {
	seen := make(map[string]bool)
	var out []Category
	for _, list := range lists {
		for _, c := range list {
			if c.Name == "" || seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			out = append(out, c)
		}
	}
	return out
}

// BuildCategoryTree builds the category forest with bookmark counts
// recomputed from the record set.
//
// Orphans (unknown parent) are promoted to roots. Categories reachable only
// through a cycle are promoted to roots as well, and the walk never revisits
// an ancestor nor descends past MaxCategoryDepth.
func BuildCategoryTree(categories []Category, bookmarks []*Bookmark) []*CategoryNode {
	all := MergeCategories(categories, DeriveCategories(bookmarks))

	names := make(map[string]bool, len(all))
	for _, c := range all {
		names[c.Name] = true
	}

	children := make(map[string][]Category)
	var roots []Category
	for _, c := range all {
		if c.ParentCategory == "" || !names[c.ParentCategory] {
			roots = append(roots, Category{Name: c.Name, ParentCategory: c.ParentCategory})
			continue
		}
		children[c.ParentCategory] = append(children[c.ParentCategory], c)
	}

	counts := make(map[string]int)
	for _, b := range bookmarks {
		counts[b.CategoryPath()]++
	}

	reached := make(map[string]bool)

	var walk func(c Category, path []string, ancestors map[string]bool) *CategoryNode
	walk = func(c Category, path []string, ancestors map[string]bool) *CategoryNode {
		reached[c.Key()] = true
		path = append(path, c.Name)
		node := &CategoryNode{
			Name:           c.Name,
			ParentCategory: c.ParentCategory,
			Path:           joinPath(path),
		}
		node.BookmarkCount = counts[node.Path]
		node.TotalCount = node.BookmarkCount

		if len(path) >= MaxCategoryDepth {
			return node
		}

		ancestors[c.Name] = true
		defer delete(ancestors, c.Name)

		for _, child := range sortedCategories(children[c.Name]) {
			if ancestors[child.Name] {
				continue
			}
			sub := walk(child, append([]string(nil), path...), ancestors)
			node.Children = append(node.Children, sub)
			node.TotalCount += sub.TotalCount
		}
		return node
	}

	var forest []*CategoryNode
	for _, r := range sortedCategories(roots) {
		if reached[r.Key()] {
			continue
		}
		forest = append(forest, walk(r, nil, map[string]bool{}))
	}

	// Pure cycles have no root; break them at their first member.
	for _, c := range sortedCategories(all) {
		if reached[c.Key()] {
			continue
		}
		forest = append(forest, walk(c, nil, map[string]bool{}))
	}

	return forest
}

// WouldCycle reports whether attaching name under parent creates a cycle
// (or an ancestry deeper than MaxCategoryDepth).
func WouldCycle(categories []Category, name, parent string) bool {
	if parent == "" {
		return false
	}
	if parent == name {
		return true
	}

	parentsOf := make(map[string][]string)
	for _, c := range categories {
		if c.ParentCategory != "" {
			parentsOf[c.Name] = append(parentsOf[c.Name], c.ParentCategory)
		}
	}

	visited := map[string]bool{}
	frontier := []string{parent}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxCategoryDepth {
			return true
		}
		var next []string
		for _, n := range frontier {
			if n == name {
				return true
			}
			if visited[n] {
				continue
			}
			visited[n] = true
			next = append(next, parentsOf[n]...)
		}
		frontier = next
	}
	return false
}

// CategoryExists reports whether a category with that name exists anywhere.
func CategoryExists(categories []Category, name string) bool {
	for _, c := range categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func joinPath(path []string) string {
	if len(path) == 1 {
		return path[0]
	}
	return path[0] + SubcategorySeparator + strings.Join(path[1:], SubcategorySeparator)
}

func sortedCategories(in []Category) []Category {
	out := append([]Category(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		return out[i].ParentCategory < out[j].ParentCategory
	})
	return out
}

// SortCategories orders categories by name, then parent.
func SortCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ParentCategory < categories[j].ParentCategory
	})
}

package formats

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Firefox places typeCode values.
const (
	firefoxBookmark  = 1
	firefoxFolder    = 2
	firefoxSeparator = 3
)

// Arrays that hold the children of a folder-like JSON node.
var childArrays = []string{"children", "bookmarks", "categories", "subcategories"}

// parseJSON accepts a top-level array of bookmarks, a Chrome "roots"
// document, a Firefox backup tree, a FavOrg export or any object wrapping
// one of those shapes. Only input that is not JSON at all is fatal.
func parseJSON(data []byte) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", domain.ErrInvalidFormat)
	}

	root := gjson.ParseBytes(data)
	res := &Result{Format: JSON, Source: SourceJSON}
	w := &jsonWalker{res: res}

	switch {
	case root.IsArray():
		w.children(root, nil, "$")

	case root.IsObject():
		res.Source = jsonSource(root)
		if roots := root.Get("roots"); roots.IsObject() {
			roots.ForEach(func(key, value gjson.Result) bool {
				if value.IsObject() {
					w.node(value, nil, "roots."+key.String(), true)
				}
				return true
			})
			break
		}
		w.node(root, nil, "$", true)

	default:
		return nil, fmt.Errorf("%w: top-level JSON value is not an array or object", domain.ErrInvalidFormat)
	}

	if len(res.Entries) == 0 && len(res.Warnings) == 0 {
		res.warn("$", "no bookmarks found", "")
	}
	return res, nil
}

func jsonSource(root gjson.Result) string {
	switch {
	case root.Get("roots").IsObject():
		return SourceChrome
	case root.Get("typeCode").Exists(), root.Get("root").Exists():
		return SourceFirefox
	case root.Get("categories").IsArray() && root.Get("exported_at").Exists():
		return SourceFavOrg
	}
	return SourceJSON
}

type jsonWalker struct {
	res *Result
}

// node handles one object. container nodes (document roots, browser
// root folders) do not add a category level.
func (w *jsonWalker) node(n gjson.Result, path []string, pos string, container bool) {
	if len(path) > domain.MaxCategoryDepth*4 {
		w.res.warn(pos, "folder nesting too deep", "")
		return
	}
	if !n.IsObject() {
		w.res.warn(pos, "expected an object", truncate(n.Raw))
		return
	}

	typ := strings.ToLower(n.Get("type").String())
	code := n.Get("typeCode").Int()

	if typ == "separator" || typ == "text/x-moz-place-separator" || code == firefoxSeparator {
		return
	}

	link := firstString(n, "url", "uri", "href")
	if link != "" || typ == "url" || typ == "text/x-moz-place" || code == firefoxBookmark {
		w.entry(n, link, path, pos)
		return
	}

	hasChildren := false
	for _, key := range childArrays {
		if n.Get(key).IsArray() {
			hasChildren = true
			break
		}
	}
	if !hasChildren && typ != "folder" && code != firefoxFolder {
		w.res.warn(pos, "unrecognised node", firstString(n, "title", "name"))
		return
	}

	childPath := path
	if !container && !n.Get("root").Exists() {
		if name := firstString(n, "name", "title"); name != "" {
			childPath = append(append([]string(nil), path...), name)
		}
	}
	for _, key := range childArrays {
		if arr := n.Get(key); arr.IsArray() {
			w.children(arr, childPath, pos+"."+key)
		}
	}
}

func (w *jsonWalker) children(arr gjson.Result, path []string, pos string) {
	i := 0
	arr.ForEach(func(_, value gjson.Result) bool {
		w.node(value, path, fmt.Sprintf("%s.%d", pos, i), false)
		i++
		return true
	})
}

func (w *jsonWalker) entry(n gjson.Result, link string, path []string, pos string) {
	title := firstString(n, "title", "name")
	if link == "" {
		w.res.warn(pos, "bookmark without url", title)
		return
	}

	cat, sub := folderPath(path)
	if explicit := strings.TrimSpace(n.Get("category").String()); explicit != "" {
		cat = explicit
		sub = strings.TrimSpace(n.Get("subcategory").String())
	}

	var tags []string
	if t := n.Get("tags"); t.IsArray() {
		for _, v := range t.Array() {
			tags = append(tags, v.String())
		}
		tags = domain.CleanTags(tags)
	} else {
		tags = splitTags(t.String())
	}

	w.res.Entries = append(w.res.Entries, Entry{
		Title:       title,
		URL:         link,
		Category:    cat,
		Subcategory: sub,
		Description: firstString(n, "description", "desc"),
		Tags:        tags,
	})
}

func firstString(n gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := n.Get(k); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func truncate(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package domain

// Tag is a display category with a color.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultTags is the built-in palette. Remote entries are layered on top.
var DefaultTags = []Tag{
	{Name: "DM", Color: "#ef4444"},
	{Name: "Lidl", Color: "#2563eb"},
	{Name: "Maxi", Color: "#f59e0b"},
	{Name: "Pijaca", Color: "#16a34a"},
	{Name: "Apoteka", Color: "#8b5cf6"},
}

// TagGroup is one display group of a list.
// An empty Tag.Name collects untagged items and items with unknown tags.
type TagGroup struct {
	Tag   Tag    `json:"tag"`
	Items []Item `json:"items"`
}

// GroupByTag groups items for display. Groups follow the order of tags;
// untagged items (and items whose tag is not in tags) come last. Empty
// groups are omitted.
func GroupByTag(items []Item, tags []Tag) []TagGroup {
	byTag := make(map[string][]Item, len(tags))
	known := make(map[string]bool, len(tags))
	for _, t := range tags {
		known[t.Name] = true
	}

	var untagged []Item
	for _, it := range items {
		if it.Tag == "" || !known[it.Tag] {
			untagged = append(untagged, it)
			continue
		}
		byTag[it.Tag] = append(byTag[it.Tag], it)
	}

	groups := make([]TagGroup, 0, len(byTag)+1)
	for _, t := range tags {
		group := byTag[t.Name]
		if len(group) == 0 {
			continue
		}
		sortItems(group)
		groups = append(groups, TagGroup{Tag: t, Items: group})
	}
	if len(untagged) > 0 {
		sortItems(untagged)
		groups = append(groups, TagGroup{Items: untagged})
	}
	return groups
}

package contentful

// EntryCollection is the body of an entries response.
type EntryCollection struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []Entry  `json:"items"`
	Includes Includes `json:"includes"`
}

// Includes carries linked entries and assets returned alongside the items.
type Includes struct {
	Entry []Entry `json:"Entry,omitempty"`
	Asset []Entry `json:"Asset,omitempty"`
}

// Value renders the collection as plain maps and slices, suitable for
// front matter serialization.
func (c *EntryCollection) Value() map[string]any {
	if c == nil {
		return nil
	}
	items := make([]any, len(c.Items))
	for i, e := range c.Items {
		items[i] = map[string]any(e)
	}
	return map[string]any{
		"total": c.Total,
		"skip":  c.Skip,
		"limit": c.Limit,
		"items": items,
	}
}

package contentful

// maxLinkDepth mirrors the API's maximum include depth.
const maxLinkDepth = 10

// ResolveLinks replaces link objects inside item fields with the linked entry
// or asset when the response carries it (in items or includes). Links that
// cannot be resolved, or that would close a cycle, are left as links.
func ResolveLinks(c *EntryCollection) {
	if c == nil {
		return
	}
	idx := make(map[string]map[string]any, len(c.Items)+len(c.Includes.Entry)+len(c.Includes.Asset))
	for _, e := range c.Items {
		idx[linkKey("Entry", e.ID())] = e
	}
	for _, e := range c.Includes.Entry {
		idx[linkKey("Entry", e.ID())] = e
	}
	for _, a := range c.Includes.Asset {
		idx[linkKey("Asset", a.ID())] = a
	}

	resolved := make([]Entry, len(c.Items))
	for i, e := range c.Items {
		stack := map[string]bool{linkKey("Entry", e.ID()): true}
		resolved[i] = Entry(resolveValue(map[string]any(e), idx, stack, 0).(map[string]any))
	}
	c.Items = resolved
}

func linkKey(linkType, id string) string {
	return linkType + ":" + id
}

// asLink reports whether v is a link object and returns its key.
func asLink(v map[string]any) (string, bool) {
	sys, ok := v["sys"].(map[string]any)
	if !ok || sys["type"] != "Link" {
		return "", false
	}
	linkType, _ := sys["linkType"].(string)
	id, _ := sys["id"].(string)
	if linkType != "Entry" && linkType != "Asset" {
		return "", false
	}
	return linkKey(linkType, id), true
}

// resolveValue returns a copy of v with links resolved. Only "fields" subtrees
// are walked so sys blocks (which contain content type links) stay intact.
func resolveValue(v any, idx map[string]map[string]any, stack map[string]bool, depth int) any {
	switch t := v.(type) {
	case map[string]any:
		if key, ok := asLink(t); ok {
			target, found := idx[key]
			if !found || stack[key] || depth >= maxLinkDepth {
				return t
			}
			stack[key] = true
			out := resolveValue(target, idx, stack, depth+1)
			delete(stack, key)
			return out
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == "sys" {
				out[k] = val
				continue
			}
			out[k] = resolveValue(val, idx, stack, depth)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = resolveValue(item, idx, stack, depth)
		}
		return out
	default:
		return v
	}
}

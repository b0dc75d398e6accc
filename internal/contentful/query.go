package contentful

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query holds the parameters of one entries request, keyed by API parameter name
// (content_type, sys.id, fields.slug[in], limit, ...).
type Query map[string]any

// Values encodes the query as URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	for key, val := range q {
		v.Set(key, formatValue(val))
	}
	return v
}

// Key returns a canonical encoding; equal queries yield equal keys.
func (q Query) Key() string {
	return q.Values().Encode()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

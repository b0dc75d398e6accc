package frontmatter

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SerializeYAML encodes fields as YAML without delimiters. Map keys are sorted
// at every level so equal inputs always produce equal bytes. Named map and
// slice types (such as decoded API entries) are encoded like their
// underlying types.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	node, err := mappingNode(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	out := buf.Bytes()
	if nl := style.Newline; nl != "" && nl != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(nl))
	}
	return out, nil
}

func mappingNode(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		val, err := valueNode(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		n.Content = append(n.Content, scalar("!!str", k), val)
	}
	return n, nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func valueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case string:
		return scalar("!!str", t), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case int:
		return scalar("!!int", strconv.Itoa(t)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(t, 10)), nil
	case float64:
		if math.Abs(t) < 1<<53 && t == math.Trunc(t) {
			return scalar("!!int", strconv.FormatInt(int64(t), 10)), nil
		}
		return scalar("!!float", strconv.FormatFloat(t, 'g', -1, 64)), nil
	case time.Time:
		return scalar("!!timestamp", t.UTC().Format(time.RFC3339)), nil
	case map[string]any:
		return mappingNode(t)
	case []any:
		return sequenceNode(len(t), func(i int) any { return t[i] })
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		converted := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			converted[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return mappingNode(converted)
	case reflect.Slice, reflect.Array:
		return sequenceNode(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Pointer:
		if rv.IsNil() {
			return scalar("!!null", "null"), nil
		}
		return valueNode(rv.Elem().Interface())
	}

	// remaining scalars go through yaml's own encoder
	var doc yaml.Node
	if err := doc.Encode(v); err != nil {
		return nil, err
	}
	return &doc, nil
}

func sequenceNode(n int, at func(int) any) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range n {
		item, err := valueNode(at(i))
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, item)
	}
	return seq, nil
}

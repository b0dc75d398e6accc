package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type namedMap map[string]any

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_Deterministic(t *testing.T) {
	fields := map[string]any{
		"b": "two",
		"a": "one",
		"c": 3,
		"outer": map[string]any{
			"z": 1.5,
			"y": float64(2),
		},
	}

	out1, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)

	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "a: one\nb: two\nc: 3\nouter:\n  y: 2\n  z: 1.5\n", string(out1))
}

func TestSerializeYAML_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestSerializeYAML_NamedTypes(t *testing.T) {
	fields := map[string]any{
		"data":    namedMap{"sys": map[string]any{"id": "x"}},
		"entries": []namedMap{{"id": "a"}, {"id": "b"}},
		"tags":    []string{"go"},
		"when":    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"none":    nil,
	}

	out, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, "data:\n  sys:\n    id: x\nentries:\n  - id: a\n  - id: b\nnone: null\ntags:\n  - go\nwhen: 2024-01-02T03:04:05Z\n", string(out))
}

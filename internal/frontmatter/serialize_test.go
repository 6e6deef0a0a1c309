package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{
		"title":  "Install",
		"author": "docs",
		"weight": 3,
	}

	out1, err := SerializeYAML(fields)
	require.NoError(t, err)
	out2, err := SerializeYAML(fields)
	require.NoError(t, err)

	require.Equal(t, out1, out2)
	require.Equal(t, "author: docs\ntitle: Install\nweight: 3\n", string(out1))
}

func TestSerializeYAML_NestedMap_SortsKeysRecursively(t *testing.T) {
	fields := map[string]any{
		"params": map[any]any{"z": 1, "a": 2},
	}

	out, err := SerializeYAML(fields)
	require.NoError(t, err)
	require.Equal(t, "params:\n  a: 2\n  z: 1\n", string(out))
}

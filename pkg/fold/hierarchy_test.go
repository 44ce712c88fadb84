package fold_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flamefold/flamefold/pkg/fold"
)

func TestHierarchy(t *testing.T) {
	tree := fold.NewTree()
	tree.Insert([]string{"main", "foo"}, 15)
	tree.Insert([]string{"main", "bar"}, 20)
	tree.Insert([]string{"main"}, 3)

	h := tree.Hierarchy()
	require.Equal(t, "all", h.Name)
	require.Equal(t, uint64(38), h.Total)
	require.Equal(t, uint64(0), h.Self)
	require.Len(t, h.Children, 1)

	main := h.Children[0]
	require.Equal(t, "main", main.Name)
	require.Equal(t, uint64(38), main.Total)
	require.Equal(t, uint64(3), main.Self)
	require.Len(t, main.Children, 2)
	require.Equal(t, "foo", main.Children[0].Name)
	require.Equal(t, "bar", main.Children[1].Name)
	require.Nil(t, main.Children[0].Children)
}

func TestWriteHierarchy(t *testing.T) {
	tree := fold.NewTree()
	tree.Insert([]string{"main", "foo"}, 15)
	tree.Insert([]string{"main", "bar"}, 20)

	var buf bytes.Buffer
	require.NoError(t, tree.WriteHierarchy(&buf))
	require.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
	require.JSONEq(t, `{
		"name": "all",
		"self": 0,
		"total": 35,
		"children": [{
			"name": "main",
			"self": 0,
			"total": 35,
			"children": [
				{"name": "foo", "self": 15, "total": 15},
				{"name": "bar", "self": 20, "total": 20}
			]
		}]
	}`, buf.String())
}

func TestHierarchyRootBucket(t *testing.T) {
	tree := fold.NewTree()
	tree.Insert(nil, 6)
	tree.Insert([]string{"main"}, 4)

	h := tree.Hierarchy()
	require.Equal(t, uint64(10), h.Total)
	require.Equal(t, uint64(6), h.Self)
	require.Len(t, h.Children, 1)
}

package fold_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flamefold/flamefold/pkg/fold"
)

type insertion struct {
	path   []string
	weight uint64
}

// totals walks the tree and records every node's inclusive weight keyed
// by its joined path.
func totals(t *fold.Tree) map[string]uint64 {
	res := make(map[string]uint64)
	var walk func(n fold.Node, prefix string)
	walk = func(n fold.Node, prefix string) {
		res[prefix] = n.Total()
		for _, c := range n.Children() {
			p := c.Name()
			if prefix != "" {
				p = prefix + ";" + p
			}
			walk(c, p)
		}
	}
	walk(t.Root(), "")
	return res
}

func TestTreeInsert(t *testing.T) {
	tree := fold.NewTree()
	tree.Insert([]string{"main", "foo"}, 15)
	tree.Insert([]string{"main", "bar"}, 20)
	tree.Insert([]string{"main", "foo", "baz"}, 5)

	require.Equal(t, uint64(40), tree.TotalWeight())
	require.Equal(t, 4, tree.Len())
	require.Equal(t, map[string]uint64{
		"":             40,
		"main":         40,
		"main;foo":     20,
		"main;bar":     20,
		"main;foo;baz": 5,
	}, totals(tree))

	root := tree.Root()
	require.False(t, root.Terminal())
	require.Equal(t, uint64(0), root.Exclusive())

	children := root.Children()
	require.Len(t, children, 1)
	main := children[0]
	require.Equal(t, "main", main.Name())
	require.False(t, main.Terminal())
	require.Equal(t, uint64(0), main.Exclusive())

	// First-insertion order: foo before bar.
	names := make([]string, 0, 2)
	for _, c := range main.Children() {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"foo", "bar"}, names)

	foo := main.Children()[0]
	require.True(t, foo.Terminal())
	require.Equal(t, uint64(15), foo.Exclusive())
	require.Equal(t, uint64(20), foo.Total())
}

func TestTreeCommutativity(t *testing.T) {
	inserts := []insertion{
		{[]string{"a", "b", "c"}, 3},
		{[]string{"a", "b"}, 7},
		{[]string{"a", "d"}, 11},
		{[]string{"e"}, 13},
		{nil, 2},
		{[]string{"a", "b", "c"}, 1},
	}

	build := func(order []int) *fold.Tree {
		tree := fold.NewTree()
		for _, i := range order {
			tree.Insert(inserts[i].path, inserts[i].weight)
		}
		return tree
	}

	base := []int{0, 1, 2, 3, 4, 5}
	want := totals(build(base))

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 8; trial++ {
		order := append([]int(nil), base...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		tree := build(order)
		require.Equal(t, want, totals(tree), "order %v", order)
		require.Equal(t, uint64(37), tree.TotalWeight())
	}
}

func TestTreeConservation(t *testing.T) {
	tree := fold.NewTree()
	var sum uint64
	rng := rand.New(rand.NewSource(2))
	frames := []string{"a", "b", "c", "d"}
	for i := 0; i < 200; i++ {
		depth := rng.Intn(5)
		path := make([]string, depth)
		for j := range path {
			path[j] = frames[rng.Intn(len(frames))]
		}
		w := uint64(rng.Intn(100))
		tree.Insert(path, w)
		sum += w
	}
	require.Equal(t, sum, tree.TotalWeight())

	// Every node holds at least the sum of its children.
	var walk func(n fold.Node)
	walk = func(n fold.Node) {
		var childSum uint64
		for _, c := range n.Children() {
			childSum += c.Total()
			walk(c)
		}
		require.GreaterOrEqual(t, n.Total(), childSum)
		require.Equal(t, n.Total()-childSum, n.Exclusive())
	}
	walk(tree.Root())
}

func TestTreeEdgeCases(t *testing.T) {
	for i, test := range []struct {
		inserts    []insertion
		total      uint64
		nodes      int
		rootBucket bool
	}{{
		// Empty path lands in the root bucket.
		inserts:    []insertion{{nil, 9}},
		total:      9,
		nodes:      0,
		rootBucket: true,
	}, {
		// Zero weight still creates structure.
		inserts: []insertion{{[]string{"a", "b"}, 0}},
		total:   0,
		nodes:   2,
	}, {
		// Repeated identical paths share one chain.
		inserts: []insertion{
			{[]string{"a", "b"}, 4},
			{[]string{"a", "b"}, 6},
		},
		total: 10,
		nodes: 2,
	}, {
		// A path that is a prefix of another keeps one chain.
		inserts: []insertion{
			{[]string{"a", "b", "c"}, 5},
			{[]string{"a"}, 3},
		},
		total: 8,
		nodes: 3,
	}} {
		t.Run(fmt.Sprintf("tree/%d", i), func(t *testing.T) {
			tree := fold.NewTree()
			for _, ins := range test.inserts {
				tree.Insert(ins.path, ins.weight)
			}
			require.Equal(t, test.total, tree.TotalWeight())
			require.Equal(t, test.nodes, tree.Len())
			require.Equal(t, test.rootBucket, tree.Root().Terminal())
		})
	}
}

func TestTreeIdempotentStructure(t *testing.T) {
	// Re-inserting the same paths changes totals, never structure.
	tree := fold.NewTree()
	shape := func() string {
		var sb strings.Builder
		var walk func(n fold.Node)
		walk = func(n fold.Node) {
			sb.WriteString(n.Name())
			sb.WriteByte('(')
			for _, c := range n.Children() {
				walk(c)
			}
			sb.WriteByte(')')
		}
		walk(tree.Root())
		return sb.String()
	}

	tree.Insert([]string{"main", "foo"}, 15)
	tree.Insert([]string{"main", "bar"}, 20)
	first := shape()
	firstLen := tree.Len()

	tree.Insert([]string{"main", "foo"}, 15)
	tree.Insert([]string{"main", "bar"}, 20)
	require.Equal(t, first, shape())
	require.Equal(t, firstLen, tree.Len())
	require.Equal(t, uint64(70), tree.TotalWeight())
}

package tree

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string
	Parent string
}

func buildRecords(records []record) Forest[record] {
	return Build(records,
		func(r record) string { return r.ID },
		func(r record) string { return r.Parent },
	)
}

func childIDs(n *Node[record]) []string {
	ids := []string{}
	for _, c := range n.Children {
		ids = append(ids, c.Item.ID)
	}
	return ids
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		records      []record
		wantRoots    []string
		wantChildren map[string][]string
		wantOrphans  []string
		wantLen      int
	}{
		{
			name:      "empty",
			records:   nil,
			wantRoots: []string{},
			wantLen:   0,
		},
		{
			name: "children keep input order",
			records: []record{
				{ID: "b"},
				{ID: "a1", Parent: "a"},
				{ID: "a"},
				{ID: "b2", Parent: "b"},
				{ID: "b1", Parent: "b"},
				{ID: "b1x", Parent: "b1"},
			},
			wantRoots: []string{"b", "a"},
			wantChildren: map[string][]string{
				"a":  {"a1"},
				"b":  {"b2", "b1"},
				"b1": {"b1x"},
			},
			wantLen: 6,
		},
		{
			name: "dangling parent is not a root",
			records: []record{
				{ID: "a"},
				{ID: "x", Parent: "missing"},
				{ID: "x1", Parent: "x"},
			},
			wantRoots:   []string{"a"},
			wantOrphans: []string{"x"},
			wantChildren: map[string][]string{
				"x": {"x1"},
			},
			wantLen: 1,
		},
		{
			name: "self parent is an orphan",
			records: []record{
				{ID: "a", Parent: "a"},
			},
			wantRoots:   []string{},
			wantOrphans: []string{"a"},
			wantLen:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := buildRecords(tt.records)

			roots := []string{}
			for _, r := range forest.Roots {
				roots = append(roots, r.Item.ID)
			}
			assert.Equal(t, tt.wantRoots, roots)

			var orphans []string
			for _, o := range forest.Orphans {
				orphans = append(orphans, o.Item.ID)
			}
			assert.Equal(t, tt.wantOrphans, orphans)
			assert.Equal(t, tt.wantLen, forest.Len())

			all := append(append([]*Node[record]{}, forest.Roots...), forest.Orphans...)
			Walk(all, func(n *Node[record], _ int) {
				want, ok := tt.wantChildren[n.Item.ID]
				if !ok {
					want = []string{}
				}
				assert.Equal(t, want, childIDs(n), n.Item.ID)
			})
		})
	}
}

// Every acyclic input with resolvable parents keeps all records and links each
// record under exactly its declared parent.
func TestBuild_AcyclicPreservesEveryRecord(t *testing.T) {
	records := []record{{ID: "r0"}}
	for i := 1; i < 200; i++ {
		records = append(records, record{
			ID:     "r" + strconv.Itoa(i),
			Parent: "r" + strconv.Itoa((i-1)/3),
		})
	}

	forest := buildRecords(records)
	require.Len(t, forest.Roots, 1)
	assert.Empty(t, forest.Orphans)
	assert.Equal(t, len(records), forest.Len())

	Walk(forest.Roots, func(n *Node[record], _ int) {
		for _, c := range n.Children {
			assert.Equal(t, n.Item.ID, c.Item.Parent)
		}
	})
}

func TestForest_Flatten(t *testing.T) {
	forest := buildRecords([]record{
		{ID: "a"},
		{ID: "b"},
		{ID: "a1", Parent: "a"},
		{ID: "a1a", Parent: "a1"},
	})

	depths := map[string]int{}
	Walk(forest.Roots, func(n *Node[record], depth int) {
		depths[n.Item.ID] = depth
	})

	assert.Equal(t, []record{
		{ID: "a"},
		{ID: "a1", Parent: "a"},
		{ID: "a1a", Parent: "a1"},
		{ID: "b"},
	}, forest.Flatten())
	assert.Equal(t, map[string]int{"a": 0, "a1": 1, "a1a": 2, "b": 0}, depths)
}

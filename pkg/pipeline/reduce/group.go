package reduce

import (
	"fmt"
	"sort"
)

// Group holds every element equal to Key, in their original order.
type Group struct {
	Key   any
	Items []any
}

// Len returns the size of the group.
func (g Group) Len() int {
	return len(g.Items)
}

func (g Group) String() string {
	return fmt.Sprintf("%v : %v", g.Key, g.Items)
}

// Grouped groups equal elements. Groups are ordered by first occurrence of their key.
func Grouped(c Collection) []Group {
	groups := []Group{}
	positions := make(map[any]int)

	for _, elem := range c {
		id := identity(elem)

		pos, ok := positions[id]
		if !ok {
			pos = len(groups)
			positions[id] = pos
			groups = append(groups, Group{Key: elem})
		}

		groups[pos].Items = append(groups[pos].Items, elem)
	}

	return groups
}

// Count is the number of occurrences of a value.
type Count struct {
	Value any
	N     int
}

func (c Count) String() string {
	return fmt.Sprintf("%v : %d", c.Value, c.N)
}

// Counted counts occurrences of every distinct element. The most frequent values come
// first; values with the same count keep the order in which they first appear in c.
func Counted(c Collection) []Count {
	groups := Grouped(c)

	counts := make([]Count, len(groups))
	for i, grp := range groups {
		counts[i] = Count{Value: grp.Key, N: grp.Len()}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].N > counts[j].N
	})

	return counts
}

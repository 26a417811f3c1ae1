// Package ranking compares two orderings of the same kind of items.
package ranking

// Diff scores two rankings by summing |i - j| over every pair of positions
// i in a and j in b that hold equal items. Items present in only one ranking
// contribute nothing. An item repeated inside a ranking contributes once per
// occurrence pair.
//
// The comparison is O(len(a) * len(b)); it is meant for short rankings.
func Diff[T comparable](a, b []T) int {
	sum := 0
	for i, x := range a {
		for j, y := range b {
			if x == y {
				sum += abs(i - j)
			}
		}
	}
	return sum
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

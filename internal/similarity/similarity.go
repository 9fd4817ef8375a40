// Package similarity implements the textual similarity ratio used for
// duplicate detection: a longest-matching-blocks sequence ratio equivalent
// to 2*M/(len(a)+len(b)), where M is the total length of greedily matched
// common blocks.
package similarity

import "strings"

type matchBlock struct {
	a, b, size int
}

// Ratio returns the case-insensitive similarity of two strings in [0,1].
// It is symmetric and returns 0 when either string is empty.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	// Index positions of each rune in b for the inner matching loop.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	// Divide and conquer around the longest match of each region.
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(ra, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		matched += m.size
		queue = append(queue,
			span{s.alo, m.a, s.blo, m.b},
			span{m.a + m.size, s.ahi, m.b + m.size, s.bhi},
		)
	}

	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// longestMatch finds the longest block of runes common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest match on ties.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{a: alo, b: blo}
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = matchBlock{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = next
	}
	return best
}

package query

import (
	"cmp"
	"slices"
)

// Filter returns the rows for which keep is true, in input order.
func Filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Map applies a pure projection to every row.
func Map[T, U any](rows []T, fn func(T) U) []U {
	out := make([]U, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out
}

// Joined is one output row of a join. For a left join Matched is false
// and Right is the zero value when no right row shares the key.
type Joined[L, R any] struct {
	Left    L
	Right   R
	Matched bool
}

// InnerJoin pairs every left row with every right row sharing its key.
// Left rows without a match are dropped.
func InnerJoin[L, R any, K comparable](left []L, right []R, leftKey func(L) K, rightKey func(R) K) []Joined[L, R] {
	return hashJoin(left, right, leftKey, rightKey, false)
}

// LeftJoin is InnerJoin that keeps unmatched left rows with Matched=false.
func LeftJoin[L, R any, K comparable](left []L, right []R, leftKey func(L) K, rightKey func(R) K) []Joined[L, R] {
	return hashJoin(left, right, leftKey, rightKey, true)
}

func hashJoin[L, R any, K comparable](left []L, right []R, leftKey func(L) K, rightKey func(R) K, keepUnmatched bool) []Joined[L, R] {
	index := make(map[K][]R, len(right))
	for _, r := range right {
		k := rightKey(r)
		index[k] = append(index[k], r)
	}

	out := make([]Joined[L, R], 0, len(left))
	for _, l := range left {
		matches := index[leftKey(l)]
		if len(matches) == 0 {
			if keepUnmatched {
				out = append(out, Joined[L, R]{Left: l})
			}
			continue
		}
		for _, r := range matches {
			out = append(out, Joined[L, R]{Left: l, Right: r, Matched: true})
		}
	}
	return out
}

// Compare orders two rows: negative if a sorts first, zero if tied.
type Compare[T any] func(a, b T) int

// Asc orders rows by key, smallest first.
func Asc[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Desc orders rows by key, largest first.
func Desc[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	}
}

// Chain combines comparators by precedence: the first is the primary
// key, each following one only breaks ties left by those before it.
func Chain[T any](cmps ...Compare[T]) Compare[T] {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Sort returns a stably sorted copy of rows. Rows tied on every key keep
// their input order.
func Sort[T any](rows []T, cmps ...Compare[T]) []T {
	out := slices.Clone(rows)
	if len(cmps) == 0 {
		return out
	}
	slices.SortStableFunc(out, Chain(cmps...))
	return out
}

// Limit returns at most the first n rows. A negative n means no limit.
func Limit[T any](rows []T, n int) []T {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// Reduce left-folds rows into an accumulator starting from seed.
func Reduce[T, A any](rows []T, seed A, fn func(A, T) A) A {
	acc := seed
	for _, r := range rows {
		acc = fn(acc, r)
	}
	return acc
}

// Dedup collapses rows sharing a key. The surviving row sits at the
// position of the first occurrence and carries the value of the last.
func Dedup[T any, K comparable](rows []T, key func(T) K) []T {
	pos := make(map[K]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

// GroupBy partitions rows by key. Keys are returned in first-seen order;
// rows within a group keep input order.
func GroupBy[T any, K comparable](rows []T, key func(T) K) ([]K, map[K][]T) {
	var keys []K
	groups := make(map[K][]T)
	for _, r := range rows {
		k := key(r)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return keys, groups
}

// Index maps each key to its row; later rows replace earlier ones.
func Index[T any, K comparable](rows []T, key func(T) K) map[K]T {
	out := make(map[K]T, len(rows))
	for _, r := range rows {
		out[key(r)] = r
	}
	return out
}

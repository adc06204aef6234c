package jsonconv

import "iter"

// Iterable is implemented by containers that expose their elements as a sequence.
// Serialization writes the yielded elements as an array. Any type whose All method
// returns an iter.Seq or iter.Seq2 is treated the same way.
type Iterable interface {
	All() iter.Seq[any]
}

// DistinctBy yields the elements of seq whose key has not been seen yet, keeping the
// first occurrence.
func DistinctBy[T any, K comparable](seq iter.Seq[T], key func(T) K) iter.Seq[T] {
	return func(yield func(T) bool) {
		seen := make(map[K]struct{})
		for v := range seq {
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if !yield(v) {
				return
			}
		}
	}
}

// Package selectors derives view data from state with single-slot
// memoization. Arguments are compared with ==, so pointers are compared by
// identity and every upstream change naturally invalidates what depends on
// it.
package selectors

import "sync"

// Memo1 caches the result of fn for the last argument.
func Memo1[A comparable, R any](fn func(A) R) func(A) R {
	var (
		mu    sync.Mutex
		ok    bool
		lastA A
		lastR R
	)
	return func(a A) R {
		mu.Lock()
		defer mu.Unlock()
		if ok && a == lastA {
			return lastR
		}
		lastR = fn(a)
		lastA, ok = a, true
		return lastR
	}
}

// Memo2 caches the result of fn for the last pair of arguments.
func Memo2[A, B comparable, R any](fn func(A, B) R) func(A, B) R {
	m := Memo1(func(k pair[A, B]) R { return fn(k.a, k.b) })
	return func(a A, b B) R { return m(pair[A, B]{a, b}) }
}

// Memo3 caches the result of fn for the last triple of arguments.
func Memo3[A, B, C comparable, R any](fn func(A, B, C) R) func(A, B, C) R {
	m := Memo1(func(k triple[A, B, C]) R { return fn(k.a, k.b, k.c) })
	return func(a A, b B, c C) R { return m(triple[A, B, C]{a, b, c}) }
}

type pair[A, B comparable] struct {
	a A
	b B
}

type triple[A, B, C comparable] struct {
	a A
	b B
	c C
}

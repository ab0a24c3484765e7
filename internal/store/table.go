// Package store provides the volatile keyed entity store backing Promptloom.
package store

import (
	"sort"
	"sync"
)

// table is a keyed record container with a monotonic id counter.
// Ids start at 1 and are never reused after delete.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[int64]T
	next  int64
	clone func(T) T
	idOf  func(T) int64
}

func newTable[T any](idOf func(T) int64, clone func(T) T) *table[T] {
	return &table[T]{
		rows:  make(map[int64]T),
		next:  1,
		clone: clone,
		idOf:  idOf,
	}
}

// list returns copies of every row ordered by id.
func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		out = append(out, t.clone(v))
	}
	sort.Slice(out, func(i, j int) bool { return t.idOf(out[i]) < t.idOf(out[j]) })
	return out
}

// filter returns copies of the rows matching keep, ordered by id.
func (t *table[T]) filter(keep func(T) bool) []T {
	all := t.list()
	out := all[:0]
	for _, v := range all {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(v), true
}

// insert assigns the next id, builds the row and stores it.
func (t *table[T]) insert(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	v := build(id)
	t.rows[id] = v
	return t.clone(v)
}

// update replaces the row with merge(existing). Returns false if id is unknown.
func (t *table[T]) update(id int64, merge func(T) T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	v := merge(t.clone(existing))
	t.rows[id] = v
	return t.clone(v), true
}

func (t *table[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

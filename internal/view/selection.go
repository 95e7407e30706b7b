package view

import "github.com/shopspring/decimal"

// Selection is an insertion-ordered set of ids. It is not safe for
// concurrent use; the owning tab guards it.
type Selection[K comparable] struct {
	ids   []K
	index map[K]int
}

func NewSelection[K comparable]() *Selection[K] {
	return &Selection[K]{index: map[K]int{}}
}

// Toggle adds id if absent and removes it otherwise. It reports whether id
// is selected afterwards.
func (s *Selection[K]) Toggle(id K) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

func (s *Selection[K]) Has(id K) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Selection[K]) Len() int {
	return len(s.ids)
}

func (s *Selection[K]) Clear() {
	s.ids = nil
	s.index = map[K]int{}
}

// IDs returns a copy in selection order.
func (s *Selection[K]) IDs() []K {
	out := make([]K, len(s.ids))
	copy(out, s.ids)
	return out
}

// Retain drops every id for which keep returns false.
func (s *Selection[K]) Retain(keep func(K) bool) {
	ids := s.ids
	s.Clear()
	for _, id := range ids {
		if keep(id) {
			s.add(id)
		}
	}
}

func (s *Selection[K]) add(id K) {
	if s.index == nil {
		s.index = map[K]int{}
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Selection[K]) remove(id K) {
	i := s.index[id]
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}

// Selected returns the items whose id is selected, in list order.
func Selected[T any, K comparable](items []T, sel *Selection[K], idOf func(T) K) []T {
	out := make([]T, 0, sel.Len())
	for _, item := range items {
		if sel.Has(idOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

func Sum[T any](items []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(amount(item))
	}
	return total
}

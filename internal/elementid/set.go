package elementid

// Set is an insertion-ordered set of IDs.
type Set struct {
	order []ID
	index map[ID]int
}

// NewSet returns a set holding ids in the given order.
func NewSet(ids ...ID) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s *Set) Add(id ID) bool {
	if s.index == nil {
		s.index = make(map[ID]int)
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id ID) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
	return true
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns a copy of the ids in insertion order.
func (s *Set) IDs() []ID {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the set.
func (s *Set) Clear() {
	s.order = nil
	s.index = nil
}

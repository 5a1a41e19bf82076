package reserve

// Selection is the set of item ids staged for the next confirm batch.
// Iteration preserves insertion order, which is also the order the batch
// submits reservations.
type Selection struct {
	order  []uint
	member map[uint]struct{}
	locked func(id uint) bool
}

// NewSelection builds an empty selection. locked reports ids that may not be
// toggled, typically because the user already holds a confirmed reservation
// for them.
func NewSelection(locked func(id uint) bool) *Selection {
	if locked == nil {
		locked = func(uint) bool { return false }
	}
	return &Selection{
		member: make(map[uint]struct{}),
		locked: locked,
	}
}

// Toggle flips membership for id and reports whether anything changed.
// Locked ids are a no-op.
func (s *Selection) Toggle(id uint) bool {
	if s.locked(id) {
		return false
	}
	if _, ok := s.member[id]; ok {
		delete(s.member, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return true
	}
	s.member[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Selection) Has(id uint) bool {
	_, ok := s.member[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.order)
}

// Items returns the selected ids in insertion order.
func (s *Selection) Items() []uint {
	out := make([]uint, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the selection. Runs after every confirm attempt, including
// aborted and partially failed ones.
func (s *Selection) Clear() {
	s.order = s.order[:0]
	s.member = make(map[uint]struct{})
}

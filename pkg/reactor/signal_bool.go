package reactor

// BoolSignal wraps Signal[bool] with convenience methods for flags.
type BoolSignal struct {
	*Signal[bool]
}

// CreateBoolSignal creates a BoolSignal with the given initial value.
func CreateBoolSignal(r *Root, initial bool) *BoolSignal {
	return &BoolSignal{CreateSignal(r, initial)}
}

// Toggle inverts the boolean value.
func (s *BoolSignal) Toggle() {
	s.Update(func(b bool) bool { return !b })
}

// SetTrue sets the value to true.
func (s *BoolSignal) SetTrue() {
	s.Set(true)
}

// SetFalse sets the value to false.
func (s *BoolSignal) SetFalse() {
	s.Set(false)
}

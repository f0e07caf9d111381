package reactor

// IntSignal wraps Signal[int] with convenience methods for counters.
type IntSignal struct {
	*Signal[int]
}

// CreateIntSignal creates an IntSignal with the given initial value.
func CreateIntSignal(r *Root, initial int) *IntSignal {
	return &IntSignal{CreateSignal(r, initial)}
}

// Inc increments the value by 1.
func (s *IntSignal) Inc() {
	s.Update(func(n int) int { return n + 1 })
}

// Dec decrements the value by 1.
func (s *IntSignal) Dec() {
	s.Update(func(n int) int { return n - 1 })
}

// Add adds the given value.
func (s *IntSignal) Add(n int) {
	s.Update(func(v int) int { return v + n })
}

// Sub subtracts the given value.
func (s *IntSignal) Sub(n int) {
	s.Update(func(v int) int { return v - n })
}

package repository

import (
	"strconv"
	"time"
)

// idSource issues decimal string ids from a millisecond clock. A batch of n
// ids is base, base+1, ..., base+n-1, and base is always past every id issued
// or observed before, so ids stay distinct within one clock tick.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) reserve(n int) []string {
	if n <= 0 {
		return nil
	}
	base := s.now().UnixMilli()
	if base <= s.last {
		base = s.last + 1
	}
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.FormatInt(base+int64(i), 10)
	}
	s.last = base + int64(n) - 1
	return out
}

// observe records an existing id so later reservations never reuse it.
// Non-numeric ids cannot collide with issued ones and are ignored.
func (s *idSource) observe(id string) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err == nil && v > s.last {
		s.last = v
	}
}

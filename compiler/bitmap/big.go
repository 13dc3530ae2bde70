package bitmap

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Big is a growable bit set indexed from zero. The zero-index word is
	// inline, so small sets allocate nothing beyond the set itself.
	Big struct {
		b  []uint64
		b0 [1]uint64
	}
)

func Make() Big {
	s := Big{}
	s.b = s.b0[:]

	return s
}

func (s *Big) Set(i int) {
	i, j := s.ij(i)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s Big) IsSet(i int) bool {
	i, j := s.ij(i)

	if i >= len(s.b) {
		return false
	}

	return (s.b[i] & (1 << j)) != 0
}

func (s *Big) Size() (r int) {
	if s == nil {
		return 0
	}

	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s Big) Range(f func(i int) bool) {
	for i, x := range s.b {
		if x == 0 {
			continue
		}

		for j := 0; j < 64; j++ {
			if (x & (1 << j)) == 0 {
				continue
			}

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s *Big) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func (s Big) ij(pos int) (i int, j int) {
	i, j = pos/64, pos%64

	return i, j
}

func (s *Big) grow(i int) {
	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}

package bitmap

import "testing"

func TestBig(t *testing.T) {
	s := Make()

	if s.IsSet(0) || s.IsSet(200) {
		t.Errorf("empty set has bits set")
	}

	s.Set(3)
	s.Set(64)
	s.Set(200)

	for _, i := range []int{3, 64, 200} {
		if !s.IsSet(i) {
			t.Errorf("bit %d not set", i)
		}
	}

	if s.IsSet(4) {
		t.Errorf("bit 4 set")
	}

	if n := s.Size(); n != 3 {
		t.Errorf("size: %d", n)
	}

	var got []int

	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	want := []int{3, 64, 200}
	if len(got) != len(want) {
		t.Fatalf("range: %v", got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range: %v", got)
		}
	}
}

func TestBigTlogAppend(t *testing.T) {
	s := Make()
	s.Set(1)
	s.Set(100)

	b := s.TlogAppend(nil)
	if len(b) == 0 {
		t.Errorf("empty encoding")
	}

	var nilSet *Big

	b = nilSet.TlogAppend(nil)
	if len(b) != 1 {
		t.Errorf("nil encoding: %x", b)
	}
}

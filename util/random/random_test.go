package random

import "testing"

func TestSeqLengthAndCharset(t *testing.T) {
	for _, n := range []int{0, 1, 10, 64} {
		s := Seq(n)
		if len(s) != n {
			t.Errorf("Seq(%d) length = %d", n, len(s))
		}
		for _, r := range s {
			switch {
			case r >= '0' && r <= '9':
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			default:
				t.Errorf("Seq(%d) produced invalid rune %q", n, r)
			}
		}
	}
}

func TestSeqVaries(t *testing.T) {
	if Seq(32) == Seq(32) {
		t.Error("two 32-char sequences were identical")
	}
}

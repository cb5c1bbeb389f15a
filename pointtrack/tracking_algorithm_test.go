package pointtrack

import (
	"testing"
)

func TestModifierBits(t *testing.T) {
	cases := []struct {
		mod  Modifier
		want Modifier
	}{
		{ModNone, 0},
		{ModShift, 1},
		{ModControl, 2},
		{ModAlt, 4},
	}
	for _, c := range cases {
		if c.mod != c.want {
			t.Errorf("Expected modifier value %d, got %d", c.want, c.mod)
		}
	}
	if ModShift|ModControl|ModAlt != 0b111 {
		t.Errorf("Modifiers must occupy the lowest bits, got %b", ModShift|ModControl|ModAlt)
	}
}

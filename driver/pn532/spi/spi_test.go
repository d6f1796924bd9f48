package spi

import "testing"

func TestBitReverse(t *testing.T) {
	cases := []struct{ in, want byte }{
		{0x00, 0x00},
		{0xFF, 0xFF},
		{0x01, 0x80},
		{0x80, 0x01},
		{0x0F, 0xF0},
		{dataWrite, 0x80}, // 0x01 -> 0x80
	}
	for _, c := range cases {
		if got := bitReverse(c.in); got != c.want {
			t.Errorf("bitReverse(%#x) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

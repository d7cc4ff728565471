package riscv

import "testing"

func TestBits(t *testing.T) {
	const w Word = 0xdeadbeef
	const awkward = 0b0110_1101_1111_0111

	if uint32(w)&(awkward<<5) != awkward<<5 {
		t.Fatalf("awkward pattern not present in %#x", uint32(w))
	}

	tests := []struct {
		hi, lo uint
		want   uint32
	}{
		{0, 0, 1},
		{1, 1, 1},
		{2, 2, 1},
		{3, 3, 1},
		{4, 4, 0},
		{5, 5, 1},
		{6, 6, 1},
		{7, 7, 1},
		{8, 8, 0},
		{9, 9, 1},
		{10, 10, 1},
		{11, 11, 1},
		{31, 16, 0xdead},
		{15, 0, 0xbeef},
		{31, 24, 0xde},
		{23, 16, 0xad},
		{15, 8, 0xbe},
		{7, 0, 0xef},
		{31, 0, uint32(w)},
		{20, 5, awkward},
		{31, 31, 1},
	}
	for _, tt := range tests {
		if got := w.Bits(tt.hi, tt.lo); got != tt.want {
			t.Errorf("Bits(%d, %d) = %#x (%032b), want %#x (%032b)", tt.hi, tt.lo, got, got, tt.want, tt.want)
		}
	}
}

func TestBitsPanicsOnBadRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for reversed range")
		}
	}()
	Word(0).Bits(16, 31)
}

func TestSignExtendRoundTrip(t *testing.T) {
	for hi := uint(0); hi < 32; hi++ {
		width := uint64(1) << (hi + 1)
		mask := width - 1
		for _, v := range []uint64{0, 1, (1 << hi) - 1, 1 << hi, mask, 0x5555_5555 & mask} {
			want := int64(v)
			if v&(1<<hi) != 0 {
				want -= int64(width)
			}
			if got := SignExtend(uint32(v), hi); int64(got) != want {
				t.Errorf("SignExtend(%#x, %d) = %d, want %d", v, hi, got, want)
			}
		}
	}
}

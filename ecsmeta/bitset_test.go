package ecsmeta

import "testing"

func TestBitsetSetClearBit(t *testing.T) {
	b := newBitset(70)
	if b.Bit(5) {
		t.Fatalf("bit 5 should start clear")
	}
	b.Set(5)
	if !b.Bit(5) {
		t.Fatalf("bit 5 should be set")
	}
	b.Clear(5)
	if b.Bit(5) {
		t.Fatalf("bit 5 should be clear after Clear")
	}
}

func TestBitsetSentinelAlwaysFalse(t *testing.T) {
	b := newBitset(10)
	sentinel := b.numBits - 1

	b.Set(sentinel)
	if b.Bit(sentinel) {
		t.Fatalf("Set must not be able to set the sentinel bit")
	}

	b.setSentinel()
	if !b.Bit(sentinel) {
		t.Fatalf("setSentinel must be able to force the sentinel bit on")
	}
}

func TestBitsetOutOfRangeReadsAsSentinel(t *testing.T) {
	b := newBitset(10)
	if b.Bit(1000) {
		t.Fatalf("an out-of-range read should resolve to the always-false sentinel")
	}
	if b.Bit(-1) {
		t.Fatalf("a negative index should resolve to the always-false sentinel")
	}
}

func TestBitsetOutOfRangeSetAndClearAreNoops(t *testing.T) {
	b := newBitset(10)
	b.Set(1000)
	b.Set(-1)
	if b.popCount() != 0 {
		t.Fatalf("out-of-range Set calls must be no-ops, got popCount %d", b.popCount())
	}

	b.Set(3)
	b.Clear(1000)
	b.Clear(-1)
	if !b.Bit(3) || b.popCount() != 1 {
		t.Fatalf("out-of-range Clear calls must be no-ops, got popCount %d", b.popCount())
	}
}

func TestBitsetMatches(t *testing.T) {
	b := newBitset(70)
	b.Set(0)
	b.Set(64)

	mask := newBitset(70)
	mask.Set(0)
	if !b.matches(mask) {
		t.Fatalf("b should match a mask that is a subset of its bits")
	}

	mask.Set(64)
	if !b.matches(mask) {
		t.Fatalf("b should match a mask spanning two words when both bits are set")
	}

	mask.Set(1)
	if b.matches(mask) {
		t.Fatalf("b should not match a mask requiring a bit it doesn't have")
	}
}

func TestBitsetEqualAndClone(t *testing.T) {
	a := newBitset(70)
	a.Set(3)
	a.Set(65)

	c := a.clone()
	if !a.Equal(c) {
		t.Fatalf("a clone should be equal to its source")
	}

	c.Set(10)
	if a.Equal(c) {
		t.Fatalf("mutating a clone must not affect the source")
	}
	if a.Bit(10) {
		t.Fatalf("mutating a clone must not affect the source's bits")
	}
}

func TestBitsetAndIsZero(t *testing.T) {
	a := newBitset(64)
	a.Set(1)
	a.Set(2)

	b := newBitset(64)
	b.Set(2)
	b.Set(3)

	and := a.And(b)
	if !and.Bit(2) {
		t.Fatalf("And should keep bit 2, shared by both operands")
	}
	if and.Bit(1) || and.Bit(3) {
		t.Fatalf("And should drop bits not shared by both operands")
	}

	empty := newBitset(64)
	if !empty.IsZero() {
		t.Fatalf("a freshly allocated bitset should be zero")
	}
	if and.IsZero() {
		t.Fatalf("and should not be zero, it still has bit 2 set")
	}
}

func TestBitsetResetClearsEveryWord(t *testing.T) {
	b := newBitset(200)
	b.Set(0)
	b.Set(150)
	b.reset()
	if b.popCount() != 0 {
		t.Fatalf("reset should clear every word, got popCount %d", b.popCount())
	}
}

func TestWordsFor(t *testing.T) {
	cases := []struct {
		numBits int
		want    int
	}{
		{1, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{129, 3},
	}
	for _, c := range cases {
		if got := wordsFor(c.numBits); got != c.want {
			t.Errorf("wordsFor(%d) = %d, want %d", c.numBits, got, c.want)
		}
	}
}

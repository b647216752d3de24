package ids

import "testing"

func TestPriceFromRawRoundTrip(t *testing.T) {
	p := PriceFromRaw(300000, 1) // 30000.0
	got := PriceFromRaw(p.Raw, p.Precision)
	if !got.Equal(p) {
		t.Fatalf("PriceFromRaw round-trip failed: %+v != %+v", got, p)
	}
}

func TestPriceFromFloatRoundHalfEven(t *testing.T) {
	cases := []struct {
		in   float64
		prec uint8
		want int64
	}{
		{2.5, 0, 2},  // ties to even: 2.5 -> 2
		{3.5, 0, 4},  // ties to even: 3.5 -> 4
		{30000.05, 1, 300000}, // 30000.05 scales to exactly 300000.5 in float64, ties to even
	}
	for _, c := range cases {
		got := PriceFromFloat(c.in, c.prec)
		if got.Raw != c.want {
			t.Fatalf("PriceFromFloat(%v, %d) = %d, want %d", c.in, c.prec, got.Raw, c.want)
		}
	}
}

func TestPriceArithmetic(t *testing.T) {
	a := PriceFromRaw(300000, 1)
	b := PriceFromRaw(10, 1)
	sum := a.Add(b)
	if sum.Raw != 300010 {
		t.Fatalf("got %d", sum.Raw)
	}
	diff := a.Sub(b)
	if diff.Raw != 299990 {
		t.Fatalf("got %d", diff.Raw)
	}
}

func TestPriceArithmeticMismatchedPrecisionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on precision mismatch")
		}
	}()
	a := PriceFromRaw(1, 1)
	b := PriceFromRaw(1, 2)
	_ = a.Add(b)
}

func TestUndefPrice(t *testing.T) {
	if !UndefPrice.IsUndef() {
		t.Fatalf("UndefPrice must report IsUndef")
	}
	if PriceFromRaw(0, 0).IsUndef() {
		t.Fatalf("zero price must not be UNDEF")
	}
}

func TestQuantitySubFloorsAtZero(t *testing.T) {
	q := QuantityFromRaw(5, 0)
	r := QuantityFromRaw(10, 0)
	got := q.Sub(r)
	if got.Raw != 0 {
		t.Fatalf("expected floor at zero, got %d", got.Raw)
	}
}

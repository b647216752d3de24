package ids

import (
	"math"
	"strconv"
)

// MaxPrecision bounds the scale factor used by fixed-point conversion.
const MaxPrecision = 9

// undefRaw is the sentinel raw value meaning "absent" (UNDEF). It is
// excluded from the saturation range of FromFloat so a legitimate
// conversion can never collide with it.
const undefRaw = math.MinInt64

// Price is a fixed-point decimal: the represented value is
// Raw / 10^Precision. Arithmetic between two Prices is only valid when
// their Precision matches (both are exact integers at that scale).
type Price struct {
	Raw       int64
	Precision uint8
}

// UndefPrice is the distinguished "absent" sentinel (§3).
var UndefPrice = Price{Raw: undefRaw, Precision: 0}

func (p Price) IsUndef() bool { return p.Raw == undefRaw }

// PriceFromRaw constructs a Price directly from its scaled integer form.
func PriceFromRaw(raw int64, precision uint8) Price {
	return Price{Raw: raw, Precision: precision}
}

// PriceFromFloat converts f into fixed point at precision, rounding
// half-to-even and saturating Raw on overflow.
func PriceFromFloat(f float64, precision uint8) Price {
	return Price{Raw: toRaw(f, precision), Precision: precision}
}

func (p Price) AsFloat() float64 {
	if p.IsUndef() {
		return math.NaN()
	}
	return float64(p.Raw) / pow10(p.Precision)
}

// Add returns p+o. Both operands must share Precision.
func (p Price) Add(o Price) Price {
	mustSamePrecision(p.Precision, o.Precision)
	return Price{Raw: p.Raw + o.Raw, Precision: p.Precision}
}

// Sub returns p-o. Both operands must share Precision.
func (p Price) Sub(o Price) Price {
	mustSamePrecision(p.Precision, o.Precision)
	return Price{Raw: p.Raw - o.Raw, Precision: p.Precision}
}

func (p Price) Equal(o Price) bool { return p.Raw == o.Raw && p.Precision == o.Precision }
func (p Price) Less(o Price) bool  { return p.Raw < o.Raw }
func (p Price) Greater(o Price) bool { return p.Raw > o.Raw }

func (p Price) String() string {
	if p.IsUndef() {
		return "UNDEF"
	}
	return strconv.FormatFloat(p.AsFloat(), 'f', int(p.Precision), 64)
}

// Quantity is a non-negative fixed-point decimal, same representation as Price.
type Quantity struct {
	Raw       uint64
	Precision uint8
}

func QuantityFromRaw(raw uint64, precision uint8) Quantity {
	return Quantity{Raw: raw, Precision: precision}
}

func QuantityFromFloat(f float64, precision uint8) Quantity {
	if f < 0 {
		f = 0
	}
	raw := toRaw(f, precision)
	if raw < 0 {
		raw = 0
	}
	return Quantity{Raw: uint64(raw), Precision: precision}
}

func (q Quantity) AsFloat() float64 { return float64(q.Raw) / pow10(q.Precision) }
func (q Quantity) IsZero() bool     { return q.Raw == 0 }

func (q Quantity) String() string {
	return strconv.FormatFloat(q.AsFloat(), 'f', int(q.Precision), 64)
}

func (q Quantity) Add(o Quantity) Quantity {
	mustSamePrecision(q.Precision, o.Precision)
	return Quantity{Raw: q.Raw + o.Raw, Precision: q.Precision}
}

// Sub returns q-o, floored at zero (quantities never go negative).
func (q Quantity) Sub(o Quantity) Quantity {
	mustSamePrecision(q.Precision, o.Precision)
	if o.Raw >= q.Raw {
		return Quantity{Raw: 0, Precision: q.Precision}
	}
	return Quantity{Raw: q.Raw - o.Raw, Precision: q.Precision}
}

func mustSamePrecision(a, b uint8) {
	if a != b {
		panic("ids: arithmetic between mismatched precisions")
	}
}

func pow10(precision uint8) float64 { return math.Pow(10, float64(precision)) }

// toRaw rounds f*10^precision half-to-even and saturates to the int64 range,
// reserving math.MinInt64 for the UNDEF sentinel.
func toRaw(f float64, precision uint8) int64 {
	scaled := f * pow10(precision)
	rounded := roundHalfEven(scaled)
	switch {
	case rounded >= math.MaxInt64:
		return math.MaxInt64
	case rounded <= undefRaw:
		return undefRaw + 1
	default:
		return int64(rounded)
	}
}

func roundHalfEven(x float64) float64 {
	floor := math.Floor(x)
	diff := x - floor
	switch {
	case diff < 0.5:
		return floor
	case diff > 0.5:
		return floor + 1
	default:
		if math.Mod(floor, 2) == 0 {
			return floor
		}
		return floor + 1
	}
}

package rates

import "math"

// ServiceFeeJPY computes the intermediary's service fee for one item.
// The brackets were fit from observed orders; the schedule is not monotonic
// around the 10000 JPY boundary (fee(9999) > fee(10000)) because that is what
// the real fee data shows.
func ServiceFeeJPY(itemPriceJPY float64) float64 {
	if itemPriceJPY <= 0 {
		return 0
	}
	var rate float64
	switch {
	case itemPriceJPY < 9000:
		rate = 0.0473
	case itemPriceJPY < 10000:
		rate = 0.078
	default:
		rate = 0.0717
	}
	return math.Round(itemPriceJPY * rate)
}

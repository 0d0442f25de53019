package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceFeeJPY(t *testing.T) {
	tests := []struct {
		priceJPY float64
		feeJPY   float64
	}{
		{0, 0},
		{-100, 0},
		{5000, 237},
		{8980, 425},
		{8999, 426},
		{9000, 702},
		{9500, 741},
		{9999, 780},
		{10000, 717},
		{15000, 1076},
		{100000, 7170},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.feeJPY, ServiceFeeJPY(tt.priceJPY), "price %v", tt.priceJPY)
	}
}

func TestServiceFeeBracketJumps(t *testing.T) {
	// The schedule steps up at 9000 and back down at 10000; both jumps come
	// straight from the fitted data.
	assert.Greater(t, ServiceFeeJPY(9000), ServiceFeeJPY(8999))
	assert.Greater(t, ServiceFeeJPY(9999), ServiceFeeJPY(10000))
}

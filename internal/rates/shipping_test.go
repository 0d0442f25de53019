package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumetricWeight(t *testing.T) {
	assert.InDelta(t, 1.8, VolumetricWeight(30, 20, 15), 1e-9)
	assert.Equal(t, 0.0, VolumetricWeight(0, 20, 15))
	assert.Equal(t, 0.0, VolumetricWeight(30, 20, 0))
}

func TestChargeableWeight(t *testing.T) {
	// Bulky but light: volumetric wins.
	assert.InDelta(t, 1.8, ChargeableWeight(1.0, 1.8), 1e-9)
	// Dense: actual wins.
	assert.InDelta(t, 3.0, ChargeableWeight(3.0, 1.8), 1e-9)
}

func TestQuote(t *testing.T) {
	// 1.0 kg actual, 30x20x15 cm -> volumetric 1.8 -> chargeable 1.8 -> the
	// 2.0 kg break.
	quotes := Quote(1.0, 30, 20, 15)

	assert.Len(t, quotes, 5)
	assert.Equal(t, 12600.0, quotes[CarrierFedExAir].CostJPY)
	assert.Equal(t, 3, quotes[CarrierFedExAir].DeliveryDays)

	assert.InDelta(t, 9450.0, quotes[CarrierEMS].CostJPY, 1e-9)
	assert.Equal(t, 5, quotes[CarrierEMS].DeliveryDays)
	assert.InDelta(t, 10710.0, quotes[CarrierFedExEconomy].CostJPY, 1e-9)
	assert.InDelta(t, 11970.0, quotes[CarrierDHL].CostJPY, 1e-9)
	assert.InDelta(t, 11340.0, quotes[CarrierBuyeeAir].CostJPY, 1e-9)

	// USD stays zero until the engine converts the chosen quote.
	assert.Equal(t, 0.0, quotes[CarrierEMS].CostUSD)
}

func TestQuoteWeightBreaks(t *testing.T) {
	tests := []struct {
		weightKg float64
		baseJPY  float64
	}{
		{0.2, 5400},
		{0.3, 5400},
		{0.4, 6500},
		{0.8, 8278},
		{1.2, 10000},
		{2.0, 12600},
	}
	for _, tt := range tests {
		quotes := Quote(tt.weightKg, 0, 0, 0)
		assert.Equal(t, tt.baseJPY, quotes[CarrierFedExAir].CostJPY, "weight %v", tt.weightKg)
	}
}

func TestQuoteOverweight(t *testing.T) {
	// 4.5 kg: 12600 + 2.5*3000.
	quotes := Quote(4.5, 0, 0, 0)
	assert.InDelta(t, 20100.0, quotes[CarrierFedExAir].CostJPY, 1e-9)
}

func TestDomesticShippingJPY(t *testing.T) {
	assert.Equal(t, 0.0, DomesticShippingJPY(0))
	assert.Equal(t, 800.0, DomesticShippingJPY(0.2))
	assert.Equal(t, 1000.0, DomesticShippingJPY(0.4))
	assert.Equal(t, 1200.0, DomesticShippingJPY(0.5))
	assert.Equal(t, 1200.0, DomesticShippingJPY(3))
}

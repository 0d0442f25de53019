package rates

import (
	"math"

	"github.com/maltedev/buyee-landed-cost/internal/models"
)

// Carrier names quoted by the shipping model.
const (
	CarrierFedExAir     = "FedEx Air"
	CarrierEMS          = "EMS"
	CarrierFedExEconomy = "FedEx Economy"
	CarrierDHL          = "DHL"
	CarrierBuyeeAir     = "Buyee Air Delivery"
)

// DefaultCarrier is substituted when a requested method is not quoted.
const DefaultCarrier = CarrierEMS

// Carriers bill on the greater of actual and volumetric weight; the divisor
// is the cm->kg convention used by the forwarder.
const volumetricDivisor = 5000

type weightBreak struct {
	maxKg   float64
	costJPY float64
}

// FedEx Air base rates in JPY, calibrated from observed forwarder orders.
var fedexAirBreaks = []weightBreak{
	{0.3, 5400},
	{0.5, 6500},
	{1.0, 8278},
	{1.5, 10000},
	{2.0, 12600},
}

// Per-kg surcharge above the last weight break.
const overweightPerKgJPY = 3000

const fedexAirDeliveryDays = 3

// The remaining carriers track the base rate by a fixed fraction: observed
// carrier prices move together with weight rather than independently.
var derivedCarriers = []struct {
	name         string
	factor       float64
	deliveryDays int
}{
	{CarrierEMS, 0.75, 5},
	{CarrierFedExEconomy, 0.85, 7},
	{CarrierBuyeeAir, 0.90, 4},
	{CarrierDHL, 0.95, 4},
}

// VolumetricWeight returns the dimensional weight in kg; 0 when any side is
// unknown.
func VolumetricWeight(lengthCm, widthCm, heightCm float64) float64 {
	if lengthCm <= 0 || widthCm <= 0 || heightCm <= 0 {
		return 0
	}
	return lengthCm * widthCm * heightCm / volumetricDivisor
}

// ChargeableWeight is what the carrier actually bills on.
func ChargeableWeight(actualKg, volumetricKg float64) float64 {
	return math.Max(actualKg, volumetricKg)
}

func baseRateJPY(chargeableKg float64) float64 {
	for _, b := range fedexAirBreaks {
		if chargeableKg <= b.maxKg {
			return b.costJPY
		}
	}
	last := fedexAirBreaks[len(fedexAirBreaks)-1]
	return last.costJPY + (chargeableKg-last.maxKg)*overweightPerKgJPY
}

// Quote prices a shipment with every supported carrier. Pure function of the
// four inputs; it never fails.
func Quote(weightKg, lengthCm, widthCm, heightCm float64) map[string]models.ShippingQuote {
	chargeable := ChargeableWeight(weightKg, VolumetricWeight(lengthCm, widthCm, heightCm))
	base := baseRateJPY(chargeable)

	quotes := map[string]models.ShippingQuote{
		CarrierFedExAir: {
			Carrier:      CarrierFedExAir,
			CostJPY:      base,
			DeliveryDays: fedexAirDeliveryDays,
		},
	}
	for _, c := range derivedCarriers {
		quotes[c.name] = models.ShippingQuote{
			Carrier:      c.name,
			CostJPY:      base * c.factor,
			DeliveryDays: c.deliveryDays,
		}
	}
	return quotes
}

// DomesticShippingJPY estimates within-Japan shipping from resolved weight
// using a 3-tier step function.
func DomesticShippingJPY(weightKg float64) float64 {
	switch {
	case weightKg <= 0:
		return 0
	case weightKg < 0.3:
		return 800
	case weightKg < 0.5:
		return 1000
	default:
		return 1200
	}
}

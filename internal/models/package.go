package models

// PackageInfo is the normalized record extracted from a marketplace page.
// Physical fields use 0 to mean "not yet determined"; the extractor resolves
// every zero before the cost pipeline divides by or ships against it.
type PackageInfo struct {
	ItemPriceJPY        float64 `json:"item_price_jpy"`
	DeclaredValueJPY    float64 `json:"declared_value_jpy"`
	WeightKg            float64 `json:"weight_kg"`
	LengthCm            float64 `json:"length_cm"`
	WidthCm             float64 `json:"width_cm"`
	HeightCm            float64 `json:"height_cm"`
	DomesticShippingJPY float64 `json:"domestic_shipping_jpy"`
	ServiceFeeJPY       float64 `json:"service_fee_jpy"`
	ItemName            string  `json:"item_name"`
	SourceID            string  `json:"source_id"`
}

// SetPrice sets the item price and keeps the customs declared value in sync.
func (p *PackageInfo) SetPrice(priceJPY float64) {
	p.ItemPriceJPY = priceJPY
	p.DeclaredValueJPY = priceJPY
}

func (p *PackageInfo) HasDimensions() bool {
	return p.LengthCm > 0 && p.WidthCm > 0 && p.HeightCm > 0
}

// ShippingQuote is one carrier's price for a shipment. CostUSD is 0 until the
// engine converts the selected quote with the live exchange rate.
type ShippingQuote struct {
	Carrier      string  `json:"carrier"`
	CostJPY      float64 `json:"cost_jpy"`
	CostUSD      float64 `json:"cost_usd"`
	DeliveryDays int     `json:"delivery_days"`
}

// LandedCost is the engine's sole output: the full cost breakdown in both
// currencies. Customs lines exist only in USD; the JPY total therefore
// excludes them while the USD total includes all six lines.
type LandedCost struct {
	ItemPriceJPY             float64 `json:"item_price_jpy"`
	ItemPriceUSD             float64 `json:"item_price_usd"`
	DomesticShippingJPY      float64 `json:"domestic_shipping_jpy"`
	DomesticShippingUSD      float64 `json:"domestic_shipping_usd"`
	ServiceFeeJPY            float64 `json:"service_fee_jpy"`
	ServiceFeeUSD            float64 `json:"service_fee_usd"`
	InternationalShippingJPY float64 `json:"international_shipping_jpy"`
	InternationalShippingUSD float64 `json:"international_shipping_usd"`
	CustomsDutyUSD           float64 `json:"customs_duty_usd"`
	CustomsProcessingUSD     float64 `json:"customs_processing_usd"`
	TotalJPY                 float64 `json:"total_jpy"`
	TotalUSD                 float64 `json:"total_usd"`
	ExchangeRate             float64 `json:"exchange_rate"`
	ShippingMethod           string  `json:"shipping_method"`
}

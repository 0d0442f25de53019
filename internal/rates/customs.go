package rates

// TariffRate is the flat duty applied to the declared value on import.
const TariffRate = 0.15

// ProcessingFeeUSD is the fixed broker processing fee charged whenever any
// duty is owed.
const ProcessingFeeUSD = 5.0

// Customs returns the duty and processing fee in USD for a declared value.
func Customs(declaredValueUSD float64) (dutyUSD, processingUSD float64) {
	if declaredValueUSD <= 0 {
		return 0, 0
	}
	return declaredValueUSD * TariffRate, ProcessingFeeUSD
}

package rates

import "github.com/maltedev/buyee-landed-cost/internal/models"

// Per-package handling fee for every package beyond the first when combining
// shipments at the warehouse.
const consolidationFeePerExtraJPY = 500

// ConsolidationFeeJPY is the warehouse handling fee for combining n packages.
func ConsolidationFeeJPY(n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(n-1) * consolidationFeePerExtraJPY
}

// Consolidate merges several packages into the single box the warehouse would
// repack them into: weights add, the footprint is the largest length and
// width, and heights stack.
//
// When no package carries dimensions, the combined box is estimated from the
// total weight instead, since the carriers still need a volumetric figure.
func Consolidate(pkgs []models.PackageInfo) models.PackageInfo {
	var combined models.PackageInfo
	anyDims := false
	for _, p := range pkgs {
		combined.WeightKg += p.WeightKg
		combined.ItemPriceJPY += p.ItemPriceJPY
		combined.DeclaredValueJPY += p.DeclaredValueJPY
		combined.DomesticShippingJPY += p.DomesticShippingJPY
		combined.ServiceFeeJPY += p.ServiceFeeJPY
		if p.HasDimensions() {
			anyDims = true
			if p.LengthCm > combined.LengthCm {
				combined.LengthCm = p.LengthCm
			}
			if p.WidthCm > combined.WidthCm {
				combined.WidthCm = p.WidthCm
			}
			combined.HeightCm += p.HeightCm
		}
	}
	if !anyDims {
		combined.LengthCm, combined.WidthCm, combined.HeightCm = dimsFromWeight(combined.WeightKg)
	}
	return combined
}

// dimsFromWeight estimates box dimensions for a combined shipment whose
// individual packages never reported any.
func dimsFromWeight(weightKg float64) (l, w, h float64) {
	switch {
	case weightKg < 0.5:
		return 30, 20, 15
	case weightKg < 1:
		return 40, 30, 20
	case weightKg < 2:
		return 50, 40, 25
	default:
		return 60, 50, 30
	}
}

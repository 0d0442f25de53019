package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/buyee-landed-cost/internal/models"
	"github.com/maltedev/buyee-landed-cost/internal/observability"
	"github.com/maltedev/buyee-landed-cost/internal/rates"
)

var (
	ErrMissingLink        = errors.New("no link provided")
	ErrMissingDestination = errors.New("destination address and ZIP code are required")
	ErrNoLinks            = errors.New("no links provided")
)

// PackageExtractor turns a marketplace link into a PackageInfo.
type PackageExtractor interface {
	Extract(ctx context.Context, link string) (*models.PackageInfo, error)
}

// RateSource supplies the JPY->USD rate. Implementations never fail; they
// degrade to a fallback rate instead.
type RateSource interface {
	Rate(ctx context.Context) float64
}

// Request is one landed-cost calculation. Manual fields override whatever
// extraction finds; a full set of price, weight, and dimensions skips the
// page fetch entirely.
type Request struct {
	Link               string
	ShippingMethod     string
	DestinationAddress string
	DestinationZip     string

	ManualPriceJPY float64
	ManualWeightKg float64
	ManualLengthCm float64
	ManualWidthCm  float64
	ManualHeightCm float64
}

// Result pairs the extracted package with its full cost breakdown.
type Result struct {
	Package *models.PackageInfo
	Cost    models.LandedCost
}

type BatchRequest struct {
	Links              []string
	ShippingMethod     string
	DestinationAddress string
	DestinationZip     string
	Consolidated       bool
}

// LinkResult isolates one link's outcome so a single bad listing cannot sink
// the batch.
type LinkResult struct {
	Link    string
	Success bool
	Error   string
	Result  *Result
}

// ConsolidationSummary compares shipping everything in one repacked box
// against shipping each package separately.
type ConsolidationSummary struct {
	ConsolidatedTotalUSD    float64
	IndividualTotalUSD      float64
	SavingsUSD              float64
	ConsolidationFeeUSD     float64
	ConsolidatedShippingUSD float64
}

type BatchResult struct {
	Results       []LinkResult
	Consolidation *ConsolidationSummary
	TotalAllUSD   float64
	Count         int
	SuccessCount  int
	ExchangeRate  float64
}

// Engine runs the extraction-and-pricing pipeline end to end.
type Engine struct {
	extractor PackageExtractor
	rates     RateSource
	logger    *slog.Logger
}

func New(extractor PackageExtractor, rateSource RateSource, logger *slog.Logger) *Engine {
	return &Engine{
		extractor: extractor,
		rates:     rateSource,
		logger:    logger.With("component", "engine"),
	}
}

// Calculate prices a single link. Every JPY line converts with one rate
// fetched at the start, so the breakdown stays internally consistent.
func (e *Engine) Calculate(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	rate := e.rates.Rate(ctx)
	result, err := e.calculateWithRate(ctx, req, rate)
	if err != nil {
		observability.CalculationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.CalculationsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.Link) == "" {
		return ErrMissingLink
	}
	if strings.TrimSpace(req.DestinationAddress) == "" || strings.TrimSpace(req.DestinationZip) == "" {
		return ErrMissingDestination
	}
	return nil
}

func (e *Engine) calculateWithRate(ctx context.Context, req Request, rate float64) (*Result, error) {
	pkg, err := e.resolvePackage(ctx, req)
	if err != nil {
		return nil, err
	}

	if pkg.ServiceFeeJPY == 0 {
		pkg.ServiceFeeJPY = rates.ServiceFeeJPY(pkg.ItemPriceJPY)
	}

	quotes := rates.Quote(pkg.WeightKg, pkg.LengthCm, pkg.WidthCm, pkg.HeightCm)
	method := req.ShippingMethod
	if method == "" {
		method = rates.DefaultCarrier
	}
	selected, ok := quotes[method]
	if !ok {
		e.logger.Warn("unknown shipping method, using default",
			"requested", method, "default", rates.DefaultCarrier)
		method = rates.DefaultCarrier
		selected = quotes[method]
	}
	selected.CostUSD = selected.CostJPY * rate

	dutyUSD, processingUSD := rates.Customs(pkg.DeclaredValueJPY * rate)

	cost := models.LandedCost{
		ItemPriceJPY:             pkg.ItemPriceJPY,
		ItemPriceUSD:             pkg.ItemPriceJPY * rate,
		DomesticShippingJPY:      pkg.DomesticShippingJPY,
		DomesticShippingUSD:      pkg.DomesticShippingJPY * rate,
		ServiceFeeJPY:            pkg.ServiceFeeJPY,
		ServiceFeeUSD:            pkg.ServiceFeeJPY * rate,
		InternationalShippingJPY: selected.CostJPY,
		InternationalShippingUSD: selected.CostUSD,
		CustomsDutyUSD:           dutyUSD,
		CustomsProcessingUSD:     processingUSD,
		ExchangeRate:             rate,
		ShippingMethod:           method,
	}
	// Customs lines only exist in USD, so the JPY total carries the other
	// four lines while the USD total carries all six.
	cost.TotalJPY = cost.ItemPriceJPY + cost.DomesticShippingJPY + cost.ServiceFeeJPY + cost.InternationalShippingJPY
	cost.TotalUSD = cost.ItemPriceUSD + cost.DomesticShippingUSD + cost.ServiceFeeUSD +
		cost.InternationalShippingUSD + cost.CustomsDutyUSD + cost.CustomsProcessingUSD

	return &Result{Package: pkg, Cost: cost}, nil
}

// resolvePackage extracts the package from the link, unless the request
// supplies a full manual set, in which case the fetch is skipped and manual
// values stand alone. Partial overrides are applied on top of extraction, and
// extraction errors surface when overrides cannot cover for them.
func (e *Engine) resolvePackage(ctx context.Context, req Request) (*models.PackageInfo, error) {
	if req.ManualPriceJPY > 0 && req.ManualWeightKg > 0 &&
		req.ManualLengthCm > 0 && req.ManualWidthCm > 0 && req.ManualHeightCm > 0 {
		pkg := &models.PackageInfo{
			WeightKg: req.ManualWeightKg,
			LengthCm: req.ManualLengthCm,
			WidthCm:  req.ManualWidthCm,
			HeightCm: req.ManualHeightCm,
		}
		pkg.SetPrice(req.ManualPriceJPY)
		pkg.DomesticShippingJPY = rates.DomesticShippingJPY(pkg.WeightKg)
		return pkg, nil
	}

	pkg, err := e.extractor.Extract(ctx, req.Link)
	if err != nil {
		return nil, fmt.Errorf("extracting package info: %w", err)
	}

	if req.ManualPriceJPY > 0 {
		pkg.SetPrice(req.ManualPriceJPY)
	}
	if req.ManualWeightKg > 0 {
		pkg.WeightKg = req.ManualWeightKg
	}
	if req.ManualLengthCm > 0 {
		pkg.LengthCm = req.ManualLengthCm
	}
	if req.ManualWidthCm > 0 {
		pkg.WidthCm = req.ManualWidthCm
	}
	if req.ManualHeightCm > 0 {
		pkg.HeightCm = req.ManualHeightCm
	}
	return pkg, nil
}

// CalculateBatch prices several links with one exchange rate. Each link is
// isolated; consolidated mode additionally prices everything as a single
// repacked box and reports the difference.
func (e *Engine) CalculateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if strings.TrimSpace(req.DestinationAddress) == "" || strings.TrimSpace(req.DestinationZip) == "" {
		return nil, ErrMissingDestination
	}
	if len(req.Links) == 0 {
		return nil, ErrNoLinks
	}

	rate := e.rates.Rate(ctx)
	batch := &BatchResult{ExchangeRate: rate}

	for _, link := range req.Links {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}

		result, err := e.calculateWithRate(ctx, Request{
			Link:               link,
			ShippingMethod:     req.ShippingMethod,
			DestinationAddress: req.DestinationAddress,
			DestinationZip:     req.DestinationZip,
		}, rate)
		if err != nil {
			e.logger.Warn("batch link failed", "link", link, "error", err)
			observability.CalculationsTotal.WithLabelValues("error").Inc()
			batch.Results = append(batch.Results, LinkResult{Link: link, Error: err.Error()})
			continue
		}
		observability.CalculationsTotal.WithLabelValues("success").Inc()
		batch.Results = append(batch.Results, LinkResult{Link: link, Success: true, Result: result})
		batch.SuccessCount++
		batch.TotalAllUSD += result.Cost.TotalUSD
	}
	batch.Count = len(batch.Results)

	if req.Consolidated && batch.SuccessCount > 1 {
		batch.Consolidation = e.consolidate(batch, req.ShippingMethod, rate)
		batch.TotalAllUSD = batch.Consolidation.ConsolidatedTotalUSD
	}
	return batch, nil
}

// consolidate reprices the batch's successful packages as one combined box:
// item, domestic, and fee lines are kept per package, international shipping
// is quoted once on the combined box, and customs applies to the combined
// declared value.
func (e *Engine) consolidate(batch *BatchResult, method string, rate float64) *ConsolidationSummary {
	var pkgs []models.PackageInfo
	var itemUSD, domesticUSD, feeUSD, individualUSD float64
	for _, r := range batch.Results {
		if !r.Success {
			continue
		}
		pkgs = append(pkgs, *r.Result.Package)
		itemUSD += r.Result.Cost.ItemPriceUSD
		domesticUSD += r.Result.Cost.DomesticShippingUSD
		feeUSD += r.Result.Cost.ServiceFeeUSD
		individualUSD += r.Result.Cost.TotalUSD
	}

	combined := rates.Consolidate(pkgs)
	quotes := rates.Quote(combined.WeightKg, combined.LengthCm, combined.WidthCm, combined.HeightCm)
	selected, ok := quotes[method]
	if !ok {
		selected = quotes[rates.DefaultCarrier]
	}
	shippingUSD := selected.CostJPY * rate
	consolidationFeeUSD := rates.ConsolidationFeeJPY(len(pkgs)) * rate

	dutyUSD, processingUSD := rates.Customs(itemUSD)

	consolidatedUSD := itemUSD + domesticUSD + feeUSD + consolidationFeeUSD + shippingUSD + dutyUSD + processingUSD

	return &ConsolidationSummary{
		ConsolidatedTotalUSD:    consolidatedUSD,
		IndividualTotalUSD:      individualUSD,
		SavingsUSD:              individualUSD - consolidatedUSD,
		ConsolidationFeeUSD:     consolidationFeeUSD,
		ConsolidatedShippingUSD: shippingUSD,
	}
}

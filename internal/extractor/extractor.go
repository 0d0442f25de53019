package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/buyee-landed-cost/internal/category"
	"github.com/maltedev/buyee-landed-cost/internal/fetch"
	"github.com/maltedev/buyee-landed-cost/internal/marketplace"
	"github.com/maltedev/buyee-landed-cost/internal/models"
	"github.com/maltedev/buyee-landed-cost/internal/observability"
	"github.com/maltedev/buyee-landed-cost/internal/rates"
)

// Extractor scrapes listing and shipment pages into PackageInfo. Extraction
// is best-effort: unparsable fields come back zero and get estimated from the
// item's category, so the only hard failures are fetch errors and HTML the
// parser cannot read at all.
type Extractor struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func New(fetcher fetch.Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		logger:  logger.With("component", "extractor"),
	}
}

func (e *Extractor) Extract(ctx context.Context, link string) (*models.PackageInfo, error) {
	html, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	return e.ExtractFromHTML(link, html)
}

// ExtractFromHTML runs the full extraction against already-fetched HTML.
func (e *Extractor) ExtractFromHTML(link, html string) (*models.PackageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	if marketplace.IsItemLink(link) {
		return e.extractItem(link, doc), nil
	}
	return e.extractShipment(link, doc), nil
}

// extractItem handles unpurchased listing pages, where the marketplace layout
// drives price extraction.
func (e *Extractor) extractItem(link string, doc *goquery.Document) *models.PackageInfo {
	market := marketplace.Detect(link)
	pkg := &models.PackageInfo{SourceID: marketplace.ItemID(link)}

	pkg.ItemName = extractName(doc)

	price, stage := extractPrice(doc, market)
	if price > 0 {
		pkg.SetPrice(price)
		observability.PriceStageTotal.WithLabelValues(stage).Inc()
		e.logger.Debug("extracted price", "link", link, "price_jpy", price, "stage", stage)
	} else {
		e.logger.Warn("no price found on page", "link", link, "marketplace", market)
	}

	pageText := doc.Text()
	pkg.WeightKg = parseWeight(pageText)
	pkg.LengthCm, pkg.WidthCm, pkg.HeightCm = parseDimensions(pageText)

	e.resolvePhysical(pkg)
	return pkg
}

// extractShipment handles already-purchased package pages awaiting forwarding.
// These carry free-text weight and dimensions from the warehouse; the price
// line is whatever total the page shows.
func (e *Extractor) extractShipment(link string, doc *goquery.Document) *models.PackageInfo {
	pkg := &models.PackageInfo{SourceID: marketplace.PackageID(link)}

	if name := firstText(doc, "h1"); name != "" {
		pkg.ItemName = name
	} else {
		pkg.ItemName = firstText(doc, "title")
	}

	pageText := doc.Text()
	if price := parseShipmentPrice(pageText); price > 0 {
		pkg.SetPrice(price)
	}
	pkg.WeightKg = parseWeight(pageText)
	pkg.LengthCm, pkg.WidthCm, pkg.HeightCm = parseDimensions(pageText)

	e.resolvePhysical(pkg)
	return pkg
}

// resolvePhysical fills every still-zero physical field. Weight and
// dimensions fall back to the item's category estimate independently, and
// domestic shipping is stepped off whatever weight that leaves.
func (e *Extractor) resolvePhysical(pkg *models.PackageInfo) {
	if pkg.WeightKg == 0 || !pkg.HasDimensions() {
		cat := category.Classify(pkg.ItemName, "")
		if pkg.WeightKg == 0 {
			pkg.WeightKg = category.Weight(cat)
			e.logger.Debug("estimated weight from category", "category", cat, "weight_kg", pkg.WeightKg)
		}
		if !pkg.HasDimensions() {
			pkg.LengthCm, pkg.WidthCm, pkg.HeightCm = category.Dimensions(cat)
			e.logger.Debug("estimated dimensions from category", "category", cat,
				"length_cm", pkg.LengthCm, "width_cm", pkg.WidthCm, "height_cm", pkg.HeightCm)
		}
	}
	if pkg.DomesticShippingJPY == 0 {
		pkg.DomesticShippingJPY = rates.DomesticShippingJPY(pkg.WeightKg)
	}
}

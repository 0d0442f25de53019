package extractor

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/buyee-landed-cost/internal/marketplace"
)

// Listing prices outside this range are noise: below are shipping lines and
// fee fragments, above are phone numbers and product IDs that happen to sit
// next to a yen marker.
const (
	minPlausiblePriceJPY = 100
	maxPlausiblePriceJPY = 10_000_000
)

// Recommendation carousels repeat other listings' prices all over the page;
// they are stripped before any selector or free-text matching.
const recommendedSelectors = `.recommendItem, .recommend-item, [class*="recommendItem"], [class*="recommend-item"], [class*="similar"]`

var (
	// "13,000 YEN", "13,000円"; full-width comma appears on some pages.
	markedPricePattern = regexp.MustCompile(`(?i)(\d{1,3}(?:[,，]\d{3}){0,3})\s*(?:円|YEN|JPY)`)

	// Free-text variants across all the marketplaces the proxy serves.
	pageTextPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,3}(?:[,，]\d{3})*)\s*円`),
		regexp.MustCompile(`¥\s*(\d{1,3}(?:[,，]\d{3})*)`),
		regexp.MustCompile(`(?i)JPY\s*(\d{1,3}(?:[,，]?\d{3})*)`),
		regexp.MustCompile(`(?i)(\d{1,3}(?:[,，]\d{3})*)\s*YEN`),
	}

	// Shipment pages show one total; first match wins.
	shipmentPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+[,，]\d+|\d+)\s*円`),
		regexp.MustCompile(`(?i)JPY\s*(\d+[,，]?\d*)`),
	}

	genericPriceSelectors = []string{
		".item-price",
		".product-price",
		`[data-testid="price"]`,
		".price-value",
		`div[class*="itemDetail"]`,
		`div[class*="ItemDetail"]`,
	}
)

func plausiblePrice(price float64) bool {
	return price >= minPlausiblePriceJPY && price <= maxPlausiblePriceJPY
}

func parsePriceNumber(s string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", "，", "").Replace(strings.TrimSpace(s))
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// extractPrice runs the ordered fallback chain and reports which stage won.
// Stages move from structured data toward raw text: each is less reliable
// than the one before, so the first plausible hit stops the chain.
func extractPrice(doc *goquery.Document, market marketplace.Marketplace) (float64, string) {
	if price := priceFromStructuredData(doc); price > 0 {
		return price, "structured_data"
	}
	if price := priceFromMetaTag(doc); price > 0 {
		return price, "meta_tag"
	}
	if price := priceFromDataAttribute(doc); price > 0 {
		return price, "data_attribute"
	}
	if price := priceFromSelectors(doc, market); price > 0 {
		return price, "selector"
	}
	if price := priceFromPageText(doc, market); price > 0 {
		return price, "page_text"
	}
	return 0, ""
}

// priceFromStructuredData reads JSON-LD offers, which may be a single object
// or a list.
func priceFromStructuredData(doc *goquery.Document) float64 {
	var found float64
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		offers, ok := data["offers"]
		if !ok {
			return true
		}
		switch v := offers.(type) {
		case map[string]any:
			if price, ok := offerPrice(v); ok {
				found = price
				return false
			}
		case []any:
			for _, o := range v {
				offer, ok := o.(map[string]any)
				if !ok {
					continue
				}
				if price, ok := offerPrice(offer); ok {
					found = price
					return false
				}
			}
		}
		return true
	})
	return found
}

func offerPrice(offer map[string]any) (float64, bool) {
	raw, ok := offer["price"]
	if !ok {
		return 0, false
	}
	var price float64
	switch v := raw.(type) {
	case float64:
		price = v
	case string:
		p, ok := parsePriceNumber(v)
		if !ok {
			return 0, false
		}
		price = p
	default:
		return 0, false
	}
	if !plausiblePrice(price) {
		return 0, false
	}
	return price, true
}

func priceFromMetaTag(doc *goquery.Document) float64 {
	content, exists := doc.Find(`meta[property="product:price:amount"]`).Attr("content")
	if !exists {
		return 0
	}
	if price, ok := parsePriceNumber(content); ok && plausiblePrice(price) {
		return price
	}
	return 0
}

func priceFromDataAttribute(doc *goquery.Document) float64 {
	var found float64
	doc.Find("[data-price]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, _ := s.Attr("data-price")
		if price, ok := parsePriceNumber(raw); ok && plausiblePrice(price) {
			found = price
			return false
		}
		return true
	})
	return found
}

// priceFromSelectors tries the marketplace's known price elements, then the
// generic ones. Recommendation subtrees come out of the DOM first so another
// listing's price cannot win.
func priceFromSelectors(doc *goquery.Document, market marketplace.Marketplace) float64 {
	doc.Find(recommendedSelectors).Remove()

	for _, selector := range market.PriceSelectors() {
		var found float64
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if price, ok := markedPrice(s.Text()); ok {
				found = price
				return false
			}
			return true
		})
		if found > 0 {
			return found
		}
	}

	// Generic selectors can match several elements; the main listing price is
	// usually the largest.
	var candidates []float64
	for _, selector := range genericPriceSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if price, ok := markedPrice(s.Text()); ok {
				candidates = append(candidates, price)
			}
		})
	}
	if len(candidates) == 0 {
		return 0
	}
	max := candidates[0]
	for _, p := range candidates[1:] {
		if p > max {
			max = p
		}
	}
	return max
}

// markedPrice parses a price out of element text only when the text carries
// an explicit currency marker.
func markedPrice(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	upper := strings.ToUpper(trimmed)
	if !strings.Contains(trimmed, "円") && !strings.Contains(trimmed, "¥") &&
		!strings.Contains(upper, "YEN") && !strings.Contains(upper, "JPY") {
		return 0, false
	}
	m := markedPricePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}
	price, ok := parsePriceNumber(m[1])
	if !ok || !plausiblePrice(price) {
		return 0, false
	}
	return price, true
}

// priceFromPageText is the last resort: every currency-marked number on the
// page, deduped, filtered by the marketplace's minimum listing floor, largest
// survivor wins. When the floor filters everything out the raw maximum is
// still better than nothing.
func priceFromPageText(doc *goquery.Document, market marketplace.Marketplace) float64 {
	doc.Find(`[class*="recommend"]`).Remove()
	pageText := doc.Text()

	seen := make(map[float64]struct{})
	var prices []float64
	for _, pattern := range pageTextPricePatterns {
		for _, m := range pattern.FindAllStringSubmatch(pageText, -1) {
			price, ok := parsePriceNumber(m[1])
			if !ok || !plausiblePrice(price) {
				continue
			}
			if _, dup := seen[price]; dup {
				continue
			}
			seen[price] = struct{}{}
			prices = append(prices, price)
		}
	}
	if len(prices) == 0 {
		return 0
	}
	sort.Float64s(prices)

	floor := market.MinItemPriceJPY()
	for i := len(prices) - 1; i >= 0; i-- {
		if prices[i] >= floor {
			return prices[i]
		}
	}
	return prices[len(prices)-1]
}

// parseShipmentPrice takes the first currency-marked number on a shipment
// page; those pages show a single order total rather than a listing grid.
func parseShipmentPrice(pageText string) float64 {
	for _, pattern := range shipmentPricePatterns {
		if m := pattern.FindStringSubmatch(pageText); m != nil {
			if price, ok := parsePriceNumber(m[1]); ok && price > 0 {
				return price
			}
		}
	}
	return 0
}

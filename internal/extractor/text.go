package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Free-text weight markers in priority order. Labeled Japanese fields first,
// then bare kg figures, then bare gram figures.
var weightPatterns = []struct {
	re    *regexp.Regexp
	grams bool
}{
	{re: regexp.MustCompile(`(?i)重量[：:]\s*(\d+\.?\d*)\s*kg`)},
	{re: regexp.MustCompile(`(?i)重さ[：:]\s*(\d+\.?\d*)\s*kg`)},
	{re: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*kg`)},
	{re: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g`), grams: true},
}

// A package cannot weigh less than 10 grams or more than 50 kg; matches
// outside that are clothing sizes, prices, or other stray numbers.
const (
	minWeightKg = 0.01
	maxWeightKg = 50
)

var dimensionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`サイズ[：:]\s*(\d+\.?\d*)\s*×\s*(\d+\.?\d*)\s*×\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*×\s*(\d+\.?\d*)\s*×\s*(\d+\.?\d*)\s*cm`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*cm`),
}

const (
	minDimensionCm = 0.1
	maxDimensionCm = 200
)

var titleSelectors = []string{
	"h1.product-title",
	"h1.item-title",
	".rakuma-item-title",
	".item-title",
	"h1",
	".product-name",
	".item-name",
	`[data-testid="item-title"]`,
	"title",
}

// The proxy appends its own branding to page titles.
var titleSuffixPattern = regexp.MustCompile(`(?is)\s*-\s*buyee.*$`)

// parseWeight finds the first plausible weight in page text, in kg. A bare
// gram figure above 10 is treated as grams and converted; at or below 10 the
// number is ambiguous enough to take as kg.
func parseWeight(pageText string) float64 {
	for _, p := range weightPatterns {
		m := p.re.FindStringSubmatch(pageText)
		if m == nil {
			continue
		}
		weight, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if p.grams && weight > 10 {
			weight /= 1000
		}
		if weight >= minWeightKg && weight <= maxWeightKg {
			return weight
		}
	}
	return 0
}

// parseDimensions finds the first plausible LxWxH triplet in page text, in cm.
func parseDimensions(pageText string) (length, width, height float64) {
	for _, pattern := range dimensionPatterns {
		m := pattern.FindStringSubmatch(pageText)
		if m == nil {
			continue
		}
		l, errL := strconv.ParseFloat(m[1], 64)
		w, errW := strconv.ParseFloat(m[2], 64)
		h, errH := strconv.ParseFloat(m[3], 64)
		if errL != nil || errW != nil || errH != nil {
			continue
		}
		if plausibleDimension(l) && plausibleDimension(w) && plausibleDimension(h) {
			return l, w, h
		}
	}
	return 0, 0, 0
}

func plausibleDimension(d float64) bool {
	return d >= minDimensionCm && d <= maxDimensionCm
}

// extractName walks the title selectors in priority order and strips the
// proxy's branding suffix.
func extractName(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		name := firstText(doc, selector)
		if name == "" {
			continue
		}
		name = strings.TrimSpace(titleSuffixPattern.ReplaceAllString(name, ""))
		if name != "" {
			return name
		}
	}
	return ""
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

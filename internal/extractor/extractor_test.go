package extractor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, link string) (string, error) {
	return s.html, s.err
}

func newTestExtractor(f *stubFetcher) *Extractor {
	return New(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractStructuredDataWinsOverPageText(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","offers":{"price":"12,500","priceCurrency":"JPY"}}</script>
	</head><body>
		<h1>Vintage Denim Jacket</h1>
		<div class="banner">9,999円</div>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m123", html)
	require.NoError(t, err)

	assert.Equal(t, 12500.0, pkg.ItemPriceJPY)
	assert.Equal(t, 12500.0, pkg.DeclaredValueJPY)
	assert.Equal(t, "Vintage Denim Jacket", pkg.ItemName)
	assert.Equal(t, "m123", pkg.SourceID)
}

func TestExtractStructuredDataOfferList(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"offers":[{"price":50},{"price":8500}]}</script>
	</head><body><h1>Item</h1></body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m1", html)
	require.NoError(t, err)

	// The 50 JPY offer is below the plausible floor; the next one wins.
	assert.Equal(t, 8500.0, pkg.ItemPriceJPY)
}

func TestExtractMetaTagPrice(t *testing.T) {
	html := `<html><head>
		<meta property="product:price:amount" content="7,300">
	</head><body><h1>Item</h1></body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m1", html)
	require.NoError(t, err)

	assert.Equal(t, 7300.0, pkg.ItemPriceJPY)
}

func TestExtractRakumaSelectorPrice(t *testing.T) {
	html := `<html><body>
		<h1 class="item-title">Porter Tanker Backpack - Buyee Japan</h1>
		<dl class="attrContainer__priceCompo"><dd class="attrContainer__price">13,000 YEN</dd></dl>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/rakuma/item/abc123", html)
	require.NoError(t, err)

	assert.Equal(t, 13000.0, pkg.ItemPriceJPY)
	assert.Equal(t, "Porter Tanker Backpack", pkg.ItemName)
	assert.Equal(t, "abc123", pkg.SourceID)
}

func TestExtractIgnoresRecommendedItems(t *testing.T) {
	html := `<html><body>
		<h1>Supreme Box Logo Tee</h1>
		<div class="m-goodsDetail__price">8,000円</div>
		<div class="recommendItem"><span>50,000円</span></div>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m777", html)
	require.NoError(t, err)

	assert.Equal(t, 8000.0, pkg.ItemPriceJPY)
}

func TestExtractPageTextFloorFallback(t *testing.T) {
	// Every candidate sits under the Yahoo 5000 JPY floor, so the raw
	// maximum is used instead.
	html := `<html><body>
		<h1>Small auction lot</h1>
		<p>Shipping: 300円</p>
		<p>Current bid: 1,200円</p>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/yahoo/b1050", html)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, pkg.ItemPriceJPY)
}

func TestExtractPageTextPicksLargestAboveFloor(t *testing.T) {
	html := `<html><body>
		<h1>Auction lot</h1>
		<p>Shipping: 1,200円</p>
		<p>Buyout: 18,500円</p>
		<p>Current bid: 12,000円</p>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/yahoo/b2000", html)
	require.NoError(t, err)

	assert.Equal(t, 18500.0, pkg.ItemPriceJPY)
}

func TestExtractWeightAndDimensionsFromText(t *testing.T) {
	html := `<html><body>
		<h1>Dr. Martens Boots</h1>
		<div class="m-goodsDetail__price">15,000円</div>
		<p>重量: 1.4 kg</p>
		<p>サイズ: 36 × 26 × 14</p>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m5", html)
	require.NoError(t, err)

	assert.Equal(t, 1.4, pkg.WeightKg)
	assert.Equal(t, 36.0, pkg.LengthCm)
	assert.Equal(t, 26.0, pkg.WidthCm)
	assert.Equal(t, 14.0, pkg.HeightCm)
	// Extracted weight >= 0.5 kg lands in the top domestic shipping tier.
	assert.Equal(t, 1200.0, pkg.DomesticShippingJPY)
}

func TestExtractCategoryFallback(t *testing.T) {
	html := `<html><body>
		<h1>Leather Boots</h1>
		<div class="m-goodsDetail__price">15,000円</div>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/item/mercari/m9", html)
	require.NoError(t, err)

	assert.Equal(t, 1.2, pkg.WeightKg)
	assert.Equal(t, 35.0, pkg.LengthCm)
	assert.Equal(t, 25.0, pkg.WidthCm)
	assert.Equal(t, 15.0, pkg.HeightCm)
	assert.Equal(t, 1200.0, pkg.DomesticShippingJPY)
}

func TestExtractShipmentPage(t *testing.T) {
	html := `<html><body>
		<h1>Package 123456</h1>
		<p>Total: 9,800円</p>
		<p>Weight: 0.8 kg</p>
		<p>20 × 15 × 10 cm</p>
	</body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/package/123456", html)
	require.NoError(t, err)

	assert.Equal(t, "123456", pkg.SourceID)
	assert.Equal(t, 9800.0, pkg.ItemPriceJPY)
	assert.Equal(t, 0.8, pkg.WeightKg)
	assert.Equal(t, 20.0, pkg.LengthCm)
}

func TestExtractShipmentPageEmpty(t *testing.T) {
	// Nothing parsable: physical fields come from the general category.
	html := `<html><body><h1>Package details</h1></body></html>`

	pkg, err := newTestExtractor(nil).ExtractFromHTML("https://buyee.jp/package/999", html)
	require.NoError(t, err)

	assert.Equal(t, 0.0, pkg.ItemPriceJPY)
	assert.Equal(t, 0.4, pkg.WeightKg)
	assert.Equal(t, 35.0, pkg.LengthCm)
	assert.Equal(t, 25.0, pkg.WidthCm)
	assert.Equal(t, 10.0, pkg.HeightCm)
	assert.Equal(t, 1000.0, pkg.DomesticShippingJPY)
}

func TestExtractFetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("status 403")
	ex := newTestExtractor(&stubFetcher{err: fetchErr})

	_, err := ex.Extract(context.Background(), "https://buyee.jp/item/mercari/m1")
	assert.ErrorIs(t, err, fetchErr)
}

func TestParseWeight(t *testing.T) {
	assert.Equal(t, 1.5, parseWeight("重量: 1.5 kg"))
	assert.Equal(t, 0.8, parseWeight("about 0.8kg total"))
	// Bare grams above 10 convert to kg.
	assert.Equal(t, 0.5, parseWeight("500g"))
	// Out-of-range values are rejected.
	assert.Equal(t, 0.0, parseWeight("100 kg"))
	assert.Equal(t, 0.0, parseWeight("no weight here"))
}

func TestParseDimensions(t *testing.T) {
	l, w, h := parseDimensions("サイズ: 35 × 25 × 10")
	assert.Equal(t, 35.0, l)
	assert.Equal(t, 25.0, w)
	assert.Equal(t, 10.0, h)

	l, w, h = parseDimensions("box 40x30x20 cm")
	assert.Equal(t, 40.0, l)
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 20.0, h)

	// A side above 200 cm invalidates the whole triplet.
	l, _, _ = parseDimensions("500 × 30 × 20 cm")
	assert.Equal(t, 0.0, l)
}

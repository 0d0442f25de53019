package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		link     string
		expected Marketplace
	}{
		{"https://buyee.jp/rakuma/item/abc123", Rakuma},
		{"https://buyee.jp/item/yahoo/x999", Yahoo},
		{"https://example.jp/auction/b1050", Yahoo},
		{"https://buyee.jp/item/mercari/m555", Mercari},
		{"https://buyee.jp/package/123456", Generic},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Detect(tt.link), tt.link)
	}
}

func TestIsItemLink(t *testing.T) {
	assert.True(t, IsItemLink("https://buyee.jp/item/detail/123456"))
	assert.True(t, IsItemLink("https://buyee.jp/rakuma/item/abc"))
	assert.True(t, IsItemLink("https://example.jp/auction/b1050"))
	// Host mention alone is enough even without an /item/ path.
	assert.True(t, IsItemLink("https://mercari-proxy.example.com/listing/555"))

	assert.False(t, IsItemLink("https://buyee.jp/package/123456"))
	assert.False(t, IsItemLink("https://buyee.jp/mypage/orders"))
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "abc123", ItemID("https://buyee.jp/rakuma/item/abc123"))
	assert.Equal(t, "abc123", ItemID("https://buyee.jp/rakuma/item/abc123?lang=en"))
	assert.Equal(t, "m99887766", ItemID("https://buyee.jp/item/mercari/m99887766"))
	assert.Equal(t, "", ItemID("https://buyee.jp/package/123456"))
}

func TestPackageID(t *testing.T) {
	assert.Equal(t, "123456", PackageID("https://buyee.jp/package/123456"))
	assert.Equal(t, "123456", PackageID("https://buyee.jp/mypage/package-123456"))
	assert.Equal(t, "", PackageID("https://buyee.jp/item/detail/123456"))
}

func TestMinItemPriceJPY(t *testing.T) {
	assert.Equal(t, 2000.0, Rakuma.MinItemPriceJPY())
	assert.Equal(t, 5000.0, Yahoo.MinItemPriceJPY())
	assert.Equal(t, 1000.0, Mercari.MinItemPriceJPY())
	assert.Equal(t, 1000.0, Generic.MinItemPriceJPY())
}

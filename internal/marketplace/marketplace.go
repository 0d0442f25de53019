package marketplace

import (
	"net/url"
	"regexp"
	"strings"
)

// Marketplace identifies which source site a proxy-shopping link points at.
// Detection keys off substrings in the link because the intermediary proxies
// every marketplace under its own domain.
type Marketplace string

const (
	Rakuma  Marketplace = "rakuma"
	Yahoo   Marketplace = "yahoo"
	Mercari Marketplace = "mercari"
	Generic Marketplace = "generic"
)

var (
	rakumaItemIDPattern  = regexp.MustCompile(`/rakuma/item/([^/?]+)`)
	genericItemIDPattern = regexp.MustCompile(`/item/[^/]+/([^/?]+)`)
	packageIDPattern     = regexp.MustCompile(`package[/\-]?(\d+)`)
)

// Detect resolves the marketplace once at the top of extraction; all
// marketplace-specific behavior dispatches on the result.
func Detect(link string) Marketplace {
	l := strings.ToLower(link)
	switch {
	case strings.Contains(l, "rakuma"):
		return Rakuma
	case strings.Contains(l, "yahoo"), strings.Contains(l, "auction"):
		return Yahoo
	case strings.Contains(l, "mercari"):
		return Mercari
	default:
		return Generic
	}
}

// IsItemLink reports whether a link points at an unpurchased listing rather
// than an already-purchased shipment awaiting forwarding.
func IsItemLink(link string) bool {
	path := ""
	if u, err := url.Parse(link); err == nil {
		path = strings.ToLower(u.Path)
	}
	if strings.Contains(path, "/item/") || strings.Contains(path, "/auction/") {
		return true
	}
	l := strings.ToLower(link)
	return strings.Contains(l, "yahoo") || strings.Contains(l, "mercari") || strings.Contains(l, "rakuma")
}

// ItemID parses the opaque listing identifier out of an item link; empty when
// the link carries none.
func ItemID(link string) string {
	path := link
	if u, err := url.Parse(link); err == nil {
		path = u.Path
	}
	if m := rakumaItemIDPattern.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	if m := genericItemIDPattern.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// PackageID parses the shipment identifier out of a package link.
func PackageID(link string) string {
	path := link
	if u, err := url.Parse(link); err == nil {
		path = u.Path
	}
	if m := packageIDPattern.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// MinItemPriceJPY is the floor applied to free-text price candidates before
// picking the largest one. Small figures on these pages are almost always
// shipping or fee line items, and each marketplace has a different typical
// floor for real listings.
func (m Marketplace) MinItemPriceJPY() float64 {
	switch m {
	case Rakuma:
		return 2000
	case Yahoo:
		return 5000
	default:
		return 1000
	}
}

// PriceSelectors returns the CSS selectors for the main listing price, in
// priority order. These are reverse-engineered from live proxy pages and are
// best-effort; the free-text stage backs them up.
func (m Marketplace) PriceSelectors() []string {
	switch m {
	case Rakuma:
		return []string{
			".attrContainer__price",
			"dl.attrContainer__priceCompo",
			`div[class*="attrContainer__price"]`,
			`span[class*="price"]`,
			`div[class*="price"]`,
			".item-price",
			".product-price",
		}
	case Yahoo:
		return []string{
			".current_price",
			"div.current_price",
			".price-tax",
			`div[class*="auction"] div[class*="price"]`,
			`div[class*="goodsDetail"] div[class*="price"]`,
		}
	case Mercari:
		return []string{
			".m-goodsDetail__price",
			"div.m-goodsDetail__price",
			"div.itemDetail__price",
			`div[class*="itemDetail"] div[class*="price"]`,
			".itemDetail__priceValue",
			`div.itemDetail__inner div[class*="price"]`,
		}
	default:
		return nil
	}
}

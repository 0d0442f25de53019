package category

import "strings"

// Category is the closed set of clothing categories used as a fallback source
// of package weight and dimensions when a listing page exposes neither.
type Category string

const (
	Footwear    Category = "footwear"
	Outerwear   Category = "outerwear"
	Pants       Category = "pants"
	TShirt      Category = "t_shirt"
	Hoodie      Category = "hoodie"
	Dress       Category = "dress"
	Accessories Category = "accessories"
	Jewelry     Category = "jewelry"
	General     Category = "general"
)

type estimate struct {
	weightKg float64
	lengthCm float64
	widthCm  float64
	heightCm float64
}

// Reference values per category: typical shipped weight and packed box size.
var estimates = map[Category]estimate{
	Footwear:    {1.2, 35, 25, 15},
	Outerwear:   {0.8, 45, 35, 10},
	Pants:       {0.4, 40, 30, 5},
	TShirt:      {0.2, 30, 25, 3},
	Hoodie:      {0.6, 35, 30, 8},
	Dress:       {0.5, 40, 30, 5},
	Accessories: {0.3, 25, 20, 10},
	Jewelry:     {0.1, 15, 10, 5},
	General:     {0.4, 35, 25, 10},
}

// Keyword rules in priority order; the first category with a matching keyword
// wins, so "leather boots with jacket lining" classifies as footwear.
var rules = []struct {
	cat      Category
	keywords []string
}{
	{Footwear, []string{"boot", "sneaker", "shoe", "sandal", "loafer", "スニーカー", "ブーツ", "靴"}},
	{Outerwear, []string{"jacket", "coat", "blazer", "parka", "bomber", "ジャケット", "コート"}},
	{Pants, []string{"pant", "jean", "trouser", "パンツ", "ジーンズ", "デニム"}},
	{TShirt, []string{"t-shirt", "tshirt", "tee", "shirt", "top", "blouse", "tシャツ", "シャツ"}},
	{Hoodie, []string{"hoodie", "sweatshirt", "sweater", "pullover", "フーディ", "スウェット"}},
	{Dress, []string{"dress", "skirt", "ドレス", "スカート"}},
	{Accessories, []string{"bag", "wallet", "purse", "backpack", "バッグ", "財布"}},
	{Jewelry, []string{"jewelry", "necklace", "ring", "bracelet", "watch", "アクセサリー", "時計"}},
}

// Classify maps free-text item name and description to a category. It is
// total: unmatched text falls back to General.
func Classify(name, description string) Category {
	text := strings.ToLower(name + " " + description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.cat
			}
		}
	}
	return General
}

// Weight returns the estimated package weight in kg for a category.
func Weight(c Category) float64 {
	e, ok := estimates[c]
	if !ok {
		e = estimates[General]
	}
	return e.weightKg
}

// Dimensions returns the estimated package dimensions in cm for a category.
func Dimensions(c Category) (lengthCm, widthCm, heightCm float64) {
	e, ok := estimates[c]
	if !ok {
		e = estimates[General]
	}
	return e.lengthCm, e.widthCm, e.heightCm
}

package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

const Currency = "ETH"

// CartTotal is the summary line under the cart.
type CartTotal struct {
	Count int
	Price string
}

func NewCartTotal(items []CartItem) CartTotal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price))
	}
	return CartTotal{
		Count: len(items),
		Price: sum.StringFixed(2) + " " + Currency,
	}
}

// FormatPrice renders a single NFT price for profile lists: two decimals,
// comma as decimal separator.
func FormatPrice(price float64) string {
	s := decimal.NewFromFloat(price).StringFixed(2)
	return strings.Replace(s, ".", ",", 1) + " " + Currency
}

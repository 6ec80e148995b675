package cart

import "github.com/shopspring/decimal"

// Provenance records which side of the sync boundary an item came from.
const (
	ProvenanceLocal  = "local"
	ProvenanceRemote = "remote"
)

// Item is one cart row. IDs are unique within a cart; a quantity of
// zero denotes deletion and is never stored.
type Item struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	ImageRef   string  `json:"imageRef"`
	Provenance string  `json:"provenance"`
}

// LineTotal is the item's price contribution, rounded to 2 decimals.
func (i Item) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.UnitPrice).
		Mul(decimal.NewFromInt(int64(i.Quantity))).
		Round(2)
}

// Total sums the line totals of a snapshot, rounded to 2 decimals.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

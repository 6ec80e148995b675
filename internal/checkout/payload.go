package checkout

import (
	"github.com/angelmondragon/packfinderz-client/internal/address"
	"github.com/angelmondragon/packfinderz-client/internal/cart"
	"github.com/shopspring/decimal"
)

// orderPayload is the normalized order-create body: numeric address
// id, monetary amounts rounded to 2 decimals, minimal item rows.
type orderPayload struct {
	AddressID   int64         `json:"addressId" validate:"required,gt=0"`
	UserID      string        `json:"userId" validate:"required"`
	TotalAmount float64       `json:"totalAmount" validate:"gte=0"`
	Items       []payloadItem `json:"items" validate:"required,min=1,dive"`
}

type payloadItem struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"price" validate:"gte=0"`
}

func buildPayload(items []cart.Item, addr address.Address, userID string) orderPayload {
	rows := make([]payloadItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, payloadItem{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: roundMoney(item.UnitPrice),
		})
	}
	return orderPayload{
		AddressID:   addr.ID,
		UserID:      userID,
		TotalAmount: cart.Total(items).InexactFloat64(),
		Items:       rows,
	}
}

func roundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

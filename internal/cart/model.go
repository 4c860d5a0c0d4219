package cart

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"

type Item struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	Quantity int          `json:"quantity"`
}

// Badge is the count shown on the cart icon; hidden while the cart is empty.
type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

func NewBadge(count int) Badge {
	return Badge{Count: count, Visible: count > 0}
}

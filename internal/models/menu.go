package models

import (
	"github.com/uptrace/bun"
)

// MenuItem is a catalog entry. Available acts as a soft-delete flag; orders
// may only reference items that are still available.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID        string  `bun:"id,pk" json:"id"`
	Name      string  `bun:"name,unique,notnull" json:"name"`
	Price     float64 `bun:"price,notnull" json:"price"`
	Available bool    `bun:"available" json:"available"`
}

// OrderItem links one user to one menu item with a quantity. A user's rows
// are replaced wholesale on every order submission.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         string `bun:"id,pk" json:"-"`
	UserID     string `bun:"user_id,notnull" json:"-"`
	MenuItemID string `bun:"menu_item_id,notnull" json:"menuItemId"`
	Quantity   int    `bun:"quantity,notnull" json:"quantity"`
}

// OrderLine is an order item expanded with catalog details for listings.
type OrderLine struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// UserOrder groups one user's expanded order for the kitchen listing.
type UserOrder struct {
	Name         string      `json:"name"`
	OrderedItems []OrderLine `json:"orderedItems"`
}

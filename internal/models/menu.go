package models

import "github.com/shopspring/decimal"

// Store is a single vendor whose menu, orders and realtime room are isolated
// from every other store.
type Store struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// MenuItem represents a dish offered by a store.
// Items are never deleted, only deactivated through IsAvailable.
type MenuItem struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"isAvailable"`
	Category    string          `json:"category"`
}

// MenuStats counts the items of a store menu.
type MenuStats struct {
	StoreID        string `json:"storeId"`
	TotalItems     int    `json:"totalItems"`
	AvailableItems int    `json:"availableItems"`
}

package repository

import (
	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
)

const (
	MainStoreID    = "store-main"
	StationStoreID = "store-station"
)

// SeedStores returns the stores served out of the box
func SeedStores() []models.Store {
	return []models.Store{
		{ID: MainStoreID, Slug: "main-street", Name: "Main Street Chai"},
		{ID: StationStoreID, Slug: "station-road", Name: "Station Road Kiosk"},
	}
}

// SeedMenu returns the default menu of every seeded store
func SeedMenu() []models.MenuItem {
	item := func(storeID, id, name string, price int64, category string) models.MenuItem {
		return models.MenuItem{
			ID:          id,
			StoreID:     storeID,
			Name:        name,
			Price:       decimal.NewFromInt(price),
			IsAvailable: true,
			Category:    category,
		}
	}

	return []models.MenuItem{
		item(MainStoreID, "1", "Masala Chai", 60, "Beverages"),
		item(MainStoreID, "2", "Samosa", 15, "Snacks"),
		item(MainStoreID, "3", "Vada Pav", 25, "Snacks"),
		item(MainStoreID, "4", "Filter Coffee", 40, "Beverages"),
		item(MainStoreID, "5", "Paneer Roll", 90, "Rolls"),
		item(MainStoreID, "6", "Veg Thali", 150, "Meals"),
		item(MainStoreID, "7", "Mango Lassi", 70, "Beverages"),
		item(MainStoreID, "8", "Gulab Jamun", 35, "Desserts"),
		item(StationStoreID, "1", "Cutting Chai", 20, "Beverages"),
		item(StationStoreID, "2", "Bun Maska", 30, "Snacks"),
		item(StationStoreID, "3", "Poha", 45, "Snacks"),
	}
}

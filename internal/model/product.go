package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the electronics catalogue.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    Category        `json:"category" db:"category"`
	Brand       Brand           `json:"brand" db:"brand"`
	Stock       int             `json:"stock" db:"stock"`
	Rating      float64         `json:"rating" db:"rating"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// ProductFilter narrows a catalogue listing. Empty fields match everything.
type ProductFilter struct {
	Brand    string
	Category string
}

// Category is one of the fixed catalogue categories.
type Category string

const (
	CategorySmartphones Category = "Smartphones"
	CategoryLaptops     Category = "Laptops"
	CategorySmartTVs    Category = "Smart TVs"
	CategoryWearables   Category = "Smart Watches & Wearables"
	CategoryAudio       Category = "Audio Devices"
	CategoryCameras     Category = "Cameras & Photography"
	CategorySmartHome   Category = "Smart Home Appliances"
	CategoryPrinters    Category = "Printers & Mouse"
	CategoryChargers    Category = "Chargers & Power Banks"
)

var categories = []Category{
	CategorySmartphones,
	CategoryLaptops,
	CategorySmartTVs,
	CategoryWearables,
	CategoryAudio,
	CategoryCameras,
	CategorySmartHome,
	CategoryPrinters,
	CategoryChargers,
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Brand is one of the fixed catalogue brands.
type Brand string

var brands = []Brand{
	"Apple", "Samsung", "OnePlus", "Xiaomi", "Realme", "Motorola", "Sony", "LG", "HP", "Dell",
	"Lenovo", "Asus", "Acer", "MSI", "Canon", "Nikon", "Boat", "JBL", "Philips", "Panasonic",
	"Amazon", "Google", "Nothing", "Fire-Boltt", "Noise", "RealWear", "DJI", "Fitbit", "Garmin",
	"Haier", "Logitech", "Prestige", "Morphy Richards", "TCL", "Amazfit", "Sennheiser", "GoPro",
	"Fujifilm", "Insta360", "Wipro", "Epson",
}

// ParseBrand resolves a brand name case-insensitively.
func ParseBrand(s string) (Brand, bool) {
	for _, b := range brands {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, true
		}
	}
	return "", false
}

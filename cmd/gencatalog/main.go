// Command gencatalog writes sample product feeds for local runs and tests.
package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"simpleshop/internal/model"

	"github.com/shopspring/decimal"
)

type sampleProduct struct {
	id       string
	name     string
	price    string
	category model.Category
	brand    string
	stock    int
	rating   float64
}

// Feed 1 carries phones and laptops, feed 2 carries audio and accessories.
// P004 appears in both with a new price so the second feed wins on import.
// The last line of feed 2 uses an unknown brand and is skipped on import.
var feeds = map[string][]sampleProduct{
	"products.jsonl.gz": {
		{"P001", "Galaxy S24", "79999.00", model.CategorySmartphones, "Samsung", 25, 4.5},
		{"P002", "Apple iPhone 15", "89999.00", model.CategorySmartphones, "Apple", 12, 4.7},
		{"P003", "MacBook Air M3", "114999.00", model.CategoryLaptops, "Apple", 8, 4.8},
		{"P004", "ThinkPad E14", "64999.00", model.CategoryLaptops, "Lenovo", 15, 4.3},
		{"P005", "Bravia X90L", "129999.00", model.CategorySmartTVs, "Sony", 4, 4.6},
	},
	"accessories.jsonl.gz": {
		{"P004", "ThinkPad E14", "61999.00", model.CategoryLaptops, "Lenovo", 15, 4.3},
		{"P101", "WH-1000XM5", "29990.00", model.CategoryAudio, "Sony", 30, 4.6},
		{"P102", "Rockerz 450", "1499.00", model.CategoryAudio, "Boat", 120, 4.1},
		{"P103", "20000mAh Power Bank", "2199.00", model.CategoryChargers, "Xiaomi", 60, 4.4},
		{"P104", "EcoTank L3250", "13999.00", model.CategoryPrinters, "Epson", 9, 4.2},
		{"P999", "Mystery Gadget", "9.99", model.CategoryAudio, "Acme", 1, 0},
	},
}

func main() {
	dataDir := flag.String("out", "data/catalog", "directory to write feeds into")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for filename, products := range feeds {
		filePath := filepath.Join(*dataDir, filename)

		if err := writeFeed(filePath, products); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(products))
	}

	fmt.Println("\nImport with:")
	fmt.Printf("  CATALOG_IMPORT_ON_START=true CATALOG_FEEDS=%s,%s\n",
		filepath.Join(*dataDir, "products.jsonl.gz"),
		filepath.Join(*dataDir, "accessories.jsonl.gz"))
}

func writeFeed(filePath string, products []sampleProduct) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	enc := json.NewEncoder(gzipWriter)

	for _, p := range products {
		err := enc.Encode(model.Product{
			ID:          p.id,
			Name:        p.name,
			Description: p.name + " by " + p.brand,
			Price:       decimal.RequireFromString(p.price),
			Category:    p.category,
			Brand:       model.Brand(p.brand),
			Stock:       p.stock,
			Rating:      p.rating,
		})
		if err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.id, err)
		}
	}

	return gzipWriter.Close()
}

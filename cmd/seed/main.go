package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Columns looked up by header name, case-insensitive. name and price_naira are required.
const (
	colName        = "name"
	colDescription = "description"
	colPrice       = "price_naira"
	colCategory    = "category_slug"
	colType        = "type"
	colImage       = "image_url"
	colActive      = "is_active"
	colFeatured    = "is_show"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [-y]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "-y"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer file.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped rows: %d)\n", len(products), skipped)
	if len(products) == 0 {
		return
	}

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	batchSize := 500
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Printf("Import completed: %d products\n", len(products))
}

// readProductsFromXLSX parses the first sheet. Rows without a name or a
// positive price are counted as skipped.
func readProductsFromXLSX(r io.Reader) ([]model.Product, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	index := headerIndex(rows[0])
	if _, ok := index[colName]; !ok {
		return nil, 0, fmt.Errorf("missing %q column", colName)
	}
	if _, ok := index[colPrice]; !ok {
		return nil, 0, fmt.Errorf("missing %q column", colPrice)
	}

	categories := make(map[string]string, len(db.DefaultCategories))
	for _, c := range db.DefaultCategories {
		categories[c.Slug] = c.Name
	}

	var products []model.Product
	skipped := 0
	for _, row := range rows[1:] {
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := cell(colName)
		price, err := parsePrice(cell(colPrice))
		if name == "" || err != nil || price <= 0 {
			skipped++
			continue
		}

		slug := strings.ToLower(cell(colCategory))
		product := model.Product{
			Name:         name,
			Description:  cell(colDescription),
			ImageURL:     cell(colImage),
			PriceNaira:   price,
			IsActive:     parseFlag(cell(colActive), true),
			IsShow:       parseFlag(cell(colFeatured), false),
			CategorySlug: slug,
			Category:     categories[slug],
			Type:         cell(colType),
		}
		if product.Type == "" {
			product.Type = product.Category
		}
		products = append(products, product)
	}

	return products, skipped, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen && key != "" {
			index[key] = i
		}
	}
	return index
}

// parsePrice accepts "12500", "12,500" and "₦12,500"
func parsePrice(s string) (int64, error) {
	s = strings.TrimPrefix(s, "₦")
	s = strings.ReplaceAll(s, ",", "")
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseFlag(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestReadProductsFromXLSX(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Name", "Price_Naira", "Category_Slug", "is_show", "is_active", "description"},
		{"Red Velvet Foil", "₦12,500", "foil-cake", "yes", "", "Serves four"},
		{"Cupcake Box", 6000, "Cupcakes", "", "0", ""},
		{"", 3000, "cupcakes"},
		{"Broken Price", "abc", "bento"},
		{"Free Cake", 0, "bento"},
	})

	products, skipped, err := readProductsFromXLSX(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, products, 2)

	assert.Equal(t, "Red Velvet Foil", products[0].Name)
	assert.Equal(t, int64(12500), products[0].PriceNaira)
	assert.Equal(t, "foil-cake", products[0].CategorySlug)
	assert.Equal(t, "Foil Cake", products[0].Category)
	assert.Equal(t, "Foil Cake", products[0].Type)
	assert.True(t, products[0].IsShow)
	assert.True(t, products[0].IsActive)
	assert.Equal(t, "Serves four", products[0].Description)

	assert.Equal(t, "cupcakes", products[1].CategorySlug)
	assert.False(t, products[1].IsActive)
	assert.False(t, products[1].IsShow)
}

func TestReadProductsFromXLSX_MissingColumns(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"title", "price_naira"},
		{"Cake", 1000},
	})

	_, _, err := readProductsFromXLSX(buf)
	assert.ErrorContains(t, err, `"name"`)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12500", 12500, true},
		{"12,500", 12500, true},
		{"₦ 7,000", 7000, true},
		{"4500.00", 4500, true},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// OrderRow is one product line of an orders workbook.
type OrderRow struct {
	Code string
	Name string
}

// Ingredient is one declared component of a product.
type Ingredient struct {
	CAS     string
	Name    string
	Percent string
}

// ReadOrders parses an orders workbook. Columns are discovered by
// header substring: the product code column contains "Malzeme", the
// optional name column contains "Tanım".
func ReadOrders(path string) ([]OrderRow, error) {
	rows, err := readFirstSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("orders workbook is empty")
	}

	codeCol, nameCol := -1, -1
	for i, raw := range rows[0] {
		name := strings.TrimSpace(raw)
		switch {
		case strings.Contains(name, "Tanım") && nameCol < 0:
			nameCol = i
		case strings.Contains(name, "Malzeme") && codeCol < 0:
			codeCol = i
		}
	}
	if codeCol < 0 {
		return nil, fmt.Errorf("required column (Malzeme) not found in orders workbook")
	}

	var orders []OrderRow
	for _, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, codeCol))
		if code == "" {
			continue
		}
		orders = append(orders, OrderRow{
			Code: code,
			Name: strings.TrimSpace(cell(row, nameCol)),
		})
	}
	return orders, nil
}

// ReadIngredients parses a formulation workbook into a product code to
// component list mapping. Only rows whose type column contains '*' are
// components; other rows are headers or totals.
func ReadIngredients(path string) (map[string][]Ingredient, error) {
	rows, err := readFirstSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingredients workbook is empty")
	}

	prodCol, typeCol, casCol, descCol, pctCol := -1, -1, -1, -1, -1
	for i, raw := range rows[0] {
		name := strings.TrimSpace(raw)
		switch {
		case strings.Contains(name, "Product code") && prodCol < 0:
			prodCol = i
		case strings.Contains(name, "Type") && typeCol < 0:
			typeCol = i
		case strings.Contains(name, "CAS") && casCol < 0:
			casCol = i
		case strings.Contains(name, "Standard description") && descCol < 0:
			descCol = i
		case strings.Contains(name, "Percent") && pctCol < 0:
			pctCol = i
		}
	}
	if prodCol < 0 {
		return nil, fmt.Errorf("required column (Product code) not found in ingredients workbook")
	}

	products := make(map[string][]Ingredient)
	for _, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, prodCol))
		if code == "" {
			continue
		}
		if !strings.Contains(cell(row, typeCol), "*") {
			continue
		}
		products[code] = append(products[code], Ingredient{
			CAS:     strings.TrimSpace(cell(row, casCol)),
			Name:    strings.TrimSpace(cell(row, descCol)),
			Percent: strings.TrimSpace(cell(row, pctCol)),
		})
	}
	return products, nil
}

func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gumruklab/gtip/internal/model"
)

// The government "List V" workbook carries preamble rows above the
// table, so the header row is found by scanning for the code and
// description marker columns instead of assuming row one.
const (
	codeHeader        = "GTP"
	descriptionHeader = "EŞYA TANIMI"
)

// ReadTariffXLSX parses a List V workbook into tariff records.
// Cells holding several codes fan out to one record per code sharing
// the same description, so linear scans stay simple.
func ReadTariffXLSX(path string) ([]model.TariffRecord, error) {
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

	headerIdx := findTariffHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("header row with %q and %q not found", codeHeader, descriptionHeader)
	}

	cols := mapTariffColumns(rows[headerIdx])
	if cols.code < 0 || cols.description < 0 {
		return nil, fmt.Errorf("header row found but %q or %q column missing", codeHeader, descriptionHeader)
	}

	var records []model.TariffRecord
	for _, row := range rows[headerIdx+1:] {
		codeRaw := strings.TrimSpace(cell(row, cols.code))
		desc := strings.TrimSpace(cell(row, cols.description))
		if codeRaw == "" || desc == "" || strings.EqualFold(codeRaw, "nan") {
			continue
		}

		// Multiple codes stacked in one cell become separate records.
		for _, code := range strings.Fields(codeRaw) {
			records = append(records, model.TariffRecord{
				Code:           code,
				Description:    desc,
				TaxRatePercent: strings.TrimSpace(cell(row, cols.taxRate)),
				Footnote:       strings.TrimSpace(cell(row, cols.footnote)),
				ValidUntilRaw:  strings.TrimSpace(cell(row, cols.validity)),
			})
		}
	}

	return records, nil
}

type tariffColumns struct {
	code        int
	description int
	taxRate     int
	footnote    int
	validity    int
}

// findTariffHeader returns the index of the first row whose joined
// text mentions both marker headers.
func findTariffHeader(rows [][]string) int {
	for i, row := range rows {
		text := strings.ToUpper(strings.Join(row, " "))
		if strings.Contains(text, codeHeader) && strings.Contains(text, descriptionHeader) {
			return i
		}
	}
	return -1
}

// mapTariffColumns resolves column indexes from a header row. The tax
// rate column is "GV (%)" or plain "GV" depending on the publication
// year; the validity column name varies in its trailing markup.
func mapTariffColumns(header []string) tariffColumns {
	cols := tariffColumns{code: -1, description: -1, taxRate: -1, footnote: -1, validity: -1}

	for i, raw := range header {
		name := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, "\n", "")))
		switch {
		case name == codeHeader && cols.code < 0:
			cols.code = i
		case name == descriptionHeader && cols.description < 0:
			cols.description = i
		case (name == "GV (%)" || name == "GV") && cols.taxRate < 0:
			cols.taxRate = i
		case name == "DİPNOT" && cols.footnote < 0:
			cols.footnote = i
		case strings.HasPrefix(name, "GÖZDEN GEÇİRME TARİHİ") && cols.validity < 0:
			cols.validity = i
		}
	}
	return cols
}

// cell reads a column that may be absent on short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

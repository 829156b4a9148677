package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// TaxReportRow is one line of the batch tax analysis report. Header
// names stay in Turkish; the report goes to Turkish customs brokers.
type TaxReportRow struct {
	ProductCode    string // MALZEME KODU
	ProductName    string // ÜRÜN ADI
	Ingredient     string // BİLEŞEN
	CAS            string // CAS NO
	Percent        string // ORAN (%)
	TaxStatus      string // VERGİ DURUMU
	TariffCode     string // G.T.İ.P.
	TaxRate        string // VERGİ ORANI
	ValidityNote   string // GEÇERLİLİK TARİHİ
	TaxDescription string // VERGİ TANIMI
}

var taxReportHeaders = []string{
	"MALZEME KODU", "ÜRÜN ADI", "BİLEŞEN", "CAS NO", "ORAN (%)",
	"VERGİ DURUMU", "G.T.İ.P.", "VERGİ ORANI", "GEÇERLİLİK TARİHİ", "VERGİ TANIMI",
}

// WriteTaxReport renders the report workbook under dir with a
// timestamped filename and returns the written path.
func WriteTaxReport(dir string, rows []TaxReportRow, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for col, h := range taxReportHeaders {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []string{
			row.ProductCode, row.ProductName, row.Ingredient, row.CAS, row.Percent,
			row.TaxStatus, row.TariffCode, row.TaxRate, row.ValidityNote, row.TaxDescription,
		}
		for col, v := range values {
			cellName, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", fmt.Errorf("report cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				return "", fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("Vergi_Analiz_Raporu_%s.xlsx", now.Format("2006-01-02_15-04-05")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/ingest"
	"github.com/gumruklab/gtip/internal/match"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
)

// Report cell sentinels. The report keeps the broker-facing Turkish
// labels of the original workflow.
const (
	statusOnTaxList = "⚠️ VERGİ LİSTESİNDE"
	statusNoMatch   = "ESLESME YOK"
	statusNotInList = "LİSTEDE YOK"
	emptyCell       = "-"
)

// Analyzer joins an orders workbook with its formulation workbook and
// checks every declared ingredient against the tariff table.
type Analyzer struct {
	cfg    model.Config
	tariff *store.TariffStore
	log    *zap.SugaredLogger
}

// NewAnalyzer wires an analyzer over the tariff store.
func NewAnalyzer(cfg model.Config, tariff *store.TariffStore, log *zap.SugaredLogger) *Analyzer {
	return &Analyzer{cfg: cfg, tariff: tariff, log: log}
}

// AnalysisSummary counts what the report contains.
type AnalysisSummary struct {
	Products    int
	Ingredients int
	Matched     int
	ReportPath  string
}

// AnalyzeOrders runs the batch check and writes the xlsx report. The
// tariff table is loaded once for the whole run.
func (a *Analyzer) AnalyzeOrders(ordersPath, ingredientsPath string) (AnalysisSummary, error) {
	var summary AnalysisSummary

	orders, err := ingest.ReadOrders(ordersPath)
	if err != nil {
		return summary, fmt.Errorf("read orders: %w", err)
	}
	products, err := ingest.ReadIngredients(ingredientsPath)
	if err != nil {
		return summary, fmt.Errorf("read ingredients: %w", err)
	}

	records := a.tariff.Load()
	a.log.Infow("analyzing orders",
		"orders", len(orders),
		"formulations", len(products),
		"tariff_records", len(records))

	var rows []ingest.TaxReportRow
	for _, order := range orders {
		ingredients := products[order.Code]
		if len(ingredients) == 0 {
			rows = append(rows, ingest.TaxReportRow{
				ProductCode: order.Code,
				ProductName: order.Name,
				Ingredient:  statusNotInList,
				CAS:         emptyCell,
				TariffCode:  emptyCell,
				TaxStatus:   emptyCell,
			})
			continue
		}

		for _, ing := range ingredients {
			summary.Ingredients++
			row := ingest.TaxReportRow{
				ProductCode: order.Code,
				ProductName: order.Name,
				Ingredient:  ing.Name,
				CAS:         ing.CAS,
				Percent:     ing.Percent,
				TaxStatus:   statusNoMatch,
				TariffCode:  emptyCell,
				TaxRate:     emptyCell,
				ValidityNote: emptyCell,
				TaxDescription: emptyCell,
			}

			if rec := match.FindTaxRecord(ing.CAS, ing.Name, records); rec != nil {
				summary.Matched++
				row.TaxStatus = statusOnTaxList
				row.TariffCode = rec.Code
				row.TaxRate = "%" + rec.TaxRatePercent
				row.ValidityNote = match.AnnotateValidity(rec.ValidUntilRaw)
				row.TaxDescription = rec.Description
			}

			rows = append(rows, row)
		}
	}
	summary.Products = len(orders)

	path, err := ingest.WriteTaxReport(a.cfg.Storage.ReportDir, rows, time.Now())
	if err != nil {
		return summary, fmt.Errorf("write report: %w", err)
	}
	summary.ReportPath = path

	a.log.Infow("analysis report written",
		"path", path,
		"ingredients", summary.Ingredients,
		"matched", summary.Matched)
	return summary, nil
}

// Lookup scores one CAS/name pair against the whole tariff table.
func (a *Analyzer) Lookup(casNumber, productName string) (*model.TariffRecord, int) {
	return match.ScoreTaxMatch(casNumber, productName, a.tariff.Load(), a.cfg.Match)
}

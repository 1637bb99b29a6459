package fileio

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	excelize "github.com/xuri/excelize/v2"

	"price-recon/internal/reconcile/model"
)

// WriteReportJSON — массив записей, отступ 4 пробела, без экранирования HTML/юникода.
func WriteReportJSON(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(records), "encode report json")
}

const reportSheet = "Comparison"

var reportHeader = []any{
	"product_name_a", "product_name_b", "price_a", "price_b", "price_diff",
	"unit_price_a", "unit_price_b", "unit_price_diff", "matching_score",
}

// WriteReportXLSX — тот же отчёт листом Excel: шапка + строка на запись.
func WriteReportXLSX(w io.Writer, records []model.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return eris.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return eris.Wrap(err, "write header")
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "cell name")
		}
		row := []any{
			r.ProductNameA, r.ProductNameB, r.PriceA, r.PriceB, r.PriceDiff,
			r.UnitPriceA, r.UnitPriceB, r.UnitPriceDiff, r.MatchingScore,
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return eris.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return eris.Wrap(err, "freeze header")
	}
	_, err := f.WriteTo(w)
	return eris.Wrap(err, "write xlsx")
}

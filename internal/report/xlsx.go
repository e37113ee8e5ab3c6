package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/pipeline"
)

// WriteWorkbook writes the report as an XLSX workbook with Derived, Summary,
// and Highlights sheets.
func WriteWorkbook(path string, d *Data) error {
	f := xlsx.NewFile()

	if err := addDerivedSheet(f, d.Table); err != nil {
		return err
	}
	if err := addSummarySheet(f, d.Groups); err != nil {
		return err
	}
	if err := addHighlightsSheet(f, d.Over, d.Under); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

func addDerivedSheet(f *xlsx.File, t *model.Table) error {
	sheet, err := f.AddSheet("Derived")
	if err != nil {
		return eris.Wrap(err, "report: add derived sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetValue(col)
	}
	for _, row := range t.Rows {
		xr := sheet.AddRow()
		for _, col := range t.Columns {
			switch v := row[col].(type) {
			case float64:
				xr.AddCell().SetFloat(v)
			default:
				xr.AddCell().SetValue(row.Str(col))
			}
		}
	}
	return nil
}

func addSummarySheet(f *xlsx.File, groups []pipeline.GroupSummary) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{
		"Group", "Projects", "Total Actuals", "Total Forecasts",
		"Total Capital Plan", "Total Allocation", "Net Reallocation",
		"Mean Spread Score", "Percentage Deviation",
	} {
		header.AddCell().SetValue(col)
	}
	for _, g := range groups {
		row := sheet.AddRow()
		row.AddCell().SetValue(groupLabel(g.Key))
		row.AddCell().SetInt(g.Projects)
		row.AddCell().SetFloat(g.TotalActuals)
		row.AddCell().SetFloat(g.TotalForecasts)
		row.AddCell().SetFloat(g.TotalCapitalPlan)
		row.AddCell().SetFloat(g.TotalAllocation)
		row.AddCell().SetFloat(g.NetReallocation)
		row.AddCell().SetFloat(g.MeanSpreadScore)
		// Deviation can be +Inf; spreadsheets have no Inf, so render text.
		row.AddCell().SetValue(deviation(g.PercentDeviation))
	}
	return nil
}

func addHighlightsSheet(f *xlsx.File, over, under []pipeline.GroupSummary) error {
	sheet, err := f.AddSheet("Highlights")
	if err != nil {
		return eris.Wrap(err, "report: add highlights sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"Flag", "Group", "Actual Spend", "Deviation"} {
		header.AddCell().SetValue(col)
	}
	for _, g := range over {
		row := sheet.AddRow()
		row.AddCell().SetValue("over")
		row.AddCell().SetValue(groupLabel(g.Key))
		row.AddCell().SetFloat(g.TotalActuals)
		row.AddCell().SetValue(deviation(g.PercentDeviation))
	}
	for _, g := range under {
		row := sheet.AddRow()
		row.AddCell().SetValue("under")
		row.AddCell().SetValue(groupLabel(g.Key))
		row.AddCell().SetFloat(g.TotalActuals)
		row.AddCell().SetValue(deviation(absFloat(g.PercentDeviation)))
	}
	return nil
}

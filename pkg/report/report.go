package report

import (
	"strconv"
	"strings"

	"ngsFilter/pkg/filter"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

const (
	SheetVariants = "variants"
	SheetCascade  = "cascade"
)

var (
	cascadeTitle = []string{"step", "filter", "enabled", "passing", "errors"}

	headerStyle = &excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#8CDDFA"},
			Pattern: 1,
		},
	}
	failStyle = &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9D9D9"},
			Pattern: 1,
		},
	}
)

// Report is an xlsx workbook with a variants sheet and a cascade summary sheet.
type Report struct {
	xlsx *excelize.File
}

func New() (*Report, error) {
	xlsx := excelize.NewFile()
	for _, sheet := range []string{SheetVariants, SheetCascade} {
		if _, err := xlsx.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if err := xlsx.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return &Report{xlsx: xlsx}, nil
}

func cell(col, row int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// AddVariants writes the variant table. Rows failing pass are greyed out; pass may be nil.
func (r *Report) AddVariants(vl *record.VariantList, pass *filter.Result) error {
	header := append([]string{"chr", "start", "end", "ref", "obs"}, lo.Map(vl.Columns, func(c record.Column, _ int) string { return c.Name })...)
	if err := r.xlsx.SetSheetRow(SheetVariants, "A1", &header); err != nil {
		return err
	}
	styleHeader, err := r.xlsx.NewStyle(headerStyle)
	if err != nil {
		return err
	}
	styleFail, err := r.xlsx.NewStyle(failStyle)
	if err != nil {
		return err
	}
	last, err := cell(len(header), 1)
	if err != nil {
		return err
	}
	if err := r.xlsx.SetCellStyle(SheetVariants, "A1", last, styleHeader); err != nil {
		return err
	}
	for i := range vl.Variants {
		v := &vl.Variants[i]
		row := append([]any{v.Chr.Str(), v.Start, v.End, v.Ref, v.Obs}, lo.ToAnySlice(v.Annotations)...)
		if err := r.xlsx.SetSheetRow(SheetVariants, "A"+strconv.Itoa(i+2), &row); err != nil {
			return err
		}
		if pass != nil && !pass.Passes(i) {
			last, err := cell(len(header), i+2)
			if err != nil {
				return err
			}
			if err := r.xlsx.SetCellStyle(SheetVariants, "A"+strconv.Itoa(i+2), last, styleFail); err != nil {
				return err
			}
		}
	}
	return r.xlsx.SetPanes(SheetVariants, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// AddCascade writes one row per filter with its passing count and errors of the last apply.
func (r *Report) AddCascade(c *filter.Cascade) error {
	if err := r.xlsx.SetSheetRow(SheetCascade, "A1", &cascadeTitle); err != nil {
		return err
	}
	for i := 0; i < c.Count(); i++ {
		f := c.At(i)
		var passing any = ""
		if n := c.Passing(i); n >= 0 {
			passing = n
		}
		row := []any{i + 1, f.Text(), f.Enabled(), passing, strings.Join(c.Errors(i), "; ")}
		if err := r.xlsx.SetSheetRow(SheetCascade, "A"+strconv.Itoa(i+2), &row); err != nil {
			return err
		}
	}
	return r.xlsx.SetColWidth(SheetCascade, "B", "B", 60)
}

func (r *Report) SaveAs(path string) error {
	if index, err := r.xlsx.GetSheetIndex(SheetVariants); err == nil {
		r.xlsx.SetActiveSheet(index)
	}
	return r.xlsx.SaveAs(path)
}

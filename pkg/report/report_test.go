package report

import (
	"path/filepath"
	"strings"
	"testing"

	"ngsFilter/pkg/filter"
	"ngsFilter/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReport(t *testing.T) {
	vl, err := record.ReadVariantList(strings.NewReader(strings.Join([]string{
		"#chr\tstart\tend\tref\tobs\tcoding_and_splicing",
		"chr1\t100\t100\tA\tG\tGENE1:NM_1:stop_gained:HIGH:",
		"chr2\t200\t200\tC\tT\tGENE2:NM_2:intron_variant:MODIFIER:",
	}, "\n") + "\n"))
	require.NoError(t, err)

	c, err := filter.CascadeFromText(filter.DefaultRegistry(), []string{"Impact\timpact=HIGH", "Conservedness"})
	require.NoError(t, err)
	pass, err := c.ApplyVariants(vl, false, false)
	require.NoError(t, err)

	r, err := New()
	require.NoError(t, err)
	require.NoError(t, r.AddVariants(vl, pass))
	require.NoError(t, r.AddCascade(c))
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, r.SaveAs(path))

	xlsx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer xlsx.Close()
	assert.Equal(t, []string{SheetVariants, SheetCascade}, xlsx.GetSheetList())

	for cell, want := range map[string]string{
		"A1": "chr", "F1": "coding_and_splicing",
		"A2": "chr1", "B2": "100", "E3": "T",
	} {
		value, err := xlsx.GetCellValue(SheetVariants, cell)
		require.NoError(t, err)
		assert.Equal(t, want, value, cell)
	}

	for cell, want := range map[string]string{
		"A1": "step", "B2": "Impact\timpact=HIGH", "D2": "1",
		"B3": "Conservedness\tmin_score=1.6", "D3": "",
	} {
		value, err := xlsx.GetCellValue(SheetCascade, cell)
		require.NoError(t, err)
		assert.Equal(t, want, value, cell)
	}
	errors, err := xlsx.GetCellValue(SheetCascade, "E3")
	require.NoError(t, err)
	assert.Contains(t, errors, "phyloP")
}

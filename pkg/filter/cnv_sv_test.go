package filter

import (
	"testing"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns(names ...string) []record.Column {
	return lo.Map(names, func(name string, _ int) record.Column { return record.Column{Name: name} })
}

func cnvList() *record.CnvList {
	return &record.CnvList{
		Columns: columns("no_of_regions", "potential_AF", "loglikelihood", "qvalue", "gene_info", "omim"),
		Cnvs: []record.Cnv{
			{Chr: "chr1", Start: 1, End: 50000, CopyNumber: 1, Genes: []string{"GENE1"},
				Annotations: []string{"5", "0.01", "40", "0.01", "GENE1 (region=complete oe_lof=0.1)", "1234"}},
			{Chr: "chr1", Start: 60001, End: 62000, CopyNumber: 0, Genes: []string{"GENE1", "GENE2"},
				Annotations: []string{"2", "0.2", "10", "0.5", "GENE1 (region=intronic/intergenic oe_lof=0.1), GENE2 (region=exonic/splicing oe_lof=0.9)", ""}},
			{Chr: "chr2", Start: 1, End: 1000000, CopyNumber: 5, Genes: []string{"GENE3"},
				Annotations: []string{"30", "0.01,0.1", "100", "0.001", "GENE3 (region=intronic/intergenic oe_lof=0.8)", ""}},
		},
	}
}

func cnvFlags(t *testing.T, name string, params map[string]string, cl *record.CnvList) []bool {
	t.Helper()
	result := NewResult(cl.Count())
	require.NoError(t, create(t, name, params).(CnvFilter).ApplyCnvs(cl, result))
	return result.Flags()
}

func TestCnvFilters(t *testing.T) {
	cl := cnvList()
	tests := []struct {
		name   string
		params map[string]string
		want   []bool
	}{
		{"CNV size", map[string]string{"size": "10"}, []bool{true, false, true}},
		{"CNV regions", nil, []bool{true, false, true}},
		{"CNV copy-number", map[string]string{"cn": "0"}, []bool{false, true, false}},
		{"CNV copy-number", map[string]string{"cn": "4+"}, []bool{false, false, true}},
		{"CNV allele frequency", nil, []bool{true, false, false}},
		{"CNV log-likelihood", nil, []bool{true, false, true}},
		{"CNV q-value", map[string]string{"max_q": "0.1"}, []bool{true, false, true}},
		{"CNV gene constraint", nil, []bool{true, true, false}},
		{"CNV gene overlap", nil, []bool{true, true, false}},
		{"CNV gene overlap", map[string]string{"complete": "no", "exonic/splicing": "no", "intronic/intergenic": "yes"}, []bool{false, true, true}},
		{"CNV compound-heterozygous", nil, []bool{true, true, true}},
		{"CNV compound-heterozygous", map[string]string{"mode": "CNV-CNV"}, []bool{true, true, false}},
		{"CNV OMIM genes", nil, []bool{true, false, false}},
		{"CNV genes", map[string]string{"genes": "GENE2,GENE3"}, []bool{false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cnvFlags(t, tt.name, tt.params, cl))
		})
	}

	none := create(t, "CNV gene overlap", map[string]string{"complete": "no", "exonic/splicing": "no"}).(CnvFilter)
	assert.ErrorIs(t, none.ApplyCnvs(cl, NewResult(cl.Count())), errs.ErrArgument)
}

func TestCnvCascade(t *testing.T) {
	cl := cnvList()
	c, err := CascadeFromText(DefaultRegistry(), []string{"CNV size\tsize=10", "CNV compound-heterozygous\tmode=CNV-CNV"})
	require.NoError(t, err)
	result, err := c.ApplyCnvs(cl, true, false)
	require.NoError(t, err)
	// GENE1 is left with a single CNV after the size step
	assert.Equal(t, []bool{false, false, false}, result.Flags())

	require.NoError(t, result.RemoveFlagged(cl))
	assert.Equal(t, 0, cl.Count())
}

func svList() *record.SvList {
	return &record.SvList{
		Columns: columns("TYPE", "QUAL", "FILTER", "INFO_A", "FORMAT", "S1", "S2", "GENES", "GENE_INFO", "OMIM", "NGSD_HOM", "NGSD_HET", "NGSD_AF"),
		Samples: record.SampleHeader{
			{ID: "S1", Column: "S1", Gender: "female", Affected: true},
			{ID: "S2", Column: "S2", Gender: "male"},
		},
		Svs: []record.Sv{
			{Chr1: "chr1", Start1: 1000, End1: 1010, Chr2: "chr1", Start2: 6000, End2: 6010, Type: record.SvDel,
				Annotations: []string{"DEL", "500", "PASS", "SVLEN=-5000", "GT:PR:SR", "0/1:10,10:10,0", "0/0:20,0:20,0", "GENE1", "GENE1 (oe_lof=0.1)", "1234", "1", "2", "0.001"}},
			{Chr1: "chr1", Start1: 1000, End1: 1010, Chr2: "chr5", Start2: 500, End2: 510, Type: record.SvBnd,
				Annotations: []string{"BND", "50", "MaxDepth", ".", "GT:PR:SR", "1/1:0,20:0,10", "0/1:10,10:5,5", "GENE1,GENE2", "GENE1 (oe_lof=0.9)", "", "10", "20", "0.2"}},
			{Chr1: "chrUn_gl000220", Start1: 100, End1: 110, Chr2: "chrUn_gl000220", Start2: 400, End2: 410, Type: record.SvInv,
				Annotations: []string{"INV", "200", "PASS", ".", "GT:PR", "0/1:5,5", "./.:0,0", "", "", "", "", "", ""}},
		},
	}
}

func svFlags(t *testing.T, name string, params map[string]string, sl *record.SvList) []bool {
	t.Helper()
	result := NewResult(sl.Count())
	require.NoError(t, create(t, name, params).(SvFilter).ApplySvs(sl, result))
	return result.Flags()
}

func TestSvFilters(t *testing.T) {
	sl := svList()
	tests := []struct {
		name   string
		params map[string]string
		want   []bool
	}{
		{"SV type", map[string]string{"Structural variant type": "DEL,INV"}, []bool{true, false, true}},
		{"SV remove chr type", nil, []bool{true, true, false}},
		{"SV quality", map[string]string{"quality": "100"}, []bool{true, false, true}},
		{"SV filter columns", map[string]string{"entries": "MaxDepth"}, []bool{true, false, true}},
		{"SV filter columns", map[string]string{"entries": "PASS", "action": "FILTER"}, []bool{true, false, true}},
		{"SV genotype affected", map[string]string{"genotypes": "het"}, []bool{true, false, true}},
		{"SV genotype control", map[string]string{"genotypes": "wt,n/a"}, []bool{true, false, true}},
		{"SV paired read AF", map[string]string{"min_af": "0.6"}, []bool{false, true, false}},
		{"SV split read AF", map[string]string{"max_af": "0.5"}, []bool{true, false, true}},
		{"SV size", map[string]string{"min_size": "1000"}, []bool{true, true, false}},
		{"SV size", map[string]string{"min_size": "100", "max_size": "1000"}, []bool{false, true, true}},
		{"SV gene constraint", nil, []bool{true, false, false}},
		{"SV OMIM genes", nil, []bool{true, false, false}},
		{"SV compound-heterozygous", map[string]string{"mode": "SV-SV"}, []bool{true, true, false}},
		{"SV count NGSD", nil, []bool{true, false, true}},
		{"SV allele frequency NGSD", nil, []bool{true, false, true}},
		{"SV genes", map[string]string{"genes": "GENE2"}, []bool{false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svFlags(t, tt.name, tt.params, sl))
		})
	}
}

func TestSvCascadeSubject(t *testing.T) {
	sl := svList()
	c, err := CascadeFromText(DefaultRegistry(), []string{"CNV size\tsize=1", "SV type\tStructural variant type=DEL"})
	require.NoError(t, err)
	result, err := c.ApplySvs(sl, false, false)
	require.NoError(t, err)
	assert.Len(t, c.Errors(0), 1)
	assert.Equal(t, []bool{true, false, false}, result.Flags())
}

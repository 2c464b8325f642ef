package record

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ngsFilter/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gsvar = `##GENOME_BUILD=GRCh38
##SAMPLE=<ID=NA12878,Gender=female,DiseaseStatus=affected,IsTumor=no>
##SAMPLE=<ID=NA12891,Gender=male,DiseaseStatus=unaffected>
##DESCRIPTION=gnomAD=Allele frequency in gnomAD.
##FILTER=off-target=Variant outside the target region.
#chr	start	end	ref	obs	NA12878	NA12891	filter	gnomAD	coding_and_splicing
chr1	100	100	A	G	het	wt		0.001	BRCA1:NM_1:missense_variant:MODERATE:exon2
chrX	200	202	ACT	-	hom	het	off-target		DMD:NM_2:frameshift_variant&splice_region_variant:HIGH,DMD:NM_3:intron_variant:MODIFIER
`

func TestReadVariantList(t *testing.T) {
	vl, err := ReadVariantList(strings.NewReader(gsvar))
	require.NoError(t, err)

	assert.Equal(t, 2, vl.Count())
	assert.Equal(t, []string{"##GENOME_BUILD=GRCh38",
		"##SAMPLE=<ID=NA12878,Gender=female,DiseaseStatus=affected,IsTumor=no>",
		"##SAMPLE=<ID=NA12891,Gender=male,DiseaseStatus=unaffected>"}, vl.Comments)
	assert.Equal(t, "Allele frequency in gnomAD.", vl.Columns[vl.AnnotationIndex("gnomAD")].Description)
	assert.Equal(t, map[string]string{"off-target": "Variant outside the target region."}, vl.Filters)
	require.Len(t, vl.Samples, 2)

	v := vl.Variants[1]
	assert.True(t, v.Chr.IsX())
	assert.Equal(t, 200, v.Start)
	assert.Equal(t, 202, v.End)
	assert.False(t, v.IsSNV())
	assert.True(t, vl.Variants[0].IsSNV())
	assert.Equal(t, "off-target", v.Annotations[vl.AnnotationIndex("filter")])

	_, err = vl.Annotation("missing")
	assert.True(t, errors.Is(err, errs.ErrArgument))
}

func TestWriteVariantListRoundTrip(t *testing.T) {
	vl, err := ReadVariantList(strings.NewReader(gsvar))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.GSvar")
	require.NoError(t, StoreVariantList(path, vl))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, gsvar, string(data))

	again, err := LoadVariantList(path)
	require.NoError(t, err)
	assert.Equal(t, vl.Variants, again.Variants)
	assert.Equal(t, vl.Columns, again.Columns)
}

func TestReadVariantListErrors(t *testing.T) {
	for name, text := range map[string]string{
		"no header":      "##x=y\n",
		"row before":     "chr1\t1\t1\tA\tG\n#chr\tstart\tend\tref\tobs\n",
		"field count":    "#chr\tstart\tend\tref\tobs\tgene\nchr1\t1\t1\tA\tG\n",
		"bad position":   "#chr\tstart\tend\tref\tobs\nchr1\tx\t1\tA\tG\n",
		"short header":   "#chr\tstart\tend\n",
		"bad sample tag": "##SAMPLE=<ID=a,broken>\n#chr\tstart\tend\tref\tobs\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadVariantList(strings.NewReader(text))
			assert.True(t, errors.Is(err, errs.ErrFileParse), "%v", err)
		})
	}
}

func TestAddAnnotationAndRetain(t *testing.T) {
	vl, err := ReadVariantList(strings.NewReader(gsvar))
	require.NoError(t, err)

	i := vl.AddAnnotation("GSvar_score", "score")
	assert.Equal(t, i, vl.AddAnnotation("GSvar_score", "other"))
	assert.Equal(t, "score", vl.Columns[i].Description)
	for _, v := range vl.Variants {
		assert.Len(t, v.Annotations, len(vl.Columns))
	}

	key := vl.Variants[1].Key()
	assert.Equal(t, "X", key.Chr)
	vl.Retain([]bool{false, true})
	assert.Equal(t, 1, vl.Count())
	assert.Equal(t, 0, vl.IndexOf(key))

	vl.AddFilter("cascade", "first")
	vl.AddFilter("cascade", "second")
	assert.Equal(t, "first", vl.Filters["cascade"])
}

func TestSampleHeader(t *testing.T) {
	header, err := ParseSampleHeader([]string{
		"##SAMPLE=<ID=child,Gender=male,DiseaseStatus=affected>",
		"##SAMPLE=<ID=father,Gender=male,DiseaseStatus=unaffected>",
		"##SAMPLE=<ID=mother,Gender=Female,DiseaseStatus=unaffected,IsTumor=no>",
		"##ANALYSISTYPE=GERMLINE_TRIO",
	})
	require.NoError(t, err)
	require.Len(t, header, 3)

	assert.Len(t, header.Affected(), 1)
	assert.Len(t, header.Unaffected(), 2)
	assert.True(t, header[2].IsFemale())
	assert.Equal(t, 2, header.IndexOf("mother"))
	assert.Equal(t, -1, header.IndexOf("sibling"))

	father, err := header.Resolve(false, "male")
	require.NoError(t, err)
	assert.Equal(t, "father", father.ID)

	_, err = header.Resolve(false, "")
	assert.True(t, errors.Is(err, errs.ErrArgument))

	_, err = ParseSampleLine("##SAMPLE=<Gender=male>")
	assert.True(t, errors.Is(err, errs.ErrFileParse))
}

func TestChromosome(t *testing.T) {
	tests := []struct {
		chr                            Chromosome
		normalized                     string
		autosome, gonosome, nonSpecial bool
	}{
		{"chr1", "1", true, false, true},
		{"22", "22", true, false, true},
		{"chrX", "X", false, true, true},
		{"y", "Y", false, true, true},
		{"chrMT", "M", false, false, true},
		{"chr23", "23", false, false, false},
		{"chrUn_KI270302v1", "UN_KI270302V1", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.chr.Str(), func(t *testing.T) {
			assert.Equal(t, tt.normalized, tt.chr.Normalized())
			assert.Equal(t, tt.autosome, tt.chr.IsAutosome())
			assert.Equal(t, tt.gonosome, tt.chr.IsGonosome())
			assert.Equal(t, tt.nonSpecial, tt.chr.IsNonSpecial())
		})
	}
	assert.True(t, Chromosome("chrX").Equal("X"))
}

func TestParseTranscripts(t *testing.T) {
	transcripts := ParseTranscripts("DMD:NM_2:frameshift_variant&splice_region_variant:HIGH:exon3, ,BRCA1:NM_1")
	require.Len(t, transcripts, 2)
	assert.Equal(t, "HIGH", transcripts[0].Impact)
	assert.Equal(t, []string{"frameshift_variant", "splice_region_variant"}, transcripts[0].Types())
	assert.Equal(t, Transcript{Gene: "BRCA1", ID: "NM_1"}, transcripts[1])
	assert.Empty(t, ParseTranscripts(""))
}

func TestSplitGenes(t *testing.T) {
	assert.Equal(t, []string{"BRCA1", "TP53"}, SplitGenes(" BRCA1,TP53,,BRCA1"))
	assert.Empty(t, SplitGenes(""))
}

const vcf = `##fileformat=VCFv4.2
##FILTER=<ID=low_qual,Description="Low quality">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1
chr1	100	.	A	G	50.5	PASS	DP=20;SOMATIC	GT:DP	0/1:20
chr2	200	rs1	AT	A,ATT	.	low_qual	.	GT	1/1
`

func TestReadVcf(t *testing.T) {
	vf, err := ReadVcf(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Equal(t, 2, vf.Count())
	assert.Equal(t, []string{"S1"}, vf.SampleIDs)
	assert.Equal(t, "Low quality", vf.FilterDefs["low_qual"])

	first := &vf.Lines[0]
	assert.True(t, first.Passed())
	assert.True(t, first.IsSNV())
	assert.Equal(t, 50.5, first.Qual)
	dp, ok := first.InfoValue("DP")
	assert.True(t, ok)
	assert.Equal(t, "20", dp)
	_, ok = first.InfoValue("SOMATIC")
	assert.True(t, ok)

	second := &vf.Lines[1]
	assert.Equal(t, -1.0, second.Qual)
	assert.Equal(t, []string{"A", "ATT"}, second.Alt)
	assert.Equal(t, 201, second.End())
	assert.False(t, second.Passed())

	first.AddFilter("cascade")
	assert.Equal(t, []string{"cascade"}, first.Filters)
	vf.AddFilter("cascade", "Removed by \"cascade\"")
	vf.AddFilter("cascade", "again")
	assert.Equal(t, `##FILTER=<ID=cascade,Description="Removed by 'cascade'">`, vf.Header[len(vf.Header)-1])

	var buf bytes.Buffer
	require.NoError(t, WriteVcf(&buf, vf))
	again, err := ReadVcf(&buf)
	require.NoError(t, err)
	assert.Equal(t, vf.Lines, again.Lines)
}

func TestLoadVcf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcf), 0o644))
	vf, err := LoadVcf(path)
	require.NoError(t, err)
	assert.Equal(t, 2, vf.Count())

	_, err = LoadVcf(filepath.Join(t.TempDir(), "missing.vcf"))
	assert.Error(t, err)
	_, err = LoadVariantList(filepath.Join(t.TempDir(), "missing.GSvar"))
	assert.Error(t, err)
}

func TestReadVcfErrors(t *testing.T) {
	_, err := ReadVcf(strings.NewReader("chr1\t1\t.\tA\tG\t.\t.\t.\n"))
	assert.True(t, errors.Is(err, errs.ErrFileParse))
	_, err = ReadVcf(strings.NewReader("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nchr1\tx\t.\tA\tG\t.\t.\t.\n"))
	assert.True(t, errors.Is(err, errs.ErrFileParse))
}

func TestCnvAndSvListRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cnvPath := filepath.Join(dir, "sample_cnvs.tsv")
	require.NoError(t, os.WriteFile(cnvPath, []byte(
		"##ANALYSISTYPE=CLINCNV_GERMLINE_SINGLE\n"+
			"#chr\tstart\tend\tCN_change\tgenes\n"+
			"chr1\t1000\t1999\t1\tA,B\n"+
			"chr2\t5000\t5999\tn/a\t\n"), 0o644))
	cl, err := LoadCnvList(cnvPath)
	require.NoError(t, err)
	require.Equal(t, 2, cl.Count())
	assert.Equal(t, CnvGermlineSingle, cl.Type)
	assert.Equal(t, 1, cl.Cnvs[0].CopyNumber)
	assert.Equal(t, -1, cl.Cnvs[1].CopyNumber)
	assert.Equal(t, []string{"A", "B"}, cl.Cnvs[0].Genes)
	assert.Equal(t, 1000, cl.Cnvs[0].Size())

	out := filepath.Join(dir, "out_cnvs.tsv")
	require.NoError(t, StoreCnvList(out, cl))
	again, err := LoadCnvList(out)
	require.NoError(t, err)
	assert.Equal(t, cl.Cnvs, again.Cnvs)

	svPath := filepath.Join(dir, "sample.bedpe")
	require.NoError(t, os.WriteFile(svPath, []byte(
		"##fileformat=BEDPE_GERMLINE_SINGLE\n"+
			"#CHROM_A\tSTART_A\tEND_A\tCHROM_B\tSTART_B\tEND_B\tTYPE\tINFO_A\n"+
			"chr1\t100\t110\tchr1\t5100\t5110\tDEL\tSVLEN=-5000;END=5100\n"+
			"chr1\t100\t110\tchr3\t900\t910\tbnd\t.\n"+
			"chr4\t100\t110\tchr4\t400\t410\tINV\t.\n"), 0o644))
	sl, err := LoadSvList(svPath)
	require.NoError(t, err)
	require.Equal(t, 3, sl.Count())
	assert.Equal(t, SvDel, sl.Svs[0].Type)
	assert.Equal(t, SvBnd, sl.Svs[1].Type)
	assert.Equal(t, 5000, sl.Size(0))
	assert.Equal(t, -1, sl.Size(1))
	assert.Equal(t, 300, sl.Size(2))

	out = filepath.Join(dir, "out.bedpe")
	require.NoError(t, StoreSvList(out, sl))
	svs, err := LoadSvList(out)
	require.NoError(t, err)
	assert.Equal(t, sl.Svs, svs.Svs)
}

func TestHgmdPathogenic(t *testing.T) {
	tests := []struct {
		text           string
		want, wantLike bool
	}{
		{"", false, false},
		{"ID=CM1;CLASS=DM", true, true},
		{"ID=CM1; CLASS=DM ;RANKSCORE=0.9", true, true},
		{"ID=CM1;CLASS=DM?", false, true},
		{"ID=CM1;CLASS=DP", false, false},
		{"CLASS=DMX", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HgmdPathogenic(tt.text, false), tt.text)
		assert.Equal(t, tt.wantLike, HgmdPathogenic(tt.text, true), tt.text)
	}
}

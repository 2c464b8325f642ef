package filter

import (
	"os"
	"path/filepath"
	"testing"

	"ngsFilter/pkg/genotype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrioCategoriesAutosomal(t *testing.T) {
	calls := []genotype.Genotype{genotype.Wildtype, genotype.Het, genotype.Hom}
	expected := map[[3]genotype.Genotype][]string{
		{genotype.Het, genotype.Wildtype, genotype.Wildtype}: {TrioDeNovo},
		{genotype.Hom, genotype.Wildtype, genotype.Wildtype}: {TrioDeNovo},
		{genotype.Hom, genotype.Het, genotype.Het}:           {TrioRecessive},
		{genotype.Hom, genotype.Het, genotype.Wildtype}:      {TrioLOH},
		{genotype.Hom, genotype.Wildtype, genotype.Het}:      {TrioLOH},
	}
	for _, child := range calls {
		for _, father := range calls {
			for _, mother := range calls {
				got := trioCategories(trioCall{child: child, father: father, mother: mother, diploid: true})
				assert.Equal(t, expected[[3]genotype.Genotype{child, father, mother}], got, "child=%s father=%s mother=%s", child, father, mother)
			}
		}
	}
}

func TestTrioCategoriesSpecialCases(t *testing.T) {
	tests := []struct {
		name string
		call trioCall
		want []string
	}{
		{"missing parent", trioCall{child: genotype.Hom, father: genotype.Missing, mother: genotype.Het, diploid: true}, nil},
		{"comp-het from father", trioCall{child: genotype.Het, father: genotype.Het, mother: genotype.Wildtype, diploid: true, compHetGene: true}, []string{TrioCompHet}},
		{"comp-het without gene", trioCall{child: genotype.Het, father: genotype.Wildtype, mother: genotype.Het, diploid: true}, nil},
		{"paternal imprinting", trioCall{child: genotype.Het, father: genotype.Het, mother: genotype.Wildtype, diploid: true, imprinting: "paternal"}, []string{TrioImprinting}},
		{"maternal imprinting from father", trioCall{child: genotype.Het, father: genotype.Het, mother: genotype.Wildtype, diploid: true, imprinting: "maternal"}, nil},
		{"both imprinting and comp-het", trioCall{child: genotype.Het, father: genotype.Wildtype, mother: genotype.Het, diploid: true, compHetGene: true, imprinting: "both"}, []string{TrioCompHet, TrioImprinting}},
		{"x-linked", trioCall{child: genotype.Hom, father: genotype.Wildtype, mother: genotype.Het, xChr: true}, []string{TrioXLinked}},
		{"x de-novo", trioCall{child: genotype.Hom, father: genotype.Wildtype, mother: genotype.Wildtype, xChr: true}, []string{TrioDeNovo}},
		{"x het child de-novo", trioCall{child: genotype.Het, father: genotype.Wildtype, mother: genotype.Wildtype, xChr: true}, []string{TrioDeNovo}},
		{"x het child from mother", trioCall{child: genotype.Het, father: genotype.Wildtype, mother: genotype.Het, xChr: true}, nil},
		{"x recessive pattern", trioCall{child: genotype.Hom, father: genotype.Het, mother: genotype.Het, xChr: true}, nil},
		{"haploid non-X de-novo", trioCall{child: genotype.Hom, father: genotype.Wildtype, mother: genotype.Wildtype}, []string{TrioDeNovo}},
		{"haploid non-X inherited", trioCall{child: genotype.Hom, father: genotype.Hom, mother: genotype.Wildtype}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trioCategories(tt.call))
		})
	}
}

func TestCorrectGenotype(t *testing.T) {
	assert.Equal(t, genotype.Wildtype, correctGenotype(genotype.Hom, 0.05, true, true))
	assert.Equal(t, genotype.Hom, correctGenotype(genotype.Hom, 0.95, true, true))
	assert.Equal(t, genotype.Hom, correctGenotype(genotype.Hom, 0.05, false, true))
	assert.Equal(t, genotype.Het, correctGenotype(genotype.Wildtype, 0.2, true, false))
	assert.Equal(t, genotype.Wildtype, correctGenotype(genotype.Wildtype, 0.01, true, false))
	assert.Equal(t, genotype.Wildtype, correctGenotype(genotype.Wildtype, 0.31, true, false))
	assert.Equal(t, genotype.Wildtype, correctGenotype(genotype.Wildtype, 0.2, true, true))
}

const trioHeader = "##SAMPLE=<ID=child,Gender=male,DiseaseStatus=affected>\n" +
	"##SAMPLE=<ID=father,Gender=male,DiseaseStatus=unaffected>\n" +
	"##SAMPLE=<ID=mother,Gender=female,DiseaseStatus=unaffected>\n" +
	"#chr\tstart\tend\tref\tobs\tchild\tfather\tmother\tgene\tquality"

func TestTrioFilter(t *testing.T) {
	vl := readVariants(t, trioHeader,
		"chr1\t100\t100\tA\tG\thet\twt\twt\tDN1\tQUAL=100",
		"chr1\t200\t200\tA\tG\thom\thet\thet\tREC1\tQUAL=100",
		"chr1\t300\t300\tA\tG\thet\thet\thet\tNONE1\tQUAL=100",
		"chrX\t50000000\t50000000\tA\tG\thom\twt\thet\tXL1\tQUAL=100",
		"chr2\t100\t100\tA\tG\thet\thet\twt\tCH1\tQUAL=100",
		"chr2\t200\t200\tA\tG\thet\twt\thet\tCH1\tQUAL=100",
		"chr3\t100\t100\tA\tG\thet\thet\twt\tCH2\tQUAL=100",
		"chr4\t100\t100\tA\tG\thom\twt\twt\tLOWAF\tQUAL=100;AF=0.05,0.0,0.0",
	)
	f := create(t, "Trio", nil)
	assert.Equal(t, []bool{true, true, false, true, true, true, false, false}, flags(t, f, vl))

	f = create(t, "Trio", map[string]string{"types": "comp-het"})
	assert.Equal(t, []bool{false, false, false, false, true, true, false, false}, flags(t, f, vl))

	// a female child makes chrX diploid
	f = create(t, "Trio", map[string]string{"types": "x-linked,LOH", "gender_child": "female"})
	assert.Equal(t, []bool{false, false, false, true, false, false, false, false}, flags(t, f, vl))
	f = create(t, "Trio", map[string]string{"types": "x-linked"})
	assert.Equal(t, []bool{false, false, false, true, false, false, false, false}, flags(t, f, vl))
}

func TestTrioDeNovoHaploid(t *testing.T) {
	vl := readVariants(t, trioHeader,
		"chrY\t3000000\t3000000\tA\tG\thom\twt\twt\tYGENE\tQUAL=100",
		"chrX\t50000000\t50000000\tA\tG\thet\twt\twt\tXGENE\tQUAL=100",
		"chrMT\t100\t100\tA\tG\thom\twt\twt\tMT-ND1\tQUAL=100",
		"chrY\t3000100\t3000100\tA\tG\thom\thom\twt\tYGENE\tQUAL=100",
	)
	f := create(t, "Trio", map[string]string{"types": "de-novo"})
	assert.Equal(t, []bool{true, true, true, false}, flags(t, f, vl))
}

func TestTrioImprinting(t *testing.T) {
	vl := readVariants(t, trioHeader,
		"chr15\t100\t100\tA\tG\thet\thet\twt\tIMPX\tQUAL=100",
		"chr15\t200\t200\tA\tG\thet\twt\thet\tIMPX\tQUAL=100",
	)
	path := filepath.Join(t.TempDir(), "imprinting.tsv")
	require.NoError(t, os.WriteFile(path, []byte("IMPX\tpaternal"), 0o644))
	table, err := LoadImprinting(path)
	require.NoError(t, err)
	assert.Equal(t, "paternal", table.Source([]string{"OTHER", "impx"}))

	f := create(t, "Trio", map[string]string{"types": "imprinting"})
	user, ok := f.(ImprintingUser)
	require.True(t, ok)
	user.SetImprinting(table)
	assert.Equal(t, []bool{true, false}, flags(t, f, vl))

	assert.NotEmpty(t, DefaultImprinting())
	assert.Equal(t, "", DefaultImprinting().Source([]string{"IMPX"}))
}

func TestTrioRequiresSamples(t *testing.T) {
	vl := readVariants(t,
		"##SAMPLE=<ID=child,Gender=male,DiseaseStatus=affected>",
		"#chr\tstart\tend\tref\tobs\tchild\tgene",
		"chr1\t100\t100\tA\tG\thet\tA",
	)
	f := create(t, "Trio", nil).(VariantFilter)
	assert.Error(t, f.ApplyVariants(vl, NewResult(1)))
}

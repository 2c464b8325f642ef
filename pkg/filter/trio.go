package filter

import (
	"slices"
	"strings"

	"ngsFilter/pkg/genotype"
	"ngsFilter/pkg/record"
	"ngsFilter/pkg/region"

	"github.com/samber/lo"
)

const (
	TrioDeNovo     = "de-novo"
	TrioRecessive  = "recessive"
	TrioCompHet    = "comp-het"
	TrioLOH        = "LOH"
	TrioXLinked    = "x-linked"
	TrioImprinting = "imprinting"
)

var trioTypes = []string{TrioDeNovo, TrioRecessive, TrioCompHet, TrioLOH, TrioXLinked, TrioImprinting}

// ImprintingUser is implemented by filters that consult an imprinting gene table.
type ImprintingUser interface {
	SetImprinting(table Imprinting)
}

type trio struct {
	Base
	imprinting Imprinting
}

func newTrio() Filter {
	f := &trio{Base: newBase("Trio", SubjectSmallVariant,
		"Filter trio variants.",
		"Child, father and mother are determined from the sample header (affected status and gender).")}
	f.addParam("types", StringList, []string{TrioDeNovo, TrioRecessive, TrioCompHet, TrioLOH, TrioXLinked},
		"Variant types", Constraints{"valid": strings.Join(trioTypes, ","), "not_empty": ""})
	f.addParam("gender_child", String, "n/a", "Gender of the child; 'n/a' uses the sample header.", Constraints{"valid": "male,female,n/a"})
	f.addParam("build", String, "hg38", "Genome build used for pseudo-autosomal regions.", Constraints{"valid": "hg19,hg38"})
	return f
}

func (f *trio) SetImprinting(table Imprinting) {
	f.imprinting = table
}

// trioCall is the corrected genotype triple of one variant plus its gene context.
type trioCall struct {
	child, father, mother genotype.Genotype
	diploid               bool
	xChr                  bool
	compHetGene           bool
	imprinting            string
}

func (c trioCall) inherited() (fromFather, fromMother bool) {
	fromFather = c.father == genotype.Het && c.mother == genotype.Wildtype
	fromMother = c.father == genotype.Wildtype && c.mother == genotype.Het
	return
}

// trioCategories returns all inheritance categories the call fits.
func trioCategories(c trioCall) []string {
	if c.child == genotype.Wildtype || lo.Contains([]genotype.Genotype{c.child, c.father, c.mother}, genotype.Missing) {
		return nil
	}
	var categories []string
	fromFather, fromMother := c.inherited()
	// de-novo does not depend on ploidy
	if c.father == genotype.Wildtype && c.mother == genotype.Wildtype {
		categories = append(categories, TrioDeNovo)
	}
	if c.diploid {
		if c.child == genotype.Hom && c.father == genotype.Het && c.mother == genotype.Het {
			categories = append(categories, TrioRecessive)
		}
		if c.child == genotype.Hom && (fromFather || fromMother) {
			categories = append(categories, TrioLOH)
		}
		if c.child == genotype.Het && (fromFather || fromMother) && c.compHetGene {
			categories = append(categories, TrioCompHet)
		}
		if c.child == genotype.Het &&
			((fromFather && (c.imprinting == "paternal" || c.imprinting == "both")) ||
				(fromMother && (c.imprinting == "maternal" || c.imprinting == "both"))) {
			categories = append(categories, TrioImprinting)
		}
		return categories
	}
	if c.xChr && c.child == genotype.Hom && c.father == genotype.Wildtype && c.mother == genotype.Het {
		categories = append(categories, TrioXLinked)
	}
	return categories
}

// correctGenotype fixes calls in the ambiguous allele frequency band.
func correctGenotype(g genotype.Genotype, af float64, ok, isChild bool) genotype.Genotype {
	if !ok {
		return g
	}
	if isChild && g == genotype.Hom && af < 0.1 {
		return genotype.Wildtype
	}
	if !isChild && g == genotype.Wildtype && af >= 0.05 && af <= 0.3 {
		return genotype.Het
	}
	return g
}

type trioMember struct {
	column  int
	afIndex int
	isChild bool
}

func (f *trio) members(vl *record.VariantList) ([3]trioMember, record.SampleInfo, error) {
	var members [3]trioMember
	child, err := vl.Samples.Resolve(true, "")
	if err != nil {
		return members, child, err
	}
	father, err := vl.Samples.Resolve(false, "male")
	if err != nil {
		return members, child, err
	}
	mother, err := vl.Samples.Resolve(false, "female")
	if err != nil {
		return members, child, err
	}
	for i, s := range []record.SampleInfo{child, father, mother} {
		columns, err := sampleColumns(record.SampleHeader{s}, vl.AnnotationIndex, "trio")
		if err != nil {
			return members, child, err
		}
		members[i] = trioMember{column: columns[0], afIndex: vl.Samples.IndexOf(s.ID), isChild: i == 0}
	}
	return members, child, nil
}

func (f *trio) ApplyVariants(vl *record.VariantList, result *Result) error {
	types, err := f.StrList("types", true)
	if err != nil {
		return err
	}
	genderChild, err := f.Str("gender_child", true)
	if err != nil {
		return err
	}
	build, err := f.Str("build", true)
	if err != nil {
		return err
	}
	par, err := region.PseudoAutosomal(build)
	if err != nil {
		return err
	}
	members, child, err := f.members(vl)
	if err != nil {
		return err
	}
	if genderChild == "n/a" {
		genderChild = child.Gender
	}
	iGene, err := vl.Annotation("gene")
	if err != nil {
		return err
	}
	iQuality := vl.AnnotationIndex("quality")
	imprinting := f.imprinting
	if imprinting == nil {
		imprinting = DefaultImprinting()
	}

	calls := make([]trioCall, vl.Count())
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		v := &vl.Variants[i]
		var afs []string
		if iQuality != -1 {
			if value, ok := keyValues(v.Annotations[iQuality], ";")["AF"]; ok {
				afs = strings.Split(value, ",")
			}
		}
		var genotypes [3]genotype.Genotype
		for j, m := range members {
			g, err := genotype.Parse(v.Annotations[m.column])
			if err != nil {
				return err
			}
			var af float64
			var ok bool
			if m.afIndex >= 0 && m.afIndex < len(afs) {
				if af, ok, err = number(afs[m.afIndex]); err != nil {
					return err
				}
			}
			genotypes[j] = correctGenotype(g, af, ok, m.isChild)
		}
		genes := record.SplitGenes(v.Annotations[iGene])
		calls[i] = trioCall{
			child:      genotypes[0],
			father:     genotypes[1],
			mother:     genotypes[2],
			diploid:    v.Chr.IsAutosome() || (v.Chr.IsX() && (genderChild == "female" || par.Overlaps(v.Chr, v.Start, v.End))),
			xChr:       v.Chr.IsX(),
			imprinting: imprinting.Source(genes),
		}
	}

	// genes with a paternal and a maternal heterozygous hit
	paternal, maternal := make(map[string]bool), make(map[string]bool)
	for i := range vl.Variants {
		if !result.Passes(i) || calls[i].child != genotype.Het {
			continue
		}
		fromFather, fromMother := calls[i].inherited()
		for _, gene := range record.SplitGenes(vl.Variants[i].Annotations[iGene]) {
			gene = strings.ToUpper(gene)
			if fromFather {
				paternal[gene] = true
			}
			if fromMother {
				maternal[gene] = true
			}
		}
	}

	result.Narrow(func(i int) bool {
		call := calls[i]
		call.compHetGene = lo.SomeBy(record.SplitGenes(vl.Variants[i].Annotations[iGene]), func(gene string) bool {
			gene = strings.ToUpper(gene)
			return paternal[gene] && maternal[gene]
		})
		return slices.ContainsFunc(trioCategories(call), func(c string) bool { return slices.Contains(types, c) })
	})
	return nil
}

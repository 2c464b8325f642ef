package filter

import (
	"slices"

	"ngsFilter/pkg/genotype"
	"ngsFilter/pkg/record"
)

type genotypeAffected struct{ Base }

func newGenotypeAffected() Filter {
	f := &genotypeAffected{newBase("Genotype affected", SubjectSmallVariant,
		"Filter for genotype(s) of the 'affected' sample(s).",
		"Variants pass if all affected samples have the same genotype and the genotype is in the list selected genotype(s).",
		"comp-het keeps heterozygous variants in genes with at least two heterozygous variants.")}
	f.addParam("genotypes", StringList, []string{}, "Genotype(s)", Constraints{"valid": "wt,het,hom,n/a,comp-het", "not_empty": ""})
	return f
}

func (f *genotypeAffected) ApplyVariants(vl *record.VariantList, result *Result) error {
	genotypes, err := f.StrList("genotypes", true)
	if err != nil {
		return err
	}
	columns, err := sampleColumns(vl.Samples.Affected(), vl.AnnotationIndex, "affected")
	if err != nil {
		return err
	}
	compHet := slices.Contains(genotypes, "comp-het")
	iGene := -1
	if compHet {
		if iGene, err = vl.Annotation("gene"); err != nil {
			return err
		}
	}

	var (
		direct     = make([]bool, vl.Count())
		candidates []int
	)
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		g, same, err := sameGenotype(vl.Variants[i].Annotations, columns)
		if err != nil {
			return err
		}
		if !same {
			continue
		}
		if slices.Contains(genotypes, string(g)) {
			direct[i] = true
		} else if compHet && g == genotype.Het {
			candidates = append(candidates, i)
		}
	}
	var compHetGenes map[string]bool
	if compHet {
		compHetGenes = genesWithAtLeast(func(i int) []string {
			return record.SplitGenes(vl.Variants[i].Annotations[iGene])
		}, candidates, 2)
	}
	isCandidate := make(map[int]bool, len(candidates))
	for _, i := range candidates {
		isCandidate[i] = true
	}
	result.Narrow(func(i int) bool {
		if direct[i] {
			return true
		}
		return isCandidate[i] && containsGene(compHetGenes, record.SplitGenes(vl.Variants[i].Annotations[iGene]))
	})
	return nil
}

type genotypeControl struct{ Base }

func newGenotypeControl() Filter {
	f := &genotypeControl{newBase("Genotype control", SubjectSmallVariant,
		"Filter for genotype of the 'control' sample(s).")}
	f.addParam("genotypes", StringList, []string{}, "Genotype(s)", Constraints{"valid": "wt,het,hom,n/a", "not_empty": ""})
	f.addParam("same_genotype", Bool, false, "Also check that all 'control' samples have the same genotype.", nil)
	return f
}

func (f *genotypeControl) ApplyVariants(vl *record.VariantList, result *Result) error {
	genotypes, err := f.StrList("genotypes", true)
	if err != nil {
		return err
	}
	same := f.Bool("same_genotype")
	columns, err := sampleColumns(vl.Samples.Unaffected(), vl.AnnotationIndex, "control")
	if err != nil {
		return err
	}
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		annotations := vl.Variants[i].Annotations
		if same {
			if _, ok, err := sameGenotype(annotations, columns); err != nil {
				return err
			} else if !ok {
				result.Set(i, false)
				continue
			}
		}
		for _, c := range columns {
			g, err := genotype.Parse(annotations[c])
			if err != nil {
				return err
			}
			if !slices.Contains(genotypes, string(g)) {
				result.Set(i, false)
				break
			}
		}
	}
	return nil
}

package filter

import (
	"slices"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

// cnvThreshold fails passing CNVs for which any comma-separated value of column violates.
func cnvThreshold(cl *record.CnvList, result *Result, column string, violates func(float64) bool) error {
	idx, err := cl.Annotation(column)
	if err != nil {
		return err
	}
	for i := range cl.Cnvs {
		if !result.Passes(i) {
			continue
		}
		bad, err := anyNumber(cl.Cnvs[i].Annotations[idx], violates)
		if err != nil {
			return err
		}
		if bad {
			result.Set(i, false)
		}
	}
	return nil
}

type cnvSize struct{ Base }

func newCnvSize() Filter {
	f := &cnvSize{newBase("CNV size", SubjectCnv, "Filter for CNV size (kilobases).")}
	f.addParam("size", Double, 0.0, "Minimum CNV size in kilobases", Constraints{"min": "0"})
	return f
}

func (f *cnvSize) ApplyCnvs(cl *record.CnvList, result *Result) error {
	minSize, err := f.Double("size", true)
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return float64(cl.Cnvs[i].Size())/1000.0 >= minSize })
	return nil
}

type cnvRegions struct{ Base }

func newCnvRegions() Filter {
	f := &cnvRegions{newBase("CNV regions", SubjectCnv, "Filter for number of regions/exons.")}
	f.addParam("regions", Int, 3, "Minimum number of regions", Constraints{"min": "1"})
	return f
}

func (f *cnvRegions) ApplyCnvs(cl *record.CnvList, result *Result) error {
	minRegions, err := f.Int("regions", true)
	if err != nil {
		return err
	}
	return cnvThreshold(cl, result, "no_of_regions", func(n float64) bool { return n < float64(minRegions) })
}

type cnvCopyNumber struct{ Base }

func newCnvCopyNumber() Filter {
	f := &cnvCopyNumber{newBase("CNV copy-number", SubjectCnv, "Filter for CNV copy number.")}
	f.addParam("cn", String, "0", "Copy number", Constraints{"valid": "0,1,2,3,4+"})
	return f
}

func (f *cnvCopyNumber) ApplyCnvs(cl *record.CnvList, result *Result) error {
	cn, err := f.Str("cn", true)
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		value := cl.Cnvs[i].CopyNumber
		if cn == "4+" {
			return value >= 4
		}
		return strconv.Itoa(value) == cn
	})
	return nil
}

type cnvAlleleFrequency struct{ Base }

func newCnvAlleleFrequency() Filter {
	f := &cnvAlleleFrequency{newBase("CNV allele frequency", SubjectCnv,
		"Filter for CNV allele frequency in the analyzed cohort.")}
	f.addParam("max_af", Double, 0.05, "Maximum allele frequency", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *cnvAlleleFrequency) ApplyCnvs(cl *record.CnvList, result *Result) error {
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	return cnvThreshold(cl, result, "potential_AF", func(af float64) bool { return af > maxAf })
}

type cnvLogLikelihood struct{ Base }

func newCnvLogLikelihood() Filter {
	f := &cnvLogLikelihood{newBase("CNV log-likelihood", SubjectCnv, "Filter for CNV log-likelihood.")}
	f.addParam("min_ll", Double, 20.0, "Minimum log-likelihood", Constraints{"min": "0"})
	return f
}

func (f *cnvLogLikelihood) ApplyCnvs(cl *record.CnvList, result *Result) error {
	minLl, err := f.Double("min_ll", true)
	if err != nil {
		return err
	}
	return cnvThreshold(cl, result, "loglikelihood", func(ll float64) bool { return ll < minLl })
}

type cnvQvalue struct{ Base }

func newCnvQvalue() Filter {
	f := &cnvQvalue{newBase("CNV q-value", SubjectCnv, "Filter for CNV q-value.")}
	f.addParam("max_q", Double, 1.0, "Maximum q-value", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *cnvQvalue) ApplyCnvs(cl *record.CnvList, result *Result) error {
	maxQ, err := f.Double("max_q", true)
	if err != nil {
		return err
	}
	return cnvThreshold(cl, result, "qvalue", func(q float64) bool { return q > maxQ })
}

type cnvGeneConstraint struct{ Base }

func newCnvGeneConstraint() Filter {
	f := &cnvGeneConstraint{newBase("CNV gene constraint", SubjectCnv,
		"Filter based on gene constraint (gnomAD o/e score for LOF variants).")}
	f.addParam("max_oe_lof", Double, 0.35, "Maximum gnomAD o/e score for LoF variants", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *cnvGeneConstraint) ApplyCnvs(cl *record.CnvList, result *Result) error {
	maxOeLof, err := f.Double("max_oe_lof", true)
	if err != nil {
		return err
	}
	iInfo, err := cl.Annotation("gene_info")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return maxOeLofPasses(cl.Cnvs[i].Annotations[iInfo], maxOeLof) })
	return nil
}

type cnvGeneOverlap struct{ Base }

func newCnvGeneOverlap() Filter {
	f := &cnvGeneOverlap{newBase("CNV gene overlap", SubjectCnv,
		"Filter based on the overlap of the CNV with genes given by the 'gene_info' column.")}
	f.addParam("complete", Bool, true, "Overlaps the complete gene.", nil)
	f.addParam("exonic/splicing", Bool, true, "Overlaps the coding or splicing region of the gene.", nil)
	f.addParam("intronic/intergenic", Bool, false, "Overlaps only intronic/intergenic region of the gene.", nil)
	return f
}

func (f *cnvGeneOverlap) ApplyCnvs(cl *record.CnvList, result *Result) error {
	selected := lo.Filter([]string{"complete", "exonic/splicing", "intronic/intergenic"}, func(name string, _ int) bool {
		return f.Bool(name)
	})
	if len(selected) == 0 {
		return errs.Argument("filter '%s': at least one gene overlap type has to be selected", f.Name())
	}
	iInfo, err := cl.Annotation("gene_info")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		return lo.SomeBy(parseGeneBlob(cl.Cnvs[i].Annotations[iInfo]), func(g geneInfo) bool {
			return slices.Contains(selected, g.values["region"])
		})
	})
	return nil
}

type cnvCompHet struct{ Base }

func newCnvCompHet() Filter {
	f := &cnvCompHet{newBase("CNV compound-heterozygous", SubjectCnv,
		"Filter for compound-heterozygous CNVs.", "Keeps CNVs in genes hit by at least two CNVs.")}
	f.addParam("mode", String, "n/a", "Compound-heterozygotes mode", Constraints{"valid": "n/a,CNV-CNV"})
	return f
}

func (f *cnvCompHet) ApplyCnvs(cl *record.CnvList, result *Result) error {
	mode, err := f.Str("mode", true)
	if err != nil {
		return err
	}
	if mode == "n/a" {
		return nil
	}
	genesOf := func(i int) []string { return cl.Cnvs[i].Genes }
	hit := genesWithAtLeast(genesOf, passingIndices(result), 2)
	result.Narrow(func(i int) bool { return containsGene(hit, genesOf(i)) })
	return nil
}

type cnvOmimGenes struct{ Base }

func newCnvOmimGenes() Filter {
	f := &cnvOmimGenes{newBase("CNV OMIM genes", SubjectCnv, "Filter for OMIM genes i.e. the 'omim' column is not empty.")}
	f.addAction(ActionFilter, "FILTER,REMOVE")
	return f
}

func (f *cnvOmimGenes) ApplyCnvs(cl *record.CnvList, result *Result) error {
	action, err := f.action()
	if err != nil {
		return err
	}
	iOmim, err := cl.Annotation("omim")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return strings.TrimSpace(cl.Cnvs[i].Annotations[iOmim]) != ""
	})
	return nil
}

type cnvGenes struct{ Base }

func newCnvGenes() Filter {
	f := &cnvGenes{newBase("CNV genes", SubjectCnv, "Filter that preserves a gene set.", "Wildcards like 'OR*' are supported.")}
	f.addParam("genes", StringList, []string{}, "Gene set", Constraints{"not_empty": ""})
	return f
}

func (f *cnvGenes) ApplyCnvs(cl *record.CnvList, result *Result) error {
	list, err := f.StrList("genes", true)
	if err != nil {
		return err
	}
	matcher := newGeneMatcher(list)
	result.Narrow(func(i int) bool { return matcher.matchAny(cl.Cnvs[i].Genes) })
	return nil
}

package filter

import (
	"ngsFilter/pkg/genotype"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

type alleleFrequency struct{ Base }

func newAlleleFrequency() Filter {
	f := &alleleFrequency{newBase("Allele frequency", SubjectSmallVariant,
		"Filter based on overall allele frequency given by 1000 Genomes and gnomAD.")}
	f.addParam("max_af", Double, 1.0, "Maximum allele frequency in %", Constraints{"min": "0", "max": "100"})
	return f
}

var populationColumns = []string{"1000g", "gnomAD"}

func (f *alleleFrequency) ApplyVariants(vl *record.VariantList, result *Result) error {
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	maxAf /= 100
	if _, err := vl.Annotation("gnomAD"); err != nil {
		return err
	}
	columns := lo.Filter(lo.Map(populationColumns, func(name string, _ int) int { return vl.AnnotationIndex(name) }),
		func(i int, _ int) bool { return i != -1 })
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		for _, c := range columns {
			above, err := anyNumber(vl.Variants[i].Annotations[c], func(af float64) bool { return af > maxAf })
			if err != nil {
				return err
			}
			if above {
				result.Set(i, false)
				break
			}
		}
	}
	return nil
}

var vcfPopulationKeys = []string{"gnomADg_AF", "gnomADe_AF"}

func (f *alleleFrequency) ApplyVcf(vf *record.VcfFile, result *Result) error {
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	maxAf /= 100
	for i := range vf.Lines {
		if !result.Passes(i) {
			continue
		}
		for _, key := range vcfPopulationKeys {
			value, ok := vf.Lines[i].InfoValue(key)
			if !ok {
				continue
			}
			above, err := anyNumber(value, func(af float64) bool { return af > maxAf })
			if err != nil {
				return err
			}
			if above {
				result.Set(i, false)
				break
			}
		}
	}
	return nil
}

type subPopulationAlleleFrequency struct{ Base }

func newSubPopulationAlleleFrequency() Filter {
	f := &subPopulationAlleleFrequency{newBase("Allele frequency (sub-populations)", SubjectSmallVariant,
		"Filter based on sub-population allele frequency given by gnomAD.")}
	f.addParam("max_af", Double, 1.0, "Maximum allele frequency in %", Constraints{"min": "0", "max": "100"})
	return f
}

func (f *subPopulationAlleleFrequency) ApplyVariants(vl *record.VariantList, result *Result) error {
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	maxAf /= 100
	iSub, err := vl.Annotation("gnomAD_sub")
	if err != nil {
		return err
	}
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		above, err := anyNumber(vl.Variants[i].Annotations[iSub], func(af float64) bool { return af > maxAf })
		if err != nil {
			return err
		}
		if above {
			result.Set(i, false)
		}
	}
	return nil
}

type countNGSD struct{ Base }

func newCountNGSD() Filter {
	f := &countNGSD{newBase("Count NGSD", SubjectSmallVariant,
		"Filter based on the hom/het occurrences of a variant in the NGSD.",
		"If an affected sample is homozygous, only homozygous occurrences are counted.")}
	f.addParam("max_count", Int, 20, "Maximum NGSD count", Constraints{"min": "0"})
	f.addParam("ignore_genotype", Bool, false, "If set, all NGSD entries are counted independent of the variant genotype.", nil)
	return f
}

func (f *countNGSD) ApplyVariants(vl *record.VariantList, result *Result) error {
	maxCount, err := f.Int("max_count", true)
	if err != nil {
		return err
	}
	ignoreGenotype := f.Bool("ignore_genotype")
	iHom, err := vl.Annotation("NGSD_hom")
	if err != nil {
		return err
	}
	iHet, err := vl.Annotation("NGSD_het")
	if err != nil {
		return err
	}
	var genoColumns []int
	// genotype-aware counting is skipped for lists without affected samples
	if affected := vl.Samples.Affected(); !ignoreGenotype && len(affected) > 0 {
		genoColumns, err = sampleColumns(affected, vl.AnnotationIndex, "affected")
		if err != nil {
			return err
		}
	}
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		annotations := vl.Variants[i].Annotations
		hom, _, err := number(annotations[iHom])
		if err != nil {
			return err
		}
		het, _, err := number(annotations[iHet])
		if err != nil {
			return err
		}
		count := hom + het
		if lo.SomeBy(genoColumns, func(c int) bool { return annotations[c] == string(genotype.Hom) }) {
			count = hom
		}
		if count > float64(maxCount) {
			result.Set(i, false)
		}
	}
	return nil
}

func (f *countNGSD) ApplyVcf(vf *record.VcfFile, result *Result) error {
	maxCount, err := f.Int("max_count", true)
	if err != nil {
		return err
	}
	for i := range vf.Lines {
		if !result.Passes(i) {
			continue
		}
		var count float64
		for _, key := range []string{"NGSD_HOM", "NGSD_HET"} {
			value, _ := vf.Lines[i].InfoValue(key)
			n, _, err := number(value)
			if err != nil {
				return err
			}
			count += n
		}
		if count > float64(maxCount) {
			result.Set(i, false)
		}
	}
	return nil
}

type somaticAlleleFrequency struct{ Base }

func newSomaticAlleleFrequency() Filter {
	f := &somaticAlleleFrequency{newBase("Somatic allele frequency", SubjectSmallVariant,
		"Filter based on the allele frequency of variants in tumor and normal sample.")}
	f.addParam("min_af_tum", Double, 5.0, "Minimum allele frequency in tumor sample in %", Constraints{"min": "0", "max": "100"})
	f.addParam("max_af_nor", Double, 1.0, "Maximum allele frequency in normal sample in %", Constraints{"min": "0", "max": "100"})
	return f
}

func (f *somaticAlleleFrequency) ApplyVariants(vl *record.VariantList, result *Result) error {
	minTumor, err := f.Double("min_af_tum", true)
	if err != nil {
		return err
	}
	maxNormal, err := f.Double("max_af_nor", true)
	if err != nil {
		return err
	}
	iTumor, err := vl.Annotation("tumor_af")
	if err != nil {
		return err
	}
	iNormal := vl.AnnotationIndex("normal_af")
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		annotations := vl.Variants[i].Annotations
		tumor, ok, err := number(annotations[iTumor])
		if err != nil {
			return err
		}
		if !ok || tumor*100 < minTumor {
			result.Set(i, false)
			continue
		}
		if iNormal == -1 {
			continue
		}
		normal, ok, err := number(annotations[iNormal])
		if err != nil {
			return err
		}
		if ok && normal*100 > maxNormal {
			result.Set(i, false)
		}
	}
	return nil
}

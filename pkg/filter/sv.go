package filter

import (
	"slices"
	"strings"

	"ngsFilter/pkg/genotype"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

type svType struct{ Base }

func newSvType() Filter {
	f := &svType{newBase("SV type", SubjectSv, "Filter based on SV types.")}
	f.addParam("Structural variant type", StringList, []string{}, "Structural variant type",
		Constraints{"valid": "DEL,DUP,INS,INV,BND", "not_empty": ""})
	return f
}

func (f *svType) ApplySvs(sl *record.SvList, result *Result) error {
	types, err := f.StrList("Structural variant type", true)
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return slices.Contains(types, string(sl.Svs[i].Type)) })
	return nil
}

type svRemoveChrType struct{ Base }

func newSvRemoveChrType() Filter {
	f := &svRemoveChrType{newBase("SV remove chr type", SubjectSv,
		"Removes all structural variants which contain non-standard chromosomes.")}
	f.addParam("chromosome type", String, "special chromosomes", "Chromosome type", Constraints{"valid": "special chromosomes"})
	return f
}

func (f *svRemoveChrType) ApplySvs(sl *record.SvList, result *Result) error {
	if _, err := f.Str("chromosome type", true); err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return sl.Svs[i].Chr1.IsNonSpecial() && sl.Svs[i].Chr2.IsNonSpecial() })
	return nil
}

type svQuality struct{ Base }

func newSvQuality() Filter {
	f := &svQuality{newBase("SV quality", SubjectSv, "Filter for SV quality (QUAL column).")}
	f.addParam("quality", Int, 0, "Minimum quality score", Constraints{"min": "0"})
	return f
}

func (f *svQuality) ApplySvs(sl *record.SvList, result *Result) error {
	minQuality, err := f.Int("quality", true)
	if err != nil {
		return err
	}
	return svThreshold(sl, result, "QUAL", func(q float64) bool { return q < float64(minQuality) })
}

// svThreshold fails passing SVs for which any comma-separated value of column violates.
func svThreshold(sl *record.SvList, result *Result, column string, violates func(float64) bool) error {
	idx, err := sl.Annotation(column)
	if err != nil {
		return err
	}
	for i := range sl.Svs {
		if !result.Passes(i) {
			continue
		}
		bad, err := anyNumber(sl.Svs[i].Annotations[idx], violates)
		if err != nil {
			return err
		}
		if bad {
			result.Set(i, false)
		}
	}
	return nil
}

type svFilterColumn struct{ Base }

func newSvFilterColumn() Filter {
	f := &svFilterColumn{newBase("SV filter columns", SubjectSv, "Filter based on the entries of the 'FILTER' column.")}
	f.addParam("entries", StringList, []string{}, "Filter column entries", Constraints{"not_empty": ""})
	f.addAction(ActionRemove, "REMOVE,FILTER,KEEP")
	return f
}

func (f *svFilterColumn) ApplySvs(sl *record.SvList, result *Result) error {
	entries, err := f.StrList("entries", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	iFilter, err := sl.Annotation("FILTER")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return lo.Some(splitTags(sl.Svs[i].Annotations[iFilter]), entries)
	})
	return nil
}

// svSamples resolves the FORMAT column and the sample columns of an SV list.
type svSamples struct {
	format  int
	columns []int
}

func newSvSamples(sl *record.SvList, samples record.SampleHeader, what string) (svSamples, error) {
	format, err := sl.Annotation("FORMAT")
	if err != nil {
		return svSamples{}, err
	}
	columns, err := sampleColumns(samples, sl.AnnotationIndex, what)
	return svSamples{format: format, columns: columns}, err
}

// decode returns genotype and FORMAT fields of every sample for SV i.
func (s svSamples) decode(sl *record.SvList, i int) ([]genotype.Genotype, []map[string]string, error) {
	annotations := sl.Svs[i].Annotations
	genotypes := make([]genotype.Genotype, len(s.columns))
	fields := make([]map[string]string, len(s.columns))
	for j, c := range s.columns {
		g, f, err := genotype.Decode(annotations[s.format], annotations[c])
		if err != nil {
			return nil, nil, err
		}
		genotypes[j], fields[j] = g, f
	}
	return genotypes, fields, nil
}

func svGenotypeFilter(b *Base, sl *record.SvList, result *Result, samples record.SampleHeader, what string) error {
	genotypes, err := b.StrList("genotypes", true)
	if err != nil {
		return err
	}
	s, err := newSvSamples(sl, samples, what)
	if err != nil {
		return err
	}
	for i := range sl.Svs {
		if !result.Passes(i) {
			continue
		}
		decoded, _, err := s.decode(sl, i)
		if err != nil {
			return err
		}
		if !lo.EveryBy(decoded, func(g genotype.Genotype) bool { return slices.Contains(genotypes, string(g)) }) {
			result.Set(i, false)
		}
	}
	return nil
}

type svGenotypeAffected struct{ Base }

func newSvGenotypeAffected() Filter {
	f := &svGenotypeAffected{newBase("SV genotype affected", SubjectSv, "Filter for genotype(s) of the 'affected' sample(s).")}
	f.addParam("genotypes", StringList, []string{}, "Genotype(s)", Constraints{"valid": "wt,het,hom,n/a", "not_empty": ""})
	return f
}

func (f *svGenotypeAffected) ApplySvs(sl *record.SvList, result *Result) error {
	return svGenotypeFilter(&f.Base, sl, result, sl.Samples.Affected(), "affected")
}

type svGenotypeControl struct{ Base }

func newSvGenotypeControl() Filter {
	f := &svGenotypeControl{newBase("SV genotype control", SubjectSv, "Filter for genotype of the 'control' sample(s).")}
	f.addParam("genotypes", StringList, []string{}, "Genotype(s)", Constraints{"valid": "wt,het,hom,n/a", "not_empty": ""})
	return f
}

func (f *svGenotypeControl) ApplySvs(sl *record.SvList, result *Result) error {
	return svGenotypeFilter(&f.Base, sl, result, sl.Samples.Unaffected(), "control")
}

// svReadAF filters on the alternate read fraction of a "ref,alt" FORMAT field of affected samples.
type svReadAF struct {
	Base
	key string
}

func newSvPairedReadAF() Filter {
	return newSvReadAF("SV paired read AF", "PR", "paired reads")
}

func newSvSplitReadAF() Filter {
	return newSvReadAF("SV split read AF", "SR", "split reads")
}

func newSvReadAF(name, key, what string) Filter {
	f := &svReadAF{Base: newBase(name, SubjectSv, "Filter based on the allele frequency of "+what+" ("+key+" field) of the affected sample(s)."), key: key}
	f.addParam("min_af", Double, 0.0, "Minimum allele frequency of "+what, Constraints{"min": "0", "max": "1"})
	f.addParam("max_af", Double, 1.0, "Maximum allele frequency of "+what, Constraints{"min": "0", "max": "1"})
	return f
}

func (f *svReadAF) ApplySvs(sl *record.SvList, result *Result) error {
	minAf, err := f.Double("min_af", true)
	if err != nil {
		return err
	}
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	s, err := newSvSamples(sl, sl.Samples.Affected(), "affected")
	if err != nil {
		return err
	}
	for i := range sl.Svs {
		if !result.Passes(i) {
			continue
		}
		_, fields, err := s.decode(sl, i)
		if err != nil {
			return err
		}
		for _, sample := range fields {
			ref, alt, ok, err := genotype.ReadCounts(sample, f.key)
			if err != nil {
				return err
			}
			if !ok || ref+alt == 0 {
				continue
			}
			af := float64(alt) / float64(ref+alt)
			if af < minAf || af > maxAf {
				result.Set(i, false)
				break
			}
		}
	}
	return nil
}

type svSize struct{ Base }

func newSvSize() Filter {
	f := &svSize{newBase("SV size", SubjectSv, "Filter for SV size.", "Translocations (BND) are not filtered.")}
	f.addParam("min_size", Int, 0, "Minimum SV size (bases)", Constraints{"min": "0"})
	f.addParam("max_size", Int, 0, "Maximum SV size (bases); 0 disables the upper bound", Constraints{"min": "0"})
	return f
}

func (f *svSize) ApplySvs(sl *record.SvList, result *Result) error {
	minSize, err := f.Int("min_size", true)
	if err != nil {
		return err
	}
	maxSize, err := f.Int("max_size", true)
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		size := sl.Size(i)
		if size == -1 {
			return true
		}
		return size >= minSize && (maxSize == 0 || size <= maxSize)
	})
	return nil
}

type svGeneConstraint struct{ Base }

func newSvGeneConstraint() Filter {
	f := &svGeneConstraint{newBase("SV gene constraint", SubjectSv,
		"Filter based on gene constraint (gnomAD o/e score for LOF variants).")}
	f.addParam("max_oe_lof", Double, 0.35, "Maximum gnomAD o/e score for LoF variants", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *svGeneConstraint) ApplySvs(sl *record.SvList, result *Result) error {
	maxOeLof, err := f.Double("max_oe_lof", true)
	if err != nil {
		return err
	}
	iInfo, err := sl.Annotation("GENE_INFO")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return maxOeLofPasses(sl.Svs[i].Annotations[iInfo], maxOeLof) })
	return nil
}

type svOmimGenes struct{ Base }

func newSvOmimGenes() Filter {
	f := &svOmimGenes{newBase("SV OMIM genes", SubjectSv, "Filter for OMIM genes i.e. the 'OMIM' column is not empty.")}
	f.addAction(ActionFilter, "FILTER,REMOVE")
	return f
}

func (f *svOmimGenes) ApplySvs(sl *record.SvList, result *Result) error {
	action, err := f.action()
	if err != nil {
		return err
	}
	iOmim, err := sl.Annotation("OMIM")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool { return strings.TrimSpace(sl.Svs[i].Annotations[iOmim]) != "" })
	return nil
}

type svCompHet struct{ Base }

func newSvCompHet() Filter {
	f := &svCompHet{newBase("SV compound-heterozygous", SubjectSv,
		"Filter for compound-heterozygous SVs.", "Keeps SVs in genes hit by at least two SVs.")}
	f.addParam("mode", String, "n/a", "Compound-heterozygotes mode", Constraints{"valid": "n/a,SV-SV"})
	return f
}

func (f *svCompHet) ApplySvs(sl *record.SvList, result *Result) error {
	mode, err := f.Str("mode", true)
	if err != nil {
		return err
	}
	if mode == "n/a" {
		return nil
	}
	iGenes, err := sl.Annotation("GENES")
	if err != nil {
		return err
	}
	genesOf := func(i int) []string { return record.SplitGenes(sl.Svs[i].Annotations[iGenes]) }
	hit := genesWithAtLeast(genesOf, passingIndices(result), 2)
	result.Narrow(func(i int) bool { return containsGene(hit, genesOf(i)) })
	return nil
}

type svCountNGSD struct{ Base }

func newSvCountNGSD() Filter {
	f := &svCountNGSD{newBase("SV count NGSD", SubjectSv, "Filter based on the hom/het occurrences of a SV in the NGSD.")}
	f.addParam("max_count", Int, 20, "Maximum NGSD SV count", Constraints{"min": "0"})
	return f
}

func (f *svCountNGSD) ApplySvs(sl *record.SvList, result *Result) error {
	maxCount, err := f.Int("max_count", true)
	if err != nil {
		return err
	}
	iHom, err := sl.Annotation("NGSD_HOM")
	if err != nil {
		return err
	}
	iHet, err := sl.Annotation("NGSD_HET")
	if err != nil {
		return err
	}
	for i := range sl.Svs {
		if !result.Passes(i) {
			continue
		}
		var count float64
		for _, c := range []int{iHom, iHet} {
			n, _, err := number(sl.Svs[i].Annotations[c])
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

type svAlleleFrequencyNGSD struct{ Base }

func newSvAlleleFrequencyNGSD() Filter {
	f := &svAlleleFrequencyNGSD{newBase("SV allele frequency NGSD", SubjectSv, "Filter based on the allele frequency of this SV in the NGSD.")}
	f.addParam("max_af", Double, 1.0, "Maximum allele frequency in %", Constraints{"min": "0", "max": "100"})
	return f
}

func (f *svAlleleFrequencyNGSD) ApplySvs(sl *record.SvList, result *Result) error {
	maxAf, err := f.Double("max_af", true)
	if err != nil {
		return err
	}
	return svThreshold(sl, result, "NGSD_AF", func(af float64) bool { return af*100 > maxAf })
}

type svGenes struct{ Base }

func newSvGenes() Filter {
	f := &svGenes{newBase("SV genes", SubjectSv, "Filter that preserves a gene set.", "Wildcards like 'OR*' are supported.")}
	f.addParam("genes", StringList, []string{}, "Gene set", Constraints{"not_empty": ""})
	return f
}

func (f *svGenes) ApplySvs(sl *record.SvList, result *Result) error {
	list, err := f.StrList("genes", true)
	if err != nil {
		return err
	}
	iGenes, err := sl.Annotation("GENES")
	if err != nil {
		return err
	}
	matcher := newGeneMatcher(list)
	result.Narrow(func(i int) bool { return matcher.matchAny(record.SplitGenes(sl.Svs[i].Annotations[iGenes])) })
	return nil
}

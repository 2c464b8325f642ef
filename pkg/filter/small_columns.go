package filter

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"
	"ngsFilter/pkg/region"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

func splitTags(text string) []string {
	return lo.Compact(lo.Map(strings.Split(text, ";"), func(s string, _ int) string { return strings.TrimSpace(s) }))
}

type filterColumn struct{ Base }

func newFilterColumn() Filter {
	f := &filterColumn{newBase("Filter columns", SubjectSmallVariant,
		"Filter based on the entries of the 'filter' column.")}
	f.addParam("entries", StringList, []string{}, "Filter column entries", Constraints{"not_empty": ""})
	f.addAction(ActionRemove, "REMOVE,FILTER,KEEP")
	return f
}

func (f *filterColumn) settings() (Action, []string, error) {
	entries, err := f.StrList("entries", true)
	if err != nil {
		return "", nil, err
	}
	action, err := f.action()
	return action, entries, err
}

func (f *filterColumn) ApplyVariants(vl *record.VariantList, result *Result) error {
	action, entries, err := f.settings()
	if err != nil {
		return err
	}
	iFilter, err := vl.Annotation("filter")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return lo.Some(splitTags(vl.Variants[i].Annotations[iFilter]), entries)
	})
	return nil
}

func (f *filterColumn) ApplyVcf(vf *record.VcfFile, result *Result) error {
	action, entries, err := f.settings()
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return lo.Some(vf.Lines[i].Filters, entries)
	})
	return nil
}

type filterColumnEmpty struct{ Base }

func newFilterColumnEmpty() Filter {
	return &filterColumnEmpty{newBase("Filter column empty", SubjectSmallVariant,
		"Removes all variants which have an entry in the 'filter' column.")}
}

func (f *filterColumnEmpty) ApplyVariants(vl *record.VariantList, result *Result) error {
	iFilter, err := vl.Annotation("filter")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return len(splitTags(vl.Variants[i].Annotations[iFilter])) == 0 })
	return nil
}

func (f *filterColumnEmpty) ApplyVcf(vf *record.VcfFile, result *Result) error {
	result.Narrow(func(i int) bool { return vf.Lines[i].Passed() })
	return nil
}

type snvsOnly struct{ Base }

func newSnvsOnly() Filter {
	return &snvsOnly{newBase("SNVs only", SubjectSmallVariant, "Removes all InDels.")}
}

func (f *snvsOnly) ApplyVariants(vl *record.VariantList, result *Result) error {
	result.Narrow(func(i int) bool { return vl.Variants[i].IsSNV() })
	return nil
}

func (f *snvsOnly) ApplyVcf(vf *record.VcfFile, result *Result) error {
	result.Narrow(func(i int) bool { return vf.Lines[i].IsSNV() })
	return nil
}

type impact struct{ Base }

func newImpact() Filter {
	f := &impact{newBase("Impact", SubjectSmallVariant,
		"Filter based on the variant impact given by VEP.")}
	f.addParam("impact", StringList, []string{"HIGH", "MODERATE", "LOW"}, "Valid impacts",
		Constraints{"valid": "HIGH,MODERATE,LOW,MODIFIER", "not_empty": ""})
	return f
}

func (f *impact) ApplyVariants(vl *record.VariantList, result *Result) error {
	impacts, err := f.StrList("impact", true)
	if err != nil {
		return err
	}
	iCoding, err := vl.Annotation("coding_and_splicing")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		return lo.SomeBy(record.ParseTranscripts(vl.Variants[i].Annotations[iCoding]), func(t record.Transcript) bool {
			return slices.Contains(impacts, t.Impact)
		})
	})
	return nil
}

var variantTypes = []string{
	"splice_acceptor_variant", "splice_donor_variant", "splice_region_variant",
	"frameshift_variant", "stop_gained", "stop_lost", "start_lost",
	"inframe_insertion", "inframe_deletion", "missense_variant", "protein_altering_variant",
	"synonymous_variant", "5_prime_UTR_variant", "3_prime_UTR_variant",
	"intron_variant", "upstream_gene_variant", "downstream_gene_variant",
	"non_coding_transcript_exon_variant", "intergenic_variant",
}

type variantType struct{ Base }

func newVariantType() Filter {
	f := &variantType{newBase("Variant type", SubjectSmallVariant,
		"Filter for variant types as defined by sequence ontology.")}
	f.addParam("HIGH", StringList, []string{"frameshift_variant", "splice_acceptor_variant", "splice_donor_variant", "start_lost", "stop_gained", "stop_lost"},
		"High impact variant types", Constraints{"valid": strings.Join(variantTypes, ",")})
	f.addParam("MODERATE", StringList, []string{"inframe_deletion", "inframe_insertion", "missense_variant", "protein_altering_variant"},
		"Moderate impact variant types", Constraints{"valid": strings.Join(variantTypes, ",")})
	f.addParam("LOW", StringList, []string{"splice_region_variant"},
		"Low impact variant types", Constraints{"valid": strings.Join(variantTypes, ",")})
	f.addParam("MODIFIER", StringList, []string{},
		"Modifier impact variant types", Constraints{"valid": strings.Join(variantTypes, ",")})
	return f
}

func (f *variantType) ApplyVariants(vl *record.VariantList, result *Result) error {
	var selected []string
	for _, name := range []string{"HIGH", "MODERATE", "LOW", "MODIFIER"} {
		types, err := f.StrList(name, true)
		if err != nil {
			return err
		}
		selected = append(selected, types...)
	}
	iCoding, err := vl.Annotation("coding_and_splicing")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		return lo.SomeBy(record.ParseTranscripts(vl.Variants[i].Annotations[iCoding]), func(t record.Transcript) bool {
			return lo.Some(t.Types(), selected)
		})
	})
	return nil
}

type geneSet struct{ Base }

func newGeneSet() Filter {
	f := &geneSet{newBase("Genes", SubjectSmallVariant,
		"Filter that preserves a gene set.", "Wildcards like 'OR*' are supported.")}
	f.addParam("genes", StringList, []string{}, "Gene set", Constraints{"not_empty": ""})
	return f
}

func (f *geneSet) ApplyVariants(vl *record.VariantList, result *Result) error {
	list, err := f.StrList("genes", true)
	if err != nil {
		return err
	}
	iGene, err := vl.Annotation("gene")
	if err != nil {
		return err
	}
	matcher := newGeneMatcher(list)
	result.Narrow(func(i int) bool {
		return matcher.matchAny(record.SplitGenes(vl.Variants[i].Annotations[iGene]))
	})
	return nil
}

type regionsFilter struct{ Base }

func newRegionsFilter() Filter {
	f := &regionsFilter{newBase("Regions", SubjectSmallVariant,
		"Filter that preserves variants overlapping the given regions, e.g. 'chr1:1000-2000'.")}
	f.addParam("regions", StringList, []string{}, "Regions in the format chr:start-end", Constraints{"not_empty": ""})
	return f
}

func parseRegion(text string) (region.Region, error) {
	chr, span, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return region.Region{}, errs.Argument("invalid region '%s'", text)
	}
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		to = from
	}
	start, err1 := strconv.Atoi(from)
	end, err2 := strconv.Atoi(to)
	if err1 != nil || err2 != nil || start > end {
		return region.Region{}, errs.Argument("invalid region '%s'", text)
	}
	return region.Region{Chr: record.Chromosome(chr), Start: start, End: end}, nil
}

func (f *regionsFilter) ApplyVariants(vl *record.VariantList, result *Result) error {
	list, err := f.StrList("regions", true)
	if err != nil {
		return err
	}
	var bed region.BedFile
	for _, text := range list {
		r, err := parseRegion(text)
		if err != nil {
			return err
		}
		bed = append(bed, r)
	}
	index := region.NewIndex(bed)
	result.Narrow(func(i int) bool {
		v := &vl.Variants[i]
		return index.Overlaps(v.Chr, v.Start, v.End)
	})
	return nil
}

type textSearch struct{ Base }

func newTextSearch() Filter {
	f := &textSearch{newBase("Text search", SubjectSmallVariant,
		"Filter for text match in variant annotations.", "The text search is not case-sensitive.")}
	f.addParam("term", String, "", "Search term", Constraints{"not_empty": ""})
	f.addAction(ActionFilter, "FILTER,REMOVE")
	return f
}

func (f *textSearch) ApplyVariants(vl *record.VariantList, result *Result) error {
	term, err := f.Str("term", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	fold := cases.Fold()
	term = fold.String(term)
	result.ApplyAction(action, func(i int) bool {
		return lo.SomeBy(vl.Variants[i].Annotations, func(a string) bool {
			return strings.Contains(fold.String(a), term)
		})
	})
	return nil
}

type columnMatch struct{ Base }

func newColumnMatch() Filter {
	f := &columnMatch{newBase("Column match", SubjectSmallVariant,
		"Filter that matches the content of a column against a regular expression.")}
	f.addParam("pattern", String, "", "Pattern to match to column", Constraints{"not_empty": ""})
	f.addParam("column", String, "", "Column to filter", Constraints{"not_empty": ""})
	f.addAction(ActionFilter, "FILTER,REMOVE,KEEP")
	return f
}

func (f *columnMatch) ApplyVariants(vl *record.VariantList, result *Result) error {
	pattern, err := f.Str("pattern", true)
	if err != nil {
		return err
	}
	column, err := f.Str("column", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errs.Argument("invalid regular expression '%s': %v", pattern, err)
	}
	iColumn, err := vl.Annotation(column)
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return re.MatchString(vl.Variants[i].Annotations[iColumn])
	})
	return nil
}

type omimGenes struct{ Base }

func newOmimGenes() Filter {
	f := &omimGenes{newBase("OMIM genes", SubjectSmallVariant,
		"Filter for OMIM genes i.e. the 'OMIM' column is not empty.")}
	f.addAction(ActionFilter, "FILTER,REMOVE")
	return f
}

func (f *omimGenes) ApplyVariants(vl *record.VariantList, result *Result) error {
	action, err := f.action()
	if err != nil {
		return err
	}
	iOmim, err := vl.Annotation("OMIM")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return strings.TrimSpace(vl.Variants[i].Annotations[iOmim]) != ""
	})
	return nil
}

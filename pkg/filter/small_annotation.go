package filter

import (
	"slices"
	"strings"

	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

type classificationNGSD struct{ Base }

func newClassificationNGSD() Filter {
	f := &classificationNGSD{newBase("Classification NGSD", SubjectSmallVariant,
		"Filter for variant classification from NGSD.")}
	f.addParam("classes", StringList, []string{"4", "5"}, "NGSD classes", Constraints{"valid": "1,2,3,4,5,M", "not_empty": ""})
	f.addAction(ActionKeep, "KEEP,FILTER,REMOVE")
	return f
}

func (f *classificationNGSD) ApplyVariants(vl *record.VariantList, result *Result) error {
	classes, err := f.StrList("classes", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	iClass, err := vl.Annotation("classification")
	if err != nil {
		return err
	}
	result.ApplyAction(action, func(i int) bool {
		return slices.Contains(classes, strings.TrimSpace(vl.Variants[i].Annotations[iClass]))
	})
	return nil
}

type annotatedPathogenic struct{ Base }

func newAnnotatedPathogenic() Filter {
	f := &annotatedPathogenic{newBase("Annotated pathogenic", SubjectSmallVariant,
		"Filter that matches variants annotated to be pathogenic by ClinVar or HGMD.")}
	f.addParam("sources", StringList, []string{"ClinVar", "HGMD"}, "Sources of pathogenicity to use", Constraints{"valid": "ClinVar,HGMD", "not_empty": ""})
	f.addParam("also_likely_pathogenic", Bool, false, "Also consider likely pathogenic variants", nil)
	f.addAction(ActionKeep, "KEEP,FILTER")
	return f
}

// clinVarPathogenic matches entries like "123 [pathogenic DISEASE=...];".
func clinVarPathogenic(text string, likely bool) bool {
	text = strings.ToLower(text)
	if strings.Contains(text, "[pathogenic") {
		return true
	}
	return likely && strings.Contains(text, "[likely pathogenic")
}

func (f *annotatedPathogenic) ApplyVariants(vl *record.VariantList, result *Result) error {
	sources, err := f.StrList("sources", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	likely := f.Bool("also_likely_pathogenic")
	iClinVar, iHgmd := -1, -1
	if slices.Contains(sources, "ClinVar") {
		if iClinVar, err = vl.Annotation("ClinVar"); err != nil {
			return err
		}
	}
	if slices.Contains(sources, "HGMD") {
		if iHgmd, err = vl.Annotation("HGMD"); err != nil {
			return err
		}
	}
	result.ApplyAction(action, func(i int) bool {
		annotations := vl.Variants[i].Annotations
		return (iClinVar != -1 && clinVarPathogenic(annotations[iClinVar], likely)) ||
			(iHgmd != -1 && record.HgmdPathogenic(annotations[iHgmd], likely))
	})
	return nil
}

type predictedPathogenic struct{ Base }

func newPredictedPathogenic() Filter {
	f := &predictedPathogenic{newBase("Predicted pathogenic", SubjectSmallVariant,
		"Filter for variants predicted to be pathogenic.",
		"Pathogenicity predictions used: SIFT, PolyPhen, CADD and REVEL.")}
	f.addParam("min", Int, 1, "Minimum number of pathogenic predictions", Constraints{"min": "1"})
	f.addAction(ActionFilter, "FILTER,KEEP")
	f.addParam("skip_high_impact", Bool, false, "Do not apply this filter to variants with impact 'HIGH'.", nil)
	f.addParam("cutoff_cadd", Double, 20.0, "Minimum CADD score for a pathogenic prediction.", Constraints{"min": "0"})
	f.addParam("cutoff_revel", Double, 0.5, "Minimum REVEL score for a pathogenic prediction.", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *predictedPathogenic) ApplyVariants(vl *record.VariantList, result *Result) error {
	minCount, err := f.Int("min", true)
	if err != nil {
		return err
	}
	action, err := f.action()
	if err != nil {
		return err
	}
	cutoffCadd, err := f.Double("cutoff_cadd", true)
	if err != nil {
		return err
	}
	cutoffRevel, err := f.Double("cutoff_revel", true)
	if err != nil {
		return err
	}
	skipHigh := f.Bool("skip_high_impact")
	iSift, iPolyphen := vl.AnnotationIndex("sift"), vl.AnnotationIndex("polyphen")
	iCadd, iRevel := vl.AnnotationIndex("CADD"), vl.AnnotationIndex("REVEL")
	iCoding := vl.AnnotationIndex("coding_and_splicing")

	var matches = make([]bool, vl.Count())
	for i := range vl.Variants {
		annotations := vl.Variants[i].Annotations
		if skipHigh && iCoding != -1 && lo.SomeBy(record.ParseTranscripts(annotations[iCoding]), func(t record.Transcript) bool { return t.Impact == "HIGH" }) {
			matches[i] = action == ActionFilter
			continue
		}
		count := 0
		if iSift != -1 && strings.Contains(annotations[iSift], "D") {
			count++
		}
		if iPolyphen != -1 && (strings.Contains(annotations[iPolyphen], "D") || strings.Contains(annotations[iPolyphen], "P")) {
			count++
		}
		for _, cutoff := range []struct {
			column int
			value  float64
		}{{iCadd, cutoffCadd}, {iRevel, cutoffRevel}} {
			if cutoff.column == -1 {
				continue
			}
			hit, err := anyNumber(annotations[cutoff.column], func(score float64) bool { return score >= cutoff.value })
			if err != nil {
				return err
			}
			if hit {
				count++
			}
		}
		matches[i] = count >= minCount
	}
	result.ApplyAction(action, func(i int) bool { return matches[i] })
	return nil
}

type conservedness struct{ Base }

func newConservedness() Filter {
	f := &conservedness{newBase("Conservedness", SubjectSmallVariant,
		"Filter that keeps variants with a phyloP conservation score at or above the minimum.")}
	f.addParam("min_score", Double, 1.6, "Minimum phyloP score", nil)
	return f
}

func (f *conservedness) ApplyVariants(vl *record.VariantList, result *Result) error {
	minScore, err := f.Double("min_score", true)
	if err != nil {
		return err
	}
	iPhylop, err := vl.Annotation("phyloP")
	if err != nil {
		return err
	}
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		score, ok, err := number(vl.Variants[i].Annotations[iPhylop])
		if err != nil {
			return err
		}
		if !ok || score < minScore {
			result.Set(i, false)
		}
	}
	return nil
}

type variantQuality struct{ Base }

func newVariantQuality() Filter {
	f := &variantQuality{newBase("Variant quality", SubjectSmallVariant,
		"Filter for variant quality given by the 'quality' column (QUAL, DP, MQM).")}
	f.addParam("qual", Int, 250, "Minimum variant quality score (Phred)", Constraints{"min": "0"})
	f.addParam("depth", Int, 0, "Minimum depth", Constraints{"min": "0"})
	f.addParam("mapq", Int, 40, "Minimum mapping quality of alternate allele", Constraints{"min": "0"})
	return f
}

func (f *variantQuality) thresholds() (map[string]float64, error) {
	thresholds := make(map[string]float64)
	for key, name := range map[string]string{"QUAL": "qual", "DP": "depth", "MQM": "mapq"} {
		value, err := f.Int(name, true)
		if err != nil {
			return nil, err
		}
		thresholds[key] = float64(value)
	}
	return thresholds, nil
}

// belowAny reports whether any value in values is below its threshold.
func belowAny(values map[string]string, thresholds map[string]float64) (bool, error) {
	for key, minimum := range thresholds {
		below, err := anyNumber(values[key], func(v float64) bool { return v < minimum })
		if err != nil || below {
			return below, err
		}
	}
	return false, nil
}

func (f *variantQuality) ApplyVariants(vl *record.VariantList, result *Result) error {
	thresholds, err := f.thresholds()
	if err != nil {
		return err
	}
	iQuality, err := vl.Annotation("quality")
	if err != nil {
		return err
	}
	for i := range vl.Variants {
		if !result.Passes(i) {
			continue
		}
		below, err := belowAny(keyValues(vl.Variants[i].Annotations[iQuality], ";"), thresholds)
		if err != nil {
			return err
		}
		if below {
			result.Set(i, false)
		}
	}
	return nil
}

func (f *variantQuality) ApplyVcf(vf *record.VcfFile, result *Result) error {
	thresholds, err := f.thresholds()
	if err != nil {
		return err
	}
	for i := range vf.Lines {
		if !result.Passes(i) {
			continue
		}
		line := &vf.Lines[i]
		values := make(map[string]string)
		for _, entry := range line.Info {
			values[entry.Key] = entry.Value
		}
		values["QUAL"] = ""
		if line.Qual >= 0 {
			values["QUAL"] = formatNumber(line.Qual)
		}
		below, err := belowAny(values, thresholds)
		if err != nil {
			return err
		}
		if below {
			result.Set(i, false)
		}
	}
	return nil
}

type geneInheritance struct{ Base }

func newGeneInheritance() Filter {
	f := &geneInheritance{newBase("Gene inheritance", SubjectSmallVariant,
		"Filter based on gene inheritance given by the 'gene_info' column.")}
	f.addParam("modes", StringList, []string{}, "Inheritance mode(s)", Constraints{"valid": "AR,AD,XLR,XLD,MT,n/a", "not_empty": ""})
	return f
}

// inheritanceModes splits "AR+AD" style values; missing values become "n/a".
func inheritanceModes(g geneInfo) []string {
	value := g.values["inh"]
	if isMissing(value) {
		return []string{"n/a"}
	}
	return strings.Split(value, "+")
}

func (f *geneInheritance) ApplyVariants(vl *record.VariantList, result *Result) error {
	modes, err := f.StrList("modes", true)
	if err != nil {
		return err
	}
	iInfo, err := vl.Annotation("gene_info")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool {
		return lo.SomeBy(parseGeneBlob(vl.Variants[i].Annotations[iInfo]), func(g geneInfo) bool {
			return lo.Some(inheritanceModes(g), modes)
		})
	})
	return nil
}

type geneConstraint struct{ Base }

func newGeneConstraint() Filter {
	f := &geneConstraint{newBase("Gene constraint", SubjectSmallVariant,
		"Filter based on gene constraint (gnomAD o/e score for LOF variants).",
		"Genes without o/e score pass.")}
	f.addParam("max_oe_lof", Double, 0.35, "Maximum gnomAD o/e score for LoF variants", Constraints{"min": "0", "max": "1"})
	return f
}

func (f *geneConstraint) ApplyVariants(vl *record.VariantList, result *Result) error {
	maxOeLof, err := f.Double("max_oe_lof", true)
	if err != nil {
		return err
	}
	iInfo, err := vl.Annotation("gene_info")
	if err != nil {
		return err
	}
	result.Narrow(func(i int) bool { return maxOeLofPasses(vl.Variants[i].Annotations[iInfo], maxOeLof) })
	return nil
}

package score

import (
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"
)

const (
	ColumnScore        = "GSvar_score"
	ColumnRank         = "GSvar_rank"
	ColumnExplanations = "GSvar_score_explanations"
)

// Annotate writes score, rank and optionally explanations into the variant list,
// reusing existing columns. It returns the number of ranked variants.
func Annotate(vl *record.VariantList, result *Result, addExplanations bool) (int, error) {
	if len(result.Scores) != vl.Count() || len(result.Ranks) != vl.Count() {
		return 0, errs.Argument("scoring result has %d scores, variant list has %d variants", len(result.Scores), vl.Count())
	}
	iScore := vl.AddAnnotation(ColumnScore, "Variant score calculated by the '"+result.Algorithm+"' algorithm.")
	iRank := vl.AddAnnotation(ColumnRank, "Variant rank based on the variant score.")
	iExplanations := -1
	if addExplanations {
		iExplanations = vl.AddAnnotation(ColumnExplanations, "Explanations of the variant score.")
	}
	ranked := 0
	for i := range vl.Variants {
		annotations := vl.Variants[i].Annotations
		annotations[iScore], annotations[iRank] = "", ""
		if iExplanations != -1 {
			annotations[iExplanations] = ""
		}
		if result.Ranks[i] == Unranked {
			continue
		}
		ranked++
		annotations[iScore] = strconv.FormatFloat(result.Scores[i], 'f', 1, 64)
		annotations[iRank] = strconv.Itoa(result.Ranks[i])
		if iExplanations != -1 {
			annotations[iExplanations] = strings.Join(result.Explanations[i], " ")
		}
	}
	return ranked, nil
}

// LoadBlacklist reads blacklisted variants from a GSvar file.
func LoadBlacklist(path string) ([]record.VariantKey, error) {
	vl, err := record.LoadVariantList(path)
	if err != nil {
		return nil, err
	}
	keys := make([]record.VariantKey, vl.Count())
	for i := range vl.Variants {
		keys[i] = vl.Variants[i].Key()
	}
	return keys, nil
}

package score

import (
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
)

// geneInfo is one group of the gene_info column: "GENE (inh=AR oe_lof=0.12 ...)".
type geneInfo struct {
	gene   string
	values map[string]string
}

func parseGeneInfo(text string) []geneInfo {
	var infos []geneInfo
	for _, group := range strings.Split(text, ",") {
		gene, rest, _ := strings.Cut(strings.TrimSpace(group), "(")
		if strings.TrimSpace(gene) == "" {
			continue
		}
		info := geneInfo{gene: strings.TrimSpace(gene), values: make(map[string]string)}
		for _, kv := range strings.Fields(strings.TrimSuffix(strings.TrimSpace(rest), ")")) {
			if k, v, ok := strings.Cut(kv, "="); ok {
				info.values[k] = v
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func (g geneInfo) oeLof() (float64, bool) {
	value, err := parseNumber(g.values["oe_lof"])
	return value, err == nil && g.values["oe_lof"] != ""
}

// modes returns known inheritance modes, empty for "n/a".
func (g geneInfo) modes() []string {
	value := g.values["inh"]
	if value == "" || value == "n/a" {
		return nil
	}
	return strings.Split(value, "+")
}

func parseNumber(text string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errs.FileParse("could not convert '%s' to a number", text)
	}
	return value, nil
}

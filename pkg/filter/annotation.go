package filter

import (
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/genotype"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

func isMissing(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == "n/a" || value == "."
}

// anyNumber reports whether any entry of a comma-separated number list satisfies pred.
// Missing entries are skipped.
func anyNumber(text string, pred func(float64) bool) (bool, error) {
	for _, entry := range strings.Split(text, ",") {
		if isMissing(entry) {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(entry), 64)
		if err != nil {
			return false, errs.FileParse("could not convert '%s' to a number", entry)
		}
		if pred(value) {
			return true, nil
		}
	}
	return false, nil
}

// number parses a single value; ok is false for missing values.
func number(text string) (value float64, ok bool, err error) {
	if isMissing(text) {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false, errs.FileParse("could not convert '%s' to a number", text)
	}
	return value, true, nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// keyValues parses "k1=v1;k2=v2" style annotations such as the GSvar quality column.
func keyValues(text, sep string) map[string]string {
	values := make(map[string]string)
	for _, entry := range strings.Split(text, sep) {
		if k, v, ok := strings.Cut(strings.TrimSpace(entry), "="); ok {
			values[k] = v
		}
	}
	return values
}

// geneInfo is one group of a gene annotation blob "GENE (k=v k=v), GENE (...)".
type geneInfo struct {
	gene   string
	values map[string]string
}

func parseGeneBlob(text string) []geneInfo {
	var infos []geneInfo
	for _, group := range strings.Split(text, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		gene, rest, _ := strings.Cut(group, "(")
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

// number returns a numeric sub-value; ok is false when absent or "n/a".
func (g geneInfo) number(key string) (float64, bool) {
	value, ok, err := number(g.values[key])
	return value, ok && err == nil
}

// maxOeLofPasses is the shared gene constraint test: a blob passes when any
// gene has oe_lof <= max or no oe_lof value.
func maxOeLofPasses(blob string, maxOeLof float64) bool {
	return lo.SomeBy(parseGeneBlob(blob), func(g geneInfo) bool {
		oe, ok := g.number("oe_lof")
		return !ok || oe <= maxOeLof
	})
}

// geneMatcher matches gene symbols against a list that may contain "PREFIX*" wildcards.
type geneMatcher struct {
	exact    map[string]bool
	prefixes []string
}

func newGeneMatcher(patterns []string) geneMatcher {
	m := geneMatcher{exact: make(map[string]bool)}
	for _, p := range patterns {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			m.prefixes = append(m.prefixes, prefix)
		} else {
			m.exact[p] = true
		}
	}
	return m
}

func (m geneMatcher) match(gene string) bool {
	gene = strings.ToUpper(gene)
	if m.exact[gene] {
		return true
	}
	return lo.SomeBy(m.prefixes, func(prefix string) bool { return strings.HasPrefix(gene, prefix) })
}

func (m geneMatcher) matchAny(genes []string) bool {
	return lo.SomeBy(genes, m.match)
}

// sampleColumns returns the genotype column indices of the given samples.
func sampleColumns(samples record.SampleHeader, index func(string) int, what string) ([]int, error) {
	if len(samples) == 0 {
		return nil, errs.Argument("no %s samples found in sample header", what)
	}
	columns := make([]int, len(samples))
	for i, s := range samples {
		columns[i] = index(s.Column)
		if columns[i] == -1 {
			return nil, errs.Argument("genotype column '%s' of sample '%s' not found", s.Column, s.ID)
		}
	}
	return columns, nil
}

// sameGenotype returns the shared genotype of all columns, ok is false when they differ.
func sameGenotype(annotations []string, columns []int) (genotype.Genotype, bool, error) {
	var first genotype.Genotype
	for i, c := range columns {
		g, err := genotype.Parse(annotations[c])
		if err != nil {
			return genotype.Missing, false, err
		}
		if i == 0 {
			first = g
		} else if g != first {
			return first, false, nil
		}
	}
	return first, true, nil
}

// genesWithAtLeast returns the genes occurring in at least n of the given records.
func genesWithAtLeast(genesOf func(i int) []string, indices []int, n int) map[string]bool {
	counts := make(map[string]int)
	for _, i := range indices {
		for _, gene := range lo.Uniq(genesOf(i)) {
			counts[strings.ToUpper(gene)]++
		}
	}
	result := make(map[string]bool)
	for gene, c := range counts {
		if c >= n {
			result[gene] = true
		}
	}
	return result
}

func containsGene(set map[string]bool, genes []string) bool {
	return lo.SomeBy(genes, func(g string) bool { return set[strings.ToUpper(g)] })
}

func passingIndices(result *Result) []int {
	var indices []int
	for i := 0; i < result.Len(); i++ {
		if result.Passes(i) {
			indices = append(indices, i)
		}
	}
	return indices
}

package filter

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/liserjrqlxue/goUtil/textUtil"
)

// Imprinting maps gene symbols to the expressed parental allele: paternal, maternal or both.
type Imprinting map[string]string

//go:embed data/imprinting_genes.tsv
var imprintingTsv string

// DefaultImprinting is the built-in imprinting gene table.
var DefaultImprinting = sync.OnceValue(func() Imprinting {
	table := make(Imprinting)
	for _, line := range strings.Split(imprintingTsv, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gene, source, _ := strings.Cut(line, "\t")
		table[strings.ToUpper(gene)] = strings.TrimSpace(source)
	}
	return table
})

// LoadImprinting reads a two-column gene/source_allele table.
func LoadImprinting(path string) (Imprinting, error) {
	m, err := textUtil.File2Map(path, "\t", false)
	if err != nil {
		return nil, err
	}
	table := make(Imprinting, len(m))
	for gene, source := range m {
		if strings.HasPrefix(gene, "#") {
			continue
		}
		table[strings.ToUpper(gene)] = source
	}
	return table, nil
}

// Source returns the expressed allele of the first imprinted gene.
func (t Imprinting) Source(genes []string) string {
	for _, gene := range genes {
		if source, ok := t[strings.ToUpper(gene)]; ok {
			return source
		}
	}
	return ""
}

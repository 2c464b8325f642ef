package score

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// AllGenes is the gene key of categories that are not gene-specific.
const AllGenes = "*"

// CategorizedScores keeps the maximum value per gene and category.
type CategorizedScores map[string]map[string]float64

func (c CategorizedScores) Add(gene, category string, value float64) {
	categories, ok := c[gene]
	if !ok {
		categories = make(map[string]float64)
		c[gene] = categories
	}
	if current, ok := categories[category]; !ok || value > current {
		categories[category] = value
	}
}

// sum adds in sorted order so equal category sets give identical totals.
func sum(categories map[string]float64) float64 {
	values := lo.Values(categories)
	sort.Float64s(values)
	return floats.Sum(values)
}

// Score sums the gene-independent maxima and adds the best per-gene sum.
// All genes reaching the best sum are returned, sorted.
func (c CategorizedScores) Score() (float64, []string) {
	var (
		total     = sum(c[AllGenes])
		best      = 0.0
		bestGenes []string
	)
	for gene, categories := range c {
		if gene == AllGenes {
			continue
		}
		s := sum(categories)
		switch {
		case bestGenes == nil || s > best:
			best = s
			bestGenes = []string{gene}
		case s == best:
			bestGenes = append(bestGenes, gene)
		}
	}
	sort.Strings(bestGenes)
	return total + best, bestGenes
}

// Explanations lists "category:value" for gene-independent categories and
// "category (GENE):value" for the categories of the best genes.
func (c CategorizedScores) Explanations() []string {
	var explanations []string
	for _, category := range sortedCategories(c[AllGenes]) {
		explanations = append(explanations, fmt.Sprintf("%s:%.1f", category, c[AllGenes][category]))
	}
	_, bestGenes := c.Score()
	for _, gene := range bestGenes {
		for _, category := range sortedCategories(c[gene]) {
			explanations = append(explanations, fmt.Sprintf("%s (%s):%.1f", category, gene, c[gene][category]))
		}
	}
	return explanations
}

func sortedCategories(categories map[string]float64) []string {
	keys := lo.Keys(categories)
	sort.Strings(keys)
	return keys
}

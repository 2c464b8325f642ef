package score

import (
	"ngsFilter/pkg/filter"

	"github.com/samber/lo"
)

type inheritanceMode int

const (
	inheritanceAny inheritanceMode = iota
	inheritanceDominant
	inheritanceRecessive
)

type algorithm struct {
	name        string
	description string
	useNGSD     bool
	inheritance inheritanceMode
}

var algorithms = []algorithm{
	{
		name:        "GSvar_v1",
		description: "Rare, impactful variants in phenotype regions with database and NGSD classification evidence.",
		useNGSD:     true,
		inheritance: inheritanceAny,
	},
	{
		name:        "GSvar_v1_noNGSD",
		description: "GSvar_v1 without NGSD classifications.",
		useNGSD:     false,
		inheritance: inheritanceAny,
	},
	{
		name:        "GSvar_v2_dominant",
		description: "GSvar_v1 scoring only dominant gene inheritance (AD, XLD).",
		useNGSD:     true,
		inheritance: inheritanceDominant,
	},
	{
		name:        "GSvar_v2_recessive",
		description: "GSvar_v1 scoring recessive gene inheritance (AR, XLR) for homozygous or compound-heterozygous variants.",
		useNGSD:     true,
		inheritance: inheritanceRecessive,
	},
}

// Algorithms lists the scoring algorithm names.
func Algorithms() []string {
	return lo.Map(algorithms, func(a algorithm, _ int) string { return a.name })
}

// Description returns the description of an algorithm.
func Description(name string) (string, error) {
	a, err := lookup(name)
	return a.description, err
}

// prefilter builds the fixed cascade run before scoring.
func (a algorithm) prefilter(registry *filter.Registry) (*filter.Cascade, error) {
	steps := []struct {
		name   string
		params map[string]string
	}{
		{"Allele frequency", map[string]string{"max_af": "1.0"}},
		{"Count NGSD", map[string]string{"max_count": "20"}},
		{"Impact", map[string]string{"impact": "HIGH,MODERATE,LOW"}},
	}
	if a.useNGSD {
		steps = append(steps, struct {
			name   string
			params map[string]string
		}{"Classification NGSD", map[string]string{"classes": "4,5", "action": "KEEP"}})
	}
	cascade := &filter.Cascade{}
	for _, step := range steps {
		f, err := registry.Create(step.name, step.params)
		if err != nil {
			return nil, err
		}
		cascade.Add(f)
	}
	return cascade, nil
}

func (a algorithm) score(ctx *scoringContext, i int) (CategorizedScores, error) {
	scores := CategorizedScores{}
	ctx.addImpact(scores, i)
	if err := ctx.addGnomad(scores, i); err != nil {
		return nil, err
	}
	ctx.addHpo(scores, i)
	if err := ctx.addDatabases(scores, i); err != nil {
		return nil, err
	}
	if a.useNGSD {
		ctx.addClassification(scores, i)
	}
	ctx.addGeneInfo(scores, i, a.inheritance)
	return scores, nil
}

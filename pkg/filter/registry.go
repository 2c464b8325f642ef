package filter

import (
	"sort"
	"sync"

	"ngsFilter/pkg/errs"

	"github.com/samber/lo"
)

// Constructor returns a new filter with default parameter values.
type Constructor func() Filter

// Registry maps filter names to constructors. It is filled once and read-only afterwards.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under the name of the filter it builds.
func (r *Registry) Register(c Constructor) {
	name := c().Name()
	if _, ok := r.constructors[name]; ok {
		panic(errs.Programming("filter '%s' registered twice", name))
	}
	r.constructors[name] = c
}

func (r *Registry) Has(name string) bool {
	_, ok := r.constructors[name]
	return ok
}

// Create builds a filter and optionally sets parameters from text values.
func (r *Registry) Create(name string, params map[string]string) (Filter, error) {
	c, ok := r.constructors[name]
	if !ok {
		return nil, errs.Argument("filter name '%s' unknown", name)
	}
	f := c()
	if f.Name() != name {
		return nil, errs.Programming("constructor registered as '%s' builds filter '%s'", name, f.Name())
	}
	for _, key := range sortedKeys(params) {
		if err := f.SetGeneric(key, params[key]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Names lists the registered filters for subject, sorted.
func (r *Registry) Names(subject Subject) []string {
	names := lo.Filter(lo.Keys(r.constructors), func(name string, _ int) bool {
		return r.constructors[name]().Subject() == subject
	})
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// DefaultRegistry holds all filters of this package.
var DefaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	for _, c := range []Constructor{
		// small variants
		newAlleleFrequency,
		newSubPopulationAlleleFrequency,
		newCountNGSD,
		newFilterColumn,
		newFilterColumnEmpty,
		newSnvsOnly,
		newImpact,
		newVariantType,
		newGeneSet,
		newRegionsFilter,
		newTextSearch,
		newColumnMatch,
		newClassificationNGSD,
		newAnnotatedPathogenic,
		newPredictedPathogenic,
		newConservedness,
		newOmimGenes,
		newVariantQuality,
		newGeneInheritance,
		newGeneConstraint,
		newGenotypeAffected,
		newGenotypeControl,
		newTrio,
		newSomaticAlleleFrequency,
		// CNVs
		newCnvSize,
		newCnvRegions,
		newCnvCopyNumber,
		newCnvAlleleFrequency,
		newCnvLogLikelihood,
		newCnvQvalue,
		newCnvGeneConstraint,
		newCnvGeneOverlap,
		newCnvCompHet,
		newCnvOmimGenes,
		newCnvGenes,
		// SVs
		newSvType,
		newSvRemoveChrType,
		newSvQuality,
		newSvFilterColumn,
		newSvGenotypeAffected,
		newSvGenotypeControl,
		newSvPairedReadAF,
		newSvSplitReadAF,
		newSvSize,
		newSvGeneConstraint,
		newSvOmimGenes,
		newSvCompHet,
		newSvCountNGSD,
		newSvAlleleFrequencyNGSD,
		newSvGenes,
	} {
		r.Register(c)
	}
	return r
})

package score

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/filter"
	"ngsFilter/pkg/record"
	"ngsFilter/pkg/region"

	"github.com/samber/lo"
)

const (
	// Prefiltered marks variants removed by the prefilter cascade.
	Prefiltered = -1.0
	// Blacklisted marks variants contained in the blacklist.
	Blacklisted = -2.0
	// Unranked is the rank of variants with a sentinel score.
	Unranked = -1
)

type Parameters struct {
	UseBlacklist bool
	Blacklist    []record.VariantKey
	// Registry used for the prefilter cascade, DefaultRegistry when nil.
	Registry *filter.Registry
}

type Result struct {
	Algorithm    string
	Scores       []float64
	Ranks        []int
	Explanations [][]string
	Warnings     []string
}

// RankedCount is the number of variants with a real score.
func (r *Result) RankedCount() int {
	return lo.CountBy(r.Ranks, func(rank int) bool { return rank != Unranked })
}

// columns holds annotation indices resolved once per scoring run; -1 marks absent optional columns.
type columns struct {
	coding, gnomad, clinvar, geneInfo, classification int
	hgmd, omim, phylop                                int
	affected                                          []int
}

func resolveColumns(vl *record.VariantList, a algorithm, warn func(string)) (columns, error) {
	var (
		c   columns
		err error
	)
	for _, required := range []struct {
		target *int
		name   string
	}{
		{&c.coding, "coding_and_splicing"},
		{&c.gnomad, "gnomAD"},
		{&c.clinvar, "ClinVar"},
		{&c.geneInfo, "gene_info"},
	} {
		if *required.target, err = vl.Annotation(required.name); err != nil {
			return c, err
		}
	}
	c.classification = -1
	if a.useNGSD {
		if c.classification, err = vl.Annotation("classification"); err != nil {
			return c, err
		}
	}
	for _, optional := range []struct {
		target *int
		name   string
	}{
		{&c.hgmd, "HGMD"},
		{&c.omim, "OMIM"},
		{&c.phylop, "phyloP"},
	} {
		*optional.target = vl.AnnotationIndex(optional.name)
		if *optional.target == -1 {
			warn("column '" + optional.name + "' not found, it does not contribute to the score")
		}
	}
	if a.inheritance == inheritanceRecessive {
		for _, s := range vl.Samples.Affected() {
			if i := vl.AnnotationIndex(s.Column); i != -1 {
				c.affected = append(c.affected, i)
			}
		}
		if len(c.affected) == 0 {
			warn("no affected sample genotype column found, recessive inheritance is not scored")
		}
	}
	return c, nil
}

// Score scores and ranks all variants with the given algorithm. phenotypeRois maps
// phenotype names to their target regions.
func Score(algorithmName string, vl *record.VariantList, phenotypeRois map[string]region.BedFile, params Parameters) (*Result, error) {
	a, err := lookup(algorithmName)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Algorithm:    algorithmName,
		Scores:       make([]float64, vl.Count()),
		Ranks:        make([]int, vl.Count()),
		Explanations: make([][]string, vl.Count()),
	}
	warn := func(msg string) { result.Warnings = append(result.Warnings, msg) }
	c, err := resolveColumns(vl, a, warn)
	if err != nil {
		return nil, err
	}
	if len(phenotypeRois) == 0 {
		warn("no phenotype regions given, HPO category is not scored")
	}
	indices := lo.MapValues(phenotypeRois, func(bed region.BedFile, _ string) *region.Index { return region.NewIndex(bed) })

	registry := params.Registry
	if registry == nil {
		registry = filter.DefaultRegistry()
	}
	cascade, err := a.prefilter(registry)
	if err != nil {
		return nil, err
	}
	pass, err := cascade.ApplyVariants(vl, true, false)
	if err != nil {
		return nil, err
	}

	blacklist := make(map[record.VariantKey]bool)
	if params.UseBlacklist {
		for _, key := range params.Blacklist {
			blacklist[key] = true
		}
	}
	ctx := &scoringContext{vl: vl, columns: c, phenotypes: indices, pass: pass}
	if a.inheritance == inheritanceRecessive {
		ctx.compHetGenes = ctx.compoundHeterozygousGenes()
	}

	var blacklisted, prefiltered int
	for i := range vl.Variants {
		switch {
		case blacklist[vl.Variants[i].Key()]:
			result.Scores[i] = Blacklisted
			blacklisted++
		case !pass.Passes(i):
			result.Scores[i] = Prefiltered
			prefiltered++
		default:
			scores, err := a.score(ctx, i)
			if err != nil {
				return nil, err
			}
			result.Scores[i], _ = scores.Score()
			result.Explanations[i] = scores.Explanations()
		}
	}
	result.Ranks = rank(result.Scores)
	slog.Info("variants scored", "algorithm", algorithmName, "variants", vl.Count(),
		"scored", vl.Count()-blacklisted-prefiltered, "prefiltered", prefiltered, "blacklisted", blacklisted)
	return result, nil
}

// rank assigns 1..K to real scores, best first; equal scores keep index order.
func rank(scores []float64) []int {
	ranks := make([]int, len(scores))
	var order []int
	for i, s := range scores {
		ranks[i] = Unranked
		if s >= 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	for r, i := range order {
		ranks[i] = r + 1
	}
	return ranks
}

type scoringContext struct {
	vl           *record.VariantList
	columns      columns
	phenotypes   map[string]*region.Index
	pass         *filter.Result
	compHetGenes map[string]bool
}

func (ctx *scoringContext) annotation(i, column int) string {
	if column == -1 {
		return ""
	}
	return strings.TrimSpace(ctx.vl.Variants[i].Annotations[column])
}

func (ctx *scoringContext) affectedGenotypes(i int) []string {
	return lo.Map(ctx.columns.affected, func(c int, _ int) string { return ctx.annotation(i, c) })
}

// compoundHeterozygousGenes returns genes with at least two passing heterozygous variants.
func (ctx *scoringContext) compoundHeterozygousGenes() map[string]bool {
	counts := make(map[string]int)
	for i := range ctx.vl.Variants {
		genotypes := ctx.affectedGenotypes(i)
		if !ctx.pass.Passes(i) || len(genotypes) == 0 || !lo.EveryBy(genotypes, func(g string) bool { return g == "het" }) {
			continue
		}
		for _, gene := range ctx.genes(i) {
			counts[gene]++
		}
	}
	return lo.MapValues(lo.PickBy(counts, func(_ string, n int) bool { return n >= 2 }), func(_ int, _ string) bool { return true })
}

func (ctx *scoringContext) genes(i int) []string {
	genes := lo.Map(record.ParseTranscripts(ctx.annotation(i, ctx.columns.coding)), func(t record.Transcript, _ int) string { return t.Gene })
	genes = append(genes, lo.Map(parseGeneInfo(ctx.annotation(i, ctx.columns.geneInfo)), func(g geneInfo, _ int) string { return g.gene })...)
	genes = lo.Uniq(lo.Compact(lo.Map(genes, func(g string, _ int) string { return strings.ToUpper(g) })))
	sort.Strings(genes)
	return genes
}

// phenotypeHits counts phenotype region sets overlapping variant i.
func (ctx *scoringContext) phenotypeHits(i int) int {
	v := &ctx.vl.Variants[i]
	return lo.CountBy(lo.Values(ctx.phenotypes), func(ix *region.Index) bool { return ix.Overlaps(v.Chr, v.Start, v.End) })
}

// truncate1 cuts a value to one decimal place.
func truncate1(value float64) float64 {
	return math.Floor(value*10+1e-9) / 10
}

var impactScores = map[string]float64{"HIGH": 3.0, "MODERATE": 2.0, "LOW": 1.0}

func (ctx *scoringContext) addImpact(scores CategorizedScores, i int) {
	for _, t := range record.ParseTranscripts(ctx.annotation(i, ctx.columns.coding)) {
		if value, ok := impactScores[t.Impact]; ok && t.Gene != "" {
			scores.Add(strings.ToUpper(t.Gene), "impact", value)
		}
	}
}

func (ctx *scoringContext) addGnomad(scores CategorizedScores, i int) error {
	text := ctx.annotation(i, ctx.columns.gnomad)
	if text == "" || text == "n/a" {
		scores.Add(AllGenes, "gnomAD", 1.0)
		return nil
	}
	af, err := parseNumber(strings.Split(text, ",")[0])
	if err != nil {
		return err
	}
	if af <= 0.0001 {
		scores.Add(AllGenes, "gnomAD", 0.5)
	}
	return nil
}

func (ctx *scoringContext) addHpo(scores CategorizedScores, i int) {
	if hits := ctx.phenotypeHits(i); hits > 0 {
		scores.Add(AllGenes, "HPO", truncate1(1+math.Sqrt(float64(hits))))
	}
}

func (ctx *scoringContext) addDatabases(scores CategorizedScores, i int) error {
	clinvar := strings.ToLower(ctx.annotation(i, ctx.columns.clinvar))
	if strings.Contains(clinvar, "[pathogenic") || strings.Contains(clinvar, "[likely pathogenic") {
		scores.Add(AllGenes, "ClinVar", 1.0)
	}
	if record.HgmdPathogenic(ctx.annotation(i, ctx.columns.hgmd), false) {
		scores.Add(AllGenes, "HGMD", 0.5)
	}
	if ctx.annotation(i, ctx.columns.omim) != "" {
		scores.Add(AllGenes, "OMIM", 1.0)
	}
	if phylop := ctx.annotation(i, ctx.columns.phylop); phylop != "" && phylop != "n/a" {
		value, err := parseNumber(phylop)
		if err != nil {
			return err
		}
		if value >= 1.6 {
			scores.Add(AllGenes, "conservation", 0.5)
		}
	}
	return nil
}

func (ctx *scoringContext) addClassification(scores CategorizedScores, i int) {
	if class := ctx.annotation(i, ctx.columns.classification); class == "4" || class == "5" {
		scores.Add(AllGenes, "NGSD class", 0.5)
	}
}

func (ctx *scoringContext) addGeneInfo(scores CategorizedScores, i int, inheritance inheritanceMode) {
	genotypes := ctx.affectedGenotypes(i)
	hom := len(genotypes) > 0 && lo.EveryBy(genotypes, func(g string) bool { return g == "hom" })
	for _, g := range parseGeneInfo(ctx.annotation(i, ctx.columns.geneInfo)) {
		gene := strings.ToUpper(g.gene)
		if gene == "" {
			continue
		}
		if oe, ok := g.oeLof(); ok && oe < 0.35 {
			scores.Add(gene, "constraint", 0.5)
		}
		modes := g.modes()
		var matches bool
		switch inheritance {
		case inheritanceAny:
			matches = len(modes) > 0
		case inheritanceDominant:
			matches = lo.Some(modes, []string{"AD", "XLD"})
		case inheritanceRecessive:
			matches = lo.Some(modes, []string{"AR", "XLR"}) && (hom || ctx.compHetGenes[gene])
		}
		if matches {
			scores.Add(gene, "inheritance", 0.5)
		}
	}
}

func lookup(name string) (algorithm, error) {
	a, ok := lo.Find(algorithms, func(a algorithm) bool { return a.name == name })
	if !ok {
		return algorithm{}, errs.Argument("unknown scoring algorithm '%s', valid are: %s", name, strings.Join(Algorithms(), ", "))
	}
	return a, nil
}

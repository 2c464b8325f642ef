package region

import (
	"sort"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"
)

// Index answers overlap queries in O(log n) per chromosome over a merged region set.
type Index struct {
	byChr map[string]BedFile
	count int
}

func NewIndex(bed BedFile) *Index {
	ix := &Index{byChr: make(map[string]BedFile)}
	for _, r := range bed.Merge() {
		chr := r.Chr.Normalized()
		ix.byChr[chr] = append(ix.byChr[chr], r)
		ix.count++
	}
	return ix
}

// Count is the number of merged regions.
func (ix *Index) Count() int {
	return ix.count
}

// Overlaps reports whether [start,end] touches any region on chr.
func (ix *Index) Overlaps(chr record.Chromosome, start, end int) bool {
	regions := ix.byChr[chr.Normalized()]
	// merged regions are disjoint, so ends are sorted as well
	i := sort.Search(len(regions), func(i int) bool { return regions[i].End >= start })
	return i < len(regions) && regions[i].Start <= end
}

// pseudo-autosomal regions of chrX/chrY
var parRegions = map[string]BedFile{
	"hg19": {
		{Chr: "chrX", Start: 60001, End: 2699520},
		{Chr: "chrX", Start: 154931044, End: 155260560},
		{Chr: "chrY", Start: 10001, End: 2649520},
		{Chr: "chrY", Start: 59034050, End: 59363566},
	},
	"hg38": {
		{Chr: "chrX", Start: 10001, End: 2781479},
		{Chr: "chrX", Start: 155701383, End: 156030895},
		{Chr: "chrY", Start: 10001, End: 2781479},
		{Chr: "chrY", Start: 56887903, End: 57217415},
	},
}

var Builds = []string{"hg19", "hg38"}

func PseudoAutosomal(build string) (*Index, error) {
	bed, ok := parRegions[build]
	if !ok {
		return nil, errs.Argument("unknown genome build '%s'", build)
	}
	return NewIndex(bed), nil
}

package region

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
)

// Region is a 1-based closed interval.
type Region struct {
	Chr   record.Chromosome
	Start int
	End   int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chr, r.Start, r.End)
}

func (r Region) Overlaps(chr record.Chromosome, start, end int) bool {
	return r.Chr.Equal(chr) && r.Start <= end && start <= r.End
}

type BedFile []Region

// LoadBed reads a BED file and converts 0-based starts to 1-based.
func LoadBed(path string) (BedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer simpleUtil.DeferClose(file)

	var (
		bed     BedFile
		scanner = bufio.NewScanner(file)
		lineNo  = 0
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track ") || strings.HasPrefix(line, "browser ") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, errs.FileParse("%s:%d: BED line with less than 3 fields", path, lineNo)
		}
		start, err1 := strconv.Atoi(fields[1])
		end, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return nil, errs.FileParse("%s:%d: invalid BED coordinates '%s' '%s'", path, lineNo, fields[1], fields[2])
		}
		bed = append(bed, Region{Chr: record.Chromosome(fields[0]), Start: start + 1, End: end})
	}
	return bed, scanner.Err()
}

func (b BedFile) Sort() {
	sort.SliceStable(b, func(i, j int) bool {
		if ci, cj := b[i].Chr.Normalized(), b[j].Chr.Normalized(); ci != cj {
			return ci < cj
		}
		if b[i].Start != b[j].Start {
			return b[i].Start < b[j].Start
		}
		return b[i].End < b[j].End
	})
}

// Merge sorts a copy and merges intervals that overlap.
func (b BedFile) Merge() BedFile {
	if len(b) < 2 {
		return append(BedFile(nil), b...)
	}
	sorted := append(BedFile(nil), b...)
	sorted.Sort()

	merged := make(BedFile, 0, len(sorted))
	current := sorted[0]
	for _, r := range sorted[1:] {
		if r.Chr.Equal(current.Chr) && r.Start <= current.End {
			if r.End > current.End {
				current.End = r.End
			}
		} else {
			merged = append(merged, current)
			current = r
		}
	}
	merged = append(merged, current)

	return merged
}

// OverlapsWith is the linear scan used for small region sets.
func (b BedFile) OverlapsWith(chr record.Chromosome, start, end int) bool {
	for _, r := range b {
		if r.Overlaps(chr, start, end) {
			return true
		}
	}
	return false
}

func (b BedFile) BaseCount() int {
	var count int
	for _, r := range b.Merge() {
		count += r.End - r.Start + 1
	}
	return count
}

package record

import (
	"slices"
	"strings"
)

type InfoEntry struct {
	Key   string
	Value string
}

// VcfLine is one VCF data line. Qual is -1 when missing (".").
type VcfLine struct {
	Chr     Chromosome
	Pos     int
	ID      string
	Ref     string
	Alt     []string
	Qual    float64
	Filters []string
	Info    []InfoEntry
	Format  []string
	Samples [][]string
}

func (l *VcfLine) End() int {
	return l.Pos + len(l.Ref) - 1
}

func (l *VcfLine) IsSNV() bool {
	if len(l.Ref) != 1 || len(l.Alt) == 0 {
		return false
	}
	return !slices.ContainsFunc(l.Alt, func(alt string) bool { return len(alt) != 1 || alt == "*" })
}

func (l *VcfLine) InfoValue(key string) (string, bool) {
	for _, entry := range l.Info {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Passed is true for an empty FILTER or PASS.
func (l *VcfLine) Passed() bool {
	return len(l.Filters) == 0 || (len(l.Filters) == 1 && (l.Filters[0] == "PASS" || l.Filters[0] == "."))
}

func (l *VcfLine) AddFilter(tag string) {
	if l.Passed() {
		l.Filters = nil
	}
	if !slices.Contains(l.Filters, tag) {
		l.Filters = append(l.Filters, tag)
	}
}

type VcfFile struct {
	Header     []string
	FilterDefs map[string]string
	SampleIDs  []string
	Lines      []VcfLine
}

func (vf *VcfFile) Count() int {
	return len(vf.Lines)
}

func (vf *VcfFile) Retain(keep []bool) {
	vf.Lines = retain(vf.Lines, keep)
}

// AddFilter registers a FILTER definition once and mirrors it in the header lines.
func (vf *VcfFile) AddFilter(tag, description string) {
	if vf.FilterDefs == nil {
		vf.FilterDefs = make(map[string]string)
	}
	if _, ok := vf.FilterDefs[tag]; ok {
		return
	}
	vf.FilterDefs[tag] = description
	vf.Header = append(vf.Header, "##FILTER=<ID="+tag+",Description=\""+strings.ReplaceAll(description, "\"", "'")+"\">")
}

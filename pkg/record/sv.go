package record

import (
	"fmt"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
)

type SvType string

const (
	SvDel     SvType = "DEL"
	SvDup     SvType = "DUP"
	SvIns     SvType = "INS"
	SvInv     SvType = "INV"
	SvBnd     SvType = "BND"
	SvUnknown SvType = "UNKNOWN"
)

func ParseSvType(s string) SvType {
	switch t := SvType(strings.ToUpper(s)); t {
	case SvDel, SvDup, SvIns, SvInv, SvBnd:
		return t
	default:
		return SvUnknown
	}
}

// Sv is one BEDPE line: two breakpoint intervals plus annotations.
type Sv struct {
	Chr1        Chromosome
	Start1      int
	End1        int
	Chr2        Chromosome
	Start2      int
	End2        int
	Type        SvType
	Annotations []string
}

func (s *Sv) String() string {
	return fmt.Sprintf("%s:%d-%d %s:%d-%d %s", s.Chr1, s.Start1, s.End1, s.Chr2, s.Start2, s.End2, s.Type)
}

type SvListFormat string

const (
	SvGermlineSingle SvListFormat = "GERMLINE_SINGLE"
	SvGermlineTrio   SvListFormat = "GERMLINE_TRIO"
	SvGermlineMulti  SvListFormat = "GERMLINE_MULTI"
	SvSomatic        SvListFormat = "SOMATIC"
)

type SvList struct {
	Format   SvListFormat
	Comments []string
	Columns  []Column
	Samples  SampleHeader
	Svs      []Sv
}

func (sl *SvList) Count() int {
	return len(sl.Svs)
}

func (sl *SvList) Retain(keep []bool) {
	sl.Svs = retain(sl.Svs, keep)
}

func (sl *SvList) AnnotationIndex(name string) int {
	return columnIndex(sl.Columns, name)
}

func (sl *SvList) Annotation(name string) (int, error) {
	i := sl.AnnotationIndex(name)
	if i == -1 {
		return -1, errs.Argument("column '%s' not found in SV list", name)
	}
	return i, nil
}

// InfoValue reads a key from a ';'-separated INFO-style annotation (e.g. INFO_A).
func (sl *SvList) InfoValue(i int, column, key string) (string, bool) {
	idx := sl.AnnotationIndex(column)
	if idx == -1 {
		return "", false
	}
	for _, entry := range strings.Split(sl.Svs[i].Annotations[idx], ";") {
		k, v, _ := strings.Cut(entry, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}

// Size is |SVLEN| when annotated, otherwise the breakpoint distance.
// BND and inter-chromosomal SVs return -1.
func (sl *SvList) Size(i int) int {
	sv := &sl.Svs[i]
	if sv.Type == SvBnd || !sv.Chr1.Equal(sv.Chr2) {
		return -1
	}
	if value, ok := sl.InfoValue(i, "INFO_A", "SVLEN"); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return max(n, -n)
		}
	}
	return max(sv.Start2-sv.Start1, sv.Start1-sv.Start2)
}

package record

import (
	"fmt"
	"slices"
	"strings"

	"ngsFilter/pkg/errs"
)

// Set is the record-set contract the filter core needs for compaction.
type Set interface {
	Count() int
	// Retain keeps records with keep[i]==true, preserving their relative order.
	Retain(keep []bool)
}

// Column is an annotation column header with its description.
type Column struct {
	Name        string
	Description string
}

type VariantKey struct {
	Chr   string
	Start int
	End   int
	Ref   string
	Obs   string
}

// Variant is a small variant (SNV/InDel) with 1-based inclusive coordinates.
type Variant struct {
	Chr         Chromosome
	Start       int
	End         int
	Ref         string
	Obs         string
	Annotations []string
}

func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Obs) == 1 && v.Ref != "-" && v.Obs != "-"
}

func (v *Variant) Key() VariantKey {
	return VariantKey{Chr: v.Chr.Normalized(), Start: v.Start, End: v.End, Ref: v.Ref, Obs: v.Obs}
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s:%d-%d %s>%s", v.Chr, v.Start, v.End, v.Ref, v.Obs)
}

// VariantList is a GSvar small-variant table.
type VariantList struct {
	Comments []string
	Columns  []Column
	Filters  map[string]string
	Samples  SampleHeader
	Variants []Variant
}

func (vl *VariantList) Count() int {
	return len(vl.Variants)
}

func (vl *VariantList) Retain(keep []bool) {
	vl.Variants = retain(vl.Variants, keep)
}

// AnnotationIndex returns the column index or -1.
func (vl *VariantList) AnnotationIndex(name string) int {
	return columnIndex(vl.Columns, name)
}

// Annotation returns the index of a required column.
func (vl *VariantList) Annotation(name string) (int, error) {
	i := vl.AnnotationIndex(name)
	if i == -1 {
		return -1, errs.Argument("column '%s' not found in variant list", name)
	}
	return i, nil
}

// AddAnnotation appends an empty column, or returns the existing one.
func (vl *VariantList) AddAnnotation(name, description string) int {
	if i := vl.AnnotationIndex(name); i != -1 {
		return i
	}
	vl.Columns = append(vl.Columns, Column{Name: name, Description: description})
	for i := range vl.Variants {
		vl.Variants[i].Annotations = append(vl.Variants[i].Annotations, "")
	}
	return len(vl.Columns) - 1
}

// AddFilter registers a filter tag description once.
func (vl *VariantList) AddFilter(tag, description string) {
	if vl.Filters == nil {
		vl.Filters = make(map[string]string)
	}
	if _, ok := vl.Filters[tag]; !ok {
		vl.Filters[tag] = description
	}
}

func (vl *VariantList) IndexOf(key VariantKey) int {
	return slices.IndexFunc(vl.Variants, func(v Variant) bool { return v.Key() == key })
}

func columnIndex(columns []Column, name string) int {
	return slices.IndexFunc(columns, func(c Column) bool { return c.Name == name })
}

func retain[T any](items []T, keep []bool) []T {
	n := 0
	for i := range items {
		if keep[i] {
			items[n] = items[i]
			n++
		}
	}
	clear(items[n:])
	return items[:n]
}

// HgmdPathogenic reports whether an HGMD annotation holds a "CLASS=DM" entry,
// with likely also "CLASS=DM?". Entries are separated by ';'.
func HgmdPathogenic(text string, likely bool) bool {
	for _, entry := range strings.Split(text, ";") {
		class, ok := strings.CutPrefix(strings.TrimSpace(entry), "CLASS=")
		if !ok {
			continue
		}
		if class == "DM" || (likely && class == "DM?") {
			return true
		}
	}
	return false
}

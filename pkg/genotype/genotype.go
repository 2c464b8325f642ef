package genotype

import (
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
)

// Genotype is the canonical diploid call used by all genotype filters.
type Genotype string

const (
	Wildtype Genotype = "wt"
	Het      Genotype = "het"
	Hom      Genotype = "hom"
	Missing  Genotype = "n/a"
)

var All = []Genotype{Wildtype, Het, Hom, Missing}

// Parse validates an already canonical genotype text, e.g. a GSvar sample column.
func Parse(s string) (Genotype, error) {
	switch g := Genotype(strings.TrimSpace(s)); g {
	case Wildtype, Het, Hom, Missing:
		return g, nil
	case "":
		return Missing, nil
	default:
		return Missing, errs.FileParse("invalid genotype '%s'", s)
	}
}

// FromGT converts a VCF GT value (phased or unphased, haploid or diploid).
func FromGT(gt string) Genotype {
	alleles := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	if len(alleles) == 0 {
		return Missing
	}
	var ref, alt int
	for _, a := range alleles {
		switch a {
		case ".":
			return Missing
		case "0":
			ref++
		default:
			alt++
		}
	}
	switch {
	case alt == 0:
		return Wildtype
	case ref == 0:
		return Hom
	default:
		return Het
	}
}

// Zip pairs FORMAT keys with one sample's values.
func Zip(format, sample string) (map[string]string, error) {
	keys := strings.Split(format, ":")
	values := strings.Split(sample, ":")
	if len(keys) != len(values) {
		return nil, errs.FileParse("FORMAT '%s' has %d keys, sample '%s' has %d values", format, len(keys), sample, len(values))
	}
	fields := make(map[string]string, len(keys))
	for i := range keys {
		fields[keys[i]] = values[i]
	}
	return fields, nil
}

// Decode zips FORMAT/sample and returns the canonical genotype plus all fields.
func Decode(format, sample string) (Genotype, map[string]string, error) {
	fields, err := Zip(format, sample)
	if err != nil {
		return Missing, nil, err
	}
	gt, ok := fields["GT"]
	if !ok {
		return Missing, fields, nil
	}
	return FromGT(gt), fields, nil
}

// ReadCounts parses a "ref,alt" read-count field such as PR or SR.
func ReadCounts(fields map[string]string, key string) (ref, alt int, ok bool, err error) {
	value, found := fields[key]
	if !found || value == "" || value == "." {
		return 0, 0, false, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, false, errs.FileParse("%s field '%s' is not 'ref,alt'", key, value)
	}
	ref, err1 := strconv.Atoi(parts[0])
	alt, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false, errs.FileParse("%s field '%s' contains non-integer counts", key, value)
	}
	return ref, alt, true, nil
}

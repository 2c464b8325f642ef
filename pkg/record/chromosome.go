package record

import (
	"strconv"
	"strings"
)

// Chromosome is a contig name as written in the input, e.g. "chr1" or "X".
type Chromosome string

func (c Chromosome) Str() string {
	return string(c)
}

// Normalized strips the "chr" prefix and maps "MT" to "M".
func (c Chromosome) Normalized() string {
	s := string(c)
	if len(s) > 3 && strings.EqualFold(s[:3], "chr") {
		s = s[3:]
	}
	s = strings.ToUpper(s)
	if s == "MT" {
		s = "M"
	}
	return s
}

func (c Chromosome) IsX() bool {
	return c.Normalized() == "X"
}

func (c Chromosome) IsY() bool {
	return c.Normalized() == "Y"
}

func (c Chromosome) IsM() bool {
	return c.Normalized() == "M"
}

func (c Chromosome) IsGonosome() bool {
	return c.IsX() || c.IsY()
}

// IsAutosome is true for 1-22.
func (c Chromosome) IsAutosome() bool {
	n, err := strconv.Atoi(c.Normalized())
	return err == nil && n >= 1 && n <= 22
}

// IsNonSpecial is false for alt contigs, decoys and unplaced scaffolds.
func (c Chromosome) IsNonSpecial() bool {
	return c.IsAutosome() || c.IsGonosome() || c.IsM()
}

func (c Chromosome) Equal(other Chromosome) bool {
	return c.Normalized() == other.Normalized()
}

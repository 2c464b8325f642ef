package region

import (
	"os"
	"path/filepath"
	"testing"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roi.bed")
	require.NoError(t, os.WriteFile(path, []byte("track name=roi\n# comment\nchr1\t99\t200\tgeneA\n\nchr2\t0\t10\n"), 0o644))

	bed, err := LoadBed(path)
	require.NoError(t, err)
	assert.Equal(t, BedFile{
		{Chr: "chr1", Start: 100, End: 200},
		{Chr: "chr2", Start: 1, End: 10},
	}, bed)
	assert.Equal(t, 111, bed.BaseCount())

	require.NoError(t, os.WriteFile(path, []byte("chr1\t99\n"), 0o644))
	_, err = LoadBed(path)
	assert.ErrorIs(t, err, errs.ErrFileParse)

	_, err = LoadBed(filepath.Join(t.TempDir(), "missing.bed"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	bed := BedFile{
		{Chr: "chr2", Start: 50, End: 60},
		{Chr: "chr1", Start: 30, End: 40},
		{Chr: "1", Start: 10, End: 35},
		{Chr: "chr1", Start: 41, End: 45},
		{Chr: "chr1", Start: 38, End: 39},
	}
	merged := bed.Merge()
	assert.Equal(t, BedFile{
		{Chr: "1", Start: 10, End: 40},
		{Chr: "chr1", Start: 41, End: 45},
		{Chr: "chr2", Start: 50, End: 60},
	}, merged)
	assert.Len(t, bed, 5)
	assert.Equal(t, 47, bed.BaseCount())
}

func TestIndexOverlaps(t *testing.T) {
	bed := BedFile{
		{Chr: "chr1", Start: 100, End: 200},
		{Chr: "chr1", Start: 500, End: 600},
		{Chr: "chrX", Start: 10, End: 20},
	}
	ix := NewIndex(bed)
	assert.Equal(t, 3, ix.Count())

	tests := []struct {
		chr        record.Chromosome
		start, end int
		want       bool
	}{
		{"chr1", 50, 99, false},
		{"chr1", 50, 100, true},
		{"1", 200, 300, true},
		{"chr1", 201, 499, false},
		{"chr1", 150, 550, true},
		{"chr1", 601, 700, false},
		{"X", 15, 15, true},
		{"chr2", 150, 150, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ix.Overlaps(tt.chr, tt.start, tt.end), "%s:%d-%d", tt.chr, tt.start, tt.end)
		assert.Equal(t, tt.want, bed.OverlapsWith(tt.chr, tt.start, tt.end), "%s:%d-%d", tt.chr, tt.start, tt.end)
	}
}

func TestPseudoAutosomal(t *testing.T) {
	for _, build := range Builds {
		par, err := PseudoAutosomal(build)
		require.NoError(t, err)
		assert.Equal(t, 4, par.Count())
		assert.True(t, par.Overlaps("chrX", 100000, 100000), build)
		assert.False(t, par.Overlaps("chrX", 50000000, 50000000), build)
	}
	_, err := PseudoAutosomal("hg17")
	assert.ErrorIs(t, err, errs.ErrArgument)
}

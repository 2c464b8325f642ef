package filter

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readVariants builds a variant list from GSvar lines.
func readVariants(t *testing.T, lines ...string) *record.VariantList {
	t.Helper()
	vl, err := record.ReadVariantList(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	return vl
}

func create(t *testing.T, name string, params map[string]string) Filter {
	t.Helper()
	f, err := DefaultRegistry().Create(name, params)
	require.NoError(t, err)
	return f
}

func flags(t *testing.T, f Filter, vl *record.VariantList) []bool {
	t.Helper()
	result := NewResult(vl.Count())
	require.NoError(t, f.(VariantFilter).ApplyVariants(vl, result))
	return result.Flags()
}

func assertPanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "%v", err)
	}()
	fn()
}

func TestParamConstraints(t *testing.T) {
	f := create(t, "Allele frequency", nil).(*alleleFrequency)
	value, err := f.Double("max_af", true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, value)

	require.NoError(t, f.SetGeneric("max_af", "150"))
	_, err = f.Double("max_af", true)
	assert.ErrorIs(t, err, errs.ErrArgument)
	value, err = f.Double("max_af", false)
	require.NoError(t, err)
	assert.Equal(t, 150.0, value)

	imp := create(t, "Impact", nil).(*impact)
	require.NoError(t, imp.SetGeneric("impact", "HIGH,SEVERE"))
	_, err = imp.StrList("impact", true)
	assert.ErrorIs(t, err, errs.ErrArgument)
	require.NoError(t, imp.SetGeneric("impact", ""))
	_, err = imp.StrList("impact", true)
	assert.ErrorIs(t, err, errs.ErrArgument)

	text := create(t, "Text search", nil).(*textSearch)
	_, err = text.Str("term", true)
	assert.ErrorIs(t, err, errs.ErrArgument)
	text.SetString("action", "KEEP")
	_, err = text.action()
	assert.ErrorIs(t, err, errs.ErrArgument)

	count := create(t, "Count NGSD", map[string]string{"max_count": "-1"}).(*countNGSD)
	_, err = count.Int("max_count", true)
	assert.ErrorIs(t, err, errs.ErrArgument)
}

func TestSetGeneric(t *testing.T) {
	f := create(t, "Count NGSD", nil).(*countNGSD)
	require.NoError(t, f.SetGeneric("max_count", " 7 "))
	n, err := f.Int("max_count", true)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, value := range []string{"yes", "TRUE", "true"} {
		require.NoError(t, f.SetGeneric("ignore_genotype", value))
		assert.True(t, f.Bool("ignore_genotype"))
	}
	for _, value := range []string{"no", "False"} {
		require.NoError(t, f.SetGeneric("ignore_genotype", value))
		assert.False(t, f.Bool("ignore_genotype"))
	}

	assert.ErrorIs(t, f.SetGeneric("ignore_genotype", "maybe"), errs.ErrArgument)
	assert.ErrorIs(t, f.SetGeneric("max_count", "1.5"), errs.ErrArgument)
	assert.ErrorIs(t, f.SetGeneric("min_count", "1"), errs.ErrArgument)

	af := create(t, "Allele frequency", nil)
	assert.ErrorIs(t, af.SetGeneric("max_af", "one"), errs.ErrArgument)
}

func TestTypedAccessPanics(t *testing.T) {
	f := create(t, "Allele frequency", nil).(*alleleFrequency)
	assertPanicsWith(t, errs.ErrProgramming, func() { _, _ = f.Int("max_af", false) })
	assertPanicsWith(t, errs.ErrProgramming, func() { _, _ = f.Str("unknown", false) })
	assertPanicsWith(t, errs.ErrProgramming, func() { f.SetBool("max_af", true) })
}

func TestFilterText(t *testing.T) {
	f := create(t, "Count NGSD", map[string]string{"max_count": "5", "ignore_genotype": "yes"})
	assert.Equal(t, "Count NGSD\tmax_count=5\tignore_genotype=yes", f.Text())
	f.SetEnabled(false)
	assert.Equal(t, "Count NGSD\tmax_count=5\tignore_genotype=yes\tdisabled", f.Text())

	g := create(t, "Count NGSD", map[string]string{"max_count": "5", "ignore_genotype": "yes"})
	assert.False(t, Equal(f, g))
	g.SetEnabled(false)
	assert.True(t, Equal(f, g))
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Same(t, registry, DefaultRegistry())

	_, err := registry.Create("No such filter", nil)
	assert.ErrorIs(t, err, errs.ErrArgument)
	_, err = registry.Create("Impact", map[string]string{"severity": "HIGH"})
	assert.ErrorIs(t, err, errs.ErrArgument)

	names := registry.Names(SubjectCnv)
	assert.Contains(t, names, "CNV size")
	assert.IsIncreasing(t, names)
	assert.NotContains(t, names, "Impact")

	r := NewRegistry()
	r.Register(newImpact)
	assert.True(t, r.Has("Impact"))
	assertPanicsWith(t, errs.ErrProgramming, func() { r.Register(newImpact) })
}

func TestRegistryTextRoundTrip(t *testing.T) {
	registry := DefaultRegistry()
	for _, subject := range []Subject{SubjectSmallVariant, SubjectCnv, SubjectSv} {
		for _, name := range registry.Names(subject) {
			t.Run(name, func(t *testing.T) {
				f, err := registry.Create(name, nil)
				require.NoError(t, err)
				assert.Equal(t, subject, f.Subject())
				assert.NotEmpty(t, f.Description())
				f.SetEnabled(false)

				c, err := CascadeFromText(registry, []string{f.Text()})
				require.NoError(t, err)
				require.Equal(t, 1, c.Count())
				assert.True(t, Equal(f, c.At(0)), "%s", f.Text())
				assert.Equal(t, f.Text(), c.At(0).Text())

				for _, p := range f.Params() {
					require.NoError(t, f.SetGeneric(p.Name, otherValue(p)))
				}
				c, err = CascadeFromText(registry, []string{f.Text()})
				require.NoError(t, err)
				assert.True(t, Equal(f, c.At(0)), "%s", f.Text())
				assert.Equal(t, f.Text(), c.At(0).Text())
			})
		}
	}
}

// otherValue returns the text of a valid value that differs from the default where possible.
func otherValue(p *Param) string {
	valid := p.ValidValues()
	switch p.Type {
	case Int:
		n := p.Value.(int) + 1
		if limit, ok := p.Constraints["max"]; ok {
			if bound, err := strconv.Atoi(limit); err == nil && n > bound {
				n -= 2
			}
		}
		return strconv.Itoa(n)
	case Double:
		d := p.Value.(float64) + 0.25
		if limit, ok := p.Constraints["max"]; ok {
			if bound, err := strconv.ParseFloat(limit, 64); err == nil && d > bound {
				d -= 0.5
			}
		}
		return strconv.FormatFloat(d, 'f', -1, 64)
	case Bool:
		if p.Value.(bool) {
			return "no"
		}
		return "yes"
	case String:
		if len(valid) > 0 {
			return valid[len(valid)-1]
		}
		return "BRCA "
	default:
		if len(valid) > 1 {
			return strings.Join(valid[:2], ",")
		}
		return "BRCA1,TP53, OR4F5"
	}
}

func TestCascadeTextKeepsValues(t *testing.T) {
	c, err := CascadeFromText(DefaultRegistry(), []string{
		"Text search	 term=BRCA 	action=REMOVE",
		"Impact	impact=HIGH,MODERATE	 disabled ",
	})
	require.NoError(t, err)
	require.Equal(t, 2, c.Count())

	term, err := c.At(0).(*textSearch).Str("term", true)
	require.NoError(t, err)
	assert.Equal(t, "BRCA ", term)
	assert.False(t, c.At(1).Enabled())
	impact, err := c.At(1).(*impact).StrList("impact", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"HIGH", "MODERATE"}, impact)
}

func TestResultDirections(t *testing.T) {
	r := NewResult(4)
	assert.Equal(t, 4, r.CountPassing())

	r.Narrow(func(i int) bool { return i%2 == 0 })
	assert.Equal(t, []bool{true, false, true, false}, r.Flags())
	// narrowing never sets flags
	r.Narrow(func(int) bool { return true })
	assert.Equal(t, []bool{true, false, true, false}, r.Flags())

	// rescuing never clears flags
	r.Rescue(func(i int) bool { return i == 1 })
	assert.Equal(t, []bool{true, true, true, false}, r.Flags())
	r.Rescue(func(int) bool { return false })
	assert.Equal(t, []bool{true, true, true, false}, r.Flags())

	r.Invert()
	assert.Equal(t, []bool{false, false, false, true}, r.Flags())
	r.Reset(true)
	assert.Equal(t, 4, r.CountPassing())
}

func TestResultApplyAction(t *testing.T) {
	match := func(i int) bool { return i == 0 || i == 2 }
	tests := []struct {
		action    Action
		direction Direction
		want      []bool
	}{
		{ActionRemove, Narrow, []bool{false, false, false, true}},
		{ActionFilter, Narrow, []bool{true, false, false, false}},
		{ActionKeep, Rescue, []bool{true, false, true, true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			r := NewResult(4)
			r.Set(1, false)
			r.Set(2, false)
			r.ApplyAction(tt.action, match)
			assert.Equal(t, tt.direction, tt.action.Direction())
			assert.Equal(t, tt.want, r.Flags())
		})
	}
}

func TestRemoveFlagged(t *testing.T) {
	vl := readVariants(t,
		"#chr\tstart\tend\tref\tobs\tfilter",
		"chr1\t1\t1\tA\tG\t",
		"chr1\t2\t2\tA\tG\t",
		"chr1\t3\t3\tA\tG\t",
	)
	r := NewResult(3)
	r.Set(1, false)
	require.NoError(t, r.RemoveFlagged(vl))
	assert.Equal(t, 2, vl.Count())
	assert.Equal(t, 3, vl.Variants[1].Start)
	assert.Equal(t, []bool{true, true}, r.Flags())

	assert.ErrorIs(t, NewResult(5).RemoveFlagged(vl), errs.ErrProgramming)
}

func TestTagNonPassing(t *testing.T) {
	vl := readVariants(t,
		"#chr\tstart\tend\tref\tobs\tfilter",
		"chr1\t1\t1\tA\tG\t",
		"chr1\t2\t2\tA\tG\tlow_qual;",
		"chr1\t3\t3\tA\tG\tcascade",
	)
	r := NewResult(3)
	r.Set(1, false)
	r.Set(2, false)
	require.NoError(t, r.TagNonPassing(vl, "cascade", "Removed by filter cascade."))
	require.NoError(t, r.TagNonPassing(vl, "cascade", "Removed by filter cascade."))

	assert.Equal(t, "", vl.Variants[0].Annotations[0])
	assert.Equal(t, "low_qual;cascade", vl.Variants[1].Annotations[0])
	assert.Equal(t, "cascade", vl.Variants[2].Annotations[0])
	assert.Equal(t, "Removed by filter cascade.", vl.Filters["cascade"])
	assert.Equal(t, 3, vl.Count())

	noFilter := readVariants(t, "#chr\tstart\tend\tref\tobs", "chr1\t1\t1\tA\tG")
	assert.ErrorIs(t, NewResult(1).TagNonPassing(noFilter, "x", ""), errs.ErrArgument)
}

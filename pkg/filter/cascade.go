package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"
)

// Cascade is an ordered list of filters. Step errors refer to the last apply.
type Cascade struct {
	filters []Filter
	errors  [][]string
	passing []int
}

func (c *Cascade) Count() int {
	return len(c.filters)
}

func (c *Cascade) At(i int) Filter {
	return c.filters[i]
}

func (c *Cascade) Filters() []Filter {
	return c.filters
}

func (c *Cascade) Add(f Filter) {
	c.filters = append(c.filters, f)
	c.clearErrors()
}

func (c *Cascade) Insert(i int, f Filter) error {
	if i < 0 || i > len(c.filters) {
		return errs.Argument("cannot insert filter at index %d of cascade with %d filters", i, len(c.filters))
	}
	c.filters = append(c.filters[:i], append([]Filter{f}, c.filters[i:]...)...)
	c.clearErrors()
	return nil
}

func (c *Cascade) Remove(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.filters = append(c.filters[:i], c.filters[i+1:]...)
	c.clearErrors()
	return nil
}

func (c *Cascade) MoveUp(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return errs.Argument("cannot move up first filter of cascade")
	}
	c.filters[i-1], c.filters[i] = c.filters[i], c.filters[i-1]
	c.clearErrors()
	return nil
}

func (c *Cascade) MoveDown(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	if i == len(c.filters)-1 {
		return errs.Argument("cannot move down last filter of cascade")
	}
	c.filters[i], c.filters[i+1] = c.filters[i+1], c.filters[i]
	c.clearErrors()
	return nil
}

func (c *Cascade) Clear() {
	c.filters = nil
	c.clearErrors()
}

func (c *Cascade) checkIndex(i int) error {
	if i < 0 || i >= len(c.filters) {
		return errs.Argument("filter index %d out of range, cascade has %d filters", i, len(c.filters))
	}
	return nil
}

func (c *Cascade) clearErrors() {
	c.errors = nil
	c.passing = nil
}

// Errors returns the messages recorded for step i during the last apply.
func (c *Cascade) Errors(i int) []string {
	if i < 0 || i >= len(c.errors) {
		return nil
	}
	return c.errors[i]
}

// Passing returns the number of passing records after step i of the last apply,
// or -1 when the step was skipped or failed.
func (c *Cascade) Passing(i int) int {
	if i < 0 || i >= len(c.passing) {
		return -1
	}
	return c.passing[i]
}

// HasErrors reports whether any step of the last apply failed.
func (c *Cascade) HasErrors() bool {
	for _, e := range c.errors {
		if len(e) > 0 {
			return true
		}
	}
	return false
}

// Text is the cascade in its line-per-filter representation.
func (c *Cascade) Text() []string {
	lines := make([]string, len(c.filters))
	for i, f := range c.filters {
		lines[i] = f.Text()
	}
	return lines
}

func (c *Cascade) String() string {
	return strings.Join(c.Text(), "\n")
}

func (c *Cascade) Equal(other *Cascade) bool {
	if len(c.filters) != len(other.filters) {
		return false
	}
	for i := range c.filters {
		if !Equal(c.filters[i], other.filters[i]) {
			return false
		}
	}
	return true
}

// CascadeFromText parses lines of "name\tparam=value\t...\t[disabled]".
func CascadeFromText(registry *Registry, lines []string) (*Cascade, error) {
	var c = &Cascade{}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		f, err := registry.Create(strings.TrimSpace(fields[0]), nil)
		if err != nil {
			return nil, err
		}
		for _, field := range fields[1:] {
			switch strings.TrimSpace(field) {
			case "":
				continue
			case "disabled":
				f.SetEnabled(false)
				continue
			}
			// values are kept verbatim, String parameters may end in whitespace
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				return nil, errs.Argument("invalid parameter '%s' for filter '%s'", field, f.Name())
			}
			if err := f.SetGeneric(strings.TrimSpace(key), value); err != nil {
				return nil, err
			}
		}
		c.filters = append(c.filters, f)
	}
	return c, nil
}

// ApplyVariants runs the cascade on a small variant list.
func (c *Cascade) ApplyVariants(vl *record.VariantList, throwErrors, debugTime bool) (*Result, error) {
	return c.apply(SubjectSmallVariant, vl.Count(), throwErrors, debugTime, func(f Filter, result *Result) error {
		vf, ok := f.(VariantFilter)
		if !ok {
			return errs.NotImplemented("filter '%s' cannot be applied to small variants", f.Name())
		}
		return vf.ApplyVariants(vl, result)
	})
}

func (c *Cascade) ApplyCnvs(cl *record.CnvList, throwErrors, debugTime bool) (*Result, error) {
	return c.apply(SubjectCnv, cl.Count(), throwErrors, debugTime, func(f Filter, result *Result) error {
		cf, ok := f.(CnvFilter)
		if !ok {
			return errs.NotImplemented("filter '%s' cannot be applied to CNVs", f.Name())
		}
		return cf.ApplyCnvs(cl, result)
	})
}

func (c *Cascade) ApplySvs(sl *record.SvList, throwErrors, debugTime bool) (*Result, error) {
	return c.apply(SubjectSv, sl.Count(), throwErrors, debugTime, func(f Filter, result *Result) error {
		sf, ok := f.(SvFilter)
		if !ok {
			return errs.NotImplemented("filter '%s' cannot be applied to SVs", f.Name())
		}
		return sf.ApplySvs(sl, result)
	})
}

// ApplyVcf runs a small variant cascade on VCF lines.
func (c *Cascade) ApplyVcf(vf *record.VcfFile, throwErrors, debugTime bool) (*Result, error) {
	return c.apply(SubjectSmallVariant, vf.Count(), throwErrors, debugTime, func(f Filter, result *Result) error {
		cf, ok := f.(VcfFilter)
		if !ok {
			return errs.NotImplemented("filter '%s' cannot be applied to VCF lines", f.Name())
		}
		return cf.ApplyVcf(vf, result)
	})
}

func (c *Cascade) apply(subject Subject, count int, throwErrors, debugTime bool, step func(Filter, *Result) error) (*Result, error) {
	var result = NewResult(count)
	c.errors = make([][]string, len(c.filters))
	c.passing = make([]int, len(c.filters))
	for i := range c.passing {
		c.passing[i] = -1
	}
	for i, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		var start = time.Now()
		var err error
		if f.Subject() != subject {
			err = errs.Argument("filter '%s' is for %s, cannot be applied to %s", f.Name(), f.Subject(), subject)
		} else {
			err = runStep(f, result, step)
		}
		if err != nil {
			c.errors[i] = append(c.errors[i], err.Error())
			slog.Warn("filter failed", "step", i, "filter", f.Name(), "error", err)
			// programming errors always abort
			if throwErrors || errors.Is(err, errs.ErrProgramming) {
				return result, err
			}
			continue
		}
		c.passing[i] = result.CountPassing()
		slog.Debug("filter applied", "step", i, "filter", f.Name(), "passing", c.passing[i])
		if debugTime {
			slog.Debug("filter time", "filter", f.Name(), "elapsed", time.Since(start))
		}
	}
	return result, nil
}

// runStep recovers panics of a filter into an error.
func runStep(f Filter, result *Result, step func(Filter, *Result) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				if errors.Is(e, errs.ErrProgramming) {
					err = e
				} else {
					err = fmt.Errorf("filter '%s' panicked: %w", f.Name(), e)
				}
			default:
				err = fmt.Errorf("filter '%s' panicked: %v", f.Name(), r)
			}
		}
	}()
	return step(f, result)
}

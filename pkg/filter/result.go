package filter

import (
	"slices"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

// Result is the pass vector of one record set.
type Result struct {
	flags []bool
}

// NewResult returns an all-passing result for count records.
func NewResult(count int) *Result {
	r := &Result{flags: make([]bool, count)}
	r.Reset(true)
	return r
}

func (r *Result) Flags() []bool {
	return r.flags
}

func (r *Result) Len() int {
	return len(r.flags)
}

func (r *Result) Passes(i int) bool {
	return r.flags[i]
}

func (r *Result) Set(i int, pass bool) {
	r.flags[i] = pass
}

func (r *Result) CountPassing() int {
	return lo.Count(r.flags, true)
}

func (r *Result) Reset(value bool) {
	for i := range r.flags {
		r.flags[i] = value
	}
}

func (r *Result) Invert() {
	for i := range r.flags {
		r.flags[i] = !r.flags[i]
	}
}

// Narrow clears passing records for which keep returns false.
func (r *Result) Narrow(keep func(i int) bool) {
	for i := range r.flags {
		if r.flags[i] && !keep(i) {
			r.flags[i] = false
		}
	}
}

// Rescue sets failing records for which match returns true.
func (r *Result) Rescue(match func(i int) bool) {
	for i := range r.flags {
		if !r.flags[i] && match(i) {
			r.flags[i] = true
		}
	}
}

// ApplyAction applies a categorical match with the semantics of the action:
// REMOVE clears matches, FILTER clears non-matches, KEEP rescues matches.
func (r *Result) ApplyAction(action Action, match func(i int) bool) {
	switch action {
	case ActionRemove:
		r.Narrow(func(i int) bool { return !match(i) })
	case ActionFilter:
		r.Narrow(match)
	case ActionKeep:
		r.Rescue(match)
	}
}

func (r *Result) checkLength(count int) error {
	if count != len(r.flags) {
		return errs.Programming("filter result has %d flags, record set has %d records", len(r.flags), count)
	}
	return nil
}

// RemoveFlagged compacts the record set to passing records and resets the flags.
func (r *Result) RemoveFlagged(set record.Set) error {
	if err := r.checkLength(set.Count()); err != nil {
		return err
	}
	if !slices.Contains(r.flags, false) {
		return nil
	}
	set.Retain(r.flags)
	r.flags = make([]bool, set.Count())
	r.Reset(true)
	return nil
}

// TagNonPassing appends tag to the "filter" column of failing variants.
func (r *Result) TagNonPassing(vl *record.VariantList, tag, description string) error {
	if err := r.checkLength(vl.Count()); err != nil {
		return err
	}
	iFilter, err := vl.Annotation("filter")
	if err != nil {
		return err
	}
	vl.AddFilter(tag, description)
	for i := range vl.Variants {
		if r.flags[i] {
			continue
		}
		value := vl.Variants[i].Annotations[iFilter]
		tags := lo.Compact(strings.Split(value, ";"))
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
		vl.Variants[i].Annotations[iFilter] = strings.Join(tags, ";")
	}
	return nil
}

// TagNonPassingVcf adds tag to the FILTER field of failing lines.
func (r *Result) TagNonPassingVcf(vf *record.VcfFile, tag, description string) error {
	if err := r.checkLength(vf.Count()); err != nil {
		return err
	}
	vf.AddFilter(tag, description)
	for i := range vf.Lines {
		if !r.flags[i] {
			vf.Lines[i].AddFilter(tag)
		}
	}
	return nil
}

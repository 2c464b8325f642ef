package filter

import (
	"fmt"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
	"ngsFilter/pkg/record"

	"github.com/samber/lo"
)

// Subject is the record kind a filter is declared for.
type Subject int

const (
	SubjectSmallVariant Subject = iota
	SubjectCnv
	SubjectSv
)

func (s Subject) String() string {
	switch s {
	case SubjectSmallVariant:
		return "small variants"
	case SubjectCnv:
		return "CNVs"
	case SubjectSv:
		return "SVs"
	default:
		return fmt.Sprintf("Subject(%d)", int(s))
	}
}

// Filter is the configuration side shared by all filters. Application goes
// through the per-kind interfaces below; a filter implements only the kinds it supports.
type Filter interface {
	Name() string
	Subject() Subject
	Description() []string
	Params() []*Param
	Param(name string) (*Param, error)
	Enabled() bool
	SetEnabled(enabled bool)
	SetGeneric(name, value string) error
	Text() string
}

type VariantFilter interface {
	Filter
	ApplyVariants(vl *record.VariantList, result *Result) error
}

type CnvFilter interface {
	Filter
	ApplyCnvs(cl *record.CnvList, result *Result) error
}

type SvFilter interface {
	Filter
	ApplySvs(sl *record.SvList, result *Result) error
}

// VcfFilter is implemented by small-variant filters that also work on VCF lines.
type VcfFilter interface {
	Filter
	ApplyVcf(vf *record.VcfFile, result *Result) error
}

// Base carries name, subject, description and parameters. Concrete filters embed it.
type Base struct {
	name        string
	subject     Subject
	description []string
	params      []*Param
	enabled     bool
}

func newBase(name string, subject Subject, description ...string) Base {
	return Base{name: name, subject: subject, description: description, enabled: true}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Subject() Subject {
	return b.subject
}

func (b *Base) Description() []string {
	return b.description
}

func (b *Base) Params() []*Param {
	return b.params
}

func (b *Base) Enabled() bool {
	return b.enabled
}

func (b *Base) SetEnabled(enabled bool) {
	b.enabled = enabled
}

func (b *Base) Param(name string) (*Param, error) {
	p, ok := lo.Find(b.params, func(p *Param) bool { return p.Name == name })
	if !ok {
		return nil, errs.Argument("filter '%s' has no parameter '%s'", b.name, name)
	}
	return p, nil
}

func (b *Base) addParam(name string, t ParamType, value any, description string, constraints Constraints) {
	if constraints == nil {
		constraints = Constraints{}
	}
	b.params = append(b.params, &Param{Name: name, Type: t, Value: value, Description: description, Constraints: constraints})
}

// typed returns the parameter or panics: asking for an undeclared name or the
// wrong type is a bug in the filter, not bad input.
func (b *Base) typed(name string, t ParamType) *Param {
	p, err := b.Param(name)
	if err != nil {
		panic(errs.Programming("filter '%s' has no parameter '%s'", b.name, name))
	}
	if p.Type != t {
		panic(errs.Programming("filter '%s' parameter '%s' is of type %s, not %s", b.name, name, p.Type, t))
	}
	return p
}

func (b *Base) checked(p *Param, check bool) error {
	if !check {
		return nil
	}
	return p.check(b.name)
}

func (b *Base) Int(name string, check bool) (int, error) {
	p := b.typed(name, Int)
	return p.Value.(int), b.checked(p, check)
}

func (b *Base) Double(name string, check bool) (float64, error) {
	p := b.typed(name, Double)
	return p.Value.(float64), b.checked(p, check)
}

func (b *Base) Bool(name string) bool {
	return b.typed(name, Bool).Value.(bool)
}

func (b *Base) Str(name string, check bool) (string, error) {
	p := b.typed(name, String)
	return p.Value.(string), b.checked(p, check)
}

func (b *Base) StrList(name string, check bool) ([]string, error) {
	p := b.typed(name, StringList)
	return p.Value.([]string), b.checked(p, check)
}

func (b *Base) SetInt(name string, value int) {
	b.typed(name, Int).Value = value
}

func (b *Base) SetDouble(name string, value float64) {
	b.typed(name, Double).Value = value
}

func (b *Base) SetBool(name string, value bool) {
	b.typed(name, Bool).Value = value
}

func (b *Base) SetString(name string, value string) {
	b.typed(name, String).Value = value
}

func (b *Base) SetStringList(name string, value []string) {
	b.typed(name, StringList).Value = append([]string(nil), value...)
}

// SetGeneric sets a parameter from its text form.
func (b *Base) SetGeneric(name, value string) error {
	p, err := b.Param(name)
	if err != nil {
		return err
	}
	switch p.Type {
	case Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errs.Argument("filter '%s' parameter '%s': cannot convert '%s' to integer", b.name, name, value)
		}
		p.Value = n
	case Double:
		d, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return errs.Argument("filter '%s' parameter '%s': cannot convert '%s' to double", b.name, name, value)
		}
		p.Value = d
	case Bool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "true":
			p.Value = true
		case "no", "false":
			p.Value = false
		default:
			return errs.Argument("filter '%s' parameter '%s': cannot convert '%s' to boolean", b.name, name, value)
		}
	case String:
		p.Value = value
	case StringList:
		if value == "" {
			p.Value = []string{}
		} else {
			p.Value = strings.Split(value, ",")
		}
	}
	return nil
}

// Text is the single-line cascade representation: name, param=value pairs, optional "disabled".
func (b *Base) Text() string {
	parts := []string{b.name}
	for _, p := range b.params {
		parts = append(parts, p.Name+"="+p.ValueString())
	}
	if !b.enabled {
		parts = append(parts, "disabled")
	}
	return strings.Join(parts, "\t")
}

// Equal compares name, subject and parameter values.
func Equal(a, b Filter) bool {
	if a.Name() != b.Name() || a.Subject() != b.Subject() || a.Enabled() != b.Enabled() {
		return false
	}
	pa, pb := a.Params(), b.Params()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if !pa[i].equal(pb[i]) {
			return false
		}
	}
	return true
}

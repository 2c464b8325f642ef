package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"
)

type ParamType int

const (
	Int ParamType = iota
	Double
	Bool
	String
	StringList
)

func (t ParamType) String() string {
	switch t {
	case Int:
		return "INT"
	case Double:
		return "DOUBLE"
	case Bool:
		return "BOOL"
	case String:
		return "STRING"
	case StringList:
		return "STRINGLIST"
	default:
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
}

// Constraints keys: "min", "max" (numeric), "valid" (comma-separated set), "not_empty".
type Constraints map[string]string

// Param is one typed filter parameter. Value is int, float64, bool, string or []string
// according to Type.
type Param struct {
	Name        string
	Type        ParamType
	Value       any
	Description string
	Constraints Constraints
}

func (p *Param) ValueString() string {
	switch v := p.Value.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func (p *Param) ValidValues() []string {
	valid, ok := p.Constraints["valid"]
	if !ok {
		return nil
	}
	return strings.Split(valid, ",")
}

func (p *Param) equal(other *Param) bool {
	if p.Name != other.Name || p.Type != other.Type {
		return false
	}
	if p.Type == StringList {
		return slices.Equal(p.Value.([]string), other.Value.([]string))
	}
	return p.Value == other.Value
}

// check validates the value against the constraints.
func (p *Param) check(filterName string) error {
	fail := func(format string, a ...any) error {
		return errs.Argument("filter '%s' parameter '%s': %s", filterName, p.Name, fmt.Sprintf(format, a...))
	}
	switch p.Type {
	case Int, Double:
		var value float64
		if p.Type == Int {
			value = float64(p.Value.(int))
		} else {
			value = p.Value.(float64)
		}
		if bound, ok := p.Constraints["min"]; ok {
			limit, err := strconv.ParseFloat(bound, 64)
			if err == nil && value < limit {
				return fail("value '%s' is smaller than minimum '%s'", p.ValueString(), bound)
			}
		}
		if bound, ok := p.Constraints["max"]; ok {
			limit, err := strconv.ParseFloat(bound, 64)
			if err == nil && value > limit {
				return fail("value '%s' is bigger than maximum '%s'", p.ValueString(), bound)
			}
		}
	case String:
		value := p.Value.(string)
		if _, ok := p.Constraints["not_empty"]; ok && value == "" {
			return fail("value is empty")
		}
		if valid := p.ValidValues(); valid != nil && !slices.Contains(valid, value) {
			return fail("value '%s' is not in valid values '%s'", value, p.Constraints["valid"])
		}
	case StringList:
		values := p.Value.([]string)
		if _, ok := p.Constraints["not_empty"]; ok && len(values) == 0 {
			return fail("list is empty")
		}
		if valid := p.ValidValues(); valid != nil {
			for _, value := range values {
				if !slices.Contains(valid, value) {
					return fail("value '%s' is not in valid values '%s'", value, p.Constraints["valid"])
				}
			}
		}
	}
	return nil
}

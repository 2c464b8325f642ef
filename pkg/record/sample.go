package record

import (
	"strings"

	"ngsFilter/pkg/errs"

	"github.com/samber/lo"
)

// SampleInfo is one "##SAMPLE=<...>" header entry. Column is the annotation
// column holding the sample's genotype.
type SampleInfo struct {
	ID       string
	Column   string
	Gender   string
	Affected bool
	Tumor    bool
	Props    map[string]string
}

func (s SampleInfo) IsMale() bool {
	return s.Gender == "male"
}

func (s SampleInfo) IsFemale() bool {
	return s.Gender == "female"
}

type SampleHeader []SampleInfo

// ParseSampleLine parses
//
//	##SAMPLE=<ID=NA12878,Gender=female,DiseaseStatus=affected,IsTumor=no>
func ParseSampleLine(line string) (SampleInfo, error) {
	body, ok := strings.CutPrefix(line, "##SAMPLE=<")
	if !ok || !strings.HasSuffix(body, ">") {
		return SampleInfo{}, errs.FileParse("invalid sample header line '%s'", line)
	}
	body = strings.TrimSuffix(body, ">")

	var info = SampleInfo{Gender: "n/a", Props: make(map[string]string)}
	for _, kv := range strings.Split(body, ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return SampleInfo{}, errs.FileParse("invalid key-value pair '%s' in sample header line '%s'", kv, line)
		}
		info.Props[k] = v
		switch k {
		case "ID":
			info.ID = v
			info.Column = v
		case "Gender":
			info.Gender = strings.ToLower(v)
		case "DiseaseStatus":
			info.Affected = strings.EqualFold(v, "affected")
		case "IsTumor":
			info.Tumor = strings.EqualFold(v, "yes")
		}
	}
	if info.ID == "" {
		return SampleInfo{}, errs.FileParse("sample header line without ID: '%s'", line)
	}
	return info, nil
}

func ParseSampleHeader(comments []string) (SampleHeader, error) {
	var header SampleHeader
	for _, line := range comments {
		if !strings.HasPrefix(line, "##SAMPLE=") {
			continue
		}
		info, err := ParseSampleLine(line)
		if err != nil {
			return nil, err
		}
		header = append(header, info)
	}
	return header, nil
}

func (h SampleHeader) Affected() SampleHeader {
	return lo.Filter(h, func(s SampleInfo, _ int) bool { return s.Affected })
}

func (h SampleHeader) Unaffected() SampleHeader {
	return lo.Filter(h, func(s SampleInfo, _ int) bool { return !s.Affected })
}

// Resolve returns the single sample with the given status and gender ("" matches any gender).
func (h SampleHeader) Resolve(affected bool, gender string) (SampleInfo, error) {
	matches := lo.Filter(h, func(s SampleInfo, _ int) bool {
		return s.Affected == affected && (gender == "" || s.Gender == gender)
	})
	if len(matches) != 1 {
		return SampleInfo{}, errs.Argument("expected exactly one sample with affected=%t gender='%s', found %d", affected, gender, len(matches))
	}
	return matches[0], nil
}

func (h SampleHeader) IndexOf(id string) int {
	_, i, ok := lo.FindIndexOf(h, func(s SampleInfo) bool { return s.ID == id })
	if !ok {
		return -1
	}
	return i
}

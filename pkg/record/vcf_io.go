package record

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/samber/lo"
)

var filterDefinition = regexp.MustCompile(`^##FILTER=<ID=([^,>]+),Description="([^"]*)">`)

// LoadVcf reads an uncompressed VCF file.
func LoadVcf(path string) (*VcfFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer simpleUtil.DeferClose(file)
	return ReadVcf(file)
}

func ReadVcf(r io.Reader) (*VcfFile, error) {
	var (
		vf      = &VcfFile{FilterDefs: make(map[string]string)}
		scanner = bufio.NewScanner(r)
		lineNo  = 0
		header  bool
	)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "##"):
			vf.Header = append(vf.Header, line)
			if m := filterDefinition.FindStringSubmatch(line); m != nil {
				vf.FilterDefs[m[1]] = m[2]
			}
		case strings.HasPrefix(line, "#CHROM"):
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				vf.SampleIDs = fields[9:]
			}
			header = true
		default:
			if !header {
				return nil, errs.FileParse("VCF line %d: data line before #CHROM header", lineNo)
			}
			l, err := parseVcfLine(line, len(vf.SampleIDs))
			if err != nil {
				return nil, errs.FileParse("VCF line %d: %v", lineNo, err)
			}
			vf.Lines = append(vf.Lines, l)
		}
	}
	return vf, scanner.Err()
}

func parseVcfLine(line string, samples int) (VcfLine, error) {
	fields := strings.Split(line, "\t")
	expected := 8
	if samples > 0 {
		expected = 9 + samples
	}
	if len(fields) != expected {
		return VcfLine{}, fmt.Errorf("expected %d fields, got %d", expected, len(fields))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return VcfLine{}, fmt.Errorf("invalid position '%s'", fields[1])
	}
	l := VcfLine{Chr: Chromosome(fields[0]), Pos: pos, ID: fields[2], Ref: fields[3], Qual: -1}
	if fields[4] != "." {
		l.Alt = strings.Split(fields[4], ",")
	}
	if fields[5] != "." {
		if l.Qual, err = strconv.ParseFloat(fields[5], 64); err != nil {
			return VcfLine{}, fmt.Errorf("invalid quality '%s'", fields[5])
		}
	}
	if fields[6] != "." && fields[6] != "" {
		l.Filters = strings.Split(fields[6], ";")
	}
	if fields[7] != "." {
		for _, entry := range strings.Split(fields[7], ";") {
			k, v, _ := strings.Cut(entry, "=")
			l.Info = append(l.Info, InfoEntry{Key: k, Value: v})
		}
	}
	if samples > 0 {
		l.Format = strings.Split(fields[8], ":")
		for _, sample := range fields[9:] {
			l.Samples = append(l.Samples, strings.Split(sample, ":"))
		}
	}
	return l, nil
}

func StoreVcf(path string, vf *VcfFile) error {
	return store(path, func(w io.Writer) error { return WriteVcf(w, vf) })
}

func WriteVcf(w io.Writer, vf *VcfFile) error {
	bw := bufio.NewWriter(w)
	for _, line := range vf.Header {
		fmt.Fprintln(bw, line)
	}
	header := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}
	if len(vf.SampleIDs) > 0 {
		header = append(append(header, "FORMAT"), vf.SampleIDs...)
	}
	fmt.Fprintln(bw, strings.Join(header, "\t"))
	for i := range vf.Lines {
		l := &vf.Lines[i]
		fields := []string{l.Chr.Str(), strconv.Itoa(l.Pos), l.ID, l.Ref, orDot(strings.Join(l.Alt, ",")), ".", orDot(strings.Join(l.Filters, ";"))}
		if l.Qual >= 0 {
			fields[5] = strconv.FormatFloat(l.Qual, 'f', -1, 64)
		}
		fields = append(fields, orDot(strings.Join(lo.Map(l.Info, func(e InfoEntry, _ int) string {
			if e.Value == "" {
				return e.Key
			}
			return e.Key + "=" + e.Value
		}), ";")))
		if len(vf.SampleIDs) > 0 {
			fields = append(fields, strings.Join(l.Format, ":"))
			for _, sample := range l.Samples {
				fields = append(fields, strings.Join(sample, ":"))
			}
		}
		fmt.Fprintln(bw, strings.Join(fields, "\t"))
	}
	return bw.Flush()
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

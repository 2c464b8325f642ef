package record

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"ngsFilter/pkg/errs"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/samber/lo"
)

// table is the shared shape of GSvar, ClinCNV and BEDPE files:
// "##" comment lines, one "#" header line, tab-separated rows.
type table struct {
	comments     []string
	descriptions map[string]string
	filters      map[string]string
	header       []string
	rows         [][]string
}

func readTable(r io.Reader, name string) (*table, error) {
	var (
		t = &table{
			descriptions: make(map[string]string),
			filters:      make(map[string]string),
		}
		scanner = bufio.NewScanner(r)
		lineNo  = 0
	)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "##DESCRIPTION="):
			k, v, _ := strings.Cut(strings.TrimPrefix(line, "##DESCRIPTION="), "=")
			t.descriptions[k] = v
		case strings.HasPrefix(line, "##FILTER="):
			k, v, _ := strings.Cut(strings.TrimPrefix(line, "##FILTER="), "=")
			t.filters[k] = v
		case strings.HasPrefix(line, "##"):
			t.comments = append(t.comments, line)
		case strings.HasPrefix(line, "#"):
			t.header = strings.Split(line[1:], "\t")
		default:
			if t.header == nil {
				return nil, errs.FileParse("%s:%d: data line before header line", name, lineNo)
			}
			fields := strings.Split(line, "\t")
			if len(fields) != len(t.header) {
				return nil, errs.FileParse("%s:%d: expected %d fields, got %d", name, lineNo, len(t.header), len(fields))
			}
			t.rows = append(t.rows, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if t.header == nil {
		return nil, errs.FileParse("%s: no header line found", name)
	}
	return t, nil
}

func (t *table) columns(from int) []Column {
	return lo.Map(t.header[from:], func(name string, _ int) Column {
		return Column{Name: name, Description: t.descriptions[name]}
	})
}

func (t *table) comment(key string) string {
	for _, line := range t.comments {
		if v, ok := strings.CutPrefix(line, "##"+key+"="); ok {
			return v
		}
	}
	return ""
}

func parsePosition(name string, row int, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errs.FileParse("%s: row %d: invalid position '%s'", name, row+1, value)
	}
	return n, nil
}

func openTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer simpleUtil.DeferClose(file)
	return readTable(file, path)
}

// LoadVariantList reads a GSvar file.
func LoadVariantList(path string) (*VariantList, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	return variantListFromTable(t, path)
}

func ReadVariantList(r io.Reader) (*VariantList, error) {
	t, err := readTable(r, "<reader>")
	if err != nil {
		return nil, err
	}
	return variantListFromTable(t, "<reader>")
}

func variantListFromTable(t *table, name string) (*VariantList, error) {
	if len(t.header) < 5 {
		return nil, errs.FileParse("%s: GSvar header needs at least chr/start/end/ref/obs", name)
	}
	samples, err := ParseSampleHeader(t.comments)
	if err != nil {
		return nil, err
	}
	vl := &VariantList{
		Comments: t.comments,
		Columns:  t.columns(5),
		Filters:  t.filters,
		Samples:  samples,
	}
	for i, row := range t.rows {
		start, err := parsePosition(name, i, row[1])
		if err != nil {
			return nil, err
		}
		end, err := parsePosition(name, i, row[2])
		if err != nil {
			return nil, err
		}
		vl.Variants = append(vl.Variants, Variant{
			Chr:         Chromosome(row[0]),
			Start:       start,
			End:         end,
			Ref:         row[3],
			Obs:         row[4],
			Annotations: row[5:],
		})
	}
	return vl, nil
}

// StoreVariantList writes a GSvar file.
func StoreVariantList(path string, vl *VariantList) error {
	return store(path, func(w io.Writer) error { return WriteVariantList(w, vl) })
}

func WriteVariantList(w io.Writer, vl *VariantList) error {
	return writeTable(w, vl.Comments, vl.Columns, vl.Filters, []string{"chr", "start", "end", "ref", "obs"}, len(vl.Variants), func(i int) []string {
		v := &vl.Variants[i]
		return append([]string{v.Chr.Str(), strconv.Itoa(v.Start), strconv.Itoa(v.End), v.Ref, v.Obs}, v.Annotations...)
	})
}

// StoreCnvList writes a CNV list in the layout LoadCnvList reads.
func StoreCnvList(path string, cl *CnvList) error {
	return store(path, func(w io.Writer) error {
		return writeTable(w, cl.Comments, cl.Columns, nil, []string{"chr", "start", "end"}, len(cl.Cnvs), func(i int) []string {
			c := &cl.Cnvs[i]
			return append([]string{c.Chr.Str(), strconv.Itoa(c.Start), strconv.Itoa(c.End)}, c.Annotations...)
		})
	})
}

// StoreSvList writes a BEDPE file in the layout LoadSvList reads.
func StoreSvList(path string, sl *SvList) error {
	return store(path, func(w io.Writer) error {
		return writeTable(w, sl.Comments, sl.Columns, nil, []string{"CHROM_A", "START_A", "END_A", "CHROM_B", "START_B", "END_B"}, len(sl.Svs), func(i int) []string {
			s := &sl.Svs[i]
			return append([]string{
				s.Chr1.Str(), strconv.Itoa(s.Start1), strconv.Itoa(s.End1),
				s.Chr2.Str(), strconv.Itoa(s.Start2), strconv.Itoa(s.End2),
			}, s.Annotations...)
		})
	})
}

func store(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := file.Close(); err == nil {
			err = e
		}
	}()
	return write(file)
}

// writeTable writes comments, column descriptions, filter definitions, the "#" header and rows.
func writeTable(w io.Writer, comments []string, columns []Column, filters map[string]string, fixed []string, count int, row func(i int) []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range comments {
		fmt.Fprintln(bw, line)
	}
	for _, column := range columns {
		if column.Description != "" {
			fmt.Fprintf(bw, "##DESCRIPTION=%s=%s\n", column.Name, column.Description)
		}
	}
	tags := lo.Keys(filters)
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(bw, "##FILTER=%s=%s\n", tag, filters[tag])
	}
	header := append(slices.Clone(fixed), lo.Map(columns, func(c Column, _ int) string { return c.Name })...)
	fmt.Fprintln(bw, "#"+strings.Join(header, "\t"))
	for i := 0; i < count; i++ {
		fmt.Fprintln(bw, strings.Join(row(i), "\t"))
	}
	return bw.Flush()
}

var cnvListTypes = map[string]CnvListType{
	"CLINCNV_GERMLINE_SINGLE":   CnvGermlineSingle,
	"CLINCNV_GERMLINE_MULTI":    CnvGermlineMulti,
	"CLINCNV_TUMOR_NORMAL_PAIR": CnvSomatic,
}

// LoadCnvList reads a ClinCNV-style TSV: chr/start/end followed by annotations;
// "CN_change" and "genes" columns are parsed when present.
func LoadCnvList(path string) (*CnvList, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.header) < 3 {
		return nil, errs.FileParse("%s: CNV header needs at least chr/start/end", path)
	}
	samples, err := ParseSampleHeader(t.comments)
	if err != nil {
		return nil, err
	}
	cl := &CnvList{
		Type:     CnvGermlineSingle,
		Comments: t.comments,
		Columns:  t.columns(3),
		Samples:  samples,
	}
	if listType, ok := cnvListTypes[t.comment("ANALYSISTYPE")]; ok {
		cl.Type = listType
	}
	iCn := cl.AnnotationIndex("CN_change")
	iGenes := cl.AnnotationIndex("genes")
	for i, row := range t.rows {
		start, err := parsePosition(path, i, row[1])
		if err != nil {
			return nil, err
		}
		end, err := parsePosition(path, i, row[2])
		if err != nil {
			return nil, err
		}
		cnv := Cnv{Chr: Chromosome(row[0]), Start: start, End: end, CopyNumber: -1, Annotations: row[3:]}
		if iCn != -1 {
			if cn, err := strconv.Atoi(cnv.Annotations[iCn]); err == nil {
				cnv.CopyNumber = cn
			}
		}
		if iGenes != -1 {
			cnv.Genes = SplitGenes(cnv.Annotations[iGenes])
		}
		cl.Cnvs = append(cl.Cnvs, cnv)
	}
	return cl, nil
}

var svFormats = map[string]SvListFormat{
	"BEDPE_GERMLINE_SINGLE": SvGermlineSingle,
	"BEDPE_GERMLINE_TRIO":   SvGermlineTrio,
	"BEDPE_GERMLINE_MULTI":  SvGermlineMulti,
	"BEDPE_SOMATIC":         SvSomatic,
}

// LoadSvList reads a BEDPE file: two breakpoint intervals followed by annotations.
func LoadSvList(path string) (*SvList, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.header) < 6 {
		return nil, errs.FileParse("%s: BEDPE header needs at least 6 coordinate columns", path)
	}
	samples, err := ParseSampleHeader(t.comments)
	if err != nil {
		return nil, err
	}
	sl := &SvList{
		Format:   SvGermlineSingle,
		Comments: t.comments,
		Columns:  t.columns(6),
		Samples:  samples,
	}
	if format, ok := svFormats[t.comment("fileformat")]; ok {
		sl.Format = format
	}
	iType := sl.AnnotationIndex("TYPE")
	for i, row := range t.rows {
		var coords [4]int
		for j, k := range []int{1, 2, 4, 5} {
			if coords[j], err = parsePosition(path, i, row[k]); err != nil {
				return nil, err
			}
		}
		sv := Sv{
			Chr1:        Chromosome(row[0]),
			Start1:      coords[0],
			End1:        coords[1],
			Chr2:        Chromosome(row[3]),
			Start2:      coords[2],
			End2:        coords[3],
			Type:        SvUnknown,
			Annotations: row[6:],
		}
		if iType != -1 {
			sv.Type = ParseSvType(sv.Annotations[iType])
		}
		sl.Svs = append(sl.Svs, sv)
	}
	return sl, nil
}

// SplitGenes splits a comma-separated gene list, trimming and de-duplicating.
func SplitGenes(text string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(text, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
}

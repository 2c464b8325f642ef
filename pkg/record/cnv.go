package record

import (
	"fmt"

	"ngsFilter/pkg/errs"
)

type CnvListType string

const (
	CnvGermlineSingle CnvListType = "ClinCNV germline single"
	CnvGermlineMulti  CnvListType = "ClinCNV germline multi"
	CnvSomatic        CnvListType = "ClinCNV somatic"
)

// Cnv is a copy-number variant. CopyNumber is -1 when unknown.
type Cnv struct {
	Chr         Chromosome
	Start       int
	End         int
	CopyNumber  int
	Genes       []string
	Annotations []string
}

func (c *Cnv) Size() int {
	return c.End - c.Start + 1
}

func (c *Cnv) String() string {
	return fmt.Sprintf("%s:%d-%d", c.Chr, c.Start, c.End)
}

type CnvList struct {
	Type     CnvListType
	Comments []string
	Columns  []Column
	Samples  SampleHeader
	Cnvs     []Cnv
}

func (cl *CnvList) Count() int {
	return len(cl.Cnvs)
}

func (cl *CnvList) Retain(keep []bool) {
	cl.Cnvs = retain(cl.Cnvs, keep)
}

func (cl *CnvList) AnnotationIndex(name string) int {
	return columnIndex(cl.Columns, name)
}

func (cl *CnvList) Annotation(name string) (int, error) {
	i := cl.AnnotationIndex(name)
	if i == -1 {
		return -1, errs.Argument("column '%s' not found in CNV list", name)
	}
	return i, nil
}

package filter

import (
	"bufio"
	"io"
	"os"
	"strings"

	"ngsFilter/pkg/errs"

	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/samber/lo"
)

type namedCascade struct {
	name  string
	lines []string
}

// CascadeFile holds named cascades, each introduced by a "#name" line.
type CascadeFile struct {
	cascades []namedCascade
}

func ReadCascadeFile(r io.Reader) (*CascadeFile, error) {
	var (
		cf      = &CascadeFile{}
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if name, ok := strings.CutPrefix(line, "#"); ok {
			cf.cascades = append(cf.cascades, namedCascade{name: strings.TrimSpace(name)})
			continue
		}
		if len(cf.cascades) == 0 {
			return nil, errs.FileParse("filter line '%s' before first cascade name", line)
		}
		last := &cf.cascades[len(cf.cascades)-1]
		last.lines = append(last.lines, line)
	}
	return cf, scanner.Err()
}

// LoadCascadeFile returns an empty file when path does not exist.
func LoadCascadeFile(path string) (*CascadeFile, error) {
	if !osUtil.FileExists(path) {
		return &CascadeFile{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer simpleUtil.DeferClose(file)
	return ReadCascadeFile(file)
}

func (cf *CascadeFile) Names() []string {
	return lo.Map(cf.cascades, func(c namedCascade, _ int) string { return c.name })
}

func (cf *CascadeFile) Lines(name string) ([]string, bool) {
	c, ok := lo.Find(cf.cascades, func(c namedCascade) bool { return c.name == name })
	return c.lines, ok
}

func (cf *CascadeFile) Cascade(registry *Registry, name string) (*Cascade, error) {
	lines, ok := cf.Lines(name)
	if !ok {
		return nil, errs.Argument("cascade '%s' not found", name)
	}
	return CascadeFromText(registry, lines)
}

// Set adds or replaces a cascade.
func (cf *CascadeFile) Set(name string, c *Cascade) {
	for i := range cf.cascades {
		if cf.cascades[i].name == name {
			cf.cascades[i].lines = c.Text()
			return
		}
	}
	cf.cascades = append(cf.cascades, namedCascade{name: name, lines: c.Text()})
}

func (cf *CascadeFile) Remove(name string) {
	cf.cascades = lo.Reject(cf.cascades, func(c namedCascade, _ int) bool { return c.name == name })
}

func (cf *CascadeFile) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range cf.cascades {
		if _, err := bw.WriteString("#" + c.name + "\n"); err != nil {
			return err
		}
		for _, line := range c.lines {
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func (cf *CascadeFile) Store(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := cf.Write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ngsFilter/pkg/config"
	"ngsFilter/pkg/filter"
	"ngsFilter/pkg/record"
	"ngsFilter/pkg/report"

	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/version"
)

// flag
var (
	input = flag.String(
		"i",
		"",
		"input GSvar/VCF/CNV tsv/BEDPE",
	)
	inputType = flag.String(
		"t",
		"",
		"input type: variants, vcf, cnvs, svs (default: from file name)",
	)
	output = flag.String(
		"o",
		"",
		"output path",
	)
	cascadeFile = flag.String(
		"f",
		"",
		"cascade file with '#name' sections",
	)
	cascadeName = flag.String(
		"n",
		"",
		"cascade name in -f",
	)
	filters = flag.String(
		"filters",
		"",
		`cascade text, filters separated by ';;', parameters by a tab or '\t', e.g. 'Allele frequency\tmax_af=1.0;;Impact'`,
	)
	mode = flag.String(
		"mode",
		"",
		"remove: drop failing records, tag: tag failing records (variants/vcf), keep: only report",
	)
	tag = flag.String(
		"tag",
		"",
		"filter tag used by -mode tag",
	)
	xlsxPath = flag.String(
		"xlsx",
		"",
		"xlsx report path (variants only)",
	)
	configPath = flag.String(
		"c",
		"",
		"config file (.yaml/.yml/.toml)",
	)
	imprintingPath = flag.String(
		"imprinting",
		"",
		"imprinting gene table for the trio filter",
	)
	list = flag.Bool(
		"list",
		false,
		"list registered filters and exit",
	)
	throwErrors = flag.Bool(
		"throw",
		false,
		"abort on the first filter error",
	)
	debugTime = flag.Bool(
		"time",
		false,
		"log time per filter",
	)
	verbose = flag.Bool(
		"v",
		false,
		"debug logging",
	)
)

func main() {
	version.LogVersion()
	flag.Parse()

	var registry = filter.DefaultRegistry()
	if *list {
		printRegistry(registry)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg = simpleUtil.HandleError(config.Load(*configPath))
	}
	applyFlags(cfg)
	setLogLevel(cfg)

	if *input == "" {
		flag.PrintDefaults()
		log.Fatal("-i is required")
	}
	if *output == "" && cfg.Report.Xlsx == "" {
		flag.PrintDefaults()
		log.Fatal("-o or -xlsx is required")
	}

	cascade := loadCascade(registry, cfg)
	if cfg.Trio.Imprinting != "" {
		table := simpleUtil.HandleError(filter.LoadImprinting(cfg.Trio.Imprinting))
		for _, f := range cascade.Filters() {
			if user, ok := f.(filter.ImprintingUser); ok {
				user.SetImprinting(table)
			}
		}
	}
	log.Printf("cascade with %d filters:\n%s", cascade.Count(), cascade)

	kind := *inputType
	if kind == "" {
		kind = detectType(*input)
	}
	switch kind {
	case "variants":
		runVariants(cascade, cfg)
	case "vcf":
		runVcf(cascade, cfg)
	case "cnvs":
		runCnvs(cascade, cfg)
	case "svs":
		runSvs(cascade, cfg)
	default:
		log.Fatalf("unknown input type '%s'", kind)
	}
	logErrors(cascade)
}

func applyFlags(cfg *config.Config) {
	if *cascadeFile != "" {
		cfg.Cascade.File = *cascadeFile
	}
	if *cascadeName != "" {
		cfg.Cascade.Name = *cascadeName
	}
	if *mode != "" {
		cfg.Cascade.Mode = *mode
	}
	if *tag != "" {
		cfg.Cascade.Tag = *tag
	}
	if *xlsxPath != "" {
		cfg.Report.Xlsx = *xlsxPath
	}
	if *imprintingPath != "" {
		cfg.Trio.Imprinting = *imprintingPath
	}
	cfg.Cascade.ThrowErrors = cfg.Cascade.ThrowErrors || *throwErrors
	cfg.Cascade.DebugTime = cfg.Cascade.DebugTime || *debugTime
	if *verbose {
		cfg.LogLevel = "debug"
	}
	simpleUtil.CheckErr(cfg.Validate())
}

func setLogLevel(cfg *config.Config) {
	slog.SetLogLoggerLevel(simpleUtil.HandleError(cfg.Level()))
}

// splitFilters splits -filters text into cascade lines, a literal `\t` separates parameters like a tab.
func splitFilters(text string) []string {
	return strings.Split(strings.ReplaceAll(text, `\t`, "\t"), ";;")
}

func loadCascade(registry *filter.Registry, cfg *config.Config) *filter.Cascade {
	if *filters != "" {
		return simpleUtil.HandleError(filter.CascadeFromText(registry, splitFilters(*filters)))
	}
	if cfg.Cascade.File == "" {
		log.Fatal("-filters or -f is required")
	}
	file := simpleUtil.HandleError(filter.LoadCascadeFile(cfg.Cascade.File))
	name := cfg.Cascade.Name
	if name == "" {
		names := file.Names()
		if len(names) == 0 {
			log.Fatalf("no cascade found in %s", cfg.Cascade.File)
		}
		name = names[0]
	}
	return simpleUtil.HandleError(file.Cascade(registry, name))
}

func detectType(path string) string {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".vcf"):
		return "vcf"
	case strings.HasSuffix(base, ".bedpe"):
		return "svs"
	case strings.Contains(base, "cnv"):
		return "cnvs"
	default:
		return "variants"
	}
}

func runVariants(cascade *filter.Cascade, cfg *config.Config) {
	vl := simpleUtil.HandleError(record.LoadVariantList(*input))
	pass := simpleUtil.HandleError(cascade.ApplyVariants(vl, cfg.Cascade.ThrowErrors, cfg.Cascade.DebugTime))
	log.Printf("%d of %d variants pass", pass.CountPassing(), vl.Count())

	if cfg.Report.Xlsx != "" {
		xlsx := simpleUtil.HandleError(report.New())
		simpleUtil.CheckErr(xlsx.AddVariants(vl, pass))
		simpleUtil.CheckErr(xlsx.AddCascade(cascade))
		simpleUtil.CheckErr(xlsx.SaveAs(cfg.Report.Xlsx))
	}
	if *output == "" {
		return
	}
	switch cfg.Cascade.Mode {
	case "remove":
		simpleUtil.CheckErr(pass.RemoveFlagged(vl))
	case "tag":
		simpleUtil.CheckErr(pass.TagNonPassing(vl, cfg.Cascade.Tag, "Removed by filter cascade."))
	}
	simpleUtil.CheckErr(record.StoreVariantList(*output, vl))
}

func runVcf(cascade *filter.Cascade, cfg *config.Config) {
	vf := simpleUtil.HandleError(record.LoadVcf(*input))
	pass := simpleUtil.HandleError(cascade.ApplyVcf(vf, cfg.Cascade.ThrowErrors, cfg.Cascade.DebugTime))
	log.Printf("%d of %d VCF lines pass", pass.CountPassing(), vf.Count())
	if *output == "" {
		return
	}
	switch cfg.Cascade.Mode {
	case "remove":
		simpleUtil.CheckErr(pass.RemoveFlagged(vf))
	case "tag":
		simpleUtil.CheckErr(pass.TagNonPassingVcf(vf, cfg.Cascade.Tag, "Removed by filter cascade."))
	}
	simpleUtil.CheckErr(record.StoreVcf(*output, vf))
}

func runCnvs(cascade *filter.Cascade, cfg *config.Config) {
	cl := simpleUtil.HandleError(record.LoadCnvList(*input))
	pass := simpleUtil.HandleError(cascade.ApplyCnvs(cl, cfg.Cascade.ThrowErrors, cfg.Cascade.DebugTime))
	log.Printf("%d of %d CNVs pass", pass.CountPassing(), cl.Count())
	if *output == "" {
		return
	}
	if cfg.Cascade.Mode == "tag" {
		log.Fatal("-mode tag is not supported for CNVs")
	}
	if cfg.Cascade.Mode == "remove" {
		simpleUtil.CheckErr(pass.RemoveFlagged(cl))
	}
	simpleUtil.CheckErr(record.StoreCnvList(*output, cl))
}

func runSvs(cascade *filter.Cascade, cfg *config.Config) {
	sl := simpleUtil.HandleError(record.LoadSvList(*input))
	pass := simpleUtil.HandleError(cascade.ApplySvs(sl, cfg.Cascade.ThrowErrors, cfg.Cascade.DebugTime))
	log.Printf("%d of %d SVs pass", pass.CountPassing(), sl.Count())
	if *output == "" {
		return
	}
	if cfg.Cascade.Mode == "tag" {
		log.Fatal("-mode tag is not supported for SVs")
	}
	if cfg.Cascade.Mode == "remove" {
		simpleUtil.CheckErr(pass.RemoveFlagged(sl))
	}
	simpleUtil.CheckErr(record.StoreSvList(*output, sl))
}

func logErrors(cascade *filter.Cascade) {
	for i := 0; i < cascade.Count(); i++ {
		for _, msg := range cascade.Errors(i) {
			slog.Error("filter error", "step", i+1, "filter", cascade.At(i).Name(), "error", msg)
		}
	}
}

func printRegistry(registry *filter.Registry) {
	for _, subject := range []filter.Subject{filter.SubjectSmallVariant, filter.SubjectCnv, filter.SubjectSv} {
		fmtUtil.Fprintf(os.Stdout, "## %s\n", subject)
		for _, name := range registry.Names(subject) {
			f := simpleUtil.HandleError(registry.Create(name, nil))
			fmtUtil.Fprintf(os.Stdout, "%s\n", name)
			for _, line := range f.Description() {
				fmtUtil.Fprintf(os.Stdout, "  %s\n", line)
			}
			for _, p := range f.Params() {
				fmtUtil.Fprintf(os.Stdout, "  - %s (%s, default '%s'): %s", p.Name, p.Type, p.ValueString(), p.Description)
				if valid := p.ValidValues(); valid != nil {
					fmtUtil.Fprintf(os.Stdout, " [%s]", strings.Join(valid, ","))
				}
				fmtUtil.Fprintln(os.Stdout)
			}
		}
	}
}

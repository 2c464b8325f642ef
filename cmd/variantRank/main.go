package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"ngsFilter/pkg/config"
	"ngsFilter/pkg/record"
	"ngsFilter/pkg/region"
	"ngsFilter/pkg/report"
	"ngsFilter/pkg/score"

	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/version"
)

// flag
var (
	input = flag.String(
		"i",
		"",
		"input GSvar",
	)
	output = flag.String(
		"o",
		"",
		"output GSvar with score, rank and explanation columns",
	)
	algorithmName = flag.String(
		"algorithm",
		"",
		"scoring algorithm, see -list",
	)
	hpo = flag.String(
		"hpo",
		"",
		"phenotype regions as 'name=bed,name=bed'",
	)
	blacklist = flag.String(
		"blacklist",
		"",
		"GSvar of blacklisted variants",
	)
	noExplanations = flag.Bool(
		"noExplanations",
		false,
		"do not write the explanation column",
	)
	xlsxPath = flag.String(
		"xlsx",
		"",
		"xlsx report path",
	)
	configPath = flag.String(
		"c",
		"",
		"config file (.yaml/.yml/.toml)",
	)
	list = flag.Bool(
		"list",
		false,
		"list scoring algorithms and exit",
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

	if *list {
		for _, name := range score.Algorithms() {
			fmtUtil.Fprintf(os.Stdout, "%s\t%s\n", name, simpleUtil.HandleError(score.Description(name)))
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg = simpleUtil.HandleError(config.Load(*configPath))
	}
	applyFlags(cfg)
	slog.SetLogLoggerLevel(simpleUtil.HandleError(cfg.Level()))

	if *input == "" || (*output == "" && cfg.Report.Xlsx == "") {
		flag.PrintDefaults()
		log.Fatal("-i and -o or -xlsx are required")
	}

	vl := simpleUtil.HandleError(record.LoadVariantList(*input))
	var params score.Parameters
	if cfg.Score.Blacklist != "" {
		params.UseBlacklist = true
		params.Blacklist = simpleUtil.HandleError(score.LoadBlacklist(cfg.Score.Blacklist))
		log.Printf("load %d blacklisted variants from %s", len(params.Blacklist), cfg.Score.Blacklist)
	}
	rois := loadPhenotypes(cfg.Score.Phenotypes)

	result := simpleUtil.HandleError(score.Score(cfg.Score.Algorithm, vl, rois, params))
	for _, warning := range result.Warnings {
		slog.Warn(warning)
	}
	ranked := simpleUtil.HandleError(score.Annotate(vl, result, cfg.Score.Explanations))
	log.Printf("%d of %d variants ranked with %s", ranked, vl.Count(), cfg.Score.Algorithm)

	if *output != "" {
		simpleUtil.CheckErr(record.StoreVariantList(*output, vl))
	}
	if cfg.Report.Xlsx != "" {
		xlsx := simpleUtil.HandleError(report.New())
		simpleUtil.CheckErr(xlsx.AddVariants(vl, nil))
		simpleUtil.CheckErr(xlsx.SaveAs(cfg.Report.Xlsx))
	}
}

func applyFlags(cfg *config.Config) {
	if *algorithmName != "" {
		cfg.Score.Algorithm = *algorithmName
	}
	if *blacklist != "" {
		cfg.Score.Blacklist = *blacklist
	}
	if *noExplanations {
		cfg.Score.Explanations = false
	}
	if *xlsxPath != "" {
		cfg.Report.Xlsx = *xlsxPath
	}
	if *hpo != "" {
		if cfg.Score.Phenotypes == nil {
			cfg.Score.Phenotypes = make(map[string]string)
		}
		for _, item := range strings.Split(*hpo, ",") {
			name, path, ok := strings.Cut(item, "=")
			if !ok {
				log.Fatalf("invalid -hpo entry '%s', expected name=bed", item)
			}
			cfg.Score.Phenotypes[name] = path
		}
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	simpleUtil.CheckErr(cfg.Validate())
}

func loadPhenotypes(paths map[string]string) map[string]region.BedFile {
	var rois = make(map[string]region.BedFile, len(paths))
	for name, path := range paths {
		bed := simpleUtil.HandleError(region.LoadBed(path))
		rois[name] = bed.Merge()
		log.Printf("load phenotype %s: %d regions, %d bases", name, len(rois[name]), rois[name].BaseCount())
	}
	return rois
}

// sradownload downloads the FASTQ files for a batch of SRA runs with
// kingfisher, several runs at a time. Runs can be given directly, listed in a
// file (local or gs://), or looked up from the samples of a GEO series.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/carbocation/sradownload"
	"github.com/carbocation/sradownload/accession"
	"github.com/carbocation/sradownload/compileinfo"
	"github.com/carbocation/sradownload/config"
	"github.com/carbocation/sradownload/dispatch"
	"github.com/carbocation/sradownload/geo"
	"github.com/carbocation/sradownload/kingfisher"
	"github.com/carbocation/sradownload/summary"
	"github.com/carbocation/sradownload/translate"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// sampleList collects a repeatable flag.
type sampleList []string

func (s *sampleList) String() string {
	return strings.Join(*s, ",")
}

func (s *sampleList) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	log.Println(compileinfo.Get())

	opts, code := configure(flag.CommandLine, os.Args[1:])
	if code != exitOK {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return download(ctx, opts.cfg, opts.input, opts.showInfo)
}

// options is everything the command line decides.
type options struct {
	cfg      config.Config
	input    accession.Input
	showInfo bool
}

// configure parses args into fs and layers the result over the defaults, the
// --config file and the environment. It returns exitUsage if the command
// cannot run.
func configure(fs *flag.FlagSet, args []string) (options, int) {
	var (
		configPath string
		dataset    string
		showInfo   bool
		samples    sampleList
		fl         = config.Default()
	)

	fs.StringVar(&configPath, "config", "", "Optional YAML configuration file. Flags given explicitly override it.")
	fs.StringVar(&fl.InputFile, "input_file", "", "File with one SRA run identifier per line. May be a gs:// path and may be compressed.")
	fs.Var(&samples, "sample", "SRA run identifier to download. May be repeated or comma-separated. Ignored when --input_file is set.")
	fs.StringVar(&dataset, "geo", "", "GEO series accession (GSE...). Every sample in the series is translated to its SRA run and downloaded.")
	fs.StringVar(&fl.OutputDir, "output_dir", "", "Directory for the downloaded files. Defaults to kingfisher's working directory.")
	fs.StringVar(&fl.DownloadMethods, "download_methods", fl.DownloadMethods, "Space-delimited download methods, tried by kingfisher in order.")
	fs.IntVar(&fl.Workers.Count, "processes", fl.Workers.Count, "Number of simultaneous downloads.")
	fs.BoolVar(&fl.Workers.UseBatchSize, "use_max_processes", false, "Run every download at once, ignoring --processes.")
	fs.StringVar(&fl.Kingfisher, "kingfisher", fl.Kingfisher, "Path to the kingfisher utility (if not already in your PATH as kingfisher).")
	fs.BoolVar(&fl.SkipExisting, "skip_existing", false, "Skip runs that already have FASTQ or .sra files in --output_dir.")
	fs.StringVar(&fl.Translator, "translator", fl.Translator, "How GEO samples are translated to SRA runs: ncbi or bigquery.")
	fs.StringVar(&fl.NCBIAPIKey, "ncbi_api_key", "", "Optional NCBI E-utilities API key.")
	fs.StringVar(&fl.Project, "project", "", "Google Cloud project billed for BigQuery queries and summary uploads.")
	fs.StringVar(&fl.Summary, "summary", "", "Optional path (local or gs://) for a tab-delimited report of every download.")
	fs.StringVar(&fl.SummaryTable, "summary_table", "", "Optional BigQuery dataset.table that the report is also streamed into.")
	fs.BoolVar(&showInfo, "show_info", false, "With --geo, print the series' sample and platform metadata before downloading.")

	if err := fs.Parse(args); err != nil {
		return options{}, exitUsage
	}

	cfg := config.Default()
	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			log.Println(err)
			return options{}, exitUsage
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Println(err)
		return options{}, exitUsage
	}
	applyExplicitFlags(fs, &cfg, fl)

	if err := cfg.Validate(); err != nil {
		log.Println(err)
		fs.Usage()
		return options{}, exitUsage
	}

	in := accession.Input{File: cfg.InputFile, Samples: samples, Dataset: dataset}
	if in.File == "" && len(in.Samples) == 0 && in.Dataset == "" {
		log.Println("Please provide --input_file, --sample or --geo")
		fs.Usage()
		return options{}, exitUsage
	}

	return options{cfg: cfg, input: in, showInfo: showInfo}, exitOK
}

// applyExplicitFlags copies the flags the user actually set onto cfg, so that
// flag defaults do not mask the config file or the environment.
func applyExplicitFlags(fs *flag.FlagSet, cfg *config.Config, fl config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input_file":
			cfg.InputFile = fl.InputFile
		case "output_dir":
			cfg.OutputDir = fl.OutputDir
		case "download_methods":
			cfg.DownloadMethods = fl.DownloadMethods
		case "processes":
			cfg.Workers.Count = fl.Workers.Count
		case "use_max_processes":
			cfg.Workers.UseBatchSize = fl.Workers.UseBatchSize
		case "kingfisher":
			cfg.Kingfisher = fl.Kingfisher
		case "skip_existing":
			cfg.SkipExisting = fl.SkipExisting
		case "translator":
			cfg.Translator = fl.Translator
		case "ncbi_api_key":
			cfg.NCBIAPIKey = fl.NCBIAPIKey
		case "project":
			cfg.Project = fl.Project
		case "summary":
			cfg.Summary = fl.Summary
		case "summary_table":
			cfg.SummaryTable = fl.SummaryTable
		}
	})
}

func download(ctx context.Context, cfg config.Config, in accession.Input, showInfo bool) int {
	var (
		sc  *storage.Client
		bq  *bigquery.Client
		err error
	)

	if sradownload.IsGoogleStoragePath(in.File) || sradownload.IsGoogleStoragePath(cfg.Summary) {
		sc, err = storage.NewClient(ctx)
		if err != nil {
			log.Println(err)
			return exitFailure
		}
		defer sc.Close()
	}

	if cfg.Translator == config.TranslatorBigQuery || cfg.SummaryTable != "" {
		bq, err = bigquery.NewClient(ctx, cfg.Project)
		if err != nil {
			log.Println(err)
			return exitFailure
		}
		defer bq.Close()
	}

	datasets := geo.NewClient()
	resolver := &accession.Resolver{
		Storage:    sc,
		Datasets:   datasets,
		Translator: newTranslator(ctx, cfg, bq),
	}

	if showInfo && in.Dataset != "" {
		ds, err := datasets.FetchDataset(ctx, in.Dataset)
		if err != nil {
			log.Println(err)
			return exitFailure
		}
		geo.ShowSamples(os.Stdout, ds, geo.DefaultPreviewRows)
		geo.ShowPlatforms(os.Stdout, ds, geo.DefaultPreviewRows)

		in.Fetched = ds
	}

	ids, err := resolver.Resolve(ctx, in)
	if err != nil {
		log.Println(err)
		return exitFailure
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(sradownload.ExpandHome(cfg.OutputDir), 0755); err != nil {
			log.Println(err)
			return exitFailure
		}
	}

	opts := cfg.DispatchOptions()

	fetcher := &kingfisher.Fetcher{
		Binary:       cfg.Kingfisher,
		SkipExisting: cfg.SkipExisting,
	}
	outcomes := dispatch.Run(ctx, ids, opts, fetcher.Func(sradownload.ExpandHome(cfg.OutputDir), cfg.Methods()))

	rows := summary.FromOutcomes(summary.NewBatchID(), outcomes)
	log.Println(summary.Describe(rows))

	code := exitOK
	if !summary.OK(rows) {
		code = exitFailure
	}

	// The report is written even when the batch was interrupted.
	reportCtx := context.Background()

	if cfg.Summary != "" {
		if err := writeSummary(reportCtx, cfg.Summary, sc, rows); err != nil {
			log.Println(err)
			code = exitFailure
		}
	}

	if cfg.SummaryTable != "" {
		dataset, table, _ := cfg.SummaryTableParts()
		if err := summary.Upload(reportCtx, bq, dataset, table, rows); err != nil {
			log.Println(err)
			code = exitFailure
		}
	}

	return code
}

func newTranslator(ctx context.Context, cfg config.Config, bq *bigquery.Client) translate.Translator {
	if cfg.Translator == config.TranslatorBigQuery {
		return translate.NewBigQuery(ctx, bq)
	}
	return translate.NewNCBI(ctx, cfg.NCBIAPIKey)
}

func writeSummary(ctx context.Context, path string, sc *storage.Client, rows []summary.Row) error {
	w, err := sradownload.MaybeCreateOnGoogleStorage(ctx, path, sc)
	if err != nil {
		return err
	}

	if err := summary.WriteTSV(w, rows); err != nil {
		w.Close()
		return err
	}

	// For gs:// paths the upload completes on Close.
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing summary to %s: %w", path, err)
	}

	log.Println("Wrote summary to", path)
	return nil
}

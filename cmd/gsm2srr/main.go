// gsm2srr prints the SRA run and study accessions for GEO sample accessions,
// one tab-delimited line per sample.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/sradownload/compileinfo"
	"github.com/carbocation/sradownload/translate"
)

func main() {
	log.Println(compileinfo.Get())

	var backend, project, apiKey, table string

	flag.StringVar(&backend, "translator", "ncbi", "ncbi or bigquery.")
	flag.StringVar(&apiKey, "ncbi_api_key", "", "Optional NCBI E-utilities API key.")
	flag.StringVar(&project, "project", "", "Google Cloud project billed for BigQuery queries.")
	flag.StringVar(&table, "table", translate.DefaultSRATable, "BigQuery SRA metadata table.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] GSM... \n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var tr translate.Translator
	switch backend {
	case "ncbi":
		tr = translate.NewNCBI(ctx, apiKey)
	case "bigquery":
		if project == "" {
			log.Fatalln("--project is required for the bigquery translator")
		}
		client, err := bigquery.NewClient(ctx, project)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()

		bq := translate.NewBigQuery(ctx, client)
		bq.Table = table
		tr = bq
	default:
		log.Fatalf("Unknown translator %q\n", backend)
	}

	failed := false
	fmt.Println("sample\trun\tstudy")
	for _, sample := range flag.Args() {
		run, err := tr.RunAccession(sample)
		if err != nil {
			log.Println(err)
			failed = true
			continue
		}

		study, err := tr.StudyAccession(sample)
		if err != nil {
			log.Println(err)
			failed = true
			continue
		}

		fmt.Printf("%s\t%s\t%s\n", sample, run, study)
	}

	if failed {
		os.Exit(1)
	}
}

// geoinfo prints the sample and platform metadata of a GEO series, as a quick
// look before downloading its reads.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/sradownload"
	"github.com/carbocation/sradownload/geo"
)

func main() {
	var accession, file string
	var rows int
	var samples, platforms bool

	flag.StringVar(&accession, "geo", "", "GEO series accession (GSE...) to fetch from NCBI.")
	flag.StringVar(&file, "file", "", "Alternatively, a local or gs:// family SOFT file, optionally compressed.")
	flag.IntVar(&rows, "rows", geo.DefaultPreviewRows, "Number of table rows to preview per entity.")
	flag.BoolVar(&samples, "samples", true, "Print sample (GSM) information.")
	flag.BoolVar(&platforms, "platforms", true, "Print information for the first platform (GPL).")
	flag.Parse()

	if (accession == "") == (file == "") {
		log.Println("Please provide exactly one of --geo or --file")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var ds *geo.Dataset
	var err error
	if accession != "" {
		ds, err = geo.NewClient().FetchDataset(ctx, accession)
	} else {
		ds, err = readFile(ctx, file)
	}
	if err != nil {
		log.Fatalln(err)
	}

	if samples {
		geo.ShowSamples(os.Stdout, ds, rows)
	}
	if platforms {
		geo.ShowPlatforms(os.Stdout, ds, rows)
	}
}

// readFile parses a SOFT file. gs:// paths use application default
// credentials.
func readFile(ctx context.Context, path string) (*geo.Dataset, error) {
	var client *storage.Client
	if sradownload.IsGoogleStoragePath(path) {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		defer client.Close()
	}

	f, err := sradownload.MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, err
	}

	rc, err := sradownload.MaybeDecompressReadCloser(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer rc.Close()

	return geo.Parse(rc)
}

// Package accession turns the user's input into the flat list of SRA run
// identifiers that will be downloaded.
package accession

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/sradownload"
	"github.com/carbocation/sradownload/geo"
)

// ErrNoInput is returned when neither a file, a sample list nor a dataset was
// given.
var ErrNoInput = errors.New("accession: no input file, samples or dataset given")

// DatasetFetcher looks up a dataset (e.g. a GEO series) by accession.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context, accession string) (*geo.Dataset, error)
}

// RunTranslator maps one sample accession to its run accession.
type RunTranslator interface {
	RunAccession(sample string) (string, error)
}

// Input names the three ways identifiers can be supplied. When more than one
// is set, File wins over Samples, which wins over Dataset.
type Input struct {
	File    string
	Samples []string
	Dataset string

	// Fetched, if set, is the already downloaded Dataset and is expanded
	// without fetching it again.
	Fetched *geo.Dataset
}

// Resolver resolves an Input. Storage is only needed for gs:// files; Datasets
// and Translator only for dataset input.
type Resolver struct {
	Storage    *storage.Client
	Datasets   DatasetFetcher
	Translator RunTranslator
}

// Resolve produces the identifiers for in. Any failure aborts the whole
// resolution: no partial list is returned.
func (r *Resolver) Resolve(ctx context.Context, in Input) ([]string, error) {
	switch {
	case in.File != "":
		if len(in.Samples) > 0 {
			log.Printf("Both an input file and %d samples were given; using %s\n", len(in.Samples), in.File)
		}
		return ReadIDFile(ctx, in.File, r.Storage)

	case len(in.Samples) > 0:
		return cleanIDs(in.Samples), nil

	case in.Fetched != nil:
		return r.ExpandDatasetHandle(in.Fetched)

	case in.Dataset != "":
		return r.ExpandDataset(ctx, in.Dataset)
	}

	return nil, ErrNoInput
}

// ExpandDataset fetches the dataset and translates each of its samples, in
// the dataset's sample order, to a run accession.
func (r *Resolver) ExpandDataset(ctx context.Context, dataset string) ([]string, error) {
	if r.Datasets == nil {
		return nil, fmt.Errorf("accession: dataset input requires a dataset fetcher")
	}

	ds, err := r.Datasets.FetchDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("accession: fetching %s: %w", dataset, err)
	}
	if ds.Accession == "" {
		ds.Accession = dataset
	}

	return r.ExpandDatasetHandle(ds)
}

// ExpandDatasetHandle translates each sample of an already fetched dataset,
// in order, to a run accession.
func (r *Resolver) ExpandDatasetHandle(ds *geo.Dataset) ([]string, error) {
	if r.Translator == nil {
		return nil, fmt.Errorf("accession: dataset input requires a translator")
	}

	samples := ds.SampleNames()
	log.Printf("%s has %d samples\n", ds.Accession, len(samples))

	out := make([]string, 0, len(samples))
	for _, sample := range samples {
		run, err := r.Translator.RunAccession(sample)
		if err != nil {
			return nil, fmt.Errorf("accession: translating %s from %s: %w", sample, ds.Accession, err)
		}
		out = append(out, run)
	}

	return out, nil
}

// ReadIDFile reads identifiers from a local or gs:// file, decompressing it
// if needed.
func ReadIDFile(ctx context.Context, path string, client *storage.Client) ([]string, error) {
	f, err := sradownload.MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// Closing rc also closes f.
	rc, err := sradownload.MaybeDecompressReadCloser(f)
	if err != nil {
		f.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	defer rc.Close()

	ids, err := ReadIDs(rc)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return ids, nil
}

// ReadIDs reads one identifier per line, in order, with trailing whitespace
// removed. Blank lines are skipped.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		id := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}

	return ids, scanner.Err()
}

// cleanIDs applies the same rules as ReadIDs to an in-memory list.
func cleanIDs(samples []string) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		if s = strings.TrimRightFunc(s, unicode.IsSpace); s != "" {
			out = append(out, s)
		}
	}
	return out
}

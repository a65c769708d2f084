// Package translate maps a GEO sample accession (GSM) to the SRA run and study
// accessions that hold its reads.
package translate

import "errors"

var (
	// ErrNotFound means the service returned no rows for the accession.
	ErrNotFound = errors.New("translate: no SRA records found")

	// ErrMissingColumn means the service answered without the expected field.
	ErrMissingColumn = errors.New("translate: expected column missing from response")
)

// RunTranslator yields the run accession (SRR/ERR/DRR) for a sample.
type RunTranslator interface {
	RunAccession(sample string) (string, error)
}

// Translator also yields the study accession (SRP/ERP/DRP).
type Translator interface {
	RunTranslator
	StudyAccession(sample string) (string, error)
}

// Record is the subset of SRA run metadata that the translators read.
type Record struct {
	Run        string
	Study      string
	BioProject string
	Experiment string
}

func first(records []Record, sample string, field func(Record) string) (string, error) {
	if len(records) == 0 {
		return "", ErrNotFoundFor(sample)
	}

	v := field(records[0])
	if v == "" {
		return "", &LookupError{Sample: sample, Err: ErrMissingColumn}
	}

	return v, nil
}

// LookupError ties a translation failure to its sample.
type LookupError struct {
	Sample string
	Err    error
}

func (e *LookupError) Error() string {
	return e.Sample + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ErrNotFoundFor returns ErrNotFound annotated with sample.
func ErrNotFoundFor(sample string) error {
	return &LookupError{Sample: sample, Err: ErrNotFound}
}

func run(r Record) string   { return r.Run }
func study(r Record) string { return r.Study }

package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/bigquery"
	"github.com/BenLubar/memoize"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

// DefaultSRATable is NCBI's public SRA metadata table.
const DefaultSRATable = "nih-sra-datastore.sra.metadata"

// GEO-submitted samples carry their GSM accession as the SRA sample or library
// name.
const sraQueryTemplate = `SELECT acc, sra_study, bioproject, experiment
FROM ` + "`%s`" + `
WHERE sample_name = @accession
   OR library_name = @accession
   OR sample_acc = @accession
   OR biosample = @accession
ORDER BY acc
LIMIT 1000`

type sraRow struct {
	Acc        string              `bigquery:"acc"`
	SRAStudy   bigquery.NullString `bigquery:"sra_study"`
	BioProject bigquery.NullString `bigquery:"bioproject"`
	Experiment bigquery.NullString `bigquery:"experiment"`
}

// BigQuery translates accessions by querying the SRA metadata that NCBI
// mirrors into BigQuery. The query is billed to the client's project.
type BigQuery struct {
	Context context.Context
	Client  *bigquery.Client
	Table   string

	once   sync.Once
	lookup func(string) ([]Record, error)
}

// NewBigQuery returns a translator for the default SRA table.
func NewBigQuery(ctx context.Context, client *bigquery.Client) *BigQuery {
	return &BigQuery{Context: ctx, Client: client, Table: DefaultSRATable}
}

// SRAQuery returns the SQL that looks up one accession in table.
func SRAQuery(table string) string {
	if table == "" {
		table = DefaultSRATable
	}
	return fmt.Sprintf(sraQueryTemplate, strings.Trim(table, "`"))
}

// RunAccession returns the first run accession recorded for sample.
func (b *BigQuery) RunAccession(sample string) (string, error) {
	records, err := b.Records(sample)
	if err != nil {
		return "", err
	}
	return first(records, sample, run)
}

// StudyAccession returns the study accession of the first run recorded for
// sample.
func (b *BigQuery) StudyAccession(sample string) (string, error) {
	records, err := b.Records(sample)
	if err != nil {
		return "", err
	}
	return first(records, sample, study)
}

// Records returns every run recorded for sample, ordered by run accession.
func (b *BigQuery) Records(sample string) ([]Record, error) {
	b.once.Do(func() {
		b.lookup = memoize.Memoize(b.fetch).(func(string) ([]Record, error))
	})

	return b.lookup(strings.TrimSpace(sample))
}

func (b *BigQuery) fetch(sample string) ([]Record, error) {
	if b.Client == nil {
		return nil, fmt.Errorf("translate: no BigQuery client was configured")
	}

	ctx := b.Context
	if ctx == nil {
		ctx = context.Background()
	}

	query := b.Client.Query(SRAQuery(b.Table))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "accession", Value: sample},
	}

	itr, err := query.Read(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", sample, err))
	}

	var out []Record
	for {
		var row sraRow
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", sample, err))
		}

		out = append(out, Record{
			Run:        row.Acc,
			Study:      row.SRAStudy.StringVal,
			BioProject: row.BioProject.StringVal,
			Experiment: row.Experiment.StringVal,
		})
	}

	if len(out) == 0 {
		return nil, ErrNotFoundFor(sample)
	}

	return out, nil
}

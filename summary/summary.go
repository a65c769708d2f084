// Package summary reports how each download in a batch went.
package summary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"github.com/carbocation/sradownload/dispatch"
	"github.com/carbocation/sradownload/kingfisher"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"gopkg.in/guregu/null.v3"
)

const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// NewBatchID returns a random identifier shared by every row of one run of
// the downloader.
func NewBatchID() string {
	return uuid.New().String()
}

// Row is the outcome of one download.
type Row struct {
	Batch     string
	Accession string
	Status    string
	ExitCode  null.Int
	Error     null.String
	Started   time.Time
	Seconds   float64
}

// FromOutcomes converts dispatch outcomes into rows, in the same order.
func FromOutcomes(batchID string, outcomes []dispatch.Outcome) []Row {
	rows := make([]Row, 0, len(outcomes))
	for _, o := range outcomes {
		row := Row{
			Batch:     batchID,
			Accession: o.ID,
			Started:   o.Started,
			Seconds:   o.Duration().Seconds(),
		}

		switch {
		case o.Err == nil:
			row.Status = StatusOK
			row.ExitCode = null.IntFrom(0)
		case errors.Is(o.Err, kingfisher.ErrAlreadyDownloaded):
			row.Status = StatusSkipped
			row.Error = null.StringFrom(o.Err.Error())
		default:
			row.Status = StatusFailed
			row.ExitCode = kingfisher.ExitCode(o.Err)
			row.Error = null.StringFrom(o.Err.Error())
		}

		rows = append(rows, row)
	}

	return rows
}

// OK reports whether no row failed. Skipped rows count as success.
func OK(rows []Row) bool {
	for _, row := range rows {
		if row.Status == StatusFailed {
			return false
		}
	}
	return true
}

type tsvRow struct {
	Batch     string `csv:"batch"`
	Accession string `csv:"accession"`
	Status    string `csv:"status"`
	ExitCode  string `csv:"exit_code"`
	Seconds   string `csv:"seconds"`
	Error     string `csv:"error"`
}

// WriteTSV writes rows as a tab-delimited file with a header line. Null
// values are written as empty fields.
func WriteTSV(w io.Writer, rows []Row) error {
	out := make([]*tsvRow, 0, len(rows))
	for _, row := range rows {
		r := &tsvRow{
			Batch:     row.Batch,
			Accession: row.Accession,
			Status:    row.Status,
			Seconds:   strconv.FormatFloat(row.Seconds, 'f', 3, 64),
			Error:     row.Error.String,
		}
		if row.ExitCode.Valid {
			r.ExitCode = strconv.FormatInt(row.ExitCode.Int64, 10)
		}
		out = append(out, r)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := gocsv.MarshalCSV(&out, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// Stats describes a batch.
type Stats struct {
	Total   int
	OK      int
	Skipped int
	Failed  int

	// MedianSeconds and MaxSeconds cover jobs that ran.
	MedianSeconds float64
	MaxSeconds    float64
}

func (s Stats) String() string {
	return fmt.Sprintf("%d jobs: %d ok, %d skipped, %d failed (median %.1fs, max %.1fs)",
		s.Total, s.OK, s.Skipped, s.Failed, s.MedianSeconds, s.MaxSeconds)
}

// Describe counts rows by status and summarizes how long they took.
func Describe(rows []Row) Stats {
	out := Stats{Total: len(rows)}

	var durations stats.Float64Data
	for _, row := range rows {
		switch row.Status {
		case StatusOK:
			out.OK++
		case StatusSkipped:
			out.Skipped++
		default:
			out.Failed++
		}

		if !row.Started.IsZero() && row.Status != StatusSkipped {
			durations = append(durations, row.Seconds)
		}
	}

	if len(durations) == 0 {
		return out
	}

	// Errors are only returned for empty input.
	out.MedianSeconds, _ = stats.Median(durations)
	out.MaxSeconds, _ = stats.Max(durations)

	return out
}

// Save implements bigquery.ValueSaver. Rows are deduplicated on batch and
// accession.
func (r Row) Save() (map[string]bigquery.Value, string, error) {
	values := map[string]bigquery.Value{
		"batch":     r.Batch,
		"accession": r.Accession,
		"status":    r.Status,
		"seconds":   r.Seconds,
		"exit_code": nil,
		"error":     nil,
		"started":   nil,
	}
	if r.ExitCode.Valid {
		values["exit_code"] = r.ExitCode.Int64
	}
	if r.Error.Valid {
		values["error"] = r.Error.String
	}
	if !r.Started.IsZero() {
		values["started"] = r.Started
	}

	return values, r.Batch + "/" + r.Accession, nil
}

// Schema is the BigQuery schema Upload expects the destination table to have.
var Schema = bigquery.Schema{
	{Name: "batch", Type: bigquery.StringFieldType, Required: true},
	{Name: "accession", Type: bigquery.StringFieldType, Required: true},
	{Name: "status", Type: bigquery.StringFieldType, Required: true},
	{Name: "exit_code", Type: bigquery.IntegerFieldType},
	{Name: "error", Type: bigquery.StringFieldType},
	{Name: "started", Type: bigquery.TimestampFieldType},
	{Name: "seconds", Type: bigquery.FloatFieldType},
}

// Upload streams rows into dataset.table in the client's project.
func Upload(ctx context.Context, client *bigquery.Client, dataset, table string, rows []Row) error {
	if client == nil {
		return pfx.Err(fmt.Errorf("no BigQuery client for %s.%s", dataset, table))
	}
	if len(rows) == 0 {
		return nil
	}

	if err := client.Dataset(dataset).Table(table).Inserter().Put(ctx, rows); err != nil {
		return pfx.Err(fmt.Errorf("inserting %d rows into %s.%s: %w", len(rows), dataset, table, err))
	}

	return nil
}

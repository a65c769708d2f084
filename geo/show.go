package geo

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// DefaultPreviewRows is how many table rows the Show functions print.
const DefaultPreviewRows = 5

// ShowSamples prints every sample's name, metadata and a preview of its table.
func ShowSamples(w io.Writer, ds *Dataset, rows int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "GSM (sample) info:")
	for _, sample := range ds.Samples {
		showEntity(w, sample, rows)
	}
}

// ShowPlatforms prints the same information as ShowSamples, but only for the
// first platform of the series.
func ShowPlatforms(w io.Writer, ds *Dataset, rows int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "GPL (platform) info:")
	for _, platform := range ds.Platforms {
		showEntity(w, platform, rows)
		break
	}
}

func showEntity(w io.Writer, e *Entity, rows int) {
	fmt.Fprintln(w, "Name: ", e.Name)
	if submitted, ok := e.SubmissionDate(); ok {
		fmt.Fprintln(w, "Submitted:", submitted.Format("2006-01-02"))
	}

	fmt.Fprintln(w, "Metadata:")
	for _, key := range e.Metadata.Keys() {
		fmt.Fprintf(w, " - %s : %s\n", key, strings.Join(e.Metadata.Get(key), ", "))
	}

	fmt.Fprintln(w, "Table data:")
	head := e.Table.Head(rows)
	if head == nil || len(head.Header) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(head.Header, "\t"))
	for _, row := range head.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

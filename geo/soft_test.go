package geo

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseFamily(t *testing.T) {
	ds, err := Parse(strings.NewReader(familySOFT))
	if err != nil {
		t.Fatal(err)
	}

	if ds.Accession != "GSE1000" {
		t.Errorf("expected accession GSE1000, got %q", ds.Accession)
	}
	if title := ds.Metadata.First("title"); title != "Liver time course" {
		t.Errorf("unexpected series title %q", title)
	}
	if ids := ds.Metadata.Get("sample_id"); len(ids) != 3 {
		t.Errorf("expected 3 sample_id values, got %v", ids)
	}

	if names := ds.SampleNames(); !reflect.DeepEqual(names, []string{"GSM1", "GSM2", "GSM3"}) {
		t.Errorf("unexpected sample order %v", names)
	}
	if len(ds.Platforms) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(ds.Platforms))
	}

	gsm1 := ds.Sample("GSM1")
	if gsm1 == nil {
		t.Fatal("GSM1 not found")
	}
	if got := gsm1.Metadata.Keys(); !reflect.DeepEqual(got, []string{"title", "submission_date", "characteristics_ch1"}) {
		t.Errorf("unexpected metadata keys %v", got)
	}
	if got := gsm1.Metadata.Get("characteristics_ch1"); !reflect.DeepEqual(got, []string{"tissue: liver", "age: 3"}) {
		t.Errorf("unexpected characteristics %v", got)
	}
	if gsm1.Columns["VALUE"] != "normalized signal" {
		t.Errorf("unexpected column description %q", gsm1.Columns["VALUE"])
	}

	if gsm1.Table == nil {
		t.Fatal("expected GSM1 to have a table")
	}
	if !reflect.DeepEqual(gsm1.Table.Header, []string{"ID_REF", "VALUE"}) {
		t.Errorf("unexpected header %v", gsm1.Table.Header)
	}
	if len(gsm1.Table.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(gsm1.Table.Rows))
	}
	if head := gsm1.Table.Head(2); len(head.Rows) != 2 {
		t.Errorf("expected Head(2) to keep 2 rows, got %d", len(head.Rows))
	}

	if ds.Sample("GSM2").Table != nil {
		t.Error("GSM2 has no table block")
	}
	if ds.Platform("GPL570").Table == nil {
		t.Error("GPL570 should have a table")
	}
}

func TestSubmissionDate(t *testing.T) {
	ds, err := Parse(strings.NewReader(familySOFT))
	if err != nil {
		t.Fatal(err)
	}

	submitted, ok := ds.Sample("GSM1").SubmissionDate()
	if !ok {
		t.Fatal("expected a submission date")
	}
	if got := submitted.Format("2006-01-02"); got != "2010-01-15" {
		t.Errorf("expected 2010-01-15, got %s", got)
	}

	if _, ok := ds.Sample("GSM2").SubmissionDate(); ok {
		t.Error("GSM2 has no submission date")
	}
}

func TestParseUnterminatedTable(t *testing.T) {
	_, err := Parse(strings.NewReader("^SAMPLE = GSM1\n!sample_table_begin\nID_REF\tVALUE\n"))
	if err == nil {
		t.Error("expected an error for a table without an end marker")
	}
}

func TestParseContentBeforeHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("!Sample_title = orphan\n"))
	if err == nil {
		t.Error("expected an error for metadata outside an entity")
	}
}

func TestParseUTF8AfterLongHeader(t *testing.T) {
	var b strings.Builder
	b.WriteString("^SERIES = GSE2000\n")
	for i := 0; i < 60; i++ {
		b.WriteString("!Series_summary = An entirely ASCII line describing the series in some detail.\n")
	}
	b.WriteString("^SAMPLE = GSM20\n")
	b.WriteString("!Sample_contributor = José,,Müller\n")

	if b.Len() < 2*sniffBytes {
		t.Fatalf("header is only %d bytes", b.Len())
	}

	ds, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}

	if got := ds.Sample("GSM20").Metadata.First("contributor"); got != "José,,Müller" {
		t.Errorf("expected UTF-8 text to be kept, got %q", got)
	}
}

func TestParseLatin1(t *testing.T) {
	// "José" in ISO-8859-1 is not valid UTF-8.
	soft := "^SAMPLE = GSM21\n!Sample_contributor = Jos\xe9\n"

	ds, err := Parse(strings.NewReader(soft))
	if err != nil {
		t.Fatal(err)
	}

	if got := ds.Sample("GSM21").Metadata.First("contributor"); got != "José" {
		t.Errorf("expected Latin-1 text to be transcoded, got %q", got)
	}
}

func TestParseByteOrderMark(t *testing.T) {
	ds, err := Parse(strings.NewReader("\ufeff^SAMPLE = GSM22\n!Sample_title = Zürich\n"))
	if err != nil {
		t.Fatal(err)
	}

	if got := ds.Sample("GSM22").Metadata.First("title"); got != "Zürich" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestTableHead(t *testing.T) {
	table := &Table{Header: []string{"ID_REF", "VALUE"}, Rows: [][]string{{"a", "1"}, {"b", "2"}}}

	tests := []struct {
		n        int
		expected int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{5, 2},
	}

	for _, tt := range tests {
		if got := len(table.Head(tt.n).Rows); got != tt.expected {
			t.Errorf("Head(%d): expected %d rows, got %d", tt.n, tt.expected, got)
		}
	}

	var empty *Table
	if empty.Head(-1) != nil {
		t.Error("expected nil from a nil table")
	}
}

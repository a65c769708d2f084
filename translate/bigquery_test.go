package translate

import (
	"strings"
	"testing"
)

func TestSRAQuery(t *testing.T) {
	q := SRAQuery("")
	if !strings.Contains(q, "`nih-sra-datastore.sra.metadata`") {
		t.Errorf("expected the default table in the query:\n%s", q)
	}
	if !strings.Contains(q, "@accession") {
		t.Errorf("expected a named parameter in the query:\n%s", q)
	}

	q = SRAQuery("`my-project.mirror.sra`")
	if !strings.Contains(q, "FROM `my-project.mirror.sra`") {
		t.Errorf("expected a custom table without doubled backticks:\n%s", q)
	}
}

func TestBigQueryWithoutClient(t *testing.T) {
	b := &BigQuery{}
	if _, err := b.RunAccession("GSM1"); err == nil {
		t.Error("expected an error without a client")
	}
}

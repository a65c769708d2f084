package geo

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSeriesURL(t *testing.T) {
	for _, v := range []struct {
		accession string
		expected  string
	}{
		{"GSE1000", "https://example.org/geo/series/GSE1nnn/GSE1000/soft/GSE1000_family.soft.gz"},
		{"GSE123", "https://example.org/geo/series/GSEnnn/GSE123/soft/GSE123_family.soft.gz"},
		{"gse98765", "https://example.org/geo/series/GSE98nnn/GSE98765/soft/GSE98765_family.soft.gz"},
	} {
		got, err := SeriesURL("https://example.org/", v.accession)
		if err != nil {
			t.Fatal(err)
		}
		if got != v.expected {
			t.Errorf("SeriesURL(%q) = %q, expected %q", v.accession, got, v.expected)
		}
	}

	if _, err := SeriesURL("https://example.org", "GSM1"); err == nil {
		t.Error("expected an error for a sample accession")
	}
}

func TestFetchDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/series/GSE1nnn/GSE1000/soft/GSE1000_family.soft.gz" {
			http.NotFound(w, r)
			return
		}
		gz := gzip.NewWriter(w)
		gz.Write([]byte(familySOFT))
		gz.Close()
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}

	ds, err := c.FetchDataset(context.Background(), "GSE1000")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Samples) != 3 {
		t.Errorf("expected 3 samples, got %d", len(ds.Samples))
	}

	if _, err := c.FetchDataset(context.Background(), "GSE2000"); err == nil {
		t.Error("expected an error for a missing series")
	}
}

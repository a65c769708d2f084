package translate

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/BenLubar/memoize"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"golang.org/x/net/html/charset"
)

// DefaultEutilsURL is the NCBI E-utilities endpoint.
const DefaultEutilsURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// RunInfo is one row of an SRA runinfo table. Only the columns this package
// uses are mapped.
type RunInfo struct {
	Run        string `csv:"Run"`
	Experiment string `csv:"Experiment"`
	SRAStudy   string `csv:"SRAStudy"`
	BioProject string `csv:"BioProject"`
	Sample     string `csv:"Sample"`
	BioSample  string `csv:"BioSample"`
	SampleName string `csv:"SampleName"`
}

type eSearchResult struct {
	Count  int      `xml:"Count"`
	IDList []string `xml:"IdList>Id"`
	Errors []string `xml:"ErrorList>PhraseNotFound"`
}

// NCBI translates accessions with E-utilities: esearch finds the SRA UIDs for
// the sample and efetch returns their runinfo table. Results are memoized per
// client, so asking for the run and then the study of one sample costs one
// round trip.
type NCBI struct {
	Context context.Context
	HTTP    *http.Client
	BaseURL string

	// APIKey raises NCBI's rate limit from 3 to 10 requests per second.
	APIKey string

	once   sync.Once
	lookup func(string) ([]Record, error)
}

// NewNCBI returns a client pointed at NCBI.
func NewNCBI(ctx context.Context, apiKey string) *NCBI {
	return &NCBI{
		Context: ctx,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
		BaseURL: DefaultEutilsURL,
		APIKey:  apiKey,
	}
}

// RunAccession returns the first run accession recorded for sample.
func (c *NCBI) RunAccession(sample string) (string, error) {
	records, err := c.Records(sample)
	if err != nil {
		return "", err
	}
	return first(records, sample, run)
}

// StudyAccession returns the study accession of the first run recorded for
// sample.
func (c *NCBI) StudyAccession(sample string) (string, error) {
	records, err := c.Records(sample)
	if err != nil {
		return "", err
	}
	return first(records, sample, study)
}

// Records returns every run recorded for sample.
func (c *NCBI) Records(sample string) ([]Record, error) {
	c.once.Do(func() {
		c.lookup = memoize.Memoize(c.fetch).(func(string) ([]Record, error))
	})

	return c.lookup(strings.TrimSpace(sample))
}

func (c *NCBI) fetch(sample string) ([]Record, error) {
	ids, err := c.search(sample)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFoundFor(sample)
	}

	rows, err := c.runInfo(ids)
	if err != nil {
		return nil, &LookupError{Sample: sample, Err: err}
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{
			Run:        row.Run,
			Study:      row.SRAStudy,
			BioProject: row.BioProject,
			Experiment: row.Experiment,
		})
	}
	if len(out) == 0 {
		return nil, ErrNotFoundFor(sample)
	}

	return out, nil
}

func (c *NCBI) search(sample string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "sra")
	params.Set("term", sample)
	params.Set("retmax", "500")

	body, err := c.get("esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var result eSearchResult
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&result); err != nil {
		return nil, pfx.Err(fmt.Errorf("decoding esearch response for %s: %w", sample, err))
	}

	return result.IDList, nil
}

func (c *NCBI) runInfo(ids []string) ([]RunInfo, error) {
	params := url.Values{}
	params.Set("db", "sra")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "runinfo")
	params.Set("retmode", "text")

	body, err := c.get("efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	return ParseRunInfo(bytes.NewReader(body))
}

func (c *NCBI) get(endpoint string, params url.Values) ([]byte, error) {
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	target := strings.TrimRight(c.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pfx.Err(err)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate: %s returned %s", endpoint, resp.Status)
	}

	return body, nil
}

// ParseRunInfo decodes a runinfo CSV table. Blank lines and the header lines
// that efetch repeats between batches are dropped. The Run and SRAStudy
// columns must be present.
func ParseRunInfo(r io.Reader) ([]RunInfo, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return nil, pfx.Err(err)
	}
	for _, required := range []string{"Run", "SRAStudy"} {
		if !contains(header, required) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []RunInfo
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	out := rows[:0]
	for _, row := range rows {
		if row.Run == "" || row.Run == "Run" {
			continue
		}
		out = append(out, row)
	}

	return out, nil
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

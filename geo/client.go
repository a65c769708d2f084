package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sradownload"
)

// DefaultBaseURL serves the GEO FTP tree over HTTPS.
const DefaultBaseURL = "https://ftp.ncbi.nlm.nih.gov"

var seriesPattern = regexp.MustCompile(`^GSE[0-9]+$`)

// Client downloads SOFT family files for GEO series.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// NewClient returns a Client pointed at NCBI.
func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Minute},
		BaseURL: DefaultBaseURL,
	}
}

// SeriesURL builds the location of the SOFT family file for a series. GEO
// groups series by all but their last three digits, e.g. GSE12345 lives under
// GSE12nnn and GSE123 under GSEnnn.
func SeriesURL(baseURL, accession string) (string, error) {
	accession = strings.ToUpper(strings.TrimSpace(accession))
	if !seriesPattern.MatchString(accession) {
		return "", fmt.Errorf("geo: %q is not a GEO series accession", accession)
	}

	digits := strings.TrimPrefix(accession, "GSE")
	stub := "GSEnnn"
	if len(digits) > 3 {
		stub = "GSE" + digits[:len(digits)-3] + "nnn"
	}

	return fmt.Sprintf("%s/geo/series/%s/%s/soft/%s_family.soft.gz", strings.TrimRight(baseURL, "/"), stub, accession, accession), nil
}

// FetchDataset downloads and parses the series' SOFT family file.
func (c *Client) FetchDataset(ctx context.Context, accession string) (*Dataset, error) {
	url, err := SeriesURL(c.BaseURL, accession)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("geo: fetching %s: %s", url, resp.Status)
	}

	body, err := sradownload.MaybeDecompressReadCloser(resp.Body)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer body.Close()

	ds, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("geo: parsing %s: %w", accession, err)
	}
	if ds.Accession == "" {
		ds.Accession = strings.ToUpper(accession)
	}

	return ds, nil
}

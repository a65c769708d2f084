// Package config holds the downloader's settings. Values are layered:
// defaults, then a YAML file, then SRADL_* environment variables, then
// explicit command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sradownload"
	"github.com/carbocation/sradownload/dispatch"
	"github.com/carbocation/sradownload/kingfisher"
	"gopkg.in/yaml.v3"
)

const (
	TranslatorNCBI     = "ncbi"
	TranslatorBigQuery = "bigquery"
)

// Config defines configuration for the downloader.
type Config struct {
	InputFile       string  `yaml:"input_file"`
	OutputDir       string  `yaml:"output_dir"`
	DownloadMethods string  `yaml:"download_methods"`
	Workers         Workers `yaml:"workers"`
	Kingfisher      string  `yaml:"kingfisher"`
	SkipExisting    bool    `yaml:"skip_existing"`

	// Translator is ncbi or bigquery.
	Translator string `yaml:"translator"`
	NCBIAPIKey string `yaml:"ncbi_api_key"`

	// Project is billed for BigQuery queries and summary uploads.
	Project string `yaml:"project"`

	Summary      string `yaml:"summary"`
	SummaryTable string `yaml:"summary_table"`
}

// Workers sizes the download pool.
type Workers struct {
	Count        int  `yaml:"count"`
	UseBatchSize bool `yaml:"use_batch_size"`
}

// Default returns a Config with the command's defaults.
func Default() Config {
	return Config{
		DownloadMethods: kingfisher.DefaultMethods,
		Workers: Workers{
			Count: dispatch.DefaultWorkers,
		},
		Kingfisher: kingfisher.DefaultBinary,
		Translator: TranslatorNCBI,
	}
}

// LoadFromFile overlays the YAML file at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(sradownload.ExpandHome(path))
	if err != nil {
		return pfx.Err(fmt.Errorf("read config file: %w", err))
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return pfx.Err(fmt.Errorf("parse config file %s: %w", path, err))
	}

	return nil
}

// LoadFromEnv overlays SRADL_* environment variables onto c.
func (c *Config) LoadFromEnv() error {
	strs := map[string]*string{
		"SRADL_INPUT_FILE":       &c.InputFile,
		"SRADL_OUTPUT_DIR":       &c.OutputDir,
		"SRADL_DOWNLOAD_METHODS": &c.DownloadMethods,
		"SRADL_KINGFISHER":       &c.Kingfisher,
		"SRADL_TRANSLATOR":       &c.Translator,
		"SRADL_NCBI_API_KEY":     &c.NCBIAPIKey,
		"SRADL_PROJECT":          &c.Project,
		"SRADL_SUMMARY":          &c.Summary,
		"SRADL_SUMMARY_TABLE":    &c.SummaryTable,
	}
	for key, field := range strs {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("SRADL_PROCESSES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SRADL_PROCESSES: %w", err)
		}
		c.Workers.Count = n
	}

	bools := map[string]*bool{
		"SRADL_USE_MAX_PROCESSES": &c.Workers.UseBatchSize,
		"SRADL_SKIP_EXISTING":     &c.SkipExisting,
	}
	for key, field := range bools {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*field = b
	}

	return nil
}

// Validate checks that the configuration can be run.
func (c Config) Validate() error {
	if len(c.Methods()) == 0 {
		return fmt.Errorf("download_methods must name at least one method")
	}
	if !c.Workers.UseBatchSize && c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1, got %d", c.Workers.Count)
	}
	if c.Kingfisher == "" {
		return fmt.Errorf("kingfisher binary must be set")
	}

	switch c.Translator {
	case TranslatorNCBI:
	case TranslatorBigQuery:
		if c.Project == "" {
			return fmt.Errorf("the bigquery translator requires a project")
		}
	default:
		return fmt.Errorf("unknown translator %q (expected %s or %s)", c.Translator, TranslatorNCBI, TranslatorBigQuery)
	}

	if c.SummaryTable != "" {
		if _, _, err := c.SummaryTableParts(); err != nil {
			return err
		}
		if c.Project == "" {
			return fmt.Errorf("summary_table requires a project")
		}
	}

	return nil
}

// Methods is the ordered list of download methods.
func (c Config) Methods() []string {
	return kingfisher.ParseMethods(c.DownloadMethods)
}

// DispatchOptions sizes the download pool.
func (c Config) DispatchOptions() dispatch.Options {
	return dispatch.Options{
		Workers:      c.Workers.Count,
		UseBatchSize: c.Workers.UseBatchSize,
	}
}

// SummaryTableParts splits SummaryTable, which is written as dataset.table.
func (c Config) SummaryTableParts() (dataset, table string, err error) {
	parts := strings.Split(c.SummaryTable, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("summary_table must be dataset.table, got %q", c.SummaryTable)
	}
	return parts[0], parts[1], nil
}

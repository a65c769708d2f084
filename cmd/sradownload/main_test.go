package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSampleList(t *testing.T) {
	var s sampleList
	for _, v := range []string{"SRR1", "SRR2,SRR3"} {
		if err := s.Set(v); err != nil {
			t.Fatal(err)
		}
	}

	expected := sampleList{"SRR1", "SRR2", "SRR3"}
	if !reflect.DeepEqual(s, expected) {
		t.Errorf("expected %v, got %v", expected, s)
	}
	if s.String() != "SRR1,SRR2,SRR3" {
		t.Errorf("unexpected string %q", s.String())
	}
}

var envKeys = []string{
	"SRADL_INPUT_FILE", "SRADL_OUTPUT_DIR", "SRADL_DOWNLOAD_METHODS", "SRADL_KINGFISHER",
	"SRADL_TRANSLATOR", "SRADL_NCBI_API_KEY", "SRADL_PROJECT", "SRADL_SUMMARY",
	"SRADL_SUMMARY_TABLE", "SRADL_PROCESSES", "SRADL_USE_MAX_PROCESSES", "SRADL_SKIP_EXISTING",
}

func TestConfigurePrecedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "sradownload.yaml")
	yml := "output_dir: /from/file\ndownload_methods: aws-http\nworkers:\n  count: 4\n"
	if err := os.WriteFile(yamlPath, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		env       map[string]string
		args      []string
		workers   int
		methods   []string
		outputDir string
	}{
		{
			name:      "file over defaults",
			args:      []string{"--config", yamlPath, "--sample", "SRR1"},
			workers:   4,
			methods:   []string{"aws-http"},
			outputDir: "/from/file",
		},
		{
			name:      "env over file",
			env:       map[string]string{"SRADL_PROCESSES": "6", "SRADL_OUTPUT_DIR": "/from/env"},
			args:      []string{"--config", yamlPath, "--sample", "SRR1"},
			workers:   6,
			methods:   []string{"aws-http"},
			outputDir: "/from/env",
		},
		{
			name:      "explicit flags over env and file",
			env:       map[string]string{"SRADL_PROCESSES": "6", "SRADL_DOWNLOAD_METHODS": "ena-ftp"},
			args:      []string{"--config", yamlPath, "--processes", "8", "--download_methods", "prefetch", "--sample", "SRR1"},
			workers:   8,
			methods:   []string{"prefetch"},
			outputDir: "/from/file",
		},
		{
			name:      "explicit flag equal to its default",
			env:       map[string]string{"SRADL_PROCESSES": "6"},
			args:      []string{"--config", yamlPath, "--processes", "10", "--sample", "SRR1"},
			workers:   10,
			methods:   []string{"aws-http"},
			outputDir: "/from/file",
		},
		{
			name:    "defaults only",
			args:    []string{"--sample", "SRR1"},
			workers: 10,
			methods: []string{"ena-ascp", "ena-ftp", "aws-http", "prefetch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, tt.env[key])
			}

			fs := flag.NewFlagSet("sradownload", flag.ContinueOnError)
			fs.SetOutput(io.Discard)

			opts, code := configure(fs, tt.args)
			if code != exitOK {
				t.Fatalf("expected exit code %d, got %d", exitOK, code)
			}

			if opts.cfg.Workers.Count != tt.workers {
				t.Errorf("expected %d workers, got %d", tt.workers, opts.cfg.Workers.Count)
			}
			if got := opts.cfg.Methods(); !reflect.DeepEqual(got, tt.methods) {
				t.Errorf("expected methods %v, got %v", tt.methods, got)
			}
			if opts.cfg.OutputDir != tt.outputDir {
				t.Errorf("expected output dir %q, got %q", tt.outputDir, opts.cfg.OutputDir)
			}
			if !reflect.DeepEqual(opts.input.Samples, []string{"SRR1"}) {
				t.Errorf("unexpected samples %v", opts.input.Samples)
			}
		})
	}
}

func TestConfigureUsage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"no input", nil, []string{"--processes", "4"}},
		{"unknown flag", nil, []string{"--sample", "SRR1", "--bogus"}},
		{"zero processes", nil, []string{"--sample", "SRR1", "--processes", "0"}},
		{"unknown translator", nil, []string{"--geo", "GSE1", "--translator", "ena"}},
		{"missing config file", nil, []string{"--sample", "SRR1", "--config", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"bad environment", map[string]string{"SRADL_PROCESSES": "many"}, []string{"--sample", "SRR1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, tt.env[key])
			}

			fs := flag.NewFlagSet("sradownload", flag.ContinueOnError)
			fs.SetOutput(io.Discard)

			if _, code := configure(fs, tt.args); code != exitUsage {
				t.Errorf("expected exit code %d, got %d", exitUsage, code)
			}
		})
	}
}

func TestConfigureDatasetInput(t *testing.T) {
	for _, key := range envKeys {
		t.Setenv(key, "")
	}

	fs := flag.NewFlagSet("sradownload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts, code := configure(fs, []string{"--geo", "GSE1000", "--show_info", "--use_max_processes"})
	if code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}
	if opts.input.Dataset != "GSE1000" || !opts.showInfo {
		t.Errorf("unexpected options %+v", opts)
	}
	if !opts.cfg.DispatchOptions().UseBatchSize {
		t.Error("expected --use_max_processes to be applied")
	}
}

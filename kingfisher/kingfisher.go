// Package kingfisher downloads one SRA run by invoking the kingfisher tool,
// which tries each download method in order until one succeeds.
package kingfisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/carbocation/sradownload/dispatch"
	"gopkg.in/guregu/null.v3"
)

const (
	// DefaultBinary is looked up on PATH.
	DefaultBinary = "kingfisher"

	// DefaultMethods is the order in which kingfisher tries download methods.
	DefaultMethods = "ena-ascp ena-ftp aws-http prefetch"
)

// ErrAlreadyDownloaded is returned instead of running kingfisher when the run
// already has files in the output directory.
var ErrAlreadyDownloaded = errors.New("kingfisher: run already downloaded")

// ParseMethods splits a space-delimited method list, keeping its order.
func ParseMethods(methods string) []string {
	return strings.Fields(methods)
}

// Job is one kingfisher invocation.
type Job struct {
	RunID string

	// OutputDir may be empty, in which case kingfisher writes to its working
	// directory.
	OutputDir string

	Methods []string
}

// Args are the command-line arguments for the job, excluding the binary.
func (j Job) Args() []string {
	args := []string{"get", "--run-identifiers", j.RunID}
	if j.OutputDir != "" {
		args = append(args, "--output-directory", j.OutputDir)
	}
	args = append(args, "--download-methods")
	args = append(args, j.Methods...)
	return args
}

// Fetcher runs kingfisher. Its output is passed straight through, so the
// output of concurrent jobs is interleaved.
type Fetcher struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer

	// SkipExisting skips runs that already have files in the output
	// directory.
	SkipExisting bool
}

// Fetch runs exactly one kingfisher process for job. A non-zero exit is
// returned as an error wrapping *exec.ExitError.
func (f *Fetcher) Fetch(ctx context.Context, job Job) error {
	if job.RunID == "" {
		return fmt.Errorf("kingfisher: empty run identifier")
	}

	if f.SkipExisting {
		if files := Existing(job.OutputDir, job.RunID); len(files) > 0 {
			return fmt.Errorf("%w: %s (%s)", ErrAlreadyDownloaded, job.RunID, strings.Join(files, ", "))
		}
	}

	binary := f.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, job.Args()...)
	cmd.Stdout = f.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = f.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("kingfisher %s: %w", job.RunID, err)
	}

	return nil
}

// Func adapts the fetcher to the dispatch pool: every identifier is fetched
// into the same directory with the same methods.
func (f *Fetcher) Func(outputDir string, methods []string) dispatch.Func {
	return func(ctx context.Context, id string) error {
		return f.Fetch(ctx, Job{RunID: id, OutputDir: outputDir, Methods: methods})
	}
}

// Existing lists files kingfisher would have written for runID in dir:
// FASTQ files (single, paired or unpaired, optionally compressed) or an .sra
// file.
func Existing(dir, runID string) []string {
	if dir == "" {
		dir = "."
	}

	var out []string
	for _, pattern := range []string{runID + ".fastq*", runID + "_*.fastq*", runID + ".sra"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		out = append(out, matches...)
	}

	return out
}

// ExitCode extracts the process exit code from an error returned by Fetch.
// It is null when the process never ran or did not exit normally.
func ExitCode(err error) null.Int {
	if err == nil {
		return null.IntFrom(0)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return null.IntFrom(int64(exitErr.ExitCode()))
	}

	return null.Int{}
}

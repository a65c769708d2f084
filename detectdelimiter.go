package sradownload

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in sample, assuming a CSV-like block. GEO tables are tab delimited, so
// a tab wins whenever it is among the candidates, and is also the fallback when
// nothing can be detected.
func DetermineDelimiter(sample []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	for _, candidate := range delimiters {
		if candidate == "\t" {
			return '\t'
		}
	}

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}

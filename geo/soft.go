package geo

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sradownload"
	"golang.org/x/net/html/charset"
)

// Some platform annotation lines are very long.
const maxLineBytes = 16 * 1024 * 1024

// How much of the file is inspected to guess its encoding.
const sniffBytes = 1024

// Parse reads a SOFT family file. GEO serves UTF-8; other encodings are only
// assumed when a byte-order mark says so or when the start of the file is not
// valid UTF-8.
func Parse(r io.Reader) (*Dataset, error) {
	src, err := utf8Reader(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	ds := &Dataset{}

	var (
		current    *Entity
		inTable    bool
		tableBlock bytes.Buffer
		lineNumber int
	)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNumber == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if inTable {
			if isTableEnd(line) {
				table, err := parseTable(tableBlock.Bytes())
				if err != nil {
					return nil, pfx.Err(fmt.Errorf("line %d: %w", lineNumber, err))
				}
				current.Table = table
				tableBlock.Reset()
				inTable = false
				continue
			}
			tableBlock.WriteString(line)
			tableBlock.WriteByte('\n')
			continue
		}

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "^"):
			kind, name := splitAssignment(line[1:])
			kind = strings.ToUpper(kind)
			current = &Entity{Kind: kind, Name: name, Columns: make(map[string]string)}

			switch kind {
			case KindSeries:
				ds.Accession = name
			case KindSample:
				ds.Samples = append(ds.Samples, current)
			case KindPlatform:
				ds.Platforms = append(ds.Platforms, current)
			}

		case current == nil:
			return nil, fmt.Errorf("geo: line %d: content before the first entity header", lineNumber)

		case strings.HasPrefix(line, "!"):
			key, value := splitAssignment(line[1:])
			if isTableBegin(key) {
				inTable = true
				continue
			}
			key = trimEntityPrefix(key, current.Kind)
			if current.Kind == KindSeries {
				ds.Metadata.Add(key, value)
			}
			current.Metadata.Add(key, value)

		case strings.HasPrefix(line, "#"):
			key, value := splitAssignment(line[1:])
			current.Columns[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	if inTable {
		return nil, fmt.Errorf("geo: table for %s was never closed", current.Name)
	}

	return ds, nil
}

// splitAssignment splits "key = value" lines. A line without " = " is all key.
// utf8Reader transcodes r to UTF-8. An all-ASCII start is taken as UTF-8,
// since SOFT headers are long and ASCII while names further down are not.
func utf8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	// Short input comes back with io.EOF, which is fine.
	head, err := br.Peek(sniffBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	_, name, certain := charset.DetermineEncoding(head, "text/plain")
	if !certain && isASCII(head) {
		return br, nil
	}

	return charset.NewReaderLabel(name, br)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

func splitAssignment(line string) (string, string) {
	parts := strings.SplitN(line, "=", 2)
	key := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return key, ""
	}
	return key, strings.TrimSpace(parts[1])
}

// trimEntityPrefix turns "Sample_title" into "title" for a SAMPLE entity.
func trimEntityPrefix(key, kind string) string {
	prefix := kind + "_"
	if len(key) > len(prefix) && strings.EqualFold(key[:len(prefix)], prefix) {
		return key[len(prefix):]
	}
	return key
}

func isTableBegin(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), "_table_begin")
}

func isTableEnd(line string) bool {
	return strings.HasPrefix(line, "!") && strings.HasSuffix(strings.ToLower(strings.TrimSpace(line)), "_table_end")
}

func parseTable(block []byte) (*Table, error) {
	if len(bytes.TrimSpace(block)) == 0 {
		return &Table{}, nil
	}

	cr := csv.NewReader(bytes.NewReader(block))
	cr.Comma = sradownload.DetermineDelimiter(block)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}
